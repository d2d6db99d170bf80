// Package vm implements the stack-based dispatch loop: a fixed operand
// stack, an instruction pointer into the currently executing chunk, and the
// VM-owned heap, interner, and globals table. Grounded on original clox's
// vm.c run_vm dispatch loop, adapted to the teacher's vm.VM/Stack naming.
package vm

import (
	"fmt"
	"io"
	"os"

	"nilox/internal/bytecode"
	"nilox/internal/compiler"
	"nilox/internal/heap"
	"nilox/internal/langerr"
	"nilox/internal/object"
	"nilox/internal/table"
	"nilox/internal/value"
)

const stackMax = 256

// Result is the outcome of a single Interpret call.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

// VM is single-threaded and cooperative: there is no concurrency, and the
// dispatch loop runs to completion (or to a runtime error) per Interpret
// call. Heap, interner, and globals persist across calls, matching a REPL's
// init -> many interpret() calls -> free lifecycle.
type VM struct {
	heap    *heap.Heap
	globals *table.Table

	stack    [stackMax]value.Value
	stackTop int

	chunk *bytecode.Chunk
	ip    int

	stdout io.Writer
}

// New returns a freshly initialized VM with an empty heap and globals
// table.
func New() *VM {
	return &VM{heap: heap.New(), globals: table.New(), stdout: os.Stdout}
}

// SetStdout redirects PRINT output, used by tests to capture output
// instead of writing to the process's stdout.
func (vm *VM) SetStdout(w io.Writer) { vm.stdout = w }

// Free releases the heap's object list and interner and resets the globals
// table (Go's GC does the actual reclamation), matching the VM's shutdown
// discipline.
func (vm *VM) Free() {
	vm.heap.Free()
	vm.globals = table.New()
}

// Interpret compiles source into a fresh chunk and, on success, runs it.
// The chunk is discarded after running; values referencing heap objects
// survive in the VM's interner/object list.
func (vm *VM) Interpret(source string) (Result, error) {
	chunk, err := compiler.Compile(source, vm.heap)
	if err != nil {
		return ResultCompileError, err
	}

	vm.chunk = chunk
	vm.ip = 0
	vm.resetStack()

	if err := vm.run(); err != nil {
		return ResultRuntimeError, err
	}
	return ResultOK, nil
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readShort() int {
	hi := vm.chunk.Code[vm.ip]
	lo := vm.chunk.Code[vm.ip+1]
	vm.ip += 2
	return int(hi)<<8 | int(lo)
}

func (vm *VM) readConstant() value.Value {
	idx := vm.readByte()
	return vm.chunk.Constants[idx].(value.Value)
}

func (vm *VM) runtimeError(format string, args ...any) error {
	line := vm.chunk.Lines[vm.ip-1]
	msg := fmt.Sprintf(format, args...)
	vm.resetStack()
	return &langerr.RuntimeError{Line: line, Message: msg}
}

func (vm *VM) run() error {
	for {
		op := bytecode.Opcode(vm.readByte())
		switch op {
		case bytecode.OpConstant:
			vm.push(vm.readConstant())

		case bytecode.OpNil:
			vm.push(value.Nil())
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
		case bytecode.OpFalse:
			vm.push(value.Bool(false))

		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := vm.readByte()
			vm.push(vm.stack[slot])
		case bytecode.OpSetLocal:
			slot := vm.readByte()
			vm.stack[slot] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := vm.readConstant().AsString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case bytecode.OpDefineGlobal:
			name := vm.readConstant().AsString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case bytecode.OpSetGlobal:
			name := vm.readConstant().AsString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.OpGreater:
			if err := vm.binaryNumberOp(op); err != nil {
				return err
			}
		case bytecode.OpLess:
			if err := vm.binaryNumberOp(op); err != nil {
				return err
			}

		case bytecode.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv:
			if err := vm.binaryNumberOp(op); err != nil {
				return err
			}

		case bytecode.OpNot:
			vm.push(value.Bool(value.Falsy(vm.pop())))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case bytecode.OpJump:
			offset := vm.readShort()
			vm.ip += offset
		case bytecode.OpJumpIfFalse:
			offset := vm.readShort()
			if value.Falsy(vm.peek(0)) {
				vm.ip += offset
			}
		case bytecode.OpLoop:
			offset := vm.readShort()
			vm.ip -= offset

		case bytecode.OpReturn:
			return nil

		default:
			return vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (vm *VM) binaryNumberOp(op bytecode.Opcode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch op {
	case bytecode.OpGreater:
		vm.push(value.Bool(a > b))
	case bytecode.OpLess:
		vm.push(value.Bool(a < b))
	case bytecode.OpSub:
		vm.push(value.Number(a - b))
	case bytecode.OpMul:
		vm.push(value.Number(a * b))
	case bytecode.OpDiv:
		vm.push(value.Number(a / b))
	}
	return nil
}

// add implements ADD's dual numeric/string behavior: two numbers sum, two
// strings concatenate via an interned "take", anything else is a runtime
// error.
func (vm *VM) add() error {
	if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
		b := vm.pop().AsNumber()
		a := vm.pop().AsNumber()
		vm.push(value.Number(a + b))
		return nil
	}
	if vm.peek(0).IsString() && vm.peek(1).IsString() {
		b := vm.pop().AsString()
		a := vm.pop().AsString()
		concatenated := a.Chars + b.Chars
		s := vm.heap.TakeString(concatenated)
		vm.push(value.Object(object.Obj(s)))
		return nil
	}
	return vm.runtimeError("Operands must be two numbers or two strings.")
}
