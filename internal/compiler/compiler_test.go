package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nilox/internal/bytecode"
	"nilox/internal/heap"
	"nilox/internal/langerr"
)

func compileOK(t *testing.T, source string) *bytecode.Chunk {
	t.Helper()
	var out bytes.Buffer
	chunk, err := CompileTo(source, heap.New(), &out)
	require.NoError(t, err, "compiler diagnostics: %s", out.String())
	return chunk
}

func TestCompilesArithmeticExpression(t *testing.T) {
	chunk := compileOK(t, "print 1 + 2 * 3;")

	ops := opcodesOf(chunk)
	assert.Contains(t, ops, bytecode.OpConstant)
	assert.Contains(t, ops, bytecode.OpAdd)
	assert.Contains(t, ops, bytecode.OpMul)
	assert.Contains(t, ops, bytecode.OpPrint)
}

func TestCompositeComparisonOperatorsSynthesizePrimitives(t *testing.T) {
	chunk := compileOK(t, "print 1 != 2;")
	assert.Equal(t, []bytecode.Opcode{
		bytecode.OpConstant, bytecode.OpConstant,
		bytecode.OpEqual, bytecode.OpNot,
		bytecode.OpPrint, bytecode.OpReturn,
	}, opcodesOf(chunk))
}

func TestIfElseEmitsBackpatchedJumps(t *testing.T) {
	chunk := compileOK(t, `if (true) { print 1; } else { print 2; }`)
	ops := opcodesOf(chunk)
	assert.Contains(t, ops, bytecode.OpJumpIfFalse)
	assert.Contains(t, ops, bytecode.OpJump)
}

func TestWhileLoopEmitsLoop(t *testing.T) {
	chunk := compileOK(t, `var i = 0; while (i < 3) { i = i + 1; }`)
	assert.Contains(t, opcodesOf(chunk), bytecode.OpLoop)
}

func TestForLoopEmitsLoop(t *testing.T) {
	chunk := compileOK(t, `for (var i = 0; i < 3; i = i + 1) print i;`)
	assert.Contains(t, opcodesOf(chunk), bytecode.OpLoop)
}

func TestBlockScopedLocalsUsePopNotGlobals(t *testing.T) {
	chunk := compileOK(t, `{ var a = 1; print a; }`)
	ops := opcodesOf(chunk)
	assert.Contains(t, ops, bytecode.OpGetLocal)
	assert.NotContains(t, ops, bytecode.OpDefineGlobal)
	assert.Contains(t, ops, bytecode.OpPop, "block exit should pop the local off the stack")
}

func TestGlobalVariableDefinitionAndUse(t *testing.T) {
	chunk := compileOK(t, `var a = 1; print a;`)
	ops := opcodesOf(chunk)
	assert.Contains(t, ops, bytecode.OpDefineGlobal)
	assert.Contains(t, ops, bytecode.OpGetGlobal)
}

func TestCannotReadLocalInOwnInitializer(t *testing.T) {
	var out bytes.Buffer
	_, err := CompileTo(`{ var a = a; }`, heap.New(), &out)
	require.Error(t, err)
	var failed *langerr.CompileFailed
	require.ErrorAs(t, err, &failed)
	require.NotEmpty(t, failed.Errors)
	assert.Contains(t, failed.Errors[0].Message, "Can't read local variable in its own initializer.")
}

func TestRedeclaredLocalInSameScopeIsAnError(t *testing.T) {
	var out bytes.Buffer
	_, err := CompileTo(`{ var a; var a; }`, heap.New(), &out)
	require.Error(t, err)
	var failed *langerr.CompileFailed
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, failed.Errors[0].Message, "Already a variable with this name in this scope.")
}

func TestInvalidAssignmentTarget(t *testing.T) {
	var out bytes.Buffer
	_, err := CompileTo(`1 + 2 = 3;`, heap.New(), &out)
	require.Error(t, err)
	var failed *langerr.CompileFailed
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, failed.Errors[0].Message, "Invalid assignment target.")
}

func TestMissingExpressionReportsExpectedExpression(t *testing.T) {
	var out bytes.Buffer
	_, err := CompileTo(`print ;`, heap.New(), &out)
	require.Error(t, err)
	var failed *langerr.CompileFailed
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, failed.Errors[0].Message, "Expect expression.")
}

func opcodesOf(chunk *bytecode.Chunk) []bytecode.Opcode {
	var ops []bytecode.Opcode
	offset := 0
	for offset < len(chunk.Code) {
		op := bytecode.Opcode(chunk.Code[offset])
		ops = append(ops, op)
		def, ok := bytecode.Get(op)
		if !ok {
			offset++
			continue
		}
		width := 0
		for _, w := range def.OperandWidths {
			width += w
		}
		offset += 1 + width
	}
	return ops
}
