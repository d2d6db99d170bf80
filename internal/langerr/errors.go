// Package langerr carries the two structured error kinds the driver maps to
// exit codes: compile errors (from the parser, sticky + panic-mode
// suppressed) and runtime errors (from the VM, immediate halt). Shaped
// after the teacher's parser.SyntaxError / interpreter.RuntimeError /
// compiler.SemanticError family.
package langerr

import "fmt"

// CompileError is a single diagnostic reported at a source line, optionally
// anchored to a lexeme ("Error at '<lexeme>': msg") or "at end" for EOF.
type CompileError struct {
	Line    int
	AtEnd   bool
	Lexeme  string
	Message string
}

func (e *CompileError) Error() string {
	if e.AtEnd {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
	}
	if e.Lexeme == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Message)
}

// CompileFailed is returned by the compiler once hadError is sticky; the
// individual diagnostics have already been written to the compiler's
// configured output writer.
type CompileFailed struct {
	Errors []*CompileError
}

func (e *CompileFailed) Error() string {
	if len(e.Errors) == 0 {
		return "compile error"
	}
	return e.Errors[0].Error()
}

// RuntimeError is raised by the VM's dispatch loop; Line is the source line
// recorded for the failing instruction's byte.
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}
