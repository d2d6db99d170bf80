// Package compiler implements the single-pass Pratt parser and bytecode
// emitter: it drives the scanner token-by-token with no intermediate AST,
// resolves local variables against a compile-time stack model, and emits
// backpatched jumps for control flow. Grounded on the teacher's non-AST
// compiler.Compiler/parsePresedence design (compiler/compiler.go), whose
// locals/scopes/control-flow handling is generalized here from the
// teacher's separate ASTCompiler (compiler/ast_compiler.go).
package compiler

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"nilox/internal/bytecode"
	"nilox/internal/heap"
	"nilox/internal/langerr"
	"nilox/internal/lexer"
	"nilox/internal/token"
	"nilox/internal/value"
)

const maxLocals = 256
const maxJump = math.MaxUint16

// local is a compile-time record of a declared variable: its name token and
// the lexical block depth at declaration. depth -1 means "declared but not
// yet initialized" and must never be read.
type local struct {
	name  string
	depth int
}

// Compiler holds parser state plus the chunk under construction. It
// borrows the heap for interning identifier/string constants; it does not
// own the globals table (that belongs to the VM).
type Compiler struct {
	scanner *lexer.Scanner
	heap    *heap.Heap
	chunk   *bytecode.Chunk
	out     io.Writer

	previous token.Token
	current  token.Token

	hadError  bool
	panicMode bool
	errs      []*langerr.CompileError

	locals     []local
	scopeDepth int
}

// Compile compiles source into a fresh chunk, interning constants through h.
// Diagnostics are written to stderr; on failure the returned error is
// *langerr.CompileFailed and the chunk should be discarded.
func Compile(source string, h *heap.Heap) (*bytecode.Chunk, error) {
	return CompileTo(source, h, os.Stderr)
}

// CompileTo is Compile with an explicit diagnostic writer, used by tests
// that want to capture compiler output instead of printing to stderr.
func CompileTo(source string, h *heap.Heap, out io.Writer) (*bytecode.Chunk, error) {
	c := &Compiler{
		scanner: lexer.New(source),
		heap:    h,
		chunk:   bytecode.New(),
		out:     out,
	}

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.consume(token.EOF, "Expect end of expression.")
	c.emitOp(bytecode.OpReturn)

	if c.hadError {
		return nil, &langerr.CompileFailed{Errors: c.errs}
	}
	return c.chunk, nil
}

// ---- token stream plumbing ----

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.ScanToken()
		if c.current.Type != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(typ token.Type, msg string) {
	if c.current.Type == typ {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) check(typ token.Type) bool {
	return c.current.Type == typ
}

func (c *Compiler) match(typ token.Type) bool {
	if !c.check(typ) {
		return false
	}
	c.advance()
	return true
}

// ---- diagnostics ----

func (c *Compiler) errorAtCurrent(msg string) {
	c.errorAt(c.current, msg)
}

func (c *Compiler) error(msg string) {
	c.errorAt(c.previous, msg)
}

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	ce := &langerr.CompileError{Line: tok.Line, Message: msg}
	if tok.Type == token.EOF {
		ce.AtEnd = true
	} else if tok.Type != token.Error {
		ce.Lexeme = tok.Lexeme
	}
	c.errs = append(c.errs, ce)
	fmt.Fprintln(c.out, ce.Error())
	c.hadError = true
}

func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != token.EOF {
		if c.previous.Type == token.Semicolon {
			return
		}
		switch c.current.Type {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

// ---- emission ----

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op bytecode.Opcode) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitBytes(op bytecode.Opcode, operand byte) {
	c.emitOp(op)
	c.emitByte(operand)
}

// emitJump writes op followed by a placeholder 16-bit operand and returns
// the offset of that operand, for a later patchJump call.
func (c *Compiler) emitJump(op bytecode.Opcode) int {
	c.emitOp(op)
	c.emitByte(0xff)
	c.emitByte(0xff)
	return c.chunk.Len() - 2
}

func (c *Compiler) patchJump(offset int) {
	jump := c.chunk.Len() - offset - 2
	if jump > maxJump {
		c.error("Too much code to jump over.")
		return
	}
	c.chunk.Code[offset] = byte(jump >> 8)
	c.chunk.Code[offset+1] = byte(jump & 0xff)
}

func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(bytecode.OpLoop)
	offset := c.chunk.Len() - loopStart + 2
	if offset > maxJump {
		c.error("Loop body too large.")
		return
	}
	c.emitByte(byte(offset >> 8))
	c.emitByte(byte(offset & 0xff))
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx, err := c.chunk.AddConstant(v)
	if err != nil {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(bytecode.OpConstant, c.makeConstant(v))
}

// ---- scopes ----

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(bytecode.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// ---- declarations & statements ----

func (c *Compiler) declaration() {
	if c.match(token.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(bytecode.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()

	elseJump := c.emitJump(bytecode.OpJump)
	c.patchJump(thenJump)
	c.emitOp(bytecode.OpPop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.chunk.Len()
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(bytecode.OpPop)
}

func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case c.match(token.Semicolon):
		// no initializer
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.chunk.Len()
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(bytecode.OpJumpIfFalse)
		c.emitOp(bytecode.OpPop)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(bytecode.OpJump)
		incrementStart := c.chunk.Len()
		c.expression()
		c.emitOp(bytecode.OpPop)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(bytecode.OpPop)
	}

	c.endScope()
}

// ---- expressions ----

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	rule := getRule(c.previous.Type)
	if rule.prefix == nil {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= PrecAssignment
	rule.prefix(c, canAssign)

	for prec <= getRule(c.current.Type).prec {
		c.advance()
		infix := getRule(c.previous.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) number(_ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Expect expression.")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLit(_ bool) {
	lexeme := c.previous.Lexeme
	chars := lexeme[1 : len(lexeme)-1] // strip surrounding quotes
	s := c.heap.CopyString(chars)
	c.emitConstant(value.Object(s))
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Type {
	case token.False:
		c.emitOp(bytecode.OpFalse)
	case token.True:
		c.emitOp(bytecode.OpTrue)
	case token.Nil:
		c.emitOp(bytecode.OpNil)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opType := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch opType {
	case token.Minus:
		c.emitOp(bytecode.OpNegate)
	case token.Bang:
		c.emitOp(bytecode.OpNot)
	}
}

func (c *Compiler) binary(_ bool) {
	opType := c.previous.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.prec + 1)

	switch opType {
	case token.BangEqual:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case token.EqualEqual:
		c.emitOp(bytecode.OpEqual)
	case token.Greater:
		c.emitOp(bytecode.OpGreater)
	case token.GreaterEqual:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case token.Less:
		c.emitOp(bytecode.OpLess)
	case token.LessEqual:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	case token.Plus:
		c.emitOp(bytecode.OpAdd)
	case token.Minus:
		c.emitOp(bytecode.OpSub)
	case token.Star:
		c.emitOp(bytecode.OpMul)
	case token.Slash:
		c.emitOp(bytecode.OpDiv)
	}
}

func (c *Compiler) and_(_ bool) {
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or_(_ bool) {
	elseJump := c.emitJump(bytecode.OpJumpIfFalse)
	endJump := c.emitJump(bytecode.OpJump)

	c.patchJump(elseJump)
	c.emitOp(bytecode.OpPop)

	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp bytecode.Opcode
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = bytecode.OpGetLocal, bytecode.OpSetLocal
	} else {
		arg = int(c.identifierConstant(name))
		getOp, setOp = bytecode.OpGetGlobal, bytecode.OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitBytes(setOp, byte(arg))
	} else {
		c.emitBytes(getOp, byte(arg))
	}
}

// ---- variable resolution ----

func (c *Compiler) identifierConstant(name token.Token) byte {
	s := c.heap.CopyString(name.Lexeme)
	return c.makeConstant(value.Object(s))
}

func (c *Compiler) parseVariable(errMsg string) byte {
	c.consume(token.Ident, errMsg)

	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name token.Token) {
	if len(c.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name.Lexeme, depth: -1})
}

func (c *Compiler) resolveLocal(name token.Token) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.name == name.Lexeme {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(bytecode.OpDefineGlobal, global)
}
