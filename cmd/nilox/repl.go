package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"nilox/internal/lexer"
	"nilox/internal/token"
	"nilox/internal/vm"
)

type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start an interactive nilox session" }
func (*replCmd) Usage() string {
	return `repl:
  Read a line, interpret it, loop until EOF (Ctrl-D).
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New(">>> ")
	if err != nil {
		return exitIOError
	}
	defer rl.Close()

	machine := vm.New()
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			rl.SetPrompt(">>> ")
		} else {
			rl.SetPrompt("... ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer.Reset()
			continue
		}
		if err == io.EOF {
			return exitSuccess
		}
		if err != nil {
			return exitIOError
		}

		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)

		if !isInputReady(buffer.String()) {
			continue
		}

		source := buffer.String()
		buffer.Reset()

		result, runErr := machine.Interpret(source)
		if result == vm.ResultRuntimeError {
			fmt.Fprintln(rl.Stderr(), runErr.Error())
		}
	}
}

// isInputReady reports whether source has balanced braces and does not end
// on a token that obviously expects a continuation, so the REPL can accept
// multi-line if/while/for blocks before handing source to the compiler.
// Adapted from the teacher's cmd_repl_compiled.go isInputReady, which works
// over a pre-scanned token slice; here it re-scans with the token package's
// keyword/operator set.
func isInputReady(source string) bool {
	scanner := lexer.New(source)
	var tokens []token.Token
	for {
		t := scanner.ScanToken()
		tokens = append(tokens, t)
		if t.Type == token.EOF {
			break
		}
	}

	braceBalance := 0
	for _, t := range tokens {
		switch t.Type {
		case token.LeftBrace:
			braceBalance++
		case token.RightBrace:
			braceBalance--
		}
	}
	if braceBalance > 0 {
		return false
	}

	last := lastNonEOF(tokens)
	if last == nil {
		return true
	}

	switch last.Type {
	case token.Equal, token.Plus, token.Minus, token.Star, token.Slash,
		token.Bang, token.EqualEqual, token.BangEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.Comma, token.LeftParen, token.LeftBrace,
		token.If, token.Else, token.While, token.For, token.Fun,
		token.Return, token.Var, token.And, token.Or, token.Print:
		return false
	}
	return true
}

func lastNonEOF(tokens []token.Token) *token.Token {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Type != token.EOF {
			return &tokens[i]
		}
	}
	return nil
}
