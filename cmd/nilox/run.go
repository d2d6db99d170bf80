package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"nilox/internal/vm"
)

type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute a nilox source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Read the entire file into memory, interpret it, and exit.
`
}
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: nilox run <file>\n")
		return exitUsage
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return exitIOError
	}

	machine := vm.New()
	result, runErr := machine.Interpret(string(data))
	return exitStatusFor(result, runErr)
}

func exitStatusFor(result vm.Result, err error) subcommands.ExitStatus {
	switch result {
	case vm.ResultCompileError:
		return exitCompileError
	case vm.ResultRuntimeError:
		fmt.Fprintln(os.Stderr, err.Error())
		return exitRuntimeError
	default:
		return exitSuccess
	}
}
