package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"nilox/internal/bytecode"
	"nilox/internal/compiler"
	"nilox/internal/heap"
)

// disassembleCmd compiles a source file without running it and prints its
// disassembly and hex dump, modeled on the teacher's cmd_emit_bytecode.go
// -diassemble/-dumpBytecode flags. Out of THE CORE per the language spec,
// but ambient tooling the teacher already built a version of.
type disassembleCmd struct {
	dumpHex bool
}

func (*disassembleCmd) Name() string     { return "disassemble" }
func (*disassembleCmd) Synopsis() string { return "Compile a file and print its bytecode" }
func (*disassembleCmd) Usage() string {
	return `disassemble <file>:
  Compile the file and print a disassembly listing (and optionally a hex dump).
`
}

func (cmd *disassembleCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.dumpHex, "hex", false, "also print the chunk's raw code as hexadecimal")
}

func (cmd *disassembleCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: nilox disassemble <file>\n")
		return exitUsage
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return exitIOError
	}

	h := heap.New()
	chunk, err := compiler.Compile(string(data), h)
	if err != nil {
		return exitCompileError
	}

	fmt.Print(bytecode.DisassembleChunk(chunk, args[0]))
	if cmd.dumpHex {
		fmt.Println(chunk.DumpHex())
	}
	return exitSuccess
}
