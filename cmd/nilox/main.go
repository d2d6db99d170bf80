// Command nilox is the REPL/file driver: it reads source text, hands it to
// the VM's Interpret entry point, and maps the result to the process exit
// code. Built in the teacher's cmd_run.go/cmd_repl.go/subcommands style,
// registering run/repl/disassemble subcommands.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")
	subcommands.Register(&disassembleCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

// Exit codes per the driver contract: usage -> 64, compile error -> 65,
// runtime error -> 70, I/O error -> 74, otherwise 0.
const (
	exitUsage        subcommands.ExitStatus = 64
	exitCompileError subcommands.ExitStatus = 65
	exitRuntimeError subcommands.ExitStatus = 70
	exitIOError      subcommands.ExitStatus = 74
	exitSuccess      subcommands.ExitStatus = 0
)
