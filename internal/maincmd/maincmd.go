// Package maincmd implements the loxvm command-line entry point: flag and
// environment parsing, and dispatch to the REPL or single-file run path.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/mna/mainer"
)

const binName = "loxvm"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

Compiles and runs %[1]s scripts. With no <path>, starts an interactive
read-eval-print loop. With a <path>, compiles and runs that file and
exits.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --disassemble             Print the compiled bytecode of the
                                  top-level script chunk before running
                                  it (function chunks are not listed).

Environment variables:
       LOXVM_MAX_FRAMES          Override the call-frame stack capacity
                                  (default 64).
       LOXVM_STACK_SLOTS         Override the operand stack capacity
                                  (default 16384).
`, binName)
)

// Exit codes per the CLI contract: success, usage error, compile error,
// runtime error, I/O error.
const (
	ExitSuccess      mainer.ExitCode = 0
	ExitUsage        mainer.ExitCode = 64
	ExitCompileError mainer.ExitCode = 65
	ExitRuntimeError mainer.ExitCode = 70
	ExitIOError      mainer.ExitCode = 74
)

type envConfig struct {
	MaxFrames  int `env:"LOXVM_MAX_FRAMES" envDefault:"64"`
	StackSlots int `env:"LOXVM_STACK_SLOTS" envDefault:"16384"`
}

// Cmd is the loxvm command, satisfying mainer's Cmd contract.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help        bool `flag:"h,help"`
	Version     bool `flag:"v,version"`
	Disassemble bool `flag:"disassemble"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }
func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return errors.New("at most one file path may be provided")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: "",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return ExitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return ExitSuccess
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return ExitSuccess
	}

	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment configuration: %s\n", err)
		return ExitUsage
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	r := &runner{
		stdio:       stdio,
		disassemble: c.Disassemble,
		maxFrames:   cfg.MaxFrames,
		stackSlots:  cfg.StackSlots,
	}

	if len(c.args) == 0 {
		return r.repl(ctx)
	}
	return r.runFile(ctx, c.args[0])
}
