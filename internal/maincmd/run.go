package maincmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/vm"
	"github.com/mna/mainer"
)

type runner struct {
	stdio       mainer.Stdio
	disassemble bool
	maxFrames   int
	stackSlots  int
}

func (r *runner) newVM() *vm.VM {
	opts := []vm.Option{vm.WithMaxFrames(r.maxFrames), vm.WithStackSlots(r.stackSlots)}
	m := vm.New(opts...)
	m.Stdout = r.stdio.Stdout
	m.Stderr = r.stdio.Stderr
	if r.disassemble {
		m.Disassemble = r.stdio.Stdout
	}
	return m
}

// runFile reads path, compiles and runs it to completion, and maps the
// result to the CLI's exit-code contract.
func (r *runner) runFile(_ context.Context, path string) mainer.ExitCode {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(r.stdio.Stderr, "%s\n", err)
		return ExitIOError
	}

	m := r.newVM()
	if err := m.Interpret(source, path); err != nil {
		return printRunError(r.stdio, err)
	}
	return ExitSuccess
}

// repl implements the line-at-a-time read-eval-print loop: each line is
// compiled and run independently against the same VM (so globals persist
// across lines), and an error in one line does not end the session.
func (r *runner) repl(ctx context.Context) mainer.ExitCode {
	m := r.newVM()
	sc := bufio.NewScanner(r.stdio.Stdin)

	for {
		fmt.Fprint(r.stdio.Stdout, "> ")
		if !sc.Scan() {
			break
		}
		select {
		case <-ctx.Done():
			return ExitSuccess
		default:
		}

		line := sc.Text()
		if err := m.Interpret([]byte(line), "stdin"); err != nil {
			printRunError(r.stdio, err)
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(r.stdio.Stderr, "%s\n", err)
		return ExitIOError
	}
	return ExitSuccess
}

func printRunError(stdio mainer.Stdio, err error) mainer.ExitCode {
	var compileErr *vm.CompileError
	if errors.As(err, &compileErr) {
		// print every collected compile error, one per line
		scanner.PrintError(stdio.Stderr, compileErr.Err)
		return ExitCompileError
	}

	fmt.Fprintf(stdio.Stderr, "%s\n", err)
	var runtimeErr *vm.RuntimeError
	if errors.As(err, &runtimeErr) {
		return ExitRuntimeError
	}
	return ExitRuntimeError
}
