// Package vm implements the stack-based bytecode virtual machine: the
// dispatch loop, the operand and call-frame stacks, the globals table and
// string-intern pool, and closure/upvalue handling.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/table"
	"github.com/mna/loxvm/lang/value"
)

const (
	defaultMaxFrames  = 64
	defaultStackSlots = 64 * 256
)

// CallFrame records one active call: the closure being executed, the
// instruction pointer into that closure's chunk, and the index into the
// operand stack where this call's window of locals begins.
type CallFrame struct {
	closure *value.ObjClosure
	ip      int
	slots   int
}

// VM is the single-threaded bytecode interpreter. The zero value is not
// ready to use; construct one with New.
type VM struct {
	Stdout io.Writer
	Stderr io.Writer

	// Disassemble, when non-nil, receives a bytecode listing of the
	// top-level script chunk before Interpret runs it. It is a debugging
	// aid wired to the CLI's --disassemble flag; nothing at runtime
	// depends on it.
	Disassemble io.Writer

	heap    value.Heap
	strings table.Table
	globals table.Table

	stack   []value.Value
	stackTop int

	frames     []CallFrame
	frameCount int

	openUpvalues *value.ObjUpvalue

	maxFrames  int
	stackSlots int
}

// Option configures a VM constructed by New.
type Option func(*VM)

// WithMaxFrames overrides the default call-frame capacity (64).
func WithMaxFrames(n int) Option { return func(v *VM) { v.maxFrames = n } }

// WithStackSlots overrides the default operand-stack capacity (64*256).
func WithStackSlots(n int) Option { return func(v *VM) { v.stackSlots = n } }

// New constructs a ready-to-use VM with its globals table pre-populated with
// native bindings (clock).
func New(opts ...Option) *VM {
	v := &VM{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		maxFrames:  defaultMaxFrames,
		stackSlots: defaultStackSlots,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.stack = make([]value.Value, v.stackSlots)
	v.frames = make([]CallFrame, v.maxFrames)
	v.defineNatives()
	return v
}

// Heap exposes the VM's object heap so a compilation pass sharing this VM's
// lifetime can allocate into it.
func (v *VM) Heap() *value.Heap { return &v.heap }

// Strings exposes the VM's string-intern pool so a compilation pass can
// intern literals into the same pool the VM looks up at runtime.
func (v *VM) Strings() *table.Table { return &v.strings }

func (v *VM) resetStack() {
	v.stackTop = 0
	v.frameCount = 0
	v.openUpvalues = nil
}

func (v *VM) push(val value.Value) {
	v.stack[v.stackTop] = val
	v.stackTop++
}

func (v *VM) pop() value.Value {
	v.stackTop--
	return v.stack[v.stackTop]
}

func (v *VM) peek(distance int) value.Value {
	return v.stack[v.stackTop-1-distance]
}

// Interpret compiles and runs source as a top-level script, in the same
// vein as the reference implementation's interpret entry point: it wraps
// the compiled script Function in a Closure, pushes an initial CallFrame,
// and runs the dispatch loop to completion.
func (v *VM) Interpret(source []byte, filename string) error {
	fn, err := compiler.Compile(source, filename, &v.heap, &v.strings)
	if err != nil {
		return &CompileError{Err: err}
	}
	if v.Disassemble != nil {
		compiler.Disassemble(v.Disassemble, fn.Chunk, filename)
	}

	closure := &value.ObjClosure{Function: fn}
	v.heap.Track(closure)
	v.push(value.FromObj(closure))
	if err := v.call(closure, 0); err != nil {
		return err
	}
	return v.run()
}

// runtimeError formats msg, collects a frame-by-frame stack trace (innermost
// first) into the returned *RuntimeError, and resets both the operand and
// frame stacks so a REPL session can continue cleanly after the error. It
// writes nothing itself; printing is left to the caller.
func (v *VM) runtimeError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)

	var trace []string
	for i := v.frameCount - 1; i >= 0; i-- {
		fr := &v.frames[i]
		fn := fr.closure.Function
		line := fn.Chunk.Lines[fr.ip-1]
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars + "()"
		}
		trace = append(trace, fmt.Sprintf("[line %d] in %s", line, name))
	}

	v.resetStack()
	return &RuntimeError{Message: msg, StackTrace: trace}
}

// CompileError is returned by Interpret when compilation fails.
type CompileError struct{ Err error }

func (e *CompileError) Error() string { return e.Err.Error() }
func (e *CompileError) Unwrap() error { return e.Err }

// RuntimeError is returned by Interpret when the dispatch loop raises a
// runtime fault. Error renders it the way the CLI prints it: the message
// followed by one stack-trace line per active frame, innermost first.
type RuntimeError struct {
	Message    string
	StackTrace []string
}

func (e *RuntimeError) Error() string {
	s := e.Message
	for _, line := range e.StackTrace {
		s += "\n" + line
	}
	return s
}
