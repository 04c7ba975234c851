// Package compiler implements the single-pass Pratt parser that compiles
// source text directly into a value.Chunk of bytecode, plus the
// disassembler used for debugging.
package compiler

import (
	"fmt"
	gotoken "go/token"

	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/table"
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

const (
	maxLocals   = 256
	maxUpvalues = 256
	maxArgs     = 255
	maxJump     = 1<<16 - 1
)

type funcType int

const (
	typeFunction funcType = iota
	typeScript
)

// local tracks one declared local variable's name, the scope depth it was
// declared at (-1 meaning "declared but not yet initialized"), and whether
// a nested closure captures it.
type local struct {
	name       token.Token
	depth      int
	isCaptured bool
}

// upvalueRef records, from an enclosing function's point of view, where one
// of its inner function's captured variables comes from: either straight
// off its own locals (isLocal true, index is a local slot) or forwarded
// from its own upvalue list (isLocal false, index is an upvalue index).
type upvalueRef struct {
	index   uint8
	isLocal bool
}

// funcCompiler holds the compilation state for one function body. Nested
// function literals push a new funcCompiler linked to the enclosing one via
// parent, so upvalue resolution can walk outward.
type funcCompiler struct {
	parent     *funcCompiler
	function   *value.ObjFunction
	typ        funcType
	locals     []local
	upvalues   []upvalueRef
	scopeDepth int

	// stackDepth simulates the operand stack's depth at the current point in
	// this function's bytecode, per the stackEffect table. It is used only to
	// assert the stack-balance invariant; it has no effect on emitted code.
	stackDepth int

	// sawJump is set whenever a Jump/JumpIfFalse/Loop is emitted since the
	// last reset. stackDepth sums effects across every emitted byte in
	// textual order, but a jump means two mutually exclusive paths share that
	// order (e.g. if/else's two branch Pops), so a straight linear sum
	// over-counts; the balance assertion skips statements that saw one.
	sawJump bool
}

// Parser drives compilation: it owns the scanner, the current/previous
// token pair, error/panic-mode state, and the stack of funcCompilers (one
// per function nested at the current point in the source).
type Parser struct {
	sc       *scanner.Scanner
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	errs      *scanner.ErrorList
	filename  string

	heap    *value.Heap
	strings *table.Table

	cur *funcCompiler
}

// Compile compiles source into a top-level Function (the implicit script
// function). heap is used to allocate every object the compilation produces
// (interned strings, nested Function objects); strings is the VM's
// string-intern pool, shared across compilations so that identical literal
// content always yields the same *value.ObjString. It returns a non-nil
// error (a scanner.ErrorList) iff any compile error was recorded; the
// returned function is always usable for further (best-effort) inspection
// even when err is non-nil, matching the source's "always runs to EOF"
// contract.
func Compile(source []byte, filename string, heap *value.Heap, strings *table.Table) (*value.ObjFunction, error) {
	var errs scanner.ErrorList
	var sc scanner.Scanner
	// Scanner errors are recorded once, by the parser (errorAt), when it
	// receives the Error token, so the scanner gets no list of its own.
	sc.Init(filename, source, nil)

	p := &Parser{
		sc:       &sc,
		errs:     &errs,
		filename: filename,
		heap:     heap,
		strings:  strings,
	}
	p.pushCompiler(typeScript, "")

	p.advance()
	for !p.match(token.Eof) {
		p.declaration()
	}
	fn := p.endCompiler()

	errs.Sort()
	if p.hadError {
		return fn, errs.Err()
	}
	return fn, nil
}

func (p *Parser) currentChunk() *value.Chunk {
	return p.cur.function.Chunk
}

func (p *Parser) pushCompiler(typ funcType, name string) {
	fc := &funcCompiler{
		parent: p.cur,
		typ:    typ,
		function: &value.ObjFunction{
			Chunk: &value.Chunk{},
		},
	}
	if name != "" {
		fc.function.Name = p.internString(name)
	}
	// slot 0 is reserved for the function value itself (the future home of
	// `this`, unused by this language, but the slot indexing still assumes
	// it is occupied).
	fc.locals = append(fc.locals, local{depth: 0})
	fc.stackDepth = 1
	p.cur = fc
}

func (p *Parser) endCompiler() *value.ObjFunction {
	p.emitReturn()
	fn := p.cur.function
	fn.UpvalueCount = len(p.cur.upvalues)
	p.cur = p.cur.parent
	return fn
}

// internString returns the unique, heap-tracked *value.ObjString for s,
// allocating and interning it only if an equal string is not already in the
// pool.
func (p *Parser) internString(s string) *value.ObjString {
	hash := value.FNV1a32(s)
	if existing := p.strings.FindString(s, hash); existing != nil {
		return existing
	}
	str := p.heap.Track(&value.ObjString{Chars: s, Hash: hash}).(*value.ObjString)
	p.strings.Set(str, value.Bool(true))
	return str
}

// --- error handling ---

func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	switch tok.Type {
	case token.Eof:
		where = " at end"
	case token.Error:
		where = ""
	}
	p.errs.Add(gotoken.Position{Filename: p.filename, Line: tok.Line}, fmt.Sprintf("[Line %d] Error%s: %s", tok.Line, where, msg))
}

func (p *Parser) error(msg string)          { p.errorAt(p.previous, msg) }
func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }

// --- token stream ---

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.sc.Scan()
		if p.current.Type != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) consume(typ token.Type, msg string) {
	if p.current.Type == typ {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

func (p *Parser) check(typ token.Type) bool { return p.current.Type == typ }

func (p *Parser) match(typ token.Type) bool {
	if !p.check(typ) {
		return false
	}
	p.advance()
	return true
}

// --- bytecode emission ---

func (p *Parser) emitByte(b byte) {
	p.currentChunk().Write(b, p.previous.Line)
}

// trackEffect applies op's net stack effect to the current function's
// simulated depth and panics if it ever drops below that function's live
// locals — a compiler bug (a missing or extra Pop), never a user error.
// Once a compile error has been recorded the check is skipped, since
// erroneous source can leave expressions half-emitted.
//
// The check is suppressed once sawJump is set: a Jump/JumpIfFalse/Loop means
// the bytes that follow may be one of two mutually exclusive runtime paths
// written back to back (e.g. if/else's then- and else-branch Pops both
// consume the same condition value, on paths that never both run), so a
// single linear walk through them no longer reflects either path's actual
// depth and can't be used to detect a real imbalance.
func (p *Parser) trackEffect(op OpCode) {
	eff := stackEffect[op]
	if eff == variableStackEffect {
		panic(fmt.Sprintf("internal error: %s has no fixed stack effect, use trackCall", op))
	}
	p.cur.stackDepth += eff
	if op == Jump || op == JumpIfFalse || op == Loop {
		p.cur.sawJump = true
	}
	if !p.cur.sawJump && !p.hadError && p.cur.stackDepth < len(p.cur.locals) {
		panic(fmt.Sprintf("internal error: stack underflow emitting %s (depth %d, locals %d)", op, p.cur.stackDepth, len(p.cur.locals)))
	}
}

// trackCall applies Call's argc-dependent effect: argc+1 operands (the
// callee plus its arguments) are popped, one result is pushed.
func (p *Parser) trackCall(argc int) {
	p.cur.stackDepth -= argc
	if !p.cur.sawJump && !p.hadError && p.cur.stackDepth < len(p.cur.locals) {
		panic(fmt.Sprintf("internal error: stack underflow emitting call (depth %d, locals %d)", p.cur.stackDepth, len(p.cur.locals)))
	}
}

func (p *Parser) emitOp(op OpCode) {
	p.emitByte(byte(op))
	p.trackEffect(op)
}

func (p *Parser) emitOpByte(op OpCode, b byte) {
	p.emitByte(byte(op))
	p.emitByte(b)
	if op == Call {
		p.trackCall(int(b))
	} else {
		p.trackEffect(op)
	}
}

func (p *Parser) emitReturn() {
	p.emitOp(Nil)
	p.emitOp(Return)
}

func (p *Parser) emitJump(op OpCode) int {
	p.emitOp(op)
	p.emitByte(0xff)
	p.emitByte(0xff)
	return len(p.currentChunk().Code) - 2
}

func (p *Parser) patchJump(offset int) {
	jump := len(p.currentChunk().Code) - offset - 2
	if jump > maxJump {
		p.error("Too much code to jump over.")
	}
	code := p.currentChunk().Code
	code[offset] = byte(jump >> 8)
	code[offset+1] = byte(jump)
}

func (p *Parser) emitLoop(loopStart int) {
	p.emitOp(Loop)
	offset := len(p.currentChunk().Code) - loopStart + 2
	if offset > maxJump {
		p.error("Loop body too large.")
	}
	p.emitByte(byte(offset >> 8))
	p.emitByte(byte(offset))
}

func (p *Parser) makeConstant(v value.Value) byte {
	idx := p.currentChunk().AddConstant(v)
	if idx > 255 {
		p.error("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (p *Parser) emitConstant(v value.Value) {
	p.emitOpByte(Constant, p.makeConstant(v))
}

// assertStackBalance panics if the simulated stack depth after a cleanly
// compiled statement doesn't match the current function's live local count,
// i.e. the statement left a temporary value on the stack (or popped one too
// many) instead of fully consuming its own expressions.
func (p *Parser) assertStackBalance() {
	if p.cur.stackDepth != len(p.cur.locals) {
		panic(fmt.Sprintf("internal error: unbalanced stack after statement (depth %d, locals %d)", p.cur.stackDepth, len(p.cur.locals)))
	}
}

// --- scopes ---

func (p *Parser) beginScope() { p.cur.scopeDepth++ }

func (p *Parser) endScope() {
	p.cur.scopeDepth--
	for len(p.cur.locals) > 0 && p.cur.locals[len(p.cur.locals)-1].depth > p.cur.scopeDepth {
		last := p.cur.locals[len(p.cur.locals)-1]
		p.cur.locals = p.cur.locals[:len(p.cur.locals)-1]
		if last.isCaptured {
			p.emitOp(CloseUpvalue)
		} else {
			p.emitOp(Pop)
		}
	}
}
