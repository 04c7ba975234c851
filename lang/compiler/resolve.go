package compiler

import (
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

// identifierConstant adds name's lexeme to the current chunk's constant
// pool as an interned string and returns its index, for use as the operand
// of a Get/Set/DefineGlobal instruction.
func (p *Parser) identifierConstant(name token.Token) byte {
	return p.makeConstant(value.FromObj(p.internString(name.Lexeme)))
}

func identifiersEqual(a, b token.Token) bool { return a.Lexeme == b.Lexeme }

// resolveLocal scans fc's locals backward looking for name, returning its
// slot index or -1 if not found. A match whose depth is still the -1
// sentinel means the variable is being read from within its own
// initializer, which is an error.
func (p *Parser) resolveLocal(fc *funcCompiler, name token.Token) int {
	for i := len(fc.locals) - 1; i >= 0; i-- {
		l := &fc.locals[i]
		if identifiersEqual(name, l.name) {
			if l.depth == -1 {
				p.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (p *Parser) addUpvalue(fc *funcCompiler, index uint8, isLocal bool) int {
	for i, uv := range fc.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fc.upvalues) == maxUpvalues {
		p.error("Too many closure variables in function.")
		return 0
	}
	fc.upvalues = append(fc.upvalues, upvalueRef{index: index, isLocal: isLocal})
	return len(fc.upvalues) - 1
}

// resolveUpvalue walks outward through enclosing funcCompilers looking for
// name. When found as a local, it marks that local captured (so endScope
// closes it instead of popping it) and threads an upvalueRef through every
// intervening function so each level can find it by index alone.
func (p *Parser) resolveUpvalue(fc *funcCompiler, name token.Token) int {
	if fc.parent == nil {
		return -1
	}
	if local := p.resolveLocal(fc.parent, name); local != -1 {
		fc.parent.locals[local].isCaptured = true
		return p.addUpvalue(fc, uint8(local), true)
	}
	if upvalue := p.resolveUpvalue(fc.parent, name); upvalue != -1 {
		return p.addUpvalue(fc, uint8(upvalue), false)
	}
	return -1
}

func (p *Parser) addLocal(name token.Token) {
	if len(p.cur.locals) == maxLocals {
		p.error("Too many local variables in function.")
		return
	}
	p.cur.locals = append(p.cur.locals, local{name: name, depth: -1})
}

// declareVariable records a local's existence at the current scope depth
// (global variables are not declared this way — they're resolved by name at
// runtime, so there is nothing to do for them at scope depth 0).
func (p *Parser) declareVariable() {
	if p.cur.scopeDepth == 0 {
		return
	}
	name := p.previous
	for i := len(p.cur.locals) - 1; i >= 0; i-- {
		l := &p.cur.locals[i]
		if l.depth != -1 && l.depth < p.cur.scopeDepth {
			break
		}
		if identifiersEqual(name, l.name) {
			p.error("Already a variable with this name in this scope.")
		}
	}
	p.addLocal(name)
}

// parseVariable consumes an identifier token, declares it, and returns the
// constant-pool index of its name (for globals) or 0 (for locals, where the
// index is unused — defineVariable checks scope depth itself).
func (p *Parser) parseVariable(errMsg string) byte {
	p.consume(token.Identifier, errMsg)

	p.declareVariable()
	if p.cur.scopeDepth > 0 {
		return 0
	}
	return p.identifierConstant(p.previous)
}

func (p *Parser) markInitialized() {
	if p.cur.scopeDepth == 0 {
		return
	}
	p.cur.locals[len(p.cur.locals)-1].depth = p.cur.scopeDepth
}

func (p *Parser) defineVariable(global byte) {
	if p.cur.scopeDepth > 0 {
		p.markInitialized()
		return
	}
	p.emitOpByte(DefineGlobal, global)
}
