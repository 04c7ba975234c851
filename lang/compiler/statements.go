package compiler

import (
	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

func (p *Parser) declaration() {
	hadErrorBefore := p.hadError
	p.cur.sawJump = false
	// At a statement boundary the runtime stack holds exactly the live
	// locals; resync the simulated depth so a previous branchy statement's
	// linear over-count does not carry into this one.
	p.cur.stackDepth = len(p.cur.locals)

	switch {
	case p.match(token.Fun):
		p.funDeclaration()
	case p.match(token.Var):
		p.varDeclaration()
	default:
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	} else if p.hadError == hadErrorBefore && !p.cur.sawJump {
		// This statement parsed and compiled without recording a new error
		// or emitting a branch, so its bytecode is one straight-line run and
		// must leave the stack exactly as deep as its live locals, with no
		// leaked temporaries. Branchy statements (if/while/for, and/or) are
		// skipped: their compiled bytes contain two mutually exclusive paths
		// back to back, so a linear sum over the whole statement doesn't
		// reflect either path's actual runtime depth.
		p.assertStackBalance()
	}
}

// synchronize discards tokens until it reaches a likely statement boundary,
// so a single syntax error doesn't cascade into a run of spurious ones.
func (p *Parser) synchronize() {
	p.panicMode = false

	for p.current.Type != token.Eof {
		if p.previous.Type == token.Semicolon {
			return
		}
		switch p.current.Type {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}

func (p *Parser) statement() {
	switch {
	case p.match(token.Print):
		p.printStatement()
	case p.match(token.For):
		p.forStatement()
	case p.match(token.If):
		p.ifStatement()
	case p.match(token.Return):
		p.returnStatement()
	case p.match(token.While):
		p.whileStatement()
	case p.match(token.LeftBrace):
		p.beginScope()
		p.block()
		p.endScope()
	default:
		p.expressionStatement()
	}
}

func (p *Parser) block() {
	for !p.check(token.RightBrace) && !p.check(token.Eof) {
		p.declaration()
	}
	p.consume(token.RightBrace, "Expect '}' after block.")
}

func (p *Parser) function(typ funcType) {
	p.pushCompiler(typ, p.previous.Lexeme)
	p.beginScope()

	p.consume(token.LeftParen, "Expect '(' after function name.")
	if !p.check(token.RightParen) {
		for {
			p.cur.function.Arity++
			if p.cur.function.Arity > maxArgs {
				p.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := p.parseVariable("Expect parameter name.")
			p.defineVariable(constant)
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after parameters.")

	// The caller leaves the function value and each argument sitting on the
	// stack before Call transfers control here, so the body starts with as
	// many live values already in place as there are locals declared so
	// far (the reserved slot 0 plus one per parameter) — resync the
	// simulated depth to that, or the stack-balance assertion would see
	// parameters as locals with no corresponding push.
	p.cur.stackDepth = len(p.cur.locals)

	p.consume(token.LeftBrace, "Expect '{' before function body.")
	p.block()

	upvalues := p.cur.upvalues
	fn := p.endCompiler()
	p.emitOpByte(Closure, p.makeConstant(value.FromObj(fn)))
	for _, uv := range upvalues {
		isLocal := byte(0)
		if uv.isLocal {
			isLocal = 1
		}
		p.emitByte(isLocal)
		p.emitByte(uv.index)
	}
}

func (p *Parser) funDeclaration() {
	global := p.parseVariable("Expect function name.")
	p.markInitialized()
	p.function(typeFunction)
	p.defineVariable(global)
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(token.Equal) {
		p.expression()
	} else {
		p.emitOp(Nil)
	}
	p.consume(token.Semicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after expression.")
	p.emitOp(Pop)
}

func (p *Parser) ifStatement() {
	p.consume(token.LeftParen, "Expect '(' after 'if'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := p.emitJump(JumpIfFalse)
	p.emitOp(Pop)
	p.statement()

	elseJump := p.emitJump(Jump)

	p.patchJump(thenJump)
	p.emitOp(Pop)

	if p.match(token.Else) {
		p.statement()
	}
	p.patchJump(elseJump)
}

func (p *Parser) forStatement() {
	p.beginScope()
	p.consume(token.LeftParen, "Expect '(' after 'for'.")

	switch {
	case p.match(token.Semicolon):
		// no initializer
	case p.match(token.Var):
		p.varDeclaration()
	default:
		p.expressionStatement()
	}

	loopStart := len(p.currentChunk().Code)
	exitJump := -1

	if !p.match(token.Semicolon) {
		p.expression()
		p.consume(token.Semicolon, "Expect ';' after loop condition.")

		exitJump = p.emitJump(JumpIfFalse)
		p.emitOp(Pop)
	}

	if !p.match(token.RightParen) {
		bodyJump := p.emitJump(Jump)
		incrStart := len(p.currentChunk().Code)
		p.expression()
		p.emitOp(Pop)
		p.consume(token.RightParen, "Expect ')' after for clauses.")

		p.emitLoop(loopStart)
		loopStart = incrStart
		p.patchJump(bodyJump)
	}

	p.statement()
	p.emitLoop(loopStart)

	if exitJump != -1 {
		p.patchJump(exitJump)
		p.emitOp(Pop)
	}

	p.endScope()
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(token.Semicolon, "Expect ';' after value.")
	p.emitOp(Print)
}

func (p *Parser) returnStatement() {
	if p.cur.typ == typeScript {
		p.error("Can't return from top-level code.")
	}
	if p.match(token.Semicolon) {
		p.emitReturn()
	} else {
		p.expression()
		p.consume(token.Semicolon, "Expect ';' after return value.")
		p.emitOp(Return)
	}
}

func (p *Parser) whileStatement() {
	loopStart := len(p.currentChunk().Code)

	p.consume(token.LeftParen, "Expect '(' after 'while'.")
	p.expression()
	p.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := p.emitJump(JumpIfFalse)
	p.emitOp(Pop)
	p.statement()
	p.emitLoop(loopStart)

	p.patchJump(exitJump)
	p.emitOp(Pop)
}
