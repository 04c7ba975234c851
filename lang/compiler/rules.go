package compiler

import (
	"strconv"

	"github.com/mna/loxvm/lang/token"
	"github.com/mna/loxvm/lang/value"
)

type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! -
	precCall                  // . ()
	precPrimary
)

type parseFn func(p *Parser, canAssign bool)

type parseRule struct {
	prefix, infix parseFn
	prec          precedence
}

// rules is indexed directly by token.Type (a uint8), mirroring the fixed
// parse-table-per-token-kind shape of a Pratt parser; unlisted token types
// keep the zero rule (no prefix, no infix, precNone).
var rules [256]parseRule

func init() {
	rules[token.LeftParen] = parseRule{grouping, call, precCall}
	rules[token.Minus] = parseRule{unary, binary, precTerm}
	rules[token.Plus] = parseRule{nil, binary, precTerm}
	rules[token.Slash] = parseRule{nil, binary, precFactor}
	rules[token.Star] = parseRule{nil, binary, precFactor}
	rules[token.Bang] = parseRule{unary, nil, precNone}
	rules[token.BangEqual] = parseRule{nil, binary, precEquality}
	rules[token.EqualEqual] = parseRule{nil, binary, precEquality}
	rules[token.Greater] = parseRule{nil, binary, precComparison}
	rules[token.GreaterEqual] = parseRule{nil, binary, precComparison}
	rules[token.Less] = parseRule{nil, binary, precComparison}
	rules[token.LessEqual] = parseRule{nil, binary, precComparison}
	rules[token.Identifier] = parseRule{variable, nil, precNone}
	rules[token.String] = parseRule{str, nil, precNone}
	rules[token.Number] = parseRule{number, nil, precNone}
	rules[token.And] = parseRule{nil, and, precAnd}
	rules[token.False] = parseRule{literal, nil, precNone}
	rules[token.Nil] = parseRule{literal, nil, precNone}
	rules[token.Or] = parseRule{nil, or, precOr}
	rules[token.True] = parseRule{literal, nil, precNone}
}

func getRule(typ token.Type) *parseRule { return &rules[typ] }

// parsePrecedence consumes a prefix expression for the current token, then
// keeps consuming infix operators as long as their precedence is at least
// minPrec. canAssign is threaded through to the rules so that only a
// context at or below precAssignment may consume a trailing '='.
func (p *Parser) parsePrecedence(minPrec precedence) {
	p.advance()
	prefix := getRule(p.previous.Type).prefix
	if prefix == nil {
		p.error("Expect expression.")
		return
	}

	canAssign := minPrec <= precAssignment
	prefix(p, canAssign)

	for minPrec <= getRule(p.current.Type).prec {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p, canAssign)
	}

	if canAssign && p.match(token.Equal) {
		p.error("Invalid assignment target.")
	}
}

func (p *Parser) expression() { p.parsePrecedence(precAssignment) }

func number(p *Parser, _ bool) {
	n, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(value.Number(n))
}

func str(p *Parser, _ bool) {
	lexeme := p.previous.Lexeme
	s := p.internString(lexeme[1 : len(lexeme)-1]) // strip the surrounding quotes
	p.emitConstant(value.FromObj(s))
}

func grouping(p *Parser, _ bool) {
	p.expression()
	p.consume(token.RightParen, "Expect ')' after expression.")
}

func unary(p *Parser, _ bool) {
	opType := p.previous.Type
	p.parsePrecedence(precUnary)

	switch opType {
	case token.Bang:
		p.emitOp(Not)
	case token.Minus:
		p.emitOp(Negate)
	}
}

func binary(p *Parser, _ bool) {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.prec + 1)

	switch opType {
	case token.BangEqual:
		p.emitOp(Equal)
		p.emitOp(Not)
	case token.EqualEqual:
		p.emitOp(Equal)
	case token.Greater:
		p.emitOp(Greater)
	case token.GreaterEqual:
		p.emitOp(Less)
		p.emitOp(Not)
	case token.Less:
		p.emitOp(Less)
	case token.LessEqual:
		p.emitOp(Greater)
		p.emitOp(Not)
	case token.Plus:
		p.emitOp(Add)
	case token.Minus:
		p.emitOp(Subtract)
	case token.Star:
		p.emitOp(Multiply)
	case token.Slash:
		p.emitOp(Divide)
	}
}

func literal(p *Parser, _ bool) {
	switch p.previous.Type {
	case token.False:
		p.emitOp(False)
	case token.Nil:
		p.emitOp(Nil)
	case token.True:
		p.emitOp(True)
	}
}

func and(p *Parser, _ bool) {
	endJump := p.emitJump(JumpIfFalse)
	p.emitOp(Pop)
	p.parsePrecedence(precAnd)
	p.patchJump(endJump)
}

func or(p *Parser, _ bool) {
	elseJump := p.emitJump(JumpIfFalse)
	endJump := p.emitJump(Jump)

	p.patchJump(elseJump)
	p.emitOp(Pop)

	p.parsePrecedence(precOr)
	p.patchJump(endJump)
}

func call(p *Parser, _ bool) {
	argc := p.argumentList()
	p.emitOpByte(Call, argc)
}

func (p *Parser) argumentList() byte {
	var argc int
	if !p.check(token.RightParen) {
		for {
			p.expression()
			if argc == maxArgs {
				p.error("Can't have more than 255 arguments.")
			}
			argc++
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.consume(token.RightParen, "Expect ')' after arguments.")
	return byte(argc)
}

func variable(p *Parser, canAssign bool) {
	p.namedVariable(p.previous, canAssign)
}

func (p *Parser) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp OpCode
	arg := p.resolveLocal(p.cur, name)
	if arg != -1 {
		getOp, setOp = GetLocal, SetLocal
	} else if arg = p.resolveUpvalue(p.cur, name); arg != -1 {
		getOp, setOp = GetUpvalue, SetUpvalue
	} else {
		arg = int(p.identifierConstant(name))
		getOp, setOp = GetGlobal, SetGlobal
	}

	if canAssign && p.match(token.Equal) {
		p.expression()
		p.emitOpByte(setOp, byte(arg))
	} else {
		p.emitOpByte(getOp, byte(arg))
	}
}
