package scanner_test

import (
	"testing"

	"github.com/mna/loxvm/lang/scanner"
	"github.com/mna/loxvm/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) ([]token.Token, *scanner.ErrorList) {
	t.Helper()

	var errs scanner.ErrorList
	var s scanner.Scanner
	s.Init("test.lox", []byte(src), &errs)

	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Type == token.Eof {
			break
		}
	}
	return toks, &errs
}

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, tok := range toks {
		out[i] = tok.Type
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, errs := scanAll(t, "(){},.-+;*! != = == < <= > >= /")
	require.Empty(t, *errs)
	require.Equal(t, []token.Type{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Star, token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.Slash, token.Eof,
	}, types(toks))
}

func TestScanNumbers(t *testing.T) {
	toks, errs := scanAll(t, "123 4.56 7.")
	require.Empty(t, *errs)
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, token.Number, toks[0].Type)
	require.Equal(t, "4.56", toks[1].Lexeme)
	// no digit after the dot: the dot is not part of the number token
	require.Equal(t, "7", toks[2].Lexeme)
	require.Equal(t, token.Dot, toks[3].Type)
}

func TestScanString(t *testing.T) {
	toks, errs := scanAll(t, `"hello, world"`)
	require.Empty(t, *errs)
	require.Equal(t, token.String, toks[0].Type)
	require.Equal(t, `"hello, world"`, toks[0].Lexeme)
}

func TestScanMultilineString(t *testing.T) {
	toks, errs := scanAll(t, "\"line1\nline2\" nil")
	require.Empty(t, *errs)
	require.Equal(t, token.String, toks[0].Type)
	require.Equal(t, 2, toks[1].Line)
}

func TestScanUnterminatedString(t *testing.T) {
	toks, errs := scanAll(t, `"unterminated`)
	require.Equal(t, token.Error, toks[0].Type)
	require.Equal(t, "Unterminated string.", toks[0].Lexeme)
	require.Len(t, *errs, 1)
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	toks, errs := scanAll(t, "and class myVar _private or2")
	require.Empty(t, *errs)
	require.Equal(t, []token.Type{
		token.And, token.Class, token.Identifier, token.Identifier,
		token.Identifier, token.Eof,
	}, types(toks))
}

func TestScanLineComments(t *testing.T) {
	toks, errs := scanAll(t, "var a = 1; // assign a\nvar b = 2;")
	require.Empty(t, *errs)
	// the comment produces no token; "var" on the second line follows directly
	var found bool
	for _, tok := range toks {
		if tok.Lexeme == "b" {
			found = true
			require.Equal(t, 2, tok.Line)
		}
	}
	require.True(t, found)
}

func TestScanUnexpectedCharacter(t *testing.T) {
	toks, errs := scanAll(t, "@")
	require.Equal(t, token.Error, toks[0].Type)
	require.Len(t, *errs, 1)
}

func TestScanEofIsSticky(t *testing.T) {
	toks, _ := scanAll(t, "")
	require.Equal(t, token.Eof, toks[0].Type)

	var s scanner.Scanner
	var errs scanner.ErrorList
	s.Init("t", []byte(""), &errs)
	require.Equal(t, token.Eof, s.Scan().Type)
	require.Equal(t, token.Eof, s.Scan().Type)
}
