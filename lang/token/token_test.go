package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeString(t *testing.T) {
	for typ := Illegal; typ < maxType; typ++ {
		require.NotEmpty(t, typ.String())
	}
	require.Equal(t, "illegal token", maxType.String())
	require.Equal(t, "illegal token", Type(255).String())
}

func TestLookup(t *testing.T) {
	cases := map[string]Type{
		"and": And, "class": Class, "else": Else, "false": False,
		"for": For, "fun": Fun, "if": If, "nil": Nil, "or": Or,
		"print": Print, "return": Return, "super": Super, "this": This,
		"true": True, "var": Var, "while": While,
		"andx": Identifier, "Class": Identifier, "": Identifier,
	}
	for lexeme, want := range cases {
		require.Equal(t, want, Lookup(lexeme), "lexeme %q", lexeme)
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: Identifier, Lexeme: "foo", Line: 3}
	require.Equal(t, "foo", tok.String())

	tok = Token{Type: Eof, Line: 4}
	require.Equal(t, Eof.String(), tok.String())
}
