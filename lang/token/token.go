// Package token defines the lexical token kinds produced by the scanner and
// consumed by the compiler.
package token

// A Type identifies the lexical class of a Token.
type Type uint8

//nolint:revive
const (
	Illegal Type = iota
	Eof
	Error // carries a diagnostic message instead of a lexeme

	// Single-character punctuation.
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character operators.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	maxType
)

func (t Type) String() string {
	if int(t) < len(typeNames) {
		if name := typeNames[t]; name != "" {
			return name
		}
	}
	return "illegal token"
}

var typeNames = [...]string{
	Illegal:      "illegal token",
	Eof:          "end of file",
	Error:        "error",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	Comma:        ",",
	Dot:          ".",
	Minus:        "-",
	Plus:         "+",
	Semicolon:    ";",
	Slash:        "/",
	Star:         "*",
	Bang:         "!",
	BangEqual:    "!=",
	Equal:        "=",
	EqualEqual:   "==",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Identifier:   "identifier",
	String:       "string",
	Number:       "number",
	And:          "and",
	Class:        "class",
	Else:         "else",
	False:        "false",
	For:          "for",
	Fun:          "fun",
	If:           "if",
	Nil:          "nil",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
}

// keywords maps a keyword lexeme to its Type. Populated from typeNames so the
// two tables cannot drift apart.
var keywords = func() map[string]Type {
	m := make(map[string]Type, 16)
	for _, t := range []Type{And, Class, Else, False, For, Fun, If, Nil, Or,
		Print, Return, Super, This, True, Var, While} {
		m[typeNames[t]] = t
	}
	return m
}()

// Lookup returns Identifier unless lexeme names one of the reserved keywords,
// in which case it returns the keyword's Type.
func Lookup(lexeme string) Type {
	if t, ok := keywords[lexeme]; ok {
		return t
	}
	return Identifier
}

// A Token is a single lexical unit: its type, a zero-copy view of the
// lexeme in the source buffer, and the 1-based source line it starts on.
//
// The Lexeme slice borrows memory from the source buffer passed to the
// scanner; it must not outlive that buffer.
type Token struct {
	Type   Type
	Lexeme string
	Line   int
}

// String returns the token's lexeme, or its type's name if it has no lexeme
// of its own (Eof). For an Error token the lexeme is its message.
func (t Token) String() string {
	if t.Lexeme != "" {
		return t.Lexeme
	}
	return t.Type.String()
}
