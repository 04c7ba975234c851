// Package scanner turns a source buffer into a stream of tokens for the
// compiler to consume.
package scanner

import (
	"go/scanner"
	"go/token"
	"unsafe"

	langtok "github.com/mna/loxvm/lang/token"
)

type (
	// Error and ErrorList are reused from go/scanner: a single scan/compile
	// diagnostic, and an accumulating, sortable list of them.
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)

// PrintError prints a list of errors to w, one per line, sorted by position.
var PrintError = scanner.PrintError

// Scanner produces one Token at a time from a source buffer it borrows but
// never copies: every Token.Lexeme is a slice of src, which must outlive the
// tokens it produced. The zero value is not usable; call Init first.
type Scanner struct {
	filename string
	src      []byte
	errs     *ErrorList

	start   int // byte offset of the lexeme currently being scanned
	current int // byte offset of the next unread byte
	line    int
}

// Init (re)sets s to scan src, reporting errors against filename (used only
// to label diagnostics) and appending them to errs.
func (s *Scanner) Init(filename string, src []byte, errs *ErrorList) {
	s.filename = filename
	s.src = src
	s.errs = errs
	s.start = 0
	s.current = 0
	s.line = 1
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.src)
}

func (s *Scanner) advance() byte {
	c := s.src[s.current]
	s.current++
	return c
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.src[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) makeToken(typ langtok.Type) langtok.Token {
	return langtok.Token{
		Type:   typ,
		Lexeme: lexemeString(s.src[s.start:s.current]),
		Line:   s.line,
	}
}

// lexemeString views b as a string without copying it, so a Token.Lexeme
// genuinely aliases the scanner's source buffer rather than cloning a slice
// of it. The caller must not mutate or discard src while any Token survives.
func lexemeString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// errorToken reports msg against the scanner's current line (for an
// unterminated multi-line string, the line where the source ends) and returns a
// token of type Error carrying msg as its lexeme, so the compiler can surface
// it without a second lookup.
func (s *Scanner) errorToken(msg string) langtok.Token {
	if s.errs != nil {
		s.errs.Add(token.Position{Filename: s.filename, Line: s.line}, msg)
	}
	return langtok.Token{Type: langtok.Error, Lexeme: msg, Line: s.line}
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && !s.isAtEnd() {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

// Scan returns the next token in the source. Once it reaches the end of the
// source it returns an Eof token on every subsequent call.
func (s *Scanner) Scan() langtok.Token {
	s.skipWhitespace()
	s.start = s.current

	if s.isAtEnd() {
		return s.makeToken(langtok.Eof)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.makeToken(langtok.LeftParen)
	case ')':
		return s.makeToken(langtok.RightParen)
	case '{':
		return s.makeToken(langtok.LeftBrace)
	case '}':
		return s.makeToken(langtok.RightBrace)
	case ';':
		return s.makeToken(langtok.Semicolon)
	case ',':
		return s.makeToken(langtok.Comma)
	case '.':
		return s.makeToken(langtok.Dot)
	case '-':
		return s.makeToken(langtok.Minus)
	case '+':
		return s.makeToken(langtok.Plus)
	case '/':
		return s.makeToken(langtok.Slash)
	case '*':
		return s.makeToken(langtok.Star)
	case '!':
		if s.match('=') {
			return s.makeToken(langtok.BangEqual)
		}
		return s.makeToken(langtok.Bang)
	case '=':
		if s.match('=') {
			return s.makeToken(langtok.EqualEqual)
		}
		return s.makeToken(langtok.Equal)
	case '<':
		if s.match('=') {
			return s.makeToken(langtok.LessEqual)
		}
		return s.makeToken(langtok.Less)
	case '>':
		if s.match('=') {
			return s.makeToken(langtok.GreaterEqual)
		}
		return s.makeToken(langtok.Greater)
	case '"':
		return s.string()
	}

	return s.errorToken("Unexpected character.")
}

func (s *Scanner) identifier() langtok.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lexeme := lexemeString(s.src[s.start:s.current])
	return s.makeToken(langtok.Lookup(lexeme))
}

func (s *Scanner) number() langtok.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // consume the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.makeToken(langtok.Number)
}

// string scans a "-delimited literal, which may span multiple lines; the
// line counter tracks embedded newlines so later diagnostics stay accurate.
func (s *Scanner) string() langtok.Token {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // the closing quote
	return s.makeToken(langtok.String)
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
