package lexer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLex is wrapped by every *Error.
var ErrLex = errors.New("lex error")

// Error reports a character the lexer could not classify. The lexer itself
// never fails; it emits an ILLEGAL token and the parser turns it into an Error.
type Error struct {
	Char   string
	Line   int
	Column int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: unexpected character %q", e.Line, e.Column, e.Char)
}

func (e *Error) Unwrap() error { return ErrLex }

// Lexer produces tokens on demand from a source string.
type Lexer struct {
	input  string
	pos    int // index of ch
	ch     byte
	line   int
	column int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 1}
	if len(input) > 0 {
		l.ch = input[0]
	}
	return l
}

// NextToken returns the next token. Once the input is exhausted every call
// returns EOF.
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	if l.pos >= len(l.input) {
		return Token{Type: EOF, Line: l.line, Column: l.column}
	}

	line, col := l.line, l.column
	tok := func(t TokenType, lit string) Token {
		return Token{Type: t, Literal: lit, Line: line, Column: col}
	}

	switch ch := l.ch; {
	case ch == '"':
		return tok(STRING, l.readString())
	case isDigit(ch):
		return tok(NUMBER, l.readNumber())
	case isLetter(ch):
		ident := l.readIdentifier()
		return tok(LookupIdent(ident), ident)
	}

	if two, ok := twoCharOps[string([]byte{l.ch, l.peekChar()})]; ok {
		lit := l.input[l.pos : l.pos+2]
		l.readChar()
		l.readChar()
		return tok(two, lit)
	}

	ch := l.ch
	l.readChar()
	if t, ok := singleCharOps[ch]; ok {
		return tok(t, string(ch))
	}
	return tok(ILLEGAL, string(ch))
}

// Tokenize drains the lexer. The final element is always the EOF token.
func (l *Lexer) Tokenize() []Token {
	var out []Token
	for {
		t := l.NextToken()
		out = append(out, t)
		if t.Type == EOF {
			return out
		}
	}
}

var twoCharOps = map[string]TokenType{
	"==": EQ,
	"!=": NOT_EQ,
	"<=": LT_EQ,
	">=": GT_EQ,
	"**": POWER,
}

var singleCharOps = map[byte]TokenType{
	'+': PLUS,
	'-': MINUS,
	'*': ASTERISK,
	'/': SLASH,
	'=': ASSIGN,
	'<': LT,
	'>': GT,
	';': SEMICOLON,
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	',': COMMA,
	'.': DOT,
	':': COLON,
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		return
	}
	if l.ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	if l.pos < len(l.input) {
		l.ch = l.input[l.pos]
	} else {
		l.ch = 0
	}
}

func (l *Lexer) peekChar() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

// skipTrivia skips whitespace and // comments, in any order and any number.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.input) {
		switch {
		case isSpace(l.ch):
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.pos < len(l.input) && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readString() string {
	var b strings.Builder
	l.readChar() // opening quote
	for l.pos < len(l.input) && l.ch != '"' {
		if l.ch == '\\' {
			l.readChar()
			if l.pos >= len(l.input) {
				break
			}
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(l.ch)
			}
		} else {
			b.WriteByte(l.ch)
		}
		l.readChar()
	}
	if l.ch == '"' {
		l.readChar()
	}
	return b.String()
}

// readNumber accepts any run of digits and dots; validation happens in the parser.
func (l *Lexer) readNumber() string {
	start := l.pos
	for l.pos < len(l.input) && (isDigit(l.ch) || l.ch == '.') {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.input) && (isLetter(l.ch) || isDigit(l.ch)) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}
