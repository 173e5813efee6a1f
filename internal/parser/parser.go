package parser

import (
	"errors"
	"fmt"
	"strconv"

	"tally/internal/ast"
	"tally/internal/lexer"
)

// ErrParse is wrapped by every *Error.
var ErrParse = errors.New("parse error")

// Error reports the first token that did not fit the grammar.
type Error struct {
	Msg   string
	Token lexer.Token
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Token.Line, e.Token.Column, e.Msg)
}

func (e *Error) Unwrap() error { return ErrParse }

// IsIncomplete reports whether err was caused by running out of input, which
// means more source could still make the program valid.
func IsIncomplete(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Token.Type == lexer.EOF
	}
	return false
}

// Parser is a recursive-descent parser with one token of lookahead.
type Parser struct {
	l        *lexer.Lexer
	curToken lexer.Token
	errors   []error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	return p
}

// Parse is shorthand for New(lexer.New(src)).ParseProgram().
func Parse(src string) (*ast.Program, error) {
	return New(lexer.New(src)).ParseProgram()
}

// Errors returns the errors recorded so far. Parsing stops at the first one.
func (p *Parser) Errors() []error {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

// match consumes the current token if it has type t.
func (p *Parser) match(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes and returns the current token, failing unless it has type t.
func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	tok := p.curToken
	if tok.Type != t {
		return tok, p.unexpected(fmt.Sprintf("expected %s", t))
	}
	p.nextToken()
	return tok, nil
}

func (p *Parser) unexpected(context string) error {
	if p.curTokenIs(lexer.ILLEGAL) {
		return p.fail(&lexer.Error{Char: p.curToken.Literal, Line: p.curToken.Line, Column: p.curToken.Column})
	}
	return p.fail(&Error{
		Msg:   fmt.Sprintf("%s, got %s", context, describe(p.curToken)),
		Token: p.curToken,
	})
}

func (p *Parser) fail(err error) error {
	p.errors = append(p.errors, err)
	return err
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.STRING:
		return strconv.Quote(tok.Literal)
	default:
		return "'" + tok.Literal + "'"
	}
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}
