package parser

import (
	"fmt"
	"strconv"

	"tally/internal/ast"
	"tally/internal/lexer"
)

// Binding strength, lowest first. Every level folds to the left.
var (
	comparisonOps     = []lexer.TokenType{lexer.EQ, lexer.NOT_EQ, lexer.LT, lexer.GT, lexer.LT_EQ, lexer.GT_EQ}
	additiveOps       = []lexer.TokenType{lexer.PLUS, lexer.MINUS}
	multiplicativeOps = []lexer.TokenType{lexer.ASTERISK, lexer.SLASH}
	powerOps          = []lexer.TokenType{lexer.POWER}
)

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseBinary(comparisonOps, p.parseAdditive)
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	return p.parseBinary(additiveOps, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	return p.parseBinary(multiplicativeOps, p.parsePower)
}

func (p *Parser) parsePower() (ast.Expression, error) {
	return p.parseBinary(powerOps, p.parsePrimary)
}

func (p *Parser) parseBinary(ops []lexer.TokenType, operand func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.curTokenIn(ops) {
		op := p.curToken
		p.nextToken()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOperation{Token: op, Left: left, Operator: op.Literal, Right: right}
	}
	return left, nil
}

func (p *Parser) curTokenIn(types []lexer.TokenType) bool {
	for _, t := range types {
		if p.curTokenIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.curToken.Type {
	case lexer.NUMBER:
		return p.parseNumberLiteral()
	case lexer.STRING:
		lit := &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken()
		return lit, nil
	case lexer.IDENT:
		return p.parseIdentifier()
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseMapLiteral()
	case lexer.LPAREN:
		p.nextToken()
		exp, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		return exp, nil
	default:
		return nil, p.unexpected("expected expression")
	}
}

func (p *Parser) parseNumberLiteral() (ast.Expression, error) {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		return nil, p.fail(&Error{
			Msg:   fmt.Sprintf("could not parse %q as number", p.curToken.Literal),
			Token: p.curToken,
		})
	}
	lit.Value = value
	p.nextToken()
	return lit, nil
}

// parseIdentifier handles a bare name, a call `name(args)`, an index
// `name[expr]` and a key lookup `name["key"]`.
func (p *Parser) parseIdentifier() (ast.Expression, error) {
	tok := p.curToken
	p.nextToken()

	switch p.curToken.Type {
	case lexer.LPAREN:
		p.nextToken()
		args, err := p.parseExpressionList(lexer.RPAREN)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Token: tok, Function: tok.Literal, Arguments: args}, nil

	case lexer.LBRACKET:
		open := p.curToken
		target := &ast.Identifier{Token: tok, Value: tok.Literal}
		p.nextToken()

		if p.curTokenIs(lexer.STRING) {
			key := p.curToken.Literal
			p.nextToken()
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			return &ast.MapAccess{Token: open, Map: target, Key: key}, nil
		}

		index, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.ArrayAccess{Token: open, Array: target, Index: index}, nil
	}

	return &ast.Identifier{Token: tok, Value: tok.Literal}, nil
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	array := &ast.ArrayLiteral{Token: p.curToken}
	p.nextToken()

	elements, err := p.parseExpressionList(lexer.RBRACKET)
	if err != nil {
		return nil, err
	}
	array.Elements = elements
	return array, nil
}

// parseExpressionList parses `expr, expr, ...` up to and including end. The
// opening delimiter has already been consumed.
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]ast.Expression, error) {
	list := []ast.Expression{}

	if !p.curTokenIs(end) {
		for {
			exp, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			list = append(list, exp)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(end); err != nil {
		return nil, err
	}
	return list, nil
}

func (p *Parser) parseMapLiteral() (ast.Expression, error) {
	lit := &ast.MapLiteral{Token: p.curToken, Entries: []ast.MapEntry{}}
	p.nextToken()

	if !p.curTokenIs(lexer.RBRACE) {
		for {
			if !p.curTokenIs(lexer.STRING) {
				return nil, p.unexpected("expected string key in map literal")
			}
			key := p.curToken.Literal
			p.nextToken()

			if _, err := p.expect(lexer.COLON); err != nil {
				return nil, err
			}
			value, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			lit.Entries = append(lit.Entries, ast.MapEntry{Key: key, Value: value})

			if !p.match(lexer.COMMA) {
				break
			}
		}
	}

	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return lit, nil
}
