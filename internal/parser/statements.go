package parser

import (
	"tally/internal/ast"
	"tally/internal/lexer"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.curToken.Type {
	case lexer.LET:
		stmt, err := p.parseVariableDeclaration()
		if err != nil {
			return nil, err
		}
		_, err = p.expect(lexer.SEMICOLON)
		return stmt, err
	case lexer.PRINT:
		return p.parsePrintStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.IDENT:
		stmt, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		_, err = p.expect(lexer.SEMICOLON)
		return stmt, err
	default:
		return nil, p.unexpected("expected statement")
	}
}

// parseVariableDeclaration parses `let name = expr` without the semicolon.
func (p *Parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	stmt := &ast.VariableDeclaration{Token: p.curToken}
	p.nextToken()

	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	stmt.Name = name.Literal

	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	if stmt.Value, err = p.parseExpression(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseAssignment parses `name = expr` without the semicolon.
func (p *Parser) parseAssignment() (*ast.AssignmentStatement, error) {
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	stmt := &ast.AssignmentStatement{Token: name, Name: name.Literal}

	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return nil, err
	}
	if stmt.Value, err = p.parseExpression(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parsePrintStatement() (*ast.PrintStatement, error) {
	stmt := &ast.PrintStatement{Token: p.curToken}
	p.nextToken()

	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var err error
	if stmt.Expression, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseCondition parses `( expr )`.
func (p *Parser) parseCondition() (ast.Expression, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIfStatement() (*ast.IfStatement, error) {
	stmt := &ast.IfStatement{Token: p.curToken}
	p.nextToken()

	var err error
	if stmt.Condition, err = p.parseCondition(); err != nil {
		return nil, err
	}
	if stmt.Consequence, err = p.parseBlockStatement(); err != nil {
		return nil, err
	}
	if p.match(lexer.ELSE) {
		if stmt.Alternative, err = p.parseBlockStatement(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseWhileStatement() (*ast.WhileStatement, error) {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()

	var err error
	if stmt.Condition, err = p.parseCondition(); err != nil {
		return nil, err
	}
	if stmt.Body, err = p.parseBlockStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseForStatement() (*ast.ForStatement, error) {
	stmt := &ast.ForStatement{Token: p.curToken}
	p.nextToken()

	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}

	switch p.curToken.Type {
	case lexer.LET:
		init, err := p.parseVariableDeclaration()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	case lexer.IDENT:
		init, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}

	if !p.curTokenIs(lexer.SEMICOLON) {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Condition = cond
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}

	if p.curTokenIs(lexer.IDENT) {
		update, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		stmt.Update = update
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	var err error
	if stmt.Body, err = p.parseBlockStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	stmt := &ast.FunctionDeclaration{Token: p.curToken, Parameters: []string{}}
	p.nextToken()

	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	stmt.Name = name.Literal

	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	if !p.curTokenIs(lexer.RPAREN) {
		for {
			param, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			stmt.Parameters = append(stmt.Parameters, param.Literal)
			if !p.match(lexer.COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	if stmt.Body, err = p.parseBlockStatement(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken()

	if !p.curTokenIs(lexer.SEMICOLON) {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.ReturnValue = value
	}
	if _, err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseBlockStatement() (*ast.BlockStatement, error) {
	open, err := p.expect(lexer.LBRACE)
	if err != nil {
		return nil, err
	}
	block := &ast.BlockStatement{Token: open}
	block.Statements = []ast.Statement{}

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}

	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return block, nil
}
