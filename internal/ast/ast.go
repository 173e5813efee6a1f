package ast

import (
	"bytes"
	"strconv"
	"strings"

	"tally/internal/lexer"
)

type Node interface {
	TokenLiteral() string
	Pos() (line, column int)
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root of the tree and owns every node below it.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() (int, int) {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return 1, 1
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// Functions returns the function declarations of the program in source
// order, including those nested inside blocks.
func (p *Program) Functions() []*FunctionDeclaration {
	var out []*FunctionDeclaration
	var walk func(stmts []Statement)
	walk = func(stmts []Statement) {
		for _, s := range stmts {
			switch s := s.(type) {
			case *FunctionDeclaration:
				out = append(out, s)
				walk(s.Body.Statements)
			case *BlockStatement:
				walk(s.Statements)
			case *IfStatement:
				walk(s.Consequence.Statements)
				if s.Alternative != nil {
					walk(s.Alternative.Statements)
				}
			case *WhileStatement:
				walk(s.Body.Statements)
			case *ForStatement:
				walk(s.Body.Statements)
			}
		}
	}
	walk(p.Statements)
	return out
}

// Statements

type VariableDeclaration struct {
	Token lexer.Token // let
	Name  string
	Value Expression
}

func (vd *VariableDeclaration) statementNode()       {}
func (vd *VariableDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VariableDeclaration) Pos() (int, int)      { return vd.Token.Line, vd.Token.Column }
func (vd *VariableDeclaration) String() string {
	return "let " + vd.Name + " = " + vd.Value.String() + ";"
}

type AssignmentStatement struct {
	Token lexer.Token // the identifier
	Name  string
	Value Expression
}

func (as *AssignmentStatement) statementNode()       {}
func (as *AssignmentStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignmentStatement) Pos() (int, int)      { return as.Token.Line, as.Token.Column }
func (as *AssignmentStatement) String() string {
	return as.Name + " = " + as.Value.String() + ";"
}

type PrintStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Literal }
func (ps *PrintStatement) Pos() (int, int)      { return ps.Token.Line, ps.Token.Column }
func (ps *PrintStatement) String() string {
	return "print(" + ps.Expression.String() + ");"
}

type BlockStatement struct {
	Token      lexer.Token // {
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Pos() (int, int)      { return bs.Token.Line, bs.Token.Column }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

type IfStatement struct {
	Token       lexer.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() (int, int)      { return is.Token.Line, is.Token.Column }
func (is *IfStatement) String() string {
	s := "if (" + is.Condition.String() + ") " + is.Consequence.String()
	if is.Alternative != nil {
		s += " else " + is.Alternative.String()
	}
	return s
}

type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() (int, int)      { return ws.Token.Line, ws.Token.Column }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

// ForStatement is a C-style loop. Init, Condition and Update may each be nil.
// Init is a *VariableDeclaration or *AssignmentStatement; Update is an
// *AssignmentStatement.
type ForStatement struct {
	Token     lexer.Token
	Init      Statement
	Condition Expression
	Update    Statement
	Body      *BlockStatement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() (int, int)      { return fs.Token.Line, fs.Token.Column }
func (fs *ForStatement) String() string {
	var init, cond, update string
	if fs.Init != nil {
		init = strings.TrimSuffix(fs.Init.String(), ";")
	}
	if fs.Condition != nil {
		cond = " " + fs.Condition.String()
	}
	if fs.Update != nil {
		update = " " + strings.TrimSuffix(fs.Update.String(), ";")
	}
	return "for (" + init + ";" + cond + ";" + update + ") " + fs.Body.String()
}

type FunctionDeclaration struct {
	Token      lexer.Token
	Name       string
	Parameters []string
	Body       *BlockStatement
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) Pos() (int, int)      { return fd.Token.Line, fd.Token.Column }
func (fd *FunctionDeclaration) String() string {
	return "function " + fd.Name + "(" + strings.Join(fd.Parameters, ", ") + ") " + fd.Body.String()
}

type ReturnStatement struct {
	Token       lexer.Token
	ReturnValue Expression // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Pos() (int, int)      { return rs.Token.Line, rs.Token.Column }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return;"
	}
	return "return " + rs.ReturnValue.String() + ";"
}

// Expressions

type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) Pos() (int, int)      { return nl.Token.Line, nl.Token.Column }
func (nl *NumberLiteral) String() string {
	return strconv.FormatFloat(nl.Value, 'f', -1, 64)
}

type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() (int, int)      { return sl.Token.Line, sl.Token.Column }
func (sl *StringLiteral) String() string       { return quote(sl.Value) }

// quote renders s as a string literal using only the escapes the lexer
// reads back; every other byte is written as is.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() (int, int)      { return i.Token.Line, i.Token.Column }
func (i *Identifier) String() string       { return i.Value }

type BinaryOperation struct {
	Token    lexer.Token // the operator
	Left     Expression
	Operator string
	Right    Expression
}

func (bo *BinaryOperation) expressionNode()      {}
func (bo *BinaryOperation) TokenLiteral() string { return bo.Token.Literal }
func (bo *BinaryOperation) Pos() (int, int)      { return bo.Token.Line, bo.Token.Column }
func (bo *BinaryOperation) String() string {
	return "(" + bo.Left.String() + " " + bo.Operator + " " + bo.Right.String() + ")"
}

type FunctionCall struct {
	Token     lexer.Token // the callee identifier
	Function  string
	Arguments []Expression
}

func (fc *FunctionCall) expressionNode()      {}
func (fc *FunctionCall) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCall) Pos() (int, int)      { return fc.Token.Line, fc.Token.Column }
func (fc *FunctionCall) String() string {
	return fc.Function + "(" + joinExpressions(fc.Arguments) + ")"
}

type ArrayLiteral struct {
	Token    lexer.Token // [
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Pos() (int, int)      { return al.Token.Line, al.Token.Column }
func (al *ArrayLiteral) String() string       { return "[" + joinExpressions(al.Elements) + "]" }

// MapEntry is one "key": value pair of a map literal.
type MapEntry struct {
	Key   string
	Value Expression
}

// MapLiteral keeps its entries in source order.
type MapLiteral struct {
	Token   lexer.Token // {
	Entries []MapEntry
}

func (ml *MapLiteral) expressionNode()      {}
func (ml *MapLiteral) TokenLiteral() string { return ml.Token.Literal }
func (ml *MapLiteral) Pos() (int, int)      { return ml.Token.Line, ml.Token.Column }
func (ml *MapLiteral) String() string {
	parts := make([]string, 0, len(ml.Entries))
	for _, e := range ml.Entries {
		parts = append(parts, quote(e.Key)+": "+e.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type ArrayAccess struct {
	Token lexer.Token // [
	Array Expression
	Index Expression
}

func (aa *ArrayAccess) expressionNode()      {}
func (aa *ArrayAccess) TokenLiteral() string { return aa.Token.Literal }
func (aa *ArrayAccess) Pos() (int, int)      { return aa.Token.Line, aa.Token.Column }
func (aa *ArrayAccess) String() string {
	return aa.Array.String() + "[" + aa.Index.String() + "]"
}

type MapAccess struct {
	Token lexer.Token // [
	Map   Expression
	Key   string
}

func (ma *MapAccess) expressionNode()      {}
func (ma *MapAccess) TokenLiteral() string { return ma.Token.Literal }
func (ma *MapAccess) Pos() (int, int)      { return ma.Token.Line, ma.Token.Column }
func (ma *MapAccess) String() string {
	return ma.Map.String() + "[" + quote(ma.Key) + "]"
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}
