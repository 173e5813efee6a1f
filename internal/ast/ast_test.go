package ast

import (
	"strings"
	"testing"

	"tally/internal/lexer"
)

func ident(name string) *Identifier {
	return &Identifier{Token: lexer.Token{Type: lexer.IDENT, Literal: name}, Value: name}
}

func num(v float64) *NumberLiteral {
	return &NumberLiteral{Value: v}
}

func sampleProgram() *Program {
	body := &BlockStatement{Statements: []Statement{
		&ReturnStatement{ReturnValue: &BinaryOperation{Left: ident("n"), Operator: "*", Right: num(2)}},
	}}
	return &Program{Statements: []Statement{
		&FunctionDeclaration{Name: "double", Parameters: []string{"n"}, Body: body},
		&VariableDeclaration{Name: "m", Value: &MapLiteral{Entries: []MapEntry{
			{Key: "xs", Value: &ArrayLiteral{Elements: []Expression{num(1), num(2.5)}}},
		}}},
		&PrintStatement{Expression: &FunctionCall{Function: "double", Arguments: []Expression{
			&ArrayAccess{Array: &MapAccess{Map: ident("m"), Key: "xs"}, Index: num(0)},
		}}},
	}}
}

func TestProgramString(t *testing.T) {
	want := `function double(n) { return (n * 2); }
let m = {"xs": [1, 2.5]};
print(double(m["xs"][0]));
`
	if got := sampleProgram().String(); got != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, got)
	}
}

func TestForStatementString(t *testing.T) {
	fs := &ForStatement{
		Init:      &VariableDeclaration{Name: "i", Value: num(0)},
		Condition: &BinaryOperation{Left: ident("i"), Operator: "<", Right: num(3)},
		Update:    &AssignmentStatement{Name: "i", Value: &BinaryOperation{Left: ident("i"), Operator: "+", Right: num(1)}},
		Body:      &BlockStatement{},
	}
	if got, want := fs.String(), "for (let i = 0; (i < 3); i = (i + 1)) { }"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	empty := &ForStatement{Body: &BlockStatement{}}
	if got, want := empty.String(), "for (;;) { }"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestPrintTree(t *testing.T) {
	var sb strings.Builder
	if err := Print(&sb, sampleProgram()); err != nil {
		t.Fatal(err)
	}
	want := `Program:
  FunctionDeclaration: double
    Parameters: n
    Body:
      Block:
        ReturnStatement:
          BinaryOperation: *
            Identifier: n
            NumberLiteral: 2
  VariableDeclaration: m
    MapLiteral:
      "xs":
        ArrayLiteral:
          NumberLiteral: 1
          NumberLiteral: 2.5
  PrintStatement:
    FunctionCall: double
      ArrayAccess:
        MapAccess: key="xs"
          Identifier: m
        NumberLiteral: 0
`
	if got := sb.String(); got != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, got)
	}
}

func TestFunctionsFindsNestedDeclarations(t *testing.T) {
	inner := &FunctionDeclaration{Name: "inner", Body: &BlockStatement{}}
	outer := &FunctionDeclaration{Name: "outer", Body: &BlockStatement{Statements: []Statement{inner}}}
	p := &Program{Statements: []Statement{
		outer,
		&IfStatement{Condition: num(1), Consequence: &BlockStatement{Statements: []Statement{
			&FunctionDeclaration{Name: "cond", Body: &BlockStatement{}},
		}}},
	}}
	var names []string
	for _, fd := range p.Functions() {
		names = append(names, fd.Name)
	}
	if got := strings.Join(names, ","); got != "outer,inner,cond" {
		t.Fatalf("got %s", got)
	}
}
