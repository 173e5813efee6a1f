package lexer

import (
	"reflect"
	"testing"
)

func typesOf(tokens []Token) []TokenType {
	out := make([]TokenType, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := New(src).Tokenize()
	if gotTypes := typesOf(got); !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v", src, want, gotTypes)
	}
	return got
}

func TestNextTokenStatements(t *testing.T) {
	src := `let x = 5;
function add(a, b) { return a + b; }
print(add(x, 2.5));`
	wantTypes(t, src, []TokenType{
		LET, IDENT, ASSIGN, NUMBER, SEMICOLON,
		FUNCTION, IDENT, LPAREN, IDENT, COMMA, IDENT, RPAREN, LBRACE,
		RETURN, IDENT, PLUS, IDENT, SEMICOLON, RBRACE,
		PRINT, LPAREN, IDENT, LPAREN, IDENT, COMMA, NUMBER, RPAREN, RPAREN, SEMICOLON,
		EOF,
	})
}

func TestTwoCharacterOperators(t *testing.T) {
	toks := wantTypes(t, "== != <= >= ** = < > * !", []TokenType{
		EQ, NOT_EQ, LT_EQ, GT_EQ, POWER, ASSIGN, LT, GT, ASTERISK, ILLEGAL, EOF,
	})
	if toks[4].Literal != "**" {
		t.Fatalf("want literal **, got %q", toks[4].Literal)
	}
}

func TestPunctuation(t *testing.T) {
	wantTypes(t, `{ "k": [1, 2] }.`, []TokenType{
		LBRACE, STRING, COLON, LBRACKET, NUMBER, COMMA, NUMBER, RBRACKET, RBRACE, DOT, EOF,
	})
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"plain"`, "plain"},
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"say \"hi\""`, `say "hi"`},
		{`"back\\slash"`, `back\slash`},
		{`"\q"`, "q"},
		{`"unterminated`, "unterminated"},
	}
	for _, tt := range tests {
		tok := New(tt.src).NextToken()
		if tok.Type != STRING || tok.Literal != tt.want {
			t.Errorf("%s: want STRING %q, got %v %q", tt.src, tt.want, tok.Type, tok.Literal)
		}
	}
}

func TestNumbersAreRunsOfDigitsAndDots(t *testing.T) {
	toks := wantTypes(t, "42 3.14 1.2.3", []TokenType{NUMBER, NUMBER, NUMBER, EOF})
	for i, want := range []string{"42", "3.14", "1.2.3"} {
		if toks[i].Literal != want {
			t.Errorf("token %d: want %q, got %q", i, want, toks[i].Literal)
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := wantTypes(t, "let letter _x print2 while for function return if else",
		[]TokenType{LET, IDENT, IDENT, IDENT, WHILE, FOR, FUNCTION, RETURN, IF, ELSE, EOF})
	if toks[1].Literal != "letter" {
		t.Fatalf("want letter, got %q", toks[1].Literal)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	src := `// leading
// another
let x = 1; // trailing
// last`
	wantTypes(t, src, []TokenType{LET, IDENT, ASSIGN, NUMBER, SEMICOLON, EOF})
}

func TestSlashIsDivisionOutsideComments(t *testing.T) {
	wantTypes(t, "a / b", []TokenType{IDENT, SLASH, IDENT, EOF})
}

func TestIllegalCharacterDoesNotStopLexing(t *testing.T) {
	toks := wantTypes(t, "a @ b", []TokenType{IDENT, ILLEGAL, IDENT, EOF})
	if toks[1].Literal != "@" {
		t.Fatalf("want @, got %q", toks[1].Literal)
	}
}

func TestPositions(t *testing.T) {
	toks := New("let x\n  = \"s\";").Tokenize()
	want := []struct{ line, col int }{{1, 1}, {1, 5}, {2, 3}, {2, 5}, {2, 8}}
	for i, w := range want {
		if toks[i].Line != w.line || toks[i].Column != w.col {
			t.Errorf("token %d (%q): want %d:%d, got %d:%d",
				i, toks[i].Literal, w.line, w.col, toks[i].Line, toks[i].Column)
		}
	}
}

func TestEOFIsSticky(t *testing.T) {
	for _, src := range []string{"", "   ", "// only", "x", `"open`} {
		l := New(src)
		var eofs int
		for i := 0; i < 10; i++ {
			if l.NextToken().Type == EOF {
				eofs++
			}
		}
		toks := New(src).Tokenize()
		if toks[len(toks)-1].Type != EOF {
			t.Fatalf("%q: Tokenize must end with EOF", src)
		}
		for _, tok := range toks[:len(toks)-1] {
			if tok.Type == EOF {
				t.Fatalf("%q: EOF before the end of the stream", src)
			}
		}
		if eofs < 9 {
			t.Fatalf("%q: want EOF to repeat, got %d EOFs in 10 calls", src, eofs)
		}
	}
}

func TestTokenTypeString(t *testing.T) {
	if got := RPAREN.String(); got != "')'" {
		t.Fatalf("want ')', got %s", got)
	}
	if got := TokenType(999).String(); got != "TokenType(999)" {
		t.Fatalf("unexpected %s", got)
	}
}
