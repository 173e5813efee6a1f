package lexer

import "fmt"

type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL
	IDENT
	NUMBER
	STRING

	// Keywords
	LET
	PRINT
	IF
	ELSE
	WHILE
	FOR
	FUNCTION
	RETURN

	// Operators
	PLUS
	MINUS
	ASTERISK
	SLASH
	ASSIGN
	POWER
	EQ
	NOT_EQ
	LT
	GT
	LT_EQ
	GT_EQ

	// Punctuation
	SEMICOLON
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	COMMA
	DOT
	COLON
)

var keywords = map[string]TokenType{
	"let":      LET,
	"print":    PRINT,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"function": FUNCTION,
	"return":   RETURN,
}

var typeNames = [...]string{
	EOF:       "end of input",
	ILLEGAL:   "illegal",
	IDENT:     "identifier",
	NUMBER:    "number",
	STRING:    "string",
	LET:       "'let'",
	PRINT:     "'print'",
	IF:        "'if'",
	ELSE:      "'else'",
	WHILE:     "'while'",
	FOR:       "'for'",
	FUNCTION:  "'function'",
	RETURN:    "'return'",
	PLUS:      "'+'",
	MINUS:     "'-'",
	ASTERISK:  "'*'",
	SLASH:     "'/'",
	ASSIGN:    "'='",
	POWER:     "'**'",
	EQ:        "'=='",
	NOT_EQ:    "'!='",
	LT:        "'<'",
	GT:        "'>'",
	LT_EQ:     "'<='",
	GT_EQ:     "'>='",
	SEMICOLON: "';'",
	LPAREN:    "'('",
	RPAREN:    "')'",
	LBRACE:    "'{'",
	RBRACE:    "'}'",
	LBRACKET:  "'['",
	RBRACKET:  "']'",
	COMMA:     "','",
	DOT:       "'.'",
	COLON:     "':'",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(typeNames) && typeNames[t] != "" {
		return typeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// LookupIdent classifies an identifier-shaped word as a keyword or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return t.Literal
}
