package lexer

import (
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/token"
)

func TestBasicTokens(t *testing.T) {
	input := `= + - ! * / % < > ( ) { } [ ] @ : , . ; $ # ~ ?`

	expected := []token.TokenType{
		token.ASSIGN, token.PLUS, token.MINUS, token.BANG, token.ASTERISK,
		token.SLASH, token.PERCENT, token.LT, token.GT, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET,
		token.AT, token.COLON, token.COMMA, token.DOT, token.SEMICOLON,
		token.DOLLAR, token.HASH, token.TILDE, token.QUESTION,
		token.EOF,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("test[%d] - wrong type. expected=%s, got=%s (literal=%q)", i, exp, tok.Type, tok.Literal)
		}
	}
}

func TestMultiCharOperators(t *testing.T) {
	input := `== != <= >= <- := += &&= <<<= >>>= ^^ ?? ?. ?[ -> => :: <| |> @@ .. >>> <<<`

	expected := []struct {
		typ token.TokenType
		lit string
	}{
		{token.EQ, "=="}, {token.NOT_EQ, "!="}, {token.LT_EQ, "<="}, {token.GT_EQ, ">="},
		{token.MOVE, "<-"}, {token.CLONE, ":="}, {token.PLUS_ASSIGN, "+="},
		{token.LAND_ASSIGN, "&&="}, {token.ROTL_ASSIGN, "<<<="}, {token.ROTR_ASSIGN, ">>>="},
		{token.XOR, "^^"}, {token.COALESCE, "??"}, {token.SAFE_DOT, "?."}, {token.SAFE_INDEX, "?["},
		{token.ARROW, "->"}, {token.FAT_ARROW, "=>"}, {token.SCOPE, "::"},
		{token.PIPE_LEFT, "<|"}, {token.PIPE_RIGHT, "|>"}, {token.ATAT, "@@"},
		{token.DOTDOT, ".."}, {token.ROTR, ">>>"}, {token.ROTL, "<<<"},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ || tok.Literal != exp.lit {
			t.Fatalf("test[%d] - expected %s(%q), got %s(%q)", i, exp.typ, exp.lit, tok.Type, tok.Literal)
		}
	}
}

func TestCompoundBrackets(t *testing.T) {
	input := `[[ ]] [{ }] {{ }} ]]]`

	expected := []token.TokenType{
		token.MAKE_OPEN, token.MAKE_CLOSE, token.ARRAY_OPEN, token.ARRAY_CLOSE,
		token.TABLE_OPEN, token.TABLE_CLOSE, token.MAKE_CLOSE, token.RBRACKET,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("test[%d] - wrong type. expected=%s, got=%s", i, exp, tok.Type)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `def struct class enum typedef let var if elif else for in while return yield cast typeinfo generator`

	expected := []token.TokenType{
		token.DEF, token.STRUCT, token.CLASS, token.ENUM, token.TYPEDEF, token.LET, token.VAR,
		token.IF, token.ELIF, token.ELSE, token.FOR, token.IN, token.WHILE, token.RETURN,
		token.YIELD, token.CAST, token.TYPEINFO, token.GENERATOR,
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("test[%d] - expected %s, got %s (literal=%q)", i, exp, tok.Type, tok.Literal)
		}
	}
}

func TestScalarTypeKeywords(t *testing.T) {
	input := `int uint8 float3 range64 string`

	expected := []token.TokenType{token.T_INT, token.T_UINT8, token.T_FLOAT3, token.T_RANGE64, token.T_STRING}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp {
			t.Fatalf("test[%d] - expected %s, got %s", i, exp, tok.Type)
		}
		if !token.IsScalarType(tok.Type) {
			t.Errorf("test[%d] - expected %s to be a scalar type", i, tok.Type)
		}
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"hello"`, "hello"},
		{`""`, ""},
		{`"a\"b"`, `a\"b`},
		{`"x {f("y")} z"`, `x {f("y")} z`},
		{`"{c == '{'} z"`, `{c == '{'} z`},
		{`"{f('"')}"`, `{f('"')}`},
		{"\"multi\nline\"", "multi\nline"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.STRING {
			t.Fatalf("%s: expected STRING, got %s", tt.input, tok.Type)
		}
		if tok.Literal != tt.expected {
			t.Errorf("%s: expected literal %q, got %q", tt.input, tt.expected, tok.Literal)
		}
		if next := l.NextToken(); next.Type != token.EOF {
			t.Errorf("%s: expected EOF after string, got %s", tt.input, next.Type)
		}
	}
}

func TestCharLiterals(t *testing.T) {
	l := New(`'a' '\n'`)
	expected := []string{"a", `\n`}
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != token.CHAR || tok.Literal != exp {
			t.Fatalf("test[%d] - expected CHAR(%q), got %s(%q)", i, exp, tok.Type, tok.Literal)
		}
	}
}

func TestNumbers(t *testing.T) {
	input := `42 42u 42l 42ul 7u8 7i8 0x1F 0b101 1_000 3.14 2.0d 1e3 5f 1..5`

	expected := []struct {
		typ token.TokenType
		lit string
	}{
		{token.INT, "42"}, {token.UINT, "42"}, {token.INT64, "42"}, {token.UINT64, "42"},
		{token.UINT8, "7"}, {token.INT8, "7"}, {token.INT, "0x1F"}, {token.INT, "0b101"},
		{token.INT, "1_000"}, {token.FLOAT, "3.14"}, {token.DOUBLE, "2.0"}, {token.FLOAT, "1e3"},
		{token.FLOAT, "5"},
		{token.INT, "1"}, {token.DOTDOT, ".."}, {token.INT, "5"},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ || tok.Literal != exp.lit {
			t.Fatalf("test[%d] - expected %s(%q), got %s(%q)", i, exp.typ, exp.lit, tok.Type, tok.Literal)
		}
	}
}

func TestBadNumberSuffix(t *testing.T) {
	tok := New("12abc").NextToken()
	if tok.Type != token.ILLEGAL {
		t.Errorf("expected ILLEGAL, got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestComments(t *testing.T) {
	input := `a // line comment
/* block /* nested */ still comment */ b`

	l := New(input)
	for _, exp := range []string{"a", "b"} {
		tok := l.NextToken()
		if tok.Type != token.IDENT || tok.Literal != exp {
			t.Fatalf("expected IDENT(%q), got %s(%q)", exp, tok.Type, tok.Literal)
		}
	}
	if tok := l.NextToken(); tok.Type != token.EOF {
		t.Errorf("expected EOF, got %s", tok.Type)
	}
}

func TestReaderMacroToken(t *testing.T) {
	l := New("%sql~select 1~ x")
	tok := l.NextToken()
	if tok.Type != token.READER_MACRO || tok.Literal != "sql" {
		t.Fatalf("expected READER_MACRO(sql), got %s(%q)", tok.Type, tok.Literal)
	}

	var body []rune
	for {
		r, _, ok := l.NextRune()
		if !ok {
			t.Fatalf("unexpected end of input")
		}
		if r == '~' {
			break
		}
		body = append(body, r)
	}
	if string(body) != "select 1" {
		t.Errorf("expected body %q, got %q", "select 1", string(body))
	}
	if tok := l.NextToken(); tok.Type != token.IDENT || tok.Literal != "x" {
		t.Errorf("expected IDENT(x) after the macro, got %s(%q)", tok.Type, tok.Literal)
	}
}

func TestPercentIsModulo(t *testing.T) {
	l := New("a % b")
	expected := []token.TokenType{token.IDENT, token.PERCENT, token.IDENT}
	for i, exp := range expected {
		if tok := l.NextToken(); tok.Type != exp {
			t.Fatalf("test[%d] - expected %s, got %s", i, exp, tok.Type)
		}
	}
}

func TestSafeAs(t *testing.T) {
	l := New("v ?as circle ?assign")
	expected := []struct {
		typ token.TokenType
		lit string
	}{
		{token.IDENT, "v"}, {token.SAFE_AS, "?as"}, {token.IDENT, "circle"},
		{token.QUESTION, "?"}, {token.IDENT, "assign"},
	}
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ || tok.Literal != exp.lit {
			t.Fatalf("test[%d] - expected %s(%q), got %s(%q)", i, exp.typ, exp.lit, tok.Type, tok.Literal)
		}
	}
}

func TestSafeAsNeedsWordBoundary(t *testing.T) {
	l := New("c ?ask : b ?as")
	expected := []struct {
		typ token.TokenType
		lit string
	}{
		{token.IDENT, "c"}, {token.QUESTION, "?"}, {token.IDENT, "ask"},
		{token.COLON, ":"}, {token.IDENT, "b"}, {token.SAFE_AS, "?as"}, {token.EOF, ""},
	}
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ || tok.Literal != exp.lit {
			t.Fatalf("test[%d] - expected %s(%q), got %s(%q)", i, exp.typ, exp.lit, tok.Type, tok.Literal)
		}
	}
}

func TestPositionTracking(t *testing.T) {
	input := "let x\n  = 42"
	l := NewFile("main.das", input)

	expected := []token.Span{
		{File: "main.das", Line: 1, Column: 1, LastLine: 1, LastColumn: 3},
		{File: "main.das", Line: 1, Column: 5, LastLine: 1, LastColumn: 5},
		{File: "main.das", Line: 2, Column: 3, LastLine: 2, LastColumn: 3},
		{File: "main.das", Line: 2, Column: 5, LastLine: 2, LastColumn: 6},
	}
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Span != exp {
			t.Errorf("test[%d] - expected span %+v, got %+v", i, exp, tok.Span)
		}
	}
}

func TestNewAtOffsetsPositions(t *testing.T) {
	l := NewAt("main.das", "a + b", 3, 10)
	tok := l.NextToken()
	if tok.Span.Line != 3 || tok.Span.Column != 10 {
		t.Errorf("expected a at 3:10, got %d:%d", tok.Span.Line, tok.Span.Column)
	}
	l.NextToken()
	tok = l.NextToken()
	if tok.Span.Column != 14 {
		t.Errorf("expected b at column 14, got %d", tok.Span.Column)
	}
}

func TestUnicodeIdentifiers(t *testing.T) {
	l := New("café naïve")
	for _, exp := range []string{"café", "naïve"} {
		tok := l.NextToken()
		if tok.Type != token.IDENT || tok.Literal != exp {
			t.Fatalf("expected IDENT(%q), got %s(%q)", exp, tok.Type, tok.Literal)
		}
	}
}

func TestIllegalCharacter(t *testing.T) {
	tok := New("`").NextToken()
	if tok.Type != token.ILLEGAL || tok.Literal != "`" {
		t.Errorf("expected ILLEGAL(`), got %s(%q)", tok.Type, tok.Literal)
	}
}
