package parser

import (
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/dump"
)

// parseExpr parses input as one expression and fails the test on any diagnostic.
func parseExpr(t *testing.T, input string) string {
	t.Helper()
	e, errs := ParseExpression(input, Options{})
	if len(errs) > 0 {
		t.Fatalf("parser errors for %q: %v", input, errs)
	}
	return dump.Expr(e)
}

// parseUnit parses a whole unit and fails the test on any diagnostic.
func parseUnit(t *testing.T, input string) *ast.Program {
	t.Helper()
	prog, errs := ParseString("test.das", input, Options{})
	if len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	return prog
}

func countKind(errs []*diag.Diagnostic, kind diag.Kind) int {
	n := 0
	for _, d := range errs {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"1 << 2 + 3", "(<< 1 (+ 2 3))"},
		{"a - b - c", "(- (- a b) c)"},
		{"a || b && c", "(|| a (&& b c))"},
		{"a ^^ b || c", "(|| (^^ a b) c)"},
		{"a | b ^ c & d", "(| a (^ b (& c d)))"},
		{"a == b < c", "(== a (< b c))"},
		{"a < b .. c", "(< a (.. b c))"},
		{"-a * b", "(* (- a) b)"},
		{"!a.b", "(! (. a b))"},
		{"*p + 1", "(+ (* p) 1)"},
		{"x++ + 1", "(+ (post++ x) 1)"},
		{"a.b.c", "(. (. a b) c)"},
		{"a[1].b", "(. ([] a 1) b)"},
		{"(1 + 2) * 3", "(* (+ 1 2) 3)"},
	}

	for _, tt := range tests {
		if got := parseExpr(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestAssociativity(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a = b = c", "(= a (= b c))"},
		{"a <- b", "(<- a b)"},
		{"a := b", "(:= a b)"},
		{"a += b * c", "(+= a (* b c))"},
		{"a ?? b ?? c", "(?? a (?? b c))"},
		{"c ? a : b ? d : e", "(? c a (? b d e))"},
		{"c ?ask : b", "(? c ask b)"},
		{"x = c ? 1 : 2", "(= x (? c 1 2))"},
	}

	for _, tt := range tests {
		if got := parseExpr(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestPostfixOperators(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"f(1, 2) + 3", "(+ (call f 1 2) 3)"},
		{"obj->update(1)", "(-> obj update 1)"},
		{"a?.b", "(?. a b)"},
		{"a?[1]", "(?[] a 1)"},
		{"v is circle", "(is v circle)"},
		{"v as circle", "(as v circle)"},
		{"v ?as circle", "(?as v circle)"},
		{"a::b(1)", "(call a::b 1)"},
		{"::c", "::c"},
		{"f(x)(y)", "(invoke (call f x) y)"},
		{"float3(1.0, 2.0, 3.0)", "(call float3 1.0 2.0 3.0)"},
		{"init([x = 1, y := 2])", "(call init (= x 1) (:= y 2))"},
	}

	for _, tt := range tests {
		if got := parseExpr(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"42", "42"},
		{"42u", "42u"},
		{"0x10", "0x10"},
		{"1.5", "1.5"},
		{"true", "true"},
		{"null", "null"},
		{"'a'", "'a'"},
		{`'\n'`, `'\n'`},
	}

	for _, tt := range tests {
		if got := parseExpr(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}

	e, errs := ParseExpression("0x10", Options{})
	if len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	lit, ok := e.(*ast.IntLit)
	if !ok {
		t.Fatalf("expected *ast.IntLit, got %T", e)
	}
	if lit.Value != 16 {
		t.Errorf("expected value 16, got %d", lit.Value)
	}
}

func TestIntegerOutOfRange(t *testing.T) {
	_, errs := ParseExpression("300u8", Options{})
	if countKind(errs, diag.SyntaxError) != 1 {
		t.Fatalf("expected 1 syntax error, got %v", errs)
	}
}

func TestTypeExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"cast<int> x + 1", "(+ (cast<int> x) 1)"},
		{"upcast<Base> x", "(upcast<Base> x)"},
		{"reinterpret<int?> p", "(reinterpret<int?> p)"},
		{"type<array<int>>", "(type<array<int>>)"},
		{"typeinfo(sizeof x)", "(typeinfo sizeof x)"},
		{"typeinfo(typename type<int>)", "(typeinfo typename type<int>)"},
		{"new Foo", "(new Foo)"},
		{"new Foo(1)", "(new Foo () 1)"},
		{"delete p", "(delete p)"},
		{"@@foo", "(@@ foo)"},
		{"@@<(a:int):int> foo", "(@@<function<(a:int):int>> foo)"},
	}

	for _, tt := range tests {
		if got := parseExpr(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestPipes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a <| b", "(call a b)"},
		{"f(x) <| g", "(call f x g)"},
		{"x |> f(y)", "(call f x y)"},
		{"x |> f", "(call f x)"},
		{"1 + 2 |> f", "(call f (+ 1 2))"},
		{"obj->run() <| 5", "(-> obj run 5)"},
	}

	for _, tt := range tests {
		if got := parseExpr(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expected, got)
		}
	}
}

func TestInvalidPipeTarget(t *testing.T) {
	e, errs := ParseExpression("1 <| 2", Options{})
	if countKind(errs, diag.InvalidPipeTarget) != 1 || len(errs) != 1 {
		t.Fatalf("expected one invalid pipe target, got %v", errs)
	}
	if got := dump.Expr(e); got != "1" {
		t.Errorf("expected the left side to survive, got %s", got)
	}
}

func TestNewlineEndsPostfix(t *testing.T) {
	input := `def main {
a
++b
}`
	prog := parseUnit(t, input)
	body := prog.Functions[0].Body.List
	if len(body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(body))
	}
	if got := dump.Expr(body[1]); got != "(++ b)" {
		t.Errorf("expected (++ b), got %s", got)
	}
}
