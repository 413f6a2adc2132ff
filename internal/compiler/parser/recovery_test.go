package parser

import (
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/dump"
)

func TestIndependentErrorsAllReported(t *testing.T) {
	input := `typedef A = int
typedef B = float
typedef A = string
struct Foo {
    x : int
}
typedef B = bool
def main {
    return
}`
	prog, errs := ParseString("test.das", input, Options{})
	if countKind(errs, diag.DuplicateDeclaration) != 2 || len(errs) != 2 {
		t.Fatalf("expected 2 duplicate declarations, got %v", errs)
	}
	if got := prog.FindAlias("A").Type.String(); got != "int" {
		t.Errorf("expected the first A to win, got %s", got)
	}
	if got := prog.FindAlias("B").Type.String(); got != "float" {
		t.Errorf("expected the first B to win, got %s", got)
	}
	if prog.FindStructure("Foo") == nil {
		t.Errorf("expected structure Foo")
	}
	if len(prog.FindFunctions("main")) != 1 {
		t.Errorf("expected function main")
	}
}

func TestRecoverAfterBrokenFunction(t *testing.T) {
	input := `def broken {
    let x = )
}
def good {
    pass
}`
	prog, errs := ParseString("test.das", input, Options{})
	if countKind(errs, diag.SyntaxError) != 1 || len(errs) != 1 {
		t.Fatalf("expected one syntax error, got %v", errs)
	}
	if len(prog.FindFunctions("broken")) != 0 {
		t.Errorf("expected broken to be dropped")
	}
	if len(prog.FindFunctions("good")) != 1 {
		t.Errorf("expected good to be parsed")
	}
	if errs[0].Span.Line != 2 {
		t.Errorf("expected the error on line 2, got %s", errs[0].Span)
	}
}

func TestRecoverInsideStructure(t *testing.T) {
	input := `struct Foo {
    x : int
    y : )
    z : float
}`
	prog, errs := ParseString("test.das", input, Options{})
	if countKind(errs, diag.SyntaxError) != 1 || len(errs) != 1 {
		t.Fatalf("expected one syntax error, got %v", errs)
	}
	s := prog.FindStructure("Foo")
	if s == nil {
		t.Fatalf("expected structure Foo")
	}
	if len(s.Fields) != 2 || s.FindField("x") == nil || s.FindField("z") == nil {
		t.Errorf("expected fields x and z, got %d fields", len(s.Fields))
	}
}

func TestRecoverInsideEnum(t *testing.T) {
	prog, errs := ParseString("test.das", "enum E { a, 1, b }", Options{})
	if countKind(errs, diag.SyntaxError) != 1 || len(errs) != 1 {
		t.Fatalf("expected one syntax error, got %v", errs)
	}
	e := prog.FindEnum("E")
	if e == nil || len(e.Entries) != 2 {
		t.Fatalf("expected enum E with 2 entries, got %+v", e)
	}
}

func TestIncompleteFieldAccess(t *testing.T) {
	input := `def main {
    let a = foo.
    let b = 2
}`
	prog, errs := ParseString("test.das", input, Options{})
	if len(errs) != 0 {
		t.Fatalf("expected no diagnostics, got %v", errs)
	}
	body := prog.Functions[0].Body.List
	if len(body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(body))
	}
	let := body[0].(*ast.LetExpr)
	f, ok := let.Variables[0].Init.(*ast.FieldExpr)
	if !ok || !f.Incomplete {
		t.Fatalf("expected an incomplete field access, got %s", dump.Expr(body[0]))
	}
}

func TestIncompleteFieldSkipsLine(t *testing.T) {
	input := `def main {
    x = a.5 + 1
    y = 2
}`
	prog, errs := ParseString("test.das", input, Options{})
	if len(errs) != 0 {
		t.Fatalf("expected no diagnostics, got %v", errs)
	}
	body := prog.Functions[0].Body.List
	if len(body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(body))
	}
	if got := dump.Expr(body[0]); got != "(= x (. a <incomplete>))" {
		t.Errorf("expected (= x (. a <incomplete>)), got %s", got)
	}
	if got := dump.Expr(body[1]); got != "(= y 2)" {
		t.Errorf("expected (= y 2), got %s", got)
	}
}

func TestErrorLimit(t *testing.T) {
	input := `def a { let x = ) }
def b { let x = ) }
def c { let x = ) }
def d { let x = ) }`
	_, errs := ParseString("test.das", input, Options{MaxErrors: 2})
	if len(errs) != 2 {
		t.Errorf("expected the sink to stop at 2 diagnostics, got %d", len(errs))
	}
}

func TestErrorLimitKeepsParsing(t *testing.T) {
	input := `typedef A = int
typedef A = int
typedef A = int
def good {
    pass
}
struct Later {
    x : int
}`
	prog, errs := ParseString("test.das", input, Options{MaxErrors: 2})
	if len(errs) != 2 {
		t.Errorf("expected 2 recorded diagnostics, got %d", len(errs))
	}
	if len(prog.FindFunctions("good")) != 1 {
		t.Errorf("expected good to be parsed after the limit")
	}
	if prog.FindStructure("Later") == nil {
		t.Errorf("expected Later to be parsed after the limit")
	}
}

func TestEveryDiagnosticHasAPosition(t *testing.T) {
	input := `typedef A = int
typedef A = int
let x : array<int = 1
def f { let s = "\q" }
enum E : float { a }`
	_, errs := ParseString("test.das", input, Options{})
	if len(errs) == 0 {
		t.Fatalf("expected diagnostics")
	}
	for _, d := range errs {
		if d.Span.IsZero() || d.Span.File != "test.das" {
			t.Errorf("diagnostic without a position: %v", d)
		}
	}
}
