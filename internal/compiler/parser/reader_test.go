package parser

import (
	"strings"
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/dump"
	"github.com/btouchard/dasfront/internal/compiler/macro"
)

func sqlMacros() *macro.Registry {
	reg := macro.NewRegistry()
	reg.Register(macro.NewDelimited("sql", '~'))
	return reg
}

func TestReaderMacro(t *testing.T) {
	e, errs := ParseExpression("x = %sql~select 1~ + 1", Options{Macros: sqlMacros()})
	if len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	if got := dump.Expr(e); got != `(= x (+ (%sql "select 1") 1))` {
		t.Errorf("unexpected tree %s", got)
	}
}

func TestReaderMacroInFunction(t *testing.T) {
	input := `def main {
    let q = %sql~select *
from t~
    run(q)
}`
	prog, errs := ParseString("test.das", input, Options{Macros: sqlMacros()})
	if len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}
	body := prog.Functions[0].Body.List
	if len(body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(body))
	}
	let := body[0].(*ast.LetExpr)
	r, ok := let.Variables[0].Init.(*ast.ReaderExpr)
	if !ok {
		t.Fatalf("expected *ast.ReaderExpr, got %T", let.Variables[0].Init)
	}
	if !r.Handled || r.Text != "select *\nfrom t" {
		t.Errorf("unexpected reader result %q (handled %v)", r.Text, r.Handled)
	}
}

func TestUnknownReaderMacro(t *testing.T) {
	e, errs := ParseExpression("%nope~abc~ + 1", Options{Macros: sqlMacros()})
	if countKind(errs, diag.UnsupportedMacro) != 1 || len(errs) != 1 {
		t.Fatalf("expected one unsupported macro, got %v", errs)
	}
	if got := dump.Expr(e); got != `(+ (%nope "") 1)` {
		t.Errorf("expected parsing to resume after the body, got %s", got)
	}
}

func TestAmbiguousReaderMacro(t *testing.T) {
	reg := sqlMacros()
	reg.Register(macro.NewDelimited("sql", '!'))
	_, errs := ParseExpression("%sql~abc~", Options{Macros: reg})
	if countKind(errs, diag.UnsupportedMacro) != 1 {
		t.Fatalf("expected one unsupported macro, got %v", errs)
	}
	if !strings.Contains(errs[0].Message, "ambiguous") {
		t.Errorf("expected an ambiguity message, got %q", errs[0].Message)
	}
}

func TestUnterminatedReaderMacro(t *testing.T) {
	_, errs := ParseExpression("%sql~abc", Options{Macros: sqlMacros()})
	if countKind(errs, diag.SyntaxError) != 1 {
		t.Fatalf("expected one syntax error, got %v", errs)
	}
}
