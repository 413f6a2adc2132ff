package index

import (
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/parser"
	"github.com/btouchard/dasfront/internal/logging"
)

const shapes = `module shapes
typedef Id = int
enum Color { red, green }
class Shape {
    id : Id
    def area : float {
        return 0.0
    }
}
let private origin, unit : float = 0.0
def draw(s : Shape) {
    pass
}
def measure(x : auto) : auto {
    return x
}`

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func parse(t *testing.T, input string) (*ast.Program, []*diag.Diagnostic) {
	t.Helper()
	return parser.ParseString("shapes.das", input, parser.Options{})
}

func TestDeclarations(t *testing.T) {
	prog, errs := parse(t, shapes)
	if len(errs) > 0 {
		t.Fatalf("parser errors: %v", errs)
	}

	expected := []struct {
		kind    string
		name    string
		private bool
	}{
		{"typedef", "Id", false},
		{"enum", "Color", false},
		{"class", "Shape", false},
		{"method", "Shape`area", false},
		{"let", "origin", true},
		{"let", "unit", true},
		{"function", "draw", false},
		{"generic", "measure", false},
	}

	decls := Declarations(prog)
	if len(decls) != len(expected) {
		t.Fatalf("expected %d declarations, got %d: %+v", len(expected), len(decls), decls)
	}
	for i, exp := range expected {
		d := decls[i]
		if d.Kind != exp.kind || d.Name != exp.name || d.Private != exp.private {
			t.Errorf("decl[%d] = %s %s (private %v), want %s %s (private %v)", i, d.Kind, d.Name, d.Private, exp.kind, exp.name, exp.private)
		}
		if d.Line == 0 {
			t.Errorf("decl[%d] has no position", i)
		}
	}
	if decls[0].Signature != "int" {
		t.Errorf("expected typedef signature int, got %q", decls[0].Signature)
	}
	if decls[6].Signature != "draw(Shape)" {
		t.Errorf("expected draw(Shape), got %q", decls[6].Signature)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := openStore(t)

	run, err := s.BeginRun()
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if run.ID == "" {
		t.Fatalf("expected a run identifier")
	}

	prog, errs := parse(t, shapes)
	if _, err := s.AddUnit(run, "shapes.das", prog, errs); err != nil {
		t.Fatalf("AddUnit: %v", err)
	}

	broken, errs := parse(t, "typedef A = int\ntypedef A = float\n")
	if len(errs) != 1 {
		t.Fatalf("expected one diagnostic, got %v", errs)
	}
	if _, err := s.AddUnit(run, "broken.das", broken, errs); err != nil {
		t.Fatalf("AddUnit: %v", err)
	}

	latest, err := s.LatestRun()
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest == nil || latest.ID != run.ID || latest.Files != 2 || latest.Diagnostics != 1 {
		t.Errorf("unexpected latest run %+v", latest)
	}

	units, err := s.Units(run.ID)
	if err != nil || len(units) != 2 {
		t.Fatalf("expected 2 units, got %d (%v)", len(units), err)
	}
	if units[0].Module != "shapes" || units[1].Diagnostics != 1 {
		t.Errorf("unexpected units %+v", units)
	}

	found, err := s.Find(run.ID, "draw")
	if err != nil || len(found) != 1 || found[0].Kind != "function" {
		t.Errorf("Find(draw) = %+v, %v", found, err)
	}
	found, err = s.Find(run.ID, "shapes::Shape")
	if err != nil || len(found) != 1 || found[0].Kind != "class" {
		t.Errorf("Find(shapes::Shape) = %+v, %v", found, err)
	}
	found, err = s.Find(run.ID, "other::Shape")
	if err != nil || len(found) != 0 {
		t.Errorf("Find(other::Shape) = %+v, %v", found, err)
	}

	problems, err := s.Problems(run.ID)
	if err != nil || len(problems) != 1 {
		t.Fatalf("expected 1 problem, got %d (%v)", len(problems), err)
	}
	if problems[0].Kind != diag.DuplicateDeclaration.String() || problems[0].Line != 2 {
		t.Errorf("unexpected problem %+v", problems[0])
	}
}

func TestRunsAreSeparate(t *testing.T) {
	s := openStore(t)
	prog, _ := parse(t, "def main {\n    pass\n}\n")

	first, err := s.BeginRun()
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if _, err := s.AddUnit(first, "a.das", prog, nil); err != nil {
		t.Fatalf("AddUnit: %v", err)
	}
	second, err := s.BeginRun()
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct run identifiers")
	}

	if found, _ := s.Find(second.ID, "main"); len(found) != 0 {
		t.Errorf("expected no declarations in the new run, got %+v", found)
	}
	if found, _ := s.Find(first.ID, "main"); len(found) != 1 {
		t.Errorf("expected main in the first run, got %+v", found)
	}
}

func TestLatestRunEmpty(t *testing.T) {
	s := openStore(t)
	run, err := s.LatestRun()
	if err != nil || run != nil {
		t.Errorf("expected no run, got %+v, %v", run, err)
	}
}
