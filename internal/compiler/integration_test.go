package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/dump"
	"github.com/btouchard/dasfront/internal/compiler/parser"
	"github.com/btouchard/dasfront/internal/compiler/resolver"
	"github.com/btouchard/dasfront/internal/index"
)

const mathSource = `module math
struct Vec {
    x, y : float
}

def add(a, b : Vec) : Vec {
    return a
}`

const shapesSource = `module shapes
require lib/math

enum Color {
    red
    green = 2
    blue
}

class Shape {
    origin : math::Vec
    color : Color = Color.red
    def area : float {
        return 0.0
    }
}

typedef Shapes = array<Shape?>

let private unit = 1.0`

const mainSource = `require lib/shapes

[export]
def main {
    var total = 0.0
    for i in values {
        total += i * unit
    }
    if total > 10.0 {
        print("big")
    } else {
        print("small")
    }
}`

func writeTree(t *testing.T) (dir, mainPath string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		filepath.Join("lib", "math.das"):   mathSource,
		filepath.Join("lib", "shapes.das"): shapesSource,
		"main.das":                         mainSource,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir, filepath.Join(dir, "main.das")
}

// TestFullPipeline parses a small project, follows its requires and indexes every unit.
func TestFullPipeline(t *testing.T) {
	dir, mainPath := writeTree(t)

	res := resolver.New(dir, parser.Options{})
	mainUnit, errs := res.Resolve(mainPath)
	if len(errs) > 0 {
		t.Fatalf("resolution errors: %v", errs)
	}
	units := res.Units()
	if len(units) != 3 || units[2] != mainUnit {
		t.Fatalf("expected math, shapes, main; got %d units", len(units))
	}
	for _, u := range units {
		if len(u.Diagnostics) > 0 {
			t.Fatalf("%s: unexpected diagnostics %v", u.Path, u.Diagnostics)
		}
		if refs := res.Unresolved(u); len(refs) > 0 {
			t.Errorf("%s: unresolved references %v", u.Path, refs)
		}
	}

	shapes := units[1].Program
	tree := dump.Program(shapes)
	for _, want := range []string{"(module shapes", "(require lib/math)", "(enum Color : int", "(class Shape", "(typedef Shapes"} {
		if !strings.Contains(tree, want) {
			t.Errorf("expected %q in the shapes tree:\n%s", want, tree)
		}
	}
	if s := shapes.FindStructure("Shape"); s == nil || len(s.Methods) != 1 || s.Methods[0].Class != "Shape" {
		t.Errorf("expected Shape with method area")
	}

	store, err := index.Open(":memory:", nil)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	defer store.Close()
	run, err := store.BeginRun()
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	for _, u := range units {
		if _, err := store.AddUnit(run, u.Path, u.Program, u.Diagnostics); err != nil {
			t.Fatalf("add unit: %v", err)
		}
	}
	decls, err := store.Find(run.ID, "math::Vec")
	if err != nil || len(decls) != 1 {
		t.Fatalf("expected math::Vec in the index, got %v (%v)", decls, err)
	}
	if decls, _ := store.Find(run.ID, "shapes::Vec"); len(decls) != 0 {
		t.Errorf("Vec is not declared in shapes, got %v", decls)
	}
	if decls, _ := store.Find(run.ID, "Shape`area"); len(decls) != 1 || decls[0].Kind != "method" {
		t.Errorf("expected the area method, got %v", decls)
	}
}

// TestParsersAreIndependent runs parsers with different policies side by side.
func TestParsersAreIndependent(t *testing.T) {
	const src = "def f {\n    pass\n}\ntypedef T = int\ntypedef T = float\n"

	var wg sync.WaitGroup
	results := make([]bool, 16)
	diags := make([][]*diag.Diagnostic, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prog, errs := parser.ParseString("unit.das", src, parser.Options{DefaultPrivate: i%2 == 1})
			results[i] = prog.Functions[0].Private
			diags[i] = errs
		}()
	}
	wg.Wait()

	for i, private := range results {
		if private != (i%2 == 1) {
			t.Errorf("parser %d: private = %v", i, private)
		}
		if len(diags[i]) != 1 || diags[i][0].Kind != diag.DuplicateDeclaration {
			t.Errorf("parser %d: expected one duplicate declaration, got %v", i, diags[i])
		}
	}
}

func TestRecoveryKeepsLaterDeclarations(t *testing.T) {
	input := `def broken {
    let x = )
}

struct After {
    a : int
}

def fine {
    pass
}`
	prog, errs := parser.ParseString("test.das", input, parser.Options{})
	if len(errs) == 0 {
		t.Fatal("expected diagnostics for the broken function")
	}
	if prog.FindStructure("After") == nil {
		t.Error("expected After to survive recovery")
	}
	if len(prog.FindFunctions("fine")) != 1 {
		t.Error("expected fine to survive recovery")
	}
}
