package resolver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/naming"
	"github.com/btouchard/dasfront/internal/compiler/parser"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// Extension is the file suffix of source units.
const Extension = ".das"

// ============ PENDING REFERENCES ============

// RefKind says what a pending reference points at
type RefKind int

const (
	RefRequire RefKind = iota // require module
	RefParent                 // struct Foo : Parent
	RefType                   // named type in a declaration
)

func (k RefKind) String() string {
	switch k {
	case RefParent:
		return "parent"
	case RefType:
		return "type"
	}
	return "require"
}

// Ref is a name the parser recorded but could not look up: the semantic phase resolves it.
type Ref struct {
	Kind RefKind
	Name string
	From string // declaration holding the reference
	Span token.Span
}

func (r Ref) String() string {
	return fmt.Sprintf("%s: %s %s (from %s)", r.Span, r.Kind, r.Name, r.From)
}

// Pending lists every cross-reference of prog in declaration order. Names that repeat
// within one declaration are listed once.
func Pending(prog *ast.Program) []Ref {
	c := &collector{}
	for _, req := range prog.Requires {
		c.refs = append(c.refs, Ref{Kind: RefRequire, Name: req.Module, From: "module", Span: req.Span()})
	}
	for _, a := range prog.Aliases {
		c.begin(a.Name)
		c.typ(a.Type)
	}
	for _, s := range prog.Structures {
		c.begin(s.Name)
		if s.Parent != "" {
			c.refs = append(c.refs, Ref{Kind: RefParent, Name: s.Parent, From: s.Name, Span: s.Span()})
		}
		for _, f := range s.Fields {
			c.typ(f.Type)
		}
		for _, m := range s.Methods {
			c.begin(naming.Method(s.Name, m.Name))
			c.function(m)
		}
	}
	for _, g := range prog.Globals {
		c.begin(g.Name())
		c.typ(g.Type)
	}
	for _, fn := range prog.Functions {
		c.begin(fn.Name)
		c.function(fn)
	}
	for _, fn := range prog.Generics {
		c.begin(fn.Name)
		c.function(fn)
	}
	return c.refs
}

type collector struct {
	refs []Ref
	from string
	seen map[string]bool
}

func (c *collector) begin(from string) {
	c.from = from
	c.seen = make(map[string]bool)
}

func (c *collector) function(fn *ast.Function) {
	for _, p := range fn.Params {
		c.typ(p.Type)
	}
	c.typ(fn.Result)
}

func (c *collector) typ(t *ast.TypeDecl) {
	if t == nil {
		return
	}
	if t.Base == ast.TypeNamed && !c.seen[t.Name] {
		c.seen[t.Name] = true
		c.refs = append(c.refs, Ref{Kind: RefType, Name: t.Name, From: c.from, Span: t.Span()})
	}
	c.typ(t.First)
	c.typ(t.Second)
	c.typ(t.Return)
	for _, a := range t.Args {
		c.typ(a)
	}
}

// ============ REQUIRE RESOLUTION ============

// Unit is one parsed source file
type Unit struct {
	Path        string
	Program     *ast.Program
	Diagnostics []*diag.Diagnostic
}

// Resolver loads a unit and, recursively, the units it requires
type Resolver struct {
	basePath string
	opts     parser.Options
	parsed   map[string]*Unit // cache: absolute path → unit
	loading  map[string]bool  // circular require detection
	order    []*Unit
	errors   []string
}

// New creates a Resolver. Required modules are looked up next to the requiring
// file first, then under basePath.
func New(basePath string, opts parser.Options) *Resolver {
	return &Resolver{
		basePath: basePath,
		opts:     opts,
		parsed:   make(map[string]*Unit),
		loading:  make(map[string]bool),
	}
}

// Errors returns all accumulated errors during resolution
func (r *Resolver) Errors() []string {
	return r.errors
}

// Units returns every loaded unit, dependencies before the units requiring them.
func (r *Resolver) Units() []*Unit {
	return r.order
}

func (r *Resolver) addError(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

// resolvePath maps a module path such as daslib/json to a source file.
func (r *Resolver) resolvePath(module, currentDir string) (string, error) {
	rel := filepath.FromSlash(module) + Extension
	for _, dir := range []string{currentDir, r.basePath} {
		if dir == "" {
			continue
		}
		candidate, err := filepath.Abs(filepath.Join(dir, rel))
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %s: %w", module, err)
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("module %s not found", module)
}

// loadFile reads and parses a unit, with caching
func (r *Resolver) loadFile(absPath string) (*Unit, error) {
	if cached, ok := r.parsed[absPath]; ok {
		return cached, nil
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", absPath, err)
	}

	prog, diags := parser.ParseString(absPath, string(data), r.opts)
	unit := &Unit{Path: absPath, Program: prog, Diagnostics: diags}
	r.parsed[absPath] = unit
	return unit, nil
}

// Resolve loads mainPath and every module it requires, recursively. Parse diagnostics
// stay on each Unit; Resolve reports only missing modules and circular requires.
func (r *Resolver) Resolve(mainPath string) (*Unit, []string) {
	absPath, err := filepath.Abs(mainPath)
	if err != nil {
		r.addError("failed to resolve path %s: %v", mainPath, err)
		return nil, r.errors
	}
	unit, err := r.load(absPath)
	if err != nil {
		r.addError("%v", err)
		return nil, r.errors
	}
	return unit, r.errors
}

func (r *Resolver) load(absPath string) (*Unit, error) {
	if r.loading[absPath] {
		return nil, fmt.Errorf("circular require detected: %s", absPath)
	}
	if cached, ok := r.parsed[absPath]; ok {
		return cached, nil
	}
	r.loading[absPath] = true
	defer delete(r.loading, absPath)

	unit, err := r.loadFile(absPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(absPath)
	for _, req := range unit.Program.Requires {
		if err := r.resolveRequire(req, dir); err != nil {
			r.addError("%s: failed to resolve require %s: %v", req.Span(), req.Module, err)
		}
	}
	r.order = append(r.order, unit)
	return unit, nil
}

func (r *Resolver) resolveRequire(req *ast.Require, currentDir string) error {
	absPath, err := r.resolvePath(req.Module, currentDir)
	if err != nil {
		return err
	}
	_, err = r.load(absPath)
	return err
}

// ============ LOOKUP ============

// Unresolved returns the parent and type references of unit that no loaded unit declares.
// Requires were handled by Resolve and are not repeated.
func (r *Resolver) Unresolved(unit *Unit) []Ref {
	var out []Ref
	for _, ref := range Pending(unit.Program) {
		if ref.Kind == RefRequire {
			continue
		}
		if !r.declared(ref) {
			out = append(out, ref)
		}
	}
	return out
}

func (r *Resolver) declared(ref Ref) bool {
	module, name := naming.Split(ref.Name)
	for _, u := range r.order {
		prog := u.Program
		if module != "" && prog.Module.Name != module {
			continue
		}
		if prog.FindStructure(name) != nil {
			return true
		}
		if ref.Kind == RefType && (prog.FindEnum(name) != nil || prog.FindAlias(name) != nil) {
			return true
		}
	}
	return false
}
