package macro

import (
	"strings"
	"sync"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// Handler consumes the raw characters that follow a %name~ marker.
// Accept is called once per character; returning false ends the macro.
// The character passed with the false result is consumed as the terminator.
type Handler interface {
	Name() string
	Accept(prog *ast.Program, mod *ast.Module, expr *ast.ReaderExpr, ch rune, span token.Span) bool
}

// Registry maps macro names to handlers. Several handlers may share a name;
// the parser reports that as ambiguous.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]Handler)}
}

func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = append(r.handlers[h.Name()], h)
}

// Lookup returns every handler registered under name.
func (r *Registry) Lookup(name string) []Handler {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handlers[name]
}

// Names returns the registered macro names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	return out
}

// ============ STOCK HANDLERS ============

// Delimited collects text up to Terminator and turns it into a string constant.
//
//	%sql~select * from t~
type Delimited struct {
	Macro      string
	Terminator rune
	// Trim strips surrounding whitespace from the collected text.
	Trim bool

	buf strings.Builder
}

func NewDelimited(name string, terminator rune) *Delimited {
	return &Delimited{Macro: name, Terminator: terminator}
}

func (d *Delimited) Name() string { return d.Macro }

func (d *Delimited) Accept(prog *ast.Program, mod *ast.Module, expr *ast.ReaderExpr, ch rune, span token.Span) bool {
	if ch != d.Terminator {
		d.buf.WriteRune(ch)
		return true
	}
	text := d.buf.String()
	d.buf.Reset()
	if d.Trim {
		text = strings.TrimSpace(text)
	}
	expr.Text = text
	expr.Result = &ast.StringLit{Pos: ast.Pos{At: expr.Span().Merge(span)}, Value: text}
	return false
}
