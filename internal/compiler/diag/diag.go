package diag

import (
	"fmt"
	"strings"

	"github.com/btouchard/dasfront/internal/compiler/token"
)

// Kind classifies a diagnostic.
type Kind int

const (
	SyntaxError Kind = iota + 1
	DuplicateDeclaration
	UnsupportedMacro
	InvalidPipeTarget
	InvalidEscapeSequence
	InvalidType
	NamingViolation
)

var kindNames = map[Kind]string{
	SyntaxError:           "syntax error",
	DuplicateDeclaration:  "duplicate declaration",
	UnsupportedMacro:      "unsupported macro",
	InvalidPipeTarget:     "invalid pipe target",
	InvalidEscapeSequence: "invalid escape sequence",
	InvalidType:           "invalid type",
	NamingViolation:       "naming violation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Diagnostic is a structured parse error with its source position.
type Diagnostic struct {
	Kind    Kind
	Message string
	Span    token.Span
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Kind, d.Message)
}

// Errorf builds a diagnostic without recording it. Parse functions return these as errors
// and the caller that knows how to resynchronise records them.
func Errorf(kind Kind, span token.Span, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}

// Sink collects diagnostics for one parse. It is not safe for concurrent use.
type Sink struct {
	diags    []*Diagnostic
	suppress int
	limit    int
}

func NewSink() *Sink {
	return &Sink{}
}

// SetLimit caps the number of recorded diagnostics; 0 means unlimited.
func (s *Sink) SetLimit(n int) {
	s.limit = n
}

// Add records a diagnostic unless a suppress scope is active.
func (s *Sink) Add(kind Kind, span token.Span, message string) {
	s.Report(&Diagnostic{Kind: kind, Span: span, Message: message})
}

func (s *Sink) Addf(kind Kind, span token.Span, format string, args ...any) {
	s.Add(kind, span, fmt.Sprintf(format, args...))
}

// Report records an already built diagnostic.
func (s *Sink) Report(d *Diagnostic) {
	if d == nil || s.suppress > 0 {
		return
	}
	if s.limit > 0 && len(s.diags) >= s.limit {
		return
	}
	s.diags = append(s.diags, d)
}

// Suppress opens a scope in which diagnostics are dropped. Call the returned
// function to close it; scopes nest.
func (s *Sink) Suppress() (restore func()) {
	s.suppress++
	done := false
	return func() {
		if !done {
			done = true
			s.suppress--
		}
	}
}

func (s *Sink) Suppressed() bool {
	return s.suppress > 0
}

// Full reports whether the limit has been reached.
func (s *Sink) Full() bool {
	return s.limit > 0 && len(s.diags) >= s.limit
}

func (s *Sink) Diagnostics() []*Diagnostic {
	return s.diags
}

func (s *Sink) HasErrors() bool {
	return len(s.diags) > 0
}

// Count returns the number of diagnostics of the given kind.
func (s *Sink) Count(kind Kind) int {
	n := 0
	for _, d := range s.diags {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

func (s *Sink) String() string {
	var b strings.Builder
	for _, d := range s.diags {
		b.WriteString(d.Error())
		b.WriteString("\n")
	}
	return b.String()
}
