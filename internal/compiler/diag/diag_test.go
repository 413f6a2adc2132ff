package diag

import (
	"strings"
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/token"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{SyntaxError, "syntax error"},
		{DuplicateDeclaration, "duplicate declaration"},
		{UnsupportedMacro, "unsupported macro"},
		{InvalidPipeTarget, "invalid pipe target"},
		{InvalidEscapeSequence, "invalid escape sequence"},
		{InvalidType, "invalid type"},
		{NamingViolation, "naming violation"},
		{Kind(99), "kind(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDiagnosticError(t *testing.T) {
	d := &Diagnostic{
		Kind:    SyntaxError,
		Message: "unexpected token",
		Span:    token.Span{File: "test.das", Line: 10, Column: 5},
	}

	expected := "test.das:10:5: syntax error: unexpected token"
	if d.Error() != expected {
		t.Errorf("Diagnostic.Error() = %q, want %q", d.Error(), expected)
	}
}

func TestSinkAdd(t *testing.T) {
	s := NewSink()
	if s.HasErrors() {
		t.Fatal("new sink should be empty")
	}

	s.Add(SyntaxError, token.Span{Line: 1, Column: 1}, "first")
	s.Addf(DuplicateDeclaration, token.Span{Line: 2, Column: 3}, "%s already defined", "foo")

	if len(s.Diagnostics()) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(s.Diagnostics()))
	}
	if s.Diagnostics()[1].Message != "foo already defined" {
		t.Errorf("unexpected message %q", s.Diagnostics()[1].Message)
	}
	if s.Count(DuplicateDeclaration) != 1 {
		t.Errorf("expected 1 duplicate, got %d", s.Count(DuplicateDeclaration))
	}
}

func TestSinkSuppressNests(t *testing.T) {
	s := NewSink()

	outer := s.Suppress()
	inner := s.Suppress()
	s.Add(SyntaxError, token.Span{}, "dropped")
	inner()
	inner() // closing twice is harmless
	if !s.Suppressed() {
		t.Fatal("outer scope should still suppress")
	}
	s.Add(SyntaxError, token.Span{}, "dropped too")
	outer()

	s.Add(SyntaxError, token.Span{}, "kept")

	if len(s.Diagnostics()) != 1 || s.Diagnostics()[0].Message != "kept" {
		t.Fatalf("expected only the unsuppressed diagnostic, got %v", s.Diagnostics())
	}
}

func TestSinkLimit(t *testing.T) {
	s := NewSink()
	s.SetLimit(2)
	for i := 0; i < 5; i++ {
		s.Add(SyntaxError, token.Span{Line: i + 1}, "err")
	}
	if len(s.Diagnostics()) != 2 {
		t.Errorf("expected 2 diagnostics, got %d", len(s.Diagnostics()))
	}
	if !s.Full() {
		t.Error("sink should report full")
	}
}

func TestSinkString(t *testing.T) {
	s := NewSink()
	s.Add(InvalidType, token.Span{Line: 1, Column: 2}, "too many bits")
	s.Add(NamingViolation, token.Span{Line: 3, Column: 4}, "reserved name")

	out := s.String()
	if !strings.Contains(out, "1:2: invalid type: too many bits") {
		t.Errorf("missing first diagnostic in %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected one line per diagnostic, got %q", out)
	}
}
