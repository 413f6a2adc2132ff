package comments

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/btouchard/dasfront/internal/compiler/token"
)

var (
	_ Reader = Nop{}
	_ Reader = (*Recorder)(nil)
	_ Reader = (*Logger)(nil)
	_ Reader = Multi(nil)
)

func TestRecorderOrder(t *testing.T) {
	r := &Recorder{}
	r.BeforeStructure(token.Span{Line: 1})
	r.AfterStructure("Foo", token.Span{Line: 3})
	r.BeforeFunction(token.Span{Line: 5})
	r.AfterFunction("bar", token.Span{Line: 7})

	events := r.Events()
	want := []Event{
		{Hook: "before", Kind: "structure"},
		{Hook: "after", Kind: "structure", Name: "Foo"},
		{Hook: "before", Kind: "function"},
		{Hook: "after", Kind: "function", Name: "bar"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, w := range want {
		e := events[i]
		if e.Hook != w.Hook || e.Kind != w.Kind || e.Name != w.Name {
			t.Errorf("event %d = %+v, want %+v", i, e, w)
		}
	}
}

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b, Nop{}}
	m.BeforeEnum(token.Span{})
	m.AfterEnum("Color", token.Span{})
	if len(a.Events()) != 2 || len(b.Events()) != 2 {
		t.Fatalf("events a=%d b=%d, want 2 each", len(a.Events()), len(b.Events()))
	}
}

func TestLoggerWritesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewLogger(log)
	l.BeforeAlias(token.Span{Line: 1, Column: 1})
	l.AfterAlias("Vec", token.Span{File: "a.das", Line: 2, Column: 1})

	out := buf.String()
	if !strings.Contains(out, "kind=alias") || !strings.Contains(out, "name=Vec") {
		t.Errorf("log output = %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected a single record, got %q", out)
	}
}
