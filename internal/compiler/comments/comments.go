package comments

import (
	"context"
	"log/slog"
	"sync"

	"github.com/btouchard/dasfront/internal/compiler/token"
)

// Reader observes declarations as the parser reaches them. Hooks must not
// influence parsing; the parser ignores anything they do.
type Reader interface {
	BeforeStructure(span token.Span)
	AfterStructure(name string, span token.Span)
	BeforeFunction(span token.Span)
	AfterFunction(name string, span token.Span)
	BeforeEnum(span token.Span)
	AfterEnum(name string, span token.Span)
	BeforeAlias(span token.Span)
	AfterAlias(name string, span token.Span)
	BeforeGlobal(span token.Span)
	AfterGlobal(name string, span token.Span)
}

// Nop implements every hook as a no-op. Embed it to override only some hooks.
type Nop struct{}

func (Nop) BeforeStructure(token.Span)        {}
func (Nop) AfterStructure(string, token.Span) {}
func (Nop) BeforeFunction(token.Span)         {}
func (Nop) AfterFunction(string, token.Span)  {}
func (Nop) BeforeEnum(token.Span)             {}
func (Nop) AfterEnum(string, token.Span)      {}
func (Nop) BeforeAlias(token.Span)            {}
func (Nop) AfterAlias(string, token.Span)     {}
func (Nop) BeforeGlobal(token.Span)           {}
func (Nop) AfterGlobal(string, token.Span)    {}

// Event is one recorded hook call
type Event struct {
	Hook string // "before" or "after"
	Kind string // structure, function, enum, alias, global
	Name string // empty for before hooks
	Span token.Span
}

// Recorder keeps every hook call in order.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(hook, kind, name string, span token.Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Hook: hook, Kind: kind, Name: name, Span: span})
}

// Events returns a copy of the recorded calls.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) BeforeStructure(s token.Span)          { r.add("before", "structure", "", s) }
func (r *Recorder) AfterStructure(n string, s token.Span) { r.add("after", "structure", n, s) }
func (r *Recorder) BeforeFunction(s token.Span)           { r.add("before", "function", "", s) }
func (r *Recorder) AfterFunction(n string, s token.Span)  { r.add("after", "function", n, s) }
func (r *Recorder) BeforeEnum(s token.Span)               { r.add("before", "enum", "", s) }
func (r *Recorder) AfterEnum(n string, s token.Span)      { r.add("after", "enum", n, s) }
func (r *Recorder) BeforeAlias(s token.Span)              { r.add("before", "alias", "", s) }
func (r *Recorder) AfterAlias(n string, s token.Span)     { r.add("after", "alias", n, s) }
func (r *Recorder) BeforeGlobal(s token.Span)             { r.add("before", "global", "", s) }
func (r *Recorder) AfterGlobal(n string, s token.Span)    { r.add("after", "global", n, s) }

// Logger reports completed declarations at debug level.
type Logger struct {
	Nop
	Log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{Log: log}
}

func (l *Logger) after(kind, name string, span token.Span) {
	l.Log.LogAttrs(context.Background(), slog.LevelDebug, "declaration",
		slog.String("kind", kind),
		slog.String("name", name),
		slog.String("at", span.String()),
	)
}

func (l *Logger) AfterStructure(n string, s token.Span) { l.after("structure", n, s) }
func (l *Logger) AfterFunction(n string, s token.Span)  { l.after("function", n, s) }
func (l *Logger) AfterEnum(n string, s token.Span)      { l.after("enum", n, s) }
func (l *Logger) AfterAlias(n string, s token.Span)     { l.after("alias", n, s) }
func (l *Logger) AfterGlobal(n string, s token.Span)    { l.after("global", n, s) }

// Multi fans hook calls out to several readers.
type Multi []Reader

func (m Multi) BeforeStructure(s token.Span) {
	for _, r := range m {
		r.BeforeStructure(s)
	}
}
func (m Multi) AfterStructure(n string, s token.Span) {
	for _, r := range m {
		r.AfterStructure(n, s)
	}
}
func (m Multi) BeforeFunction(s token.Span) {
	for _, r := range m {
		r.BeforeFunction(s)
	}
}
func (m Multi) AfterFunction(n string, s token.Span) {
	for _, r := range m {
		r.AfterFunction(n, s)
	}
}
func (m Multi) BeforeEnum(s token.Span) {
	for _, r := range m {
		r.BeforeEnum(s)
	}
}
func (m Multi) AfterEnum(n string, s token.Span) {
	for _, r := range m {
		r.AfterEnum(n, s)
	}
}
func (m Multi) BeforeAlias(s token.Span) {
	for _, r := range m {
		r.BeforeAlias(s)
	}
}
func (m Multi) AfterAlias(n string, s token.Span) {
	for _, r := range m {
		r.AfterAlias(n, s)
	}
}
func (m Multi) BeforeGlobal(s token.Span) {
	for _, r := range m {
		r.BeforeGlobal(s)
	}
}
func (m Multi) AfterGlobal(n string, s token.Span) {
	for _, r := range m {
		r.AfterGlobal(n, s)
	}
}
