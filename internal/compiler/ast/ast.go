package ast

import (
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	Span() token.Span
}

// Pos carries the source span of a node. Embedded by every node type.
type Pos struct {
	At token.Span
}

func (p Pos) Span() token.Span { return p.At }

// Program is the root AST node for one compilation unit
type Program struct {
	File       string
	Module     *Module
	Requires   []*Require
	Options    []*Option
	Functions  []*Function
	Generics   []*Function
	Structures []*Structure
	Enums      []*Enum
	Globals    []*Variable
	Aliases    []*Alias

	functions  map[string]*Function
	structures map[string]*Structure
	enums      map[string]*Enum
	aliases    map[string]*Alias
	globals    map[string]*Variable
}

func NewProgram(file string) *Program {
	return &Program{
		File:       file,
		Module:     &Module{Public: true},
		functions:  make(map[string]*Function),
		structures: make(map[string]*Structure),
		enums:      make(map[string]*Enum),
		aliases:    make(map[string]*Alias),
		globals:    make(map[string]*Variable),
	}
}

func (p *Program) TokenLiteral() string { return "program" }
func (p *Program) Span() token.Span     { return token.Span{File: p.File, Line: 1, Column: 1} }

// AddFunction registers a function or generic. It returns the previous declaration
// with the same signature when there is one; the new function is not added in that case.
func (p *Program) AddFunction(fn *Function) *Function {
	key := fn.Signature()
	if prev, ok := p.functions[key]; ok {
		return prev
	}
	p.functions[key] = fn
	if fn.Generic {
		p.Generics = append(p.Generics, fn)
	} else {
		p.Functions = append(p.Functions, fn)
	}
	return nil
}

// AddStructure returns the previous structure with the same name, if any.
func (p *Program) AddStructure(s *Structure) *Structure {
	if prev, ok := p.structures[s.Name]; ok {
		return prev
	}
	p.structures[s.Name] = s
	p.Structures = append(p.Structures, s)
	return nil
}

// AddEnum returns the previous enumeration with the same name, if any.
func (p *Program) AddEnum(e *Enum) *Enum {
	if prev, ok := p.enums[e.Name]; ok {
		return prev
	}
	p.enums[e.Name] = e
	p.Enums = append(p.Enums, e)
	return nil
}

// AddAlias returns the previous alias with the same name, if any.
func (p *Program) AddAlias(a *Alias) *Alias {
	if prev, ok := p.aliases[a.Name]; ok {
		return prev
	}
	p.aliases[a.Name] = a
	p.Aliases = append(p.Aliases, a)
	return nil
}

// AddGlobal registers a global declaration. It returns the first name that clashed and
// the declaration holding it; a clashing declaration is not added.
func (p *Program) AddGlobal(v *Variable) (string, *Variable) {
	for _, n := range v.Names {
		if prev, ok := p.globals[n.Name]; ok {
			return n.Name, prev
		}
	}
	for _, n := range v.Names {
		p.globals[n.Name] = v
	}
	p.Globals = append(p.Globals, v)
	return "", nil
}

func (p *Program) FindStructure(name string) *Structure { return p.structures[name] }
func (p *Program) FindEnum(name string) *Enum           { return p.enums[name] }
func (p *Program) FindAlias(name string) *Alias         { return p.aliases[name] }
func (p *Program) FindGlobal(name string) *Variable     { return p.globals[name] }

// FindFunctions returns every function and generic registered under name, in declaration order.
func (p *Program) FindFunctions(name string) []*Function {
	var out []*Function
	for _, fn := range p.Functions {
		if fn.Name == name {
			out = append(out, fn)
		}
	}
	for _, fn := range p.Generics {
		if fn.Name == name {
			out = append(out, fn)
		}
	}
	return out
}

// ============ MODULE SECTION ============

// Module holds the module header: module name [shared] [public|private]
type Module struct {
	Pos
	Name           string
	Public         bool
	Builtin        bool // promoted to builtin ("shared")
	DefaultPrivate bool // declarations without a visibility keyword are private
	Declared       bool
}

func (m *Module) TokenLiteral() string { return "module" }

// Require is an import of another module, resolved by a later stage
type Require struct {
	Pos
	Module string // "daslib/json" style path
	Alias  string
	Public bool
}

func (r *Require) TokenLiteral() string { return "require" }

// Option is one name = value pair of an options pragma
type Option struct {
	Pos
	Name  string
	Value *AnnotationValue
}

func (o *Option) TokenLiteral() string { return "options" }

// ============ ANNOTATIONS ============

// ValueKind tags an annotation argument value
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueString
	ValueIdent
	ValueInt
	ValueFloat
	ValueBool
	ValueList
)

// AnnotationValue is a literal annotation or option argument
type AnnotationValue struct {
	Kind  ValueKind
	Str   string // string literal or identifier
	Int   int64
	Float float64
	Bool  bool
	List  []*AnnotationArg
}

// String renders the value the way it would be written in source.
func (v *AnnotationValue) String() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case ValueString:
		return `"` + v.Str + `"`
	case ValueIdent:
		return v.Str
	case ValueInt:
		return formatInt(v.Int)
	case ValueFloat:
		return formatFloat(v.Float)
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueList:
		s := "["
		for i, a := range v.List {
			if i > 0 {
				s += ", "
			}
			s += a.String()
		}
		return s + "]"
	}
	return ""
}

// AnnotationArg is a keyword (Name != "") or positional argument
type AnnotationArg struct {
	Pos
	Name  string
	Value *AnnotationValue
}

func (a *AnnotationArg) String() string {
	if a.Name == "" {
		return a.Value.String()
	}
	return a.Name + " = " + a.Value.String()
}

// Annotation represents [name(arg = value, ...)] on a declaration or @name on a field
type Annotation struct {
	Pos
	Name string
	Args []*AnnotationArg
}

func (a *Annotation) TokenLiteral() string { return "@" + a.Name }

// SimpleArg returns the first positional argument rendered as text
func (a *Annotation) SimpleArg() string {
	for _, arg := range a.Args {
		if arg.Name == "" {
			if arg.Value.Kind == ValueString {
				return arg.Value.Str
			}
			return arg.Value.String()
		}
	}
	return ""
}

// Clone returns a deep copy of the annotation.
func (a *Annotation) Clone() *Annotation {
	if a == nil {
		return nil
	}
	return &Annotation{Pos: a.Pos, Name: a.Name, Args: cloneArgs(a.Args)}
}

// CloneAnnotations deep-copies list so that each declaration owns its annotations.
func CloneAnnotations(list []*Annotation) []*Annotation {
	if list == nil {
		return nil
	}
	out := make([]*Annotation, len(list))
	for i, a := range list {
		out[i] = a.Clone()
	}
	return out
}

func cloneArgs(args []*AnnotationArg) []*AnnotationArg {
	if args == nil {
		return nil
	}
	out := make([]*AnnotationArg, len(args))
	for i, arg := range args {
		out[i] = &AnnotationArg{Pos: arg.Pos, Name: arg.Name, Value: arg.Value.clone()}
	}
	return out
}

func (v *AnnotationValue) clone() *AnnotationValue {
	if v == nil {
		return nil
	}
	c := *v
	c.List = cloneArgs(v.List)
	return &c
}

// Arg returns the keyword argument with the given name.
func (a *Annotation) Arg(name string) *AnnotationValue {
	for _, arg := range a.Args {
		if arg.Name == name {
			return arg.Value
		}
	}
	return nil
}
