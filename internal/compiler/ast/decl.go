package ast

import "strings"

// ============ VARIABLES ============

// VarName is one declared name, optionally renamed with aka
type VarName struct {
	Pos
	Name string
	Aka  string
}

// Variable is a let/var declaration, a function parameter or a block parameter.
// Several names may share one type and initializer: let a, b : int = 0
type Variable struct {
	Pos
	Names       []*VarName
	Type        *TypeDecl
	Init        Expr
	InitMode    InitMode
	Const       bool // let
	Ref         bool // let x & = y
	Inscope     bool
	Shared      bool
	Private     bool
	Annotations []*Annotation
}

func (v *Variable) TokenLiteral() string {
	if v.Const {
		return "let"
	}
	return "var"
}

// Name returns the first declared name.
func (v *Variable) Name() string {
	if len(v.Names) == 0 {
		return ""
	}
	return v.Names[0].Name
}

// ============ FUNCTIONS ============

// Function is a def declaration, a struct method or an operator overload
type Function struct {
	Pos
	Name        string
	Params      []*Variable
	Result      *TypeDecl
	Body        *BlockExpr
	Annotations []*Annotation
	Private     bool
	Override    bool
	Sealed      bool
	Abstract    bool
	Static      bool
	Operator    bool // def operator +
	Generic     bool
	Class       string // owning structure for methods
}

func (f *Function) TokenLiteral() string { return "def" }

// Signature is the duplicate-detection key: name(type;type), with one entry per parameter name.
func (f *Function) Signature() string {
	var b strings.Builder
	if f.Class != "" {
		b.WriteString(f.Class + "`")
	}
	b.WriteString(f.Name)
	b.WriteString("(")
	first := true
	for _, p := range f.Params {
		t := "auto"
		if p.Type != nil {
			t = p.Type.String()
		}
		for range p.Names {
			if !first {
				b.WriteString(";")
			}
			first = false
			b.WriteString(t)
		}
	}
	b.WriteString(")")
	return b.String()
}

// FindAnnotation returns the annotation with the given name.
func (f *Function) FindAnnotation(name string) *Annotation {
	return findAnnotation(f.Annotations, name)
}

// ============ STRUCTURES ============

// Field is a structure member declaration. Several names may share one declaration.
type Field struct {
	Pos
	Names       []string
	Type        *TypeDecl
	Init        Expr
	InitMode    InitMode
	Private     bool
	Annotations []*Annotation
}

func (f *Field) FindAnnotation(name string) *Annotation {
	return findAnnotation(f.Annotations, name)
}

// Structure is a struct or class declaration; Parent is resolved by name later.
type Structure struct {
	Pos
	Name        string
	Parent      string
	IsClass     bool
	Sealed      bool
	Private     bool
	Fields      []*Field
	Methods     []*Function
	Annotations []*Annotation
}

func (s *Structure) TokenLiteral() string {
	if s.IsClass {
		return "class"
	}
	return "struct"
}

// FindField returns the field declaring name.
func (s *Structure) FindField(name string) *Field {
	for _, f := range s.Fields {
		for _, n := range f.Names {
			if n == name {
				return f
			}
		}
	}
	return nil
}

func (s *Structure) FindAnnotation(name string) *Annotation {
	return findAnnotation(s.Annotations, name)
}

// ============ ENUMERATIONS ============

type EnumEntry struct {
	Pos
	Name  string
	Value Expr // nil when implicit
}

// Enum is an enumeration with an integer base type
type Enum struct {
	Pos
	Name        string
	Base        BaseType
	Entries     []*EnumEntry
	Private     bool
	Annotations []*Annotation
}

func (e *Enum) TokenLiteral() string { return "enum" }

// Find returns the entry named name.
func (e *Enum) Find(name string) *EnumEntry {
	for _, en := range e.Entries {
		if en.Name == name {
			return en
		}
	}
	return nil
}

// ============ ALIASES ============

// AliasKind records which declaration form introduced an alias
type AliasKind int

const (
	AliasTypedef AliasKind = iota
	AliasVariant
	AliasBitfield
	AliasTuple
)

func (k AliasKind) String() string {
	switch k {
	case AliasVariant:
		return "variant"
	case AliasBitfield:
		return "bitfield"
	case AliasTuple:
		return "tuple"
	}
	return "typedef"
}

// Alias is a named type: typedef, variant, bitfield or tuple declaration
type Alias struct {
	Pos
	Name        string
	Kind        AliasKind
	Type        *TypeDecl
	Private     bool
	Annotations []*Annotation
}

func (a *Alias) TokenLiteral() string { return a.Kind.String() }

func findAnnotation(list []*Annotation, name string) *Annotation {
	for _, a := range list {
		if a.Name == name {
			return a
		}
	}
	return nil
}
