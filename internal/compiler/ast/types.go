package ast

import (
	"strconv"
	"strings"
)

// BaseType is the tag of a TypeDecl
type BaseType int

const (
	TypeNone BaseType = iota
	TypeAuto
	TypeNamed // structure, enumeration or alias reference, resolved later by name
	TypeVoid
	TypeBool
	TypeString
	TypeInt8
	TypeInt16
	TypeInt
	TypeInt64
	TypeUInt8
	TypeUInt16
	TypeUInt
	TypeUInt64
	TypeFloat
	TypeDouble
	TypeInt2
	TypeInt3
	TypeInt4
	TypeUInt2
	TypeUInt3
	TypeUInt4
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeRange
	TypeURange
	TypeRange64
	TypeURange64
	TypePointer
	TypeArray
	TypeTable
	TypeTuple
	TypeVariant
	TypeBitfield
	TypeBlock
	TypeFunction
	TypeLambda
	TypeIterator
	TypeDeclExpr // typedecl(expr)
)

var baseTypeNames = map[BaseType]string{
	TypeAuto: "auto", TypeVoid: "void", TypeBool: "bool", TypeString: "string",
	TypeInt8: "int8", TypeInt16: "int16", TypeInt: "int", TypeInt64: "int64",
	TypeUInt8: "uint8", TypeUInt16: "uint16", TypeUInt: "uint", TypeUInt64: "uint64",
	TypeFloat: "float", TypeDouble: "double",
	TypeInt2: "int2", TypeInt3: "int3", TypeInt4: "int4",
	TypeUInt2: "uint2", TypeUInt3: "uint3", TypeUInt4: "uint4",
	TypeFloat2: "float2", TypeFloat3: "float3", TypeFloat4: "float4",
	TypeRange: "range", TypeURange: "urange", TypeRange64: "range64", TypeURange64: "urange64",
	TypeArray: "array", TypeTable: "table", TypeTuple: "tuple", TypeVariant: "variant",
	TypeBitfield: "bitfield", TypeBlock: "block", TypeFunction: "function", TypeLambda: "lambda",
	TypeIterator: "iterator", TypeDeclExpr: "typedecl",
}

func (b BaseType) String() string {
	if s, ok := baseTypeNames[b]; ok {
		return s
	}
	switch b {
	case TypeNamed:
		return "named"
	case TypePointer:
		return "pointer"
	}
	return "none"
}

// IsInteger reports whether b is one of the integer scalars enumerations may use.
func (b BaseType) IsInteger() bool {
	switch b {
	case TypeInt8, TypeInt16, TypeInt, TypeInt64, TypeUInt8, TypeUInt16, TypeUInt, TypeUInt64:
		return true
	}
	return false
}

// DimKind describes one array dimension suffix
type DimKind int

const (
	DimFixed DimKind = iota // [N]
	DimAuto                 // []
)

type Dim struct {
	Kind DimKind
	Size int
}

// TypeDecl is a parsed type expression. Each TypeDecl is owned by exactly one parent;
// aliases refer to each other by name.
type TypeDecl struct {
	Pos
	Base BaseType

	Name  string    // TypeNamed: qualified name; TypeAuto: generic alias in auto(T)
	First *TypeDecl // pointee, array element, table key, iterator element
	// Second is the table value type; nil for sets.
	Second *TypeDecl

	// Tuple, variant, block, function and lambda members.
	Args     []*TypeDecl
	ArgNames []string
	Return   *TypeDecl

	Bits []string // bitfield names
	// BitBase is the underlying width of a bitfield alias.
	BitBase BaseType

	Smart bool // smart_ptr<T>
	Expr  Expr // typedecl(expr)

	Dims      []Dim
	RemoveDim bool

	Const           bool
	RemoveConst     bool
	Ref             bool
	RemoveRef       bool
	Temporary       bool
	RemoveTemporary bool
	Implicit        bool
	Explicit        bool
}

func (t *TypeDecl) TokenLiteral() string { return t.Base.String() }

// IsGeneric reports whether the type still contains an auto marker anywhere.
func (t *TypeDecl) IsGeneric() bool {
	if t == nil {
		return false
	}
	if t.Base == TypeAuto || t.Base == TypeDeclExpr {
		return true
	}
	for _, d := range t.Dims {
		if d.Kind == DimAuto {
			return true
		}
	}
	if t.First.IsGeneric() || t.Second.IsGeneric() || t.Return.IsGeneric() {
		return true
	}
	for _, a := range t.Args {
		if a.IsGeneric() {
			return true
		}
	}
	return false
}

// String renders the type in source syntax. It is stable and used for signature keys.
func (t *TypeDecl) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	switch t.Base {
	case TypeAuto:
		b.WriteString("auto")
		if t.Name != "" {
			b.WriteString("(" + t.Name + ")")
		}
	case TypeNamed:
		b.WriteString(t.Name)
	case TypePointer:
		if t.Smart {
			b.WriteString("smart_ptr<" + t.First.String() + ">")
		} else {
			b.WriteString(t.First.String() + "?")
		}
	case TypeArray, TypeIterator:
		b.WriteString(t.Base.String() + "<" + t.First.String() + ">")
	case TypeTable:
		b.WriteString("table<" + t.First.String())
		if t.Second != nil {
			b.WriteString("; " + t.Second.String())
		}
		b.WriteString(">")
	case TypeTuple, TypeVariant:
		b.WriteString(t.Base.String() + "<")
		writeMembers(&b, t.Args, t.ArgNames)
		b.WriteString(">")
	case TypeBitfield:
		b.WriteString("bitfield<" + strings.Join(t.Bits, "; ") + ">")
	case TypeBlock, TypeFunction, TypeLambda:
		b.WriteString(t.Base.String() + "<")
		if len(t.Args) > 0 {
			b.WriteString("(")
			writeMembers(&b, t.Args, t.ArgNames)
			b.WriteString(")")
			if t.Return != nil {
				b.WriteString(":")
			}
		}
		b.WriteString(t.Return.String())
		b.WriteString(">")
	case TypeDeclExpr:
		b.WriteString("typedecl(...)")
	default:
		b.WriteString(t.Base.String())
	}
	for _, d := range t.Dims {
		if d.Kind == DimAuto {
			b.WriteString("[]")
		} else {
			b.WriteString("[" + strconv.Itoa(d.Size) + "]")
		}
	}
	if t.RemoveDim {
		b.WriteString(" -[]")
	}
	if t.Const {
		b.WriteString(" const")
	}
	if t.RemoveConst {
		b.WriteString(" -const")
	}
	if t.Ref {
		b.WriteString("&")
	}
	if t.RemoveRef {
		b.WriteString(" -&")
	}
	if t.Temporary {
		b.WriteString("#")
	}
	if t.RemoveTemporary {
		b.WriteString(" -#")
	}
	if t.Explicit {
		b.WriteString(" explicit")
	}
	if t.Implicit {
		b.WriteString(" implicit")
	}
	return b.String()
}

func writeMembers(b *strings.Builder, args []*TypeDecl, names []string) {
	for i, a := range args {
		if i > 0 {
			b.WriteString("; ")
		}
		if i < len(names) && names[i] != "" {
			b.WriteString(names[i] + ":")
		}
		b.WriteString(a.String())
	}
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
