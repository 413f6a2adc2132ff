package ast

import "github.com/btouchard/dasfront/internal/compiler/token"

// Expr is the interface for all expressions. Statements are expressions too;
// the set of implementations is closed to this package.
type Expr interface {
	Node
	exprNode()
}

// ============ LITERALS ============

// IntLit: 42, 42u, 42l, 0xffu8
type IntLit struct {
	Pos
	Type  BaseType // TypeInt, TypeUInt, TypeInt64, TypeUInt64, TypeInt8, TypeUInt8
	Value uint64   // two's complement bits
	Text  string
}

func (i *IntLit) TokenLiteral() string { return i.Text }
func (i *IntLit) exprNode()            {}

// FloatLit: 3.14, 1e5f, 2.0d
type FloatLit struct {
	Pos
	Double bool
	Value  float64
	Text   string
}

func (f *FloatLit) TokenLiteral() string { return f.Text }
func (f *FloatLit) exprNode()            {}

// BoolLit: true, false
type BoolLit struct {
	Pos
	Value bool
}

func (b *BoolLit) TokenLiteral() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *BoolLit) exprNode() {}

// NullLit: null
type NullLit struct {
	Pos
}

func (n *NullLit) TokenLiteral() string { return "null" }
func (n *NullLit) exprNode()            {}

// CharLit: 'a'
type CharLit struct {
	Pos
	Value rune
}

func (c *CharLit) TokenLiteral() string { return string(c.Value) }
func (c *CharLit) exprNode()            {}

// StringLit is a string constant with escapes already applied
type StringLit struct {
	Pos
	Value string
}

func (s *StringLit) TokenLiteral() string { return s.Value }
func (s *StringLit) exprNode()            {}

// StringBuilderExpr is an interpolated string: constant fragments and {expr} segments in order
type StringBuilderExpr struct {
	Pos
	Elements []Expr
}

func (s *StringBuilderExpr) TokenLiteral() string { return "string_builder" }
func (s *StringBuilderExpr) exprNode()            {}

// ============ NAMES AND OPERATORS ============

// VarExpr: x, mod::x, ::x
type VarExpr struct {
	Pos
	Name string
}

func (v *VarExpr) TokenLiteral() string { return v.Name }
func (v *VarExpr) exprNode()            {}

// BinaryExpr: a + b, a << b, a ?? b, a .. b
type BinaryExpr struct {
	Pos
	Op    token.TokenType
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) TokenLiteral() string { return string(b.Op) }
func (b *BinaryExpr) exprNode()            {}

// UnaryExpr: !a, -a, ~a, ++a, *p
type UnaryExpr struct {
	Pos
	Op      token.TokenType
	Operand Expr
}

func (u *UnaryExpr) TokenLiteral() string { return string(u.Op) }
func (u *UnaryExpr) exprNode()            {}

// PostfixExpr: a++, a--
type PostfixExpr struct {
	Pos
	Op      token.TokenType
	Operand Expr
}

func (p *PostfixExpr) TokenLiteral() string { return string(p.Op) }
func (p *PostfixExpr) exprNode()            {}

// TernaryExpr: cond ? a : b
type TernaryExpr struct {
	Pos
	Cond Expr
	Then Expr
	Else Expr
}

func (t *TernaryExpr) TokenLiteral() string { return "?" }
func (t *TernaryExpr) exprNode()            {}

// ============ ASSIGNMENT ============

// CopyExpr: a = b
type CopyExpr struct {
	Pos
	Left  Expr
	Right Expr
}

func (c *CopyExpr) TokenLiteral() string { return "=" }
func (c *CopyExpr) exprNode()            {}

// MoveExpr: a <- b
type MoveExpr struct {
	Pos
	Left  Expr
	Right Expr
}

func (m *MoveExpr) TokenLiteral() string { return "<-" }
func (m *MoveExpr) exprNode()            {}

// CloneExpr: a := b
type CloneExpr struct {
	Pos
	Left  Expr
	Right Expr
}

func (c *CloneExpr) TokenLiteral() string { return ":=" }
func (c *CloneExpr) exprNode()            {}

// OpAssignExpr: a += b and the other compound forms; Op is the binary operator (+ for +=)
type OpAssignExpr struct {
	Pos
	Op    token.TokenType
	Left  Expr
	Right Expr
}

func (o *OpAssignExpr) TokenLiteral() string { return string(o.Op) + "=" }
func (o *OpAssignExpr) exprNode()            {}

// ============ ACCESS ============

// FieldExpr: a.b. Incomplete marks a field access whose name failed to parse.
type FieldExpr struct {
	Pos
	Value      Expr
	Name       string
	Incomplete bool
}

func (f *FieldExpr) TokenLiteral() string { return "." }
func (f *FieldExpr) exprNode()            {}

// SafeFieldExpr: a?.b
type SafeFieldExpr struct {
	Pos
	Value Expr
	Name  string
}

func (s *SafeFieldExpr) TokenLiteral() string { return "?." }
func (s *SafeFieldExpr) exprNode()            {}

// IndexExpr: a[i]
type IndexExpr struct {
	Pos
	Value Expr
	Index Expr
}

func (i *IndexExpr) TokenLiteral() string { return "[]" }
func (i *IndexExpr) exprNode()            {}

// SafeIndexExpr: a?[i]
type SafeIndexExpr struct {
	Pos
	Value Expr
	Index Expr
}

func (s *SafeIndexExpr) TokenLiteral() string { return "?[]" }
func (s *SafeIndexExpr) exprNode()            {}

// IsVariantExpr: v is name
type IsVariantExpr struct {
	Pos
	Value Expr
	Name  string
}

func (i *IsVariantExpr) TokenLiteral() string { return "is" }
func (i *IsVariantExpr) exprNode()            {}

// AsVariantExpr: v as name
type AsVariantExpr struct {
	Pos
	Value Expr
	Name  string
}

func (a *AsVariantExpr) TokenLiteral() string { return "as" }
func (a *AsVariantExpr) exprNode()            {}

// SafeAsVariantExpr: v ?as name
type SafeAsVariantExpr struct {
	Pos
	Value Expr
	Name  string
}

func (s *SafeAsVariantExpr) TokenLiteral() string { return "?as" }
func (s *SafeAsVariantExpr) exprNode()            {}

// ============ CALLS ============

// CallExpr: name(args...), a call of a named function
type CallExpr struct {
	Pos
	Name string
	Args []Expr
}

func (c *CallExpr) TokenLiteral() string { return "call" }
func (c *CallExpr) exprNode()            {}

// InvokeExpr: expr(args...), a call of a block, lambda or function value
type InvokeExpr struct {
	Pos
	Func Expr
	Args []Expr
}

func (i *InvokeExpr) TokenLiteral() string { return "invoke" }
func (i *InvokeExpr) exprNode()            {}

// MethodCallExpr: obj->name(args...)
type MethodCallExpr struct {
	Pos
	Object Expr
	Name   string
	Args   []Expr
}

func (m *MethodCallExpr) TokenLiteral() string { return "->" }
func (m *MethodCallExpr) exprNode()            {}

// NamedCallExpr: name([a = 1, b := 2])
type NamedCallExpr struct {
	Pos
	Name string
	Args []*MakeField
}

func (n *NamedCallExpr) TokenLiteral() string { return "named_call" }
func (n *NamedCallExpr) exprNode()            {}

// ============ TYPE EXPRESSIONS ============

// CastKind distinguishes cast<T>, upcast<T> and reinterpret<T>
type CastKind int

const (
	CastPlain CastKind = iota
	CastUpcast
	CastReinterpret
)

// CastExpr: cast<T> expr
type CastExpr struct {
	Pos
	Kind  CastKind
	Type  *TypeDecl
	Value Expr
}

func (c *CastExpr) TokenLiteral() string {
	switch c.Kind {
	case CastUpcast:
		return "upcast"
	case CastReinterpret:
		return "reinterpret"
	}
	return "cast"
}
func (c *CastExpr) exprNode() {}

// TypeInfoExpr: typeinfo(trait<subtrait> expr) or typeinfo(trait type<T>)
type TypeInfoExpr struct {
	Pos
	Trait    string
	SubTrait string
	Extra    string // second argument of trait<a;b>
	Value    Expr
	Type     *TypeDecl
}

func (t *TypeInfoExpr) TokenLiteral() string { return "typeinfo" }
func (t *TypeInfoExpr) exprNode()            {}

// TypeExpr: type<T> used as a value
type TypeExpr struct {
	Pos
	Type *TypeDecl
}

func (t *TypeExpr) TokenLiteral() string { return "type" }
func (t *TypeExpr) exprNode()            {}

// NewExpr: new T, new T(args), new [[T ...]]
type NewExpr struct {
	Pos
	Type        *TypeDecl
	Args        []Expr
	HasArgs     bool
	Initializer Expr // make literal for new [[...]]
}

func (n *NewExpr) TokenLiteral() string { return "new" }
func (n *NewExpr) exprNode()            {}

// DeleteExpr: delete expr
type DeleteExpr struct {
	Pos
	Value Expr
}

func (d *DeleteExpr) TokenLiteral() string { return "delete" }
func (d *DeleteExpr) exprNode()            {}

// AddrExpr: @@name or @@<(a:int):int> name
type AddrExpr struct {
	Pos
	Name string
	Type *TypeDecl
}

func (a *AddrExpr) TokenLiteral() string { return "@@" }
func (a *AddrExpr) exprNode()            {}

// ============ BLOCKS AND CLOSURES ============

// BlockExpr is a { ... } statement list
type BlockExpr struct {
	Pos
	List []Expr
}

func (b *BlockExpr) TokenLiteral() string { return "{" }
func (b *BlockExpr) exprNode()            {}

// ClosureKind is the flavour of a block literal
type ClosureKind int

const (
	ClosureBlock         ClosureKind = iota // $(...) { }
	ClosureLambda                           // @(...) { }
	ClosureLocalFunction                    // @@(...) { }
	ClosureGenerator                        // generator<T>(...) { }
)

// CaptureMode is how a lambda captures an enclosing variable
type CaptureMode int

const (
	CaptureReference CaptureMode = iota // &x
	CaptureCopy                         // =x
	CaptureMove                         // <-x
	CaptureClone                        // :=x
)

func (m CaptureMode) String() string {
	switch m {
	case CaptureCopy:
		return "="
	case CaptureMove:
		return "<-"
	case CaptureClone:
		return ":="
	}
	return "&"
}

type Capture struct {
	Pos
	Mode CaptureMode
	Name string
}

// ClosureExpr is a block, lambda, local function or generator literal
type ClosureExpr struct {
	Pos
	Kind     ClosureKind
	Captures []*Capture
	Params   []*Variable
	Result   *TypeDecl
	Body     *BlockExpr
	// ExprBody is set for the => expr form; Body then holds a single return.
	ExprBody bool
}

func (c *ClosureExpr) TokenLiteral() string {
	switch c.Kind {
	case ClosureLambda:
		return "@"
	case ClosureLocalFunction:
		return "@@"
	case ClosureGenerator:
		return "generator"
	}
	return "$"
}
func (c *ClosureExpr) exprNode() {}

// ============ MAKE LITERALS ============

// InitMode is how a make-literal field or a variable receives its value
type InitMode int

const (
	InitNone InitMode = iota
	InitCopy          // =
	InitMove          // <-
	InitClone         // :=
)

func (m InitMode) String() string {
	switch m {
	case InitCopy:
		return "="
	case InitMove:
		return "<-"
	case InitClone:
		return ":="
	}
	return ""
}

// MakeField is one name = value entry of a make-struct literal or named call
type MakeField struct {
	Pos
	Name  string
	Mode  InitMode
	Value Expr
}

// MakeStructExpr: [[Point x=1, y=2; x=3, y=4]]
type MakeStructExpr struct {
	Pos
	Type           *TypeDecl
	Structs        [][]*MakeField
	UseInitializer bool // [[T() ...]]
	Where          Expr
}

func (m *MakeStructExpr) TokenLiteral() string { return "[[" }
func (m *MakeStructExpr) exprNode()            {}

// MakeTupleExpr: [[auto 1, "a"]]
type MakeTupleExpr struct {
	Pos
	Type   *TypeDecl
	Values []Expr
	Where  Expr
}

func (m *MakeTupleExpr) TokenLiteral() string { return "[[" }
func (m *MakeTupleExpr) exprNode()            {}

// MakeArrayExpr: [[int 1; 2; 3]] (fixed) or [{int 1; 2; 3}] (dynamic)
type MakeArrayExpr struct {
	Pos
	Type    *TypeDecl
	Values  []Expr
	Dynamic bool
	Where   Expr
}

func (m *MakeArrayExpr) TokenLiteral() string {
	if m.Dynamic {
		return "[{"
	}
	return "[["
}
func (m *MakeArrayExpr) exprNode() {}

// KeyValue is one entry of a table literal; Value is nil for sets
type KeyValue struct {
	Pos
	Key   Expr
	Value Expr
}

// MakeTableExpr: {{ "a" => 1; "b" => 2 }}
type MakeTableExpr struct {
	Pos
	Entries []*KeyValue
}

func (m *MakeTableExpr) TokenLiteral() string { return "{{" }
func (m *MakeTableExpr) exprNode()            {}

// ComprehensionExpr: [[for x in xs; x * x; where x > 2]]
type ComprehensionExpr struct {
	Pos
	Iterators []string
	Sources   []Expr
	Body      Expr
	Filter    Expr
	Dynamic   bool // [{ for ... }]
}

func (c *ComprehensionExpr) TokenLiteral() string { return "for" }
func (c *ComprehensionExpr) exprNode()            {}

// ============ CONTROL ============

// IfExpr: if cond { } elif cond { } else { }; Else is a *BlockExpr or a nested *IfExpr
type IfExpr struct {
	Pos
	Cond   Expr
	Then   *BlockExpr
	Else   Expr
	Static bool
}

func (i *IfExpr) TokenLiteral() string {
	if i.Static {
		return "static_if"
	}
	return "if"
}
func (i *IfExpr) exprNode() {}

// ForExpr: for a, b in xs, ys { }
type ForExpr struct {
	Pos
	Iterators []string
	Sources   []Expr
	Body      *BlockExpr
}

func (f *ForExpr) TokenLiteral() string { return "for" }
func (f *ForExpr) exprNode()            {}

// WhileExpr: while cond { }
type WhileExpr struct {
	Pos
	Cond Expr
	Body *BlockExpr
}

func (w *WhileExpr) TokenLiteral() string { return "while" }
func (w *WhileExpr) exprNode()            {}

// WithExpr: with obj { }
type WithExpr struct {
	Pos
	With Expr
	Body *BlockExpr
}

func (w *WithExpr) TokenLiteral() string { return "with" }
func (w *WithExpr) exprNode()            {}

// UnsafeExpr: unsafe { } or unsafe(expr)
type UnsafeExpr struct {
	Pos
	Body Expr
}

func (u *UnsafeExpr) TokenLiteral() string { return "unsafe" }
func (u *UnsafeExpr) exprNode()            {}

// TryExpr: try { } recover { }
type TryExpr struct {
	Pos
	Try     *BlockExpr
	Recover *BlockExpr
}

func (t *TryExpr) TokenLiteral() string { return "try" }
func (t *TryExpr) exprNode()            {}

// LabelExpr: label 1:
type LabelExpr struct {
	Pos
	Label int
}

func (l *LabelExpr) TokenLiteral() string { return "label" }
func (l *LabelExpr) exprNode()            {}

// GotoExpr: goto label 1 or goto expr
type GotoExpr struct {
	Pos
	Label  int
	Target Expr
}

func (g *GotoExpr) TokenLiteral() string { return "goto" }
func (g *GotoExpr) exprNode()            {}

// ReturnExpr: return, return expr, return <- expr
type ReturnExpr struct {
	Pos
	Value Expr
	Move  bool
}

func (r *ReturnExpr) TokenLiteral() string { return "return" }
func (r *ReturnExpr) exprNode()            {}

// YieldExpr: yield expr, yield <- expr
type YieldExpr struct {
	Pos
	Value Expr
	Move  bool
}

func (y *YieldExpr) TokenLiteral() string { return "yield" }
func (y *YieldExpr) exprNode()            {}

// BreakExpr: break
type BreakExpr struct {
	Pos
}

func (b *BreakExpr) TokenLiteral() string { return "break" }
func (b *BreakExpr) exprNode()            {}

// ContinueExpr: continue
type ContinueExpr struct {
	Pos
}

func (c *ContinueExpr) TokenLiteral() string { return "continue" }
func (c *ContinueExpr) exprNode()            {}

// LetExpr is a local let/var statement
type LetExpr struct {
	Pos
	Variables []*Variable
}

func (l *LetExpr) TokenLiteral() string {
	if len(l.Variables) > 0 && !l.Variables[0].Const {
		return "var"
	}
	return "let"
}
func (l *LetExpr) exprNode() {}

// ReaderExpr is the result of a %name~ reader macro. Handlers fill Text and may set Result.
type ReaderExpr struct {
	Pos
	Macro   string
	Text    string
	Result  Expr
	Handled bool
}

func (r *ReaderExpr) TokenLiteral() string { return "%" + r.Macro }
func (r *ReaderExpr) exprNode()            {}
