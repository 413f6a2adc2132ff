// Package dump renders parsed programs as S-expressions. The output is
// deterministic, so tests and tools can compare trees as text.
package dump

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btouchard/dasfront/internal/compiler/ast"
)

type printer struct {
	buf    strings.Builder
	indent int
}

// Expr renders a single expression on one line.
func Expr(e ast.Expr) string {
	p := &printer{}
	p.expr(e)
	return p.buf.String()
}

// Type renders a type, or "-" for a missing one.
func Type(t *ast.TypeDecl) string {
	if t == nil {
		return "-"
	}
	return t.String()
}

// Program renders every declaration of prog, one per line group, in declaration order
// within each table.
func Program(prog *ast.Program) string {
	p := &printer{}
	p.program(prog)
	return p.buf.String()
}

func (p *printer) emit(format string, args ...any) {
	fmt.Fprintf(&p.buf, format, args...)
}

func (p *printer) line(format string, args ...any) {
	p.buf.WriteString(strings.Repeat("  ", p.indent))
	p.emit(format, args...)
	p.buf.WriteByte('\n')
}

// ============ DECLARATIONS ============

func (p *printer) program(prog *ast.Program) {
	m := prog.Module
	if m.Declared {
		p.line("(module %s%s%s)", m.Name, flag(m.Builtin, " shared"), flag(!m.Public, " private"))
	}
	for _, r := range prog.Requires {
		alias := ""
		if r.Alias != "" {
			alias = " as " + r.Alias
		}
		p.line("(require %s%s%s)", r.Module, alias, flag(r.Public, " public"))
	}
	for _, o := range prog.Options {
		p.line("(options %s %s)", o.Name, o.Value)
	}
	for _, a := range prog.Aliases {
		p.line("(%s %s%s %s)", a.Kind, a.Name, annotations(a.Annotations), a.Type)
	}
	for _, e := range prog.Enums {
		p.line("(enum %s : %s%s", e.Name, e.Base, annotations(e.Annotations))
		p.indent++
		for _, en := range e.Entries {
			if en.Value != nil {
				p.line("(%s %s)", en.Name, Expr(en.Value))
			} else {
				p.line("(%s)", en.Name)
			}
		}
		p.indent--
		p.line(")")
	}
	for _, s := range prog.Structures {
		parent := ""
		if s.Parent != "" {
			parent = " : " + s.Parent
		}
		p.line("(%s %s%s%s%s", s.TokenLiteral(), s.Name, parent, flag(s.Sealed, " sealed"), annotations(s.Annotations))
		p.indent++
		for _, f := range s.Fields {
			init := ""
			if f.Init != nil {
				init = " " + f.InitMode.String() + " " + Expr(f.Init)
			}
			p.line("(field %s%s : %s%s)", strings.Join(f.Names, " "), annotations(f.Annotations), Type(f.Type), init)
		}
		for _, fn := range s.Methods {
			p.function(fn)
		}
		p.indent--
		p.line(")")
	}
	for _, v := range prog.Globals {
		p.line("%s", variable(v, true))
	}
	for _, fn := range prog.Functions {
		p.function(fn)
	}
	for _, fn := range prog.Generics {
		p.function(fn)
	}
}

func (p *printer) function(fn *ast.Function) {
	var mods []string
	for _, m := range []struct {
		on   bool
		name string
	}{
		{fn.Private, "private"}, {fn.Static, "static"}, {fn.Override, "override"},
		{fn.Sealed, "sealed"}, {fn.Abstract, "abstract"}, {fn.Generic, "generic"},
	} {
		if m.on {
			mods = append(mods, m.name)
		}
	}
	name := fn.Name
	if fn.Operator {
		name = "operator " + name
	}
	params := make([]string, len(fn.Params))
	for i, v := range fn.Params {
		params[i] = variable(v, false)
	}
	head := fmt.Sprintf("(def %s (%s) : %s", name, strings.Join(params, " "), Type(fn.Result))
	if len(mods) > 0 {
		head += " [" + strings.Join(mods, " ") + "]"
	}
	head += annotations(fn.Annotations)
	if fn.Body == nil {
		p.line("%s)", head)
		return
	}
	p.line("%s", head)
	p.indent++
	p.line("%s", Expr(fn.Body))
	p.indent--
	p.line(")")
}

func variable(v *ast.Variable, global bool) string {
	var b strings.Builder
	b.WriteString("(" + v.TokenLiteral())
	if global && v.Shared {
		b.WriteString(" shared")
	}
	if global && v.Private {
		b.WriteString(" private")
	}
	if v.Inscope {
		b.WriteString(" inscope")
	}
	for _, n := range v.Names {
		b.WriteString(" " + n.Name)
		if n.Aka != "" {
			b.WriteString(" aka " + n.Aka)
		}
	}
	b.WriteString(" : " + Type(v.Type))
	if v.Ref {
		b.WriteString(" &")
	}
	if v.Init != nil {
		b.WriteString(" " + v.InitMode.String() + " " + Expr(v.Init))
	}
	b.WriteString(annotations(v.Annotations))
	b.WriteString(")")
	return b.String()
}

func annotations(list []*ast.Annotation) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = a.Name
		if len(a.Args) > 0 {
			args := make([]string, len(a.Args))
			for j, arg := range a.Args {
				args[j] = arg.String()
			}
			parts[i] += "(" + strings.Join(args, ", ") + ")"
		}
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func flag(on bool, s string) string {
	if on {
		return s
	}
	return ""
}

// ============ EXPRESSIONS ============

func (p *printer) list(head string, items ...ast.Expr) {
	p.emit("(%s", head)
	for _, e := range items {
		p.emit(" ")
		p.expr(e)
	}
	p.emit(")")
}

func (p *printer) expr(e ast.Expr) {
	switch n := e.(type) {
	case nil:
		p.emit("<nil>")
	case *ast.IntLit:
		p.emit("%s", n.Text)
		switch n.Type {
		case ast.TypeUInt:
			p.emit("u")
		case ast.TypeInt64:
			p.emit("l")
		case ast.TypeUInt64:
			p.emit("ul")
		case ast.TypeInt8:
			p.emit("i8")
		case ast.TypeUInt8:
			p.emit("u8")
		}
	case *ast.FloatLit:
		p.emit("%s", n.Text)
		if n.Double {
			p.emit("d")
		}
	case *ast.BoolLit:
		p.emit("%t", n.Value)
	case *ast.NullLit:
		p.emit("null")
	case *ast.CharLit:
		p.emit("%s", strconv.QuoteRune(n.Value))
	case *ast.StringLit:
		p.emit("%s", strconv.Quote(n.Value))
	case *ast.StringBuilderExpr:
		p.list("string_builder", n.Elements...)
	case *ast.VarExpr:
		p.emit("%s", n.Name)

	case *ast.BinaryExpr:
		p.list(string(n.Op), n.Left, n.Right)
	case *ast.UnaryExpr:
		p.list(string(n.Op), n.Operand)
	case *ast.PostfixExpr:
		p.list("post"+string(n.Op), n.Operand)
	case *ast.TernaryExpr:
		p.list("?", n.Cond, n.Then, n.Else)
	case *ast.CopyExpr:
		p.list("=", n.Left, n.Right)
	case *ast.MoveExpr:
		p.list("<-", n.Left, n.Right)
	case *ast.CloneExpr:
		p.list(":=", n.Left, n.Right)
	case *ast.OpAssignExpr:
		p.list(n.TokenLiteral(), n.Left, n.Right)

	case *ast.FieldExpr:
		name := n.Name
		if n.Incomplete {
			name = "<incomplete>"
		}
		p.emit("(. ")
		p.expr(n.Value)
		p.emit(" %s)", name)
	case *ast.SafeFieldExpr:
		p.emit("(?. ")
		p.expr(n.Value)
		p.emit(" %s)", n.Name)
	case *ast.IndexExpr:
		p.list("[]", n.Value, n.Index)
	case *ast.SafeIndexExpr:
		p.list("?[]", n.Value, n.Index)
	case *ast.IsVariantExpr:
		p.variantOp("is", n.Value, n.Name)
	case *ast.AsVariantExpr:
		p.variantOp("as", n.Value, n.Name)
	case *ast.SafeAsVariantExpr:
		p.variantOp("?as", n.Value, n.Name)

	case *ast.CallExpr:
		p.list("call "+n.Name, n.Args...)
	case *ast.InvokeExpr:
		p.list("invoke", append([]ast.Expr{n.Func}, n.Args...)...)
	case *ast.MethodCallExpr:
		p.emit("(-> ")
		p.expr(n.Object)
		p.emit(" %s", n.Name)
		for _, a := range n.Args {
			p.emit(" ")
			p.expr(a)
		}
		p.emit(")")
	case *ast.NamedCallExpr:
		p.emit("(call %s", n.Name)
		for _, f := range n.Args {
			p.emit(" ")
			p.field(f)
		}
		p.emit(")")

	case *ast.CastExpr:
		p.list(n.TokenLiteral()+"<"+n.Type.String()+">", n.Value)
	case *ast.TypeInfoExpr:
		trait := n.Trait
		if n.SubTrait != "" {
			trait += "<" + n.SubTrait
			if n.Extra != "" {
				trait += ";" + n.Extra
			}
			trait += ">"
		}
		if n.Type != nil {
			p.emit("(typeinfo %s type<%s>)", trait, n.Type)
		} else {
			p.list("typeinfo "+trait, n.Value)
		}
	case *ast.TypeExpr:
		p.emit("(type<%s>)", n.Type)
	case *ast.NewExpr:
		if n.Initializer != nil {
			p.list("new", n.Initializer)
			return
		}
		head := "new " + n.Type.String()
		if n.HasArgs {
			head += " ()"
		}
		p.list(head, n.Args...)
	case *ast.DeleteExpr:
		p.list("delete", n.Value)
	case *ast.AddrExpr:
		if n.Type != nil {
			p.emit("(@@<%s> %s)", n.Type, n.Name)
		} else {
			p.emit("(@@ %s)", n.Name)
		}

	case *ast.BlockExpr:
		if n == nil {
			p.emit("<nil>")
			return
		}
		p.list("block", n.List...)
	case *ast.ClosureExpr:
		p.closure(n)

	case *ast.MakeStructExpr:
		head := "make_struct " + n.Type.String()
		if n.UseInitializer {
			head += "()"
		}
		p.emit("(%s", head)
		for _, s := range n.Structs {
			p.emit(" [")
			for i, f := range s {
				if i > 0 {
					p.emit(" ")
				}
				p.field(f)
			}
			p.emit("]")
		}
		p.where(n.Where)
		p.emit(")")
	case *ast.MakeTupleExpr:
		p.emit("(make_tuple %s", n.Type)
		p.values(n.Values)
		p.where(n.Where)
		p.emit(")")
	case *ast.MakeArrayExpr:
		head := "make_array"
		if n.Dynamic {
			head = "make_dynamic"
		}
		p.emit("(%s %s", head, n.Type)
		p.values(n.Values)
		p.where(n.Where)
		p.emit(")")
	case *ast.MakeTableExpr:
		p.emit("(make_table")
		for _, kv := range n.Entries {
			p.emit(" ")
			if kv.Value == nil {
				p.expr(kv.Key)
				continue
			}
			p.list("=>", kv.Key, kv.Value)
		}
		p.emit(")")
	case *ast.ComprehensionExpr:
		head := "comprehension"
		if n.Dynamic {
			head = "dynamic_comprehension"
		}
		p.emit("(%s (%s)", head, strings.Join(n.Iterators, " "))
		p.values(n.Sources)
		p.emit(" ")
		p.expr(n.Body)
		if n.Filter != nil {
			p.emit(" where ")
			p.expr(n.Filter)
		}
		p.emit(")")

	case *ast.IfExpr:
		head := "if"
		if n.Static {
			head = "static_if"
		}
		if n.Else != nil {
			p.list(head, n.Cond, n.Then, n.Else)
		} else {
			p.list(head, n.Cond, n.Then)
		}
	case *ast.ForExpr:
		p.emit("(for (%s)", strings.Join(n.Iterators, " "))
		p.values(n.Sources)
		p.emit(" ")
		p.expr(n.Body)
		p.emit(")")
	case *ast.WhileExpr:
		p.list("while", n.Cond, n.Body)
	case *ast.WithExpr:
		p.list("with", n.With, n.Body)
	case *ast.UnsafeExpr:
		p.list("unsafe", n.Body)
	case *ast.TryExpr:
		if n.Recover != nil {
			p.list("try", n.Try, n.Recover)
		} else {
			p.list("try", n.Try)
		}
	case *ast.LabelExpr:
		p.emit("(label %d)", n.Label)
	case *ast.GotoExpr:
		if n.Target != nil {
			p.list("goto", n.Target)
		} else {
			p.emit("(goto label %d)", n.Label)
		}
	case *ast.ReturnExpr:
		p.result("return", n.Value, n.Move)
	case *ast.YieldExpr:
		p.result("yield", n.Value, n.Move)
	case *ast.BreakExpr:
		p.emit("(break)")
	case *ast.ContinueExpr:
		p.emit("(continue)")
	case *ast.LetExpr:
		for i, v := range n.Variables {
			if i > 0 {
				p.emit(" ")
			}
			p.emit("%s", variable(v, false))
		}
	case *ast.ReaderExpr:
		if n.Result != nil {
			p.list("%"+n.Macro, n.Result)
		} else {
			p.emit("(%%%s %s)", n.Macro, strconv.Quote(n.Text))
		}
	default:
		p.emit("(? %T)", e)
	}
}

func (p *printer) variantOp(op string, v ast.Expr, name string) {
	p.emit("(%s ", op)
	p.expr(v)
	p.emit(" %s)", name)
}

func (p *printer) field(f *ast.MakeField) {
	p.emit("(%s %s ", f.Mode, f.Name)
	p.expr(f.Value)
	p.emit(")")
}

func (p *printer) values(list []ast.Expr) {
	for _, v := range list {
		p.emit(" ")
		p.expr(v)
	}
}

func (p *printer) where(e ast.Expr) {
	if e == nil {
		return
	}
	p.emit(" where ")
	p.expr(e)
}

func (p *printer) result(head string, v ast.Expr, move bool) {
	if move {
		head += " <-"
	}
	if v == nil {
		p.emit("(%s)", head)
		return
	}
	p.list(head, v)
}

func (p *printer) closure(c *ast.ClosureExpr) {
	p.emit("(%s", c.TokenLiteral())
	if len(c.Captures) > 0 {
		caps := make([]string, len(c.Captures))
		for i, cp := range c.Captures {
			caps[i] = cp.Mode.String() + cp.Name
		}
		p.emit(" [%s]", strings.Join(caps, " "))
	}
	params := make([]string, len(c.Params))
	for i, v := range c.Params {
		params[i] = variable(v, false)
	}
	p.emit(" (%s)", strings.Join(params, " "))
	if c.Result != nil {
		p.emit(" : %s", c.Result)
	}
	p.emit(" ")
	p.expr(c.Body)
	p.emit(")")
}
