package parser

import (
	"strings"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/naming"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// ParseProgram parses declarations until the end of input. A declaration that fails
// to parse is reported and skipped; the returned program holds everything else.
// The diagnostic limit caps what is recorded, never what is parsed.
func (p *Parser) ParseProgram() *ast.Program {
	for !p.curTokenIs(token.EOF) {
		start := p.curToken
		if err := p.parseTopLevel(); err != nil {
			p.report(err)
			p.synchronize(start)
		}
		p.checkAngles(start.Span, 0)
	}
	return p.prog
}

// topLevelStarts are the tokens a declaration can begin with.
var topLevelStarts = map[token.TokenType]bool{
	token.DEF:      true,
	token.STRUCT:   true,
	token.CLASS:    true,
	token.ENUM:     true,
	token.TYPEDEF:  true,
	token.VARIANT:  true,
	token.BITFIELD: true,
	token.TUPLE:    true,
	token.LET:      true,
	token.VAR:      true,
	token.REQUIRE:  true,
	token.OPTIONS:  true,
	token.MODULE:   true,
	token.LBRACKET: true,
}

// synchronize skips to the next declaration keyword that starts a line no deeper than
// the declaration that failed. Generic brackets left open by the failure are dropped.
func (p *Parser) synchronize(start token.Token) {
	p.ctx.ResetAngles()
	if p.curToken.Span == start.Span {
		p.nextToken()
	}
	for !p.curTokenIs(token.EOF) {
		if topLevelStarts[p.curToken.Type] && p.onNewLine() && p.curToken.Span.Column <= start.Span.Column {
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseTopLevel() error {
	switch p.curToken.Type {
	case token.SEMICOLON:
		p.nextToken()
		return nil
	case token.MODULE:
		return p.parseModule()
	case token.REQUIRE:
		return p.parseRequire()
	case token.OPTIONS:
		return p.parseOptions()
	}

	var anns []*ast.Annotation
	if p.curTokenIs(token.LBRACKET) {
		anns = p.parseAnnotationList()
	}

	switch p.curToken.Type {
	case token.DEF:
		return p.parseFunctionDecl(anns)
	case token.STRUCT, token.CLASS:
		return p.parseStructure(anns)
	case token.ENUM:
		return p.parseEnum(anns)
	case token.TYPEDEF:
		return p.parseTypedef(anns)
	case token.VARIANT, token.TUPLE:
		return p.parseMemberAlias(anns)
	case token.BITFIELD:
		return p.parseBitfieldAlias(anns)
	case token.LET, token.VAR:
		return p.parseGlobals(anns)
	}
	if anns != nil {
		return p.unexpected("declaration after annotations")
	}
	return p.unexpected("declaration")
}

// ============ HELPERS ============

// checkName reports declared names the language rejects.
func (p *Parser) checkName(name string, span token.Span) {
	if err := naming.Check(name); err != nil {
		p.addf(diag.NamingViolation, span, "%v", err)
	}
}

// declName reads and checks the name of a declaration.
func (p *Parser) declName() (token.Token, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return name, err
	}
	p.checkName(name.Literal, name.Span)
	return name, nil
}

// visibility reads optional public/private modifiers and applies the module default.
func (p *Parser) visibility() bool {
	switch {
	case p.accept(token.PUBLIC):
		return false
	case p.accept(token.PRIVATE):
		return true
	}
	return p.ctx.DefaultPrivate()
}

// skipMember drops the rest of a broken struct field or enum entry.
func (p *Parser) skipMember(start token.Token) {
	if p.curToken.Span == start.Span {
		p.nextToken()
	}
	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.COMMA) &&
		!p.atClose(token.RBRACE) && !p.onNewLine() {
		p.nextToken()
	}
}

// ============ MODULE ============

// parseModule handles module name [shared] [public|private].
func (p *Parser) parseModule() error {
	start := p.curToken
	p.nextToken()
	name, err := p.declName()
	if err != nil {
		return err
	}
	mod := p.prog.Module
	if mod.Declared {
		p.addf(diag.DuplicateDeclaration, name.Span, "module is already declared as %s", mod.Name)
	}
	builtin := p.accept(token.SHARED)
	public := true
	switch {
	case p.accept(token.PUBLIC):
	case p.accept(token.PRIVATE):
		public = false
	}
	if mod.Declared {
		return nil
	}
	mod.Name = name.Literal
	mod.Declared = true
	mod.Builtin = builtin
	mod.Public = public
	if !public {
		mod.DefaultPrivate = true
		p.ctx.SetDefaultPrivate(true)
	}
	mod.Pos = p.span(start.Span)
	return nil
}

// parseRequire handles require [public] a/b/c [public] [as alias].
func (p *Parser) parseRequire() error {
	start := p.curToken
	p.nextToken()
	req := &ast.Require{}
	if p.accept(token.PUBLIC) {
		req.Public = true
	}

	var path strings.Builder
	for {
		seg, ok := p.word()
		if !ok {
			return p.unexpected("module name")
		}
		path.WriteString(seg)
		if !p.curTokenIs(token.SLASH) || p.onNewLine() {
			break
		}
		p.nextToken()
		path.WriteByte('/')
	}
	req.Module = path.String()

	if p.curTokenIs(token.PUBLIC) && !p.onNewLine() {
		p.nextToken()
		req.Public = true
	}
	if p.curTokenIs(token.AS) && !p.onNewLine() {
		p.nextToken()
		alias, err := p.expect(token.IDENT)
		if err != nil {
			return err
		}
		req.Alias = alias.Literal
	}
	req.Pos = p.span(start.Span)
	p.prog.Requires = append(p.prog.Requires, req)
	return nil
}

// parseOptions handles options name [= value], ...
func (p *Parser) parseOptions() error {
	p.nextToken()
	for {
		start := p.curToken
		name, ok := p.word()
		if !ok {
			return p.unexpected("option name")
		}
		opt := &ast.Option{Name: name, Value: &ast.AnnotationValue{Kind: ast.ValueBool, Bool: true}}
		if p.accept(token.ASSIGN) {
			v, err := p.parseAnnotationValue()
			if err != nil {
				return err
			}
			opt.Value = v
		}
		opt.Pos = p.span(start.Span)
		p.prog.Options = append(p.prog.Options, opt)
		p.applyOption(opt)
		if !p.accept(token.COMMA) {
			return nil
		}
	}
}

// applyOption updates parser policy for options that affect syntax.
func (p *Parser) applyOption(opt *ast.Option) {
	if opt.Value.Kind != ast.ValueBool {
		return
	}
	switch opt.Name {
	case "oxford_comma":
		p.ctx.SetOxfordComma(opt.Value.Bool)
	case "default_private":
		p.ctx.SetDefaultPrivate(opt.Value.Bool)
		p.prog.Module.DefaultPrivate = opt.Value.Bool
	}
}

// ============ GLOBALS ============

// parseGlobals handles let|var [shared] [public|private] decl and the { decl; ... } block form.
func (p *Parser) parseGlobals(anns []*ast.Annotation) error {
	start := p.curToken
	p.nextToken()
	shared := p.accept(token.SHARED)
	private := p.visibility()

	p.comments.BeforeGlobal(start.Span)
	declare := func() error {
		vstart := p.curToken
		v := &ast.Variable{
			Const:       start.Type == token.LET,
			Shared:      shared,
			Private:     private,
			Annotations: ast.CloneAnnotations(anns),
		}
		if p.accept(token.INSCOPE) {
			v.Inscope = true
		}
		if err := p.parseVariable(v); err != nil {
			return err
		}
		v.Pos = p.span(vstart.Span)
		if name, prev := p.prog.AddGlobal(v); prev != nil {
			p.addf(diag.DuplicateDeclaration, v.Span(), "global %s is already declared at %s", name, prev.Span())
		}
		p.comments.AfterGlobal(v.Name(), v.Span())
		return nil
	}

	if !p.curTokenIs(token.LBRACE) {
		return declare()
	}
	p.nextToken()
	for !p.atClose(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.accept(token.SEMICOLON) {
			continue
		}
		if err := declare(); err != nil {
			return err
		}
	}
	_, err := p.expect(token.RBRACE)
	return err
}

// ============ ENUMERATIONS ============

// parseEnum handles enum [public|private] Name [: base] { A, B = e, ... }.
func (p *Parser) parseEnum(anns []*ast.Annotation) error {
	start := p.curToken
	p.nextToken()
	p.comments.BeforeEnum(start.Span)

	e := &ast.Enum{Base: ast.TypeInt, Annotations: anns}
	e.Private = p.visibility()
	name, err := p.declName()
	if err != nil {
		return err
	}
	e.Name = name.Literal

	if p.accept(token.COLON) {
		base, err := p.parseType()
		if err != nil {
			return err
		}
		if base.Base.IsInteger() && len(base.Dims) == 0 {
			e.Base = base.Base
		} else {
			p.addf(diag.InvalidType, base.Span(), "enumeration base must be an integer type, not %s", base)
		}
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	for !p.atClose(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.accept(token.SEMICOLON) || p.accept(token.COMMA) {
			continue
		}
		entryStart := p.curToken
		entry, err := p.parseEnumEntry()
		if err != nil {
			p.report(err)
			p.skipMember(entryStart)
			continue
		}
		if prev := e.Find(entry.Name); prev != nil {
			p.addf(diag.DuplicateDeclaration, entry.Span(), "enumeration value %s.%s is already declared at %s", e.Name, entry.Name, prev.Span())
			continue
		}
		e.Entries = append(e.Entries, entry)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}
	e.Pos = p.span(start.Span)

	if prev := p.prog.AddEnum(e); prev != nil {
		p.addf(diag.DuplicateDeclaration, name.Span, "enumeration %s is already declared at %s", e.Name, prev.Span())
		return nil
	}
	p.comments.AfterEnum(e.Name, e.Span())
	return nil
}

func (p *Parser) parseEnumEntry() (*ast.EnumEntry, error) {
	name, err := p.declName()
	if err != nil {
		return nil, err
	}
	entry := &ast.EnumEntry{Pos: at(name), Name: name.Literal}
	if p.accept(token.ASSIGN) {
		v, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, err
		}
		entry.Value = v
		entry.At = name.Span.Merge(v.Span())
	}
	return entry, nil
}

// ============ STRUCTURES ============

// parseStructure handles struct and class declarations:
//
//	[annotation]
//	class [public|private] [sealed] Name [: Parent] {
//	    @tag a, b : int = 0
//	    def update(dt : float) { }
//	}
func (p *Parser) parseStructure(anns []*ast.Annotation) error {
	start := p.curToken
	p.nextToken()
	p.comments.BeforeStructure(start.Span)

	s := &ast.Structure{IsClass: start.Type == token.CLASS, Annotations: anns}
	s.Private = p.ctx.DefaultPrivate()
	for {
		switch {
		case p.accept(token.PUBLIC):
			s.Private = false
			continue
		case p.accept(token.PRIVATE):
			s.Private = true
			continue
		case p.accept(token.SEALED):
			s.Sealed = true
			continue
		}
		break
	}

	name, err := p.declName()
	if err != nil {
		return err
	}
	s.Name = name.Literal
	if p.accept(token.COLON) {
		parent, err := p.parseQualifiedName()
		if err != nil {
			return err
		}
		s.Parent = parent
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	methods := map[string]*ast.Function{}
	for !p.atClose(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.accept(token.SEMICOLON) || p.accept(token.COMMA) {
			continue
		}

		var memberAnns []*ast.Annotation
		if p.curTokenIs(token.LBRACKET) {
			memberAnns = p.parseAnnotationList()
		}
		if p.curTokenIs(token.DEF) {
			fn, err := p.parseFunction(memberAnns, s.Name)
			if err != nil {
				return err
			}
			key := fn.Signature()
			if prev, ok := methods[key]; ok {
				p.addf(diag.DuplicateDeclaration, fn.Span(), "method %s is already declared at %s", naming.Method(s.Name, fn.Name), prev.Span())
				continue
			}
			methods[key] = fn
			s.Methods = append(s.Methods, fn)
			continue
		}

		fieldStart := p.curToken
		field, err := p.parseField(memberAnns)
		if err != nil {
			p.report(err)
			p.skipMember(fieldStart)
			continue
		}
		if dup := p.duplicateField(s, field); dup != "" {
			p.addf(diag.DuplicateDeclaration, field.Span(), "field %s.%s is already declared", s.Name, dup)
			continue
		}
		s.Fields = append(s.Fields, field)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}
	s.Pos = p.span(start.Span)

	if prev := p.prog.AddStructure(s); prev != nil {
		p.addf(diag.DuplicateDeclaration, name.Span, "structure %s is already declared at %s", s.Name, prev.Span())
		return nil
	}
	p.comments.AfterStructure(s.Name, s.Span())
	return nil
}

func (p *Parser) duplicateField(s *ast.Structure, f *ast.Field) string {
	for _, n := range f.Names {
		if s.FindField(n) != nil {
			return n
		}
	}
	return ""
}

// parseField reads [@ann[= v]]... [public|private] a, b [: T] [= init].
func (p *Parser) parseField(anns []*ast.Annotation) (*ast.Field, error) {
	start := p.curToken
	f := &ast.Field{Annotations: anns}

	for p.curTokenIs(token.AT) {
		a, err := p.parseFieldAnnotation()
		if err != nil {
			return nil, err
		}
		f.Annotations = p.appendAnnotation(f.Annotations, a)
	}
	switch {
	case p.accept(token.PRIVATE):
		f.Private = true
	case p.accept(token.PUBLIC):
	}

	for {
		name, err := p.declName()
		if err != nil {
			return nil, err
		}
		f.Names = append(f.Names, name.Literal)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if p.accept(token.COLON) {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		f.Type = t
	}
	if mode, ok := initModes[p.curToken.Type]; ok {
		p.nextToken()
		init, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, err
		}
		f.Init, f.InitMode = init, mode
	}
	if f.Type == nil && f.Init == nil {
		return nil, diag.Errorf(diag.SyntaxError, start.Span, "field %s needs a type or an initializer", f.Names[0])
	}
	f.Pos = p.span(start.Span)
	return f, nil
}

// parseFieldAnnotation handles @name and @name = value in front of a field.
func (p *Parser) parseFieldAnnotation() (*ast.Annotation, error) {
	start := p.curToken
	p.nextToken() // @
	name, ok := p.word()
	if !ok {
		return nil, p.unexpected("annotation name")
	}
	a := &ast.Annotation{Name: name}
	if p.accept(token.ASSIGN) {
		vstart := p.curToken
		v, err := p.parseAnnotationValue()
		if err != nil {
			return nil, err
		}
		a.Args = []*ast.AnnotationArg{{Pos: p.span(vstart.Span), Value: v}}
	}
	a.Pos = p.span(start.Span)
	return a, nil
}

// ============ FUNCTIONS ============

// parseFunctionDecl parses a top-level def and registers it.
func (p *Parser) parseFunctionDecl(anns []*ast.Annotation) error {
	start := p.curToken
	p.comments.BeforeFunction(start.Span)
	fn, err := p.parseFunction(anns, "")
	if err != nil {
		return err
	}
	if prev := p.prog.AddFunction(fn); prev != nil {
		p.addf(diag.DuplicateDeclaration, fn.Span(), "function %s is already declared at %s", fn.Signature(), prev.Span())
		return nil
	}
	p.comments.AfterFunction(fn.Name, fn.Span())
	return nil
}

// parseFunction handles
//
//	def [public|private|static|override|sealed|abstract] name [(params)] [: T] [{ body }]
//
// class names the owning structure for methods.
func (p *Parser) parseFunction(anns []*ast.Annotation, class string) (*ast.Function, error) {
	start := p.curToken
	p.nextToken() // def

	fn := &ast.Function{Annotations: anns, Class: class, Private: p.ctx.DefaultPrivate()}
	if class != "" {
		fn.Private = false
	}
modifiers:
	for {
		switch p.curToken.Type {
		case token.PUBLIC:
			fn.Private = false
		case token.PRIVATE:
			fn.Private = true
		case token.STATIC:
			fn.Static = true
		case token.OVERRIDE:
			fn.Override = true
		case token.SEALED:
			fn.Sealed = true
		case token.ABSTRACT:
			fn.Abstract = true
		default:
			break modifiers
		}
		p.nextToken()
	}

	if p.accept(token.OPERATOR) {
		name, err := p.parseOperatorName()
		if err != nil {
			return nil, err
		}
		fn.Name, fn.Operator = name, true
	} else {
		name, err := p.declName()
		if err != nil {
			return nil, err
		}
		fn.Name = name.Literal
	}

	if p.curTokenIs(token.LPAREN) {
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		fn.Params = params
	}
	if p.accept(token.COLON) {
		res, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.Result = res
	}
	fn.Generic = isGenericSignature(fn.Params)

	if fn.Abstract {
		p.accept(token.SEMICOLON)
	} else {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		fn.Body = body
	}
	fn.Pos = p.span(start.Span)
	return fn, nil
}

// isGenericSignature reports parameters that are untyped or contain auto.
func isGenericSignature(params []*ast.Variable) bool {
	for _, v := range params {
		if v.Type == nil || v.Type.IsGeneric() {
			return true
		}
	}
	return false
}

// namedOperators may be followed by a field or variant name: operator . foo, operator as bar.
var namedOperators = map[token.TokenType]bool{
	token.DOT:      true,
	token.SAFE_DOT: true,
	token.AS:       true,
	token.IS:       true,
	token.SAFE_AS:  true,
}

// parseOperatorName reads the name after def operator.
func (p *Parser) parseOperatorName() (string, error) {
	tok := p.curToken
	switch {
	case tok.Type == token.LBRACKET:
		p.nextToken()
		if _, err := p.expect(token.RBRACKET); err != nil {
			return "", err
		}
		return "[]", nil
	case tok.Type == token.SAFE_INDEX:
		p.nextToken()
		if _, err := p.expect(token.RBRACKET); err != nil {
			return "", err
		}
		return "?[]", nil
	case namedOperators[tok.Type]:
		p.nextToken()
		if p.curTokenIs(token.IDENT) {
			name := p.curToken.Literal
			p.nextToken()
			return tok.Literal + " " + name, nil
		}
		return tok.Literal, nil
	case tok.Type == token.DELETE:
		p.nextToken()
		return "delete", nil
	}
	if _, ok := token.LookupOperator(tok.Literal); ok && tok.Type != token.LPAREN && tok.Type != token.LBRACE {
		p.nextToken()
		return tok.Literal, nil
	}
	return "", p.unexpected("operator")
}

// ============ ALIASES ============

// registerAlias records a named type, keeping the first of two declarations.
func (p *Parser) registerAlias(a *ast.Alias, name token.Token) {
	if prev := p.prog.AddAlias(a); prev != nil {
		p.addf(diag.DuplicateDeclaration, name.Span, "type alias %s is already declared at %s", a.Name, prev.Span())
		return
	}
	p.comments.AfterAlias(a.Name, a.Span())
}

// parseTypedef handles typedef Name = T and typedef { A = T; B = T }.
func (p *Parser) parseTypedef(anns []*ast.Annotation) error {
	p.nextToken()
	private := p.visibility()

	declare := func() error {
		start := p.curToken
		p.comments.BeforeAlias(start.Span)
		name, err := p.declName()
		if err != nil {
			return err
		}
		if _, err := p.expect(token.ASSIGN); err != nil {
			return err
		}
		t, err := p.parseType()
		if err != nil {
			return err
		}
		p.registerAlias(&ast.Alias{
			Pos:         p.span(start.Span),
			Name:        name.Literal,
			Kind:        ast.AliasTypedef,
			Type:        t,
			Private:     private,
			Annotations: ast.CloneAnnotations(anns),
		}, name)
		return nil
	}

	if !p.curTokenIs(token.LBRACE) {
		return declare()
	}
	p.nextToken()
	for !p.atClose(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.accept(token.SEMICOLON) {
			continue
		}
		if err := declare(); err != nil {
			return err
		}
	}
	_, err := p.expect(token.RBRACE)
	return err
}

// parseMemberAlias handles variant Name { a : T; ... } and tuple Name { [a :] T; ... }.
func (p *Parser) parseMemberAlias(anns []*ast.Annotation) error {
	start := p.curToken
	p.nextToken()
	p.comments.BeforeAlias(start.Span)
	a := &ast.Alias{Kind: ast.AliasTuple, Annotations: anns}
	t := &ast.TypeDecl{Base: ast.TypeTuple}
	if start.Type == token.VARIANT {
		a.Kind, t.Base = ast.AliasVariant, ast.TypeVariant
	}
	a.Private = p.visibility()
	name, err := p.declName()
	if err != nil {
		return err
	}
	a.Name = name.Literal

	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	for !p.atClose(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.accept(token.SEMICOLON) || p.accept(token.COMMA) {
			continue
		}
		if err := p.parseMembers(t, start.Type == token.VARIANT, func() bool { return p.atClose(token.RBRACE) }); err != nil {
			return err
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}
	a.Pos = p.span(start.Span)
	t.Pos = a.Pos
	a.Type = t
	p.registerAlias(a, name)
	return nil
}

// parseBitfieldAlias handles bitfield Name [: uint8|uint16|uint|uint64] { a; b; c }.
func (p *Parser) parseBitfieldAlias(anns []*ast.Annotation) error {
	start := p.curToken
	p.nextToken()
	p.comments.BeforeAlias(start.Span)
	a := &ast.Alias{Kind: ast.AliasBitfield, Annotations: anns}
	t := &ast.TypeDecl{Base: ast.TypeBitfield, BitBase: ast.TypeUInt}
	a.Private = p.visibility()
	name, err := p.declName()
	if err != nil {
		return err
	}
	a.Name = name.Literal

	if p.accept(token.COLON) {
		base, err := p.parseType()
		if err != nil {
			return err
		}
		if _, ok := bitfieldWidths[base.Base]; ok && len(base.Dims) == 0 {
			t.BitBase = base.Base
		} else {
			p.addf(diag.InvalidType, base.Span(), "bitfield storage must be uint8, uint16, uint or uint64, not %s", base)
		}
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	for !p.atClose(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.accept(token.SEMICOLON) || p.accept(token.COMMA) {
			continue
		}
		bit, err := p.declName()
		if err != nil {
			return err
		}
		p.addBit(t, bit)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return err
	}
	a.Pos = p.span(start.Span)
	t.Pos = a.Pos
	p.checkBitfield(t)
	a.Type = t
	p.registerAlias(a, name)
	return nil
}
