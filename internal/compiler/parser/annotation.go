package parser

import (
	"strconv"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// ============ ANNOTATIONS ============

// parseAnnotationList reads [name, name(arg = value, value), ...] in front of a declaration.
// A malformed list is reported once and skipped up to its closing bracket; the
// annotations read before the error are kept.
func (p *Parser) parseAnnotationList() []*ast.Annotation {
	open := p.curToken
	p.nextToken() // [

	var list []*ast.Annotation
	for !p.atClose(token.RBRACKET) && !p.curTokenIs(token.EOF) {
		a, err := p.parseAnnotation()
		if err != nil {
			p.report(err)
			p.skipAnnotationList()
			return list
		}
		list = p.appendAnnotation(list, a)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		p.report(err)
		p.skipAnnotationList()
		return list
	}
	if len(list) == 0 {
		p.addf(diag.SyntaxError, open.Span, "empty annotation list")
	}
	return list
}

// appendAnnotation drops a repeated annotation name, keeping the first.
func (p *Parser) appendAnnotation(list []*ast.Annotation, a *ast.Annotation) []*ast.Annotation {
	for _, prev := range list {
		if prev.Name == a.Name {
			p.addf(diag.DuplicateDeclaration, a.Span(), "annotation %s is already declared at %s", a.Name, prev.Span())
			return list
		}
	}
	return append(list, a)
}

func (p *Parser) parseAnnotation() (*ast.Annotation, error) {
	start := p.curToken
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	a := &ast.Annotation{Name: name}
	if p.accept(token.LPAREN) {
		if a.Args, err = p.parseAnnotationArgs(token.RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}
	a.Pos = p.span(start.Span)
	return a, nil
}

// parseAnnotationArgs reads name = value and positional values separated by ','.
func (p *Parser) parseAnnotationArgs(end token.TokenType) ([]*ast.AnnotationArg, error) {
	var args []*ast.AnnotationArg
	for !p.atClose(end) {
		start := p.curToken
		arg := &ast.AnnotationArg{}
		if (p.curTokenIs(token.IDENT) || token.IsKeyword(p.curToken.Literal)) && p.peekTokenIs(token.ASSIGN) {
			arg.Name = p.curToken.Literal
			p.nextToken()
			p.nextToken()
		}
		v, err := p.parseAnnotationValue()
		if err != nil {
			return nil, err
		}
		arg.Value = v
		arg.Pos = p.span(start.Span)
		args = append(args, arg)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return args, nil
}

// parseAnnotationValue reads a string, name, number, bool or nested [list].
func (p *Parser) parseAnnotationValue() (*ast.AnnotationValue, error) {
	tok := p.curToken
	switch tok.Type {
	case token.STRING:
		p.nextToken()
		return &ast.AnnotationValue{Kind: ast.ValueString, Str: tok.Literal}, nil
	case token.TRUE, token.FALSE:
		p.nextToken()
		return &ast.AnnotationValue{Kind: ast.ValueBool, Bool: tok.Type == token.TRUE}, nil
	case token.IDENT:
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		return &ast.AnnotationValue{Kind: ast.ValueIdent, Str: name}, nil
	case token.LBRACKET:
		p.nextToken()
		list, err := p.parseAnnotationArgs(token.RBRACKET)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return &ast.AnnotationValue{Kind: ast.ValueList, List: list}, nil
	}

	neg := p.accept(token.MINUS)
	num := p.curToken
	if _, isInt := intLiteralTypes[num.Type]; isInt {
		p.nextToken()
		v, err := parseIntText(num.Literal)
		if err != nil {
			return nil, diag.Errorf(diag.SyntaxError, num.Span, "invalid integer constant %s", num.Literal)
		}
		n := int64(v)
		if neg {
			n = -n
		}
		return &ast.AnnotationValue{Kind: ast.ValueInt, Int: n}, nil
	}
	if num.Type == token.FLOAT || num.Type == token.DOUBLE {
		p.nextToken()
		f, err := strconv.ParseFloat(num.Literal, 64)
		if err != nil {
			return nil, diag.Errorf(diag.SyntaxError, num.Span, "invalid floating constant %s", num.Literal)
		}
		if neg {
			f = -f
		}
		return &ast.AnnotationValue{Kind: ast.ValueFloat, Float: f}, nil
	}
	return nil, p.unexpected("annotation value")
}

// skipAnnotationList drops tokens through the ']' closing the current annotation list.
func (p *Parser) skipAnnotationList() {
	depth := 1
	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.LBRACKET:
			depth++
		case token.MAKE_OPEN:
			depth += 2
		case token.RBRACKET:
			depth--
		case token.MAKE_CLOSE:
			depth -= 2
		}
		p.nextToken()
		if depth <= 0 {
			return
		}
	}
}
