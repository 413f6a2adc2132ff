package parser

import (
	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

var initModes = map[token.TokenType]ast.InitMode{
	token.ASSIGN: ast.InitCopy,
	token.MOVE:   ast.InitMove,
	token.CLONE:  ast.InitClone,
}

// ============ [[ ... ]] ============

// parseMakeLiteral handles every [[ ... ]] form:
//
//	[[Point x = 1, y := 2; x = 3]]   make struct, one struct per ';'
//	[[Point()]]                      make struct with the default initializer
//	[[auto 1, "a"]]                  make tuple
//	[[int 1; 2; 3]]                  make fixed array
//	[[for x in xs; x * x; where x > 1]]
func (p *Parser) parseMakeLiteral() (ast.Expr, error) {
	start := p.curToken
	p.nextToken() // [[

	if p.curTokenIs(token.FOR) {
		c, err := p.parseComprehension(token.MAKE_CLOSE)
		if err != nil {
			return nil, err
		}
		c.Pos = p.span(start.Span)
		return c, nil
	}

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}

	var lit ast.Expr
	switch {
	case p.curTokenIs(token.LPAREN) && p.peekTokenIs(token.RPAREN):
		p.nextToken()
		p.nextToken()
		ms := &ast.MakeStructExpr{Type: typ, UseInitializer: true}
		if p.isFieldStart() {
			if ms.Structs, err = p.parseMakeStructs(); err != nil {
				return nil, err
			}
		}
		lit = ms
	case p.isFieldStart():
		structs, err := p.parseMakeStructs()
		if err != nil {
			return nil, err
		}
		lit = &ast.MakeStructExpr{Type: typ, Structs: structs}
	case p.atMakeEnd(token.MAKE_CLOSE) && typ.Base == ast.TypeNamed && len(typ.Dims) == 0:
		lit = &ast.MakeStructExpr{Type: typ}
	default:
		values, comma, err := p.parseMakeValues(token.MAKE_CLOSE)
		if err != nil {
			return nil, err
		}
		if isTupleMake(typ, values, comma) {
			lit = &ast.MakeTupleExpr{Type: typ, Values: values}
		} else {
			lit = &ast.MakeArrayExpr{Type: typ, Values: values}
		}
	}

	where, err := p.parseMakeWhere()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDouble(token.MAKE_CLOSE); err != nil {
		return nil, err
	}

	pos := p.span(start.Span)
	switch l := lit.(type) {
	case *ast.MakeStructExpr:
		l.Pos, l.Where = pos, where
	case *ast.MakeTupleExpr:
		l.Pos, l.Where = pos, where
	case *ast.MakeArrayExpr:
		l.Pos, l.Where = pos, where
	}
	return lit, nil
}

// isTupleMake decides between [[auto 1, 2]] (tuple) and [[auto 1; 2]] (array).
func isTupleMake(typ *ast.TypeDecl, values []ast.Expr, comma bool) bool {
	if len(typ.Dims) > 0 {
		return false
	}
	switch typ.Base {
	case ast.TypeTuple:
		return true
	case ast.TypeAuto:
		return comma && len(values) > 1
	}
	return false
}

// isFieldStart reports whether a make-struct field initializer follows: name = | := | <-
func (p *Parser) isFieldStart() bool {
	if !p.curTokenIs(token.IDENT) {
		return false
	}
	_, ok := initModes[p.peekToken().Type]
	return ok
}

// atMakeEnd reports whether the body of a make literal is over.
func (p *Parser) atMakeEnd(closing token.TokenType) bool {
	return p.curTokenIs(token.WHERE) || p.curTokenIs(token.EOF) || p.atDouble(closing)
}

// parseMakeStructs reads ';' separated field lists.
func (p *Parser) parseMakeStructs() ([][]*ast.MakeField, error) {
	var structs [][]*ast.MakeField
	for {
		fields, err := p.parseMakeFields(token.MAKE_CLOSE)
		if err != nil {
			return nil, err
		}
		structs = append(structs, fields)
		if !p.accept(token.SEMICOLON) || !p.isFieldStart() {
			return structs, nil
		}
	}
}

// parseMakeFields reads name = value pairs separated by ','. It stops before ';',
// where and the closing bracket, which may be a single ']' for named calls.
func (p *Parser) parseMakeFields(closing token.TokenType) ([]*ast.MakeField, error) {
	done := func() bool {
		if closing == token.RBRACKET {
			return p.atClose(token.RBRACKET)
		}
		return p.curTokenIs(token.SEMICOLON) || p.atMakeEnd(closing)
	}

	var fields []*ast.MakeField
	for !done() {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		mode, ok := initModes[p.curToken.Type]
		if !ok {
			return nil, p.unexpected("'=', ':=' or '<-'")
		}
		p.nextToken()
		value, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.MakeField{
			Pos:   ast.Pos{At: name.Span.Merge(value.Span())},
			Name:  name.Literal,
			Mode:  mode,
			Value: value,
		})
		if !p.accept(token.COMMA) {
			break
		}
		if done() && !p.ctx.OxfordComma() {
			return nil, p.errorf("trailing ',' in field list")
		}
	}
	return fields, nil
}

// parseMakeValues reads values separated by ';' or ','. comma reports whether ','
// was the separator used.
func (p *Parser) parseMakeValues(closing token.TokenType) (values []ast.Expr, comma bool, err error) {
	for !p.atMakeEnd(closing) {
		v, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, false, err
		}
		values = append(values, v)

		switch {
		case p.accept(token.SEMICOLON):
		case p.accept(token.COMMA):
			comma = true
			if p.atMakeEnd(closing) && !p.ctx.OxfordComma() {
				return nil, false, p.errorf("trailing ',' in make literal")
			}
		default:
			return values, comma, nil
		}
	}
	return values, comma, nil
}

// parseMakeWhere reads the optional post-construction initializer.
func (p *Parser) parseMakeWhere() (ast.Expr, error) {
	p.accept(token.SEMICOLON)
	if !p.accept(token.WHERE) {
		return nil, nil
	}
	return p.parseExpression(LOWEST)
}

// parseComprehension reads for names in sources; body [; where cond].
// The current token is 'for'; the closing bracket is left for the caller.
func (p *Parser) parseComprehension(closing token.TokenType) (*ast.ComprehensionExpr, error) {
	p.nextToken() // for
	c := &ast.ComprehensionExpr{Dynamic: closing == token.ARRAY_CLOSE}

	names, sources, err := p.parseForHeader()
	if err != nil {
		return nil, err
	}
	c.Iterators, c.Sources = names, sources

	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	if c.Body, err = p.parseExpression(LOWEST); err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	if p.accept(token.WHERE) {
		if c.Filter, err = p.parseExpression(LOWEST); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectDouble(closing); err != nil {
		return nil, err
	}
	return c, nil
}

// parseForHeader reads a, b in xs, ys as used by for loops and comprehensions.
func (p *Parser) parseForHeader() ([]string, []ast.Expr, error) {
	var names []string
	for {
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, name.Literal)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, nil, err
	}
	var sources []ast.Expr
	for {
		src, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, src)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return names, sources, nil
}

// ============ [{ ... }] ============

// parseMakeDynamic handles [{int 1; 2}] dynamic arrays and [{for ...}] comprehensions.
func (p *Parser) parseMakeDynamic() (ast.Expr, error) {
	start := p.curToken
	p.nextToken() // [{

	if p.curTokenIs(token.FOR) {
		c, err := p.parseComprehension(token.ARRAY_CLOSE)
		if err != nil {
			return nil, err
		}
		c.Pos = p.span(start.Span)
		return c, nil
	}

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	values, _, err := p.parseMakeValues(token.ARRAY_CLOSE)
	if err != nil {
		return nil, err
	}
	where, err := p.parseMakeWhere()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectDouble(token.ARRAY_CLOSE); err != nil {
		return nil, err
	}
	return &ast.MakeArrayExpr{
		Pos:     p.span(start.Span),
		Type:    typ,
		Values:  values,
		Dynamic: true,
		Where:   where,
	}, nil
}

// ============ {{ ... }} ============

// parseMakeTable handles {{ k => v; k2 => v2 }} tables and {{ a; b }} sets.
func (p *Parser) parseMakeTable() (ast.Expr, error) {
	start := p.curToken
	p.nextToken() // {{

	t := &ast.MakeTableExpr{}
	set := false
	for !p.atDouble(token.TABLE_CLOSE) && !p.curTokenIs(token.EOF) {
		key, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, err
		}
		kv := &ast.KeyValue{Pos: ast.Pos{At: key.Span()}, Key: key}
		if p.accept(token.FAT_ARROW) {
			if kv.Value, err = p.parseExpression(ASSIGN); err != nil {
				return nil, err
			}
			kv.At = key.Span().Merge(kv.Value.Span())
		}
		if len(t.Entries) == 0 {
			set = kv.Value == nil
		} else if set != (kv.Value == nil) {
			return nil, p.errorf("mixed table and set entries")
		}
		t.Entries = append(t.Entries, kv)

		if !p.accept(token.SEMICOLON) && !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expectDouble(token.TABLE_CLOSE); err != nil {
		return nil, err
	}
	t.Pos = p.span(start.Span)
	return t, nil
}
