package parser

import (
	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// ============ BLOCKS ============

// parseBlock reads { statements }. A doubled brace is split, so {{ opens two blocks.
func (p *Parser) parseBlock() (*ast.BlockExpr, error) {
	open, err := p.expect(token.LBRACE)
	if err != nil {
		return nil, err
	}
	block := &ast.BlockExpr{}
	for !p.atClose(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			block.List = append(block.List, stmt)
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	block.Pos = p.span(open.Span)
	return block, nil
}

// parseStatement returns nil for empty statements (';' and pass).
func (p *Parser) parseStatement() (ast.Expr, error) {
	start := p.curToken
	depth := p.ctx.AngleDepth()
	stmt, err := p.parseStatementBody()
	if err != nil {
		return nil, err
	}
	p.accept(token.SEMICOLON)
	p.checkAngles(start.Span, depth)
	return stmt, nil
}

func (p *Parser) parseStatementBody() (ast.Expr, error) {
	switch p.curToken.Type {
	case token.SEMICOLON, token.PASS:
		p.nextToken()
		return nil, nil
	case token.LBRACE, token.TABLE_OPEN:
		return p.parseBlock()
	case token.LET, token.VAR:
		return p.parseLocal()
	case token.IF, token.STATIC_IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhile()
	case token.WITH:
		return p.parseWith()
	case token.TRY:
		return p.parseTry()
	case token.LABEL:
		return p.parseLabel()
	case token.GOTO:
		return p.parseGoto()
	case token.RETURN, token.YIELD:
		return p.parseReturn()
	case token.BREAK:
		tok := p.curToken
		p.nextToken()
		return &ast.BreakExpr{Pos: at(tok)}, nil
	case token.CONTINUE:
		tok := p.curToken
		p.nextToken()
		return &ast.ContinueExpr{Pos: at(tok)}, nil
	}
	return p.parseExpression(LOWEST)
}

// ============ LOCALS ============

// parseLocal handles let/var [inscope] names [: T] [&] [= | <- | := init].
func (p *Parser) parseLocal() (ast.Expr, error) {
	start := p.curToken
	v := &ast.Variable{Const: start.Type == token.LET}
	p.nextToken()
	if p.accept(token.INSCOPE) {
		v.Inscope = true
	}
	if err := p.parseVariable(v); err != nil {
		return nil, err
	}
	v.Pos = p.span(start.Span)
	return &ast.LetExpr{Pos: v.Pos, Variables: []*ast.Variable{v}}, nil
}

// parseVariable reads a, b aka c [: T] [&] [= init] into v.
func (p *Parser) parseVariable(v *ast.Variable) error {
	for {
		n, err := p.parseVarName()
		if err != nil {
			return err
		}
		v.Names = append(v.Names, n)
		if !p.accept(token.COMMA) {
			break
		}
	}
	return p.parseVarTail(v)
}

// parseVarName reads name [aka alias] and checks the declared name.
func (p *Parser) parseVarName() (*ast.VarName, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	p.checkName(name.Literal, name.Span)
	n := &ast.VarName{Pos: at(name), Name: name.Literal}
	if p.accept(token.AKA) {
		aka, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		n.Aka = aka.Literal
		n.At = n.At.Merge(aka.Span)
	}
	return n, nil
}

// parseVarTail reads the optional type, reference marker and initializer.
func (p *Parser) parseVarTail(v *ast.Variable) error {
	if p.accept(token.COLON) {
		t, err := p.parseType()
		if err != nil {
			return err
		}
		v.Type = t
	}
	if p.accept(token.AMP) {
		v.Ref = true
	}

	switch p.curToken.Type {
	case token.AND_ASSIGN: // r &= x is r & = x
		v.Ref = true
		v.InitMode = ast.InitCopy
	case token.ASSIGN, token.MOVE, token.CLONE:
		v.InitMode = initModes[p.curToken.Type]
	default:
		return nil
	}
	p.nextToken()
	init, err := p.parseExpression(ASSIGN)
	if err != nil {
		return err
	}
	v.Init = init
	return nil
}

// ============ CONTROL FLOW ============

// parseIf handles if/elif/else and static_if/static_elif chains. else if nests.
func (p *Parser) parseIf() (ast.Expr, error) {
	start := p.curToken
	static := start.Type == token.STATIC_IF || start.Type == token.STATIC_ELIF
	p.nextToken()

	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.IfExpr{Cond: cond, Then: then, Static: static}

	switch p.curToken.Type {
	case token.ELIF, token.STATIC_ELIF:
		if node.Else, err = p.parseIf(); err != nil {
			return nil, err
		}
	case token.ELSE:
		p.nextToken()
		if p.curTokenIs(token.IF) || p.curTokenIs(token.STATIC_IF) {
			node.Else, err = p.parseIf()
		} else {
			node.Else, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	node.Pos = p.span(start.Span)
	return node, nil
}

// parseFor handles for a, b in xs, ys { } with optional parentheses around the header.
func (p *Parser) parseFor() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	paren := p.accept(token.LPAREN)
	names, sources, err := p.parseForHeader()
	if err != nil {
		return nil, err
	}
	if paren {
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForExpr{Pos: p.span(start.Span), Iterators: names, Sources: sources, Body: body}, nil
}

func (p *Parser) parseWhile() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileExpr{Pos: p.span(start.Span), Cond: cond, Body: body}, nil
}

func (p *Parser) parseWith() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	with, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WithExpr{Pos: p.span(start.Span), With: with, Body: body}, nil
}

// parseTry handles try { } [recover { } | catch { }].
func (p *Parser) parseTry() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	t := &ast.TryExpr{Try: body}
	if p.accept(token.RECOVER) || p.accept(token.CATCH) {
		if t.Recover, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	t.Pos = p.span(start.Span)
	return t, nil
}

// parseLabel handles label N:
func (p *Parser) parseLabel() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	n, err := p.parseLabelNumber()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	return &ast.LabelExpr{Pos: p.span(start.Span), Label: n}, nil
}

// parseGoto handles goto label N and goto expr.
func (p *Parser) parseGoto() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	g := &ast.GotoExpr{}
	if p.accept(token.LABEL) {
		n, err := p.parseLabelNumber()
		if err != nil {
			return nil, err
		}
		g.Label = n
	} else {
		target, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		g.Target = target
	}
	g.Pos = p.span(start.Span)
	return g, nil
}

func (p *Parser) parseLabelNumber() (int, error) {
	return p.parseCount("label")
}

// parseReturn handles return and yield, with an optional <- for moving the value.
func (p *Parser) parseReturn() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()

	move := false
	var value ast.Expr
	if p.accept(token.MOVE) {
		move = true
	}
	if move || !p.atStatementEnd() {
		v, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		value = v
	}

	pos := p.span(start.Span)
	if start.Type == token.YIELD {
		return &ast.YieldExpr{Pos: pos, Value: value, Move: move}, nil
	}
	return &ast.ReturnExpr{Pos: pos, Value: value, Move: move}, nil
}

// atStatementEnd reports whether nothing more belongs to the current statement.
func (p *Parser) atStatementEnd() bool {
	return p.curTokenIs(token.EOF) || p.curTokenIs(token.SEMICOLON) ||
		p.atClose(token.RBRACE) || p.onNewLine()
}
