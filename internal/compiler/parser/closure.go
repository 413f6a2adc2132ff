package parser

import (
	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

var closureKinds = map[token.TokenType]ast.ClosureKind{
	token.DOLLAR: ast.ClosureBlock,
	token.AT:     ast.ClosureLambda,
	token.ATAT:   ast.ClosureLocalFunction,
}

var captureModes = map[token.TokenType]ast.CaptureMode{
	token.AMP:    ast.CaptureReference,
	token.ASSIGN: ast.CaptureCopy,
	token.MOVE:   ast.CaptureMove,
	token.CLONE:  ast.CaptureClone,
}

// parseClosure handles block ($), lambda (@) and local function (@@) literals:
//
//	$ [capture] [(params)] [: T] { stmts }
//	@[&a, =b] (x : int) => x + a
func (p *Parser) parseClosure() (ast.Expr, error) {
	start := p.curToken
	c := &ast.ClosureExpr{Kind: closureKinds[start.Type]}
	p.nextToken()

	if c.Kind != ast.ClosureBlock {
		caps, err := p.parseCaptureList()
		if err != nil {
			return nil, err
		}
		c.Captures = caps
	}
	if err := p.parseClosureTail(c); err != nil {
		return nil, err
	}
	c.Pos = p.span(start.Span)
	return c, nil
}

// parseClosureTail reads the parameters, result type and body of a closure literal.
func (p *Parser) parseClosureTail(c *ast.ClosureExpr) error {
	if p.curTokenIs(token.LPAREN) {
		params, err := p.parseParams()
		if err != nil {
			return err
		}
		c.Params = params
	}
	if p.accept(token.COLON) {
		res, err := p.parseType()
		if err != nil {
			return err
		}
		c.Result = res
	}

	if p.curTokenIs(token.FAT_ARROW) {
		arrow := p.curToken
		p.nextToken()
		e, err := p.parseExpression(LOWEST)
		if err != nil {
			return err
		}
		ret := &ast.ReturnExpr{Pos: ast.Pos{At: arrow.Span.Merge(e.Span())}, Value: e}
		c.Body = &ast.BlockExpr{Pos: ret.Pos, List: []ast.Expr{ret}}
		c.ExprBody = true
		return nil
	}

	body, err := p.parseBlock()
	if err != nil {
		return err
	}
	c.Body = body
	return nil
}

// parseCaptureList reads [entry, ...] or [[entry, ...]] if present.
func (p *Parser) parseCaptureList() ([]*ast.Capture, error) {
	var closing token.TokenType
	switch p.curToken.Type {
	case token.LBRACKET:
		closing = token.RBRACKET
	case token.MAKE_OPEN:
		closing = token.MAKE_CLOSE
	default:
		return nil, nil
	}
	p.nextToken()

	var caps []*ast.Capture
	for !p.curTokenIs(closing) && !(closing == token.MAKE_CLOSE && p.atDouble(closing)) {
		modeTok := p.curToken
		mode, ok := captureModes[modeTok.Type]
		if !ok {
			return nil, p.unexpected("capture mode '&', '=', '<-' or ':='")
		}
		p.nextToken()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		caps = append(caps, &ast.Capture{
			Pos:  ast.Pos{At: modeTok.Span.Merge(name.Span)},
			Mode: mode,
			Name: name.Literal,
		})
		if !p.accept(token.COMMA) {
			break
		}
	}

	var err error
	if closing == token.MAKE_CLOSE {
		_, err = p.expectDouble(closing)
	} else {
		_, err = p.expect(closing)
	}
	return caps, err
}

// parseGenerator handles generator<T> [capture] () { } and generator<T>() <| $ { }.
func (p *Parser) parseGenerator() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	elem, err := p.parseAngleType()
	if err != nil {
		return nil, err
	}
	c := &ast.ClosureExpr{Kind: ast.ClosureGenerator, Result: elem}
	if c.Captures, err = p.parseCaptureList(); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if p.accept(token.PIPE_LEFT) {
		inner, err := p.parseExpression(PIPE)
		if err != nil {
			return nil, err
		}
		blk, ok := inner.(*ast.ClosureExpr)
		if !ok {
			return nil, p.errorf("generator body must be a block literal")
		}
		c.Params = blk.Params
		c.Body = blk.Body
		c.ExprBody = blk.ExprBody
	} else {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		c.Body = body
	}
	c.Pos = p.span(start.Span)
	return c, nil
}

// ============ PARAMETERS ============

// parseParams reads a parenthesised parameter list. Groups are separated by ';' or ',':
//
//	(a, b : int; var c : float = 1.0; d)
//
// A group shares one type and default. Untyped parameters are generic.
func (p *Parser) parseParams() ([]*ast.Variable, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []*ast.Variable
	for !p.curTokenIs(token.RPAREN) {
		v, err := p.parseParamGroup()
		if err != nil {
			return nil, err
		}
		params = append(params, v)
		if !p.accept(token.SEMICOLON) && !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseParamGroup() (*ast.Variable, error) {
	start := p.curToken
	v := &ast.Variable{Const: true}
	if p.accept(token.VAR) {
		v.Const = false
	}
	for {
		n, err := p.parseVarName()
		if err != nil {
			return nil, err
		}
		v.Names = append(v.Names, n)
		// a, b : int  versus  a : int, b : float
		if !p.curTokenIs(token.COMMA) || !p.peekTokenIs(token.IDENT) {
			break
		}
		p.nextToken()
	}
	if err := p.parseVarTail(v); err != nil {
		return nil, err
	}
	v.Pos = p.span(start.Span)
	return v, nil
}
