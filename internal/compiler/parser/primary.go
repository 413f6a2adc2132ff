package parser

import (
	"strconv"
	"strings"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// ============ NAMES ============

// parseIdentifier handles a, a::b and ::b. Scalar type keywords are names here.
func (p *Parser) parseIdentifier() (ast.Expr, error) {
	start := p.curToken
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	return &ast.VarExpr{Pos: p.span(start.Span), Name: name}, nil
}

// parseQualifiedName reads name(::name)* with an optional leading ::.
func (p *Parser) parseQualifiedName() (string, error) {
	var b strings.Builder
	if p.accept(token.SCOPE) {
		b.WriteString("::")
	}
	for {
		if !p.curTokenIs(token.IDENT) && !token.IsScalarType(p.curToken.Type) {
			return "", p.unexpected("name")
		}
		b.WriteString(p.curToken.Literal)
		p.nextToken()
		if !p.curTokenIs(token.SCOPE) {
			return b.String(), nil
		}
		p.nextToken()
		b.WriteString("::")
	}
}

// ============ LITERALS ============

var intLiteralTypes = map[token.TokenType]ast.BaseType{
	token.INT:    ast.TypeInt,
	token.UINT:   ast.TypeUInt,
	token.INT8:   ast.TypeInt8,
	token.UINT8:  ast.TypeUInt8,
	token.INT64:  ast.TypeInt64,
	token.UINT64: ast.TypeUInt64,
}

// intLimits is the largest literal each suffix admits.
var intLimits = map[token.TokenType]uint64{
	token.INT:    0xFFFFFFFF,
	token.UINT:   0xFFFFFFFF,
	token.INT8:   0xFF,
	token.UINT8:  0xFF,
	token.INT64:  ^uint64(0),
	token.UINT64: ^uint64(0),
}

func (p *Parser) parseIntLiteral() (ast.Expr, error) {
	tok := p.curToken
	p.nextToken()
	lit := &ast.IntLit{Pos: at(tok), Type: intLiteralTypes[tok.Type], Text: tok.Literal}

	v, err := parseIntText(tok.Literal)
	if err != nil {
		p.addf(diag.SyntaxError, tok.Span, "invalid integer constant %s", tok.Literal)
		return lit, nil
	}
	if v > intLimits[tok.Type] {
		p.addf(diag.SyntaxError, tok.Span, "integer constant %s out of range for %s", tok.Literal, lit.Type)
		v &= intLimits[tok.Type]
	}
	lit.Value = v
	return lit, nil
}

// maxCount bounds array dimensions and label numbers.
const maxCount = 1<<31 - 1

// parseCount reads a non-negative integer constant of any suffix, as used by array
// dimensions and labels: [0x10], [4u], label 2.
func (p *Parser) parseCount(what string) (int, error) {
	tok := p.curToken
	if _, ok := intLiteralTypes[tok.Type]; !ok {
		return 0, p.unexpected(what)
	}
	p.nextToken()
	v, err := parseIntText(tok.Literal)
	if err != nil || v > maxCount {
		return 0, diag.Errorf(diag.SyntaxError, tok.Span, "invalid %s %s", what, tok.Literal)
	}
	return int(v), nil
}

// parseIntText reads decimal, 0x hexadecimal and 0b binary digits. Leading zeros are decimal.
func parseIntText(s string) (uint64, error) {
	s = strings.ReplaceAll(s, "_", "")
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return strconv.ParseUint(s[2:], 16, 64)
		case 'b', 'B':
			return strconv.ParseUint(s[2:], 2, 64)
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

func (p *Parser) parseFloatLiteral() (ast.Expr, error) {
	tok := p.curToken
	p.nextToken()
	lit := &ast.FloatLit{Pos: at(tok), Double: tok.Type == token.DOUBLE, Text: tok.Literal}
	v, err := strconv.ParseFloat(strings.ReplaceAll(tok.Literal, "_", ""), 64)
	if err != nil {
		p.addf(diag.SyntaxError, tok.Span, "invalid floating constant %s", tok.Literal)
	}
	lit.Value = v
	return lit, nil
}

func (p *Parser) parseBooleanLiteral() (ast.Expr, error) {
	tok := p.curToken
	p.nextToken()
	return &ast.BoolLit{Pos: at(tok), Value: tok.Type == token.TRUE}, nil
}

func (p *Parser) parseNullLiteral() (ast.Expr, error) {
	tok := p.curToken
	p.nextToken()
	return &ast.NullLit{Pos: at(tok)}, nil
}

// ============ NEW / DELETE ============

// parseNewExpression handles new T, new T(args) and new [[ ... ]].
func (p *Parser) parseNewExpression() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()

	switch p.curToken.Type {
	case token.MAKE_OPEN, token.ARRAY_OPEN, token.TABLE_OPEN:
		init, err := p.parseExpression(POSTFIX)
		if err != nil {
			return nil, err
		}
		return &ast.NewExpr{Pos: p.span(start.Span), Initializer: init}, nil
	}

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	n := &ast.NewExpr{Type: typ}
	if p.curTokenIs(token.LPAREN) && !p.onNewLine() {
		p.nextToken()
		n.HasArgs = true
		if n.Args, err = p.parseExpressionList(token.RPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}
	n.Pos = p.span(start.Span)
	return n, nil
}

func (p *Parser) parseDeleteExpression() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	v, err := p.parseExpression(UNARY)
	if err != nil {
		return nil, err
	}
	return &ast.DeleteExpr{Pos: p.span(start.Span), Value: v}, nil
}

// ============ TYPE EXPRESSIONS ============

// parseCastExpression handles cast<T> e, upcast<T> e and reinterpret<T> e.
func (p *Parser) parseCastExpression() (ast.Expr, error) {
	start := p.curToken
	kind := ast.CastPlain
	switch start.Type {
	case token.UPCAST:
		kind = ast.CastUpcast
	case token.REINTERPRET:
		kind = ast.CastReinterpret
	}
	p.nextToken()
	if err := p.openAngle(); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	v, err := p.parseExpression(UNARY)
	if err != nil {
		return nil, err
	}
	return &ast.CastExpr{Pos: p.span(start.Span), Kind: kind, Type: typ, Value: v}, nil
}

// parseTypeExpression handles type<T> in value position.
func (p *Parser) parseTypeExpression() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	typ, err := p.parseAngleType()
	if err != nil {
		return nil, err
	}
	return &ast.TypeExpr{Pos: p.span(start.Span), Type: typ}, nil
}

// parseAngleType parses <T> with the bracket mode active.
func (p *Parser) parseAngleType() (*ast.TypeDecl, error) {
	if err := p.openAngle(); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.closeAngle(); err != nil {
		return nil, err
	}
	return typ, nil
}

// parseTypeInfo handles typeinfo(trait expr), typeinfo(trait<sub> expr),
// typeinfo(trait<sub;extra> expr) and typeinfo(trait type<T>).
func (p *Parser) parseTypeInfo() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	trait, ok := p.word()
	if !ok {
		return nil, p.unexpected("type trait name")
	}
	ti := &ast.TypeInfoExpr{Trait: trait}

	if p.curTokenIs(token.LT) {
		if err := p.openAngle(); err != nil {
			return nil, err
		}
		sub, ok := p.word()
		if !ok {
			return nil, p.unexpected("type trait argument")
		}
		ti.SubTrait = sub
		if p.accept(token.SEMICOLON) {
			extra, ok := p.word()
			if !ok {
				return nil, p.unexpected("type trait argument")
			}
			ti.Extra = extra
		}
		if err := p.closeAngle(); err != nil {
			return nil, err
		}
	}

	var err error
	if p.curTokenIs(token.TYPE) && p.peekTokenIs(token.LT) {
		p.nextToken()
		ti.Type, err = p.parseAngleType()
	} else {
		ti.Value, err = p.parseExpression(LOWEST)
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	ti.Pos = p.span(start.Span)
	return ti, nil
}

// word consumes a name or keyword and returns its spelling.
func (p *Parser) word() (string, bool) {
	tok := p.curToken
	if tok.Type != token.IDENT && tok.Type != token.LookupIdent(tok.Literal) {
		return "", false
	}
	p.nextToken()
	return tok.Literal, true
}

// parseUnsafeExpression handles unsafe(expr) and unsafe { }.
func (p *Parser) parseUnsafeExpression() (ast.Expr, error) {
	start := p.curToken
	p.nextToken()
	if p.curTokenIs(token.LBRACE) {
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.UnsafeExpr{Pos: p.span(start.Span), Body: body}, nil
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	e, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.UnsafeExpr{Pos: p.span(start.Span), Body: e}, nil
}

// parseAtAt handles function addresses (@@name, @@<sig> name) and local functions (@@(x) { }).
func (p *Parser) parseAtAt() (ast.Expr, error) {
	start := p.curToken
	switch p.peekToken().Type {
	case token.IDENT, token.SCOPE:
		p.nextToken()
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		return &ast.AddrExpr{Pos: p.span(start.Span), Name: name}, nil
	case token.LT:
		p.nextToken()
		if err := p.openAngle(); err != nil {
			return nil, err
		}
		sig := &ast.TypeDecl{Pos: at(p.curToken), Base: ast.TypeFunction}
		if err := p.parseSignature(sig); err != nil {
			return nil, err
		}
		if err := p.closeAngle(); err != nil {
			return nil, err
		}
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		return &ast.AddrExpr{Pos: p.span(start.Span), Name: name, Type: sig}, nil
	}
	return p.parseClosure()
}
