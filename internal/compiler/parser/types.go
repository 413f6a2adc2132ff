package parser

import (
	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

var scalarTypes = map[token.TokenType]ast.BaseType{
	token.T_BOOL:     ast.TypeBool,
	token.T_VOID:     ast.TypeVoid,
	token.T_STRING:   ast.TypeString,
	token.T_INT:      ast.TypeInt,
	token.T_INT8:     ast.TypeInt8,
	token.T_INT16:    ast.TypeInt16,
	token.T_INT64:    ast.TypeInt64,
	token.T_UINT:     ast.TypeUInt,
	token.T_UINT8:    ast.TypeUInt8,
	token.T_UINT16:   ast.TypeUInt16,
	token.T_UINT64:   ast.TypeUInt64,
	token.T_FLOAT:    ast.TypeFloat,
	token.T_DOUBLE:   ast.TypeDouble,
	token.T_INT2:     ast.TypeInt2,
	token.T_INT3:     ast.TypeInt3,
	token.T_INT4:     ast.TypeInt4,
	token.T_UINT2:    ast.TypeUInt2,
	token.T_UINT3:    ast.TypeUInt3,
	token.T_UINT4:    ast.TypeUInt4,
	token.T_FLOAT2:   ast.TypeFloat2,
	token.T_FLOAT3:   ast.TypeFloat3,
	token.T_FLOAT4:   ast.TypeFloat4,
	token.T_RANGE:    ast.TypeRange,
	token.T_URANGE:   ast.TypeURange,
	token.T_RANGE64:  ast.TypeRange64,
	token.T_URANGE64: ast.TypeURange64,
}

var scalarKeywords = func() []token.TokenType {
	out := make([]token.TokenType, 0, len(scalarTypes))
	for t := range scalarTypes {
		out = append(out, t)
	}
	return out
}()

// maxBitfieldBits is the most named bits a bitfield may declare.
const maxBitfieldBits = 32

var bitfieldWidths = map[ast.BaseType]int{
	ast.TypeUInt8:  8,
	ast.TypeUInt16: 16,
	ast.TypeUInt:   32,
	ast.TypeUInt64: 64,
}

// parseType parses a base type followed by its suffix chain.
// The error is a SyntaxError when the leading token can't start a type.
func (p *Parser) parseType() (*ast.TypeDecl, error) {
	t, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	return p.parseTypeSuffixes(t)
}

func (p *Parser) parseBaseType() (*ast.TypeDecl, error) {
	start := p.curToken

	if base, ok := scalarTypes[start.Type]; ok {
		p.nextToken()
		return &ast.TypeDecl{Pos: at(start), Base: base}, nil
	}

	switch start.Type {
	case token.AUTO:
		p.nextToken()
		t := &ast.TypeDecl{Base: ast.TypeAuto}
		if p.curTokenIs(token.LPAREN) && !p.onNewLine() {
			p.nextToken()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			t.Name = name.Literal
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
		}
		t.Pos = p.span(start.Span)
		return t, nil

	case token.IDENT, token.SCOPE:
		name, err := p.parseQualifiedName()
		if err != nil {
			return nil, err
		}
		return &ast.TypeDecl{Pos: p.span(start.Span), Base: ast.TypeNamed, Name: name}, nil

	case token.ARRAY, token.ITERATOR, token.SMART_PTR:
		p.nextToken()
		elem, err := p.parseAngleType()
		if err != nil {
			return nil, err
		}
		t := &ast.TypeDecl{Pos: p.span(start.Span), First: elem}
		switch start.Type {
		case token.ARRAY:
			t.Base = ast.TypeArray
		case token.ITERATOR:
			t.Base = ast.TypeIterator
		default:
			t.Base = ast.TypePointer
			t.Smart = true
		}
		return t, nil

	case token.TABLE:
		p.nextToken()
		if err := p.openAngle(); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t := &ast.TypeDecl{Base: ast.TypeTable, First: key}
		if p.accept(token.SEMICOLON) || p.accept(token.COMMA) {
			if t.Second, err = p.parseType(); err != nil {
				return nil, err
			}
		}
		if err := p.closeAngle(); err != nil {
			return nil, err
		}
		t.Pos = p.span(start.Span)
		return t, nil

	case token.TUPLE, token.VARIANT:
		p.nextToken()
		if err := p.openAngle(); err != nil {
			return nil, err
		}
		t := &ast.TypeDecl{Base: ast.TypeTuple}
		if start.Type == token.VARIANT {
			t.Base = ast.TypeVariant
		}
		if err := p.parseMembers(t, start.Type == token.VARIANT, p.atAngleClose); err != nil {
			return nil, err
		}
		if err := p.closeAngle(); err != nil {
			return nil, err
		}
		t.Pos = p.span(start.Span)
		return t, nil

	case token.BITFIELD:
		p.nextToken()
		if err := p.openAngle(); err != nil {
			return nil, err
		}
		t := &ast.TypeDecl{Base: ast.TypeBitfield, BitBase: ast.TypeUInt}
		for !p.atAngleClose() {
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			p.addBit(t, name)
			if !p.accept(token.SEMICOLON) && !p.accept(token.COMMA) {
				break
			}
		}
		if err := p.closeAngle(); err != nil {
			return nil, err
		}
		t.Pos = p.span(start.Span)
		p.checkBitfield(t)
		return t, nil

	case token.BLOCK, token.FUNCTION, token.LAMBDA:
		p.nextToken()
		t := &ast.TypeDecl{}
		switch start.Type {
		case token.BLOCK:
			t.Base = ast.TypeBlock
		case token.FUNCTION:
			t.Base = ast.TypeFunction
		default:
			t.Base = ast.TypeLambda
		}
		if p.curTokenIs(token.LT) {
			if err := p.openAngle(); err != nil {
				return nil, err
			}
			if err := p.parseSignature(t); err != nil {
				return nil, err
			}
			if err := p.closeAngle(); err != nil {
				return nil, err
			}
		}
		t.Pos = p.span(start.Span)
		return t, nil

	case token.TYPEDECL:
		p.nextToken()
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
		return &ast.TypeDecl{Pos: p.span(start.Span), Base: ast.TypeDeclExpr, Expr: e}, nil
	}

	return nil, p.unexpected("type")
}

// parseMembers reads [name :] T separated by ';' or ','. Variants require names.
func (p *Parser) parseMembers(t *ast.TypeDecl, named bool, done func() bool) error {
	for !done() {
		name := ""
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
			name = p.curToken.Literal
			p.nextToken()
			p.nextToken()
		} else if named {
			return p.unexpected("variant member name")
		}
		mt, err := p.parseType()
		if err != nil {
			return err
		}
		t.Args = append(t.Args, mt)
		t.ArgNames = append(t.ArgNames, name)
		if !p.accept(token.SEMICOLON) && !p.accept(token.COMMA) {
			break
		}
	}
	return nil
}

// parseSignature reads the inside of block<...>, function<...>, lambda<...> and @@<...>:
// (params) : T, (params), or T alone.
func (p *Parser) parseSignature(sig *ast.TypeDecl) error {
	if p.accept(token.LPAREN) {
		if err := p.parseMembers(sig, false, func() bool { return p.curTokenIs(token.RPAREN) }); err != nil {
			return err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return err
		}
		if !p.accept(token.COLON) {
			return nil
		}
	}
	if p.atAngleClose() {
		return nil
	}
	ret, err := p.parseType()
	if err != nil {
		return err
	}
	sig.Return = ret
	return nil
}

// atAngleClose reports whether the current token can close a generic argument list.
func (p *Parser) atAngleClose() bool {
	if p.curTokenIs(token.GT) {
		return true
	}
	return p.ctx.AngleDepth() > 0 && angleRemainders[p.curToken.Type]
}

func (p *Parser) parseTypeSuffixes(t *ast.TypeDecl) (*ast.TypeDecl, error) {
	for {
		switch p.curToken.Type {
		case token.LBRACKET:
			if p.onNewLine() {
				return t, nil
			}
			p.nextToken()
			if p.curTokenIs(token.RBRACKET) || p.atClose(token.RBRACKET) {
				t.Dims = append(t.Dims, ast.Dim{Kind: ast.DimAuto})
			} else {
				n, err := p.parseCount("dimension")
				if err != nil {
					return nil, err
				}
				t.Dims = append(t.Dims, ast.Dim{Kind: ast.DimFixed, Size: n})
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}

		case token.MINUS:
			if p.onNewLine() {
				return t, nil
			}
			switch p.peekToken().Type {
			case token.LBRACKET:
				p.nextToken()
				p.nextToken()
				if _, err := p.expect(token.RBRACKET); err != nil {
					return nil, err
				}
				t.RemoveDim = true
			case token.CONST:
				p.nextToken()
				p.nextToken()
				t.RemoveConst = true
			case token.AMP:
				p.nextToken()
				p.nextToken()
				t.RemoveRef = true
			case token.HASH:
				p.nextToken()
				p.nextToken()
				t.RemoveTemporary = true
			default:
				return t, nil
			}

		case token.CONST:
			p.nextToken()
			t.Const = true
		case token.AMP:
			p.nextToken()
			t.Ref = true
		case token.HASH:
			p.nextToken()
			t.Temporary = true
		case token.EXPLICIT:
			p.nextToken()
			t.Explicit = true
		case token.IMPLICIT:
			p.nextToken()
			t.Implicit = true
		case token.QUESTION:
			end := p.curToken.Span
			p.nextToken()
			t = &ast.TypeDecl{Pos: ast.Pos{At: t.Span().Merge(end)}, Base: ast.TypePointer, First: t}
		case token.COALESCE:
			end := p.curToken.Span
			p.nextToken()
			inner := &ast.TypeDecl{Pos: ast.Pos{At: t.Span().Merge(end)}, Base: ast.TypePointer, First: t}
			t = &ast.TypeDecl{Pos: inner.Pos, Base: ast.TypePointer, First: inner}
		default:
			return t, nil
		}
	}
}

// addBit appends a named bit; a repeated name is reported and the first one kept.
func (p *Parser) addBit(t *ast.TypeDecl, name token.Token) {
	for _, b := range t.Bits {
		if b == name.Literal {
			p.addf(diag.DuplicateDeclaration, name.Span, "bit %s is already declared", name.Literal)
			return
		}
	}
	t.Bits = append(t.Bits, name.Literal)
}

// checkBitfield reports bitfields with more names than their storage allows
// and keeps the names that fit.
func (p *Parser) checkBitfield(t *ast.TypeDecl) {
	limit := maxBitfieldBits
	if w, ok := bitfieldWidths[t.BitBase]; ok && w < limit {
		limit = w
	}
	if len(t.Bits) > limit {
		p.addf(diag.InvalidType, t.Span(), "bitfield has %d bits, at most %d are allowed", len(t.Bits), limit)
		t.Bits = t.Bits[:limit]
	}
}
