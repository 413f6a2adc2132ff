package parser

import (
	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// Precedence levels, lowest first
const (
	_ int = iota
	LOWEST
	ASSIGN      // = <- := += ... (right)
	TERNARY     // ?: (right)
	PIPE        // <| (right) |> (left)
	COALESCE    // ?? (right)
	LOR         // ||
	LXOR        // ^^
	LAND        // &&
	BOR         // |
	BXOR        // ^
	BAND        // &
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	INTERVAL    // ..
	SHIFT       // << >> <<< >>>
	SUM         // + -
	PRODUCT     // * / %
	UNARY       // ! ~ + - ++ -- *
	POSTFIX     // ++ -- . ?. [ ?[ ( -> is as ?as
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:       ASSIGN,
	token.MOVE:         ASSIGN,
	token.CLONE:        ASSIGN,
	token.PLUS_ASSIGN:  ASSIGN,
	token.MINUS_ASSIGN: ASSIGN,
	token.MUL_ASSIGN:   ASSIGN,
	token.DIV_ASSIGN:   ASSIGN,
	token.MOD_ASSIGN:   ASSIGN,
	token.AND_ASSIGN:   ASSIGN,
	token.OR_ASSIGN:    ASSIGN,
	token.XOR_ASSIGN:   ASSIGN,
	token.LAND_ASSIGN:  ASSIGN,
	token.LOR_ASSIGN:   ASSIGN,
	token.LXOR_ASSIGN:  ASSIGN,
	token.SHL_ASSIGN:   ASSIGN,
	token.SHR_ASSIGN:   ASSIGN,
	token.ROTL_ASSIGN:  ASSIGN,
	token.ROTR_ASSIGN:  ASSIGN,
	token.QUESTION:     TERNARY,
	token.PIPE_LEFT:    PIPE,
	token.PIPE_RIGHT:   PIPE,
	token.DOLLAR:       PIPE,
	token.AT:           PIPE,
	token.ATAT:         PIPE,
	token.COALESCE:     COALESCE,
	token.OR:           LOR,
	token.XOR:          LXOR,
	token.AND:          LAND,
	token.PIPE:         BOR,
	token.CARET:        BXOR,
	token.AMP:          BAND,
	token.EQ:           EQUALS,
	token.NOT_EQ:       EQUALS,
	token.LT:           LESSGREATER,
	token.LT_EQ:        LESSGREATER,
	token.GT:           LESSGREATER,
	token.GT_EQ:        LESSGREATER,
	token.DOTDOT:       INTERVAL,
	token.SHL:          SHIFT,
	token.SHR:          SHIFT,
	token.ROTL:         SHIFT,
	token.ROTR:         SHIFT,
	token.PLUS:         SUM,
	token.MINUS:        SUM,
	token.ASTERISK:     PRODUCT,
	token.SLASH:        PRODUCT,
	token.PERCENT:      PRODUCT,
	token.INC:          POSTFIX,
	token.DEC:          POSTFIX,
	token.DOT:          POSTFIX,
	token.SAFE_DOT:     POSTFIX,
	token.LBRACKET:     POSTFIX,
	token.SAFE_INDEX:   POSTFIX,
	token.LPAREN:       POSTFIX,
	token.ARROW:        POSTFIX,
	token.IS:           POSTFIX,
	token.AS:           POSTFIX,
	token.SAFE_AS:      POSTFIX,
}

var rightAssoc = map[token.TokenType]bool{
	token.COALESCE:  true,
	token.PIPE_LEFT: true,
}

// lineBound operators only continue an expression on the line where it left off,
// so that "a\n++b" and "x = 1\n[export]" stay two constructs.
var lineBound = map[token.TokenType]bool{
	token.INC:      true,
	token.DEC:      true,
	token.LBRACKET: true,
	token.LPAREN:   true,
	token.DOLLAR:   true,
	token.AT:       true,
	token.ATAT:     true,
}

// opAssign maps compound assignment tokens to their binary operator.
var opAssign = map[token.TokenType]token.TokenType{
	token.PLUS_ASSIGN:  token.PLUS,
	token.MINUS_ASSIGN: token.MINUS,
	token.MUL_ASSIGN:   token.ASTERISK,
	token.DIV_ASSIGN:   token.SLASH,
	token.MOD_ASSIGN:   token.PERCENT,
	token.AND_ASSIGN:   token.AMP,
	token.OR_ASSIGN:    token.PIPE,
	token.XOR_ASSIGN:   token.CARET,
	token.LAND_ASSIGN:  token.AND,
	token.LOR_ASSIGN:   token.OR,
	token.LXOR_ASSIGN:  token.XOR,
	token.SHL_ASSIGN:   token.SHL,
	token.SHR_ASSIGN:   token.SHR,
	token.ROTL_ASSIGN:  token.ROTL,
	token.ROTR_ASSIGN:  token.ROTR,
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) registerExpressionParsers() {
	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.SCOPE, p.parseIdentifier)
	for _, t := range []token.TokenType{token.INT, token.UINT, token.INT8, token.UINT8, token.INT64, token.UINT64} {
		p.registerPrefix(t, p.parseIntLiteral)
	}
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.DOUBLE, p.parseFloatLiteral)
	p.registerPrefix(token.CHAR, p.parseCharLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NULL, p.parseNullLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	for _, t := range []token.TokenType{token.BANG, token.TILDE, token.MINUS, token.PLUS, token.INC, token.DEC, token.ASTERISK} {
		p.registerPrefix(t, p.parseUnaryExpression)
	}
	p.registerPrefix(token.NEW, p.parseNewExpression)
	p.registerPrefix(token.DELETE, p.parseDeleteExpression)
	p.registerPrefix(token.CAST, p.parseCastExpression)
	p.registerPrefix(token.UPCAST, p.parseCastExpression)
	p.registerPrefix(token.REINTERPRET, p.parseCastExpression)
	p.registerPrefix(token.TYPEINFO, p.parseTypeInfo)
	p.registerPrefix(token.TYPE, p.parseTypeExpression)
	p.registerPrefix(token.UNSAFE, p.parseUnsafeExpression)
	p.registerPrefix(token.DOLLAR, p.parseClosure)
	p.registerPrefix(token.AT, p.parseClosure)
	p.registerPrefix(token.ATAT, p.parseAtAt)
	p.registerPrefix(token.GENERATOR, p.parseGenerator)
	p.registerPrefix(token.MAKE_OPEN, p.parseMakeLiteral)
	p.registerPrefix(token.ARRAY_OPEN, p.parseMakeDynamic)
	p.registerPrefix(token.TABLE_OPEN, p.parseMakeTable)
	p.registerPrefix(token.READER_MACRO, p.parseReaderMacro)
	// Scalar type names double as conversion and constructor calls: float3(1.0), range(10).
	for _, kw := range scalarKeywords {
		p.registerPrefix(kw, p.parseIdentifier)
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for t := range opAssign {
		p.registerInfix(t, p.parseAssignment)
	}
	p.registerInfix(token.ASSIGN, p.parseAssignment)
	p.registerInfix(token.MOVE, p.parseAssignment)
	p.registerInfix(token.CLONE, p.parseAssignment)
	p.registerInfix(token.QUESTION, p.parseTernary)
	p.registerInfix(token.PIPE_LEFT, p.parsePipeLeft)
	p.registerInfix(token.PIPE_RIGHT, p.parsePipeRight)
	p.registerInfix(token.DOLLAR, p.parseBlockPipe)
	p.registerInfix(token.AT, p.parseBlockPipe)
	p.registerInfix(token.ATAT, p.parseBlockPipe)
	for _, t := range []token.TokenType{
		token.COALESCE, token.OR, token.XOR, token.AND, token.PIPE, token.CARET, token.AMP,
		token.EQ, token.NOT_EQ, token.LT, token.LT_EQ, token.GT, token.GT_EQ, token.DOTDOT,
		token.SHL, token.SHR, token.ROTL, token.ROTR,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
	} {
		p.registerInfix(t, p.parseBinaryExpression)
	}
	p.registerInfix(token.INC, p.parsePostfixExpression)
	p.registerInfix(token.DEC, p.parsePostfixExpression)
	p.registerInfix(token.DOT, p.parseFieldExpression)
	p.registerInfix(token.SAFE_DOT, p.parseSafeFieldExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)
	p.registerInfix(token.SAFE_INDEX, p.parseIndexExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.ARROW, p.parseMethodCall)
	p.registerInfix(token.IS, p.parseVariantOp)
	p.registerInfix(token.AS, p.parseVariantOp)
	p.registerInfix(token.SAFE_AS, p.parseVariantOp)
}

// curPrecedence is the binding power of the current token as an infix operator.
func (p *Parser) curPrecedence() int {
	prec, ok := precedences[p.curToken.Type]
	if !ok {
		return LOWEST
	}
	if lineBound[p.curToken.Type] && p.onNewLine() {
		return LOWEST
	}
	switch p.curToken.Type {
	case token.DOLLAR, token.AT, token.ATAT:
		// expr $ (x) { } passes a block literal the way <| does
		switch p.peekToken().Type {
		case token.LPAREN, token.LBRACE, token.LBRACKET, token.MAKE_OPEN, token.FAT_ARROW, token.COLON:
		default:
			return LOWEST
		}
	}
	return prec
}

// ============ EXPRESSIONS ============

func (p *Parser) parseExpression(precedence int) (ast.Expr, error) {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		return nil, p.unexpected("expression")
	}

	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.curPrecedence() {
		infix := p.infixParseFns[p.curToken.Type]
		if infix == nil {
			break
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}

	return left, nil
}

// parseExpressionList parses comma separated expressions up to (not including) end.
// A trailing comma is accepted in oxford comma mode.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expr, error) {
	var list []ast.Expr
	if p.atClose(end) {
		return list, nil
	}
	for {
		e, err := p.parseExpression(ASSIGN)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if !p.accept(token.COMMA) {
			return list, nil
		}
		if p.atClose(end) {
			if !p.ctx.OxfordComma() {
				return nil, p.errorf("trailing ',' before %s", describe(end))
			}
			return list, nil
		}
	}
}

func (p *Parser) parseBinaryExpression(left ast.Expr) (ast.Expr, error) {
	op := p.curToken
	precedence := precedences[op.Type]
	if rightAssoc[op.Type] {
		precedence--
	}
	p.nextToken()
	right, err := p.parseExpression(precedence)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{
		Pos:   ast.Pos{At: left.Span().Merge(right.Span())},
		Op:    op.Type,
		Left:  left,
		Right: right,
	}, nil
}

func (p *Parser) parseAssignment(left ast.Expr) (ast.Expr, error) {
	op := p.curToken
	p.nextToken()
	// ASSIGN-1 keeps the layer right associative: a = b = c
	right, err := p.parseExpression(ASSIGN - 1)
	if err != nil {
		return nil, err
	}
	pos := ast.Pos{At: left.Span().Merge(right.Span())}
	switch op.Type {
	case token.ASSIGN:
		return &ast.CopyExpr{Pos: pos, Left: left, Right: right}, nil
	case token.MOVE:
		return &ast.MoveExpr{Pos: pos, Left: left, Right: right}, nil
	case token.CLONE:
		return &ast.CloneExpr{Pos: pos, Left: left, Right: right}, nil
	}
	return &ast.OpAssignExpr{Pos: pos, Op: opAssign[op.Type], Left: left, Right: right}, nil
}

func (p *Parser) parseTernary(cond ast.Expr) (ast.Expr, error) {
	p.nextToken() // ?
	then, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COLON); err != nil {
		return nil, err
	}
	els, err := p.parseExpression(TERNARY - 1)
	if err != nil {
		return nil, err
	}
	return &ast.TernaryExpr{
		Pos:  ast.Pos{At: cond.Span().Merge(els.Span())},
		Cond: cond,
		Then: then,
		Else: els,
	}, nil
}

func (p *Parser) parseUnaryExpression() (ast.Expr, error) {
	op := p.curToken
	p.nextToken()
	operand, err := p.parseExpression(UNARY)
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{
		Pos:     ast.Pos{At: op.Span.Merge(operand.Span())},
		Op:      op.Type,
		Operand: operand,
	}, nil
}

func (p *Parser) parsePostfixExpression(left ast.Expr) (ast.Expr, error) {
	op := p.curToken
	p.nextToken()
	return &ast.PostfixExpr{
		Pos:     ast.Pos{At: left.Span().Merge(op.Span)},
		Op:      op.Type,
		Operand: left,
	}, nil
}

func (p *Parser) parseGroupedExpression() (ast.Expr, error) {
	p.nextToken() // (
	e, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return e, nil
}

// ============ PIPES ============

// parsePipeLeft handles a <| b.
func (p *Parser) parsePipeLeft(left ast.Expr) (ast.Expr, error) {
	op := p.curToken
	p.nextToken()
	right, err := p.parseExpression(PIPE - 1)
	if err != nil {
		return nil, err
	}
	return p.pipeInto(left, right, op.Span), nil
}

// parseBlockPipe handles a block literal written directly after a call: foo() $ (x) { }.
func (p *Parser) parseBlockPipe(left ast.Expr) (ast.Expr, error) {
	op := p.curToken
	block, err := p.parseClosure()
	if err != nil {
		return nil, err
	}
	return p.pipeInto(left, block, op.Span), nil
}

// pipeInto appends arg to a call, makes it the where-initializer of a make-struct
// literal, or turns a bare name into a call. Anything else is reported and left as is.
func (p *Parser) pipeInto(left, arg ast.Expr, at token.Span) ast.Expr {
	merged := left.Span().Merge(arg.Span())
	switch l := left.(type) {
	case *ast.CallExpr:
		l.Args = append(l.Args, arg)
		l.At = merged
		return l
	case *ast.MethodCallExpr:
		l.Args = append(l.Args, arg)
		l.At = merged
		return l
	case *ast.InvokeExpr:
		l.Args = append(l.Args, arg)
		l.At = merged
		return l
	case *ast.MakeStructExpr:
		if l.Where != nil {
			p.addf(diag.InvalidPipeTarget, at, "make literal already has a where initializer")
			return l
		}
		l.Where = arg
		l.At = merged
		return l
	case *ast.VarExpr:
		return &ast.CallExpr{Pos: ast.Pos{At: merged}, Name: l.Name, Args: []ast.Expr{arg}}
	}
	p.addf(diag.InvalidPipeTarget, at, "can't pipe into %s", left.TokenLiteral())
	return left
}

// parsePipeRight handles a |> f(x), which calls f(a, x).
func (p *Parser) parsePipeRight(left ast.Expr) (ast.Expr, error) {
	op := p.curToken
	p.nextToken()
	right, err := p.parseExpression(PIPE)
	if err != nil {
		return nil, err
	}
	merged := left.Span().Merge(right.Span())
	switch r := right.(type) {
	case *ast.CallExpr:
		r.Args = append([]ast.Expr{left}, r.Args...)
		r.At = merged
		return r, nil
	case *ast.InvokeExpr:
		r.Args = append([]ast.Expr{left}, r.Args...)
		r.At = merged
		return r, nil
	case *ast.MethodCallExpr:
		r.Args = append([]ast.Expr{left}, r.Args...)
		r.At = merged
		return r, nil
	case *ast.VarExpr:
		return &ast.CallExpr{Pos: ast.Pos{At: merged}, Name: r.Name, Args: []ast.Expr{left}}, nil
	}
	p.addf(diag.InvalidPipeTarget, op.Span, "can't pipe into %s", right.TokenLiteral())
	return left, nil
}

// ============ POSTFIX ============

func (p *Parser) parseFieldExpression(left ast.Expr) (ast.Expr, error) {
	p.nextToken() // .
	if p.curTokenIs(token.IDENT) && !p.onNewLine() {
		name := p.curToken
		p.nextToken()
		return &ast.FieldExpr{Pos: ast.Pos{At: left.Span().Merge(name.Span)}, Value: left, Name: name.Literal}, nil
	}

	// An incomplete accessor keeps the expression and resumes at the next statement.
	restore := p.sink.Suppress()
	p.report(p.unexpected("field name"))
	restore()
	p.skipToStatementBoundary()
	return &ast.FieldExpr{Pos: ast.Pos{At: left.Span()}, Value: left, Incomplete: true}, nil
}

func (p *Parser) parseSafeFieldExpression(left ast.Expr) (ast.Expr, error) {
	p.nextToken() // ?.
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.SafeFieldExpr{Pos: ast.Pos{At: left.Span().Merge(name.Span)}, Value: left, Name: name.Literal}, nil
}

func (p *Parser) parseIndexExpression(left ast.Expr) (ast.Expr, error) {
	safe := p.curTokenIs(token.SAFE_INDEX)
	p.nextToken()
	index, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	closing, err := p.expect(token.RBRACKET)
	if err != nil {
		return nil, err
	}
	pos := ast.Pos{At: left.Span().Merge(closing.Span)}
	if safe {
		return &ast.SafeIndexExpr{Pos: pos, Value: left, Index: index}, nil
	}
	return &ast.IndexExpr{Pos: pos, Value: left, Index: index}, nil
}

func (p *Parser) parseCallExpression(left ast.Expr) (ast.Expr, error) {
	p.nextToken() // (

	if v, ok := left.(*ast.VarExpr); ok && p.curTokenIs(token.LBRACKET) {
		return p.parseNamedCall(v)
	}

	args, err := p.parseExpressionList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	closing, err := p.expect(token.RPAREN)
	if err != nil {
		return nil, err
	}
	pos := ast.Pos{At: left.Span().Merge(closing.Span)}
	if v, ok := left.(*ast.VarExpr); ok {
		return &ast.CallExpr{Pos: pos, Name: v.Name, Args: args}, nil
	}
	return &ast.InvokeExpr{Pos: pos, Func: left, Args: args}, nil
}

// parseNamedCall handles name([a = 1, b := 2]); the current token is '['.
func (p *Parser) parseNamedCall(callee *ast.VarExpr) (ast.Expr, error) {
	p.nextToken() // [
	fields, err := p.parseMakeFields(token.RBRACKET)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	closing, err := p.expect(token.RPAREN)
	if err != nil {
		return nil, err
	}
	return &ast.NamedCallExpr{
		Pos:  ast.Pos{At: callee.Span().Merge(closing.Span)},
		Name: callee.Name,
		Args: fields,
	}, nil
}

// parseMethodCall handles obj->name(args).
func (p *Parser) parseMethodCall(left ast.Expr) (ast.Expr, error) {
	p.nextToken() // ->
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	args, err := p.parseExpressionList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	closing, err := p.expect(token.RPAREN)
	if err != nil {
		return nil, err
	}
	return &ast.MethodCallExpr{
		Pos:    ast.Pos{At: left.Span().Merge(closing.Span)},
		Object: left,
		Name:   name.Literal,
		Args:   args,
	}, nil
}

// parseVariantOp handles v is name, v as name and v ?as name.
func (p *Parser) parseVariantOp(left ast.Expr) (ast.Expr, error) {
	op := p.curToken
	p.nextToken()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	pos := ast.Pos{At: left.Span().Merge(name.Span)}
	switch op.Type {
	case token.IS:
		return &ast.IsVariantExpr{Pos: pos, Value: left, Name: name.Literal}, nil
	case token.AS:
		return &ast.AsVariantExpr{Pos: pos, Value: left, Name: name.Literal}, nil
	}
	return &ast.SafeAsVariantExpr{Pos: pos, Value: left, Name: name.Literal}, nil
}

// skipToStatementBoundary drops tokens up to the next ';', '}' or line start.
func (p *Parser) skipToStatementBoundary() {
	for !p.curTokenIs(token.EOF) && !p.curTokenIs(token.SEMICOLON) && !p.atClose(token.RBRACE) && !p.onNewLine() {
		p.nextToken()
	}
}
