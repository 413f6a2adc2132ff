package parser

import (
	"fmt"
	"strings"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/comments"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/lexer"
	"github.com/btouchard/dasfront/internal/compiler/macro"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// Source yields tokens on demand.
type Source interface {
	NextToken() token.Token
}

// RuneSource hands out raw characters. Reader macros need it; a Source that
// does not implement it cannot feed macro handlers.
type RuneSource interface {
	NextRune() (r rune, span token.Span, ok bool)
}

// Options configures a Parser.
type Options struct {
	File           string
	OxfordComma    bool
	DefaultPrivate bool
	MaxErrors      int
	Macros         *macro.Registry
	Comments       comments.Reader
}

type Parser struct {
	src      Source
	curToken token.Token
	// pending holds tokens fetched for lookahead or left over after a compound
	// token was split. Reader macros require it to be empty.
	pending  []token.Token
	prevLine int
	prevCol  int

	ctx      *Context
	sink     *diag.Sink
	prog     *ast.Program
	file     string
	macros   *macro.Registry
	comments comments.Reader

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

type (
	prefixParseFn func() (ast.Expr, error)
	infixParseFn  func(ast.Expr) (ast.Expr, error)
)

// New creates a parser for one compilation unit. Every parser owns its Context and
// diagnostics sink, so separate parsers may run concurrently.
func New(src Source, opts Options) *Parser {
	ctx := NewContext()
	ctx.SetOxfordComma(opts.OxfordComma)
	ctx.SetDefaultPrivate(opts.DefaultPrivate)

	sink := diag.NewSink()
	sink.SetLimit(opts.MaxErrors)

	prog := ast.NewProgram(opts.File)
	prog.Module.DefaultPrivate = opts.DefaultPrivate

	p := newParser(src, ctx, sink, prog, opts.File)
	p.macros = opts.Macros
	if opts.Comments != nil {
		p.comments = opts.Comments
	}
	p.nextToken()
	return p
}

func newParser(src Source, ctx *Context, sink *diag.Sink, prog *ast.Program, file string) *Parser {
	p := &Parser{
		src:      src,
		ctx:      ctx,
		sink:     sink,
		prog:     prog,
		file:     file,
		comments: comments.Nop{},
	}
	p.registerExpressionParsers()
	return p
}

// fork creates a parser over a fragment of the same unit, sharing context,
// sink, program and collaborators.
func (p *Parser) fork(src Source) *Parser {
	sub := newParser(src, p.ctx, p.sink, p.prog, p.file)
	sub.macros = p.macros
	sub.comments = p.comments
	sub.nextToken()
	return sub
}

// ParseString parses a whole unit held in memory.
func ParseString(file, input string, opts Options) (*ast.Program, []*diag.Diagnostic) {
	opts.File = file
	p := New(lexer.NewFile(file, input), opts)
	prog := p.ParseProgram()
	return prog, p.Errors()
}

// ParseExpression parses a single expression, e.g. for tooling that evaluates snippets.
func ParseExpression(input string, opts Options) (ast.Expr, []*diag.Diagnostic) {
	p := New(lexer.NewFile(opts.File, input), opts)
	expr, err := p.parseExpression(LOWEST)
	if err == nil && !p.curTokenIs(token.EOF) {
		err = p.unexpected("end of expression")
	}
	if err != nil {
		p.report(err)
	}
	return expr, p.Errors()
}

func (p *Parser) Errors() []*diag.Diagnostic {
	return p.sink.Diagnostics()
}

func (p *Parser) Sink() *diag.Sink {
	return p.sink
}

func (p *Parser) Context() *Context {
	return p.ctx
}

func (p *Parser) Program() *ast.Program {
	return p.prog
}

// ============ TOKENS ============

func (p *Parser) nextToken() {
	p.prevLine, p.prevCol = p.curToken.Span.LastLine, p.curToken.Span.LastColumn
	if len(p.pending) > 0 {
		p.curToken = p.pending[0]
		p.pending = p.pending[1:]
		return
	}
	p.curToken = p.src.NextToken()
}

func (p *Parser) peekToken() token.Token {
	if len(p.pending) == 0 {
		p.pending = append(p.pending, p.src.NextToken())
	}
	return p.pending[0]
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken().Type == t
}

// onNewLine reports whether the current token starts a line after the previous token.
func (p *Parser) onNewLine() bool {
	return p.prevLine > 0 && p.curToken.Span.Line > p.prevLine
}

// expect consumes a token of type t. Doubled brackets are split when a single one is expected.
func (p *Parser) expect(t token.TokenType) (token.Token, error) {
	tok := p.curToken
	if tok.Type == t {
		p.nextToken()
		return tok, nil
	}
	if p.splitCur(t) {
		tok.Type, tok.Literal = t, string(t)
		return tok, nil
	}
	return tok, p.errorf("expected %s, got %s", describe(t), describeToken(tok))
}

// accept consumes a token of type t if present.
func (p *Parser) accept(t token.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	return false
}

var compoundBrackets = map[token.TokenType]bool{
	token.MAKE_OPEN:   true,
	token.MAKE_CLOSE:  true,
	token.ARRAY_OPEN:  true,
	token.ARRAY_CLOSE: true,
	token.TABLE_OPEN:  true,
	token.TABLE_CLOSE: true,
}

// atClose reports whether the current token is t or a doubled bracket starting with t.
func (p *Parser) atClose(t token.TokenType) bool {
	if p.curTokenIs(t) {
		return true
	}
	return compoundBrackets[p.curToken.Type] && strings.HasPrefix(p.curToken.Literal, string(t))
}

// splitCur consumes the leading t of a compound token, leaving the remainder as the
// current token: "]]" becomes "]" when a single "]" is expected.
func (p *Parser) splitCur(t token.TokenType) bool {
	if !compoundBrackets[p.curToken.Type] {
		return false
	}
	return p.consumePrefix(string(t))
}

func (p *Parser) consumePrefix(prefix string) bool {
	lit := p.curToken.Literal
	if len(lit) <= len(prefix) || !strings.HasPrefix(lit, prefix) {
		return false
	}
	rest := lit[len(prefix):]
	typ, ok := token.LookupOperator(rest)
	if !ok {
		return false
	}
	sp := p.curToken.Span
	p.prevLine, p.prevCol = sp.Line, sp.Column+len(prefix)-1
	sp.Column += len(prefix)
	p.curToken = token.Token{Type: typ, Literal: rest, Span: sp}
	return true
}

var doubleHalves = map[token.TokenType][2]token.TokenType{
	token.MAKE_CLOSE:  {token.RBRACKET, token.RBRACKET},
	token.ARRAY_CLOSE: {token.RBRACE, token.RBRACKET},
	token.TABLE_CLOSE: {token.RBRACE, token.RBRACE},
}

// expectDouble consumes a doubled closing bracket, accepting it as two single tokens
// when an inner construct split it.
func (p *Parser) expectDouble(t token.TokenType) (token.Token, error) {
	tok := p.curToken
	if tok.Type == t {
		p.nextToken()
		return tok, nil
	}
	if halves, ok := doubleHalves[t]; ok && tok.Type == halves[0] && p.peekTokenIs(halves[1]) {
		p.nextToken()
		tok.Span = tok.Span.Merge(p.curToken.Span)
		p.nextToken()
		tok.Type, tok.Literal = t, string(t)
		return tok, nil
	}
	return tok, p.errorf("expected %s, got %s", describe(t), describeToken(tok))
}

// atDouble reports whether a doubled closing bracket (possibly split) is next.
func (p *Parser) atDouble(t token.TokenType) bool {
	if p.curTokenIs(t) {
		return true
	}
	halves, ok := doubleHalves[t]
	return ok && p.curTokenIs(halves[0]) && p.peekTokenIs(halves[1])
}

// ============ ANGLE BRACKETS ============

// openAngle consumes '<' after a generic keyword and enters the bracket mode.
func (p *Parser) openAngle() error {
	if _, err := p.expect(token.LT); err != nil {
		return err
	}
	p.ctx.OpenAngle()
	return nil
}

var angleRemainders = map[token.TokenType]bool{
	token.SHR:         true, // >>
	token.ROTR:        true, // >>>
	token.GT_EQ:       true, // >=
	token.SHR_ASSIGN:  true, // >>=
	token.ROTR_ASSIGN: true, // >>>=
}

// closeAngle consumes one '>' closing a generic argument list. While a list is open,
// operators that start with '>' are split so the remainder stays current.
func (p *Parser) closeAngle() error {
	if p.curTokenIs(token.GT) {
		p.ctx.CloseAngle()
		p.nextToken()
		return nil
	}
	if p.ctx.AngleDepth() > 0 && angleRemainders[p.curToken.Type] && p.consumePrefix(">") {
		p.ctx.CloseAngle()
		return nil
	}
	return p.errorf("expected '>', got %s", describeToken(p.curToken))
}

// checkAngles runs after each statement and top-level declaration. base is the depth
// the construct started at: a statement inside a block inside type<...> starts above 0.
func (p *Parser) checkAngles(span token.Span, base int) {
	switch d := p.ctx.RestoreAngles(base); {
	case d > 0:
		p.sink.Addf(diag.SyntaxError, span, "unbalanced generic brackets (%d left open)", d)
	case d < 0:
		p.sink.Addf(diag.SyntaxError, span, "unbalanced generic brackets (%d closed too many)", -d)
	}
}

// ============ ERRORS ============

func (p *Parser) errorf(format string, args ...any) *diag.Diagnostic {
	return diag.Errorf(diag.SyntaxError, p.curToken.Span, format, args...)
}

func (p *Parser) unexpected(what string) *diag.Diagnostic {
	return p.errorf("unexpected %s, expecting %s", describeToken(p.curToken), what)
}

// report records an error returned by a parse function.
func (p *Parser) report(err error) {
	if err == nil {
		return
	}
	if d, ok := err.(*diag.Diagnostic); ok {
		p.sink.Report(d)
		return
	}
	p.sink.Add(diag.SyntaxError, p.curToken.Span, err.Error())
}

func (p *Parser) addf(kind diag.Kind, span token.Span, format string, args ...any) {
	p.sink.Addf(kind, span, format, args...)
}

func describe(t token.TokenType) string {
	if kw, ok := token.Keyword(t); ok {
		return fmt.Sprintf("'%s'", kw)
	}
	switch t {
	case token.IDENT:
		return "name"
	case token.EOF:
		return "end of file"
	case token.STRING:
		return "string"
	}
	return fmt.Sprintf("'%s'", string(t))
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of file"
	case token.STRING:
		return fmt.Sprintf("string %q", tok.Literal)
	case token.READER_MACRO:
		return fmt.Sprintf("reader macro %%%s~", tok.Literal)
	}
	if tok.Literal != "" {
		return fmt.Sprintf("'%s'", tok.Literal)
	}
	return describe(tok.Type)
}

func at(tok token.Token) ast.Pos {
	return ast.Pos{At: tok.Span}
}

// prevEnd is the end position of the last consumed token.
func (p *Parser) prevEnd() (int, int) {
	return p.prevLine, p.prevCol
}

// span covers from start to the last consumed token.
func (p *Parser) span(start token.Span) ast.Pos {
	end := start
	end.LastLine, end.LastColumn = p.prevEnd()
	if end.LastLine < start.Line {
		end.LastLine, end.LastColumn = start.LastLine, start.LastColumn
	}
	return ast.Pos{At: end}
}
