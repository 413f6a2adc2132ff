package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/lexer"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

// ============ STRINGS ============

// stringScanner walks the raw body of a string literal keeping track of source positions.
type stringScanner struct {
	src  string
	pos  int
	line int
	col  int
	file string
}

func (s *stringScanner) done() bool { return s.pos >= len(s.src) }

func (s *stringScanner) peek() rune {
	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])
	return r
}

func (s *stringScanner) next() rune {
	r, size := utf8.DecodeRuneInString(s.src[s.pos:])
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *stringScanner) here() token.Span {
	return token.Span{File: s.file, Line: s.line, Column: s.col, LastLine: s.line, LastColumn: s.col}
}

// parseStringLiteral unescapes a string body and parses its {expr} segments.
// A literal without segments is a StringLit; anything else is a StringBuilderExpr.
func (p *Parser) parseStringLiteral() (ast.Expr, error) {
	tok := p.curToken
	p.nextToken()

	s := &stringScanner{src: tok.Literal, line: tok.Span.Line, col: tok.Span.Column + 1, file: tok.Span.File}
	var (
		elements    []ast.Expr
		text        strings.Builder
		textStart   = s.here()
		interpolate bool
	)
	flush := func(end token.Span) {
		if text.Len() == 0 {
			return
		}
		sp := textStart
		sp.LastLine, sp.LastColumn = end.LastLine, end.LastColumn
		elements = append(elements, &ast.StringLit{Pos: ast.Pos{At: sp}, Value: text.String()})
		text.Reset()
	}

	for !s.done() {
		if text.Len() == 0 {
			textStart = s.here()
		}
		switch s.peek() {
		case '\\':
			p.unescape(s, &text)
		case '{':
			open := s.here()
			flush(open)
			s.next()
			segStart := s.here()
			body, ok := scanSegment(s)
			if !ok {
				p.addf(diag.SyntaxError, open, "unterminated '{' in string")
				text.WriteString("{" + body)
				continue
			}
			interpolate = true
			if e := p.parseSegment(body, segStart, open); e != nil {
				elements = append(elements, e)
			}
		default:
			text.WriteRune(s.next())
		}
	}

	if !interpolate {
		return &ast.StringLit{Pos: at(tok), Value: text.String()}, nil
	}
	flush(tok.Span)
	return &ast.StringBuilderExpr{Pos: at(tok), Elements: elements}, nil
}

// scanSegment reads up to the '}' matching an already consumed '{'. Nested braces,
// nested string literals and character literals are skipped whole.
func scanSegment(s *stringScanner) (string, bool) {
	start := s.pos
	depth := 0
	var quote rune // '"' or '\'' while inside a literal
	for !s.done() {
		switch r := s.next(); {
		case r == '\\':
			if !s.done() {
				s.next()
			}
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '{':
			depth++
		case r == '}':
			if depth == 0 {
				return s.src[start : s.pos-1], true
			}
			depth--
		}
	}
	return s.src[start:], false
}

// parseSegment parses one interpolated expression with a nested parser sharing the
// context and sink of p.
func (p *Parser) parseSegment(body string, start, open token.Span) ast.Expr {
	if strings.TrimSpace(body) == "" {
		p.addf(diag.SyntaxError, open, "empty expression in string interpolation")
		return nil
	}
	sub := p.fork(lexer.NewAt(start.File, body, start.Line, start.Column))
	e, err := sub.parseExpression(LOWEST)
	if err == nil && !sub.curTokenIs(token.EOF) {
		err = sub.unexpected("'}' closing the interpolation")
	}
	if err != nil {
		p.report(err)
		return nil
	}
	return e
}

var simpleEscapes = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'0':  0,
	'{':  '{',
	'}':  '}',
}

// unescape consumes one escape sequence and writes its value. Unknown sequences are
// reported and kept as written.
func (p *Parser) unescape(s *stringScanner, out *strings.Builder) {
	start := s.here()
	s.next() // backslash
	if s.done() {
		p.addf(diag.InvalidEscapeSequence, start, "incomplete escape sequence")
		out.WriteByte('\\')
		return
	}
	r := s.next()
	if v, ok := simpleEscapes[r]; ok {
		out.WriteRune(v)
		return
	}

	digits := 0
	switch r {
	case 'x':
		digits = 2
	case 'u':
		digits = 4
	}
	if digits > 0 && s.pos+digits <= len(s.src) {
		hex := s.src[s.pos : s.pos+digits]
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			for range digits {
				s.next()
			}
			out.WriteRune(rune(v))
			return
		}
	}

	sp := start
	sp.LastLine, sp.LastColumn = s.line, s.col-1
	p.addf(diag.InvalidEscapeSequence, sp, "invalid escape sequence \\%c", r)
	out.WriteByte('\\')
	out.WriteRune(r)
}

// parseCharLiteral handles 'a' and '\n'.
func (p *Parser) parseCharLiteral() (ast.Expr, error) {
	tok := p.curToken
	p.nextToken()

	s := &stringScanner{src: tok.Literal, line: tok.Span.Line, col: tok.Span.Column + 1, file: tok.Span.File}
	var b strings.Builder
	for !s.done() {
		if s.peek() == '\\' {
			p.unescape(s, &b)
		} else {
			b.WriteRune(s.next())
		}
	}

	lit := &ast.CharLit{Pos: at(tok)}
	value := b.String()
	if utf8.RuneCountInString(value) != 1 {
		p.addf(diag.SyntaxError, tok.Span, "invalid character constant '%s'", tok.Literal)
		if value != "" {
			lit.Value, _ = utf8.DecodeRuneInString(value)
		}
		return lit, nil
	}
	lit.Value, _ = utf8.DecodeRuneInString(value)
	return lit, nil
}
