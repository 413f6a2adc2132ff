package parser

import (
	"github.com/btouchard/dasfront/internal/compiler/ast"
	"github.com/btouchard/dasfront/internal/compiler/diag"
	"github.com/btouchard/dasfront/internal/compiler/macro"
)

// readerTerminator ends the body of a reader macro nobody handles.
const readerTerminator = '~'

// parseReaderMacro dispatches %name~ to its handler, which reads raw characters until it
// reports completion. Unknown and ambiguous names skip the body up to the next '~'.
func (p *Parser) parseReaderMacro() (ast.Expr, error) {
	tok := p.curToken
	expr := &ast.ReaderExpr{Pos: at(tok), Macro: tok.Literal}

	runes, ok := p.src.(RuneSource)
	if !ok || len(p.pending) > 0 {
		p.nextToken()
		p.addf(diag.UnsupportedMacro, tok.Span, "reader macro %s can't read its body here", tok.Literal)
		return expr, nil
	}

	var handler macro.Handler
	switch handlers := p.macros.Lookup(tok.Literal); len(handlers) {
	case 0:
		p.addf(diag.UnsupportedMacro, tok.Span, "reader macro %s not found", tok.Literal)
	case 1:
		handler = handlers[0]
	default:
		p.addf(diag.UnsupportedMacro, tok.Span, "ambiguous reader macro %s (%d handlers)", tok.Literal, len(handlers))
	}

	end := tok.Span
	for {
		ch, sp, ok := runes.NextRune()
		if !ok {
			p.addf(diag.SyntaxError, tok.Span, "unterminated reader macro %s", tok.Literal)
			break
		}
		end = sp
		if handler == nil {
			if ch == readerTerminator {
				break
			}
			continue
		}
		if !handler.Accept(p.prog, p.prog.Module, expr, ch, sp) {
			break
		}
	}

	expr.Handled = handler != nil
	expr.At = tok.Span.Merge(end)
	p.prevLine, p.prevCol = end.LastLine, end.LastColumn
	p.curToken = p.src.NextToken()
	return expr, nil
}
