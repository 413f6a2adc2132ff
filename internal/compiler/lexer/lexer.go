package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/btouchard/dasfront/internal/compiler/token"
)

type Lexer struct {
	file         string
	input        string
	position     int  // current offset in input (bytes)
	readPosition int  // next reading position (bytes)
	ch           rune // current character
	line         int  // line of ch (1-based)
	column       int  // column of ch (1-based)
	lastLine     int  // position of the previously consumed character
	lastColumn   int
}

func New(input string) *Lexer {
	return NewFile("", input)
}

// NewFile creates a lexer whose spans carry the given file name.
func NewFile(file, input string) *Lexer {
	l := &Lexer{
		file:   file,
		input:  input,
		line:   1,
		column: 0,
	}
	l.readChar()
	return l
}

// NewAt creates a lexer for a fragment that starts at line/column of an enclosing file.
// Used for string interpolation segments.
func NewAt(file, input string, line, column int) *Lexer {
	l := &Lexer{
		file:   file,
		input:  input,
		line:   line,
		column: column - 1,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	l.lastLine, l.lastColumn = l.line, l.column
	prev := l.ch
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input)
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size

	if prev == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) peekChar() rune {
	return l.peekCharAt(0)
}

// peekCharAt returns the rune n characters after the current one.
func (l *Lexer) peekCharAt(n int) rune {
	pos := l.readPosition
	for i := 0; ; i++ {
		if pos >= len(l.input) {
			return 0
		}
		r, size := utf8.DecodeRuneInString(l.input[pos:])
		if i == n {
			return r
		}
		pos += size
	}
}

func (l *Lexer) span(startLine, startCol int) token.Span {
	return token.Span{
		File:       l.file,
		Line:       startLine,
		Column:     startCol,
		LastLine:   l.lastLine,
		LastColumn: l.lastColumn,
	}
}

// NextRune hands out raw source characters; reader macros consume their bodies with it.
func (l *Lexer) NextRune() (rune, token.Span, bool) {
	if l.atEOF() {
		return 0, token.Span{File: l.file, Line: l.line, Column: l.column, LastLine: l.line, LastColumn: l.column}, false
	}
	r := l.ch
	sp := token.Span{File: l.file, Line: l.line, Column: l.column, LastLine: l.line, LastColumn: l.column}
	l.readChar()
	return r, sp, true
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.column

	if l.atEOF() {
		return token.Token{Type: token.EOF, Span: token.Span{File: l.file, Line: line, Column: col, LastLine: line, LastColumn: col}}
	}

	switch {
	case l.ch == '"':
		lit := l.readString()
		return token.Token{Type: token.STRING, Literal: lit, Span: l.span(line, col)}
	case l.ch == '\'':
		lit := l.readCharLiteral()
		return token.Token{Type: token.CHAR, Literal: lit, Span: l.span(line, col)}
	case l.ch == '%' && l.isReaderMacro():
		l.readChar() // consume %
		name := l.readIdentifier()
		l.readChar() // consume ~
		return token.Token{Type: token.READER_MACRO, Literal: name, Span: l.span(line, col)}
	case l.ch == '?' && l.peekChar() == 'a' && l.peekCharAt(1) == 's' && !isIdentChar(l.peekCharAt(2)):
		l.readChar()
		l.readChar()
		l.readChar()
		return token.Token{Type: token.SAFE_AS, Literal: "?as", Span: l.span(line, col)}
	case isLetter(l.ch):
		lit := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(lit), Literal: lit, Span: l.span(line, col)}
	case isDigit(l.ch):
		typ, lit := l.readNumber()
		return token.Token{Type: typ, Literal: lit, Span: l.span(line, col)}
	}

	if typ, lit, ok := l.readOperator(); ok {
		return token.Token{Type: typ, Literal: lit, Span: l.span(line, col)}
	}

	ch := l.ch
	l.readChar()
	return token.Token{Type: token.ILLEGAL, Literal: string(ch), Span: l.span(line, col)}
}

// readOperator matches the longest operator spelling at the current position.
// ?as is word-like and only NextToken produces it, so ?ask stays ? ask.
func (l *Lexer) readOperator() (token.TokenType, string, bool) {
	rest := l.input[l.position:]
	for n := token.MaxOperatorLen; n > 0; n-- {
		if n > len(rest) {
			continue
		}
		cand := rest[:n]
		if typ, ok := token.LookupOperator(cand); ok && typ != token.SAFE_AS {
			for range cand {
				l.readChar()
			}
			return typ, cand, true
		}
	}
	return "", "", false
}

// isReaderMacro checks for %name~ without consuming input.
func (l *Lexer) isReaderMacro() bool {
	i := l.readPosition
	start := i
	for i < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[i:])
		if !isIdentChar(r) {
			break
		}
		i += size
	}
	if i == start || i >= len(l.input) {
		return false
	}
	first, _ := utf8.DecodeRuneInString(l.input[start:])
	return isLetter(first) && l.input[i] == '~'
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		// Block comments nest.
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			depth := 1
			for depth > 0 && !l.atEOF() {
				switch {
				case l.ch == '/' && l.peekChar() == '*':
					l.readChar()
					depth++
				case l.ch == '*' && l.peekChar() == '/':
					l.readChar()
					depth--
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or floating literal and classifies it by suffix.
// The returned literal omits the suffix.
func (l *Lexer) readNumber() (token.TokenType, string) {
	start := l.position

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		return l.intSuffix(l.input[start:l.position])
	}
	if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		for l.ch == '0' || l.ch == '1' || l.ch == '_' {
			l.readChar()
		}
		return l.intSuffix(l.input[start:l.position])
	}

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	isFloat := false
	// 1..5 is an interval, not a float
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) ||
		((l.peekChar() == '+' || l.peekChar() == '-') && isDigit(l.peekCharAt(1)))) {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	lit := l.input[start:l.position]
	if isFloat {
		switch {
		case l.ch == 'f' && !isIdentChar(l.peekChar()):
			l.readChar()
			return token.FLOAT, lit
		case l.ch == 'd' && !isIdentChar(l.peekChar()):
			l.readChar()
			return token.DOUBLE, lit
		case l.ch == 'l' && l.peekChar() == 'f' && !isIdentChar(l.peekCharAt(1)):
			l.readChar()
			l.readChar()
			return token.DOUBLE, lit
		}
		return token.FLOAT, lit
	}
	if l.ch == 'f' && !isIdentChar(l.peekChar()) {
		l.readChar()
		return token.FLOAT, lit
	}
	if l.ch == 'd' && !isIdentChar(l.peekChar()) {
		l.readChar()
		return token.DOUBLE, lit
	}
	return l.intSuffix(lit)
}

func (l *Lexer) intSuffix(lit string) (token.TokenType, string) {
	var suffix string
	start := l.position
	for isIdentChar(l.ch) && l.position-start < 3 {
		suffix += string(l.ch)
		l.readChar()
	}
	switch strings.ToLower(suffix) {
	case "":
		return token.INT, lit
	case "u":
		return token.UINT, lit
	case "l":
		return token.INT64, lit
	case "ul":
		return token.UINT64, lit
	case "u8":
		return token.UINT8, lit
	case "i8":
		return token.INT8, lit
	}
	return token.ILLEGAL, lit + suffix
}

// readString returns the raw body of a string literal. Braces inside the literal may hold
// nested string literals; those are skipped as a whole so their quotes do not end the outer one.
func (l *Lexer) readString() string {
	l.readChar() // consume opening "
	start := l.position
	depth := 0

	for !l.atEOF() {
		switch {
		case l.ch == '\\':
			l.readChar()
			if !l.atEOF() {
				l.readChar()
			}
			continue
		case l.ch == '{':
			depth++
		case l.ch == '}' && depth > 0:
			depth--
		case l.ch == '"' && depth > 0:
			l.readString()
			continue
		case l.ch == '\'' && depth > 0:
			l.skipQuotedChar()
			continue
		case l.ch == '"':
			str := l.input[start:l.position]
			l.readChar() // consume closing "
			return str
		}
		l.readChar()
	}

	return l.input[start:l.position]
}

// skipQuotedChar steps over a character literal inside a string interpolation.
func (l *Lexer) skipQuotedChar() {
	l.readChar() // consume opening '
	for !l.atEOF() && l.ch != '\'' && l.ch != '"' && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch == '\'' {
		l.readChar()
	}
}

// readCharLiteral reads a character literal body such as 'a' or '\n'.
func (l *Lexer) readCharLiteral() string {
	l.readChar() // consume opening '
	start := l.position
	for l.ch != '\'' && !l.atEOF() && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	str := l.input[start:l.position]
	if l.ch == '\'' {
		l.readChar()
	}
	return str
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentChar(ch rune) bool {
	return isLetter(ch) || isDigit(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
