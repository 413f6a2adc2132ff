package token

import "fmt"

type TokenType string

// Span is a source range. Lines and columns are 1-based; LastColumn is inclusive.
type Span struct {
	File       string
	Line       int
	Column     int
	LastLine   int
	LastColumn int
}

func (s Span) String() string {
	if s.File != "" {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero reports whether the span was never set.
func (s Span) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// Merge returns a span running from the start of s to the end of other.
func (s Span) Merge(other Span) Span {
	if s.IsZero() {
		return other
	}
	if other.IsZero() {
		return s
	}
	out := s
	if other.LastLine > s.LastLine || (other.LastLine == s.LastLine && other.LastColumn > s.LastColumn) {
		out.LastLine = other.LastLine
		out.LastColumn = other.LastColumn
	}
	return out
}

type Token struct {
	Type    TokenType
	Literal string
	Span    Span
}

const (
	// Special
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers + literals
	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	UINT   TokenType = "UINT"
	INT8   TokenType = "INT8"
	UINT8  TokenType = "UINT8"
	INT64  TokenType = "INT64"
	UINT64 TokenType = "UINT64"
	FLOAT  TokenType = "FLOAT"
	DOUBLE TokenType = "DOUBLE"
	CHAR   TokenType = "CHAR"
	STRING TokenType = "STRING"

	// READER_MACRO is %name~ ; the literal holds the macro name.
	READER_MACRO TokenType = "READER_MACRO"

	// Assignment
	ASSIGN         TokenType = "="
	MOVE           TokenType = "<-"
	CLONE          TokenType = ":="
	PLUS_ASSIGN    TokenType = "+="
	MINUS_ASSIGN   TokenType = "-="
	MUL_ASSIGN     TokenType = "*="
	DIV_ASSIGN     TokenType = "/="
	MOD_ASSIGN     TokenType = "%="
	AND_ASSIGN     TokenType = "&="
	OR_ASSIGN      TokenType = "|="
	XOR_ASSIGN     TokenType = "^="
	LAND_ASSIGN    TokenType = "&&="
	LOR_ASSIGN     TokenType = "||="
	LXOR_ASSIGN    TokenType = "^^="
	SHL_ASSIGN     TokenType = "<<="
	SHR_ASSIGN     TokenType = ">>="
	ROTL_ASSIGN    TokenType = "<<<="
	ROTR_ASSIGN    TokenType = ">>>="

	// Arithmetic
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	INC      TokenType = "++"
	DEC      TokenType = "--"

	// Bitwise
	AMP   TokenType = "&"
	PIPE  TokenType = "|"
	CARET TokenType = "^"
	TILDE TokenType = "~"
	SHL   TokenType = "<<"
	SHR   TokenType = ">>"
	ROTL  TokenType = "<<<"
	ROTR  TokenType = ">>>"

	// Comparison
	EQ     TokenType = "=="
	NOT_EQ TokenType = "!="
	LT     TokenType = "<"
	GT     TokenType = ">"
	LT_EQ  TokenType = "<="
	GT_EQ  TokenType = ">="

	// Logical
	BANG TokenType = "!"
	AND  TokenType = "&&"
	OR   TokenType = "||"
	XOR  TokenType = "^^"

	// Navigation and misc operators
	DOT          TokenType = "."
	DOTDOT       TokenType = ".."
	SAFE_DOT     TokenType = "?."
	SAFE_INDEX   TokenType = "?["
	SAFE_AS      TokenType = "?as"
	QUESTION     TokenType = "?"
	COALESCE     TokenType = "??"
	ARROW        TokenType = "->"
	FAT_ARROW    TokenType = "=>"
	SCOPE        TokenType = "::"
	PIPE_LEFT    TokenType = "<|"
	PIPE_RIGHT   TokenType = "|>"
	DOLLAR       TokenType = "$"
	AT           TokenType = "@"
	ATAT         TokenType = "@@"
	HASH         TokenType = "#"

	// Delimiters
	COLON     TokenType = ":"
	SEMICOLON TokenType = ";"
	COMMA     TokenType = ","

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	// Doubled brackets used by make literals
	MAKE_OPEN        TokenType = "[["
	MAKE_CLOSE       TokenType = "]]"
	ARRAY_OPEN       TokenType = "[{"
	ARRAY_CLOSE      TokenType = "}]"
	TABLE_OPEN       TokenType = "{{"
	TABLE_CLOSE      TokenType = "}}"

	// Keywords: declarations
	MODULE   TokenType = "MODULE"
	REQUIRE  TokenType = "REQUIRE"
	OPTIONS  TokenType = "OPTIONS"
	LET      TokenType = "LET"
	VAR      TokenType = "VAR"
	DEF      TokenType = "DEF"
	STRUCT   TokenType = "STRUCT"
	CLASS    TokenType = "CLASS"
	ENUM     TokenType = "ENUM"
	TYPEDEF  TokenType = "TYPEDEF"
	VARIANT  TokenType = "VARIANT"
	BITFIELD TokenType = "BITFIELD"
	TUPLE    TokenType = "TUPLE"
	PUBLIC   TokenType = "PUBLIC"
	PRIVATE  TokenType = "PRIVATE"
	SHARED   TokenType = "SHARED"
	SEALED   TokenType = "SEALED"
	OVERRIDE TokenType = "OVERRIDE"
	ABSTRACT TokenType = "ABSTRACT"
	STATIC   TokenType = "STATIC"
	OPERATOR TokenType = "OPERATOR"
	AKA      TokenType = "AKA"
	INSCOPE  TokenType = "INSCOPE"

	// Keywords: statements
	IF          TokenType = "IF"
	ELIF        TokenType = "ELIF"
	ELSE        TokenType = "ELSE"
	STATIC_IF   TokenType = "STATIC_IF"
	STATIC_ELIF TokenType = "STATIC_ELIF"
	FOR         TokenType = "FOR"
	IN          TokenType = "IN"
	WHILE       TokenType = "WHILE"
	WITH        TokenType = "WITH"
	UNSAFE      TokenType = "UNSAFE"
	TRY         TokenType = "TRY"
	RECOVER     TokenType = "RECOVER"
	CATCH       TokenType = "CATCH"
	RETURN      TokenType = "RETURN"
	YIELD       TokenType = "YIELD"
	BREAK       TokenType = "BREAK"
	CONTINUE    TokenType = "CONTINUE"
	PASS        TokenType = "PASS"
	LABEL       TokenType = "LABEL"
	GOTO        TokenType = "GOTO"
	WHERE       TokenType = "WHERE"

	// Keywords: expressions
	NEW         TokenType = "NEW"
	DELETE      TokenType = "DELETE"
	CAST        TokenType = "CAST"
	UPCAST      TokenType = "UPCAST"
	REINTERPRET TokenType = "REINTERPRET"
	TYPEINFO    TokenType = "TYPEINFO"
	TYPE        TokenType = "TYPE"
	TYPEDECL    TokenType = "TYPEDECL"
	GENERATOR   TokenType = "GENERATOR"
	AS          TokenType = "AS"
	IS          TokenType = "IS"
	NULL        TokenType = "NULL"
	TRUE        TokenType = "TRUE"
	FALSE       TokenType = "FALSE"

	// Keywords: type modifiers and generic containers
	CONST     TokenType = "CONST"
	EXPLICIT  TokenType = "EXPLICIT"
	IMPLICIT  TokenType = "IMPLICIT"
	AUTO      TokenType = "AUTO"
	ARRAY     TokenType = "ARRAY"
	TABLE     TokenType = "TABLE"
	SMART_PTR TokenType = "SMART_PTR"
	ITERATOR  TokenType = "ITERATOR"
	BLOCK     TokenType = "BLOCK"
	FUNCTION  TokenType = "FUNCTION"
	LAMBDA    TokenType = "LAMBDA"

	// Scalar type names
	T_BOOL     TokenType = "T_BOOL"
	T_VOID     TokenType = "T_VOID"
	T_STRING   TokenType = "T_STRING"
	T_INT      TokenType = "T_INT"
	T_INT8     TokenType = "T_INT8"
	T_INT16    TokenType = "T_INT16"
	T_INT64    TokenType = "T_INT64"
	T_UINT     TokenType = "T_UINT"
	T_UINT8    TokenType = "T_UINT8"
	T_UINT16   TokenType = "T_UINT16"
	T_UINT64   TokenType = "T_UINT64"
	T_FLOAT    TokenType = "T_FLOAT"
	T_DOUBLE   TokenType = "T_DOUBLE"
	T_INT2     TokenType = "T_INT2"
	T_INT3     TokenType = "T_INT3"
	T_INT4     TokenType = "T_INT4"
	T_UINT2    TokenType = "T_UINT2"
	T_UINT3    TokenType = "T_UINT3"
	T_UINT4    TokenType = "T_UINT4"
	T_FLOAT2   TokenType = "T_FLOAT2"
	T_FLOAT3   TokenType = "T_FLOAT3"
	T_FLOAT4   TokenType = "T_FLOAT4"
	T_RANGE    TokenType = "T_RANGE"
	T_URANGE   TokenType = "T_URANGE"
	T_RANGE64  TokenType = "T_RANGE64"
	T_URANGE64 TokenType = "T_URANGE64"
)

var keywords = map[string]TokenType{
	"module":      MODULE,
	"require":     REQUIRE,
	"options":     OPTIONS,
	"let":         LET,
	"var":         VAR,
	"def":         DEF,
	"struct":      STRUCT,
	"class":       CLASS,
	"enum":        ENUM,
	"typedef":     TYPEDEF,
	"variant":     VARIANT,
	"bitfield":    BITFIELD,
	"tuple":       TUPLE,
	"public":      PUBLIC,
	"private":     PRIVATE,
	"shared":      SHARED,
	"sealed":      SEALED,
	"override":    OVERRIDE,
	"abstract":    ABSTRACT,
	"static":      STATIC,
	"operator":    OPERATOR,
	"aka":         AKA,
	"inscope":     INSCOPE,
	"if":          IF,
	"elif":        ELIF,
	"else":        ELSE,
	"static_if":   STATIC_IF,
	"static_elif": STATIC_ELIF,
	"for":         FOR,
	"in":          IN,
	"while":       WHILE,
	"with":        WITH,
	"unsafe":      UNSAFE,
	"try":         TRY,
	"recover":     RECOVER,
	"catch":       CATCH,
	"return":      RETURN,
	"yield":       YIELD,
	"break":       BREAK,
	"continue":    CONTINUE,
	"pass":        PASS,
	"label":       LABEL,
	"goto":        GOTO,
	"where":       WHERE,
	"new":         NEW,
	"delete":      DELETE,
	"cast":        CAST,
	"upcast":      UPCAST,
	"reinterpret": REINTERPRET,
	"typeinfo":    TYPEINFO,
	"type":        TYPE,
	"typedecl":    TYPEDECL,
	"generator":   GENERATOR,
	"as":          AS,
	"is":          IS,
	"null":        NULL,
	"true":        TRUE,
	"false":       FALSE,
	"const":       CONST,
	"explicit":    EXPLICIT,
	"implicit":    IMPLICIT,
	"auto":        AUTO,
	"array":       ARRAY,
	"table":       TABLE,
	"smart_ptr":   SMART_PTR,
	"iterator":    ITERATOR,
	"block":       BLOCK,
	"function":    FUNCTION,
	"lambda":      LAMBDA,
	"bool":        T_BOOL,
	"void":        T_VOID,
	"string":      T_STRING,
	"int":         T_INT,
	"int8":        T_INT8,
	"int16":       T_INT16,
	"int64":       T_INT64,
	"uint":        T_UINT,
	"uint8":       T_UINT8,
	"uint16":      T_UINT16,
	"uint64":      T_UINT64,
	"float":       T_FLOAT,
	"double":      T_DOUBLE,
	"int2":        T_INT2,
	"int3":        T_INT3,
	"int4":        T_INT4,
	"uint2":       T_UINT2,
	"uint3":       T_UINT3,
	"uint4":       T_UINT4,
	"float2":      T_FLOAT2,
	"float3":      T_FLOAT3,
	"float4":      T_FLOAT4,
	"range":       T_RANGE,
	"urange":      T_URANGE,
	"range64":     T_RANGE64,
	"urange64":    T_URANGE64,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether ident is reserved.
func IsKeyword(ident string) bool {
	_, ok := keywords[ident]
	return ok
}

// Keyword returns the source spelling of a keyword token type.
func Keyword(t TokenType) (string, bool) {
	for k, v := range keywords {
		if v == t {
			return k, true
		}
	}
	return "", false
}

// IsScalarType reports whether t names a builtin scalar type.
func IsScalarType(t TokenType) bool {
	return len(t) > 2 && t[0] == 'T' && t[1] == '_'
}

// operators maps operator spellings to their token types. Longest match wins in the lexer.
var operators = map[string]TokenType{
	"=": ASSIGN, "<-": MOVE, ":=": CLONE,
	"+=": PLUS_ASSIGN, "-=": MINUS_ASSIGN, "*=": MUL_ASSIGN, "/=": DIV_ASSIGN, "%=": MOD_ASSIGN,
	"&=": AND_ASSIGN, "|=": OR_ASSIGN, "^=": XOR_ASSIGN,
	"&&=": LAND_ASSIGN, "||=": LOR_ASSIGN, "^^=": LXOR_ASSIGN,
	"<<=": SHL_ASSIGN, ">>=": SHR_ASSIGN, "<<<=": ROTL_ASSIGN, ">>>=": ROTR_ASSIGN,
	"+": PLUS, "-": MINUS, "*": ASTERISK, "/": SLASH, "%": PERCENT, "++": INC, "--": DEC,
	"&": AMP, "|": PIPE, "^": CARET, "~": TILDE,
	"<<": SHL, ">>": SHR, "<<<": ROTL, ">>>": ROTR,
	"==": EQ, "!=": NOT_EQ, "<": LT, ">": GT, "<=": LT_EQ, ">=": GT_EQ,
	"!": BANG, "&&": AND, "||": OR, "^^": XOR,
	".": DOT, "..": DOTDOT, "?.": SAFE_DOT, "?[": SAFE_INDEX, "?as": SAFE_AS,
	"?": QUESTION, "??": COALESCE, "->": ARROW, "=>": FAT_ARROW, "::": SCOPE,
	"<|": PIPE_LEFT, "|>": PIPE_RIGHT, "$": DOLLAR, "@": AT, "@@": ATAT, "#": HASH,
	":": COLON, ";": SEMICOLON, ",": COMMA,
	"(": LPAREN, ")": RPAREN, "{": LBRACE, "}": RBRACE, "[": LBRACKET, "]": RBRACKET,
	"[[": MAKE_OPEN, "]]": MAKE_CLOSE, "[{": ARRAY_OPEN, "}]": ARRAY_CLOSE,
	"{{": TABLE_OPEN, "}}": TABLE_CLOSE,
}

// LookupOperator returns the token type for an operator spelling.
func LookupOperator(op string) (TokenType, bool) {
	t, ok := operators[op]
	return t, ok
}

// MaxOperatorLen is the length of the longest operator spelling.
const MaxOperatorLen = 4
