package token

import "testing"

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
	}{
		// Keywords
		{"def", DEF},
		{"let", LET},
		{"var", VAR},
		{"struct", STRUCT},
		{"class", CLASS},
		{"typedef", TYPEDEF},
		{"static_if", STATIC_IF},
		{"generator", GENERATOR},
		{"smart_ptr", SMART_PTR},
		{"true", TRUE},
		{"null", NULL},
		// Scalar types
		{"int", T_INT},
		{"float4", T_FLOAT4},
		{"urange64", T_URANGE64},
		// Non-keywords
		{"variable", IDENT},
		{"Def", IDENT},
		{"make", IDENT},
		{"length", IDENT},
		{"export", IDENT},
		{"int5", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LookupIdent(tt.input); got != tt.expected {
				t.Errorf("LookupIdent(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsKeyword(t *testing.T) {
	if !IsKeyword("while") {
		t.Errorf("expected while to be a keyword")
	}
	if IsKeyword("whilst") {
		t.Errorf("expected whilst not to be a keyword")
	}
}

func TestKeywordSpelling(t *testing.T) {
	tests := []struct {
		typ      TokenType
		expected string
	}{
		{STATIC_ELIF, "static_elif"},
		{T_UINT16, "uint16"},
		{REINTERPRET, "reinterpret"},
	}
	for _, tt := range tests {
		got, ok := Keyword(tt.typ)
		if !ok || got != tt.expected {
			t.Errorf("Keyword(%s) = %q, %v; want %q", tt.typ, got, ok, tt.expected)
		}
	}
	if _, ok := Keyword(PLUS); ok {
		t.Errorf("expected + to have no keyword spelling")
	}
}

func TestIsScalarType(t *testing.T) {
	for _, typ := range []TokenType{T_BOOL, T_VOID, T_STRING, T_INT3, T_URANGE} {
		if !IsScalarType(typ) {
			t.Errorf("expected %s to be a scalar type", typ)
		}
	}
	for _, typ := range []TokenType{IDENT, ARRAY, TABLE, AUTO, INT} {
		if IsScalarType(typ) {
			t.Errorf("expected %s not to be a scalar type", typ)
		}
	}
}

func TestLookupOperator(t *testing.T) {
	tests := []struct {
		op       string
		expected TokenType
	}{
		{"<<<=", ROTL_ASSIGN},
		{"?as", SAFE_AS},
		{"[[", MAKE_OPEN},
		{"}]", ARRAY_CLOSE},
		{"<|", PIPE_LEFT},
	}
	for _, tt := range tests {
		got, ok := LookupOperator(tt.op)
		if !ok || got != tt.expected {
			t.Errorf("LookupOperator(%q) = %s, %v; want %s", tt.op, got, ok, tt.expected)
		}
	}
	if _, ok := LookupOperator("<<<<"); ok {
		t.Errorf("expected <<<< to be unknown")
	}
}

func TestOperatorsFitMaxLen(t *testing.T) {
	for op := range operators {
		if len(op) > MaxOperatorLen {
			t.Errorf("operator %q is longer than MaxOperatorLen", op)
		}
	}
}

func TestSpanString(t *testing.T) {
	s := Span{File: "main.das", Line: 3, Column: 7}
	if got := s.String(); got != "main.das:3:7" {
		t.Errorf("expected main.das:3:7, got %s", got)
	}
	s.File = ""
	if got := s.String(); got != "3:7" {
		t.Errorf("expected 3:7, got %s", got)
	}
}

func TestSpanMerge(t *testing.T) {
	a := Span{File: "f", Line: 1, Column: 2, LastLine: 1, LastColumn: 4}
	b := Span{File: "f", Line: 2, Column: 1, LastLine: 2, LastColumn: 9}

	got := a.Merge(b)
	want := Span{File: "f", Line: 1, Column: 2, LastLine: 2, LastColumn: 9}
	if got != want {
		t.Errorf("Merge = %+v, want %+v", got, want)
	}

	// merging an earlier span keeps the later end
	if got := b.Merge(a); got != b {
		t.Errorf("Merge of an earlier span changed the end: %+v", got)
	}
	if got := (Span{}).Merge(a); got != a {
		t.Errorf("Merge from zero = %+v, want %+v", got, a)
	}
	if got := a.Merge(Span{}); got != a {
		t.Errorf("Merge with zero = %+v, want %+v", got, a)
	}
	if !(Span{}).IsZero() || a.IsZero() {
		t.Errorf("IsZero mismatch")
	}
}
