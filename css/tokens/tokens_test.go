package tokens_test

import (
	"testing"

	"csseng/css/tokens"
	"csseng/intern"
)

func TestTokenize(t *testing.T) {
	tbl := intern.NewTable()
	v := tokens.Tokenize(tbl, []byte(`rgb(1, 2) #fff 10px 50% "a\"b" url( "x.png" ) @media /* c */ ~=`))

	want := []struct {
		typ  tokens.Type
		data string
	}{
		{tokens.Function, "rgb"},
		{tokens.Number, "1"},
		{tokens.Char, ","},
		{tokens.Whitespace, " "},
		{tokens.Number, "2"},
		{tokens.Char, ")"},
		{tokens.Whitespace, " "},
		{tokens.Hash, "fff"},
		{tokens.Whitespace, " "},
		{tokens.Dimension, "10px"},
		{tokens.Whitespace, " "},
		{tokens.Percentage, "50"},
		{tokens.Whitespace, " "},
		{tokens.String, `a"b`},
		{tokens.Whitespace, " "},
		{tokens.URI, "x.png"},
		{tokens.Whitespace, " "},
		{tokens.AtKeyword, "media"},
		{tokens.Whitespace, " "},
		{tokens.Whitespace, " "},
		{tokens.IncludeMatch, "~="},
	}

	if len(v) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(v), len(want), v)
	}
	for i, w := range want {
		if v[i].Type != w.typ || v[i].Data != w.data {
			t.Errorf("token %d = %v %q, want %v %q", i, v[i].Type, v[i].Data, w.typ, w.data)
		}
	}
	if v[9].Unit() != "px" {
		t.Errorf("dimension unit = %q", v[9].Unit())
	}
	if !v[0].IData.Equal(tbl.Intern("rgb")) {
		t.Error("function name is not interned")
	}
}

func TestVector_Cursor(t *testing.T) {
	tbl := intern.NewTable()
	v := tokens.Tokenize(tbl, []byte("  a  b"))

	cur := 0
	if v.Peek(cur).Type != tokens.Whitespace {
		t.Fatal("peek should see leading whitespace")
	}
	v.ConsumeWhitespace(&cur)
	if tok := v.Next(&cur); !tok.IsIdent("A") {
		t.Fatalf("expected ident a, got %v", tok)
	}
	if v.AtEnd(cur) {
		t.Fatal("AtEnd before b")
	}
	v.ConsumeWhitespace(&cur)
	v.Next(&cur)
	if v.Next(&cur) != nil || v.Peek(cur) != nil {
		t.Fatal("expected nil at end")
	}
	if !v.AtEnd(cur) {
		t.Fatal("AtEnd after b")
	}
}

func TestVector_Text(t *testing.T) {
	tbl := intern.NewTable()
	tests := []struct {
		in   string
		want string
	}{
		{"rotate(45deg)", "rotate(45deg)"},
		{"  a   b  ", "a b"},
		{`"q"`, `"q"`},
		{"url(a.png) #abc 5%", "url(a.png) #abc 5%"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := tokens.Tokenize(tbl, []byte(tt.in)).Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitImportant(t *testing.T) {
	tbl := intern.NewTable()
	tests := []struct {
		in        string
		important bool
		rest      string
	}{
		{"red", false, "red"},
		{"red !important", true, "red"},
		{"red ! IMPORTANT ", true, "red"},
		{"important", false, "important"},
		{"1px solid!important", true, "1px solid"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			rest, imp := tokens.SplitImportant(tokens.Tokenize(tbl, []byte(tt.in)))
			if imp != tt.important || rest.Text() != tt.rest {
				t.Errorf("SplitImportant(%q) = (%q, %v), want (%q, %v)", tt.in, rest.Text(), imp, tt.rest, tt.important)
			}
		})
	}
}

func TestVector_Split(t *testing.T) {
	tbl := intern.NewTable()
	parts := tokens.Tokenize(tbl, []byte("a, rgb(1,2,3), b")).Split(',')
	if len(parts) != 3 {
		t.Fatalf("got %d parts", len(parts))
	}
	if got := parts[1].Text(); got != "rgb(1,2,3)" {
		t.Errorf("middle part = %q", got)
	}
}
