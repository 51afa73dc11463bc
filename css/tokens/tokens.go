// Package tokens holds the token vectors consumed by property, selector and
// media query parsers. Vectors are produced from the tdewolff CSS lexer and
// grammar parser and are never modified once built.
package tokens

import (
	"strings"

	"csseng/intern"
)

// Type is the lexical class of a token.
type Type uint8

const (
	Ident Type = iota
	AtKeyword
	Hash
	Function
	String
	InvalidString
	URI
	UnicodeRange
	Char
	Number
	Percentage
	Dimension
	CDO
	CDC
	Whitespace
	IncludeMatch
	DashMatch
	PrefixMatch
	SuffixMatch
	SubstringMatch
)

var typeNames = [...]string{
	Ident:          "IDENT",
	AtKeyword:      "ATKEYWORD",
	Hash:           "HASH",
	Function:       "FUNCTION",
	String:         "STRING",
	InvalidString:  "INVALID",
	URI:            "URI",
	UnicodeRange:   "UNICODE-RANGE",
	Char:           "CHAR",
	Number:         "NUMBER",
	Percentage:     "PERCENTAGE",
	Dimension:      "DIMENSION",
	CDO:            "CDO",
	CDC:            "CDC",
	Whitespace:     "S",
	IncludeMatch:   "INCLUDES",
	DashMatch:      "DASHMATCH",
	PrefixMatch:    "PREFIXMATCH",
	SuffixMatch:    "SUFFIXMATCH",
	SubstringMatch: "SUBSTRINGMATCH",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "UNKNOWN"
}

// Token is a single lexical unit.
//
// Data holds the token text with the syntax stripped: FUNCTION without the
// opening parenthesis, HASH without '#', AT_KEYWORD without '@', STRING and
// URI unquoted and unescaped, PERCENTAGE without '%'. DIMENSION keeps the
// number together with its unit. IData is the interned form of Data for
// identifier-like tokens and the interned unit for DIMENSION.
type Token struct {
	Type  Type
	Data  string
	IData intern.String
}

// IsChar reports whether t is the single character c.
func (t *Token) IsChar(c byte) bool {
	return t != nil && t.Type == Char && len(t.Data) == 1 && t.Data[0] == c
}

// IsIdent reports whether t is an identifier equal to name, ignoring ASCII
// case.
func (t *Token) IsIdent(name string) bool {
	return t != nil && t.Type == Ident && strings.EqualFold(t.Data, name)
}

// Unit returns the unit suffix of a DIMENSION token.
func (t *Token) Unit() string {
	if t.Type != Dimension {
		return ""
	}
	return t.IData.String()
}

// Text serialises the token back to CSS source form.
func (t *Token) Text() string {
	switch t.Type {
	case AtKeyword:
		return "@" + t.Data
	case Hash:
		return "#" + t.Data
	case Function:
		return t.Data + "("
	case String:
		return quote(t.Data)
	case URI:
		return "url(" + t.Data + ")"
	case Percentage:
		return t.Data + "%"
	case Whitespace:
		return " "
	case CDO:
		return "<!--"
	case CDC:
		return "-->"
	case IncludeMatch:
		return "~="
	case DashMatch:
		return "|="
	case PrefixMatch:
		return "^="
	case SuffixMatch:
		return "$="
	case SubstringMatch:
		return "*="
	}
	return t.Data
}

func (t Token) String() string {
	return t.Type.String() + " " + t.Text()
}

func quote(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		case '\n':
			sb.WriteString(`\a `)
		default:
			sb.WriteByte(s[i])
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// Vector is an immutable token sequence walked with an integer cursor.
type Vector []Token

// Peek returns the token at cur without advancing, or nil at the end.
func (v Vector) Peek(cur int) *Token {
	if cur < 0 || cur >= len(v) {
		return nil
	}
	return &v[cur]
}

// Next returns the token at *cur and advances, or returns nil at the end.
func (v Vector) Next(cur *int) *Token {
	if *cur >= len(v) {
		return nil
	}
	t := &v[*cur]
	*cur++
	return t
}

// ConsumeWhitespace advances *cur past any whitespace tokens.
func (v Vector) ConsumeWhitespace(cur *int) {
	for *cur < len(v) && v[*cur].Type == Whitespace {
		*cur++
	}
}

// AtEnd reports whether only whitespace remains after cur.
func (v Vector) AtEnd(cur int) bool {
	v.ConsumeWhitespace(&cur)
	return cur >= len(v)
}

// Text serialises the vector, collapsing whitespace runs and trimming the ends.
func (v Vector) Text() string {
	var sb strings.Builder
	pendingSpace := false
	for i := range v {
		if v[i].Type == Whitespace {
			pendingSpace = sb.Len() > 0
			continue
		}
		if pendingSpace {
			sb.WriteByte(' ')
			pendingSpace = false
		}
		sb.WriteString(v[i].Text())
	}
	return sb.String()
}

// TrimSpace returns v without leading and trailing whitespace.
func (v Vector) TrimSpace() Vector {
	for len(v) > 0 && v[0].Type == Whitespace {
		v = v[1:]
	}
	for len(v) > 0 && v[len(v)-1].Type == Whitespace {
		v = v[:len(v)-1]
	}
	return v
}

// Split cuts v around every top level occurrence of the character sep.
// Separators nested in functions or brackets are ignored.
func (v Vector) Split(sep byte) []Vector {
	var (
		parts []Vector
		depth int
		start int
	)
	for i := range v {
		t := &v[i]
		switch {
		case t.Type == Function, t.IsChar('('), t.IsChar('['):
			depth++
		case t.IsChar(')'), t.IsChar(']'):
			if depth > 0 {
				depth--
			}
		case depth == 0 && t.IsChar(sep):
			parts = append(parts, v[start:i])
			start = i + 1
		}
	}
	return append(parts, v[start:])
}

// SplitImportant strips a trailing "!important" from a declaration value.
func SplitImportant(v Vector) (Vector, bool) {
	v = v.TrimSpace()
	n := len(v)
	if n < 2 || !v[n-1].IsIdent("important") {
		return v, false
	}
	i := n - 2
	for i >= 0 && v[i].Type == Whitespace {
		i--
	}
	if i < 0 || !v[i].IsChar('!') {
		return v, false
	}
	return v[:i].TrimSpace(), true
}
