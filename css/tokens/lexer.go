package tokens

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"csseng/fixed"
	"csseng/intern"
)

// Tokenize runs the tdewolff lexer over src. Comments are dropped.
func Tokenize(tbl *intern.Table, src []byte) Vector {
	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(src)))
	var v Vector
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			return v
		}
		if t, ok := convert(tbl, tt, data); ok {
			v = append(v, t)
		}
	}
}

// FromTdewolff converts tokens reported by the tdewolff grammar parser
// (css.Parser.Values) to a vector.
func FromTdewolff(tbl *intern.Table, in []css.Token) Vector {
	v := make(Vector, 0, len(in))
	for _, t := range in {
		if tok, ok := convert(tbl, t.TokenType, t.Data); ok {
			v = append(v, tok)
		}
	}
	return v
}

func convert(tbl *intern.Table, tt css.TokenType, data []byte) (Token, bool) {
	switch tt {
	case css.CommentToken, css.EmptyToken, css.ErrorToken:
		return Token{}, false
	case css.IdentToken, css.CustomPropertyNameToken:
		return identLike(tbl, Ident, unescape(string(data))), true
	case css.FunctionToken:
		return identLike(tbl, Function, unescape(strings.TrimSuffix(string(data), "("))), true
	case css.AtKeywordToken:
		return identLike(tbl, AtKeyword, unescape(strings.TrimPrefix(string(data), "@"))), true
	case css.HashToken:
		return identLike(tbl, Hash, unescape(strings.TrimPrefix(string(data), "#"))), true
	case css.StringToken:
		return identLike(tbl, String, unquote(string(data))), true
	case css.BadStringToken:
		return Token{Type: InvalidString, Data: string(data)}, true
	case css.URLToken:
		return identLike(tbl, URI, urlContent(string(data))), true
	case css.BadURLToken:
		return Token{Type: InvalidString, Data: string(data)}, true
	case css.UnicodeRangeToken:
		return Token{Type: UnicodeRange, Data: string(data)}, true
	case css.NumberToken:
		return Token{Type: Number, Data: string(data)}, true
	case css.PercentageToken:
		return Token{Type: Percentage, Data: strings.TrimSuffix(string(data), "%")}, true
	case css.DimensionToken:
		s := string(data)
		_, n := fixed.Parse(s, false)
		return Token{Type: Dimension, Data: s, IData: tbl.Intern(unescape(s[n:]))}, true
	case css.WhitespaceToken:
		return Token{Type: Whitespace, Data: " "}, true
	case css.CDOToken:
		return Token{Type: CDO, Data: "<!--"}, true
	case css.CDCToken:
		return Token{Type: CDC, Data: "-->"}, true
	case css.IncludeMatchToken:
		return Token{Type: IncludeMatch, Data: "~="}, true
	case css.DashMatchToken:
		return Token{Type: DashMatch, Data: "|="}, true
	case css.PrefixMatchToken:
		return Token{Type: PrefixMatch, Data: "^="}, true
	case css.SuffixMatchToken:
		return Token{Type: SuffixMatch, Data: "$="}, true
	case css.SubstringMatchToken:
		return Token{Type: SubstringMatch, Data: "*="}, true
	}
	// delimiters, punctuation, brackets, custom property values
	return Token{Type: Char, Data: string(data)}, true
}

func identLike(tbl *intern.Table, typ Type, s string) Token {
	return Token{Type: typ, Data: s, IData: tbl.Intern(s)}
}

func urlContent(s string) string {
	if len(s) >= 4 && strings.EqualFold(s[:4], "url(") {
		s = s[4:]
	}
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		return unquote(s)
	}
	return unescape(s)
}

func unquote(s string) string {
	if len(s) >= 1 && (s[0] == '"' || s[0] == '\'') {
		q := s[0]
		s = s[1:]
		if len(s) > 0 && s[len(s)-1] == q {
			s = s[:len(s)-1]
		}
	}
	return unescape(s)
}

// unescape resolves CSS backslash escapes. An escaped newline is a line
// continuation and is removed.
func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch c = s[i]; {
		case c == '\n':
		case c == '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case isHex(c):
			j := i
			for j < len(s) && j-i < 6 && isHex(s[j]) {
				j++
			}
			r, _ := strconv.ParseUint(s[i:j], 16, 32)
			if r == 0 || r > utf8.MaxRune || (r >= 0xd800 && r <= 0xdfff) {
				r = utf8.RuneError
			}
			sb.WriteRune(rune(r))
			if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
				j++
			}
			i = j - 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
