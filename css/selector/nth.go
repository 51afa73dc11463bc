package selector

import (
	"strconv"
	"strings"

	"csseng/css/tokens"
	"csseng/fixed"
)

// parseNth parses the An+B microsyntax of :nth-child() and friends,
// including the odd and even keywords.
func parseNth(vec tokens.Vector) (a, b int, ok bool) {
	cur := 0
	vec.ConsumeWhitespace(&cur)
	tok := vec.Next(&cur)
	if tok == nil {
		return 0, 0, false
	}

	switch tok.Type {
	case tokens.Number:
		if n, isInt := integer(tok.Data); isInt {
			return nthEnd(vec, cur, 0, n)
		}

	case tokens.Dimension:
		_, n := fixed.Parse(tok.Data, false)
		a, isInt := integer(tok.Data[:n])
		if !isInt {
			break
		}
		switch unit := strings.ToLower(tok.Unit()); unit {
		case "n":
			return nthB(vec, cur, a)
		case "n-":
			return nthSignlessB(vec, cur, a, -1)
		default:
			if b, ok := nDashDigits(unit); ok {
				return nthEnd(vec, cur, a, b)
			}
		}

	case tokens.Ident:
		switch ident := strings.ToLower(tok.Data); ident {
		case "even":
			return nthEnd(vec, cur, 2, 0)
		case "odd":
			return nthEnd(vec, cur, 2, 1)
		case "n":
			return nthB(vec, cur, 1)
		case "-n":
			return nthB(vec, cur, -1)
		case "n-":
			return nthSignlessB(vec, cur, 1, -1)
		case "-n-":
			return nthSignlessB(vec, cur, -1, -1)
		default:
			if rest, neg := strings.CutPrefix(ident, "-"); neg {
				if b, ok := nDashDigits(rest); ok {
					return nthEnd(vec, cur, -1, b)
				}
			} else if b, ok := nDashDigits(ident); ok {
				return nthEnd(vec, cur, 1, b)
			}
		}

	case tokens.Char:
		if tok.Data != "+" {
			break
		}
		// no whitespace allowed after a leading '+'
		next := vec.Next(&cur)
		if next == nil || next.Type != tokens.Ident {
			break
		}
		switch ident := strings.ToLower(next.Data); ident {
		case "n":
			return nthB(vec, cur, 1)
		case "n-":
			return nthSignlessB(vec, cur, 1, -1)
		default:
			if b, ok := nDashDigits(ident); ok {
				return nthEnd(vec, cur, 1, b)
			}
		}
	}
	return 0, 0, false
}

func integer(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// nDashDigits matches "n-<digits>" and returns the negated digits.
func nDashDigits(s string) (int, bool) {
	digits, ok := strings.CutPrefix(s, "n-")
	if !ok || digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	return -n, err == nil
}

func signed(s string) bool {
	return s != "" && (s[0] == '+' || s[0] == '-')
}

func nthB(vec tokens.Vector, cur, a int) (int, int, bool) {
	vec.ConsumeWhitespace(&cur)
	tok := vec.Next(&cur)
	switch {
	case tok == nil:
		return a, 0, true
	case tok.IsChar('+'):
		return nthSignlessB(vec, cur, a, 1)
	case tok.IsChar('-'):
		return nthSignlessB(vec, cur, a, -1)
	case tok.Type == tokens.Number && signed(tok.Data):
		if b, ok := integer(tok.Data); ok {
			return nthEnd(vec, cur, a, b)
		}
	}
	return 0, 0, false
}

func nthSignlessB(vec tokens.Vector, cur, a, sign int) (int, int, bool) {
	vec.ConsumeWhitespace(&cur)
	tok := vec.Next(&cur)
	if tok == nil || tok.Type != tokens.Number || signed(tok.Data) {
		return 0, 0, false
	}
	b, ok := integer(tok.Data)
	if !ok {
		return 0, 0, false
	}
	return nthEnd(vec, cur, a, sign*b)
}

func nthEnd(vec tokens.Vector, cur, a, b int) (int, int, bool) {
	if !vec.AtEnd(cur) {
		return 0, 0, false
	}
	return a, b, true
}

// nthMatches reports whether a 1-based position is a*n+b for some n >= 0.
func nthMatches(a, b, pos int) bool {
	if a == 0 {
		return pos == b
	}
	d := pos - b
	return d/a >= 0 && d%a == 0
}
