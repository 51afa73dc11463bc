package props

import (
	"fmt"

	"csseng/css/bytecode"
	"csseng/css/tokens"
	"csseng/fixed"
)

// accept describes which value forms a property takes and how they are
// constrained.
type accept uint16

const (
	acceptLength accept = 1 << iota
	acceptPercent
	acceptNumber
	acceptInteger
	acceptColour
	acceptURI

	nonNegative // lengths and numbers must be >= 0
	unitless    // non-zero unitless numbers are px lengths (SVG)
	clampUnit   // numbers are clamped to 0..1
	positive    // integers must be > 0
)

// ParseNumber reads a number from data. It is fixed.Parse under the name the
// property parsers use.
func ParseNumber(data string, intOnly bool) (fixed.Fixed, int) {
	return fixed.Parse(data, intOnly)
}

// numberToken reads a NUMBER token that must be a number in its entirety.
func numberToken(t *tokens.Token, intOnly bool) (fixed.Fixed, error) {
	if t == nil || t.Type != tokens.Number {
		return 0, ErrInvalid
	}
	v, n := ParseNumber(t.Data, intOnly)
	if n == 0 || n != len(t.Data) {
		return 0, fmt.Errorf("bad number %q: %w", t.Data, ErrInvalid)
	}
	return v, nil
}

// ParseUnitSpecifier reads a DIMENSION, PERCENTAGE or NUMBER token. A bare
// number must be zero unless the stylesheet allows quirks; it takes
// defaultUnit. The cursor is left untouched on failure.
func ParseUnitSpecifier(ctx *Context, vec tokens.Vector, cur *int, defaultUnit bytecode.Unit) (fixed.Fixed, bytecode.Unit, error) {
	orig := *cur
	fail := func(err error) (fixed.Fixed, bytecode.Unit, error) {
		*cur = orig
		return 0, 0, err
	}

	tok := vec.Next(cur)
	if tok == nil {
		return fail(ErrInvalid)
	}

	switch tok.Type {
	case tokens.Dimension:
		v, n := ParseNumber(tok.Data, false)
		if n == 0 {
			return fail(fmt.Errorf("bad dimension %q: %w", tok.Data, ErrInvalid))
		}
		u, ok := bytecode.UnitByName(tok.Data[n:])
		if !ok || u == bytecode.UnitPCT {
			return fail(fmt.Errorf("unknown unit %q: %w", tok.Data[n:], ErrInvalid))
		}
		return v, u, nil

	case tokens.Percentage:
		v, n := ParseNumber(tok.Data, false)
		if n == 0 || n != len(tok.Data) {
			return fail(fmt.Errorf("bad percentage %q: %w", tok.Data, ErrInvalid))
		}
		return v, bytecode.UnitPCT, nil

	case tokens.Number:
		v, err := numberToken(tok, false)
		if err != nil {
			return fail(err)
		}
		if v != 0 {
			if !ctx.Quirks {
				return fail(fmt.Errorf("unitless length %q: %w", tok.Data, ErrInvalid))
			}
			ctx.QuirksUsed = true
		}
		return v, defaultUnit, nil
	}
	return fail(ErrInvalid)
}

// parseLength reads a length or percentage constrained by acc.
func (ctx *Context) parseLength(vec tokens.Vector, cur *int, acc accept) (bytecode.Length, error) {
	orig := *cur

	var (
		v   fixed.Fixed
		u   bytecode.Unit
		err error
	)
	if tok := vec.Peek(*cur); acc&unitless != 0 && tok != nil && tok.Type == tokens.Number {
		v, err = numberToken(tok, false)
		vec.Next(cur)
	} else {
		v, u, err = ParseUnitSpecifier(ctx, vec, cur, bytecode.UnitPX)
	}

	switch {
	case err != nil:
	case u == bytecode.UnitPCT && acc&acceptPercent == 0:
		err = fmt.Errorf("percentage not allowed: %w", ErrInvalid)
	case u != bytecode.UnitPCT && (!u.IsLength() || acc&acceptLength == 0):
		err = fmt.Errorf("%s is not a length: %w", u, ErrInvalid)
	case v < 0 && acc&nonNegative != 0:
		err = fmt.Errorf("negative length: %w", ErrInvalid)
	}
	if err != nil {
		*cur = orig
		return bytecode.Length{}, err
	}
	return bytecode.Length{Value: v, Unit: u}, nil
}

// parseNumberValue reads a NUMBER constrained by acc.
func (ctx *Context) parseNumberValue(vec tokens.Vector, cur *int, acc accept) (fixed.Fixed, error) {
	v, err := numberToken(vec.Peek(*cur), acc&acceptInteger != 0)
	switch {
	case err != nil:
		return 0, err
	case acc&acceptInteger != 0 && acc&positive != 0 && v <= 0:
		return 0, fmt.Errorf("%s must be positive: %w", v, ErrInvalid)
	case acc&nonNegative != 0 && v < 0:
		return 0, fmt.Errorf("%s must not be negative: %w", v, ErrInvalid)
	}
	if acc&clampUnit != 0 {
		v = min(max(v, 0), fixed.One)
	}
	vec.Next(cur)
	return v, nil
}
