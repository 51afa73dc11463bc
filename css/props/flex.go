package props

import (
	"fmt"

	"csseng/css/bytecode"
	"csseng/css/tokens"
	"csseng/fixed"
)

var (
	flexGrow   = value(bytecode.PropFlexGrow, acceptNumber|nonNegative)
	flexShrink = value(bytecode.PropFlexShrink, acceptNumber|nonNegative)
	flexBasis  = value(bytecode.PropFlexBasis, lengthPctNN)
)

func appendNumber(result *bytecode.Style, p bytecode.Property, v fixed.Fixed) error {
	if err := result.AppendOPV(p, 0, bytecode.ValueSetNumber); err != nil {
		return err
	}
	return result.Append(uint32(v))
}

func appendKeyword(result *bytecode.Style, p bytecode.Property, kw string) error {
	v, ok := p.KeywordValue(kw)
	if !ok {
		return fmt.Errorf("%s has no keyword %q: %w", p, kw, ErrInvalid)
	}
	return result.AppendOPV(p, 0, v)
}

// parseFlex expands the flex shorthand into flex-grow, flex-shrink and
// flex-basis, always in that order.
//
// A number is the grow factor and a number directly following it the
// shrink factor. After both, a unitless zero is the basis. An omitted grow
// or shrink factor is 1; an omitted basis is 0px when a factor was given
// and auto otherwise.
func parseFlex(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	if done, err := ctx.inheritAll(vec, cur, result,
		bytecode.PropFlexGrow, bytecode.PropFlexShrink, bytecode.PropFlexBasis); done {
		return err
	}

	tok := vec.Peek(*cur)
	if tok == nil {
		return ErrInvalid
	}
	var preset fixed.Fixed
	switch {
	case ctx.is(tok, kwNone):
		preset = 0
	case ctx.is(tok, kwAuto):
		preset = fixed.One
	default:
		return parseFlexParts(ctx, vec, cur, result)
	}
	vec.Next(cur)
	if err := appendNumber(result, bytecode.PropFlexGrow, preset); err != nil {
		return err
	}
	if err := appendNumber(result, bytecode.PropFlexShrink, preset); err != nil {
		return err
	}
	return appendKeyword(result, bytecode.PropFlexBasis, "auto")
}

func parseFlexParts(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	var grow, shrink, basis *bytecode.Style
	prevGrow := false
	for {
		vec.ConsumeWhitespace(cur)
		tok := vec.Peek(*cur)
		if tok == nil || ctx.is(tok, kwInherit) {
			break
		}

		var (
			target **bytecode.Style
			parse  handler
		)
		switch {
		case tok.Type == tokens.Number && grow == nil:
			target, parse = &grow, flexGrow
		case tok.Type == tokens.Number && shrink == nil && prevGrow:
			target, parse = &shrink, flexShrink
		case tok.Type == tokens.Number && basis == nil && grow != nil && shrink != nil:
			target, parse = &basis, flexBasis
		case tok.Type != tokens.Number && basis == nil:
			target, parse = &basis, flexBasis
		}
		if parse == nil {
			break
		}

		sub := result.Sub()
		if err := parse(ctx, vec, cur, sub); err != nil {
			if isOOM(err) {
				return err
			}
			break
		}
		*target = sub
		prevGrow = target == &grow
	}

	if grow == nil && shrink == nil && basis == nil {
		return ErrInvalid
	}

	if grow != nil {
		if err := result.Merge(grow); err != nil {
			return err
		}
	} else if err := appendNumber(result, bytecode.PropFlexGrow, fixed.One); err != nil {
		return err
	}

	if shrink != nil {
		if err := result.Merge(shrink); err != nil {
			return err
		}
	} else if err := appendNumber(result, bytecode.PropFlexShrink, fixed.One); err != nil {
		return err
	}

	switch {
	case basis != nil:
		return result.Merge(basis)
	case grow != nil || shrink != nil:
		if err := result.AppendOPV(bytecode.PropFlexBasis, 0, bytecode.ValueSetLength); err != nil {
			return err
		}
		return result.AppendLength(0, bytecode.UnitPX)
	}
	return appendKeyword(result, bytecode.PropFlexBasis, "auto")
}

var (
	flexDirection = keywords(bytecode.PropFlexDirection)
	flexWrap      = keywords(bytecode.PropFlexWrap)
)

var flexFlowSlots = []slot{
	{parse: flexDirection, targets: []bytecode.Property{bytecode.PropFlexDirection}, initial: initialKeyword("row")},
	{parse: flexWrap, targets: []bytecode.Property{bytecode.PropFlexWrap}, initial: initialKeyword("nowrap")},
}

func parseFlexFlow(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	if done, err := ctx.inheritAll(vec, cur, result, bytecode.PropFlexDirection, bytecode.PropFlexWrap); done {
		return err
	}
	return ctx.anyOrder(vec, cur, result, flexFlowSlots)
}

var fontWeightKeyword = keywords(bytecode.PropFontWeight)

// parseFontWeight takes the keywords or a weight of 100 to 900 in steps
// of 100.
func parseFontWeight(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	const p = bytecode.PropFontWeight

	tok := vec.Peek(*cur)
	if tok == nil || tok.Type != tokens.Number {
		return fontWeightKeyword(ctx, vec, cur, result)
	}

	v, err := numberToken(tok, true)
	if err != nil {
		return err
	}
	w := v.Int()
	if w < 100 || w > 900 || w%100 != 0 {
		return fmt.Errorf("bad font weight %d: %w", w, ErrInvalid)
	}
	vec.Next(cur)
	if err := result.AppendOPV(p, 0, bytecode.ValueSetInteger); err != nil {
		return err
	}
	return result.Append(uint32(w))
}
