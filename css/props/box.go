package props

import (
	"csseng/css/bytecode"
	"csseng/css/tokens"
)

var (
	marginSides = [4]bytecode.Property{
		bytecode.PropMarginTop, bytecode.PropMarginRight, bytecode.PropMarginBottom, bytecode.PropMarginLeft,
	}
	paddingSides = [4]bytecode.Property{
		bytecode.PropPaddingTop, bytecode.PropPaddingRight, bytecode.PropPaddingBottom, bytecode.PropPaddingLeft,
	}
	borderWidthSides = [4]bytecode.Property{
		bytecode.PropBorderTopWidth, bytecode.PropBorderRightWidth, bytecode.PropBorderBottomWidth, bytecode.PropBorderLeftWidth,
	}
	borderStyleSides = [4]bytecode.Property{
		bytecode.PropBorderTopStyle, bytecode.PropBorderRightStyle, bytecode.PropBorderBottomStyle, bytecode.PropBorderLeftStyle,
	}
	borderColourSides = [4]bytecode.Property{
		bytecode.PropBorderTopColor, bytecode.PropBorderRightColor, bytecode.PropBorderBottomColor, bytecode.PropBorderLeftColor,
	}
)

// sideIndex maps the number of values given to a box shorthand onto the
// value used for top, right, bottom and left.
var sideIndex = [4][4]int{
	{0, 0, 0, 0},
	{0, 1, 0, 1},
	{0, 1, 2, 1},
	{0, 1, 2, 3},
}

// fourSides parses margin, padding and the border-width/style/color
// shorthands: one to four values assigned clockwise from the top.
func fourSides(sides [4]bytecode.Property, acc accept) handler {
	component := value(sides[0], acc)
	return atomic(func(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
		if done, err := ctx.inheritAll(vec, cur, result, sides[:]...); done {
			return err
		}

		var parts []*bytecode.Style
		for len(parts) < len(sides) {
			vec.ConsumeWhitespace(cur)
			if tok := vec.Peek(*cur); tok == nil || ctx.is(tok, kwInherit) {
				break
			}
			sub := result.Sub()
			if err := component(ctx, vec, cur, sub); err != nil {
				if isOOM(err) {
					return err
				}
				break
			}
			parts = append(parts, sub)
		}
		if len(parts) == 0 {
			return ErrInvalid
		}

		for i, p := range sides {
			if err := emitAs(result, parts[sideIndex[len(parts)-1][i]], p); err != nil {
				return err
			}
		}
		return nil
	})
}

// slot is one longhand of a shorthand whose parts may come in any order.
type slot struct {
	parse   handler
	targets []bytecode.Property
	initial func(result *bytecode.Style, p bytecode.Property) error
}

func initialKeyword(kw string) func(*bytecode.Style, bytecode.Property) error {
	return func(result *bytecode.Style, p bytecode.Property) error {
		v, _ := p.KeywordValue(kw)
		return result.AppendOPV(p, 0, v)
	}
}

func initialCurrentColour(result *bytecode.Style, p bytecode.Property) error {
	return result.AppendOPV(p, 0, bytecode.ValueCurrentColour)
}

// anyOrder parses whitespace separated parts, each matched by the first
// slot not yet filled that accepts it. Slots left empty take their initial
// value. A part that matches no free slot ends the shorthand, so repeating
// a part leaves unparsed input behind.
func (ctx *Context) anyOrder(vec tokens.Vector, cur *int, result *bytecode.Style, slots []slot) error {
	parts := make([]*bytecode.Style, len(slots))
	found := false
	for {
		vec.ConsumeWhitespace(cur)
		if tok := vec.Peek(*cur); tok == nil || ctx.is(tok, kwInherit) {
			break
		}
		matched := false
		for i, s := range slots {
			if parts[i] != nil {
				continue
			}
			sub := result.Sub()
			err := s.parse(ctx, vec, cur, sub)
			if err == nil {
				parts[i], matched = sub, true
				break
			}
			if isOOM(err) {
				return err
			}
		}
		if !matched {
			break
		}
		found = true
	}
	if !found {
		return ErrInvalid
	}

	for i, s := range slots {
		for _, p := range s.targets {
			var err error
			if parts[i] != nil {
				err = emitAs(result, parts[i], p)
			} else {
				err = s.initial(result, p)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func borderSlots(side ...int) []slot {
	pick := func(all [4]bytecode.Property) []bytecode.Property {
		ps := make([]bytecode.Property, len(side))
		for i, s := range side {
			ps[i] = all[s]
		}
		return ps
	}
	return []slot{
		{
			parse:   value(borderWidthSides[side[0]], acceptLength|nonNegative),
			targets: pick(borderWidthSides),
			initial: initialKeyword("medium"),
		},
		{
			parse:   keywords(borderStyleSides[side[0]]),
			targets: pick(borderStyleSides),
			initial: initialKeyword("none"),
		},
		{
			parse:   value(borderColourSides[side[0]], acceptColour),
			targets: pick(borderColourSides),
			initial: initialCurrentColour,
		},
	}
}

// borderSide parses border-top, border-right, border-bottom and
// border-left: width, style and colour in any order.
func borderSide(side int) handler {
	slots := borderSlots(side)
	return atomic(func(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
		if done, err := ctx.inheritAll(vec, cur, result,
			borderWidthSides[side], borderStyleSides[side], borderColourSides[side]); done {
			return err
		}
		return ctx.anyOrder(vec, cur, result, slots)
	})
}

var allBorderSlots = borderSlots(0, 1, 2, 3)

func parseBorder(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	all := make([]bytecode.Property, 0, 12)
	all = append(all, borderWidthSides[:]...)
	all = append(all, borderStyleSides[:]...)
	all = append(all, borderColourSides[:]...)
	if done, err := ctx.inheritAll(vec, cur, result, all...); done {
		return err
	}
	return ctx.anyOrder(vec, cur, result, allBorderSlots)
}

var outlineSlots = []slot{
	{
		parse:   value(bytecode.PropOutlineWidth, acceptLength|nonNegative),
		targets: []bytecode.Property{bytecode.PropOutlineWidth},
		initial: initialKeyword("medium"),
	},
	{
		parse:   keywords(bytecode.PropOutlineStyle),
		targets: []bytecode.Property{bytecode.PropOutlineStyle},
		initial: initialKeyword("none"),
	},
	{
		parse:   value(bytecode.PropOutlineColor, acceptColour),
		targets: []bytecode.Property{bytecode.PropOutlineColor},
		initial: initialKeyword("invert"),
	},
}

func parseOutline(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	if done, err := ctx.inheritAll(vec, cur, result,
		bytecode.PropOutlineWidth, bytecode.PropOutlineStyle, bytecode.PropOutlineColor); done {
		return err
	}
	return ctx.anyOrder(vec, cur, result, outlineSlots)
}

// list-style-type comes first so that a lone "none" clears the marker; a
// second "none" then falls through to the image.
var listStyleSlots = []slot{
	{
		parse:   keywords(bytecode.PropListStyleType),
		targets: []bytecode.Property{bytecode.PropListStyleType},
		initial: initialKeyword("disc"),
	},
	{
		parse:   keywords(bytecode.PropListStylePosition),
		targets: []bytecode.Property{bytecode.PropListStylePosition},
		initial: initialKeyword("outside"),
	},
	{
		parse:   value(bytecode.PropListStyleImage, acceptURI),
		targets: []bytecode.Property{bytecode.PropListStyleImage},
		initial: initialKeyword("none"),
	},
}

func parseListStyle(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	if done, err := ctx.inheritAll(vec, cur, result,
		bytecode.PropListStyleType, bytecode.PropListStylePosition, bytecode.PropListStyleImage); done {
		return err
	}
	return ctx.anyOrder(vec, cur, result, listStyleSlots)
}

var overflowX = keywords(bytecode.PropOverflowX)

// parseOverflow takes one keyword for both axes or one per axis.
func parseOverflow(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	if done, err := ctx.inheritAll(vec, cur, result, bytecode.PropOverflowX, bytecode.PropOverflowY); done {
		return err
	}

	x := result.Sub()
	if err := overflowX(ctx, vec, cur, x); err != nil {
		return err
	}
	y := x
	vec.ConsumeWhitespace(cur)
	if tok := vec.Peek(*cur); tok != nil && !ctx.is(tok, kwInherit) {
		y = result.Sub()
		if err := overflowX(ctx, vec, cur, y); err != nil {
			return err
		}
	}

	if err := emitAs(result, x, bytecode.PropOverflowX); err != nil {
		return err
	}
	return emitAs(result, y, bytecode.PropOverflowY)
}

// parseBorderSpacing takes one length for both directions or horizontal
// then vertical.
func parseBorderSpacing(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	if done, err := ctx.inheritAll(vec, cur, result, bytecode.PropBorderSpacing); done {
		return err
	}

	h, err := ctx.parseLength(vec, cur, acceptLength|nonNegative)
	if err != nil {
		return err
	}
	v := h
	vec.ConsumeWhitespace(cur)
	if !vec.AtEnd(*cur) {
		if v, err = ctx.parseLength(vec, cur, acceptLength|nonNegative); err != nil {
			return err
		}
	}

	if err := result.AppendOPV(bytecode.PropBorderSpacing, 0, bytecode.ValueSetLengthPair); err != nil {
		return err
	}
	if err := result.AppendLength(h.Value, h.Unit); err != nil {
		return err
	}
	return result.AppendLength(v.Value, v.Unit)
}
