package props

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"csseng/css/bytecode"
	"csseng/css/tokens"
)

// handler parses one property value starting at *cur and appends the
// resulting records to result. Every handler registered in the table
// restores *cur and result when it fails.
type handler func(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error

// Parse parses the value of property name, including a trailing
// "!important", and appends the records to result. The whole value must be
// consumed. On failure result is left as it was.
func Parse(ctx *Context, name string, vec tokens.Vector, result *bytecode.Style) error {
	h, ok := handlers[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown property %q: %w", name, ErrInvalid)
	}

	vec, important := tokens.SplitImportant(vec)
	if len(vec) == 0 {
		return fmt.Errorf("%s: empty value: %w", name, ErrInvalid)
	}

	sub := result.Sub()
	cur := 0
	if err := h(ctx, vec, &cur, sub); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !vec.AtEnd(cur) {
		return fmt.Errorf("%s: unexpected %q: %w", name, vec[cur:].Text(), ErrInvalid)
	}
	if important {
		sub.MakeImportant()
	}
	return result.Merge(sub)
}

// Supported returns the names of all properties Parse understands.
func Supported() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// atomic wraps h so that a failure leaves the cursor and result untouched.
func atomic(h handler) handler {
	return func(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
		orig, mark := *cur, result.Mark()
		err := h(ctx, vec, cur, result)
		if err != nil {
			*cur = orig
			result.Truncate(mark)
		}
		return err
	}
}

// isOOM reports whether err must abort parsing instead of trying the next
// alternative.
func isOOM(err error) bool {
	return errors.Is(err, bytecode.ErrOutOfMemory)
}

// value builds the parser shared by most longhands: "inherit", the
// property's keywords, then whatever acc allows, in that order.
func value(p bytecode.Property, acc accept) handler {
	return atomic(func(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
		vec.ConsumeWhitespace(cur)
		tok := vec.Peek(*cur)
		if tok == nil {
			return ErrInvalid
		}

		if tok.Type == tokens.Ident {
			if ctx.is(tok, kwInherit) {
				vec.Next(cur)
				return result.Inherit(p)
			}
			if v, ok := p.KeywordValue(tok.Data); ok {
				vec.Next(cur)
				return result.AppendOPV(p, 0, v)
			}
		}

		if acc&acceptURI != 0 && ctx.isURI(tok) {
			idx, err := ctx.parseURI(vec, cur)
			if err != nil {
				return err
			}
			if err := result.AppendOPV(p, 0, bytecode.ValueSetURI); err != nil {
				return err
			}
			return result.Append(idx)
		}

		if acc&acceptColour != 0 {
			if kind, c, err := ParseColourSpecifier(ctx, vec, cur); err == nil {
				return emitColour(result, p, kind, c)
			}
		}

		if tok.Type == tokens.Number && acc&(acceptNumber|acceptInteger) != 0 {
			v, err := ctx.parseNumberValue(vec, cur, acc)
			if err != nil {
				return err
			}
			if acc&acceptInteger != 0 {
				if err := result.AppendOPV(p, 0, bytecode.ValueSetInteger); err != nil {
					return err
				}
				return result.Append(uint32(int32(v.Int())))
			}
			if err := result.AppendOPV(p, 0, bytecode.ValueSetNumber); err != nil {
				return err
			}
			return result.Append(uint32(v))
		}

		if acc&(acceptLength|acceptPercent) != 0 {
			l, err := ctx.parseLength(vec, cur, acc)
			if err != nil {
				return err
			}
			if err := result.AppendOPV(p, 0, bytecode.ValueSetLength); err != nil {
				return err
			}
			return result.AppendLength(l.Value, l.Unit)
		}
		return fmt.Errorf("unexpected %s: %w", tok, ErrInvalid)
	})
}

// keywords parses properties that only take keywords.
func keywords(p bytecode.Property) handler {
	return value(p, 0)
}

// emitAs copies the single record held by part to result under property p.
func emitAs(result *bytecode.Style, part *bytecode.Style, p bytecode.Property) error {
	words := part.Words()
	_, flags, v := bytecode.OPV(words[0])
	if err := result.AppendOPV(p, flags, v); err != nil {
		return err
	}
	return result.VAppend(words[1:]...)
}

// inheritAll handles a leading "inherit" for a shorthand.
func (ctx *Context) inheritAll(vec tokens.Vector, cur *int, result *bytecode.Style, ps ...bytecode.Property) (bool, error) {
	vec.ConsumeWhitespace(cur)
	if !ctx.is(vec.Peek(*cur), kwInherit) {
		return false, nil
	}
	vec.Next(cur)
	for _, p := range ps {
		if err := result.Inherit(p); err != nil {
			return true, err
		}
	}
	return true, nil
}

const (
	lengthPct   = acceptLength | acceptPercent
	lengthPctNN = acceptLength | acceptPercent | nonNegative
)

var handlers = map[string]handler{
	// keyword enumerations
	"align-content":         keywords(bytecode.PropAlignContent),
	"align-items":           keywords(bytecode.PropAlignItems),
	"align-self":            keywords(bytecode.PropAlignSelf),
	"background-attachment": keywords(bytecode.PropBackgroundAttachment),
	"background-clip":       keywords(bytecode.PropBackgroundClip),
	"background-origin":     keywords(bytecode.PropBackgroundOrigin),
	"background-repeat":     keywords(bytecode.PropBackgroundRepeat),
	"border-bottom-style":   keywords(bytecode.PropBorderBottomStyle),
	"border-collapse":       keywords(bytecode.PropBorderCollapse),
	"border-left-style":     keywords(bytecode.PropBorderLeftStyle),
	"border-right-style":    keywords(bytecode.PropBorderRightStyle),
	"border-top-style":      keywords(bytecode.PropBorderTopStyle),
	"box-sizing":            keywords(bytecode.PropBoxSizing),
	"caption-side":          keywords(bytecode.PropCaptionSide),
	"clear":                 keywords(bytecode.PropClear),
	"cursor":                keywords(bytecode.PropCursor),
	"direction":             keywords(bytecode.PropDirection),
	"display":               keywords(bytecode.PropDisplay),
	"empty-cells":           keywords(bytecode.PropEmptyCells),
	"fill-rule":             keywords(bytecode.PropFillRule),
	"flex-direction":        keywords(bytecode.PropFlexDirection),
	"flex-wrap":             keywords(bytecode.PropFlexWrap),
	"float":                 keywords(bytecode.PropFloat),
	"font-style":            keywords(bytecode.PropFontStyle),
	"font-variant":          keywords(bytecode.PropFontVariant),
	"justify-content":       keywords(bytecode.PropJustifyContent),
	"list-style-position":   keywords(bytecode.PropListStylePosition),
	"list-style-type":       keywords(bytecode.PropListStyleType),
	"outline-style":         keywords(bytecode.PropOutlineStyle),
	"overflow-x":            keywords(bytecode.PropOverflowX),
	"overflow-y":            keywords(bytecode.PropOverflowY),
	"position":              keywords(bytecode.PropPosition),
	"stroke-linecap":        keywords(bytecode.PropStrokeLinecap),
	"stroke-linejoin":       keywords(bytecode.PropStrokeLinejoin),
	"table-layout":          keywords(bytecode.PropTableLayout),
	"text-align":            keywords(bytecode.PropTextAlign),
	"text-overflow":         keywords(bytecode.PropTextOverflow),
	"text-transform":        keywords(bytecode.PropTextTransform),
	"unicode-bidi":          keywords(bytecode.PropUnicodeBidi),
	"visibility":            keywords(bytecode.PropVisibility),
	"white-space":           keywords(bytecode.PropWhiteSpace),
	"word-break":            keywords(bytecode.PropWordBreak),

	// lengths
	"width":               value(bytecode.PropWidth, lengthPctNN),
	"height":              value(bytecode.PropHeight, lengthPctNN),
	"min-width":           value(bytecode.PropMinWidth, lengthPctNN),
	"min-height":          value(bytecode.PropMinHeight, lengthPctNN),
	"max-width":           value(bytecode.PropMaxWidth, lengthPctNN),
	"max-height":          value(bytecode.PropMaxHeight, lengthPctNN),
	"top":                 value(bytecode.PropTop, lengthPct),
	"right":               value(bytecode.PropRight, lengthPct),
	"bottom":              value(bytecode.PropBottom, lengthPct),
	"left":                value(bytecode.PropLeft, lengthPct),
	"margin-top":          value(bytecode.PropMarginTop, lengthPct),
	"margin-right":        value(bytecode.PropMarginRight, lengthPct),
	"margin-bottom":       value(bytecode.PropMarginBottom, lengthPct),
	"margin-left":         value(bytecode.PropMarginLeft, lengthPct),
	"padding-top":         value(bytecode.PropPaddingTop, lengthPctNN),
	"padding-right":       value(bytecode.PropPaddingRight, lengthPctNN),
	"padding-bottom":      value(bytecode.PropPaddingBottom, lengthPctNN),
	"padding-left":        value(bytecode.PropPaddingLeft, lengthPctNN),
	"text-indent":         value(bytecode.PropTextIndent, lengthPct),
	"letter-spacing":      value(bytecode.PropLetterSpacing, acceptLength),
	"word-spacing":        value(bytecode.PropWordSpacing, acceptLength),
	"line-height":         value(bytecode.PropLineHeight, lengthPctNN|acceptNumber),
	"font-size":           value(bytecode.PropFontSize, lengthPctNN),
	"border-top-width":    value(bytecode.PropBorderTopWidth, acceptLength|nonNegative),
	"border-right-width":  value(bytecode.PropBorderRightWidth, acceptLength|nonNegative),
	"border-bottom-width": value(bytecode.PropBorderBottomWidth, acceptLength|nonNegative),
	"border-left-width":   value(bytecode.PropBorderLeftWidth, acceptLength|nonNegative),
	"outline-width":       value(bytecode.PropOutlineWidth, acceptLength|nonNegative),
	"stroke-width":        value(bytecode.PropStrokeWidth, lengthPctNN|unitless),
	"column-gap":          value(bytecode.PropColumnGap, lengthPctNN),
	"row-gap":             value(bytecode.PropRowGap, lengthPctNN),
	"vertical-align":      value(bytecode.PropVerticalAlign, lengthPct),
	"flex-basis":          value(bytecode.PropFlexBasis, lengthPctNN),
	"border-spacing":      atomic(parseBorderSpacing),

	// colours
	"color":               value(bytecode.PropColor, acceptColour),
	"background-color":    value(bytecode.PropBackgroundColor, acceptColour),
	"border-top-color":    value(bytecode.PropBorderTopColor, acceptColour),
	"border-right-color":  value(bytecode.PropBorderRightColor, acceptColour),
	"border-bottom-color": value(bytecode.PropBorderBottomColor, acceptColour),
	"border-left-color":   value(bytecode.PropBorderLeftColor, acceptColour),
	"outline-color":       value(bytecode.PropOutlineColor, acceptColour),
	"fill":                value(bytecode.PropFill, acceptColour|acceptURI),
	"stroke":              value(bytecode.PropStroke, acceptColour|acceptURI),

	// numbers
	"opacity":           value(bytecode.PropOpacity, acceptNumber|clampUnit),
	"fill-opacity":      value(bytecode.PropFillOpacity, acceptNumber|clampUnit),
	"stroke-opacity":    value(bytecode.PropStrokeOpacity, acceptNumber|clampUnit),
	"stroke-miterlimit": value(bytecode.PropStrokeMiterlimit, acceptNumber|nonNegative),
	"z-index":           value(bytecode.PropZIndex, acceptInteger),
	"order":             value(bytecode.PropOrder, acceptInteger),
	"flex-grow":         value(bytecode.PropFlexGrow, acceptNumber|nonNegative),
	"flex-shrink":       value(bytecode.PropFlexShrink, acceptNumber|nonNegative),
	"orphans":           value(bytecode.PropOrphans, acceptInteger|positive),
	"widows":            value(bytecode.PropWidows, acceptInteger|positive),
	"column-count":      value(bytecode.PropColumnCount, acceptInteger|positive),
	"font-weight":       atomic(parseFontWeight),

	// URIs
	"background-image":  value(bytecode.PropBackgroundImage, acceptURI),
	"list-style-image":  value(bytecode.PropListStyleImage, acceptURI),
	"filter":            value(bytecode.PropFilter, acceptURI),
	"background-size":   atomic(parseBackgroundSize),
	"text-shadow":       atomic(parseTextShadow),
	"transform":         atomic(parseTransform),
	"stroke-dasharray":  atomic(parseStrokeDasharray),
	"grid-row-start":    gridLine(bytecode.PropGridRowStart),
	"grid-row-end":      gridLine(bytecode.PropGridRowEnd),
	"grid-column-start": gridLine(bytecode.PropGridColumnStart),
	"grid-column-end":   gridLine(bytecode.PropGridColumnEnd),

	"grid-template-columns": gridTemplate(bytecode.PropGridTemplateColumns),
	"grid-template-rows":    gridTemplate(bytecode.PropGridTemplateRows),

	// shorthands
	"margin":        fourSides(marginSides, lengthPct),
	"padding":       fourSides(paddingSides, lengthPctNN),
	"border-width":  fourSides(borderWidthSides, acceptLength|nonNegative),
	"border-style":  fourSides(borderStyleSides, 0),
	"border-color":  fourSides(borderColourSides, acceptColour),
	"border-top":    borderSide(0),
	"border-right":  borderSide(1),
	"border-bottom": borderSide(2),
	"border-left":   borderSide(3),
	"border":        atomic(parseBorder),
	"outline":       atomic(parseOutline),
	"list-style":    atomic(parseListStyle),
	"overflow":      atomic(parseOverflow),
	"flex":          atomic(parseFlex),
	"flex-flow":     atomic(parseFlexFlow),
	"grid-row":      gridShorthand(bytecode.PropGridRowStart, bytecode.PropGridRowEnd),
	"grid-column":   gridShorthand(bytecode.PropGridColumnStart, bytecode.PropGridColumnEnd),
}
