package props

import (
	"fmt"
	"strings"

	"csseng/css/bytecode"
	"csseng/css/tokens"
)

// backgroundAxis reads one background-size value.
func (ctx *Context) backgroundAxis(vec tokens.Vector, cur *int) (uint16, bytecode.Length, error) {
	tok := vec.Peek(*cur)
	switch {
	case ctx.is(tok, kwAuto):
		vec.Next(cur)
		return bytecode.SizeAuto, bytecode.Length{}, nil
	case ctx.is(tok, kwCover):
		vec.Next(cur)
		return bytecode.SizeCover, bytecode.Length{}, nil
	case ctx.is(tok, kwContain):
		vec.Next(cur)
		return bytecode.SizeContain, bytecode.Length{}, nil
	}
	l, err := ctx.parseLength(vec, cur, lengthPctNN)
	return bytecode.SizeSet, l, err
}

// parseBackgroundSize emits a single record holding both axes. cover and
// contain apply to both axes and must stand alone; a single value leaves
// the vertical axis auto.
func parseBackgroundSize(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	const p = bytecode.PropBackgroundSize
	if done, err := ctx.inheritAll(vec, cur, result, p); done {
		return err
	}

	h, hl, err := ctx.backgroundAxis(vec, cur)
	if err != nil {
		return err
	}
	if h == bytecode.SizeCover || h == bytecode.SizeContain {
		return result.AppendOPV(p, 0, bytecode.BackgroundSizeValue(h, h))
	}

	v, vl := bytecode.SizeAuto, bytecode.Length{}
	vec.ConsumeWhitespace(cur)
	if tok := vec.Peek(*cur); tok != nil && !tok.IsChar(',') {
		if v, vl, err = ctx.backgroundAxis(vec, cur); err != nil {
			return err
		}
		if v == bytecode.SizeCover || v == bytecode.SizeContain {
			return fmt.Errorf("%s must be the only background-size value: %w", tok.Data, ErrInvalid)
		}
	}

	if err := result.AppendOPV(p, 0, bytecode.BackgroundSizeValue(h, v)); err != nil {
		return err
	}
	if h == bytecode.SizeSet {
		if err := result.AppendLength(hl.Value, hl.Unit); err != nil {
			return err
		}
	}
	if v == bytecode.SizeSet {
		return result.AppendLength(vl.Value, vl.Unit)
	}
	return nil
}

func isColourLike(t *tokens.Token) bool {
	return t.Type == tokens.Ident || t.Type == tokens.Hash || t.Type == tokens.Function
}

// parseTextShadow reads a single shadow: two or three lengths with an
// optional colour before or after them.
func parseTextShadow(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	const p = bytecode.PropTextShadow
	if done, err := ctx.inheritAll(vec, cur, result, p); done {
		return err
	}
	if ctx.is(vec.Peek(*cur), kwNone) {
		vec.Next(cur)
		return appendKeyword(result, p, "none")
	}

	var (
		lengths    []bytecode.Length
		colourKind ColourKind
		colour     uint32
		haveColour bool
	)
	for {
		vec.ConsumeWhitespace(cur)
		tok := vec.Peek(*cur)
		if tok == nil || tok.IsChar(',') {
			break
		}

		if isColourLike(tok) {
			if haveColour {
				return fmt.Errorf("text-shadow takes one colour: %w", ErrInvalid)
			}
			k, c, err := ParseColourSpecifier(ctx, vec, cur)
			if err != nil {
				return err
			}
			colourKind, colour, haveColour = k, c, true
			continue
		}

		if len(lengths) == 3 {
			return fmt.Errorf("text-shadow takes at most three lengths: %w", ErrInvalid)
		}
		if haveColour && len(lengths) > 0 {
			return fmt.Errorf("text-shadow colour splits the lengths: %w", ErrInvalid)
		}
		acc := acceptLength
		if len(lengths) == 2 {
			acc |= nonNegative
		}
		l, err := ctx.parseLength(vec, cur, acc)
		if err != nil {
			return err
		}
		lengths = append(lengths, l)
	}
	if len(lengths) < 2 {
		return fmt.Errorf("text-shadow needs two offsets: %w", ErrInvalid)
	}

	bits := bytecode.ShadowH | bytecode.ShadowV
	if len(lengths) == 3 {
		bits |= bytecode.ShadowBlur
	}
	if haveColour {
		if colourKind == ColourCurrent {
			bits |= bytecode.ShadowCurrentColor
		} else {
			bits |= bytecode.ShadowColour
		}
	}

	if err := result.AppendOPV(p, 0, bytecode.ValueComposite|bits); err != nil {
		return err
	}
	for _, l := range lengths {
		if err := result.AppendLength(l.Value, l.Unit); err != nil {
			return err
		}
	}
	if bits&bytecode.ShadowColour != 0 {
		return result.Append(colour)
	}
	return nil
}

// parseStrokeDasharray reads none or a list of lengths, percentages and
// unitless numbers separated by commas or whitespace.
func parseStrokeDasharray(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	const p = bytecode.PropStrokeDasharray
	if done, err := ctx.inheritAll(vec, cur, result, p); done {
		return err
	}
	if ctx.is(vec.Peek(*cur), kwNone) {
		vec.Next(cur)
		return appendKeyword(result, p, "none")
	}

	if err := result.AppendOPV(p, 0, bytecode.ValueSetList); err != nil {
		return err
	}
	for {
		l, err := ctx.parseLength(vec, cur, lengthPctNN|unitless)
		if err != nil {
			return err
		}
		if err := result.VAppend(bytecode.ListItem, uint32(l.Value), uint32(l.Unit)); err != nil {
			return err
		}

		vec.ConsumeWhitespace(cur)
		tok := vec.Peek(*cur)
		if tok == nil {
			break
		}
		if tok.IsChar(',') {
			vec.Next(cur)
			vec.ConsumeWhitespace(cur)
			continue
		}
		if tok.Type != tokens.Number && tok.Type != tokens.Dimension && tok.Type != tokens.Percentage {
			break
		}
	}
	return result.Append(bytecode.ListEnd)
}

// parseTransform keeps the transform functions as written: each function
// name, its parenthesis and argument tokens are concatenated, whitespace
// becoming a single space. The text is stored in the string table.
func parseTransform(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
	const p = bytecode.PropTransform
	if done, err := ctx.inheritAll(vec, cur, result, p); done {
		return err
	}
	if ctx.is(vec.Peek(*cur), kwNone) {
		vec.Next(cur)
		return appendKeyword(result, p, "none")
	}

	var sb strings.Builder
	for {
		save := *cur
		vec.ConsumeWhitespace(cur)
		tok := vec.Peek(*cur)
		if tok == nil || tok.Type != tokens.Function {
			*cur = save
			break
		}
		if sb.Len() > 0 && save != *cur {
			sb.WriteByte(' ')
		}
		vec.Next(cur)
		sb.WriteString(tok.Data)
		sb.WriteByte('(')

		for depth := 1; depth > 0; {
			t := vec.Next(cur)
			switch {
			case t == nil:
				return fmt.Errorf("unterminated %s(: %w", tok.Data, ErrInvalid)
			case t.Type == tokens.Function:
				depth++
			case t.IsChar(')'):
				depth--
			}
			sb.WriteString(t.Text())
		}
	}
	if sb.Len() == 0 {
		return ErrInvalid
	}

	if err := result.AppendOPV(p, 0, bytecode.ValueSetString); err != nil {
		return err
	}
	return result.Append(ctx.addString(sb.String()))
}
