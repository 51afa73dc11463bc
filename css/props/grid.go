package props

import (
	"fmt"

	"csseng/css/bytecode"
	"csseng/css/tokens"
)

// gridLine parses grid-row-start and friends:
// auto | <integer> | span <integer> | <integer> span.
func gridLine(p bytecode.Property) handler {
	return atomic(func(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
		vec.ConsumeWhitespace(cur)
		tok := vec.Peek(*cur)
		switch {
		case tok == nil:
			return ErrInvalid
		case ctx.is(tok, kwInherit):
			vec.Next(cur)
			return result.Inherit(p)
		case ctx.is(tok, kwAuto):
			vec.Next(cur)
			return appendKeyword(result, p, "auto")
		}

		span := false
		if ctx.is(tok, kwSpan) {
			span = true
			vec.Next(cur)
			vec.ConsumeWhitespace(cur)
		}

		n, err := numberToken(vec.Next(cur), true)
		if err != nil {
			return err
		}
		if !span {
			// the span keyword may also follow the number
			save := *cur
			vec.ConsumeWhitespace(cur)
			if ctx.is(vec.Peek(*cur), kwSpan) {
				vec.Next(cur)
				span = true
			} else {
				*cur = save
			}
		}

		switch {
		case n == 0:
			return fmt.Errorf("grid line 0: %w", ErrInvalid)
		case span && n < 0:
			return fmt.Errorf("negative grid span: %w", ErrInvalid)
		}

		tag := bytecode.ValueSetInteger
		if span {
			tag = bytecode.ValueSetSpan
		}
		if err := result.AppendOPV(p, 0, tag); err != nil {
			return err
		}
		return result.Append(uint32(int32(n.Int())))
	})
}

// gridShorthand parses grid-row and grid-column: start [/ end]. A missing
// end is auto.
func gridShorthand(start, end bytecode.Property) handler {
	parseStart, parseEnd := gridLine(start), gridLine(end)
	return atomic(func(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
		if done, err := ctx.inheritAll(vec, cur, result, start, end); done {
			return err
		}
		if err := parseStart(ctx, vec, cur, result); err != nil {
			return err
		}
		vec.ConsumeWhitespace(cur)
		if !vec.Peek(*cur).IsChar('/') {
			return appendKeyword(result, end, "auto")
		}
		vec.Next(cur)
		vec.ConsumeWhitespace(cur)
		if ctx.is(vec.Peek(*cur), kwInherit) {
			return ErrInvalid
		}
		return parseEnd(ctx, vec, cur, result)
	})
}

// gridTemplate parses grid-template-columns and grid-template-rows as none
// or a list of track sizes, each a length, percentage or flex fraction.
func gridTemplate(p bytecode.Property) handler {
	return atomic(func(ctx *Context, vec tokens.Vector, cur *int, result *bytecode.Style) error {
		vec.ConsumeWhitespace(cur)
		tok := vec.Peek(*cur)
		switch {
		case tok == nil:
			return ErrInvalid
		case ctx.is(tok, kwInherit):
			vec.Next(cur)
			return result.Inherit(p)
		case ctx.is(tok, kwNone):
			vec.Next(cur)
			return appendKeyword(result, p, "none")
		}

		if err := result.AppendOPV(p, 0, bytecode.ValueSetList); err != nil {
			return err
		}
		tracks := 0
		for {
			vec.ConsumeWhitespace(cur)
			if vec.Peek(*cur) == nil {
				break
			}
			v, u, err := ParseUnitSpecifier(ctx, vec, cur, bytecode.UnitPX)
			if err != nil {
				break
			}
			if !u.IsLength() && u != bytecode.UnitPCT && u != bytecode.UnitFR || v < 0 {
				return fmt.Errorf("bad track size %s%s: %w", v, u, ErrInvalid)
			}
			if err := result.VAppend(bytecode.ListItem, uint32(v), uint32(u)); err != nil {
				return err
			}
			tracks++
		}
		if tracks == 0 {
			return ErrInvalid
		}
		return result.Append(bytecode.ListEnd)
	})
}
