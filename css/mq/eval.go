package mq

import (
	"csseng/css/bytecode"
	"csseng/fixed"
)

// Media describes the medium stylesheets are selected for.
type Media struct {
	Type       Type
	Width      fixed.Fixed // viewport width, px
	Height     fixed.Fixed // viewport height, px
	FontSize   fixed.Fixed // client font size, pt
	LineHeight fixed.Fixed // client line height, px
}

var (
	ex = fixed.FromFloat(0.6)
	ch = fixed.FromFloat(0.4)

	pxPerCM = fixed.F96.Div(fixed.FromFloat(2.54))
	pxPerMM = fixed.F96.Div(fixed.FromFloat(25.4))
	pxPerQ  = fixed.F96.Div(fixed.FromFloat(101.6))
	pxPerPT = fixed.F96.Div(fixed.F72)
	pxPerPC = fixed.F96.Div(fixed.FromInt(6))
)

// LengthToPx converts a length to CSS pixels for m. Font relative units use
// the client font size; ex and ch are approximated as 0.6em and 0.4em.
// Except for px and the viewport units the pixels per unit are rounded to a
// whole number first. Non-length units convert to 0.
func LengthToPx(m *Media, v fixed.Fixed, u bytecode.Unit) fixed.Fixed {
	switch u {
	case bytecode.UnitVI:
		u = bytecode.UnitVW
	case bytecode.UnitVB:
		u = bytecode.UnitVH
	case bytecode.UnitVMIN:
		u = bytecode.UnitVW
		if m.Height < m.Width {
			u = bytecode.UnitVH
		}
	case bytecode.UnitVMAX:
		u = bytecode.UnitVW
		if m.Height > m.Width {
			u = bytecode.UnitVH
		}
	}

	var perUnit fixed.Fixed
	switch u {
	case bytecode.UnitPX:
		return v
	case bytecode.UnitVW:
		return v.Mul(m.Width).Div(fixed.F100)
	case bytecode.UnitVH:
		return v.Mul(m.Height).Div(fixed.F100)
	case bytecode.UnitEM, bytecode.UnitREM, bytecode.UnitEX, bytecode.UnitCH:
		perUnit = m.FontSize.Mul(fixed.F96).Div(fixed.F72)
		switch u {
		case bytecode.UnitEX:
			perUnit = perUnit.Mul(ex)
		case bytecode.UnitCH:
			perUnit = perUnit.Mul(ch)
		}
	case bytecode.UnitLH:
		perUnit = m.LineHeight
	case bytecode.UnitIN:
		perUnit = fixed.F96
	case bytecode.UnitCM:
		perUnit = pxPerCM
	case bytecode.UnitMM:
		perUnit = pxPerMM
	case bytecode.UnitQ:
		perUnit = pxPerQ
	case bytecode.UnitPT:
		perUnit = pxPerPT
	case bytecode.UnitPC:
		perUnit = pxPerPC
	}
	return v.Mul(perUnit.Add(fixed.Half).Truncate())
}

// Evaluate reports whether any query of list matches m. An empty list
// matches everything.
func Evaluate(list []*Query, m *Media) bool {
	if len(list) == 0 {
		return true
	}
	for _, q := range list {
		if (q.Type&m.Type != 0) == q.NegateType {
			continue
		}
		if q.Cond == nil || matchCond(q.Cond, m) {
			return true
		}
	}
	return false
}

func matchCond(c *Cond, m *Media) bool {
	matched := c.Op == CondAnd
	for _, part := range c.Parts {
		var ok bool
		switch p := part.(type) {
		case *Cond:
			ok = matchCond(p, m)
		case *Feature:
			ok = matchFeature(p, m)
		}
		if c.Op == CondAnd && !ok {
			matched = false
			break
		}
		if c.Op == CondOr && ok {
			matched = true
			break
		}
	}
	return matched != c.Negate
}

// matchFeature only knows width and height. Everything else is false.
func matchFeature(f *Feature, m *Media) bool {
	switch f.Name {
	case "width":
		return matchLength(f, m.Width, m)
	case "height":
		return matchLength(f, m.Height, m)
	}
	return false
}

// matchLength compares a viewport dimension against f. In boolean context
// a range feature holds for any non-zero dimension.
func matchLength(f *Feature, client fixed.Fixed, m *Media) bool {
	if f.Op == OpBool {
		return client != 0
	}
	if !compareLength(f.Op, client, f.Value, m) {
		return false
	}
	return f.Op2 == OpUnused || compareLength(f.Op2, client, f.Value2, m)
}

func compareLength(op Op, client fixed.Fixed, v Value, m *Media) bool {
	var px fixed.Fixed
	switch v := v.(type) {
	case Dimension:
		if !v.Unit.IsLength() {
			return false
		}
		px = LengthToPx(m, v.Len, v.Unit)
	case Integer:
		if v != 0 {
			return false
		}
	case Number:
		if v != 0 {
			return false
		}
	default:
		return false
	}

	switch op {
	case OpLT:
		return client < px
	case OpLTE:
		return client <= px
	case OpEQ:
		return client == px
	case OpGTE:
		return client >= px
	case OpGT:
		return client > px
	}
	return false
}
