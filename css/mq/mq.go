// Package mq parses and evaluates media query lists as found in @media
// rules and @import statements.
package mq

import (
	"fmt"
	"strconv"
	"strings"

	"csseng/css/bytecode"
	"csseng/fixed"
)

// Type is a set of media types.
type Type uint16

const (
	TypeAural Type = 1 << iota
	TypeBraille
	TypeEmbossed
	TypeHandheld
	TypePrint
	TypeProjection
	TypeScreen
	TypeSpeech
	TypeTTY
	TypeTV

	TypeAll = TypeAural | TypeBraille | TypeEmbossed | TypeHandheld | TypePrint |
		TypeProjection | TypeScreen | TypeSpeech | TypeTTY | TypeTV
)

var typeNames = []struct {
	name string
	t    Type
}{
	{"all", TypeAll},
	{"aural", TypeAural},
	{"braille", TypeBraille},
	{"embossed", TypeEmbossed},
	{"handheld", TypeHandheld},
	{"print", TypePrint},
	{"projection", TypeProjection},
	{"screen", TypeScreen},
	{"speech", TypeSpeech},
	{"tty", TypeTTY},
	{"tv", TypeTV},
}

// TypeByName returns the media type called name. Unknown types yield an
// empty set which matches nothing.
func TypeByName(name string) Type {
	for _, tn := range typeNames {
		if strings.EqualFold(tn.name, name) {
			return tn.t
		}
	}
	return 0
}

func (t Type) String() string {
	if t == TypeAll {
		return "all"
	}
	var names []string
	for _, tn := range typeNames[1:] {
		if t&tn.t != 0 {
			names = append(names, tn.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, "|")
}

// Op is a comparison in a media feature test.
type Op uint8

const (
	OpUnused Op = iota
	OpBool
	OpLT
	OpLTE
	OpEQ
	OpGTE
	OpGT
)

var opNames = [...]string{OpUnused: "", OpBool: "", OpLT: "<", OpLTE: "<=", OpEQ: "=", OpGTE: ">=", OpGT: ">"}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "?" + strconv.Itoa(int(o))
}

// invert turns "a op b" into "b op' a".
func (o Op) invert() Op {
	switch o {
	case OpLT:
		return OpGT
	case OpLTE:
		return OpGTE
	case OpGT:
		return OpLT
	case OpGTE:
		return OpLTE
	}
	return o
}

// Value is the value side of a feature test. It is one of Number, Integer,
// Dimension, Ident or Ratio.
type Value interface {
	fmt.Stringer
	isValue()
}

type (
	Number  fixed.Fixed
	Integer int32
	Ident   string
)

// Dimension is a number with a unit.
type Dimension struct {
	Len  fixed.Fixed
	Unit bytecode.Unit
}

// Ratio is written num/den.
type Ratio struct {
	Num, Den fixed.Fixed
}

func (Number) isValue()    {}
func (Integer) isValue()   {}
func (Ident) isValue()     {}
func (Dimension) isValue() {}
func (Ratio) isValue()     {}

func (n Number) String() string    { return fixed.Fixed(n).String() }
func (i Integer) String() string   { return strconv.Itoa(int(i)) }
func (i Ident) String() string     { return string(i) }
func (d Dimension) String() string { return d.Len.String() + d.Unit.String() }
func (r Ratio) String() string     { return r.Num.String() + "/" + r.Den.String() }

// Feature is a single test. Name is lower case with any min-/max- prefix
// folded into Op. Op2 and Value2 are only used by double-sided ranges such
// as (400px < width <= 700px), which are stored as
// width > 400px, <= 700px.
type Feature struct {
	Name   string
	Op     Op
	Value  Value
	Op2    Op
	Value2 Value
}

func (f *Feature) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(f.Name)
	if f.Op != OpBool {
		fmt.Fprintf(&sb, " %s %s", f.Op, f.Value)
	}
	if f.Op2 != OpUnused {
		fmt.Fprintf(&sb, ", %s %s", f.Op2, f.Value2)
	}
	sb.WriteByte(')')
	return sb.String()
}

// CondOp joins the parts of a condition.
type CondOp uint8

const (
	CondAnd CondOp = iota
	CondOr
)

// Part is a *Cond or a *Feature.
type Part interface {
	fmt.Stringer
	isPart()
}

func (*Cond) isPart()    {}
func (*Feature) isPart() {}

// Cond is a list of parts joined by one operator, optionally negated.
type Cond struct {
	Negate bool
	Op     CondOp
	Parts  []Part
}

func (c *Cond) String() string {
	sep := " and "
	if c.Op == CondOr {
		sep = " or "
	}
	parts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = p.String()
	}
	s := strings.Join(parts, sep)
	if c.Negate {
		return "not (" + s + ")"
	}
	return s
}

// Query is one entry of a comma separated media query list. NegateType
// inverts the media type test only.
type Query struct {
	NegateType bool
	Type       Type
	Cond       *Cond
}

func (q *Query) String() string {
	var sb strings.Builder
	if q.NegateType {
		sb.WriteString("not ")
	}
	sb.WriteString(q.Type.String())
	if q.Cond != nil {
		sb.WriteString(" and ")
		sb.WriteString(q.Cond.String())
	}
	return sb.String()
}

// NotAll is the list stored in place of one that failed to parse. It never
// matches.
func NotAll() []*Query {
	return []*Query{{NegateType: true, Type: TypeAll}}
}

// Format renders a query list, mostly for diagnostics.
func Format(list []*Query) string {
	parts := make([]string, len(list))
	for i, q := range list {
		parts[i] = q.String()
	}
	return strings.Join(parts, ", ")
}
