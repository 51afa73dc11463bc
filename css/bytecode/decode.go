package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"csseng/fixed"
)

// Length is a fixed-point value with its unit.
type Length struct {
	Value fixed.Fixed
	Unit  Unit
}

func (l Length) String() string {
	return l.Value.String() + l.Unit.String()
}

// Declaration is one decoded record. Only the operand fields its value tag
// calls for are filled in.
type Declaration struct {
	Property  Property
	Important bool
	Inherit   bool
	Value     uint16

	Lengths []Length
	Number  fixed.Fixed
	Integer int32
	Colour  uint32
	String  uint32
}

// Decode walks every record of s.
func Decode(s *Style) ([]Declaration, error) {
	words := s.Words()
	decls := make([]Declaration, 0, len(s.Records()))
	for off := 0; off < len(words); {
		d, n, err := DecodeAt(words, off)
		if err != nil {
			return decls, err
		}
		decls = append(decls, d)
		off += n
	}
	return decls, nil
}

type reader struct {
	words []uint32
	pos   int
	err   error
}

func (r *reader) next() uint32 {
	if r.pos >= len(r.words) {
		if r.err == nil {
			r.err = fmt.Errorf("truncated record at word %d: %w", r.pos, ErrInvalid)
		}
		return 0
	}
	w := r.words[r.pos]
	r.pos++
	return w
}

func (r *reader) length() Length {
	v := fixed.Fixed(int32(r.next()))
	return Length{Value: v, Unit: Unit(r.next())}
}

// DecodeAt decodes the record starting at words[off] and returns it together
// with the number of words it occupies.
func DecodeAt(words []uint32, off int) (Declaration, int, error) {
	r := &reader{words: words, pos: off}
	p, flags, value := OPV(r.next())
	d := Declaration{
		Property:  p,
		Important: flags&FlagImportant != 0,
		Inherit:   flags&FlagInherit != 0,
		Value:     value,
	}
	if p >= PropCount {
		return d, 1, fmt.Errorf("unknown property %d at word %d: %w", p, off, ErrInvalid)
	}
	if d.Inherit {
		return d, 1, nil
	}

	switch {
	case value < ValueSetLength:
		if _, ok := p.Keyword(value); !ok {
			return d, 1, fmt.Errorf("%s: keyword %d out of range: %w", p, value, ErrInvalid)
		}
	case value == ValueSetLength:
		d.Lengths = []Length{r.length()}
	case value == ValueSetLengthPair:
		d.Lengths = []Length{r.length(), r.length()}
	case value == ValueSetNumber:
		d.Number = fixed.Fixed(int32(r.next()))
	case value == ValueSetInteger, value == ValueSetSpan:
		d.Integer = int32(r.next())
	case value == ValueSetColour:
		d.Colour = r.next()
	case value == ValueCurrentColour:
	case value == ValueSetURI, value == ValueSetString:
		d.String = r.next()
	case value == ValueSetList:
		for r.err == nil {
			w := r.next()
			if w == ListEnd {
				break
			}
			if w != ListItem {
				return d, r.pos - off, fmt.Errorf("%s: bad list marker %#x: %w", p, w, ErrInvalid)
			}
			d.Lengths = append(d.Lengths, r.length())
		}
	case value&ValueComposite != 0:
		if err := decodeComposite(r, &d); err != nil {
			return d, r.pos - off, err
		}
	default:
		return d, 1, fmt.Errorf("%s: unknown value tag %#x: %w", p, value, ErrInvalid)
	}
	return d, r.pos - off, r.err
}

func decodeComposite(r *reader, d *Declaration) error {
	bits := d.Value &^ ValueComposite
	switch d.Property.Info().Layout {
	case LayoutShadow:
		if bits&(ShadowH|ShadowV) != ShadowH|ShadowV {
			return fmt.Errorf("%s: missing offsets: %w", d.Property, ErrInvalid)
		}
		d.Lengths = []Length{r.length(), r.length()}
		if bits&ShadowBlur != 0 {
			d.Lengths = append(d.Lengths, r.length())
		}
		if bits&ShadowColour != 0 {
			d.Colour = r.next()
		}
	case LayoutBackgroundSize:
		if bits&^0xf != 0 {
			return fmt.Errorf("%s: bad axes %#x: %w", d.Property, bits, ErrInvalid)
		}
		for _, axis := range [2]uint16{bits & 3, bits >> 2 & 3} {
			if axis == SizeSet {
				d.Lengths = append(d.Lengths, r.length())
			}
		}
	default:
		return fmt.Errorf("%s: unexpected composite value: %w", d.Property, ErrInvalid)
	}
	return nil
}

// Format renders d as CSS text; strs resolves string table references.
func (d *Declaration) Format(strs *StringTable) string {
	var sb strings.Builder
	sb.WriteString(d.Property.String())
	sb.WriteString(": ")
	sb.WriteString(d.FormatValue(strs))
	if d.Important {
		sb.WriteString(" !important")
	}
	return sb.String()
}

// FormatValue renders the value part of d.
func (d *Declaration) FormatValue(strs *StringTable) string {
	if d.Inherit {
		return "inherit"
	}
	switch v := d.Value; {
	case v < ValueSetLength:
		kw, _ := d.Property.Keyword(v)
		return kw
	case v == ValueSetLength:
		return d.Lengths[0].String()
	case v == ValueSetLengthPair:
		return d.Lengths[0].String() + " " + d.Lengths[1].String()
	case v == ValueSetNumber:
		return d.Number.String()
	case v == ValueSetInteger:
		return strconv.Itoa(int(d.Integer))
	case v == ValueSetSpan:
		return "span " + strconv.Itoa(int(d.Integer))
	case v == ValueSetColour:
		return FormatColour(d.Colour)
	case v == ValueCurrentColour:
		return "currentcolor"
	case v == ValueSetURI:
		s, _ := strs.Get(d.String)
		return "url(" + s.String() + ")"
	case v == ValueSetString:
		s, _ := strs.Get(d.String)
		return s.String()
	case v == ValueSetList:
		sep := " "
		if d.Property == PropStrokeDasharray {
			sep = ", "
		}
		parts := make([]string, len(d.Lengths))
		for i, l := range d.Lengths {
			parts[i] = l.String()
		}
		return strings.Join(parts, sep)
	case v&ValueComposite != 0:
		return d.formatComposite()
	}
	return "?"
}

func (d *Declaration) formatComposite() string {
	bits := d.Value &^ ValueComposite
	var parts []string
	switch d.Property.Info().Layout {
	case LayoutShadow:
		for _, l := range d.Lengths {
			parts = append(parts, l.String())
		}
		switch {
		case bits&ShadowColour != 0:
			parts = append(parts, FormatColour(d.Colour))
		case bits&ShadowCurrentColor != 0:
			parts = append(parts, "currentcolor")
		}
	case LayoutBackgroundSize:
		h, v := bits&3, bits>>2&3
		if h == v && h >= SizeContain {
			if h == SizeContain {
				return "contain"
			}
			return "cover"
		}
		i := 0
		for _, axis := range [2]uint16{h, v} {
			switch axis {
			case SizeSet:
				parts = append(parts, d.Lengths[i].String())
				i++
			case SizeContain:
				parts = append(parts, "contain")
			case SizeCover:
				parts = append(parts, "cover")
			default:
				parts = append(parts, "auto")
			}
		}
	}
	return strings.Join(parts, " ")
}

// FormatColour renders a packed 0xAARRGGBB colour as a hex notation.
func FormatColour(c uint32) string {
	rgb := c & 0xffffff
	if a := c >> 24; a != 0xff {
		return fmt.Sprintf("#%06x%02x", rgb, a)
	}
	return fmt.Sprintf("#%06x", rgb)
}
