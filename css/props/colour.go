package props

import (
	"fmt"
	"strings"

	"csseng/css/bytecode"
	"csseng/css/tokens"
	"csseng/fixed"
)

// ColourKind tells a concrete colour from a reference to the current colour.
type ColourKind uint8

const (
	ColourSet ColourKind = iota
	ColourCurrent
)

// ParseColourSpecifier reads a colour and returns it packed as 0xAARRGGBB.
// The cursor is left untouched on failure.
func ParseColourSpecifier(ctx *Context, vec tokens.Vector, cur *int) (ColourKind, uint32, error) {
	orig := *cur
	kind, c, err := ctx.parseColour(vec, cur)
	if err != nil {
		*cur = orig
		return 0, 0, err
	}
	return kind, c, nil
}

func (ctx *Context) parseColour(vec tokens.Vector, cur *int) (ColourKind, uint32, error) {
	tok := vec.Next(cur)
	if tok == nil {
		return 0, 0, ErrInvalid
	}

	switch tok.Type {
	case tokens.Ident:
		switch {
		case ctx.is(tok, kwCurrentColor):
			return ColourCurrent, 0, nil
		case ctx.is(tok, kwTransparent):
			return ColourSet, 0, nil
		}
		if rgb, ok := namedColours[strings.ToLower(tok.Data)]; ok {
			return ColourSet, 0xff000000 | rgb, nil
		}
		return 0, 0, fmt.Errorf("unknown colour %q: %w", tok.Data, ErrInvalid)

	case tokens.Hash:
		c, err := parseHashColour(tok.Data)
		return ColourSet, c, err

	case tokens.Function:
		switch {
		case ctx.isFunction(tok, kwRGB), ctx.isFunction(tok, kwRGBA):
			c, err := ctx.parseRGB(vec, cur)
			return ColourSet, c, err
		case ctx.isFunction(tok, kwHSL), ctx.isFunction(tok, kwHSLA):
			c, err := ctx.parseHSL(vec, cur)
			return ColourSet, c, err
		}
	}
	return 0, 0, ErrInvalid
}

func parseHashColour(hex string) (uint32, error) {
	var digits [8]uint32
	for i := 0; i < len(hex); i++ {
		if i == len(digits) {
			return 0, fmt.Errorf("colour #%s too long: %w", hex, ErrInvalid)
		}
		d, ok := hexValue(hex[i])
		if !ok {
			return 0, fmt.Errorf("bad colour #%s: %w", hex, ErrInvalid)
		}
		digits[i] = d
	}

	var r, g, b, a uint32
	switch len(hex) {
	case 3, 4:
		r, g, b, a = digits[0]*0x11, digits[1]*0x11, digits[2]*0x11, 0xff
		if len(hex) == 4 {
			a = digits[3] * 0x11
		}
	case 6, 8:
		r, g, b, a = digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5], 0xff
		if len(hex) == 8 {
			a = digits[6]<<4 | digits[7]
		}
	default:
		return 0, fmt.Errorf("bad colour #%s: %w", hex, ErrInvalid)
	}
	return a<<24 | r<<16 | g<<8 | b, nil
}

func hexValue(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint32(c-'A') + 10, true
	}
	return 0, false
}

// colourArgs collects the arguments of a colour function up to the closing
// parenthesis. Arguments are either all comma separated, or space separated
// with an optional '/' before the alpha value.
func colourArgs(vec tokens.Vector, cur *int) ([]*tokens.Token, error) {
	var (
		args []*tokens.Token
		seps []byte
		sep  byte
	)
	for {
		vec.ConsumeWhitespace(cur)
		tok := vec.Next(cur)
		switch {
		case tok == nil:
			return nil, fmt.Errorf("unterminated colour function: %w", ErrInvalid)
		case tok.IsChar(')'):
			if sep != 0 {
				return nil, ErrInvalid
			}
			return validateColourArgs(args, seps)
		case tok.IsChar(','), tok.IsChar('/'):
			if sep != 0 || len(args) == 0 {
				return nil, ErrInvalid
			}
			sep = tok.Data[0]
		case tok.Type == tokens.Number, tok.Type == tokens.Percentage, tok.Type == tokens.Dimension:
			args = append(args, tok)
			seps = append(seps, sep)
			sep = 0
		default:
			return nil, ErrInvalid
		}
	}
}

func validateColourArgs(args []*tokens.Token, seps []byte) ([]*tokens.Token, error) {
	if len(args) != 3 && len(args) != 4 {
		return nil, fmt.Errorf("colour function takes 3 or 4 arguments: %w", ErrInvalid)
	}
	legacy := seps[1] == ','
	for i := 1; i < len(seps); i++ {
		want := byte(0)
		switch {
		case legacy:
			want = ','
		case i == 3:
			want = '/'
		}
		if seps[i] != want {
			return nil, fmt.Errorf("mixed separators in colour function: %w", ErrInvalid)
		}
	}
	return args, nil
}

// alphaValue converts an alpha argument to 0..255.
func alphaValue(t *tokens.Token) (uint32, error) {
	v, n := ParseNumber(t.Data, false)
	if n == 0 || n != len(t.Data) {
		return 0, ErrInvalid
	}
	switch t.Type {
	case tokens.Number:
		v = v.Mul(fixed.F255)
	case tokens.Percentage:
		v = v.Mul(fixed.F255).Div(fixed.F100)
	default:
		return 0, ErrInvalid
	}
	return uint32(min(max(v.Int(), 0), 255)), nil
}

func (ctx *Context) parseRGB(vec tokens.Vector, cur *int) (uint32, error) {
	args, err := colourArgs(vec, cur)
	if err != nil {
		return 0, err
	}

	var rgb [3]uint32
	for i := range rgb {
		t := args[i]
		if t.Type != args[0].Type {
			return 0, fmt.Errorf("rgb channels must share a type: %w", ErrInvalid)
		}
		v, n := ParseNumber(t.Data, false)
		if n == 0 || n != len(t.Data) {
			return 0, ErrInvalid
		}
		switch t.Type {
		case tokens.Number:
		case tokens.Percentage:
			v = v.Mul(fixed.F255).Div(fixed.F100)
		default:
			return 0, ErrInvalid
		}
		rgb[i] = uint32(min(max(v.Int(), 0), 255))
	}

	a := uint32(0xff)
	if len(args) == 4 {
		if a, err = alphaValue(args[3]); err != nil {
			return 0, err
		}
	}
	return a<<24 | rgb[0]<<16 | rgb[1]<<8 | rgb[2], nil
}

func (ctx *Context) parseHSL(vec tokens.Vector, cur *int) (uint32, error) {
	args, err := colourArgs(vec, cur)
	if err != nil {
		return 0, err
	}

	hue, err := hueValue(args[0])
	if err != nil {
		return 0, err
	}
	var sl [2]fixed.Fixed
	for i := range sl {
		t := args[i+1]
		v, n := ParseNumber(t.Data, false)
		if t.Type != tokens.Percentage || n == 0 || n != len(t.Data) {
			return 0, fmt.Errorf("hsl saturation and lightness are percentages: %w", ErrInvalid)
		}
		sl[i] = min(max(v, 0), fixed.F100)
	}

	a := uint32(0xff)
	if len(args) == 4 {
		if a, err = alphaValue(args[3]); err != nil {
			return 0, err
		}
	}
	r, g, b := hslToRGB(hue, sl[0], sl[1])
	return a<<24 | r<<16 | g<<8 | b, nil
}

// hueValue returns the hue in degrees normalised to [0, 360).
func hueValue(t *tokens.Token) (fixed.Fixed, error) {
	v, n := ParseNumber(t.Data, false)
	if n == 0 {
		return 0, ErrInvalid
	}
	switch t.Type {
	case tokens.Number:
		if n != len(t.Data) {
			return 0, ErrInvalid
		}
	case tokens.Dimension:
		u, ok := bytecode.UnitByName(t.Data[n:])
		if !ok || !u.IsAngle() {
			return 0, fmt.Errorf("hue must be an angle: %w", ErrInvalid)
		}
		v = angleToDegrees(v, u)
	default:
		return 0, ErrInvalid
	}
	v %= fixed.F360
	if v < 0 {
		v += fixed.F360
	}
	return v, nil
}

// fixed-point pi, rounded
const fixedPi = fixed.Fixed(3217)

func angleToDegrees(v fixed.Fixed, u bytecode.Unit) fixed.Fixed {
	switch u {
	case bytecode.UnitGRAD:
		return v.Mul(fixed.F360).Div(fixed.FromInt(400))
	case bytecode.UnitRAD:
		return v.Mul(fixed.FromInt(180)).Div(fixedPi)
	case bytecode.UnitTURN:
		return v.Mul(fixed.F360)
	}
	return v
}

// hslToRGB works in percentages throughout: sat and lit are 0..100.
func hslToRGB(hue, sat, lit fixed.Fixed) (r, g, b uint32) {
	out := func(x fixed.Fixed) uint32 {
		return uint32(min(max(x.Mul(fixed.F255).Div(fixed.F100).Int(), 0), 255))
	}

	if sat == 0 {
		c := out(lit)
		return c, c, c
	}

	var maxRGB fixed.Fixed
	if lit <= fixed.FromInt(50) {
		maxRGB = lit.Mul(sat.Add(fixed.F100)).Div(fixed.F100)
	} else {
		maxRGB = lit.Add(sat).Mul(fixed.F100).Sub(lit.Mul(sat)).Div(fixed.F100)
	}
	minRGB := lit.Mul(fixed.FromInt(2)).Sub(maxRGB)
	chroma := maxRGB.Sub(minRGB)

	// the hue selects one of six sextants; within a sextant one component
	// is max, one is min and the third moves linearly between them
	h := hue.Mul(fixed.FromInt(6)).Div(fixed.F360)
	sextant := h.Int()
	scaled := h.Sub(fixed.FromInt(sextant)).Mul(chroma)
	mid1 := minRGB.Add(scaled)
	mid2 := maxRGB.Sub(scaled)

	switch sextant {
	case 0:
		return out(maxRGB), out(mid1), out(minRGB)
	case 1:
		return out(mid2), out(maxRGB), out(minRGB)
	case 2:
		return out(minRGB), out(maxRGB), out(mid1)
	case 3:
		return out(minRGB), out(mid2), out(maxRGB)
	case 4:
		return out(mid1), out(minRGB), out(maxRGB)
	}
	return out(maxRGB), out(minRGB), out(mid2)
}

// emitColour appends a colour record for p.
func emitColour(result *bytecode.Style, p bytecode.Property, kind ColourKind, c uint32) error {
	if kind == ColourCurrent {
		return result.AppendOPV(p, 0, bytecode.ValueCurrentColour)
	}
	if err := result.AppendOPV(p, 0, bytecode.ValueSetColour); err != nil {
		return err
	}
	return result.Append(c)
}

var namedColours = map[string]uint32{
	"aliceblue":            0xf0f8ff,
	"antiquewhite":         0xfaebd7,
	"aqua":                 0x00ffff,
	"aquamarine":           0x7fffd4,
	"azure":                0xf0ffff,
	"beige":                0xf5f5dc,
	"bisque":               0xffe4c4,
	"black":                0x000000,
	"blanchedalmond":       0xffebcd,
	"blue":                 0x0000ff,
	"blueviolet":           0x8a2be2,
	"brown":                0xa52a2a,
	"burlywood":            0xdeb887,
	"cadetblue":            0x5f9ea0,
	"chartreuse":           0x7fff00,
	"chocolate":            0xd2691e,
	"coral":                0xff7f50,
	"cornflowerblue":       0x6495ed,
	"cornsilk":             0xfff8dc,
	"crimson":              0xdc143c,
	"cyan":                 0x00ffff,
	"darkblue":             0x00008b,
	"darkcyan":             0x008b8b,
	"darkgoldenrod":        0xb8860b,
	"darkgray":             0xa9a9a9,
	"darkgreen":            0x006400,
	"darkgrey":             0xa9a9a9,
	"darkkhaki":            0xbdb76b,
	"darkmagenta":          0x8b008b,
	"darkolivegreen":       0x556b2f,
	"darkorange":           0xff8c00,
	"darkorchid":           0x9932cc,
	"darkred":              0x8b0000,
	"darksalmon":           0xe9967a,
	"darkseagreen":         0x8fbc8f,
	"darkslateblue":        0x483d8b,
	"darkslategray":        0x2f4f4f,
	"darkslategrey":        0x2f4f4f,
	"darkturquoise":        0x00ced1,
	"darkviolet":           0x9400d3,
	"deeppink":             0xff1493,
	"deepskyblue":          0x00bfff,
	"dimgray":              0x696969,
	"dimgrey":              0x696969,
	"dodgerblue":           0x1e90ff,
	"firebrick":            0xb22222,
	"floralwhite":          0xfffaf0,
	"forestgreen":          0x228b22,
	"fuchsia":              0xff00ff,
	"gainsboro":            0xdcdcdc,
	"ghostwhite":           0xf8f8ff,
	"gold":                 0xffd700,
	"goldenrod":            0xdaa520,
	"gray":                 0x808080,
	"green":                0x008000,
	"greenyellow":          0xadff2f,
	"grey":                 0x808080,
	"honeydew":             0xf0fff0,
	"hotpink":              0xff69b4,
	"indianred":            0xcd5c5c,
	"indigo":               0x4b0082,
	"ivory":                0xfffff0,
	"khaki":                0xf0e68c,
	"lavender":             0xe6e6fa,
	"lavenderblush":        0xfff0f5,
	"lawngreen":            0x7cfc00,
	"lemonchiffon":         0xfffacd,
	"lightblue":            0xadd8e6,
	"lightcoral":           0xf08080,
	"lightcyan":            0xe0ffff,
	"lightgoldenrodyellow": 0xfafad2,
	"lightgray":            0xd3d3d3,
	"lightgreen":           0x90ee90,
	"lightgrey":            0xd3d3d3,
	"lightpink":            0xffb6c1,
	"lightsalmon":          0xffa07a,
	"lightseagreen":        0x20b2aa,
	"lightskyblue":         0x87cefa,
	"lightslategray":       0x778899,
	"lightslategrey":       0x778899,
	"lightsteelblue":       0xb0c4de,
	"lightyellow":          0xffffe0,
	"lime":                 0x00ff00,
	"limegreen":            0x32cd32,
	"linen":                0xfaf0e6,
	"magenta":              0xff00ff,
	"maroon":               0x800000,
	"mediumaquamarine":     0x66cdaa,
	"mediumblue":           0x0000cd,
	"mediumorchid":         0xba55d3,
	"mediumpurple":         0x9370db,
	"mediumseagreen":       0x3cb371,
	"mediumslateblue":      0x7b68ee,
	"mediumspringgreen":    0x00fa9a,
	"mediumturquoise":      0x48d1cc,
	"mediumvioletred":      0xc71585,
	"midnightblue":         0x191970,
	"mintcream":            0xf5fffa,
	"mistyrose":            0xffe4e1,
	"moccasin":             0xffe4b5,
	"navajowhite":          0xffdead,
	"navy":                 0x000080,
	"oldlace":              0xfdf5e6,
	"olive":                0x808000,
	"olivedrab":            0x6b8e23,
	"orange":               0xffa500,
	"orangered":            0xff4500,
	"orchid":               0xda70d6,
	"palegoldenrod":        0xeee8aa,
	"palegreen":            0x98fb98,
	"paleturquoise":        0xafeeee,
	"palevioletred":        0xdb7093,
	"papayawhip":           0xffefd5,
	"peachpuff":            0xffdab9,
	"peru":                 0xcd853f,
	"pink":                 0xffc0cb,
	"plum":                 0xdda0dd,
	"powderblue":           0xb0e0e6,
	"purple":               0x800080,
	"rebeccapurple":        0x663399,
	"red":                  0xff0000,
	"rosybrown":            0xbc8f8f,
	"royalblue":            0x4169e1,
	"saddlebrown":          0x8b4513,
	"salmon":               0xfa8072,
	"sandybrown":           0xf4a460,
	"seagreen":             0x2e8b57,
	"seashell":             0xfff5ee,
	"sienna":               0xa0522d,
	"silver":               0xc0c0c0,
	"skyblue":              0x87ceeb,
	"slateblue":            0x6a5acd,
	"slategray":            0x708090,
	"slategrey":            0x708090,
	"snow":                 0xfffafa,
	"springgreen":          0x00ff7f,
	"steelblue":            0x4682b4,
	"tan":                  0xd2b48c,
	"teal":                 0x008080,
	"thistle":              0xd8bfd8,
	"tomato":               0xff6347,
	"turquoise":            0x40e0d0,
	"violet":               0xee82ee,
	"wheat":                0xf5deb3,
	"white":                0xffffff,
	"whitesmoke":           0xf5f5f5,
	"yellow":               0xffff00,
	"yellowgreen":          0x9acd32,
}
