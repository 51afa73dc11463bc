// Package fixed implements the scaled integer numbers used for every numeric
// value stored in style bytecode. Values are 32-bit with 10 fractional bits,
// so arithmetic gives identical results on every platform.
package fixed

import (
	"math"
	"strconv"

	xfixed "golang.org/x/image/math/fixed"
)

// Fixed is a signed 22.10 fixed-point number.
type Fixed int32

// RadixPoint is the number of fractional bits.
const RadixPoint = 10

const (
	Zero Fixed = 0
	One  Fixed = 1 << RadixPoint
	Half Fixed = One / 2

	Max Fixed = math.MaxInt32
	Min Fixed = math.MinInt32

	fracMask = One - 1
)

// Frequently used constants.
var (
	F72  = FromInt(72)
	F96  = FromInt(96)
	F100 = FromInt(100)
	F255 = FromInt(255)
	F360 = FromInt(360)
)

func clamp(v int64) Fixed {
	switch {
	case v > math.MaxInt32:
		return Max
	case v < math.MinInt32:
		return Min
	}
	return Fixed(v)
}

// FromInt converts an integer, saturating on overflow.
func FromInt(i int) Fixed {
	return clamp(int64(i) << RadixPoint)
}

// FromFloat converts a float, saturating on overflow.
func FromFloat(f float64) Fixed {
	return clamp(int64(f * float64(One)))
}

// Int returns the integer part, rounding towards negative infinity.
func (f Fixed) Int() int {
	return int(f >> RadixPoint)
}

// Float returns f as a float64. Only for presentation and interop.
func (f Fixed) Float() float64 {
	return float64(f) / float64(One)
}

func (f Fixed) Add(g Fixed) Fixed {
	return clamp(int64(f) + int64(g))
}

func (f Fixed) Sub(g Fixed) Fixed {
	return clamp(int64(f) - int64(g))
}

func (f Fixed) Mul(g Fixed) Fixed {
	return clamp((int64(f) * int64(g)) >> RadixPoint)
}

// Div divides f by g. Division by zero saturates towards the sign of f.
func (f Fixed) Div(g Fixed) Fixed {
	if g == 0 {
		switch {
		case f > 0:
			return Max
		case f < 0:
			return Min
		}
		return 0
	}
	return clamp((int64(f) << RadixPoint) / int64(g))
}

// Truncate clears the fractional bits.
func (f Fixed) Truncate() Fixed {
	return f &^ fracMask
}

// Round rounds to the nearest integral value, halves away from zero.
func (f Fixed) Round() Fixed {
	if f < 0 {
		return -((-f).Add(Half).Truncate())
	}
	return f.Add(Half).Truncate()
}

func (f Fixed) Abs() Fixed {
	if f < 0 {
		return clamp(-int64(f))
	}
	return f
}

// IsInt reports whether f has no fractional part.
func (f Fixed) IsInt() bool {
	return f&fracMask == 0
}

// Int26_6 converts f for consumers working in 26.6 fixed-point, such as
// font rasterisers and layout code.
func (f Fixed) Int26_6() xfixed.Int26_6 {
	return xfixed.Int26_6(f >> (RadixPoint - 6))
}

// String formats f with at most three decimals and no trailing zeros.
func (f Fixed) String() string {
	return strconv.FormatFloat(math.Round(f.Float()*1000)/1000, 'f', -1, 64)
}
