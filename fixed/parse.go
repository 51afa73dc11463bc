package fixed

const (
	intLimit  = 1 << 22
	fracLimit = 1000000
	maxInt    = 1 << 21
)

// Parse reads a decimal number from the start of s. Only a sign, digits and
// (unless intOnly) a fractional part are recognised. It returns the value and
// the number of bytes consumed; zero bytes consumed means s does not start
// with a number. Out of range values are clamped.
func Parse(s string, intOnly bool) (Fixed, int) {
	var (
		sign     int64 = 1
		intpart  int64
		fracpart int64
		pwr      int64 = 1
		pos      int
	)

	if len(s) == 0 {
		return 0, 0
	}
	switch s[0] {
	case '-':
		sign = -1
		pos++
	case '+':
		pos++
	}

	if pos == len(s) {
		return 0, 0
	}
	if s[pos] == '.' {
		if intOnly || pos+1 == len(s) || !isDigit(s[pos+1]) {
			return 0, 0
		}
	} else if !isDigit(s[pos]) {
		return 0, 0
	}

	for pos < len(s) && isDigit(s[pos]) {
		if intpart < intLimit {
			intpart = intpart*10 + int64(s[pos]-'0')
		}
		pos++
	}

	if !intOnly && pos+1 < len(s) && s[pos] == '.' && isDigit(s[pos+1]) {
		pos++
		for pos < len(s) && isDigit(s[pos]) {
			if pwr < fracLimit {
				pwr *= 10
				fracpart = fracpart*10 + int64(s[pos]-'0')
			}
			pos++
		}
	}

	if intpart >= maxInt {
		if sign > 0 {
			return Max, pos
		}
		return Min, pos
	}

	if pwr > 1 {
		fracpart = ((fracpart << RadixPoint) + pwr/2) / pwr
		if fracpart >= int64(One) {
			intpart++
			fracpart -= int64(One)
		}
	}

	return clamp(sign * ((intpart << RadixPoint) + fracpart)), pos
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
