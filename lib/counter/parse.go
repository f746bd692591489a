package counter

import (
	"math"
	"strconv"
)

// ParseValue is the best-effort parser for counter file content. It never fails:
// leading whitespace is skipped, an optional sign and the following digits are
// parsed, everything after them is ignored. Content without digits (including
// an empty file) yields 0 and values out of range saturate at the int64 limits.
func ParseValue(b []byte) int64 {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}

	start := i
	if i < len(b) && (b[i] == '-' || b[i] == '+') {
		i++
	}
	digits := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}

	// on ErrRange ParseInt already returns the saturated value
	v, _ := strconv.ParseInt(string(b[start:i]), 10, 64)
	return v
}

// addSaturating returns a+b clamped to the int64 range, matching the
// saturation of ParseValue.
func addSaturating(a, b int64) int64 {
	sum := a + b
	switch {
	case b > 0 && sum < a:
		return math.MaxInt64
	case b < 0 && sum > a:
		return math.MinInt64
	}
	return sum
}

// FormatValue returns the file content for v.
func FormatValue(v int64) []byte {
	return strconv.AppendInt(nil, v, 10)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
