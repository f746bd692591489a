package counter

import (
	"math"
	"testing"
)

func TestParseValue(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"0", 0},
		{"42", 42},
		{"-42", -42},
		{"+7", 7},
		{"  13\n", 13},
		{"12abc", 12},
		{"abc", 0},
		{"-", 0},
		{"--1", 0},
		{"9223372036854775807", math.MaxInt64},
		{"99999999999999999999", math.MaxInt64},
		{"-99999999999999999999", math.MinInt64},
	}
	for _, c := range cases {
		if got := ParseValue([]byte(c.in)); got != c.want {
			t.Errorf("ParseValue(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	for _, v := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
		if got := ParseValue(FormatValue(v)); got != v {
			t.Errorf("value %d did not survive formatting, got %d", v, got)
		}
	}
	if string(FormatValue(-3)) != "-3" {
		t.Errorf("unexpected format %q", FormatValue(-3))
	}
}

func TestAddSaturating(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{1, 2, 3},
		{10, -3, 7},
		{math.MaxInt64, 1, math.MaxInt64},
		{math.MaxInt64 - 1, 5, math.MaxInt64},
		{math.MinInt64, -1, math.MinInt64},
		{math.MinInt64 + 1, -5, math.MinInt64},
		{math.MaxInt64, math.MinInt64, -1},
		{math.MinInt64, 0, math.MinInt64},
	}
	for _, c := range cases {
		if got := addSaturating(c.a, c.b); got != c.want {
			t.Errorf("addSaturating(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
