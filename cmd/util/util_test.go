package util

import (
	"strings"
	"testing"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line exceeds %d characters: %q", Wrap, line)
		}
	}

	if got := WrapString("short text"); got != "short text" {
		t.Errorf("unexpected wrap of short text: %q", got)
	}
	if got := WrapString(""); got != "" {
		t.Errorf("unexpected wrap of empty text: %q", got)
	}
}
