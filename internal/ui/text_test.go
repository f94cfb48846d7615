package ui

import (
	"strings"
	"testing"
)

func TestTruncateSimple(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this is too long", 10, "this is..."},
		{"ab", 2, "ab"},
		{"abcd", 3, "..."},
	}
	for _, tt := range tests {
		if got := TruncateSimple(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("TruncateSimple(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestTruncateSimpleUTF8(t *testing.T) {
	in := "héllo wörld déjà vu"
	got := TruncateSimple(in, 10)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated string %q lacks ellipsis", got)
	}
	if len([]rune(got)) != 10 {
		t.Errorf("rune length = %d, want 10", len([]rune(got)))
	}
}

func TestWrapText(t *testing.T) {
	in := "one two three four five six"
	got := WrapText(in, 10)
	for _, line := range strings.Split(got, "\n") {
		if len([]rune(line)) > 10 {
			t.Errorf("line %q exceeds width 10", line)
		}
	}
}

func TestWrapTextPreservesLineBreaks(t *testing.T) {
	in := "first line\nsecond line"
	got := WrapText(in, 80)
	if got != in {
		t.Errorf("short lines must pass through unchanged, got %q", got)
	}
}

func TestWrapTextLongWord(t *testing.T) {
	in := "supercalifragilistic word"
	got := WrapText(in, 5)
	lines := strings.Split(got, "\n")
	if lines[0] != "supercalifragilistic" {
		t.Errorf("first oversized word must stay intact, got %q", lines[0])
	}
}

func TestWrapTextZeroWidthDefaults(t *testing.T) {
	in := strings.Repeat("word ", 30)
	got := WrapText(in, 0)
	for _, line := range strings.Split(got, "\n") {
		if len([]rune(line)) > 80 {
			t.Errorf("line %q exceeds default width 80", line)
		}
	}
}
