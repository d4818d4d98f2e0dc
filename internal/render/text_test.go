package render

import (
	"image/color"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// mono measures every rune as the same width.
type mono float64

func (m mono) Measure(_ FontRole, s string) float64 {
	return float64(utf8.RuneCountInString(s)) * float64(m)
}

type drawCall struct {
	role FontRole
	s    string
	x, y float64
	c    color.Color
}

// recorder is a TextPainter that keeps every draw.
type recorder struct {
	Measurer
	calls []drawCall
}

func (r *recorder) DrawText(role FontRole, s string, x, y float64, c color.Color) {
	r.calls = append(r.calls, drawCall{role: role, s: s, x: x, y: y, c: c})
}

func TestWrapWordsCapsWordsPerLine(t *testing.T) {
	got := WrapWords(mono(10), RoleEvent, "a b c d e f g h", 1000, 6)
	want := []string{"a b c d e f", "g h"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WrapWords = %q, want %q", got, want)
	}
}

func TestWrapWordsWidth(t *testing.T) {
	got := WrapWords(mono(10), RoleSpeech, "one two three four", 90, 0)
	want := []string{"one two", "three", "four"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WrapWords = %q, want %q", got, want)
	}
}

func TestWrapWordsOverlongWord(t *testing.T) {
	got := WrapWords(mono(10), RoleEvent, "hi abcdefghij yo", 50, 6)
	want := []string{"hi", "abc...", "yo"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WrapWords = %q, want %q", got, want)
	}
}

func TestWrapWordsEmpty(t *testing.T) {
	if got := WrapWords(mono(10), RoleEvent, "   ", 100, 6); len(got) != 0 {
		t.Fatalf("WrapWords(blank) = %q, want none", got)
	}
}

func TestTruncateWord(t *testing.T) {
	m := mono(10)
	cases := []struct {
		word  string
		width float64
		want  string
	}{
		{"abcdefghij", 80, "abcde..."},
		{"abcdefghij", 10, "abc..."},
		{"abc", 10, "abc"},
		{"short", 200, "short"},
	}
	for _, tc := range cases {
		if got := TruncateWord(m, RoleEvent, tc.word, tc.width); got != tc.want {
			t.Errorf("TruncateWord(%q, %v) = %q, want %q", tc.word, tc.width, got, tc.want)
		}
	}
}

func TestShrinkLabel(t *testing.T) {
	m := mono(10)
	if got := ShrinkLabel(m, RoleTime, "12:00-13:00", 60); got != "12... " {
		t.Fatalf("ShrinkLabel = %q", got)
	}
	if got := ShrinkLabel(m, RoleTime, "12:00", 10); got != "... " {
		t.Fatalf("ShrinkLabel at zero width = %q", got)
	}
}

func TestClampLine(t *testing.T) {
	m := mono(10)
	if got := ClampLine(m, RoleEvent, "fits", 100); got != "fits" {
		t.Fatalf("ClampLine(fits) = %q", got)
	}
	got := ClampLine(m, RoleEvent, "hello world foo", 100)
	if got != "hello..." {
		t.Fatalf("ClampLine = %q, want %q", got, "hello...")
	}
	if m.Measure(RoleEvent, got) > 100 {
		t.Fatalf("clamped line %q wider than 100", got)
	}
}

func TestTrimToFitTerminates(t *testing.T) {
	got := trimToFit(mono(10), RoleSpeech, strings.Repeat("x", 50), 0, 0)
	if got != "" {
		t.Fatalf("trimToFit to zero width = %q, want empty", got)
	}
}
