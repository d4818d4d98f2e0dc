package render

import (
	"fmt"
	"strings"
	"testing"
)

func TestBubbleHeight(t *testing.T) {
	cases := map[int]int{
		0:  80,
		1:  80,
		2:  80,
		3:  88,
		5:  120,
		7:  152,
		8:  160,
		12: 160,
	}
	for n, want := range cases {
		if got := BubbleHeight(n); got != want {
			t.Errorf("BubbleHeight(%d) = %d, want %d", n, got, want)
		}
	}
}

// factOfLines returns text that wraps to exactly n bubble lines under mono(10).
func factOfLines(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = strings.Repeat(string(rune('a'+i%26)), 30)
	}
	return strings.Join(words, " ")
}

func TestBubbleLinesShort(t *testing.T) {
	m := mono(10)
	lines, h := BubbleLines(m, "Vidste du at en snegl kan sove i tre år?")
	if h != 80 {
		t.Fatalf("height = %d", h)
	}
	if got := strings.Join(lines, " "); got != "Vidste du at en snegl kan sove i tre år?" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestBubbleLinesExactFit(t *testing.T) {
	lines, h := BubbleLines(mono(10), factOfLines(8))
	if h != 160 || len(lines) != 8 {
		t.Fatalf("height = %d, lines = %d", h, len(lines))
	}
	for _, l := range lines {
		if strings.HasSuffix(l, Ellipsis) {
			t.Fatalf("line %q truncated although everything fits", l)
		}
	}
}

func TestBubbleLinesTruncated(t *testing.T) {
	for _, n := range []int{9, 12, 40} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			m := mono(10)
			lines, h := BubbleLines(m, factOfLines(n))
			if h != bubbleMaxHeight {
				t.Fatalf("height = %d", h)
			}
			if len(lines) != 8 {
				t.Fatalf("visible lines = %d, want 8", len(lines))
			}
			last := lines[len(lines)-1]
			if !strings.HasSuffix(last, Ellipsis) {
				t.Fatalf("last line %q has no ellipsis", last)
			}
			if m.Measure(RoleSpeech, last) > bubbleTextWidth {
				t.Fatalf("last line %q wider than the bubble", last)
			}
		})
	}
}

func TestBubbleLinesEmpty(t *testing.T) {
	lines, h := BubbleLines(mono(10), "")
	if len(lines) != 0 || h != bubbleMinHeight {
		t.Fatalf("lines = %q, height = %d", lines, h)
	}
}

func TestDrawBubbleText(t *testing.T) {
	r := &recorder{Measurer: mono(10)}
	drawBubbleText(r, []string{"one", "two"})
	if len(r.calls) != 2 {
		t.Fatalf("calls = %+v", r.calls)
	}
	if r.calls[0].x != bubbleTextX || r.calls[0].y != bubbleTextY || r.calls[1].y != bubbleTextY+bubbleLineStep {
		t.Fatalf("calls = %+v", r.calls)
	}
}
