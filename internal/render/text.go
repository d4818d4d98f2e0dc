package render

import (
	"image/color"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to text shortened to fit a width.
const Ellipsis = "..."

// Measurer reports the advance width in pixels of s set in the face for role.
type Measurer interface {
	Measure(role FontRole, s string) float64
}

// TextPainter is the text capability the layout code needs: measuring, and
// drawing with the top-left corner of the line box at (x, y).
type TextPainter interface {
	Measurer
	DrawText(role FontRole, s string, x, y float64, c color.Color)
}

// WrapWords greedily packs the words of text into lines no wider than
// maxWidth. maxWords > 0 additionally caps the words per line. A word that is
// wider than maxWidth on its own becomes a line of its own, truncated with
// an ellipsis.
func WrapWords(m Measurer, role FontRole, text string, maxWidth float64, maxWords int) []string {
	var (
		lines []string
		cur   []string
	)
	for _, w := range strings.Fields(text) {
		candidate := strings.Join(append(cur[:len(cur):len(cur)], w), " ")
		if (maxWords <= 0 || len(cur) < maxWords) && m.Measure(role, candidate) <= maxWidth {
			cur = append(cur, w)
			continue
		}
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, " "))
			cur = nil
		}
		if m.Measure(role, w) <= maxWidth {
			cur = []string{w}
			continue
		}
		lines = append(lines, TruncateWord(m, role, w, maxWidth))
	}
	if len(cur) > 0 {
		lines = append(lines, strings.Join(cur, " "))
	}
	return lines
}

// TruncateWord removes trailing runes from word until word+Ellipsis fits
// maxWidth, keeping at least three runes. The word is returned unchanged if
// nothing had to be removed.
func TruncateWord(m Measurer, role FontRole, word string, maxWidth float64) string {
	r := []rune(word)
	n := len(r)
	for n > 3 && m.Measure(role, string(r[:n])+Ellipsis) > maxWidth {
		n--
	}
	if n < len(r) {
		return string(r[:n]) + Ellipsis
	}
	return word
}

// ShrinkLabel strips trailing runes from label until label+"... " fits
// maxWidth and returns the shortened label with that suffix. The loop ends
// at the empty string, so the result is at least "... ".
func ShrinkLabel(m Measurer, role FontRole, label string, maxWidth float64) string {
	r := []rune(label)
	n := len(r)
	for n > 0 && m.Measure(role, string(r[:n])+Ellipsis+" ") > maxWidth {
		n--
	}
	return string(r[:n]) + Ellipsis + " "
}

// trimToFit shortens s by whole words, then by runes, until s+Ellipsis fits
// width or s is down to minRunes runes.
func trimToFit(m Measurer, role FontRole, s string, width float64, minRunes int) string {
	for utf8.RuneCountInString(s) > minRunes && m.Measure(role, s+Ellipsis) > width {
		if words := strings.Fields(s); len(words) > 1 {
			s = strings.Join(words[:len(words)-1], " ")
			continue
		}
		r := []rune(s)
		s = string(r[:len(r)-1])
	}
	return s
}

// ClampLine makes sure line fits width. Lines that already fit are returned
// unchanged; longer ones lose words, then runes, and get an ellipsis.
func ClampLine(m Measurer, role FontRole, line string, width float64) string {
	if m.Measure(role, line) <= width {
		return line
	}
	t := trimToFit(m, role, line, width, 3)
	if len(t) < len(line) {
		return t + Ellipsis
	}
	return line
}
