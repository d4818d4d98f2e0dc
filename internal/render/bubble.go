package render

import "github.com/fogleman/gg"

const (
	bubbleX         = 50
	bubbleY         = 225
	bubbleWidth     = 350
	bubbleRadius    = 15
	bubbleTextWidth = bubbleWidth - 40
	bubbleTextX     = bubbleX + 20
	bubbleTextY     = bubbleY + 15
	bubbleMinHeight = 80
	bubbleMaxHeight = 160
	bubbleLineStep  = 16
	bubblePadding   = 40
	bubbleTailX     = 210
	bubbleTailHalf  = 20
	bubbleTailDrop  = 20
)

// BubbleHeight is the bubble height for a fact that wraps to n lines.
func BubbleHeight(n int) int {
	h := n*bubbleLineStep + bubblePadding
	if h < bubbleMinHeight {
		return bubbleMinHeight
	}
	if h > bubbleMaxHeight {
		return bubbleMaxHeight
	}
	return h
}

// BubbleLines wraps text for the bubble and returns the lines that fit
// together with the bubble height. When lines are cut off, the last visible
// line ends in an ellipsis.
func BubbleLines(m Measurer, text string) ([]string, int) {
	lines := WrapWords(m, RoleSpeech, text, bubbleTextWidth, 0)
	height := BubbleHeight(len(lines))
	maxLines := (height - 30) / bubbleLineStep

	var visible []string
	for i, line := range lines {
		if i >= maxLines-1 && i < len(lines)-1 {
			visible = append(visible, trimToFit(m, RoleSpeech, line, bubbleTextWidth, 0)+Ellipsis)
			break
		}
		if i >= maxLines {
			break
		}
		visible = append(visible, line)
	}
	return visible, height
}

// drawBubble draws the grey rounded bubble with its tail pointing down at
// the centre of the illustration.
func drawBubble(c *Canvas, height int) {
	x0, y0 := float64(bubbleX), float64(bubbleY)
	x1, y1 := x0+bubbleWidth, y0+float64(height)
	c.RoundedRect(x0, y0, x1, y1, bubbleRadius, colBoxFill, colBoxOutline, 2)

	tail := []gg.Point{
		{X: bubbleTailX - bubbleTailHalf, Y: y1},
		{X: bubbleTailX, Y: y1 + bubbleTailDrop},
		{X: bubbleTailX + bubbleTailHalf, Y: y1},
	}
	c.Polygon(tail, colBoxFill, colBoxOutline, 1)
}

// drawBubbleText writes the visible fact lines inside the bubble.
func drawBubbleText(p TextPainter, lines []string) {
	for i, line := range lines {
		p.DrawText(RoleSpeech, line, bubbleTextX, float64(bubbleTextY+i*bubbleLineStep), colBlack)
	}
}
