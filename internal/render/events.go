package render

import (
	"math"
	"strings"

	"inkcal/internal/model"
)

const (
	maxEventsPerDay  = 3
	maxEventLines    = 2
	maxWordsPerLine  = 6
	eventLineHeight  = 16
	eventGap         = 6
	columnMargin     = 15
	timePadding      = 5
	minTitleWidth    = 50
	moreLinesMarker  = "…"
	moreMarkerOffset = 5
)

// drawColumn lays out up to three events of one day in column col.
func drawColumn(p TextPainter, l Layout, cur *Cursors, col int, events []model.CalendarEvent) {
	if len(events) > maxEventsPerDay {
		events = events[:maxEventsPerDay]
	}
	for _, ev := range events {
		drawEvent(p, l, cur, col, ev)
	}
}

// eventTitle prefixes the summary with its calendar symbol.
func eventTitle(ev model.CalendarEvent) string {
	sym := ev.CalendarSymbol
	if sym == "" {
		sym = model.DefaultSymbol
	}
	return sym + " " + ev.Summary
}

// drawEvent draws one event at the column cursor and advances it. It reports
// false when the column is out of vertical space and the event was skipped.
func drawEvent(p TextPainter, l Layout, cur *Cursors, col int, ev model.CalendarEvent) bool {
	y := cur.Y(col)
	if y > l.EventLimit() {
		return false
	}

	left := float64(l.columnLeft(col))
	right := left + float64(l.ColumnWidth-columnMargin)
	maxWidth := right - left
	top := float64(y)

	var timeWidth float64
	if strings.TrimSpace(ev.Time) != "" {
		label := ev.Time + " "
		timeWidth = p.Measure(RoleTime, label)
		if timeWidth > maxWidth {
			timeWidth = maxWidth
			label = ShrinkLabel(p, RoleTime, ev.Time, maxWidth)
		}
		p.DrawText(RoleTime, label, left, top, colBlack)
	}

	rows := 0
	titleX, titleY := left+timeWidth, top
	available := maxWidth - timeWidth - timePadding
	if timeWidth > 0 && available < minTitleWidth {
		// Too little room next to the time: the title starts on the next row.
		titleX, titleY = left, top+eventLineHeight
		available = maxWidth - timePadding
		rows++
	}

	lines := WrapWords(p, RoleEvent, eventTitle(ev), available, maxWordsPerLine)

	drawn := len(lines)
	if drawn > maxEventLines {
		drawn = maxEventLines
	}
	lineX, lineY := titleX, titleY
	var last string
	for i := 0; i < drawn; i++ {
		if i > 0 {
			lineX = left
			lineY += eventLineHeight
		}
		// The wrap pass measured against `available`; re-check against the
		// real right edge from where this line actually starts.
		last = ClampLine(p, RoleEvent, lines[i], right-lineX)
		p.DrawText(RoleEvent, last, lineX, lineY, colBlack)
	}

	if len(lines) > maxEventLines {
		x := math.Min(right-p.Measure(RoleEvent, moreLinesMarker), lineX+p.Measure(RoleEvent, last)+moreMarkerOffset)
		p.DrawText(RoleEvent, moreLinesMarker, x, lineY, colGray)
	}

	rows += drawn
	if rows == 0 && timeWidth > 0 {
		rows = 1
	}
	cur.Advance(col, rows*eventLineHeight+eventGap)
	return true
}
