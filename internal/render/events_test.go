package render

import (
	"strings"
	"testing"

	"inkcal/internal/model"
)

func bundledFontSet(t *testing.T) *FontSet {
	t.Helper()
	fs, err := NewFontSet(BundledFonts())
	if err != nil {
		t.Fatalf("NewFontSet: %v", err)
	}
	t.Cleanup(func() { _ = fs.Close() })
	return fs
}

func assertInsideColumn(t *testing.T, r *recorder, l Layout, col int) {
	t.Helper()
	left := float64(l.columnLeft(col))
	right := left + float64(l.ColumnWidth-columnMargin)
	for _, c := range r.calls {
		end := c.x + r.Measure(c.role, c.s)
		if c.x < left || end > right+0.01 {
			t.Errorf("%q drawn over [%.1f, %.1f], column is [%.1f, %.1f]", c.s, c.x, end, left, right)
		}
	}
}

func TestDrawColumnKeepsFirstThree(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: mono(7)}
	cur := NewCursors(l.Days, l.EventTop())

	var events []model.CalendarEvent
	for _, s := range []string{"A", "B", "C", "D", "E"} {
		events = append(events, model.CalendarEvent{Summary: s})
	}
	drawColumn(r, l, cur, 1, events)

	var got []string
	for _, c := range r.calls {
		got = append(got, c.s)
	}
	want := []string{"● A", "● B", "● C"}
	if len(got) != len(want) {
		t.Fatalf("drew %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("drew %q, want %q", got, want)
		}
	}
	if cur.Y(1) != l.EventTop()+3*(eventLineHeight+eventGap) {
		t.Fatalf("cursor = %d", cur.Y(1))
	}
	if cur.Y(0) != l.EventTop() {
		t.Fatalf("other column moved to %d", cur.Y(0))
	}
}

func TestDrawEventUsesCalendarSymbol(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: mono(7)}
	drawEvent(r, l, NewCursors(l.Days, l.EventTop()), 0, model.CalendarEvent{Summary: "Gym", CalendarSymbol: "★"})
	if len(r.calls) != 1 || r.calls[0].s != "★ Gym" {
		t.Fatalf("calls = %+v", r.calls)
	}
}

func TestDrawEventLongTitle(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: mono(10)}
	cur := NewCursors(l.Days, l.EventTop())

	ev := model.CalendarEvent{Time: "10:00", Summary: "Tandlæge hos Dr. Jensen for årlig kontrol og rens"}
	if !drawEvent(r, l, cur, 0, ev) {
		t.Fatal("event skipped")
	}

	var titles int
	var marker *drawCall
	for i, c := range r.calls {
		switch {
		case c.s == moreLinesMarker:
			marker = &r.calls[i]
		case c.role == RoleEvent:
			titles++
		}
	}
	if titles != maxEventLines {
		t.Fatalf("drew %d title lines, want %d", titles, maxEventLines)
	}
	if marker == nil {
		t.Fatal("no overflow marker")
	}
	if marker.c != colGray {
		t.Fatalf("marker colour = %v", marker.c)
	}
	assertInsideColumn(t, r, l, 0)

	if want := l.EventTop() + 2*eventLineHeight + eventGap; cur.Y(0) != want {
		t.Fatalf("cursor = %d, want %d", cur.Y(0), want)
	}
}

func TestDrawEventLongTitleRealFonts(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: bundledFontSet(t)}
	cur := NewCursors(l.Days, l.EventTop())

	ev := model.CalendarEvent{Time: "10:00", Summary: "Tandlæge hos Dr. Jensen for årlig kontrol og tandrensning med røntgen"}
	drawEvent(r, l, cur, 3, ev)

	var titles, markers int
	for _, c := range r.calls {
		switch {
		case c.s == moreLinesMarker:
			markers++
		case c.role == RoleEvent:
			titles++
		}
	}
	if titles > maxEventLines || markers != 1 {
		t.Fatalf("titles = %d, markers = %d", titles, markers)
	}
	assertInsideColumn(t, r, l, 3)
}

func TestDrawEventDentist(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: bundledFontSet(t)}
	cur := NewCursors(l.Days, l.EventTop())

	ev := model.CalendarEvent{
		Time:           "14:30",
		Summary:        "Dentist appointment for the whole family this afternoon",
		CalendarSymbol: "●",
	}
	drawEvent(r, l, cur, 0, ev)

	var titles, markers int
	for _, c := range r.calls {
		switch {
		case c.s == moreLinesMarker:
			markers++
		case c.role == RoleEvent:
			titles++
			if titles == 1 && !strings.HasPrefix(c.s, "● Dentist") {
				t.Errorf("first line = %q", c.s)
			}
		}
	}
	if titles != maxEventLines || markers != 1 {
		t.Fatalf("titles = %d, markers = %d", titles, markers)
	}
	assertInsideColumn(t, r, l, 0)
}

func TestDrawEventNarrowTitleMovesDown(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: mono(10)}
	cur := NewCursors(l.Days, l.EventTop())
	top := float64(l.EventTop())

	drawEvent(r, l, cur, 2, model.CalendarEvent{Time: "10:00 - 11:30", Summary: "Møde"})

	if len(r.calls) != 2 {
		t.Fatalf("calls = %+v", r.calls)
	}
	title := r.calls[1]
	if title.x != float64(l.columnLeft(2)) || title.y != top+eventLineHeight {
		t.Fatalf("title at (%v, %v)", title.x, title.y)
	}
	if want := l.EventTop() + 2*eventLineHeight + eventGap; cur.Y(2) != want {
		t.Fatalf("cursor = %d, want %d", cur.Y(2), want)
	}
	assertInsideColumn(t, r, l, 2)
}

func TestDrawEventOverlongTimeLabel(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: mono(10)}
	drawEvent(r, l, NewCursors(l.Days, l.EventTop()), 0, model.CalendarEvent{Time: "09:00 until the end of the day", Summary: "X"})
	if len(r.calls) == 0 || r.calls[0].role != RoleTime {
		t.Fatalf("calls = %+v", r.calls)
	}
	assertInsideColumn(t, r, l, 0)
}

func TestDrawEventVerticalOverflow(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: mono(7)}

	cur := NewCursors(l.Days, l.EventLimit()+1)
	if drawEvent(r, l, cur, 0, model.CalendarEvent{Summary: "late"}) {
		t.Fatal("event past the limit was drawn")
	}
	if len(r.calls) != 0 || cur.Y(0) != l.EventLimit()+1 {
		t.Fatalf("skipped event had effects: calls=%d cursor=%d", len(r.calls), cur.Y(0))
	}

	cur = NewCursors(l.Days, l.EventLimit())
	if !drawEvent(r, l, cur, 0, model.CalendarEvent{Summary: "on the limit"}) {
		t.Fatal("event at the limit was skipped")
	}
}

func TestCursorsMonotonic(t *testing.T) {
	l := DefaultLayout()
	r := &recorder{Measurer: mono(7)}
	cur := NewCursors(l.Days, l.EventTop())

	prev := cur.Y(0)
	for i := 0; i < 20; i++ {
		drawEvent(r, l, cur, 0, model.CalendarEvent{Time: "08:00", Summary: "Standup with the whole team in the big room"})
		if cur.Y(0) < prev {
			t.Fatalf("cursor went from %d to %d", prev, cur.Y(0))
		}
		prev = cur.Y(0)
	}
	if prev > l.EventLimit()+3*eventLineHeight+eventGap {
		t.Fatalf("cursor ran to %d", prev)
	}

	cur.Advance(0, -50)
	if cur.Y(0) != prev {
		t.Fatal("negative advance moved the cursor")
	}
}
