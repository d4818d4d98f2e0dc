// Package render lays out and draws the calendar page: month and day
// headers, the weather row, per-day event columns, the fun-fact bubble and
// the illustrations.
package render

import (
	"image"
	"time"

	appLog "inkcal/internal/log"
	"inkcal/internal/model"
)

// Inputs is everything one page is drawn from.
type Inputs struct {
	// Today is the first day column, in the display time zone.
	Today time.Time

	Events  model.EventsByDate
	Weather []model.DayWeather
	FunFact string

	// IllustrationPath is the primary image. SecondaryPath is the optional
	// decorative image; empty disables it.
	IllustrationPath string
	SecondaryPath    string
}

// Renderer draws pages. The zero value is not usable; see NewRenderer.
type Renderer struct {
	Layout Layout
	Locale Locale
	Fonts  FontSource
}

// NewRenderer returns a renderer for the default page in the given locale.
func NewRenderer(locale Locale, fonts FontSource) *Renderer {
	return &Renderer{Layout: DefaultLayout(), Locale: locale, Fonts: fonts}
}

// Render draws one page. It never fails: missing inputs fall back to
// placeholders, and unreadable fonts to the bundled ones. The same inputs
// always give the same pixels.
func (r *Renderer) Render(in Inputs) *image.RGBA {
	fonts, err := NewFontSet(r.Fonts)
	if err != nil {
		appLog.Warn("fonts unusable; using bundled fonts", "origin", r.Fonts.Origin, "err", err)
		if fonts, err = NewFontSet(BundledFonts()); err != nil {
			// The bundled fonts are compiled in; this cannot happen short of a broken build.
			panic(err)
		}
	}
	defer fonts.Close()

	l := r.Layout
	c := NewCanvas(l.Width, l.Height, fonts)
	today := dateOnly(in.Today)

	drawSkeleton(c, l, r.Locale, today)
	drawWeatherRow(c, l, weatherFor(l, in.Weather))

	cur := NewCursors(l.Days, l.EventTop())
	for i := 0; i < l.Days; i++ {
		drawColumn(c, l, cur, i, in.Events.For(today.AddDate(0, 0, i)))
	}

	drawIllustration(c, in.IllustrationPath)

	lines, height := BubbleLines(c, in.FunFact)
	drawBubble(c, height)
	drawBubbleText(c, lines)

	drawSecondary(c, in.SecondaryPath)
	return c.Image()
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
