package render

import (
	"fmt"
	"image/color"
	"time"

	"inkcal/internal/model"
)

// Layout fixes the geometry of the page. All coordinates are pixels.
type Layout struct {
	Width  int
	Height int

	// Days is the number of day columns, starting today.
	Days int

	// ColumnX is the left edge of the first column; columns are ColumnWidth apart.
	ColumnX     int
	ColumnWidth int

	// RuleY is the y of the red rule under the header.
	RuleY int
}

// DefaultLayout is the 800×480 four-day page.
func DefaultLayout() Layout {
	return Layout{
		Width:       800,
		Height:      480,
		Days:        4,
		ColumnX:     150,
		ColumnWidth: 160,
		RuleY:       60,
	}
}

func (l Layout) columnLeft(i int) int { return l.ColumnX + i*l.ColumnWidth }

// EventTop is where every column cursor starts, below the weather row.
func (l Layout) EventTop() int { return l.RuleY + 55 }

// EventLimit is the admission threshold: a column whose cursor is past it
// takes no more events.
func (l Layout) EventLimit() int { return l.Height - 150 }

func (l Layout) weatherY() int { return l.RuleY + 10 }

func (l Layout) dividerEnd() int { return l.RuleY + 10 + (l.Height-l.RuleY-150)/2 }

var (
	colBlack       = color.RGBA{0, 0, 0, 255}
	colRed         = color.RGBA{255, 0, 0, 255}
	colGray        = color.RGBA{128, 128, 128, 255}
	colLightGray   = color.RGBA{211, 211, 211, 255}
	colBoxFill     = color.RGBA{240, 240, 240, 255}
	colBoxOutline  = color.RGBA{180, 180, 180, 255}
	colWhite       = color.RGBA{255, 255, 255, 255}
	colSun         = color.RGBA{255, 204, 0, 255}
	colCloud       = color.RGBA{200, 200, 200, 255}
	colDarkCloud   = color.RGBA{150, 150, 150, 255}
	colRain        = color.RGBA{68, 114, 196, 255}
	colFog         = color.RGBA{180, 180, 180, 255}
	colThunder     = color.RGBA{255, 153, 0, 255}
	colIconOutline = color.RGBA{100, 100, 100, 255}
)

// drawSkeleton draws the month, the red rule, the day headers and the
// column dividers.
func drawSkeleton(c *Canvas, l Layout, loc Locale, today time.Time) {
	c.DrawText(RoleTitle, loc.MonthHeader(today), 20, 20, colBlack)

	ry := float64(l.RuleY)
	c.Line(10, ry, float64(l.Width-10), ry, colRed, 3)

	for i := 0; i < l.Days; i++ {
		day := today.AddDate(0, 0, i)
		c.DrawText(RoleDay, loc.DayHeader(day), float64(l.columnLeft(i)), ry-35, colBlack)
	}

	top, bottom := float64(l.RuleY+10), float64(l.dividerEnd())
	for i := 1; i < l.Days; i++ {
		x := float64(l.columnLeft(i) - 10)
		c.Line(x, top, x, bottom, colLightGray, 1)
	}
}

// FallbackWeather is shown when no forecast is available.
func FallbackWeather() []model.DayWeather {
	return []model.DayWeather{
		{WeatherCode: 2, MinTemp: 2, MaxTemp: 11},
		{WeatherCode: 3, MinTemp: 5, MaxTemp: 9},
		{WeatherCode: 61, MinTemp: 4, MaxTemp: 12},
		{WeatherCode: 1, MinTemp: 3, MaxTemp: 10},
	}
}

// weatherFor returns forecast if it covers every column, else the fallback.
func weatherFor(l Layout, forecast []model.DayWeather) []model.DayWeather {
	if len(forecast) >= l.Days {
		return forecast[:l.Days]
	}
	fb := FallbackWeather()
	for len(fb) < l.Days {
		fb = append(fb, fb[len(fb)-1])
	}
	return fb[:l.Days]
}

// drawWeatherRow draws one boxed icon and temperature range per column.
func drawWeatherRow(c *Canvas, l Layout, days []model.DayWeather) {
	y := float64(l.weatherY())
	const boxHeight = 24
	boxWidth := float64(l.ColumnWidth - 20)

	for i, d := range days {
		x := float64(l.columnLeft(i))
		c.Rect(x-5, y-5, x+boxWidth, y+boxHeight, colBoxFill, colBoxOutline, 1)
		DrawWeatherIcon(c, x, y, d.WeatherCode, 18)
		c.DrawText(RoleWeather, TemperatureLabel(d), x+24, y+6, colBlack)
	}
}

// TemperatureLabel formats the range as "{min}° - {max}°".
func TemperatureLabel(d model.DayWeather) string {
	return fmt.Sprintf("%d° - %d°", d.MinTemp, d.MaxTemp)
}
