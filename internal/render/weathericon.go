package render

import (
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// Icon is a weather icon variant.
type Icon int

const (
	IconUnknown Icon = iota
	IconSun
	IconPartlyCloudy
	IconOvercast
	IconFog
	IconRain
	IconSnow
	IconRainShower
	IconSnowShower
	IconThunderstorm
)

func (i Icon) String() string {
	switch i {
	case IconSun:
		return "sun"
	case IconPartlyCloudy:
		return "partly-cloudy"
	case IconOvercast:
		return "overcast"
	case IconFog:
		return "fog"
	case IconRain:
		return "rain"
	case IconSnow:
		return "snow"
	case IconRainShower:
		return "rain-shower"
	case IconSnowShower:
		return "snow-shower"
	case IconThunderstorm:
		return "thunderstorm"
	default:
		return "unknown"
	}
}

// ClassifyWeather maps a WMO weather code to its icon. Codes 4-44, 68-70 and
// 87-94 have no icon and stay IconUnknown.
func ClassifyWeather(code int) Icon {
	switch {
	case code == 0 || code == 1:
		return IconSun
	case code == 2:
		return IconPartlyCloudy
	case code == 3:
		return IconOvercast
	case code == 45 || code == 48:
		return IconFog
	case code >= 51 && code <= 67:
		return IconRain
	case code >= 71 && code <= 77:
		return IconSnow
	case code >= 80 && code <= 82:
		return IconRainShower
	case code >= 83 && code <= 86:
		return IconSnowShower
	case code >= 95 && code <= 99:
		return IconThunderstorm
	default:
		return IconUnknown
	}
}

// DrawWeatherIcon draws the icon for code in the size×size square whose
// top-left corner is (x, y).
func DrawWeatherIcon(c *Canvas, x, y float64, code, size int) {
	cx := x + float64(size/2)
	cy := y + float64(size/2)
	r := float64(size / 3)

	switch ClassifyWeather(code) {
	case IconSun:
		drawSun(c, cx, cy, r)
	case IconPartlyCloudy:
		drawPartlyCloudy(c, cx, cy, r)
	case IconOvercast:
		drawOvercast(c, cx, cy, r)
	case IconFog:
		drawFog(c, cx, cy, r)
	case IconRain:
		drawTopCloud(c, cx, cy, r, colCloud)
		for i := 0; i < 3; i++ {
			dx := cx - r + float64(i)*r
			c.Line(dx, cy, dx, cy+r*0.5, colRain, 2)
		}
	case IconSnow:
		drawTopCloud(c, cx, cy, r, colCloud)
		for i := 0; i < 3; i++ {
			drawFlake(c, cx-r+float64(i)*r, cy+r*0.5, r*0.15)
		}
	case IconRainShower, IconSnowShower:
		drawShower(c, cx, cy, r, ClassifyWeather(code) == IconSnowShower)
	case IconThunderstorm:
		drawTopCloud(c, cx, cy, r, colDarkCloud)
		bolt := []gg.Point{
			{X: cx, Y: cy - r*0.2},
			{X: cx - r*0.3, Y: cy + r*0.3},
			{X: cx, Y: cy + r*0.1},
			{X: cx, Y: cy + r*0.7},
		}
		c.Polygon(bolt, colThunder, colIconOutline, 1)
	default:
		c.DrawText(RoleWeather, "?", cx-r*0.5, cy-r*0.5, colBlack)
	}
}

func drawSun(c *Canvas, cx, cy, r float64) {
	c.Ellipse(cx-r, cy-r, cx+r, cy+r, colSun, colIconOutline, 1)
	ray := r * 0.7
	for deg := 0; deg < 360; deg += 45 {
		rad := float64(deg) * math.Pi / 180
		cos, sin := math.Cos(rad), math.Sin(rad)
		c.Line(cx+r*cos, cy+r*sin, cx+(r+ray)*cos, cy+(r+ray)*sin, colSun, 2)
	}
}

// drawCloud draws a main puff of half-width cr and half-height cr*squash
// centred on (x, y), with two upper puffs.
func drawCloud(c *Canvas, x, y, cr, squash float64) {
	c.Ellipse(x-cr, y-cr*squash, x+cr, y+cr*squash, colCloud, colIconOutline, 1)
	c.Ellipse(x-cr*0.8, y-cr, x-cr*0.2, y-cr*0.4, colCloud, colIconOutline, 1)
	c.Ellipse(x+cr*0.2, y-cr, x+cr*0.8, y-cr*0.4, colCloud, colIconOutline, 1)
}

func drawPartlyCloudy(c *Canvas, cx, cy, r float64) {
	sr := r * 0.7
	sx, sy := cx-r*0.5, cy-r*0.5
	c.Ellipse(sx-sr, sy-sr, sx+sr, sy+sr, colSun, colIconOutline, 1)
	drawCloud(c, cx+r*0.3, cy+r*0.3, r*0.8, 0.7)
}

func drawOvercast(c *Canvas, cx, cy, r float64) {
	cr := r * 1.2
	drawCloud(c, cx, cy, cr, 0.6)
	c.Ellipse(cx-cr*0.4, cy+cr*0.2, cx+cr*0.4, cy+cr*0.8, colCloud, colIconOutline, 1)
}

func drawFog(c *Canvas, cx, cy, r float64) {
	w, h, gap := r*1.6, r*0.3, r*0.5
	for i := 0; i < 3; i++ {
		yy := cy - gap + float64(i)*gap
		c.Rect(cx-w/2, yy-h/2, cx+w/2, yy+h/2, colFog, colIconOutline, 1)
	}
}

// drawTopCloud is the flat cloud used above rain, snow and lightning.
func drawTopCloud(c *Canvas, cx, cy, r float64, fill color.Color) {
	c.Ellipse(cx-r, cy-r*0.8, cx+r, cy-r*0.2, fill, colIconOutline, 1)
}

// drawFlake is a small disc with a horizontal, vertical and two diagonal strokes.
func drawFlake(c *Canvas, x, y, fr float64) {
	c.Ellipse(x-fr, y-fr, x+fr, y+fr, colWhite, colIconOutline, 1)
	l := fr * 1.2
	d := l * 0.7
	c.Line(x-l, y, x+l, y, colWhite, 1)
	c.Line(x, y-l, x, y+l, colWhite, 1)
	c.Line(x-d, y-d, x+d, y+d, colWhite, 1)
	c.Line(x-d, y+d, x+d, y-d, colWhite, 1)
}

func drawShower(c *Canvas, cx, cy, r float64, snow bool) {
	sr := r * 0.5
	sx, sy := cx-r*0.5, cy-r*0.5
	c.Ellipse(sx-sr, sy-sr, sx+sr, sy+sr, colSun, colIconOutline, 1)

	kx, ky, kr := cx+r*0.3, cy, r*0.8
	c.Ellipse(kx-kr, ky-kr*0.6, kx+kr, ky+kr*0.2, colCloud, colIconOutline, 1)

	for i := 0; i < 2; i++ {
		dx := kx - r*0.3 + float64(i)*r*0.6
		if snow {
			fr := r * 0.1
			fy := ky + kr*0.4
			c.Ellipse(dx-fr, fy-fr, dx+fr, fy+fr, colWhite, colIconOutline, 1)
			continue
		}
		c.Line(dx, ky+kr*0.2, dx, ky+kr*0.6, colRain, 2)
	}
}
