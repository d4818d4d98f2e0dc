package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Canvas is the drawing surface of one render. It is not safe for
// concurrent use and must not be shared between renders.
type Canvas struct {
	dc    *gg.Context
	fonts *FontSet
}

// NewCanvas returns a white canvas of the given size.
func NewCanvas(width, height int, fonts *FontSet) *Canvas {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	return &Canvas{dc: dc, fonts: fonts}
}

func (c *Canvas) Width() int  { return c.dc.Width() }
func (c *Canvas) Height() int { return c.dc.Height() }

// Measure implements Measurer.
func (c *Canvas) Measure(role FontRole, s string) float64 {
	return c.fonts.Measure(role, s)
}

// DrawText implements TextPainter. (x, y) is the top-left of the line box.
func (c *Canvas) DrawText(role FontRole, s string, x, y float64, col color.Color) {
	c.dc.SetFontFace(c.fonts.Face(role))
	c.dc.SetColor(col)
	c.dc.DrawString(s, x, y+c.fonts.Ascent(role))
}

// Image returns the backing RGBA image.
func (c *Canvas) Image() *image.RGBA {
	return c.dc.Image().(*image.RGBA)
}

// paint fills and then outlines the current path. A nil fill or outline
// skips that step.
func (c *Canvas) paint(fill, outline color.Color, width float64) {
	if fill != nil {
		c.dc.SetColor(fill)
		if outline != nil {
			c.dc.FillPreserve()
		} else {
			c.dc.Fill()
		}
	}
	if outline != nil {
		c.dc.SetColor(outline)
		c.dc.SetLineWidth(width)
		c.dc.Stroke()
	}
	c.dc.ClearPath()
}

// Ellipse draws the ellipse inscribed in the box (x0,y0)-(x1,y1).
func (c *Canvas) Ellipse(x0, y0, x1, y1 float64, fill, outline color.Color, width float64) {
	c.dc.DrawEllipse((x0+x1)/2, (y0+y1)/2, (x1-x0)/2, (y1-y0)/2)
	c.paint(fill, outline, width)
}

// Rect draws the rectangle with corners (x0,y0) and (x1,y1).
func (c *Canvas) Rect(x0, y0, x1, y1 float64, fill, outline color.Color, width float64) {
	c.dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
	c.paint(fill, outline, width)
}

// RoundedRect draws a rectangle with rounded corners of the given radius.
func (c *Canvas) RoundedRect(x0, y0, x1, y1, radius float64, fill, outline color.Color, width float64) {
	c.dc.DrawRoundedRectangle(x0, y0, x1-x0, y1-y0, radius)
	c.paint(fill, outline, width)
}

// Polygon draws a closed polygon through pts.
func (c *Canvas) Polygon(pts []gg.Point, fill, outline color.Color, width float64) {
	if len(pts) == 0 {
		return
	}
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	c.dc.ClosePath()
	c.paint(fill, outline, width)
}

// Line strokes a straight segment.
func (c *Canvas) Line(x0, y0, x1, y1 float64, col color.Color, width float64) {
	c.dc.DrawLine(x0, y0, x1, y1)
	c.paint(nil, col, width)
}

// DrawImage composites img with its top-left corner at (x, y).
func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

// Cursors tracks, per day column, the y coordinate where the next event goes.
// Values only ever grow within a render.
type Cursors struct {
	y []int
}

// NewCursors returns cursors for n columns, all starting at baseline.
func NewCursors(n, baseline int) *Cursors {
	c := &Cursors{y: make([]int, n)}
	for i := range c.y {
		c.y[i] = baseline
	}
	return c
}

// Y returns the current cursor of column col.
func (c *Cursors) Y(col int) int {
	return c.y[col]
}

// Advance moves column col down by dy. Negative dy is ignored.
func (c *Cursors) Advance(col, dy int) {
	if dy > 0 {
		c.y[col] += dy
	}
}
