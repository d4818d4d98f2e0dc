// Package convert packs rendered pages into the raw 1bpp planes taken by
// tri-colour e-paper panels.
package convert

import (
	"image"
	"image/color"
)

// Stride returns the bytes per packed row for a page width.
func Stride(width int) int {
	return (width + 7) / 8
}

// PackPlanes converts img into packed black and red planes.
//
// Each plane is row-major, MSB first:
//
//	byte = y*Stride(w) + x>>3
//	mask = 0x80 >> (x & 7)
//
// Bits start at 1 (white) and are cleared where ink is needed. Pixels with
// alpha below 128 stay white.
func PackPlanes(img image.Image) (black, red []byte) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := Stride(w)

	black = make([]byte, stride*h)
	red = make([]byte, stride*h)
	for i := range black {
		black[i] = 0xFF
		red[i] = 0xFF
	}

	for py := 0; py < h; py++ {
		for px := 0; px < w; px++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+px, b.Min.Y+py)).(color.NRGBA)
			if c.A < 128 {
				continue
			}
			idx := py*stride + px>>3
			mask := byte(0x80 >> (px & 7))
			switch classify(c) {
			case inkBlack:
				black[idx] &^= mask
			case inkRed:
				red[idx] &^= mask
			}
		}
	}
	return black, red
}

type ink int

const (
	inkWhite ink = iota
	inkBlack
	inkRed
)

// classify maps a pixel to a plane.
//
//   - luma Y = 0.299R + 0.587G + 0.114B below 64 is black
//   - R > 128 with R - max(G, B) > 32 is red
//   - anything else is white
func classify(c color.NRGBA) ink {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	if 0.299*r+0.587*g+0.114*b < 64 {
		return inkBlack
	}
	if r > 128 && r-max(g, b) > 32 {
		return inkRed
	}
	return inkWhite
}
