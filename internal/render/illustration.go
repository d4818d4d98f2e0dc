package render

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	// Decoders for illustration files.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	appLog "inkcal/internal/log"
)

const (
	illustrationX    = 120
	illustrationY    = 345
	illustrationSize = 180
	secondarySize    = 200
	secondaryMargin  = 220
)

// LoadImage decodes the image file at path and scales it to w×h, flattened
// onto white so the result has no transparency.
func LoadImage(path string, w, h int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst, nil
}

// drawIllustration pastes the primary illustration under the bubble. Load
// failures are written onto the page in red instead.
func drawIllustration(c *Canvas, path string) {
	img, err := LoadImage(path, illustrationSize, illustrationSize)
	switch {
	case err == nil:
		c.DrawImage(img, illustrationX, illustrationY)
	case path == "" || errors.Is(err, fs.ErrNotExist):
		appLog.Warn("illustration not found", "path", path)
		c.DrawText(RoleDescription, "Illustration not found", illustrationX, illustrationY, colRed)
	default:
		appLog.Warn("illustration not loadable", "path", path, "err", err)
		c.DrawText(RoleDescription, fmt.Sprintf("Error loading image: %v", err), illustrationX, illustrationY, colRed)
	}
}

// drawSecondary pastes the decorative image in the bottom-right corner.
// It is optional, so failures are only logged.
func drawSecondary(c *Canvas, path string) {
	if path == "" {
		return
	}
	img, err := LoadImage(path, secondarySize, secondarySize)
	if err != nil {
		appLog.Debug("secondary illustration skipped", "path", path, "err", err)
		return
	}
	c.DrawImage(img, c.Width()-secondaryMargin, c.Height()-secondaryMargin)
}
