package render

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
)

// EncodeBMP writes img as an uncompressed 24-bit BMP, the format the panel
// firmware decodes.
func EncodeBMP(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}

// WriteFile atomically replaces path with img encoded as BMP. Readers see
// either the previous file or the complete new one.
func WriteFile(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".inkcal-image-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	bw := bufio.NewWriter(tmp)
	if err := EncodeBMP(bw, img); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode bmp: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp image: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp image: %w", err)
	}
	return nil
}
