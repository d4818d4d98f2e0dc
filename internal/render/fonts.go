package render

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	appLog "inkcal/internal/log"
)

// FontRole names the logical use of a face on the page.
type FontRole string

const (
	RoleTitle       FontRole = "title"
	RoleDay         FontRole = "day"
	RoleTime        FontRole = "time"
	RoleEvent       FontRole = "event"
	RoleDescription FontRole = "description"
	RoleSpeech      FontRole = "speech"
	RoleWeather     FontRole = "weather"
)

type roleSpec struct {
	size float64
	bold bool
}

// Pixel sizes per role. Month header and event titles use the bold face.
var roleSpecs = map[FontRole]roleSpec{
	RoleTitle:       {size: 24, bold: true},
	RoleDay:         {size: 24},
	RoleTime:        {size: 14},
	RoleEvent:       {size: 14, bold: true},
	RoleDescription: {size: 10},
	RoleSpeech:      {size: 12},
	RoleWeather:     {size: 11},
}

// FontSource holds the raw font files a FontSet is built from.
type FontSource struct {
	Regular []byte
	Bold    []byte

	// Origin describes where the bytes came from, for logs and /status.
	Origin string
}

// BundledFonts returns the Go fonts compiled into the binary. They cover
// Latin-1 (æ, ø, å), the bullet and the ellipsis glyph.
func BundledFonts() FontSource {
	return FontSource{
		Regular: goregular.TTF,
		Bold:    gobold.TTF,
		Origin:  "bundled:go",
	}
}

// systemFontPaths are probed in order; regular and bold are picked by file
// name. Font collections (.ttc) are skipped since opentype.Parse does not
// read them.
var systemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/liberation/LiberationSans-Bold.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Bold.ttf",
	"/usr/share/fonts/noto/NotoSans-Regular.ttf",
	"/usr/share/fonts/noto/NotoSans-Bold.ttf",
}

func platformFontPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return append(systemFontPaths, "/System/Library/Fonts/Arial.ttf", "/System/Library/Fonts/ArialBold.ttf")
	case "windows":
		return append(systemFontPaths, "C:/Windows/Fonts/arial.ttf", "C:/Windows/Fonts/arialbd.ttf")
	default:
		return systemFontPaths
	}
}

func isBoldName(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return strings.Contains(name, "bold") || strings.Contains(name, "bd.")
}

// DiscoverFonts resolves the font files to use. Explicit paths win, then the
// first regular/bold pair found on the system, then the bundled Go fonts.
// If only one weight is found it is used for both.
func DiscoverFonts(regularPath, boldPath string) FontSource {
	regular, bold := readFont(regularPath), readFont(boldPath)

	if regular == nil && bold == nil {
		regularPath, boldPath = "", ""
		for _, p := range platformFontPaths() {
			switch {
			case isBoldName(p) && bold == nil:
				if bold = readFont(p); bold != nil {
					boldPath = p
				}
			case !isBoldName(p) && regular == nil:
				if regular = readFont(p); regular != nil {
					regularPath = p
				}
			}
		}
	}

	switch {
	case regular == nil && bold == nil:
		appLog.Info("no usable system fonts; using bundled Go fonts")
		return BundledFonts()
	case regular == nil:
		regular, regularPath = bold, boldPath
	case bold == nil:
		bold, boldPath = regular, regularPath
	}
	origin := regularPath + "," + boldPath
	appLog.Info("fonts resolved", "regular", regularPath, "bold", boldPath)
	return FontSource{Regular: regular, Bold: bold, Origin: origin}
}

func readFont(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		appLog.Debug("font not readable", "path", path, "err", err)
		return nil
	}
	if _, err := opentype.Parse(data); err != nil {
		appLog.Warn("font not parseable", "path", path, "err", err)
		return nil
	}
	return data
}

// FontSet maps every role to a face at its fixed pixel size. It is built
// once per render and only read afterwards.
type FontSet struct {
	faces  map[FontRole]font.Face
	ascent map[FontRole]float64
}

// NewFontSet parses src and creates one face per role.
func NewFontSet(src FontSource) (*FontSet, error) {
	regular, err := opentype.Parse(src.Regular)
	if err != nil {
		return nil, fmt.Errorf("render: parse regular font: %w", err)
	}
	bold, err := opentype.Parse(src.Bold)
	if err != nil {
		return nil, fmt.Errorf("render: parse bold font: %w", err)
	}

	fs := &FontSet{
		faces:  make(map[FontRole]font.Face, len(roleSpecs)),
		ascent: make(map[FontRole]float64, len(roleSpecs)),
	}
	for role, spec := range roleSpecs {
		f := regular
		if spec.bold {
			f = bold
		}
		// DPI 72 makes Size a pixel size.
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    spec.size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fs.Close()
			return nil, fmt.Errorf("render: face for %s: %w", role, err)
		}
		fs.faces[role] = face
		fs.ascent[role] = float64(face.Metrics().Ascent) / 64
	}
	return fs, nil
}

// Face returns the face for role; unknown roles get the event face.
func (fs *FontSet) Face(role FontRole) font.Face {
	if f, ok := fs.faces[role]; ok {
		return f
	}
	return fs.faces[RoleEvent]
}

// Ascent is the distance from the top of the line box to the baseline.
func (fs *FontSet) Ascent(role FontRole) float64 {
	if a, ok := fs.ascent[role]; ok {
		return a
	}
	return fs.ascent[RoleEvent]
}

// Measure implements Measurer.
func (fs *FontSet) Measure(role FontRole, s string) float64 {
	return float64(font.MeasureString(fs.Face(role), s)) / 64
}

func (fs *FontSet) Close() error {
	for _, f := range fs.faces {
		_ = f.Close()
	}
	return nil
}
