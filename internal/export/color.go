package export

import (
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// placeholderFill paints bitmaps in formats that do not embed assets.
const placeholderFill = "#c8c8c8"

// parsePaint parses a CSS hex color. Empty, "none" and "transparent" mean
// no paint.
func parsePaint(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "transparent":
		return colorful.Color{}, false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		slog.Debug("export: unparsable color", "color", s, "error", err)
		return colorful.Color{}, false
	}
	return c, true
}

// backgroundColor is the page background, white when unset.
func backgroundColor(s string) colorful.Color {
	if c, ok := parsePaint(s); ok {
		return c
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}

// flatten blends c over bg at the given opacity, for formats without alpha.
func flatten(bg, c colorful.Color, opacity float64) colorful.Color {
	return bg.BlendRgb(c, clamp01(opacity)).Clamped()
}

// nrgba converts c with opacity to an 8-bit color.
func nrgba(c colorful.Color, opacity float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(opacity) * 255))}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
