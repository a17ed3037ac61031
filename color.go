package tiled

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ColorFromTiled converts a packed Tiled color. Values above 0xFFFFFF carry
// alpha in the top byte (0xAARRGGBB); smaller values are opaque 0xRRGGBB.
func ColorFromTiled(c uint32) Color {
	a := uint8(0xFF)
	if c > 0xFFFFFF {
		a = uint8(c >> 24)
	}
	return colorFromBytes(uint8(c>>16), uint8(c>>8), uint8(c), a)
}

// ParseColor parses a Tiled color string: "#RRGGBB" or "#AARRGGBB". The
// leading '#' is optional.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("tiled: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("tiled: invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		return colorFromBytes(uint8(v>>16), uint8(v>>8), uint8(v), 0xFF), nil
	}
	return colorFromBytes(uint8(v>>16), uint8(v>>8), uint8(v), uint8(v>>24)), nil
}

func colorFromBytes(r, g, b, a uint8) Color {
	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

// Mul returns the component-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B, A: c.A * o.A}
}

// NRGBA converts c to a straight-alpha color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// RGBA implements color.Color so a Color can be passed to image.Fill.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// Hex formats c as "#AARRGGBB".
func (c Color) Hex() string {
	n := c.NRGBA()
	return fmt.Sprintf("#%02x%02x%02x%02x", n.A, n.R, n.G, n.B)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
