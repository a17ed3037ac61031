package tiled

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at draw time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorTransparent is fully transparent black.
var ColorTransparent = Color{}

// Vec2 is a 2D vector used for positions, offsets and polygon points.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// GID flag bits (Tiled global tile id convention).
const (
	FlipHorizontal uint32 = 1 << 31 // horizontal flip
	FlipVertical   uint32 = 1 << 30 // vertical flip
	FlipDiagonal   uint32 = 1 << 29 // diagonal flip (x/y transpose)
	RotateHex120   uint32 = 1 << 28 // hexagonal 120° rotation, stripped and ignored

	// FlagMask covers every flag bit stored in the top of a gid.
	FlagMask uint32 = FlipHorizontal | FlipVertical | FlipDiagonal | RotateHex120
)

// ClearFlags returns gid with all flag bits removed.
func ClearFlags(gid uint32) uint32 {
	return gid &^ FlagMask
}

// Flags returns only the flag bits of gid.
func Flags(gid uint32) uint32 {
	return gid & FlagMask
}

// LayerKind identifies which variant a Layer is. It is assigned once when the
// map is decoded.
type LayerKind uint8

const (
	LayerUnknown LayerKind = iota // unset or unrecognized type, never drawn
	LayerTile                     // "tilelayer": grid of gids
	LayerObject                   // "objectgroup": ordered objects
	LayerImage                    // "imagelayer": a single image
	LayerGroup                    // "group": child layers
)

// String returns the Tiled type string for the kind.
func (k LayerKind) String() string {
	switch k {
	case LayerTile:
		return "tilelayer"
	case LayerObject:
		return "objectgroup"
	case LayerImage:
		return "imagelayer"
	case LayerGroup:
		return "group"
	default:
		return "unknown"
	}
}

func layerKindFromString(s string) LayerKind {
	switch s {
	case "tilelayer":
		return LayerTile
	case "objectgroup":
		return LayerObject
	case "imagelayer":
		return LayerImage
	case "group":
		return LayerGroup
	default:
		return LayerUnknown
	}
}

// DrawTarget is anything a map can be composited into. *ebiten.Image
// satisfies it.
type DrawTarget interface {
	Bounds() image.Rectangle
	DrawImage(img *ebiten.Image, options *ebiten.DrawImageOptions)
}
