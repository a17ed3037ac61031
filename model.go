package tiled

import "github.com/hajimehoshi/ebiten/v2"

// AnimFrame describes a single frame in a tile animation sequence.
type AnimFrame struct {
	TileID   uint32 // local tile id within the owning tileset
	Duration int    // milliseconds
}

// TileDescriptor holds per-tile metadata declared by a tileset.
type TileDescriptor struct {
	ID          uint32 // local tile id
	Class       string
	Probability float64
	Animation   []AnimFrame
	Properties  Properties

	// Image-collection tilesets give every tile its own image.
	ImagePath   string
	ImageWidth  int
	ImageHeight int
	Image       *ebiten.Image

	// Collision is the tile's object group of collision shapes, if any.
	Collision *Layer
}

// Tileset is a named image-backed tile source contributing the gid range
// [FirstGID, FirstGID+TileCount).
type Tileset struct {
	FirstGID   uint32
	Name       string
	Class      string
	Columns    int
	TileWidth  int
	TileHeight int
	Spacing    int
	Margin     int
	TileCount  int

	ImagePath   string
	ImageWidth  int
	ImageHeight int
	Image       *ebiten.Image

	// TransparentColor, when set, is keyed out of the tileset image at load.
	TransparentColor *Color

	// TileOffset shifts every tile of the set when drawn.
	TileOffset Vec2

	Tiles      []TileDescriptor
	Properties Properties

	// Source is the external tileset path as declared by the map. It is
	// cleared once the external definition has been inlined.
	Source string

	// dir is the directory image paths are resolved against.
	dir string
}

// ContainsGID reports whether the clean gid falls inside the tileset's range.
func (ts *Tileset) ContainsGID(gid uint32) bool {
	if ts == nil || gid == 0 || ts.TileCount <= 0 {
		return false
	}
	gid = ClearFlags(gid)
	return gid >= ts.FirstGID && gid < ts.FirstGID+uint32(ts.TileCount)
}

// IsCollection reports whether the tileset is a collection of per-tile images
// instead of a single sliced image.
func (ts *Tileset) IsCollection() bool {
	return ts.Columns == 0 && ts.ImagePath == "" && ts.Source == ""
}

// Descriptor returns the descriptor for the local tile id, or nil.
// Descriptors are found by linear scan; tile descriptor lists are small.
func (ts *Tileset) Descriptor(id uint32) *TileDescriptor {
	if ts == nil {
		return nil
	}
	for i := range ts.Tiles {
		if ts.Tiles[i].ID == id {
			return &ts.Tiles[i]
		}
	}
	return nil
}

// Layer is one node of the layer tree. Kind selects which of the
// kind-specific fields are meaningful.
type Layer struct {
	Kind    LayerKind
	ID      int
	Name    string
	Class   string
	Visible bool
	Opacity float64
	OffsetX float64
	OffsetY float64

	// TintColor multiplies everything drawn by the layer and its children.
	TintColor *Color

	Properties Properties

	// LayerTile: Width*Height raw gids, row-major, flag bits included.
	Width  int
	Height int
	Data   []uint32

	// LayerObject
	Objects   []*Object
	DrawOrder string

	// LayerImage
	ImagePath        string
	Image            *ebiten.Image
	TransparentColor *Color
	RepeatX          bool
	RepeatY          bool

	// LayerGroup
	Layers []*Layer
}

// Object is a positioned entity on an object layer. For tile objects
// (GID != 0) Y is the bottom edge of the object.
type Object struct {
	ID       int
	Name     string
	Class    string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64 // degrees, clockwise
	GID      uint32  // 0 means no tile; flag bits allowed
	Visible  bool

	Ellipse  bool
	Point    bool
	Polygon  []Vec2
	Polyline []Vec2

	Properties Properties
}

// Bounds returns the object's axis-aligned rectangle, ignoring rotation.
// Tile objects are converted from their bottom-left anchor.
func (o *Object) Bounds() Rect {
	if o == nil {
		return Rect{}
	}
	if o.GID != 0 {
		return Rect{X: o.X, Y: o.Y - o.Height, Width: o.Width, Height: o.Height}
	}
	return Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}
