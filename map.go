package tiled

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// Map is a loaded Tiled map: the layer tree, the tilesets and the atlas of
// tile images built from them.
//
// A Map is not safe for concurrent use. Call Update then Draw from the same
// goroutine each frame.
type Map struct {
	// Tile dimensions in pixels.
	TileWidth  int
	TileHeight int

	// Grid dimensions in tiles.
	Width  int
	Height int

	BackgroundColor Color
	Orientation     string
	RenderOrder     string
	Class           string
	Version         string
	TiledVersion    string

	Tilesets   []*Tileset
	Layers     []*Layer
	Properties Properties

	// LoadErrors lists the sub-resources (images, external tilesets) that
	// failed to load. The map is still usable; affected tiles draw nothing.
	LoadErrors []error

	// clock drives every tile animation of the map.
	clock AnimationClock

	// atlas is indexed by gid-atlasBase. Entries borrow tileset images.
	atlas     []AtlasEntry
	atlasBase uint32

	// Largest tile size of any tileset, used to pad layer culling.
	maxTileW int
	maxTileH int

	// op is reused for every draw call; drawCalls counts the last frame's.
	op        ebiten.DrawImageOptions
	drawCalls int

	dir      string
	unloaded bool
}

// Update advances the map's animation clock by dt seconds. It has no other
// side effects.
func (m *Map) Update(dt float64) {
	if m == nil {
		return
	}
	m.clock.Advance(dt)
}

// AnimationTime returns the animation clock in milliseconds.
func (m *Map) AnimationTime() int {
	if m == nil {
		return 0
	}
	return m.clock.Milliseconds()
}

// SetAnimationTime sets the animation clock, wrapped to [0, AnimationWrap).
func (m *Map) SetAnimationTime(ms int) {
	if m == nil {
		return
	}
	m.clock.Set(ms)
}

// PixelWidth returns the map width in pixels.
func (m *Map) PixelWidth() int {
	if m == nil {
		return 0
	}
	return m.Width * m.TileWidth
}

// PixelHeight returns the map height in pixels.
func (m *Map) PixelHeight() int {
	if m == nil {
		return 0
	}
	return m.Height * m.TileHeight
}

// IsUnloaded reports whether Unload has been called.
func (m *Map) IsUnloaded() bool {
	return m == nil || m.unloaded
}

// Unload releases the atlas and every image owned by the map. The atlas goes
// first because its entries are views into tileset images. Calling Unload
// more than once, or on a nil Map, is a no-op. Drawing an unloaded map draws
// nothing.
func (m *Map) Unload() {
	if m == nil || m.unloaded {
		return
	}
	m.unloaded = true
	m.atlas = nil

	for _, ts := range m.Tilesets {
		if ts == nil {
			continue
		}
		deallocate(&ts.Image)
		for i := range ts.Tiles {
			deallocate(&ts.Tiles[i].Image)
		}
	}
	unloadLayerImages(m.Layers)

	m.Tilesets = nil
	m.Layers = nil
	m.LoadErrors = nil

	if globalDebug {
		log.Printf("tiled: unloaded map (%s)", m.dir)
	}
}

func unloadLayerImages(layers []*Layer) {
	for _, l := range layers {
		if l == nil {
			continue
		}
		switch l.Kind {
		case LayerImage:
			deallocate(&l.Image)
		case LayerGroup:
			unloadLayerImages(l.Layers)
		}
	}
}

func deallocate(img **ebiten.Image) {
	if *img != nil {
		(*img).Deallocate()
		*img = nil
	}
}

// finalize builds the atlas and derived sizes once all resources are loaded.
func (m *Map) finalize() error {
	atlas, base, err := buildAtlas(m.Tilesets)
	if err != nil {
		return err
	}
	m.atlas, m.atlasBase = atlas, base
	m.maxTileW, m.maxTileH = m.TileWidth, m.TileHeight
	for _, ts := range m.Tilesets {
		if ts == nil {
			continue
		}
		m.maxTileW = max(m.maxTileW, ts.TileWidth)
		m.maxTileH = max(m.maxTileH, ts.TileHeight)
		for i := range ts.Tiles {
			m.maxTileW = max(m.maxTileW, ts.Tiles[i].ImageWidth)
			m.maxTileH = max(m.maxTileH, ts.Tiles[i].ImageHeight)
		}
	}
	m.clock = AnimationClock{}
	return nil
}

// NewMap builds a map from an already populated model: tilesets must have
// their images set. It is the entry point for maps constructed in code.
func NewMap(tileWidth, tileHeight, width, height int, tilesets []*Tileset, layers []*Layer) (*Map, error) {
	m := &Map{
		TileWidth:   tileWidth,
		TileHeight:  tileHeight,
		Width:       width,
		Height:      height,
		Orientation: "orthogonal",
		RenderOrder: "right-down",
		Tilesets:    tilesets,
		Layers:      layers,
	}
	if err := m.finalize(); err != nil {
		return nil, err
	}
	return m, nil
}
