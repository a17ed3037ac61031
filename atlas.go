package tiled

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// ErrOverlappingTilesets is returned when two tilesets of a map claim the
// same gid.
var ErrOverlappingTilesets = errors.New("tiled: tilesets have overlapping gid ranges")

// AtlasEntry is the renderable form of one gid: a view into the owning
// tileset's image plus the tile's animation data.
type AtlasEntry struct {
	// Image is a sub-image view that shares pixels with the tileset image.
	// Nil when the tileset image failed to load.
	Image *ebiten.Image

	Tileset    *Tileset
	Descriptor *TileDescriptor

	// AnimationDuration is the sum of all frame durations in milliseconds,
	// zero for static tiles.
	AnimationDuration int
}

// Animated reports whether the entry has animation frames.
func (e *AtlasEntry) Animated() bool {
	return e != nil && e.Descriptor != nil && len(e.Descriptor.Animation) > 0 && e.AnimationDuration > 0
}

const (
	// maxAtlasTiles bounds the tiles a map may declare across all tilesets.
	maxAtlasTiles = 1 << 22

	// maxAtlasGap bounds the unused gids the atlas may span between
	// tilesets.
	maxAtlasGap = 1 << 16
)

// buildAtlas flattens every tileset into a slice indexed by gid-base, where
// base is the lowest firstgid. The slice covers up to the highest gid of any
// tileset; indices between tilesets stay empty. Ranges are checked in 64-bit
// so a firstgid near the top of the gid space cannot wrap.
func buildAtlas(tilesets []*Tileset) (atlas []AtlasEntry, base uint32, err error) {
	var (
		lo, hi uint64 // lowest first and highest last gid
		total  uint64
	)
	for _, ts := range tilesets {
		if ts == nil || ts.TileCount <= 0 {
			continue
		}
		if ts.FirstGID == 0 {
			return nil, 0, fmt.Errorf("%w: tileset %q has firstgid 0", ErrInvalidMap, ts.Name)
		}
		first := uint64(ts.FirstGID)
		last := first + uint64(ts.TileCount) - 1
		if last > uint64(ClearFlags(^uint32(0))) {
			return nil, 0, fmt.Errorf("%w: tileset %q gids %d..%d exceed the flag bits",
				ErrInvalidMap, ts.Name, first, last)
		}
		if lo == 0 || first < lo {
			lo = first
		}
		hi = max(hi, last)
		total += uint64(ts.TileCount)
	}
	if total == 0 {
		return nil, 0, nil
	}
	if total > maxAtlasTiles {
		return nil, 0, fmt.Errorf("%w: %d tiles exceed the limit of %d", ErrInvalidMap, total, maxAtlasTiles)
	}
	if span := hi - lo + 1; span > total+maxAtlasGap {
		return nil, 0, fmt.Errorf("%w: gids %d..%d leave %d unused ids between tilesets",
			ErrInvalidMap, lo, hi, span-total)
	}

	base = uint32(lo)
	atlas = make([]AtlasEntry, hi-lo+1)
	for _, ts := range tilesets {
		if ts == nil || ts.TileCount <= 0 {
			continue
		}
		for i := 0; i < ts.TileCount; i++ {
			gid := ts.FirstGID + uint32(i)
			e := &atlas[gid-base]
			if e.Tileset != nil {
				return nil, 0, fmt.Errorf("%w: gid %d in %q and %q",
					ErrOverlappingTilesets, gid, e.Tileset.Name, ts.Name)
			}
			e.Tileset = ts
			e.Image = tileSubImage(ts, i)

			if d := ts.Descriptor(uint32(i)); d != nil {
				e.Descriptor = d
				for _, f := range d.Animation {
					e.AnimationDuration += f.Duration
				}
			}
		}
	}
	return atlas, base, nil
}

// tileSubImage returns the view for local tile index i, or nil when the
// backing image is missing.
func tileSubImage(ts *Tileset, i int) *ebiten.Image {
	if ts.IsCollection() {
		d := ts.Descriptor(uint32(i))
		if d == nil {
			return nil
		}
		return d.Image
	}
	if ts.Image == nil || ts.Columns <= 0 {
		return nil
	}

	col := i % ts.Columns
	row := i / ts.Columns
	x := col*(ts.TileWidth+ts.Spacing) + ts.Margin
	y := row*(ts.TileHeight+ts.Spacing) + ts.Margin
	r := image.Rect(x, y, x+ts.TileWidth, y+ts.TileHeight)

	b := ts.Image.Bounds()
	if !r.In(b) {
		if globalDebug {
			log.Printf("tiled: tile %d of %q lies outside its %dx%d image", i, ts.Name, b.Dx(), b.Dy())
		}
		r = r.Intersect(b)
		if r.Empty() {
			return nil
		}
	}
	return ts.Image.SubImage(r).(*ebiten.Image)
}

// entry returns the atlas entry for a clean gid, or nil when out of range.
func (m *Map) entry(gid uint32) *AtlasEntry {
	if gid == 0 || gid < m.atlasBase || uint64(gid-m.atlasBase) >= uint64(len(m.atlas)) {
		return nil
	}
	e := &m.atlas[gid-m.atlasBase]
	if e.Tileset == nil {
		return nil
	}
	return e
}

// AtlasEntry returns the atlas entry for gid with flag bits ignored, without
// applying animation. Returns nil for gid 0 and unknown gids.
func (m *Map) AtlasEntry(gid uint32) *AtlasEntry {
	if m == nil {
		return nil
	}
	return m.entry(ClearFlags(gid))
}

// ResolveGID returns the gid that is drawn for gid at the current animation
// time. Flag bits are stripped. Unknown gids resolve to themselves.
func (m *Map) ResolveGID(gid uint32) uint32 {
	if m == nil {
		return 0
	}
	gid = ClearFlags(gid)
	return resolveFrame(m.entry(gid), gid, m.clock.Milliseconds())
}

// TileImage returns the sub-image drawn for gid at the current animation
// time, or nil when there is nothing to draw.
func (m *Map) TileImage(gid uint32) *ebiten.Image {
	if m == nil {
		return nil
	}
	img, _ := m.tileImage(gid)
	return img
}
