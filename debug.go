package tiled

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/hajimehoshi/ebiten/v2"
)

// globalDebug enables diagnostic logging through the standard logger.
var globalDebug bool

// SetDebugMode turns diagnostic logging on or off for every map: failed
// sub-resources, out-of-bounds tiles and skipped groups are logged with a
// "tiled:" prefix.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// DebugMode reports whether diagnostic logging is on.
func DebugMode() bool {
	return globalDebug
}

// Stats summarizes a loaded map.
type Stats struct {
	Tilesets      int
	Layers        int // all layers, groups and their children included
	Objects       int
	Tiles         int // atlas entries backed by a tileset
	AnimatedTiles int
	ImageBytes    uint64 // RGBA bytes of every owned image
	DrawCalls     int    // draw calls issued by the last Draw or DrawLayer
	LoadErrors    int
}

// String formats the stats on one line.
func (s Stats) String() string {
	return fmt.Sprintf("tilesets: %d | layers: %d | objects: %d | tiles: %d (%d animated) | images: %s | draw calls: %d | load errors: %d",
		s.Tilesets, s.Layers, s.Objects, s.Tiles, s.AnimatedTiles,
		humanize.Bytes(s.ImageBytes), s.DrawCalls, s.LoadErrors)
}

// Stats returns counters for the map. A nil or unloaded map reports zeros.
func (m *Map) Stats() Stats {
	var s Stats
	if m == nil || m.unloaded {
		return s
	}
	s.Tilesets = len(m.Tilesets)
	s.DrawCalls = m.drawCalls
	s.LoadErrors = len(m.LoadErrors)

	for i := range m.atlas {
		e := &m.atlas[i]
		if e.Tileset == nil {
			continue
		}
		s.Tiles++
		if e.Animated() {
			s.AnimatedTiles++
		}
	}
	for _, ts := range m.Tilesets {
		s.ImageBytes += imageBytes(ts.Image)
		for i := range ts.Tiles {
			s.ImageBytes += imageBytes(ts.Tiles[i].Image)
		}
	}
	m.Walk(func(l *Layer, _ int) bool {
		s.Layers++
		s.Objects += len(l.Objects)
		if l.Kind == LayerImage {
			s.ImageBytes += imageBytes(l.Image)
		}
		return true
	})
	return s
}

func imageBytes(img *ebiten.Image) uint64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return uint64(b.Dx()) * uint64(b.Dy()) * 4
}

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// Dump writes a readable tree of the map (tilesets, layers, objects and
// their properties) to w.
func (m *Map) Dump(w io.Writer) error {
	if m == nil {
		_, err := io.WriteString(w, "map: <nil>\n")
		return err
	}
	d := &dumper{w: w}
	d.printf(0, "map %dx%d tiles of %dx%d px (%s, %s)", m.Width, m.Height, m.TileWidth, m.TileHeight, m.Orientation, m.RenderOrder)
	d.printf(1, "background: %s", m.BackgroundColor.Hex())
	d.properties(1, m.Properties)

	for _, ts := range m.Tilesets {
		d.printf(1, "tileset %q firstgid=%d tiles=%d columns=%d size=%dx%d image=%q",
			ts.Name, ts.FirstGID, ts.TileCount, ts.Columns, ts.TileWidth, ts.TileHeight, ts.ImagePath)
		d.properties(2, ts.Properties)
		for i := range ts.Tiles {
			t := &ts.Tiles[i]
			if len(t.Animation) == 0 && len(t.Properties) == 0 && t.Class == "" {
				continue
			}
			d.printf(2, "tile %d class=%q", t.ID, t.Class)
			if len(t.Animation) > 0 {
				total := 0
				for _, f := range t.Animation {
					total += f.Duration
				}
				cycle := durafmt.Parse(time.Duration(total) * time.Millisecond).LimitFirstN(2).Format(shortUnits)
				d.printf(3, "animation: %d frames, cycle %s", len(t.Animation), cycle)
			}
			d.properties(3, t.Properties)
		}
	}
	m.Walk(func(l *Layer, depth int) bool {
		d.layer(depth+1, l)
		return true
	})
	return d.err
}

type dumper struct {
	w   io.Writer
	err error
}

func (d *dumper) printf(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (d *dumper) properties(depth int, props Properties) {
	for _, p := range props {
		if sub, ok := p.Value.(Properties); ok {
			d.printf(depth, "%s (%s):", p.Name, p.Type)
			d.properties(depth+1, sub)
			continue
		}
		d.printf(depth, "%s (%s): %v", p.Name, p.Type, p.Value)
	}
}

func (d *dumper) layer(depth int, l *Layer) {
	d.printf(depth, "%s %q visible=%t opacity=%.2f offset=(%g,%g)",
		l.Kind, l.Name, l.Visible, l.Opacity, l.OffsetX, l.OffsetY)
	d.properties(depth+1, l.Properties)
	switch l.Kind {
	case LayerTile:
		d.printf(depth+1, "grid %dx%d", l.Width, l.Height)
	case LayerImage:
		d.printf(depth+1, "image %q loaded=%t", l.ImagePath, l.Image != nil)
	case LayerObject:
		for _, o := range l.Objects {
			d.printf(depth+1, "object %d %q class=%q at (%g,%g) size %gx%g gid=%d",
				o.ID, o.Name, o.Class, o.X, o.Y, o.Width, o.Height, o.GID)
			d.properties(depth+2, o.Properties)
		}
	}
}
