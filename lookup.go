package tiled

import "math"

// Layer returns the first layer named name, searching depth-first through
// groups in document order. Returns nil if none matches.
func (m *Map) Layer(name string) *Layer {
	if m == nil {
		return nil
	}
	return findLayer(m.Layers, name)
}

func findLayer(layers []*Layer, name string) *Layer {
	for _, l := range layers {
		if l == nil {
			continue
		}
		if l.Name == name {
			return l
		}
		if l.Kind == LayerGroup {
			if found := findLayer(l.Layers, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// LayerAt returns the top-level layer at index i, or nil when out of range.
func (m *Map) LayerAt(i int) *Layer {
	if m == nil || i < 0 || i >= len(m.Layers) {
		return nil
	}
	return m.Layers[i]
}

// LayerCount returns the number of top-level layers.
func (m *Map) LayerCount() int {
	if m == nil {
		return 0
	}
	return len(m.Layers)
}

// Tileset returns the first tileset named name, or nil.
func (m *Map) Tileset(name string) *Tileset {
	if m == nil {
		return nil
	}
	for _, ts := range m.Tilesets {
		if ts != nil && ts.Name == name {
			return ts
		}
	}
	return nil
}

// TilesetForGID returns the tileset whose range holds gid (flags ignored).
func (m *Map) TilesetForGID(gid uint32) *Tileset {
	if e := m.AtlasEntry(gid); e != nil {
		return e.Tileset
	}
	return nil
}

// TileAt maps a pixel position, in map space, to the column and row of a
// cell in layer. The layer's offset is subtracted first. Positions left of
// or above the layer floor to negative cells. Returns -1, -1 for a nil map or
// layer or a map without a tile size.
func (m *Map) TileAt(layer *Layer, x, y float64) (col, row int) {
	if m == nil || layer == nil || m.TileWidth <= 0 || m.TileHeight <= 0 {
		return -1, -1
	}
	col = int(math.Floor((x - layer.OffsetX) / float64(m.TileWidth)))
	row = int(math.Floor((y - layer.OffsetY) / float64(m.TileHeight)))
	return col, row
}

// Object returns the first object in document order named exactly name.
func (l *Layer) Object(name string) *Object {
	if l == nil {
		return nil
	}
	for _, o := range l.Objects {
		if o != nil && o.Name == name {
			return o
		}
	}
	return nil
}

// ObjectByID returns the object with the given id, or nil.
func (l *Layer) ObjectByID(id int) *Object {
	if l == nil {
		return nil
	}
	for _, o := range l.Objects {
		if o != nil && o.ID == id {
			return o
		}
	}
	return nil
}

// ObjectsByClass returns every object whose class matches, in document order.
func (l *Layer) ObjectsByClass(class string) []*Object {
	if l == nil {
		return nil
	}
	var out []*Object
	for _, o := range l.Objects {
		if o != nil && o.Class == class {
			out = append(out, o)
		}
	}
	return out
}

// inGrid returns the data index of the cell, or -1 when outside the grid.
func (l *Layer) inGrid(col, row int) int {
	if l == nil || l.Kind != LayerTile || col < 0 || row < 0 || col >= l.Width || row >= l.Height {
		return -1
	}
	i := row*l.Width + col
	if i >= len(l.Data) {
		return -1
	}
	return i
}

// Tile returns the raw gid stored at the cell, flag bits included. Cells
// outside the grid, and non-tile layers, return 0.
func (l *Layer) Tile(col, row int) uint32 {
	i := l.inGrid(col, row)
	if i < 0 {
		return 0
	}
	return l.Data[i]
}

// TileID returns the gid at the cell with flag bits removed.
func (l *Layer) TileID(col, row int) uint32 {
	return ClearFlags(l.Tile(col, row))
}

// SetTile stores gid, flag bits included, at the cell. Cells outside the grid
// are ignored.
func (l *Layer) SetTile(col, row int, gid uint32) {
	i := l.inGrid(col, row)
	if i < 0 {
		return
	}
	l.Data[i] = gid
}

// Walk calls fn for every layer in document order, descending into groups
// before moving to the next sibling. Returning false stops the walk.
func (m *Map) Walk(fn func(l *Layer, depth int) bool) {
	if m == nil || fn == nil {
		return
	}
	walkLayers(m.Layers, 0, fn)
}

func walkLayers(layers []*Layer, depth int, fn func(*Layer, int) bool) bool {
	for _, l := range layers {
		if l == nil {
			continue
		}
		if !fn(l, depth) {
			return false
		}
		if l.Kind == LayerGroup && depth < maxGroupDepth {
			if !walkLayers(l.Layers, depth+1, fn) {
				return false
			}
		}
	}
	return true
}
