package tiled

import (
	"log"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// maxGroupDepth bounds group recursion so a malformed tree cannot recurse
// without limit.
const maxGroupDepth = 64

// drawState is the accumulated position, tint and depth handed down the
// layer tree. It is passed by value and never mutated in place.
type drawState struct {
	x, y  float64
	tint  Color
	depth int
}

// Draw composites every layer of the map into dst with the map origin at
// (x, y). Layers draw in document order; later layers cover earlier ones.
func (m *Map) Draw(dst DrawTarget, x, y float64, tint Color) {
	if !m.drawable(dst, tint) {
		return
	}
	m.drawCalls = 0
	m.drawLayers(dst, m.Layers, drawState{x: x, y: y, tint: tint})
}

// DrawLayer composites a single layer, including its children when it is a
// group. Only the layer's own offset and opacity apply; ancestors are not
// consulted.
func (m *Map) DrawLayer(dst DrawTarget, layer *Layer, x, y float64, tint Color) {
	if layer == nil || !m.drawable(dst, tint) {
		return
	}
	m.drawCalls = 0
	m.drawLayer(dst, layer, drawState{x: x, y: y, tint: tint})
}

// DrawTile draws the tile for gid with its top-left corner at (x, y).
// Flip flags in gid are honored and animated tiles draw their active frame.
// Gid 0 and tiles without an image draw nothing.
func (m *Map) DrawTile(dst DrawTarget, gid uint32, x, y float64, tint Color) {
	if !m.drawable(dst, tint) {
		return
	}
	img, _ := m.tileImage(gid)
	if img == nil {
		return
	}
	op := m.resetOp()
	applyFlips(&op.GeoM, Flags(gid), img)
	op.GeoM.Translate(x, y)
	m.submit(dst, img, op, tint)
}

func (m *Map) drawable(dst DrawTarget, tint Color) bool {
	if m == nil || m.unloaded || dst == nil || tint.A <= 0 {
		return false
	}
	if img, ok := dst.(*ebiten.Image); ok && img == nil {
		return false
	}
	return true
}

func (m *Map) drawLayers(dst DrawTarget, layers []*Layer, st drawState) {
	for _, l := range layers {
		m.drawLayer(dst, l, st)
	}
}

func (m *Map) drawLayer(dst DrawTarget, l *Layer, st drawState) {
	if l == nil || !l.Visible || l.Opacity <= 0 || l.Kind == LayerUnknown {
		return
	}

	// Fold this layer into the accumulator.
	st.x += l.OffsetX
	st.y += l.OffsetY
	if l.TintColor != nil {
		st.tint = st.tint.Mul(*l.TintColor)
	}
	if l.Opacity != 1 {
		st.tint.A *= l.Opacity
	}
	if st.tint.A <= 0 {
		return
	}

	switch l.Kind {
	case LayerTile:
		m.drawTileLayer(dst, l, st)
	case LayerGroup:
		if st.depth >= maxGroupDepth {
			if globalDebug {
				log.Printf("tiled: group %q exceeds depth %d, skipped", l.Name, maxGroupDepth)
			}
			return
		}
		st.depth++
		m.drawLayers(dst, l.Layers, st)
	case LayerObject:
		m.drawObjectLayer(dst, l, st)
	case LayerImage:
		m.drawImageLayer(dst, l, st)
	}
}

// drawTileLayer draws the grid row by row. Rows and columns whose cell lies
// entirely outside dst are skipped before any lookup; partial overlap is left
// to DrawImage clipping. Oversized tiles are bottom-aligned to their cell, so
// the cull rect is padded upward and rightward by the excess.
func (m *Map) drawTileLayer(dst DrawTarget, l *Layer, st drawState) {
	if l.Width <= 0 || len(l.Data) == 0 || m.TileWidth <= 0 || m.TileHeight <= 0 {
		return
	}
	rows := min(l.Height, len(l.Data)/l.Width)

	b := dst.Bounds()
	minX, minY := float64(b.Min.X), float64(b.Min.Y)
	maxX, maxY := float64(b.Max.X), float64(b.Max.Y)
	tw, th := float64(m.TileWidth), float64(m.TileHeight)
	padW := float64(m.maxTileW - m.TileWidth)
	padH := float64(m.maxTileH - m.TileHeight)

	for row := 0; row < rows; row++ {
		top := st.y + float64(row)*th
		if top-padH >= maxY {
			break
		}
		if top+th <= minY {
			continue
		}

		rowOffset := row * l.Width
		for col := 0; col < l.Width; col++ {
			left := st.x + float64(col)*tw
			if left >= maxX {
				break
			}
			if left+tw+padW <= minX {
				continue
			}

			gid := l.Data[rowOffset+col]
			if gid == 0 {
				continue
			}
			m.drawGridTile(dst, gid, left, top, st.tint)
		}
	}
}

// drawGridTile draws a cell's tile top-left anchored to the cell, or
// bottom-aligned when the tile is taller than the grid.
func (m *Map) drawGridTile(dst DrawTarget, gid uint32, left, top float64, tint Color) {
	img, ts := m.tileImage(gid)
	if img == nil {
		return
	}
	op := m.resetOp()
	_, h := applyFlips(&op.GeoM, Flags(gid), img)
	op.GeoM.Translate(
		left+ts.TileOffset.X,
		top+float64(m.TileHeight)-h+ts.TileOffset.Y,
	)
	m.submit(dst, img, op, tint)
}

// drawObjectLayer draws the tile objects of l in document order. A tile
// object's (X, Y) is its bottom-left corner; the tile is stretched to the
// object's size and rotated about that corner.
func (m *Map) drawObjectLayer(dst DrawTarget, l *Layer, st drawState) {
	for _, o := range l.Objects {
		if o == nil || !o.Visible || o.GID == 0 {
			continue
		}
		img, ts := m.tileImage(o.GID)
		if img == nil {
			continue
		}

		op := m.resetOp()
		w, h := applyFlips(&op.GeoM, Flags(o.GID), img)
		if o.Width > 0 && o.Height > 0 && (o.Width != w || o.Height != h) {
			op.GeoM.Scale(o.Width/w, o.Height/h)
			w, h = o.Width, o.Height
		}
		op.GeoM.Translate(ts.TileOffset.X, ts.TileOffset.Y-h)
		if o.Rotation != 0 {
			op.GeoM.Rotate(o.Rotation * math.Pi / 180)
		} else if !overlaps(dst, st.x+o.X, st.y+o.Y-h, w, h) {
			continue
		}
		op.GeoM.Translate(st.x+o.X, st.y+o.Y)
		m.submit(dst, img, op, st.tint)
	}
}

// drawImageLayer draws the layer image at the accumulated offset, repeating
// it across dst on the axes that request it.
func (m *Map) drawImageLayer(dst DrawTarget, l *Layer, st drawState) {
	if l.Image == nil {
		return
	}
	ib := l.Image.Bounds()
	w, h := float64(ib.Dx()), float64(ib.Dy())
	if w <= 0 || h <= 0 {
		return
	}

	b := dst.Bounds()
	startX, endX := st.x, st.x+w
	if l.RepeatX {
		startX = st.x - math.Ceil((st.x-float64(b.Min.X))/w)*w
		endX = float64(b.Max.X)
	}
	startY, endY := st.y, st.y+h
	if l.RepeatY {
		startY = st.y - math.Ceil((st.y-float64(b.Min.Y))/h)*h
		endY = float64(b.Max.Y)
	}

	for y := startY; y < endY; y += h {
		for x := startX; x < endX; x += w {
			op := m.resetOp()
			op.GeoM.Translate(x, y)
			m.submit(dst, l.Image, op, st.tint)
		}
	}
}

// tileImage resolves gid (flags ignored) through the atlas and the animation
// clock. It returns nil when there is nothing to draw.
func (m *Map) tileImage(gid uint32) (*ebiten.Image, *Tileset) {
	id := ClearFlags(gid)
	e := m.entry(id)
	if e == nil {
		return nil, nil
	}
	if e.Animated() {
		if f := m.entry(resolveFrame(e, id, m.clock.Milliseconds())); f != nil {
			e = f
		}
	}
	if e.Image == nil {
		return nil, nil
	}
	return e.Image, e.Tileset
}

// applyFlips composes the gid flip flags onto g for an image of the given
// size and returns the drawn width and height. The diagonal flip transposes
// first, then the horizontal and vertical mirrors apply on the transposed
// size. D+H turns 90° clockwise, D+V 90° counter-clockwise.
func applyFlips(g *ebiten.GeoM, flags uint32, img *ebiten.Image) (w, h float64) {
	b := img.Bounds()
	w, h = float64(b.Dx()), float64(b.Dy())
	if flags&FlipDiagonal != 0 {
		g.SetElement(0, 0, 0)
		g.SetElement(0, 1, 1)
		g.SetElement(1, 0, 1)
		g.SetElement(1, 1, 0)
		w, h = h, w
	}
	if flags&FlipHorizontal != 0 {
		g.Scale(-1, 1)
		g.Translate(w, 0)
	}
	if flags&FlipVertical != 0 {
		g.Scale(1, -1)
		g.Translate(0, h)
	}
	return w, h
}

// resetOp returns the map's reusable draw options, cleared. Maps are
// single-threaded so one value suffices.
func (m *Map) resetOp() *ebiten.DrawImageOptions {
	m.op.GeoM.Reset()
	m.op.ColorScale.Reset()
	return &m.op
}

// submit applies the tint, premultiplied, and issues the draw call.
func (m *Map) submit(dst DrawTarget, img *ebiten.Image, op *ebiten.DrawImageOptions, tint Color) {
	if tint != ColorWhite {
		a := float32(tint.A)
		op.ColorScale.Scale(float32(tint.R)*a, float32(tint.G)*a, float32(tint.B)*a, a)
	}
	dst.DrawImage(img, op)
	m.drawCalls++
}

func overlaps(dst DrawTarget, x, y, w, h float64) bool {
	b := dst.Bounds()
	return x < float64(b.Max.X) && x+w > float64(b.Min.X) &&
		y < float64(b.Max.Y) && y+h > float64(b.Min.Y)
}
