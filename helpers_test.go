package tiled

import (
	"image"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// drawCall is one recorded DrawImage call.
type drawCall struct {
	img   *ebiten.Image
	geoM  ebiten.GeoM
	color ebiten.ColorScale
}

// recordingTarget is a DrawTarget that records draw calls instead of
// rendering them.
type recordingTarget struct {
	bounds image.Rectangle
	calls  []drawCall
}

func newRecordingTarget(w, h int) *recordingTarget {
	return &recordingTarget{bounds: image.Rect(0, 0, w, h)}
}

func (r *recordingTarget) Bounds() image.Rectangle { return r.bounds }

func (r *recordingTarget) DrawImage(img *ebiten.Image, op *ebiten.DrawImageOptions) {
	r.calls = append(r.calls, drawCall{img: img, geoM: op.GeoM, color: op.ColorScale})
}

// apply returns where the call maps the image's (x, y) pixel.
func (c drawCall) apply(x, y float64) (float64, float64) {
	return c.geoM.Apply(x, y)
}

// gridTileset returns a tileset whose image is cols x rows tiles of tw x th.
func gridTileset(name string, firstGID uint32, cols, rows, tw, th int) *Tileset {
	return &Tileset{
		FirstGID:    firstGID,
		Name:        name,
		Columns:     cols,
		TileWidth:   tw,
		TileHeight:  th,
		TileCount:   cols * rows,
		ImagePath:   name + ".png",
		ImageWidth:  cols * tw,
		ImageHeight: rows * th,
		Image:       ebiten.NewImage(cols*tw, rows*th),
	}
}

func tileLayer(name string, w, h int, data []uint32) *Layer {
	return &Layer{Kind: LayerTile, Name: name, Visible: true, Opacity: 1, Width: w, Height: h, Data: data}
}

func mustNewMap(t *testing.T, tw, th, w, h int, tilesets []*Tileset, layers []*Layer) *Map {
	t.Helper()
	m, err := NewMap(tw, th, w, h, tilesets, layers)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return m
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newTestImage(w, h int) *ebiten.Image {
	return ebiten.NewImage(w, h)
}
