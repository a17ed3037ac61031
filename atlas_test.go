package tiled

import (
	"errors"
	"image"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestBuildAtlas_TwoTilesets(t *testing.T) {
	first := gridTileset("first", 1, 4, 2, 8, 8)   // gids 1..8
	second := gridTileset("second", 9, 2, 2, 8, 8) // gids 9..12
	m := mustNewMap(t, 8, 8, 1, 1, []*Tileset{first, second}, nil)

	if got := m.TilesetForGID(9); got != second {
		t.Errorf("gid 9 owned by %v, want second", got)
	}
	if got := m.TilesetForGID(8); got != first {
		t.Errorf("gid 8 owned by %v, want first", got)
	}

	if b := m.AtlasEntry(9).Image.Bounds(); b != image.Rect(0, 0, 8, 8) {
		t.Errorf("gid 9 bounds = %v, want first tile of second", b)
	}
	if b := m.AtlasEntry(8).Image.Bounds(); b != image.Rect(24, 8, 32, 16) {
		t.Errorf("gid 8 bounds = %v, want last tile of first", b)
	}
	if m.AtlasEntry(0) != nil || m.AtlasEntry(13) != nil {
		t.Error("gids outside every tileset should have no entry")
	}
}

func TestBuildAtlas_SpacingAndMargin(t *testing.T) {
	ts := gridTileset("spaced", 1, 3, 2, 16, 16)
	ts.Spacing = 2
	ts.Margin = 1
	ts.Image = newTestImage(1+3*16+2*2+1, 1+2*16+2+1)
	m := mustNewMap(t, 16, 16, 1, 1, []*Tileset{ts}, nil)

	// Local tile 4 is column 1, row 1.
	want := image.Rect(1+18, 1+18, 1+18+16, 1+18+16)
	if got := m.AtlasEntry(5).Image.Bounds(); got != want {
		t.Errorf("tile 4 bounds = %v, want %v", got, want)
	}
}

func TestBuildAtlas_GapBetweenTilesets(t *testing.T) {
	a := gridTileset("a", 1, 2, 1, 8, 8)
	b := gridTileset("b", 10, 2, 1, 8, 8)
	m := mustNewMap(t, 8, 8, 1, 1, []*Tileset{a, b}, nil)

	for gid := uint32(3); gid < 10; gid++ {
		if m.AtlasEntry(gid) != nil {
			t.Errorf("gap gid %d has an entry", gid)
		}
	}
	if m.TilesetForGID(11) != b {
		t.Error("gid 11 should belong to b")
	}
}

func TestBuildAtlas_Overlap(t *testing.T) {
	a := gridTileset("a", 1, 4, 1, 8, 8)
	b := gridTileset("b", 3, 4, 1, 8, 8)
	_, err := NewMap(8, 8, 1, 1, []*Tileset{a, b}, nil)
	if !errors.Is(err, ErrOverlappingTilesets) {
		t.Fatalf("err = %v, want ErrOverlappingTilesets", err)
	}
}

func TestBuildAtlas_ZeroFirstGID(t *testing.T) {
	ts := gridTileset("zero", 0, 2, 1, 8, 8)
	if _, err := NewMap(8, 8, 1, 1, []*Tileset{ts}, nil); err == nil {
		t.Fatal("expected an error for firstgid 0")
	}
}

func TestBuildAtlas_RangeWrapsFlagBits(t *testing.T) {
	ts := &Tileset{FirstGID: 4294967295, Name: "wrap", TileCount: 2}
	if _, err := NewMap(8, 8, 1, 1, []*Tileset{ts}, nil); !errors.Is(err, ErrInvalidMap) {
		t.Fatalf("err = %v, want ErrInvalidMap", err)
	}

	ts = &Tileset{FirstGID: ClearFlags(^uint32(0)), Name: "edge", TileCount: 2}
	if _, err := NewMap(8, 8, 1, 1, []*Tileset{ts}, nil); !errors.Is(err, ErrInvalidMap) {
		t.Fatalf("err = %v, want ErrInvalidMap", err)
	}
}

func TestBuildAtlas_LargeFirstGID(t *testing.T) {
	ts := &Tileset{FirstGID: 0x0FFFFFF0, Name: "high", TileCount: 4}
	m := mustNewMap(t, 8, 8, 1, 1, []*Tileset{ts}, nil)
	if len(m.atlas) != 4 {
		t.Errorf("atlas length = %d, want 4", len(m.atlas))
	}
	if m.TilesetForGID(0x0FFFFFF3) != ts || m.TilesetForGID(0x0FFFFFEF) != nil || m.TilesetForGID(1) != nil {
		t.Error("lookups around an offset atlas are wrong")
	}

	low := &Tileset{FirstGID: 1, Name: "low", TileCount: 4}
	if _, err := NewMap(8, 8, 1, 1, []*Tileset{low, ts}, nil); !errors.Is(err, ErrInvalidMap) {
		t.Fatalf("err = %v, want ErrInvalidMap for a huge gap", err)
	}
}

func TestBuildAtlas_TooManyTiles(t *testing.T) {
	ts := &Tileset{FirstGID: 1, Name: "huge", TileCount: maxAtlasTiles + 1}
	if _, err := NewMap(8, 8, 1, 1, []*Tileset{ts}, nil); !errors.Is(err, ErrInvalidMap) {
		t.Fatalf("err = %v, want ErrInvalidMap", err)
	}
}

func TestLoadFromMemory_WrappingFirstGID(t *testing.T) {
	data := []byte(`{"type":"map","width":1,"height":1,"tilewidth":8,"tileheight":8,
		"tilesets":[{"firstgid":4294967295,"name":"wrap","tilecount":2,"tilewidth":8,"tileheight":8}],
		"layers":[{"type":"tilelayer","name":"l","width":1,"height":1,"data":[0]}]}`)
	m, err := LoadFromMemory(data, "")
	if err == nil || m != nil {
		t.Fatalf("LoadFromMemory = %v, %v; want an error", m, err)
	}
}

func TestBuildAtlas_MissingImage(t *testing.T) {
	ts := gridTileset("broken", 1, 2, 2, 8, 8)
	ts.Image = nil
	m := mustNewMap(t, 8, 8, 2, 2, []*Tileset{ts}, []*Layer{tileLayer("ground", 2, 2, []uint32{1, 2, 3, 4})})

	e := m.AtlasEntry(1)
	if e == nil || e.Tileset != ts {
		t.Fatal("entry should exist and keep its tileset")
	}
	if e.Image != nil {
		t.Error("entry without tileset image should have a nil view")
	}

	dst := newRecordingTarget(16, 16)
	m.Draw(dst, 0, 0, ColorWhite)
	if len(dst.calls) != 0 {
		t.Errorf("draw calls = %d, want 0", len(dst.calls))
	}
}

func TestBuildAtlas_ImageCollection(t *testing.T) {
	ts := &Tileset{
		FirstGID: 1,
		Name:     "props",
		Tiles: []TileDescriptor{
			{ID: 0, ImageWidth: 16, ImageHeight: 32, Image: newTestImage(16, 32)},
			{ID: 2, ImageWidth: 8, ImageHeight: 8, Image: newTestImage(8, 8)},
		},
		TileCount: 3,
	}
	m := mustNewMap(t, 8, 8, 1, 1, []*Tileset{ts}, nil)

	if m.AtlasEntry(1).Image != ts.Tiles[0].Image {
		t.Error("gid 1 should use tile 0's own image")
	}
	if m.AtlasEntry(2).Image != nil {
		t.Error("gid 2 has no descriptor and should have no image")
	}
	if m.AtlasEntry(3).Image != ts.Tiles[1].Image {
		t.Error("gid 3 should use tile 2's own image")
	}
	if m.maxTileW != 16 || m.maxTileH != 32 {
		t.Errorf("max tile size = %dx%d, want 16x32", m.maxTileW, m.maxTileH)
	}
}

func TestProperty_AtlasOwnership(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("every gid resolves to the tileset whose range holds it", prop.ForAll(
		func(countA, gap, countB int) bool {
			a := &Tileset{FirstGID: 1, Name: "a", TileCount: countA}
			b := &Tileset{FirstGID: uint32(1 + countA + gap), Name: "b", TileCount: countB}
			m, err := NewMap(8, 8, 1, 1, []*Tileset{a, b}, nil)
			if err != nil {
				return false
			}
			last := b.FirstGID + uint32(countB) - 1
			for gid := uint32(1); gid <= last+1; gid++ {
				var want *Tileset
				switch {
				case a.ContainsGID(gid):
					want = a
				case b.ContainsGID(gid):
					want = b
				}
				if m.TilesetForGID(gid) != want {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 64),
		gen.IntRange(0, 16),
		gen.IntRange(1, 64),
	))
	properties.TestingRun(t)
}
