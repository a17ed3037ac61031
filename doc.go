// Package tiled loads maps made with the [Tiled] editor and draws them with
// [Ebitengine].
//
// A map is read from Tiled's JSON format together with the external
// tilesets and images it references. Every tile of every tileset is sliced
// into a sub-image once, at load, so drawing a cell is a single lookup by
// global tile id (gid).
//
// # Quick start
//
//	m, err := tiled.Load("maps/level1.tmj")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Unload()
//
//	func (g *Game) Update() error {
//		g.m.Update(1.0 / float64(ebiten.TPS()))
//		return nil
//	}
//
//	func (g *Game) Draw(screen *ebiten.Image) {
//		g.m.Draw(screen, -g.camX, -g.camY, tiled.ColorWhite)
//	}
//
// # Layers
//
// Layers are drawn in document order. Group layers pass their offset,
// opacity and tint color down to their children. Tile layer cells are
// anchored at their top-left corner; tile objects are anchored at their
// bottom-left corner, as Tiled places them.
//
// # Animation
//
// Each map has one millisecond clock, advanced by [Map.Update]. The clock
// wraps every [AnimationWrap] milliseconds, so animations whose full cycle is
// longer than that restart early.
//
// # Errors
//
// Load fails only when the map file itself cannot be read or decoded. A
// missing tileset image or image layer leaves that image nil and is recorded
// in [Map.LoadErrors]; set [LoadConfig.Strict] to fail instead. Query and draw
// methods accept a nil map or layer and do nothing.
//
// A Map is not safe for concurrent use.
//
// [Tiled]: https://www.mapeditor.org
// [Ebitengine]: https://ebitengine.org
package tiled
