package ecs

import (
	"github.com/phanxgames/tiled"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// ObjectData is the component stored on entities spawned from map objects.
type ObjectData struct {
	Object *tiled.Object
	Layer  *tiled.Layer
}

// ObjectComponent holds the map object an entity was spawned from.
var ObjectComponent = donburi.NewComponentType[ObjectData]()

// TileChanged is published by SetTile when a cell's gid changes.
type TileChanged struct {
	Layer    *tiled.Layer
	Col, Row int
	Old, New uint32
}

// TileChangedEventType is the Donburi event type for tile edits. Subscribe to
// it and call ProcessEvents each frame.
var TileChangedEventType = events.NewEventType[TileChanged]()

var objectQuery = donburi.NewQuery(filter.Contains(ObjectComponent))

// SpawnObjects creates one entity per object of layer, in document order.
// Non-object layers spawn nothing.
func SpawnObjects(world donburi.World, layer *tiled.Layer) []donburi.Entity {
	if layer == nil || layer.Kind != tiled.LayerObject {
		return nil
	}
	entities := make([]donburi.Entity, 0, len(layer.Objects))
	for _, o := range layer.Objects {
		if o == nil {
			continue
		}
		e := world.Create(ObjectComponent)
		ObjectComponent.SetValue(world.Entry(e), ObjectData{Object: o, Layer: layer})
		entities = append(entities, e)
	}
	return entities
}

// SpawnMapObjects spawns the objects of every object layer in m, including
// those nested in groups.
func SpawnMapObjects(world donburi.World, m *tiled.Map) []donburi.Entity {
	var entities []donburi.Entity
	m.Walk(func(l *tiled.Layer, _ int) bool {
		if l.Kind == tiled.LayerObject {
			entities = append(entities, SpawnObjects(world, l)...)
		}
		return true
	})
	return entities
}

// FindObject returns the first spawned entry whose object is named name.
func FindObject(world donburi.World, name string) (*donburi.Entry, bool) {
	var found *donburi.Entry
	objectQuery.Each(world, func(entry *donburi.Entry) {
		if found == nil && ObjectComponent.Get(entry).Object.Name == name {
			found = entry
		}
	})
	return found, found != nil
}

// SetTile stores gid in the layer cell and publishes a TileChanged event when
// the value changed. Cells outside the grid are ignored.
func SetTile(world donburi.World, layer *tiled.Layer, col, row int, gid uint32) {
	if layer == nil || col < 0 || row < 0 || col >= layer.Width || row >= layer.Height {
		return
	}
	old := layer.Tile(col, row)
	layer.SetTile(col, row, gid)
	if old == gid || layer.Tile(col, row) != gid {
		return
	}
	TileChangedEventType.Publish(world, TileChanged{Layer: layer, Col: col, Row: row, Old: old, New: gid})
}
