package ecs

import (
	"testing"

	"github.com/phanxgames/tiled"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func testMap(t *testing.T) *tiled.Map {
	t.Helper()
	spawns := &tiled.Layer{
		Kind:    tiled.LayerObject,
		Name:    "spawns",
		Visible: true,
		Opacity: 1,
		Objects: []*tiled.Object{
			{ID: 1, Name: "player", Class: "spawn", X: 16, Y: 32, Visible: true},
			{ID: 2, Name: "chest", Class: "loot", X: 48, Y: 32, Visible: true},
		},
	}
	nested := &tiled.Layer{
		Kind:    tiled.LayerObject,
		Name:    "triggers",
		Visible: true,
		Opacity: 1,
		Objects: []*tiled.Object{
			{ID: 3, Name: "door", X: 0, Y: 0, Width: 16, Height: 16, Visible: true},
		},
	}
	group := &tiled.Layer{Kind: tiled.LayerGroup, Name: "logic", Visible: true, Opacity: 1, Layers: []*tiled.Layer{nested}}
	ground := &tiled.Layer{
		Kind: tiled.LayerTile, Name: "ground", Visible: true, Opacity: 1,
		Width: 2, Height: 2, Data: []uint32{1, 0, 0, 1},
	}
	m, err := tiled.NewMap(16, 16, 2, 2, nil, []*tiled.Layer{ground, spawns, group})
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	return m
}

func TestSpawnObjects(t *testing.T) {
	world := donburi.NewWorld()
	m := testMap(t)

	entities := SpawnObjects(world, m.Layer("spawns"))
	if len(entities) != 2 {
		t.Fatalf("spawned %d entities, want 2", len(entities))
	}
	data := ObjectComponent.Get(world.Entry(entities[0]))
	if data.Object.Name != "player" || data.Layer.Name != "spawns" {
		t.Errorf("entity 0 = %q on %q", data.Object.Name, data.Layer.Name)
	}
}

func TestSpawnObjects_NonObjectLayer(t *testing.T) {
	world := donburi.NewWorld()
	m := testMap(t)

	if got := SpawnObjects(world, m.Layer("ground")); got != nil {
		t.Errorf("tile layer spawned %d entities", len(got))
	}
	if got := SpawnObjects(world, nil); got != nil {
		t.Errorf("nil layer spawned %d entities", len(got))
	}
}

func TestSpawnMapObjects_IncludesGroups(t *testing.T) {
	world := donburi.NewWorld()
	m := testMap(t)

	entities := SpawnMapObjects(world, m)
	if len(entities) != 3 {
		t.Fatalf("spawned %d entities, want 3", len(entities))
	}
	if n := objectQuery.Count(world); n != 3 {
		t.Errorf("query count = %d, want 3", n)
	}

	entry, ok := FindObject(world, "door")
	if !ok {
		t.Fatal("door not found")
	}
	if got := ObjectComponent.Get(entry).Layer.Name; got != "triggers" {
		t.Errorf("door layer = %q, want triggers", got)
	}
	if _, ok := FindObject(world, "missing"); ok {
		t.Error("found an object that does not exist")
	}
}

func TestSetTile_PublishesChange(t *testing.T) {
	world := donburi.NewWorld()
	m := testMap(t)
	ground := m.Layer("ground")

	var received []TileChanged
	TileChangedEventType.Subscribe(world, func(w donburi.World, e TileChanged) {
		received = append(received, e)
	})

	SetTile(world, ground, 1, 0, 1|tiled.FlipHorizontal)
	SetTile(world, ground, 0, 0, 1) // unchanged
	SetTile(world, ground, 5, 5, 1) // outside the grid

	// Events are queued until processed.
	TileChangedEventType.ProcessEvents(world)

	if len(received) != 1 {
		t.Fatalf("received %d events, want 1", len(received))
	}
	e := received[0]
	if e.Col != 1 || e.Row != 0 || e.Old != 0 || e.New != 1|tiled.FlipHorizontal {
		t.Errorf("event = %+v", e)
	}
	if got := ground.Tile(1, 0); got != 1|tiled.FlipHorizontal {
		t.Errorf("Tile(1,0) = %#x", got)
	}
}

func TestSetTile_ProcessAllEvents(t *testing.T) {
	world := donburi.NewWorld()
	m := testMap(t)

	count := 0
	TileChangedEventType.Subscribe(world, func(w donburi.World, e TileChanged) {
		count++
	})
	SetTile(world, m.Layer("ground"), 0, 1, 0)
	events.ProcessAllEvents(world)

	if count != 1 {
		t.Errorf("received %d events, want 1", count)
	}
}
