// Package ecs provides ECS adapters for tiled maps.
//
// [SpawnMapObjects] turns every object of a map's object layers into a
// [Donburi] entity carrying an [ObjectComponent]. [SetTile] changes a tile
// layer cell and publishes a [TileChanged] event so systems can react to
// edits (collision rebuilds, pathfinding caches).
//
// Usage:
//
//	world := donburi.NewWorld()
//	ecs.SpawnMapObjects(world, m)
//	ecs.TileChangedEventType.Subscribe(world, onTileChanged)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
