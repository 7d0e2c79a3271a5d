// Package ecs bridges gridview gesture events into an ECS world.
//
// [DonburiSink] publishes every forwarded gesture to a [Donburi] world as a
// [gridview.GestureEvent], and additionally as typed [CellClick], [Zoom] and
// [CameraMove] events. Once attached it keeps a singleton entity with the
// [Camera] component in step with the engine's center and scale.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world, ecs.WithEventTypes(gridview.EventClick))
//	sink.Attach(engine)
//	ecs.CellClickEventType.Subscribe(world, onCellClick)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
