// Package ecs provides ECS adapters for pinboard's action stream.
//
// The primary adapter is [NewDonburiSink], which bridges every action a
// board applies (pan, zoom, drag preview, drag commit, tap) into a [Donburi]
// world as typed events. Subscribe to [ActionEventType] in your ECS systems
// to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	board.SetActionSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
