// Package pinboard is the interaction engine behind an infinite, zoomable
// board of movable rectangles, rendered with [Ebitengine].
//
// The engine maps screen space to board space with a uniform scale plus
// translation ([Transform]), narrows hit tests with a uniform grid
// ([SpatialIndex]), computes fit, reset and pivot zooms for the viewport, and
// turns raw pointer batches into semantic actions with a gesture state
// machine ([GestureMachine]).
//
// # Quick start
//
// [Board] wires every piece together. Feed it one pointer batch and one
// Update per frame:
//
//	board := pinboard.NewBoard(items, pinboard.WithViewport(pinboard.Size{Width: 1280, Height: 720}))
//	input := pinboard.NewEbitenInput()
//
//	func (g *Game) Update() error {
//		input.Feed(g.board)
//		g.board.Update(time.Second / 60)
//		return nil
//	}
//
// Draw the items returned by [Board.VisibleItems], placing each with
// [ItemMatrix] (an ebiten GeoM built from it) or [ItemScreenRect]. While [Board.DragPreview] reports a drag, draw that item at
// the preview offset.
//
// # Gestures
//
// A press on an item waits for a long press before dragging it; moving past
// the touch slop first pans the board instead. A press on empty space pans.
// Two or more pointers pinch-zoom around their centroid and pan with it. A
// drag in progress is committed before a pinch takes over. Wheel input pans,
// or zooms around the cursor while Ctrl is held.
//
// The long-press timer is frame driven through [Board.Update]. Hosts without
// a frame loop can install a [WallTimer] and deliver its tokens with
// [Board.LongPressExpired]. Tokens from earlier sessions are discarded.
//
// # Tooling
//
// [Injector] queues synthetic pointer input and [LoadGestureScript] replays
// JSON5 gesture scripts, both against a real Board. Smart arrange (package
// arrange) proposes layouts through an OpenAI-compatible API, and package ecs
// publishes applied actions into a [Donburi] world.
//
// [NewMetrics] registers Prometheus collectors for batches, actions, items and
// scale; pass them with [WithMetrics]. [WatchBoard] reloads the YAML config
// when the file changes.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package pinboard
