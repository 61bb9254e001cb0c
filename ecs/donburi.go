// Package ecs publishes board actions into ECS worlds.
package ecs

import (
	"github.com/phanxgames/pinboard"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ActionEventType is the Donburi event type for applied board actions.
// Subscribe to this in your ECS systems to receive pans, zooms, drags and taps.
var ActionEventType = events.NewEventType[pinboard.ActionEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an ActionSink backed by a Donburi world.
// Actions are published to ActionEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) pinboard.ActionSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitAction(event pinboard.ActionEvent) {
	ActionEventType.Publish(s.world, event)
}
