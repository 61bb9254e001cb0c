package pinboard

import (
	"slices"
	"time"
)

// DefaultFrameDuration is the time an Injector advances after each frame.
const DefaultFrameDuration = time.Second / 60

// injectedFrame is one queued frame: either a full pointer batch followed by
// dt of elapsed time, or (wait) elapsed time only.
type injectedFrame struct {
	pointers []Pointer
	dt       time.Duration
	wait     bool
}

// Injector queues synthetic pointer input in screen coordinates, exactly as a
// platform adapter would deliver it, and replays it one frame at a time
// against a Board. Every queued frame carries the complete set of pressed
// pointers.
type Injector struct {
	frames  []injectedFrame
	held    map[int]Vec2
	frameDT time.Duration
}

// NewInjector creates an Injector that advances frameDT after every batch.
// A non-positive frameDT uses DefaultFrameDuration.
func NewInjector(frameDT time.Duration) *Injector {
	if frameDT <= 0 {
		frameDT = DefaultFrameDuration
	}
	return &Injector{
		held:    make(map[int]Vec2),
		frameDT: frameDT,
	}
}

// Pending returns the number of queued frames.
func (in *Injector) Pending() int {
	return len(in.frames)
}

// Press queues a frame where pointer id goes down at (x, y).
func (in *Injector) Press(id int, x, y float64) {
	in.held[id] = Vec2{x, y}
	in.pushBatch()
}

// Move queues a frame where pointer id moves to (x, y). Moving a pointer that
// is not held presses it.
func (in *Injector) Move(id int, x, y float64) {
	in.held[id] = Vec2{x, y}
	in.pushBatch()
}

// Release queues a frame without pointer id.
func (in *Injector) Release(id int) {
	delete(in.held, id)
	in.pushBatch()
}

// Click queues a press and release of pointer 0 at the same point.
func (in *Injector) Click(x, y float64) {
	in.Press(0, x, y)
	in.Release(0)
}

// Wait queues d of elapsed time with no input.
func (in *Injector) Wait(d time.Duration) {
	if d <= 0 {
		return
	}
	in.frames = append(in.frames, injectedFrame{dt: d, wait: true})
}

// Drag queues a full single-pointer drag: press at from, frames-2 linearly
// interpolated moves, and release at to. Minimum frames is 2.
func (in *Injector) Drag(from, to Vec2, frames int) {
	in.drag(from, to, frames, 0)
}

// HoldDrag is Drag with a stationary hold before the first move, long enough
// to start an item drag when hold exceeds the long-press duration.
func (in *Injector) HoldDrag(from, to Vec2, hold time.Duration, frames int) {
	in.drag(from, to, frames, hold)
}

func (in *Injector) drag(from, to Vec2, frames int, hold time.Duration) {
	if frames < 2 {
		frames = 2
	}
	in.Press(0, from.X, from.Y)
	in.Wait(hold)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		in.Move(0, from.X+(to.X-from.X)*t, from.Y+(to.Y-from.Y)*t)
	}
	in.Move(0, to.X, to.Y)
	in.Release(0)
}

// Pinch queues a two-finger pinch around center. The fingers sit on a
// horizontal line fromSpread apart and end toSpread apart after frames moves.
// Both fingers go down in one batch and are released in one batch.
func (in *Injector) Pinch(center Vec2, fromSpread, toSpread float64, frames int) {
	if frames < 1 {
		frames = 1
	}
	place := func(spread float64) {
		in.held[0] = Vec2{center.X - spread/2, center.Y}
		in.held[1] = Vec2{center.X + spread/2, center.Y}
	}
	place(fromSpread)
	in.pushBatch()
	for i := 1; i <= frames; i++ {
		t := float64(i) / float64(frames)
		place(fromSpread + (toSpread-fromSpread)*t)
		in.pushBatch()
	}
	delete(in.held, 0)
	delete(in.held, 1)
	in.pushBatch()
}

func (in *Injector) pushBatch() {
	batch := make([]Pointer, 0, len(in.held))
	for id, pos := range in.held {
		batch = append(batch, Pointer{ID: id, Position: pos})
	}
	slices.SortFunc(batch, func(a, b Pointer) int { return a.ID - b.ID })
	in.frames = append(in.frames, injectedFrame{pointers: batch, dt: in.frameDT})
}

// Step replays one queued frame against b and returns the actions it
// produced. ok is false when the queue was empty.
func (in *Injector) Step(b *Board) (actions []Action, ok bool) {
	if len(in.frames) == 0 {
		return nil, false
	}
	f := in.frames[0]
	copy(in.frames, in.frames[1:])
	in.frames = in.frames[:len(in.frames)-1]

	if !f.wait {
		actions = append(actions, b.HandlePointers(f.pointers)...)
	}
	actions = append(actions, b.Update(f.dt)...)
	return actions, true
}

// Flush replays every queued frame and returns all actions in order.
func (in *Injector) Flush(b *Board) []Action {
	var out []Action
	for {
		actions, ok := in.Step(b)
		if !ok {
			return out
		}
		out = append(out, actions...)
	}
}
