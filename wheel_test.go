package pinboard

import (
	"math"
	"testing"
)

func TestWheelZoom(t *testing.T) {
	v := newTestView()
	g := NewGestureMachine(DefaultGestureConfig())

	acts := g.OnWheel(Vec2{300, 200}, Vec2{0, -1}, true, v)
	expectKinds(t, acts, ActionZoomTo)
	assertNear(t, "zoom in", acts[0].Scale, 1.1)
	assertVec(t, "pivot", acts[0].Pivot, Vec2{300, 200})

	acts = g.OnWheel(Vec2{300, 200}, Vec2{0, 2}, true, v)
	expectKinds(t, acts, ActionZoomTo)
	assertNear(t, "zoom out", acts[0].Scale, 1/(1.1*1.1))
}

func TestWheelZoomAtLimit(t *testing.T) {
	v := newTestView()
	v.t = Transform{Scale: ScaleMax}
	g := NewGestureMachine(DefaultGestureConfig())
	expectKinds(t, g.OnWheel(Vec2{}, Vec2{0, -1}, true, v))
}

func TestWheelPan(t *testing.T) {
	v := newTestView()
	g := NewGestureMachine(DefaultGestureConfig())
	acts := g.OnWheel(Vec2{10, 10}, Vec2{0.5, 1}, false, v)
	expectKinds(t, acts, ActionPanBy)
	assertVec(t, "pan", acts[0].Delta, Vec2{-20, -40})
}

func TestWheelIgnored(t *testing.T) {
	v := newTestView()
	g := NewGestureMachine(DefaultGestureConfig())
	tests := []struct {
		name       string
		pos, delta Vec2
	}{
		{"zero delta", Vec2{1, 1}, Vec2{}},
		{"nan position", Vec2{math.NaN(), 0}, Vec2{0, 1}},
		{"inf delta", Vec2{1, 1}, Vec2{0, math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectKinds(t, g.OnWheel(tt.pos, tt.delta, true, v))
		})
	}

	// A pointer gesture in progress owns the board.
	g.OnPointerBatch(pts(Vec2{10, 10}), v)
	expectKinds(t, g.OnWheel(Vec2{10, 10}, Vec2{0, 1}, false, v))
}

func TestArrowKeys(t *testing.T) {
	g := NewGestureMachine(GestureConfig{KeyPanStep: 25})
	tests := []struct {
		key  ArrowKey
		want Vec2
	}{
		{ArrowLeft, Vec2{-25, 0}},
		{ArrowUp, Vec2{0, -25}},
		{ArrowRight, Vec2{25, 0}},
		{ArrowDown, Vec2{0, 25}},
	}
	for _, tt := range tests {
		acts := g.OnArrowKey(tt.key)
		expectKinds(t, acts, ActionPanBy)
		assertVec(t, "key pan", acts[0].Delta, tt.want)
	}
	expectKinds(t, g.OnArrowKey(ArrowKey(42)))
}
