package pinboard

import "math"

// ArrowKey identifies a keyboard arrow used for nudging the board.
type ArrowKey uint8

const (
	ArrowLeft ArrowKey = iota
	ArrowUp
	ArrowRight
	ArrowDown
)

// OnWheel handles one scroll-wheel sample at screen position pos. With
// zoomModifier held (Ctrl on desktop) the board zooms around pos; otherwise it
// pans opposite to the scroll direction. delta counts notches with positive Y
// meaning scroll down. Wheel input is ignored while a pointer gesture is in
// progress.
func (g *GestureMachine) OnWheel(pos, delta Vec2, zoomModifier bool, view View) []Action {
	g.buf = g.buf[:0]
	if g.state != StateIdle || !pos.finite() || !delta.finite() || delta.IsZero() {
		return g.buf
	}
	if zoomModifier {
		t := view.Transform().Sanitize()
		// Wheel up (negative Y) zooms in.
		factor := math.Pow(g.cfg.WheelZoomStep, -delta.Y)
		if s := ClampScale(t.Scale * factor); s != t.Scale {
			g.emit(ZoomTo(s, pos))
		}
		return g.buf
	}
	g.emit(PanBy(delta.Scale(-g.cfg.WheelPanStep)))
	return g.buf
}

// OnArrowKey pans the board by KeyPanStep screen pixels.
func (g *GestureMachine) OnArrowKey(key ArrowKey) []Action {
	g.buf = g.buf[:0]
	step := g.cfg.KeyPanStep
	var d Vec2
	switch key {
	case ArrowLeft:
		d = Vec2{-step, 0}
	case ArrowUp:
		d = Vec2{0, -step}
	case ArrowRight:
		d = Vec2{step, 0}
	case ArrowDown:
		d = Vec2{0, step}
	default:
		return g.buf
	}
	g.emit(PanBy(d))
	return g.buf
}
