package pinboard

import "math"

// Transform maps board space to screen space: screen = board*Scale + Translation.
// The zero value is not usable; start from IdentityTransform.
type Transform struct {
	Scale       float64
	Translation Vec2
}

// IdentityTransform returns scale 1 with no translation.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// ClampScale restricts s to [ScaleMin, ScaleMax]. NaN, infinite and
// non-positive values collapse to 1 before clamping.
func ClampScale(s float64) float64 {
	if !isFinite(s) || s <= 0 {
		s = 1
	}
	return math.Max(ScaleMin, math.Min(s, ScaleMax))
}

// Sanitize returns t with a clamped scale and finite translation. A broken
// transform must never reach the host's view state.
func (t Transform) Sanitize() Transform {
	t.Scale = ClampScale(t.Scale)
	if !isFinite(t.Translation.X) {
		t.Translation.X = 0
	}
	if !isFinite(t.Translation.Y) {
		t.Translation.Y = 0
	}
	return t
}

// ToBoard converts a screen-space point to board space.
func ToBoard(screen Vec2, t Transform) Vec2 {
	return Vec2{
		X: (screen.X - t.Translation.X) / t.Scale,
		Y: (screen.Y - t.Translation.Y) / t.Scale,
	}
}

// ToScreen converts a board-space point to screen space.
func ToScreen(board Vec2, t Transform) Vec2 {
	return Vec2{
		X: board.X*t.Scale + t.Translation.X,
		Y: board.Y*t.Scale + t.Translation.Y,
	}
}

// ScreenDeltaToBoard converts a screen-space displacement to board units.
func ScreenDeltaToBoard(d Vec2, t Transform) Vec2 {
	return Vec2{X: d.X / t.Scale, Y: d.Y / t.Scale}
}

// Matrix returns the board-to-screen affine matrix [a, b, c, d, tx, ty],
// laid out so that screen.x = a*x + c*y + tx and screen.y = b*x + d*y + ty.
func (t Transform) Matrix() [6]float64 {
	return [6]float64{t.Scale, 0, 0, t.Scale, t.Translation.X, t.Translation.Y}
}

// ItemMatrix returns the matrix that places item-local coordinates (origin at
// the item's top-left) on screen for an item drawn at offset.
func ItemMatrix(offset Vec2, t Transform) [6]float64 {
	return multiplyAffine(t.Matrix(), [6]float64{1, 0, 0, 1, offset.X, offset.Y})
}

// ItemScreenRect returns the screen rectangle of an item of the given size
// drawn at offset.
func ItemScreenRect(offset Vec2, size Size, t Transform) Rect {
	m := ItemMatrix(offset, t)
	x0, y0 := transformPoint(m, 0, 0)
	x1, y1 := transformPoint(m, size.Width, size.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// multiplyAffine returns p*c: c is applied first.
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
