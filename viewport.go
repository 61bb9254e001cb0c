package pinboard

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ZoomToFit scales and centres bounds inside the viewport, leaving padding on
// every side. Empty bounds or a zero-sized viewport leave current unchanged.
func ZoomToFit(current Transform, bounds Rect, viewport Size, padding float64) Transform {
	if bounds.IsEmpty() || viewport.IsZero() {
		return current
	}
	if !isFinite(padding) || padding < 0 {
		padding = 0
	}
	availW := viewport.Width - 2*padding
	availH := viewport.Height - 2*padding
	if availW <= 0 || availH <= 0 {
		return current
	}
	scale := ClampScale(math.Min(availW/bounds.Width, availH/bounds.Height))

	scaledW := bounds.Width * scale
	scaledH := bounds.Height * scale
	return Transform{
		Scale: scale,
		Translation: Vec2{
			X: padding + (availW-scaledW)/2 - bounds.X*scale,
			Y: padding + (availH-scaledH)/2 - bounds.Y*scale,
		},
	}
}

// ZoomReset returns scale 1 while keeping the board point under the viewport
// centre in place.
func ZoomReset(viewport Size, current Transform) Transform {
	if viewport.IsZero() {
		return current
	}
	center := viewport.Center()
	before := ToBoard(center, current)
	return Transform{
		Scale:       1,
		Translation: center.Sub(before.Scale(1)),
	}
}

// ZoomToPoint rescales to targetScale (clamped) keeping the board point under
// screen fixed.
func ZoomToPoint(screen Vec2, targetScale float64, current Transform) Transform {
	scale := ClampScale(targetScale)
	board := ToBoard(screen, current)
	return Transform{
		Scale:       scale,
		Translation: screen.Sub(board.Scale(scale)),
	}
}

// ZoomBy multiplies the current scale by factor around pivot (screen space).
func ZoomBy(factor float64, pivot Vec2, current Transform) Transform {
	if !isFinite(factor) || factor <= 0 {
		return current
	}
	return ZoomToPoint(pivot, current.Scale*factor, current)
}

// PanTransform translates the board by a screen-space delta.
func PanTransform(delta Vec2, current Transform) Transform {
	if !delta.finite() {
		return current
	}
	current.Translation = current.Translation.Add(delta)
	return current
}

// ContentBounds returns the union of all item rectangles, or the zero Rect
// for an empty list. Items with invalid geometry are skipped.
func ContentBounds(items []Item) Rect {
	var out Rect
	first := true
	for _, it := range items {
		if !it.validGeometry() {
			continue
		}
		if first {
			out = it.Bounds()
			first = false
			continue
		}
		out = out.Union(it.Bounds())
	}
	return out
}

// VisibleBounds returns the board-space rectangle shown by a viewport of the
// given size, grown by overscan screen pixels on every side.
func VisibleBounds(t Transform, viewport Size, overscan float64) Rect {
	tl := ToBoard(Vec2{-overscan, -overscan}, t)
	br := ToBoard(Vec2{viewport.Width + overscan, viewport.Height + overscan}, t)
	return Rect{X: tl.X, Y: tl.Y, Width: br.X - tl.X, Height: br.Y - tl.Y}
}

// --- Animation ---

// ViewportAnimator tweens a transform toward a target. Scale and translation
// animate together so the content glides into place.
type ViewportAnimator struct {
	scale  *gween.Tween
	transX *gween.Tween
	transY *gween.Tween
	target Transform
	active bool
}

// Start begins a transition from one transform to another over duration.
// A nil easing function defaults to ease.OutCubic.
func (a *ViewportAnimator) Start(from, to Transform, duration time.Duration, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	d := float32(duration.Seconds())
	a.scale = gween.New(float32(from.Scale), float32(to.Scale), d, easeFn)
	a.transX = gween.New(float32(from.Translation.X), float32(to.Translation.X), d, easeFn)
	a.transY = gween.New(float32(from.Translation.Y), float32(to.Translation.Y), d, easeFn)
	a.target = to
	a.active = true
}

// Active reports whether a transition is running.
func (a *ViewportAnimator) Active() bool {
	return a.active
}

// Stop abandons the running transition.
func (a *ViewportAnimator) Stop() {
	a.active = false
	a.scale, a.transX, a.transY = nil, nil, nil
}

// Update advances the transition by dt and returns the interpolated
// transform. done is true on the final step, which returns the exact target.
func (a *ViewportAnimator) Update(dt time.Duration) (t Transform, done bool) {
	if !a.active {
		return a.target, true
	}
	step := float32(dt.Seconds())
	s, doneS := a.scale.Update(step)
	x, doneX := a.transX.Update(step)
	y, doneY := a.transY.Update(step)
	if doneS && doneX && doneY {
		a.Stop()
		return a.target, true
	}
	return Transform{
		Scale:       ClampScale(float64(s)),
		Translation: Vec2{float64(x), float64(y)},
	}, false
}
