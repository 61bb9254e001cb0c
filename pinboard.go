package pinboard

import "math"

// Scale limits for every Transform produced by the engine.
const (
	ScaleMin = 0.05
	ScaleMax = 5.0
)

// Vec2 is a 2D vector used for positions, offsets and deltas in both screen
// and board space.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool { return v.X == 0 && v.Y == 0 }

func (v Vec2) finite() bool { return isFinite(v.X) && isFinite(v.Y) }

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// IsZero reports whether either dimension is zero or negative.
func (s Size) IsZero() bool { return s.Width <= 0 || s.Height <= 0 }

// Center returns the midpoint of a rectangle of this size anchored at the origin.
func (s Size) Center() Vec2 { return Vec2{s.Width / 2, s.Height / 2} }

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.Right(), other.Right())
	maxY := math.Max(r.Bottom(), other.Bottom())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inset grows (negative d) or shrinks (positive d) the rectangle on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, Width: r.Width - 2*d, Height: r.Height - 2*d}
}

// Item is a movable rectangle on the board. Items are owned by the host; the
// engine only ever reports a new position for an ID.
type Item struct {
	ID       string
	Position Vec2
	Size     Size
	// Label is free text describing the item. The engine ignores it; smart
	// arrange sends it to the layout model.
	Label string
}

// Bounds returns the item's board-space rectangle.
func (it Item) Bounds() Rect {
	return Rect{X: it.Position.X, Y: it.Position.Y, Width: it.Size.Width, Height: it.Size.Height}
}

// validGeometry reports whether the item can be indexed: finite position and
// a finite, non-negative size.
func (it Item) validGeometry() bool {
	return it.Position.finite() &&
		isFinite(it.Size.Width) && isFinite(it.Size.Height) &&
		it.Size.Width >= 0 && it.Size.Height >= 0
}

// Pointer is one pressed pointer (mouse button or touch contact) in screen space.
type Pointer struct {
	ID       int
	Position Vec2
}

// ActionKind identifies the semantic result of a gesture.
type ActionKind uint8

const (
	ActionPanBy           ActionKind = iota // translate the board by Delta (screen units)
	ActionZoomTo                            // set scale to Scale keeping Pivot (screen) fixed
	ActionItemDragPreview                   // interim offset for ItemID during a drag
	ActionItemDragCommit                    // final offset for ItemID; host should move the item
	ActionTap                               // press and release without movement; ItemID may be empty
)

// String returns a short name for the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionPanBy:
		return "PanBy"
	case ActionZoomTo:
		return "ZoomTo"
	case ActionItemDragPreview:
		return "ItemDragPreview"
	case ActionItemDragCommit:
		return "ItemDragCommit"
	case ActionTap:
		return "Tap"
	default:
		return "Unknown"
	}
}

// Action is emitted by the gesture machine for the host to apply. Only the
// fields relevant to Kind are set.
type Action struct {
	Kind ActionKind
	// Delta is the screen-space translation for ActionPanBy.
	Delta Vec2
	// Scale and Pivot are set for ActionZoomTo. Pivot is in screen space.
	Scale float64
	Pivot Vec2
	// ItemID and Offset are set for drag actions. Offset is the item's new
	// board-space top-left.
	ItemID string
	Offset Vec2
	// Point is the board-space location of an ActionTap.
	Point Vec2
}

// PanBy returns an ActionPanBy.
func PanBy(delta Vec2) Action { return Action{Kind: ActionPanBy, Delta: delta} }

// ZoomTo returns an ActionZoomTo.
func ZoomTo(scale float64, pivot Vec2) Action {
	return Action{Kind: ActionZoomTo, Scale: scale, Pivot: pivot}
}

// ItemDragPreview returns an ActionItemDragPreview.
func ItemDragPreview(id string, offset Vec2) Action {
	return Action{Kind: ActionItemDragPreview, ItemID: id, Offset: offset}
}

// ItemDragCommit returns an ActionItemDragCommit.
func ItemDragCommit(id string, offset Vec2) Action {
	return Action{Kind: ActionItemDragCommit, ItemID: id, Offset: offset}
}

// Tap returns an ActionTap.
func Tap(id string, point Vec2) Action { return Action{Kind: ActionTap, ItemID: id, Point: point} }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
