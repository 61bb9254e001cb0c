package pinboard

import "math"

// DefaultCellSize is the grid cell edge in board units. Typical items are a
// few hundred units wide, so most span one or two cells.
const DefaultCellSize = 500.0

// maxItemCells caps the grid cells one rectangle may occupy. Larger items and
// query rectangles skip the grid: oversized items are returned by every query,
// and oversized queries scan the occupied cells instead.
const maxItemCells = 64 * 64

// cell is a grid coordinate: (floor(x/cellSize), floor(y/cellSize)).
type cell struct {
	cx, cy int
}

// SpatialIndex is a uniform grid over item rectangles in board space. It
// narrows hit-test candidates; callers verify containment themselves.
//
// The forward map (cell -> ids) answers queries; the reverse map (id -> last
// indexed rectangle) lets Update and Remove clear stale cells without a scan.
// Items covering more than maxItemCells cells live in the oversized set.
type SpatialIndex struct {
	cellSize  float64
	cells     map[cell]map[string]struct{}
	rects     map[string]Rect
	oversized map[string]struct{}
}

// NewSpatialIndex creates an empty index. A non-positive or non-finite
// cellSize falls back to DefaultCellSize.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if !isFinite(cellSize) || cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &SpatialIndex{
		cellSize:  cellSize,
		cells:     make(map[cell]map[string]struct{}),
		rects:     make(map[string]Rect),
		oversized: make(map[string]struct{}),
	}
}

// CellSize returns the grid cell edge length.
func (s *SpatialIndex) CellSize() float64 {
	return s.cellSize
}

// Len returns the number of indexed items.
func (s *SpatialIndex) Len() int {
	return len(s.rects)
}

// Rebuild clears the index and inserts every item.
func (s *SpatialIndex) Rebuild(items []Item) {
	clear(s.cells)
	clear(s.rects)
	clear(s.oversized)
	for _, it := range items {
		s.Insert(it)
	}
}

// Insert adds an item. Items with invalid geometry (NaN position, negative or
// NaN size) are ignored. Inserting an ID that is already indexed behaves like
// Update.
func (s *SpatialIndex) Insert(it Item) {
	if _, ok := s.rects[it.ID]; ok {
		s.Update(it)
		return
	}
	if !it.validGeometry() {
		return
	}
	r := it.Bounds()
	s.rects[it.ID] = r
	if s.cellCount(r) > maxItemCells {
		s.oversized[it.ID] = struct{}{}
		return
	}
	s.forEachCell(r, func(c cell) {
		set := s.cells[c]
		if set == nil {
			set = make(map[string]struct{})
			s.cells[c] = set
		}
		set[it.ID] = struct{}{}
	})
}

// Update re-indexes an item under its current rectangle. Cells covered only
// by the previously stored rectangle no longer list the ID afterwards.
func (s *SpatialIndex) Update(it Item) {
	s.Remove(it.ID)
	s.Insert(it)
}

// Remove drops an item. Unknown IDs are a no-op.
func (s *SpatialIndex) Remove(id string) {
	r, ok := s.rects[id]
	if !ok {
		return
	}
	delete(s.rects, id)
	if _, ok := s.oversized[id]; ok {
		delete(s.oversized, id)
		return
	}
	s.forEachCell(r, func(c cell) {
		set := s.cells[c]
		if set == nil {
			return
		}
		delete(set, id)
		if len(set) == 0 {
			delete(s.cells, c)
		}
	})
}

// Rect returns the last indexed rectangle for id.
func (s *SpatialIndex) Rect(id string) (Rect, bool) {
	r, ok := s.rects[id]
	return r, ok
}

// QueryPoint returns the IDs sharing p's cell plus every oversized item. The
// result is a superset of the items containing p; it is never nil.
func (s *SpatialIndex) QueryPoint(p Vec2) []string {
	if !p.finite() {
		return []string{}
	}
	set := s.cells[s.cellOf(p.X, p.Y)]
	out := make([]string, 0, len(set)+len(s.oversized))
	for id := range set {
		out = append(out, id)
	}
	for id := range s.oversized {
		out = append(out, id)
	}
	return out
}

// QueryRect returns the de-duplicated IDs listed in any cell overlapped by r.
func (s *SpatialIndex) QueryRect(r Rect) []string {
	out := []string{}
	if !isFinite(r.X) || !isFinite(r.Y) || !isFinite(r.Width) || !isFinite(r.Height) ||
		r.Width < 0 || r.Height < 0 {
		return out
	}
	seen := make(map[string]struct{})
	collect := func(set map[string]struct{}) {
		for id := range set {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	if s.cellCount(r) > maxItemCells {
		x0, x1 := math.Floor(r.X/s.cellSize), math.Floor(r.Right()/s.cellSize)
		y0, y1 := math.Floor(r.Y/s.cellSize), math.Floor(r.Bottom()/s.cellSize)
		for c, set := range s.cells {
			cx, cy := float64(c.cx), float64(c.cy)
			if cx >= x0 && cx <= x1 && cy >= y0 && cy <= y1 {
				collect(set)
			}
		}
	} else {
		s.forEachCell(r, func(c cell) { collect(s.cells[c]) })
	}
	collect(s.oversized)
	return out
}

func (s *SpatialIndex) cellOf(x, y float64) cell {
	return cell{
		cx: int(math.Floor(x / s.cellSize)),
		cy: int(math.Floor(y / s.cellSize)),
	}
}

// cellCount returns how many cells r overlaps, in float64 so huge rectangles
// do not overflow.
func (s *SpatialIndex) cellCount(r Rect) float64 {
	cols := math.Floor(r.Right()/s.cellSize) - math.Floor(r.X/s.cellSize) + 1
	rows := math.Floor(r.Bottom()/s.cellSize) - math.Floor(r.Y/s.cellSize) + 1
	return cols * rows
}

// forEachCell visits every cell overlapped by r, edges inclusive.
func (s *SpatialIndex) forEachCell(r Rect, fn func(cell)) {
	lo := s.cellOf(r.X, r.Y)
	hi := s.cellOf(r.Right(), r.Bottom())
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			fn(cell{cx, cy})
		}
	}
}

// TopmostAt returns the item containing board point p. Candidates come from
// the index and are verified against the items' actual rectangles; among
// overlapping hits the last one in list (paint) order wins.
func TopmostAt(items []Item, index *SpatialIndex, p Vec2) (Item, bool) {
	candidates := index.QueryPoint(p)
	if len(candidates) == 0 {
		return Item{}, false
	}
	ids := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		ids[id] = struct{}{}
	}
	// Iterate backward (reverse paint order): topmost item first.
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if _, ok := ids[it.ID]; !ok {
			continue
		}
		if it.Bounds().Contains(p.X, p.Y) {
			return it, true
		}
	}
	return Item{}, false
}
