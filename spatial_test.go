package pinboard

import (
	"fmt"
	"math"
	"slices"
	"testing"
	"time"
)

func sortedIDs(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return out
}

func TestNewSpatialIndexDefaults(t *testing.T) {
	for _, cs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if got := NewSpatialIndex(cs).CellSize(); got != DefaultCellSize {
			t.Errorf("NewSpatialIndex(%v).CellSize() = %v, want %v", cs, got, DefaultCellSize)
		}
	}
	if got := NewSpatialIndex(1000).CellSize(); got != 1000 {
		t.Errorf("CellSize = %v, want 1000", got)
	}
}

func TestEmptyIndexQueries(t *testing.T) {
	s := NewSpatialIndex(DefaultCellSize)
	got := s.QueryPoint(Vec2{10, 10})
	if got == nil || len(got) != 0 {
		t.Errorf("QueryPoint on empty index = %#v, want empty non-nil", got)
	}
	if got := s.QueryRect(Rect{0, 0, 5000, 5000}); len(got) != 0 {
		t.Errorf("QueryRect on empty index = %v", got)
	}
}

func TestQueryPointCandidates(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Rebuild([]Item{
		{ID: "a", Position: Vec2{0, 0}, Size: Size{50, 50}},
		{ID: "b", Position: Vec2{250, 250}, Size: Size{20, 20}},
	})
	if got := s.QueryPoint(Vec2{10, 10}); !slices.Equal(got, []string{"a"}) {
		t.Errorf("QueryPoint(10,10) = %v, want [a]", got)
	}
	if got := s.QueryPoint(Vec2{260, 260}); !slices.Equal(got, []string{"b"}) {
		t.Errorf("QueryPoint(260,260) = %v, want [b]", got)
	}
	// Same cell as a but outside it: a is still a candidate.
	if got := s.QueryPoint(Vec2{90, 90}); !slices.Equal(got, []string{"a"}) {
		t.Errorf("QueryPoint(90,90) = %v, want [a]", got)
	}
	if got := s.QueryPoint(Vec2{math.NaN(), 0}); len(got) != 0 {
		t.Errorf("QueryPoint(NaN) = %v, want empty", got)
	}
}

func TestNegativeCoordinates(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Insert(Item{ID: "neg", Position: Vec2{-150, -150}, Size: Size{100, 100}})
	if got := s.QueryPoint(Vec2{-120, -60}); !slices.Equal(got, []string{"neg"}) {
		t.Errorf("QueryPoint(-120,-60) = %v, want [neg]", got)
	}
	if got := s.QueryPoint(Vec2{10, 10}); len(got) != 0 {
		t.Errorf("QueryPoint(10,10) = %v, want empty", got)
	}
}

func TestNoFalseNegatives(t *testing.T) {
	s := NewSpatialIndex(100)
	items := make([]Item, 0, 64)
	for i := 0; i < 64; i++ {
		items = append(items, Item{
			ID:       fmt.Sprintf("i%d", i),
			Position: Vec2{float64(i*37%400) - 200, float64(i*53%400) - 200},
			Size:     Size{float64(10 + i%90), float64(15 + i%70)},
		})
	}
	s.Rebuild(items)
	for _, it := range items {
		b := it.Bounds()
		corners := []Vec2{
			{b.X, b.Y}, {b.Right(), b.Y}, {b.X, b.Bottom()}, {b.Right(), b.Bottom()},
			{b.X + b.Width/2, b.Y + b.Height/2},
		}
		for _, p := range corners {
			if !slices.Contains(s.QueryPoint(p), it.ID) {
				t.Errorf("QueryPoint(%v) misses %s", p, it.ID)
			}
		}
	}
}

func TestItemSpanningCells(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Insert(Item{ID: "wide", Position: Vec2{50, 50}, Size: Size{300, 10}})
	for _, x := range []float64{60, 150, 250, 340} {
		if got := s.QueryPoint(Vec2{x, 55}); !slices.Equal(got, []string{"wide"}) {
			t.Errorf("QueryPoint(%v,55) = %v, want [wide]", x, got)
		}
	}
}

func TestUpdateRemovesStaleCells(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Insert(Item{ID: "a", Position: Vec2{0, 0}, Size: Size{50, 50}})
	s.Update(Item{ID: "a", Position: Vec2{1000, 1000}, Size: Size{50, 50}})

	if got := s.QueryPoint(Vec2{10, 10}); len(got) != 0 {
		t.Errorf("old cell still lists %v", got)
	}
	if got := s.QueryPoint(Vec2{1010, 1010}); !slices.Equal(got, []string{"a"}) {
		t.Errorf("new cell = %v, want [a]", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if len(s.cells) != 1 {
		t.Errorf("expected empty cells to be dropped, have %d", len(s.cells))
	}
}

func TestInsertExistingBehavesLikeUpdate(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Insert(Item{ID: "a", Position: Vec2{0, 0}, Size: Size{50, 50}})
	s.Insert(Item{ID: "a", Position: Vec2{500, 0}, Size: Size{50, 50}})
	if got := s.QueryPoint(Vec2{10, 10}); len(got) != 0 {
		t.Errorf("old cell still lists %v", got)
	}
	if r, ok := s.Rect("a"); !ok || r.X != 500 {
		t.Errorf("Rect(a) = %+v, %v", r, ok)
	}
}

func TestRemove(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Insert(Item{ID: "a", Position: Vec2{0, 0}, Size: Size{250, 250}})
	s.Remove("a")
	s.Remove("missing")
	if s.Len() != 0 || len(s.cells) != 0 {
		t.Errorf("index not empty after Remove: len=%d cells=%d", s.Len(), len(s.cells))
	}
}

func TestInvalidGeometryIgnored(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Insert(Item{ID: "nan", Position: Vec2{math.NaN(), 0}, Size: Size{10, 10}})
	s.Insert(Item{ID: "neg", Position: Vec2{0, 0}, Size: Size{-10, 10}})
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	// Zero size is valid: the item occupies a single point.
	s.Insert(Item{ID: "dot", Position: Vec2{5, 5}})
	if got := s.QueryPoint(Vec2{5, 5}); !slices.Equal(got, []string{"dot"}) {
		t.Errorf("QueryPoint(dot) = %v", got)
	}
}

func TestQueryRectDeduplicates(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Rebuild([]Item{
		{ID: "big", Position: Vec2{0, 0}, Size: Size{450, 450}},
		{ID: "small", Position: Vec2{120, 120}, Size: Size{10, 10}},
		{ID: "far", Position: Vec2{5000, 5000}, Size: Size{10, 10}},
	})
	got := sortedIDs(s.QueryRect(Rect{0, 0, 400, 400}))
	if !slices.Equal(got, []string{"big", "small"}) {
		t.Errorf("QueryRect = %v, want [big small]", got)
	}
	if got := s.QueryRect(Rect{0, 0, -1, 10}); len(got) != 0 {
		t.Errorf("QueryRect(negative) = %v", got)
	}
}

func TestOversizedItem(t *testing.T) {
	s := NewSpatialIndex(DefaultCellSize)
	s.Insert(Item{ID: "small", Position: Vec2{100, 100}, Size: Size{50, 50}})

	start := time.Now()
	s.Insert(Item{ID: "huge", Position: Vec2{-5e6, -5e6}, Size: Size{1e7, 1e7}})
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Errorf("oversized insert took %v", d)
	}
	if len(s.cells) != 1 {
		t.Errorf("oversized item allocated grid cells: %d", len(s.cells))
	}

	if got := sortedIDs(s.QueryPoint(Vec2{110, 110})); !slices.Equal(got, []string{"huge", "small"}) {
		t.Errorf("QueryPoint(110,110) = %v, want [huge small]", got)
	}
	if got := s.QueryPoint(Vec2{4e6, -4e6}); !slices.Equal(got, []string{"huge"}) {
		t.Errorf("QueryPoint far corner = %v, want [huge]", got)
	}
	if got := sortedIDs(s.QueryRect(Rect{0, 0, 10, 10})); !slices.Equal(got, []string{"huge", "small"}) {
		t.Errorf("QueryRect = %v, want [huge small]", got)
	}
	if got := s.QueryRect(Rect{2e6, 2e6, 10, 10}); !slices.Equal(got, []string{"huge"}) {
		t.Errorf("QueryRect far = %v, want [huge]", got)
	}
	items := []Item{{ID: "huge", Position: Vec2{-5e6, -5e6}, Size: Size{1e7, 1e7}}}
	if it, ok := TopmostAt(items, s, Vec2{3e6, 3e6}); !ok || it.ID != "huge" {
		t.Errorf("TopmostAt = %v, %v", it.ID, ok)
	}

	// Shrinking the item moves it back onto the grid.
	s.Update(Item{ID: "huge", Position: Vec2{0, 0}, Size: Size{10, 10}})
	if got := s.QueryPoint(Vec2{3e6, 3e6}); len(got) != 0 {
		t.Errorf("stale oversized entry: %v", got)
	}
	s.Remove("huge")
	s.Remove("small")
	if s.Len() != 0 || len(s.cells) != 0 || len(s.oversized) != 0 {
		t.Errorf("index not empty: len=%d cells=%d oversized=%d", s.Len(), len(s.cells), len(s.oversized))
	}
}

func TestOversizedQueryRect(t *testing.T) {
	s := NewSpatialIndex(100)
	s.Rebuild([]Item{
		{ID: "in", Position: Vec2{1e6, 1e6}, Size: Size{10, 10}},
		{ID: "out", Position: Vec2{-1e6, 0}, Size: Size{10, 10}},
	})
	start := time.Now()
	got := s.QueryRect(Rect{0, 0, 1e8, 1e8})
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Errorf("oversized query took %v", d)
	}
	if !slices.Equal(got, []string{"in"}) {
		t.Errorf("QueryRect = %v, want [in]", got)
	}
}

func BenchmarkInsertOversized(b *testing.B) {
	s := NewSpatialIndex(DefaultCellSize)
	huge := Item{ID: "huge", Size: Size{2e6, 2e6}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Update(huge)
	}
}

func TestTopmostAtPaintOrder(t *testing.T) {
	items := []Item{
		{ID: "bottom", Position: Vec2{0, 0}, Size: Size{100, 100}},
		{ID: "top", Position: Vec2{50, 50}, Size: Size{100, 100}},
	}
	s := NewSpatialIndex(DefaultCellSize)
	s.Rebuild(items)

	tests := []struct {
		p      Vec2
		want   string
		wantOK bool
	}{
		{Vec2{75, 75}, "top", true},
		{Vec2{10, 10}, "bottom", true},
		{Vec2{140, 140}, "top", true},
		{Vec2{100, 100}, "top", true},
		{Vec2{300, 300}, "", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.p), func(t *testing.T) {
			got, ok := TopmostAt(items, s, tt.p)
			if ok != tt.wantOK || got.ID != tt.want {
				t.Errorf("TopmostAt = %q, %v; want %q, %v", got.ID, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTopmostAtEdgesInclusive(t *testing.T) {
	items := []Item{{ID: "a", Position: Vec2{0, 0}, Size: Size{100, 100}}}
	s := NewSpatialIndex(DefaultCellSize)
	s.Rebuild(items)
	for _, p := range []Vec2{{0, 0}, {100, 100}, {100, 0}} {
		if _, ok := TopmostAt(items, s, p); !ok {
			t.Errorf("edge point %v should hit", p)
		}
	}
}

func BenchmarkQueryPoint10k(b *testing.B) {
	items := make([]Item, 10000)
	for i := range items {
		items[i] = Item{
			ID:       fmt.Sprintf("n%d", i),
			Position: Vec2{float64(i%100) * 250, float64(i/100) * 250},
			Size:     Size{200, 200},
		}
	}
	s := NewSpatialIndex(DefaultCellSize)
	s.Rebuild(items)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.QueryPoint(Vec2{float64(i % 25000), float64((i * 7) % 25000)})
	}
}
