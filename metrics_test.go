package pinboard

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Board(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	b := NewBoard(twoNotes(), WithMetrics(m))

	if got := testutil.ToFloat64(m.Items); got != 2 {
		t.Errorf("items = %v, want 2", got)
	}

	b.HandlePointers(pts(Vec2{500, 500}))
	b.HandlePointers(pts(Vec2{520, 500}))
	b.HandlePointers(nil)

	if got := testutil.ToFloat64(m.Batches); got != 3 {
		t.Errorf("batches = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.Actions.WithLabelValues("PanBy")); got != 1 {
		t.Errorf("PanBy actions = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.BatchDuration); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}

	b.ZoomToPoint(Vec2{}, 2)
	if got := testutil.ToFloat64(m.Scale); got != 2 {
		t.Errorf("scale = %v, want 2", got)
	}

	b.AddItem(Item{ID: "c", Size: Size{10, 10}})
	b.RemoveItem("a")
	b.RemoveItem("a")
	if got := testutil.ToFloat64(m.Items); got != 2 {
		t.Errorf("items after add/remove = %v, want 2", got)
	}
}

func TestMetrics_Arrangement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	b := NewBoard(twoNotes(), WithMetrics(m))

	b.ApplyArrangement([]Placement{
		{ID: "a", Position: Vec2{10, 10}},
		{ID: "gone", Position: Vec2{0, 0}},
	})

	expected := `
		# HELP pinboard_arranged_items_total Items proposed by smart arrange, by result
		# TYPE pinboard_arranged_items_total counter
		pinboard_arranged_items_total{result="dropped"} 1
		pinboard_arranged_items_total{result="moved"} 1
	`
	if err := testutil.CollectAndCompare(m.Arranged, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metric value: %v", err)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.observeBatch(0)
	m.observeAction(ActionTap)
	m.setItems(1)
	m.setScale(1)
	m.observeArrangement(1, 1)

	b := NewBoard(twoNotes())
	b.HandlePointers(pts(Vec2{500, 500}))
	b.HandlePointers(nil)
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	if _, err := reg.Gather(); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if err := reg.Register(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pinboard_pointer_batches_total",
		Help: "duplicate",
	})); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}
