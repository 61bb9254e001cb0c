package pinboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tanema/gween/ease"
)

// Board is the reference host for the gesture machine. It owns the item list,
// the spatial index and the board transform, and applies the machine's
// actions to them. A Board is single-threaded: call its methods from one
// goroutine (the UI or game loop). Work from other goroutines goes through
// Enqueue.
type Board struct {
	cfg    Config
	logger *slog.Logger

	items    []Item
	byID     map[string]int
	index    *SpatialIndex
	gestures *GestureMachine

	transform Transform
	viewport  Size
	animator  ViewportAnimator

	// fitContent keeps the content fitted when the viewport or item set
	// changes. Any manual pan or zoom clears it.
	fitContent bool

	dragging   bool
	dragID     string
	dragOffset Vec2

	queueMu sync.Mutex
	queue   []func(*Board)

	handlers handlerRegistry
	sink     ActionSink
	metrics  *Metrics

	debug bool
	stats debugStats
}

// BoardOption configures a Board at construction.
type BoardOption func(*Board)

// WithConfig sets the board configuration. Invalid values fall back to
// defaults.
func WithConfig(cfg Config) BoardOption {
	return func(b *Board) {
		cfg.Validate()
		b.cfg = cfg
	}
}

// WithLogger sets the structured logger. A nil logger uses slog.Default.
func WithLogger(logger *slog.Logger) BoardOption {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithViewport sets the initial viewport size in screen pixels.
func WithViewport(size Size) BoardOption {
	return func(b *Board) {
		b.viewport = size
	}
}

// NewBoard creates a board holding a copy of items. The board starts in
// fit-to-content mode: once a viewport is known, the content is fitted.
func NewBoard(items []Item, opts ...BoardOption) *Board {
	b := &Board{
		cfg:        DefaultConfig(),
		logger:     slog.Default(),
		transform:  IdentityTransform(),
		fitContent: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "board")
	b.index = NewSpatialIndex(b.cfg.Index.CellSize)
	b.gestures = NewGestureMachine(b.cfg.GestureConfig())
	b.setItems(items)
	if !b.viewport.IsZero() {
		b.transform = ZoomToFit(b.transform, ContentBounds(b.items), b.viewport, b.cfg.Viewport.Padding)
	}
	b.metrics.setScale(b.transform.Scale)
	return b
}

// --- View ---

// Transform returns the current board transform.
func (b *Board) Transform() Transform {
	return b.transform
}

// HitTest returns the topmost item containing a board-space point.
func (b *Board) HitTest(p Vec2) (Item, bool) {
	return TopmostAt(b.items, b.index, p)
}

// Item looks up an item by ID.
func (b *Board) Item(id string) (Item, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Item{}, false
	}
	return b.items[i], true
}

// --- Accessors ---

// Items returns a copy of the item list in paint order.
func (b *Board) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

// Config returns the effective configuration.
func (b *Board) Config() Config {
	return b.cfg
}

// SetConfig applies a new configuration. The spatial index is rebuilt when
// the cell size changes.
func (b *Board) SetConfig(cfg Config) {
	cfg.Validate()
	prev := b.cfg
	b.cfg = cfg
	b.gestures.SetConfig(cfg.GestureConfig())
	if cfg.Index.CellSize != prev.Index.CellSize {
		b.index = NewSpatialIndex(cfg.Index.CellSize)
		b.index.Rebuild(b.items)
	}
	b.logger.Info("config applied", "cell_size", cfg.Index.CellSize, "touch_slop", cfg.Gesture.TouchSlop)
}

// Gestures returns the board's gesture machine.
func (b *Board) Gestures() *GestureMachine {
	return b.gestures
}

// Index returns the board's spatial index.
func (b *Board) Index() *SpatialIndex {
	return b.index
}

// Viewport returns the viewport size.
func (b *Board) Viewport() Size {
	return b.viewport
}

// FitsContent reports whether the board re-fits on viewport changes.
func (b *Board) FitsContent() bool {
	return b.fitContent
}

// DragPreview returns the in-flight drag, if any. Hosts draw the item at
// offset instead of its stored position.
func (b *Board) DragPreview() (id string, offset Vec2, ok bool) {
	return b.dragID, b.dragOffset, b.dragging
}

// --- Input ---

// HandlePointers feeds one pointer batch through the gesture machine and
// applies the resulting actions. The returned slice is owned by the caller.
func (b *Board) HandlePointers(pointers []Pointer) []Action {
	b.drain()
	b.debugCheckBatch(pointers)
	start := time.Now()
	actions := cloneActions(b.gestures.OnPointerBatch(pointers, b))
	b.Apply(actions)
	elapsed := time.Since(start)
	b.recordBatch(len(pointers), actions, elapsed)
	b.metrics.observeBatch(elapsed)
	return actions
}

// HandleWheel feeds one wheel sample through the gesture machine.
func (b *Board) HandleWheel(pos, delta Vec2, zoomModifier bool) []Action {
	b.drain()
	actions := cloneActions(b.gestures.OnWheel(pos, delta, zoomModifier, b))
	b.Apply(actions)
	return actions
}

// HandleArrowKey pans the board one key step.
func (b *Board) HandleArrowKey(key ArrowKey) []Action {
	b.drain()
	actions := cloneActions(b.gestures.OnArrowKey(key))
	b.Apply(actions)
	return actions
}

// LongPressExpired delivers a wall-clock timer token.
func (b *Board) LongPressExpired(token TimerToken) []Action {
	b.drain()
	actions := cloneActions(b.gestures.LongPressExpired(token, b))
	b.Apply(actions)
	return actions
}

// Update advances timers and animations by dt. Call it once per frame.
func (b *Board) Update(dt time.Duration) []Action {
	b.drain()
	actions := cloneActions(b.gestures.Advance(dt, b))
	b.Apply(actions)
	if b.animator.Active() {
		t, _ := b.animator.Update(dt)
		b.setTransform(t)
	}
	return actions
}

func cloneActions(in []Action) []Action {
	if len(in) == 0 {
		return nil
	}
	out := make([]Action, len(in))
	copy(out, in)
	return out
}

// Apply performs actions against the board in order.
func (b *Board) Apply(actions []Action) {
	for _, a := range actions {
		switch a.Kind {
		case ActionPanBy:
			b.animator.Stop()
			b.fitContent = false
			b.setTransform(PanTransform(a.Delta, b.transform))
		case ActionZoomTo:
			b.animator.Stop()
			b.fitContent = false
			b.setTransform(ZoomToPoint(a.Pivot, a.Scale, b.transform))
		case ActionItemDragPreview:
			if _, ok := b.byID[a.ItemID]; ok {
				b.dragging = true
				b.dragID = a.ItemID
				b.dragOffset = a.Offset
			}
		case ActionItemDragCommit:
			b.dragging = false
			b.dragID = ""
			b.moveItem(a.ItemID, a.Offset, false)
		case ActionTap:
			b.fireTap(TapContext{ItemID: a.ItemID, Point: a.Point})
		}
		b.metrics.observeAction(a.Kind)
		if b.sink != nil {
			b.sink.EmitAction(ActionEvent{Action: a, State: b.gestures.State(), Transform: b.transform})
		}
	}
}

func (b *Board) setTransform(t Transform) {
	t = t.Sanitize()
	if t == b.transform {
		return
	}
	b.transform = t
	b.metrics.setScale(t.Scale)
	b.fireTransform(t)
}

// --- Viewport ---

// SetViewport updates the viewport size. In fit-to-content mode the content
// is re-fitted immediately.
func (b *Board) SetViewport(size Size) {
	if size == b.viewport {
		return
	}
	b.viewport = size
	if b.fitContent {
		b.animator.Stop()
		b.setTransform(ZoomToFit(b.transform, ContentBounds(b.items), b.viewport, b.cfg.Viewport.Padding))
	}
}

// ZoomToFit fits all content into the viewport and enables fit-to-content
// mode.
func (b *Board) ZoomToFit() {
	b.fitContent = true
	target := ZoomToFit(b.transform, ContentBounds(b.items), b.viewport, b.cfg.Viewport.Padding)
	b.animateTo(target)
}

// ZoomReset returns to scale 1 around the viewport centre.
func (b *Board) ZoomReset() {
	b.fitContent = false
	b.animateTo(ZoomReset(b.viewport, b.transform))
}

// ZoomToPoint zooms to scale keeping the screen point fixed.
func (b *Board) ZoomToPoint(screen Vec2, scale float64) {
	b.fitContent = false
	b.animator.Stop()
	b.setTransform(ZoomToPoint(screen, scale, b.transform))
}

// SetTransform replaces the transform and leaves fit-to-content mode.
func (b *Board) SetTransform(t Transform) {
	b.fitContent = false
	b.animator.Stop()
	b.setTransform(t)
}

func (b *Board) animateTo(target Transform) {
	if !b.cfg.Viewport.Animate {
		b.animator.Stop()
		b.setTransform(target)
		return
	}
	b.animator.Start(b.transform, target, b.cfg.AnimationDuration(), ease.OutCubic)
}

// ContentBounds returns the union of all item rectangles.
func (b *Board) ContentBounds() Rect {
	return ContentBounds(b.items)
}

// VisibleItems returns the items overlapping the viewport plus overscan, in
// paint order.
func (b *Board) VisibleItems() []Item {
	if b.viewport.IsZero() {
		return nil
	}
	visible := VisibleBounds(b.transform, b.viewport, b.cfg.Viewport.Overscan)
	ids := b.index.QueryRect(visible)
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]Item, 0, len(ids))
	for _, it := range b.items {
		if _, ok := want[it.ID]; ok && it.Bounds().Intersects(visible) {
			out = append(out, it)
		}
	}
	return out
}

// --- Items ---

// SetItems replaces the whole item list and rebuilds the index.
func (b *Board) SetItems(items []Item) {
	b.setItems(items)
	if b.fitContent && !b.viewport.IsZero() {
		b.setTransform(ZoomToFit(b.transform, ContentBounds(b.items), b.viewport, b.cfg.Viewport.Padding))
	}
}

func (b *Board) setItems(items []Item) {
	b.items = b.items[:0]
	b.byID = make(map[string]int, len(items))
	for _, it := range items {
		if i, dup := b.byID[it.ID]; dup {
			b.logger.Warn("duplicate item id, keeping last", "id", it.ID)
			b.items[i] = it
			continue
		}
		b.byID[it.ID] = len(b.items)
		b.items = append(b.items, it)
	}
	b.index.Rebuild(b.items)
	b.metrics.setItems(len(b.items))
}

// AddItem appends an item on top of the others and returns its ID. An
// existing ID is replaced in place; an empty ID gets a generated one.
func (b *Board) AddItem(it Item) string {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if i, ok := b.byID[it.ID]; ok {
		b.items[i] = it
		b.index.Update(it)
		return it.ID
	}
	b.byID[it.ID] = len(b.items)
	b.items = append(b.items, it)
	b.index.Insert(it)
	b.metrics.setItems(len(b.items))
	return it.ID
}

// RemoveItem deletes an item. It returns false for unknown IDs. Removing the
// item under an active drag abandons the gesture.
func (b *Board) RemoveItem(id string) bool {
	i, ok := b.byID[id]
	if !ok {
		return false
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	delete(b.byID, id)
	for j := i; j < len(b.items); j++ {
		b.byID[b.items[j].ID] = j
	}
	b.index.Remove(id)
	b.metrics.setItems(len(b.items))
	if s := b.gestures.Session(); s.State == StateDraggingItem && s.ItemID == id {
		b.gestures.Reset()
	}
	if b.dragging && b.dragID == id {
		b.dragging = false
		b.dragID = ""
	}
	return true
}

// MoveItem sets an item's position. Unknown IDs are ignored and return false.
func (b *Board) MoveItem(id string, pos Vec2) bool {
	return b.moveItem(id, pos, false)
}

func (b *Board) moveItem(id string, pos Vec2, arranged bool) bool {
	i, ok := b.byID[id]
	if !ok {
		b.logger.Debug("move for unknown item ignored", "id", id)
		return false
	}
	if !pos.finite() {
		b.logger.Warn("non-finite position ignored", "id", id)
		return false
	}
	from := b.items[i].Position
	b.items[i].Position = pos
	b.index.Update(b.items[i])
	b.fireItemMoved(ItemMovedContext{ItemID: id, From: from, To: pos, Arranged: arranged})
	return true
}

// --- Work queue ---

// Enqueue schedules fn to run on the board's goroutine before the next batch
// or frame. It is safe to call from any goroutine.
func (b *Board) Enqueue(fn func(*Board)) {
	b.queueMu.Lock()
	b.queue = append(b.queue, fn)
	b.queueMu.Unlock()
}

func (b *Board) drain() {
	b.queueMu.Lock()
	pending := b.queue
	b.queue = nil
	b.queueMu.Unlock()
	for _, fn := range pending {
		fn(b)
	}
}

// --- Smart arrange ---

// ArrangeItem is the description of one item sent to an Arranger.
type ArrangeItem struct {
	ID          string
	Description string
	Position    Vec2
	Size        Size
}

// Placement is a proposed new top-left for one item.
type Placement struct {
	ID       string
	Position Vec2
}

// Arranger proposes a new layout for a set of items. Implementations may
// block on the network; the board calls them off its own goroutine.
type Arranger interface {
	Arrange(ctx context.Context, items []ArrangeItem) ([]Placement, error)
}

// RequestArrange asks arranger for a new layout in the background. The result
// is applied on the board's goroutine at the next HandlePointers or Update
// call. The returned channel receives the arranger's error (nil on success)
// once the result has been queued, then closes.
func (b *Board) RequestArrange(ctx context.Context, arranger Arranger) <-chan error {
	snapshot := make([]ArrangeItem, len(b.items))
	for i, it := range b.items {
		snapshot[i] = ArrangeItem{
			ID:          it.ID,
			Description: it.Label,
			Position:    it.Position,
			Size:        it.Size,
		}
	}
	done := make(chan error, 1)
	logger := b.logger
	go func() {
		defer close(done)
		placements, err := arranger.Arrange(ctx, snapshot)
		if err != nil {
			logger.Error("arrange failed", "error", err)
			done <- err
			return
		}
		b.Enqueue(func(b *Board) {
			b.ApplyArrangement(placements)
		})
		done <- nil
	}()
	return done
}

// ApplyArrangement moves every item named in placements. IDs that no longer
// exist are dropped. It returns the number of items moved.
func (b *Board) ApplyArrangement(placements []Placement) int {
	moved := 0
	for _, p := range placements {
		if b.dragging && b.dragID == p.ID {
			// The user holds this item; their drag wins.
			continue
		}
		if b.moveItem(p.ID, p.Position, true) {
			moved++
		}
	}
	dropped := len(placements) - moved
	if dropped > 0 {
		b.logger.Info("arrangement applied", "moved", moved, "dropped", dropped)
	}
	b.metrics.observeArrangement(moved, dropped)
	if b.fitContent && !b.viewport.IsZero() {
		b.setTransform(ZoomToFit(b.transform, ContentBounds(b.items), b.viewport, b.cfg.Viewport.Padding))
	}
	return moved
}
