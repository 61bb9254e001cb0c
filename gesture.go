package pinboard

import "time"

// --- Constants ---

const (
	// DefaultTouchSlop is the screen distance a press may travel before it
	// stops counting as stationary.
	DefaultTouchSlop = 8.0

	// minPinchSpread guards the zoom ratio against pointers that share a spot.
	minPinchSpread = 1e-6
)

// GestureState is the gesture machine's current mode.
type GestureState uint8

const (
	StateIdle              GestureState = iota // no pointer pressed
	StateAwaitingLongPress                     // one pointer on an item, long-press timer pending
	StateDraggingItem                          // long press fired; single pointer moves the item
	StatePanningBoard                          // single pointer pans the board
	StatePinchZoomPan                          // two or more pointers zoom and pan
)

// String returns the state name.
func (s GestureState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingLongPress:
		return "AwaitingLongPress"
	case StateDraggingItem:
		return "DraggingItem"
	case StatePanningBoard:
		return "PanningBoard"
	case StatePinchZoomPan:
		return "PinchZoomPan"
	default:
		return "Unknown"
	}
}

// GestureConfig tunes gesture recognition.
type GestureConfig struct {
	// TouchSlop is the screen-pixel distance separating a stationary press
	// from a pan.
	TouchSlop float64
	// LongPressDuration is how long a press must stay on an item before the
	// item starts dragging.
	LongPressDuration time.Duration
	// WheelZoomStep is the scale factor applied per wheel notch when the zoom
	// modifier is held.
	WheelZoomStep float64
	// WheelPanStep converts wheel notches to screen pixels when panning.
	WheelPanStep float64
	// KeyPanStep is the screen distance one arrow key press pans.
	KeyPanStep float64
}

// DefaultGestureConfig returns the standard tuning.
func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		TouchSlop:         DefaultTouchSlop,
		LongPressDuration: DefaultLongPressDuration,
		WheelZoomStep:     1.1,
		WheelPanStep:      40,
		KeyPanStep:        10,
	}
}

func (c GestureConfig) withDefaults() GestureConfig {
	d := DefaultGestureConfig()
	if !isFinite(c.TouchSlop) || c.TouchSlop < 0 {
		c.TouchSlop = d.TouchSlop
	}
	if c.LongPressDuration <= 0 {
		c.LongPressDuration = d.LongPressDuration
	}
	if !isFinite(c.WheelZoomStep) || c.WheelZoomStep <= 1 {
		c.WheelZoomStep = d.WheelZoomStep
	}
	if !isFinite(c.WheelPanStep) || c.WheelPanStep <= 0 {
		c.WheelPanStep = d.WheelPanStep
	}
	if !isFinite(c.KeyPanStep) || c.KeyPanStep <= 0 {
		c.KeyPanStep = d.KeyPanStep
	}
	return c
}

// View is the host state the gesture machine reads. The machine never writes
// through it.
type View interface {
	// Transform returns the current board transform.
	Transform() Transform
	// HitTest returns the topmost item containing a board-space point.
	HitTest(board Vec2) (Item, bool)
	// Item looks up an item by ID.
	Item(id string) (Item, bool)
}

// LongPressScheduler arms wall-clock timers on behalf of the machine.
// WallTimer implements it.
type LongPressScheduler interface {
	Schedule(token TimerToken, d time.Duration)
	Stop(token TimerToken)
}

// GestureSession is a read-only snapshot of the active session.
type GestureSession struct {
	State      GestureState
	Pointers   int
	ItemID     string
	Offset     Vec2
	Movement   Vec2
	Generation uint64
}

// GestureMachine turns pointer batches into Actions. It is single-threaded:
// every method must be called from the same goroutine.
type GestureMachine struct {
	cfg       GestureConfig
	scheduler LongPressScheduler

	state      GestureState
	generation uint64
	timer      longPressTimer

	pointers map[int]Vec2 // last known screen position of each pressed pointer

	// Single-pointer tracking.
	refID        int
	lastPos      Vec2
	downPos      Vec2
	downBoard    Vec2
	moved        Vec2 // board-space movement since the session began
	slopExceeded bool

	// Item under consideration or being dragged.
	itemID     string
	itemOrigin Vec2
	dragOffset Vec2

	// Pinch baseline.
	prevCentroid Vec2
	prevSpread   float64

	buf []Action
}

// NewGestureMachine creates an idle machine. Zero or invalid config fields
// take their defaults.
func NewGestureMachine(cfg GestureConfig) *GestureMachine {
	return &GestureMachine{
		cfg:      cfg.withDefaults(),
		pointers: make(map[int]Vec2),
	}
}

// Config returns the effective configuration.
func (g *GestureMachine) Config() GestureConfig {
	return g.cfg
}

// SetConfig replaces the configuration. An armed long-press timer keeps its
// original duration.
func (g *GestureMachine) SetConfig(cfg GestureConfig) {
	g.cfg = cfg.withDefaults()
}

// SetScheduler installs a wall-clock scheduler. Pass nil to rely solely on
// Advance.
func (g *GestureMachine) SetScheduler(s LongPressScheduler) {
	g.scheduler = s
}

// State returns the current gesture state.
func (g *GestureMachine) State() GestureState {
	return g.state
}

// Session returns a snapshot of the active session.
func (g *GestureMachine) Session() GestureSession {
	return GestureSession{
		State:      g.state,
		Pointers:   len(g.pointers),
		ItemID:     g.itemID,
		Offset:     g.dragOffset,
		Movement:   g.moved,
		Generation: g.generation,
	}
}

// Reset abandons the active session without emitting anything.
func (g *GestureMachine) Reset() {
	g.cancelLongPress()
	g.generation++
	g.state = StateIdle
	g.itemID = ""
	clear(g.pointers)
}

// OnPointerBatch consumes the full set of currently pressed pointers and
// returns the resulting actions. The returned slice is reused by the next
// call; copy it to retain it.
func (g *GestureMachine) OnPointerBatch(pointers []Pointer, view View) []Action {
	g.buf = g.buf[:0]
	t := view.Transform().Sanitize()
	cur := g.normalize(pointers)

	switch n := len(cur); {
	case g.state == StateIdle:
		switch {
		case n == 1:
			g.beginSingle(cur, t, view)
		case n >= 2:
			g.generation++
			g.resetSession()
			g.enterPinch(cur)
		}
	case n == 0:
		g.endSession()
	case n == 1:
		g.single(cur, t)
	default:
		g.multi(cur, t)
	}

	g.pointers = cur
	return g.buf
}

// Advance moves the frame-driven long-press timer forward by dt.
func (g *GestureMachine) Advance(dt time.Duration, view View) []Action {
	g.buf = g.buf[:0]
	if token, fired := g.timer.advance(dt); fired {
		g.fireLongPress(token, view)
	}
	return g.buf
}

// LongPressExpired delivers a wall-clock timer expiry. Tokens from cancelled
// timers or earlier sessions are discarded.
func (g *GestureMachine) LongPressExpired(token TimerToken, view View) []Action {
	g.buf = g.buf[:0]
	g.fireLongPress(token, view)
	return g.buf
}

// normalize drops duplicate IDs and non-finite samples. A known pointer with
// a broken sample keeps its previous position; an unknown one is skipped.
func (g *GestureMachine) normalize(pointers []Pointer) map[int]Vec2 {
	cur := make(map[int]Vec2, len(pointers))
	for _, p := range pointers {
		if p.Position.finite() {
			cur[p.ID] = p.Position
			continue
		}
		if last, ok := g.pointers[p.ID]; ok {
			cur[p.ID] = last
		}
	}
	return cur
}

// --- Single pointer ---

func (g *GestureMachine) beginSingle(cur map[int]Vec2, t Transform, view View) {
	g.generation++
	g.resetSession()
	for id, pos := range cur {
		g.refID = id
		g.lastPos = pos
		g.downPos = pos
	}
	g.downBoard = ToBoard(g.downPos, t)

	item, ok := view.HitTest(g.downBoard)
	if !ok {
		g.state = StatePanningBoard
		return
	}
	g.state = StateAwaitingLongPress
	g.itemID = item.ID
	g.itemOrigin = item.Position
	g.armLongPress()
}

func (g *GestureMachine) single(cur map[int]Vec2, t Transform) {
	var id int
	var pos Vec2
	for k, v := range cur {
		id, pos = k, v
	}

	if g.state == StatePinchZoomPan {
		// Dropped from a pinch to one finger: keep panning from where the
		// remaining pointer is now.
		g.state = StatePanningBoard
		g.slopExceeded = true
		g.refID = id
		g.lastPos = pos
		return
	}

	if id != g.refID {
		// Missed an up/down pair; resynchronise on the new pointer.
		g.refID = id
		g.lastPos = pos
		return
	}

	delta := pos.Sub(g.lastPos)
	g.lastPos = pos
	if delta.IsZero() {
		return
	}
	boardDelta := ScreenDeltaToBoard(delta, t)

	switch g.state {
	case StateAwaitingLongPress:
		g.moved = g.moved.Add(boardDelta)
		if g.moved.Len() > g.cfg.TouchSlop/t.Scale {
			g.cancelLongPress()
			g.state = StatePanningBoard
			g.slopExceeded = true
			g.emit(PanBy(pos.Sub(g.downPos)))
		}
	case StatePanningBoard:
		if !g.slopExceeded {
			g.moved = g.moved.Add(boardDelta)
			if g.moved.Len() > g.cfg.TouchSlop/t.Scale {
				g.slopExceeded = true
			}
		}
		g.emit(PanBy(delta))
	case StateDraggingItem:
		g.moved = g.moved.Add(boardDelta)
		g.dragOffset = g.dragOffset.Add(boardDelta)
		g.emit(ItemDragPreview(g.itemID, g.dragOffset))
	}
}

// --- Multiple pointers ---

func (g *GestureMachine) multi(cur map[int]Vec2, t Transform) {
	if g.state != StatePinchZoomPan {
		g.cancelLongPress()
		if g.state == StateDraggingItem {
			g.emit(ItemDragCommit(g.itemID, g.dragOffset))
		}
		g.itemID = ""
		g.enterPinch(cur)
		return
	}

	if !samePointerSet(g.pointers, cur) {
		g.rebaselinePinch(cur)
		return
	}

	centroid, spread := centroidAndSpread(cur)
	if g.prevSpread > minPinchSpread && spread > minPinchSpread {
		factor := spread / g.prevSpread
		newScale := ClampScale(t.Scale * factor)
		if newScale != t.Scale {
			g.emit(ZoomTo(newScale, centroid))
		}
	}
	if pan := centroid.Sub(g.prevCentroid); !pan.IsZero() {
		g.emit(PanBy(pan))
	}
	g.prevCentroid = centroid
	g.prevSpread = spread
}

func (g *GestureMachine) enterPinch(cur map[int]Vec2) {
	g.state = StatePinchZoomPan
	g.slopExceeded = true
	g.rebaselinePinch(cur)
}

func (g *GestureMachine) rebaselinePinch(cur map[int]Vec2) {
	g.prevCentroid, g.prevSpread = centroidAndSpread(cur)
}

// centroidAndSpread returns the mean position of all pointers and their mean
// distance from it.
func centroidAndSpread(cur map[int]Vec2) (Vec2, float64) {
	if len(cur) == 0 {
		return Vec2{}, 0
	}
	var sum Vec2
	for _, p := range cur {
		sum = sum.Add(p)
	}
	c := sum.Scale(1 / float64(len(cur)))
	var dist float64
	for _, p := range cur {
		dist += p.Sub(c).Len()
	}
	return c, dist / float64(len(cur))
}

func samePointerSet(a, b map[int]Vec2) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}

// --- Session lifecycle ---

func (g *GestureMachine) endSession() {
	g.cancelLongPress()
	switch g.state {
	case StateDraggingItem:
		g.emit(ItemDragCommit(g.itemID, g.dragOffset))
	case StateAwaitingLongPress:
		g.emit(Tap(g.itemID, g.downBoard))
	case StatePanningBoard:
		if !g.slopExceeded {
			g.emit(Tap("", g.downBoard))
		}
	}
	g.state = StateIdle
	g.itemID = ""
}

func (g *GestureMachine) resetSession() {
	g.moved = Vec2{}
	g.slopExceeded = false
	g.itemID = ""
	g.itemOrigin = Vec2{}
	g.dragOffset = Vec2{}
	g.prevCentroid = Vec2{}
	g.prevSpread = 0
}

// --- Long press ---

func (g *GestureMachine) armLongPress() {
	g.timer.arm(g.generation, g.cfg.LongPressDuration)
	if g.scheduler != nil {
		g.scheduler.Schedule(TimerToken{Generation: g.generation}, g.cfg.LongPressDuration)
	}
}

func (g *GestureMachine) cancelLongPress() {
	if !g.timer.armed {
		return
	}
	g.timer.cancel()
	if g.scheduler != nil {
		g.scheduler.Stop(TimerToken{Generation: g.generation})
	}
}

func (g *GestureMachine) fireLongPress(token TimerToken, view View) {
	if token.Generation != g.generation || g.state != StateAwaitingLongPress || len(g.pointers) != 1 {
		return
	}
	g.cancelLongPress()
	if g.moved.Len() > g.cfg.TouchSlop/view.Transform().Sanitize().Scale {
		return
	}
	item, ok := view.Item(g.itemID)
	if !ok {
		// The item disappeared while the press was pending.
		g.state = StatePanningBoard
		g.slopExceeded = true
		g.itemID = ""
		return
	}
	g.state = StateDraggingItem
	g.itemOrigin = item.Position
	g.dragOffset = item.Position
	g.emit(ItemDragPreview(g.itemID, g.dragOffset))
}

func (g *GestureMachine) emit(a Action) {
	g.buf = append(g.buf, a)
}
