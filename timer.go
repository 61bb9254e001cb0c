package pinboard

import (
	"sync"
	"time"
)

// DefaultLongPressDuration is how long a press must stay still on an item
// before it starts dragging.
const DefaultLongPressDuration = 500 * time.Millisecond

// TimerToken identifies one armed long-press timer. A token whose generation
// no longer matches the machine's current generation is stale.
type TimerToken struct {
	Generation uint64
}

// longPressTimer is the frame-driven timer owned by the gesture machine.
// It never fires on its own; Advance reports expiry synchronously.
type longPressTimer struct {
	armed      bool
	generation uint64
	remaining  time.Duration
}

func (t *longPressTimer) arm(generation uint64, d time.Duration) {
	t.armed = true
	t.generation = generation
	t.remaining = d
}

func (t *longPressTimer) cancel() {
	t.armed = false
	t.remaining = 0
}

// advance subtracts dt and returns the token once the timer expires. The
// timer disarms itself when it fires.
func (t *longPressTimer) advance(dt time.Duration) (TimerToken, bool) {
	if !t.armed {
		return TimerToken{}, false
	}
	t.remaining -= dt
	if t.remaining > 0 {
		return TimerToken{}, false
	}
	t.armed = false
	return TimerToken{Generation: t.generation}, true
}

// --- Wall-clock timers ---

// WallTimer schedules long-press expiry on the real clock for hosts that do
// not run a fixed-step update loop. Expired tokens are delivered on C and must
// be handed to GestureMachine.LongPressExpired from the gesture thread,
// between pointer batches. Stopped timers never deliver.
type WallTimer struct {
	mu      sync.Mutex
	pending map[uint64]*time.Timer
	c       chan TimerToken
}

// NewWallTimer creates a WallTimer whose channel buffers up to buffer tokens.
func NewWallTimer(buffer int) *WallTimer {
	if buffer < 1 {
		buffer = 1
	}
	return &WallTimer{
		pending: make(map[uint64]*time.Timer),
		c:       make(chan TimerToken, buffer),
	}
}

// C returns the channel expired tokens are delivered on.
func (w *WallTimer) C() <-chan TimerToken {
	return w.c
}

// Schedule arms a timer for token after d. Scheduling the same generation
// twice replaces the earlier timer.
func (w *WallTimer) Schedule(token TimerToken, d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if old, ok := w.pending[token.Generation]; ok {
		old.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		w.mu.Lock()
		cur, ok := w.pending[token.Generation]
		if !ok || cur != t {
			w.mu.Unlock()
			return
		}
		delete(w.pending, token.Generation)
		w.mu.Unlock()
		select {
		case w.c <- token:
		default:
			// Channel full: the host is not draining; the gesture machine
			// would discard a late token anyway.
		}
	})
	w.pending[token.Generation] = t
}

// Stop cancels the timer for token. Unknown tokens are a no-op.
func (w *WallTimer) Stop(token TimerToken) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[token.Generation]; ok {
		t.Stop()
		delete(w.pending, token.Generation)
	}
}

// StopAll cancels every pending timer.
func (w *WallTimer) StopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for gen, t := range w.pending {
		t.Stop()
		delete(w.pending, gen)
	}
}
