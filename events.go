package pinboard

// EventType identifies a kind of board event a host can subscribe to.
type EventType uint8

const (
	EventItemMoved EventType = iota // fires after a drag commit or arrangement moves an item
	EventTap                        // fires on a tap, with or without an item
	EventTransform                  // fires whenever the board transform changes
)

// ItemMovedContext carries the result of a committed move.
type ItemMovedContext struct {
	ItemID   string
	From, To Vec2
	// Arranged is true when the move came from a smart-arrange result rather
	// than a drag.
	Arranged bool
}

// TapContext carries tap data. ItemID is empty for taps on the background.
type TapContext struct {
	ItemID string
	Point  Vec2
}

// --- Handler registry ---

type itemMovedHandler struct {
	id uint32
	fn func(ItemMovedContext)
}

type tapHandler struct {
	id uint32
	fn func(TapContext)
}

type transformHandler struct {
	id uint32
	fn func(Transform)
}

type handlerRegistry struct {
	itemMoved []itemMovedHandler
	tap       []tapHandler
	transform []transformHandler
	nextID    uint32
}

// CallbackHandle allows removing a registered board callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventItemMoved:
		h.reg.itemMoved = removeHandler(h.reg.itemMoved, h.id, func(x itemMovedHandler) uint32 { return x.id })
	case EventTap:
		h.reg.tap = removeHandler(h.reg.tap, h.id, func(x tapHandler) uint32 { return x.id })
	case EventTransform:
		h.reg.transform = removeHandler(h.reg.transform, h.id, func(x transformHandler) uint32 { return x.id })
	}
}

func removeHandler[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			var zero T
			copy(s[i:], s[i+1:])
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// OnItemMoved registers a callback for committed item moves.
func (b *Board) OnItemMoved(fn func(ItemMovedContext)) CallbackHandle {
	b.handlers.nextID++
	id := b.handlers.nextID
	b.handlers.itemMoved = append(b.handlers.itemMoved, itemMovedHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &b.handlers, event: EventItemMoved}
}

// OnTap registers a callback for taps.
func (b *Board) OnTap(fn func(TapContext)) CallbackHandle {
	b.handlers.nextID++
	id := b.handlers.nextID
	b.handlers.tap = append(b.handlers.tap, tapHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &b.handlers, event: EventTap}
}

// OnTransform registers a callback for transform changes.
func (b *Board) OnTransform(fn func(Transform)) CallbackHandle {
	b.handlers.nextID++
	id := b.handlers.nextID
	b.handlers.transform = append(b.handlers.transform, transformHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &b.handlers, event: EventTransform}
}

func (b *Board) fireItemMoved(ctx ItemMovedContext) {
	for _, h := range b.handlers.itemMoved {
		h.fn(ctx)
	}
}

func (b *Board) fireTap(ctx TapContext) {
	for _, h := range b.handlers.tap {
		h.fn(ctx)
	}
}

func (b *Board) fireTransform(t Transform) {
	for _, h := range b.handlers.transform {
		h.fn(t)
	}
}

// --- Action sink ---

// ActionEvent is an applied action together with the board state right
// after it was applied.
type ActionEvent struct {
	Action    Action
	State     GestureState
	Transform Transform
}

// ActionSink receives every action a Board applies. The ecs package provides
// a Donburi-backed implementation.
type ActionSink interface {
	EmitAction(ActionEvent)
}

// SetActionSink installs a sink for applied actions. Pass nil to remove it.
func (b *Board) SetActionSink(sink ActionSink) {
	b.sink = sink
}
