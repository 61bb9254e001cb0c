package pinboard

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	mousePointerID = 0  // pointer 0 is the left mouse button
	maxTouchSlots  = 10 // touch contacts map to pointer IDs 1-10
)

// InputFrame is everything read from the platform in one frame.
type InputFrame struct {
	// Pointers is the complete set of pressed pointers.
	Pointers []Pointer
	// Cursor is the mouse position, used as the wheel zoom pivot.
	Cursor Vec2
	// Wheel is the scroll delta in notches, positive Y meaning scroll down.
	Wheel Vec2
	// ZoomModifier is true while Ctrl (or Cmd) is held.
	ZoomModifier bool
	// Keys lists arrow keys that went down this frame.
	Keys []ArrowKey
}

// EbitenInput reads mouse, touch, wheel and keyboard state from ebiten and
// turns it into pointer batches. Call Poll once per ebiten Update.
type EbitenInput struct {
	slots   touchSlots
	touches []ebiten.TouchID
	frame   InputFrame
}

// NewEbitenInput creates an input adapter.
func NewEbitenInput() *EbitenInput {
	return &EbitenInput{}
}

// Poll reads the current platform input. The returned frame is reused by
// the next call.
func (e *EbitenInput) Poll() InputFrame {
	f := &e.frame
	f.Pointers = f.Pointers[:0]
	f.Keys = f.Keys[:0]

	mx, my := ebiten.CursorPosition()
	f.Cursor = Vec2{float64(mx), float64(my)}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		f.Pointers = append(f.Pointers, Pointer{ID: mousePointerID, Position: f.Cursor})
	}

	e.touches = ebiten.AppendTouchIDs(e.touches[:0])
	for _, tid := range e.slots.assign(e.touches) {
		tx, ty := ebiten.TouchPosition(tid.touch)
		f.Pointers = append(f.Pointers, Pointer{
			ID:       tid.slot,
			Position: Vec2{float64(tx), float64(ty)},
		})
	}

	// ebiten reports wheel up as positive Y.
	wx, wy := ebiten.Wheel()
	f.Wheel = Vec2{-wx, -wy}
	f.ZoomModifier = ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)

	for _, k := range []struct {
		key   ebiten.Key
		arrow ArrowKey
	}{
		{ebiten.KeyArrowLeft, ArrowLeft},
		{ebiten.KeyArrowUp, ArrowUp},
		{ebiten.KeyArrowRight, ArrowRight},
		{ebiten.KeyArrowDown, ArrowDown},
	} {
		if inpututil.IsKeyJustPressed(k.key) {
			f.Keys = append(f.Keys, k.arrow)
		}
	}
	return *f
}

// Feed polls input and drives b with it: one pointer batch, then wheel and
// key events. It returns every action applied this frame.
func (e *EbitenInput) Feed(b *Board) []Action {
	f := e.Poll()
	return FeedFrame(b, f)
}

// FeedFrame drives b with an already captured frame.
func FeedFrame(b *Board, f InputFrame) []Action {
	out := b.HandlePointers(f.Pointers)
	if !f.Wheel.IsZero() {
		out = append(out, b.HandleWheel(f.Cursor, f.Wheel, f.ZoomModifier)...)
	}
	for _, k := range f.Keys {
		out = append(out, b.HandleArrowKey(k)...)
	}
	return out
}

// --- Touch slots ---

type slotTouch struct {
	slot  int
	touch ebiten.TouchID
}

// touchSlots maps ebiten touch IDs to stable pointer IDs 1..maxTouchSlots.
// A contact keeps its slot for as long as it stays down.
type touchSlots struct {
	used  [maxTouchSlots]bool
	touch [maxTouchSlots]ebiten.TouchID
	out   []slotTouch
}

// assign returns the slot for every active touch, freeing slots of touches
// that lifted. Touches beyond the slot count are dropped.
func (s *touchSlots) assign(active []ebiten.TouchID) []slotTouch {
	var live [maxTouchSlots]bool
	s.out = s.out[:0]
	for _, tid := range active {
		i := s.find(tid)
		if i < 0 {
			i = s.claim(tid)
		}
		if i < 0 {
			continue
		}
		live[i] = true
		s.out = append(s.out, slotTouch{slot: i + 1, touch: tid})
	}
	for i := range s.used {
		if s.used[i] && !live[i] {
			s.used[i] = false
			s.touch[i] = 0
		}
	}
	return s.out
}

func (s *touchSlots) find(tid ebiten.TouchID) int {
	for i := range s.used {
		if s.used[i] && s.touch[i] == tid {
			return i
		}
	}
	return -1
}

func (s *touchSlots) claim(tid ebiten.TouchID) int {
	for i := range s.used {
		if !s.used[i] {
			s.used[i] = true
			s.touch[i] = tid
			return i
		}
	}
	return -1
}
