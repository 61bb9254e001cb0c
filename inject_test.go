package pinboard

import (
	"testing"
	"time"
)

func TestInjectClick(t *testing.T) {
	b := NewBoard(twoNotes())
	var tapped string
	b.OnTap(func(ctx TapContext) { tapped = ctx.ItemID })

	in := NewInjector(0)
	in.Click(50, 50)
	if in.Pending() != 2 {
		t.Fatalf("expected 2 queued frames, got %d", in.Pending())
	}

	// Frame 1: press
	if _, ok := in.Step(b); !ok {
		t.Fatal("Step returned !ok with frames queued")
	}
	if tapped != "" {
		t.Error("tap should not fire on press frame")
	}

	// Frame 2: release -> tap fires
	in.Step(b)
	if in.Pending() != 0 {
		t.Fatalf("expected 0 remaining frames, got %d", in.Pending())
	}
	if tapped != "a" {
		t.Errorf("tapped = %q, want a", tapped)
	}

	if _, ok := in.Step(b); ok {
		t.Error("Step on empty queue should return !ok")
	}
}

func TestInjectHoldDragMovesItem(t *testing.T) {
	b := NewBoard(twoNotes())
	in := NewInjector(0)
	in.HoldDrag(Vec2{50, 50}, Vec2{150, 50}, 600*time.Millisecond, 5)

	// press, hold, 3 interpolated moves, final move, release
	if in.Pending() != 7 {
		t.Fatalf("expected 7 frames, got %d", in.Pending())
	}
	actions := in.Flush(b)

	var previews, commits int
	for _, a := range actions {
		switch a.Kind {
		case ActionItemDragPreview:
			previews++
		case ActionItemDragCommit:
			commits++
		case ActionPanBy:
			t.Error("hold drag should not pan")
		}
	}
	if previews != 5 || commits != 1 {
		t.Errorf("previews=%d commits=%d, want 5 and 1", previews, commits)
	}
	it, _ := b.Item("a")
	assertVec(t, "dropped at", it.Position, Vec2{100, 0})
}

func TestInjectDragPans(t *testing.T) {
	b := NewBoard(twoNotes())
	in := NewInjector(0)
	in.Drag(Vec2{500, 500}, Vec2{540, 500}, 3)
	in.Flush(b)
	assertVec(t, "translation", b.Transform().Translation, Vec2{40, 0})
	if b.Gestures().State() != StateIdle {
		t.Errorf("state = %s after release", b.Gestures().State())
	}
}

func TestInjectDragOnItemWithoutHoldPans(t *testing.T) {
	b := NewBoard(twoNotes())
	in := NewInjector(0)
	in.Drag(Vec2{50, 50}, Vec2{80, 50}, 2)
	in.Flush(b)
	if it, _ := b.Item("a"); it.Position != (Vec2{0, 0}) {
		t.Errorf("quick drag moved the item to %v", it.Position)
	}
	assertVec(t, "translation", b.Transform().Translation, Vec2{30, 0})
}

func TestInjectPinch(t *testing.T) {
	b := NewBoard(twoNotes())
	in := NewInjector(0)
	in.Pinch(Vec2{150, 300}, 100, 200, 4)
	if in.Pending() != 6 {
		t.Fatalf("expected 6 frames, got %d", in.Pending())
	}
	actions := in.Flush(b)
	for _, a := range actions {
		if a.Kind != ActionZoomTo {
			t.Errorf("unexpected %s during a centred pinch", a.Kind)
		}
	}
	assertNear(t, "scale", b.Transform().Scale, 2)
	assertVec(t, "centre", ToBoard(Vec2{150, 300}, b.Transform()), Vec2{150, 300})
}

func TestInjectBatchesSortedByID(t *testing.T) {
	in := NewInjector(0)
	in.Press(3, 0, 0)
	in.Press(1, 10, 10)
	in.Press(2, 20, 20)
	batch := in.frames[2].pointers
	for i, want := range []int{1, 2, 3} {
		if batch[i].ID != want {
			t.Fatalf("batch order = %+v", batch)
		}
	}
}

func TestInjectWait(t *testing.T) {
	in := NewInjector(time.Millisecond)
	in.Wait(0)
	if in.Pending() != 0 {
		t.Error("zero wait should not queue a frame")
	}
	in.Wait(time.Second)
	if f := in.frames[0]; !f.wait || f.dt != time.Second {
		t.Errorf("wait frame = %+v", f)
	}
	if in.frameDT != time.Millisecond {
		t.Errorf("frameDT = %v", in.frameDT)
	}
	if NewInjector(-1).frameDT != DefaultFrameDuration {
		t.Error("non-positive frameDT should use the default")
	}
}
