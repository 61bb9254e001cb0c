package pinboard

import (
	"fmt"
	"strings"
	"time"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

// scriptStep represents a single action in a gesture script.
type scriptStep struct {
	Action     string  `json:"action"`
	Label      string  `json:"label,omitempty"`
	ID         int     `json:"id,omitempty"`
	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	FromX      float64 `json:"fromX,omitempty"`
	FromY      float64 `json:"fromY,omitempty"`
	ToX        float64 `json:"toX,omitempty"`
	ToY        float64 `json:"toY,omitempty"`
	FromSpread float64 `json:"fromSpread,omitempty"`
	ToSpread   float64 `json:"toSpread,omitempty"`
	Frames     int     `json:"frames,omitempty"`
	HoldMs     int     `json:"holdMs,omitempty"`
	Ms         int     `json:"ms,omitempty"`
	DX         float64 `json:"dx,omitempty"`
	DY         float64 `json:"dy,omitempty"`
	Ctrl       bool    `json:"ctrl,omitempty"`
	Key        string  `json:"key,omitempty"`
	State      string  `json:"state,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	Item       string  `json:"item,omitempty"`
}

// gestureScript is the top-level JSON structure for a gesture script.
type gestureScript struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays a gesture script against a Board through an Injector.
//
// Supported actions: press, move, release, click, drag, pinch, wait, wheel,
// key, fit, reset and expect. An expect step checks the gesture state
// ("state"), the board scale ("scale") or an item position ("item", "x", "y")
// and fails the run on mismatch.
type ScriptRunner struct {
	steps    []scriptStep
	cursor   int
	injector *Injector
	actions  []Action
	done     bool
}

// LoadGestureScript parses a gesture script. Scripts are JSON5, so
// hand-written ones may carry comments and trailing commas.
func LoadGestureScript(jsonData []byte) (*ScriptRunner, error) {
	var script gestureScript
	if err := json5.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse gesture script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse gesture script: no steps")
	}
	for i, st := range script.Steps {
		if !knownScriptAction(st.Action) {
			return nil, fmt.Errorf("parse gesture script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{
		steps:    script.Steps,
		injector: NewInjector(0),
	}, nil
}

func knownScriptAction(a string) bool {
	switch a {
	case "press", "move", "release", "click", "drag", "pinch", "wait",
		"wheel", "key", "fit", "reset", "expect":
		return true
	}
	return false
}

// Done reports whether every step has been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// Actions returns every action produced so far.
func (r *ScriptRunner) Actions() []Action {
	return r.actions
}

// Run executes the whole script against b.
func (r *ScriptRunner) Run(b *Board) error {
	for !r.done {
		if err := r.Step(b); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the runner by one frame. Queued injections drain one frame
// at a time before the next script step runs.
func (r *ScriptRunner) Step(b *Board) error {
	if r.done {
		return nil
	}
	if r.injector.Pending() > 0 {
		actions, _ := r.injector.Step(b)
		r.actions = append(r.actions, actions...)
		r.checkDone()
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	if err := r.exec(b, st); err != nil {
		return fmt.Errorf("step %d (%s): %w", r.cursor-1, st.Action, err)
	}
	r.checkDone()
	return nil
}

func (r *ScriptRunner) checkDone() {
	if r.cursor >= len(r.steps) && r.injector.Pending() == 0 {
		r.done = true
	}
}

func (r *ScriptRunner) exec(b *Board, st scriptStep) error {
	in := r.injector
	switch st.Action {
	case "press":
		in.Press(st.ID, st.X, st.Y)
	case "move":
		in.Move(st.ID, st.X, st.Y)
	case "release":
		in.Release(st.ID)
	case "click":
		in.Click(st.X, st.Y)
	case "drag":
		from, to := Vec2{st.FromX, st.FromY}, Vec2{st.ToX, st.ToY}
		if st.HoldMs > 0 {
			in.HoldDrag(from, to, time.Duration(st.HoldMs)*time.Millisecond, st.Frames)
		} else {
			in.Drag(from, to, st.Frames)
		}
	case "pinch":
		in.Pinch(Vec2{st.X, st.Y}, st.FromSpread, st.ToSpread, st.Frames)
	case "wait":
		in.Wait(time.Duration(st.Ms) * time.Millisecond)
	case "wheel":
		r.actions = append(r.actions, b.HandleWheel(Vec2{st.X, st.Y}, Vec2{st.DX, st.DY}, st.Ctrl)...)
	case "key":
		key, ok := parseArrowKey(st.Key)
		if !ok {
			return fmt.Errorf("unknown key %q", st.Key)
		}
		r.actions = append(r.actions, b.HandleArrowKey(key)...)
	case "fit":
		b.ZoomToFit()
	case "reset":
		b.ZoomReset()
	case "expect":
		return expectStep(b, st)
	}
	return nil
}

func expectStep(b *Board, st scriptStep) error {
	if st.State != "" {
		if got := b.Gestures().State().String(); !strings.EqualFold(got, st.State) {
			return fmt.Errorf("expected state %s, got %s", st.State, got)
		}
	}
	if st.Scale != 0 {
		if got := b.Transform().Scale; !nearlyEqual(got, st.Scale, 1e-6) {
			return fmt.Errorf("expected scale %g, got %g", st.Scale, got)
		}
	}
	if st.Item != "" {
		it, ok := b.Item(st.Item)
		if !ok {
			return fmt.Errorf("expected item %q to exist", st.Item)
		}
		want := Vec2{st.X, st.Y}
		if !nearlyEqual(it.Position.X, want.X, 1e-6) || !nearlyEqual(it.Position.Y, want.Y, 1e-6) {
			return fmt.Errorf("expected item %q at (%g, %g), got (%g, %g)",
				st.Item, want.X, want.Y, it.Position.X, it.Position.Y)
		}
	}
	return nil
}

func parseArrowKey(s string) (ArrowKey, bool) {
	switch strings.ToLower(s) {
	case "left":
		return ArrowLeft, true
	case "up":
		return ArrowUp, true
	case "right":
		return ArrowRight, true
	case "down":
		return ArrowDown, true
	}
	return 0, false
}

func nearlyEqual(a, b, eps float64) bool {
	d := a - b
	return d < eps && d > -eps
}
