package gridview

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrEmptyScript is returned by LoadTestScript for a script without steps.
var ErrEmptyScript = errors.New("gridview: test script has no steps")

// testStep is one action in a test script. Coordinates are viewport pixels
// except for "goto", whose X and Y are world coordinates.
type testStep struct {
	Action   string  `json:"action"`
	Label    string  `json:"label,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	FromX    float64 `json:"fromX,omitempty"`
	FromY    float64 `json:"fromY,omitempty"`
	ToX      float64 `json:"toX,omitempty"`
	ToY      float64 `json:"toY,omitempty"`
	Delta    float64 `json:"delta,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Duration int     `json:"durationMs,omitempty"`
	Frames   int     `json:"frames,omitempty"`
}

type testScript struct {
	Steps []testStep `json:"steps"`
}

// TestRunner sequences injected input, camera moves and screenshots across
// updates for automated visual testing. Attach with Engine.SetTestRunner.
//
// Supported actions: click, drag, wheel, wait, resize, goto, screenshot.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
}

// LoadTestScript parses a JSON test script.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("gridview: parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, ErrEmptyScript
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "click", "drag", "wheel", "wait", "resize", "goto", "screenshot":
		default:
			return nil, fmt.Errorf("gridview: parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches runner to the engine. Its steps advance from Update,
// before injected input is processed.
func (e *Engine) SetTestRunner(runner *TestRunner) {
	e.testRunner = runner
}

// Done reports whether every step has run.
func (r *TestRunner) Done() bool {
	return r.done
}

// step advances the runner by one update.
func (r *TestRunner) step(e *Engine) {
	if r.done {
		return
	}
	// Let queued input and animations settle before the next step.
	if len(e.injectQueue) > 0 || e.anims.Active() {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++
	d := time.Duration(st.Duration) * time.Millisecond

	switch st.Action {
	case "screenshot":
		e.Screenshot(st.Label)
	case "click":
		e.InjectClick(st.X, st.Y)
	case "drag":
		e.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, max(st.Frames, 2))
	case "wheel":
		e.InjectWheel(st.X, st.Y, st.Delta)
	case "resize":
		e.Resize(st.Width, st.Height, d)
	case "goto":
		e.GoCoords(st.X, st.Y, d, nil)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this update counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(e.injectQueue) == 0 && !e.anims.Active() {
		r.done = true
	}
}
