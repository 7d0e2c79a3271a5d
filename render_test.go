package gridview

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestFrameRendersOnlyWhenNeeded(t *testing.T) {
	e := newTestEngine(t, nil)
	r := canvasRenderer(t, e)
	if !e.Frame() {
		t.Fatal("first Frame did not render")
	}
	if e.Frame() {
		t.Error("Frame rendered without changes")
	}

	e.Draw().DrawRect(RectItem{})
	if !e.NeedsRedraw() || !e.Frame() {
		t.Error("draw registration did not trigger a render")
	}
	e.UpdateCoords(Vec2{X: 3, Y: 3})
	if !e.Frame() {
		t.Error("camera move did not trigger a render")
	}
	if r.Frames() != 3 {
		t.Errorf("Frames = %d, want 3", r.Frames())
	}
}

func TestFrameClearsToBackground(t *testing.T) {
	bg := RGB(0.2, 0.4, 0.6)
	e := newTestEngine(t, func(c *Config) { c.Background = bg })
	e.Frame()
	wantPixel(t, e, 200, 150, bg)
}

func TestOnDrawRunsAfterLayers(t *testing.T) {
	e := newTestEngine(t, nil)
	var order []string
	e.Draw().AddDrawFunction(func(Surface, View) { order = append(order, "layer") }, 100)
	e.OnDraw(func(s Surface, v View) {
		order = append(order, "ondraw")
		s.FillRect(Rect{Width: 10, Height: 10}, testBlue)
	})
	e.Draw().DrawRect(RectItem{Style: Style{Fill: testRed}})
	e.Frame()

	if !slices.Equal(order, []string{"layer", "ondraw"}) {
		t.Errorf("order = %v", order)
	}
	wantPixel(t, e, 5, 5, testBlue)
}

func TestOnDrawRemove(t *testing.T) {
	e := newTestEngine(t, nil)
	calls := 0
	h := e.OnDraw(func(Surface, View) { calls++ })
	e.Frame()
	h.Remove()
	e.RequestRedraw()
	e.Frame()
	if calls != 1 {
		t.Errorf("OnDraw ran %d times, want 1", calls)
	}
}

func TestOverlaysLeaveCameraAlone(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Debug = DebugConfig{Grid: true, HUD: true, Stats: true}
		c.Coordinates.Enabled = true
	})
	e.UpdateCoords(Vec2{X: -12, Y: 40})
	before := e.Camera()
	for range 3 {
		e.RequestRedraw()
		e.Frame()
	}
	if e.Camera() != before {
		t.Errorf("camera changed by overlays: %+v -> %+v", before, e.Camera())
	}
}

func TestDebugGridDrawsLines(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Debug.Grid = true })
	e.Frame()
	// Cell boundaries at multiples of 10px are tinted; cell interiors stay white.
	if got := pixelAt(t, e, 10, 5); got.R == 255 && got.G == 255 && got.B == 255 {
		t.Errorf("pixel on grid line = %v, want tinted", got)
	}
	wantPixel(t, e, 15, 15, ColorWhite)
}

func TestCoordinatesHiddenOutsideScaleRange(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Coordinates = CoordinatesConfig{Enabled: true, ShownScaleRange: ScaleRange{Min: 20, Max: 50}}
	})
	e.Frame()
	wantPixel(t, e, 200, 2, ColorWhite)
}

func TestNewRejectsInvalidSize(t *testing.T) {
	for _, size := range [][2]float64{{0, 100}, {100, -1}, {0, 0}} {
		if _, err := New(DefaultConfig(size[0], size[1])); !errors.Is(err, ErrInvalidSize) {
			t.Errorf("New(%v) err = %v, want ErrInvalidSize", size, err)
		}
	}
}

func TestNewFailsWithoutSurface(t *testing.T) {
	failing := func(w, h int) (Surface, error) { return nil, errors.New("no device") }
	_, err := New(DefaultConfig(100, 100), WithRenderer(NewCanvasRenderer(failing)))
	if !errors.Is(err, ErrNoSurface) {
		t.Fatalf("err = %v, want ErrNoSurface", err)
	}

	empty := func(w, h int) (Surface, error) { return nil, nil }
	if _, err := New(DefaultConfig(100, 100), WithRenderer(NewCanvasRenderer(empty))); !errors.Is(err, ErrNoSurface) {
		t.Errorf("nil surface err = %v, want ErrNoSurface", err)
	}
}

func TestBackingSizeFollowsDPR(t *testing.T) {
	e, err := New(DefaultConfig(300, 200), WithDPR(2))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Destroy()
	if w, h := canvasRenderer(t, e).Surface().Size(); w != 600 || h != 400 {
		t.Errorf("backing = %dx%d, want 600x400", w, h)
	}
	e.Draw().DrawRect(RectItem{Style: Style{Fill: testRed}})
	e.Frame()
	// One cell at scale 10 and DPR 2 covers 20 device pixels.
	wantPixel(t, e, 15, 15, testRed)
	wantPixel(t, e, 25, 5, ColorWhite)
}

func TestDestroyIdempotent(t *testing.T) {
	e, err := New(DefaultConfig(100, 100))
	if err != nil {
		t.Fatal(err)
	}
	e.Draw().DrawStaticRect("k", RectItem{})
	e.Frame()
	e.Destroy()
	e.Destroy()
	if canvasRenderer(t, e).Surface() != nil {
		t.Error("surface kept after Destroy")
	}
	if e.Frame() {
		t.Error("Frame rendered after Destroy")
	}
	e.Update(0)
}

func TestLabelStep(t *testing.T) {
	tests := []struct {
		scale, min float64
		want       float64
	}{
		{100, 48, 1},
		{10, 48, 5},
		{4, 48, 20},
		{1, 48, 50},
		{0.1, 48, 500},
		{0, 48, 1},
	}
	for _, tt := range tests {
		if got := labelStep(tt.scale, tt.min); got != tt.want {
			t.Errorf("labelStep(%v, %v) = %v, want %v", tt.scale, tt.min, got, tt.want)
		}
	}
}

func TestGridLines(t *testing.T) {
	got := gridLines(-3.5, 10, 5)
	if !slices.Equal(got, []float64{0, 5}) {
		t.Errorf("gridLines = %v, want [0 5]", got)
	}
	if got := gridLines(0, 2, 1); !slices.Equal(got, []float64{0, 1, 2}) {
		t.Errorf("gridLines = %v, want [0 1 2]", got)
	}
}

func TestGridLinesDegenerate(t *testing.T) {
	tests := []struct {
		name           string
		lo, span, step float64
	}{
		{"step below float spacing", 1e17, 20, 5},
		{"too many lines", 0, 1e6, 1},
		{"zero step", 0, 10, 0},
		{"negative span", 0, -1, 1},
	}
	for _, tt := range tests {
		if got := gridLines(tt.lo, tt.span, tt.step); got != nil {
			t.Errorf("%s: gridLines = %d values, want nil", tt.name, len(got))
		}
	}
}

func TestOverlaysAtHugeCoordinates(t *testing.T) {
	e := newTestEngine(t, func(c *Config) {
		c.Coordinates.Enabled = true
		c.Debug.Grid = true
	})
	e.UpdateCoords(Vec2{X: 1e17, Y: -1e17})

	done := make(chan bool, 1)
	go func() { done <- e.Frame() }()
	select {
	case rendered := <-done:
		if !rendered {
			t.Error("Frame did not render")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Frame did not return at 1e17")
	}
}
