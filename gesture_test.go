package gridview

import (
	"math"
	"testing"
)

func newTestEngine(t *testing.T, mutate func(*Config)) *Engine {
	t.Helper()
	cfg := DefaultConfig(400, 300)
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Destroy)
	return e
}

func mouse(kind PointerKind, x, y float64) PointerEvent {
	return PointerEvent{Kind: kind, Type: PointerMouse, X: x, Y: y, Pressed: kind == PointerDown || kind == PointerMove}
}

func hoverMove(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerMove, Type: PointerMouse, X: x, Y: y}
}

func touch(kind PointerKind, id int, x, y float64) PointerEvent {
	return PointerEvent{Kind: kind, ID: id, Type: PointerTouch, X: x, Y: y, Pressed: kind != PointerUp}
}

func TestClickVersusDrag(t *testing.T) {
	tests := []struct {
		name       string
		distance   float64
		wantClicks int
	}{
		{"2px is a click", 2, 1},
		{"50px is a drag", 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, nil)
			var clicks int
			e.OnClick(func(PointerContext) { clicks++ })
			before := e.CenterCoords()

			e.HandlePointer(mouse(PointerDown, 100, 100))
			e.HandlePointer(mouse(PointerMove, 100+tt.distance, 100))
			e.HandlePointer(mouse(PointerUp, 100+tt.distance, 100))

			if clicks != tt.wantClicks {
				t.Errorf("clicks = %d, want %d", clicks, tt.wantClicks)
			}
			after := e.CenterCoords()
			want := before.X - tt.distance/DefaultScale
			if !approxEqual(after.X, want, epsilon) {
				t.Errorf("center.X = %v, want %v", after.X, want)
			}
			if e.Gestures().Dragging() {
				t.Error("still dragging after release")
			}
		})
	}
}

func TestClickThresholdIsCumulative(t *testing.T) {
	e := newTestEngine(t, nil)
	var clicks int
	e.OnClick(func(PointerContext) { clicks++ })

	// Wiggle 3px out and back twice: net 0, path 12px.
	e.HandlePointer(mouse(PointerDown, 50, 50))
	for _, x := range []float64{53, 50, 53, 50} {
		e.HandlePointer(mouse(PointerMove, x, 50))
	}
	e.HandlePointer(mouse(PointerUp, 50, 50))
	if clicks != 0 {
		t.Errorf("clicks = %d, want 0 once the path exceeds the threshold", clicks)
	}
}

func TestClickContext(t *testing.T) {
	e := newTestEngine(t, nil)
	e.UpdateCoords(Vec2{X: 20, Y: 15})
	var got PointerContext
	e.OnClick(func(ctx PointerContext) { got = ctx })

	e.HandlePointer(mouse(PointerDown, 215, 155))
	e.HandlePointer(mouse(PointerUp, 215, 155))

	// Center (200,150) shows world (20,15); 15px right is 1.5 cells.
	if !approxEqual(got.World.X, 21.5, epsilon) || !approxEqual(got.World.Y, 15.5, epsilon) {
		t.Errorf("World = %+v, want (21.5,15.5)", got.World)
	}
	if got.Cell != (Cell{X: 21, Y: 15}) {
		t.Errorf("Cell = %+v, want (21,15)", got.Cell)
	}
	if got.Screen != (Vec2{X: 215, Y: 155}) {
		t.Errorf("Screen = %+v", got.Screen)
	}
}

func TestCallbackOrder(t *testing.T) {
	e := newTestEngine(t, nil)
	var order []EventType
	e.OnMouseDown(func(PointerContext) { order = append(order, EventMouseDown) })
	e.OnClick(func(PointerContext) { order = append(order, EventClick) })
	e.OnMouseUp(func(PointerContext) { order = append(order, EventMouseUp) })

	e.HandlePointer(mouse(PointerDown, 10, 10))
	e.HandlePointer(mouse(PointerUp, 10, 10))

	want := []EventType{EventMouseDown, EventClick, EventMouseUp}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %v, want %v", i, order[i], want[i])
		}
	}
}

func TestRightClickDoesNotPanOrClick(t *testing.T) {
	e := newTestEngine(t, nil)
	var clicks, right int
	e.OnClick(func(PointerContext) { clicks++ })
	e.OnRightClick(func(ctx PointerContext) {
		right++
		if ctx.Button != MouseButtonRight {
			t.Errorf("Button = %v, want right", ctx.Button)
		}
	})
	before := e.CenterCoords()

	down := mouse(PointerDown, 100, 100)
	down.Button = MouseButtonRight
	e.HandlePointer(down)
	e.HandlePointer(mouse(PointerMove, 150, 100))
	up := mouse(PointerUp, 150, 100)
	up.Button = MouseButtonRight
	e.HandlePointer(up)

	if right != 1 || clicks != 0 {
		t.Errorf("right = %d, clicks = %d, want 1 and 0", right, clicks)
	}
	if e.CenterCoords() != before {
		t.Error("right-button drag panned the camera")
	}
}

func TestDragDisabled(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.EventHandlers.Drag = false })
	before := e.CenterCoords()
	e.HandlePointer(mouse(PointerDown, 100, 100))
	e.HandlePointer(mouse(PointerMove, 200, 100))
	e.HandlePointer(mouse(PointerUp, 200, 100))
	if e.CenterCoords() != before {
		t.Error("camera panned with drag disabled")
	}
}

func TestClickDisabled(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.EventHandlers.Click = false })
	var clicks int
	e.OnClick(func(PointerContext) { clicks++ })
	e.HandlePointer(mouse(PointerDown, 100, 100))
	e.HandlePointer(mouse(PointerUp, 100, 100))
	if clicks != 0 {
		t.Errorf("clicks = %d with click disabled", clicks)
	}
}

func TestHover(t *testing.T) {
	e := newTestEngine(t, nil)
	var hovers []Cell
	e.OnHover(func(ctx PointerContext) { hovers = append(hovers, ctx.Cell) })
	e.HandlePointer(hoverMove(5, 5))
	e.HandlePointer(hoverMove(25, 5))
	if len(hovers) != 2 || hovers[1] != (Cell{X: 2, Y: 0}) {
		t.Errorf("hovers = %v", hovers)
	}

	// Moves with a button held are drags, not hovers.
	e.HandlePointer(mouse(PointerDown, 25, 5))
	e.HandlePointer(mouse(PointerMove, 60, 5))
	e.HandlePointer(mouse(PointerUp, 60, 5))
	if len(hovers) != 2 {
		t.Errorf("hover fired %d times, want 2 after a drag", len(hovers))
	}

	off := newTestEngine(t, func(c *Config) { c.EventHandlers.Hover = false })
	var n int
	off.OnHover(func(PointerContext) { n++ })
	off.HandlePointer(hoverMove(5, 5))
	if n != 0 {
		t.Errorf("hover fired %d times while disabled", n)
	}
}

func TestMouseLeaveResetsDrag(t *testing.T) {
	e := newTestEngine(t, nil)
	var leaves, clicks int
	e.OnMouseLeave(func(PointerContext) { leaves++ })
	e.OnClick(func(PointerContext) { clicks++ })

	e.HandlePointer(mouse(PointerDown, 10, 10))
	e.HandlePointer(PointerEvent{Kind: PointerLeave, X: 10, Y: 10})
	if e.Gestures().Dragging() || e.Gestures().ActivePointers() != 0 {
		t.Error("leave did not reset gesture state")
	}
	// A release after leaving is stale and ignored.
	e.HandlePointer(mouse(PointerUp, 10, 10))
	if leaves != 1 || clicks != 0 {
		t.Errorf("leaves = %d, clicks = %d, want 1 and 0", leaves, clicks)
	}
}

func TestStaleAndInvalidInputIgnored(t *testing.T) {
	e := newTestEngine(t, nil)
	var ups int
	e.OnMouseUp(func(PointerContext) { ups++ })
	before := e.CenterCoords()

	e.HandlePointer(mouse(PointerUp, 10, 10))         // release without press
	e.HandlePointer(mouse(PointerMove, 50, 50))        // move without press
	e.HandlePointer(mouse(PointerDown, math.NaN(), 1)) // non-finite
	e.HandlePointer(PointerEvent{Kind: PointerKind(99)})

	if ups != 0 || e.CenterCoords() != before || e.Gestures().ActivePointers() != 0 {
		t.Error("anomalous input changed state")
	}

	// A duplicate press keeps the original origin.
	e.HandlePointer(mouse(PointerDown, 10, 10))
	e.HandlePointer(mouse(PointerDown, 90, 90))
	if e.Gestures().ActivePointers() != 1 {
		t.Errorf("ActivePointers = %d, want 1", e.Gestures().ActivePointers())
	}
}

func TestWheelZoom(t *testing.T) {
	e := newTestEngine(t, nil)
	var zooms []float64
	e.OnZoom(func(s float64) { zooms = append(zooms, s) })
	v := e.Camera()
	anchorWX, anchorWY := v.ScreenToWorld(120, 80)

	e.HandlePointer(PointerEvent{Kind: PointerWheel, X: 120, Y: 80, DeltaY: -100})

	v = e.Camera()
	if !(v.Scale > DefaultScale) {
		t.Fatalf("Scale = %v, want zoom in", v.Scale)
	}
	wx, wy := v.ScreenToWorld(120, 80)
	if !approxEqual(wx, anchorWX, 1e-9) || !approxEqual(wy, anchorWY, 1e-9) {
		t.Errorf("world under wheel moved from (%v,%v) to (%v,%v)", anchorWX, anchorWY, wx, wy)
	}
	if len(zooms) != 1 || zooms[0] != v.Scale {
		t.Errorf("OnZoom = %v, want [%v]", zooms, v.Scale)
	}
}

func TestWheelDeltaIsClamped(t *testing.T) {
	a := newTestEngine(t, nil)
	b := newTestEngine(t, nil)
	a.HandlePointer(PointerEvent{Kind: PointerWheel, X: 0, Y: 0, DeltaY: -DefaultWheelDeltaLimit})
	b.HandlePointer(PointerEvent{Kind: PointerWheel, X: 0, Y: 0, DeltaY: -50 * DefaultWheelDeltaLimit})
	if a.Camera().Scale != b.Camera().Scale {
		t.Errorf("huge wheel delta zoomed to %v, want %v", b.Camera().Scale, a.Camera().Scale)
	}
}

func TestWheelZoomDisabled(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.EventHandlers.Zoom = false })
	e.HandlePointer(PointerEvent{Kind: PointerWheel, X: 10, Y: 10, DeltaY: -100})
	if e.Camera().Scale != DefaultScale {
		t.Errorf("Scale = %v with zoom disabled", e.Camera().Scale)
	}
}

func TestPinchZoom(t *testing.T) {
	e := newTestEngine(t, nil)
	var clicks int
	e.OnClick(func(PointerContext) { clicks++ })

	e.HandlePointer(touch(PointerDown, 1, 150, 150))
	e.HandlePointer(touch(PointerDown, 2, 250, 150))
	if !e.Gestures().Pinching() {
		t.Fatal("two touches did not start a pinch")
	}
	// Spread to twice the start distance. Each move zooms relative to the
	// start scale, anchored at the current midpoint.
	e.HandlePointer(touch(PointerMove, 1, 100, 150))
	if got := e.Camera().Scale; !approxEqual(got, 1.5*DefaultScale, 1e-9) {
		t.Errorf("Scale = %v, want %v", got, 1.5*DefaultScale)
	}
	midWX, midWY := e.Camera().ScreenToWorld(200, 150)
	e.HandlePointer(touch(PointerMove, 2, 300, 150))

	v := e.Camera()
	if !approxEqual(v.Scale, 2*DefaultScale, 1e-9) {
		t.Errorf("Scale = %v, want %v", v.Scale, 2*DefaultScale)
	}
	wx, wy := v.ScreenToWorld(200, 150)
	if !approxEqual(wx, midWX, 1e-9) || !approxEqual(wy, midWY, 1e-9) {
		t.Errorf("midpoint world moved from (%v,%v) to (%v,%v)", midWX, midWY, wx, wy)
	}

	e.HandlePointer(touch(PointerUp, 2, 300, 150))
	if e.Gestures().Pinching() {
		t.Error("pinch still active after a touch lifted")
	}
	e.HandlePointer(touch(PointerUp, 1, 100, 150))
	if clicks != 0 {
		t.Errorf("pinch produced %d clicks", clicks)
	}
}

func TestTouchEndFiresLeave(t *testing.T) {
	e := newTestEngine(t, nil)
	var leaves int
	e.OnMouseLeave(func(PointerContext) { leaves++ })
	e.HandlePointer(touch(PointerDown, 1, 10, 10))
	e.HandlePointer(touch(PointerUp, 1, 10, 10))
	if leaves != 1 {
		t.Errorf("leaves = %d, want 1", leaves)
	}
}

func TestDragFiresCoordsChange(t *testing.T) {
	e := newTestEngine(t, nil)
	var centers []Vec2
	e.OnCoordsChange(func(c Vec2) { centers = append(centers, c) })
	e.HandlePointer(mouse(PointerDown, 100, 100))
	e.HandlePointer(mouse(PointerMove, 120, 100))
	e.HandlePointer(mouse(PointerMove, 140, 100))
	e.HandlePointer(mouse(PointerUp, 140, 100))
	if len(centers) != 2 {
		t.Fatalf("coords changes = %d, want 2", len(centers))
	}
	if last := centers[1]; last != e.CenterCoords() {
		t.Errorf("last reported center %+v != %+v", last, e.CenterCoords())
	}
}

func TestPointerSourceAttachDetach(t *testing.T) {
	e := newTestEngine(t, nil)
	var feed PointerFeed
	var downs int
	e.OnMouseDown(func(PointerContext) { downs++ })

	e.AttachPointerSource(&feed)
	e.AttachPointerSource(&feed) // no-op
	if feed.Len() != 1 {
		t.Fatalf("watchers = %d, want 1", feed.Len())
	}
	feed.Publish(mouse(PointerDown, 1, 1))
	e.DetachSources()
	e.DetachSources()
	feed.Publish(mouse(PointerDown, 2, 2))

	if downs != 1 || feed.Len() != 0 {
		t.Errorf("downs = %d, watchers = %d, want 1 and 0", downs, feed.Len())
	}
}

func TestCallbackHandleRemove(t *testing.T) {
	e := newTestEngine(t, nil)
	var a, b int
	ha := e.OnClick(func(PointerContext) { a++ })
	e.OnClick(func(PointerContext) { b++ })
	ha.Remove()
	ha.Remove()

	e.HandlePointer(mouse(PointerDown, 1, 1))
	e.HandlePointer(mouse(PointerUp, 1, 1))
	if a != 0 || b != 1 {
		t.Errorf("a = %d, b = %d, want 0 and 1", a, b)
	}
}
