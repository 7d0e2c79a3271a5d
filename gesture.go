package gridview

import "math"

// --- Per-pointer state ---

type pointerState struct {
	typ          PointerType
	button       MouseButton // button captured at press time
	lastX, lastY float64
	clientX      float64
	clientY      float64
}

// --- Pinch state ---

type pinchState struct {
	active     bool
	pointer0   int
	pointer1   int
	startDist  float64
	startScale float64
}

// GestureProcessor turns normalized pointer records into camera mutations
// and callbacks. It is a state machine over Idle and Dragging, with a
// parallel pinch state while two touches are down.
//
// Anomalous input (unknown pointer ids, non-finite coordinates, zero pinch
// distance) is dropped without a signal.
type GestureProcessor struct {
	cfg      *Config
	cam      *Camera
	handlers *handlerRegistry
	redraw   func()

	pointers map[int]*pointerState
	order    []int // active pointer ids in press order

	dragging bool
	dragID   int
	originX  float64
	originY  float64
	travel   float64 // cumulative pointer path since press, in pixels
	moved    bool    // travel exceeded the click threshold
	pinch    pinchState

	stop func()
}

func newGestureProcessor(cfg *Config, cam *Camera, handlers *handlerRegistry, redraw func()) *GestureProcessor {
	return &GestureProcessor{
		cfg:      cfg,
		cam:      cam,
		handlers: handlers,
		redraw:   redraw,
		pointers: make(map[int]*pointerState),
		dragID:   -1,
	}
}

// Attach subscribes to src. Attaching while attached is a no-op.
func (g *GestureProcessor) Attach(src PointerSource) {
	if g.stop != nil || src == nil {
		return
	}
	g.stop = src.WatchPointer(g.HandlePointer)
}

// Detach unsubscribes from the current source. Safe to call repeatedly.
func (g *GestureProcessor) Detach() {
	if g.stop == nil {
		return
	}
	g.stop()
	g.stop = nil
}

// Dragging reports whether a pointer drag is in progress.
func (g *GestureProcessor) Dragging() bool { return g.dragging }

// Pinching reports whether a two-touch pinch is in progress.
func (g *GestureProcessor) Pinching() bool { return g.pinch.active }

// ActivePointers returns the number of pressed pointers.
func (g *GestureProcessor) ActivePointers() int { return len(g.pointers) }

// HandlePointer runs one pointer record through the state machine.
func (g *GestureProcessor) HandlePointer(ev PointerEvent) {
	if !finite(ev.X, ev.Y) {
		return
	}
	switch ev.Kind {
	case PointerDown:
		g.down(ev)
	case PointerMove:
		g.move(ev)
	case PointerUp:
		g.up(ev)
	case PointerLeave, PointerCancel:
		g.leave(ev)
	case PointerWheel:
		g.wheel(ev)
	}
}

func (g *GestureProcessor) down(ev PointerEvent) {
	if _, ok := g.pointers[ev.ID]; ok {
		// Duplicate press without a release.
		return
	}
	g.pointers[ev.ID] = &pointerState{
		typ:     ev.Type,
		button:  ev.Button,
		lastX:   ev.X,
		lastY:   ev.Y,
		clientX: ev.ClientX,
		clientY: ev.ClientY,
	}
	g.order = append(g.order, ev.ID)

	g.firePointer(EventMouseDown, ev, ev.Button)
	if ev.Button == MouseButtonRight && g.cfg.EventHandlers.Click {
		g.firePointer(EventRightClick, ev, ev.Button)
	}

	switch len(g.order) {
	case 1:
		g.dragID = ev.ID
		g.originX, g.originY = ev.X, ev.Y
		g.travel = 0
		g.moved = false
		g.dragging = g.cfg.EventHandlers.Drag && ev.Button != MouseButtonRight
	case 2:
		g.startPinch()
	}
}

// startPinch begins a pinch when the first two pointers are touches. A pinch
// suppresses both drag and click for the rest of the gesture.
func (g *GestureProcessor) startPinch() {
	if !g.cfg.EventHandlers.Zoom {
		return
	}
	p0, p1 := g.pointers[g.order[0]], g.pointers[g.order[1]]
	if p0.typ != PointerTouch || p1.typ != PointerTouch {
		return
	}
	g.pinch = pinchState{
		active:     true,
		pointer0:   g.order[0],
		pointer1:   g.order[1],
		startDist:  math.Hypot(p1.lastX-p0.lastX, p1.lastY-p0.lastY),
		startScale: g.cam.Scale,
	}
	g.dragging = false
	g.moved = true
}

func (g *GestureProcessor) move(ev PointerEvent) {
	if g.cfg.EventHandlers.Hover && !ev.Pressed {
		g.firePointer(EventHover, ev, ev.Button)
	}

	ps := g.pointers[ev.ID]
	if ps == nil {
		return
	}
	dx, dy := ev.X-ps.lastX, ev.Y-ps.lastY
	ps.lastX, ps.lastY = ev.X, ev.Y
	ps.clientX, ps.clientY = ev.ClientX, ev.ClientY

	if g.pinch.active {
		if ev.ID == g.pinch.pointer0 || ev.ID == g.pinch.pointer1 {
			g.updatePinch()
		}
		return
	}
	if ev.ID != g.dragID || (dx == 0 && dy == 0) {
		return
	}

	g.travel += math.Hypot(dx, dy)
	if g.travel > g.cfg.ClickThreshold {
		g.moved = true
	}
	if g.dragging {
		g.cam.Pan(dx, dy)
		g.handlers.fireCoordsChange(g.cam.Center())
		g.redraw()
	}
}

func (g *GestureProcessor) updatePinch() {
	p0, p1 := g.pointers[g.pinch.pointer0], g.pointers[g.pinch.pointer1]
	if p0 == nil || p1 == nil || !(g.pinch.startDist > 0) {
		return
	}
	dist := math.Hypot(p1.lastX-p0.lastX, p1.lastY-p0.lastY)
	if !(dist > 0) {
		return
	}
	factor := 1 + (dist/g.pinch.startDist-1)*g.cfg.Zoom.PinchSensitivity
	if !(factor > 0) {
		return
	}
	mid := Vec2{X: (p0.lastX + p1.lastX) / 2, Y: (p0.lastY + p1.lastY) / 2}
	target := g.pinch.startScale * factor
	if g.cam.ZoomByFactor(target/g.cam.Scale, mid) {
		g.handlers.fireZoom(g.cam.Scale)
		g.redraw()
	}
}

func (g *GestureProcessor) up(ev PointerEvent) {
	ps := g.pointers[ev.ID]
	if ps == nil {
		return
	}
	button := ps.button

	if ev.ID == g.dragID && !g.moved && !g.pinch.active &&
		g.cfg.EventHandlers.Click && button != MouseButtonRight {
		g.firePointer(EventClick, ev, button)
	}
	g.firePointer(EventMouseUp, ev, button)

	delete(g.pointers, ev.ID)
	g.order = removeID(g.order, ev.ID)

	if g.pinch.active && (ev.ID == g.pinch.pointer0 || ev.ID == g.pinch.pointer1) {
		g.pinch = pinchState{}
		// Re-base the drag onto the touch that stays down; no click follows.
		if len(g.order) > 0 {
			rest := g.pointers[g.order[0]]
			g.dragID = g.order[0]
			g.originX, g.originY = rest.lastX, rest.lastY
			g.dragging = g.cfg.EventHandlers.Drag
		}
		return
	}
	if ev.ID == g.dragID {
		g.dragging = false
		g.dragID = -1
	}
	if len(g.order) == 0 {
		g.reset()
		if ev.Type == PointerTouch {
			g.firePointer(EventMouseLeave, ev, button)
		}
	}
}

func (g *GestureProcessor) leave(ev PointerEvent) {
	g.reset()
	g.firePointer(EventMouseLeave, ev, ev.Button)
}

func (g *GestureProcessor) reset() {
	clear(g.pointers)
	g.order = g.order[:0]
	g.dragging = false
	g.dragID = -1
	g.travel = 0
	g.moved = false
	g.pinch = pinchState{}
}

func (g *GestureProcessor) wheel(ev PointerEvent) {
	if !g.cfg.EventHandlers.Zoom || !finite(ev.DeltaY) || ev.DeltaY == 0 {
		return
	}
	limit := g.cfg.Zoom.WheelDeltaLimit
	d := clamp(ev.DeltaY, -limit, limit)
	factor := math.Exp(-d * g.cfg.Zoom.WheelSpeed)
	if g.cam.ZoomByFactor(factor, Vec2{X: ev.X, Y: ev.Y}) {
		g.handlers.fireZoom(g.cam.Scale)
		g.redraw()
	}
}

func (g *GestureProcessor) firePointer(t EventType, ev PointerEvent, button MouseButton) {
	if !g.handlers.hasPointer(t) && g.handlers.sink == nil {
		return
	}
	wx, wy := g.cam.View().ScreenToWorld(ev.X, ev.Y)
	g.handlers.firePointer(t, PointerContext{
		World:     Vec2{X: wx, Y: wy},
		Cell:      Snap(wx, wy),
		Screen:    Vec2{X: ev.X, Y: ev.Y},
		Client:    Vec2{X: ev.ClientX, Y: ev.ClientY},
		Button:    button,
		PointerID: ev.ID,
		Type:      ev.Type,
	})
}

func removeID(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
