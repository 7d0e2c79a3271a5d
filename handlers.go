package gridview

import "slices"

// EventType identifies a kind of engine event.
type EventType uint8

const (
	EventClick        EventType = iota // press and release without exceeding the click threshold
	EventRightClick                    // secondary button pressed
	EventHover                         // pointer moved over the surface
	EventMouseDown                     // pointer pressed
	EventMouseUp                       // pointer released
	EventMouseLeave                    // pointer left the surface or every touch ended
	EventZoom                          // scale changed through wheel, pinch or SetScale
	EventCoordsChange                  // camera center moved
	EventResize                        // viewport size changed
	EventDraw                          // raw-surface pass after layers, before overlays
)

var eventNames = [...]string{
	"click", "rightclick", "hover", "mousedown", "mouseup",
	"mouseleave", "zoom", "coordschange", "resize", "draw",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// PointerContext carries pointer event data passed to callbacks.
type PointerContext struct {
	World     Vec2        // world coordinates under the pointer
	Cell      Cell        // grid cell containing World
	Screen    Vec2        // logical viewport pixels
	Client    Vec2        // host-window coordinates
	Button    MouseButton // button that triggered the event
	PointerID int         // 0 = mouse, 1+ = touch
	Type      PointerType
}

// GestureEvent is the flattened form of every gesture callback, handed to an
// EventSink so engines can feed external systems such as an ECS world.
type GestureEvent struct {
	Type      EventType
	World     Vec2
	Cell      Cell
	Screen    Vec2
	Button    MouseButton
	PointerID int
	// Scale is valid for EventZoom.
	Scale float64
	// Center is valid for EventCoordsChange.
	Center Vec2
}

// EventSink receives every gesture event after the registered callbacks.
type EventSink interface {
	EmitEvent(event GestureEvent)
}

type handler[F any] struct {
	id uint32
	fn F
}

func removeHandler[F any](s []handler[F], id uint32) []handler[F] {
	return slices.DeleteFunc(s, func(h handler[F]) bool { return h.id == id })
}

type handlerRegistry struct {
	click        []handler[func(PointerContext)]
	rightClick   []handler[func(PointerContext)]
	hover        []handler[func(PointerContext)]
	mouseDown    []handler[func(PointerContext)]
	mouseUp      []handler[func(PointerContext)]
	mouseLeave   []handler[func(PointerContext)]
	zoom         []handler[func(float64)]
	coordsChange []handler[func(Vec2)]
	resize       []handler[func(ViewportState)]
	draw         []handler[func(Surface, View)]
	nextID       uint32
	sink         EventSink
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires. Removing twice is
// harmless.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	r := h.reg
	switch h.event {
	case EventClick:
		r.click = removeHandler(r.click, h.id)
	case EventRightClick:
		r.rightClick = removeHandler(r.rightClick, h.id)
	case EventHover:
		r.hover = removeHandler(r.hover, h.id)
	case EventMouseDown:
		r.mouseDown = removeHandler(r.mouseDown, h.id)
	case EventMouseUp:
		r.mouseUp = removeHandler(r.mouseUp, h.id)
	case EventMouseLeave:
		r.mouseLeave = removeHandler(r.mouseLeave, h.id)
	case EventZoom:
		r.zoom = removeHandler(r.zoom, h.id)
	case EventCoordsChange:
		r.coordsChange = removeHandler(r.coordsChange, h.id)
	case EventResize:
		r.resize = removeHandler(r.resize, h.id)
	case EventDraw:
		r.draw = removeHandler(r.draw, h.id)
	}
}

func (r *handlerRegistry) pointerList(t EventType) *[]handler[func(PointerContext)] {
	switch t {
	case EventClick:
		return &r.click
	case EventRightClick:
		return &r.rightClick
	case EventHover:
		return &r.hover
	case EventMouseDown:
		return &r.mouseDown
	case EventMouseUp:
		return &r.mouseUp
	case EventMouseLeave:
		return &r.mouseLeave
	}
	return nil
}

func (r *handlerRegistry) addPointer(t EventType, fn func(PointerContext)) CallbackHandle {
	r.nextID++
	list := r.pointerList(t)
	*list = append(*list, handler[func(PointerContext)]{id: r.nextID, fn: fn})
	return CallbackHandle{id: r.nextID, reg: r, event: t}
}

// hasPointer reports whether anything listens for t, so callers can skip
// building contexts for hover-heavy input.
func (r *handlerRegistry) hasPointer(t EventType) bool {
	return len(*r.pointerList(t)) > 0 || r.sink != nil
}

func (r *handlerRegistry) firePointer(t EventType, ctx PointerContext) {
	for _, h := range slices.Clone(*r.pointerList(t)) {
		h.fn(ctx)
	}
	if r.sink != nil {
		r.sink.EmitEvent(GestureEvent{
			Type:      t,
			World:     ctx.World,
			Cell:      ctx.Cell,
			Screen:    ctx.Screen,
			Button:    ctx.Button,
			PointerID: ctx.PointerID,
		})
	}
}

func (r *handlerRegistry) fireZoom(scale float64) {
	for _, h := range slices.Clone(r.zoom) {
		h.fn(scale)
	}
	if r.sink != nil {
		r.sink.EmitEvent(GestureEvent{Type: EventZoom, Scale: scale})
	}
}

func (r *handlerRegistry) fireCoordsChange(center Vec2) {
	for _, h := range slices.Clone(r.coordsChange) {
		h.fn(center)
	}
	if r.sink != nil {
		r.sink.EmitEvent(GestureEvent{Type: EventCoordsChange, Center: center})
	}
}

func (r *handlerRegistry) fireResize(vp ViewportState) {
	for _, h := range slices.Clone(r.resize) {
		h.fn(vp)
	}
}

func (r *handlerRegistry) fireDraw(s Surface, v View) {
	for _, h := range r.draw {
		h.fn(s, v)
	}
}

// --- Engine-level registration ---

// OnClick registers a callback for clicks: a press and release whose
// cumulative movement stayed below the click threshold. Requires
// EventHandlers.Click.
func (e *Engine) OnClick(fn func(PointerContext)) CallbackHandle {
	return e.handlers.addPointer(EventClick, fn)
}

// OnRightClick registers a callback fired when the secondary button is
// pressed. Requires EventHandlers.Click.
func (e *Engine) OnRightClick(fn func(PointerContext)) CallbackHandle {
	return e.handlers.addPointer(EventRightClick, fn)
}

// OnHover registers a callback fired on every pointer move, whether or not a
// drag is in progress. Requires EventHandlers.Hover.
func (e *Engine) OnHover(fn func(PointerContext)) CallbackHandle {
	return e.handlers.addPointer(EventHover, fn)
}

// OnMouseDown registers a callback for pointer presses.
func (e *Engine) OnMouseDown(fn func(PointerContext)) CallbackHandle {
	return e.handlers.addPointer(EventMouseDown, fn)
}

// OnMouseUp registers a callback for pointer releases.
func (e *Engine) OnMouseUp(fn func(PointerContext)) CallbackHandle {
	return e.handlers.addPointer(EventMouseUp, fn)
}

// OnMouseLeave registers a callback fired when the mouse leaves the surface
// or the last touch ends.
func (e *Engine) OnMouseLeave(fn func(PointerContext)) CallbackHandle {
	return e.handlers.addPointer(EventMouseLeave, fn)
}

// OnZoom registers a callback receiving the new scale.
func (e *Engine) OnZoom(fn func(scale float64)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.zoom = append(e.handlers.zoom, handler[func(float64)]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventZoom}
}

// OnCoordsChange registers a callback receiving the new world center.
func (e *Engine) OnCoordsChange(fn func(center Vec2)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.coordsChange = append(e.handlers.coordsChange, handler[func(Vec2)]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventCoordsChange}
}

// OnResize registers a callback receiving the new viewport state.
func (e *Engine) OnResize(fn func(ViewportState)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.resize = append(e.handlers.resize, handler[func(ViewportState)]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventResize}
}

// OnDraw registers a raw-surface callback invoked every render pass after
// the layers and before the overlays. The surface works in device pixels;
// use View to place things.
func (e *Engine) OnDraw(fn func(s Surface, v View)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.draw = append(e.handlers.draw, handler[func(Surface, View)]{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventDraw}
}

// SetEventSink forwards every gesture event to sink after the callbacks.
// Pass nil to disable.
func (e *Engine) SetEventSink(sink EventSink) {
	e.handlers.sink = sink
}
