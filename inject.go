package gridview

// injectPointerID is the pointer id injected events use. It matches the id
// hosts assign to the mouse.
const injectPointerID = 0

func (e *Engine) inject(kind PointerKind, x, y float64, pressed bool) {
	e.injectQueue = append(e.injectQueue, PointerEvent{
		Kind:    kind,
		ID:      injectPointerID,
		Type:    PointerMouse,
		X:       x,
		Y:       y,
		ClientX: x,
		ClientY: y,
		Button:  MouseButtonLeft,
		Pressed: pressed,
	})
}

// InjectPress queues a left-button press at the given viewport coordinates.
// The event is consumed by the next Update.
func (e *Engine) InjectPress(x, y float64) {
	e.inject(PointerDown, x, y, true)
}

// InjectMove queues a pointer move with the button held. Use it between
// InjectPress and InjectRelease to simulate a drag.
func (e *Engine) InjectMove(x, y float64) {
	e.inject(PointerMove, x, y, true)
}

// InjectRelease queues a left-button release.
func (e *Engine) InjectRelease(x, y float64) {
	e.inject(PointerUp, x, y, false)
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two updates.
func (e *Engine) InjectClick(x, y float64) {
	e.InjectPress(x, y)
	e.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 linearly
// interpolated moves, a move onto (toX, toY) and a release there. Minimum
// frames is 2.
func (e *Engine) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	e.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		e.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	// The last move lands on the release point so the full distance pans.
	e.InjectMove(toX, toY)
	e.InjectRelease(toX, toY)
}

// InjectWheel queues a wheel event at (x, y). Positive deltaY zooms out,
// as a browser wheel does.
func (e *Engine) InjectWheel(x, y, deltaY float64) {
	e.injectQueue = append(e.injectQueue, PointerEvent{
		Kind:    PointerWheel,
		ID:      injectPointerID,
		Type:    PointerMouse,
		X:       x,
		Y:       y,
		ClientX: x,
		ClientY: y,
		DeltaY:  deltaY,
	})
}

// InjectPending reports whether injected events are still queued.
func (e *Engine) InjectPending() bool { return len(e.injectQueue) > 0 }

// processInjectedInput pops one queued event and runs it through the gesture
// processor. It reports whether an event was consumed; hosts skip real
// pointer input for that tick.
func (e *Engine) processInjectedInput() bool {
	if len(e.injectQueue) == 0 {
		return false
	}
	ev := e.injectQueue[0]
	copy(e.injectQueue, e.injectQueue[1:])
	e.injectQueue = e.injectQueue[:len(e.injectQueue)-1]
	e.gestures.HandlePointer(ev)
	return true
}
