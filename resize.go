package gridview

import "math"

// ResizeWatcher reconciles host size notifications in manual-resize mode:
// the surface keeps a configured size the user may change within the
// configured range, and the world point at the viewport center stays put.
type ResizeWatcher struct {
	e    *Engine
	stop func()
}

// Attach subscribes to src. Attaching while attached is a no-op.
func (w *ResizeWatcher) Attach(src SizeSource) {
	if w.stop != nil || src == nil {
		return
	}
	w.stop = src.WatchSize(w.HandleSize)
}

// Detach unsubscribes. Safe to call repeatedly.
func (w *ResizeWatcher) Detach() {
	if w.stop == nil {
		return
	}
	w.stop()
	w.stop = nil
}

// HandleSize applies one size notification. A DPR change is always applied;
// a size change only when EventHandlers.Resize is enabled.
func (w *ResizeWatcher) HandleSize(ev SizeEvent) {
	if ev.DPR > 0 && finite(ev.DPR) {
		w.e.setDPR(ev.DPR)
	}
	if !w.e.cfg.EventHandlers.Resize {
		return
	}
	if !(ev.Width > 0) || !(ev.Height > 0) || !finite(ev.Width, ev.Height) {
		return
	}
	w.e.applySize(ev.Width, ev.Height)
}

// ResponsiveWatcher makes the surface fill its container. In
// ResponsivePreserveScale the scale is fixed and the visible area changes;
// in ResponsivePreserveViewport the visible world extent is fixed and the
// scale follows the container.
type ResponsiveWatcher struct {
	e    *Engine
	mode ResponsiveMode

	// Visible world extent to keep in preserve-viewport mode. Re-captured
	// after each user zoom.
	extentW, extentH float64
	applying         bool
	tracking         bool

	stop func()
}

func newResponsiveWatcher(e *Engine, mode ResponsiveMode) *ResponsiveWatcher {
	w := &ResponsiveWatcher{e: e, mode: mode}
	w.track()
	return w
}

// track captures the current extent and follows user zooms, so size
// records fed through Engine.HandleSize work without an attached source.
func (w *ResponsiveWatcher) track() {
	w.capture()
	if w.tracking {
		return
	}
	w.tracking = true
	w.e.OnZoom(func(float64) {
		if !w.applying {
			w.capture()
		}
	})
}

// Attach subscribes to src and re-captures the current visible extent.
func (w *ResponsiveWatcher) Attach(src SizeSource) {
	if w.stop != nil || src == nil {
		return
	}
	w.track()
	w.stop = src.WatchSize(w.HandleSize)
}

// Detach unsubscribes from the source. Safe to call repeatedly. The zoom
// hook stays so direct HandleSize calls keep the extent current.
func (w *ResponsiveWatcher) Detach() {
	if w.stop == nil {
		return
	}
	w.stop()
	w.stop = nil
}

func (w *ResponsiveWatcher) capture() {
	vis := w.e.camera.VisibleBounds()
	w.extentW, w.extentH = vis.Width, vis.Height
}

// HandleSize applies one container size notification.
func (w *ResponsiveWatcher) HandleSize(ev SizeEvent) {
	if ev.DPR > 0 && finite(ev.DPR) {
		w.e.setDPR(ev.DPR)
	}
	if !finite(ev.Width, ev.Height) {
		return
	}
	width := math.Max(ev.Width, defaultMinSize)
	height := math.Max(ev.Height, defaultMinSize)
	vp := &w.e.viewport
	if width == vp.Width && height == vp.Height {
		return
	}

	cam := w.e.camera
	center := cam.Center()
	vp.Width, vp.Height = width, height

	switch w.mode {
	case ResponsivePreserveViewport:
		if w.extentW > 0 && w.extentH > 0 {
			prev := cam.Scale
			cam.setScaleRaw(math.Min(width/w.extentW, height/w.extentH))
			cam.SetCenter(center, width, height)
			if cam.Scale != prev {
				w.applying = true
				w.e.handlers.fireZoom(cam.Scale)
				w.applying = false
			}
			break
		}
		fallthrough
	default:
		cam.SetCenter(center, width, height)
	}

	w.e.renderer.Resize(*vp)
	w.e.RequestRedraw()
	w.e.handlers.fireResize(*vp)
}

// applySize moves the viewport to (width, height) clamped to the configured
// range, keeping the world center fixed. Used by manual resize and by
// animated Engine.Resize.
func (e *Engine) applySize(width, height float64) {
	s := e.cfg.Size
	width = clamp(width, s.MinWidth, s.MaxWidth)
	height = clamp(height, s.MinHeight, s.MaxHeight)
	dw, dh := width-e.viewport.Width, height-e.viewport.Height
	if dw == 0 && dh == 0 {
		return
	}
	e.viewport.Width, e.viewport.Height = width, height
	e.camera.AdjustForResize(dw, dh)
	e.renderer.Resize(e.viewport)
	e.RequestRedraw()
	e.handlers.fireResize(e.viewport)
}

// setDPR updates the backing resolution only. The camera is untouched.
func (e *Engine) setDPR(dpr float64) {
	if dpr == e.viewport.dpr() {
		return
	}
	e.viewport.DPR = dpr
	e.renderer.Resize(e.viewport)
	e.RequestRedraw()
}
