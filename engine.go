package gridview

import (
	"fmt"
	"image"
	"time"
)

// Engine is the facade tying camera, gestures, animations, resize handling
// and the renderer together. All methods run on the host's dispatch
// goroutine.
type Engine struct {
	cfg      *Config
	viewport ViewportState
	camera   *Camera
	handlers handlerRegistry

	gestures          *GestureProcessor
	anims             AnimationController
	resizeWatcher     *ResizeWatcher
	responsiveWatcher *ResponsiveWatcher

	renderer    Renderer
	images      *ImageCache
	needsRedraw bool
	lastVersion uint64

	injectQueue []PointerEvent
	testRunner  *TestRunner

	// ScreenshotDir is the directory Screenshot writes PNG files to.
	// Defaults to "screenshots".
	ScreenshotDir   string
	screenshotQueue []string

	destroyed bool
}

type engineOptions struct {
	renderer Renderer
	dpr      float64
}

// Option customizes New.
type Option func(*engineOptions)

// WithRenderer replaces the default CanvasRenderer.
func WithRenderer(r Renderer) Option {
	return func(o *engineOptions) { o.renderer = r }
}

// WithDPR sets the initial device pixel ratio. Defaults to 1.
func WithDPR(dpr float64) Option {
	return func(o *engineOptions) {
		if dpr > 0 && finite(dpr) {
			o.dpr = dpr
		}
	}
}

// New normalizes cfg and builds an engine around it. It fails with
// ErrInvalidSize for a missing size and with ErrNoSurface when the renderer
// cannot acquire its surface.
func New(cfg Config, opts ...Option) (*Engine, error) {
	norm, err := NormalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	o := engineOptions{dpr: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.renderer == nil {
		o.renderer = NewCanvasRenderer(nil)
	}

	e := &Engine{
		cfg:           &norm,
		viewport:      ViewportState{Width: norm.Size.Width, Height: norm.Size.Height, DPR: o.dpr},
		renderer:      o.renderer,
		needsRedraw:   true,
		ScreenshotDir: "screenshots",
	}
	e.camera = newCamera(e.cfg, &e.viewport)
	e.gestures = newGestureProcessor(e.cfg, e.camera, &e.handlers, e.RequestRedraw)
	if norm.Responsive == ResponsiveNone {
		e.resizeWatcher = &ResizeWatcher{e: e}
	} else {
		e.responsiveWatcher = newResponsiveWatcher(e, norm.Responsive)
	}

	if err := e.renderer.Init(e.viewport); err != nil {
		return nil, fmt.Errorf("gridview: init renderer: %w", err)
	}
	e.images = newImageCache(e.RequestRedraw)
	return e, nil
}

// --- Input plumbing ---

// AttachPointerSource routes src into the gesture processor.
func (e *Engine) AttachPointerSource(src PointerSource) {
	e.gestures.Attach(src)
}

// AttachSizeSource routes src into the resize or responsive watcher,
// whichever the configuration selected.
func (e *Engine) AttachSizeSource(src SizeSource) {
	if e.responsiveWatcher != nil {
		e.responsiveWatcher.Attach(src)
		return
	}
	e.resizeWatcher.Attach(src)
}

// DetachSources unsubscribes from every attached source.
func (e *Engine) DetachSources() {
	e.gestures.Detach()
	if e.responsiveWatcher != nil {
		e.responsiveWatcher.Detach()
	}
	if e.resizeWatcher != nil {
		e.resizeWatcher.Detach()
	}
}

// HandlePointer feeds one pointer record directly, bypassing any source.
func (e *Engine) HandlePointer(ev PointerEvent) {
	if e.destroyed {
		return
	}
	e.gestures.HandlePointer(ev)
}

// HandleSize feeds one size record directly, bypassing any source.
func (e *Engine) HandleSize(ev SizeEvent) {
	if e.destroyed {
		return
	}
	if e.responsiveWatcher != nil {
		e.responsiveWatcher.HandleSize(ev)
		return
	}
	e.resizeWatcher.HandleSize(ev)
}

// Gestures exposes the gesture processor for state queries.
func (e *Engine) Gestures() *GestureProcessor { return e.gestures }

// Animations exposes the animation controller. CancelAll on it stops every
// running animation without completion callbacks.
func (e *Engine) Animations() *AnimationController { return &e.anims }

// --- Frame loop ---

// RequestRedraw marks the view dirty. The next Frame renders.
func (e *Engine) RequestRedraw() { e.needsRedraw = true }

// NeedsRedraw reports whether the next Frame will render.
func (e *Engine) NeedsRedraw() bool {
	return e.needsRedraw || e.renderer.Draw().Version() != e.lastVersion
}

// Update advances one tick: scripted input, async image results and
// animations.
func (e *Engine) Update(dt time.Duration) {
	if e.destroyed {
		return
	}
	if e.testRunner != nil {
		e.testRunner.step(e)
	}
	e.processInjectedInput()
	e.images.drain()
	if e.anims.Active() {
		e.anims.Update(dt)
		e.needsRedraw = true
	}
}

// Frame renders when a redraw was requested or the draw API changed since
// the last render. It reports whether it rendered.
func (e *Engine) Frame() bool {
	if e.destroyed || !e.NeedsRedraw() {
		return false
	}
	e.renderer.Render(Frame{
		View:   e.camera.View(),
		Config: e.cfg,
		OnDraw: e.handlers.fireDraw,
	})
	e.needsRedraw = false
	e.lastVersion = e.renderer.Draw().Version()
	e.flushScreenshots()
	return true
}

// FrameImage returns the last rendered frame, or nil when the renderer cannot
// expose its pixels.
func (e *Engine) FrameImage() image.Image {
	if r, ok := e.renderer.(interface{ Image() image.Image }); ok {
		return r.Image()
	}
	return nil
}

// Renderer returns the renderer the engine draws with.
func (e *Engine) Renderer() Renderer { return e.renderer }

// Draw returns the draw API.
func (e *Engine) Draw() *DrawAPI { return e.renderer.Draw() }

// Images returns the engine's image cache.
func (e *Engine) Images() *ImageCache { return e.images }

// Destroy detaches every source, stops animations and releases the surface.
// Safe to call repeatedly.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.DetachSources()
	e.anims.CancelAll()
	e.images.Close()
	e.renderer.Destroy()
}

// --- Camera and view API ---

// Camera returns a snapshot of the current view.
func (e *Engine) Camera() View { return e.camera.View() }

// Viewport returns the current viewport state.
func (e *Engine) Viewport() ViewportState { return e.viewport }

// Config returns a copy of the active configuration snapshot.
func (e *Engine) Config() Config { return *e.cfg.clone() }

// CenterCoords returns the world coordinate at the viewport center.
func (e *Engine) CenterCoords() Vec2 { return e.camera.Center() }

// UpdateCoords centers the view on world immediately. A running GoCoords is
// stopped without completing.
func (e *Engine) UpdateCoords(world Vec2) {
	if !finite(world.X, world.Y) {
		return
	}
	e.cancelKeys(AnimCenterX, AnimCenterY)
	e.setCenter(world)
}

func (e *Engine) setCenter(world Vec2) {
	e.camera.SetCenter(world, e.viewport.Width, e.viewport.Height)
	e.handlers.fireCoordsChange(e.camera.Center())
	e.RequestRedraw()
}

func (e *Engine) cancelKeys(keys ...AnimKey) {
	for _, k := range keys {
		if a := e.anims.Owner(k); a != nil {
			a.Cancel()
		}
	}
}

// GoCoords animates the view center to (x, y) over d. onComplete runs once
// when the animation finishes, and never if it is cancelled or superseded.
// A non-positive d jumps immediately.
func (e *Engine) GoCoords(x, y float64, d time.Duration, onComplete func()) *Animation {
	if !finite(x, y) {
		return nil
	}
	from := e.camera.Center()
	return e.anims.Start(AnimationSpec{
		Tweens: []Tween{
			{Key: AnimCenterX, From: from.X, To: x},
			{Key: AnimCenterY, From: from.Y, To: y},
		},
		Duration: d,
		Apply: func(f AnimFrame) {
			c := e.camera.Center()
			if v, ok := f.Value(AnimCenterX); ok {
				c.X = v
			}
			if v, ok := f.Value(AnimCenterY); ok {
				c.Y = v
			}
			e.setCenter(c)
		},
		OnComplete: onComplete,
	})
}

// SetScale sets the zoom level around the viewport center, clamped to the
// configured range.
func (e *Engine) SetScale(scale float64) {
	if e.camera.SetScale(scale) {
		e.handlers.fireZoom(e.camera.Scale)
		e.RequestRedraw()
	}
}

// PanBy moves the view as if the world were dragged by (dx, dy) pixels.
func (e *Engine) PanBy(dx, dy float64) {
	before := e.camera.Center()
	e.camera.Pan(dx, dy)
	if c := e.camera.Center(); c != before {
		e.handlers.fireCoordsChange(c)
		e.RequestRedraw()
	}
}

// SetBounds replaces the camera bounds with b, or removes them when b is nil.
// The configuration snapshot is replaced, never mutated.
func (e *Engine) SetBounds(b *Bounds) {
	next := e.cfg.clone()
	if b == nil {
		next.Bounds = nil
	} else {
		nb := *b
		if nb.MinX > nb.MaxX {
			nb.MinX, nb.MaxX = nb.MaxX, nb.MinX
		}
		if nb.MinY > nb.MaxY {
			nb.MinY, nb.MaxY = nb.MaxY, nb.MinY
		}
		next.Bounds = &nb
	}
	e.cfg = next
	e.gestures.cfg = next

	before := e.camera.Center()
	e.camera.SetBounds(next.Bounds)
	if c := e.camera.Center(); c != before {
		e.handlers.fireCoordsChange(c)
	}
	e.RequestRedraw()
}

// Resize changes the viewport size, animated over d when d is positive. The
// size is clamped to the configured range and the world center stays put.
// Responsive engines follow their container instead; there Resize only logs.
func (e *Engine) Resize(width, height float64, d time.Duration) *Animation {
	if e.cfg.Responsive != ResponsiveNone {
		Logger().Warn("gridview: Resize ignored in responsive mode", "responsive", e.cfg.Responsive.String())
		return nil
	}
	if !(width > 0) || !(height > 0) || !finite(width, height) {
		return nil
	}
	if d <= 0 {
		e.cancelKeys(AnimViewportWidth, AnimViewportHeight)
		e.applySize(width, height)
		return nil
	}
	return e.anims.Start(AnimationSpec{
		Tweens: []Tween{
			{Key: AnimViewportWidth, From: e.viewport.Width, To: width},
			{Key: AnimViewportHeight, From: e.viewport.Height, To: height},
		},
		Duration: d,
		Apply: func(f AnimFrame) {
			w, h := e.viewport.Width, e.viewport.Height
			if v, ok := f.Value(AnimViewportWidth); ok {
				w = v
			}
			if v, ok := f.Value(AnimViewportHeight); ok {
				h = v
			}
			e.applySize(w, h)
		},
	})
}
