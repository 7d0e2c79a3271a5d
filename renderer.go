package gridview

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// Frame is everything a renderer needs for one pass.
type Frame struct {
	View   View
	Config *Config
	// OnDraw runs after the layers and before the overlays.
	OnDraw func(Surface, View)
}

// Renderer is the rendering capability behind an engine. CanvasRenderer is
// the implementation shipped here; others only need to honor this contract.
type Renderer interface {
	// Init acquires the backing surface. Failure is fatal to the engine and
	// wraps ErrNoSurface.
	Init(vp ViewportState) error
	// Render runs one full pass: clear, layers, OnDraw, overlays.
	Render(f Frame)
	// Resize reallocates the backing surface for a new size or DPR.
	Resize(vp ViewportState)
	// Destroy releases the surface and every cached snapshot.
	Destroy()
	// Draw returns the draw API whose layers Render replays.
	Draw() *DrawAPI
}

// CanvasRenderer replays the draw API onto a Surface created by its factory.
// Any surface family works: CanvasSurfaceFactory for software rendering,
// EbitenSurfaceFactory inside an Ebitengine game.
type CanvasRenderer struct {
	factory SurfaceFactory
	surface Surface
	draw    *DrawAPI
	stats   frameStats
	frames  uint64
}

// NewCanvasRenderer returns a renderer that creates its surface with factory.
// A nil factory selects CanvasSurfaceFactory.
func NewCanvasRenderer(factory SurfaceFactory) *CanvasRenderer {
	if factory == nil {
		factory = CanvasSurfaceFactory
	}
	return &CanvasRenderer{factory: factory, draw: newDrawAPI()}
}

// Init implements Renderer.
func (r *CanvasRenderer) Init(vp ViewportState) error {
	w, h := vp.BackingSize()
	s, err := r.factory(w, h)
	if err != nil {
		if errors.Is(err, ErrNoSurface) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrNoSurface, err)
	}
	if s == nil {
		return fmt.Errorf("%w: factory returned no surface", ErrNoSurface)
	}
	r.surface = s
	return nil
}

// Draw implements Renderer.
func (r *CanvasRenderer) Draw() *DrawAPI { return r.draw }

// Surface returns the backing surface, or nil before Init and after Destroy.
func (r *CanvasRenderer) Surface() Surface { return r.surface }

// Frames returns the number of completed render passes.
func (r *CanvasRenderer) Frames() uint64 { return r.frames }

// Image returns the last rendered frame when the surface can expose its
// pixels, or nil otherwise.
func (r *CanvasRenderer) Image() image.Image {
	switch s := r.surface.(type) {
	case *CanvasSurface:
		return s.Image()
	case *EbitenSurface:
		return s.Image()
	}
	return nil
}

// Resize implements Renderer.
func (r *CanvasRenderer) Resize(vp ViewportState) {
	if r.surface == nil {
		return
	}
	w, h := vp.BackingSize()
	if err := r.surface.Resize(w, h); err != nil {
		Logger().Warn("gridview: surface resize failed", "width", w, "height", h, "err", err)
	}
}

// Destroy implements Renderer.
func (r *CanvasRenderer) Destroy() {
	r.draw.cache.disposeAll()
	if r.surface != nil {
		r.surface.Dispose()
		r.surface = nil
	}
}

// Render implements Renderer.
func (r *CanvasRenderer) Render(f Frame) {
	if r.surface == nil || f.Config == nil {
		return
	}
	cfg := f.Config
	var stats frameStats
	var t0 time.Time
	if cfg.Debug.Stats {
		t0 = time.Now()
	}

	r.surface.Clear(cfg.Background)
	builds := r.draw.cache.builds
	rc := newRenderContext(r.surface, f.View, cfg.GridAligned, r.draw.cache, &stats)
	r.draw.render(rc)
	stats.batches = r.draw.layers.Len()
	stats.builds = r.draw.cache.builds - builds
	if f.OnDraw != nil {
		f.OnDraw(r.surface, f.View)
	}

	var t1 time.Time
	if cfg.Debug.Stats {
		t1 = time.Now()
		stats.layerTime = t1.Sub(t0)
	}

	if cfg.Debug.Grid {
		drawDebugGrid(r.surface, f.View)
	}
	if cfg.Coordinates.Enabled && cfg.Coordinates.ShownScaleRange.Contains(f.View.Scale) {
		drawCoordinates(r.surface, f.View)
	}
	if cfg.Debug.HUD {
		drawHUD(r.surface, f.View, r.stats)
	}

	if cfg.Debug.Stats {
		stats.overlayTime = time.Since(t1)
		debugLog(stats)
		debugCheckLayers(&r.draw.layers)
	}
	r.stats = stats
	r.frames++
}
