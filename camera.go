package gridview

import "math"

// Camera owns the view into the world plane: the world-space position of the
// viewport's top-left corner and the scale in pixels per world unit.
//
// Every mutation ends by clamping to Bounds (when set) so the visible
// rectangle never leaves them. Mutations are never rejected, only corrected.
type Camera struct {
	// X and Y are the world coordinates shown at the viewport's top-left pixel.
	X, Y float64
	// Scale is the number of logical pixels per world unit.
	Scale float64

	minScale, maxScale float64
	bounds             *Bounds
	viewport           *ViewportState
}

// newCamera creates a camera at the world origin using the configured scale.
func newCamera(cfg *Config, vp *ViewportState) *Camera {
	c := &Camera{
		Scale:    cfg.Scale,
		minScale: cfg.MinScale,
		maxScale: cfg.MaxScale,
		viewport: vp,
	}
	if cfg.Bounds != nil {
		b := *cfg.Bounds
		c.bounds = &b
	}
	c.clampToBounds()
	return c
}

// Pan shifts the camera by a pixel delta, as if the world were dragged by
// (dx, dy) on screen.
func (c *Camera) Pan(dx, dy float64) {
	if !finite(dx, dy) {
		return
	}
	c.X -= dx / c.Scale
	c.Y -= dy / c.Scale
	c.clampToBounds()
}

// ZoomByFactor multiplies the scale by factor, clamped to the scale range,
// keeping the world point under anchor (in viewport pixels) fixed on screen.
// It reports whether the scale changed.
func (c *Camera) ZoomByFactor(factor float64, anchor Vec2) bool {
	if !(factor > 0) || !finite(factor, anchor.X, anchor.Y) {
		return false
	}
	newScale := clamp(c.Scale*factor, c.minScale, c.maxScale)
	if newScale == c.Scale {
		return false
	}
	c.X += anchor.X * (1/c.Scale - 1/newScale)
	c.Y += anchor.Y * (1/c.Scale - 1/newScale)
	c.Scale = newScale
	c.clampToBounds()
	return true
}

// SetScale sets the scale, clamped to the scale range, anchored at the
// viewport center. It reports whether the scale changed.
func (c *Camera) SetScale(scale float64) bool {
	if !(scale > 0) || !finite(scale) {
		return false
	}
	center := Vec2{X: c.viewport.Width / 2, Y: c.viewport.Height / 2}
	return c.ZoomByFactor(scale/c.Scale, center)
}

// setScaleRaw replaces the scale without moving the top-left corner. Used by
// responsive resizing, which recenters afterwards.
func (c *Camera) setScaleRaw(scale float64) {
	c.Scale = clamp(scale, c.minScale, c.maxScale)
}

// SetCenter positions the camera so that world maps to the center of a
// viewport of the given pixel size.
func (c *Camera) SetCenter(world Vec2, width, height float64) {
	if !finite(world.X, world.Y, width, height) {
		return
	}
	c.X = world.X - width/(2*c.Scale)
	c.Y = world.Y - height/(2*c.Scale)
	c.clampToBounds()
}

// Center returns the world coordinate at the viewport center.
func (c *Camera) Center() Vec2 {
	return Vec2{
		X: c.X + c.viewport.Width/(2*c.Scale),
		Y: c.Y + c.viewport.Height/(2*c.Scale),
	}
}

// AdjustForResize keeps the world point at the viewport center fixed when the
// viewport grows or shrinks by (dw, dh) pixels at constant scale.
func (c *Camera) AdjustForResize(dw, dh float64) {
	if !finite(dw, dh) {
		return
	}
	c.X -= dw / (2 * c.Scale)
	c.Y -= dh / (2 * c.Scale)
	c.clampToBounds()
}

// VisibleBounds returns the world-space rectangle currently visible.
func (c *Camera) VisibleBounds() Rect {
	return Rect{
		X:      c.X,
		Y:      c.Y,
		Width:  c.viewport.Width / c.Scale,
		Height: c.viewport.Height / c.Scale,
	}
}

// SetBounds enables bounds clamping. A nil b disables it.
func (c *Camera) SetBounds(b *Bounds) {
	if b == nil {
		c.bounds = nil
		return
	}
	nb := *b
	c.bounds = &nb
	c.clampToBounds()
}

// Bounds returns a copy of the clamping bounds and whether they are set.
func (c *Camera) Bounds() (Bounds, bool) {
	if c.bounds == nil {
		return Bounds{}, false
	}
	return *c.bounds, true
}

// ClampToBounds immediately clamps the camera position. Call this after
// modifying X/Y directly. No-op if no bounds are set.
func (c *Camera) ClampToBounds() {
	c.clampToBounds()
}

// clampToBounds restricts the camera so the visible rectangle stays within
// the bounds. On an axis where the visible span exceeds the bounds span the
// view is centered on the bounds instead; scale is never changed.
func (c *Camera) clampToBounds() {
	if c.bounds == nil {
		return
	}
	vis := c.VisibleBounds()
	c.X = clampAxis(c.X, vis.Width, c.bounds.MinX, c.bounds.MaxX)
	c.Y = clampAxis(c.Y, vis.Height, c.bounds.MinY, c.bounds.MaxY)
}

func clampAxis(pos, span, lo, hi float64) float64 {
	if span >= hi-lo {
		return (lo+hi)/2 - span/2
	}
	return math.Max(lo, math.Min(pos, hi-span))
}

// View returns a read-only snapshot of the camera and viewport.
func (c *Camera) View() View {
	return View{
		X:      c.X,
		Y:      c.Y,
		Scale:  c.Scale,
		Width:  c.viewport.Width,
		Height: c.viewport.Height,
		DPR:    c.viewport.dpr(),
	}
}
