package gridview

import (
	"image"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
)

// Surface is the drawing target a renderer rasterizes into. All coordinates
// and sizes are device pixels of the backing buffer. Implementations skip
// degenerate input (non-positive sizes, empty images) rather than failing.
type Surface interface {
	// Size returns the backing buffer size in device pixels.
	Size() (w, h int)
	// Clear replaces every pixel with c.
	Clear(c Color)

	FillRect(r Rect, c Color)
	StrokeRect(r Rect, c Color, width float64)
	FillCircle(cx, cy, radius float64, c Color)
	StrokeCircle(cx, cy, radius float64, c Color, width float64)
	// StrokePath draws connected line segments through pts.
	StrokePath(pts []Vec2, closed bool, c Color, width float64)
	// FillPath fills the polygon described by pts.
	FillPath(pts []Vec2, c Color)
	// DrawImage draws the src region of img scaled into dst. An empty src
	// means the whole image.
	DrawImage(img image.Image, src image.Rectangle, dst Rect, alpha float64)
	// DrawText draws s with its baseline at y. x is the left edge, center or
	// right edge depending on align.
	DrawText(s string, x, y, size float64, c Color, align TextAlign)

	// NewSnapshot creates an offscreen w×h snapshot and paints it once.
	NewSnapshot(w, h int, paint func(Surface)) (Snapshot, error)
	// DrawSnapshot draws a snapshot scaled into dst.
	DrawSnapshot(s Snapshot, dst Rect)

	// Resize reallocates the backing buffer. Content is lost.
	Resize(w, h int) error
	// Dispose releases the backing buffer. The surface is unusable after.
	Dispose()
}

// Snapshot is an offscreen image produced by Surface.NewSnapshot. It may only
// be drawn onto the surface family that created it.
type Snapshot interface {
	Size() (w, h int)
	Dispose()
}

// SurfaceFactory creates surfaces of a given size in device pixels.
type SurfaceFactory func(w, h int) (Surface, error)

// defaultFont is the TTF data used for text items and overlays.
var defaultFont = sync.OnceValue(func() []byte { return goregular.TTF })

// textBaselineOffset is the distance from a line's vertical center to its
// baseline, as a fraction of the font size.
const textBaselineOffset = 0.35

// pathBounds returns the bounding rectangle of pts.
func pathBounds(pts []Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{X: pts[0].X, Y: pts[0].Y}
	for _, p := range pts[1:] {
		r = r.union(Rect{X: p.X, Y: p.Y})
	}
	return r
}
