package gridview

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

var canvasFontSource = sync.OnceValues(func() (*text.FontSource, error) {
	return text.NewFontSource(defaultFont())
})

// CanvasSurface is a software raster surface backed by a gg context. It
// needs no GPU or window, so it serves headless rendering, screenshots,
// tests and the terminal host.
type CanvasSurface struct {
	dc     *gg.Context
	faces  faceCache[text.Face]
	images imageCache[*gg.ImageBuf]
}

// NewCanvasSurface creates a w×h canvas surface.
func NewCanvasSurface(w, h int) (*CanvasSurface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: canvas %dx%d", ErrNoSurface, w, h)
	}
	return &CanvasSurface{
		dc:     gg.NewContext(w, h),
		faces:  newFaceCache[text.Face](),
		images: newSurfaceImageCache[*gg.ImageBuf](),
	}, nil
}

// CanvasSurfaceFactory is the SurfaceFactory for CanvasSurface.
func CanvasSurfaceFactory(w, h int) (Surface, error) {
	return NewCanvasSurface(w, h)
}

// Size implements Surface.
func (s *CanvasSurface) Size() (int, int) { return s.dc.Width(), s.dc.Height() }

// Image returns the current pixels.
func (s *CanvasSurface) Image() image.Image { return s.dc.Image() }

// SavePNG writes the current pixels to path.
func (s *CanvasSurface) SavePNG(path string) error { return s.dc.SavePNG(path) }

// Clear implements Surface.
func (s *CanvasSurface) Clear(c Color) {
	if !c.visible() {
		s.dc.Clear()
		return
	}
	s.dc.ClearWithColor(gg.RGBA2(c.R, c.G, c.B, c.A))
}

func (s *CanvasSurface) setColor(c Color) {
	s.dc.SetRGBA(c.R, c.G, c.B, c.A)
}

func (s *CanvasSurface) fill(what string) {
	if err := s.dc.Fill(); err != nil {
		Logger().Debug("gridview: canvas fill failed", "shape", what, "err", err)
	}
}

func (s *CanvasSurface) stroke(what string) {
	if err := s.dc.Stroke(); err != nil {
		Logger().Debug("gridview: canvas stroke failed", "shape", what, "err", err)
	}
}

// FillRect implements Surface.
func (s *CanvasSurface) FillRect(r Rect, c Color) {
	if r.Empty() || !c.visible() {
		return
	}
	s.setColor(c)
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.fill("rect")
}

// StrokeRect implements Surface.
func (s *CanvasSurface) StrokeRect(r Rect, c Color, width float64) {
	if r.Empty() || !c.visible() || !(width > 0) {
		return
	}
	s.setColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.stroke("rect")
}

// FillCircle implements Surface.
func (s *CanvasSurface) FillCircle(cx, cy, radius float64, c Color) {
	if !(radius > 0) || !c.visible() {
		return
	}
	s.setColor(c)
	s.dc.DrawCircle(cx, cy, radius)
	s.fill("circle")
}

// StrokeCircle implements Surface.
func (s *CanvasSurface) StrokeCircle(cx, cy, radius float64, c Color, width float64) {
	if !(radius > 0) || !c.visible() || !(width > 0) {
		return
	}
	s.setColor(c)
	s.dc.SetLineWidth(width)
	s.dc.DrawCircle(cx, cy, radius)
	s.stroke("circle")
}

func (s *CanvasSurface) tracePath(pts []Vec2, closed bool) {
	s.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	if closed {
		s.dc.ClosePath()
	}
}

// StrokePath implements Surface.
func (s *CanvasSurface) StrokePath(pts []Vec2, closed bool, c Color, width float64) {
	if len(pts) < 2 || !c.visible() || !(width > 0) {
		return
	}
	s.setColor(c)
	s.dc.SetLineWidth(width)
	s.tracePath(pts, closed)
	s.stroke("path")
}

// FillPath implements Surface.
func (s *CanvasSurface) FillPath(pts []Vec2, c Color) {
	if len(pts) < 3 || !c.visible() {
		return
	}
	s.setColor(c)
	s.tracePath(pts, true)
	s.fill("path")
}

// DrawImage implements Surface.
func (s *CanvasSurface) DrawImage(img image.Image, src image.Rectangle, dst Rect, alpha float64) {
	if img == nil || dst.Empty() || !(alpha > 0) {
		return
	}
	if img.Bounds().Empty() {
		return
	}
	buf := s.images.get(img, gg.ImageBufFromImage)
	opts := gg.DrawImageOptions{
		X:             dst.X,
		Y:             dst.Y,
		DstWidth:      dst.Width,
		DstHeight:     dst.Height,
		Interpolation: gg.InterpBilinear,
		Opacity:       math.Min(alpha, 1),
	}
	if !src.Empty() {
		b := img.Bounds()
		r := src.Sub(b.Min).Intersect(image.Rect(0, 0, b.Dx(), b.Dy()))
		if r.Empty() {
			return
		}
		opts.SrcRect = &r
	}
	s.dc.DrawImageEx(buf, opts)
}

func (s *CanvasSurface) face(size float64) text.Face {
	f, _ := s.faces.get(size, func(px float64) (text.Face, bool) {
		src, err := canvasFontSource()
		if err != nil {
			Logger().Debug("gridview: font unavailable", "err", err)
			return nil, false
		}
		return src.Face(px), true
	})
	return f
}

// DrawText implements Surface.
func (s *CanvasSurface) DrawText(str string, x, y, size float64, c Color, align TextAlign) {
	if str == "" || !(size > 0) || !c.visible() {
		return
	}
	f := s.face(size)
	if f == nil {
		return
	}
	s.dc.SetFont(f)
	s.setColor(c)
	s.dc.DrawStringAnchored(str, x, y, align.anchor(), 0)
}

// canvasSnapshot is an offscreen raster ready to blit.
type canvasSnapshot struct {
	buf  *gg.ImageBuf
	w, h int
}

func (c *canvasSnapshot) Size() (int, int) { return c.w, c.h }
func (c *canvasSnapshot) Dispose()         { c.buf = nil }

// NewSnapshot implements Surface.
func (s *CanvasSurface) NewSnapshot(w, h int, paint func(Surface)) (Snapshot, error) {
	off, err := NewCanvasSurface(w, h)
	if err != nil {
		return nil, err
	}
	defer off.Dispose()
	paint(off)
	return &canvasSnapshot{buf: gg.ImageBufFromImage(off.Image()), w: w, h: h}, nil
}

// DrawSnapshot implements Surface.
func (s *CanvasSurface) DrawSnapshot(snap Snapshot, dst Rect) {
	cs, ok := snap.(*canvasSnapshot)
	if !ok || cs.buf == nil || dst.Empty() {
		return
	}
	s.dc.DrawImageEx(cs.buf, gg.DrawImageOptions{
		X:             dst.X,
		Y:             dst.Y,
		DstWidth:      dst.Width,
		DstHeight:     dst.Height,
		Interpolation: gg.InterpBilinear,
		Opacity:       1,
	})
}

// Resize implements Surface.
func (s *CanvasSurface) Resize(w, h int) error {
	if err := s.dc.Resize(w, h); err != nil {
		return fmt.Errorf("gridview: resize canvas: %w", err)
	}
	return nil
}

// Dispose implements Surface.
func (s *CanvasSurface) Dispose() {
	if s.dc == nil {
		return
	}
	_ = s.dc.Close()
	s.images.clear()
	s.faces.clear()
}
