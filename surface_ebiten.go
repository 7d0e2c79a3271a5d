package gridview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var ebitenFontSource = sync.OnceValues(func() (*text.GoTextFaceSource, error) {
	return text.NewGoTextFaceSource(bytes.NewReader(defaultFont()))
})

// --- White pixel singleton (single-threaded, like the rest of the engine) ---

var whiteSubImage *ebiten.Image

// ensureWhitePixel returns the center pixel of a lazily created 3x3 white
// image. Sampling the center avoids bleeding at the edges.
func ensureWhitePixel() *ebiten.Image {
	if whiteSubImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

// EbitenSurface draws onto an Ebitengine image. It is the surface used by
// the window host; it requires a running Ebitengine game loop.
type EbitenSurface struct {
	img    *ebiten.Image
	images imageCache[*ebiten.Image]
	faces  faceCache[*text.GoTextFace]
	path   vector.Path
	verts  []ebiten.Vertex
	inds   []uint16
}

// NewEbitenSurface creates a w×h offscreen Ebitengine surface.
func NewEbitenSurface(w, h int) (*EbitenSurface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: ebiten image %dx%d", ErrNoSurface, w, h)
	}
	return newEbitenSurface(ebiten.NewImage(w, h)), nil
}

func newEbitenSurface(img *ebiten.Image) *EbitenSurface {
	return &EbitenSurface{
		img:    img,
		images: newSurfaceImageCache[*ebiten.Image](),
		faces:  newFaceCache[*text.GoTextFace](),
	}
}

// EbitenSurfaceFactory is the SurfaceFactory for EbitenSurface.
func EbitenSurfaceFactory(w, h int) (Surface, error) {
	return NewEbitenSurface(w, h)
}

// Image returns the backing Ebitengine image.
func (s *EbitenSurface) Image() *ebiten.Image { return s.img }

// Size implements Surface.
func (s *EbitenSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear implements Surface.
func (s *EbitenSurface) Clear(c Color) {
	if !c.visible() {
		s.img.Clear()
		return
	}
	s.img.Fill(c.toRGBA())
}

// FillRect implements Surface.
func (s *EbitenSurface) FillRect(r Rect, c Color) {
	if r.Empty() || !c.visible() {
		return
	}
	vector.DrawFilledRect(s.img, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), c.toRGBA(), true)
}

// StrokeRect implements Surface.
func (s *EbitenSurface) StrokeRect(r Rect, c Color, width float64) {
	if r.Empty() || !c.visible() || !(width > 0) {
		return
	}
	vector.StrokeRect(s.img, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), float32(width), c.toRGBA(), true)
}

// FillCircle implements Surface.
func (s *EbitenSurface) FillCircle(cx, cy, radius float64, c Color) {
	if !(radius > 0) || !c.visible() {
		return
	}
	vector.DrawFilledCircle(s.img, float32(cx), float32(cy), float32(radius), c.toRGBA(), true)
}

// StrokeCircle implements Surface.
func (s *EbitenSurface) StrokeCircle(cx, cy, radius float64, c Color, width float64) {
	if !(radius > 0) || !c.visible() || !(width > 0) {
		return
	}
	vector.StrokeCircle(s.img, float32(cx), float32(cy), float32(radius), float32(width), c.toRGBA(), true)
}

func (s *EbitenSurface) tracePath(pts []Vec2, closed bool) {
	s.path = vector.Path{}
	s.path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		s.path.LineTo(float32(p.X), float32(p.Y))
	}
	if closed {
		s.path.Close()
	}
}

// drawVertices submits the triangulated path in one solid color.
func (s *EbitenSurface) drawVertices(c Color, rule ebiten.FillRule) {
	rgba := c.toRGBA()
	r, g, b, a := float32(rgba.R)/255, float32(rgba.G)/255, float32(rgba.B)/255, float32(rgba.A)/255
	for i := range s.verts {
		s.verts[i].SrcX = 1
		s.verts[i].SrcY = 1
		s.verts[i].ColorR = r
		s.verts[i].ColorG = g
		s.verts[i].ColorB = b
		s.verts[i].ColorA = a
	}
	s.img.DrawTriangles(s.verts, s.inds, ensureWhitePixel(), &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
		FillRule:  rule,
	})
}

// StrokePath implements Surface.
func (s *EbitenSurface) StrokePath(pts []Vec2, closed bool, c Color, width float64) {
	if len(pts) < 2 || !c.visible() || !(width > 0) {
		return
	}
	s.tracePath(pts, closed)
	opts := &vector.StrokeOptions{Width: float32(width), LineJoin: vector.LineJoinRound}
	s.verts, s.inds = s.path.AppendVerticesAndIndicesForStroke(s.verts[:0], s.inds[:0], opts)
	s.drawVertices(c, ebiten.FillRuleNonZero)
}

// FillPath implements Surface.
func (s *EbitenSurface) FillPath(pts []Vec2, c Color) {
	if len(pts) < 3 || !c.visible() {
		return
	}
	s.tracePath(pts, true)
	s.verts, s.inds = s.path.AppendVerticesAndIndicesForFilling(s.verts[:0], s.inds[:0])
	s.drawVertices(c, ebiten.FillRuleNonZero)
}

// DrawImage implements Surface.
func (s *EbitenSurface) DrawImage(img image.Image, src image.Rectangle, dst Rect, alpha float64) {
	if img == nil || dst.Empty() || !(alpha > 0) || img.Bounds().Empty() {
		return
	}
	eimg, ok := img.(*ebiten.Image)
	if !ok {
		eimg = s.images.get(img, ebiten.NewImageFromImage)
	}
	if !src.Empty() {
		src = src.Intersect(eimg.Bounds())
		if src.Empty() {
			return
		}
		eimg = eimg.SubImage(src).(*ebiten.Image)
	}
	b := eimg.Bounds()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(dst.Width/float64(b.Dx()), dst.Height/float64(b.Dy()))
	op.GeoM.Translate(dst.X, dst.Y)
	op.ColorScale.ScaleAlpha(float32(clamp01(alpha)))
	op.Filter = ebiten.FilterLinear
	s.img.DrawImage(eimg, &op)
}

func (s *EbitenSurface) face(size float64) *text.GoTextFace {
	f, _ := s.faces.get(size, func(px float64) (*text.GoTextFace, bool) {
		src, err := ebitenFontSource()
		if err != nil {
			Logger().Debug("gridview: font unavailable", "err", err)
			return nil, false
		}
		return &text.GoTextFace{Source: src, Size: px}, true
	})
	return f
}

// DrawText implements Surface.
func (s *EbitenSurface) DrawText(str string, x, y, size float64, c Color, align TextAlign) {
	if str == "" || !(size > 0) || !c.visible() {
		return
	}
	f := s.face(size)
	if f == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y-f.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(c.toRGBA())
	switch align {
	case TextAlignCenter:
		op.PrimaryAlign = text.AlignCenter
	case TextAlignRight:
		op.PrimaryAlign = text.AlignEnd
	}
	text.Draw(s.img, str, f, op)
}

type ebitenSnapshot struct {
	img *ebiten.Image
}

func (e *ebitenSnapshot) Size() (int, int) {
	b := e.img.Bounds()
	return b.Dx(), b.Dy()
}

func (e *ebitenSnapshot) Dispose() {
	if e.img != nil {
		e.img.Deallocate()
		e.img = nil
	}
}

// NewSnapshot implements Surface.
func (s *EbitenSurface) NewSnapshot(w, h int, paint func(Surface)) (Snapshot, error) {
	off, err := NewEbitenSurface(w, h)
	if err != nil {
		return nil, err
	}
	paint(off)
	return &ebitenSnapshot{img: off.img}, nil
}

// DrawSnapshot implements Surface.
func (s *EbitenSurface) DrawSnapshot(snap Snapshot, dst Rect) {
	es, ok := snap.(*ebitenSnapshot)
	if !ok || es.img == nil || dst.Empty() {
		return
	}
	w, h := es.Size()
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(dst.Width/float64(w), dst.Height/float64(h))
	op.GeoM.Translate(dst.X, dst.Y)
	op.Filter = ebiten.FilterLinear
	s.img.DrawImage(es.img, &op)
}

// Resize implements Surface.
func (s *EbitenSurface) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("gridview: resize ebiten surface to %dx%d", w, h)
	}
	if cw, ch := s.Size(); cw == w && ch == h {
		return nil
	}
	s.img.Deallocate()
	s.img = ebiten.NewImage(w, h)
	return nil
}

// Dispose implements Surface.
func (s *EbitenSurface) Dispose() {
	// Evicted and cleared images are released by the garbage collector.
	s.images.clear()
	s.faces.clear()
	s.img.Deallocate()
}
