package gridview

import (
	"image"
	"math"
	"slices"
)

// Style is the paint of a draw item. A zero Style fills with ColorBlack.
type Style struct {
	Fill   Color
	Stroke Color
	// LineWidth is the stroke width in logical pixels. Zero means 1.
	LineWidth float64
}

func (s Style) resolved() Style {
	if s == (Style{}) {
		s.Fill = ColorBlack
	}
	if !(s.LineWidth > 0) {
		s.LineWidth = 1
	}
	return s
}

// RectItem is a square of Size cells at (X, Y).
type RectItem struct {
	X, Y   float64
	Size   float64 // cells; zero means 1
	Style  Style
	Origin Origin
}

// CircleItem is a circle of diameter Size cells.
type CircleItem struct {
	X, Y   float64
	Size   float64 // diameter in cells; zero means 1
	Style  Style
	Origin Origin
}

// ImageItem draws Source (or the whole image) into a Width×Height cell box.
type ImageItem struct {
	X, Y          float64
	Width, Height float64 // cells; zero means 1
	Image         image.Image
	Source        image.Rectangle
	// Alpha is the opacity in (0, 1]. The zero value draws opaque.
	Alpha  float64
	Origin Origin
}

// PathItem is a polyline through world points. With OriginCenter each point
// is moved to the center of its cell.
type PathItem struct {
	Points []Vec2
	Style  Style
	Closed bool
	Origin Origin
}

// TextItem is a single line of text. Size is the font height in cells.
type TextItem struct {
	X, Y   float64
	Text   string
	Size   float64 // cells; zero means 1
	Style  Style   // Fill is the text color
	Align  TextAlign
	Origin Origin
}

// textAscent approximates the ascent of the default font as a fraction of
// its size, used to hang top-left anchored text below its anchor.
const textAscent = 0.8

// place returns the world rectangle of a w×h item anchored at (x, y).
func place(x, y, w, h float64, origin Origin, gridAligned bool) Rect {
	if gridAligned {
		x, y = math.Floor(x), math.Floor(y)
	}
	if origin == OriginCenter {
		x += 0.5 - w/2
		y += 0.5 - h/2
	}
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// renderContext is the per-pass state shared by every batch.
type renderContext struct {
	surface     Surface
	view        View
	m           [6]float64 // world to device pixels
	cull        Rect       // visible world rectangle
	dpr         float64
	gridAligned bool
	cache       *staticCache
	stats       *frameStats
}

func newRenderContext(s Surface, v View, gridAligned bool, cache *staticCache, stats *frameStats) *renderContext {
	return &renderContext{
		surface:     s,
		view:        v,
		m:           v.deviceMatrix(),
		cull:        v.VisibleBounds(),
		dpr:         v.dpr(),
		gridAligned: gridAligned,
		cache:       cache,
		stats:       stats,
	}
}

// visible reports whether a world rectangle overlaps the viewport, padded by
// pad world units for strokes.
func (rc *renderContext) visible(r Rect, pad float64) bool {
	return Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}.Intersects(rc.cull)
}

func (rc *renderContext) skip(kind string, reason string) {
	rc.stats.skipped++
	Logger().Debug("gridview: skipped draw item", "kind", kind, "reason", reason)
}

func (rc *renderContext) drawn(n int) { rc.stats.items += n }

func (rc *renderContext) culled() { rc.stats.culled++ }

// drawBatch is one registered group of items.
type drawBatch interface {
	render(rc *renderContext)
}

type rectBatch []RectItem

func (b rectBatch) render(rc *renderContext) {
	for _, it := range b {
		drawRect(rc, it)
	}
}

func drawRect(rc *renderContext, it RectItem) {
	size := orOne(it.Size)
	if !(size > 0) || !finite(it.X, it.Y, size) {
		rc.skip("rect", "degenerate size")
		return
	}
	st := it.Style.resolved()
	wr := place(it.X, it.Y, size, size, it.Origin, rc.gridAligned)
	if !rc.visible(wr, st.LineWidth/rc.view.Scale) {
		rc.culled()
		return
	}
	r := transformRect(rc.m, wr)
	if st.Fill.visible() {
		rc.surface.FillRect(r, st.Fill)
	}
	if st.Stroke.visible() {
		rc.surface.StrokeRect(r, st.Stroke, st.LineWidth*rc.dpr)
	}
	rc.drawn(1)
}

type circleBatch []CircleItem

func (b circleBatch) render(rc *renderContext) {
	for _, it := range b {
		size := orOne(it.Size)
		if !(size > 0) || !finite(it.X, it.Y, size) {
			rc.skip("circle", "degenerate size")
			continue
		}
		st := it.Style.resolved()
		wr := place(it.X, it.Y, size, size, it.Origin, rc.gridAligned)
		if !rc.visible(wr, st.LineWidth/rc.view.Scale) {
			rc.culled()
			continue
		}
		r := transformRect(rc.m, wr)
		cx, cy, radius := r.X+r.Width/2, r.Y+r.Height/2, r.Width/2
		if st.Fill.visible() {
			rc.surface.FillCircle(cx, cy, radius, st.Fill)
		}
		if st.Stroke.visible() {
			rc.surface.StrokeCircle(cx, cy, radius, st.Stroke, st.LineWidth*rc.dpr)
		}
		rc.drawn(1)
	}
}

type imageBatch []ImageItem

func (b imageBatch) render(rc *renderContext) {
	for _, it := range b {
		if it.Image == nil {
			rc.skip("image", "nil image")
			continue
		}
		if it.Image.Bounds().Empty() {
			rc.skip("image", "zero-dimension image")
			continue
		}
		if !it.Source.Empty() && it.Source.Intersect(it.Image.Bounds()).Empty() {
			rc.skip("image", "source outside image")
			continue
		}
		w, h := orOne(it.Width), orOne(it.Height)
		if !(w > 0) || !(h > 0) || !finite(it.X, it.Y, w, h) {
			rc.skip("image", "degenerate size")
			continue
		}
		alpha := it.Alpha
		if alpha == 0 {
			alpha = 1
		}
		if !(alpha > 0) {
			rc.skip("image", "negative alpha")
			continue
		}
		wr := place(it.X, it.Y, w, h, it.Origin, rc.gridAligned)
		if !rc.visible(wr, 0) {
			rc.culled()
			continue
		}
		rc.surface.DrawImage(it.Image, it.Source, transformRect(rc.m, wr), alpha)
		rc.drawn(1)
	}
}

type pathBatch []PathItem

func (b pathBatch) render(rc *renderContext) {
	for _, it := range b {
		if len(it.Points) < 2 {
			rc.skip("path", "fewer than two points")
			continue
		}
		st := it.Style.resolved()
		off := 0.0
		if it.Origin == OriginCenter {
			off = 0.5
		}
		pts := make([]Vec2, len(it.Points))
		ok := true
		for i, p := range it.Points {
			if !finite(p.X, p.Y) {
				ok = false
				break
			}
			x, y := p.X, p.Y
			if rc.gridAligned {
				x, y = math.Floor(x), math.Floor(y)
			}
			pts[i].X, pts[i].Y = transformPoint(rc.m, x+off, y+off)
		}
		if !ok {
			rc.skip("path", "non-finite point")
			continue
		}
		if !rc.visible(pathBounds(it.Points), off+st.LineWidth/rc.view.Scale) {
			rc.culled()
			continue
		}
		if it.Closed && len(pts) >= 3 && it.Style.Fill.visible() {
			rc.surface.FillPath(pts, st.Fill)
		}
		stroke := st.Stroke
		if !stroke.visible() && !it.Closed {
			// An open path has no interior; draw it in its fill color.
			stroke = st.Fill
		}
		if stroke.visible() {
			rc.surface.StrokePath(pts, it.Closed, stroke, st.LineWidth*rc.dpr)
		}
		rc.drawn(1)
	}
}

type textBatch []TextItem

func (b textBatch) render(rc *renderContext) {
	for _, it := range b {
		size := orOne(it.Size)
		if it.Text == "" || !(size > 0) || !finite(it.X, it.Y, size) {
			rc.skip("text", "empty or degenerate")
			continue
		}
		st := it.Style.resolved()
		x, y := it.X, it.Y
		if rc.gridAligned {
			x, y = math.Floor(x), math.Floor(y)
		}
		var baseline float64
		if it.Origin == OriginCenter {
			x += 0.5
			baseline = y + 0.5 + size*textBaselineOffset
		} else {
			baseline = y + size*textAscent
		}
		// Text extent is unknown without shaping; cull on a generous box.
		if !rc.visible(Rect{X: x - size*float64(len(it.Text)), Y: y - size, Width: 2 * size * float64(len(it.Text)), Height: 3 * size}, 0) {
			rc.culled()
			continue
		}
		px := size * rc.view.PixelsPerCell()
		if px < 1 {
			rc.skip("text", "below one pixel")
			continue
		}
		dx, dy := transformPoint(rc.m, x, baseline)
		rc.surface.DrawText(it.Text, dx, dy, px, st.Fill, it.Align)
		rc.drawn(1)
	}
}

// funcBatch is a user callback drawing directly on the surface.
type funcBatch func(Surface, View)

func (f funcBatch) render(rc *renderContext) {
	f(rc.surface, rc.view)
	rc.drawn(1)
}

// staticBatch draws through the static cache entry named key.
type staticBatch struct {
	key string
}

func (b *staticBatch) render(rc *renderContext) {
	rc.cache.render(rc, b.key)
}

// --- Draw API ---

// DrawAPI registers draw batches into prioritized layers. Every call stores
// a copy of the items and returns a handle that can remove them. The engine
// redraws whenever Version changes.
type DrawAPI struct {
	layers  LayerStack
	cache   *staticCache
	version uint64
}

func newDrawAPI() *DrawAPI {
	return &DrawAPI{cache: newStaticCache()}
}

// Version increments on every registration, removal or clear.
func (d *DrawAPI) Version() uint64 { return d.version }

// Layers exposes the layer stack for inspection.
func (d *DrawAPI) Layers() *LayerStack { return &d.layers }

// Layer is a DrawAPI bound to one priority.
type Layer struct {
	api      *DrawAPI
	priority int
}

// OnLayer returns the draw calls for the layer with the given priority.
// Lower priorities draw first.
func (d *DrawAPI) OnLayer(priority int) Layer {
	return Layer{api: d, priority: priority}
}

func (d *DrawAPI) register(priority int, b drawBatch) *DrawHandle {
	h := &DrawHandle{api: d, priority: priority, batch: b}
	d.layers.add(h)
	d.version++
	return h
}

func (d *DrawAPI) remove(h *DrawHandle) {
	if d.layers.remove(h) {
		d.version++
	}
	d.release(h)
}

func (d *DrawAPI) release(h *DrawHandle) {
	h.removed = true
	if sb, ok := h.batch.(*staticBatch); ok {
		d.cache.drop(sb.key, h)
	}
}

// DrawRect registers rectangles on the default layer.
func (d *DrawAPI) DrawRect(items ...RectItem) *DrawHandle {
	return d.OnLayer(DefaultLayer).DrawRect(items...)
}

// DrawCircle registers circles on the default layer.
func (d *DrawAPI) DrawCircle(items ...CircleItem) *DrawHandle {
	return d.OnLayer(DefaultLayer).DrawCircle(items...)
}

// DrawImage registers images on the default layer.
func (d *DrawAPI) DrawImage(items ...ImageItem) *DrawHandle {
	return d.OnLayer(DefaultLayer).DrawImage(items...)
}

// DrawPath registers paths on the default layer.
func (d *DrawAPI) DrawPath(items ...PathItem) *DrawHandle {
	return d.OnLayer(DefaultLayer).DrawPath(items...)
}

// DrawText registers text on the default layer.
func (d *DrawAPI) DrawText(items ...TextItem) *DrawHandle {
	return d.OnLayer(DefaultLayer).DrawText(items...)
}

// DrawStaticRect registers a cached rectangle batch on the default layer.
func (d *DrawAPI) DrawStaticRect(key string, items ...RectItem) *DrawHandle {
	return d.OnLayer(DefaultLayer).DrawStaticRect(key, items...)
}

// AddDrawFunction registers a callback that draws directly on the surface at
// the given priority.
func (d *DrawAPI) AddDrawFunction(fn func(s Surface, v View), priority int) *DrawHandle {
	return d.OnLayer(priority).AddDrawFunction(fn)
}

// ClearLayer removes every batch registered at priority.
func (d *DrawAPI) ClearLayer(priority int) {
	d.OnLayer(priority).Clear()
}

// ClearAll removes every batch on every layer.
func (d *DrawAPI) ClearAll() {
	hs := d.layers.clearAll()
	for _, h := range hs {
		d.release(h)
	}
	if len(hs) > 0 {
		d.version++
	}
}

// DrawRect registers rectangles.
func (l Layer) DrawRect(items ...RectItem) *DrawHandle {
	return l.api.register(l.priority, rectBatch(slices.Clone(items)))
}

// DrawCircle registers circles.
func (l Layer) DrawCircle(items ...CircleItem) *DrawHandle {
	return l.api.register(l.priority, circleBatch(slices.Clone(items)))
}

// DrawImage registers images.
func (l Layer) DrawImage(items ...ImageItem) *DrawHandle {
	return l.api.register(l.priority, imageBatch(slices.Clone(items)))
}

// DrawPath registers paths. Point slices are copied.
func (l Layer) DrawPath(items ...PathItem) *DrawHandle {
	cp := slices.Clone(items)
	for i := range cp {
		cp[i].Points = slices.Clone(cp[i].Points)
	}
	return l.api.register(l.priority, pathBatch(cp))
}

// DrawText registers text.
func (l Layer) DrawText(items ...TextItem) *DrawHandle {
	return l.api.register(l.priority, textBatch(slices.Clone(items)))
}

// AddDrawFunction registers a raw-surface callback.
func (l Layer) AddDrawFunction(fn func(s Surface, v View)) *DrawHandle {
	return l.api.register(l.priority, funcBatch(fn))
}

// DrawStaticRect registers rectangles rendered once into an offscreen
// snapshot named key; later frames blit the snapshot. Calling again with the
// same key and identical items is a no-op. Different items replace the
// cached batch, and a different priority moves it.
func (l Layer) DrawStaticRect(key string, items ...RectItem) *DrawHandle {
	d := l.api
	if e := d.cache.entries[key]; e != nil && e.handle != nil && !e.handle.removed {
		same := slices.Equal(e.items, items)
		if same && e.handle.priority == l.priority {
			return e.handle
		}
		if !same {
			d.cache.replace(key, items)
		}
		if e.handle.priority != l.priority {
			d.layers.remove(e.handle)
			e.handle.priority = l.priority
			d.layers.add(e.handle)
		}
		d.version++
		return e.handle
	}
	h := d.register(l.priority, &staticBatch{key: key})
	d.cache.put(key, items, h)
	return h
}

// Clear removes every batch on this layer.
func (l Layer) Clear() {
	hs := l.api.layers.clear(l.priority)
	for _, h := range hs {
		l.api.release(h)
	}
	if len(hs) > 0 {
		l.api.version++
	}
}

// render replays every batch in layer order.
func (d *DrawAPI) render(rc *renderContext) {
	d.layers.each(func(h *DrawHandle) {
		h.batch.render(rc)
	})
}
