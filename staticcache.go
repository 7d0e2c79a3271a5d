package gridview

import (
	"math"
	"slices"
)

// maxSnapshotSide caps the device-pixel size of one static tile side.
const maxSnapshotSide = 4096

// staticEntry is one keyed static batch and its rasterized tiles. An entry
// whose world rectangle fits in maxSnapshotSide pixels at the current
// density has a single tile; larger ones are split into a grid of tiles
// and only the visible tiles stay resident.
type staticEntry struct {
	items  []RectItem
	handle *DrawHandle

	rects       []placedRect
	world       Rect    // union of the placed items
	ppc         float64 // device pixels per cell the tiles are built at
	tiles       map[tileKey]*staticTile
	frame       uint64
	gridAligned bool
	dirty       bool
}

type tileKey struct{ col, row int }

type staticTile struct {
	snap  Snapshot
	world Rect
	used  uint64
}

// staticCache maps cache keys to snapshots. Snapshots belong to the surface
// family that built them and are dropped when the surface changes.
type staticCache struct {
	entries map[string]*staticEntry
	builds  int // tile rasterization counter, for tests and stats
}

func newStaticCache() *staticCache {
	return &staticCache{entries: make(map[string]*staticEntry)}
}

func (c *staticCache) put(key string, items []RectItem, h *DrawHandle) {
	if old := c.entries[key]; old != nil {
		old.dispose()
	}
	c.entries[key] = &staticEntry{items: slices.Clone(items), handle: h, dirty: true}
}

// replace overwrites the items of an existing entry. The old snapshot is
// discarded, never composited with the new one.
func (c *staticCache) replace(key string, items []RectItem) {
	e := c.entries[key]
	if e == nil {
		return
	}
	e.items = slices.Clone(items)
	e.dispose()
	e.dirty = true
}

// drop removes key if it still belongs to h.
func (c *staticCache) drop(key string, h *DrawHandle) {
	e := c.entries[key]
	if e == nil || e.handle != h {
		return
	}
	e.dispose()
	delete(c.entries, key)
}

// invalidate discards every snapshot, e.g. after the surface was replaced.
func (c *staticCache) invalidate() {
	for _, e := range c.entries {
		e.dispose()
		e.dirty = true
	}
}

func (c *staticCache) disposeAll() {
	for k, e := range c.entries {
		e.dispose()
		delete(c.entries, k)
	}
}

func (e *staticEntry) dispose() {
	for k, t := range e.tiles {
		t.snap.Dispose()
		delete(e.tiles, k)
	}
}

type placedRect struct {
	r     Rect
	style Style
}

// itemRects places the items and returns them with the union of their
// world rectangles. Degenerate items are left out.
func (e *staticEntry) itemRects(gridAligned bool) ([]placedRect, Rect) {
	rects := make([]placedRect, 0, len(e.items))
	var bounds Rect
	for _, it := range e.items {
		size := orOne(it.Size)
		if !(size > 0) || !finite(it.X, it.Y, size) {
			continue
		}
		r := place(it.X, it.Y, size, size, it.Origin, gridAligned)
		if len(rects) == 0 {
			bounds = r
		} else {
			bounds = bounds.union(r)
		}
		rects = append(rects, placedRect{r: r, style: it.Style.resolved()})
	}
	return rects, bounds
}

// render blits the visible tiles for key. Tiles are rebuilt when the items
// changed, when the view zoomed in past twice the tile density (blurry) or
// out below a quarter of it (too many tiles for the view).
func (c *staticCache) render(rc *renderContext, key string) {
	e := c.entries[key]
	if e == nil || len(e.items) == 0 {
		return
	}
	if e.dirty || e.gridAligned != rc.gridAligned {
		e.dispose()
		e.rects, e.world = e.itemRects(rc.gridAligned)
		e.gridAligned = rc.gridAligned
		e.dirty = false
		e.ppc = 0
	}
	if len(e.rects) == 0 || e.world.Empty() {
		return
	}
	if !rc.visible(e.world, 0) {
		rc.culled()
		return
	}

	target := rc.view.PixelsPerCell()
	if !(target > 0) {
		return
	}
	if e.ppc == 0 || target > 2*e.ppc || target < e.ppc/4 {
		e.dispose()
		e.ppc = target
	}
	if e.tiles == nil {
		e.tiles = make(map[tileKey]*staticTile)
	}

	span := maxSnapshotSide / e.ppc
	c0, c1 := tileRange(rc.cull.X, rc.cull.Width, e.world.X, e.world.Width, span)
	r0, r1 := tileRange(rc.cull.Y, rc.cull.Height, e.world.Y, e.world.Height, span)
	e.frame++
	failed := false
	for row := r0; row < r1; row++ {
		for col := c0; col < c1; col++ {
			k := tileKey{col, row}
			t := e.tiles[k]
			if t == nil {
				if t = c.buildTile(rc, e, k, span); t == nil {
					failed = true
					continue
				}
				e.tiles[k] = t
			}
			t.used = e.frame
			rc.surface.DrawSnapshot(t.snap, transformRect(rc.m, t.world))
		}
	}
	for k, t := range e.tiles {
		if t.used != e.frame {
			t.snap.Dispose()
			delete(e.tiles, k)
		}
	}
	if failed {
		// Tile unavailable; draw the items directly.
		rectBatch(e.items).render(rc)
		return
	}
	rc.drawn(len(e.items))
}

// tileRange returns the half-open range of tile indices along one axis that
// overlap the visible span [vis, vis+visLen].
func tileRange(vis, visLen, origin, length, span float64) (int, int) {
	n := math.Max(math.Ceil(length/span), 1)
	lo := math.Max(math.Floor((vis-origin)/span), 0)
	hi := math.Min(math.Ceil((vis+visLen-origin)/span), n)
	if !(hi > lo) {
		return 0, 0
	}
	return int(lo), int(hi)
}

func (c *staticCache) buildTile(rc *renderContext, e *staticEntry, k tileKey, span float64) *staticTile {
	ppc := e.ppc
	x := e.world.X + float64(k.col)*span
	y := e.world.Y + float64(k.row)*span
	cw := math.Min(span, e.world.X+e.world.Width-x)
	ch := math.Min(span, e.world.Y+e.world.Height-y)
	w := min(max(int(math.Ceil(cw*ppc)), 1), maxSnapshotSide)
	h := min(max(int(math.Ceil(ch*ppc)), 1), maxSnapshotSide)
	tile := Rect{X: x, Y: y, Width: float64(w) / ppc, Height: float64(h) / ppc}

	snap, err := rc.surface.NewSnapshot(w, h, func(s Surface) {
		for _, p := range e.rects {
			st := p.style
			lw := st.LineWidth * rc.dpr
			pad := 0.0
			if st.Stroke.visible() {
				pad = lw / ppc
			}
			if !p.r.Intersects(Rect{X: tile.X - pad, Y: tile.Y - pad, Width: tile.Width + 2*pad, Height: tile.Height + 2*pad}) {
				continue
			}
			local := Rect{
				X:      (p.r.X - x) * ppc,
				Y:      (p.r.Y - y) * ppc,
				Width:  p.r.Width * ppc,
				Height: p.r.Height * ppc,
			}
			if st.Fill.visible() {
				s.FillRect(local, st.Fill)
			}
			if st.Stroke.visible() {
				s.StrokeRect(local, st.Stroke, lw)
			}
		}
	})
	if err != nil {
		Logger().Debug("gridview: static tile failed", "size", [2]int{w, h}, "err", err)
		return nil
	}
	c.builds++
	return &staticTile{snap: snap, world: tile}
}
