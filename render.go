package gridview

import (
	"fmt"
	"math"
)

// Overlay constants, in logical pixels.
const (
	overlayFontSize    = 11.0
	overlayPadding     = 4.0
	coordLabelSpacing  = 48.0 // minimum distance between coordinate labels
	debugGridMinPixels = 4.0  // cells smaller than this get no grid lines
	debugGridLineWidth = 1.0
	hudLineHeight      = 14.0
	maxGridLines       = 8192
)

var (
	overlayText       = Color{R: 0.1, G: 0.1, B: 0.1, A: 0.9}
	overlayBackground = Color{R: 1, G: 1, B: 1, A: 0.75}
	debugGridColor    = Color{R: 0.5, G: 0.5, B: 0.5, A: 0.35}
)

// labelStep returns the smallest step from the 1-2-5 sequence whose screen
// spacing is at least minPixels at the given scale.
func labelStep(scale, minPixels float64) float64 {
	if !(scale > 0) {
		return 1
	}
	raw := minPixels / scale
	if raw <= 1 {
		return 1
	}
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range [...]float64{1, 2, 5, 10} {
		if step := m * mag; step >= raw {
			return step
		}
	}
	return 10 * mag
}

// gridLines returns the world positions of multiples of step within
// [lo, lo+span]. It returns nil when step no longer separates neighbouring
// values at this magnitude or when more than maxGridLines would result.
func gridLines(lo, span, step float64) []float64 {
	if !(step > 0) || !(span >= 0) || math.IsNaN(lo) || math.IsInf(lo, 0) {
		return nil
	}
	first := math.Ceil(lo/step) * step
	if first+step == first {
		return nil
	}
	last := (lo + span - first) / step
	if last < 0 || last >= maxGridLines {
		return nil
	}
	n := int(last)
	out := make([]float64, n+1)
	for i := range out {
		out[i] = first + float64(i)*step
	}
	return out
}

// drawDebugGrid strokes every cell boundary once cells are large enough to
// make the lines meaningful.
func drawDebugGrid(s Surface, v View) {
	ppc := v.PixelsPerCell()
	if ppc < debugGridMinPixels*v.dpr() {
		return
	}
	vis := v.VisibleBounds()
	m := v.deviceMatrix()
	w, h := s.Size()
	lw := debugGridLineWidth * v.dpr()
	for _, x := range gridLines(vis.X, vis.Width, 1) {
		px, _ := transformPoint(m, x, 0)
		s.StrokePath([]Vec2{{X: px, Y: 0}, {X: px, Y: float64(h)}}, false, debugGridColor, lw)
	}
	for _, y := range gridLines(vis.Y, vis.Height, 1) {
		_, py := transformPoint(m, 0, y)
		s.StrokePath([]Vec2{{X: 0, Y: py}, {X: float64(w), Y: py}}, false, debugGridColor, lw)
	}
}

// drawCoordinates labels cell columns along the top edge and rows along the
// left edge.
func drawCoordinates(s Surface, v View) {
	dpr := v.dpr()
	step := labelStep(v.Scale, coordLabelSpacing)
	vis := v.VisibleBounds()
	m := v.deviceMatrix()
	size := overlayFontSize * dpr
	pad := overlayPadding * dpr
	w, _ := s.Size()

	s.FillRect(Rect{Width: float64(w), Height: size + 2*pad}, overlayBackground)
	for _, x := range gridLines(vis.X, vis.Width, step) {
		px, _ := transformPoint(m, x+0.5, 0)
		s.DrawText(formatCoord(x), px, pad+size*textAscent, size, overlayText, TextAlignCenter)
	}
	for _, y := range gridLines(vis.Y, vis.Height, step) {
		_, py := transformPoint(m, 0, y+0.5)
		if py < size+2*pad {
			continue
		}
		s.DrawText(formatCoord(y), pad, py+size*textBaselineOffset, size, overlayText, TextAlignLeft)
	}
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%d", int(math.Round(v)))
}

// drawHUD shows scale, center and the previous frame's stats in the
// bottom-left corner.
func drawHUD(s Surface, v View, stats frameStats) {
	dpr := v.dpr()
	c := v.Center()
	lines := [...]string{
		fmt.Sprintf("scale %.2f  dpr %.2g", v.Scale, dpr),
		fmt.Sprintf("center %.2f, %.2f", c.X, c.Y),
		stats.String(),
	}
	size := overlayFontSize * dpr
	lh := hudLineHeight * dpr
	pad := overlayPadding * dpr
	_, h := s.Size()
	boxH := float64(len(lines))*lh + 2*pad
	top := float64(h) - boxH
	s.FillRect(Rect{X: 0, Y: top, Width: 260 * dpr, Height: boxH}, overlayBackground)
	for i, line := range lines {
		s.DrawText(line, pad, top+pad+float64(i)*lh+size*textAscent, size, overlayText, TextAlignLeft)
	}
}
