package gridview

import "math"

// View is a read-only snapshot of the camera and viewport. Every coordinate
// conversion is a pure function of a View, so callbacks and renderers may use
// it freely without touching engine state.
type View struct {
	X, Y          float64 // world coordinate at the viewport's top-left
	Scale         float64 // logical pixels per world unit
	Width, Height float64 // viewport size in logical pixels
	DPR           float64 // device pixel ratio
}

// WorldToScreen converts world coordinates to logical viewport pixels.
func (v View) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return (wx - v.X) * v.Scale, (wy - v.Y) * v.Scale
}

// ScreenToWorld converts logical viewport pixels to world coordinates.
func (v View) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return sx/v.Scale + v.X, sy/v.Scale + v.Y
}

// Snap returns the grid cell containing the world point.
func Snap(wx, wy float64) Cell {
	return Cell{X: int(math.Floor(wx)), Y: int(math.Floor(wy))}
}

// VisibleBounds returns the world-space rectangle covered by the viewport.
func (v View) VisibleBounds() Rect {
	return Rect{X: v.X, Y: v.Y, Width: v.Width / v.Scale, Height: v.Height / v.Scale}
}

// Center returns the world coordinate at the viewport center.
func (v View) Center() Vec2 {
	return Vec2{X: v.X + v.Width/(2*v.Scale), Y: v.Y + v.Height/(2*v.Scale)}
}

// PixelsPerCell returns the number of device pixels one world unit covers.
func (v View) PixelsPerCell() float64 {
	return v.Scale * v.dpr()
}

func (v View) dpr() float64 {
	if v.DPR > 0 {
		return v.DPR
	}
	return 1
}

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// viewMatrix maps world coordinates to logical viewport pixels.
// Returns [a, b, c, d, tx, ty].
func (v View) viewMatrix() [6]float64 {
	s := v.Scale
	return [6]float64{s, 0, 0, s, -v.X * s, -v.Y * s}
}

// deviceMatrix maps world coordinates to device pixels of the backing
// surface: the view matrix followed by the DPR scale.
func (v View) deviceMatrix() [6]float64 {
	d := v.dpr()
	return multiplyAffine([6]float64{d, 0, 0, d, 0, 0}, v.viewMatrix())
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect maps an axis-aligned rectangle through a scale+translate
// matrix. Rotation is never present in device matrices.
func transformRect(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	return Rect{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}

// WorldToDevice maps a world rectangle onto the backing surface's device
// pixels. Custom draw functions use it to place shapes.
func (v View) WorldToDevice(r Rect) Rect {
	return transformRect(v.deviceMatrix(), r)
}

// DeviceToWorld maps a device pixel back to world coordinates.
func (v View) DeviceToWorld(px, py float64) (wx, wy float64) {
	return transformPoint(invertAffine(v.deviceMatrix()), px, py)
}
