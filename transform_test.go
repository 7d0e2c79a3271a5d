package gridview

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestWorldToScreen(t *testing.T) {
	v := View{X: 10, Y: 20, Scale: 4, Width: 400, Height: 300}
	sx, sy := v.WorldToScreen(15, 22)
	assertNear(t, "sx", sx, 20)
	assertNear(t, "sy", sy, 8)
}

func TestTransformRoundTrip(t *testing.T) {
	views := []View{
		{Scale: 1, Width: 100, Height: 100},
		{X: -123.25, Y: 987.5, Scale: 37.5, Width: 800, Height: 600, DPR: 2},
		{X: 1e6, Y: -1e6, Scale: 0.01, Width: 640, Height: 480},
	}
	points := [][2]float64{{0, 0}, {1.5, -2.25}, {-1e4, 3e4}, {123456.789, 0.001}}
	for _, v := range views {
		for _, p := range points {
			sx, sy := v.WorldToScreen(p[0], p[1])
			wx, wy := v.ScreenToWorld(sx, sy)
			tol := 1e-9 * math.Max(1, math.Max(math.Abs(p[0]), math.Abs(p[1])))
			if !approxEqual(wx, p[0], tol) || !approxEqual(wy, p[1], tol) {
				t.Errorf("view %+v: round trip of %v = (%v,%v)", v, p, wx, wy)
			}
		}
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		wx, wy float64
		want   Cell
	}{
		{0, 0, Cell{0, 0}},
		{0.99, 1.01, Cell{0, 1}},
		{-0.01, -1, Cell{-1, -1}},
		{-1.5, 2.5, Cell{-2, 2}},
	}
	for _, tt := range tests {
		if got := Snap(tt.wx, tt.wy); got != tt.want {
			t.Errorf("Snap(%v,%v) = %+v, want %+v", tt.wx, tt.wy, got, tt.want)
		}
	}
}

func TestViewCenterAndBounds(t *testing.T) {
	v := View{X: 2, Y: 3, Scale: 10, Width: 200, Height: 100}
	c := v.Center()
	assertNear(t, "center.X", c.X, 12)
	assertNear(t, "center.Y", c.Y, 8)
	b := v.VisibleBounds()
	if b != (Rect{X: 2, Y: 3, Width: 20, Height: 10}) {
		t.Errorf("VisibleBounds = %+v", b)
	}
}

func TestDeviceMatrixIncludesDPR(t *testing.T) {
	v := View{X: 1, Y: 1, Scale: 10, Width: 100, Height: 100, DPR: 2}
	assertNear(t, "PixelsPerCell", v.PixelsPerCell(), 20)
	r := v.WorldToDevice(Rect{X: 2, Y: 3, Width: 1, Height: 2})
	want := Rect{X: 20, Y: 40, Width: 20, Height: 40}
	if r != want {
		t.Errorf("WorldToDevice = %+v, want %+v", r, want)
	}
	wx, wy := v.DeviceToWorld(20, 40)
	assertNear(t, "wx", wx, 2)
	assertNear(t, "wy", wy, 3)
}

func TestMultiplyAffine(t *testing.T) {
	a := [6]float64{2, 0, 0, 2, 10, 20}
	b := [6]float64{1, 0, 0, 1, 5, 5}
	got := multiplyAffine(a, b)
	// Translate by (5,5) then scale by 2 and translate by (10,20).
	x, y := transformPoint(got, 1, 1)
	assertNear(t, "x", x, 22)
	assertNear(t, "y", y, 32)
	if multiplyAffine(identityTransform, a) != a {
		t.Error("identity * a != a")
	}
}

func TestInvertAffine(t *testing.T) {
	m := [6]float64{3, 0, 0, 4, -7, 9}
	inv := invertAffine(m)
	x, y := transformPoint(m, 5, -2)
	bx, by := transformPoint(inv, x, y)
	assertNear(t, "x", bx, 5)
	assertNear(t, "y", by, -2)

	if invertAffine([6]float64{0, 0, 0, 0, 1, 1}) != identityTransform {
		t.Error("singular matrix did not invert to identity")
	}
}
