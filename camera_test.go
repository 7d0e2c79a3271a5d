package gridview

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func newTestCamera(w, h, scale float64) (*Camera, *ViewportState) {
	cfg, err := NormalizeConfig(Config{Scale: scale, MinScale: 0.01, MaxScale: 1000, Size: SizeConfig{Width: w, Height: h}})
	if err != nil {
		panic(err)
	}
	vp := &ViewportState{Width: w, Height: h, DPR: 1}
	return newCamera(&cfg, vp), vp
}

func TestCameraDefaults(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 10)
	if cam.Scale != 10 {
		t.Errorf("Scale = %v, want 10", cam.Scale)
	}
	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("position = (%v,%v), want origin", cam.X, cam.Y)
	}
	if _, ok := cam.Bounds(); ok {
		t.Error("Bounds set, want none")
	}
}

func TestCameraPan(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 10)
	cam.Pan(50, -20)
	if !approxEqual(cam.X, -5, epsilon) || !approxEqual(cam.Y, 2, epsilon) {
		t.Errorf("after Pan(50,-20) = (%v,%v), want (-5,2)", cam.X, cam.Y)
	}
	cam.Pan(math.NaN(), 0)
	if math.IsNaN(cam.X) {
		t.Error("Pan(NaN) corrupted X")
	}
}

func TestCameraZoomAnchoring(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 50)
	cam.X, cam.Y = 3, 7
	anchor := Vec2{X: 100, Y: 100}
	before := Vec2{X: cam.X + anchor.X/cam.Scale, Y: cam.Y + anchor.Y/cam.Scale}

	if !cam.ZoomByFactor(1.1, anchor) {
		t.Fatal("ZoomByFactor reported no change")
	}
	if !approxEqual(cam.Scale, 55, epsilon) {
		t.Errorf("Scale = %v, want 55", cam.Scale)
	}
	after := Vec2{X: cam.X + anchor.X/cam.Scale, Y: cam.Y + anchor.Y/cam.Scale}
	if !approxEqual(after.X, before.X, epsilon) || !approxEqual(after.Y, before.Y, epsilon) {
		t.Errorf("world under anchor moved from %+v to %+v", before, after)
	}
}

func TestCameraZoomClampsToRange(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 50)
	cam.minScale, cam.maxScale = 10, 60
	cam.ZoomByFactor(100, Vec2{})
	if cam.Scale != 60 {
		t.Errorf("Scale = %v, want max 60", cam.Scale)
	}
	if cam.ZoomByFactor(2, Vec2{}) {
		t.Error("ZoomByFactor at max reported a change")
	}
	cam.ZoomByFactor(0.001, Vec2{})
	if cam.Scale != 10 {
		t.Errorf("Scale = %v, want min 10", cam.Scale)
	}
}

func TestCameraZoomRejectsInvalidFactor(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 50)
	for _, f := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if cam.ZoomByFactor(f, Vec2{}) {
			t.Errorf("ZoomByFactor(%v) reported a change", f)
		}
	}
	if cam.Scale != 50 {
		t.Errorf("Scale = %v, want 50", cam.Scale)
	}
}

func TestCameraSetScaleKeepsCenter(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 10)
	cam.SetCenter(Vec2{X: 42, Y: -17}, 800, 600)
	cam.SetScale(25)
	c := cam.Center()
	if !approxEqual(c.X, 42, epsilon) || !approxEqual(c.Y, -17, epsilon) {
		t.Errorf("Center = %+v, want (42,-17)", c)
	}
}

func TestCameraSetCenter(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 20)
	cam.SetCenter(Vec2{X: 100, Y: 50}, 800, 600)
	if !approxEqual(cam.X, 80, epsilon) || !approxEqual(cam.Y, 35, epsilon) {
		t.Errorf("position = (%v,%v), want (80,35)", cam.X, cam.Y)
	}
	c := cam.Center()
	if !approxEqual(c.X, 100, epsilon) || !approxEqual(c.Y, 50, epsilon) {
		t.Errorf("Center = %+v, want (100,50)", c)
	}
}

func TestCameraAdjustForResizeKeepsCenter(t *testing.T) {
	cam, vp := newTestCamera(800, 600, 20)
	cam.SetCenter(Vec2{X: 12.5, Y: 9}, 800, 600)
	before := cam.Center()

	vp.Width += 100
	cam.AdjustForResize(100, 0)

	after := cam.Center()
	if !approxEqual(after.X, before.X, epsilon) || !approxEqual(after.Y, before.Y, epsilon) {
		t.Errorf("center moved from %+v to %+v", before, after)
	}
}

func TestCameraVisibleBounds(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 20)
	cam.X, cam.Y = 5, 10
	got := cam.VisibleBounds()
	want := Rect{X: 5, Y: 10, Width: 40, Height: 30}
	if got != want {
		t.Errorf("VisibleBounds = %+v, want %+v", got, want)
	}
}

func TestCameraBoundsClamping(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		wantX  float64
		wantY  float64
		width  float64
		height float64
	}{
		{"inside", 100, 200, 100, 200, 500, 500},
		{"past min", -50, -1, 0, 0, 500, 500},
		{"past max", 600, 495, 490, 490, 500, 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, _ := newTestCamera(tt.width, tt.height, 50)
			cam.SetBounds(&Bounds{MinX: 0, MinY: 0, MaxX: 500, MaxY: 500})
			cam.X, cam.Y = tt.x, tt.y
			cam.ClampToBounds()
			if !approxEqual(cam.X, tt.wantX, epsilon) || !approxEqual(cam.Y, tt.wantY, epsilon) {
				t.Errorf("position = (%v,%v), want (%v,%v)", cam.X, cam.Y, tt.wantX, tt.wantY)
			}
			vis := cam.VisibleBounds()
			if vis.X < 0 || vis.Y < 0 || vis.X+vis.Width > 500+epsilon || vis.Y+vis.Height > 500+epsilon {
				t.Errorf("visible %+v leaves bounds", vis)
			}
		})
	}
}

func TestCameraBoundsCentersWhenTooLarge(t *testing.T) {
	cam, _ := newTestCamera(800, 600, 1)
	cam.SetBounds(&Bounds{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100})
	// 800x600 world units visible, bounds only 100x100: center on the bounds.
	c := cam.Center()
	if !approxEqual(c.X, 50, epsilon) || !approxEqual(c.Y, 50, epsilon) {
		t.Errorf("Center = %+v, want (50,50)", c)
	}
	if cam.Scale != 1 {
		t.Errorf("Scale = %v, clamping must not change scale", cam.Scale)
	}
	cam.Pan(300, 300)
	c = cam.Center()
	if !approxEqual(c.X, 50, epsilon) || !approxEqual(c.Y, 50, epsilon) {
		t.Errorf("Center after pan = %+v, want (50,50)", c)
	}
}

func TestCameraBoundsAfterZoom(t *testing.T) {
	cam, _ := newTestCamera(500, 500, 50)
	cam.SetBounds(&Bounds{MaxX: 500, MaxY: 500})
	cam.X, cam.Y = 490, 490
	cam.ClampToBounds()
	cam.ZoomByFactor(0.5, Vec2{X: 500, Y: 500})
	vis := cam.VisibleBounds()
	if vis.X+vis.Width > 500+epsilon || vis.Y+vis.Height > 500+epsilon {
		t.Errorf("visible %+v leaves bounds after zoom out", vis)
	}
}

func TestCameraSetBoundsNilDisables(t *testing.T) {
	cam, _ := newTestCamera(500, 500, 50)
	cam.SetBounds(&Bounds{MaxX: 100, MaxY: 100})
	cam.SetBounds(nil)
	cam.X = -1000
	cam.ClampToBounds()
	if cam.X != -1000 {
		t.Errorf("X = %v, want unclamped -1000", cam.X)
	}
}

func TestCameraView(t *testing.T) {
	cam, vp := newTestCamera(320, 240, 8)
	vp.DPR = 2
	cam.X, cam.Y = 1, 2
	v := cam.View()
	want := View{X: 1, Y: 2, Scale: 8, Width: 320, Height: 240, DPR: 2}
	if v != want {
		t.Errorf("View = %+v, want %+v", v, want)
	}
}
