package gridview

import (
	"image"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	maxPointers     = 10    // pointer 0 = mouse, 1-9 = touch
	wheelLineDelta  = 100.0 // wheel delta per ebiten wheel unit
	defaultRunTitle = "gridview"
)

// RunConfig configures the Ebitengine window opened by Run.
type RunConfig struct {
	Title string
	// Width and Height set the initial window size in logical pixels.
	// Zero uses the engine's viewport size.
	Width, Height int
	// ShowFPS draws an FPS/TPS counter in the top-right corner.
	ShowFPS bool
	// Resizable lets the user resize the window. Always on for responsive
	// engines.
	Resizable bool
}

// Run opens a window and drives e until the window is closed. The engine
// only re-renders when a redraw was requested, an animation is running or
// the draw API changed; otherwise the previous frame is shown again.
func Run(e *Engine, cfg RunConfig) error {
	vp := e.Viewport()
	if cfg.Width <= 0 {
		cfg.Width = int(math.Ceil(vp.Width))
	}
	if cfg.Height <= 0 {
		cfg.Height = int(math.Ceil(vp.Height))
	}
	if cfg.Title == "" {
		cfg.Title = defaultRunTitle
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	c := e.Config()
	if cfg.Resizable || c.Responsive != ResponsiveNone || c.EventHandlers.Resize {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	g := newGame(e, cfg)
	defer e.Destroy()
	return ebiten.RunGame(g)
}

// game adapts an Engine to ebiten.Game. Ebiten input is normalized into
// PointerEvents and window sizes into SizeEvents, both published through
// feeds the engine is attached to.
type game struct {
	e   *Engine
	cfg RunConfig

	pointers PointerFeed
	sizes    SizeFeed

	lastW, lastH int
	lastDPR      float64

	mouseX, mouseY float64
	mouseInside    bool

	touchIDs  []ebiten.TouchID
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool

	frame *ebiten.Image
	fps   *fpsCounter
}

func newGame(e *Engine, cfg RunConfig) *game {
	g := &game{e: e, cfg: cfg}
	e.AttachPointerSource(&g.pointers)
	e.AttachSizeSource(&g.sizes)
	if cfg.ShowFPS {
		g.fps = newFPSCounter()
	}
	return g
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	dt := time.Second / time.Duration(ebiten.TPS())
	if !g.e.InjectPending() {
		dpr := g.dpr()
		g.processMouse(dpr)
		g.processTouches(dpr)
	}
	g.e.Update(dt)
	if g.fps != nil {
		g.fps.update(dt)
	}
	return nil
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	if g.e.Frame() || g.frame == nil {
		g.refresh()
	}
	if g.frame != nil {
		screen.DrawImage(g.frame, nil)
	}
	if g.fps != nil {
		g.fps.draw(screen)
	}
}

// Layout implements ebiten.Game. The screen is the engine's backing buffer,
// so one screen pixel is one device pixel.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := g.dpr()
	if outsideWidth != g.lastW || outsideHeight != g.lastH || dpr != g.lastDPR {
		g.lastW, g.lastH, g.lastDPR = outsideWidth, outsideHeight, dpr
		g.sizes.Publish(SizeEvent{
			Width:  float64(outsideWidth),
			Height: float64(outsideHeight),
			DPR:    dpr,
		})
	}
	return g.e.Viewport().BackingSize()
}

func (g *game) dpr() float64 {
	if m := ebiten.Monitor(); m != nil {
		if s := m.DeviceScaleFactor(); s > 0 {
			return s
		}
	}
	return 1
}

// refresh copies the engine's last frame into the image shown on screen.
func (g *game) refresh() {
	switch img := g.e.FrameImage().(type) {
	case nil:
	case *ebiten.Image:
		g.frame = img
	case *image.RGBA:
		b := img.Bounds()
		if g.frame == nil || g.frame.Bounds().Size() != b.Size() {
			g.frame = ebiten.NewImage(b.Dx(), b.Dy())
		}
		if img.Stride == 4*b.Dx() {
			g.frame.WritePixels(img.Pix)
		} else {
			g.frame = ebiten.NewImageFromImage(img)
		}
	default:
		g.frame = ebiten.NewImageFromImage(img)
	}
}

func (g *game) publish(ev PointerEvent) {
	g.pointers.Publish(ev)
}

// processMouse normalizes mouse input into pointer 0.
func (g *game) processMouse(dpr float64) {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx)/dpr, float64(cy)/dpr
	vp := g.e.Viewport()
	inside := x >= 0 && y >= 0 && x < vp.Width && y < vp.Height
	base := PointerEvent{ID: 0, Type: PointerMouse, X: x, Y: y, ClientX: float64(cx), ClientY: float64(cy)}

	buttons := [...]struct {
		eb ebiten.MouseButton
		mb MouseButton
	}{
		{ebiten.MouseButtonLeft, MouseButtonLeft},
		{ebiten.MouseButtonRight, MouseButtonRight},
		{ebiten.MouseButtonMiddle, MouseButtonMiddle},
	}
	pressed := false
	for _, b := range buttons {
		if ebiten.IsMouseButtonPressed(b.eb) {
			pressed = true
		}
	}

	if x != g.mouseX || y != g.mouseY {
		g.mouseX, g.mouseY = x, y
		if inside || pressed {
			ev := base
			ev.Kind = PointerMove
			ev.Pressed = pressed
			g.publish(ev)
		}
	}
	if g.mouseInside && !inside && !pressed {
		ev := base
		ev.Kind = PointerLeave
		g.publish(ev)
	}
	g.mouseInside = inside

	for _, b := range buttons {
		switch {
		case inpututil.IsMouseButtonJustPressed(b.eb) && inside:
			ev := base
			ev.Kind, ev.Button, ev.Pressed = PointerDown, b.mb, true
			g.publish(ev)
		case inpututil.IsMouseButtonJustReleased(b.eb):
			ev := base
			ev.Kind, ev.Button = PointerUp, b.mb
			g.publish(ev)
		}
	}

	if _, yoff := ebiten.Wheel(); yoff != 0 && inside {
		ev := base
		ev.Kind = PointerWheel
		ev.DeltaY = -yoff * wheelLineDelta
		g.publish(ev)
	}
}

// processTouches normalizes touches into pointers 1-9.
func (g *game) processTouches(dpr float64) {
	for _, tid := range inpututil.AppendJustPressedTouchIDs(nil) {
		slot := g.touchSlot(tid)
		if slot < 0 {
			continue
		}
		tx, ty := ebiten.TouchPosition(tid)
		g.publish(touchEvent(PointerDown, slot, tx, ty, dpr))
	}

	g.touchIDs = ebiten.AppendTouchIDs(g.touchIDs[:0])
	var active [maxPointers]bool
	for _, tid := range g.touchIDs {
		slot := g.existingSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		px, py := inpututil.TouchPositionInPreviousTick(tid)
		if tx != px || ty != py {
			g.publish(touchEvent(PointerMove, slot, tx, ty, dpr))
		}
	}

	// Release slots whose touch ended.
	for i := 1; i < maxPointers; i++ {
		if !g.touchUsed[i] || active[i] {
			continue
		}
		tx, ty := inpututil.TouchPositionInPreviousTick(g.touchMap[i])
		g.publish(touchEvent(PointerUp, i, tx, ty, dpr))
		g.touchUsed[i] = false
		g.touchMap[i] = 0
	}
}

func touchEvent(kind PointerKind, slot, tx, ty int, dpr float64) PointerEvent {
	return PointerEvent{
		Kind:    kind,
		ID:      slot,
		Type:    PointerTouch,
		X:       float64(tx) / dpr,
		Y:       float64(ty) / dpr,
		ClientX: float64(tx),
		ClientY: float64(ty),
		Button:  MouseButtonLeft,
		Pressed: kind != PointerUp,
	}
}

func (g *game) existingSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if g.touchUsed[i] && g.touchMap[i] == tid {
			return i
		}
	}
	return -1
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9), allocating one
// if needed. Returns -1 if full.
func (g *game) touchSlot(tid ebiten.TouchID) int {
	if slot := g.existingSlot(tid); slot >= 0 {
		return slot
	}
	for i := 1; i < maxPointers; i++ {
		if !g.touchUsed[i] {
			g.touchUsed[i] = true
			g.touchMap[i] = tid
			return i
		}
	}
	return -1
}
