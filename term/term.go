// Package term hosts a gridview engine in a terminal using tcell. Each
// terminal cell shows two vertically stacked pixels with the upper half block
// glyph, so a W×H terminal is a W×2H viewport at DPR 1.
package term

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/gridview"
)

const (
	defaultFrameInterval = 16 * time.Millisecond // ~60 FPS
	defaultPanStep       = 4.0                   // pixels per arrow key
	defaultZoomStep      = 1.25
	wheelDelta           = 100.0
	halfBlock            = '▀'
)

// Options configures Run.
type Options struct {
	// Screen overrides the terminal screen, e.g. a tcell simulation screen.
	Screen tcell.Screen
	// FrameInterval is the tick period. Defaults to 16ms.
	FrameInterval time.Duration
	// PanStep is the distance in pixels one arrow key pans. Defaults to 4.
	PanStep float64
	// ZoomStep is the scale factor applied by '+' and '-'. Defaults to 1.25.
	ZoomStep float64
}

func (o *Options) defaults() {
	if o.FrameInterval <= 0 {
		o.FrameInterval = defaultFrameInterval
	}
	if !(o.PanStep > 0) {
		o.PanStep = defaultPanStep
	}
	if !(o.ZoomStep > 1) {
		o.ZoomStep = defaultZoomStep
	}
}

// Run takes over the terminal and drives e until Escape, Ctrl-C or 'q' is
// pressed. Mouse drag pans, the wheel zooms, arrow keys pan and '+'/'-' zoom.
// The engine is destroyed on return.
func Run(e *gridview.Engine, opts Options) error {
	opts.defaults()
	screen := opts.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("term: new screen: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("term: init screen: %w", err)
	}
	defer screen.Fini()
	defer e.Destroy()
	screen.EnableMouse()
	screen.HideCursor()

	h := newHost(e, screen, opts)
	h.syncSize()

	ticker := time.NewTicker(opts.FrameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-quit:
				return
			}
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !h.handleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			e.Update(now.Sub(last))
			last = now
			h.present()
		}
	}
}

// host translates tcell events into engine input and paints frames.
type host struct {
	e      *gridview.Engine
	screen tcell.Screen
	opts   Options

	pointers gridview.PointerFeed
	sizes    gridview.SizeFeed

	buttons tcell.ButtonMask
	lastX   float64
	lastY   float64
}

func newHost(e *gridview.Engine, screen tcell.Screen, opts Options) *host {
	h := &host{e: e, screen: screen, opts: opts}
	e.AttachPointerSource(&h.pointers)
	e.AttachSizeSource(&h.sizes)
	return h
}

// syncSize publishes the current terminal size as a viewport size.
func (h *host) syncSize() {
	cols, rows := h.screen.Size()
	h.sizes.Publish(gridview.SizeEvent{
		Width:  float64(cols),
		Height: float64(rows * 2),
		DPR:    1,
	})
	h.e.RequestRedraw()
}

// handleEvent applies one terminal event. It returns false when the user
// asked to quit.
func (h *host) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.handleKey(ev)
	case *tcell.EventMouse:
		h.handleMouse(ev)
	case *tcell.EventResize:
		h.screen.Sync()
		h.syncSize()
	}
	return true
}

func (h *host) handleKey(ev *tcell.EventKey) bool {
	step := h.opts.PanStep
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		h.e.PanBy(step, 0)
	case tcell.KeyRight:
		h.e.PanBy(-step, 0)
	case tcell.KeyUp:
		h.e.PanBy(0, step)
	case tcell.KeyDown:
		h.e.PanBy(0, -step)
	case tcell.KeyRune:
		scale := h.e.Camera().Scale
		switch ev.Rune() {
		case 'q':
			return false
		case '+', '=':
			h.e.SetScale(scale * h.opts.ZoomStep)
		case '-':
			h.e.SetScale(scale / h.opts.ZoomStep)
		}
	}
	return true
}

// mouseButtons maps tcell buttons to engine buttons. Button1 is primary,
// Button2 secondary and Button3 middle.
var mouseButtons = [...]struct {
	mask   tcell.ButtonMask
	button gridview.MouseButton
}{
	{tcell.Button1, gridview.MouseButtonLeft},
	{tcell.Button2, gridview.MouseButtonRight},
	{tcell.Button3, gridview.MouseButtonMiddle},
}

func (h *host) handleMouse(ev *tcell.EventMouse) {
	cx, cy := ev.Position()
	// The pointer sits in the middle of the cell's two pixels.
	x, y := float64(cx)+0.5, float64(cy*2)+1
	base := gridview.PointerEvent{
		ID:      0,
		Type:    gridview.PointerMouse,
		X:       x,
		Y:       y,
		ClientX: float64(cx),
		ClientY: float64(cy),
	}
	mask := ev.Buttons()

	if x != h.lastX || y != h.lastY {
		h.lastX, h.lastY = x, y
		move := base
		move.Kind = gridview.PointerMove
		move.Pressed = mask&(tcell.Button1|tcell.Button2|tcell.Button3) != 0
		h.pointers.Publish(move)
	}

	for _, b := range mouseButtons {
		was, is := h.buttons&b.mask != 0, mask&b.mask != 0
		if was == is {
			continue
		}
		pe := base
		pe.Button = b.button
		if is {
			pe.Kind, pe.Pressed = gridview.PointerDown, true
		} else {
			pe.Kind = gridview.PointerUp
		}
		h.pointers.Publish(pe)
	}
	h.buttons = mask & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	switch {
	case mask&tcell.WheelUp != 0:
		wheel := base
		wheel.Kind, wheel.DeltaY = gridview.PointerWheel, -wheelDelta
		h.pointers.Publish(wheel)
	case mask&tcell.WheelDown != 0:
		wheel := base
		wheel.Kind, wheel.DeltaY = gridview.PointerWheel, wheelDelta
		h.pointers.Publish(wheel)
	}
}

// present renders a frame when the engine needs one and paints it.
func (h *host) present() {
	if !h.e.Frame() {
		return
	}
	img := h.e.FrameImage()
	if img == nil {
		return
	}
	paint(h.screen, img)
	h.screen.Show()
}

// paint copies img onto screen two pixel rows per terminal row.
func paint(screen tcell.Screen, img image.Image) {
	cols, rows := screen.Size()
	b := img.Bounds()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := pixel(img, b, x, 2*y)
			bottom := pixel(img, b, x, 2*y+1)
			style := tcell.StyleDefault.Foreground(top).Background(bottom)
			screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
}

func pixel(img image.Image, b image.Rectangle, x, y int) tcell.Color {
	p := image.Point{X: b.Min.X + x, Y: b.Min.Y + y}
	if !p.In(b) {
		return tcell.ColorBlack
	}
	return toTcell(img.At(p.X, p.Y))
}

// toTcell converts c to a 24-bit terminal color, compositing any translucency
// over black.
func toTcell(c color.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}
