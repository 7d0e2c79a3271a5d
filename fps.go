package gridview

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// fpsCounter is the FPS/TPS readout Run draws when RunConfig.ShowFPS is set.
// The text refreshes about twice a second.
type fpsCounter struct {
	img     *ebiten.Image
	elapsed time.Duration
}

func newFPSCounter() *fpsCounter {
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	f := &fpsCounter{img: ebiten.NewImage(100, 32)}
	f.redraw()
	return f
}

func (f *fpsCounter) update(dt time.Duration) {
	f.elapsed += dt
	if f.elapsed < 500*time.Millisecond {
		return
	}
	f.elapsed = 0
	f.redraw()
}

func (f *fpsCounter) redraw() {
	f.img.Clear()
	f.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(f.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

func (f *fpsCounter) draw(screen *ebiten.Image) {
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(screen.Bounds().Dx()-f.img.Bounds().Dx()), 0)
	screen.DrawImage(f.img, &op)
}
