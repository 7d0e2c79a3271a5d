package gridview

import (
	"slices"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// AnimKey names a property an animation may interpolate. Each key is owned by
// at most one running animation.
type AnimKey uint8

const (
	AnimCenterX AnimKey = iota
	AnimCenterY
	AnimViewportWidth
	AnimViewportHeight
	AnimScale
	animKeyCount
)

// Tween interpolates one property from From to To.
type Tween struct {
	Key      AnimKey
	From, To float64
}

// AnimFrame holds the interpolated values of one tick. Only the keys the
// animation still owns are present.
type AnimFrame struct {
	values [animKeyCount]float64
	owned  uint8
}

// Value returns the value of k and whether this frame carries it.
func (f AnimFrame) Value(k AnimKey) (float64, bool) {
	if k >= animKeyCount || f.owned&(1<<k) == 0 {
		return 0, false
	}
	return f.values[k], true
}

// AnimationSpec describes an animation to start.
type AnimationSpec struct {
	Tweens   []Tween
	Duration time.Duration
	// Ease maps linear progress to eased progress. Defaults to ease.InOutQuad.
	Ease ease.TweenFunc
	// Apply receives each tick's values, including the final one.
	Apply func(AnimFrame)
	// OnComplete runs exactly once after the final tick. It never runs for
	// cancelled or superseded animations.
	OnComplete func()
}

// Animation is a running interpolation. gween drives the eased progress from
// 0 to 1; values are interpolated in float64 so large world coordinates keep
// their precision.
type Animation struct {
	progress   *gween.Tween
	from, to   [animKeyCount]float64
	owned      uint8
	apply      func(AnimFrame)
	onComplete func()
	done       bool
	ctrl       *AnimationController
}

// Done reports whether the animation finished or was cancelled.
func (a *Animation) Done() bool { return a.done }

// Owns reports whether the animation still interpolates k.
func (a *Animation) Owns(k AnimKey) bool { return a.owned&(1<<k) != 0 }

// Cancel stops the animation without running its completion callback.
func (a *Animation) Cancel() {
	if a.done {
		return
	}
	a.done = true
	if a.ctrl != nil {
		a.ctrl.remove(a)
	}
}

func (a *Animation) frame(p float64) AnimFrame {
	f := AnimFrame{owned: a.owned}
	for k := range animKeyCount {
		if a.owned&(1<<k) != 0 {
			f.values[k] = a.from[k] + (a.to[k]-a.from[k])*p
		}
	}
	return f
}

func (a *Animation) finalFrame() AnimFrame {
	f := AnimFrame{owned: a.owned}
	f.values = a.to
	return f
}

// AnimationController advances animations once per tick. Only the dispatch
// goroutine calls it.
type AnimationController struct {
	anims []*Animation
}

// Start begins an animation. Keys it claims are taken from any running
// animation; an animation left with no keys stops silently. A non-positive
// duration applies the final values and completes immediately.
func (c *AnimationController) Start(spec AnimationSpec) *Animation {
	a := &Animation{
		apply:      spec.Apply,
		onComplete: spec.OnComplete,
		ctrl:       c,
	}
	for _, t := range spec.Tweens {
		if t.Key >= animKeyCount {
			continue
		}
		a.owned |= 1 << t.Key
		a.from[t.Key] = t.From
		a.to[t.Key] = t.To
	}

	for _, other := range slices.Clone(c.anims) {
		other.owned &^= a.owned
		if other.owned == 0 {
			other.Cancel()
		}
	}

	if spec.Duration <= 0 {
		a.done = true
		if a.apply != nil {
			a.apply(a.finalFrame())
		}
		if a.onComplete != nil {
			a.onComplete()
		}
		return a
	}

	fn := spec.Ease
	if fn == nil {
		fn = ease.InOutQuad
	}
	a.progress = gween.New(0, 1, float32(spec.Duration.Seconds()), fn)
	c.anims = append(c.anims, a)
	return a
}

// Update advances every animation by dt. It reports whether any animation is
// still running afterwards.
func (c *AnimationController) Update(dt time.Duration) bool {
	if len(c.anims) == 0 {
		return false
	}
	sec := float32(dt.Seconds())

	var completed []*Animation
	for _, a := range slices.Clone(c.anims) {
		if a.done {
			continue
		}
		p, finished := a.progress.Update(sec)
		frame := a.frame(float64(p))
		if finished {
			frame = a.finalFrame()
		}
		if a.apply != nil {
			a.apply(frame)
		}
		if finished {
			a.done = true
			c.remove(a)
			completed = append(completed, a)
		}
	}
	for _, a := range completed {
		if a.onComplete != nil {
			a.onComplete()
		}
	}
	return len(c.anims) > 0
}

// CancelAll stops every running animation. No completion callbacks run.
func (c *AnimationController) CancelAll() {
	for _, a := range c.anims {
		a.done = true
	}
	c.anims = c.anims[:0]
}

// Active reports whether any animation is running.
func (c *AnimationController) Active() bool {
	return len(c.anims) > 0
}

// Owner returns the running animation that owns k, or nil.
func (c *AnimationController) Owner(k AnimKey) *Animation {
	for _, a := range c.anims {
		if a.Owns(k) {
			return a
		}
	}
	return nil
}

func (c *AnimationController) remove(a *Animation) {
	c.anims = slices.DeleteFunc(c.anims, func(x *Animation) bool { return x == a })
}
