package gridview

import (
	"slices"
	"sync"
)

// PointerKind is the phase of a normalized pointer record.
type PointerKind uint8

const (
	PointerDown   PointerKind = iota // button pressed or touch started
	PointerMove                      // position changed
	PointerUp                        // button released or touch ended
	PointerLeave                     // mouse left the surface
	PointerCancel                    // host aborted the pointer (e.g. touch cancel)
	PointerWheel                     // wheel scrolled; DeltaY is set
)

var pointerKindNames = [...]string{"down", "move", "up", "leave", "cancel", "wheel"}

func (k PointerKind) String() string {
	if int(k) < len(pointerKindNames) {
		return pointerKindNames[k]
	}
	return "unknown"
}

// PointerType distinguishes the device that produced a pointer record.
type PointerType uint8

const (
	PointerMouse PointerType = iota
	PointerTouch
	PointerPen
)

// PointerEvent is a host-independent pointer record. Hosts translate their
// native input into these before handing them to the engine.
type PointerEvent struct {
	Kind PointerKind
	// ID identifies the pointer. Mouse pointers use 0; each touch has its
	// own nonzero ID for the duration of the contact.
	ID   int
	Type PointerType
	// X and Y are logical pixels relative to the viewport's top-left.
	X, Y float64
	// ClientX and ClientY are host-window coordinates, passed through to
	// hover callbacks unchanged.
	ClientX, ClientY float64
	Button           MouseButton
	// Pressed reports whether any button is held during a move.
	Pressed bool
	// DeltaY is the wheel delta; positive scrolls down (zooms out).
	DeltaY float64
}

// SizeEvent reports a new host surface size in logical pixels.
type SizeEvent struct {
	Width, Height float64
	DPR           float64
}

// PointerSource delivers pointer records to subscribers.
type PointerSource interface {
	WatchPointer(fn func(PointerEvent)) (stop func())
}

// SizeSource delivers size notifications to subscribers.
type SizeSource interface {
	WatchSize(fn func(SizeEvent)) (stop func())
}

// Feed is a minimal publish/subscribe list for host events. The zero value
// is ready to use. Publish calls subscribers in subscription order on the
// caller's goroutine.
type Feed[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []feedSub[T]
}

type feedSub[T any] struct {
	id uint64
	fn func(T)
}

// Watch subscribes fn. The returned stop function is idempotent.
func (f *Feed[T]) Watch(fn func(T)) (stop func()) {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subs = append(f.subs, feedSub[T]{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.subs = slices.DeleteFunc(f.subs, func(s feedSub[T]) bool { return s.id == id })
		})
	}
}

// Publish delivers v to every subscriber.
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	subs := slices.Clone(f.subs)
	f.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of subscribers.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// PointerFeed is a PointerSource hosts can publish into.
type PointerFeed struct{ Feed[PointerEvent] }

// WatchPointer implements PointerSource.
func (p *PointerFeed) WatchPointer(fn func(PointerEvent)) func() { return p.Watch(fn) }

// SizeFeed is a SizeSource hosts can publish into.
type SizeFeed struct{ Feed[SizeEvent] }

// WatchSize implements SizeSource.
func (s *SizeFeed) WatchSize(fn func(SizeEvent)) func() { return s.Watch(fn) }
