package ecs

import (
	"github.com/phanxgames/gridview"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// GestureEventType carries every forwarded gesture event unchanged.
var GestureEventType = events.NewEventType[gridview.GestureEvent]()

// Typed streams for the events most systems care about. They are published
// alongside GestureEventType.
var (
	CellClickEventType  = events.NewEventType[CellClick]()
	ZoomEventType       = events.NewEventType[Zoom]()
	CameraMoveEventType = events.NewEventType[CameraMove]()
)

// CellClick is a left or right click resolved to its grid cell.
type CellClick struct {
	Cell   gridview.Cell
	World  gridview.Vec2
	Button gridview.MouseButton
	// Right is set for EventRightClick, which fires on press.
	Right bool
}

// Zoom reports a new camera scale.
type Zoom struct {
	Scale float64
}

// CameraMove reports a new camera center in world coordinates.
type CameraMove struct {
	Center gridview.Vec2
}

// CameraData mirrors the engine camera on a singleton entity.
type CameraData struct {
	Center gridview.Vec2
	Scale  float64
}

// Camera is the component holding CameraData.
var Camera = donburi.NewComponentType[CameraData]()

// DonburiSink is a gridview.EventSink that publishes into a Donburi world.
// Events are queued by Donburi and delivered by ProcessEvents.
type DonburiSink struct {
	world  donburi.World
	filter [gridview.EventDraw + 1]bool
	all    bool
	camera donburi.Entity
}

// Option configures a DonburiSink.
type Option func(*DonburiSink)

// WithEventTypes restricts publishing to the listed event types. The camera
// entity is kept up to date regardless.
func WithEventTypes(types ...gridview.EventType) Option {
	return func(s *DonburiSink) {
		s.all = false
		for _, t := range types {
			if int(t) < len(s.filter) {
				s.filter[t] = true
			}
		}
	}
}

// NewDonburiSink creates a sink publishing to world.
func NewDonburiSink(world donburi.World, opts ...Option) *DonburiSink {
	s := &DonburiSink{world: world, all: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach installs the sink on e and creates the camera entity, seeded from
// the engine's current view.
func (s *DonburiSink) Attach(e *gridview.Engine) {
	if !s.world.Valid(s.camera) {
		s.camera = s.world.Create(Camera)
	}
	v := e.Camera()
	Camera.SetValue(s.world.Entry(s.camera), CameraData{Center: v.Center(), Scale: v.Scale})
	e.SetEventSink(s)
}

// CameraEntity returns the entity carrying the Camera component. It is
// the zero Entity until Attach.
func (s *DonburiSink) CameraEntity() donburi.Entity { return s.camera }

func (s *DonburiSink) wants(t gridview.EventType) bool {
	return s.all || (int(t) < len(s.filter) && s.filter[t])
}

// EmitEvent implements gridview.EventSink.
func (s *DonburiSink) EmitEvent(ev gridview.GestureEvent) {
	switch ev.Type {
	case gridview.EventZoom:
		s.updateCamera(func(c *CameraData) { c.Scale = ev.Scale })
	case gridview.EventCoordsChange:
		s.updateCamera(func(c *CameraData) { c.Center = ev.Center })
	}
	if !s.wants(ev.Type) {
		return
	}

	GestureEventType.Publish(s.world, ev)
	switch ev.Type {
	case gridview.EventClick, gridview.EventRightClick:
		CellClickEventType.Publish(s.world, CellClick{
			Cell:   ev.Cell,
			World:  ev.World,
			Button: ev.Button,
			Right:  ev.Type == gridview.EventRightClick,
		})
	case gridview.EventZoom:
		ZoomEventType.Publish(s.world, Zoom{Scale: ev.Scale})
	case gridview.EventCoordsChange:
		CameraMoveEventType.Publish(s.world, CameraMove{Center: ev.Center})
	}
}

func (s *DonburiSink) updateCamera(fn func(*CameraData)) {
	if !s.world.Valid(s.camera) {
		return
	}
	fn(Camera.Get(s.world.Entry(s.camera)))
}
