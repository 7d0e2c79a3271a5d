package ecs

import (
	"testing"

	"github.com/phanxgames/gridview"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	if sink == nil {
		t.Fatal("NewDonburiSink returned nil")
	}
	if world.Valid(sink.CameraEntity()) {
		t.Error("camera entity created before Attach")
	}
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []gridview.GestureEvent
	GestureEventType.Subscribe(world, func(w donburi.World, e gridview.GestureEvent) {
		received = append(received, e)
	})

	sink.EmitEvent(gridview.GestureEvent{
		Type:   gridview.EventClick,
		World:  gridview.Vec2{X: 3.5, Y: 4.25},
		Cell:   gridview.Cell{X: 3, Y: 4},
		Button: gridview.MouseButtonLeft,
	})
	sink.EmitEvent(gridview.GestureEvent{
		Type:  gridview.EventZoom,
		Scale: 2.0,
	})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatalf("events delivered before ProcessEvents: %d", len(received))
	}
	GestureEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != gridview.EventClick || e0.Cell != (gridview.Cell{X: 3, Y: 4}) {
		t.Errorf("event 0: %+v", e0)
	}
	e1 := received[1]
	if e1.Type != gridview.EventZoom || e1.Scale != 2.0 {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestDonburiSink_FromEngine(t *testing.T) {
	world := donburi.NewWorld()
	e, err := gridview.New(gridview.DefaultConfig(200, 200))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Destroy()
	NewDonburiSink(world).Attach(e)

	var types []gridview.EventType
	GestureEventType.Subscribe(world, func(w donburi.World, ev gridview.GestureEvent) {
		types = append(types, ev.Type)
	})
	var clicks []CellClick
	CellClickEventType.Subscribe(world, func(w donburi.World, c CellClick) {
		clicks = append(clicks, c)
	})

	e.HandlePointer(gridview.PointerEvent{Kind: gridview.PointerDown, X: 25, Y: 15, Pressed: true})
	e.HandlePointer(gridview.PointerEvent{Kind: gridview.PointerUp, X: 25, Y: 15})
	events.ProcessAllEvents(world)

	want := []gridview.EventType{gridview.EventMouseDown, gridview.EventClick, gridview.EventMouseUp}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, types[i], want[i])
		}
	}
	if len(clicks) != 1 || clicks[0].Cell != (gridview.Cell{X: 2, Y: 1}) || clicks[0].Right {
		t.Errorf("cell clicks = %+v, want one left click on (2,1)", clicks)
	}
}

func TestDonburiSink_TypedEvents(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var right []CellClick
	var zooms []Zoom
	var moves []CameraMove
	CellClickEventType.Subscribe(world, func(w donburi.World, c CellClick) { right = append(right, c) })
	ZoomEventType.Subscribe(world, func(w donburi.World, z Zoom) { zooms = append(zooms, z) })
	CameraMoveEventType.Subscribe(world, func(w donburi.World, m CameraMove) { moves = append(moves, m) })

	sink.EmitEvent(gridview.GestureEvent{Type: gridview.EventRightClick, Cell: gridview.Cell{X: -1, Y: 7}, Button: gridview.MouseButtonRight})
	sink.EmitEvent(gridview.GestureEvent{Type: gridview.EventZoom, Scale: 12.5})
	sink.EmitEvent(gridview.GestureEvent{Type: gridview.EventCoordsChange, Center: gridview.Vec2{X: 3, Y: 4}})
	sink.EmitEvent(gridview.GestureEvent{Type: gridview.EventHover})
	events.ProcessAllEvents(world)

	if len(right) != 1 || !right[0].Right || right[0].Cell != (gridview.Cell{X: -1, Y: 7}) {
		t.Errorf("right clicks = %+v", right)
	}
	if len(zooms) != 1 || zooms[0].Scale != 12.5 {
		t.Errorf("zooms = %+v", zooms)
	}
	if len(moves) != 1 || moves[0].Center != (gridview.Vec2{X: 3, Y: 4}) {
		t.Errorf("moves = %+v", moves)
	}
}

func TestDonburiSink_EventFilter(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world, WithEventTypes(gridview.EventClick))

	var types []gridview.EventType
	GestureEventType.Subscribe(world, func(w donburi.World, ev gridview.GestureEvent) {
		types = append(types, ev.Type)
	})
	zooms := 0
	ZoomEventType.Subscribe(world, func(donburi.World, Zoom) { zooms++ })

	sink.EmitEvent(gridview.GestureEvent{Type: gridview.EventHover})
	sink.EmitEvent(gridview.GestureEvent{Type: gridview.EventZoom, Scale: 3})
	sink.EmitEvent(gridview.GestureEvent{Type: gridview.EventClick})
	events.ProcessAllEvents(world)

	if len(types) != 1 || types[0] != gridview.EventClick {
		t.Errorf("events = %v, want only click", types)
	}
	if zooms != 0 {
		t.Errorf("filtered zoom published %d times", zooms)
	}
}

func TestDonburiSink_CameraComponent(t *testing.T) {
	world := donburi.NewWorld()
	e, err := gridview.New(gridview.DefaultConfig(200, 200))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Destroy()
	// The camera follows the engine even when no event is published.
	sink := NewDonburiSink(world, WithEventTypes())
	sink.Attach(e)

	entry := world.Entry(sink.CameraEntity())
	if got := Camera.Get(entry); got.Scale != gridview.DefaultScale || got.Center != e.CenterCoords() {
		t.Errorf("seeded camera = %+v", *got)
	}

	e.UpdateCoords(gridview.Vec2{X: 40, Y: -8})
	center := e.CenterCoords()
	e.SetScale(20)
	got := Camera.Get(entry)
	if got.Scale != 20 {
		t.Errorf("camera scale = %v, want 20", got.Scale)
	}
	if got.Center != center {
		t.Errorf("camera center = %+v, want %+v", got.Center, center)
	}

	// Attaching again reuses the entity.
	sink.Attach(e)
	if world.Len() != 1 {
		t.Errorf("world has %d entities, want 1", world.Len())
	}
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	GestureEventType.Subscribe(world, func(w donburi.World, e gridview.GestureEvent) {
		count1++
	})
	GestureEventType.Subscribe(world, func(w donburi.World, e gridview.GestureEvent) {
		count2++
	})

	sink.EmitEvent(gridview.GestureEvent{Type: gridview.EventHover})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}
