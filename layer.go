package gridview

import (
	"slices"
	"sort"
)

// DefaultLayer is the priority used by DrawAPI calls that name no layer.
const DefaultLayer = 0

// DrawHandle references one registered batch. Remove unregisters it.
type DrawHandle struct {
	api      *DrawAPI
	priority int
	batch    drawBatch
	removed  bool
}

// Priority returns the layer the batch is registered on.
func (h *DrawHandle) Priority() int { return h.priority }

// Removed reports whether the batch was removed or its layer cleared.
func (h *DrawHandle) Removed() bool { return h == nil || h.removed }

// Remove unregisters the batch. Removing twice is harmless.
func (h *DrawHandle) Remove() {
	if h == nil || h.removed || h.api == nil {
		return
	}
	h.api.remove(h)
}

// layer holds the handles of one priority in insertion order.
type layer struct {
	priority int
	handles  []*DrawHandle
}

// LayerStack keeps layers sorted by ascending priority. Iteration visits
// layers in that order and handles within a layer in insertion order.
type LayerStack struct {
	layers []*layer
}

func (s *LayerStack) find(priority int) (int, bool) {
	i := sort.Search(len(s.layers), func(i int) bool { return s.layers[i].priority >= priority })
	return i, i < len(s.layers) && s.layers[i].priority == priority
}

func (s *LayerStack) add(h *DrawHandle) {
	i, ok := s.find(h.priority)
	if !ok {
		s.layers = slices.Insert(s.layers, i, &layer{priority: h.priority})
	}
	l := s.layers[i]
	l.handles = append(l.handles, h)
}

func (s *LayerStack) remove(h *DrawHandle) bool {
	i, ok := s.find(h.priority)
	if !ok {
		return false
	}
	l := s.layers[i]
	n := len(l.handles)
	l.handles = slices.DeleteFunc(l.handles, func(x *DrawHandle) bool { return x == h })
	if len(l.handles) == 0 {
		s.layers = slices.Delete(s.layers, i, i+1)
	}
	return len(l.handles) != n
}

// clear removes a whole layer and returns its handles.
func (s *LayerStack) clear(priority int) []*DrawHandle {
	i, ok := s.find(priority)
	if !ok {
		return nil
	}
	hs := s.layers[i].handles
	s.layers = slices.Delete(s.layers, i, i+1)
	return hs
}

// clearAll removes every layer and returns all handles.
func (s *LayerStack) clearAll() []*DrawHandle {
	var hs []*DrawHandle
	for _, l := range s.layers {
		hs = append(hs, l.handles...)
	}
	s.layers = nil
	return hs
}

// each visits handles in draw order.
func (s *LayerStack) each(fn func(*DrawHandle)) {
	for _, l := range s.layers {
		for _, h := range l.handles {
			fn(h)
		}
	}
}

// Priorities returns the registered layer priorities in draw order.
func (s *LayerStack) Priorities() []int {
	out := make([]int, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.priority
	}
	return out
}

// Len returns the number of registered batches.
func (s *LayerStack) Len() int {
	n := 0
	for _, l := range s.layers {
		n += len(l.handles)
	}
	return n
}
