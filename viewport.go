package gridview

import "math"

// ViewportState is the current size of the rendering surface in logical
// pixels and the device pixel ratio of the display it is shown on. Only the
// resize paths mutate it.
type ViewportState struct {
	Width, Height float64
	DPR           float64
}

// BackingSize returns the size of the backing buffer in device pixels.
// Both dimensions are at least 1.
func (v ViewportState) BackingSize() (w, h int) {
	dpr := v.dpr()
	w = int(math.Ceil(v.Width * dpr))
	h = int(math.Ceil(v.Height * dpr))
	return max(w, 1), max(h, 1)
}

func (v ViewportState) dpr() float64 {
	if v.DPR > 0 {
		return v.DPR
	}
	return 1
}
