package gridview

import (
	"fmt"
	"time"
)

// frameStats holds per-frame timing and item metrics.
// Timings are only measured when Config.Debug.Stats is set.
type frameStats struct {
	layerTime   time.Duration
	overlayTime time.Duration
	items       int // items drawn, counting static batches per item
	culled      int // items or static batches outside the viewport
	skipped     int // degenerate items dropped
	batches     int
	builds      int // static snapshots rebuilt this frame
}

// debugLog reports the frame through the package logger at debug level.
func debugLog(stats frameStats) {
	total := stats.layerTime + stats.overlayTime
	Logger().Debug("gridview: frame",
		"layers", stats.layerTime,
		"overlays", stats.overlayTime,
		"total", total,
		"batches", stats.batches,
		"items", stats.items,
		"culled", stats.culled,
		"skipped", stats.skipped,
		"static_builds", stats.builds,
	)
}

// debugMaxLayerBatches is the batch count per layer above which a warning is
// logged. Many small batches defeat batching; prefer one call with a slice.
const debugMaxLayerBatches = 1000

// debugCheckLayers warns about layers holding more batches than the threshold.
func debugCheckLayers(s *LayerStack) {
	for _, l := range s.layers {
		if len(l.handles) > debugMaxLayerBatches {
			Logger().Warn(fmt.Sprintf("gridview: layer %d has %d batches (threshold %d)",
				l.priority, len(l.handles), debugMaxLayerBatches))
		}
	}
}

// String formats the stats for the HUD overlay.
func (s frameStats) String() string {
	return fmt.Sprintf("items %d  culled %d  skipped %d  batches %d", s.items, s.culled, s.skipped, s.batches)
}
