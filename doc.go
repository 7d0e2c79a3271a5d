// Package gridview is an interactive 2D grid viewer for [Ebitengine], the
// terminal, or headless rendering.
//
// An [Engine] owns a camera over an unbounded (or bounded) world of square
// cells, turns pointer input into pan, zoom, click and hover gestures, runs
// eased camera and viewport animations, and redraws prioritized layers of
// rectangles, circles, images, paths and text only when something changed.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window and drives
// the engine for you:
//
//	e, err := gridview.New(gridview.DefaultConfig(800, 600))
//	if err != nil {
//		log.Fatal(err)
//	}
//	e.Draw().DrawRect(gridview.RectItem{X: 2, Y: 3, Style: gridview.Style{Fill: gridview.RGB(1, 0, 0)}})
//	e.OnClick(func(ctx gridview.PointerContext) { fmt.Println(ctx.Cell) })
//	log.Fatal(gridview.Run(e, gridview.RunConfig{Title: "Grid"}))
//
// For full control, feed input yourself with [Engine.HandlePointer] and
// [Engine.HandleSize] (or attach a [PointerSource] and [SizeSource]), then
// call [Engine.Update] every tick and [Engine.Frame] when drawing. The term
// sub-package hosts an engine in a tcell terminal the same way.
//
// # Coordinates
//
// World coordinates are measured in cells. Scale is the number of logical
// pixels per cell; the device pixel ratio multiplies it once more on the
// backing surface. [View.WorldToScreen], [View.ScreenToWorld] and [Snap]
// convert between the spaces.
//
// # Drawing
//
// [DrawAPI] calls copy their items and return a [DrawHandle]. Lower layer
// priorities draw first, and calls on one layer draw in registration order.
// [DrawAPI.DrawStaticRect] rasterizes a large, rarely changing batch once
// into an offscreen snapshot keyed by name; calling it again with identical
// items is free, while different items replace the batch.
//
// # Configuration
//
// [DefaultConfig] enables drag, zoom, click and hover. [NormalizeConfig]
// fills defaults and clamps ranges; [ConfigFromEnv] overlays environment
// variables such as GRIDVIEW_SCALE. Responsive modes make the viewport
// follow its host, either keeping the scale or the visible world extent.
//
// # Logging
//
// Nothing is logged by default. Install a [log/slog] logger with
// [SetLogger] to see resolved configuration conflicts, skipped items and,
// with Debug.Stats, per-frame timings.
//
// # Automated testing
//
// [Engine.InjectClick], [Engine.InjectDrag] and [Engine.InjectWheel] queue
// synthetic input. [LoadTestScript] sequences those with camera moves,
// resizes and [Engine.Screenshot] captures from a JSON script.
//
// [Ebitengine]: https://ebitengine.org
package gridview
