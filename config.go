package gridview

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Default configuration values applied by NormalizeConfig when a field is
// left at its zero value.
const (
	DefaultScale            = 10.0
	DefaultMinScale         = 1.0
	DefaultMaxScale         = 100.0
	DefaultClickThreshold   = 4.0   // pixels
	DefaultWheelDeltaLimit  = 100.0 // one browser wheel notch
	DefaultWheelSpeed       = 0.0015
	DefaultPinchSensitivity = 1.0
	defaultMinSize          = 1.0
)

var (
	// ErrInvalidSize is returned when the configured viewport size is missing
	// or not a positive finite number.
	ErrInvalidSize = errors.New("gridview: invalid viewport size")
	// ErrNoSurface is returned when the renderer cannot acquire a drawing surface.
	ErrNoSurface = errors.New("gridview: rendering surface unavailable")
)

// ResponsiveMode selects how the rendering surface follows its container.
type ResponsiveMode uint8

const (
	ResponsiveNone             ResponsiveMode = iota // fixed, optionally user-resizable size
	ResponsivePreserveScale                          // fill container, keep camera scale
	ResponsivePreserveViewport                       // fill container, keep visible world extent
)

var responsiveNames = [...]string{"none", "preserve-scale", "preserve-viewport"}

// String returns the configuration spelling of the mode.
func (m ResponsiveMode) String() string {
	if int(m) < len(responsiveNames) {
		return responsiveNames[m]
	}
	return fmt.Sprintf("ResponsiveMode(%d)", m)
}

// ParseResponsiveMode parses "none", "preserve-scale" or "preserve-viewport".
// The empty string parses as ResponsiveNone.
func ParseResponsiveMode(s string) (ResponsiveMode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ResponsiveNone, nil
	}
	for i, name := range responsiveNames {
		if s == name {
			return ResponsiveMode(i), nil
		}
	}
	return ResponsiveNone, fmt.Errorf("gridview: unknown responsive mode %q", s)
}

// SizeConfig is the viewport size in logical pixels and the range manual
// resizing may move it within. Zero minimums and maximums mean unbounded.
type SizeConfig struct {
	Width, Height       float64
	MinWidth, MaxWidth   float64
	MinHeight, MaxHeight float64
}

// EventHandlers enables categories of user interaction.
type EventHandlers struct {
	Drag   bool // pointer drag pans the camera
	Zoom   bool // wheel and pinch zoom
	Resize bool // host size notifications resize the viewport (manual mode)
	Click  bool // OnClick / OnRightClick
	Hover  bool // OnHover
}

// ScaleRange is an inclusive scale window.
type ScaleRange struct {
	Min, Max float64
}

// Contains reports whether scale lies within the range.
func (r ScaleRange) Contains(scale float64) bool {
	return scale >= r.Min && scale <= r.Max
}

// CoordinatesConfig controls the coordinate overlay.
type CoordinatesConfig struct {
	Enabled bool
	// ShownScaleRange limits the overlay to scales where labels are legible.
	// A zero range means every scale.
	ShownScaleRange ScaleRange
}

// DebugConfig toggles diagnostic overlays. None of them touch camera or
// gesture state.
type DebugConfig struct {
	Grid  bool // cell boundary lines
	HUD   bool // scale and center readout
	Stats bool // per-frame timing logged at debug level
}

// ZoomConfig holds the empirically tuned zoom constants.
type ZoomConfig struct {
	// WheelDeltaLimit caps the magnitude of a single wheel delta so one large
	// event cannot jump the scale disproportionately.
	WheelDeltaLimit float64
	// WheelSpeed converts a wheel delta into a zoom exponent:
	// factor = exp(-delta * WheelSpeed).
	WheelSpeed float64
	// PinchSensitivity scales the deviation of the pinch factor from 1.
	PinchSensitivity float64
}

// Config is the per-session engine configuration. The engine normalizes it
// once at construction and treats the result as immutable; changes such as
// SetBounds produce a new snapshot.
type Config struct {
	Scale    float64 // pixels per world unit
	MinScale float64
	MaxScale float64

	Size   SizeConfig
	Bounds *Bounds

	EventHandlers EventHandlers
	Coordinates   CoordinatesConfig
	Responsive    ResponsiveMode
	// GridAligned snaps item placement to integer cell boundaries.
	GridAligned bool
	Debug       DebugConfig
	Zoom        ZoomConfig

	// ClickThreshold is the cumulative movement in pixels below which a
	// press and release still counts as a click.
	ClickThreshold float64
	// Background fills the surface at the start of each render pass.
	Background Color
}

// DefaultConfig returns a configuration with every interaction enabled and
// the given viewport size.
func DefaultConfig(width, height float64) Config {
	return Config{
		Scale:    DefaultScale,
		MinScale: DefaultMinScale,
		MaxScale: DefaultMaxScale,
		Size:     SizeConfig{Width: width, Height: height},
		EventHandlers: EventHandlers{
			Drag:  true,
			Zoom:  true,
			Click: true,
			Hover: true,
		},
		Background: ColorWhite,
	}
}

// NormalizeConfig returns a copy of cfg with defaults filled in and every
// out-of-range value clamped. Only a missing or invalid size is an error.
func NormalizeConfig(cfg Config) (Config, error) {
	if !(cfg.Size.Width > 0) || !(cfg.Size.Height > 0) || !finite(cfg.Size.Width, cfg.Size.Height) {
		return Config{}, fmt.Errorf("%w: %vx%v", ErrInvalidSize, cfg.Size.Width, cfg.Size.Height)
	}

	if !(cfg.MinScale > 0) || !finite(cfg.MinScale) {
		cfg.MinScale = DefaultMinScale
	}
	if !(cfg.MaxScale > 0) || !finite(cfg.MaxScale) {
		cfg.MaxScale = math.Max(DefaultMaxScale, cfg.MinScale)
	}
	if cfg.MinScale > cfg.MaxScale {
		cfg.MinScale, cfg.MaxScale = cfg.MaxScale, cfg.MinScale
	}
	if !(cfg.Scale > 0) || !finite(cfg.Scale) {
		cfg.Scale = DefaultScale
	}
	cfg.Scale = clamp(cfg.Scale, cfg.MinScale, cfg.MaxScale)

	cfg.Size.MinWidth, cfg.Size.MaxWidth = normalizeSizeRange(cfg.Size.MinWidth, cfg.Size.MaxWidth)
	cfg.Size.MinHeight, cfg.Size.MaxHeight = normalizeSizeRange(cfg.Size.MinHeight, cfg.Size.MaxHeight)
	cfg.Size.Width = clamp(cfg.Size.Width, cfg.Size.MinWidth, cfg.Size.MaxWidth)
	cfg.Size.Height = clamp(cfg.Size.Height, cfg.Size.MinHeight, cfg.Size.MaxHeight)

	if cfg.Bounds != nil {
		b := *cfg.Bounds
		if b.MinX > b.MaxX {
			b.MinX, b.MaxX = b.MaxX, b.MinX
		}
		if b.MinY > b.MaxY {
			b.MinY, b.MaxY = b.MaxY, b.MinY
		}
		cfg.Bounds = &b
	}

	r := &cfg.Coordinates.ShownScaleRange
	if r.Min == 0 && r.Max == 0 {
		r.Min, r.Max = cfg.MinScale, cfg.MaxScale
	}
	if r.Max == 0 {
		r.Max = math.Inf(1)
	}
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}

	if !(cfg.Zoom.WheelDeltaLimit > 0) {
		cfg.Zoom.WheelDeltaLimit = DefaultWheelDeltaLimit
	}
	if !(cfg.Zoom.WheelSpeed > 0) {
		cfg.Zoom.WheelSpeed = DefaultWheelSpeed
	}
	if !(cfg.Zoom.PinchSensitivity > 0) {
		cfg.Zoom.PinchSensitivity = DefaultPinchSensitivity
	}
	if !(cfg.ClickThreshold > 0) {
		cfg.ClickThreshold = DefaultClickThreshold
	}

	if cfg.Responsive > ResponsivePreserveViewport {
		Logger().Warn("gridview: unknown responsive mode, using none", "mode", int(cfg.Responsive))
		cfg.Responsive = ResponsiveNone
	}
	if cfg.Responsive != ResponsiveNone && cfg.EventHandlers.Resize {
		Logger().Warn("gridview: responsive mode and manual resize are mutually exclusive; manual resize ignored",
			"responsive", cfg.Responsive.String())
		cfg.EventHandlers.Resize = false
	}
	return cfg, nil
}

func normalizeSizeRange(lo, hi float64) (float64, float64) {
	if !(lo > 0) || !finite(lo) {
		lo = defaultMinSize
	}
	if !(hi > 0) {
		hi = math.Inf(1)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// clone returns a copy that shares no pointers with c.
func (c *Config) clone() *Config {
	next := *c
	if c.Bounds != nil {
		b := *c.Bounds
		next.Bounds = &b
	}
	return &next
}
