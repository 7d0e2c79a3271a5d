package gridview

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// envOverrides lists the settings a host may override from the environment.
// Pointer fields stay nil when the variable is unset.
type envOverrides struct {
	Scale       *float64 `envconfig:"SCALE"`
	MinScale    *float64 `envconfig:"MIN_SCALE"`
	MaxScale    *float64 `envconfig:"MAX_SCALE"`
	Width       *float64 `envconfig:"WIDTH"`
	Height      *float64 `envconfig:"HEIGHT"`
	Responsive  string   `envconfig:"RESPONSIVE"`
	GridAligned *bool    `envconfig:"GRID_ALIGNED"`
	Coordinates *bool    `envconfig:"COORDINATES"`
	DebugGrid   *bool    `envconfig:"DEBUG_GRID"`
	DebugHUD    *bool    `envconfig:"DEBUG_HUD"`
	DebugStats  *bool    `envconfig:"DEBUG_STATS"`
}

// ConfigFromEnv overlays environment variables named <PREFIX>_<SETTING> on
// base, e.g. GRIDVIEW_SCALE=25 or GRIDVIEW_RESPONSIVE=preserve-viewport. The
// result is not normalized; New does that.
func ConfigFromEnv(prefix string, base Config) (Config, error) {
	var env envOverrides
	if err := envconfig.Process(prefix, &env); err != nil {
		return base, fmt.Errorf("gridview: read environment: %w", err)
	}

	cfg := *base.clone()
	setFloat(&cfg.Scale, env.Scale)
	setFloat(&cfg.MinScale, env.MinScale)
	setFloat(&cfg.MaxScale, env.MaxScale)
	setFloat(&cfg.Size.Width, env.Width)
	setFloat(&cfg.Size.Height, env.Height)
	setBool(&cfg.GridAligned, env.GridAligned)
	setBool(&cfg.Coordinates.Enabled, env.Coordinates)
	setBool(&cfg.Debug.Grid, env.DebugGrid)
	setBool(&cfg.Debug.HUD, env.DebugHUD)
	setBool(&cfg.Debug.Stats, env.DebugStats)

	if env.Responsive != "" {
		mode, err := ParseResponsiveMode(env.Responsive)
		if err != nil {
			return base, err
		}
		cfg.Responsive = mode
	}
	return cfg, nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
