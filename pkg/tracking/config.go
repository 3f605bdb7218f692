package tracking

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid tracking config")

// Config holds all tunable parameters for eyewear placement.
type Config struct {
	// Smoothing
	Alpha float64 // Blend factor per frame (0-1]; low = smooth but laggy, high = responsive but jittery

	// Estimation
	ScaleFloor       float64 // Minimum emitted scale
	ScaleCoefficient float64 // Render scale per pixel of eye separation
	RotationDamping  float64 // Fraction of measured roll applied to the mesh
	FixedDepth       float64 // Z of every placement (depth is not estimated)
	PosScaleX        float64 // Normalized X → render X
	PosScaleY        float64 // Normalized Y → render Y

	// Rest pose
	RestRotation float64
	RestScale    float64

	// Extensions (zero values keep reference behaviour)
	HoldFrames           int  // Absent frames tolerated before returning to rest
	ShortestPathRotation bool // Blend roll along the shorter arc

	// Session
	RenderInterval time.Duration // Tick period when the session drives its own loop
	StaleAfter     time.Duration // Landmark frames older than this count as no face

	// Logging
	LogThreshold float64 // Only log pose changes larger than this (render units)
}

// DefaultConfig returns the reference placement parameters.
func DefaultConfig() Config {
	return Config{
		Alpha: DefaultAlpha,

		ScaleFloor:       DefaultScaleFloor,
		ScaleCoefficient: DefaultScaleCoefficient,
		RotationDamping:  DefaultRotationDamping,
		FixedDepth:       DefaultFixedDepth,
		PosScaleX:        DefaultPosScaleX,
		PosScaleY:        DefaultPosScaleY,

		RestRotation: 0,
		RestScale:    DefaultRestScale,

		RenderInterval: 16 * time.Millisecond, // ~60 fps
		StaleAfter:     500 * time.Millisecond,

		LogThreshold: 0.05,
	}
}

// SmoothConfig returns a configuration for steadier, slower placement.
// It also rides out short detector dropouts instead of snapping to rest.
func SmoothConfig() Config {
	cfg := DefaultConfig()
	cfg.Alpha = 0.05
	cfg.HoldFrames = 3
	return cfg
}

// ResponsiveConfig returns a configuration that follows the face closely.
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.Alpha = 0.25
	return cfg
}

// ConfigByName resolves a preset name. Unknown names return false.
func ConfigByName(name string) (Config, bool) {
	switch name {
	case "", "default":
		return DefaultConfig(), true
	case "smooth":
		return SmoothConfig(), true
	case "responsive":
		return ResponsiveConfig(), true
	}
	return Config{}, false
}

// RestPose returns the pose shown when no face is tracked.
func (c Config) RestPose() Pose {
	return NewPose(0, 0, c.FixedDepth, c.RestRotation, c.RestScale)
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	switch {
	case !(c.Alpha > 0 && c.Alpha <= 1):
		return fmt.Errorf("%w: alpha must be in (0, 1], got %v", ErrInvalidConfig, c.Alpha)
	case !(c.ScaleFloor > 0):
		return fmt.Errorf("%w: scale floor must be positive, got %v", ErrInvalidConfig, c.ScaleFloor)
	case c.ScaleCoefficient < 0:
		return fmt.Errorf("%w: scale coefficient must be non-negative, got %v", ErrInvalidConfig, c.ScaleCoefficient)
	case c.RotationDamping < 0 || c.RotationDamping > 1:
		return fmt.Errorf("%w: rotation damping must be in [0, 1], got %v", ErrInvalidConfig, c.RotationDamping)
	case c.RestScale < c.ScaleFloor:
		return fmt.Errorf("%w: rest scale %v below scale floor %v", ErrInvalidConfig, c.RestScale, c.ScaleFloor)
	case c.HoldFrames < 0:
		return fmt.Errorf("%w: hold frames must be non-negative, got %d", ErrInvalidConfig, c.HoldFrames)
	case c.RenderInterval < 0 || c.StaleAfter < 0:
		return fmt.Errorf("%w: intervals must be non-negative", ErrInvalidConfig)
	}
	return nil
}
