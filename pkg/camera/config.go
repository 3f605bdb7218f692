// Package camera provides runtime-configurable webcam settings for try-on.
// This follows the same pattern as pkg/tracking for tunable parameters.
package camera

// Config holds all camera configuration parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	// === Device ===
	Device int `json:"device"` // V4L2 / AVFoundation device index

	// === Resolution ===
	Width     int `json:"width"`     // Frame width in pixels
	Height    int `json:"height"`    // Frame height in pixels
	Framerate int `json:"framerate"` // Target FPS

	// === Presentation ===
	// Mirror flips frames horizontally so the preview behaves like a mirror.
	// Landmarks are reported in the mirrored frame.
	Mirror bool `json:"mirror"`

	// DetectHz is how often the local detector runs (1-30).
	DetectHz int `json:"detect_hz"`
}

// Webcam limits
const (
	MinWidth     = 160
	MaxWidth     = 3840
	MinHeight    = 120
	MaxHeight    = 2160
	MaxFramerate = 120
	MaxDetectHz  = 30
)

// DefaultConfig returns the recommended webcam configuration.
// 640x480 mirrored is what browser try-on pages request, so landmark
// coordinates line up with theirs.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     640,
		Height:    480,
		Framerate: 30,
		Mirror:    true,
		DetectHz:  15,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 {
		errors = append(errors, "device must be non-negative")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, "width must be between 160 and 3840")
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, "framerate must be between 1 and 120")
	}
	if c.DetectHz < 1 || c.DetectHz > MaxDetectHz {
		errors = append(errors, "detect_hz must be between 1 and 30")
	}

	return errors
}

// Capabilities returns the supported ranges for the camera API.
func Capabilities() map[string]interface{} {
	return map[string]interface{}{
		"min_width":     MinWidth,
		"max_width":     MaxWidth,
		"min_height":    MinHeight,
		"max_height":    MaxHeight,
		"max_framerate": MaxFramerate,
		"max_detect_hz": MaxDetectHz,
		"presets":       PresetNames(),
	}
}
