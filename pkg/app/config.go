// Package app wires the try-on server: detector ingest, the tracking
// session, the renderer stream and the optional local camera.
package app

import (
	"fmt"

	"github.com/teslashibe/go-tryon/internal/config"
	"github.com/teslashibe/go-tryon/pkg/camera"
	"github.com/teslashibe/go-tryon/pkg/tracking"
)

// Config holds all configuration for the try-on server.
// Flag parsing is done in cmd/tryon/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool

	// DebugPose logs every rendered pose.
	DebugPose bool

	// LogLevel is passed to internal/log.
	LogLevel string

	// Port is the HTTP listen port.
	Port string

	// Preset names the tracking preset: default, smooth or responsive.
	Preset string

	// AutoStart begins tracking without waiting for POST /api/session/start.
	AutoStart bool

	// Camera enables the local webcam detector.
	Camera       bool
	CameraConfig camera.Config

	// ModelPath is the YuNet ONNX model used by the local detector.
	ModelPath string
}

// DefaultConfig returns sensible defaults for the server.
func DefaultConfig() Config {
	return Config{
		LogLevel:     config.DefaultLogLevel,
		Port:         config.DefaultPort,
		Preset:       config.DefaultPreset,
		AutoStart:    true,
		CameraConfig: camera.DefaultConfig(),
		ModelPath:    config.DefaultModelPath,
	}
}

// LoadEnvConfig applies TRYON_* environment variables.
// Call this before flag parsing so flags win.
func (c *Config) LoadEnvConfig() error {
	c.Port = config.Port()
	c.LogLevel = config.LogLevel()
	c.ModelPath = config.ModelPath()
	c.Preset = config.Preset()

	device, ok, err := config.CameraDevice()
	if err != nil {
		return &ConfigError{Field: "Camera", Message: err.Error()}
	}
	if ok {
		c.Camera = true
		c.CameraConfig.Device = device
	}
	return nil
}

// Tracking resolves the tracking preset.
func (c *Config) Tracking() (tracking.Config, error) {
	cfg, ok := tracking.ConfigByName(c.Preset)
	if !ok {
		return tracking.Config{}, &ConfigError{
			Field:   "Preset",
			Message: fmt.Sprintf("unknown tracking preset %q (default, smooth, responsive)", c.Preset),
		}
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port == "" {
		return &ConfigError{Field: "Port", Message: "port is required"}
	}
	if _, err := c.Tracking(); err != nil {
		return err
	}
	if c.Camera {
		if errs := c.CameraConfig.Validate(); len(errs) > 0 {
			return &ConfigError{Field: "CameraConfig", Message: "camera: " + errs[0]}
		}
		if c.ModelPath == "" {
			return &ConfigError{Field: "ModelPath", Message: "a YuNet model path is required with the local camera"}
		}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
