// Package config provides environment helpers for go-tryon commands.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Default service configuration.
const (
	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultModelPath = "models/face_detection_yunet.onnx"
	DefaultPreset    = "default"
)

// Environment variable names.
const (
	EnvPort      = "TRYON_PORT"
	EnvLogLevel  = "TRYON_LOG_LEVEL"
	EnvModelPath = "TRYON_MODEL_PATH"
	EnvCamera    = "TRYON_CAMERA"
	EnvPreset    = "TRYON_PRESET"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Port returns the HTTP port from TRYON_PORT or the default.
func Port() string {
	return getenv(EnvPort, DefaultPort)
}

// LogLevel returns the log level from TRYON_LOG_LEVEL or "info".
func LogLevel() string {
	return getenv(EnvLogLevel, DefaultLogLevel)
}

// ModelPath returns the YuNet model path from TRYON_MODEL_PATH or the default.
func ModelPath() string {
	return getenv(EnvModelPath, DefaultModelPath)
}

// Preset returns the tracking preset name from TRYON_PRESET or "default".
func Preset() string {
	return getenv(EnvPreset, DefaultPreset)
}

// CameraDevice returns the local camera device from TRYON_CAMERA.
// ok is false when the variable is unset, which disables the local camera.
func CameraDevice() (device int, ok bool, err error) {
	v := os.Getenv(EnvCamera)
	if v == "" {
		return 0, false, nil
	}
	device, err = strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", EnvCamera, err)
	}
	if device < 0 {
		return 0, false, fmt.Errorf("%s: device must be >= 0, got %d", EnvCamera, device)
	}
	return device, true, nil
}

// Production reports whether GO_ENV is "production".
func Production() bool {
	return os.Getenv("GO_ENV") == "production"
}
