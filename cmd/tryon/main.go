// Try-on server: receives face landmarks from browser or local detectors
// and streams a smoothed eyewear pose to renderers.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-tryon/pkg/app"
	"github.com/teslashibe/go-tryon/pkg/camera"
)

func main() {
	cfg := parseFlags()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	if err := a.Init(); err != nil {
		log.Fatalf("❌ Initialization failed: %v", err)
	}
	defer a.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		log.Fatalf("❌ Runtime error: %v", err)
	}
}

// parseFlags parses command line flags and returns configuration.
// Environment variables are applied first so flags override them.
func parseFlags() app.Config {
	cfg := app.DefaultConfig()
	if err := cfg.LoadEnvConfig(); err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	debugPose := flag.Bool("debug-pose", false, "Log every rendered pose")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	port := flag.String("port", cfg.Port, "HTTP port (overrides TRYON_PORT)")
	preset := flag.String("preset", cfg.Preset, "Tracking preset: default, smooth, responsive")
	manual := flag.Bool("manual", false, "Wait for POST /api/session/start before tracking")
	cameraDevice := flag.Int("camera", -1, "Local webcam device index (-1 disables, overrides TRYON_CAMERA)")
	cameraPreset := flag.String("camera-preset", "", "Camera preset: default, 720p, low, raw")
	noMirror := flag.Bool("no-mirror", false, "Do not mirror the local camera")
	modelPath := flag.String("model", cfg.ModelPath, "YuNet ONNX model for the local camera")
	flag.Parse()

	cfg.Debug, cfg.DebugPose = *debug, *debugPose
	cfg.LogLevel, cfg.Port, cfg.Preset, cfg.ModelPath = *logLevel, *port, *preset, *modelPath
	cfg.AutoStart = !*manual
	if *debug {
		cfg.LogLevel = "debug"
	}

	if *cameraPreset != "" {
		p := camera.GetPreset(*cameraPreset)
		if p == nil {
			log.Fatalf("❌ Unknown camera preset %q", *cameraPreset)
		}
		device := cfg.CameraConfig.Device
		cfg.CameraConfig = *p
		cfg.CameraConfig.Device = device
	}
	if *cameraDevice >= 0 {
		cfg.Camera = true
		cfg.CameraConfig.Device = *cameraDevice
	}
	if *noMirror {
		cfg.CameraConfig.Mirror = false
	}
	return cfg
}
