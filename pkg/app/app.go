package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-tryon/internal/log"
	"github.com/teslashibe/go-tryon/pkg/camera"
	"github.com/teslashibe/go-tryon/pkg/debug"
	"github.com/teslashibe/go-tryon/pkg/ingest"
	"github.com/teslashibe/go-tryon/pkg/landmarks"
	"github.com/teslashibe/go-tryon/pkg/tracking"
	"github.com/teslashibe/go-tryon/pkg/tracking/detection"
	"github.com/teslashibe/go-tryon/pkg/web"
)

// App is the try-on server orchestrator.
// It manages all components and their lifecycle.
type App struct {
	config Config
	logger *slog.Logger

	// Tracking
	session   *tracking.Session
	detectors *ingest.Hub

	// Local camera (optional)
	cameraManager *camera.Manager
	capture       *camera.Capture
	detector      *detection.YuNetDetector
	source        *detection.Source

	// Web server
	webServer *web.Server
}

// New creates a new application with the given configuration.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Init(cfg.LogLevel)
	debug.Enabled = cfg.Debug
	debug.Pose = cfg.DebugPose

	return &App{
		config: cfg,
		logger: log.Component("app"),
	}, nil
}

// Init initializes all components.
// Call this after New() and before Run().
func (a *App) Init() error {
	trackingCfg, err := a.config.Tracking()
	if err != nil {
		return err
	}

	a.session, err = tracking.NewSession(trackingCfg)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	a.logger.Info("session created", "id", a.session.ID, "preset", a.config.Preset, "alpha", trackingCfg.Alpha)

	a.detectors = ingest.NewHub(a.config.Debug)
	a.detectors.OnFrame(a.observe)

	if a.config.Camera {
		a.cameraManager = camera.NewManager(a.config.CameraConfig)
		// The server still works with remote detectors, so a missing camera is not fatal
		if err := a.initCamera(); err != nil {
			a.logger.Warn("local camera disabled", "error", err)
		}
	}

	a.webServer = web.NewServer(a.config.Port, a.session, a.detectors, a.cameraManager)
	a.session.SetSink(a.webServer)

	if a.config.AutoStart {
		a.session.Start()
	}
	return nil
}

// initCamera opens the webcam and the YuNet detector.
func (a *App) initCamera() error {
	detCfg := detection.DefaultConfig()
	detCfg.ModelPath = a.config.ModelPath

	detector, err := detection.NewYuNet(detCfg)
	if err != nil {
		return err
	}

	camCfg := a.cameraManager.GetConfig()
	capture, err := camera.Open(camCfg)
	if err != nil {
		detector.Close()
		return err
	}

	a.detector = detector
	a.capture = capture
	a.cameraManager.OnConfigChange = capture.Apply
	a.source = detection.NewSource(capture, detector, time.Second/time.Duration(camCfg.DetectHz))
	a.logger.Info("local camera ready",
		"device", camCfg.Device,
		"width", camCfg.Width,
		"height", camCfg.Height,
		"detect_hz", camCfg.DetectHz)
	return nil
}

// observe routes a detector frame into the session.
func (a *App) observe(detectorID string, frame landmarks.Frame) {
	if debug.Enabled {
		_, detected := frame.Landmarks()
		debug.Log("frame from %s seq=%d detected=%v", detectorID, frame.Seq, detected)
	}
	a.session.Observe(frame)
}

// Session returns the tracking session.
func (a *App) Session() *tracking.Session {
	return a.session
}

// Server returns the web server.
func (a *App) Server() *web.Server {
	return a.webServer
}

// Run starts the background loops and blocks until ctx is cancelled or the
// web server fails.
func (a *App) Run(ctx context.Context) error {
	if a.session == nil {
		return errors.New("app: Init not called")
	}

	go a.session.Run(ctx)

	if a.source != nil {
		go func() {
			err := a.source.Run(ctx, func(frame landmarks.Frame) {
				a.observe("local", frame)
			})
			if err != nil {
				a.logger.Error("local camera stopped", "error", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.webServer.Start(ctx)
	}()

	a.logger.Info("try-on server running", "port", a.config.Port, "camera", a.source != nil)

	select {
	case <-ctx.Done():
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	}
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown() {
	a.logger.Info("shutting down")

	if a.session != nil {
		a.session.Stop()
	}
	if a.webServer != nil {
		if err := a.webServer.Shutdown(); err != nil {
			a.logger.Warn("web shutdown", "error", err)
		}
	}
	if a.capture != nil {
		a.capture.Close()
	}
	if a.detector != nil {
		a.detector.Close()
	}
}
