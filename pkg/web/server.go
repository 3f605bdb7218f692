// Package web provides the HTTP and WebSocket surface for try-on sessions
package web

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/teslashibe/go-tryon/internal/log"
	"github.com/teslashibe/go-tryon/pkg/camera"
	"github.com/teslashibe/go-tryon/pkg/hub"
	"github.com/teslashibe/go-tryon/pkg/ingest"
	"github.com/teslashibe/go-tryon/pkg/protocol"
	"github.com/teslashibe/go-tryon/pkg/tracking"
)

// Server serves the tracking API, the detector ingest socket and the
// renderer pose stream.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	session   *tracking.Session
	detectors *ingest.Hub
	camera    *camera.Manager // nil without a local camera

	// Hubs for websocket broadcast
	poseHub  *hub.Hub
	stateHub *hub.Hub

	lastState atomic.Value // tracking.State
	started   time.Time
}

// NewServer creates a new server. cam may be nil.
func NewServer(port string, session *tracking.Session, detectors *ingest.Hub, cam *camera.Manager) *Server {
	s := &Server{
		port:      port,
		logger:    log.Component("web"),
		session:   session,
		detectors: detectors,
		camera:    cam,
		poseHub:   hub.New("pose"),
		stateHub:  hub.New("state"),
		started:   time.Now(),
	}
	s.lastState.Store(tracking.StateIdle)

	app := fiber.New(fiber.Config{
		AppName:               "Try-On",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	// CORS so browser detectors on another origin can post landmarks
	app.Use(cors.New())

	// Static try-on page
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/pose", s.handlePose)
	api.Post("/session/start", s.handleSessionStart)
	api.Post("/session/stop", s.handleSessionStop)
	api.Post("/session/reset", s.handleSessionReset)
	api.Get("/tuning", s.handleGetTuning)
	api.Post("/tuning", s.handleSetTuning)
	api.Post("/landmarks", s.handleLandmarks)
	if cam != nil {
		api.Get("/camera", s.handleGetCamera)
		api.Post("/camera", s.handleSetCamera)
	}
	detectors.RegisterAPIRoutes(api)

	// WebSocket routes; the ingest hub installs the upgrade check on /ws
	detectors.RegisterRoutes(app)
	app.Get("/ws/pose", s.poseHub.Handler())
	app.Get("/ws/state", s.stateHub.Handler())

	s.app = app
	return s
}

// App exposes the fiber app (for tests and embedding).
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the broadcast hubs and serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	go s.poseHub.Run(ctx)
	go s.stateHub.Run(ctx)

	s.logger.Info("listening", "url", "http://localhost:"+s.port)
	return s.app.Listen(":" + s.port)
}

// PublishPose streams a session update to renderers.
// It implements tracking.PoseSink.
func (s *Server) PublishPose(update tracking.PoseUpdate) {
	msg, err := protocol.NewPoseMessage(update)
	if err != nil {
		s.logger.Error("encode pose", "error", err)
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		s.logger.Error("encode pose", "error", err)
		return
	}
	s.poseHub.Broadcast(hub.Message(data))

	if prev, _ := s.lastState.Swap(update.State).(tracking.State); prev != update.State {
		s.broadcastState()
	}
}

// State returns the session status as sent to clients.
func (s *Server) State() protocol.StateData {
	return protocol.StateData{
		SessionID: s.session.ID,
		Active:    s.session.Active(),
		State:     string(s.session.State()),
		Detectors: s.detectors.DetectorCount(),
		Renderers: s.poseHub.ClientCount(),
	}
}

// broadcastState pushes the session status to state subscribers and detectors.
func (s *Server) broadcastState() {
	state := s.State()
	msg, err := protocol.NewStateMessage(state)
	if err != nil {
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		return
	}
	s.stateHub.Broadcast(hub.Message(data))
	s.detectors.Broadcast(msg)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
