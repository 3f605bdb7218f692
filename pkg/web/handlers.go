package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teslashibe/go-tryon/pkg/camera"
	"github.com/teslashibe/go-tryon/pkg/protocol"
	"github.com/teslashibe/go-tryon/pkg/tracking"
)

// httpDetectorID tags frames posted over HTTP rather than a socket.
const httpDetectorID = "http"

// StatusResponse is returned by GET /api/status
type StatusResponse struct {
	protocol.StateData
	Uptime  string                `json:"uptime"`
	Session tracking.Stats        `json:"session"`
	Ingest  ingestSummary         `json:"ingest"`
	Pose    protocol.PoseData     `json:"pose"`
	Tuning  tracking.TuningParams `json:"tuning"`
}

type ingestSummary struct {
	Connected      int    `json:"connected"`
	FramesReceived uint64 `json:"frames_received"`
	FramesRejected uint64 `json:"frames_rejected"`
}

// handleStatus returns the session state and counters
func (s *Server) handleStatus(c *fiber.Ctx) error {
	stats := s.detectors.GetStats()
	return c.JSON(StatusResponse{
		StateData: s.State(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Session:   s.session.GetStats(),
		Ingest: ingestSummary{
			Connected:      stats.DetectorCount,
			FramesReceived: stats.FramesReceived,
			FramesRejected: stats.FramesRejected,
		},
		Pose:   s.currentPose(),
		Tuning: s.session.GetTuningParams(),
	})
}

func (s *Server) currentPose() protocol.PoseData {
	return protocol.PoseDataFromUpdate(tracking.PoseUpdate{
		Pose:  s.session.Display(),
		State: s.session.State(),
	})
}

// handlePose returns the current display pose
func (s *Server) handlePose(c *fiber.Ctx) error {
	return c.JSON(s.currentPose())
}

// handleSessionStart turns tracking on
func (s *Server) handleSessionStart(c *fiber.Ctx) error {
	s.session.Start()
	s.broadcastState()
	return c.JSON(s.State())
}

// handleSessionStop turns tracking off; the eyewear drifts back to rest
func (s *Server) handleSessionStop(c *fiber.Ctx) error {
	s.session.Stop()
	s.broadcastState()
	return c.JSON(s.State())
}

// handleSessionReset snaps the eyewear back to rest
func (s *Server) handleSessionReset(c *fiber.Ctx) error {
	s.session.Reset()
	s.broadcastState()
	return c.JSON(s.State())
}

// handleGetTuning returns the live tuning parameters
func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	return c.JSON(s.session.GetTuningParams())
}

// handleSetTuning applies tuning parameters; zero fields are left unchanged
func (s *Server) handleSetTuning(c *fiber.Ctx) error {
	var params tracking.TuningParams
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.session.SetTuningParams(params); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(s.session.GetTuningParams())
}

// handleLandmarks accepts a single detector result over HTTP
func (s *Server) handleLandmarks(c *fiber.Ctx) error {
	var data protocol.LandmarksData
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.detectors.Ingest(httpDetectorID, &data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted", "seq": data.Seq})
}

// handleGetCamera returns the local camera configuration
func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"config":       s.camera.GetConfigJSON(),
		"capabilities": camera.Capabilities(),
	})
}

// handleSetCamera updates the local camera configuration
func (s *Server) handleSetCamera(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := s.camera.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(s.camera.GetConfigJSON())
}
