// Package ingest provides the WebSocket hub that landmark detectors connect to
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/teslashibe/go-tryon/internal/log"
	"github.com/teslashibe/go-tryon/pkg/landmarks"
	"github.com/teslashibe/go-tryon/pkg/protocol"
)

// ErrClientNotFound is returned when sending to a detector that is not connected.
var ErrClientNotFound = errors.New("detector not connected")

// DetectorConnection represents a connected landmark detector
type DetectorConnection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time
	Frames    uint64

	mu sync.Mutex
}

// Send sends a message to the detector
func (d *DetectorConnection) Send(msg *protocol.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return d.Conn.WriteMessage(websocket.TextMessage, data)
}

func (d *DetectorConnection) touch(frame bool) {
	d.mu.Lock()
	d.LastSeen = time.Now()
	if frame {
		d.Frames++
	}
	d.mu.Unlock()
}

// Hub manages WebSocket connections from landmark detectors
type Hub struct {
	mu        sync.RWMutex
	detectors map[string]*DetectorConnection
	debug     bool
	logger    *slog.Logger

	// Callbacks
	onFrame func(detectorID string, frame landmarks.Frame)

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	framesReceived   atomic.Uint64
	framesDetected   atomic.Uint64
	framesRejected   atomic.Uint64
}

// NewHub creates a new detector hub
func NewHub(debug bool) *Hub {
	return &Hub{
		detectors: make(map[string]*DetectorConnection),
		debug:     debug,
		logger:    log.Component("ingest"),
	}
}

// OnFrame sets the callback for incoming landmark frames
func (h *Hub) OnFrame(callback func(detectorID string, frame landmarks.Frame)) {
	h.mu.Lock()
	h.onFrame = callback
	h.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/detector", websocket.New(h.handleDetector))
	app.Get("/ws/detector/:id", websocket.New(h.handleDetector))
}

// handleDetector handles a detector WebSocket connection
func (h *Hub) handleDetector(c *websocket.Conn) {
	detectorID := c.Params("id")
	if detectorID == "" {
		detectorID = uuid.NewString()
	}

	detector := &DetectorConnection{
		ID:        detectorID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	h.mu.Lock()
	h.detectors[detectorID] = detector
	count := len(h.detectors)
	h.mu.Unlock()

	h.logger.Info("detector connected", "id", detectorID, "total", count)

	defer func() {
		h.mu.Lock()
		// A reconnect under the same id may already have replaced us
		if h.detectors[detectorID] == detector {
			delete(h.detectors, detectorID)
		}
		count := len(h.detectors)
		h.mu.Unlock()

		h.logger.Info("detector disconnected", "id", detectorID, "total", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if h.debug {
				h.logger.Debug("detector read error", "id", detectorID, "error", err)
			}
			return
		}

		h.messagesReceived.Add(1)
		h.handleMessage(detector, data)
	}
}

// handleMessage processes an incoming message from a detector
func (h *Hub) handleMessage(detector *DetectorConnection, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		if h.debug {
			h.logger.Debug("parse error", "id", detector.ID, "error", err)
		}
		detector.touch(false)
		return
	}

	switch msg.Type {
	case protocol.TypeLandmarks:
		detector.touch(true)
		lm, err := msg.GetLandmarksData()
		if err != nil {
			h.framesRejected.Add(1)
			return
		}
		if err := h.Ingest(detector.ID, lm); err != nil && h.debug {
			h.logger.Debug("frame rejected", "id", detector.ID, "error", err)
		}

	case protocol.TypePing:
		detector.touch(false)
		var ping protocol.PingData
		_ = msg.ParseData(&ping)
		if err := h.SendPong(detector.ID, ping.ID, msg.Timestamp); err != nil && h.debug {
			h.logger.Debug("pong failed", "id", detector.ID, "error", err)
		}

	default:
		detector.touch(false)
	}
}

// Ingest converts one wire result into a frame and hands it to the OnFrame
// callback. Frames are stamped with the time they arrive here; detector
// clocks are not trusted. The HTTP ingest endpoint uses this too.
func (h *Hub) Ingest(detectorID string, data *protocol.LandmarksData) error {
	h.framesReceived.Add(1)

	frame, err := data.Frame(time.Now())
	if err != nil {
		h.framesRejected.Add(1)
		return fmt.Errorf("detector %s: %w", detectorID, err)
	}
	if _, ok := frame.Landmarks(); ok {
		h.framesDetected.Add(1)
	}

	h.mu.RLock()
	cb := h.onFrame
	h.mu.RUnlock()

	if cb != nil {
		cb(detectorID, frame)
	}
	return nil
}

// SendPong sends a pong response to a detector
func (h *Hub) SendPong(detectorID, pingID string, pingTS int64) error {
	msg, err := protocol.NewPongMessage(pingID, pingTS, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	return h.sendToDetector(detectorID, msg)
}

// SendState sends session status to a detector (e.g. to show tracking on/off)
func (h *Hub) SendState(detectorID string, state protocol.StateData) error {
	msg, err := protocol.NewStateMessage(state)
	if err != nil {
		return err
	}
	return h.sendToDetector(detectorID, msg)
}

// sendToDetector sends a message to a specific detector
func (h *Hub) sendToDetector(detectorID string, msg *protocol.Message) error {
	h.mu.RLock()
	detector, ok := h.detectors[detectorID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrClientNotFound, detectorID)
	}

	h.messagesSent.Add(1)
	return detector.Send(msg)
}

// Broadcast sends a message to all connected detectors
func (h *Hub) Broadcast(msg *protocol.Message) {
	for _, detector := range h.GetDetectors() {
		h.messagesSent.Add(1)
		if err := detector.Send(msg); err != nil && h.debug {
			h.logger.Debug("broadcast error", "id", detector.ID, "error", err)
		}
	}
}

// GetDetector returns a detector connection by ID
func (h *Hub) GetDetector(detectorID string) *DetectorConnection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.detectors[detectorID]
}

// GetDetectors returns all connected detectors
func (h *Hub) GetDetectors() []*DetectorConnection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	detectors := make([]*DetectorConnection, 0, len(h.detectors))
	for _, d := range h.detectors {
		detectors = append(detectors, d)
	}
	return detectors
}

// DetectorCount returns the number of connected detectors
func (h *Hub) DetectorCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.detectors)
}

// Stats contains hub statistics
type Stats struct {
	DetectorCount    int    `json:"detector_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	FramesReceived   uint64 `json:"frames_received"`
	FramesDetected   uint64 `json:"frames_detected"`
	FramesRejected   uint64 `json:"frames_rejected"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		DetectorCount:    h.DetectorCount(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		FramesReceived:   h.framesReceived.Load(),
		FramesDetected:   h.framesDetected.Load(),
		FramesRejected:   h.framesRejected.Load(),
	}
}

// DetectorInfo contains info about a connected detector
type DetectorInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
	Frames    uint64    `json:"frames"`
}

// GetDetectorInfos returns info about all connected detectors
func (h *Hub) GetDetectorInfos() []DetectorInfo {
	detectors := h.GetDetectors()

	infos := make([]DetectorInfo, 0, len(detectors))
	for _, d := range detectors {
		d.mu.Lock()
		infos = append(infos, DetectorInfo{
			ID:        d.ID,
			Connected: d.Connected,
			LastSeen:  d.LastSeen,
			Frames:    d.Frames,
		})
		d.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes registers API routes for detector management
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	detectors := api.Group("/detectors")

	detectors.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"detectors": h.GetDetectorInfos(),
			"count":     h.DetectorCount(),
		})
	})

	detectors.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})
}
