// Package protocol defines the WebSocket message types exchanged between
// landmark detectors, the try-on server and renderers.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownType is returned for messages whose type is not part of the protocol.
var ErrUnknownType = errors.New("unknown message type")

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Detector → Server messages
	TypeLandmarks MessageType = "landmarks" // One frame's detector result

	// Server → Renderer messages
	TypePose  MessageType = "pose"  // Smoothed eyewear placement
	TypeState MessageType = "state" // Session status

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Known reports whether t is part of the protocol.
func (t MessageType) Known() bool {
	switch t {
	case TypeLandmarks, TypePose, TypeState, TypePing, TypePong:
		return true
	}
	return false
}

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// Time returns the message timestamp, or the zero time if unset.
func (m *Message) Time() time.Time {
	if m.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(m.Timestamp)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if !msg.Type.Known() {
		return &msg, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return &msg, nil
}

// =============================================================================
// Detector → Server Message Types
// =============================================================================

// PointData is one landmark in source-frame pixels
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarksData contains one detector result. When Detected is false the
// points are ignored.
type LandmarksData struct {
	Detected bool        `json:"detected"`
	Scheme   string      `json:"scheme,omitempty"` // "ibug68" (default), "yunet5"
	Points   []PointData `json:"points,omitempty"`
	Width    float64     `json:"width"`  // Source frame width in pixels
	Height   float64     `json:"height"` // Source frame height in pixels
	Seq      uint64      `json:"seq,omitempty"`
}

// =============================================================================
// Server → Renderer Message Types
// =============================================================================

// PoseData contains the display pose for one rendered frame
type PoseData struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Rotation float64 `json:"rotation"` // Roll in radians
	Scale    float64 `json:"scale"`
	State    string  `json:"state"` // "tracking" or "idle"
	Seq      uint64  `json:"seq"`
}

// StateData contains session status
type StateData struct {
	SessionID string `json:"session_id"`
	Active    bool   `json:"active"`
	State     string `json:"state"`
	Detectors int    `json:"detectors"`
	Renderers int    `json:"renderers"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
