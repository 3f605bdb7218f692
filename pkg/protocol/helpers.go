package protocol

import (
	"fmt"
	"time"

	"github.com/teslashibe/go-tryon/pkg/landmarks"
	"github.com/teslashibe/go-tryon/pkg/tracking"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewLandmarksMessage creates a landmarks message from a frame
func NewLandmarksMessage(frame landmarks.Frame) (*Message, error) {
	return NewMessage(TypeLandmarks, LandmarksDataFromFrame(frame))
}

// NewPoseMessage creates a pose message from a session update
func NewPoseMessage(update tracking.PoseUpdate) (*Message, error) {
	return NewMessage(TypePose, PoseDataFromUpdate(update))
}

// NewStateMessage creates a state message
func NewStateMessage(state StateData) (*Message, error) {
	return NewMessage(TypeState, state)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Conversions
// =============================================================================

// LandmarksDataFromFrame converts a frame to its wire form
func LandmarksDataFromFrame(frame landmarks.Frame) LandmarksData {
	data := LandmarksData{
		Width:  frame.Width,
		Height: frame.Height,
		Seq:    frame.Seq,
	}
	set, ok := frame.Landmarks()
	if !ok {
		return data
	}
	data.Detected = true
	if set.Scheme != nil {
		data.Scheme = set.Scheme.Name
	}
	data.Points = make([]PointData, len(set.Points))
	for i, p := range set.Points {
		data.Points[i] = PointData{X: p.X, Y: p.Y}
	}
	return data
}

// Frame converts wire landmarks into a frame stamped with capturedAt.
// An unknown scheme or too many points is an error; a detected result with
// no points becomes a NotDetected frame.
func (d *LandmarksData) Frame(capturedAt time.Time) (landmarks.Frame, error) {
	frame := landmarks.Frame{
		Observation: landmarks.NotDetected{},
		Width:       d.Width,
		Height:      d.Height,
		CapturedAt:  capturedAt,
		Seq:         d.Seq,
	}
	if !d.Detected || len(d.Points) == 0 {
		return frame, nil
	}

	scheme, err := landmarks.SchemeByName(d.Scheme)
	if err != nil {
		return landmarks.Frame{}, err
	}
	points := make([]landmarks.Point2D, len(d.Points))
	for i, p := range d.Points {
		points[i] = landmarks.Point2D{X: p.X, Y: p.Y}
	}
	set, err := landmarks.NewLandmarkSet(scheme, points)
	if err != nil {
		return landmarks.Frame{}, fmt.Errorf("%s: %w", scheme.Name, err)
	}
	frame.Observation = landmarks.Detected{Set: set}
	return frame, nil
}

// PoseDataFromUpdate converts a session update to its wire form
func PoseDataFromUpdate(update tracking.PoseUpdate) PoseData {
	p := update.Pose
	return PoseData{
		X:        p.Position.X,
		Y:        p.Position.Y,
		Z:        p.Position.Z,
		Rotation: p.Rotation,
		Scale:    p.Scale,
		State:    string(update.State),
		Seq:      update.Seq,
	}
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetLandmarksData extracts landmarks data from a message
func (m *Message) GetLandmarksData() (*LandmarksData, error) {
	var data LandmarksData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPoseData extracts pose data from a message
func (m *Message) GetPoseData() (*PoseData, error) {
	var data PoseData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStateData extracts state data from a message
func (m *Message) GetStateData() (*StateData, error) {
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
