// Package detection provides face detection using computer vision
package detection

import (
	"errors"

	"github.com/teslashibe/go-tryon/pkg/landmarks"
	"gocv.io/x/gocv"
)

// ErrModelNotFound is returned when the ONNX model file is missing.
var ErrModelNotFound = errors.New("model file not found")

// Detection represents a detected face box
type Detection struct {
	X, Y       float64 // Top-left position (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)
}

// Center returns the center point of the detection
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area returns the area of the bounding box
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Face is a detection with its five landmarks in source pixels, in the
// detector's native order (see landmarks.YuNet5).
type Face struct {
	Detection
	Landmarks [landmarks.YuNet5Count]landmarks.Point2D
}

// LandmarkSet returns the face's landmarks as a YuNet5 set.
func (f Face) LandmarkSet() landmarks.LandmarkSet {
	points := make([]landmarks.Point2D, len(f.Landmarks))
	copy(points, f.Landmarks[:])
	return landmarks.LandmarkSet{Scheme: landmarks.YuNet5, Points: points}
}

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in a JPEG image
	Detect(jpeg []byte) ([]Face, error)

	// DetectMat finds faces in an already decoded BGR frame
	DetectMat(img gocv.Mat) ([]Face, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float64 // Minimum confidence (default 0.6)
	NMSThresh        float64 // Non-maximum suppression threshold
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		ConfidenceThresh: 0.6,
		NMSThresh:        0.3,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// SelectBest picks the face to track when several are found.
// Priority: confidence * 0.7 + area * 0.3
func SelectBest(faces []Face) *Face {
	if len(faces) == 0 {
		return nil
	}

	if len(faces) == 1 {
		return &faces[0]
	}

	// Find max area for normalization
	maxArea := 0.0
	for _, f := range faces {
		if f.Area() > maxArea {
			maxArea = f.Area()
		}
	}

	bestScore := -1.0
	var best *Face

	for i := range faces {
		score := faces[i].Confidence * 0.7
		if maxArea > 0 {
			score += (faces[i].Area() / maxArea) * 0.3
		}
		if score > bestScore {
			bestScore = score
			best = &faces[i]
		}
	}

	return best
}
