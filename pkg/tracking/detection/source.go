package detection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-tryon/internal/log"
	"github.com/teslashibe/go-tryon/pkg/camera"
	"github.com/teslashibe/go-tryon/pkg/landmarks"
	"gocv.io/x/gocv"
)

// FrameReader yields decoded frames (camera.Capture satisfies it).
type FrameReader interface {
	Read(dst *gocv.Mat) error
}

// Source turns a frame reader and a detector into a stream of landmark
// frames. It is the local stand-in for a browser-side detector.
type Source struct {
	Reader   FrameReader
	Detector Detector
	Interval time.Duration

	seq    uint64
	errors int
}

// NewSource creates a source that detects at most once per interval.
func NewSource(reader FrameReader, detector Detector, interval time.Duration) *Source {
	return &Source{
		Reader:   reader,
		Detector: detector,
		Interval: interval,
	}
}

// FrameFromFaces builds a landmark frame from one detection pass. Only the
// best face is kept.
func FrameFromFaces(faces []Face, width, height float64) landmarks.Frame {
	best := SelectBest(faces)
	if best == nil {
		return landmarks.EmptyFrame(width, height)
	}
	return landmarks.DetectedFrame(best.LandmarkSet(), width, height)
}

// Step reads one frame, runs detection and returns the result.
func (s *Source) Step(img *gocv.Mat) (landmarks.Frame, error) {
	if err := s.Reader.Read(img); err != nil {
		return landmarks.Frame{}, err
	}
	faces, err := s.Detector.DetectMat(*img)
	if err != nil {
		return landmarks.Frame{}, fmt.Errorf("detect: %w", err)
	}
	s.seq++
	frame := FrameFromFaces(faces, float64(img.Cols()), float64(img.Rows()))
	frame.Seq = s.seq
	return frame, nil
}

// Run detects at Interval and passes every frame to observe until ctx is
// cancelled. A closed camera ends the loop with an error; other read and
// detection failures are logged and skipped.
func (s *Source) Run(ctx context.Context, observe func(landmarks.Frame)) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second / 15
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	img := gocv.NewMat()
	defer img.Close()

	log.Info("detection source started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			log.Info("detection source stopped", "frames", s.seq, "errors", s.errors)
			return nil
		case <-ticker.C:
			frame, err := s.Step(&img)
			if errors.Is(err, camera.ErrNotOpened) {
				return err
			}
			if err != nil {
				s.errors++
				// First failure and then every 30th, so a dead camera doesn't flood
				if s.errors%30 == 1 {
					log.Warn("detection failed", "error", err, "count", s.errors)
				}
				continue
			}
			observe(frame)
		}
	}
}
