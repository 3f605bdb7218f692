package landmarks

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrUnknownScheme is returned when a scheme name cannot be resolved.
	ErrUnknownScheme = errors.New("unknown landmark scheme")

	// ErrTooManyPoints is returned when a set has more points than its scheme.
	ErrTooManyPoints = errors.New("landmark set exceeds scheme cardinality")
)

// Point2D is a landmark position in source-frame pixels.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are finite.
func (p Point2D) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Midpoint returns the point halfway between p and q.
func (p Point2D) Midpoint(q Point2D) Point2D {
	return Point2D{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Distance returns the Euclidean distance between p and q.
func (p Point2D) Distance(q Point2D) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// LandmarkSet is one detector result: an ordered list of points laid out
// according to Scheme. Sets are treated as read-only once built.
type LandmarkSet struct {
	Scheme *Scheme
	Points []Point2D
}

// NewLandmarkSet builds a set for the scheme. Fewer points than the scheme's
// cardinality are accepted (regions past the end come back empty); more are not.
func NewLandmarkSet(scheme *Scheme, points []Point2D) (LandmarkSet, error) {
	if scheme == nil {
		scheme = IBUG68
	}
	if len(points) > scheme.Count {
		return LandmarkSet{}, ErrTooManyPoints
	}
	return LandmarkSet{Scheme: scheme, Points: points}, nil
}

// Len returns the number of points in the set.
func (s LandmarkSet) Len() int {
	return len(s.Points)
}

// Complete reports whether the set has every point its scheme defines.
func (s LandmarkSet) Complete() bool {
	return s.Scheme != nil && len(s.Points) == s.Scheme.Count
}

// Region returns the points belonging to r. The result is empty when the
// scheme lacks the region or the set was truncated before it.
func (s LandmarkSet) Region(r Region) []Point2D {
	if s.Scheme == nil {
		return nil
	}
	sp, ok := s.Scheme.bounds(r)
	if !ok {
		return nil
	}
	end := min(sp.End, len(s.Points))
	if sp.Start >= end {
		return nil
	}
	return s.Points[sp.Start:end]
}

// Centroid returns the arithmetic mean of points. It reports false for an
// empty slice or when any coordinate is not finite.
func Centroid(points []Point2D) (Point2D, bool) {
	if len(points) == 0 {
		return Point2D{}, false
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	c := Point2D{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
	if !c.IsFinite() {
		return Point2D{}, false
	}
	return c, true
}

// Observation is what the detector reports for one frame: either Detected
// or NotDetected. The set of implementations is closed.
type Observation interface {
	isObservation()
}

// Detected carries the landmarks of the face selected for this frame.
type Detected struct {
	Set LandmarkSet
}

// NotDetected marks a frame with no usable face.
type NotDetected struct{}

func (Detected) isObservation()    {}
func (NotDetected) isObservation() {}

// Frame pairs an observation with the dimensions of the frame it came from.
type Frame struct {
	Observation Observation
	Width       float64
	Height      float64
	CapturedAt  time.Time
	Seq         uint64
}

// DetectedFrame is a convenience constructor for a frame with a face.
func DetectedFrame(set LandmarkSet, width, height float64) Frame {
	return Frame{
		Observation: Detected{Set: set},
		Width:       width,
		Height:      height,
		CapturedAt:  time.Now(),
	}
}

// EmptyFrame is a convenience constructor for a frame without a face.
func EmptyFrame(width, height float64) Frame {
	return Frame{
		Observation: NotDetected{},
		Width:       width,
		Height:      height,
		CapturedAt:  time.Now(),
	}
}

// Landmarks returns the detected set, or false when the frame holds none.
func (f Frame) Landmarks() (LandmarkSet, bool) {
	if d, ok := f.Observation.(Detected); ok {
		return d.Set, true
	}
	return LandmarkSet{}, false
}
