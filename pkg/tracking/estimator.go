package tracking

import (
	"math"

	"github.com/teslashibe/go-tryon/pkg/landmarks"
)

// Estimator converts one frame's landmarks into a target pose.
// It holds configuration only and is safe for concurrent use.
type Estimator struct {
	scaleFloor       float64
	scaleCoefficient float64
	rotationDamping  float64
	fixedDepth       float64
	posScaleX        float64
	posScaleY        float64
}

// NewEstimator creates an estimator from the placement parameters in config.
func NewEstimator(config Config) *Estimator {
	return &Estimator{
		scaleFloor:       config.ScaleFloor,
		scaleCoefficient: config.ScaleCoefficient,
		rotationDamping:  config.RotationDamping,
		fixedDepth:       config.FixedDepth,
		posScaleX:        config.PosScaleX,
		posScaleY:        config.PosScaleY,
	}
}

// Estimate returns the target pose for obs in a frame of the given pixel size.
// It reports false when there is no face, when the eye or nose regions are
// empty, or when the geometry is degenerate. It never panics on bad input.
func (e *Estimator) Estimate(obs landmarks.Observation, frameWidth, frameHeight float64) (Pose, bool) {
	d, ok := obs.(landmarks.Detected)
	if !ok {
		return Pose{}, false
	}
	set := d.Set

	if !(frameWidth > 0) || !(frameHeight > 0) || math.IsInf(frameWidth, 0) || math.IsInf(frameHeight, 0) {
		return Pose{}, false
	}

	leftEye := set.Region(landmarks.LeftEye)
	rightEye := set.Region(landmarks.RightEye)
	if len(leftEye) == 0 || len(rightEye) == 0 || len(set.Region(landmarks.Nose)) == 0 {
		return Pose{}, false
	}

	left, ok := landmarks.Centroid(leftEye)
	if !ok {
		return Pose{}, false
	}
	right, ok := landmarks.Centroid(rightEye)
	if !ok {
		return Pose{}, false
	}

	eyeCenter := left.Midpoint(right)
	eyeDistance := left.Distance(right)

	// Symmetric [-1, 1] space; image Y grows down, render Y grows up
	normalizedX := (eyeCenter.X/frameWidth - 0.5) * 2
	normalizedY := -(eyeCenter.Y/frameHeight - 0.5) * 2

	roll := math.Atan2(right.Y-left.Y, right.X-left.X)

	pose := NewPose(
		normalizedX*e.posScaleX,
		normalizedY*e.posScaleY,
		e.fixedDepth,
		roll*e.rotationDamping,
		math.Max(e.scaleFloor, eyeDistance*e.scaleCoefficient),
	)
	if !pose.IsFinite() {
		return Pose{}, false
	}
	return pose, true
}

// EstimateFrame is Estimate applied to a landmarks.Frame.
func (e *Estimator) EstimateFrame(f landmarks.Frame) (Pose, bool) {
	return e.Estimate(f.Observation, f.Width, f.Height)
}

// Roll returns the measured (undamped) head roll for a detected set, for
// diagnostics. It reports false under the same conditions as Estimate.
func (e *Estimator) Roll(obs landmarks.Observation) (float64, bool) {
	d, ok := obs.(landmarks.Detected)
	if !ok {
		return 0, false
	}
	left, ok := landmarks.Centroid(d.Set.Region(landmarks.LeftEye))
	if !ok {
		return 0, false
	}
	right, ok := landmarks.Centroid(d.Set.Region(landmarks.RightEye))
	if !ok {
		return 0, false
	}
	return math.Atan2(right.Y-left.Y, right.X-left.X), true
}
