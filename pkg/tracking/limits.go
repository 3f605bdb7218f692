// Package tracking places a rigid eyewear mesh on a tracked face.
// This file defines the reference placement constants.
package tracking

import "math"

// Reference placement constants, tuned for a 45° perspective camera at z=5
// looking at the origin.
const (
	// DefaultAlpha is the per-frame exponential smoothing factor.
	DefaultAlpha = 0.1

	// DefaultScaleFloor keeps the mesh visible when the detector returns a
	// tiny or degenerate eye separation.
	DefaultScaleFloor = 0.05

	// DefaultScaleCoefficient maps eye separation in source pixels to mesh scale.
	// 100px between eye centres gives 0.35.
	DefaultScaleCoefficient = 0.0035

	// DefaultRotationDamping under-rotates the mesh relative to measured roll.
	DefaultRotationDamping = 0.5

	// DefaultFixedDepth is the constant Z in front of the view.
	DefaultFixedDepth = -0.5

	// DefaultPosScaleX and DefaultPosScaleY map normalized [-1, 1] frame
	// coordinates into render units.
	DefaultPosScaleX = 0.5
	DefaultPosScaleY = 0.3

	// DefaultRestScale is the mesh scale at startup.
	DefaultRestScale = 0.1
)

// Degrees converts radians to degrees for logging/display.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// wrapAngle maps an angle into (-π, π].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
