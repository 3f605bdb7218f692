package tracking

import (
	"github.com/golang/geo/r3"
)

// State is the smoother's tracking state, decided on every Update.
type State string

const (
	StateTracking State = "tracking" // Last update had a target (or is within the hold window)
	StateIdle     State = "idle"     // Returning to, or resting at, the rest pose
)

// Smoother owns the displayed pose and moves it toward each frame's target
// with exponential smoothing. The blend factor is applied once per call, so
// convergence speed is tied to frame rate, not wall time.
type Smoother struct {
	// Gains
	Alpha float64 // Blend factor per call

	// Extensions
	HoldFrames           int  // Absent targets held before going idle
	ShortestPathRotation bool // Blend roll along the shorter arc

	// State
	rest    Pose
	display Pose
	state   State
	misses  int
}

// NewSmoother creates a smoother resting at config's rest pose.
func NewSmoother(config Config) *Smoother {
	rest := config.RestPose()
	return &Smoother{
		Alpha:                config.Alpha,
		HoldFrames:           config.HoldFrames,
		ShortestPathRotation: config.ShortestPathRotation,
		rest:                 rest,
		display:              rest,
		state:                StateIdle,
	}
}

// Update advances the display pose by one frame and returns a copy of it.
// ok=false means there is no target this frame: position and rotation head
// back to rest while scale keeps its last value.
func (s *Smoother) Update(target Pose, ok bool) Pose {
	if ok && !target.IsFinite() {
		ok = false
	}

	if ok {
		s.misses = 0
		s.state = StateTracking
		s.display.Position = lerpVector(s.display.Position, target.Position, s.Alpha)
		s.display.Rotation = s.blendRotation(s.display.Rotation, target.Rotation)
		s.display.Scale = lerp(s.display.Scale, target.Scale, s.Alpha)
		return s.display
	}

	s.misses++
	if s.state == StateTracking && s.misses <= s.HoldFrames {
		return s.display
	}

	s.state = StateIdle
	s.display.Position = lerpVector(s.display.Position, s.rest.Position, s.Alpha)
	s.display.Rotation = s.blendRotation(s.display.Rotation, s.rest.Rotation)
	return s.display
}

// Display returns the current display pose without advancing it.
func (s *Smoother) Display() Pose {
	return s.display
}

// Rest returns the rest pose.
func (s *Smoother) Rest() Pose {
	return s.rest
}

// State returns the state decided by the last Update.
func (s *Smoother) State() State {
	return s.state
}

// Misses returns how many consecutive updates had no target.
func (s *Smoother) Misses() int {
	return s.misses
}

// Reset snaps the display pose back to rest and clears the state.
func (s *Smoother) Reset() {
	s.display = s.rest
	s.state = StateIdle
	s.misses = 0
}

// SetRest replaces the rest pose. The display pose is left where it is.
func (s *Smoother) SetRest(rest Pose) {
	s.rest = rest
}

func (s *Smoother) blendRotation(current, target float64) float64 {
	diff := target - current
	if s.ShortestPathRotation {
		diff = wrapAngle(diff)
	}
	return current + diff*s.Alpha
}

func lerpVector(a, b r3.Vector, t float64) r3.Vector {
	return r3.Vector{
		X: lerp(a.X, b.X, t),
		Y: lerp(a.Y, b.Y, t),
		Z: lerp(a.Z, b.Z, t),
	}
}
