package tracking

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Pose is a placement of the eyewear mesh in render space.
// Rotation is roll about the viewing axis only, in radians.
type Pose struct {
	Position r3.Vector
	Rotation float64
	Scale    float64
}

// NewPose builds a pose from its components.
func NewPose(x, y, z, rotation, scale float64) Pose {
	return Pose{
		Position: r3.Vector{X: x, Y: y, Z: z},
		Rotation: rotation,
		Scale:    scale,
	}
}

// IsFinite reports whether every component is finite.
func (p Pose) IsFinite() bool {
	return isFinite(p.Position.X) && isFinite(p.Position.Y) && isFinite(p.Position.Z) &&
		isFinite(p.Rotation) && isFinite(p.Scale)
}

// Distance is a rough change metric used for logging thresholds.
func (p Pose) Distance(q Pose) float64 {
	return p.Position.Distance(q.Position) + abs(p.Rotation-q.Rotation) + abs(p.Scale-q.Scale)
}

func (p Pose) String() string {
	return fmt.Sprintf("pos=(%.3f, %.3f, %.3f) roll=%.3f scale=%.3f",
		p.Position.X, p.Position.Y, p.Position.Z, p.Rotation, p.Scale)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
