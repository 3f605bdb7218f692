// Package landmarks defines the 2D facial landmark sets produced by a face
// detector and consumed by the pose estimator.
package landmarks

import (
	"fmt"
	"strings"
)

// Region names a subset of a landmark scheme.
type Region string

// Regions are named by image side: LeftEye is the eye that appears on the
// left of the frame, whatever the subject's own handedness.
const (
	Jaw       Region = "jaw"
	RightBrow Region = "right_brow"
	LeftBrow  Region = "left_brow"
	Nose      Region = "nose"
	LeftEye   Region = "left_eye"
	RightEye  Region = "right_eye"
	Mouth     Region = "mouth"
	OuterLips Region = "outer_lips"
	InnerLips Region = "inner_lips"
)

// span is a half-open index range [Start, End) into a landmark slice.
type span struct {
	Start, End int
}

// Scheme describes a fixed-cardinality landmark layout.
type Scheme struct {
	Name    string
	Count   int
	regions map[Region]span
}

// iBUG 68-point layout, as emitted by dlib and face-api's faceLandmark68Net.
const (
	IBUG68Count = 68

	ibugJawStart       = 0
	ibugRightBrowStart = 17
	ibugLeftBrowStart  = 22
	ibugNoseStart      = 27
	ibugLeftEyeStart   = 36
	ibugRightEyeStart  = 42
	ibugMouthStart     = 48
	ibugInnerLipsStart = 60
)

// OpenCV FaceDetectorYN landmark order. YuNet labels them from the subject's
// point of view, so its "right eye" is the one on the left of the image.
const (
	YuNet5Count = 5

	YuNetRightEye   = 0
	YuNetLeftEye    = 1
	YuNetNoseTip    = 2
	YuNetRightMouth = 3
	YuNetLeftMouth  = 4
)

var (
	// IBUG68 is the 68-point scheme used by face-api and dlib.
	IBUG68 = &Scheme{
		Name:  "ibug68",
		Count: IBUG68Count,
		regions: map[Region]span{
			Jaw:       {ibugJawStart, ibugRightBrowStart},
			RightBrow: {ibugRightBrowStart, ibugLeftBrowStart},
			LeftBrow:  {ibugLeftBrowStart, ibugNoseStart},
			Nose:      {ibugNoseStart, ibugLeftEyeStart},
			LeftEye:   {ibugLeftEyeStart, ibugRightEyeStart},
			RightEye:  {ibugRightEyeStart, ibugMouthStart},
			Mouth:     {ibugMouthStart, IBUG68Count},
			OuterLips: {ibugMouthStart, ibugInnerLipsStart},
			InnerLips: {ibugInnerLipsStart, IBUG68Count},
		},
	}

	// YuNet5 is the 5-point scheme returned alongside YuNet face boxes.
	YuNet5 = &Scheme{
		Name:  "yunet5",
		Count: YuNet5Count,
		regions: map[Region]span{
			LeftEye:  {YuNetRightEye, YuNetRightEye + 1},
			RightEye: {YuNetLeftEye, YuNetLeftEye + 1},
			Nose:     {YuNetNoseTip, YuNetNoseTip + 1},
			Mouth:    {YuNetRightMouth, YuNet5Count},
		},
	}
)

var schemes = map[string]*Scheme{
	IBUG68.Name: IBUG68,
	YuNet5.Name: YuNet5,
}

// SchemeByName resolves a scheme by its wire name (case-insensitive).
// An empty name resolves to IBUG68.
func SchemeByName(name string) (*Scheme, error) {
	if name == "" {
		return IBUG68, nil
	}
	s, ok := schemes[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return s, nil
}

// Has reports whether the scheme defines the region.
func (s *Scheme) Has(r Region) bool {
	_, ok := s.regions[r]
	return ok
}

// Regions returns the regions this scheme defines.
func (s *Scheme) Regions() []Region {
	out := make([]Region, 0, len(s.regions))
	for r := range s.regions {
		out = append(out, r)
	}
	return out
}

// bounds returns the index range of a region, or false if the scheme does not
// define it.
func (s *Scheme) bounds(r Region) (span, bool) {
	sp, ok := s.regions[r]
	return sp, ok
}
