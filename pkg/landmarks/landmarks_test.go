package landmarks

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(n int, p Point2D) []Point2D {
	pts := make([]Point2D, n)
	for i := range pts {
		pts[i] = p
	}
	return pts
}

func TestIBUG68_Regions(t *testing.T) {
	set, err := NewLandmarkSet(IBUG68, filled(IBUG68Count, Point2D{}))
	require.NoError(t, err)

	tests := []struct {
		region Region
		want   int
	}{
		{Jaw, 17},
		{RightBrow, 5},
		{LeftBrow, 5},
		{Nose, 9},
		{LeftEye, 6},
		{RightEye, 6},
		{Mouth, 20},
		{OuterLips, 12},
		{InnerLips, 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.region), func(t *testing.T) {
			assert.Len(t, set.Region(tt.region), tt.want)
		})
	}
	assert.True(t, set.Complete())
}

func TestYuNet5_EyesByImageSide(t *testing.T) {
	pts := []Point2D{
		{X: 100, Y: 50}, // subject's right eye, image left
		{X: 160, Y: 52},
		{X: 130, Y: 80},
		{X: 110, Y: 110},
		{X: 150, Y: 110},
	}
	set, err := NewLandmarkSet(YuNet5, pts)
	require.NoError(t, err)

	assert.Equal(t, []Point2D{{X: 100, Y: 50}}, set.Region(LeftEye))
	assert.Equal(t, []Point2D{{X: 160, Y: 52}}, set.Region(RightEye))
	assert.Equal(t, []Point2D{{X: 130, Y: 80}}, set.Region(Nose))
	assert.Len(t, set.Region(Mouth), 2)
	assert.Empty(t, set.Region(Jaw), "yunet5 has no jaw contour")
}

func TestLandmarkSet_TruncatedRegionsAreEmpty(t *testing.T) {
	// 30 points covers jaw, brows and part of the nose but no eyes
	set, err := NewLandmarkSet(IBUG68, filled(30, Point2D{X: 1, Y: 1}))
	require.NoError(t, err)

	assert.Len(t, set.Region(Nose), 3)
	assert.Empty(t, set.Region(LeftEye))
	assert.Empty(t, set.Region(RightEye))
	assert.False(t, set.Complete())
}

func TestNewLandmarkSet_TooManyPoints(t *testing.T) {
	_, err := NewLandmarkSet(YuNet5, filled(6, Point2D{}))
	assert.True(t, errors.Is(err, ErrTooManyPoints))
}

func TestNewLandmarkSet_NilSchemeDefaultsToIBUG68(t *testing.T) {
	set, err := NewLandmarkSet(nil, nil)
	require.NoError(t, err)
	assert.Same(t, IBUG68, set.Scheme)
}

func TestLandmarkSet_ZeroValue(t *testing.T) {
	var set LandmarkSet
	assert.Nil(t, set.Region(LeftEye))
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Complete())
}

func TestSchemeByName(t *testing.T) {
	s, err := SchemeByName("IBUG68")
	require.NoError(t, err)
	assert.Same(t, IBUG68, s)

	s, err = SchemeByName("yunet5")
	require.NoError(t, err)
	assert.Same(t, YuNet5, s)

	s, err = SchemeByName("")
	require.NoError(t, err)
	assert.Same(t, IBUG68, s)

	_, err = SchemeByName("mediapipe468")
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name   string
		points []Point2D
		want   Point2D
		ok     bool
	}{
		{
			name:   "single point",
			points: []Point2D{{X: 3, Y: 4}},
			want:   Point2D{X: 3, Y: 4},
			ok:     true,
		},
		{
			name:   "square",
			points: []Point2D{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}},
			want:   Point2D{X: 1, Y: 1},
			ok:     true,
		},
		{
			name:   "empty",
			points: nil,
			ok:     false,
		},
		{
			name:   "nan coordinate",
			points: []Point2D{{X: math.NaN(), Y: 1}},
			ok:     false,
		},
		{
			name:   "infinite coordinate",
			points: []Point2D{{X: 1, Y: math.Inf(1)}},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Centroid(tt.points)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want.X, got.X, 1e-12)
				assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
			}
		})
	}
}

func TestPoint2D_Geometry(t *testing.T) {
	a := Point2D{X: 200, Y: 150}
	b := Point2D{X: 300, Y: 150}

	assert.Equal(t, Point2D{X: 250, Y: 150}, a.Midpoint(b))
	assert.InDelta(t, 100.0, a.Distance(b), 1e-12)
	assert.InDelta(t, 5.0, Point2D{}.Distance(Point2D{X: 3, Y: 4}), 1e-12)
}

func TestFrame_Landmarks(t *testing.T) {
	set, err := NewLandmarkSet(YuNet5, filled(5, Point2D{X: 1, Y: 1}))
	require.NoError(t, err)

	f := DetectedFrame(set, 640, 480)
	got, ok := f.Landmarks()
	assert.True(t, ok)
	assert.Equal(t, 5, got.Len())

	_, ok = EmptyFrame(640, 480).Landmarks()
	assert.False(t, ok)

	_, ok = Frame{}.Landmarks()
	assert.False(t, ok, "nil observation carries no landmarks")
}
