package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-tryon/pkg/landmarks"
)

type recordingSink struct {
	mu      sync.Mutex
	updates []PoseUpdate
}

func (r *recordingSink) PublishPose(u PoseUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(DefaultConfig())
	require.NoError(t, err)
	return s
}

func TestNewSession_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Alpha = 0
	_, err := NewSession(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSession_InactiveIgnoresFrames(t *testing.T) {
	s := newTestSession(t)
	set := ibugFace(t, landmarks.Point2D{X: 200, Y: 150}, landmarks.Point2D{X: 300, Y: 150})
	s.Observe(landmarks.DetectedFrame(set, frameW, frameH))

	u := s.Tick(time.Now())
	assert.False(t, u.HasTarget)
	assert.Equal(t, StateIdle, u.State)
	assert.Equal(t, DefaultConfig().RestPose(), u.Pose)
}

func TestSession_TracksLatestFrame(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	set := ibugFace(t, landmarks.Point2D{X: 200, Y: 150}, landmarks.Point2D{X: 300, Y: 150})
	frame := landmarks.DetectedFrame(set, frameW, frameH)
	frame.Seq = 7
	s.Observe(frame)

	u := s.Tick(frame.CapturedAt)
	require.True(t, u.HasTarget)
	assert.Equal(t, StateTracking, u.State)
	assert.Equal(t, uint64(7), u.FrameSeq)
	assert.Equal(t, uint64(1), u.Seq)
	assert.InDelta(t, -0.109375*DefaultAlpha, u.Pose.Position.X, 1e-12)

	// The same result keeps pulling on later ticks
	u = s.Tick(frame.CapturedAt.Add(16 * time.Millisecond))
	assert.True(t, u.HasTarget)
	assert.InDelta(t, -0.109375*(1-0.9*0.9), u.Pose.Position.X, 1e-12)

	stats := s.GetStats()
	assert.Equal(t, uint64(2), stats.Ticks)
	assert.Equal(t, uint64(2), stats.Targets)
	assert.Equal(t, uint64(1), stats.FramesObserved)
	assert.Equal(t, uint64(1), stats.FramesDetected)
	assert.Equal(t, uint64(1), stats.Transitions)
	assert.True(t, stats.Active)
}

func TestSession_NotDetectedGoesIdle(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	set := ibugFace(t, landmarks.Point2D{X: 200, Y: 150}, landmarks.Point2D{X: 300, Y: 150})
	s.Observe(landmarks.DetectedFrame(set, frameW, frameH))
	s.Tick(time.Now())
	require.Equal(t, StateTracking, s.State())

	s.Observe(landmarks.EmptyFrame(frameW, frameH))
	u := s.Tick(time.Now())
	assert.False(t, u.HasTarget)
	assert.Equal(t, StateIdle, u.State)
}

func TestSession_StaleFrame(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	set := ibugFace(t, landmarks.Point2D{X: 200, Y: 150}, landmarks.Point2D{X: 300, Y: 150})
	frame := landmarks.DetectedFrame(set, frameW, frameH)
	s.Observe(frame)

	u := s.Tick(frame.CapturedAt.Add(DefaultConfig().StaleAfter + time.Millisecond))
	assert.False(t, u.HasTarget)
	assert.Equal(t, StateIdle, u.State)
}

func TestSession_ObserveFillsDefaults(t *testing.T) {
	s := newTestSession(t)
	s.Start()
	s.Observe(landmarks.Frame{Width: frameW, Height: frameH})

	u := s.Tick(time.Now())
	assert.False(t, u.HasTarget)
	assert.Equal(t, uint64(0), s.GetStats().FramesDetected)
}

func TestSession_StopReturnsToRest(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	set := ibugFace(t, landmarks.Point2D{X: 200, Y: 150}, landmarks.Point2D{X: 300, Y: 150})
	for i := 0; i < 30; i++ {
		s.Observe(landmarks.DetectedFrame(set, frameW, frameH))
		s.Tick(time.Now())
	}
	tracked := s.Display()
	require.Less(t, tracked.Position.X, -0.1)

	s.Stop()
	assert.False(t, s.Active())

	// A late detector result after Stop is ignored
	s.Observe(landmarks.DetectedFrame(set, frameW, frameH))
	for i := 0; i < 200; i++ {
		u := s.Tick(time.Now())
		assert.False(t, u.HasTarget)
	}
	display := s.Display()
	assert.InDelta(t, 0, display.Position.X, 1e-6)
	assert.Equal(t, tracked.Scale, display.Scale)
}

func TestSession_Reset(t *testing.T) {
	s := newTestSession(t)
	s.Start()
	set := ibugFace(t, landmarks.Point2D{X: 200, Y: 150}, landmarks.Point2D{X: 300, Y: 150})
	s.Observe(landmarks.DetectedFrame(set, frameW, frameH))
	s.Tick(time.Now())

	s.Reset()
	assert.Equal(t, DefaultConfig().RestPose(), s.Display())
	assert.Equal(t, StateIdle, s.State())
}

func TestSession_Tuning(t *testing.T) {
	s := newTestSession(t)

	params := s.GetTuningParams()
	assert.Equal(t, DefaultAlpha, params.Alpha)
	require.NotNil(t, params.HoldFrames)
	assert.Equal(t, 0, *params.HoldFrames)

	hold := 2
	shortest := true
	err := s.SetTuningParams(TuningParams{
		Alpha:                0.5,
		HoldFrames:           &hold,
		ShortestPathRotation: &shortest,
	})
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, 0.5, cfg.Alpha)
	assert.Equal(t, 2, cfg.HoldFrames)
	assert.True(t, cfg.ShortestPathRotation)
	assert.Equal(t, DefaultRotationDamping, cfg.RotationDamping, "zero values are not applied")

	// The smoother picks up the new alpha
	s.Start()
	set := ibugFace(t, landmarks.Point2D{X: 200, Y: 150}, landmarks.Point2D{X: 300, Y: 150})
	s.Observe(landmarks.DetectedFrame(set, frameW, frameH))
	u := s.Tick(time.Now())
	assert.InDelta(t, -0.109375*0.5, u.Pose.Position.X, 1e-12)
}

func TestSession_TuningRejectsInvalid(t *testing.T) {
	s := newTestSession(t)

	err := s.SetTuningParams(TuningParams{Alpha: 2})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, DefaultAlpha, s.Config().Alpha)
}

func TestSession_RunPublishes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RenderInterval = time.Millisecond
	s, err := NewSession(cfg)
	require.NoError(t, err)

	sink := &recordingSink{}
	s.SetSink(sink)
	s.Start()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sink.count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSession_ConcurrentObserveTick(t *testing.T) {
	s := newTestSession(t)
	s.Start()
	set := ibugFace(t, landmarks.Point2D{X: 200, Y: 140}, landmarks.Point2D{X: 300, Y: 160})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%5 == 0 {
				s.Observe(landmarks.EmptyFrame(frameW, frameH))
			} else {
				s.Observe(landmarks.DetectedFrame(set, frameW, frameH))
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			u := s.Tick(time.Now())
			if !u.Pose.IsFinite() {
				t.Errorf("non-finite pose at tick %d", i)
				return
			}
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(500), s.GetStats().Ticks)
}
