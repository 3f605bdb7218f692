package tracking

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/teslashibe/go-tryon/internal/log"
	"github.com/teslashibe/go-tryon/pkg/debug"
	"github.com/teslashibe/go-tryon/pkg/landmarks"
)

// PoseSink receives the display pose after every tick (e.g. a renderer stream).
type PoseSink interface {
	PublishPose(update PoseUpdate)
}

// PoseUpdate is the output of one rendered frame.
type PoseUpdate struct {
	Pose      Pose
	State     State
	HasTarget bool   // A target pose was estimated this tick
	Seq       uint64 // Tick counter
	FrameSeq  uint64 // Seq of the landmark frame used, 0 if none
}

// Stats contains session counters.
type Stats struct {
	SessionID      string  `json:"session_id"`
	Active         bool    `json:"active"`
	State          State   `json:"state"`
	Ticks          uint64  `json:"ticks"`
	FramesObserved uint64  `json:"frames_observed"`
	FramesDetected uint64  `json:"frames_detected"`
	Targets        uint64  `json:"targets"`
	Transitions    uint64  `json:"transitions"`
	Misses         int     `json:"misses"`
	LastFrameAgeMs float64 `json:"last_frame_age_ms"`
}

// Session ties one face to one eyewear placement. The detector side calls
// Observe whenever it has a result; the render side calls Tick once per frame.
// The two sides may run on different goroutines.
type Session struct {
	ID string

	// Latest detector result, swapped atomically (single writer, single reader)
	latest atomic.Pointer[landmarks.Frame]
	active atomic.Bool

	framesObserved atomic.Uint64
	framesDetected atomic.Uint64

	// Guarded by mu
	mu          sync.Mutex
	config      Config
	estimator   *Estimator
	smoother    *Smoother
	sink        PoseSink
	lastState   State
	lastLogged  Pose
	ticks       uint64
	targets     uint64
	transitions uint64

	logger *slog.Logger
}

// NewSession creates a tracking session. Tracking starts inactive; call Start.
func NewSession(config Config) (*Session, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	s := &Session{
		ID:        id,
		config:    config,
		estimator: NewEstimator(config),
		smoother:  NewSmoother(config),
		lastState: StateIdle,
		logger:    log.Component("tracking").With("session", id),
	}
	s.lastLogged = s.smoother.Display()
	return s, nil
}

// SetSink sets where Run publishes poses.
func (s *Session) SetSink(sink PoseSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// Observe records the most recent detector result. Older results are
// overwritten; there is no queue.
func (s *Session) Observe(frame landmarks.Frame) {
	if frame.CapturedAt.IsZero() {
		frame.CapturedAt = time.Now()
	}
	if frame.Observation == nil {
		frame.Observation = landmarks.NotDetected{}
	}
	s.framesObserved.Add(1)
	if _, ok := frame.Observation.(landmarks.Detected); ok {
		s.framesDetected.Add(1)
	}
	s.latest.Store(&frame)
}

// Start enables tracking.
func (s *Session) Start() {
	if !s.active.Swap(true) {
		s.logger.Info("tracking started")
	}
}

// Stop disables tracking. Subsequent ticks drift back to the rest pose.
func (s *Session) Stop() {
	if s.active.Swap(false) {
		s.latest.Store(nil)
		s.logger.Info("tracking stopped")
	}
}

// Active reports whether tracking is enabled.
func (s *Session) Active() bool {
	return s.active.Load()
}

// Tick advances the display pose by one frame using the most recent detector
// result and returns it.
func (s *Session) Tick(now time.Time) PoseUpdate {
	frame := s.currentFrame(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	var target Pose
	var ok bool
	var frameSeq uint64
	if frame != nil {
		target, ok = s.estimator.EstimateFrame(*frame)
		frameSeq = frame.Seq
	}
	if ok {
		s.targets++
	}

	pose := s.smoother.Update(target, ok)
	state := s.smoother.State()
	s.ticks++

	if state != s.lastState {
		s.transitions++
		s.logger.Info("state changed", "from", s.lastState, "to", state, "pose", pose.String())
		s.lastState = state
	}
	if pose.Distance(s.lastLogged) > s.config.LogThreshold {
		debug.PoseLog("pose", "session", s.ID, "pose", pose.String(), "target", ok)
		s.lastLogged = pose
	}

	return PoseUpdate{
		Pose:      pose,
		State:     state,
		HasTarget: ok,
		Seq:       s.ticks,
		FrameSeq:  frameSeq,
	}
}

// currentFrame returns the frame to estimate from, or nil when tracking is
// off, nothing has been observed, or the last result is stale.
func (s *Session) currentFrame(now time.Time) *landmarks.Frame {
	if !s.active.Load() {
		return nil
	}
	f := s.latest.Load()
	if f == nil {
		return nil
	}
	s.mu.Lock()
	staleAfter := s.config.StaleAfter
	s.mu.Unlock()
	if staleAfter > 0 && now.Sub(f.CapturedAt) > staleAfter {
		return nil
	}
	return f
}

// Run ticks at the configured render interval and publishes each pose to the
// sink until ctx is cancelled. Hosts with their own render loop call Tick
// directly instead.
func (s *Session) Run(ctx context.Context) {
	s.mu.Lock()
	interval := s.config.RenderInterval
	s.mu.Unlock()
	if interval <= 0 {
		interval = DefaultConfig().RenderInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("render loop started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("render loop stopped")
			return
		case now := <-ticker.C:
			update := s.Tick(now)
			s.mu.Lock()
			sink := s.sink
			s.mu.Unlock()
			if sink != nil {
				sink.PublishPose(update)
			}
		}
	}
}

// Display returns the current display pose.
func (s *Session) Display() Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.smoother.Display()
}

// State returns the current smoother state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.smoother.State()
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Reset snaps the display back to rest and forgets the last detector result.
func (s *Session) Reset() {
	s.latest.Store(nil)
	s.mu.Lock()
	s.smoother.Reset()
	s.lastState = StateIdle
	s.mu.Unlock()
}

// GetStats returns session counters.
func (s *Session) GetStats() Stats {
	s.mu.Lock()
	stats := Stats{
		SessionID:   s.ID,
		State:       s.smoother.State(),
		Ticks:       s.ticks,
		Targets:     s.targets,
		Transitions: s.transitions,
		Misses:      s.smoother.Misses(),
	}
	s.mu.Unlock()

	stats.Active = s.active.Load()
	stats.FramesObserved = s.framesObserved.Load()
	stats.FramesDetected = s.framesDetected.Load()
	if f := s.latest.Load(); f != nil {
		stats.LastFrameAgeMs = float64(time.Since(f.CapturedAt).Microseconds()) / 1000
	}
	return stats
}
