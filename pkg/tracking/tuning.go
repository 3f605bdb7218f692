package tracking

import "fmt"

// TuningParams holds the real-time adjustable tracking parameters.
// These can be modified via the tuning API without restarting the session.
type TuningParams struct {
	// Smoothing
	Alpha float64 `json:"alpha"` // Blend factor per frame (0.05=smooth, 0.25=responsive)

	// Estimation
	RotationDamping  float64 `json:"rotation_damping"`  // Fraction of roll applied to the mesh
	ScaleCoefficient float64 `json:"scale_coefficient"` // Render scale per pixel of eye separation

	// Extensions (pointers so zero can be set explicitly)
	HoldFrames           *int  `json:"hold_frames,omitempty"`
	ShortestPathRotation *bool `json:"shortest_path_rotation,omitempty"`
}

// GetTuningParams returns current tuning parameters from the session.
func (s *Session) GetTuningParams() TuningParams {
	s.mu.Lock()
	defer s.mu.Unlock()

	hold := s.config.HoldFrames
	shortest := s.config.ShortestPathRotation
	return TuningParams{
		Alpha:                s.config.Alpha,
		RotationDamping:      s.config.RotationDamping,
		ScaleCoefficient:     s.config.ScaleCoefficient,
		HoldFrames:           &hold,
		ShortestPathRotation: &shortest,
	}
}

// SetTuningParams updates tuning parameters at runtime.
// Only non-zero (or non-nil) values are applied. The display pose and state
// carry over; nothing snaps.
func (s *Session) SetTuningParams(params TuningParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.config
	if params.Alpha > 0 {
		cfg.Alpha = params.Alpha
	}
	if params.RotationDamping > 0 {
		cfg.RotationDamping = params.RotationDamping
	}
	if params.ScaleCoefficient > 0 {
		cfg.ScaleCoefficient = params.ScaleCoefficient
	}
	if params.HoldFrames != nil {
		cfg.HoldFrames = *params.HoldFrames
	}
	if params.ShortestPathRotation != nil {
		cfg.ShortestPathRotation = *params.ShortestPathRotation
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}

	s.config = cfg
	s.estimator = NewEstimator(cfg)
	s.smoother.Alpha = cfg.Alpha
	s.smoother.HoldFrames = cfg.HoldFrames
	s.smoother.ShortestPathRotation = cfg.ShortestPathRotation

	s.logger.Info("tuning updated",
		"alpha", cfg.Alpha,
		"rotation_damping", cfg.RotationDamping,
		"scale_coefficient", cfg.ScaleCoefficient,
		"hold_frames", cfg.HoldFrames,
		"shortest_path_rotation", cfg.ShortestPathRotation)
	return nil
}
