// Package debug provides global debug logging flags
package debug

import (
	"fmt"

	"github.com/teslashibe/go-tryon/internal/log"
)

// Enabled controls whether debug logging is active
var Enabled bool

// Pose controls whether per-frame pose logs are shown.
// These fire at render rate, so they are off even when Enabled is set.
// Use --debug-pose to turn them on.
var Pose bool

// Log emits a debug message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		log.Debug(fmt.Sprintf(format, args...))
	}
}

// PoseLog emits a per-frame message only if pose debugging is enabled
func PoseLog(msg string, args ...any) {
	if Pose {
		log.Info(msg, args...)
	}
}
