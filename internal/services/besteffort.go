package services

import "github.com/spinspot/server/internal/logger"

// BestEffort runs a non-critical side operation and converts any failure
// into a logged no-op. This is the single boundary where such failures are
// swallowed; internal code keeps returning errors normally.
func BestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		logger.GetLogger("besteffort").Warnf("%s failed: %v", name, err)
	}
}
