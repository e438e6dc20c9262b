package helpers

import (
	"time"

	"github.com/yigit/schooldir/internal/pkg/logger"
)

// ParseDuration parses a Go duration such as "1h" or "90s". Invalid or
// non-positive values fall back to def with a warning.
func ParseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		logger.Warn().Err(err).Str("value", s).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}
