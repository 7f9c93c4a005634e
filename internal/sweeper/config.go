package sweeper

import "time"

// Config controls how often the sweeper scans and how large each scan is.
type Config struct {
	Interval time.Duration
	PageSize int
}

// DefaultConfig returns the standard sweep settings.
func DefaultConfig() *Config {
	return &Config{
		Interval: 1 * time.Minute,
		PageSize: 200,
	}
}
