package config

import "time"

// TimeoutConfig holds timeout settings for store access and watching.
type TimeoutConfig struct {
	// Query bounds each statement sent to the store. Zero disables the deadline.
	// Default: 0
	Query time.Duration `mapstructure:"query" validate:"gte=0"`

	// WatchDebounce is how long list --watch waits for writes to settle
	// before reprinting. Default: 250ms
	WatchDebounce time.Duration `mapstructure:"watch_debounce" validate:"gte=0"`
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Query:         0,
		WatchDebounce: 250 * time.Millisecond,
	}
}
