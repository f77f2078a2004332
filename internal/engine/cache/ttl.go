package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL and capacity defaults.
const (
	// DefaultTTLSeconds is the default entry lifetime (5 minutes).
	DefaultTTLSeconds = 300

	// MinTTLSeconds is the minimum allowed TTL.
	MinTTLSeconds = 10

	// MaxTTLSeconds is the maximum allowed TTL (1 day).
	MaxTTLSeconds = 86400

	// DefaultMaxEntries is the default per-store entry cap.
	DefaultMaxEntries = 180

	// minutesPerHour is used for duration formatting calculations.
	minutesPerHour = 60

	// hoursPerDay is used for duration formatting calculations.
	hoursPerDay = 24

	// EnvTTLSeconds is the environment variable for overriding TTL.
	EnvTTLSeconds = "DROUGHTWATCH_CACHE_TTL_SECONDS"

	// EnvCacheEnabled is the environment variable for enabling/disabling cache.
	EnvCacheEnabled = "DROUGHTWATCH_CACHE_ENABLED"

	// EnvMaxEntries is the environment variable for the per-store entry cap.
	EnvMaxEntries = "DROUGHTWATCH_CACHE_MAX_ENTRIES"

	// EnvRedisURL is the environment variable selecting the Redis backend.
	EnvRedisURL = "DROUGHTWATCH_REDIS_URL"
)

// TTL validation errors.
var (
	ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)
)

// TTLConfig holds cache TTL configuration with validation.
type TTLConfig struct {
	// Seconds is the TTL duration in seconds.
	Seconds int

	// Duration is the TTL as a time.Duration.
	Duration time.Duration
}

// NewTTLConfig creates a TTL configuration with validation.
// Returns an error if the TTL is outside the valid range.
func NewTTLConfig(seconds int) (*TTLConfig, error) {
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}

	return &TTLConfig{
		Seconds:  seconds,
		Duration: time.Duration(seconds) * time.Second,
	}, nil
}

// DefaultTTLConfig returns the default TTL configuration.
func DefaultTTLConfig() *TTLConfig {
	return &TTLConfig{
		Seconds:  DefaultTTLSeconds,
		Duration: time.Duration(DefaultTTLSeconds) * time.Second,
	}
}

// GetTTLFromEnv reads the TTL from the environment or returns the
// default. Out-of-range or unparsable values fall back to the default.
func GetTTLFromEnv() int {
	envVal := os.Getenv(EnvTTLSeconds)
	if envVal == "" {
		return DefaultTTLSeconds
	}

	ttl, err := strconv.Atoi(envVal)
	if err != nil {
		return DefaultTTLSeconds
	}

	if ttl < MinTTLSeconds || ttl > MaxTTLSeconds {
		return DefaultTTLSeconds
	}

	return ttl
}

// GetCacheEnabledFromEnv reads the cache enabled flag from the
// environment. Returns true by default if the variable is not set.
func GetCacheEnabledFromEnv() bool {
	envVal := os.Getenv(EnvCacheEnabled)
	if envVal == "" {
		return true
	}

	enabled, err := strconv.ParseBool(envVal)
	if err != nil {
		return true
	}

	return enabled
}

// GetMaxEntriesFromEnv reads the per-store entry cap from the
// environment. Returns DefaultMaxEntries if not set or invalid.
func GetMaxEntriesFromEnv() int {
	envVal := os.Getenv(EnvMaxEntries)
	if envVal == "" {
		return DefaultMaxEntries
	}

	maxEntries, err := strconv.Atoi(envVal)
	if err != nil {
		return DefaultMaxEntries
	}

	if maxEntries <= 0 {
		return DefaultMaxEntries
	}

	return maxEntries
}

// GetRedisURLFromEnv reads the Redis URL from the environment.
// Returns an empty string if not set (caller keeps the memory backend).
func GetRedisURLFromEnv() string {
	return os.Getenv(EnvRedisURL)
}

// FormatDuration formats a duration in a human-readable way.
// Examples: "45s", "30m", "1h30m", "2d".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
	if d < hoursPerDay*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % minutesPerHour
		if minutes == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if hours == 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dd%dh", days, hours)
}

// ParseTTL parses a TTL string in various formats:
// - Integer seconds: "300".
// - Duration string: "5m", "1h30m".
func ParseTTL(s string) (int, error) {
	// Try parsing as integer seconds first
	if seconds, err := strconv.Atoi(s); err == nil {
		if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
			return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
		}
		return seconds, nil
	}

	// Try parsing as duration
	duration, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}

	seconds := int(duration.Seconds())
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}

	return seconds, nil
}
