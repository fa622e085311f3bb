package constants

import "time"

// RFC 3339 date-time format string.
// Use this format for all date-time serialization and communication with external systems.
const RFC3339DateTimeFormat = "2006-01-02T15:04:05Z07:00"

// Default rate limiting configuration
const (
	// DefaultRateLimitRequests is the default number of requests allowed per time window
	DefaultRateLimitRequests = 100
	// DefaultRateLimitWindowMinutes is the default time window for rate limiting
	DefaultRateLimitWindowMinutes = 1
	// DefaultSignupRequestsPerMinute bounds signup POSTs per client, independent of the global limit
	DefaultSignupRequestsPerMinute = 30
)

// Waitlist defaults
const (
	DefaultSessionTTL        = 30 * time.Minute
	DefaultBreakerFailures   = 5
	DefaultBreakerRecovery   = 30 * time.Second
	DefaultDBConnectAttempts = 3
	MaxEmailLength           = 254
)

// DefaultRateLimitWindow returns the default rate limit window duration
func DefaultRateLimitWindow() time.Duration {
	return time.Duration(DefaultRateLimitWindowMinutes) * time.Minute
}
