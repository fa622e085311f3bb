package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))

	if v == "" {
		return defaultValue
	}

	return v
}

// GetEnvPositiveInt ignores values that do not parse or are not > 0.
func GetEnvPositiveInt(key string, defaultValue int) int {
	if raw := GetEnvTrimmed(key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}

	return defaultValue
}

// GetEnvPositiveDuration accepts Go duration syntax ("30s", "5m").
func GetEnvPositiveDuration(key string, defaultValue time.Duration) time.Duration {
	if raw := GetEnvTrimmed(key); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}

	return defaultValue
}

func GetEnvBool(key string, defaultValue bool) bool {
	raw := GetEnvTrimmed(key)
	if raw == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}

	return b
}
