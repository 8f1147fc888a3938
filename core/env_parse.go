package core

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the raw value of an environment variable, trimmed of
// surrounding whitespace.
func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// GetEnvOrDefault returns the value of an environment variable or a default value.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := GetEnv(key); value != "" {
		return value
	}
	return defaultValue
}

// ParseIntEnv parses an environment variable as an integer.
// Returns the default value if the variable is not set or cannot be parsed.
func ParseIntEnv(key string, defaultValue int) int {
	if value := GetEnv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// ParseBoolEnv parses an environment variable as a boolean.
// Accepts case-insensitive "true", "1", "yes", "on" and "false", "0", "no", "off".
// Anything else yields the default.
func ParseBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(GetEnv(key)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

// ParseDurationEnv parses an environment variable as a duration in seconds.
// Go duration strings ("90s", "2m") are accepted as well.
func ParseDurationEnv(key string, defaultSeconds int) time.Duration {
	value := GetEnv(key)
	if value == "" {
		return time.Duration(defaultSeconds) * time.Second
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return time.Duration(defaultSeconds) * time.Second
}
