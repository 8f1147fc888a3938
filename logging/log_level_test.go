package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name         string
		levelStr     string
		defaultLevel zapcore.Level
		expected     zapcore.Level
	}{
		{"debug lowercase", "debug", zapcore.InfoLevel, zapcore.DebugLevel},
		{"info uppercase", "INFO", zapcore.DebugLevel, zapcore.InfoLevel},
		{"warn mixed case", "Warn", zapcore.InfoLevel, zapcore.WarnLevel},
		{"warning alias", "warning", zapcore.InfoLevel, zapcore.WarnLevel},
		{"error", "error", zapcore.InfoLevel, zapcore.ErrorLevel},
		{"fatal", "fatal", zapcore.InfoLevel, zapcore.FatalLevel},
		{"surrounding whitespace", "  debug ", zapcore.InfoLevel, zapcore.DebugLevel},
		{"empty uses default", "", zapcore.WarnLevel, zapcore.WarnLevel},
		{"unknown uses default", "verbose", zapcore.InfoLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.levelStr, tt.defaultLevel); got != tt.expected {
				t.Errorf("ParseLevel(%q, %v) = %v, want %v", tt.levelStr, tt.defaultLevel, got, tt.expected)
			}
		})
	}
}
