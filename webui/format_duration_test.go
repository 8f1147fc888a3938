package webui

import (
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"zero", 0, "just now"},
		{"negative", -5 * time.Minute, "just now"},
		{"sub-second", 500 * time.Millisecond, "just now"},
		{"seconds", 45 * time.Second, "45s ago"},
		{"minutes", 2*time.Minute + 30*time.Second, "2m 30s ago"},
		{"exact minute", time.Minute, "1m 0s ago"},
		{"hours", 2*time.Hour + 34*time.Minute + 10*time.Second, "2h 34m ago"},
		{"days", 3*24*time.Hour + 5*time.Hour, "3d 5h ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAge(tt.in); got != tt.want {
				t.Errorf("FormatAge(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
