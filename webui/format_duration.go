package webui

import (
	"fmt"
	"time"
)

// FormatAge renders how long ago something happened, with at most two units:
// "just now", "45s ago", "2m 30s ago", "2h 34m ago", "3d 5h ago".
// Negative ages (clock skew) read as "just now".
func FormatAge(d time.Duration) string {
	if d < time.Second {
		return "just now"
	}

	const day = 24 * time.Hour

	days := d / day
	d %= day
	hours := d / time.Hour
	d %= time.Hour
	minutes := d / time.Minute
	d %= time.Minute
	seconds := d / time.Second

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh ago", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm ago", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds ago", minutes, seconds)
	default:
		return fmt.Sprintf("%ds ago", seconds)
	}
}
