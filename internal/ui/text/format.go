package text

import (
	"fmt"
	"time"
)

// FormatElapsed formats a run duration: "850ms", "4.2s", "3m05s", "1h12m".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FormatExit describes an exit code. Negative codes are signal deaths.
func FormatExit(code int) string {
	if code < 0 {
		return fmt.Sprintf("killed (signal %d)", -code)
	}
	return fmt.Sprintf("exit %d", code)
}
