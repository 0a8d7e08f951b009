package web

import (
	"fmt"
	"time"
)

// RelativeTime describes t relative to now in whole hours or days.
// The zero time renders as "".
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	hours := int(now.Sub(t) / time.Hour)
	switch {
	case hours < 1:
		return "just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case hours < 48:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", hours/24)
	}
}
