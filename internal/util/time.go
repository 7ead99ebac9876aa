package util

import (
	"fmt"
	"time"
)

// RelativeTime formats t relative to now (e.g., "2 hours ago")
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour") + " ago"
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day") + " ago"
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week") + " ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

// RelativeTimeShort formats a time as a short relative string (e.g., "2h ago")
func RelativeTimeShort(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(diff.Hours()/24/7))
	default:
		return t.Format("Jan 2")
	}
}

// ExpiresIn describes the time left before an invite expires.
func ExpiresIn(expires, now time.Time) string {
	left := expires.Sub(now)
	switch {
	case left <= 0:
		return "expired"
	case left < time.Hour:
		return "in " + plural(int(left.Minutes())+1, "minute")
	case left < 24*time.Hour:
		return "in " + plural(int(left.Hours()), "hour")
	default:
		return "in " + plural(int(left.Hours()/24), "day")
	}
}

// ParseTTL parses an invite lifetime such as "7d", "36h" or "90m".
// Days are not understood by time.ParseDuration, so they are handled here.
func ParseTTL(s string) (time.Duration, error) {
	if n := len(s); n > 1 && s[n-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s[:n-1], "%d", &days); err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	return d, nil
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
