package domain

import (
	"fmt"
	"time"
)

// FormatNumber renders a metric with a K/M/B suffix for compact display.
func FormatNumber(n float64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.2fK", n/1e3)
	default:
		return fmt.Sprintf("%.2f", n)
	}
}

// FormatCurrency renders a dollar amount with a compact suffix.
func FormatCurrency(n float64) string {
	return "$" + FormatNumber(n)
}

// FormatPercent renders a signed percentage with one decimal place.
func FormatPercent(n float64) string {
	if n >= 0 {
		return fmt.Sprintf("+%.1f%%", n)
	}
	return fmt.Sprintf("%.1f%%", n)
}

// TimeAgo renders the elapsed time since a millisecond timestamp as a
// short age string (12s, 4m, 3h, 2d).
func TimeAgo(timestampMs int64, now time.Time) string {
	elapsed := now.Sub(time.UnixMilli(timestampMs))
	if elapsed < 0 {
		elapsed = 0
	}
	switch {
	case elapsed < time.Minute:
		return fmt.Sprintf("%ds", int(elapsed.Seconds()))
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd", int(elapsed.Hours())/24)
	}
}

// TruncateAddress shortens a chain address for display, keeping the
// first and last chars characters.
func TruncateAddress(address string, chars int) string {
	if chars <= 0 {
		chars = 4
	}
	if len(address) <= 2*chars {
		return address
	}
	return address[:chars] + "..." + address[len(address)-chars:]
}
