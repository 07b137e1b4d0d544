package domain

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{532.1, "532.10"},
		{1500, "1.50K"},
		{2_340_000, "2.34M"},
		{7_100_000_000, "7.10B"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(12.34); got != "+12.3%" {
		t.Errorf("positive: got %s", got)
	}
	if got := FormatPercent(-5.67); got != "-5.7%" {
		t.Errorf("negative: got %s", got)
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.UnixMilli(10_000_000_000)

	tests := []struct {
		ageMs int64
		want  string
	}{
		{30_000, "30s"},
		{5 * 60_000, "5m"},
		{3 * 3_600_000, "3h"},
		{50 * 3_600_000, "2d"},
	}

	for _, tt := range tests {
		if got := TimeAgo(now.UnixMilli()-tt.ageMs, now); got != tt.want {
			t.Errorf("TimeAgo(age %dms) = %s, want %s", tt.ageMs, got, tt.want)
		}
	}
}

func TestTruncateAddress(t *testing.T) {
	if got := TruncateAddress("4Nd1mYQprsVqRte4LLzTnmX2DuXhPzv7R6sMqUCALgJh", 4); got != "4Nd1...LgJh" {
		t.Errorf("got %s", got)
	}
	if got := TruncateAddress("short", 4); got != "short" {
		t.Errorf("short address should be untouched, got %s", got)
	}
}
