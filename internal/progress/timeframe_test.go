package progress

import (
	"testing"
	"time"
)

// TestParseTimeframe covers canonical names, casing, the default and errors.
func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in      string
		want    Timeframe
		wantErr bool
	}{
		{"week", TimeframeWeek, false},
		{"MONTH", TimeframeMonth, false},
		{"3months", TimeframeQuarter, false},
		{"Year", TimeframeYear, false},
		{"all", TimeframeAllTime, false},
		{"", TimeframeMonth, false},
		{"fortnight", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeframe(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimeframe(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTimeframe(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestStartDate verifies each window's lower bound.
func TestStartDate(t *testing.T) {
	now := time.Date(2026, 5, 31, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		tf   Timeframe
		want time.Time
	}{
		{TimeframeWeek, time.Date(2026, 5, 24, 10, 0, 0, 0, time.UTC)},
		{TimeframeMonth, now.AddDate(0, -1, 0)},
		{TimeframeQuarter, now.AddDate(0, -3, 0)},
		{TimeframeYear, time.Date(2025, 5, 31, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := tt.tf.StartDate(now); !got.Equal(tt.want) {
			t.Errorf("%s.StartDate = %v, want %v", tt.tf, got, tt.want)
		}
	}
	if got := TimeframeAllTime.StartDate(now); !got.IsZero() {
		t.Errorf("all.StartDate = %v, want zero time", got)
	}
}
