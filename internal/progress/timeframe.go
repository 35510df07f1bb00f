package progress

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is a named lookback window for progress queries.
type Timeframe string

const (
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
	TimeframeQuarter Timeframe = "3months"
	TimeframeYear    Timeframe = "year"
	TimeframeAllTime Timeframe = "all"
)

const defaultTimeframe = TimeframeMonth

// Timeframes lists every supported window, shortest first.
var Timeframes = []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeQuarter, TimeframeYear, TimeframeAllTime}

// ParseTimeframe accepts the canonical names case-insensitively. An empty
// string selects the one-month default.
func ParseTimeframe(s string) (Timeframe, error) {
	if s == "" {
		return defaultTimeframe, nil
	}
	for _, tf := range Timeframes {
		if strings.EqualFold(s, string(tf)) {
			return tf, nil
		}
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// StartDate returns the lower bound of the window relative to now. The
// all-time window has no bound and returns the zero time.
func (t Timeframe) StartDate(now time.Time) time.Time {
	switch t {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	case TimeframeQuarter:
		return now.AddDate(0, -3, 0)
	case TimeframeYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}
