package market

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is an enumerated bar interval, ordered by duration.
type Granularity int

const (
	K1M Granularity = iota
	K3M
	K5M
	K15M
	K30M
	K60M
	KDay
	KWeek
	KMonth
	KQuarter
	KYear
)

var granularityNames = map[Granularity]string{
	K1M:      "K_1M",
	K3M:      "K_3M",
	K5M:      "K_5M",
	K15M:     "K_15M",
	K30M:     "K_30M",
	K60M:     "K_60M",
	KDay:     "K_DAY",
	KWeek:    "K_WEEK",
	KMonth:   "K_MON",
	KQuarter: "K_QUARTER",
	KYear:    "K_YEAR",
}

func (g Granularity) String() string {
	if s, ok := granularityNames[g]; ok {
		return s
	}
	return fmt.Sprintf("K_UNKNOWN(%d)", int(g))
}

// ParseGranularity accepts the CLI / config spelling ("K_1M", "K_DAY", ...).
func ParseGranularity(s string) (Granularity, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for g, name := range granularityNames {
		if name == want {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown granularity %q", s)
}

// Duration returns the nominal span of one bar. Calendar granularities use
// fixed approximations; ordering is what matters, not exact length.
func (g Granularity) Duration() time.Duration {
	switch g {
	case K1M:
		return time.Minute
	case K3M:
		return 3 * time.Minute
	case K5M:
		return 5 * time.Minute
	case K15M:
		return 15 * time.Minute
	case K30M:
		return 30 * time.Minute
	case K60M:
		return time.Hour
	case KDay:
		return 24 * time.Hour
	case KWeek:
		return 7 * 24 * time.Hour
	case KMonth:
		return 30 * 24 * time.Hour
	case KQuarter:
		return 91 * 24 * time.Hour
	case KYear:
		return 365 * 24 * time.Hour
	}
	return 0
}

// Intraday reports whether the granularity is finer than one day.
func (g Granularity) Intraday() bool {
	return g < KDay
}
