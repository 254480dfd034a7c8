package analytics

import (
	"strings"
	"time"
)

// Period is the coarse selector a report is computed for
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// DefaultPeriod is used when the caller does not select one
const DefaultPeriod = PeriodMonth

// Periods lists every supported period
var Periods = []Period{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear}

// Granularity is the size of one trend bucket
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// periodSpec is one row of the period configuration table
type periodSpec struct {
	years, months, days int
	granularity         Granularity
	buckets             int
}

var periodTable = map[Period]periodSpec{
	PeriodWeek:    {days: 7, granularity: GranularityDay, buckets: 7},
	PeriodMonth:   {months: 1, granularity: GranularityMonth, buckets: 12},
	PeriodQuarter: {months: 3, granularity: GranularityMonth, buckets: 12},
	PeriodYear:    {years: 1, granularity: GranularityMonth, buckets: 12},
}

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// Window is a half-open [Start, End) time interval
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns the length of the window
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Bucket is one sub-period of a trend series
type Bucket struct {
	Key string
	Window
}

// Resolution is the set of windows a report is computed over
type Resolution struct {
	Period      Period
	Current     Window
	Previous    Window
	Granularity Granularity
	Buckets     []Bucket
}

// Trend returns the window spanned by all trend buckets
func (r *Resolution) Trend() Window {
	return Window{Start: r.Buckets[0].Start, End: r.Buckets[len(r.Buckets)-1].End}
}

// ParsePeriod validates a period selector. An empty selector resolves to DefaultPeriod.
func ParsePeriod(raw string) (Period, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return DefaultPeriod, nil
	}
	p := Period(raw)
	if _, ok := periodTable[p]; !ok {
		return "", &ConfigurationError{Field: "period", Value: raw, Reason: "expected one of week, month, quarter, year"}
	}
	return p, nil
}

// ResolvePeriod maps a period to its current and previous windows and trend buckets.
// The current window ends at now; the previous window ends where the current one starts
// and has the same duration.
func ResolvePeriod(p Period, now time.Time) (*Resolution, error) {
	spec, ok := periodTable[p]
	if !ok {
		return nil, &ConfigurationError{Field: "period", Value: string(p), Reason: "unknown period"}
	}

	current := Window{
		Start: now.AddDate(-spec.years, -spec.months, -spec.days),
		End:   now,
	}
	previous := Window{
		Start: current.Start.Add(-current.Duration()),
		End:   current.Start,
	}

	return &Resolution{
		Period:      p,
		Current:     current,
		Previous:    previous,
		Granularity: spec.granularity,
		Buckets:     trendBuckets(spec.granularity, spec.buckets, now),
	}, nil
}

// trendBuckets returns n contiguous calendar buckets, the last one containing now
func trendBuckets(g Granularity, n int, now time.Time) []Bucket {
	loc := now.Location()
	buckets := make([]Bucket, 0, n)

	switch g {
	case GranularityDay:
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		for i := n - 1; i >= 0; i-- {
			start := today.AddDate(0, 0, -i)
			buckets = append(buckets, Bucket{
				Key:    start.Format(dayKeyLayout),
				Window: Window{Start: start, End: start.AddDate(0, 0, 1)},
			})
		}
	default:
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		for i := n - 1; i >= 0; i-- {
			start := month.AddDate(0, -i, 0)
			buckets = append(buckets, Bucket{
				Key:    start.Format(monthKeyLayout),
				Window: Window{Start: start, End: start.AddDate(0, 1, 0)},
			})
		}
	}
	return buckets
}
