package usage

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/mod/semver"
)

// HourPoint is the unit total for one hour of the window.
type HourPoint struct {
	Hour  time.Time
	Units int
}

// Totals is the outcome of one aggregation pass. Earliest is nil when no
// event qualified, which is how callers distinguish "no data yet" from
// genuine zero usage.
type Totals struct {
	Used       int
	Earliest   *time.Time
	CLIVersion string
	Hourly     []HourPoint
}

// Aggregator folds events into window totals. The seen set is global
// across the whole scan so an identity observed through overlapping file
// reads is only counted once; Add is safe for concurrent use so readers
// may be parallelized.
type Aggregator struct {
	mu          sync.Mutex
	windowStart time.Time
	seen        map[string]struct{}
	used        int
	earliest    *time.Time
	cliVersion  string
	hourly      map[time.Time]int
}

func NewAggregator(windowStart time.Time) *Aggregator {
	return &Aggregator{
		windowStart: windowStart,
		seen:        make(map[string]struct{}),
		hourly:      make(map[time.Time]int),
	}
}

// Add folds one event into the running totals. Events before the window
// start are discarded. An event without an identity or usage payload still
// moves the earliest marker but adds nothing to the sum; a replayed
// identity adds nothing at all.
func (a *Aggregator) Add(ev Event) {
	if ev.Timestamp.Before(a.windowStart) {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.earliest == nil || ev.Timestamp.Before(*a.earliest) {
		ts := ev.Timestamp
		a.earliest = &ts
	}

	if ev.CLIVersion != "" && newerVersion(ev.CLIVersion, a.cliVersion) {
		a.cliVersion = ev.CLIVersion
	}

	if ev.Identity == "" || !ev.HasUsage {
		return
	}
	if _, dup := a.seen[ev.Identity]; dup {
		return
	}
	a.seen[ev.Identity] = struct{}{}

	units := ev.Units()
	a.used += units
	a.hourly[truncateToHour(ev.Timestamp.UTC())] += units
}

// Totals returns the aggregated result. The hourly series is sorted by
// hour so the outcome does not depend on file visit order.
func (a *Aggregator) Totals() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()

	hours := make([]time.Time, 0, len(a.hourly))
	for h := range a.hourly {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	series := make([]HourPoint, 0, len(hours))
	for _, h := range hours {
		series = append(series, HourPoint{Hour: h, Units: a.hourly[h]})
	}

	var earliest *time.Time
	if a.earliest != nil {
		ts := *a.earliest
		earliest = &ts
	}

	return Totals{
		Used:       a.used,
		Earliest:   earliest,
		CLIVersion: a.cliVersion,
		Hourly:     series,
	}
}

// Aggregate folds a slice of events against a window start.
func Aggregate(events []Event, windowStart time.Time) Totals {
	agg := NewAggregator(windowStart)
	for _, ev := range events {
		agg.Add(ev)
	}
	return agg.Totals()
}

func newerVersion(candidate, current string) bool {
	if current == "" {
		return true
	}
	c, cur := "v"+candidate, "v"+current
	if !semver.IsValid(c) {
		return false
	}
	if !semver.IsValid(cur) {
		return true
	}
	return semver.Compare(c, cur) > 0
}
