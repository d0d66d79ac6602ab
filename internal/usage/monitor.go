package usage

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mlipski/tokengauge/internal/plan"
)

// TierSource supplies the account's plan tier string. An empty string or
// an error both resolve to the default plan; credential failures belong to
// the collaborator, never to the aggregation itself.
type TierSource interface {
	Tier() (string, error)
}

// Snapshot is the usage estimate handed to presentation callers.
type Snapshot struct {
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	WindowEnd time.Time `json:"window_end"`
}

// Report is a snapshot plus the display context around it.
type Report struct {
	Snapshot
	Window      Window      `json:"window"`
	PlanName    string      `json:"plan_name"`
	Tier        string      `json:"tier,omitempty"`
	Earliest    *time.Time  `json:"earliest,omitempty"`
	Hourly      []HourPoint `json:"-"`
	CLIVersion  string      `json:"cli_version,omitempty"`
	FilesViewed int         `json:"files_viewed"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// UsedPercent returns used/limit as 0–100, capped at 100.
func (r Report) UsedPercent() float64 {
	if r.Limit <= 0 {
		return 0
	}
	pct := float64(r.Used) / float64(r.Limit) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Monitor runs the full pipeline: window detection, log scan, aggregation,
// and limit resolution. It holds no state between queries beyond what its
// collaborators cache themselves.
type Monitor struct {
	source Source
	limits plan.Table
	tier   TierSource
	anchor *int
	loc    *time.Location
	log    zerolog.Logger
	now    func() time.Time
}

// MonitorOptions configures a Monitor. Roots is required; everything else
// has a working default.
type MonitorOptions struct {
	Roots      []string
	Limits     plan.Table
	Tier       TierSource
	AnchorHour *int // 0-23 pins window boundaries; nil infers them
	Location   *time.Location
	Cache      FileCache
	Logger     zerolog.Logger
	Now        func() time.Time
}

func NewMonitor(opts MonitorOptions) *Monitor {
	m := &Monitor{
		source: Source{Roots: opts.Roots, Cache: opts.Cache},
		limits: opts.Limits,
		tier:   opts.Tier,
		anchor: opts.AnchorHour,
		loc:    opts.Location,
		log:    opts.Logger,
		now:    opts.Now,
	}
	if m.loc == nil {
		m.loc = time.UTC
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Snapshot computes the current usage estimate. Missing log roots and
// malformed records were already degraded to "no events" further down, so
// the worst case is a zero snapshot against the default ceiling.
func (m *Monitor) Snapshot() Report {
	now := m.now()
	window := m.activeWindow(now)

	files := CandidateFiles(m.source.Roots, window.Start)
	agg := NewAggregator(window.Start)
	for _, fi := range files {
		for _, ev := range m.source.fileEvents(fi) {
			agg.Add(ev)
		}
	}
	totals := agg.Totals()

	tier := m.resolveTier()
	limit := m.limits.ResolveLimit(tier)

	remaining := limit - totals.Used
	if remaining < 0 {
		remaining = 0
	}

	m.log.Info().
		Int("used", totals.Used).
		Int("limit", limit).
		Int("files", len(files)).
		Time("window_start", window.Start).
		Time("window_end", window.End).
		Msg("usage snapshot")

	return Report{
		Snapshot: Snapshot{
			Used:      totals.Used,
			Limit:     limit,
			Remaining: remaining,
			WindowEnd: window.End,
		},
		Window:      window,
		PlanName:    m.limits.ResolveName(tier),
		Tier:        tier,
		Earliest:    totals.Earliest,
		Hourly:      totals.Hourly,
		CLIVersion:  totals.CLIVersion,
		FilesViewed: len(files),
		GeneratedAt: now,
	}
}

// SessionBlocks aggregates the last 24 hours into inferred 5-hour blocks,
// oldest first. Dedup is still global across the scan so a block total
// never double-counts replayed identities.
func (m *Monitor) SessionBlocks() []BlockReport {
	now := m.now()
	horizon := now.Add(-24 * time.Hour)

	var events []Event
	for _, ev := range m.source.Events(horizon) {
		if !ev.Timestamp.Before(horizon) {
			events = append(events, ev)
		}
	}

	stamps := make([]time.Time, 0, len(events))
	for _, ev := range events {
		stamps = append(stamps, ev.Timestamp)
	}

	starts := InferBlocks(stamps)
	if len(starts) == 0 {
		return nil
	}

	blocks := make([]BlockReport, len(starts))
	aggs := make([]*Aggregator, len(starts))
	for i, start := range starts {
		blocks[i].Window = windowAt(start)
		aggs[i] = NewAggregator(start)
	}

	seen := make(map[string]struct{})
	for _, ev := range events {
		for i := len(blocks) - 1; i >= 0; i-- {
			if !blocks[i].Window.Contains(ev.Timestamp) {
				continue
			}
			if ev.Identity != "" {
				if _, dup := seen[ev.Identity]; dup {
					break
				}
				seen[ev.Identity] = struct{}{}
			}
			aggs[i].Add(ev)
			break
		}
	}

	for i := range blocks {
		totals := aggs[i].Totals()
		blocks[i].Used = totals.Used
		blocks[i].Events = len(aggs[i].seen)
	}
	return blocks
}

// BlockReport is one inferred session block with its unit total.
type BlockReport struct {
	Window Window
	Used   int
	Events int
}

func (m *Monitor) activeWindow(now time.Time) Window {
	if m.anchor != nil && *m.anchor >= 0 && *m.anchor <= 23 {
		return AnchoredWindow(now, *m.anchor, m.loc)
	}
	horizon := now.Add(-24 * time.Hour)
	var stamps []time.Time
	for _, ts := range m.source.Timestamps(horizon) {
		if !ts.Before(horizon) {
			stamps = append(stamps, ts)
		}
	}
	return InferWindow(now, stamps)
}

func (m *Monitor) resolveTier() string {
	if m.tier == nil {
		return ""
	}
	tier, err := m.tier.Tier()
	if err != nil {
		m.log.Warn().Err(err).Msg("tier lookup failed, using default plan")
		return ""
	}
	return tier
}
