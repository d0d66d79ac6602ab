package usage

import (
	"sort"
	"time"
)

// WindowDuration is the fixed length of one accounting window. The upstream
// service resets quotas on a rolling 5-hour basis anchored to first
// activity, not wall-clock midnight.
const WindowDuration = 5 * time.Hour

// Window is one half-open accounting window [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func truncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func windowAt(start time.Time) Window {
	return Window{Start: start, End: start.Add(WindowDuration)}
}

// AnchoredWindow computes the active window when the user has pinned a
// reset hour. The day tiles into five boundaries spaced 5 hours apart
// starting at anchorHour in loc; the window starts at the latest boundary
// not after the current hour, rolling back into the previous day when the
// current hour precedes all of today's boundaries.
func AnchoredWindow(now time.Time, anchorHour int, loc *time.Location) Window {
	local := now.In(loc)
	currentHour := truncateToHour(local)

	var best time.Time
	for _, dayOffset := range []int{-1, 0} {
		for k := 0; k < 5; k++ {
			hour := (anchorHour + 5*k) % 24
			candidate := time.Date(local.Year(), local.Month(), local.Day()+dayOffset,
				hour, 0, 0, 0, loc)
			if candidate.After(currentHour) {
				continue
			}
			if best.IsZero() || candidate.After(best) {
				best = candidate
			}
		}
	}
	return windowAt(best)
}

// InferBlocks runs the boundary-advance scan over raw event timestamps and
// returns every session block start, oldest first. A new block starts when
// the gap since the previous event reaches the window duration or the
// current event falls past the running block's end.
func InferBlocks(stamps []time.Time) []time.Time {
	if len(stamps) == 0 {
		return nil
	}

	sorted := make([]time.Time, len(stamps))
	for i, ts := range stamps {
		sorted[i] = ts.UTC()
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	blockStart := truncateToHour(sorted[0])
	starts := []time.Time{blockStart}
	prev := sorted[0]

	for _, ts := range sorted[1:] {
		blockEnd := blockStart.Add(WindowDuration)
		if ts.Sub(prev) >= WindowDuration || !ts.Before(blockEnd) {
			blockStart = truncateToHour(ts)
			starts = append(starts, blockStart)
		}
		prev = ts
	}
	return starts
}

// InferWindow derives the active window from recent activity. With no
// events the window is anchored to the current hour. When "now" has moved
// past the last inferred block, or sits before it due to clock skew or
// stale data, the window likewise rolls to the current hour.
func InferWindow(now time.Time, stamps []time.Time) Window {
	now = now.UTC()

	starts := InferBlocks(stamps)
	if len(starts) == 0 {
		return windowAt(truncateToHour(now))
	}

	candidate := windowAt(starts[len(starts)-1])
	if candidate.Contains(now) {
		return candidate
	}
	return windowAt(truncateToHour(now))
}
