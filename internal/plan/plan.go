// Package plan maps subscription tier strings to quota ceilings. Tier
// strings are opaque labels with prefixes and suffixes around the
// informative token (e.g. "default_claude_max_5x"), so lookup uses
// case-folded substring containment. Keys are matched longest first: a
// tier containing "max_5x" must hit the Max 5x entry even though it also
// contains "max".
package plan

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Entry is one tier-substring → ceiling pair.
type Entry struct {
	Key   string
	Limit int
	Name  string
}

// Table is an ordered limit table. Entries are held in match precedence
// order (descending key length, then lexicographic for determinism).
type Table struct {
	entries      []Entry
	defaultLimit int
	defaultName  string
}

// Shipped ceilings are best-effort community estimates of tokens per
// 5-hour window, not upstream-published values. Override them in settings
// when they drift.
const (
	defaultProLimit = 44_000
	defaultName     = "Pro"
)

// DefaultTable returns the built-in tier table.
func DefaultTable() Table {
	return NewTable([]Entry{
		{Key: "max_20x", Limit: 20 * defaultProLimit, Name: "Max 20x"},
		{Key: "max_5x", Limit: 5 * defaultProLimit, Name: "Max 5x"},
		{Key: "max", Limit: 5 * defaultProLimit, Name: "Max"},
		{Key: "enterprise", Limit: 20 * defaultProLimit, Name: "Enterprise"},
		{Key: "team", Limit: defaultProLimit, Name: "Team"},
		{Key: "pro", Limit: defaultProLimit, Name: "Pro"},
		{Key: "free", Limit: defaultProLimit / 4, Name: "Free"},
	}, defaultProLimit, defaultName)
}

// NewTable builds a table with the given entries and fallbacks, normalizing
// keys and sorting them into match precedence order.
func NewTable(entries []Entry, fallbackLimit int, fallbackName string) Table {
	normalized := lo.Map(entries, func(e Entry, _ int) Entry {
		e.Key = strings.ToLower(strings.TrimSpace(e.Key))
		return e
	})
	normalized = lo.Filter(normalized, func(e Entry, _ int) bool { return e.Key != "" })

	sort.SliceStable(normalized, func(i, j int) bool {
		if len(normalized[i].Key) != len(normalized[j].Key) {
			return len(normalized[i].Key) > len(normalized[j].Key)
		}
		return normalized[i].Key < normalized[j].Key
	})

	return Table{
		entries:      normalized,
		defaultLimit: fallbackLimit,
		defaultName:  fallbackName,
	}
}

// WithOverrides returns a copy of the table with limits replaced or added
// from the given key → ceiling map. An overridden key keeps its display
// name; a new key is displayed as-is.
func (t Table) WithOverrides(overrides map[string]int) Table {
	if len(overrides) == 0 {
		return t
	}

	merged := make([]Entry, len(t.entries))
	copy(merged, t.entries)

	keys := lo.Keys(overrides)
	sort.Strings(keys)
	for _, key := range keys {
		limit := overrides[key]
		norm := strings.ToLower(strings.TrimSpace(key))
		found := false
		for i := range merged {
			if merged[i].Key == norm {
				merged[i].Limit = limit
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, Entry{Key: norm, Limit: limit, Name: key})
		}
	}
	return NewTable(merged, t.defaultLimit, t.defaultName)
}

func (t Table) match(tier string) (Entry, bool) {
	folded := strings.ToLower(tier)
	for _, e := range t.entries {
		if strings.Contains(folded, e.Key) {
			return e, true
		}
	}
	return Entry{}, false
}

// ResolveLimit maps a tier string to its quota ceiling. An absent or
// unrecognized tier resolves to the default ceiling, never zero.
func (t Table) ResolveLimit(tier string) int {
	if tier == "" {
		return t.defaultLimit
	}
	if e, ok := t.match(tier); ok {
		return e.Limit
	}
	return t.defaultLimit
}

// ResolveName maps a tier string to its display label, with the same
// containment logic as ResolveLimit and its own fallback.
func (t Table) ResolveName(tier string) string {
	if tier == "" {
		return t.defaultName
	}
	if e, ok := t.match(tier); ok {
		return e.Name
	}
	return t.defaultName
}
