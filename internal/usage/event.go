package usage

import (
	"encoding/json"
	"time"
)

// Event is one parsed session-log record. Identity is the log line's uuid
// and acts as the dedup key; an event without an identity or without a
// usage payload is timestamp-only and contributes no counters.
type Event struct {
	Identity    string
	Timestamp   time.Time
	InputUnits  int
	OutputUnits int
	HasUsage    bool
	CLIVersion  string
}

// Units returns the countable tokens of the event. Cache counters are
// intentionally excluded from the tracked quota.
func (e Event) Units() int {
	if !e.HasUsage {
		return 0
	}
	return e.InputUnits + e.OutputUnits
}

type logLine struct {
	Timestamp string  `json:"timestamp"`
	UUID      string  `json:"uuid"`
	Version   string  `json:"version,omitempty"`
	Message   *logMsg `json:"message,omitempty"`
}

type logMsg struct {
	Usage *logUsage `json:"usage,omitempty"`
}

type logUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// ParseLine decodes a single JSONL record. Lines that are not valid JSON
// or carry no parseable timestamp are rejected; everything else is kept,
// with missing fields zeroed.
func ParseLine(line []byte) (Event, bool) {
	var rec logLine
	if err := json.Unmarshal(line, &rec); err != nil {
		return Event{}, false
	}

	ts, ok := parseTimestamp(rec.Timestamp)
	if !ok {
		return Event{}, false
	}

	ev := Event{
		Identity:   rec.UUID,
		Timestamp:  ts,
		CLIVersion: rec.Version,
	}
	if rec.Message != nil && rec.Message.Usage != nil {
		ev.HasUsage = true
		ev.InputUnits = rec.Message.Usage.InputTokens
		ev.OutputUnits = rec.Message.Usage.OutputTokens
	}
	return ev, true
}

func parseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02T15:04:05.000Z", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
