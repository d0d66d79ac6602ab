package scancache

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mlipski/tokengauge/internal/usage"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "scan-cache.db"), zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleEvents() []usage.Event {
	ts := time.Date(2026, 8, 12, 9, 15, 0, 0, time.UTC)
	return []usage.Event{
		{Identity: "a", Timestamp: ts, InputUnits: 10, OutputUnits: 5, HasUsage: true, CLIVersion: "2.0.14"},
		{Timestamp: ts.Add(time.Minute)}, // timestamp-only
	}
}

func TestCache_ParsesOnMissAndReusesOnHit(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Now().Truncate(time.Second)
	parses := 0
	parse := func() []usage.Event {
		parses++
		return sampleEvents()
	}

	first, err := c.Events("/logs/s.jsonl", mtime, 100, parse)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	second, err := c.Events("/logs/s.jsonl", mtime, 100, parse)
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}

	if parses != 1 {
		t.Errorf("parse calls = %d, want 1 (second read must hit cache)", parses)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("event counts = %d/%d, want 2/2", len(first), len(second))
	}
	if second[0].Identity != "a" || second[0].Units() != 15 {
		t.Errorf("cached event mismatch: %+v", second[0])
	}
	if !second[0].Timestamp.Equal(first[0].Timestamp) {
		t.Errorf("cached timestamp drifted: %v vs %v", second[0].Timestamp, first[0].Timestamp)
	}
	if second[1].HasUsage {
		t.Error("timestamp-only event must stay payload-free through the cache")
	}
}

func TestCache_ChangedFileInvalidates(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Now().Truncate(time.Second)
	parses := 0
	parse := func() []usage.Event {
		parses++
		return sampleEvents()
	}

	c.Events("/logs/s.jsonl", mtime, 100, parse)
	c.Events("/logs/s.jsonl", mtime.Add(time.Second), 120, parse) // appended

	if parses != 2 {
		t.Errorf("parse calls = %d, want 2 after file changed", parses)
	}
}

func TestCache_DistinctPathsDoNotCollide(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Now().Truncate(time.Second)

	c.Events("/logs/a.jsonl", mtime, 100, func() []usage.Event {
		return []usage.Event{{Identity: "a", Timestamp: time.Now(), HasUsage: true, InputUnits: 1}}
	})
	events, err := c.Events("/logs/b.jsonl", mtime, 100, func() []usage.Event {
		return []usage.Event{{Identity: "b", Timestamp: time.Now(), HasUsage: true, InputUnits: 2}}
	})
	if err != nil {
		t.Fatalf("Events failed: %v", err)
	}
	if len(events) != 1 || events[0].Identity != "b" {
		t.Errorf("expected b's events, got %+v", events)
	}
}

func TestCache_Prune(t *testing.T) {
	c := openTestCache(t)
	mtime := time.Now().Truncate(time.Second)

	c.Events("/logs/s.jsonl", mtime, 100, sampleEvents)

	if err := c.Prune(context.Background(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	parses := 0
	c.Events("/logs/s.jsonl", mtime, 100, func() []usage.Event {
		parses++
		return sampleEvents()
	})
	if parses != 1 {
		t.Errorf("parse calls = %d, want 1 after prune dropped the entry", parses)
	}
}
