package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Errorf("RefreshIntervalSeconds = %d, want 60", cfg.UI.RefreshIntervalSeconds)
	}
	if cfg.TimeZone != "UTC" {
		t.Errorf("TimeZone = %q, want UTC", cfg.TimeZone)
	}
	if !cfg.ScanCache {
		t.Error("ScanCache should default to true")
	}
	if cfg.AnchorHour() != nil {
		t.Error("AnchorHour should default to nil (inferred mode)")
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte("{nope"), 0o644)

	cfg, err := LoadFrom(path)
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Error("should fall back to defaults on parse error")
	}
}

func TestLoadFrom_NormalizesZeroValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte(`{"ui":{"refresh_interval_seconds":-5},"time_zone":""}`), 0o644)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Errorf("RefreshIntervalSeconds = %d, want normalized 60", cfg.UI.RefreshIntervalSeconds)
	}
	if cfg.TimeZone != "UTC" {
		t.Errorf("TimeZone = %q, want normalized UTC", cfg.TimeZone)
	}
}

func TestAnchorHour_OutOfRangeIsNil(t *testing.T) {
	for _, h := range []int{-1, 24, 99} {
		hour := h
		cfg := Config{ResetAnchorHour: &hour}
		if cfg.AnchorHour() != nil {
			t.Errorf("AnchorHour() with %d should be nil", h)
		}
	}

	valid := 8
	cfg := Config{ResetAnchorHour: &valid}
	if got := cfg.AnchorHour(); got == nil || *got != 8 {
		t.Errorf("AnchorHour() = %v, want 8", got)
	}
}

func TestLocation_FallsBackToUTC(t *testing.T) {
	cfg := Config{TimeZone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Error("invalid zone should fall back to UTC")
	}
}

func TestSaveAnchorHourTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	hour := 8
	if err := SaveAnchorHourTo(path, &hour); err != nil {
		t.Fatalf("SaveAnchorHourTo failed: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if got := cfg.AnchorHour(); got == nil || *got != 8 {
		t.Fatalf("AnchorHour = %v, want 8", got)
	}

	if err := SaveAnchorHourTo(path, nil); err != nil {
		t.Fatalf("clearing anchor failed: %v", err)
	}
	cfg, _ = LoadFrom(path)
	if cfg.AnchorHour() != nil {
		t.Error("anchor should be cleared")
	}
}

func TestRoots_Override(t *testing.T) {
	cfg := Config{LogRoots: []string{"/tmp/custom"}}
	roots := cfg.Roots()
	if len(roots) != 1 || roots[0] != "/tmp/custom" {
		t.Errorf("Roots() = %v, want override only", roots)
	}

	if len((Config{}).Roots()) != 2 {
		t.Error("default roots should cover both log locations")
	}
}
