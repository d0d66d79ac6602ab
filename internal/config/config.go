package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

type UIConfig struct {
	RefreshIntervalSeconds int     `json:"refresh_interval_seconds"`
	WarnThreshold          float64 `json:"warn_threshold"`
	CritThreshold          float64 `json:"crit_threshold"`
}

type Config struct {
	// LogRoots overrides the default Claude Code log locations. Empty
	// means both ~/.claude/projects and ~/.config/claude/projects.
	LogRoots []string `json:"log_roots,omitempty"`

	// ResetAnchorHour pins accounting-window boundaries to a fixed hour
	// of day (0-23) instead of inferring them from activity. Absent or
	// out-of-range values mean inferred mode.
	ResetAnchorHour *int `json:"reset_anchor_hour,omitempty"`

	// TimeZone is the IANA zone anchored boundaries are evaluated in.
	TimeZone string `json:"time_zone"`

	// Limits overrides or extends the built-in tier-substring → ceiling
	// table. Ceilings are estimates, so they are configuration, not code.
	Limits map[string]int `json:"limits,omitempty"`

	ScanCache bool     `json:"scan_cache"`
	UI        UIConfig `json:"ui"`
}

func DefaultConfig() Config {
	return Config{
		TimeZone:  "UTC",
		ScanCache: true,
		UI: UIConfig{
			RefreshIntervalSeconds: 60,
			WarnThreshold:          0.20,
			CritThreshold:          0.05,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "tokengauge")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tokengauge")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// DefaultLogRoots returns the Claude Code session-log locations: the
// legacy ~/.claude/projects tree and its XDG successor.
func DefaultLogRoots() []string {
	home, _ := os.UserHomeDir()
	return []string{
		filepath.Join(home, ".claude", "projects"),
		filepath.Join(home, ".config", "claude", "projects"),
	}
}

// Roots returns the effective log roots for this config.
func (c Config) Roots() []string {
	if len(c.LogRoots) > 0 {
		return c.LogRoots
	}
	return DefaultLogRoots()
}

// AnchorHour returns the configured reset anchor, or nil when unset or
// invalid (invalid values select inferred mode rather than erroring).
func (c Config) AnchorHour() *int {
	if c.ResetAnchorHour == nil {
		return nil
	}
	h := *c.ResetAnchorHour
	if h < 0 || h > 23 {
		return nil
	}
	return &h
}

// Location resolves the configured time zone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = 60
	}
	if cfg.UI.WarnThreshold <= 0 {
		cfg.UI.WarnThreshold = 0.20
	}
	if cfg.UI.CritThreshold <= 0 {
		cfg.UI.CritThreshold = 0.05
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = "UTC"
	}

	return cfg, nil
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SaveAnchorHour persists (or, with nil, clears) the reset anchor hour via
// a read-modify-write cycle.
func SaveAnchorHour(hour *int) error {
	return SaveAnchorHourTo(ConfigPath(), hour)
}

func SaveAnchorHourTo(path string, hour *int) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	cfg, err := LoadFrom(path)
	if err != nil {
		cfg = DefaultConfig()
	}
	cfg.ResetAnchorHour = hour
	return SaveTo(path, cfg)
}
