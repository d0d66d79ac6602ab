package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mlipski/tokengauge/internal/config"
	"github.com/mlipski/tokengauge/internal/credentials"
	"github.com/mlipski/tokengauge/internal/diaglog"
	"github.com/mlipski/tokengauge/internal/plan"
	"github.com/mlipski/tokengauge/internal/scancache"
	"github.com/mlipski/tokengauge/internal/usage"
	"github.com/mlipski/tokengauge/internal/version"
)

const tierCacheTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	root := cobra.Command{
		Use:   "tokengauge",
		Short: "tokengauge is a terminal gauge for the Claude Code 5-hour usage window, computed from local session logs.",
		Run: func(_ *cobra.Command, _ []string) {
			runDashboard(cfg)
		},
	}

	root.AddCommand(newStatusCommand(cfg))
	root.AddCommand(newBlocksCommand(cfg))
	root.AddCommand(newAnchorCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(version.String())
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newMonitor wires the aggregation pipeline from config. The returned
// closer releases the scan cache, when one was opened.
func newMonitor(cfg config.Config) (*usage.Monitor, func(), zerolog.Logger) {
	logger := diaglog.Open(diaglog.Path(), true)

	var cache usage.FileCache
	closer := func() {}
	if cfg.ScanCache {
		sc, err := scancache.Open(scancache.DefaultPath(config.ConfigDir()), logger)
		if err != nil {
			logger.Warn().Err(err).Msg("scan cache unavailable, parsing directly")
		} else {
			cache = sc
			closer = func() { sc.Close() }
		}
	}

	monitor := usage.NewMonitor(usage.MonitorOptions{
		Roots:      cfg.Roots(),
		Limits:     plan.DefaultTable().WithOverrides(cfg.Limits),
		Tier:       credentials.NewCache(tierCacheTTL, nil),
		AnchorHour: cfg.AnchorHour(),
		Location:   cfg.Location(),
		Cache:      cache,
		Logger:     logger,
	})
	return monitor, closer, logger
}
