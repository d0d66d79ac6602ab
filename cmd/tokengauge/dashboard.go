package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mlipski/tokengauge/internal/config"
	"github.com/mlipski/tokengauge/internal/tui"
	"github.com/mlipski/tokengauge/internal/watch"
)

const watchDebounce = 2 * time.Second

func runDashboard(cfg config.Config) {
	monitor, closeCache, logger := newMonitor(cfg)
	defer closeCache()

	var changes <-chan struct{}
	watcher, err := watch.New(cfg.Roots(), watchDebounce, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("log watcher unavailable, relying on timer refresh")
	} else {
		changes = watcher.Changes()
		defer watcher.Close()
	}

	interval := time.Duration(cfg.UI.RefreshIntervalSeconds) * time.Second
	model := tui.NewModel(
		monitor.Snapshot,
		interval,
		cfg.UI.WarnThreshold,
		cfg.UI.CritThreshold,
		changes,
	)

	program := tea.NewProgram(model, tea.WithAltScreen())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}
