package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlipski/tokengauge/internal/config"
)

func newStatusCommand(cfg config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print a one-shot usage snapshot for the current window.",
		RunE: func(_ *cobra.Command, _ []string) error {
			monitor, closeCache, _ := newMonitor(cfg)
			defer closeCache()

			report := monitor.Snapshot()

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Printf("Plan:      %s\n", report.PlanName)
			fmt.Printf("Window:    %s – %s\n",
				report.Window.Start.Local().Format("15:04"),
				report.Window.End.Local().Format("15:04"))
			fmt.Printf("Used:      %d / %d tokens (%.1f%%)\n",
				report.Used, report.Limit, report.UsedPercent())
			fmt.Printf("Remaining: %d tokens\n", report.Remaining)
			fmt.Printf("Resets:    %s\n", report.WindowEnd.Local().Format(time.Kitchen))
			if report.Earliest != nil {
				fmt.Printf("First activity: %s\n", report.Earliest.Local().Format(time.Kitchen))
			} else {
				fmt.Println("No activity in this window yet.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the snapshot as JSON")
	return cmd
}
