package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlipski/tokengauge/internal/config"
)

func newBlocksCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks",
		Short: "List the 5-hour session blocks inferred from the last 24 hours of logs.",
		RunE: func(_ *cobra.Command, _ []string) error {
			monitor, closeCache, _ := newMonitor(cfg)
			defer closeCache()

			blocks := monitor.SessionBlocks()
			if len(blocks) == 0 {
				fmt.Println("No session activity in the last 24 hours.")
				return nil
			}

			for _, b := range blocks {
				fmt.Printf("%s – %s  %8d tokens  (%d events)\n",
					b.Window.Start.Local().Format("Jan 02 15:04"),
					b.Window.End.Local().Format("15:04"),
					b.Used, b.Events)
			}
			return nil
		},
	}
}
