package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mlipski/tokengauge/internal/config"
)

func newAnchorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anchor [hour]",
		Short: "Show or set the reset anchor hour (0-23); without it window boundaries are inferred from activity.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				if h := cfg.AnchorHour(); h != nil {
					fmt.Printf("Reset anchor: %02d:00 (%s)\n", *h, cfg.TimeZone)
				} else {
					fmt.Println("Reset anchor: not set (window inferred from activity)")
				}
				return nil
			}

			hour, err := strconv.Atoi(args[0])
			if err != nil || hour < 0 || hour > 23 {
				return fmt.Errorf("anchor hour must be an integer 0-23, got %q", args[0])
			}
			if err := config.SaveAnchorHour(&hour); err != nil {
				return err
			}
			fmt.Printf("Reset anchor set to %02d:00\n", hour)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the reset anchor and return to inferred windows.",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := config.SaveAnchorHour(nil); err != nil {
				return err
			}
			fmt.Println("Reset anchor cleared.")
			return nil
		},
	})

	return cmd
}
