package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a reconciliation sweep",
	Long:  "Scans the closed residency set and repairs cross-store drift: missing archive rows, missing expiries, and interrupted reopens.",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		if watch {
			fmt.Fprintf(cmd.ErrOrStderr(), "sweeping every %s (ctrl-c to stop)\n", cfg.SweepInterval)
			eng.SweepLoop(cmd.Context(), cfg.SweepInterval)
			return nil
		}

		report, err := eng.Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(report)
			return nil
		}
		fmt.Printf("checked %d, repaired %d, skipped %d (%s)\n",
			report.Checked, len(report.Repairs), report.Skipped, report.Duration.Round(0))
		for _, r := range report.Repairs {
			fmt.Printf("  %s  %s\n", r.TicketID, r.Kind)
		}
		return nil
	},
}

func init() {
	sweepCmd.Flags().BoolP("watch", "w", false, "keep sweeping on the configured interval")
}
