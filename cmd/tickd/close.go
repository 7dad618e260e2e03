package main

import (
	"github.com/spf13/cobra"

	"github.com/stackline/tickd/internal/model"
)

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a ticket and archive it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cancel, _ := cmd.Flags().GetBool("cancel")
		resolution, _ := cmd.Flags().GetString("resolution")

		status := model.StatusClosed
		if cancel {
			status = model.StatusCancelled
		}
		u := model.Update{Status: &status}
		if resolution != "" {
			u.Resolution = &resolution
		}

		res, err := eng.Update(cmd.Context(), args[0], u)
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	closeCmd.Flags().Bool("cancel", false, "cancel instead of close")
	closeCmd.Flags().StringP("resolution", "r", "", "resolution text")
}
