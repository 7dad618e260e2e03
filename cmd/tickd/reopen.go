package main

import (
	"github.com/spf13/cobra"

	"github.com/stackline/tickd/internal/model"
)

var reopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Reopen a closed ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		statusFlag, _ := cmd.Flags().GetString("status")

		status := model.Status(statusFlag)
		res, err := eng.Update(cmd.Context(), args[0], model.Update{Status: &status})
		if err != nil {
			return err
		}
		printResult(res)
		return nil
	},
}

func init() {
	reopenCmd.Flags().StringP("status", "s", string(model.StatusOpen), "status to reopen into")
}
