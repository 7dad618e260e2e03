package main

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := eng.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printTicket(t)
		return nil
	},
}
