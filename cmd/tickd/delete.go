package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a ticket from the live index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := eng.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		if jsonOutput {
			printJSON(map[string]string{"deleted": args[0]})
			return nil
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}
