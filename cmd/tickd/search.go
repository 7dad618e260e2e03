package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find tickets and notes by semantic similarity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")

		results, err := eng.SearchSimilar(cmd.Context(), args[0], limit, kind)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(results)
			return nil
		}
		for _, r := range results {
			switch {
			case r.Ticket != nil:
				fmt.Printf("%.3f  %s  [%s/%s]  %s\n", r.Hit.Score, r.Ticket.ID, r.Ticket.Status, r.Ticket.Priority, r.Ticket.Title)
			case r.Note != nil:
				fmt.Printf("%.3f  %s  [note]  %s\n", r.Hit.Score, r.Note.ID, truncate(r.Note.Content, 72))
			default:
				fmt.Printf("%.3f  %s  [%s]  (no longer indexed)\n", r.Hit.Score, r.Hit.RefID, r.Hit.Kind)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntP("limit", "n", 10, "max results")
	searchCmd.Flags().StringP("kind", "k", "", "restrict to a kind (ticket|note)")
}
