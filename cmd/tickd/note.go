package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackline/tickd/internal/engine"
	"github.com/stackline/tickd/internal/model"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add <content>",
	Short: "Record a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		ticketID, _ := cmd.Flags().GetString("ticket")

		n, warnings, err := eng.CreateNote(cmd.Context(), engine.CreateNote{
			Content:  args[0],
			Mode:     model.NoteMode(mode),
			Tags:     tags,
			TicketID: ticketID,
		})
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Code, w.Message)
		}
		printNote(n)
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		notes, err := eng.ListNotes(cmd.Context(), limit, offset)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(notes)
			return nil
		}
		for _, n := range notes {
			printNote(n)
		}
		return nil
	},
}

func init() {
	noteAddCmd.Flags().StringP("mode", "m", string(model.ModeLog), "note mode")
	noteAddCmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	noteAddCmd.Flags().StringP("ticket", "T", "", "related ticket id")
	noteListCmd.Flags().IntP("limit", "n", 20, "max results (0 = all)")
	noteListCmd.Flags().Int("offset", 0, "skip the first N results")
	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteListCmd)
}
