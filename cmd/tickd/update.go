package main

import (
	"github.com/spf13/cobra"

	"github.com/stackline/tickd/internal/model"
)

// updateFromFlags builds a partial update from whichever flags were set.
func updateFromFlags(cmd *cobra.Command) (model.Update, error) {
	var u model.Update
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		u.Title = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		u.Description = &v
	}
	if cmd.Flags().Changed("resolution") {
		v, _ := cmd.Flags().GetString("resolution")
		u.Resolution = &v
	}
	if cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		s := model.Status(v)
		u.Status = &s
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetString("priority")
		p := model.Priority(v)
		u.Priority = &p
	}
	if cmd.Flags().Changed("type") {
		v, _ := cmd.Flags().GetString("type")
		u.Type = &v
	}
	if cmd.Flags().Changed("category") {
		v, _ := cmd.Flags().GetString("category")
		u.Category = &v
	}
	if cmd.Flags().Changed("assignee") {
		v, _ := cmd.Flags().GetString("assignee")
		u.Assignee = &v
	}
	if cmd.Flags().Changed("tag") {
		v, _ := cmd.Flags().GetStringSlice("tag")
		u.Tags = &v
	}
	if cmd.Flags().Changed("meta") {
		pairs, _ := cmd.Flags().GetStringArray("meta")
		m, err := parseMetadata(pairs)
		if err != nil {
			return model.Update{}, err
		}
		u.Metadata = m
	}
	return u, nil
}

func addUpdateFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "new title")
	cmd.Flags().StringP("description", "d", "", "new description")
	cmd.Flags().String("resolution", "", "resolution text")
	cmd.Flags().StringP("status", "s", "", "new status")
	cmd.Flags().StringP("priority", "p", "", "new priority")
	cmd.Flags().StringP("type", "t", "", "new type")
	cmd.Flags().StringP("category", "c", "", "new category")
	cmd.Flags().StringP("assignee", "a", "", "new assignee")
	cmd.Flags().StringSlice("tag", nil, "replace tags (repeatable)")
	cmd.Flags().StringArray("meta", nil, "merge metadata key=value; empty value removes the key")
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields on a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := updateFromFlags(cmd)
		if err != nil {
			return err
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
	addUpdateFlags(updateCmd)
}
