package main

import (
	"github.com/spf13/cobra"

	"github.com/stackline/tickd/internal/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		priority, _ := cmd.Flags().GetString("priority")
		ticketType, _ := cmd.Flags().GetString("type")
		category, _ := cmd.Flags().GetString("category")
		assignee, _ := cmd.Flags().GetString("assignee")
		reporter, _ := cmd.Flags().GetString("reporter")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		sort, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		tickets, err := eng.List(cmd.Context(), model.Filter{
			Status:   model.Status(status),
			Priority: model.Priority(priority),
			Type:     ticketType,
			Category: category,
			Assignee: assignee,
			Reporter: reporter,
			Tags:     tags,
			Sort:     sort,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return err
		}
		printTicketList(tickets)
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "filter by status")
	listCmd.Flags().StringP("priority", "p", "", "filter by priority")
	listCmd.Flags().StringP("type", "t", "", "filter by type")
	listCmd.Flags().StringP("category", "c", "", "filter by category")
	listCmd.Flags().StringP("assignee", "a", "", "filter by assignee")
	listCmd.Flags().StringP("reporter", "r", "", "filter by reporter")
	listCmd.Flags().StringSlice("tag", nil, "filter by tag (repeatable, all must match)")
	listCmd.Flags().String("sort", "", "sort key (priority|created_at|updated_at|title|status), prefix with - for descending")
	listCmd.Flags().IntP("limit", "n", 0, "max results (0 = all)")
	listCmd.Flags().Int("offset", 0, "skip the first N results")
}
