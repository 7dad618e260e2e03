package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stackline/tickd/internal/engine"
	"github.com/stackline/tickd/internal/model"
)

// parseMetadata converts -m key=value pairs into a metadata map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := splitPair(p)
		if !ok {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", p)
		}
		m[k] = v
	}
	return m, nil
}

func splitPair(p string) (string, string, bool) {
	for i := 0; i < len(p); i++ {
		if p[i] == '=' {
			return p[:i], p[i+1:], i > 0
		}
	}
	return "", "", false
}

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetString("priority")
		ticketType, _ := cmd.Flags().GetString("type")
		category, _ := cmd.Flags().GetString("category")
		reporter, _ := cmd.Flags().GetString("reporter")
		assignee, _ := cmd.Flags().GetString("assignee")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		metaPairs, _ := cmd.Flags().GetStringArray("meta")

		metadata, err := parseMetadata(metaPairs)
		if err != nil {
			return err
		}

		t, err := eng.Create(cmd.Context(), engine.CreateTicket{
			Title:       args[0],
			Description: description,
			Priority:    model.Priority(priority),
			Type:        ticketType,
			Category:    category,
			Reporter:    reporter,
			Assignee:    assignee,
			Tags:        tags,
			Metadata:    metadata,
		})
		if err != nil {
			return err
		}
		printTicket(t)
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("description", "d", "", "ticket description")
	createCmd.Flags().StringP("priority", "p", "medium", "priority (low|medium|high|critical)")
	createCmd.Flags().StringP("type", "t", "task", "ticket type")
	createCmd.Flags().StringP("category", "c", "general", "ticket category")
	createCmd.Flags().StringP("reporter", "r", "", "reporter (required)")
	createCmd.Flags().StringP("assignee", "a", "", "assignee")
	createCmd.Flags().StringSlice("tag", nil, "tag (repeatable)")
	createCmd.Flags().StringArray("meta", nil, "metadata key=value (repeatable)")
}
