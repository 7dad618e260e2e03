package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/stackline/tickd/internal/engine"
	"github.com/stackline/tickd/internal/model"
)

// plainOutput reports whether stdout is not a terminal, in which case the
// table renderers skip alignment niceties.
func plainOutput() bool {
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printTicket(t *model.Ticket) {
	if jsonOutput {
		printJSON(t)
		return
	}
	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Title:       %s\n", t.Title)
	fmt.Printf("Status:      %s\n", t.Status)
	fmt.Printf("Priority:    %s\n", t.Priority)
	fmt.Printf("Type:        %s\n", t.Type)
	fmt.Printf("Category:    %s\n", t.Category)
	fmt.Printf("Reporter:    %s\n", t.Reporter)
	if t.Assignee != "" {
		fmt.Printf("Assignee:    %s\n", t.Assignee)
	}
	if t.Description != "" {
		fmt.Printf("Description: %s\n", t.Description)
	}
	if t.Resolution != "" {
		fmt.Printf("Resolution:  %s\n", t.Resolution)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Printf("Created At:  %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated At:  %s\n", t.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if t.ClosedAt != nil {
		fmt.Printf("Closed At:   %s\n", t.ClosedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func printTicketList(tickets []*model.Ticket) {
	if jsonOutput {
		printJSON(tickets)
		return
	}
	if len(tickets) == 0 {
		fmt.Println("No tickets found.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if !plainOutput() {
		fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tTITLE\tASSIGNEE\tUPDATED")
	}
	for _, t := range tickets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status, t.Priority, truncate(t.Title, 60), t.Assignee,
			t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func printResult(res *engine.Result) {
	if jsonOutput {
		printJSON(res)
		return
	}
	printTicket(res.Ticket)
	for _, warn := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning [%s]: %s\n", warn.Code, warn.Message)
	}
	if res.ReconcileRequired {
		fmt.Fprintln(os.Stderr, "Warning: fast store out of sync; the reconciliation sweep will repair it")
	}
}

func printNote(n *model.Note) {
	if jsonOutput {
		printJSON(n)
		return
	}
	fmt.Printf("ID:         %s\n", n.ID)
	if n.Mode != "" {
		fmt.Printf("Mode:       %s\n", n.Mode)
	}
	if len(n.Tags) > 0 {
		fmt.Printf("Tags:       %s\n", strings.Join(n.Tags, ", "))
	}
	if n.TicketID != "" {
		fmt.Printf("Ticket:     %s\n", n.TicketID)
	}
	fmt.Printf("Created At: %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("\n%s\n", n.Content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
