package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Nomadcxx/mediashelf/internal/activity"
	"github.com/Nomadcxx/mediashelf/internal/ui"
	"github.com/spf13/cobra"
)

func newActivityCmd() *cobra.Command {
	var (
		limit   int
		action  string
		details bool
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent library changes",
		Long: `Show the journal of library changes written by scan, watch and serve.

Entries are kept for watch.activity_days days.

Examples:
  mediashelf activity                   # Last 20 changes
  mediashelf activity -n 100            # Last 100 changes
  mediashelf activity --action removed  # Only removals
  mediashelf activity --details         # JSON entries`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivity(cmd, limit, action, details)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	cmd.Flags().StringVarP(&action, "action", "a", "", "Only show actions containing this text (added, changed, removed, movieset)")
	cmd.Flags().BoolVar(&details, "details", false, "Show detailed JSON output")

	return cmd
}

func runActivity(cmd *cobra.Command, limit int, action string, details bool) error {
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	journal, err := e.openJournal()
	if err != nil {
		return err
	}
	if journal == nil {
		ui.InfoMsg(out, "Activity journal is disabled (watch.activity_days = 0)")
		return nil
	}

	readLimit := limit
	if action != "" {
		readLimit = max(limit, 10000)
	}
	entries, err := journal.Recent(readLimit)
	if err != nil {
		return fmt.Errorf("failed to read activity journal: %w", err)
	}
	entries = filterEntries(entries, action, limit)

	if len(entries) == 0 {
		fmt.Fprintln(out, "No activity recorded.")
		return nil
	}

	if details {
		for _, entry := range entries {
			data, _ := json.MarshalIndent(entry, "", "  ")
			fmt.Fprintln(out, string(data))
		}
		return nil
	}

	t := ui.NewTable("Time", "Action", "Title", "Year", "Set")
	for _, entry := range entries {
		year := ""
		if entry.Year > 0 {
			year = strconv.Itoa(entry.Year)
		}
		set := entry.Set
		if entry.PreviousSet != "" {
			set = entry.PreviousSet + " → " + orNone(entry.Set)
		}
		t.AddRow(entry.Timestamp.Local().Format("2006-01-02 15:04"), entry.Action, entry.Title, year, set)
	}
	t.Render(out)
	return nil
}

func filterEntries(entries []activity.Entry, action string, limit int) []activity.Entry {
	var result []activity.Entry
	for _, entry := range entries {
		if action != "" && !strings.Contains(entry.Action, strings.ToLower(action)) {
			continue
		}
		result = append(result, entry)
		if len(result) == limit {
			break
		}
	}
	return result
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
