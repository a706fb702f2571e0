package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
)

func newHistoryCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recently journaled encounters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("invalid limit %d: must be at least 1", limit)
			}
			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, a.cfg.Database, a.logger)
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}
			defer pool.Close()

			entries, err := postgres.NewJournalRepository(pool.DB()).Recent(ctx, limit)
			if err != nil {
				return err
			}
			writeHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of encounters to list")
	return cmd
}

// writeHistory prints one line per entry, newest first as given.
func writeHistory(w io.Writer, entries []postgres.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no encounters recorded")
		return
	}
	for _, e := range entries {
		result := e.Outcome
		if e.Winner != "" {
			result += " (" + e.Winner + ")"
		}
		fmt.Fprintf(w, "%s  %s  %-24s %s after %d rounds; survivors: %s\n",
			e.FinishedAt.Format("2006-01-02 15:04:05"), e.ID, e.Name, result, e.Rounds, survivorList(e.Survivors))
	}
}

func survivorList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
