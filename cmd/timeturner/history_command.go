package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"timeturner/internal/api"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent clock corrections",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := ctx.client().History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No corrections recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistoryTable(entries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	return cmd
}

func renderHistoryTable(entries []api.HistoryEntry) string {
	headers := []string{"When", "Trigger", "Outcome", "Drift (ms)", "Jitter (ms)", "Detail"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		detail := entry.Target
		if entry.Trigger == "nudge" {
			detail = fmt.Sprintf("%+d ms", entry.NudgeMS)
		}
		if entry.Error != "" {
			detail = entry.Error
		}
		rows = append(rows, []string{
			entry.At,
			entry.Trigger,
			entry.Outcome,
			strconv.FormatInt(entry.DriftMS, 10),
			strconv.FormatInt(entry.JitterMS, 10),
			detail,
		})
	}
	return renderTable(headers, rows, aligns)
}
