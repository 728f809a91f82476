package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"timeturner/internal/api"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Logs(cmd.Context(), tail)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.Events) == 0 {
				fmt.Fprintln(out, "No buffered log events")
				return nil
			}
			for _, evt := range resp.Events {
				fmt.Fprintln(out, formatLogEvent(evt))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&tail, "tail", "n", 50, "Number of buffered events to show")
	return cmd
}

func formatLogEvent(evt api.LogEvent) string {
	var b strings.Builder
	b.WriteString(evt.Timestamp.Local().Format("15:04:05.000"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%-5s", evt.Level))
	if evt.Component != "" {
		b.WriteString(" [")
		b.WriteString(evt.Component)
		b.WriteString("]")
	}
	b.WriteString(" ")
	b.WriteString(evt.Message)

	if len(evt.Fields) > 0 {
		keys := make([]string, 0, len(evt.Fields))
		for key := range evt.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			b.WriteString(" ")
			b.WriteString(key)
			b.WriteString("=")
			b.WriteString(evt.Fields[key])
		}
	}
	return b.String()
}
