package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Set the system clock from the current timecode now",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Sync(cmd.Context())
			if err != nil {
				return err
			}
			if !resp.Applied {
				return fmt.Errorf("sync not applied: %s", resp.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "System clock synchronized to timecode")
			return nil
		},
	}
}

func newNudgeCommand(ctx *commandContext) *cobra.Command {
	var amountMS int64

	cmd := &cobra.Command{
		Use:   "nudge",
		Short: "Step the system clock by a fixed amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().Nudge(cmd.Context(), amountMS)
			if err != nil {
				return err
			}
			if !resp.Applied {
				return fmt.Errorf("nudge not applied: %s", resp.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "System clock nudged by %+d ms\n", resp.AmountMS)
			return nil
		},
	}

	cmd.Flags().Int64Var(&amountMS, "ms", 0, "Signed amount in milliseconds (0 = configured default)")
	return cmd
}
