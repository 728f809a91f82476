package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// clearScreen is the ANSI clear-and-home sequence used by watch mode.
const clearScreen = "\x1b[2J\x1b[H"

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var interval time.Duration
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the daemon's live sync status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printOnce := func() error {
				status, err := client.Status(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					encoder := json.NewEncoder(out)
					encoder.SetIndent("", "  ")
					return encoder.Encode(status)
				}
				for _, line := range renderStatus(status, colorize) {
					fmt.Fprintln(out, line)
				}
				return nil
			}

			if !watch {
				return printOnce()
			}
			if asJSON {
				return fmt.Errorf("--watch and --json cannot be combined")
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				fmt.Fprint(out, clearScreen)
				if err := printOnce(); err != nil {
					return err
				}
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh the status view continuously")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Refresh interval for --watch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw status payload as JSON")
	return cmd
}
