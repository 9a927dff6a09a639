package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"capgenius/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var filter logs.Filter

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the daemon log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := logs.CurrentPath(cfg.Paths.LogDir)
			stdout := cmd.OutOrStdout()

			last, offset, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			if last == nil && !follow {
				if _, statErr := os.Stat(path); statErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "No daemon log at %s; start it with `capgenius serve`\n", path)
					return nil
				}
			}
			for _, line := range last {
				fmt.Fprintln(stdout, line)
			}
			if !follow {
				return nil
			}

			followCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return logs.Follow(followCtx, path, offset, 250*time.Millisecond, filter, func(line string) {
				fmt.Fprintln(stdout, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&filter.Contains, "project", "", "Only show lines mentioning this project ID")
	cmd.Flags().StringVar(&filter.Level, "level", "", "Minimum level to show (debug, info, warn, error)")
	return cmd
}
