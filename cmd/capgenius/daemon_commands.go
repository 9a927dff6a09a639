package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"capgenius/internal/daemonctl"
	"capgenius/internal/daemonrun"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	var logLevel string
	var development bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the capgenius daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    logLevel,
				Development: development,
			})
		},
	}
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level for this run")
	serveCmd.Flags().BoolVar(&development, "development", false, "Include source locations in log output")

	var grace time.Duration
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running capgenius daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.Stop(ctx.configValue(), grace)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"running": false})
				}
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			if result.ForcedKill {
				fmt.Fprintf(stdout, "Daemon (pid %d) did not exit in %s; killed\n", result.PID, grace)
				return nil
			}
			fmt.Fprintf(stdout, "Daemon (pid %d) stopped\n", result.PID)
			return nil
		},
	}
	stopCmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "Time to wait after SIGTERM before killing the daemon")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency and project database status",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.configValue())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, snap)
			}
			renderSnapshot(cmd, snap)
			return nil
		},
	}

	return []*cobra.Command{serveCmd, stopCmd, statusCmd}
}

func renderSnapshot(cmd *cobra.Command, snap daemonctl.Snapshot) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if snap.Running {
		detail := "Running"
		if snap.PID > 0 {
			detail = fmt.Sprintf("Running (pid %d)", snap.PID)
		}
		fmt.Fprintln(stdout, renderStatusLine("capgenius", statusOK, detail, colorize))
		fmt.Fprintln(stdout, renderStatusLine("API", statusInfo, snap.APIAddress, colorize))
	} else {
		fmt.Fprintln(stdout, renderStatusLine("capgenius", statusError, "Not running", colorize))
	}
	fmt.Fprintln(stdout, renderStatusLine("Provider", statusInfo, snap.Provider, colorize))
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("System Checks", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range checkLines(snap.Checks, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(stdout, line)
	}
	for _, line := range dependencyLines(snap.Dependencies, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout)

	for _, line := range renderSectionHeader("Projects", colorize) {
		fmt.Fprintln(stdout, line)
	}
	if !snap.Database.DatabaseExists {
		fmt.Fprintln(stdout, "No project database yet")
		return
	}
	rows := projectStateRows(snap.Database)
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "No projects")
		return
	}
	fmt.Fprint(stdout, renderTable([]string{"State", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}
