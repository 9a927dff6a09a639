package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"capgenius/internal/editor"
	"capgenius/internal/language"
	"capgenius/internal/project"
	"capgenius/internal/srt"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	projectsCmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Inspect and manage saved projects",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved projects, most recently edited first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := ctx.openEditor(false)
			if err != nil {
				return err
			}
			defer ed.Close()

			summaries, err := ed.manager.List(cmd.Context())
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if summaries == nil {
					summaries = []project.Summary{}
				}
				return writeJSON(cmd, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "State", "Captions", "Video", "Size", "Length", "Updated"},
				projectRows(summaries),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project's video, style and captions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := ctx.openEditor(false)
			if err != nil {
				return err
			}
			defer ed.Close()

			sess, err := ed.view(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			status := sess.Status()
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			renderProject(cmd, status)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:     "delete <project>",
		Aliases: []string{"rm"},
		Short:   "Delete a project and its staged video",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := ctx.openEditor(false)
			if err != nil {
				return err
			}
			defer ed.Close()

			id, err := ed.resolveProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := ed.manager.Delete(cmd.Context(), id); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{"id": id, "deleted": true})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", id)
			return nil
		},
	}

	projectsCmd.AddCommand(listCmd, showCmd, deleteCmd)
	return projectsCmd
}

func projectRows(summaries []project.Summary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		video, size := "-", "-"
		if summary.VideoName != "" {
			video = summary.VideoName
			size = humanize.Bytes(uint64(max(summary.VideoSize, 0)))
		}
		updated := "-"
		if !summary.UpdatedAt.IsZero() {
			updated = humanize.Time(summary.UpdatedAt)
		}
		rows = append(rows, []string{
			summary.ID,
			summary.Name,
			string(summary.State),
			strconv.Itoa(summary.Captions),
			video,
			size,
			formatSeconds(summary.Duration),
			updated,
		})
	}
	return rows
}

func renderProject(cmd *cobra.Command, status editor.Status) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader(status.Name, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("ID", statusInfo, status.ID, colorize))
	fmt.Fprintln(stdout, renderStatusLine("State", statusInfo, string(status.State), colorize))
	if status.Language != "" {
		fmt.Fprintln(stdout, renderStatusLine("Language", statusInfo, language.DisplayName(status.Language), colorize))
	}
	if status.Error != "" {
		fmt.Fprintln(stdout, renderStatusLine("Last error", statusError, status.Error, colorize))
	}
	if status.Video != nil {
		detail := fmt.Sprintf("%s (%s, %s)", status.Video.Name, status.Video.MimeType, humanize.Bytes(uint64(max(status.Video.Size, 0))))
		fmt.Fprintln(stdout, renderStatusLine("Video", statusOK, detail, colorize))
		fmt.Fprintln(stdout, renderStatusLine("Length", statusInfo, formatSeconds(status.Playback.Duration), colorize))
	} else {
		fmt.Fprintln(stdout, renderStatusLine("Video", statusWarn, "none staged", colorize))
	}
	fmt.Fprintln(stdout, renderStatusLine("Style", statusInfo, styleSummary(status), colorize))
	fmt.Fprintln(stdout)

	if len(status.Captions) == 0 {
		fmt.Fprintln(stdout, "No captions")
		return
	}
	rows := make([][]string, 0, len(status.Captions))
	for i, c := range status.Captions {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			srt.FormatTimestamp(c.Start),
			srt.FormatTimestamp(c.End),
			c.Text,
		})
	}
	fmt.Fprint(stdout, renderTable([]string{"#", "Start", "End", "Text"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
}

func styleSummary(status editor.Status) string {
	s := status.Style
	parts := []string{
		s.FontFamily,
		fmt.Sprintf("%gpx", s.FontSize),
		s.Color,
	}
	if s.Uppercase {
		parts = append(parts, "uppercase")
	}
	return strings.Join(parts, ", ")
}

type exportResult struct {
	ProjectID string   `json:"project_id"`
	Captions  int      `json:"captions"`
	Path      string   `json:"path,omitempty"`
	Clipboard bool     `json:"clipboard"`
	Issues    []string `json:"issues,omitempty"`
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var check bool
	var dest srtDestination

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Export a project's captions as SRT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ed, err := ctx.openEditor(false)
			if err != nil {
				return err
			}
			defer ed.Close()

			sess, err := ed.view(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			content, err := sess.ExportSRT()
			if errors.Is(err, srt.ErrNothingToExport) {
				return fmt.Errorf("project %s has no captions to export", sess.ID())
			}
			if err != nil {
				return err
			}

			status := sess.Status()
			result := exportResult{
				ProjectID: status.ID,
				Captions:  len(status.Captions),
				Clipboard: dest.Clipboard,
			}
			if check {
				result.Issues = srt.Validate(content, status.Playback.Duration)
				if len(result.Issues) > 0 {
					if ctx.jsonOutput() {
						if err := writeJSON(cmd, result); err != nil {
							return err
						}
					} else {
						for _, issue := range result.Issues {
							fmt.Fprintf(cmd.ErrOrStderr(), "check: %s\n", issue)
						}
					}
					return fmt.Errorf("SRT check found %d issue(s)", len(result.Issues))
				}
			}
			if ctx.jsonOutput() && strings.TrimSpace(dest.Out) == "-" {
				return errors.New("--json cannot be combined with --out -")
			}

			result.Path, err = deliverSRT(cmd, cfg, sess, content, dest)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			if result.Path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d captions to %s\n", result.Captions, result.Path)
			}
			if dest.Clipboard {
				fmt.Fprintln(cmd.ErrOrStderr(), "Copied captions to clipboard")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest.Out, "out", "o", "", "Write SRT to this path (\"-\" for stdout; default: export directory)")
	cmd.Flags().BoolVar(&check, "check", false, "Validate the rendered SRT before writing it")
	cmd.Flags().BoolVar(&dest.Clipboard, "clipboard", false, "Also copy the SRT to the clipboard")
	return cmd
}
