package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"capgenius/internal/config"
	"capgenius/internal/editor"
	"capgenius/internal/srt"
)

// srtDestination describes where rendered captions go.
type srtDestination struct {
	// Out is a file path, "-" for stdout, or empty for the configured export
	// directory.
	Out       string
	Clipboard bool
}

// deliverSRT writes content to the destination and returns the written path,
// which is empty when the captions went to stdout.
func deliverSRT(cmd *cobra.Command, cfg *config.Config, sess *editor.Session, content string, dest srtDestination) (string, error) {
	var path string
	switch out := strings.TrimSpace(dest.Out); out {
	case "-":
		fmt.Fprint(cmd.OutOrStdout(), content)
	case "":
		written, err := sess.ExportFile(cfg.ExportDir(), cfg.Export.Filename)
		if err != nil {
			return "", fmt.Errorf("export captions: %w", err)
		}
		path = written
	default:
		expanded, err := config.ExpandPath(out)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := srt.WriteFile(expanded, content); err != nil {
			return "", fmt.Errorf("write captions: %w", err)
		}
		path = expanded
	}
	if dest.Clipboard {
		if err := clipboard.WriteAll(content); err != nil {
			return path, fmt.Errorf("copy captions to clipboard: %w", err)
		}
	}
	return path, nil
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return srt.FormatTimestamp(seconds)
}
