package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"capgenius/internal/language"
	"capgenius/internal/style"
)

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the caption languages that can be generated",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			langs := language.Supported()
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"default":   cfg.Transcription.DefaultLanguage,
					"languages": langs,
				})
			}
			rows := make([][]string, 0, len(langs))
			for _, lang := range langs {
				rows = append(rows, []string{
					lang.Code,
					lang.Name,
					lang.Native,
					lang.ISO3,
					yesNo(lang.Code == cfg.Transcription.DefaultLanguage),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"Code", "Name", "Native", "ISO 639-2", "Default"},
				rows, nil,
			))
			return nil
		},
	}
}

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in and user caption style presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := style.LoadRegistry(cfg.Styles.PresetsFile)
			if err != nil {
				return err
			}
			presets := registry.List()
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]any{
					"presets": presets,
					"fonts":   style.Fonts,
				})
			}
			rows := make([][]string, 0, len(presets))
			for _, preset := range presets {
				source := "user"
				if preset.BuiltIn {
					source = "built-in"
				}
				rows = append(rows, []string{preset.Name, source, patchSummary(preset.Patch)})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Name", "Source", "Overrides"}, rows, nil))
			return nil
		},
	}
}

func patchSummary(p style.Patch) string {
	data, err := json.Marshal(p)
	if err != nil {
		return "?"
	}
	return string(data)
}
