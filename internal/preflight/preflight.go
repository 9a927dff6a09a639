package preflight

import (
	"context"

	"capgenius/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes the local checks for cfg. Remote API checks are only run
// when remote is true.
func RunAll(ctx context.Context, cfg *config.Config, remote bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Video directory", cfg.VideoDir()),
		CheckFreeSpace("Video storage", cfg.VideoDir(), cfg.MaxVideoBytes()),
		CheckCredentials(cfg),
	}
	if remote && cfg.Transcription.Provider == "gemini" {
		results = append(results, CheckGemini(ctx, cfg.Gemini.BaseURL, cfg.Gemini.APIKey))
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
