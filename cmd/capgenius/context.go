package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"capgenius/internal/config"
	"capgenius/internal/editor"
	"capgenius/internal/logging"
	"capgenius/internal/project"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// cliLogger writes warnings and errors to stderr so they never mix with
// command output.
func (c *commandContext) cliLogger() *slog.Logger {
	cfg := c.configValue()
	format := "console"
	if cfg != nil && cfg.Logging.Format != "" {
		format = cfg.Logging.Format
	}
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// editorSession bundles an editor manager with the store it owns.
type editorSession struct {
	store   *project.Store
	manager *editor.Manager
}

// openEditor opens the project database and an editor manager over it. With
// withGenerator false no transcription provider is wired, so commands that only
// read projects work without credentials.
func (c *commandContext) openEditor(withGenerator bool) (*editorSession, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.cliLogger()

	var deps editor.Deps
	if withGenerator {
		if err := cfg.ValidateCredentials(); err != nil {
			return nil, err
		}
		deps, err = editor.DepsFromConfig(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("configure editor: %w", err)
		}
	} else {
		deps = editor.Deps{Logger: logger}
	}

	store, err := project.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open project database: %w", err)
	}
	return &editorSession{store: store, manager: editor.NewManager(store, deps)}, nil
}

func (e *editorSession) Close() error {
	err := e.manager.Close()
	if closeErr := e.store.Close(); err == nil {
		err = closeErr
	}
	return err
}

// resolveProject accepts a project ID or an exact, unique project name.
func (e *editorSession) resolveProject(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("project id or name is required")
	}
	summaries, err := e.manager.List(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, summary := range summaries {
		if summary.ID == ref {
			return summary.ID, nil
		}
		if strings.EqualFold(summary.Name, ref) {
			matches = append(matches, summary.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project name %q is ambiguous (%d matches); use the project id", ref, len(matches))
	}
}

// view restores a read-only copy of a saved project. It is not registered with
// the manager, so closing the CLI never writes it back over newer edits made
// by a running daemon.
func (e *editorSession) view(ctx context.Context, ref string) (*editor.Session, error) {
	id, err := e.resolveProject(ctx, ref)
	if err != nil {
		return nil, err
	}
	rec, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("project %q not found", ref)
	}
	sess, err := editor.Restore(rec, e.manager.Deps())
	if err != nil {
		return nil, err
	}
	sess.Suspend()
	return sess, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
