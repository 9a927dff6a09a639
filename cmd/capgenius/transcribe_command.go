package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"capgenius/internal/config"
	"capgenius/internal/editor"
	"capgenius/internal/language"
	"capgenius/internal/media"
	"capgenius/internal/srt"
)

const sniffLen = 512

type transcribeResult struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Language  string `json:"language"`
	Captions  int    `json:"captions"`
	Path      string `json:"path,omitempty"`
	Clipboard bool   `json:"clipboard"`
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var name string
	var preset string
	var dest srtDestination

	cmd := &cobra.Command{
		Use:   "transcribe <video>",
		Short: "Generate captions for a local video and save them as a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ed, err := ctx.openEditor(true)
			if err != nil {
				return err
			}
			defer ed.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := stageVideo(runCtx, ed, args[0], name, preset)
			if err != nil {
				return err
			}
			progress := cmd.ErrOrStderr()
			if ctx.jsonOutput() {
				progress = io.Discard
			}
			if err := generate(runCtx, progress, sess, lang); err != nil {
				return err
			}

			content, err := sess.ExportSRT()
			if errors.Is(err, srt.ErrNothingToExport) {
				return fmt.Errorf("no speech was transcribed; project %s kept with no captions", sess.ID())
			}
			if err != nil {
				return err
			}
			if ctx.jsonOutput() && strings.TrimSpace(dest.Out) == "-" {
				return errors.New("--json cannot be combined with --out -")
			}
			path, err := deliverSRT(cmd, cfg, sess, content, dest)
			if err != nil {
				return err
			}

			status := sess.Status()
			result := transcribeResult{
				ProjectID: status.ID,
				Name:      status.Name,
				Language:  status.Language,
				Captions:  len(status.Captions),
				Path:      path,
				Clipboard: dest.Clipboard,
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			stderr := cmd.ErrOrStderr()
			fmt.Fprintf(stderr, "Generated %d captions (%s) for project %s\n",
				result.Captions, language.DisplayName(result.Language), result.ProjectID)
			if path != "" {
				fmt.Fprintf(stderr, "Wrote %s\n", path)
			}
			if dest.Clipboard {
				fmt.Fprintln(stderr, "Copied captions to clipboard")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Caption language code (default transcription.default_language)")
	cmd.Flags().StringVar(&name, "name", "", "Project name (default: video file name)")
	cmd.Flags().StringVar(&preset, "preset", "", "Caption style preset to apply")
	cmd.Flags().StringVarP(&dest.Out, "out", "o", "", "Write SRT to this path (\"-\" for stdout; default: export directory)")
	cmd.Flags().BoolVar(&dest.Clipboard, "clipboard", false, "Also copy the SRT to the clipboard")
	return cmd
}

// stageVideo creates a project and copies the video into it. The project is
// removed again when the video is rejected.
func stageVideo(ctx context.Context, ed *editorSession, videoArg, name, preset string) (*editor.Session, error) {
	path, err := config.ExpandPath(strings.TrimSpace(videoArg))
	if err != nil {
		return nil, fmt.Errorf("resolve video path: %w", err)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspect video: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read video: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind video: %w", err)
	}

	base := filepath.Base(path)
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	sess, err := ed.manager.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	upload := media.Upload{
		Name:     base,
		MimeType: media.DetectMIME(base, head[:n]),
		Size:     info.Size(),
		Body:     file,
	}
	err = ed.manager.Update(ctx, sess.ID(), func(s *editor.Session) error {
		if err := s.SelectVideo(ctx, upload); err != nil {
			return err
		}
		if strings.TrimSpace(preset) == "" {
			return nil
		}
		_, err := s.ApplyPreset(preset)
		return err
	})
	if err != nil {
		_ = ed.manager.Delete(context.WithoutCancel(ctx), sess.ID())
		if msg := sess.Message(); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, err
	}
	return sess, nil
}

// generate runs caption generation and waits for it. An interrupt cancels the
// request and leaves the project without new captions.
func generate(ctx context.Context, progress io.Writer, sess *editor.Session, lang string) error {
	if err := sess.Generate(ctx, lang); err != nil {
		return err
	}
	fmt.Fprintf(progress, "Generating captions for %s...\n", sess.Status().Name)
	err := sess.Wait(ctx)
	if ctx.Err() != nil {
		sess.CancelGeneration()
		_ = sess.Wait(context.Background())
		return ctx.Err()
	}
	if err != nil {
		if msg := sess.Message(); msg != "" {
			return fmt.Errorf("%s (project %s kept)", msg, sess.ID())
		}
		return err
	}
	return nil
}
