package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"capgenius/internal/config"
	"capgenius/internal/language"
)

const userAgent = "capgenius/0.1.0"

// Service publishes caption generation outcomes.
type Service interface {
	GenerationCompleted(ctx context.Context, project string, captions int, lang string) error
	GenerationFailed(ctx context.Context, project, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) GenerationCompleted(ctx context.Context, project string, captions int, lang string) error {
	message := fmt.Sprintf("%d captions ready for %s", captions, projectLabel(project))
	if lang = strings.TrimSpace(lang); lang != "" {
		message += " (" + language.DisplayName(lang) + ")"
	}
	return n.send(ctx, payload{
		title:   "capgenius - Captions Ready",
		message: message,
		tags:    []string{"capgenius", "captions", "completed"},
	})
}

func (n *ntfyService) GenerationFailed(ctx context.Context, project, reason string) error {
	var builder strings.Builder
	builder.WriteString("Caption generation failed for ")
	builder.WriteString(projectLabel(project))
	if reason = strings.TrimSpace(reason); reason != "" {
		builder.WriteString(": ")
		builder.WriteString(reason)
	}
	return n.send(ctx, payload{
		title:    "capgenius - Generation Failed",
		message:  builder.String(),
		tags:     []string{"capgenius", "captions", "error"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "capgenius - Test",
		message:  "Notification system test",
		tags:     []string{"capgenius", "test"},
		priority: "low",
	})
}

func projectLabel(project string) string {
	if project = strings.TrimSpace(project); project != "" {
		return project
	}
	return "untitled project"
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) GenerationCompleted(context.Context, string, int, string) error { return nil }
func (noopService) GenerationFailed(context.Context, string, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
