package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"demoforge/internal/config"
)

const userAgent = "DemoForge/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifySuggestionsReady(ctx context.Context, sessionID, projectName string, count int) error
	NotifyDemoCompleted(ctx context.Context, sessionID, projectName, demoURL string) error
	NotifySessionFailed(ctx context.Context, sessionID, stage, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a webhook-backed notification service. When no webhook
// URL is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	url := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if url == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		endpoint:      url,
		client:        &http.Client{Timeout: timeout},
		sendCompleted: cfg.Notifications.Completed,
		sendErrors:    cfg.Notifications.Errors,
	}
}

type event struct {
	Event       string `json:"event"`
	SessionID   string `json:"session_id,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	Stage       string `json:"stage,omitempty"`
	Message     string `json:"message"`
	DemoURL     string `json:"demo_url,omitempty"`
	Count       int    `json:"count,omitempty"`
}

type webhookService struct {
	endpoint      string
	client        *http.Client
	sendCompleted bool
	sendErrors    bool
}

func (w *webhookService) NotifySuggestionsReady(ctx context.Context, sessionID, projectName string, count int) error {
	return w.send(ctx, event{
		Event:       "suggestions_ready",
		SessionID:   sessionID,
		ProjectName: strings.TrimSpace(projectName),
		Message:     fmt.Sprintf("%d video suggestions are ready for %s", count, strings.TrimSpace(projectName)),
		Count:       count,
	})
}

func (w *webhookService) NotifyDemoCompleted(ctx context.Context, sessionID, projectName, demoURL string) error {
	if !w.sendCompleted {
		return nil
	}
	return w.send(ctx, event{
		Event:       "demo_completed",
		SessionID:   sessionID,
		ProjectName: strings.TrimSpace(projectName),
		Message:     fmt.Sprintf("Demo video ready for %s", strings.TrimSpace(projectName)),
		DemoURL:     strings.TrimSpace(demoURL),
	})
}

func (w *webhookService) NotifySessionFailed(ctx context.Context, sessionID, stage, reason string) error {
	if !w.sendErrors {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown failure"
	}
	return w.send(ctx, event{
		Event:     "session_failed",
		SessionID: sessionID,
		Stage:     strings.TrimSpace(stage),
		Message:   reason,
	})
}

func (w *webhookService) TestNotification(ctx context.Context) error {
	return w.send(ctx, event{
		Event:   "test",
		Message: "Notification system test",
	})
}

func (w *webhookService) send(ctx context.Context, data event) error {
	if w == nil || w.client == nil {
		return nil
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySuggestionsReady(context.Context, string, string, int) error { return nil }
func (noopService) NotifyDemoCompleted(context.Context, string, string, string) error { return nil }
func (noopService) NotifySessionFailed(context.Context, string, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error                            { return nil }
