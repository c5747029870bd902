package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"demoforge/internal/testsupport"
)

func TestNoopWhenUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	svc := NewService(cfg)
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", svc)
	}
	if err := svc.NotifyDemoCompleted(context.Background(), "id", "proj", "url"); err != nil {
		t.Fatalf("noop notify: %v", err)
	}
}

func TestWebhookDelivery(t *testing.T) {
	var received event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode body: %v", err)
		}
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhook(server.URL))
	svc := NewService(cfg)
	if err := svc.NotifySuggestionsReady(context.Background(), "sess-1", "widget", 3); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if received.Event != "suggestions_ready" || received.SessionID != "sess-1" || received.Count != 3 {
		t.Fatalf("unexpected event %+v", received)
	}
}

func TestCompletedAndErrorTogglesRespected(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhook(server.URL))
	cfg.Notifications.Completed = false
	cfg.Notifications.Errors = false
	svc := NewService(cfg)

	if err := svc.NotifyDemoCompleted(context.Background(), "id", "proj", "url"); err != nil {
		t.Fatalf("notify completed: %v", err)
	}
	if err := svc.NotifySessionFailed(context.Background(), "id", "stitching", "boom"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected suppressed deliveries, got %d", calls)
	}
}

func TestWebhookErrorSurface(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithWebhook(server.URL))
	svc := NewService(cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
