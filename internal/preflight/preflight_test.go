package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"demoforge/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("Staging directory", dir); !result.Passed {
		t.Fatalf("expected pass for %s, got %#v", dir, result)
	}

	missing := filepath.Join(dir, "nope")
	result := CheckDirectoryAccess("Staging directory", missing)
	if result.Passed {
		t.Fatal("expected failure for missing directory")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if result := CheckDirectoryAccess("Staging directory", file); result.Passed {
		t.Fatal("expected failure for non-directory path")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	result := CheckDiskSpace("Staging disk space", t.TempDir())
	if result.Detail == "" {
		t.Fatal("expected detail with free space")
	}

	if result := CheckDiskSpace("Staging disk space", "/definitely/not/a/path"); result.Passed {
		t.Fatal("expected failure for missing path")
	}
}

func TestCheckStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	result := CheckStore(context.Background(), st)
	if !result.Passed {
		t.Fatalf("expected healthy store, got %#v", result)
	}
}

func TestCheckSuggestionsFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	result := CheckSuggestionsFromConfig(cfg)
	if !result.Passed || !strings.Contains(result.Detail, "fallback") {
		t.Fatalf("expected fallback notice, got %#v", result)
	}

	cfg.Suggestions.APIKey = "key"
	cfg.Suggestions.Model = "anthropic/claude-sonnet-4"
	result = CheckSuggestionsFromConfig(cfg)
	if !result.Passed || !strings.Contains(result.Detail, "Configured") {
		t.Fatalf("expected configured notice, got %#v", result)
	}
}

func TestCheckWebhook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if result := CheckWebhook(context.Background(), server.URL); !result.Passed {
		t.Fatalf("expected reachable webhook, got %#v", result)
	}
	if result := CheckWebhook(context.Background(), "not a url"); result.Passed {
		t.Fatal("expected failure for invalid url")
	}
}

func TestRunAllCoversConfiguredChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	st := testsupport.MustOpenStore(t, cfg)

	results := RunAll(context.Background(), cfg, st)
	if len(results) < 6 {
		t.Fatalf("expected at least 6 checks, got %d", len(results))
	}
	for _, result := range results {
		if !result.Passed {
			t.Fatalf("check %q failed: %s", result.Name, result.Detail)
		}
	}
}
