package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"demoforge/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be reported as missing")
	}
	if cfg.Paths.APIBind != "127.0.0.1:7490" {
		t.Fatalf("unexpected api bind %q", cfg.Paths.APIBind)
	}
	if cfg.Workflow.SessionTTLDays != 30 {
		t.Fatalf("unexpected session TTL %d", cfg.Workflow.SessionTTLDays)
	}
	if cfg.Media.MaxUploadBytes != 100*1024*1024 {
		t.Fatalf("unexpected upload limit %d", cfg.Media.MaxUploadBytes)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := strings.Join([]string{
		"[paths]",
		`staging_dir = "` + filepath.Join(dir, "staging") + `"`,
		`blob_dir = "` + filepath.Join(dir, "blobs") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[media]",
		`resolutions = ["1080P", " 720p "]`,
		"[github]",
		`base_url = "https://api.github.example/"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected resolved path %q, got %q (exists=%v)", path, resolved, exists)
	}
	if got := cfg.Media.Resolutions; got[0] != "1080p" || got[1] != "720p" {
		t.Fatalf("resolutions not normalized: %v", got)
	}
	if cfg.GitHub.BaseURL != "https://api.github.example" {
		t.Fatalf("base url not trimmed: %q", cfg.GitHub.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad resolution", func(c *config.Config) { c.Media.Resolutions = []string{"4320p"} }},
		{"bad primary", func(c *config.Config) { c.Media.PrimaryResolution = "8k" }},
		{"inverted durations", func(c *config.Config) {
			c.Media.MinDurationSeconds = 200
			c.Media.MaxDurationSeconds = 100
		}},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "yaml" }},
		{"bad webhook", func(c *config.Config) { c.Notifications.WebhookURL = "not a url" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[workflow]") {
		t.Fatal("sample config missing workflow section")
	}
}
