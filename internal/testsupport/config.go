package testsupport

import (
	"path/filepath"
	"testing"

	"demoforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.BlobDir = filepath.Join(base, "blobs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithWebhook sets the notification webhook URL on the test config.
func WithWebhook(url string) ConfigOption {
	return func(c *config.Config) {
		c.Notifications.WebhookURL = url
	}
}

// WithWorkerCount overrides the dispatcher worker count.
func WithWorkerCount(count int) ConfigOption {
	return func(c *config.Config) {
		c.Workflow.WorkerCount = count
	}
}
