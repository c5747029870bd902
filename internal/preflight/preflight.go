package preflight

import (
	"context"

	"demoforge/internal/config"
	"demoforge/internal/store"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable readiness check for the given config.
// Checks gated by a config toggle are skipped when the feature is off.
func RunAll(ctx context.Context, cfg *config.Config, st *store.Store) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Blob directory", cfg.Paths.BlobDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDiskSpace("Staging disk space", cfg.Paths.StagingDir),
		CheckDiskSpace("Blob disk space", cfg.Paths.BlobDir),
	}

	if st != nil {
		results = append(results, CheckStore(ctx, st))
	}

	results = append(results, CheckSuggestionsFromConfig(cfg))

	if cfg.Notifications.WebhookURL != "" {
		results = append(results, CheckWebhook(ctx, cfg.Notifications.WebhookURL))
	}

	return results
}
