package preflight

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"demoforge/internal/config"
	"demoforge/internal/deps"
	"demoforge/internal/store"
)

// minFreeBytes is the floor below which media work is refused. A single
// session can stage several gigabytes of intermediate clips.
const minFreeBytes = 2 << 30

// CheckDirectoryAccess verifies that the directory exists and is
// readable and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has workable headroom.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%s (%.1f GiB free)", path, float64(free)/(1<<30))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " below 2 GiB floor"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckStore verifies the session database answers queries.
func CheckStore(ctx context.Context, st *store.Store) Result {
	const name = "Session store"
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := st.Health(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: st.Path()}
}

// CheckSuggestionsFromConfig reports whether model-backed suggestion
// generation is available. A missing key is not a failure: sessions fall
// back to template suggestions.
func CheckSuggestionsFromConfig(cfg *config.Config) Result {
	const name = "Suggestion model"
	if strings.TrimSpace(cfg.Suggestions.APIKey) == "" {
		return Result{Name: name, Passed: true, Detail: "No API key, template fallback active"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Configured (%s)", cfg.Suggestions.Model)}
}

// CheckWebhook verifies the notification endpoint is a reachable HTTP URL.
func CheckWebhook(ctx context.Context, webhookURL string) Result {
	const name = "Notification webhook"

	parsed, err := url.Parse(strings.TrimSpace(webhookURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Result{Name: name, Detail: "invalid webhook url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodHead, parsed.String(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("endpoint unhealthy (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckSystemDeps evaluates the external binaries the pipeline shells out
// to. Both the daemon startup path and the CLI status command use this.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.MediaRequirements(cfg))
}
