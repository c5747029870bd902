package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"demoforge/internal/config"
	"demoforge/internal/daemon"
	"demoforge/internal/logging"
	"demoforge/internal/store"
	"demoforge/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	apiURL     string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(t.TempDir(), "config.toml")
	writeTestConfig(t, configPath, cfg)

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	d, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		apiURL:     "http://" + d.Addr(),
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()

	full := append([]string{"--config", env.configPath, "--api", env.apiURL}, args...)
	cmd := newRootCommand()
	cmd.SetArgs(full)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestSessionListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "session", "list")
	if err != nil {
		t.Fatalf("session list: %v", err)
	}
	requireContains(t, out, "No sessions found")
}

func TestSessionCreateRejectsBadURL(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, env, "session", "create", "https://gitlab.com/acme/widget")
	if err == nil {
		t.Fatal("expected error for non-github url")
	}
	if !strings.Contains(err.Error(), "server:") {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestSessionStatusUnknown(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, env, "session", "status", "no-such-session")
	if err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestConfigInitCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCLI(t, env, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestTestNotifyWithoutWebhook(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "not configured")
}
