package processing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"demoforge/internal/blobstore"
	"demoforge/internal/config"
	"demoforge/internal/logging"
	"demoforge/internal/media/ffprobe"
	"demoforge/internal/services"
)

// Resolution presets for the optimizer, keyed by config name.
var resolutionPresets = map[string]struct{ Width, Height int }{
	"1080p": {1920, 1080},
	"720p":  {1280, 720},
	"480p":  {854, 480},
}

// Runner executes an external media tool. Tests substitute a stub.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// ProbeFunc inspects a media file. Defaults to ffprobe.Inspect.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Processors runs the per-stage media operations. Every operation writes its
// output to a deterministic blob key, so re-running one is safe.
type Processors struct {
	cfg    *config.Config
	blobs  *blobstore.FSStore
	logger *slog.Logger
	runner Runner
	probe  ProbeFunc
}

// Option customizes a Processors instance.
type Option func(*Processors)

// WithRunner substitutes the external command runner.
func WithRunner(r Runner) Option {
	return func(p *Processors) {
		if r != nil {
			p.runner = r
		}
	}
}

// WithProbe substitutes the media prober.
func WithProbe(probe ProbeFunc) Option {
	return func(p *Processors) {
		if probe != nil {
			p.probe = probe
		}
	}
}

// New constructs the media processors.
func New(cfg *config.Config, blobs *blobstore.FSStore, logger *slog.Logger, opts ...Option) *Processors {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processors{
		cfg:    cfg,
		blobs:  blobs,
		logger: logger.With(logging.String(logging.FieldComponent, "processing")),
		runner: execRunner{},
		probe:  ffprobe.Inspect,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// stagingFile returns a scratch path under the session's staging directory,
// creating the directory as needed.
func (p *Processors) stagingFile(sessionID, name string) (string, error) {
	dir := filepath.Join(p.cfg.Paths.StagingDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrPersistence, "processing", "create staging dir", dir, err)
	}
	return filepath.Join(dir, name), nil
}

// publish moves a finished staging file into the blob store and removes the
// staging copy.
func (p *Processors) publish(ctx context.Context, stagingPath, key string) error {
	file, err := os.Open(stagingPath)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "processing", "open staging file", stagingPath, err)
	}
	defer file.Close()
	if err := p.blobs.Put(ctx, key, file); err != nil {
		return err
	}
	_ = os.Remove(stagingPath)
	return nil
}

// CleanStaging removes a session's scratch directory.
func (p *Processors) CleanStaging(sessionID string) {
	if sessionID == "" {
		return
	}
	_ = os.RemoveAll(filepath.Join(p.cfg.Paths.StagingDir, sessionID))
}

func resolutionSize(name string) (int, int, bool) {
	preset, ok := resolutionPresets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, 0, false
	}
	return preset.Width, preset.Height, true
}
