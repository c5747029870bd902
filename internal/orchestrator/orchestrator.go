package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"demoforge/internal/blobstore"
	"demoforge/internal/config"
	"demoforge/internal/dispatch"
	"demoforge/internal/logging"
	"demoforge/internal/notifications"
	"demoforge/internal/processing"
	"demoforge/internal/repofetch"
	"demoforge/internal/services"
	"demoforge/internal/session"
	"demoforge/internal/store"
)

// Fetcher retrieves repository metadata for a new session.
type Fetcher interface {
	Fetch(ctx context.Context, owner, name string) (repofetch.Repository, error)
}

// Suggester plans demo videos for an analyzed repository.
type Suggester interface {
	Generate(ctx context.Context, repo repofetch.Repository, a *session.Analysis) []session.Suggestion
}

// MediaProcessor is the slice of the processing package the orchestrator
// drives. Tests substitute stubs.
type MediaProcessor interface {
	Validate(ctx context.Context, sessionID string, sequence int) (*session.ValidationResult, error)
	Convert(ctx context.Context, sessionID string, sequence int) (*session.ConversionResult, error)
	Stitch(ctx context.Context, sess *session.Session, progress processing.StitchProgress) (string, error)
	Optimize(ctx context.Context, sessionID string) ([]session.Artifact, string, error)
	CleanStaging(sessionID string)
}

// Orchestrator owns every session state transition. Media processors and the
// HTTP surface never write session state directly; they hand results to the
// orchestrator, which applies them under the store's transactional mutate.
type Orchestrator struct {
	cfg       *config.Config
	store     *store.Store
	blobs     blobstore.Store
	fetcher   Fetcher
	suggester Suggester
	media     MediaProcessor
	notifier  notifications.Service
	queue     dispatch.Queue
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes the orchestrator.
type Option func(*Orchestrator)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New constructs the orchestrator.
func New(
	cfg *config.Config,
	st *store.Store,
	blobs blobstore.Store,
	fetcher Fetcher,
	suggester Suggester,
	media MediaProcessor,
	notifier notifications.Service,
	queue dispatch.Queue,
	logger *slog.Logger,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	o := &Orchestrator{
		cfg:       cfg,
		store:     st,
		blobs:     blobs,
		fetcher:   fetcher,
		suggester: suggester,
		media:     media,
		notifier:  notifier,
		queue:     queue,
		logger:    logger.With(logging.String(logging.FieldComponent, "orchestrator")),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetStatus returns the session and its projected progress. It performs no
// writes and never advances state.
func (o *Orchestrator) GetStatus(ctx context.Context, id string) (*session.Session, session.Progress, error) {
	sess, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, session.Progress{}, err
	}
	return sess, session.Project(sess), nil
}

func (o *Orchestrator) sessionTTL() time.Duration {
	days := o.cfg.Workflow.SessionTTLDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

func (o *Orchestrator) presignTTL() time.Duration {
	hours := o.cfg.Workflow.PresignTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// sessionLogger tags log lines with the session id plus whatever the caller's
// context already carries, such as the API request's correlation id.
func (o *Orchestrator) sessionLogger(ctx context.Context, id string) *slog.Logger {
	return logging.WithContext(services.WithSessionID(ctx, id), o.logger)
}
