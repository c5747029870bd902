package orchestrator

import (
	"context"

	"github.com/google/uuid"

	"demoforge/internal/analysis"
	"demoforge/internal/logging"
	"demoforge/internal/repofetch"
	"demoforge/internal/services"
	"demoforge/internal/session"
)

// CreateSession validates the repository URL, persists a new session, and
// schedules the suggestion bootstrap in the background. The caller gets the
// session back immediately in the initialized state.
func (o *Orchestrator) CreateSession(ctx context.Context, repoURL string) (*session.Session, error) {
	owner, name, err := repofetch.ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	now := o.now().UTC()
	sess := &session.Session{
		ID:            uuid.NewString(),
		RepositoryURL: repoURL,
		ProjectName:   name,
		Owner:         owner,
		Status:        session.StatusInitialized,
		Uploads:       map[int]*session.UploadRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(o.sessionTTL()),
	}
	if err := o.store.Create(ctx, sess); err != nil {
		return nil, err
	}

	id := sess.ID
	o.queue.Submit("bootstrap", func(taskCtx context.Context) {
		o.Bootstrap(taskCtx, id)
	})

	o.sessionLogger(ctx, id).Info("session created",
		logging.String("repository", repoURL))
	return sess, nil
}

// Bootstrap runs the suggestion-generation stage: fetch repository metadata,
// analyze it, and generate suggestions. The session always reaches
// suggestions_ready; when the repository or model is unreachable the
// generator's fallback suggestions are used so uploads can proceed.
func (o *Orchestrator) Bootstrap(ctx context.Context, id string) {
	ctx = services.WithStage(ctx, "suggestions")
	logger := o.sessionLogger(ctx, id)

	sess, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		if s.Status != session.StatusInitialized {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "bootstrap", "session already bootstrapped", nil)
		}
		s.Status = session.StatusGeneratingSuggestions
		return nil
	})
	if err != nil {
		// A duplicate bootstrap submission lands here; the first one won.
		logger.Debug("bootstrap skipped", logging.Error(err))
		return
	}

	repo, fetchErr := o.fetcher.Fetch(ctx, sess.Owner, sess.ProjectName)
	var profile *session.Analysis
	if fetchErr != nil {
		logger.Warn("repository fetch failed; generating fallback suggestions", logging.Error(fetchErr))
		repo = repofetch.Repository{Owner: sess.Owner, Name: sess.ProjectName}
	} else {
		profile = analysis.Analyze(repo)
	}

	suggestions := o.suggester.Generate(ctx, repo, profile)

	updated, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		if s.Status != session.StatusGeneratingSuggestions {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "bootstrap", "unexpected status "+string(s.Status), nil)
		}
		s.Status = session.StatusSuggestionsReady
		s.Suggestions = suggestions
		s.Analysis = profile
		if repo.ProjectName() != "" {
			s.ProjectName = repo.ProjectName()
		}
		if repo.Owner != "" {
			s.Owner = repo.Owner
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to record suggestions", logging.Error(err))
		return
	}

	logger.Info("suggestions ready", logging.Int("count", len(updated.Suggestions)))
	if err := o.notifier.NotifySuggestionsReady(ctx, id, updated.ProjectName, len(updated.Suggestions)); err != nil {
		logger.Warn("suggestions notification failed", logging.Error(err))
	}
}
