package orchestrator

import (
	"context"
	"log/slog"

	"demoforge/internal/blobstore"
	"demoforge/internal/logging"
	"demoforge/internal/services"
	"demoforge/internal/session"
)

// RunStitch executes the stitching stage for a session currently in
// stitching. Duplicate submissions are harmless: any run that finds the
// session elsewhere exits without touching it.
func (o *Orchestrator) RunStitch(ctx context.Context, id string) {
	ctx = services.WithStage(ctx, string(session.StageStitch))
	logger := o.sessionLogger(ctx, id)

	sess, err := o.store.Get(ctx, id)
	if err != nil {
		logger.Error("load session for stitch", logging.Error(err))
		return
	}
	if sess.Status != session.StatusStitching {
		logger.Debug("stitch skipped", logging.String("status", string(sess.Status)))
		return
	}

	progress := func(processed, total int) {
		_, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
			if s.Status != session.StatusStitching {
				return services.Wrap(services.ErrOutOfOrder, "orchestrator", "stitch progress", "session left stitching", nil)
			}
			s.StitchProcessed = processed
			s.StitchTotal = total
			return nil
		})
		if err != nil {
			logger.Debug("stitch progress not recorded", logging.Error(err))
		}
	}

	stitchedKey, stitchErr := o.media.Stitch(ctx, sess, progress)
	if stitchErr != nil {
		o.failStage(ctx, id, session.StatusStitching, session.StatusStitchingFailed,
			"stitching failed: "+stitchErr.Error(), logger)
		return
	}

	_, err = o.store.Mutate(ctx, id, func(s *session.Session) error {
		if s.Status != session.StatusStitching {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "finish stitch", "session left stitching", nil)
		}
		s.Status = session.StatusStitched
		s.StitchedKey = stitchedKey
		s.ErrorMessage = ""
		return nil
	})
	if err != nil {
		logger.Error("record stitch result", logging.Error(err))
		return
	}
	logger.Info("stitching complete", logging.String("object_key", stitchedKey))

	// Optimization follows immediately; stitched is observable but never a
	// resting state under normal operation.
	_, err = o.store.Mutate(ctx, id, func(s *session.Session) error {
		if s.Status != session.StatusStitched {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "enter optimize", "session left stitched", nil)
		}
		s.Status = session.StatusOptimizing
		return nil
	})
	if err != nil {
		logger.Error("enter optimizing", logging.Error(err))
		return
	}
	o.queue.Submit("optimize", func(taskCtx context.Context) {
		o.RunOptimize(taskCtx, id)
	})
}

// RunOptimize executes the optimization stage for a session currently in
// optimizing.
func (o *Orchestrator) RunOptimize(ctx context.Context, id string) {
	ctx = services.WithStage(ctx, string(session.StageOptimize))
	logger := o.sessionLogger(ctx, id)

	sess, err := o.store.Get(ctx, id)
	if err != nil {
		logger.Error("load session for optimize", logging.Error(err))
		return
	}
	if sess.Status != session.StatusOptimizing {
		logger.Debug("optimize skipped", logging.String("status", string(sess.Status)))
		return
	}

	artifacts, thumbnailKey, optErr := o.media.Optimize(ctx, id)
	if optErr != nil {
		o.failStage(ctx, id, session.StatusOptimizing, session.StatusOptimizationFailed,
			"optimization failed: "+optErr.Error(), logger)
		return
	}

	demoURL := o.presentationURL(ctx, artifacts)

	updated, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		if s.Status != session.StatusOptimizing {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "finish optimize", "session left optimizing", nil)
		}
		s.Status = session.StatusCompleted
		s.FinalArtifacts = artifacts
		s.ThumbnailKey = thumbnailKey
		s.DemoURL = demoURL
		s.ErrorMessage = ""
		return nil
	})
	if err != nil {
		logger.Error("record optimize result", logging.Error(err))
		return
	}

	o.media.CleanStaging(id)
	logger.Info("session completed",
		logging.Int("artifacts", len(artifacts)),
		logging.String("demo_url", demoURL))
	if err := o.notifier.NotifyDemoCompleted(ctx, id, updated.ProjectName, demoURL); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
}

// presentationURL presigns the primary-resolution artifact, falling back to
// the first artifact available.
func (o *Orchestrator) presentationURL(ctx context.Context, artifacts []session.Artifact) string {
	if len(artifacts) == 0 {
		return ""
	}
	chosen := artifacts[0]
	for _, artifact := range artifacts {
		if artifact.Resolution == o.cfg.Media.PrimaryResolution {
			chosen = artifact
			break
		}
	}
	url, err := o.blobs.Presign(ctx, chosen.ObjectKey, o.presignTTL())
	if err != nil {
		o.logger.Warn("presign demo url failed", logging.Error(err))
		return ""
	}
	return url
}

// Retry moves a failed session back into its failed stage and reschedules
// the stage. Work already recorded (converted clips, stitch progress) is
// kept, so the retried stage resumes instead of restarting from scratch.
func (o *Orchestrator) Retry(ctx context.Context, id string) (*session.Session, error) {
	var resumed session.Status
	updated, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		target, ok := session.RetryTarget(s.Status)
		if !ok {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "retry",
				"session is not in a retryable failure state", nil)
		}
		s.Status = target
		s.ErrorMessage = ""
		resumed = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch resumed {
	case session.StatusStitching:
		o.queue.Submit("stitch", func(taskCtx context.Context) {
			o.RunStitch(taskCtx, id)
		})
	case session.StatusOptimizing:
		o.queue.Submit("optimize", func(taskCtx context.Context) {
			o.RunOptimize(taskCtx, id)
		})
	}
	o.sessionLogger(ctx, id).Info("stage retry scheduled", logging.String("stage", string(resumed)))
	return updated, nil
}

// Delete removes a session's blobs, staging scratch, and store row.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	if _, err := o.store.Get(ctx, id); err != nil {
		return err
	}
	for _, prefix := range blobstore.SessionPrefixes(id) {
		keys, err := o.blobs.List(ctx, prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := o.blobs.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	o.media.CleanStaging(id)
	if _, err := o.store.Remove(ctx, id); err != nil {
		return err
	}
	o.sessionLogger(ctx, id).Info("session deleted")
	return nil
}

// failStage records a stage failure, leaving the session retryable.
func (o *Orchestrator) failStage(ctx context.Context, id string, from, to session.Status, message string, logger *slog.Logger) {
	_, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		if s.Status != from {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "fail stage", "session moved on", nil)
		}
		s.Status = to
		s.ErrorMessage = message
		return nil
	})
	if err != nil {
		logger.Error("record stage failure", logging.Error(err))
		return
	}
	logger.Error("stage failed", logging.String("reason", message))
	if err := o.notifier.NotifySessionFailed(ctx, id, string(to), message); err != nil {
		logger.Warn("failure notification failed", logging.Error(err))
	}
}
