package orchestrator

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"demoforge/internal/blobstore"
	"demoforge/internal/logging"
	"demoforge/internal/services"
	"demoforge/internal/session"
)

// RecordUpload stores an uploaded clip and resets the suggestion's upload
// record to the uploaded state. Re-uploading a sequence discards any earlier
// validation or conversion for it and issues a fresh fence token, so results
// from processors still working on the old bytes are rejected.
func (o *Orchestrator) RecordUpload(ctx context.Context, id string, sequence int, data io.Reader) (*session.Session, error) {
	if sequence < 1 {
		return nil, services.Wrap(services.ErrInvalidInput, "orchestrator", "record upload", fmt.Sprintf("sequence %d", sequence), nil)
	}

	// Pre-checks outside the blob write keep garbage out of the store for
	// obviously bad requests. The authoritative checks repeat inside Mutate.
	current, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uploadAllowed(current, sequence); err != nil {
		return nil, err
	}

	key := blobstore.UploadKey(id, sequence)
	if err := o.blobs.Put(ctx, key, data); err != nil {
		return nil, err
	}
	token := uuid.NewString()

	updated, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		if err := uploadAllowed(s, sequence); err != nil {
			return err
		}
		if s.Status == session.StatusSuggestionsReady {
			s.Status = session.StatusUploading
		}
		if s.Uploads == nil {
			s.Uploads = map[int]*session.UploadRecord{}
		}
		s.Uploads[sequence] = &session.UploadRecord{
			Sequence:   sequence,
			ObjectKey:  key,
			Token:      token,
			State:      session.UploadStateUploaded,
			UploadedAt: o.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.queue.Submit("process-upload", func(taskCtx context.Context) {
		o.ProcessUpload(taskCtx, id, sequence, token)
	})

	o.sessionLogger(ctx, id).Info("upload recorded",
		logging.Int("sequence", sequence),
		logging.String("object_key", key))
	return updated, nil
}

func uploadAllowed(s *session.Session, sequence int) error {
	switch s.Status {
	case session.StatusSuggestionsReady, session.StatusUploading:
	case session.StatusInitialized, session.StatusGeneratingSuggestions:
		return services.Wrap(services.ErrOutOfOrder, "orchestrator", "record upload", "suggestions are not ready yet", nil)
	default:
		return services.Wrap(services.ErrOutOfOrder, "orchestrator", "record upload", "uploads are closed once stitching has begun", nil)
	}
	if _, ok := s.SuggestionBySequence(sequence); !ok {
		return services.Wrap(services.ErrNotFound, "orchestrator", "record upload", fmt.Sprintf("no suggestion with sequence %d", sequence), nil)
	}
	return nil
}

// ProcessUpload runs validation and, when the clip passes, conversion for one
// upload. The token fences the work against newer uploads of the same
// sequence.
func (o *Orchestrator) ProcessUpload(ctx context.Context, id string, sequence int, token string) {
	logger := o.sessionLogger(ctx, id).With(logging.Int("sequence", sequence))

	validation, err := o.media.Validate(ctx, id, sequence)
	if err != nil {
		logger.Error("validation infrastructure failure", logging.Error(err))
		return
	}
	if err := o.AdvanceOnValidation(ctx, id, sequence, token, validation); err != nil {
		logger.Debug("validation result not applied", logging.Error(err))
		return
	}
	if !validation.Valid {
		logger.Info("upload failed validation",
			logging.String("reasons", strings.Join(validation.Errors, "; ")))
		return
	}

	conversion, err := o.media.Convert(ctx, id, sequence)
	if err != nil {
		logger.Error("conversion failed", logging.Error(err))
		return
	}
	if err := o.AdvanceOnConversion(ctx, id, sequence, token, conversion); err != nil {
		logger.Debug("conversion result not applied", logging.Error(err))
	}
}

// AdvanceOnValidation applies a validator verdict to an upload record.
// Applying the same result twice leaves the session byte-identical.
func (o *Orchestrator) AdvanceOnValidation(ctx context.Context, id string, sequence int, token string, result *session.ValidationResult) error {
	if result == nil {
		return services.Wrap(services.ErrInvalidInput, "orchestrator", "apply validation", "nil result", nil)
	}
	target := session.UploadStateValidated
	if !result.Valid {
		target = session.UploadStateValidationFailed
	}

	_, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		record, err := fencedRecord(s, sequence, token)
		if err != nil {
			return err
		}
		if record.State == target {
			// Duplicate delivery of the same verdict.
			record.Validation = result
			return nil
		}
		if !session.CanAdvanceUpload(record.State, target) {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "apply validation",
				fmt.Sprintf("record in state %s cannot accept %s", record.State, target), nil)
		}
		record.State = target
		record.Validation = result
		return nil
	})
	return err
}

// AdvanceOnConversion applies a conversion result and, when it makes the
// session fully converted, atomically advances the session to stitching.
// Exactly one result delivery observes that transition.
func (o *Orchestrator) AdvanceOnConversion(ctx context.Context, id string, sequence int, token string, result *session.ConversionResult) error {
	if result == nil {
		return services.Wrap(services.ErrInvalidInput, "orchestrator", "apply conversion", "nil result", nil)
	}

	gateFired := false
	_, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		gateFired = false
		record, err := fencedRecord(s, sequence, token)
		if err != nil {
			return err
		}
		if record.Conversion != nil && record.Conversion.SourceKey != result.SourceKey {
			return services.Wrap(services.ErrOutOfOrder, "orchestrator", "apply conversion", "conversion source does not match record", nil)
		}
		if record.State != session.UploadStateConverted {
			if !session.CanAdvanceUpload(record.State, session.UploadStateConverted) {
				return services.Wrap(services.ErrOutOfOrder, "orchestrator", "apply conversion",
					fmt.Sprintf("record in state %s cannot accept conversion", record.State), nil)
			}
			record.State = session.UploadStateConverted
		}
		record.Conversion = result

		// The stitch gate: the write that completes the last conversion is
		// the one that flips the session, inside the same transaction.
		if s.Status == session.StatusUploading && s.AllConverted() {
			s.Status = session.StatusStitching
			s.StitchTotal = len(s.Suggestions)
			s.StitchProcessed = 0
			gateFired = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	if gateFired {
		o.sessionLogger(ctx, id).Info("all clips converted, stitching scheduled")
		o.queue.Submit("stitch", func(taskCtx context.Context) {
			o.RunStitch(taskCtx, id)
		})
	}
	return nil
}

// CheckReadyForStitch re-evaluates the stitch gate for a session stuck in
// uploading, for example after a crash between the gate firing and the
// stitch task running. It is safe to call at any time.
func (o *Orchestrator) CheckReadyForStitch(ctx context.Context, id string) (bool, error) {
	fired := false
	_, err := o.store.Mutate(ctx, id, func(s *session.Session) error {
		fired = false
		if s.Status == session.StatusUploading && s.AllConverted() {
			s.Status = session.StatusStitching
			s.StitchTotal = len(s.Suggestions)
			s.StitchProcessed = 0
			fired = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if fired || o.stitchPending(ctx, id) {
		o.queue.Submit("stitch", func(taskCtx context.Context) {
			o.RunStitch(taskCtx, id)
		})
	}
	return fired, nil
}

// stitchPending reports whether the session sits in stitching with no
// recorded output, meaning a stitch task should be (re)scheduled.
func (o *Orchestrator) stitchPending(ctx context.Context, id string) bool {
	sess, err := o.store.Get(ctx, id)
	if err != nil {
		return false
	}
	return sess.Status == session.StatusStitching && sess.StitchedKey == ""
}

func fencedRecord(s *session.Session, sequence int, token string) (*session.UploadRecord, error) {
	record, ok := s.Uploads[sequence]
	if !ok || record == nil {
		return nil, services.Wrap(services.ErrNotFound, "orchestrator", "fence",
			fmt.Sprintf("no upload for sequence %d", sequence), nil)
	}
	if token != "" && record.Token != token {
		return nil, services.Wrap(services.ErrOutOfOrder, "orchestrator", "fence", "result is for a superseded upload", nil)
	}
	return record, nil
}
