package processing

import (
	"context"
	"fmt"
	"os"
	"strings"

	"demoforge/internal/blobstore"
	"demoforge/internal/logging"
	"demoforge/internal/services"
	"demoforge/internal/session"
)

// StitchProgress reports segments completed out of the total while stitching.
type StitchProgress func(processed, total int)

// Stitch interleaves title-card slides with the converted clips in suggestion
// order and concatenates them into a single demo video. Every input was
// encoded with identical settings, so the concat runs with stream copy.
func (p *Processors) Stitch(ctx context.Context, sess *session.Session, progress StitchProgress) (string, error) {
	if progress == nil {
		progress = func(int, int) {}
	}
	converted := sess.ConvertedKeys()
	if len(converted) == 0 {
		return "", services.Wrap(services.ErrInvalidInput, "processing", "stitch", "no converted clips", nil)
	}
	total := len(converted)

	var segments []string
	processed := 0
	for _, suggestion := range sess.Suggestions {
		record, ok := sess.Uploads[suggestion.Sequence]
		if !ok || record == nil || record.Conversion == nil {
			continue
		}
		slideKey, err := p.RenderSlide(ctx, sess.ID, suggestion)
		if err != nil {
			return "", err
		}
		slidePath, err := p.blobs.PathFor(slideKey)
		if err != nil {
			return "", err
		}
		clipPath, err := p.blobs.PathFor(record.Conversion.ObjectKey)
		if err != nil {
			return "", err
		}
		if _, statErr := os.Stat(clipPath); statErr != nil {
			return "", services.Wrap(services.ErrPersistence, "processing", "stitch", "converted clip missing: "+record.Conversion.ObjectKey, statErr)
		}
		segments = append(segments, slidePath, clipPath)
		processed++
		progress(processed, total)
	}

	listPath, err := p.stagingFile(sess.ID, "concat.txt")
	if err != nil {
		return "", err
	}
	var list strings.Builder
	for _, segment := range segments {
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(segment, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return "", services.Wrap(services.ErrPersistence, "processing", "write concat list", listPath, err)
	}
	defer os.Remove(listPath)

	outPath, err := p.stagingFile(sess.ID, "demo.mp4")
	if err != nil {
		return "", err
	}
	args := []string{
		"-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outPath,
	}
	if _, err := p.runner.Run(ctx, p.cfg.FFmpegBinary(), args); err != nil {
		return "", services.Wrap(services.ErrUpstream, "processing", "concatenate segments", sess.ID, err)
	}

	key := blobstore.StitchedKey(sess.ID)
	if err := p.publish(ctx, outPath, key); err != nil {
		return "", err
	}
	p.logger.Info("stitched demo video",
		logging.String(logging.FieldSessionID, sess.ID),
		logging.Int("segments", len(segments)))
	return key, nil
}
