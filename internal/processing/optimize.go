package processing

import (
	"context"
	"fmt"

	"demoforge/internal/blobstore"
	"demoforge/internal/logging"
	"demoforge/internal/services"
	"demoforge/internal/session"
)

// Optimize renders the stitched demo at each configured resolution and grabs
// a thumbnail frame. A resolution that fails is skipped rather than failing
// the whole stage, as long as at least one output succeeds.
func (p *Processors) Optimize(ctx context.Context, sessionID string) ([]session.Artifact, string, error) {
	stitchedKey := blobstore.StitchedKey(sessionID)
	sourcePath, err := p.blobs.PathFor(stitchedKey)
	if err != nil {
		return nil, "", err
	}
	if _, err := p.blobs.Stat(ctx, stitchedKey); err != nil {
		return nil, "", err
	}

	resolutions := p.cfg.Media.Resolutions
	if len(resolutions) == 0 {
		resolutions = []string{"720p"}
	}

	var artifacts []session.Artifact
	var lastErr error
	for _, name := range resolutions {
		width, height, ok := resolutionSize(name)
		if !ok {
			p.logger.Warn("unknown resolution preset, skipping",
				logging.String(logging.FieldSessionID, sessionID),
				logging.String("resolution", name))
			continue
		}
		artifact, err := p.renderResolution(ctx, sessionID, sourcePath, name, width, height)
		if err != nil {
			lastErr = err
			p.logger.Warn("resolution render failed",
				logging.String(logging.FieldSessionID, sessionID),
				logging.String("resolution", name),
				logging.Error(err))
			continue
		}
		artifacts = append(artifacts, artifact)
	}
	if len(artifacts) == 0 {
		if lastErr == nil {
			lastErr = services.Wrap(services.ErrInvalidInput, "processing", "optimize", "no usable resolutions configured", nil)
		}
		return nil, "", lastErr
	}

	thumbKey, err := p.renderThumbnail(ctx, sessionID, sourcePath)
	if err != nil {
		// A missing thumbnail does not invalidate the final videos.
		p.logger.Warn("thumbnail render failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err))
		thumbKey = ""
	}
	return artifacts, thumbKey, nil
}

func (p *Processors) renderResolution(ctx context.Context, sessionID, sourcePath, name string, width, height int) (session.Artifact, error) {
	var artifact session.Artifact
	outPath, err := p.stagingFile(sessionID, fmt.Sprintf("final-%s.mp4", name))
	if err != nil {
		return artifact, err
	}
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		width, height, width, height,
	)
	args := []string{
		"-y", "-i", sourcePath,
		"-vf", filter,
		"-c:v", "libx264", "-preset", "medium", "-crf", "23",
		"-c:a", "aac", "-b:a", "128k",
		"-movflags", "+faststart",
		outPath,
	}
	if _, err := p.runner.Run(ctx, p.cfg.FFmpegBinary(), args); err != nil {
		return artifact, services.Wrap(services.ErrUpstream, "processing", "render resolution", name, err)
	}

	key := blobstore.FinalKey(sessionID, name)
	if err := p.publish(ctx, outPath, key); err != nil {
		return artifact, err
	}
	size, err := p.blobs.Stat(ctx, key)
	if err != nil {
		return artifact, err
	}
	return session.Artifact{
		Resolution: name,
		ObjectKey:  key,
		Width:      width,
		Height:     height,
		SizeBytes:  size,
	}, nil
}

// renderThumbnail grabs a frame one second in.
func (p *Processors) renderThumbnail(ctx context.Context, sessionID, sourcePath string) (string, error) {
	outPath, err := p.stagingFile(sessionID, "thumbnail.jpg")
	if err != nil {
		return "", err
	}
	args := []string{
		"-y",
		"-ss", "1",
		"-i", sourcePath,
		"-frames:v", "1",
		"-q:v", "2",
		outPath,
	}
	if _, err := p.runner.Run(ctx, p.cfg.FFmpegBinary(), args); err != nil {
		return "", services.Wrap(services.ErrUpstream, "processing", "render thumbnail", sessionID, err)
	}
	key := blobstore.ThumbnailKey(sessionID)
	if err := p.publish(ctx, outPath, key); err != nil {
		return "", err
	}
	return key, nil
}
