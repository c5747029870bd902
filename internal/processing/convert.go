package processing

import (
	"context"
	"fmt"

	"demoforge/internal/blobstore"
	"demoforge/internal/services"
	"demoforge/internal/session"
)

// Convert transcodes an uploaded clip to the pipeline's standard H.264/AAC
// MP4 at the primary resolution. The output key depends only on session and
// sequence, so repeated conversion of the same upload is idempotent.
func (p *Processors) Convert(ctx context.Context, sessionID string, sequence int) (*session.ConversionResult, error) {
	sourceKey := blobstore.UploadKey(sessionID, sequence)
	targetKey := blobstore.ConvertedKey(sessionID, sequence)

	sourcePath, err := p.blobs.PathFor(sourceKey)
	if err != nil {
		return nil, err
	}
	if _, err := p.blobs.Stat(ctx, sourceKey); err != nil {
		return nil, err
	}

	width, height, ok := resolutionSize(p.cfg.Media.PrimaryResolution)
	if !ok {
		width, height = 1280, 720
	}

	outPath, err := p.stagingFile(sessionID, fmt.Sprintf("convert-%d.mp4", sequence))
	if err != nil {
		return nil, err
	}

	// Scale to fit inside the target frame and pad to exact size so concat
	// inputs always share one geometry.
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=30",
		width, height, width, height,
	)
	args := []string{
		"-y", "-i", sourcePath,
		"-vf", filter,
		"-c:v", "libx264", "-preset", "medium", "-crf", "23",
		"-c:a", "aac", "-b:a", "128k", "-ar", "44100",
		"-movflags", "+faststart",
		outPath,
	}
	if _, err := p.runner.Run(ctx, p.cfg.FFmpegBinary(), args); err != nil {
		return nil, services.Wrap(services.ErrUpstream, "processing", "convert", sourceKey, err)
	}

	probed, err := p.probe(ctx, p.cfg.FFprobeBinary(), outPath)
	if err != nil {
		return nil, services.Wrap(services.ErrUpstream, "processing", "probe converted output", targetKey, err)
	}

	if err := p.publish(ctx, outPath, targetKey); err != nil {
		return nil, err
	}

	result := &session.ConversionResult{
		ObjectKey:       targetKey,
		SourceKey:       sourceKey,
		VideoCodec:      "h264",
		Width:           width,
		Height:          height,
		DurationSeconds: probed.DurationSeconds(),
	}
	if video, ok := probed.FirstVideoStream(); ok {
		result.VideoCodec = video.CodecName
		if video.Width > 0 {
			result.Width = video.Width
		}
		if video.Height > 0 {
			result.Height = video.Height
		}
	}
	return result, nil
}
