package processing

import (
	"context"
	"fmt"

	"demoforge/internal/blobstore"
	"demoforge/internal/logging"
	"demoforge/internal/session"
)

// Validate probes an uploaded clip and checks it against the configured
// limits. A failing clip yields Valid=false with reasons; only infrastructure
// faults return an error.
func (p *Processors) Validate(ctx context.Context, sessionID string, sequence int) (*session.ValidationResult, error) {
	key := blobstore.UploadKey(sessionID, sequence)
	result := &session.ValidationResult{}

	size, err := p.blobs.Stat(ctx, key)
	if err != nil {
		return nil, err
	}
	result.Media.SizeBytes = size
	if max := p.cfg.Media.MaxUploadBytes; max > 0 && size > max {
		result.Errors = append(result.Errors, fmt.Sprintf("file size %d exceeds limit of %d bytes", size, max))
	}

	path, err := p.blobs.PathFor(key)
	if err != nil {
		return nil, err
	}
	probed, err := p.probe(ctx, p.cfg.FFprobeBinary(), path)
	if err != nil {
		p.logger.Warn("upload probe failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Int("sequence", sequence),
			logging.Error(err))
		result.Errors = append(result.Errors, "file is not readable as a video")
		result.Valid = false
		return result, nil
	}

	result.Media.DurationSeconds = probed.DurationSeconds()
	if video, ok := probed.FirstVideoStream(); ok {
		result.Media.Width = video.Width
		result.Media.Height = video.Height
		result.Media.VideoCodec = video.CodecName
	} else {
		result.Errors = append(result.Errors, "no video stream found")
	}
	for _, stream := range probed.Streams {
		if stream.CodecType == "audio" {
			result.Media.AudioCodec = stream.CodecName
			break
		}
	}

	duration := result.Media.DurationSeconds
	if min := p.cfg.Media.MinDurationSeconds; min > 0 && duration < float64(min) {
		result.Errors = append(result.Errors, fmt.Sprintf("duration %.1fs is below the %ds minimum", duration, min))
	}
	if max := p.cfg.Media.MaxDurationSeconds; max > 0 && duration > float64(max) {
		result.Errors = append(result.Errors, fmt.Sprintf("duration %.1fs is above the %ds maximum", duration, max))
	}
	if probed.AudioStreamCount() == 0 {
		result.Warnings = append(result.Warnings, "no audio stream; the demo will be silent for this clip")
	}
	if result.Media.Height > 0 && result.Media.Height < 720 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("resolution %dx%d is below 720p; output quality may suffer", result.Media.Width, result.Media.Height))
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}
