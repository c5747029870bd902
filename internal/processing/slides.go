package processing

import (
	"context"
	"fmt"
	"strings"

	"demoforge/internal/blobstore"
	"demoforge/internal/services"
	"demoforge/internal/session"
)

const defaultSlideSeconds = 3

// RenderSlide produces a short title-card clip for a suggestion, encoded with
// the same geometry and codecs as converted uploads so the stitcher can
// stream-copy. A silent audio track keeps the concat inputs uniform.
func (p *Processors) RenderSlide(ctx context.Context, sessionID string, suggestion session.Suggestion) (string, error) {
	seconds := p.cfg.Media.SlideSeconds
	if seconds <= 0 {
		seconds = defaultSlideSeconds
	}
	width, height, ok := resolutionSize(p.cfg.Media.PrimaryResolution)
	if !ok {
		width, height = 1280, 720
	}

	outPath, err := p.stagingFile(sessionID, fmt.Sprintf("slide-%d.mp4", suggestion.Sequence))
	if err != nil {
		return "", err
	}

	title := escapeDrawtext(suggestion.Title)
	args := []string{
		"-y",
		"-f", "lavfi", "-i", fmt.Sprintf("color=c=0x1a1a2e:s=%dx%d:d=%d", width, height, seconds),
		"-f", "lavfi", "-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=44100:d=%d", seconds),
		"-vf", fmt.Sprintf("drawtext=text='%s':fontsize=64:fontcolor=white:x=(w-text_w)/2:y=(h-text_h)/2,fps=30", title),
		"-c:v", "libx264", "-preset", "medium", "-crf", "23",
		"-c:a", "aac", "-b:a", "128k", "-ar", "44100",
		"-shortest",
		"-movflags", "+faststart",
		outPath,
	}
	if _, err := p.runner.Run(ctx, p.cfg.FFmpegBinary(), args); err != nil {
		return "", services.Wrap(services.ErrUpstream, "processing", "render slide", suggestion.Title, err)
	}

	key := blobstore.SlideClipKey(sessionID, suggestion.Sequence)
	if err := p.publish(ctx, outPath, key); err != nil {
		return "", err
	}
	return key, nil
}

// escapeDrawtext quotes the characters ffmpeg's drawtext filter treats
// specially.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}
