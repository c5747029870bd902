package processing

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"demoforge/internal/blobstore"
	"demoforge/internal/config"
	"demoforge/internal/logging"
	"demoforge/internal/media/ffprobe"
	"demoforge/internal/session"
	"demoforge/internal/testsupport"
)

// fakeRunner records invocations and writes a placeholder output file to the
// final argument, which is where every ffmpeg invocation here puts its
// output path.
type fakeRunner struct {
	calls [][]string
	fail  bool
}

func (f *fakeRunner) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{binary}, args...))
	if f.fail {
		return nil, errors.New("ffmpeg exploded")
	}
	out := args[len(args)-1]
	if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
		return nil, err
	}
	return nil, nil
}

func fixedProbe(result ffprobe.Result, err error) ProbeFunc {
	return func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return result, err
	}
}

func goodProbeResult(duration string) ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", CodecName: "h264", Width: 1280, Height: 720},
			{CodecType: "audio", CodecName: "aac"},
		},
		Format: ffprobe.Format{Duration: duration},
	}
}

func newProcessors(t *testing.T, cfg *config.Config, opts ...Option) (*Processors, *blobstore.FSStore) {
	t.Helper()
	blobs, err := blobstore.NewFS(cfg.Paths.BlobDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return New(cfg, blobs, logging.NewNop(), opts...), blobs
}

func putUpload(t *testing.T, blobs *blobstore.FSStore, sessionID string, seq int, payload string) {
	t.Helper()
	if err := blobs.Put(context.Background(), blobstore.UploadKey(sessionID, seq), strings.NewReader(payload)); err != nil {
		t.Fatalf("Put upload: %v", err)
	}
}

func TestValidateAcceptsGoodUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	procs, blobs := newProcessors(t, cfg, WithProbe(fixedProbe(goodProbeResult("30.0"), nil)))
	putUpload(t, blobs, "sess", 1, "clip")

	result, err := procs.Validate(context.Background(), "sess", 1)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, errors: %v", result.Errors)
	}
	if result.Media.Width != 1280 || result.Media.VideoCodec != "h264" {
		t.Fatalf("unexpected media %+v", result.Media)
	}
}

func TestValidateRejectsShortClip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	procs, blobs := newProcessors(t, cfg, WithProbe(fixedProbe(goodProbeResult("2.0"), nil)))
	putUpload(t, blobs, "sess", 1, "clip")

	result, err := procs.Validate(context.Background(), "sess", 1)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid")
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "below") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestValidateRejectsOversizedUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Media.MaxUploadBytes = 2
	})
	procs, blobs := newProcessors(t, cfg, WithProbe(fixedProbe(goodProbeResult("30.0"), nil)))
	putUpload(t, blobs, "sess", 1, "too large")

	result, err := procs.Validate(context.Background(), "sess", 1)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid")
	}
}

func TestValidateUnreadableMedia(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	procs, blobs := newProcessors(t, cfg, WithProbe(fixedProbe(ffprobe.Result{}, errors.New("moov atom not found"))))
	putUpload(t, blobs, "sess", 1, "not video")

	result, err := procs.Validate(context.Background(), "sess", 1)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid")
	}
}

func TestValidateWarnsOnMissingAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	silent := ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "h264", Width: 640, Height: 360}},
		Format:  ffprobe.Format{Duration: "30.0"},
	}
	procs, blobs := newProcessors(t, cfg, WithProbe(fixedProbe(silent, nil)))
	putUpload(t, blobs, "sess", 1, "clip")

	result, err := procs.Validate(context.Background(), "sess", 1)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected silent-clip warning")
	}
}

func TestValidateWarnsOnLowResolution(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	small := ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", CodecName: "h264", Width: 854, Height: 480},
			{CodecType: "audio", CodecName: "aac"},
		},
		Format: ffprobe.Format{Duration: "30.0"},
	}
	procs, blobs := newProcessors(t, cfg, WithProbe(fixedProbe(small, nil)))
	putUpload(t, blobs, "sess", 1, "clip")

	result, err := procs.Validate(context.Background(), "sess", 1)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, errors: %v", result.Errors)
	}
	found := false
	for _, warning := range result.Warnings {
		if strings.Contains(warning, "below 720p") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected low-resolution warning, got %v", result.Warnings)
	}
}

func TestConvertProducesDeterministicKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := &fakeRunner{}
	procs, blobs := newProcessors(t, cfg,
		WithRunner(runner),
		WithProbe(fixedProbe(goodProbeResult("30.0"), nil)),
	)
	putUpload(t, blobs, "sess", 2, "clip")

	result, err := procs.Convert(context.Background(), "sess", 2)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.ObjectKey != "converted/sess/2.mp4" {
		t.Fatalf("ObjectKey = %q", result.ObjectKey)
	}
	if result.SourceKey != "uploads/sess/2" {
		t.Fatalf("SourceKey = %q", result.SourceKey)
	}
	if _, err := blobs.Stat(context.Background(), result.ObjectKey); err != nil {
		t.Fatalf("converted object missing: %v", err)
	}

	// Re-running replaces the same object.
	again, err := procs.Convert(context.Background(), "sess", 2)
	if err != nil {
		t.Fatalf("Convert again: %v", err)
	}
	if again.ObjectKey != result.ObjectKey {
		t.Fatalf("keys differ: %q vs %q", again.ObjectKey, result.ObjectKey)
	}
}

func TestConvertFailsOnToolError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	procs, blobs := newProcessors(t, cfg, WithRunner(&fakeRunner{fail: true}))
	putUpload(t, blobs, "sess", 1, "clip")

	if _, err := procs.Convert(context.Background(), "sess", 1); err == nil {
		t.Fatal("expected error")
	}
}

func stitchableSession(id string, clips int) *session.Session {
	sess := &session.Session{
		ID:      id,
		Status:  session.StatusStitching,
		Uploads: map[int]*session.UploadRecord{},
	}
	for seq := 1; seq <= clips; seq++ {
		sess.Suggestions = append(sess.Suggestions, session.Suggestion{
			Sequence: seq,
			Title:    "Part " + string(rune('0'+seq)),
		})
		sess.Uploads[seq] = &session.UploadRecord{
			Sequence:  seq,
			ObjectKey: blobstore.UploadKey(id, seq),
			State:     session.UploadStateConverted,
			Conversion: &session.ConversionResult{
				ObjectKey: blobstore.ConvertedKey(id, seq),
				SourceKey: blobstore.UploadKey(id, seq),
			},
			UploadedAt: time.Now(),
		}
	}
	return sess
}

func TestStitchConcatenatesInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := &fakeRunner{}
	procs, blobs := newProcessors(t, cfg, WithRunner(runner))
	sess := stitchableSession("sess", 2)
	for seq := 1; seq <= 2; seq++ {
		if err := blobs.Put(context.Background(), blobstore.ConvertedKey("sess", seq), strings.NewReader("clip")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	var ticks []int
	key, err := procs.Stitch(context.Background(), sess, func(processed, total int) {
		ticks = append(ticks, processed)
		if total != 2 {
			t.Errorf("total = %d", total)
		}
	})
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	if key != "stitched/sess/demo.mp4" {
		t.Fatalf("key = %q", key)
	}
	if len(ticks) != 2 || ticks[0] != 1 || ticks[1] != 2 {
		t.Fatalf("progress ticks = %v", ticks)
	}
	if _, err := blobs.Stat(context.Background(), key); err != nil {
		t.Fatalf("stitched object missing: %v", err)
	}

	// Two slide renders plus one concat.
	if len(runner.calls) != 3 {
		t.Fatalf("runner calls = %d", len(runner.calls))
	}
	last := runner.calls[len(runner.calls)-1]
	if !contains(last, "concat") {
		t.Fatalf("final call missing concat: %v", last)
	}
}

func TestStitchWithoutClipsFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	procs, _ := newProcessors(t, cfg, WithRunner(&fakeRunner{}))
	sess := &session.Session{ID: "sess"}
	if _, err := procs.Stitch(context.Background(), sess, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestOptimizeRendersAllResolutions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := &fakeRunner{}
	procs, blobs := newProcessors(t, cfg, WithRunner(runner))
	if err := blobs.Put(context.Background(), blobstore.StitchedKey("sess"), strings.NewReader("demo")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	artifacts, thumbKey, err := procs.Optimize(context.Background(), "sess")
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("artifacts = %+v", artifacts)
	}
	if artifacts[0].Resolution != "1080p" || artifacts[0].Width != 1920 {
		t.Fatalf("first artifact = %+v", artifacts[0])
	}
	if thumbKey != "final/sess/thumbnail.jpg" {
		t.Fatalf("thumbKey = %q", thumbKey)
	}
	for _, artifact := range artifacts {
		if artifact.SizeBytes == 0 {
			t.Fatalf("artifact missing size: %+v", artifact)
		}
	}
}

func TestOptimizeFailsWhenNothingRenders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	procs, blobs := newProcessors(t, cfg, WithRunner(&fakeRunner{fail: true}))
	if err := blobs.Put(context.Background(), blobstore.StitchedKey("sess"), strings.NewReader("demo")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, _, err := procs.Optimize(context.Background(), "sess"); err == nil {
		t.Fatal("expected error")
	}
}

func contains(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}
