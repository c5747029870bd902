package session

import (
	"time"
)

// Session is the central aggregate: one end-to-end demo-creation job for a
// single repository. It is mutated exclusively through the orchestrator's
// update operations; media processors only return results that the
// orchestrator applies.
type Session struct {
	ID            string    `json:"id"`
	RepositoryURL string    `json:"repository_url"`
	ProjectName   string    `json:"project_name,omitempty"`
	Owner         string    `json:"owner,omitempty"`
	Status        Status    `json:"status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	Analysis      *Analysis `json:"analysis,omitempty"`

	// Suggestions are set once by the suggestion generation stage and are
	// thereafter immutable in count and content.
	Suggestions []Suggestion `json:"suggestions,omitempty"`

	// Uploads maps suggestion sequence numbers to per-suggestion records.
	Uploads map[int]*UploadRecord `json:"uploaded_videos,omitempty"`

	StitchedKey     string     `json:"stitched_key,omitempty"`
	StitchProcessed int        `json:"stitch_processed,omitempty"`
	StitchTotal     int        `json:"stitch_total,omitempty"`
	FinalArtifacts  []Artifact `json:"final_artifacts,omitempty"`
	ThumbnailKey    string     `json:"thumbnail_key,omitempty"`
	DemoURL         string     `json:"demo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// ExpiresAt is fixed at creation and never extended; the cleanup sweep
	// removes the session and its blobs once it has passed.
	ExpiresAt time.Time `json:"expires_at"`
}

// Suggestion is one proposed short video segment with recording instructions.
// Sequence numbers are 1-based and define the recommended recording order.
type Suggestion struct {
	Sequence        int      `json:"sequence_number"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	DurationSeconds int      `json:"duration_seconds"`
	NarrationScript string   `json:"narration_script,omitempty"`
	RecordingSteps  []string `json:"what_to_record,omitempty"`
	Highlights      []string `json:"key_highlights,omitempty"`
}

// Analysis is the structured output of the content analyzer.
type Analysis struct {
	ProjectType string   `json:"project_type"`
	TechStack   []string `json:"tech_stack,omitempty"`
	Features    []string `json:"features,omitempty"`
	Complexity  string   `json:"complexity"`
	Description string   `json:"description,omitempty"`
}

// UploadRecord tracks a single suggestion's uploaded clip through validation
// and conversion.
type UploadRecord struct {
	Sequence  int    `json:"sequence_number"`
	ObjectKey string `json:"object_key"`
	// Token is regenerated on every upload of this sequence. Processor
	// results carry the token they worked from, so results for a superseded
	// upload are rejected.
	Token      string            `json:"upload_token,omitempty"`
	State      UploadState       `json:"status"`
	Validation *ValidationResult `json:"validation,omitempty"`
	Conversion *ConversionResult `json:"conversion,omitempty"`
	UploadedAt time.Time         `json:"uploaded_at"`
}

// ValidationResult captures the validator's verdict for an uploaded clip.
type ValidationResult struct {
	Valid    bool      `json:"valid"`
	Errors   []string  `json:"errors,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
	Media    MediaInfo `json:"metadata"`
}

// MediaInfo describes the probed characteristics of a media object.
type MediaInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	VideoCodec      string  `json:"video_codec,omitempty"`
	AudioCodec      string  `json:"audio_codec,omitempty"`
	SizeBytes       int64   `json:"size_bytes"`
}

// ConversionResult captures the converter's standardized output.
type ConversionResult struct {
	ObjectKey       string  `json:"object_key"`
	SourceKey       string  `json:"source_key"`
	VideoCodec      string  `json:"video_codec"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Artifact is one per-resolution output of the optimizer.
type Artifact struct {
	Resolution string `json:"resolution"`
	ObjectKey  string `json:"object_key"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SizeBytes  int64  `json:"size_bytes"`
}

// SuggestionBySequence returns the suggestion with the given sequence number.
func (s *Session) SuggestionBySequence(seq int) (Suggestion, bool) {
	for _, suggestion := range s.Suggestions {
		if suggestion.Sequence == seq {
			return suggestion, true
		}
	}
	return Suggestion{}, false
}

// UploadedCount returns the number of suggestions with an upload record.
func (s *Session) UploadedCount() int {
	return len(s.Uploads)
}

// ConvertedCount returns the number of suggestions whose recording has been
// validated and converted.
func (s *Session) ConvertedCount() int {
	count := 0
	for _, record := range s.Uploads {
		if record != nil && record.State == UploadStateConverted {
			count++
		}
	}
	return count
}

// AllConverted reports whether every suggestion has a converted recording.
// This is the sole gating predicate for advancing to the stitching stage.
func (s *Session) AllConverted() bool {
	if len(s.Suggestions) == 0 {
		return false
	}
	for _, suggestion := range s.Suggestions {
		record, ok := s.Uploads[suggestion.Sequence]
		if !ok || record == nil || record.State != UploadStateConverted {
			return false
		}
	}
	return true
}

// ConvertedKeys returns converted object keys in suggestion order.
func (s *Session) ConvertedKeys() []string {
	keys := make([]string, 0, len(s.Suggestions))
	for _, suggestion := range s.Suggestions {
		record, ok := s.Uploads[suggestion.Sequence]
		if !ok || record == nil || record.Conversion == nil {
			continue
		}
		keys = append(keys, record.Conversion.ObjectKey)
	}
	return keys
}

// Expired reports whether the session has passed its expiry timestamp.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
