package session

import "strings"

// Status represents the lifecycle of a demo session.
type Status string

const (
	StatusInitialized           Status = "initialized"
	StatusGeneratingSuggestions Status = "generating_suggestions"
	StatusSuggestionsReady      Status = "suggestions_ready"
	StatusUploading             Status = "uploading"
	StatusStitching             Status = "stitching"
	StatusStitchingFailed       Status = "stitching_failed"
	StatusStitched              Status = "stitched"
	StatusOptimizing            Status = "optimizing"
	StatusOptimizationFailed    Status = "optimization_failed"
	StatusCompleted             Status = "completed"
)

var allStatuses = []Status{
	StatusInitialized,
	StatusGeneratingSuggestions,
	StatusSuggestionsReady,
	StatusUploading,
	StatusStitching,
	StatusStitchingFailed,
	StatusStitched,
	StatusOptimizing,
	StatusOptimizationFailed,
	StatusCompleted,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// validTransitions enumerates every session-level move the orchestrator may
// make. A failed stage is re-entered by retrying the same stage; nothing else
// ever moves a session backward.
var validTransitions = map[Status][]Status{
	StatusInitialized:           {StatusGeneratingSuggestions},
	StatusGeneratingSuggestions: {StatusSuggestionsReady},
	StatusSuggestionsReady:      {StatusUploading},
	StatusUploading:             {StatusStitching},
	StatusStitching:             {StatusStitched, StatusStitchingFailed},
	StatusStitchingFailed:       {StatusStitching},
	StatusStitched:              {StatusOptimizing},
	StatusOptimizing:            {StatusCompleted, StatusOptimizationFailed},
	StatusOptimizationFailed:    {StatusOptimizing},
	StatusCompleted:             {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsFailed reports whether a status is a stage-level failure state.
func IsFailed(status Status) bool {
	return status == StatusStitchingFailed || status == StatusOptimizationFailed
}

// IsTerminal reports whether a session has finished successfully.
func IsTerminal(status Status) bool {
	return status == StatusCompleted
}

// RetryTarget returns the stage a failed session re-enters on retry.
func RetryTarget(status Status) (Status, bool) {
	switch status {
	case StatusStitchingFailed:
		return StatusStitching, true
	case StatusOptimizationFailed:
		return StatusOptimizing, true
	default:
		return "", false
	}
}

// UploadState represents the lifecycle of a single suggestion's recording.
type UploadState string

const (
	UploadStateUploaded         UploadState = "uploaded"
	UploadStateValidated        UploadState = "validated"
	UploadStateValidationFailed UploadState = "validation_failed"
	UploadStateConverted        UploadState = "converted"
)

// uploadTransitions is the strict forward order for UploadRecord state.
// A validation_failed record is terminal until the client re-uploads, which
// resets the record to uploaded.
var uploadTransitions = map[UploadState][]UploadState{
	UploadStateUploaded:         {UploadStateValidated, UploadStateValidationFailed},
	UploadStateValidated:        {UploadStateConverted},
	UploadStateValidationFailed: {},
	UploadStateConverted:        {},
}

// CanAdvanceUpload reports whether an UploadRecord may move between states.
func CanAdvanceUpload(from, to UploadState) bool {
	for _, next := range uploadTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Stage identifies a media processing step reported through processor results.
type Stage string

const (
	StageValidate Stage = "validate"
	StageConvert  Stage = "convert"
	StageStitch   Stage = "stitch"
	StageOptimize Stage = "optimize"
)

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StageValidate, StageConvert, StageStitch, StageOptimize:
		return normalized, true
	default:
		return "", false
	}
}
