package session

import "fmt"

// Progress is the deterministic projection of a session's status onto a
// percentage scale plus a human-readable message. It is computed on read and
// never stored.
type Progress struct {
	Percentage float64 `json:"percentage"`
	Uploaded   int     `json:"uploaded"`
	Total      int     `json:"total"`
	Message    string  `json:"message"`
}

// Base percentages per status. The uploading band spans 30-80 and fills with
// the fraction of converted recordings; the stitching band spans 80-90 and
// fills with the fraction of media items processed.
const (
	progressSuggestions = 10.0
	progressReady       = 20.0
	progressUploading   = 30.0
	progressStitching   = 80.0
	progressStitched    = 90.0
	progressOptimizing  = 95.0
	progressComplete    = 100.0

	uploadingBand = progressStitching - progressUploading
	stitchingBand = progressStitched - progressStitching
)

// Project computes the progress projection for a session.
func Project(s *Session) Progress {
	total := len(s.Suggestions)
	uploaded := s.UploadedCount()
	converted := s.ConvertedCount()

	p := Progress{Uploaded: uploaded, Total: total}

	switch s.Status {
	case StatusInitialized:
		p.Percentage = 0
		p.Message = "Session initialized"
	case StatusGeneratingSuggestions:
		p.Percentage = progressSuggestions
		p.Message = "AI is analyzing your repository..."
	case StatusSuggestionsReady:
		p.Percentage = progressReady
		p.Message = "Ready for video uploads"
	case StatusUploading:
		p.Percentage = progressUploading
		if total > 0 {
			p.Percentage += uploadingBand * float64(converted) / float64(total)
		}
		p.Message = fmt.Sprintf("Uploaded %d of %d videos", uploaded, total)
	case StatusStitching:
		p.Percentage = progressStitching
		if s.StitchTotal > 0 {
			p.Percentage += stitchingBand * float64(s.StitchProcessed) / float64(s.StitchTotal)
		}
		p.Message = "Stitching videos together..."
	case StatusStitchingFailed:
		p.Percentage = progressStitching
		p.Message = failureMessage("Stitching failed", s.ErrorMessage)
	case StatusStitched:
		p.Percentage = progressStitched
		p.Message = "Videos stitched"
	case StatusOptimizing:
		p.Percentage = progressOptimizing
		p.Message = "Optimizing your demo video..."
	case StatusOptimizationFailed:
		p.Percentage = progressStitched
		p.Message = failureMessage("Optimization failed", s.ErrorMessage)
	case StatusCompleted:
		p.Percentage = progressComplete
		p.Message = "Demo video is ready!"
	default:
		p.Message = "Processing..."
	}
	return p
}

func failureMessage(prefix, detail string) string {
	if detail == "" {
		return prefix + ". Retry the stage to resume."
	}
	return fmt.Sprintf("%s: %s. Retry the stage to resume.", prefix, detail)
}
