package blobstore

import "fmt"

// Key layout for session objects. Every key is deterministic for its inputs
// so a repeated processor invocation overwrites its own prior output.

func UploadKey(sessionID string, sequence int) string {
	return fmt.Sprintf("uploads/%s/%d", sessionID, sequence)
}

func ConvertedKey(sessionID string, sequence int) string {
	return fmt.Sprintf("converted/%s/%d.mp4", sessionID, sequence)
}

func SlideImageKey(sessionID string, sequence int) string {
	return fmt.Sprintf("slides/%s/%d.png", sessionID, sequence)
}

func SlideClipKey(sessionID string, sequence int) string {
	return fmt.Sprintf("slides/%s/%d.mp4", sessionID, sequence)
}

func StitchedKey(sessionID string) string {
	return fmt.Sprintf("stitched/%s/demo.mp4", sessionID)
}

func FinalKey(sessionID, resolution string) string {
	return fmt.Sprintf("final/%s/demo_%s.mp4", sessionID, resolution)
}

func ThumbnailKey(sessionID string) string {
	return fmt.Sprintf("final/%s/thumbnail.jpg", sessionID)
}

// SessionPrefix covers every object a session owns, across all stages.
func SessionPrefixes(sessionID string) []string {
	return []string{
		"uploads/" + sessionID + "/",
		"converted/" + sessionID + "/",
		"slides/" + sessionID + "/",
		"stitched/" + sessionID + "/",
		"final/" + sessionID + "/",
	}
}
