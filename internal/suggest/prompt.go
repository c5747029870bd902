package suggest

import (
	"fmt"
	"strings"

	"demoforge/internal/repofetch"
	"demoforge/internal/session"
)

const systemPrompt = `You are a developer-marketing assistant that plans short demo videos
for software projects. You always respond with a single JSON object and
nothing else. The object has one key, "suggestions", holding an array of
video plans. Each plan has these keys:
  "title"            - short video title
  "description"      - one or two sentences on what the video shows
  "duration_seconds" - integer length of the finished clip
  "narration_script" - the words the presenter speaks, conversational tone
  "what_to_record"   - array of concrete screen-recording steps
  "key_highlights"   - array of the standout points the video should land`

const maxReadmePromptBytes = 12 << 10

func buildUserPrompt(repo repofetch.Repository, a *session.Analysis, maxVideos, minSeconds, maxSeconds int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan at most %d demo videos for the project below.\n", maxVideos)
	fmt.Fprintf(&b, "Each video must run between %d and %d seconds.\n\n", minSeconds, maxSeconds)
	fmt.Fprintf(&b, "Project: %s\n", repo.ProjectName())
	if repo.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", repo.Description)
	}
	if repo.Language != "" {
		fmt.Fprintf(&b, "Primary language: %s\n", repo.Language)
	}
	if len(repo.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(repo.Topics, ", "))
	}
	if a != nil {
		fmt.Fprintf(&b, "Project type: %s\n", a.ProjectType)
		fmt.Fprintf(&b, "Complexity: %s\n", a.Complexity)
		if len(a.TechStack) > 0 {
			fmt.Fprintf(&b, "Tech stack: %s\n", strings.Join(a.TechStack, ", "))
		}
		if len(a.Features) > 0 {
			fmt.Fprintf(&b, "Notable features:\n")
			for _, f := range a.Features {
				fmt.Fprintf(&b, "  - %s\n", f)
			}
		}
	}
	if readme := strings.TrimSpace(repo.Readme); readme != "" {
		if len(readme) > maxReadmePromptBytes {
			readme = readme[:maxReadmePromptBytes]
		}
		fmt.Fprintf(&b, "\nREADME:\n%s\n", readme)
	}
	return b.String()
}
