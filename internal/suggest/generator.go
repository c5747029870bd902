package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"demoforge/internal/config"
	"demoforge/internal/logging"
	"demoforge/internal/repofetch"
	"demoforge/internal/session"
)

const (
	defaultMaxVideos  = 5
	fallbackIntroSecs = 120
	fallbackDeepSecs  = 90
)

// Completer is the slice of the LLM client the generator needs.
type Completer interface {
	Configured() bool
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator produces demo video suggestions for an analyzed repository.
// When the model is unconfigured or fails, it falls back to a fixed pair of
// generic suggestions so the pipeline always has something to record.
type Generator struct {
	client Completer
	cfg    config.Suggestions
	media  config.Media
	logger *slog.Logger
}

// NewGenerator constructs a suggestion generator.
func NewGenerator(client Completer, cfg config.Suggestions, media config.Media, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		client: client,
		cfg:    cfg,
		media:  media,
		logger: logger.With(logging.String(logging.FieldComponent, "suggest")),
	}
}

type modelPayload struct {
	Suggestions []modelSuggestion `json:"suggestions"`
}

type modelSuggestion struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DurationSeconds int      `json:"duration_seconds"`
	NarrationScript string   `json:"narration_script"`
	RecordingSteps  []string `json:"what_to_record"`
	Highlights      []string `json:"key_highlights"`
}

// Generate returns between one and MaxVideos suggestions with 1-based
// sequence numbers. It never returns an empty slice without an error.
func (g *Generator) Generate(ctx context.Context, repo repofetch.Repository, a *session.Analysis) []session.Suggestion {
	maxVideos := g.cfg.MaxVideos
	if maxVideos <= 0 {
		maxVideos = defaultMaxVideos
	}

	if g.client == nil || !g.client.Configured() {
		g.logger.Info("suggestion model unconfigured, using fallback suggestions")
		return g.fallback(repo)
	}

	prompt := buildUserPrompt(repo, a, maxVideos, g.minSeconds(), g.maxSeconds())
	content, err := g.client.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		g.logger.Warn("suggestion model failed, using fallback suggestions", logging.Error(err))
		return g.fallback(repo)
	}

	var payload modelPayload
	if err := DecodeModelJSON(content, &payload); err != nil {
		g.logger.Warn("suggestion payload unparsable, using fallback suggestions", logging.Error(err))
		return g.fallback(repo)
	}

	suggestions := g.normalize(payload.Suggestions, maxVideos)
	if len(suggestions) == 0 {
		g.logger.Warn("suggestion payload empty after normalization, using fallback suggestions")
		return g.fallback(repo)
	}
	return suggestions
}

func (g *Generator) normalize(raw []modelSuggestion, maxVideos int) []session.Suggestion {
	var out []session.Suggestion
	for _, item := range raw {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		out = append(out, session.Suggestion{
			Sequence:        len(out) + 1,
			Title:           title,
			Description:     strings.TrimSpace(item.Description),
			DurationSeconds: g.clampDuration(item.DurationSeconds),
			NarrationScript: strings.TrimSpace(item.NarrationScript),
			RecordingSteps:  trimAll(item.RecordingSteps),
			Highlights:      trimAll(item.Highlights),
		})
		if len(out) == maxVideos {
			break
		}
	}
	return out
}

func (g *Generator) fallback(repo repofetch.Repository) []session.Suggestion {
	name := repo.ProjectName()
	if name == "" {
		name = "this project"
	}
	return []session.Suggestion{
		{
			Sequence:        1,
			Title:           fmt.Sprintf("Introduction to %s", name),
			Description:     fmt.Sprintf("A quick overview of the %s project and its key features", name),
			DurationSeconds: g.clampDuration(fallbackIntroSecs),
			NarrationScript: fmt.Sprintf("Discover what makes %s special. We walk through the project overview, its main features, and how to get started.", name),
			RecordingSteps:  []string{"Show the repository landing page", "Demonstrate the main features", "Walk through the quick start guide"},
			Highlights:      []string{"Project overview", "Main features", "Getting started"},
		},
		{
			Sequence:        2,
			Title:           fmt.Sprintf("Deep Dive into %s", name),
			Description:     fmt.Sprintf("Exploring the technical aspects of %s", name),
			DurationSeconds: g.clampDuration(fallbackDeepSecs),
			NarrationScript: fmt.Sprintf("Let's explore how %s works under the hood, from the system architecture to a walkthrough of the key components.", name),
			RecordingSteps:  []string{"Diagram the system architecture", "Walk through the key source files", "Show a practical end to end example"},
			Highlights:      []string{"Architecture overview", "Key components", "Use cases"},
		},
	}
}

func (g *Generator) minSeconds() int {
	if g.media.MinDurationSeconds > 0 {
		return g.media.MinDurationSeconds
	}
	return 5
}

func (g *Generator) maxSeconds() int {
	if g.media.MaxDurationSeconds > 0 {
		return g.media.MaxDurationSeconds
	}
	return 120
}

func (g *Generator) clampDuration(seconds int) int {
	min, max := g.minSeconds(), g.maxSeconds()
	if seconds < min {
		return min
	}
	if seconds > max {
		return max
	}
	return seconds
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
