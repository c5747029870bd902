package analysis

import (
	"strings"
	"testing"

	"demoforge/internal/repofetch"
)

const sampleReadme = `# Widget

Widget is a command-line tool for shipping widgets fast.

## Features

- Ships widgets over [HTTP](https://example.com)
- Runs inside Docker containers
- Stores state in SQLite

## Install

pip install widget
`

func TestAnalyzeClassifiesProject(t *testing.T) {
	repo := repofetch.Repository{
		Name:        "widget",
		Description: "Ship widgets fast",
		Language:    "Go",
		Readme:      sampleReadme,
	}
	result := Analyze(repo)
	if result.ProjectType != "cli tool" {
		t.Fatalf("ProjectType = %q", result.ProjectType)
	}
	if result.Description != "Ship widgets fast" {
		t.Fatalf("Description = %q", result.Description)
	}
	if len(result.Features) != 3 {
		t.Fatalf("Features = %v", result.Features)
	}
	if result.Features[0] != "Ships widgets over HTTP" {
		t.Fatalf("expected markdown links stripped, got %q", result.Features[0])
	}
	joined := strings.Join(result.TechStack, ",")
	for _, want := range []string{"Go", "Docker", "SQLite"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("TechStack missing %s: %v", want, result.TechStack)
		}
	}
}

func TestAnalyzeEmptyRepo(t *testing.T) {
	result := Analyze(repofetch.Repository{Name: "bare"})
	if result.ProjectType != "software project" {
		t.Fatalf("ProjectType = %q", result.ProjectType)
	}
	if result.Complexity != "beginner" {
		t.Fatalf("Complexity = %q", result.Complexity)
	}
	if len(result.Features) != 0 {
		t.Fatalf("Features = %v", result.Features)
	}
}

func TestAnalyzeComplexity(t *testing.T) {
	repo := repofetch.Repository{
		Readme: "Distributed kubernetes cluster with microservice mesh, docker, database, queue and api auth.",
	}
	if got := Analyze(repo).Complexity; got != "advanced" {
		t.Fatalf("Complexity = %q", got)
	}
}

func TestAnalyzeFallsBackToReadmeParagraph(t *testing.T) {
	repo := repofetch.Repository{Readme: "# Title\n\nFirst real paragraph here.\n\nSecond."}
	if got := Analyze(repo).Description; got != "First real paragraph here." {
		t.Fatalf("Description = %q", got)
	}
}
