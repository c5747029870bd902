package analysis

import (
	"regexp"
	"sort"
	"strings"

	"demoforge/internal/repofetch"
	"demoforge/internal/session"
)

const (
	maxFeatures    = 8
	maxStackItems  = 6
	maxDescription = 400
)

var (
	headingPattern = regexp.MustCompile(`(?m)^#{1,3}\s+(.+)$`)
	bulletPattern  = regexp.MustCompile(`(?m)^\s*[-*]\s+(.+)$`)
	linkPattern    = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	badgePattern   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	codePattern    = regexp.MustCompile("`([^`]*)`")
)

// Keyword tables scored against README and topic text. The first matching
// group wins for project type.
var projectTypeSignals = []struct {
	kind    string
	signals []string
}{
	{"cli tool", []string{"cli", "command line", "command-line", "terminal"}},
	{"web application", []string{"web app", "webapp", "frontend", "react", "vue", "next.js", "website"}},
	{"api service", []string{"rest api", "graphql", "api server", "microservice", "endpoint"}},
	{"library", []string{"library", "package", "sdk", "framework", "module"}},
	{"data tool", []string{"machine learning", "data pipeline", "dataset", "analytics", "etl"}},
	{"infrastructure", []string{"kubernetes", "terraform", "docker", "deployment", "infrastructure"}},
}

var stackSignals = map[string][]string{
	"Go":         {"golang", " go ", "go.mod"},
	"Python":     {"python", "pip install", "pyproject"},
	"JavaScript": {"javascript", "node.js", "nodejs", "npm install"},
	"TypeScript": {"typescript", "tsconfig"},
	"Rust":       {"rust", "cargo"},
	"React":      {"react"},
	"Docker":     {"docker", "dockerfile"},
	"PostgreSQL": {"postgres", "postgresql"},
	"SQLite":     {"sqlite"},
	"Redis":      {"redis"},
	"Kubernetes": {"kubernetes", "k8s"},
	"AWS":        {"aws", "lambda", "s3 bucket", "dynamodb"},
}

// Analyze derives a structured project profile from fetched repository
// metadata. It is deterministic; no external calls are made.
func Analyze(repo repofetch.Repository) *session.Analysis {
	corpus := strings.ToLower(repo.Readme + "\n" + repo.Description + "\n" + strings.Join(repo.Topics, "\n"))

	result := &session.Analysis{
		ProjectType: detectProjectType(repo, corpus),
		TechStack:   detectTechStack(repo, corpus),
		Features:    extractFeatures(repo.Readme),
		Complexity:  estimateComplexity(repo, corpus),
		Description: buildDescription(repo),
	}
	return result
}

func detectProjectType(repo repofetch.Repository, corpus string) string {
	for _, group := range projectTypeSignals {
		for _, signal := range group.signals {
			if strings.Contains(corpus, signal) {
				return group.kind
			}
		}
	}
	if repo.Language != "" {
		return strings.ToLower(repo.Language) + " project"
	}
	return "software project"
}

func detectTechStack(repo repofetch.Repository, corpus string) []string {
	seen := map[string]bool{}
	var stack []string
	if repo.Language != "" {
		stack = append(stack, repo.Language)
		seen[repo.Language] = true
	}
	names := make([]string, 0, len(stackSignals))
	for name := range stackSignals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if seen[name] {
			continue
		}
		for _, signal := range stackSignals[name] {
			if strings.Contains(corpus, signal) {
				stack = append(stack, name)
				seen[name] = true
				break
			}
		}
	}
	if len(stack) > maxStackItems {
		stack = stack[:maxStackItems]
	}
	return stack
}

// extractFeatures pulls short bullet lines from the README, preferring ones
// under a Features-style heading.
func extractFeatures(readme string) []string {
	if readme == "" {
		return nil
	}
	section := featureSection(readme)
	if section == "" {
		section = readme
	}
	var features []string
	for _, match := range bulletPattern.FindAllStringSubmatch(section, -1) {
		line := cleanMarkdown(match[1])
		if line == "" || len(line) > 120 {
			continue
		}
		features = append(features, line)
		if len(features) == maxFeatures {
			break
		}
	}
	return features
}

func featureSection(readme string) string {
	locs := headingPattern.FindAllStringSubmatchIndex(readme, -1)
	for i, loc := range locs {
		title := strings.ToLower(readme[loc[2]:loc[3]])
		if !strings.Contains(title, "feature") && !strings.Contains(title, "highlights") {
			continue
		}
		end := len(readme)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		return readme[loc[1]:end]
	}
	return ""
}

func estimateComplexity(repo repofetch.Repository, corpus string) string {
	score := 0
	for _, heavy := range []string{"kubernetes", "microservice", "distributed", "cluster", "terraform"} {
		if strings.Contains(corpus, heavy) {
			score += 2
		}
	}
	for _, medium := range []string{"docker", "database", "api", "authentication", "queue"} {
		if strings.Contains(corpus, medium) {
			score++
		}
	}
	if repo.Stars > 1000 {
		score++
	}
	switch {
	case score >= 5:
		return "advanced"
	case score >= 2:
		return "intermediate"
	default:
		return "beginner"
	}
}

func buildDescription(repo repofetch.Repository) string {
	desc := strings.TrimSpace(repo.Description)
	if desc == "" {
		desc = firstParagraph(repo.Readme)
	}
	if len(desc) > maxDescription {
		desc = strings.TrimSpace(desc[:maxDescription])
	}
	return desc
}

func firstParagraph(readme string) string {
	for _, block := range strings.Split(readme, "\n\n") {
		block = cleanMarkdown(block)
		if block == "" || strings.HasPrefix(block, "#") {
			continue
		}
		return block
	}
	return ""
}

func cleanMarkdown(text string) string {
	text = badgePattern.ReplaceAllString(text, "")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = codePattern.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}
