package repofetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"demoforge/internal/config"
	"demoforge/internal/services"
)

const (
	defaultBaseURL     = "https://api.github.com"
	defaultHTTPTimeout = 15 * time.Second
	maxReadmeBytes     = 256 << 10
)

var repoPathPattern = regexp.MustCompile(`^/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?/?$`)

// Repository is the metadata slice of a GitHub repository the pipeline uses.
type Repository struct {
	Owner         string
	Name          string
	FullName      string
	Description   string
	DefaultBranch string
	Language      string
	Stars         int
	Topics        []string
	Homepage      string
	Readme        string
}

// ProjectName returns the display name used in generated titles. Repo slugs
// like "my-cool-app" become "My Cool App".
func (r Repository) ProjectName() string {
	name := r.Name
	if name == "" {
		name = r.FullName
	}
	return humanizeName(name)
}

func humanizeName(name string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return name
	}
	return cases.Title(language.Und).String(title)
}

// Client talks to the GitHub REST API. A token is optional; without one the
// client still works for public repositories at a lower rate limit.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a GitHub client from configuration.
func NewClient(cfg config.GitHub, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	return client
}

// ParseRepoURL extracts owner and repository name from a GitHub URL.
// Accepted forms are https://github.com/owner/repo with an optional .git
// suffix or trailing slash.
func ParseRepoURL(raw string) (owner, name string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", services.Wrap(services.ErrInvalidInput, "repofetch", "parse url", "repository url required", nil)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", services.Wrap(services.ErrInvalidInput, "repofetch", "parse url", raw, err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", "", services.Wrap(services.ErrInvalidInput, "repofetch", "parse url", "unsupported scheme "+parsed.Scheme, nil)
	}
	host := strings.ToLower(parsed.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return "", "", services.Wrap(services.ErrInvalidInput, "repofetch", "parse url", "host must be github.com", nil)
	}
	match := repoPathPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", "", services.Wrap(services.ErrInvalidInput, "repofetch", "parse url", "expected /owner/repo path", nil)
	}
	return match[1], match[2], nil
}

// Fetch retrieves repository metadata and its README in one call. A missing
// README is not an error; Readme is left empty.
func (c *Client) Fetch(ctx context.Context, owner, name string) (Repository, error) {
	var repo Repository
	if owner == "" || name == "" {
		return repo, services.Wrap(services.ErrInvalidInput, "repofetch", "fetch", "owner and name required", nil)
	}

	body, status, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s", owner, name), "application/vnd.github+json")
	if err != nil {
		return repo, err
	}
	switch {
	case status == http.StatusNotFound:
		return repo, services.Wrap(services.ErrNotFound, "repofetch", "fetch", fmt.Sprintf("repository %s/%s", owner, name), nil)
	case status >= http.StatusBadRequest:
		return repo, services.Wrap(services.ErrUpstream, "repofetch", "fetch", fmt.Sprintf("github status %d", status), nil)
	}

	var payload struct {
		Name          string   `json:"name"`
		FullName      string   `json:"full_name"`
		Description   string   `json:"description"`
		DefaultBranch string   `json:"default_branch"`
		Language      string   `json:"language"`
		Stars         int      `json:"stargazers_count"`
		Topics        []string `json:"topics"`
		Homepage      string   `json:"homepage"`
		Owner         struct {
			Login string `json:"login"`
		} `json:"owner"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return repo, services.Wrap(services.ErrUpstream, "repofetch", "fetch", "decode repository payload", err)
	}

	repo = Repository{
		Owner:         payload.Owner.Login,
		Name:          payload.Name,
		FullName:      payload.FullName,
		Description:   strings.TrimSpace(payload.Description),
		DefaultBranch: payload.DefaultBranch,
		Language:      payload.Language,
		Stars:         payload.Stars,
		Topics:        payload.Topics,
		Homepage:      strings.TrimSpace(payload.Homepage),
	}
	if repo.Owner == "" {
		repo.Owner = owner
	}

	readme, err := c.readme(ctx, owner, name)
	if err != nil {
		return repo, err
	}
	repo.Readme = readme
	return repo, nil
}

func (c *Client) readme(ctx context.Context, owner, name string) (string, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/readme", owner, name), "application/vnd.github.raw+json")
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusNotFound:
		return "", nil
	case status >= http.StatusBadRequest:
		return "", services.Wrap(services.ErrUpstream, "repofetch", "readme", fmt.Sprintf("github status %d", status), nil)
	}
	text := string(body)
	if len(text) > maxReadmeBytes {
		text = text[:maxReadmeBytes]
	}
	return text, nil
}

func (c *Client) get(ctx context.Context, path, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrUpstream, "repofetch", "request", path, err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrUpstream, "repofetch", "request", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, 0, services.Wrap(services.ErrUpstream, "repofetch", "read response", path, err)
	}
	return body, resp.StatusCode, nil
}
