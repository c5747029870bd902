package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGitHub()
	c.normalizeSuggestions()
	c.normalizeMedia()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BlobDir) == "" {
		c.Paths.BlobDir = defaultBlobDir
	}
	if c.Paths.BlobDir, err = expandPath(c.Paths.BlobDir); err != nil {
		return fmt.Errorf("paths.blob_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeGitHub() {
	if c.GitHub.Token == "" {
		if value, ok := os.LookupEnv("GITHUB_TOKEN"); ok {
			c.GitHub.Token = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.GitHub.BaseURL) == "" {
		c.GitHub.BaseURL = defaultGitHubURL
	}
	c.GitHub.BaseURL = strings.TrimRight(strings.TrimSpace(c.GitHub.BaseURL), "/")
	if c.GitHub.TimeoutSeconds <= 0 {
		c.GitHub.TimeoutSeconds = defaultGitHubWait
	}
}

func (c *Config) normalizeSuggestions() {
	if c.Suggestions.APIKey == "" {
		if value, ok := os.LookupEnv("DEMOFORGE_LLM_API_KEY"); ok {
			c.Suggestions.APIKey = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Suggestions.BaseURL) == "" {
		c.Suggestions.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.Suggestions.Model) == "" {
		c.Suggestions.Model = defaultLLMModel
	}
	if c.Suggestions.TimeoutSeconds <= 0 {
		c.Suggestions.TimeoutSeconds = defaultLLMTimeout
	}
	if c.Suggestions.MaxVideos <= 0 {
		c.Suggestions.MaxVideos = defaultMaxVideos
	}
}

func (c *Config) normalizeMedia() {
	if c.Media.MaxUploadBytes <= 0 {
		c.Media.MaxUploadBytes = defaultMaxUpload
	}
	if c.Media.MinDurationSeconds <= 0 {
		c.Media.MinDurationSeconds = defaultMinDuration
	}
	if c.Media.MaxDurationSeconds <= 0 {
		c.Media.MaxDurationSeconds = defaultMaxDuration
	}
	if c.Media.SlideSeconds <= 0 {
		c.Media.SlideSeconds = defaultSlideSecs
	}
	if len(c.Media.Resolutions) == 0 {
		c.Media.Resolutions = []string{"1080p", "720p", "480p"}
	}
	for i, res := range c.Media.Resolutions {
		c.Media.Resolutions[i] = strings.ToLower(strings.TrimSpace(res))
	}
	c.Media.PrimaryResolution = strings.ToLower(strings.TrimSpace(c.Media.PrimaryResolution))
	if c.Media.PrimaryResolution == "" {
		c.Media.PrimaryResolution = defaultPrimaryRes
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.WorkerCount <= 0 {
		c.Workflow.WorkerCount = defaultWorkers
	}
	if c.Workflow.SessionTTLDays <= 0 {
		c.Workflow.SessionTTLDays = defaultTTLDays
	}
	if c.Workflow.CleanupIntervalHours <= 0 {
		c.Workflow.CleanupIntervalHours = defaultCleanupHrs
	}
	if c.Workflow.PresignTTLHours <= 0 {
		c.Workflow.PresignTTLHours = defaultPresignHrs
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyWait
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
