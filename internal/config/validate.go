package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var knownResolutions = map[string]struct{}{
	"1080p": {},
	"720p":  {},
	"480p":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.BlobDir) == "" {
		return errors.New("paths.blob_dir must be set")
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.MinDurationSeconds >= c.Media.MaxDurationSeconds {
		return errors.New("media.min_duration_seconds must be below media.max_duration_seconds")
	}
	for _, res := range c.Media.Resolutions {
		if _, ok := knownResolutions[res]; !ok {
			return fmt.Errorf("media.resolutions: unknown resolution %q", res)
		}
	}
	if _, ok := knownResolutions[c.Media.PrimaryResolution]; !ok {
		return fmt.Errorf("media.primary_resolution: unknown resolution %q", c.Media.PrimaryResolution)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	topic := strings.TrimSpace(c.Notifications.WebhookURL)
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.webhook_url: invalid URL %q", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
