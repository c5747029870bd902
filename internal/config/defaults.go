package config

const (
	defaultStagingDir  = "~/.local/share/demoforge/staging"
	defaultBlobDir     = "~/.local/share/demoforge/blobs"
	defaultLogDir      = "~/.local/share/demoforge/logs"
	defaultAPIBind     = "127.0.0.1:7490"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultGitHubURL   = "https://api.github.com"
	defaultGitHubWait  = 30
	defaultLLMBaseURL  = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel    = "google/gemini-3-flash-preview"
	defaultLLMReferer  = "https://github.com/demoforge/demoforge"
	defaultLLMTitle    = "DemoForge Suggestion Generator"
	defaultLLMTimeout  = 60
	defaultMaxVideos   = 5
	defaultMaxUpload   = int64(100 * 1024 * 1024)
	defaultMinDuration = 5
	defaultMaxDuration = 120
	defaultSlideSecs   = 3
	defaultPrimaryRes  = "720p"
	defaultWorkers     = 4
	defaultTTLDays     = 30
	defaultCleanupHrs  = 6
	defaultPresignHrs  = 24
	defaultNotifyWait  = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			BlobDir:    defaultBlobDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		GitHub: GitHub{
			BaseURL:        defaultGitHubURL,
			TimeoutSeconds: defaultGitHubWait,
		},
		Suggestions: Suggestions{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
			MaxVideos:      defaultMaxVideos,
		},
		Media: Media{
			MaxUploadBytes:     defaultMaxUpload,
			MinDurationSeconds: defaultMinDuration,
			MaxDurationSeconds: defaultMaxDuration,
			SlideSeconds:       defaultSlideSecs,
			Resolutions:        []string{"1080p", "720p", "480p"},
			PrimaryResolution:  defaultPrimaryRes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyWait,
			Completed:      true,
			Errors:         true,
		},
		Workflow: Workflow{
			WorkerCount:          defaultWorkers,
			SessionTTLDays:       defaultTTLDays,
			CleanupIntervalHours: defaultCleanupHrs,
			PresignTTLHours:      defaultPresignHrs,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
