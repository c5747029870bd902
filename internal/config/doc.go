// Package config loads, normalizes, and validates DemoForge configuration.
//
// Configuration lives in a TOML file (default ~/.config/demoforge/config.toml,
// or ./demoforge.toml for project-local use). Load applies defaults for any
// omitted values, expands ~ in path fields, and pulls API credentials from the
// environment (GITHUB_TOKEN, DEMOFORGE_LLM_API_KEY) when they are not set in
// the file.
package config
