// Package suggest plans demo videos for a repository using an
// OpenRouter-compatible model, with a deterministic fallback when the model
// is unavailable.
package suggest
