// Package logging wraps log/slog with the handler selection, attribute
// helpers, and context-derived fields used throughout DemoForge.
package logging
