// Package notifications posts pipeline lifecycle events to a configured
// webhook. Without a webhook URL every notification is a no-op, so callers
// never need to branch on configuration.
package notifications
