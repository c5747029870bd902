// Package api defines the transport-facing request and response shapes
// shared by the HTTP server and the CLI, and the mappers from the domain
// aggregates onto them.
package api
