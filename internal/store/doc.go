// Package store persists demo sessions in SQLite.
//
// One row per session, keyed by session id, with nested structures
// (suggestions, upload records, artifacts) stored as JSON columns. Mutate is
// the only write path for existing rows: it runs a read-modify-write cycle in
// a single transaction so that check-then-act decisions made by the
// orchestrator are atomic with the writes that trigger them. Busy retries and
// WAL mode follow the usual SQLite daemon conventions.
package store
