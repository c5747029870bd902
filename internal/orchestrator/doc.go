// Package orchestrator owns the session state machine. It is the only writer
// of session state: the HTTP surface and the media processors call into it,
// and every transition is validated and applied inside a single store
// transaction.
//
// The pipeline is event driven. Uploads trigger validation and conversion;
// the conversion that completes the set flips the session to stitching, and
// stitching flows into optimization. Stage failures park the session in a
// retryable failed status without losing completed work.
package orchestrator
