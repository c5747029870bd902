// Package processing runs the ffmpeg-backed media stages: upload validation,
// conversion to a standard format, slide rendering, stitching, and final
// multi-resolution optimization.
//
// Every stage writes its output to a blob key derived only from the session
// and input identity, so re-running a stage against the same inputs replaces
// its own prior output instead of producing duplicates.
package processing
