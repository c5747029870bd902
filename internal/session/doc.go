// Package session defines the demo session aggregate, its state machine, and
// the status/progress projection used by the API surface.
//
// A session's status only advances forward; the sole exceptions are the
// *_failed states, which are re-entered by retrying the same stage. Upload
// records move strictly through uploaded -> validated|validation_failed ->
// converted, and a re-upload resets the record to uploaded.
package session
