// Package preflight provides readiness checks for the directories, tools,
// and services a demo pipeline run depends on.
//
// The checks run in two contexts:
//   - The serve command runs RunAll at startup and logs every failure
//     before accepting sessions, so a misconfigured host is visible
//     immediately instead of failing mid-pipeline.
//   - The CLI status command uses the individual check functions to
//     display host health.
package preflight
