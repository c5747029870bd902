// Package dispatch runs pipeline stage work on a bounded pool of background
// workers. Producers submit named tasks and never block; dropped submissions
// are recovered by later pipeline events.
package dispatch
