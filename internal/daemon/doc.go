// Package daemon wires the session store, media processors, worker pool,
// cleanup sweeper, and HTTP API into a single lifecycle with flock-based
// locking to prevent multiple instances from sharing one data directory.
package daemon
