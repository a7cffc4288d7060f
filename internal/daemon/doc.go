// Package daemon coordinates the long-running recall process.
//
// It wires configuration, the memory store, the job registry, the workflow
// pool, and the HTTP API into a single lifecycle with flock-based locking to
// prevent multiple instances. The daemon runs preflight checks at startup,
// prunes finished job statuses when a retention is configured, and assembles the health report served at
// /api/health.
//
// Keep orchestration logic here: individual pipeline stages live in their
// own packages while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
