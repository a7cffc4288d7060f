// Package main hosts the recall CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon: uploading recordings and following their
// progress, searching and listing memories, deleting them, and reporting
// daemon health. It centralizes configuration resolution, daemon URL and
// owner discovery, and output formatting so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
