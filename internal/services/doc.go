// Package services defines shared utilities consumed by the pipeline stages,
// the intake path, and the HTTP API.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, owners, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (validation, access denied, busy, external tool) without
//     comparing strings.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
