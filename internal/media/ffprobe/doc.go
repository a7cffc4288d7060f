// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Format: container-level metadata (duration, format name)
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - InspectWith: same, with an injectable command Runner for tests
//
// Helper methods report whether a decodable video stream exists and estimate
// its frame count, which keyframe sampling uses to size its output.
package ffprobe
