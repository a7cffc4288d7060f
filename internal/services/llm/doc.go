// Package llm wraps the OpenAI-compatible HTTP API used for speech
// translation, transcription, and summary generation.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.Complete: single-turn chat completion with a system and user prompt.
// Client.Translate: speech to English text with source language detection.
// Client.Transcribe: speech to text in the source language.
// Client.HealthCheck: verify the API key by listing models.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/5xx responses and network timeouts with
// exponential backoff (base 1s, max 10s, up to 3 attempts by default).
// Rate-limit responses (429) are returned immediately so callers can report
// quota exhaustion. Context cancellation aborts retries immediately.
//
// # Error Classification
//
// IsRateLimited, IsUnreachable, and ErrEmptyResponse let callers map failures
// to user-facing placeholders without inspecting transport details.
package llm
