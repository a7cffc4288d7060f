package transcription

import (
	"context"

	"recall/internal/services/llm"
)

// Result is the text produced by a speech engine.
type Result struct {
	Text     string
	Language string
}

// Engine converts speech to text.
type Engine interface {
	// Translate returns English text and the detected source language.
	Translate(ctx context.Context, audioPath string) (Result, error)
	// Transcribe returns text in the source language.
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

// APIEngine is an Engine backed by the Whisper HTTP endpoints.
type APIEngine struct {
	client *llm.Client
	model  string
}

// NewAPIEngine returns an engine that calls model through client.
func NewAPIEngine(client *llm.Client, model string) *APIEngine {
	return &APIEngine{client: client, model: model}
}

func (e *APIEngine) Translate(ctx context.Context, audioPath string) (Result, error) {
	speech, err := e.client.Translate(ctx, e.model, audioPath)
	return Result{Text: speech.Text, Language: speech.Language}, err
}

func (e *APIEngine) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	speech, err := e.client.Transcribe(ctx, e.model, audioPath)
	return Result{Text: speech.Text, Language: speech.Language}, err
}
