package main

import (
	"log/slog"

	"recall/internal/config"
	"recall/internal/jobs"
	"recall/internal/keyframes"
	"recall/internal/services/llm"
	"recall/internal/summarization"
	"recall/internal/transcription"
	"recall/internal/workflow"
)

// buildStages wires the processing stages around store.
func buildStages(cfg *config.Config, store workflow.MemoryStore, logger *slog.Logger) workflow.Stages {
	client := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	})

	return workflow.Stages{
		Transcriber: transcription.New(cfg, transcription.NewAPIEngine(client, cfg.Transcription.Model), logger),
		Summarizer:  summarization.New(cfg, client, logger),
		Keyframes:   keyframes.New(cfg, logger),
		Store:       store,
	}
}

func buildPool(cfg *config.Config, registry *jobs.Registry, store workflow.MemoryStore, logger *slog.Logger) *workflow.Pool {
	executor := workflow.NewExecutor(registry, buildStages(cfg, store, logger), cfg.Paths.FramesDir, logger)
	return workflow.NewPool(cfg, executor, logger)
}
