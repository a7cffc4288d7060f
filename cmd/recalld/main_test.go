package main

import (
	"testing"

	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/testsupport"
)

func TestBuildStagesWiresEveryStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	stages := buildStages(cfg, store, logging.NewNop())
	if stages.Transcriber == nil || stages.Summarizer == nil || stages.Keyframes == nil {
		t.Fatalf("expected all stages to be wired: %+v", stages)
	}
	if stages.Store != store {
		t.Fatal("expected the memory store to be attached")
	}
}

func TestBuildPoolUsesConfiguredWorkers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.Workers = 3
	cfg.Workflow.QueueSize = 7
	store := testsupport.MustOpenStore(t, cfg)

	pool := buildPool(cfg, jobs.NewRegistry(), store, logging.NewNop())
	stats := pool.Stats()
	if stats.Workers != 3 || stats.QueueSize != 7 {
		t.Fatalf("unexpected pool stats: %+v", stats)
	}
}
