package services_test

import (
	"context"
	"testing"

	"recall/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithJobID(ctx, "job-42")
	ctx = services.WithStage(ctx, "transcription")
	ctx = services.WithOwner(ctx, "user-1")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.JobIDFromContext(ctx); !ok || id != "job-42" {
		t.Fatalf("unexpected job id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "transcription" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if owner, ok := services.OwnerFromContext(ctx); !ok || owner != "user-1" {
		t.Fatalf("unexpected owner: %v %v", owner, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
