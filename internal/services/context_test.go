package services_test

import (
	"context"
	"testing"

	"claudepack/internal/services"
)

func TestStageContextRoundTrip(t *testing.T) {
	ctx := services.WithStage(context.Background(), "resolve")
	if got, ok := services.StageFromContext(ctx); !ok || got != "resolve" {
		t.Fatalf("stage = %q, ok = %v", got, ok)
	}
	if _, ok := services.StageFromContext(context.Background()); ok {
		t.Fatal("expected no stage on empty context")
	}
	if got := services.WithStage(ctx, ""); got != ctx {
		t.Fatal("empty stage should not allocate a new context")
	}
}

func TestRunIDContextRoundTrip(t *testing.T) {
	ctx := services.WithRunID(context.Background(), "run-123")
	if got, ok := services.RunIDFromContext(ctx); !ok || got != "run-123" {
		t.Fatalf("run id = %q, ok = %v", got, ok)
	}
	if _, ok := services.RunIDFromContext(context.Background()); ok {
		t.Fatal("expected no run id on empty context")
	}
}
