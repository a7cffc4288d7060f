package testsupport

import (
	"context"
	"testing"

	"recall/internal/config"
	"recall/internal/memory"
)

// MustOpenStore opens a memory.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *memory.Store {
	t.Helper()

	store, err := memory.Open(cfg)
	if err != nil {
		t.Fatalf("memory.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewMemory creates a record owned by owner with the given transcript.
func NewMemory(t testing.TB, store *memory.Store, owner, transcript string, keyframes ...string) *memory.Memory {
	t.Helper()

	m, err := store.Create(context.Background(), memory.NewMemory{
		OwnerID:              owner,
		SourcePath:           "/uploads/" + owner + "_test.wav",
		Transcript:           transcript,
		TranslatedTranscript: transcript,
		DetectedLanguage:     "English",
		Summary:              transcript,
		Keyframes:            keyframes,
	})
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return m
}
