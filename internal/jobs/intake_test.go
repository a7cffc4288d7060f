package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recall/internal/logging"
	"recall/internal/services"
)

type recordingSubmitter struct {
	tasks []Task
	err   error
}

func (s *recordingSubmitter) Submit(task Task) error {
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 4, 5, 6, 7, 123456789, time.UTC)
}

func newTestIntake(t *testing.T, sub Submitter) (*Intake, *Registry, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	reg := NewRegistry()
	return NewIntake(dir, reg, sub, logging.NewNop(), WithClock(fixedClock)), reg, dir
}

func TestIntakeAcceptQueuesJob(t *testing.T) {
	sub := &recordingSubmitter{}
	intake, reg, dir := newTestIntake(t, sub)

	receipt, err := intake.Accept(context.Background(), Upload{Filename: "greeting.wav", Body: strings.NewReader("RIFF")}, "alice")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if receipt.JobID == "" {
		t.Fatal("expected job id")
	}
	want := "alice_20260304_050607.123456789_greeting.wav"
	if receipt.StoredName != want {
		t.Fatalf("stored name = %q, want %q", receipt.StoredName, want)
	}
	if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
		t.Fatalf("expected stored upload: %v", err)
	}
	if len(sub.tasks) != 1 || sub.tasks[0].JobID != receipt.JobID || sub.tasks[0].Owner != "alice" {
		t.Fatalf("unexpected submitted tasks: %+v", sub.tasks)
	}
	status, err := reg.Get(receipt.JobID, "alice")
	if err != nil || status.State != StateQueued || status.Progress != 10 {
		t.Fatalf("unexpected registry status %+v err=%v", status, err)
	}
}

func TestIntakeAnonymousPrefix(t *testing.T) {
	intake, _, _ := newTestIntake(t, &recordingSubmitter{})
	receipt, err := intake.Accept(context.Background(), Upload{Filename: "clip.MP4", Body: strings.NewReader("data")}, "")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !strings.HasPrefix(receipt.StoredName, "anonymous_") {
		t.Fatalf("expected anonymous prefix, got %q", receipt.StoredName)
	}
}

func TestIntakeRejectsInvalidUploads(t *testing.T) {
	tests := []struct {
		name   string
		upload Upload
	}{
		{"missing body", Upload{Filename: "a.wav"}},
		{"missing name", Upload{Body: strings.NewReader("x")}},
		{"bad extension", Upload{Filename: "notes.txt", Body: strings.NewReader("x")}},
		{"no extension", Upload{Filename: "audio", Body: strings.NewReader("x")}},
		{"empty file", Upload{Filename: "a.wav", Body: strings.NewReader("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &recordingSubmitter{}
			intake, reg, dir := newTestIntake(t, sub)
			_, err := intake.Accept(context.Background(), tt.upload, "")
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(sub.tasks) != 0 {
				t.Fatal("pipeline must not start for invalid uploads")
			}
			if len(reg.Counts()) != 0 {
				t.Fatal("no job should be registered")
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("expected no stored files, found %d", len(entries))
			}
		})
	}
}

func TestIntakeQueueFull(t *testing.T) {
	sub := &recordingSubmitter{err: errors.New("queue full")}
	intake, reg, dir := newTestIntake(t, sub)

	_, err := intake.Accept(context.Background(), Upload{Filename: "a.mp3", Body: strings.NewReader("x")}, "")
	if !errors.Is(err, services.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if reg.Counts()[StateError] != 1 {
		t.Fatalf("expected the rejected job to be failed, counts=%+v", reg.Counts())
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected upload removed, found %d files", len(entries))
	}
}

func TestAllowedExtension(t *testing.T) {
	for _, name := range []string{"a.mp3", "b.WAV", "c.Mp4", "d.mov", "e.avi", "f.mkv"} {
		if !AllowedExtension(name) {
			t.Fatalf("expected %s to be allowed", name)
		}
	}
	for _, name := range []string{"a.flac", "b", "c.wav.txt"} {
		if AllowedExtension(name) {
			t.Fatalf("expected %s to be rejected", name)
		}
	}
}
