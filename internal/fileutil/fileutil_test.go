package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteOnce(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "clip.wav")

	n, err := WriteOnce(dst, strings.NewReader("hello world"), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if n != 11 {
		t.Fatalf("expected 11 bytes written, got %d", n)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestWriteOnceRefusesOverwrite(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(dst, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := WriteOnce(dst, strings.NewReader("replacement"), 0o644); !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Fatalf("existing file was modified: %q", got)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestWriteOnceRemovesPartialOutput(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "clip.wav")
	if _, err := WriteOnce(dst, failingReader{}, 0o644); err == nil {
		t.Fatal("expected copy error")
	}
	if _, err := os.Stat(dst); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected partial file removed, stat err=%v", err)
	}
}

func TestRemoveAllToleratesMissing(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "a.jpg")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveAll(dir, []string{"a.jpg", "missing.jpg", ""}); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if _, err := os.Stat(present); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected a.jpg removed")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"greeting.wav":          "greeting.wav",
		"../../etc/passwd":      "passwd",
		"my talk (final).mp4":   "my_talk_final.mp4",
		"..hidden.mp3":          "hidden.mp3",
		"":                      "upload",
		`C:\Users\me\voice.wav`: "voice.wav",
	}
	for in, want := range tests {
		if got := SanitizeName(in); got != want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
