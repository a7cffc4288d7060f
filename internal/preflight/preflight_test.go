package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"recall/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckAPIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.OpenAI.APIKey = ""
	if CheckAPIKey(cfg).Passed {
		t.Fatal("expected failure without key")
	}
	cfg.OpenAI.APIKey = "sk-test"
	if !CheckAPIKey(cfg).Passed {
		t.Fatal("expected pass with key")
	}
}

func TestCheckOpenAI_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"whisper-1","object":"model"}]}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithOpenAI(srv.URL, "good-key"))
	result := CheckOpenAI(context.Background(), cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckOpenAI_BadKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithOpenAI(srv.URL, "bad-key"))
	result := CheckOpenAI(context.Background(), cfg)
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
	if result.Detail != "auth failed (invalid api key)" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestRunAllReportsEveryCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.OpenAI.APIKey = "sk-test"

	results := RunAll(context.Background(), cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d: %+v", len(results), results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", failed)
	}

	cfg.Paths.FramesDir = filepath.Join(t.TempDir(), "missing")
	failed := Failed(RunAll(context.Background(), cfg))
	if len(failed) != 1 || failed[0].Name != "Frames directory" {
		t.Fatalf("expected frames directory failure, got %+v", failed)
	}
	if h := failed[0].Health(); h.Ready || h.Name != "Frames directory" {
		t.Fatalf("unexpected health %+v", h)
	}
}
