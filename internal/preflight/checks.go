package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"recall/internal/config"
	"recall/internal/services/llm"
)

// CheckAPIKey reports whether speech and summary credentials are present.
// Transcription always needs a key; the offline summary provider does not.
func CheckAPIKey(cfg *config.Config) Result {
	const name = "OpenAI credentials"
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		return Result{Name: name, Passed: true, Detail: "API key configured"}
	}
	return Result{Name: name, Detail: "API key missing (set OPENAI_API_KEY); recordings will be stored with placeholder transcripts"}
}

// CheckOpenAI verifies that the OpenAI-compatible API is reachable and the key
// is valid. It uses a 30-second timeout and a single attempt (no retries).
func CheckOpenAI(ctx context.Context, cfg *config.Config) Result {
	const name = "OpenAI API"
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizeLLMError produces a human-readable summary for API health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	if code := llm.StatusCode(err); code == 401 || code == 403 {
		return "auth failed (invalid api key)"
	}
	return err.Error()
}
