package summarization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recall/internal/config"
	"recall/internal/logging"
	"recall/internal/services/llm"
	"recall/internal/stage"
)

type fakeCompleter struct {
	configured bool
	reply      string
	err        error
	calls      int
	prompt     string
}

func (f *fakeCompleter) Configured() bool { return f.configured }

func (f *fakeCompleter) Complete(_ context.Context, _, _, userPrompt string, _ int) (string, error) {
	f.calls++
	f.prompt = userPrompt
	return f.reply, f.err
}

func newSummarizer(client Completer, provider string) *Summarizer {
	cfg := config.Default()
	cfg.Summarization.Provider = provider
	return New(&cfg, client, logging.NewNop())
}

func TestDegradedTranscriptSkipsModel(t *testing.T) {
	client := &fakeCompleter{configured: true, reply: "unused"}
	s := newSummarizer(client, ProviderOpenAI)

	inputs := []stage.Outcome{
		stage.Degrade(stage.ReasonSilent, "Audio is too silent, please provide clearer audio."),
		stage.Content(""),
	}
	for _, in := range inputs {
		got := s.Summarize(context.Background(), in, 0)
		if got.Text != NoTranscriptMessage || !got.Degraded || got.Reason != stage.ReasonNoInput {
			t.Fatalf("unexpected outcome %+v for input %+v", got, in)
		}
	}
	if client.calls != 0 {
		t.Fatalf("model must not be called, got %d calls", client.calls)
	}
}

func TestMissingKeyPlaceholder(t *testing.T) {
	client := &fakeCompleter{configured: false}
	got := newSummarizer(client, ProviderOpenAI).Summarize(context.Background(), stage.Content("hello there"), 0)
	if got.Text != NotConfiguredMessage || got.Reason != stage.ReasonNotConfigured {
		t.Fatalf("unexpected outcome %+v", got)
	}
	if client.calls != 0 {
		t.Fatal("model must not be called without a key")
	}
}

func TestSummaryContent(t *testing.T) {
	client := &fakeCompleter{configured: true, reply: "A friendly greeting."}
	got := newSummarizer(client, ProviderOpenAI).Summarize(context.Background(), stage.Content("Hello, good morning everyone."), 50)
	if got.Text != "A friendly greeting." || got.Degraded {
		t.Fatalf("unexpected outcome %+v", got)
	}
	if !strings.Contains(client.prompt, "in 50 words or less") {
		t.Fatalf("expected word limit in prompt, got %q", client.prompt)
	}
}

func TestDefaultWordLimit(t *testing.T) {
	client := &fakeCompleter{configured: true, reply: "ok"}
	newSummarizer(client, ProviderOpenAI).Summarize(context.Background(), stage.Content("text"), 0)
	if !strings.Contains(client.prompt, "in 150 words or less") {
		t.Fatalf("expected configured default word limit, got %q", client.prompt)
	}
}

func TestOfflineProvider(t *testing.T) {
	got := newSummarizer(nil, ProviderOffline).Summarize(context.Background(),
		stage.Content("One. Two. Three. Four. Five"), 0)
	if got.Text != "One. Two. Three..." || got.Degraded {
		t.Fatalf("unexpected offline summary %+v", got)
	}
}

func TestFirstSentences(t *testing.T) {
	tests := []struct {
		text string
		n    int
		want string
	}{
		{"Only one sentence", 3, "Only one sentence"},
		{"A. B. C", 3, "A. B. C"},
		{"A. B. C. D", 2, "A. B..."},
		{"A. B", 0, "A..."},
	}
	for _, tt := range tests {
		if got := FirstSentences(tt.text, tt.n); got != tt.want {
			t.Fatalf("FirstSentences(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
		}
	}
}

func TestClassifyErrors(t *testing.T) {
	if got := classify(fmt.Errorf("wrap: %w", llm.ErrEmptyResponse)); got.Text != EmptyResponseMessage {
		t.Fatalf("unexpected empty classification %+v", got)
	}
	if got := classify(errors.New("something odd")); got.Text != APIErrorMessage {
		t.Fatalf("unexpected generic classification %+v", got)
	}
}

func TestAPIStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "quota",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "quota"}})
			},
			want: QuotaMessage,
		},
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "bad"}})
			},
			want: APIErrorMessage,
		},
		{
			name: "empty",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
			},
			want: EmptyResponseMessage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			client := llm.NewClient(llm.Config{APIKey: "test", BaseURL: server.URL}, llm.WithRetryMaxAttempts(1))
			got := newSummarizer(client, ProviderOpenAI).Summarize(context.Background(), stage.Content("Some transcript."), 0)
			if got.Text != tt.want || !got.Degraded {
				t.Fatalf("expected %q, got %+v", tt.want, got)
			}
		})
	}
}

func TestUnreachableService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := llm.NewClient(llm.Config{APIKey: "test", BaseURL: url}, llm.WithRetryMaxAttempts(1))
	got := newSummarizer(client, ProviderOpenAI).Summarize(context.Background(), stage.Content("Some transcript."), 0)
	if got.Text != UnreachableMessage {
		t.Fatalf("expected unreachable placeholder, got %+v", got)
	}
}
