// Package summarization condenses a transcript into a short summary using a
// chat completion model, or a first-sentences heuristic when configured for
// offline operation. All failures degrade to placeholder text.
package summarization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recall/internal/config"
	"recall/internal/logging"
	"recall/internal/services/llm"
	"recall/internal/stage"
)

// Placeholder text emitted in place of a summary.
const (
	NoTranscriptMessage  = "No transcript available for summarization"
	NotConfiguredMessage = "Summary not available (API key not configured)"
	QuotaMessage         = "Summary unavailable (quota exceeded)"
	UnreachableMessage   = "Summary unavailable (service unreachable)"
	APIErrorMessage      = "Summary unavailable due to API error"
	EmptyResponseMessage = "Summary unavailable (empty response)"
)

const (
	ProviderOpenAI  = "openai"
	ProviderOffline = "offline"
)

const systemPrompt = "You summarize transcripts of personal audio and video recordings. Reply with the summary only."

// Completer issues a single chat completion.
type Completer interface {
	Configured() bool
	Complete(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Summarizer produces summaries for transcripts.
type Summarizer struct {
	provider          string
	client            Completer
	model             string
	maxWords          int
	fallbackSentences int
	timeout           time.Duration
	logger            *slog.Logger
}

// New constructs a Summarizer. client may be nil when the provider is offline.
func New(cfg *config.Config, client Completer, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		provider:          cfg.Summarization.Provider,
		client:            client,
		model:             cfg.Summarization.Model,
		maxWords:          cfg.Summarization.MaxWords,
		fallbackSentences: cfg.Summarization.FallbackSentences,
		timeout:           time.Duration(cfg.Summarization.TimeoutSeconds) * time.Second,
		logger:            logging.NewComponentLogger(logger, "summarization"),
	}
}

// Summarize returns a summary of at most maxWords words. A non-positive
// maxWords uses the configured limit. Degraded or empty transcripts are never
// sent to the model.
func (s *Summarizer) Summarize(ctx context.Context, transcript stage.Outcome, maxWords int) stage.Outcome {
	logger := logging.WithContext(ctx, s.logger)
	if !transcript.Usable() {
		logger.Info("no usable transcript; skipping summary",
			logging.String(logging.FieldEventType, "summary_skipped"),
			logging.String("transcript_reason", string(transcript.Reason)),
		)
		return stage.Degrade(stage.ReasonNoInput, NoTranscriptMessage)
	}
	if maxWords <= 0 {
		maxWords = s.maxWords
	}

	if s.provider == ProviderOffline {
		return stage.Content(FirstSentences(transcript.Text, s.fallbackSentences))
	}
	if s.client == nil || !s.client.Configured() {
		logging.WarnWithContext(logger, "summary skipped; api key not configured", "summary_not_configured",
			logging.String(logging.FieldErrorHint, "set OPENAI_API_KEY or summarization.provider = \"offline\""),
			logging.String(logging.FieldImpact, "memory is saved without a summary"),
		)
		return stage.Degrade(stage.ReasonNotConfigured, NotConfiguredMessage)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	prompt := fmt.Sprintf("Please provide a concise summary of the following content in %d words or less:\n\n%s", maxWords, transcript.Text)
	summary, err := s.client.Complete(callCtx, s.model, systemPrompt, prompt, maxWords*2)
	if err != nil {
		outcome := classify(err)
		logging.WarnWithContext(logger, "summary generation failed; storing placeholder", "summary_failed",
			logging.Error(err),
			logging.String("reason", string(outcome.Reason)),
			logging.String(logging.FieldImpact, "memory is saved without a summary"),
		)
		return outcome
	}
	if strings.TrimSpace(summary) == "" {
		return stage.Degrade(stage.ReasonEmptyResponse, EmptyResponseMessage)
	}
	logger.Info("summary generated",
		logging.String(logging.FieldEventType, "summary_complete"),
		logging.Int("words", len(strings.Fields(summary))),
	)
	return stage.Content(summary)
}

func classify(err error) stage.Outcome {
	switch {
	case errors.Is(err, llm.ErrEmptyResponse):
		return stage.Degrade(stage.ReasonEmptyResponse, EmptyResponseMessage)
	case llm.IsRateLimited(err):
		return stage.Degrade(stage.ReasonQuota, QuotaMessage)
	case llm.IsUnreachable(err):
		return stage.Degrade(stage.ReasonUnreachable, UnreachableMessage)
	default:
		return stage.Degrade(stage.ReasonAPIError, APIErrorMessage)
	}
}

// FirstSentences returns the first n ". "-separated sentences of text,
// appending "..." when more remain.
func FirstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if n <= 0 {
		n = 1
	}
	sentences := strings.Split(text, ". ")
	if len(sentences) <= n {
		return text
	}
	return strings.Join(sentences[:n], ". ") + "..."
}
