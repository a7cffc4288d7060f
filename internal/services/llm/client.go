package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// ErrEmptyResponse reports a completion that returned no usable content.
var ErrEmptyResponse = errors.New("llm: empty response")

// Config captures the runtime settings required to talk to the API.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client wraps a go-openai client with retry handling.
type Client struct {
	cfg        Config
	api        *openai.Client
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}

	clientConfig := openai.DefaultConfig(client.cfg.APIKey)
	if client.cfg.BaseURL != "" {
		clientConfig.BaseURL = client.cfg.BaseURL
	}
	clientConfig.HTTPClient = client.httpClient
	client.api = openai.NewClientWithConfig(clientConfig)
	return client
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Speech is the result of a translate or transcribe call.
type Speech struct {
	Text     string
	Language string
}

// Complete issues a single chat completion and returns the trimmed content.
func (c *Client) Complete(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: strings.TrimSpace(systemPrompt)},
			{Role: openai.ChatMessageRoleUser, Content: strings.TrimSpace(userPrompt)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}
	var content string
	err := c.withRetry(ctx, "llm complete", func() error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%w: no choices", ErrEmptyResponse)
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return fmt.Errorf("%w: finish_reason=%q", ErrEmptyResponse, resp.Choices[0].FinishReason)
		}
		return nil
	})
	return content, err
}

// Translate converts speech in audioPath to English text.
func (c *Client) Translate(ctx context.Context, model, audioPath string) (Speech, error) {
	return c.audio(ctx, "llm translate", func() (openai.AudioResponse, error) {
		return c.api.CreateTranslation(ctx, openai.AudioRequest{
			Model:    model,
			FilePath: audioPath,
			Format:   openai.AudioResponseFormatVerboseJSON,
		})
	})
}

// Transcribe converts speech in audioPath to text in its source language.
func (c *Client) Transcribe(ctx context.Context, model, audioPath string) (Speech, error) {
	return c.audio(ctx, "llm transcribe", func() (openai.AudioResponse, error) {
		return c.api.CreateTranscription(ctx, openai.AudioRequest{
			Model:    model,
			FilePath: audioPath,
			Format:   openai.AudioResponseFormatVerboseJSON,
		})
	})
}

func (c *Client) audio(ctx context.Context, op string, call func() (openai.AudioResponse, error)) (Speech, error) {
	var speech Speech
	err := c.withRetry(ctx, op, func() error {
		resp, err := call()
		if err != nil {
			return err
		}
		speech = Speech{Text: strings.TrimSpace(resp.Text), Language: strings.TrimSpace(resp.Language)}
		return nil
	})
	return speech, err
}

// HealthCheck verifies the API key by listing available models.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Configured() {
		return errors.New("llm health: api key required")
	}
	return c.withRetry(ctx, "llm health", func() error {
		_, err := c.api.ListModels(ctx)
		return err
	})
}

func (c *Client) withRetry(ctx context.Context, op string, call func() error) error {
	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			if attempt == 1 {
				return fmt.Errorf("%s: %w", op, err)
			}
			return fmt.Errorf("%s: failed after %d attempts: %w", op, attempt, err)
		}
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

// StatusCode extracts the HTTP status from an API error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// IsRateLimited reports whether err is an HTTP 429 response.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// IsUnreachable reports network failures and timeouts where no HTTP response
// was received.
func IsUnreachable(err error) bool {
	if err == nil || StatusCode(err) != 0 {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) retryAttempts() int {
	if c == nil || c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	if errors.Is(err, ErrEmptyResponse) {
		return c.backoffDelay(attempt), true
	}

	if status := StatusCode(err); status != 0 {
		if status == http.StatusRequestTimeout || status >= http.StatusInternalServerError {
			return c.backoffDelay(attempt), true
		}
		return 0, false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := defaultRetryBaseDelay
	maxDelay := defaultRetryMaxDelay
	if c != nil {
		if c.retryBaseDelay >= 0 {
			base = c.retryBaseDelay
		}
		if c.retryMaxDelay > 0 {
			maxDelay = c.retryMaxDelay
		}
	}
	if base <= 0 {
		return 0
	}
	if attempt <= 0 {
		attempt = 1
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
