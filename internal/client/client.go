package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recall/internal/api"
	"recall/internal/jobs"
	"recall/internal/services"
)

// Client issues requests on behalf of one owner.
type Client struct {
	baseURL     string
	token       string
	owner       string
	ownerHeader string
	http        *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithOwner sets the owner id and the header it travels in.
func WithOwner(header, owner string) Option {
	return func(c *Client) {
		if strings.TrimSpace(header) != "" {
			c.ownerHeader = strings.TrimSpace(header)
		}
		c.owner = strings.TrimSpace(owner)
	}
}

// New constructs a client for the daemon at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		ownerHeader: "X-Owner-ID",
		http:        &http.Client{Timeout: 0},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx reply from the daemon.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("daemon returned %d: %s", e.StatusCode, e.Message)
}

// Is maps HTTP status codes onto the services error markers.
func (e *APIError) Is(target error) bool {
	switch target {
	case services.ErrValidation:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusRequestEntityTooLarge
	case services.ErrAccessDenied:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case services.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case services.ErrBusy:
		return e.StatusCode == http.StatusServiceUnavailable
	case services.ErrTimeout:
		return e.StatusCode == http.StatusGatewayTimeout
	}
	return false
}

// Upload streams the file at path to the daemon.
func (c *Client) Upload(ctx context.Context, path string) (api.UploadResponse, error) {
	file, err := os.Open(path)
	if err != nil {
		return api.UploadResponse{}, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	body, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(path))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = form.Close()
		}
		writer.CloseWithError(err)
	}()

	var resp api.UploadResponse
	err = c.do(ctx, http.MethodPost, "/api/upload", body, form.FormDataContentType(), &resp)
	_ = body.Close()
	return resp, err
}

// Status polls a job once.
func (c *Client) Status(ctx context.Context, jobID string) (api.StatusResponse, error) {
	var resp api.StatusResponse
	err := c.do(ctx, http.MethodGet, "/api/status/"+url.PathEscape(jobID), nil, "", &resp)
	return resp, err
}

// Wait polls a job every interval until it reaches a terminal state. The
// optional onUpdate callback sees every poll whose progress or message changed.
func (c *Client) Wait(ctx context.Context, jobID string, interval time.Duration, onUpdate func(api.StatusResponse)) (api.StatusResponse, error) {
	if interval <= 0 {
		interval = time.Second
	}
	var last api.StatusResponse
	for {
		status, err := c.Status(ctx, jobID)
		if err != nil {
			return last, err
		}
		if onUpdate != nil && (status.Progress != last.Progress || status.Message != last.Message) {
			onUpdate(status)
		}
		last = status
		if status.State.IsTerminal() || status.State == jobs.StateUnknown {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Search returns the owner's memories matching query.
func (c *Client) Search(ctx context.Context, query string) ([]api.MemoryView, error) {
	var resp []api.MemoryView
	err := c.do(ctx, http.MethodGet, "/api/search?query="+url.QueryEscape(query), nil, "", &resp)
	return resp, err
}

// List returns the owner's memories, most recent first.
func (c *Client) List(ctx context.Context) ([]api.MemoryView, error) {
	var resp []api.MemoryView
	err := c.do(ctx, http.MethodGet, "/api/memories", nil, "", &resp)
	return resp, err
}

// Delete removes one of the owner's memories.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/memories/"+url.PathEscape(id), nil, "", nil)
}

// Health fetches the daemon health report.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var resp api.HealthResponse
	err := c.do(ctx, http.MethodGet, "/api/health", nil, "", &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.owner != "" {
		req.Header.Set(c.ownerHeader, c.owner)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload api.ErrorResponse
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); readErr == nil {
			if json.Unmarshal(data, &payload) == nil {
				apiErr.Message = payload.Error
			} else {
				apiErr.Message = strings.TrimSpace(string(data))
			}
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
