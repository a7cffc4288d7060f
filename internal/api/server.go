package api

import (
	"context"
	"log/slog"
	"net/http"

	"recall/internal/config"
	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/memory"
)

// Intake accepts uploads for processing.
type Intake interface {
	Accept(ctx context.Context, upload jobs.Upload, owner string) (jobs.Receipt, error)
}

// StatusSource answers job progress polls.
type StatusSource interface {
	Get(jobID, owner string) (jobs.Status, error)
}

// MemoryStore is the owner-scoped view of persisted memories.
type MemoryStore interface {
	Search(ctx context.Context, query, owner string) ([]memory.SearchResult, error)
	List(ctx context.Context, owner string) ([]*memory.Memory, error)
	Delete(ctx context.Context, id, owner string) (bool, error)
	KeyframeOwned(ctx context.Context, filename, owner string) (bool, error)
	FramesDir() string
}

// HealthFunc reports daemon health.
type HealthFunc func(ctx context.Context) HealthResponse

// Dependencies are the collaborators behind the HTTP handlers.
type Dependencies struct {
	Intake   Intake
	Statuses StatusSource
	Store    MemoryStore
	Health   HealthFunc
}

// Server routes HTTP requests to the pipeline and memory store.
type Server struct {
	token        string
	ownerHeader  string
	requireOwner bool
	publicURL    string
	maxUpload    int64
	deps         Dependencies
	logger       *slog.Logger
}

// NewServer constructs the HTTP handler set from configuration.
func NewServer(cfg *config.Config, deps Dependencies, logger *slog.Logger) *Server {
	header := cfg.API.OwnerHeader
	if header == "" {
		header = "X-Owner-ID"
	}
	return &Server{
		token:        cfg.API.Token,
		ownerHeader:  header,
		requireOwner: cfg.API.RequireOwner,
		publicURL:    cfg.API.PublicURL,
		maxUpload:    int64(cfg.API.MaxUploadMB) << 20,
		deps:         deps,
		logger:       logging.NewComponentLogger(logger, "api"),
	}
}

// Handler returns the routed, authenticated handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", s.withOwner(s.handleUpload))
	mux.HandleFunc("GET /api/status/{job}", s.withOwner(s.handleStatus))
	mux.HandleFunc("GET /api/search", s.withOwner(s.handleSearch))
	mux.HandleFunc("GET /api/memories", s.withOwner(s.handleList))
	mux.HandleFunc("DELETE /api/memories/{id}", s.withOwner(s.handleDelete))
	mux.HandleFunc("GET /api/frames/{name}", s.withOwner(s.handleFrame))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return s.withRequestID(authMiddleware(s.token, mux.ServeHTTP))
}
