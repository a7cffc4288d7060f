package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"recall/internal/jobs"
	"recall/internal/logging"
	"recall/internal/memory"
	"recall/internal/services"
)

const (
	uploadField       = "file"
	memoryNotFoundMsg = "Memory not found or access denied"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}
	part, err := filePart(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer part.Close()

	receipt, err := s.deps.Intake.Accept(r.Context(), jobs.Upload{Filename: part.FileName(), Body: part}, ownerFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, UploadResponse{
		Message:   "Memory upload started",
		JobID:     receipt.JobID,
		Filename:  receipt.StoredName,
		StatusURL: statusURL(requestBaseURL(s.publicURL, r), receipt.JobID),
	})
}

// filePart streams the multipart "file" field without buffering it to disk.
func filePart(r *http.Request) (*multipart.Part, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "api", "read upload", "No file provided", err)
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, services.Wrap(services.ErrValidation, "api", "read upload", "No file provided", nil)
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, services.Wrap(services.ErrValidation, "api", "read upload", "Malformed upload", err)
		}
		if part.FormName() != uploadField {
			_ = part.Close()
			continue
		}
		if strings.TrimSpace(part.FileName()) == "" {
			_ = part.Close()
			return nil, services.Wrap(services.ErrValidation, "api", "read upload", "No file selected", nil)
		}
		return part, nil
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.deps.Statuses.Get(r.PathValue("job"), ownerFrom(r))
	if err != nil {
		if errors.Is(err, services.ErrAccessDenied) {
			writeError(w, http.StatusForbidden, "Access denied")
			return
		}
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FromStatus(status))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if err := memory.ValidateQuery(query); err != nil {
		s.fail(w, r, err)
		return
	}
	results, err := s.deps.Store.Search(r.Context(), query, ownerFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	base := requestBaseURL(s.publicURL, r)
	views := make([]MemoryView, 0, len(results))
	for _, result := range results {
		views = append(views, FromSearchResult(result, base))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	memories, err := s.deps.Store.List(r.Context(), ownerFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	base := requestBaseURL(s.publicURL, r)
	views := make([]MemoryView, 0, len(memories))
	for _, m := range memories {
		views = append(views, FromMemory(m, base))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.deps.Store.Delete(r.Context(), r.PathValue("id"), ownerFrom(r))
	if err != nil && !deleted {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrAccessDenied) {
			writeError(w, http.StatusNotFound, memoryNotFoundMsg)
			return
		}
		s.fail(w, r, err)
		return
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), "memory deleted but files remain", "memory_files_orphaned",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove leftover upload or frame files manually"),
		)
	}
	if !deleted {
		writeError(w, http.StatusNotFound, memoryNotFoundMsg)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Memory deleted successfully"})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusNotFound, "Frame not found")
		return
	}
	owned, err := s.deps.Store.KeyframeOwned(r.Context(), name, ownerFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !owned {
		writeError(w, http.StatusNotFound, "Frame not found")
		return
	}
	path := filepath.Join(s.deps.Store.FramesDir(), name)
	file, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "Frame not found")
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	http.ServeContent(w, r, name, info.ModTime(), file)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().Format(time.RFC3339)})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Health(r.Context()))
}

// fail writes the mapped error response and logs server-side faults.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		details := services.Details(err)
		logging.WithContext(r.Context(), s.logger).Error("request failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.String(logging.FieldErrorKind, string(details.Kind)),
			logging.String(logging.FieldErrorOperation, details.Operation),
			logging.Error(err),
			logging.String(logging.FieldEventType, "request_failed"),
		)
	}
	writeError(w, status, errorMessage(err, status))
}
