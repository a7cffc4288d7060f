package api

import (
	"net/http"
	"net/url"
	"strings"

	"recall/internal/jobs"
	"recall/internal/memory"
)

// FromStatus converts a registry snapshot into its wire form.
func FromStatus(status jobs.Status) StatusResponse {
	return StatusResponse{
		State:     status.State,
		Progress:  status.Progress,
		Message:   status.Message,
		MemoryID:  status.MemoryID,
		UpdatedAt: formatTimestamp(status.UpdatedAt),
	}
}

// FromMemory converts a stored memory into a view whose keyframes are
// absolute URLs under baseURL.
func FromMemory(m *memory.Memory, baseURL string) MemoryView {
	view := MemoryView{
		ID:                   m.ID,
		Filename:             m.Filename,
		Transcript:           m.Transcript,
		TranslatedTranscript: m.TranslatedTranscript,
		DetectedLanguage:     m.DetectedLanguage,
		Summary:              m.Summary,
		Keyframes:            make([]string, 0, len(m.Keyframes)),
		DurationSeconds:      m.DurationSeconds,
		TranscriptDegraded:   m.TranscriptDegraded,
		SummaryDegraded:      m.SummaryDegraded,
	}
	if !m.UploadedAt.IsZero() {
		view.UploadDate = m.UploadedAt.Local().Format(uploadDateFormat)
	}
	for _, frame := range m.Keyframes {
		view.Keyframes = append(view.Keyframes, frameURL(baseURL, frame))
	}
	return view
}

// FromSearchResult converts a ranked search hit.
func FromSearchResult(result memory.SearchResult, baseURL string) MemoryView {
	m := result.Memory
	view := FromMemory(&m, baseURL)
	relevance := result.Relevance
	view.Relevance = &relevance
	return view
}

func frameURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/api/frames/" + url.PathEscape(name)
}

func statusURL(baseURL, jobID string) string {
	return strings.TrimRight(baseURL, "/") + "/api/status/" + url.PathEscape(jobID)
}

// requestBaseURL prefers the configured public URL, then the scheme and host
// the request arrived on.
func requestBaseURL(publicURL string, r *http.Request) string {
	if publicURL = strings.TrimRight(strings.TrimSpace(publicURL), "/"); publicURL != "" {
		return publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto == "http" || proto == "https" {
		scheme = proto
	}
	host := r.Host
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Host")); forwarded != "" {
		host = forwarded
	}
	return scheme + "://" + host
}
