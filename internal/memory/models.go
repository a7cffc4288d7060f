package memory

import (
	"math"
	"strings"
	"time"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// wordsPerSecond approximates speech rate when estimating duration from text.
const wordsPerSecond = 3.0

// Memory is a persisted, processed upload.
type Memory struct {
	ID                   string
	OwnerID              string
	SourcePath           string
	Filename             string
	Transcript           string
	TranslatedTranscript string
	DetectedLanguage     string
	Summary              string
	Keyframes            []string
	UploadedAt           time.Time
	DurationSeconds      float64
	TranscriptDegraded   bool
	SummaryDegraded      bool
}

// NewMemory holds the fields supplied by the pipeline when creating a record.
type NewMemory struct {
	OwnerID              string
	SourcePath           string
	Filename             string
	Transcript           string
	TranslatedTranscript string
	DetectedLanguage     string
	Summary              string
	Keyframes            []string
	TranscriptDegraded   bool
	SummaryDegraded      bool
}

// SearchResult pairs a memory with its relevance score. Higher is more relevant.
type SearchResult struct {
	Memory
	Relevance float64
}

// EstimateDuration approximates spoken duration from a word count, rounded
// to one decimal place.
func EstimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	return math.Round(float64(words)/wordsPerSecond*10) / 10
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
