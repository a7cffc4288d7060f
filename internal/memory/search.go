package memory

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"recall/internal/services"
)

// MinQueryLength is the shortest accepted search query, in characters.
const MinQueryLength = 2

const searchLimit = 100

// ValidateQuery rejects queries shorter than MinQueryLength after trimming.
func ValidateQuery(query string) error {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength {
		return services.Wrap(services.ErrValidation, "search", "validate query",
			fmt.Sprintf("Search query must be at least %d characters long", MinQueryLength), nil)
	}
	return nil
}

// Search finds records owned by owner whose transcript, translation, or
// summary matches query. Results from the full-text index are ordered by
// relevance; fallback results are ordered by recency.
func (s *Store) Search(ctx context.Context, query, owner string) ([]SearchResult, error) {
	ctx = ensureContext(ctx)
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)

	if s.ftsEnabled {
		results, err := s.searchIndex(ctx, query, owner)
		if err == nil && len(results) > 0 {
			return results, nil
		}
	}
	return s.searchSubstring(ctx, query, owner)
}

func (s *Store) searchIndex(ctx context.Context, query, owner string) ([]SearchResult, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, bm25(memories_fts) AS rank
		 FROM memories_fts JOIN memories m ON m.rowid = memories_fts.rowid
		 WHERE memories_fts MATCH ? AND m.owner_id IS ?
		 ORDER BY rank LIMIT ?`,
		match, ownerArg(owner), searchLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}
	type hit struct {
		id   string
		rank float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.rank); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate search hits: %w", err)
	}
	rows.Close()

	results := make([]SearchResult, 0, len(hits))
	for _, h := range hits {
		m, err := s.Get(ctx, h.id, owner)
		if err != nil {
			return nil, err
		}
		// bm25 scores are negative; lower is better.
		results = append(results, SearchResult{Memory: *m, Relevance: -h.rank})
	}
	return results, nil
}

func (s *Store) searchSubstring(ctx context.Context, query, owner string) ([]SearchResult, error) {
	memories, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	var results []SearchResult
	for _, m := range memories {
		occurrences := 0
		length := 0
		for _, field := range []string{m.Transcript, m.TranslatedTranscript, m.Summary} {
			lower := strings.ToLower(field)
			occurrences += strings.Count(lower, needle)
			length += utf8.RuneCountInString(field)
		}
		if occurrences == 0 {
			continue
		}
		results = append(results, SearchResult{Memory: *m, Relevance: float64(occurrences) / float64(length)})
		if len(results) == searchLimit {
			break
		}
	}
	return results, nil
}

// ftsQuery quotes each whitespace-separated token so user input is always
// treated as literal terms rather than FTS5 query syntax.
func ftsQuery(query string) string {
	tokens := strings.Fields(query)
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}
