package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"recall/internal/fileutil"
	"recall/internal/services"
)

const memoryColumns = "id, owner_id, source_path, filename, transcript, translated_transcript, detected_language, summary, transcript_degraded, summary_degraded, duration_seconds, uploaded_at"

func scanMemory(scanner interface{ Scan(dest ...any) error }) (*Memory, error) {
	var (
		m           Memory
		owner       sql.NullString
		transDeg    int
		summaryDeg  int
		uploadedRaw string
	)
	if err := scanner.Scan(
		&m.ID,
		&owner,
		&m.SourcePath,
		&m.Filename,
		&m.Transcript,
		&m.TranslatedTranscript,
		&m.DetectedLanguage,
		&m.Summary,
		&transDeg,
		&summaryDeg,
		&m.DurationSeconds,
		&uploadedRaw,
	); err != nil {
		return nil, err
	}
	m.OwnerID = owner.String
	m.TranscriptDegraded = transDeg != 0
	m.SummaryDegraded = summaryDeg != 0
	m.UploadedAt = parseTime(uploadedRaw)
	return &m, nil
}

// Create inserts a new record and its keyframes in a single transaction.
func (s *Store) Create(ctx context.Context, in NewMemory) (*Memory, error) {
	ctx = ensureContext(ctx)
	now := s.now().UTC()

	durationText := in.TranslatedTranscript
	if strings.TrimSpace(durationText) == "" {
		durationText = in.Transcript
	}
	duration := 0.0
	if !in.TranscriptDegraded {
		duration = EstimateDuration(durationText)
	}

	m := &Memory{
		ID:                   ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		OwnerID:              in.OwnerID,
		SourcePath:           in.SourcePath,
		Filename:             in.Filename,
		Transcript:           in.Transcript,
		TranslatedTranscript: in.TranslatedTranscript,
		DetectedLanguage:     in.DetectedLanguage,
		Summary:              in.Summary,
		Keyframes:            append([]string(nil), in.Keyframes...),
		UploadedAt:           now,
		DurationSeconds:      duration,
		TranscriptDegraded:   in.TranscriptDegraded,
		SummaryDegraded:      in.SummaryDegraded,
	}
	if m.Filename == "" {
		m.Filename = filepath.Base(in.SourcePath)
	}

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memories (`+memoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID,
			ownerArg(m.OwnerID),
			m.SourcePath,
			m.Filename,
			m.Transcript,
			m.TranslatedTranscript,
			m.DetectedLanguage,
			m.Summary,
			boolToInt(m.TranscriptDegraded),
			boolToInt(m.SummaryDegraded),
			m.DurationSeconds,
			formatTime(m.UploadedAt),
		); err != nil {
			return err
		}
		for seq, name := range m.Keyframes {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO keyframes (filename, memory_id, seq) VALUES (?, ?, ?)",
				name, m.ID, seq,
			); err != nil {
				return fmt.Errorf("insert keyframe %s: %w", name, err)
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}
	return m, nil
}

// Get fetches a record by id as seen by owner. Missing and foreign records
// both report ErrNotFound.
func (s *Store) Get(ctx context.Context, id, owner string) (*Memory, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+memoryColumns+" FROM memories WHERE id = ? AND owner_id IS ?",
		id, ownerArg(owner),
	)
	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "memory", "get", "Memory not found or access denied", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get memory: %w", err)
	}
	if err := s.attachKeyframes(ctx, []*Memory{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns every record owned by owner, most recent first.
func (s *Store) List(ctx context.Context, owner string) ([]*Memory, error) {
	ctx = ensureContext(ctx)
	return s.queryMemories(ctx,
		"SELECT "+memoryColumns+" FROM memories WHERE owner_id IS ? ORDER BY uploaded_at DESC, id DESC",
		ownerArg(owner),
	)
}

func (s *Store) queryMemories(ctx context.Context, query string, args ...any) ([]*Memory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var memories []*Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memories: %w", err)
	}
	if err := s.attachKeyframes(ctx, memories); err != nil {
		return nil, err
	}
	return memories, nil
}

func (s *Store) attachKeyframes(ctx context.Context, memories []*Memory) error {
	if len(memories) == 0 {
		return nil
	}
	byID := make(map[string]*Memory, len(memories))
	placeholders := make([]string, 0, len(memories))
	args := make([]any, 0, len(memories))
	for _, m := range memories {
		m.Keyframes = []string{}
		byID[m.ID] = m
		placeholders = append(placeholders, "?")
		args = append(args, m.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT memory_id, filename FROM keyframes WHERE memory_id IN ("+strings.Join(placeholders, ", ")+") ORDER BY memory_id, seq",
		args...,
	)
	if err != nil {
		return fmt.Errorf("query keyframes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var memoryID, filename string
		if err := rows.Scan(&memoryID, &filename); err != nil {
			return fmt.Errorf("scan keyframe: %w", err)
		}
		if m, ok := byID[memoryID]; ok {
			m.Keyframes = append(m.Keyframes, filename)
		}
	}
	return rows.Err()
}

// Delete removes the record matching both id and owner together with its
// source upload and keyframe files. It reports false when no such record
// exists for owner; records owned by someone else are indistinguishable
// from missing ones. Missing files are tolerated. A file removal failure is
// returned alongside deleted=true.
func (s *Store) Delete(ctx context.Context, id, owner string) (bool, error) {
	ctx = ensureContext(ctx)

	var sourcePath string
	var frames []string
	found := false
	if err := retryOnBusy(ctx, func() error {
		sourcePath, frames, found = "", nil, false
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		err = tx.QueryRowContext(ctx,
			"SELECT source_path FROM memories WHERE id = ? AND owner_id IS ?", id, ownerArg(owner),
		).Scan(&sourcePath)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		rows, err := tx.QueryContext(ctx, "SELECT filename FROM keyframes WHERE memory_id = ? ORDER BY seq", id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return err
			}
			frames = append(frames, name)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return err
		}
		rows.Close()

		if _, err := tx.ExecContext(ctx, "DELETE FROM keyframes WHERE memory_id = ?", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM memories WHERE id = ? AND owner_id IS ?", id, ownerArg(owner)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		found = true
		return nil
	}); err != nil {
		return false, fmt.Errorf("delete memory: %w", err)
	}
	if !found {
		return false, nil
	}

	var fileErr error
	if err := fileutil.RemoveIfExists(sourcePath); err != nil {
		fileErr = fmt.Errorf("remove source %s: %w", sourcePath, err)
	}
	if err := fileutil.RemoveAll(s.framesDir, frames); err != nil && fileErr == nil {
		fileErr = err
	}
	return true, fileErr
}

// KeyframeOwned reports whether filename belongs to a record owned by owner.
func (s *Store) KeyframeOwned(ctx context.Context, filename, owner string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM keyframes k JOIN memories m ON m.id = k.memory_id
		 WHERE k.filename = ? AND m.owner_id IS ?`,
		filename, ownerArg(owner),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check keyframe owner: %w", err)
	}
	return count > 0, nil
}

// FramesDir returns the directory holding keyframe images.
func (s *Store) FramesDir() string {
	return s.framesDir
}
