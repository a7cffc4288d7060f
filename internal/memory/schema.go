package memory

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

var ftsStatements = []string{
	`CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
		transcript,
		translated_transcript,
		summary,
		content=memories,
		content_rowid=rowid
	)`,
	`CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
		INSERT INTO memories_fts(rowid, transcript, translated_transcript, summary)
		VALUES (new.rowid, new.transcript, new.translated_transcript, new.summary);
	END`,
	`CREATE TRIGGER IF NOT EXISTS memories_ad AFTER DELETE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, transcript, translated_transcript, summary)
		VALUES ('delete', old.rowid, old.transcript, old.translated_transcript, old.summary);
	END`,
	`CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
		INSERT INTO memories_fts(memories_fts, rowid, transcript, translated_transcript, summary)
		VALUES ('delete', old.rowid, old.transcript, old.translated_transcript, old.summary);
		INSERT INTO memories_fts(rowid, transcript, translated_transcript, summary)
		VALUES (new.rowid, new.transcript, new.translated_transcript, new.summary);
	END`,
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if err := s.createSchema(ctx); err != nil {
			return err
		}
	} else {
		var version int
		if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if version != schemaVersion {
			return fmt.Errorf("%w: database has version %d, expected %d (delete the database to reset)",
				ErrSchemaMismatch, version, schemaVersion)
		}
	}

	s.ftsEnabled = s.initFullText(ctx) == nil
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// initFullText creates the FTS5 index and its sync triggers. SQLite builds
// without FTS5 fail here and the store runs on substring search alone.
func (s *Store) initFullText(ctx context.Context) error {
	for _, stmt := range ftsStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init full-text index: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO memories_fts(memories_fts) VALUES ('rebuild')"); err != nil {
		return fmt.Errorf("rebuild full-text index: %w", err)
	}
	return nil
}
