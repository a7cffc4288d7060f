// Package memory persists processed memories in SQLite and searches them.
//
// Each record is owned by an optional owner id and every read or delete is
// scoped to that owner. Transcript, translation, and summary text is indexed
// with FTS5 when the SQLite build supports it; searches fall back to a
// case-insensitive substring scan when the index is missing, errors, or finds
// nothing. Keyframe filenames live in their own table whose primary key keeps
// them unique across all records.
package memory
