package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// WriteOnce streams r into a new file at path. The file must not already
// exist; partial output is removed when the copy fails.
func WriteOnce(path string, r io.Reader, mode os.FileMode) (int64, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(out, r)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return written, err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return written, err
	}
	return written, nil
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveAll deletes every path in dir named by names, tolerating missing
// files. The first unexpected error is returned after all removals are attempted.
func RemoveAll(dir string, names []string) error {
	var firstErr error
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if err := RemoveIfExists(filepath.Join(dir, name)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return firstErr
}

// SanitizeName reduces a client-supplied filename to a safe base name made
// of letters, digits, dot, dash, and underscore.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	cleaned := strings.TrimLeft(b.String(), ".")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
