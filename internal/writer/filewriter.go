// Package writer exposes sinks that archive bytes are flushed to.
package writer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Sink receives the complete contents of an archive.
type Sink interface {
	WriteArchive(data []byte) error
}

// FileWriter writes archive bytes to a filesystem path atomically.
type FileWriter struct {
	Path string
	// Perm is applied to the new file. Zero keeps the mode of the file being
	// replaced, or 0o644 when there is none.
	Perm os.FileMode
}

// WriteArchive replaces Path with data via temp file + rename.
func (w *FileWriter) WriteArchive(data []byte) error {
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
		if info, err := os.Stat(w.Path); err == nil {
			perm = info.Mode().Perm()
		}
	}
	return WriteAtomic(w.Path, data, perm)
}

// WriteAtomic writes data to path so that readers observe either the old
// contents or the new contents, never a truncated mix.
//
// Steps:
//  1. Create a temp file in the target's directory (same filesystem)
//  2. Write and fsync it
//  3. Rename it over the target
//  4. Fsync the directory so the rename survives a crash
//
// A symlinked path is followed: the file it points to is replaced and the link
// is left in place. On any failure before the rename the temp file is removed
// and path is left as it was.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if resolved, evalErr := filepath.EvalSymlinks(absPath); evalErr == nil {
		absPath = resolved
	} else if !errors.Is(evalErr, fs.ErrNotExist) {
		return fmt.Errorf("resolve symlinks: %w", evalErr)
	}
	dir := filepath.Dir(absPath)

	tmpFile, err := os.CreateTemp(dir, ".regpatch-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		return fmt.Errorf("write temp file: %w", writeErr)
	}
	if chmodErr := tmpFile.Chmod(perm); chmodErr != nil {
		return fmt.Errorf("chmod temp file: %w", chmodErr)
	}
	if syncErr := tmpFile.Sync(); syncErr != nil {
		return fmt.Errorf("sync temp file: %w", syncErr)
	}
	// Close before rename (required on Windows)
	if closeErr := tmpFile.Close(); closeErr != nil {
		tmpFile = nil
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", closeErr)
	}
	tmpFile = nil

	if renameErr := os.Rename(tmpPath, absPath); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", renameErr)
	}

	// The data is already in place; a failed directory sync only weakens
	// crash durability of the rename.
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
