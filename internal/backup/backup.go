// Package backup keeps a pristine copy of an archive next to it.
//
// The first successful Ensure snapshots the archive to <archive><suffix>.
// Later runs find the snapshot and leave it alone, so the copy always holds
// the archive as it was before the patcher ever touched it.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/writer"
)

// DefaultSuffix is appended to the archive path to name its backup.
const DefaultSuffix = ".backup"

// Result describes the backup that Ensure found or created.
type Result struct {
	Path    string
	Created bool
	Size    int64
}

// PathFor returns the backup location for archive. An empty suffix means DefaultSuffix.
func PathFor(archive, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return archive + suffix
}

// Ensure creates the backup for archive unless one already exists. An
// existing backup is never replaced, even if the archive changed since.
func Ensure(archive, suffix string) (Result, error) {
	backupPath := PathFor(archive, suffix)

	if info, err := os.Stat(backupPath); err == nil {
		if !info.Mode().IsRegular() {
			return Result{}, &format.IOError{Op: "backup", Path: backupPath, Err: errors.New("not a regular file")}
		}
		return Result{Path: backupPath, Size: info.Size()}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Result{}, &format.IOError{Op: "backup", Path: backupPath, Err: err}
	}

	src, err := os.Stat(archive)
	if err != nil {
		return Result{}, &format.IOError{Op: "backup", Path: archive, Err: err}
	}
	data, err := os.ReadFile(archive)
	if err != nil {
		return Result{}, &format.IOError{Op: "backup", Path: archive, Err: err}
	}

	if err := writer.WriteAtomic(backupPath, data, src.Mode().Perm()); err != nil {
		return Result{}, &format.IOError{Op: "backup", Path: backupPath, Err: err}
	}
	if err := verifySize(backupPath, int64(len(data))); err != nil {
		_ = os.Remove(backupPath)
		return Result{}, &format.IOError{Op: "backup", Path: backupPath, Err: err}
	}

	return Result{Path: backupPath, Created: true, Size: int64(len(data))}, nil
}

// Restore atomically replaces archive with the contents of its backup. The
// backup itself is kept.
func Restore(archive, suffix string) (string, error) {
	backupPath := PathFor(archive, suffix)

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return "", &format.IOError{Op: "restore", Path: backupPath, Err: err}
	}
	w := &writer.FileWriter{Path: archive}
	if err := w.WriteArchive(data); err != nil {
		return "", &format.IOError{Op: "restore", Path: archive, Err: err}
	}
	return backupPath, nil
}

// Status compares an archive with its backup.
type Status struct {
	ArchivePath   string `json:"archive_path"`
	ArchiveSize   int64  `json:"archive_size"`
	ArchiveSHA256 string `json:"archive_sha256"`
	BackupPath    string `json:"backup_path"`
	BackupExists  bool   `json:"backup_exists"`
	BackupSize    int64  `json:"backup_size,omitempty"`
	BackupSHA256  string `json:"backup_sha256,omitempty"`
}

// Modified reports whether the archive differs from its backup.
func (s *Status) Modified() bool {
	return s.BackupExists && s.ArchiveSHA256 != s.BackupSHA256
}

// Inspect hashes the archive and, when present, its backup.
func Inspect(archive, suffix string) (*Status, error) {
	st := &Status{ArchivePath: archive, BackupPath: PathFor(archive, suffix)}

	var err error
	st.ArchiveSize, st.ArchiveSHA256, err = digest(archive)
	if err != nil {
		return nil, &format.IOError{Op: "status", Path: archive, Err: err}
	}

	st.BackupSize, st.BackupSHA256, err = digest(st.BackupPath)
	switch {
	case err == nil:
		st.BackupExists = true
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, &format.IOError{Op: "status", Path: st.BackupPath, Err: err}
	}
	return st, nil
}

func digest(path string) (int64, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, "", err
	}
	sum := sha256.Sum256(data)
	return int64(len(data)), hex.EncodeToString(sum[:]), nil
}

func verifySize(path string, want int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}
	if info.Size() != want {
		return fmt.Errorf("backup size mismatch: expected %d, got %d", want, info.Size())
	}
	return nil
}
