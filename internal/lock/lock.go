// Package lock serializes patch runs against the same archive.
//
// The lock is an advisory OS lock on a sibling file, <archive>.lock, not on
// the archive itself: flushing replaces the archive by rename, which would
// silently drop a lock held on the old inode.
package lock

import (
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/regpatch/internal/format"
)

// Suffix is appended to the archive path to name its lock file.
const Suffix = ".lock"

// Lock is a held archive lock.
type Lock struct {
	path string
	f    *os.File
}

// PathFor returns the lock file used for archive.
func PathFor(archive string) string { return archive + Suffix }

// Acquire takes the exclusive lock for archive without blocking. If another
// process holds it the error wraps format.ErrLocked.
func Acquire(archive string) (*Lock, error) {
	path := PathFor(archive)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, &format.IOError{Op: "lock", Path: path, Err: err}
	}

	if err := lockFile(f); err != nil {
		f.Close()
		if errors.Is(err, errWouldBlock) {
			return nil, fmt.Errorf("%w: %s", format.ErrLocked, path)
		}
		return nil, &format.IOError{Op: "lock", Path: path, Err: err}
	}

	// A previous holder may have removed the file between our open and lock;
	// the lock then guards an orphaned inode.
	held, err1 := f.Stat()
	current, err2 := os.Stat(path)
	if err1 != nil || err2 != nil || !os.SameFile(held, current) {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("%w: %s was replaced while locking", format.ErrLocked, path)
	}

	return &Lock{path: path, f: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release removes the lock file and drops the lock. Safe to call twice.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	f := l.f
	l.f = nil

	// Remove while still holding the lock so no one locks a file we delete.
	// Windows refuses to delete an open file; retry once it is closed.
	rmErr := os.Remove(l.path)
	unlockErr := unlockFile(f)
	closeErr := f.Close()
	if rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		rmErr = os.Remove(l.path)
	}
	if rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return &format.IOError{Op: "unlock", Path: l.path, Err: rmErr}
	}
	if unlockErr != nil {
		return &format.IOError{Op: "unlock", Path: l.path, Err: unlockErr}
	}
	if closeErr != nil {
		return &format.IOError{Op: "unlock", Path: l.path, Err: closeErr}
	}
	return nil
}
