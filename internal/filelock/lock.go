// Package filelock implements a cross-process mutual exclusion token backed
// by a zero-byte marker file.
//
// The existence of the file is the only signal that the lock is held. The
// file is created with O_CREATE|O_EXCL, so creation itself is the atomic
// test; there is never a check-then-create window. This works the same way
// on every platform and needs no OS-specific advisory locking API.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultStaleAfter is the age after which an unreleased lock is presumed
// abandoned by a crashed holder.
const DefaultStaleAfter = 10 * time.Minute

var (
	// ErrHeld is returned by TryAcquire when another holder owns the lock.
	ErrHeld = errors.New("lock is held by another process")
	// ErrLost is returned by Release when the lock file was broken as stale
	// and another holder has since created its own.
	ErrLost = errors.New("lock file now belongs to another holder")
)

// Lock is a held lock file.
type Lock struct {
	path string
	// info identifies the file this holder created; nil for Held locks.
	info os.FileInfo
}

// TryAcquire attempts to create the lock file at path exclusively. It never
// blocks: if the file already exists it returns ErrHeld.
func TryAcquire(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("create lock file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("stat lock file: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close lock file: %w", err)
	}

	return &Lock{path: path, info: info}, nil
}

// Release removes the lock file. It is safe to call more than once.
//
// A lock broken as stale may have been re-created by another process. In
// that case the file is left alone and ErrLost is returned.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}

	path, owned := l.path, l.info
	l.path, l.info = "", nil

	if owned != nil {
		current, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("stat lock file: %w", err)
		}
		if !sameLock(owned, current) {
			return ErrLost
		}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

// Exists reports whether a lock file is present at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat lock file: %w", err)
}

// Age returns how long ago the lock file at path was created.
func Age(path string) (time.Duration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return time.Since(info.ModTime()), nil
}

// BreakStale removes the lock file at path if it is older than threshold.
// A non-positive threshold disables breaking. It returns true when a stale
// lock was removed.
//
// The stale file is first moved to a private name so that two processes
// breaking the same lock cannot remove a fresh lock created in between. If
// the moved file turns out not to be the one observed as stale, it is linked
// back into place unless a newer lock already exists there.
func BreakStale(path string, threshold time.Duration) (bool, error) {
	if threshold <= 0 {
		return false, nil
	}

	observed, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat lock file: %w", err)
	}
	if time.Since(observed.ModTime()) <= threshold {
		return false, nil
	}

	private := filepath.Join(filepath.Dir(path), filepath.Base(path)+".stale."+strconv.Itoa(os.Getpid()))
	if err := os.Rename(path, private); err != nil {
		if os.IsNotExist(err) {
			// Someone else broke it first.
			return false, nil
		}
		return false, fmt.Errorf("move stale lock: %w", err)
	}
	defer func() { _ = os.Remove(private) }()

	moved, err := os.Stat(private)
	if err != nil {
		return false, fmt.Errorf("stat moved lock: %w", err)
	}
	if !sameLock(observed, moved) {
		// We grabbed a fresh lock that replaced the stale one. os.Link fails
		// if path exists again, so this never clobbers a newer holder.
		_ = os.Link(private, path)
		return false, nil
	}

	return true, nil
}

// sameLock reports whether a and b describe the same lock file. Inode
// numbers are reused quickly after a delete, so the mtime must match too.
func sameLock(a, b os.FileInfo) bool {
	return os.SameFile(a, b) && a.ModTime().Equal(b.ModTime())
}

// Held returns a Lock for an existing lock file at path without acquiring
// it. It is meant for operators recovering from a crashed holder; releasing
// it removes the file regardless of who created it.
func Held(path string) *Lock {
	return &Lock{path: path}
}
