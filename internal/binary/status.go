package binary

import (
	"errors"
	"fmt"
	"time"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/filelock"
)

// ErrLockNotStale is returned by Unlock when the lock is younger than the
// stale threshold and force was not requested.
var ErrLockNotStale = errors.New("lock is not stale")

// Status describes the cache state for one version.
type Status struct {
	Version   string
	Paths     Paths
	Installed bool
	Locked    bool
	LockAge   time.Duration // zero when Locked is false
}

// Status inspects the cache for version without modifying it.
func (m *Manager) Status(version string) (*Status, error) {
	paths, err := m.Paths(version)
	if err != nil {
		return nil, err
	}

	installed, err := isInstalled(paths.Binary)
	if err != nil {
		return nil, err
	}

	st := &Status{
		Version:   version,
		Paths:     paths,
		Installed: installed,
	}

	locked, err := filelock.Exists(paths.Lock)
	if err != nil {
		return nil, err
	}
	if locked {
		age, err := filelock.Age(paths.Lock)
		if err == nil {
			st.Locked = true
			st.LockAge = age
		}
	}

	return st, nil
}

// Unlock removes the install lock for version. Without force, only a lock
// older than the stale threshold is removed. It returns false when there was
// no lock to remove.
func (m *Manager) Unlock(version string, force bool) (bool, error) {
	paths, err := m.Paths(version)
	if err != nil {
		return false, err
	}

	exists, err := filelock.Exists(paths.Lock)
	if err != nil || !exists {
		return false, err
	}

	if force {
		lock := filelock.Held(paths.Lock)
		if err := lock.Release(); err != nil {
			return false, err
		}
		m.logger.Warn("removed lock", "lock", paths.Lock, "forced", true)
		return true, nil
	}

	threshold := m.staleLockAfter
	if threshold <= 0 {
		threshold = filelock.DefaultStaleAfter
	}
	broken, err := filelock.BreakStale(paths.Lock, threshold)
	if err != nil {
		return false, err
	}
	if !broken {
		return false, fmt.Errorf("%w: %s is younger than %s", ErrLockNotStale, paths.Lock, threshold)
	}

	m.logger.Warn("removed stale lock", "lock", paths.Lock)
	return true, nil
}
