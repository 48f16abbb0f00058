package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/filelock"
	"github.com/treefmt-pre-commit/treefmt-shim/internal/platform"
)

const (
	// DefaultLockTimeout bounds the total wait for a peer's installation.
	DefaultLockTimeout = 60 * time.Second
	// DefaultPollInterval is how often a waiting process checks the lock.
	DefaultPollInterval = 100 * time.Millisecond
)

// CacheLocator resolves the version-scoped cache directory.
type CacheLocator interface {
	Dir(version string) (string, error)
}

// Config holds configuration for the installation manager.
type Config struct {
	// Locator resolves the cache directory for a version.
	Locator CacheLocator
	// Resolver reports the platform to fetch for.
	Resolver platform.Resolver
	// Fetcher produces the executable bytes.
	Fetcher Fetcher
	// LockTimeout bounds the total time spent waiting on a peer (default 60s).
	LockTimeout time.Duration
	// PollInterval is the lock polling period (default 100ms).
	PollInterval time.Duration
	// StaleLockAfter is the lock age after which a waiter breaks it.
	// Zero disables stale lock breaking. It must outlast the longest
	// possible fetch, or a live holder's lock can be broken.
	StaleLockAfter time.Duration
	// Logger receives progress messages. Optional.
	Logger Logger
}

// Manager ensures a treefmt binary is present in the shared cache.
type Manager struct {
	locator        CacheLocator
	resolver       platform.Resolver
	fetcher        Fetcher
	lockTimeout    time.Duration
	pollInterval   time.Duration
	staleLockAfter time.Duration
	logger         Logger

	executable string
	pid        int
	// writeFile writes the staging file; replaced in tests to inject faults.
	writeFile func(path string, data []byte) error
}

// NewManager creates a new installation manager
func NewManager(config Config) (*Manager, error) {
	if config.Locator == nil {
		return nil, fmt.Errorf("Locator is required")
	}
	if config.Resolver == nil {
		return nil, fmt.Errorf("Resolver is required")
	}
	if config.Fetcher == nil {
		return nil, fmt.Errorf("Fetcher is required")
	}

	if config.LockTimeout <= 0 {
		config.LockTimeout = DefaultLockTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.StaleLockAfter < 0 {
		return nil, fmt.Errorf("StaleLockAfter must not be negative")
	}
	if config.StaleLockAfter > 0 && config.StaleLockAfter < config.LockTimeout {
		return nil, fmt.Errorf("StaleLockAfter (%s) must not be shorter than LockTimeout (%s)", config.StaleLockAfter, config.LockTimeout)
	}

	return &Manager{
		locator:        config.Locator,
		resolver:       config.Resolver,
		fetcher:        config.Fetcher,
		lockTimeout:    config.LockTimeout,
		pollInterval:   config.PollInterval,
		staleLockAfter: config.StaleLockAfter,
		logger:         loggerOrNoop(config.Logger),
		executable:     hostExecutableName,
		pid:            os.Getpid(),
		writeFile:      writeExecutable,
	}, nil
}

// Paths are the well-known files inside a version's cache directory.
type Paths struct {
	Dir     string // <root>/treefmt-pre-commit/<version>
	Binary  string // <Dir>/treefmt
	Lock    string // <Dir>/.treefmt.lock
	Staging string // <Dir>/.treefmt.tmp.<pid>
}

// Paths resolves the cache paths for version without touching the filesystem.
func (m *Manager) Paths(version string) (Paths, error) {
	dir, err := m.locator.Dir(version)
	if err != nil {
		return Paths{}, fmt.Errorf("locate cache directory: %w", err)
	}

	return Paths{
		Dir:     dir,
		Binary:  filepath.Join(dir, m.executable),
		Lock:    filepath.Join(dir, lockFileName),
		Staging: filepath.Join(dir, stagingPrefix+strconv.Itoa(m.pid)),
	}, nil
}

// IsInstalled reports whether the binary for version is present.
func (m *Manager) IsInstalled(version string) (bool, error) {
	paths, err := m.Paths(version)
	if err != nil {
		return false, err
	}
	return isInstalled(paths.Binary)
}

// EnsureInstalled returns the path to the treefmt binary for version,
// downloading and installing it first if needed.
//
// Concurrent callers sharing a cache directory perform at most one fetch.
// Waiting for a peer is bounded by the lock timeout as a whole, no matter
// how many times the lock is contended.
func (m *Manager) EnsureInstalled(ctx context.Context, version string) (string, error) {
	paths, err := m.Paths(version)
	if err != nil {
		return "", err
	}

	// Fast path: warm cache, no lock traffic.
	installed, err := isInstalled(paths.Binary)
	if err != nil {
		return "", &InstallError{Path: paths.Binary, Err: err}
	}
	if installed {
		return paths.Binary, nil
	}

	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		return "", &InstallError{Path: paths.Binary, Err: fmt.Errorf("create cache dir: %w", err)}
	}

	start := time.Now()
	deadline := start.Add(m.lockTimeout)

	for {
		lock, err := filelock.TryAcquire(paths.Lock)
		if err == nil {
			return m.install(ctx, version, paths, lock)
		}
		if !errors.Is(err, filelock.ErrHeld) {
			return "", &InstallError{Path: paths.Binary, Err: err}
		}

		m.logger.Debug("waiting for another process to install treefmt", "lock", paths.Lock)

		if err := m.waitForRelease(ctx, paths.Lock, start, deadline); err != nil {
			return "", err
		}

		installed, err := isInstalled(paths.Binary)
		if err != nil {
			return "", &InstallError{Path: paths.Binary, Err: err}
		}
		if installed {
			return paths.Binary, nil
		}

		// The holder released without installing (failed or crashed after
		// cleanup). Contend for the lock again under the same deadline.
		m.logger.Debug("lock released without an installed binary, retrying", "lock", paths.Lock)
	}
}

// waitForRelease polls until the lock file disappears, a stale lock is
// broken, the deadline passes or ctx is done.
func (m *Manager) waitForRelease(ctx context.Context, lockPath string, start, deadline time.Time) error {
	for {
		exists, err := filelock.Exists(lockPath)
		if err != nil {
			return &InstallError{Path: lockPath, Err: err}
		}
		if !exists {
			return nil
		}

		broken, err := filelock.BreakStale(lockPath, m.staleLockAfter)
		if err != nil {
			m.logger.Warn("failed to break stale lock", "lock", lockPath, "err", err)
		}
		if broken {
			m.logger.Warn("removed stale lock", "lock", lockPath, "older_than", m.staleLockAfter)
			return nil
		}

		now := time.Now()
		if !now.Before(deadline) {
			return &LockTimeoutError{Path: lockPath, Waited: now.Sub(start)}
		}

		sleep := m.pollInterval
		if remaining := deadline.Sub(now); remaining < sleep {
			sleep = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// install runs with the lock held and always releases it.
func (m *Manager) install(ctx context.Context, version string, paths Paths, lock *filelock.Lock) (string, error) {
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			m.logger.Warn("failed to release lock", "lock", paths.Lock, "err", releaseErr)
		}
	}()

	// A peer may have finished between the fast path and acquiring the lock.
	installed, err := isInstalled(paths.Binary)
	if err != nil {
		return "", &InstallError{Path: paths.Binary, Err: err}
	}
	if installed {
		return paths.Binary, nil
	}

	tag, err := m.resolver.Resolve(ctx)
	if err != nil {
		return "", &InstallError{Path: paths.Binary, Err: fmt.Errorf("resolve platform: %w", err)}
	}

	data, err := m.fetcher.Fetch(ctx, version, tag)
	if err != nil {
		return "", &InstallError{Path: paths.Binary, Err: err}
	}

	// Track whether we need to clean up the staging file
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			if rmErr := os.Remove(paths.Staging); rmErr != nil && !os.IsNotExist(rmErr) {
				m.logger.Warn("failed to remove staging file", "path", paths.Staging, "err", rmErr)
			}
		}
	}()

	if err := m.writeFile(paths.Staging, data); err != nil {
		return "", &InstallError{Path: paths.Binary, Err: fmt.Errorf("write staging file: %w", err)}
	}

	// Atomic rename: same directory, so same filesystem.
	if err := os.Rename(paths.Staging, paths.Binary); err != nil {
		return "", &InstallError{Path: paths.Binary, Err: fmt.Errorf("rename staging file: %w", err)}
	}
	cleanupNeeded = false

	m.logger.Info("treefmt installed", "path", paths.Binary, "version", version)
	return paths.Binary, nil
}

// writeExecutable writes data to path and marks it executable.
func writeExecutable(path string, data []byte) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("sync file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	// The create mode is filtered by umask; set the bits explicitly.
	return setExecutable(path)
}

// setExecutable sets executable permissions on a file
func setExecutable(path string) error {
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}

// isInstalled checks whether path is an existing regular file. A present
// binary is complete by construction, so nothing else is inspected.
func isInstalled(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat binary: %w", err)
	}
	return info.Mode().IsRegular(), nil
}
