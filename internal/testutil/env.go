// Package testutil provides utilities for testing the treefmt shim in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv points every cache and settings variable at a fresh temp
// directory, so tests never read or populate the user's real cache.
// It returns the cache root in use.
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	cacheRoot := filepath.Join(tmpDir, "cache")

	t.Setenv("XDG_CACHE_HOME", cacheRoot)
	t.Setenv("LOCALAPPDATA", cacheRoot)

	for _, key := range []string{
		"TREEFMT_PRE_COMMIT_VERSION",
		"TREEFMT_PRE_COMMIT_CACHE_ROOT",
		"TREEFMT_PRE_COMMIT_BASE_URL",
		"TREEFMT_PRE_COMMIT_FETCH_TIMEOUT",
		"TREEFMT_PRE_COMMIT_LOCK_TIMEOUT",
		"TREEFMT_PRE_COMMIT_POLL_INTERVAL",
		"TREEFMT_PRE_COMMIT_STALE_LOCK_AFTER",
		"TREEFMT_PRE_COMMIT_ARCHIVE_SHA256",
		"TREEFMT_PRE_COMMIT_KEYRING",
		"TREEFMT_PRE_COMMIT_LOG_LEVEL",
		"TREEFMT_PRE_COMMIT_CONFIG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	if err := os.MkdirAll(cacheRoot, 0o750); err != nil {
		t.Fatalf("failed to create test directory %s: %v", cacheRoot, err)
	}

	return cacheRoot
}
