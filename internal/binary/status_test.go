package binary

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/filelock"
)

func TestManager_Status(t *testing.T) {
	root := t.TempDir()
	m := newTestManager(t, root, &fakeFetcher{data: []byte("binary")}, nil)

	st, err := m.Status("2.4.0")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.Version != "2.4.0" || st.Installed || st.Locked || st.LockAge != 0 {
		t.Errorf("unexpected status for empty cache: %+v", st)
	}

	paths := holdLock(t, m, "2.4.0")
	old := time.Now().Add(-5 * time.Minute)
	if err := os.Chtimes(paths.Lock, old, old); err != nil {
		t.Fatalf("failed to age lock: %v", err)
	}

	st, err = m.Status("2.4.0")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !st.Locked {
		t.Error("expected Locked")
	}
	if st.LockAge < 4*time.Minute {
		t.Errorf("LockAge = %v, want about 5m", st.LockAge)
	}

	if err := os.Remove(paths.Lock); err != nil {
		t.Fatalf("failed to remove lock: %v", err)
	}
	if _, err := m.EnsureInstalled(context.Background(), "2.4.0"); err != nil {
		t.Fatalf("EnsureInstalled failed: %v", err)
	}

	st, err = m.Status("2.4.0")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !st.Installed || st.Locked {
		t.Errorf("unexpected status after install: %+v", st)
	}
	if st.Paths.Binary != paths.Binary {
		t.Errorf("Paths.Binary = %q, want %q", st.Paths.Binary, paths.Binary)
	}
}

func TestManager_Unlock(t *testing.T) {
	tests := []struct {
		name        string
		lock        bool
		age         time.Duration
		force       bool
		wantRemoved bool
		wantErr     error
	}{
		{name: "no_lock", lock: false},
		{name: "fresh_lock_refused", lock: true, age: time.Second, wantErr: ErrLockNotStale},
		{name: "fresh_lock_forced", lock: true, age: time.Second, force: true, wantRemoved: true},
		{name: "stale_lock", lock: true, age: time.Hour, wantRemoved: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t, t.TempDir(), &fakeFetcher{}, func(c *Config) {
				c.StaleLockAfter = 10 * time.Minute
			})

			paths, _ := m.Paths("2.4.0")
			if tt.lock {
				paths = holdLock(t, m, "2.4.0")
				mtime := time.Now().Add(-tt.age)
				if err := os.Chtimes(paths.Lock, mtime, mtime); err != nil {
					t.Fatalf("failed to age lock: %v", err)
				}
			}

			removed, err := m.Unlock("2.4.0", tt.force)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if removed != tt.wantRemoved {
				t.Errorf("removed = %v, want %v", removed, tt.wantRemoved)
			}

			exists, _ := filelock.Exists(paths.Lock)
			if tt.wantRemoved && exists {
				t.Error("lock should have been removed")
			}
			if tt.lock && !tt.wantRemoved && !exists {
				t.Error("lock should have been kept")
			}
		})
	}
}
