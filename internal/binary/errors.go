package binary

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMemberNotFound indicates the archive has no entry for the binary.
	ErrMemberNotFound = errors.New("member not found in archive")

	// ErrLockTimeout indicates a peer held the install lock for too long.
	ErrLockTimeout = errors.New("timeout waiting for lock")

	// ErrChecksumMismatch indicates the archive digest differs from the
	// configured one.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// DownloadError reports a transport failure or a non-200 response.
type DownloadError struct {
	URL        string
	StatusCode int // zero for transport errors
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// ExtractionError reports an unreadable archive or a missing member.
type ExtractionError struct {
	Member string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s from archive: %v", e.Member, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// VerificationError reports an archive that failed its integrity check.
type VerificationError struct {
	Method string // "sha256" or "gpg"
	Err    error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s verification failed: %v", e.Method, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// InstallError reports any failure while the install lock was held.
// Err may itself be a *DownloadError, *ExtractionError or *VerificationError.
type InstallError struct {
	Path string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("install %s to %s: %v", ToolName, e.Path, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// LockTimeoutError reports that the lock at Path was still present after
// waiting for Waited.
type LockTimeoutError struct {
	Path   string
	Waited time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for lock: %s (waited %s)", e.Path, e.Waited.Round(time.Millisecond))
}

func (e *LockTimeoutError) Unwrap() error { return ErrLockTimeout }
