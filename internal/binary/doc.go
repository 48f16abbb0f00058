// Package binary fetches the treefmt release archive, extracts the
// executable, and installs it into the shared per-version cache.
//
// # Installation protocol
//
// Manager.EnsureInstalled is safe to call from many processes at once for
// the same cache directory:
//
//  1. Fast path: if <dir>/treefmt exists it is returned immediately. The lock
//     file is never touched on a warm cache.
//  2. The lock <dir>/.treefmt.lock is created with O_CREATE|O_EXCL. The
//     winner re-checks for the binary, then fetches and installs it.
//  3. Losers poll for the lock to disappear, bounded by the lock timeout.
//     When it does, they use the winner's binary, or retry the lock if the
//     winner failed.
//  4. The winner writes the binary to <dir>/.treefmt.tmp.<pid>, marks it
//     executable and renames it into place. Readers see either no binary or
//     a complete one. The staging file is removed on any failure and the
//     lock is always released.
//
// # Fetching
//
// ReleaseFetcher downloads
//
//	<base-url>/v<version>/treefmt_<version>_<os>_<arch>.tar.gz
//
// (.zip on Windows) with a bounded timeout, optionally verifies it against
// a SHA-256 digest or an OpenPGP detached signature, and returns the bytes of
// the treefmt member. It never touches the filesystem and never retries.
//
// # Errors
//
// Failures are reported as *DownloadError, *VerificationError,
// *ExtractionError, *InstallError or *LockTimeoutError. InstallError wraps
// the underlying cause, so errors.As finds the original type through it.
package binary
