package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion indicates a version string is not a full semantic version.
var ErrInvalidVersion = errors.New("invalid semantic version")

// NormalizeVersion validates v as a full semantic version (major.minor.patch
// with optional prerelease) and returns it without the leading "v". This is
// the form used in release asset names and cache directory names, so "2.4.0"
// and "v2.4.0" share one cache entry.
func NormalizeVersion(v string) (string, error) {
	norm := strings.TrimSpace(v)
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}

	// semver accepts "v2" and "v2.4" as shorthand; release tags never use them.
	if !semver.IsValid(norm) || semver.Canonical(norm) != norm {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}

	return strings.TrimPrefix(norm, "v"), nil
}
