package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// XDGCacheHomeEnv is honored on every OS as a cache root override.
const XDGCacheHomeEnv = "XDG_CACHE_HOME"

// Locator computes the version-scoped cache directory.
//
// Every process on a machine that asks for the same version gets the same
// path, so the directory can be shared between concurrent invocations.
type Locator struct {
	// Override, when set, is used as the cache root. It must be absolute.
	Override string

	getenv  func(string) string
	homeDir func() (string, error)
	goos    string
}

// NewLocator creates a Locator for the running OS. override is the explicit
// cache root from Settings.CacheRoot and may be empty.
func NewLocator(override string) *Locator {
	return &Locator{
		Override: override,
		getenv:   os.Getenv,
		homeDir:  os.UserHomeDir,
		goos:     runtime.GOOS,
	}
}

// Root returns the cache root directory.
//
// Precedence: explicit override, $XDG_CACHE_HOME, then the platform
// convention (~/Library/Caches on macOS, %LOCALAPPDATA% on Windows,
// ~/.cache elsewhere). Relative environment values are ignored, so the
// result never depends on the working directory.
func (l *Locator) Root() (string, error) {
	if l.Override != "" {
		if !filepath.IsAbs(l.Override) {
			return "", fmt.Errorf("cache root %q is not an absolute path", l.Override)
		}
		return l.Override, nil
	}
	if dir := l.getenv(XDGCacheHomeEnv); filepath.IsAbs(dir) {
		return dir, nil
	}

	if l.goos == "windows" {
		if dir := l.getenv("LOCALAPPDATA"); filepath.IsAbs(dir) {
			return dir, nil
		}
	}

	home, err := l.homeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if home == "" {
		return "", fmt.Errorf("failed to get home directory: empty path")
	}

	switch l.goos {
	case "darwin":
		return filepath.Join(home, "Library", "Caches"), nil
	case "windows":
		return filepath.Join(home, "AppData", "Local"), nil
	default:
		return filepath.Join(home, ".cache"), nil
	}
}

// Dir returns <root>/treefmt-pre-commit/<version>. The directory is not
// created.
func (l *Locator) Dir(version string) (string, error) {
	root, err := l.Root()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, AppName, version), nil
}
