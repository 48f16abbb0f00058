// Package config resolves runtime settings and the cache location.
//
// Settings are loaded with viper from built-in defaults, an optional
// settings file (YAML, TOML or JSON) and TREEFMT_PRE_COMMIT_* environment
// variables. For example:
//
//	TREEFMT_PRE_COMMIT_VERSION=2.4.0
//	TREEFMT_PRE_COMMIT_CACHE_ROOT=/var/cache/ci
//	TREEFMT_PRE_COMMIT_LOCK_TIMEOUT=2m
//
// The cache directory for a version is
//
//	<cache-root>/treefmt-pre-commit/<version>
//
// where the cache root is TREEFMT_PRE_COMMIT_CACHE_ROOT, $XDG_CACHE_HOME, or
// the platform's user cache directory.
package config
