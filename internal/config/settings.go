package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name, used as the cache namespace.
	AppName = "treefmt-pre-commit"
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "TREEFMT_PRE_COMMIT"
	// ConfigFileEnv names a settings file when no explicit path is given.
	ConfigFileEnv = EnvPrefix + "_CONFIG"

	// DefaultVersion is the treefmt release wrapped by this build.
	DefaultVersion = "2.4.0"
	// DefaultBaseURL is where treefmt release assets are published.
	DefaultBaseURL = "https://github.com/numtide/treefmt/releases/download"
	// DefaultFetchTimeout bounds a single archive download.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultLockTimeout bounds the total wait for a peer's installation.
	DefaultLockTimeout = 60 * time.Second
	// DefaultPollInterval is how often a waiting process checks the lock.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultStaleLockAfter is the lock age after which a holder is presumed dead.
	DefaultStaleLockAfter = 10 * time.Minute
	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"

	// staleLockMargin is added to the longest possible fetch when checking
	// stale_lock_after, covering the write and rename after the download.
	staleLockMargin = 30 * time.Second
)

// ErrInvalidSettings wraps every validation failure returned by Load.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds everything the shim needs to locate, fetch, and install
// treefmt. Values come from defaults, an optional settings file, and
// TREEFMT_PRE_COMMIT_* environment variables, in increasing precedence.
type Settings struct {
	Version        string        `mapstructure:"version"`
	CacheRoot      string        `mapstructure:"cache_root"`
	BaseURL        string        `mapstructure:"base_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
	LockTimeout    time.Duration `mapstructure:"lock_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	StaleLockAfter time.Duration `mapstructure:"stale_lock_after"`
	ArchiveSHA256  string        `mapstructure:"archive_sha256"`
	Keyring        string        `mapstructure:"keyring"`
	LogLevel       string        `mapstructure:"log_level"`
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFile forces loading from a specific settings file when set.
	ConfigFile string
	// Version replaces DefaultVersion as the lowest-precedence version,
	// typically a value stamped in at build time.
	Version string
}

// Load resolves Settings from defaults, the settings file and the environment.
func Load(opts LoadOptions) (*Settings, error) {
	v := viper.New()

	defaultVersion := opts.Version
	if defaultVersion == "" {
		defaultVersion = DefaultVersion
	}

	v.SetDefault("version", defaultVersion)
	v.SetDefault("cache_root", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("fetch_timeout", DefaultFetchTimeout)
	v.SetDefault("lock_timeout", DefaultLockTimeout)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("stale_lock_after", DefaultStaleLockAfter)
	v.SetDefault("archive_sha256", "")
	v.SetDefault("keyring", "")
	v.SetDefault("log_level", DefaultLogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(ConfigFileEnv)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings file %s: %w", configFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	if err := s.normalize(); err != nil {
		return nil, err
	}

	return &s, nil
}

// normalize validates s in place and canonicalizes the version.
func (s *Settings) normalize() error {
	version, err := NormalizeVersion(s.Version)
	if err != nil {
		return fmt.Errorf("%w: version: %w", ErrInvalidSettings, err)
	}
	s.Version = version

	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q is not an absolute URL", ErrInvalidSettings, s.BaseURL)
	}

	if s.FetchTimeout <= 0 {
		return fmt.Errorf("%w: fetch_timeout must be positive", ErrInvalidSettings)
	}
	if s.LockTimeout <= 0 {
		return fmt.Errorf("%w: lock_timeout must be positive", ErrInvalidSettings)
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive", ErrInvalidSettings)
	}
	if s.StaleLockAfter < 0 {
		return fmt.Errorf("%w: stale_lock_after must not be negative", ErrInvalidSettings)
	}
	if s.StaleLockAfter > 0 {
		// A live holder may spend two fetch timeouts downloading the archive
		// and its signature. Breaking its lock earlier allows a second fetch.
		if floor := 2*s.FetchTimeout + staleLockMargin; s.StaleLockAfter <= floor {
			return fmt.Errorf("%w: stale_lock_after must be 0 or longer than %s", ErrInvalidSettings, floor)
		}
		if s.StaleLockAfter < s.LockTimeout {
			return fmt.Errorf("%w: stale_lock_after must not be shorter than lock_timeout", ErrInvalidSettings)
		}
	}

	s.CacheRoot = strings.TrimSpace(s.CacheRoot)
	if s.CacheRoot != "" && !filepath.IsAbs(s.CacheRoot) {
		return fmt.Errorf("%w: cache_root %q must be an absolute path", ErrInvalidSettings, s.CacheRoot)
	}

	s.ArchiveSHA256 = strings.ToLower(strings.TrimSpace(s.ArchiveSHA256))
	if s.ArchiveSHA256 != "" && !isHexDigest(s.ArchiveSHA256) {
		return fmt.Errorf("%w: archive_sha256 must be 64 hex characters", ErrInvalidSettings)
	}

	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidSettings, err)
	}

	return nil
}

// Level returns the parsed log level, falling back to info.
func (s *Settings) Level() log.Level {
	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
