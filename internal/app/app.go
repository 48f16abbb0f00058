// Package app wires settings, logging and the installation manager
// together for the shim and the maintenance CLI.
package app

import (
	"fmt"
	"io"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/charmbracelet/log"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/binary"
	"github.com/treefmt-pre-commit/treefmt-shim/internal/config"
	"github.com/treefmt-pre-commit/treefmt-shim/internal/platform"
)

// App holds the components built from one settings load.
type App struct {
	Settings *config.Settings
	Logger   *log.Logger
	Locator  *config.Locator
	Resolver platform.Resolver
	Manager  *binary.Manager
}

// New loads settings and builds every component. Logs go to logOut.
func New(opts config.LoadOptions, logOut io.Writer) (*App, error) {
	settings, err := config.Load(opts)
	if err != nil {
		return nil, err
	}

	return FromSettings(settings, logOut)
}

// FromSettings builds the components for already loaded settings.
func FromSettings(settings *config.Settings, logOut io.Writer) (*App, error) {
	logger := NewLogger(logOut, settings.Level())

	verifier, err := newVerifier(settings)
	if err != nil {
		return nil, err
	}

	fetcher, err := binary.NewReleaseFetcher(binary.FetcherConfig{
		BaseURL:   settings.BaseURL,
		Timeout:   settings.FetchTimeout,
		UserAgent: binary.DefaultUserAgent + "/" + settings.Version,
		Verifier:  verifier,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	locator := config.NewLocator(settings.CacheRoot)
	resolver := platform.NewResolver()

	manager, err := binary.NewManager(binary.Config{
		Locator:        locator,
		Resolver:       resolver,
		Fetcher:        fetcher,
		LockTimeout:    settings.LockTimeout,
		PollInterval:   settings.PollInterval,
		StaleLockAfter: settings.StaleLockAfter,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Settings: settings,
		Logger:   logger,
		Locator:  locator,
		Resolver: resolver,
		Manager:  manager,
	}, nil
}

// NewLogger creates the stderr logger shared by all components.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

func newVerifier(settings *config.Settings) (*binary.Verifier, error) {
	if settings.ArchiveSHA256 == "" && settings.Keyring == "" {
		return nil, nil
	}

	var keyring openpgp.EntityList
	if settings.Keyring != "" {
		kr, err := binary.LoadKeyring(settings.Keyring)
		if err != nil {
			return nil, fmt.Errorf("load keyring %s: %w", settings.Keyring, err)
		}
		keyring = kr
	}

	return binary.NewVerifier(settings.ArchiveSHA256, keyring), nil
}
