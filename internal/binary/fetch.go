package binary

import (
	"context"
	"fmt"
	"time"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/platform"
)

// Fetcher produces the raw treefmt executable for a version and platform.
// Implementations must not write to the filesystem.
type Fetcher interface {
	Fetch(ctx context.Context, version string, tag platform.Tag) ([]byte, error)
}

// FetcherConfig holds configuration for a ReleaseFetcher.
type FetcherConfig struct {
	// BaseURL is the release download root, without trailing slash.
	BaseURL string
	// Timeout bounds each HTTP request (default 30s).
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// Verifier checks the archive before extraction. Optional.
	Verifier *Verifier
	// Logger receives progress messages. Optional.
	Logger Logger
}

// ReleaseFetcher downloads a release archive and extracts treefmt from it.
type ReleaseFetcher struct {
	baseURL    string
	downloader *Downloader
	verifier   *Verifier
	logger     Logger
}

// NewReleaseFetcher creates a ReleaseFetcher.
func NewReleaseFetcher(cfg FetcherConfig) (*ReleaseFetcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}

	return &ReleaseFetcher{
		baseURL:    cfg.BaseURL,
		downloader: NewDownloader(cfg.Timeout, cfg.UserAgent),
		verifier:   cfg.Verifier,
		logger:     loggerOrNoop(cfg.Logger),
	}, nil
}

// Fetch downloads the archive for version and tag, verifies it if
// configured, and returns the extracted executable bytes.
func (f *ReleaseFetcher) Fetch(ctx context.Context, version string, tag platform.Tag) ([]byte, error) {
	asset := NewAsset(f.baseURL, version, tag)

	f.logger.Info("downloading treefmt", "url", asset.URL)

	archive, err := f.downloader.Get(ctx, asset.URL)
	if err != nil {
		return nil, err
	}

	var signature []byte
	if f.verifier.NeedsSignature() {
		signature, err = f.downloader.Get(ctx, asset.SignatureURL())
		if err != nil {
			return nil, err
		}
	}

	if err := f.verifier.Verify(archive, signature); err != nil {
		return nil, err
	}

	data, err := ExtractMember(archive, asset.Format, asset.Member)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("extracted treefmt", "asset", asset.Name, "bytes", len(data))
	return data, nil
}
