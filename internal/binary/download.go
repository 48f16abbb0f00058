package binary

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "treefmt-pre-commit"
	// maxRedirects matches the GitHub release download chain with headroom.
	maxRedirects = 10
	// maxArchiveBytes caps a downloaded archive (500 MB).
	maxArchiveBytes = 500 << 20
)

// Downloader performs single-shot HTTP GETs into memory.
//
// Failures are never retried here. A persistent failure such as a missing
// release asset should surface to the user; re-running the hook is the
// retry.
type Downloader struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewDownloader creates a downloader whose requests are bounded by timeout.
func NewDownloader(timeout time.Duration, userAgent string) *Downloader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Downloader{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxArchiveBytes,
	}
}

// Get downloads url and returns the response body. Any failure is returned
// as a *DownloadError.
func (d *Downloader) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &DownloadError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("read response body: %w", err)}
	}
	if int64(len(data)) > d.maxBytes {
		return nil, &DownloadError{URL: url, Err: fmt.Errorf("response exceeds %d bytes", d.maxBytes)}
	}

	return data, nil
}
