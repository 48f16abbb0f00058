package binary

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork

	"github.com/treefmt-pre-commit/treefmt-shim/internal/platform"
	"github.com/treefmt-pre-commit/treefmt-shim/internal/testutil"
)

var linuxAMD64 = platform.Tag{OS: platform.OSLinux, Arch: platform.ArchAMD64}

// releaseServer serves files (URL path -> body) and counts requests.
func releaseServer(t *testing.T, files map[string][]byte) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

func newTestFetcher(t *testing.T, baseURL string, verifier *Verifier) *ReleaseFetcher {
	t.Helper()

	fetcher, err := NewReleaseFetcher(FetcherConfig{
		BaseURL:  baseURL,
		Timeout:  5 * time.Second,
		Verifier: verifier,
	})
	if err != nil {
		t.Fatalf("NewReleaseFetcher failed: %v", err)
	}
	return fetcher
}

func TestNewReleaseFetcher_RequiresBaseURL(t *testing.T) {
	if _, err := NewReleaseFetcher(FetcherConfig{}); err == nil {
		t.Error("expected error for missing BaseURL")
	}
}

func TestReleaseFetcher_Fetch(t *testing.T) {
	archive := testutil.TarGz(t, map[string]string{
		"treefmt":   "treefmt 2.4.0 binary",
		"README.md": "docs",
	})
	server, requests := releaseServer(t, map[string][]byte{
		"/v2.4.0/treefmt_2.4.0_linux_amd64.tar.gz": archive,
	})

	data, err := newTestFetcher(t, server.URL, nil).Fetch(context.Background(), "2.4.0", linuxAMD64)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if string(data) != "treefmt 2.4.0 binary" {
		t.Errorf("got %q", data)
	}
	if requests.Load() != 1 {
		t.Errorf("expected 1 request, got %d", requests.Load())
	}
}

func TestReleaseFetcher_FetchWindowsZip(t *testing.T) {
	archive := testutil.Zip(t, map[string]string{"treefmt.exe": "MZ"})
	server, _ := releaseServer(t, map[string][]byte{
		"/v2.4.0/treefmt_2.4.0_windows_amd64.zip": archive,
	})

	tag := platform.Tag{OS: platform.OSWindows, Arch: platform.ArchAMD64}
	data, err := newTestFetcher(t, server.URL, nil).Fetch(context.Background(), "2.4.0", tag)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "MZ" {
		t.Errorf("got %q", data)
	}
}

func TestReleaseFetcher_Errors(t *testing.T) {
	wrongArchive := testutil.TarGz(t, map[string]string{"not-treefmt": "x"})
	server, _ := releaseServer(t, map[string][]byte{
		"/v2.4.0/treefmt_2.4.0_linux_amd64.tar.gz": wrongArchive,
	})
	fetcher := newTestFetcher(t, server.URL, nil)

	t.Run("missing_release", func(t *testing.T) {
		_, err := fetcher.Fetch(context.Background(), "9.9.9", linuxAMD64)

		var dlErr *DownloadError
		if !errors.As(err, &dlErr) {
			t.Fatalf("expected *DownloadError, got %v", err)
		}
		if dlErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", dlErr.StatusCode)
		}
	})

	t.Run("missing_member", func(t *testing.T) {
		_, err := fetcher.Fetch(context.Background(), "2.4.0", linuxAMD64)

		var extErr *ExtractionError
		if !errors.As(err, &extErr) {
			t.Fatalf("expected *ExtractionError, got %v", err)
		}
		if !errors.Is(err, ErrMemberNotFound) {
			t.Errorf("expected ErrMemberNotFound, got %v", err)
		}
	})
}

func TestReleaseFetcher_ChecksumMismatchStopsBeforeExtraction(t *testing.T) {
	archive := testutil.TarGz(t, map[string]string{"treefmt": "binary"})
	server, _ := releaseServer(t, map[string][]byte{
		"/v2.4.0/treefmt_2.4.0_linux_amd64.tar.gz": archive,
	})

	verifier := NewVerifier(sha256Hex([]byte("something else")), nil)
	_, err := newTestFetcher(t, server.URL, verifier).Fetch(context.Background(), "2.4.0", linuxAMD64)

	var verr *VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VerificationError, got %v", err)
	}
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		t.Error("verification failure should not reach extraction")
	}
}

func TestReleaseFetcher_SignatureVerification(t *testing.T) {
	signer := newTestEntity(t)
	archive := testutil.TarGz(t, map[string]string{"treefmt": "signed binary"})

	var signature bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&signature, signer, bytes.NewReader(archive), nil); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	const assetPath = "/v2.4.0/treefmt_2.4.0_linux_amd64.tar.gz"
	verifier := NewVerifier(sha256Hex(archive), openpgp.EntityList{signer})

	t.Run("valid_signature", func(t *testing.T) {
		server, requests := releaseServer(t, map[string][]byte{
			assetPath:          archive,
			assetPath + ".sig": signature.Bytes(),
		})

		data, err := newTestFetcher(t, server.URL, verifier).Fetch(context.Background(), "2.4.0", linuxAMD64)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if string(data) != "signed binary" {
			t.Errorf("got %q", data)
		}
		if requests.Load() != 2 {
			t.Errorf("expected archive and signature requests, got %d", requests.Load())
		}
	})

	t.Run("missing_signature", func(t *testing.T) {
		server, _ := releaseServer(t, map[string][]byte{assetPath: archive})

		_, err := newTestFetcher(t, server.URL, verifier).Fetch(context.Background(), "2.4.0", linuxAMD64)

		var dlErr *DownloadError
		if !errors.As(err, &dlErr) {
			t.Fatalf("expected *DownloadError for the signature, got %v", err)
		}
	})
}
