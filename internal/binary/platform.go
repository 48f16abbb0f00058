package binary

import (
	"fmt"

	"github.com/treefmt-pre-commit/treefmt-shim/internal/platform"
)

// ArchiveFormat is the compression format of a release asset.
type ArchiveFormat string

const (
	FormatTarGz ArchiveFormat = "tar.gz"
	FormatZip   ArchiveFormat = "zip"
)

// Asset describes the release archive for one (version, platform).
type Asset struct {
	Name   string        // treefmt_2.4.0_linux_amd64.tar.gz
	URL    string        // <base>/v2.4.0/<Name>
	Format ArchiveFormat // archive format of Name
	Member string        // file to extract: "treefmt" or "treefmt.exe"
}

// NewAsset composes the release asset for version and tag.
// Pattern: {base}/v{version}/treefmt_{version}_{os}_{arch}.{tar.gz|zip}
func NewAsset(baseURL, version string, tag platform.Tag) Asset {
	format := FormatTarGz
	if tag.IsWindows() {
		format = FormatZip
	}

	name := fmt.Sprintf("%s_%s_%s_%s.%s", ToolName, version, tag.OS, tag.Arch, format)

	return Asset{
		Name:   name,
		URL:    fmt.Sprintf("%s/v%s/%s", baseURL, version, name),
		Format: format,
		Member: ExecutableName(tag.OS),
	}
}

// SignatureURL returns the detached signature location for the asset.
func (a Asset) SignatureURL() string {
	return a.URL + ".sig"
}
