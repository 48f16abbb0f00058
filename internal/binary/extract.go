package binary

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
)

// maxBinaryBytes is the upper bound on the extracted binary (500 MB).
// Prevents decompression bombs.
const maxBinaryBytes = 500 << 20

// ExtractMember returns the contents of the regular file named member from an
// in-memory archive. Entries are matched by base name, so both flat archives
// and archives with a top-level directory work. Failures are returned as
// *ExtractionError; a missing member wraps ErrMemberNotFound.
func ExtractMember(archive []byte, format ArchiveFormat, member string) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatTarGz:
		data, err = extractTarGz(archive, member)
	case FormatZip:
		data, err = extractZip(archive, member)
	default:
		err = fmt.Errorf("unsupported archive format: %q", format)
	}

	if err != nil {
		return nil, &ExtractionError{Member: member, Err: err}
	}
	return data, nil
}

func extractTarGz(archive []byte, member string) ([]byte, error) {
	gzipReader, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer func() { _ = gzipReader.Close() }()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil, ErrMemberNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("read tar header: %w", err)
		}

		if header.Typeflag != tar.TypeReg || path.Base(header.Name) != member {
			continue
		}

		return readLimited(tarReader)
	}
}

func extractZip(archive []byte, member string) ([]byte, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	for _, f := range zipReader.File {
		if !f.Mode().IsRegular() || path.Base(f.Name) != member {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		data, err := readLimited(rc)
		_ = rc.Close()
		return data, err
	}

	return nil, ErrMemberNotFound
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBinaryBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read member: %w", err)
	}
	if len(data) > maxBinaryBytes {
		return nil, fmt.Errorf("member exceeds %d bytes", maxBinaryBytes)
	}
	return data, nil
}
