package s3repo

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// compressionExt reports the recognized compression extension of an object
// key, or "" when the object is stored uncompressed.
func compressionExt(key string) string {
	switch {
	case strings.HasSuffix(key, ".gz"):
		return ".gz"
	case strings.HasSuffix(key, ".zst"):
		return ".zst"
	case strings.HasSuffix(key, ".xz"):
		return ".xz"
	default:
		return ""
	}
}

// newDecompressedReader wraps r with the decompressor matching ext. The
// returned closer must be closed before r.
func newDecompressedReader(r io.Reader, ext string) (io.Reader, io.Closer, error) {
	switch ext {
	case ".gz":
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("s3repo: create gzip reader: %w", err)
		}
		return gr, gr, nil
	case ".zst":
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("s3repo: create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), zr.IOReadCloser(), nil
	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("s3repo: create xz reader: %w", err)
		}
		return xr, io.NopCloser(xr), nil
	default:
		return r, io.NopCloser(r), nil
	}
}
