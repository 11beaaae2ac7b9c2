package s3repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Download limits, in bytes. The hard limit applies when the configured
// limit would otherwise allow unbounded transfers.
const (
	DefaultDownloadLimit = 1 << 40  // 1 TiB
	HardDownloadLimit    = 20 << 40 // 20 TiB
)

// ErrQuotaExceeded is returned when a download request exceeds the
// configured transfer limit. Use QuotaError to retrieve the sizes.
var ErrQuotaExceeded = errors.New("algoseek: download quota exceeded")

// QuotaError reports a rejected download together with the requested and
// permitted byte counts.
type QuotaError struct {
	RequestedBytes int64
	LimitBytes     int64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("algoseek: download quota exceeded: requested %d bytes, limit %d bytes",
		e.RequestedBytes, e.LimitBytes)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// Config holds the connection settings for the object store. An access
// key pair takes precedence over a named profile; with neither set, the
// default profile of the shared AWS credentials file applies.
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Profile         string
	// DownloadLimit caps the total bytes of a single Download call.
	// Zero selects DefaultDownloadLimit; values above HardDownloadLimit
	// are clamped.
	DownloadLimit int64
}

// Client downloads dataset objects from S3-compatible storage.
type Client struct {
	mc            *minio.Client
	downloadLimit int64
}

// NewClient creates a client. An empty endpoint targets AWS S3.
func NewClient(cfg Config) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	creds := credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	if cfg.AccessKeyID == "" {
		creds = credentials.NewFileAWSCredentials("", cfg.Profile)
	}
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: true,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3repo: create client: %w", err)
	}
	limit := cfg.DownloadLimit
	if limit <= 0 {
		limit = DefaultDownloadLimit
	}
	if limit > HardDownloadLimit {
		limit = HardDownloadLimit
	}
	return &Client{mc: mc, downloadLimit: limit}, nil
}

// Batch names the objects to transfer from one bucket. Date-partitioned
// datasets spread a single request over several buckets.
type Batch struct {
	Bucket string
	Keys   []string
}

// DownloadOptions adjusts a Download call.
type DownloadOptions struct {
	// Decompress writes recognized compressed objects (.gz, .zst, .xz)
	// decompressed, dropping the compression extension from the local
	// file name.
	Decompress bool
}

// DownloadSummary reports what a Download call transferred.
type DownloadSummary struct {
	// Files lists the local paths written, in key order.
	Files []string
	// SkippedKeys lists requested keys absent from the bucket. Keys for
	// non-trading days routinely do not exist.
	SkippedKeys []string
	// TotalBytes is the stored size of the transferred objects.
	TotalBytes int64
}

// Download copies the named objects into destDir. All objects across all
// batches are stat'ed first and their summed size checked against the
// download limit before any transfer starts; missing keys are skipped
// rather than failing the request.
func (c *Client) Download(ctx context.Context, batches []Batch, destDir string, opts DownloadOptions) (*DownloadSummary, error) {
	summary := &DownloadSummary{}

	type object struct {
		bucket string
		key    string
		size   int64
	}
	var objects []object
	for _, b := range batches {
		for _, key := range b.Keys {
			info, err := c.mc.StatObject(ctx, b.Bucket, key, minio.StatObjectOptions{})
			if err != nil {
				if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
					summary.SkippedKeys = append(summary.SkippedKeys, key)
					continue
				}
				return nil, fmt.Errorf("s3repo: stat %s/%s: %w", b.Bucket, key, err)
			}
			objects = append(objects, object{bucket: b.Bucket, key: key, size: info.Size})
			summary.TotalBytes += info.Size
		}
	}

	if summary.TotalBytes > c.downloadLimit {
		return nil, &QuotaError{RequestedBytes: summary.TotalBytes, LimitBytes: c.downloadLimit}
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, fmt.Errorf("s3repo: create destination directory: %w", err)
	}
	for _, obj := range objects {
		path, err := c.downloadObject(ctx, obj.bucket, obj.key, destDir, opts)
		if err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, path)
	}
	return summary, nil
}

func (c *Client) downloadObject(ctx context.Context, bucket, key, destDir string, opts DownloadOptions) (string, error) {
	obj, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("s3repo: get %s/%s: %w", bucket, key, err)
	}
	defer obj.Close() //nolint:errcheck

	name := filepath.Base(key)
	var reader io.Reader = obj
	if ext := compressionExt(key); opts.Decompress && ext != "" {
		r, closer, err := newDecompressedReader(obj, ext)
		if err != nil {
			return "", err
		}
		defer closer.Close() //nolint:errcheck
		reader = r
		name = name[:len(name)-len(ext)]
	}

	path := filepath.Join(destDir, name)
	f, err := os.Create(path) //nolint:gosec // destination is caller-chosen
	if err != nil {
		return "", fmt.Errorf("s3repo: create %s: %w", path, err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("s3repo: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("s3repo: close %s: %w", path, err)
	}
	return path, nil
}
