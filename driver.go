package algoseek

import (
	"context"
	"time"
)

// Driver is the backend protocol consumed by the catalog facade. Each
// backend (the ArdaDB analytical database, S3 object storage) provides one
// implementation; the facade depends only on this interface.
//
// A driver instance owns a single live backend connection. Executing
// queries from multiple goroutines against the same instance requires
// external synchronization, since result iteration holds server-side
// cursor state.
type Driver interface {
	// ListDataGroups lists the data group names available on the backend.
	ListDataGroups(ctx context.Context) ([]string, error)

	// ListDatasets lists the dataset names within a data group.
	ListDatasets(ctx context.Context, group string) ([]string, error)

	// DatasetColumns returns the columns of a dataset in declared schema
	// order.
	DatasetColumns(ctx context.Context, group, dataset string) ([]*Column, error)

	// Compile renders a statement into backend-dialect parameterized SQL.
	// Schema errors (unknown columns) are reported here, never at
	// execution time.
	Compile(stmt *Statement) (*CompiledQuery, error)

	// Fetch executes a compiled query and materializes the full result.
	Fetch(ctx context.Context, query *CompiledQuery) (*Result, error)

	// FetchIter executes a compiled query and streams the result in
	// chunks of at most size rows.
	FetchIter(ctx context.Context, query *CompiledQuery, size int) (*Chunks, error)

	// FetchFrame executes a compiled query and returns the result as one
	// Arrow record. The caller releases the record.
	FetchFrame(ctx context.Context, query *CompiledQuery) (Frame, error)

	// FetchFrameIter executes a compiled query and streams the result as
	// Arrow records of at most size rows each.
	FetchFrameIter(ctx context.Context, query *CompiledQuery, size int) (*FrameIter, error)

	// Execute runs a raw SQL string, bypassing the builder and compiler.
	// No parameter binding is performed; escaping is the caller's
	// responsibility.
	Execute(ctx context.Context, sql string) error

	// StoreToS3 exports a query result server-side to object storage.
	// The data never streams through the client process. A nonexistent
	// bucket surfaces as a backend error, not a client-side check.
	StoreToS3(ctx context.Context, query *CompiledQuery, location S3Location) error

	// Close releases the backend connection.
	Close() error
}

// S3Location addresses an object-storage destination for server-side
// export, with the credentials the backend should use to write it.
type S3Location struct {
	Bucket          string
	Key             string
	AccessKeyID     string
	SecretAccessKey string
}

// URI returns the s3:// object URI for the location.
func (l S3Location) URI() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// DownloadFilters restricts an object-storage download to a date range and
// a symbol set. Placeholders in the dataset's key template are expanded
// from these values.
type DownloadFilters struct {
	// StartDate and EndDate bound the inclusive trade-date range.
	StartDate time.Time
	EndDate   time.Time
	// Symbols lists the ticker symbols to download.
	Symbols []string
	// Decompress writes gz/zst/xz objects decompressed, dropping the
	// compression extension from the local file names.
	Decompress bool
}

// Downloader is the optional driver capability for backends whose datasets
// are downloaded rather than queried. The object-storage driver implements
// it; the analytical database driver does not.
type Downloader interface {
	// Download retrieves the dataset objects matching the filters into
	// destDir, enforcing the configured download quota before any
	// transfer starts.
	Download(ctx context.Context, group, dataset string, filters DownloadFilters, destDir string) error
}
