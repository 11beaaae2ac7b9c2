package algoseek

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/algoseek/connector-go/internal/metaapi"
	"github.com/algoseek/connector-go/internal/s3repo"
)

// S3GroupName is the single data group exposed by the object-storage data
// source. Cloud datasets are a flat catalog; the group exists so the S3
// source presents the same source → group → dataset hierarchy as ArdaDB.
const S3GroupName = "cloud_storage"

// S3Config holds the credentials and limits for the object-storage
// backend. The catalog itself comes from the metadata service, so the
// metadata client is a required collaborator.
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// ProfileName selects a shared AWS credentials file profile when no
	// access key pair is set.
	ProfileName string
	// DownloadLimitBytes caps the total size of a single Download call.
	// Zero applies the default 1 TiB limit.
	DownloadLimitBytes int64
}

// OpenS3 builds a DataSource over algoseek's S3 dataset repository. Unlike
// ArdaDB datasets, S3 datasets are downloaded rather than queried: the SQL
// entry points return ErrNotSupported and Dataset.Download is the data
// path.
func OpenS3(ctx context.Context, cfg S3Config, meta *metaapi.Client) (*DataSource, error) {
	if meta == nil {
		return nil, usageErrorf("S3 data sources require a metadata client")
	}
	store, err := s3repo.NewClient(s3repo.Config{
		Region:          cfg.Region,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		Profile:         cfg.ProfileName,
		DownloadLimit:   cfg.DownloadLimitBytes,
	})
	if err != nil {
		return nil, err
	}
	drv := &s3Driver{meta: meta, store: store}
	return NewDataSource(drv, &s3Descriptions{meta: meta}), nil
}

// objectStore is the transfer surface the driver needs from the object
// store client.
type objectStore interface {
	Download(ctx context.Context, batches []s3repo.Batch, destDir string, opts s3repo.DownloadOptions) (*s3repo.DownloadSummary, error)
}

// s3Driver implements Driver for the object-storage backend. Only the
// catalog and download entry points are functional.
type s3Driver struct {
	meta  *metaapi.Client
	store objectStore
}

func (d *s3Driver) ListDataGroups(ctx context.Context) ([]string, error) {
	return []string{S3GroupName}, nil
}

func (d *s3Driver) ListDatasets(ctx context.Context, group string) ([]string, error) {
	if group != S3GroupName {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDataGroup, group)
	}
	records, err := d.meta.CloudDatasets(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.TextID)
	}
	return names, nil
}

func (d *s3Driver) DatasetColumns(ctx context.Context, group, dataset string) ([]*Column, error) {
	if group != S3GroupName {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDataGroup, group)
	}
	record, err := d.meta.CloudDataset(ctx, dataset)
	if err != nil {
		if errors.Is(err, metaapi.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDataset, dataset)
		}
		return nil, err
	}
	columns := make([]*Column, 0, len(record.CSVColumns))
	for _, col := range record.CSVColumns {
		columns = append(columns, NewColumn(col.Name, col.DataTypeDB, col.Description))
	}
	return columns, nil
}

func (d *s3Driver) Compile(*Statement) (*CompiledQuery, error) {
	return nil, fmt.Errorf("%w: SQL queries against S3 datasets", ErrNotSupported)
}

func (d *s3Driver) Fetch(context.Context, *CompiledQuery) (*Result, error) {
	return nil, fmt.Errorf("%w: SQL queries against S3 datasets", ErrNotSupported)
}

func (d *s3Driver) FetchIter(context.Context, *CompiledQuery, int) (*Chunks, error) {
	return nil, fmt.Errorf("%w: SQL queries against S3 datasets", ErrNotSupported)
}

func (d *s3Driver) FetchFrame(context.Context, *CompiledQuery) (Frame, error) {
	return nil, fmt.Errorf("%w: SQL queries against S3 datasets", ErrNotSupported)
}

func (d *s3Driver) FetchFrameIter(context.Context, *CompiledQuery, int) (*FrameIter, error) {
	return nil, fmt.Errorf("%w: SQL queries against S3 datasets", ErrNotSupported)
}

func (d *s3Driver) Execute(context.Context, string) error {
	return fmt.Errorf("%w: SQL execution against S3 datasets", ErrNotSupported)
}

func (d *s3Driver) StoreToS3(context.Context, *CompiledQuery, S3Location) error {
	return fmt.Errorf("%w: server-side export from S3 datasets", ErrNotSupported)
}

func (d *s3Driver) Close() error { return nil }

// Download expands the dataset's bucket and key templates against the
// filters and transfers the matched objects into destDir. Bucket names may
// themselves carry date placeholders, so objects are grouped per expanded
// bucket; the whole request is handed to the store as one call, so the
// quota check covers every bucket before any transfer starts.
func (d *s3Driver) Download(ctx context.Context, group, dataset string, filters DownloadFilters, destDir string) error {
	if group != S3GroupName {
		return fmt.Errorf("%w: %q", ErrInvalidDataGroup, group)
	}
	bucketGroup, err := d.meta.PrimaryBucketGroup(ctx, dataset)
	if err != nil {
		if errors.Is(err, metaapi.ErrNotFound) {
			return fmt.Errorf("%w: %q", ErrInvalidDataset, dataset)
		}
		return err
	}

	batches, err := expandBucketKeys(bucketGroup.BucketName, bucketGroup.PathFormat, filters)
	if err != nil {
		return err
	}
	opts := s3repo.DownloadOptions{Decompress: filters.Decompress}
	if _, err := d.store.Download(ctx, batches, destDir, opts); err != nil {
		var quota *s3repo.QuotaError
		if errors.As(err, &quota) {
			return &QuotaError{
				RequestedBytes: quota.RequestedBytes,
				LimitBytes:     quota.LimitBytes,
			}
		}
		return err
	}
	return nil
}

// expandBucketKeys resolves the object keys per bucket. A static bucket
// name yields one batch covering the whole date range; a date-templated
// bucket name yields one batch per expanded bucket.
func expandBucketKeys(bucketFormat, pathFormat string, filters DownloadFilters) ([]s3repo.Batch, error) {
	keyTemplate, err := s3repo.ParseTemplate(pathFormat)
	if err != nil {
		return nil, err
	}

	if !bucketNameIsDated(bucketFormat) {
		keys, err := keyTemplate.Expand(s3repo.Filters{
			StartDate: filters.StartDate,
			EndDate:   filters.EndDate,
			Symbols:   filters.Symbols,
		})
		if err != nil {
			return nil, err
		}
		return []s3repo.Batch{{Bucket: bucketFormat, Keys: keys}}, nil
	}

	if filters.StartDate.IsZero() || filters.EndDate.IsZero() {
		return nil, usageErrorf("dataset buckets are partitioned by date; a date filter is required")
	}
	var out []s3repo.Batch
	index := make(map[string]int)
	for date := filters.StartDate; !date.After(filters.EndDate); date = date.AddDate(0, 0, 1) {
		day := s3repo.Filters{StartDate: date, EndDate: date, Symbols: filters.Symbols}
		keys, err := keyTemplate.Expand(day)
		if err != nil {
			return nil, err
		}
		bucket := expandBucketName(bucketFormat, date)
		i, ok := index[bucket]
		if !ok {
			i = len(out)
			index[bucket] = i
			out = append(out, s3repo.Batch{Bucket: bucket})
		}
		out[i].Keys = append(out[i].Keys, keys...)
	}
	return out, nil
}

// Bucket names embed date placeholders inside dashed words, e.g.
// "us-equity-1min-taq-yyyy", so they are matched as substrings rather
// than as whole key segments.
func bucketNameIsDated(format string) bool {
	return strings.Contains(format, s3repo.PlaceholderDate) ||
		strings.Contains(format, s3repo.PlaceholderYear)
}

func expandBucketName(format string, date time.Time) string {
	name := strings.ReplaceAll(format, s3repo.PlaceholderDate, date.Format("20060102"))
	return strings.ReplaceAll(name, s3repo.PlaceholderYear, date.Format("2006"))
}

// s3Descriptions resolves descriptions for cloud datasets. The metadata
// service names cloud datasets directly by text id, so no name translation
// is needed.
type s3Descriptions struct {
	meta *metaapi.Client
}

func (p *s3Descriptions) DataGroupDescription(ctx context.Context, group string) (*DataGroupDescription, error) {
	return &DataGroupDescription{
		Name:        group,
		DisplayName: "S3 cloud storage",
		Description: "Datasets delivered as objects in algoseek S3 buckets.",
	}, nil
}

func (p *s3Descriptions) DatasetDescription(ctx context.Context, group, dataset string) (*DatasetDescription, error) {
	record, err := p.meta.CloudDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptionUnavailable, err)
	}
	return &DatasetDescription{
		Name:        dataset,
		Group:       group,
		DisplayName: record.DisplayName,
		Description: record.Description,
	}, nil
}

func (p *s3Descriptions) ColumnsDescription(ctx context.Context, dataset string) ([]ColumnDescription, error) {
	record, err := p.meta.CloudDataset(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptionUnavailable, err)
	}
	columns := make([]ColumnDescription, 0, len(record.CSVColumns))
	for _, col := range record.CSVColumns {
		columns = append(columns, ColumnDescription{
			Name:        col.Name,
			TypeName:    col.DataTypeDB,
			Description: col.Description,
		})
	}
	return columns, nil
}
