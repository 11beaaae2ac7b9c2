package algoseek

import (
	"context"
	"fmt"
)

// Dataset is a single queryable table-like entity with a fixed column
// schema. It binds the table's column metadata to the expression model and
// exposes the statement builder and fetch entry points.
//
// The column set is immutable once the dataset has been fetched.
type Dataset struct {
	group  *DataGroup
	name   string
	handle *ColumnHandle

	description *DatasetDescription
}

// Name returns the dataset name.
func (d *Dataset) Name() string { return d.name }

// Group returns the owning data group.
func (d *Dataset) Group() *DataGroup { return d.group }

// TableName returns the backend table name, qualified by the group.
func (d *Dataset) TableName() string {
	return d.group.name + "." + d.name
}

// ColumnHandle returns the ordered name-to-column lookup table for the
// dataset schema.
func (d *Dataset) ColumnHandle() *ColumnHandle { return d.handle }

// Column returns the named column. It fails with ErrUnknownColumn for
// names outside the dataset schema.
func (d *Dataset) Column(name string) (*Column, error) {
	return d.handle.Get(name)
}

// Select starts a statement. With no expressions it selects every dataset
// column in declared schema order; Exclude can then trim that list.
func (d *Dataset) Select(exprs ...Expr) *Statement {
	return newStatement(d.TableName(), d.handle, exprs)
}

// Compile renders a statement into the backend dialect. Usage errors
// recorded by the builder and schema errors (unknown columns) surface
// here, before any network traffic.
func (d *Dataset) Compile(stmt *Statement) (*CompiledQuery, error) {
	return d.driver().Compile(stmt)
}

// Fetch compiles and executes a statement, materializing the full result
// as a columnar mapping.
func (d *Dataset) Fetch(ctx context.Context, stmt *Statement) (*Result, error) {
	query, err := d.Compile(stmt)
	if err != nil {
		return nil, err
	}
	return d.driver().Fetch(ctx, query)
}

// FetchIter compiles and executes a statement, streaming the result in
// chunks of at most size rows. The returned sequence is finite and not
// restartable.
func (d *Dataset) FetchIter(ctx context.Context, stmt *Statement, size int) (*Chunks, error) {
	query, err := d.Compile(stmt)
	if err != nil {
		return nil, err
	}
	return d.driver().FetchIter(ctx, query, size)
}

// FetchFrame compiles and executes a statement, returning the result as a
// single Arrow record. The caller releases the record.
func (d *Dataset) FetchFrame(ctx context.Context, stmt *Statement) (Frame, error) {
	query, err := d.Compile(stmt)
	if err != nil {
		return nil, err
	}
	return d.driver().FetchFrame(ctx, query)
}

// FetchFrameIter compiles and executes a statement, streaming the result
// as Arrow records of at most size rows each.
func (d *Dataset) FetchFrameIter(ctx context.Context, stmt *Statement, size int) (*FrameIter, error) {
	query, err := d.Compile(stmt)
	if err != nil {
		return nil, err
	}
	return d.driver().FetchFrameIter(ctx, query, size)
}

// Head fetches the first n rows of the dataset with all columns in
// declared order.
func (d *Dataset) Head(ctx context.Context, n int) (*Result, error) {
	return d.Fetch(ctx, d.Select().Limit(n))
}

// StoreToS3 compiles a statement and asks the backend to write its result
// directly to object storage. The data never streams through the client.
func (d *Dataset) StoreToS3(ctx context.Context, stmt *Statement, location S3Location) error {
	query, err := d.Compile(stmt)
	if err != nil {
		return err
	}
	return d.driver().StoreToS3(ctx, query, location)
}

// Download retrieves the dataset objects matching the filters into
// destDir. Only object-storage backends support it; other backends fail
// with ErrNotSupported.
func (d *Dataset) Download(ctx context.Context, filters DownloadFilters, destDir string) error {
	dl, ok := d.driver().(Downloader)
	if !ok {
		return fmt.Errorf("%w: download", ErrNotSupported)
	}
	return dl.Download(ctx, d.group.name, d.name, filters, destDir)
}

// Description resolves the dataset description from the metadata service.
// The result is memoized for the dataset's lifetime.
func (d *Dataset) Description(ctx context.Context) (*DatasetDescription, error) {
	if d.description != nil {
		return d.description, nil
	}
	desc, err := d.group.source.descriptions.DatasetDescription(ctx, d.group.name, d.name)
	if err != nil {
		return nil, err
	}
	d.description = desc
	return desc, nil
}

func (d *Dataset) driver() Driver {
	return d.group.source.driver
}
