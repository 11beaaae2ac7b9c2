package algoseek

import "context"

// DataGroupDescription is descriptive metadata for a data group, fetched
// from the metadata service.
type DataGroupDescription struct {
	Name        string
	DisplayName string
	Description string
}

// DatasetDescription is descriptive metadata for a dataset.
type DatasetDescription struct {
	Name        string
	Group       string
	DisplayName string
	Description string
	// DocURL links to the dataset documentation page, when available.
	DocURL string
}

// ColumnDescription is descriptive metadata for a single column.
type ColumnDescription struct {
	Name        string
	TypeName    string
	Description string
}

// DescriptionProvider supplies descriptive metadata for catalog entities.
// Lookups that fail (entity not found, authentication failure) return
// errors wrapping ErrDescriptionUnavailable.
type DescriptionProvider interface {
	DataGroupDescription(ctx context.Context, group string) (*DataGroupDescription, error)
	DatasetDescription(ctx context.Context, group, dataset string) (*DatasetDescription, error)
	ColumnsDescription(ctx context.Context, dataset string) ([]ColumnDescription, error)
}

// noDescriptions is the fallback provider used when no metadata service is
// configured. Every lookup reports the description as unavailable.
type noDescriptions struct{}

func (noDescriptions) DataGroupDescription(context.Context, string) (*DataGroupDescription, error) {
	return nil, ErrDescriptionUnavailable
}

func (noDescriptions) DatasetDescription(context.Context, string, string) (*DatasetDescription, error) {
	return nil, ErrDescriptionUnavailable
}

func (noDescriptions) ColumnsDescription(context.Context, string) ([]ColumnDescription, error) {
	return nil, ErrDescriptionUnavailable
}
