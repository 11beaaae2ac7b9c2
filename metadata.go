package algoseek

import (
	"context"
	"fmt"
	"strings"

	"github.com/algoseek/connector-go/internal/metaapi"
)

// APIDescriptions resolves catalog descriptions from the algoseek metadata
// service. The service names entities by text id, while the database names
// groups by their condensed full name and datasets by their table name;
// the translation maps are built once and cached for the provider's
// lifetime.
type APIDescriptions struct {
	api *metaapi.Client

	groupByDBName   map[string]string
	datasetByDBName map[string]string
}

// NewAPIDescriptions wraps a metadata client as a DescriptionProvider.
func NewAPIDescriptions(api *metaapi.Client) *APIDescriptions {
	return &APIDescriptions{api: api}
}

// DataGroupDescription resolves the description of a data group named by
// its database name. Groups unknown to the service fall back to an empty
// description rather than failing, since the database may carry groups the
// service does not document.
func (p *APIDescriptions) DataGroupDescription(ctx context.Context, group string) (*DataGroupDescription, error) {
	index, err := p.groupIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptionUnavailable, err)
	}
	textID, ok := index[group]
	if !ok {
		return &DataGroupDescription{Name: group, DisplayName: group}, nil
	}
	record, err := p.api.DataGroup(ctx, textID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptionUnavailable, err)
	}
	return &DataGroupDescription{
		Name:        group,
		DisplayName: record.DisplayName,
		Description: record.Description,
	}, nil
}

// DatasetDescription resolves the description of a dataset named by its
// database table name.
func (p *APIDescriptions) DatasetDescription(ctx context.Context, group, dataset string) (*DatasetDescription, error) {
	index, err := p.datasetIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptionUnavailable, err)
	}
	textID, ok := index[dataset]
	if !ok {
		return &DatasetDescription{Name: dataset, Group: group, DisplayName: dataset}, nil
	}
	record, err := p.api.Dataset(ctx, textID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptionUnavailable, err)
	}
	desc := &DatasetDescription{
		Name:        dataset,
		Group:       group,
		DisplayName: record.DisplayName,
		Description: record.LongDescription,
	}
	if url, err := p.api.DocumentationURL(ctx, textID); err == nil {
		desc.DocURL = url
	}
	return desc, nil
}

// ColumnsDescription resolves the column descriptions of a dataset named
// by its database table name. Datasets unknown to the service yield an
// empty list.
func (p *APIDescriptions) ColumnsDescription(ctx context.Context, dataset string) ([]ColumnDescription, error) {
	index, err := p.datasetIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptionUnavailable, err)
	}
	textID, ok := index[dataset]
	if !ok {
		return nil, nil
	}
	record, err := p.api.Dataset(ctx, textID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptionUnavailable, err)
	}
	if record.DatabaseTable == nil {
		return nil, nil
	}
	columns := make([]ColumnDescription, 0, len(record.DatabaseTable.SQLColumns))
	for _, col := range record.DatabaseTable.SQLColumns {
		columns = append(columns, ColumnDescription{
			Name:        col.Name,
			TypeName:    col.DataTypeDB,
			Description: col.Description,
		})
	}
	return columns, nil
}

// groupIndex maps database group names to service text ids. The database
// names a group by its full name with spaces removed.
func (p *APIDescriptions) groupIndex(ctx context.Context) (map[string]string, error) {
	if p.groupByDBName == nil {
		records, err := p.api.DataGroups(ctx)
		if err != nil {
			return nil, err
		}
		index := make(map[string]string, len(records))
		for _, r := range records {
			dbName := strings.ReplaceAll(r.FullName, " ", "")
			index[dbName] = r.TextID
		}
		p.groupByDBName = index
	}
	return p.groupByDBName, nil
}

// datasetIndex maps database table names (without the group qualifier) to
// service text ids.
func (p *APIDescriptions) datasetIndex(ctx context.Context) (map[string]string, error) {
	if p.datasetByDBName == nil {
		records, err := p.api.Datasets(ctx)
		if err != nil {
			return nil, err
		}
		index := make(map[string]string, len(records))
		for _, r := range records {
			if r.DatabaseTable == nil {
				continue
			}
			// Table names are qualified as DBName.TableName.
			parts := strings.Split(r.DatabaseTable.TableName, ".")
			index[parts[len(parts)-1]] = r.TextID
		}
		p.datasetByDBName = index
	}
	return p.datasetByDBName, nil
}
