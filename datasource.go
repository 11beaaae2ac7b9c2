package algoseek

import (
	"context"
	"fmt"
)

// DataSource manages the connection to one backend and owns the catalog of
// its data groups. Group and dataset entities are resolved lazily on first
// fetch and cached for the lifetime of the data source; the cache is never
// invalidated, so a new process is required to observe server-side schema
// changes.
//
// A data source is not safe for concurrent use without external
// synchronization: it shares a single backend connection with every
// dataset it produced.
type DataSource struct {
	driver       Driver
	descriptions DescriptionProvider

	groupNames []string
	groups     map[string]*DataGroup
}

// NewDataSource wraps a backend driver. The descriptions provider may be
// nil, in which case every description lookup reports
// ErrDescriptionUnavailable.
func NewDataSource(driver Driver, descriptions DescriptionProvider) *DataSource {
	if descriptions == nil {
		descriptions = noDescriptions{}
	}
	return &DataSource{
		driver:       driver,
		descriptions: descriptions,
		groups:       make(map[string]*DataGroup),
	}
}

// Driver returns the backend driver the source is bound to.
func (s *DataSource) Driver() Driver { return s.driver }

// ListDataGroups lists the available data group names. The listing is
// fetched once and cached.
func (s *DataSource) ListDataGroups(ctx context.Context) ([]string, error) {
	if s.groupNames == nil {
		names, err := s.driver.ListDataGroups(ctx)
		if err != nil {
			return nil, err
		}
		s.groupNames = names
	}
	out := make([]string, len(s.groupNames))
	copy(out, s.groupNames)
	return out, nil
}

// FetchDataGroup retrieves a data group by name. It fails with
// ErrInvalidDataGroup for names the backend does not list.
func (s *DataSource) FetchDataGroup(ctx context.Context, name string) (*DataGroup, error) {
	if group, ok := s.groups[name]; ok {
		return group, nil
	}
	names, err := s.ListDataGroups(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, n := range names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDataGroup, name)
	}
	group := &DataGroup{source: s, name: name, datasets: make(map[string]*Dataset)}
	s.groups[name] = group
	return group, nil
}

// Execute runs a raw SQL string against the backend, bypassing the
// builder and compiler. No parameter binding is performed.
func (s *DataSource) Execute(ctx context.Context, sql string) error {
	return s.driver.Execute(ctx, sql)
}

// Close releases the backend connection.
func (s *DataSource) Close() error {
	return s.driver.Close()
}

// DataGroup is a named collection of related datasets, analogous to a
// database schema. Datasets are resolved lazily and cached.
type DataGroup struct {
	source *DataSource
	name   string

	datasetNames []string
	datasets     map[string]*Dataset

	description *DataGroupDescription
}

// Name returns the data group name.
func (g *DataGroup) Name() string { return g.name }

// Source returns the owning data source.
func (g *DataGroup) Source() *DataSource { return g.source }

// ListDatasets lists the dataset names in the group. The listing is
// fetched once and cached.
func (g *DataGroup) ListDatasets(ctx context.Context) ([]string, error) {
	if g.datasetNames == nil {
		names, err := g.source.driver.ListDatasets(ctx, g.name)
		if err != nil {
			return nil, err
		}
		g.datasetNames = names
	}
	out := make([]string, len(g.datasetNames))
	copy(out, g.datasetNames)
	return out, nil
}

// FetchDataset retrieves a dataset by name, resolving its column schema
// from the backend on first use. It fails with ErrInvalidDataset for names
// the backend does not list.
func (g *DataGroup) FetchDataset(ctx context.Context, name string) (*Dataset, error) {
	if ds, ok := g.datasets[name]; ok {
		return ds, nil
	}
	names, err := g.ListDatasets(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for _, n := range names {
		if n == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDataset, name)
	}
	columns, err := g.source.driver.DatasetColumns(ctx, g.name, name)
	if err != nil {
		return nil, err
	}
	handle, err := newColumnHandle(columns)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{group: g, name: name, handle: handle}
	g.datasets[name] = ds
	return ds, nil
}

// Description resolves the group description from the metadata service.
// The result is memoized for the group's lifetime.
func (g *DataGroup) Description(ctx context.Context) (*DataGroupDescription, error) {
	if g.description != nil {
		return g.description, nil
	}
	desc, err := g.source.descriptions.DataGroupDescription(ctx, g.name)
	if err != nil {
		return nil, err
	}
	g.description = desc
	return desc, nil
}
