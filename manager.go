package algoseek

import (
	"context"

	"github.com/algoseek/connector-go/internal/metaapi"
)

// DataSourceType names an available backend.
type DataSourceType string

const (
	// DataSourceArdaDB is the analytical SQL database backend.
	DataSourceArdaDB DataSourceType = "ArdaDB"
	// DataSourceS3 is the object-storage download backend.
	DataSourceS3 DataSourceType = "S3"
)

// ResourceManager is the library entry point: it resolves settings once
// and builds data sources by backend type. The metadata client is shared
// across the sources it creates, so catalog lookups are fetched once.
type ResourceManager struct {
	settings *Settings
	meta     *metaapi.Client
	loggedIn bool
}

// NewResourceManager creates a manager over resolved settings. A nil
// settings value loads them from the environment and the default config
// file.
func NewResourceManager(settings *Settings) (*ResourceManager, error) {
	if settings == nil {
		loaded, err := LoadSettings("")
		if err != nil {
			return nil, err
		}
		settings = loaded
	}
	return &ResourceManager{
		settings: settings,
		meta:     metaapi.NewClient(settings.Metadata.URL),
	}, nil
}

// ListDataSources lists the backend types this manager can create.
func (m *ResourceManager) ListDataSources() []DataSourceType {
	return []DataSourceType{DataSourceArdaDB, DataSourceS3}
}

// CreateDataSource connects to the named backend and wraps it in a
// DataSource. ArdaDB sources get API-backed descriptions when metadata
// credentials are configured; S3 sources always require them, since their
// catalog lives in the metadata service.
func (m *ResourceManager) CreateDataSource(ctx context.Context, typ DataSourceType) (*DataSource, error) {
	switch typ {
	case DataSourceArdaDB:
		var descriptions DescriptionProvider
		if err := m.login(ctx); err == nil {
			descriptions = NewAPIDescriptions(m.meta)
		}
		return OpenArdaDB(ctx, ArdaDBConfig{
			Host:     m.settings.ArdaDB.Host,
			Port:     m.settings.ArdaDB.Port,
			User:     m.settings.ArdaDB.User,
			Password: m.settings.ArdaDB.Password,
		}, descriptions)
	case DataSourceS3:
		if err := m.login(ctx); err != nil {
			return nil, err
		}
		return OpenS3(ctx, S3Config{
			Region:             m.settings.S3.Region,
			AccessKeyID:        m.settings.S3.AccessKeyID,
			SecretAccessKey:    m.settings.S3.SecretAccessKey,
			ProfileName:        m.settings.S3.ProfileName,
			DownloadLimitBytes: m.settings.S3.DownloadLimitBytes,
		}, m.meta)
	default:
		return nil, usageErrorf("unknown data source type %q", typ)
	}
}

func (m *ResourceManager) login(ctx context.Context) error {
	if m.loggedIn {
		return nil
	}
	cfg := m.settings.Metadata
	if err := m.meta.Login(ctx, cfg.Email, cfg.Password); err != nil {
		return err
	}
	m.loggedIn = true
	return nil
}
