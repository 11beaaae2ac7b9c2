package algoseek

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/algoseek/connector-go/internal/metaapi"
	"github.com/algoseek/connector-go/internal/s3repo"
)

// Settings is the resolved library configuration. It is built once by
// LoadSettings and passed explicitly to the components that need
// credentials; the library keeps no global settings state.
//
// Resolution is layered, strongest first: values set on the struct after
// loading, then ALGOSEEK__{GROUP}__{FIELD} environment variables, then the
// config file, then built-in defaults.
type Settings struct {
	ArdaDB   ArdaDBSettings
	S3       S3Settings
	Metadata MetadataSettings
}

// ArdaDBSettings configures the analytical database connection.
type ArdaDBSettings struct {
	Host     string
	Port     int
	User     string
	Password string
}

// S3Settings configures object-storage access. An access key pair takes
// precedence over a named profile.
type S3Settings struct {
	AccessKeyID     string
	SecretAccessKey string
	ProfileName     string
	Region          string
	// DownloadLimitBytes caps a single download request. Defaults to
	// 1 TiB; values above the 20 TiB hard limit are clamped at use.
	DownloadLimitBytes int64
}

// MetadataSettings configures the metadata service client.
type MetadataSettings struct {
	Email    string
	Password string
	URL      string
}

// envBindings maps config keys to their environment variable names. The
// variables follow ALGOSEEK__{GROUP}__{FIELD}.
var envBindings = map[string]string{
	"ardadb.host":       "ALGOSEEK__ARDADB__HOST",
	"ardadb.port":       "ALGOSEEK__ARDADB__PORT",
	"ardadb.user":       "ALGOSEEK__ARDADB__USER",
	"ardadb.password":   "ALGOSEEK__ARDADB__PASSWORD",
	"s3.access_key_id":  "ALGOSEEK__S3__ACCESS_KEY_ID",
	"s3.secret_key":     "ALGOSEEK__S3__SECRET_KEY",
	"s3.profile":        "ALGOSEEK__S3__PROFILE",
	"s3.region":         "ALGOSEEK__S3__REGION",
	"s3.download_limit": "ALGOSEEK__S3__DOWNLOAD_LIMIT",
	"metadata.email":    "ALGOSEEK__METADATA__EMAIL",
	"metadata.password": "ALGOSEEK__METADATA__PASSWORD",
	"metadata.url":      "ALGOSEEK__METADATA__URL",
}

// LoadSettings resolves the library configuration. configPath names a TOML
// file; an empty path reads ~/.algoseek/config.toml when it exists. A
// missing default file is not an error, an unreadable explicit file is.
func LoadSettings(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetDefault("ardadb.host", "0.0.0.0")
	v.SetDefault("ardadb.port", 8123)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.download_limit", int64(s3repo.DefaultDownloadLimit))
	v.SetDefault("metadata.url", metaapi.DefaultBaseURL)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("algoseek: bind %s: %w", env, err)
		}
	}

	explicit := configPath != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(home, ".algoseek", "config.toml")
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil && (explicit || !os.IsNotExist(err)) {
			return nil, fmt.Errorf("algoseek: read config %s: %w", configPath, err)
		}
	}

	return &Settings{
		ArdaDB: ArdaDBSettings{
			Host:     v.GetString("ardadb.host"),
			Port:     v.GetInt("ardadb.port"),
			User:     v.GetString("ardadb.user"),
			Password: v.GetString("ardadb.password"),
		},
		S3: S3Settings{
			AccessKeyID:        v.GetString("s3.access_key_id"),
			SecretAccessKey:    v.GetString("s3.secret_key"),
			ProfileName:        v.GetString("s3.profile"),
			Region:             v.GetString("s3.region"),
			DownloadLimitBytes: v.GetInt64("s3.download_limit"),
		},
		Metadata: MetadataSettings{
			Email:    v.GetString("metadata.email"),
			Password: v.GetString("metadata.password"),
			URL:      v.GetString("metadata.url"),
		},
	}, nil
}
