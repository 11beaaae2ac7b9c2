// Package metaapi consumes the algoseek metadata service: a small JSON API
// that describes data groups, datasets, their columns and the S3 bucket
// layout of downloadable datasets.
package metaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL is the production metadata service endpoint.
const DefaultBaseURL = "https://metadata-services.algoseek.com/api/v1/"

// defaultTimeout bounds every request; the service answers catalog lookups
// in well under a second.
const defaultTimeout = 5 * time.Second

// Sentinel errors for callers that need to distinguish lookup failures
// from transport failures.
var (
	ErrNotFound      = errors.New("metaapi: not found")
	ErrRequestFailed = errors.New("metaapi: request failed")
)

// Client fetches metadata from the service. All listings are fetched once
// and memoized for the client's lifetime; the cache is never invalidated.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   string

	dataGroups   []DataGroupRecord
	datasets     []DatasetRecord
	cloud        []CloudStorageRecord
	bucketGroups map[int]BucketGroupRecord
}

// NewClient creates a client for the given base URL. An empty base URL
// selects the production endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// DataGroupRecord describes one data group.
type DataGroupRecord struct {
	ID          int    `json:"id"`
	TextID      string `json:"text_id"`
	DisplayName string `json:"display_name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
}

// SQLColumn describes one column of a dataset table.
type SQLColumn struct {
	Name        string `json:"name"`
	DataTypeDB  string `json:"data_type_db"`
	Description string `json:"description"`
}

// DatabaseTable links a dataset to its database table and columns.
type DatabaseTable struct {
	TableName  string      `json:"table_name"`
	SQLColumns []SQLColumn `json:"sql_columns"`
}

// DatasetRecord describes one dataset.
type DatasetRecord struct {
	ID              int            `json:"id"`
	TextID          string         `json:"text_id"`
	DisplayName     string         `json:"display_name"`
	Description     string         `json:"description"`
	LongDescription string         `json:"long_description"`
	DocumentationID *int           `json:"documentation_id"`
	DataGroupID     int            `json:"data_group_id"`
	DatabaseTable   *DatabaseTable `json:"database_table"`
}

// CloudStorageRecord describes one downloadable S3 dataset.
type CloudStorageRecord struct {
	TextID       string      `json:"text_id"`
	DisplayName  string      `json:"display_name"`
	Description  string      `json:"description"`
	CSVColumns   []SQLColumn `json:"csv_columns"`
	BucketGroups []int       `json:"bucket_groups"`
}

// BucketGroupRecord describes the bucket layout of an S3 dataset: the
// bucket name pattern and the object key format with its placeholders.
type BucketGroupRecord struct {
	ID         int    `json:"id"`
	IsPrimary  bool   `json:"is_primary"`
	BucketName string `json:"bucket_name"`
	PathFormat string `json:"path_format"`
}

// Login requests a bearer token. Authentication failures surface as
// ErrRequestFailed with the response status.
func (c *Client) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errors.New("metaapi: email and password must be provided")
	}
	body, err := json.Marshal(map[string]string{"name": email, "secret": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"login/access_token/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: login returned status %d", ErrRequestFailed, resp.StatusCode)
	}
	var payload struct {
		Token      string `json:"token"`
		ExpiryDate string `json:"expiry_date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}
	c.token = payload.Token
	return nil
}

// get fetches an endpoint relative to the base URL and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// DataGroups lists all data groups. Fetched once, then served from cache.
func (c *Client) DataGroups(ctx context.Context) ([]DataGroupRecord, error) {
	if c.dataGroups == nil {
		var records []DataGroupRecord
		if err := c.get(ctx, "public/data_group/", &records); err != nil {
			return nil, err
		}
		c.dataGroups = records
	}
	return c.dataGroups, nil
}

// Datasets lists all database-backed datasets. Fetched once, then served
// from cache.
func (c *Client) Datasets(ctx context.Context) ([]DatasetRecord, error) {
	if c.datasets == nil {
		var records []DatasetRecord
		if err := c.get(ctx, "public/dataset/", &records); err != nil {
			return nil, err
		}
		c.datasets = records
	}
	return c.datasets, nil
}

// DataGroup looks up a data group by text id.
func (c *Client) DataGroup(ctx context.Context, textID string) (*DataGroupRecord, error) {
	records, err := c.DataGroups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].TextID == textID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: data group %q", ErrNotFound, textID)
}

// Dataset looks up a dataset by text id.
func (c *Client) Dataset(ctx context.Context, textID string) (*DatasetRecord, error) {
	records, err := c.Datasets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].TextID == textID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: dataset %q", ErrNotFound, textID)
}

// CloudDatasets lists the downloadable S3 datasets. Records without CSV
// columns or bucket groups are incomplete and filtered out.
func (c *Client) CloudDatasets(ctx context.Context) ([]CloudStorageRecord, error) {
	if c.cloud == nil {
		var records []CloudStorageRecord
		if err := c.get(ctx, "public/cloud_storage/", &records); err != nil {
			return nil, err
		}
		valid := make([]CloudStorageRecord, 0, len(records))
		for _, r := range records {
			if len(r.CSVColumns) > 0 && len(r.BucketGroups) > 0 {
				valid = append(valid, r)
			}
		}
		c.cloud = valid
	}
	return c.cloud, nil
}

// CloudDataset looks up a downloadable dataset by text id.
func (c *Client) CloudDataset(ctx context.Context, textID string) (*CloudStorageRecord, error) {
	records, err := c.CloudDatasets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].TextID == textID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: cloud dataset %q", ErrNotFound, textID)
}

// PrimaryBucketGroup returns the primary bucket layout of an S3 dataset.
func (c *Client) PrimaryBucketGroup(ctx context.Context, dataset string) (*BucketGroupRecord, error) {
	record, err := c.CloudDataset(ctx, dataset)
	if err != nil {
		return nil, err
	}
	groups, err := c.bucketGroupIndex(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range record.BucketGroups {
		if g, ok := groups[id]; ok && g.IsPrimary {
			return &g, nil
		}
	}
	return nil, fmt.Errorf("%w: no primary bucket group for dataset %q", ErrNotFound, dataset)
}

func (c *Client) bucketGroupIndex(ctx context.Context) (map[int]BucketGroupRecord, error) {
	if c.bucketGroups == nil {
		var records []BucketGroupRecord
		if err := c.get(ctx, "public/bucket_group/", &records); err != nil {
			return nil, err
		}
		index := make(map[int]BucketGroupRecord, len(records))
		for _, r := range records {
			index[r.ID] = r
		}
		c.bucketGroups = index
	}
	return c.bucketGroups, nil
}

// DocumentationURL returns the documentation page address of a dataset, or
// ErrNotFound when none is published.
func (c *Client) DocumentationURL(ctx context.Context, textID string) (string, error) {
	record, err := c.Dataset(ctx, textID)
	if err != nil {
		return "", err
	}
	if record.DocumentationID == nil {
		return "", fmt.Errorf("%w: no documentation for dataset %q", ErrNotFound, textID)
	}
	return c.baseURL + "public/documentation/" + strconv.Itoa(*record.DocumentationID) + "/", nil
}
