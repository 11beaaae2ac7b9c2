package algoseek

import (
	"context"
	"database/sql"
	"io"

	"github.com/algoseek/connector-go/internal/ardadb"
)

// ArdaDBConfig holds the connection parameters for the ArdaDB analytical
// database.
type ArdaDBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// OpenArdaDB connects to ArdaDB and wraps the connection in a DataSource.
// The descriptions provider may be nil.
func OpenArdaDB(ctx context.Context, cfg ArdaDBConfig, descriptions DescriptionProvider) (*DataSource, error) {
	engine, err := ardadb.Open(ctx, ardadb.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return NewDataSource(&ardaDriver{engine: engine}, descriptions), nil
}

// newArdaDriver wraps an existing engine. Used by tests to drive the
// execution path against an in-process database.
func newArdaDriver(engine *ardadb.Engine) Driver {
	return &ardaDriver{engine: engine}
}

// ardaDriver implements Driver on top of the ArdaDB engine.
type ardaDriver struct {
	engine *ardadb.Engine
}

func (d *ardaDriver) ListDataGroups(ctx context.Context) ([]string, error) {
	return d.engine.ListDatabases(ctx)
}

func (d *ardaDriver) ListDatasets(ctx context.Context, group string) ([]string, error) {
	return d.engine.ListTables(ctx, group)
}

func (d *ardaDriver) DatasetColumns(ctx context.Context, group, dataset string) ([]*Column, error) {
	metas, err := d.engine.DescribeTable(ctx, group, dataset)
	if err != nil {
		return nil, err
	}
	columns := make([]*Column, 0, len(metas))
	for _, m := range metas {
		columns = append(columns, NewColumn(m.Name, m.Type, m.Comment))
	}
	return columns, nil
}

func (d *ardaDriver) Compile(stmt *Statement) (*CompiledQuery, error) {
	return compileStatement(stmt)
}

func (d *ardaDriver) Fetch(ctx context.Context, query *CompiledQuery) (*Result, error) {
	src, err := d.query(ctx, query)
	if err != nil {
		return nil, err
	}
	return newResult(src)
}

func (d *ardaDriver) FetchIter(ctx context.Context, query *CompiledQuery, size int) (*Chunks, error) {
	src, err := d.query(ctx, query)
	if err != nil {
		return nil, err
	}
	return newChunks(src, size)
}

func (d *ardaDriver) FetchFrame(ctx context.Context, query *CompiledQuery) (Frame, error) {
	result, err := d.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	return resultFrame(result)
}

func (d *ardaDriver) FetchFrameIter(ctx context.Context, query *CompiledQuery, size int) (*FrameIter, error) {
	chunks, err := d.FetchIter(ctx, query, size)
	if err != nil {
		return nil, err
	}
	return newFrameIter(chunks), nil
}

func (d *ardaDriver) Execute(ctx context.Context, sql string) error {
	return d.engine.Exec(ctx, sql, nil)
}

func (d *ardaDriver) StoreToS3(ctx context.Context, query *CompiledQuery, location S3Location) error {
	return d.engine.InsertToS3(ctx, query.SQL(), query.Parameters(),
		location.URI(), location.AccessKeyID, location.SecretAccessKey)
}

func (d *ardaDriver) Close() error {
	return d.engine.Close()
}

func (d *ardaDriver) query(ctx context.Context, query *CompiledQuery) (rowSource, error) {
	rows, err := d.engine.Query(ctx, query.SQL(), query.Parameters())
	if err != nil {
		return nil, err
	}
	return newSQLRowsSource(rows)
}

// sqlRowsSource adapts a sql.Rows cursor to the chunking layer.
type sqlRowsSource struct {
	rows    *sql.Rows
	columns []string
}

func newSQLRowsSource(rows *sql.Rows) (*sqlRowsSource, error) {
	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return &sqlRowsSource{rows: rows, columns: columns}, nil
}

func (s *sqlRowsSource) Columns() []string { return s.columns }

func (s *sqlRowsSource) Next() (Row, error) {
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	values := make([]any, len(s.columns))
	pointers := make([]any, len(s.columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := s.rows.Scan(pointers...); err != nil {
		return nil, err
	}
	for i, v := range values {
		// Drivers hand text columns back as byte slices; normalize so
		// results compare and print as strings.
		if b, ok := v.([]byte); ok {
			values[i] = string(b)
		}
	}
	return values, nil
}

func (s *sqlRowsSource) Close() error { return s.rows.Close() }
