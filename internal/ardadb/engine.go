// Package ardadb talks to the ArdaDB analytical database over
// database/sql. It owns connection setup, catalog introspection and raw
// query execution; statement compilation and result shaping live in the
// root package.
package ardadb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Config holds the connection parameters for an ArdaDB server.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Engine wraps a single live ArdaDB connection pool. It is not safe for
// concurrent use from multiple goroutines without external locking: result
// iteration holds server-side cursor state.
type Engine struct {
	db *sql.DB
}

// Open connects to ArdaDB and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config) (*Engine, error) {
	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Username: cfg.User,
			Password: cfg.Password,
		},
	})
	// One connection per engine; concurrency is a caller concern.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("ping failed: %w (close failed: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("ping failed: %w", err)
	}
	return &Engine{db: db}, nil
}

// NewEngine wraps an existing database handle. Used by tests to run the
// engine against an in-process database.
func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// Query executes parameterized SQL and returns the row cursor.
func (e *Engine) Query(ctx context.Context, query string, args []any) (*sql.Rows, error) {
	return e.db.QueryContext(ctx, query, args...)
}

// Exec executes SQL that returns no rows.
func (e *Engine) Exec(ctx context.Context, query string, args []any) error {
	_, err := e.db.ExecContext(ctx, query, args...)
	return err
}

// Close releases the connection pool.
func (e *Engine) Close() error {
	return e.db.Close()
}

// ListDatabases lists the database names on the server.
func (e *Engine) ListDatabases(ctx context.Context) ([]string, error) {
	return e.queryStrings(ctx, "SHOW DATABASES")
}

// ListTables lists the table names within a database.
func (e *Engine) ListTables(ctx context.Context, database string) ([]string, error) {
	if err := checkIdentifier(database); err != nil {
		return nil, err
	}
	return e.queryStrings(ctx, "SHOW TABLES FROM "+database)
}

func (e *Engine) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// checkIdentifier rejects names that cannot be embedded literally in
// catalog SQL. Catalog names normally come from the server's own listings;
// this guards the raw entry points.
func checkIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("ardadb: empty identifier")
	}
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !(isDigit && i > 0) {
			return fmt.Errorf("ardadb: invalid identifier %q", name)
		}
	}
	return nil
}
