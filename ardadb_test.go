package algoseek

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/algoseek/connector-go/internal/ardadb"
)

// openTradesDriver backs the ArdaDB driver with an in-process SQLite
// database seeded with n trade rows. The driver only speaks database/sql,
// so everything but the catalog introspection runs unchanged.
func openTradesDriver(t *testing.T, n int) Driver {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = db.Exec(`CREATE TABLE trades (Ticker TEXT, Price REAL)`)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		_, err = db.Exec(`INSERT INTO trades VALUES (?, ?)`, fmt.Sprintf("T%03d", i), float64(i)+0.5)
		require.NoError(t, err)
	}
	return newArdaDriver(ardadb.NewEngine(db))
}

func tradesStatement(t *testing.T, exprs ...Expr) *Statement {
	t.Helper()
	handle, err := newColumnHandle([]*Column{
		NewColumn("Ticker", "String", ""),
		NewColumn("Price", "Float64", ""),
	})
	require.NoError(t, err)
	return newStatement("trades", handle, exprs)
}

func TestArdaDriver_Fetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drv := openTradesDriver(t, 10)
	stmt := tradesStatement(t)
	ticker, err := stmt.handle.Get("Ticker")
	require.NoError(t, err)

	query, err := drv.Compile(stmt.Where(ticker.In("T001", "T005")).OrderBy(ticker.Asc()))
	require.NoError(t, err)
	assert.Equal(t, "SELECT Ticker, Price FROM trades WHERE Ticker IN (?, ?) ORDER BY Ticker", query.SQL())

	result, err := drv.Fetch(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Len())
	assert.Equal(t, Row{"T001", 1.5}, result.Row(0))
	assert.Equal(t, Row{"T005", 5.5}, result.Row(1))
}

func TestArdaDriver_FetchIterConcatEqualsFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drv := openTradesDriver(t, 250)
	stmt := tradesStatement(t)

	query, err := drv.Compile(stmt)
	require.NoError(t, err)

	want, err := drv.Fetch(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 250, want.Len())

	it, err := drv.FetchIter(ctx, query, 100)
	require.NoError(t, err)
	defer it.Close() //nolint:errcheck

	var lens []int
	var got []Row
	for it.Next() {
		lens = append(lens, it.Chunk().Len())
		got = append(got, it.Chunk().Rows()...)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int{100, 100, 50}, lens)

	require.Len(t, got, want.Len())
	for i, row := range got {
		assert.Equal(t, want.Row(i), row)
	}
}

func TestArdaDriver_FetchFrame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drv := openTradesDriver(t, 6)
	query, err := drv.Compile(tradesStatement(t).Limit(4))
	require.NoError(t, err)

	frame, err := drv.FetchFrame(ctx, query)
	require.NoError(t, err)
	defer frame.Release()

	assert.Equal(t, int64(4), frame.NumRows())
	assert.Equal(t, "Ticker", frame.Schema().Field(0).Name)
	assert.Equal(t, "Price", frame.Schema().Field(1).Name)
}

func TestArdaDriver_Execute(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drv := openTradesDriver(t, 0)
	require.NoError(t, drv.Execute(ctx, "CREATE TABLE scratch (x INTEGER)"))
	require.NoError(t, drv.Execute(ctx, "DROP TABLE scratch"))
}

// The end-to-end scenario: a dataset backed by a live engine, queried
// through the builder.
func TestArdaDriver_ScenarioThroughFacade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	drv := openTradesDriver(t, 20)
	stmt := tradesStatement(t)
	ticker, err := stmt.handle.Get("Ticker")
	require.NoError(t, err)
	price, err := stmt.handle.Get("Price")
	require.NoError(t, err)

	query, err := drv.Compile(
		tradesStatement(t, ticker, price).
			Where(ticker.Eq("T003")).
			Limit(10),
	)
	require.NoError(t, err)
	assert.Equal(t, "SELECT Ticker, Price FROM trades WHERE Ticker = ? LIMIT 10", query.SQL())
	assert.Equal(t, []any{"T003"}, query.Parameters())

	result, err := drv.Fetch(ctx, query)
	require.NoError(t, err)
	require.Equal(t, 1, result.Len())
	assert.Equal(t, Row{"T003", 3.5}, result.Row(0))
}
