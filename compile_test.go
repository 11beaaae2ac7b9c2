package algoseek

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tradesHandle builds the column set used by most builder and compiler
// tests, in declared schema order.
func tradesHandle(t *testing.T) *ColumnHandle {
	t.Helper()
	handle, err := newColumnHandle([]*Column{
		NewColumn("Ticker", "LowCardinality(String)", "instrument symbol"),
		NewColumn("Price", "Float64", "trade price"),
		NewColumn("Quantity", "UInt32", "trade size"),
		NewColumn("TradeDate", "Date", "trade date"),
	})
	require.NoError(t, err)
	return handle
}

func tradesColumn(t *testing.T, handle *ColumnHandle, name string) *Column {
	t.Helper()
	col, err := handle.Get(name)
	require.NoError(t, err)
	return col
}

func TestCompileStatement(t *testing.T) {
	t.Parallel()

	handle := tradesHandle(t)
	ticker := tradesColumn(t, handle, "Ticker")
	price := tradesColumn(t, handle, "Price")
	quantity := tradesColumn(t, handle, "Quantity")
	tradeDate := tradesColumn(t, handle, "TradeDate")

	tests := []struct {
		name       string
		stmt       *Statement
		wantSQL    string
		wantParams []any
	}{
		{
			name:       "select all uses declared column order",
			stmt:       newStatement("equity.TradeOnly", handle, nil),
			wantSQL:    "SELECT Ticker, Price, Quantity, TradeDate FROM equity.TradeOnly",
			wantParams: nil,
		},
		{
			name: "filtered projection with limit",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{ticker, price}).
				Where(ticker.Eq("ABC")).
				Limit(10),
			wantSQL:    "SELECT Ticker, Price FROM equity.TradeOnly WHERE Ticker = ? LIMIT 10",
			wantParams: []any{"ABC"},
		},
		{
			name: "exclude preserves declared order of the rest",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Exclude(price, tradeDate),
			wantSQL:    "SELECT Ticker, Quantity FROM equity.TradeOnly",
			wantParams: nil,
		},
		{
			name: "repeated where composes with AND",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Where(ticker.Eq("ABC")).
				Where(price.Gt(100.0)),
			wantSQL:    "SELECT Ticker, Price, Quantity, TradeDate FROM equity.TradeOnly WHERE Ticker = ? AND Price > ?",
			wantParams: []any{"ABC", 100.0},
		},
		{
			name: "or predicate is parenthesized under AND",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Where(Or(ticker.Eq("ABC"), ticker.Eq("DEF"))).
				Where(price.Gt(10.0)),
			wantSQL:    "SELECT Ticker, Price, Quantity, TradeDate FROM equity.TradeOnly WHERE (Ticker = ? OR Ticker = ?) AND Price > ?",
			wantParams: []any{"ABC", "DEF", 10.0},
		},
		{
			name: "in membership binds one parameter per value",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{ticker}).
				Where(ticker.In("ABC", "DEF", "GHI")),
			wantSQL:    "SELECT Ticker FROM equity.TradeOnly WHERE Ticker IN (?, ?, ?)",
			wantParams: []any{"ABC", "DEF", "GHI"},
		},
		{
			name: "empty in matches no rows",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{ticker}).
				Where(ticker.In()),
			wantSQL:    "SELECT Ticker FROM equity.TradeOnly WHERE 1 = 0",
			wantParams: nil,
		},
		{
			name: "between is inclusive range",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{ticker}).
				Where(price.Between(10.0, 20.0)),
			wantSQL:    "SELECT Ticker FROM equity.TradeOnly WHERE Price BETWEEN ? AND ?",
			wantParams: []any{10.0, 20.0},
		},
		{
			name: "not negates a predicate",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{ticker}).
				Where(Not(ticker.Eq("ABC"))),
			wantSQL:    "SELECT Ticker FROM equity.TradeOnly WHERE NOT Ticker = ?",
			wantParams: []any{"ABC"},
		},
		{
			name: "arithmetic precedence adds parentheses",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{
				price.Add(quantity),
			}),
			wantSQL:    "SELECT Price + Quantity FROM equity.TradeOnly",
			wantParams: nil,
		},
		{
			name: "nested arithmetic parenthesizes the looser operand",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{
				Mul(price.Add(quantity), 2),
			}),
			wantSQL:    "SELECT (Price + Quantity) * ? FROM equity.TradeOnly",
			wantParams: []any{2},
		},
		{
			name: "function call with alias",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{
				ticker,
				As(Fn("sum", price), "total"),
			}).GroupBy(ticker),
			wantSQL:    "SELECT Ticker, sum(Price) AS total FROM equity.TradeOnly GROUP BY Ticker",
			wantParams: nil,
		},
		{
			name: "order by descending",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				OrderBy(tradeDate.Desc(), ticker.Asc()),
			wantSQL:    "SELECT Ticker, Price, Quantity, TradeDate FROM equity.TradeOnly ORDER BY TradeDate DESC, Ticker",
			wantParams: nil,
		},
		{
			name: "zero limit is valid",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Limit(0),
			wantSQL:    "SELECT Ticker, Price, Quantity, TradeDate FROM equity.TradeOnly LIMIT 0",
			wantParams: nil,
		},
		{
			name: "limit with offset",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Limit(10).
				Offset(5),
			wantSQL:    "SELECT Ticker, Price, Quantity, TradeDate FROM equity.TradeOnly LIMIT 10 OFFSET 5",
			wantParams: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			query, err := compileStatement(tt.stmt)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query.SQL())
			if tt.wantParams == nil {
				assert.Empty(t, query.Parameters())
			} else {
				assert.Equal(t, tt.wantParams, query.Parameters())
			}
		})
	}
}

func TestCompileStatement_Errors(t *testing.T) {
	t.Parallel()

	handle := tradesHandle(t)
	ticker := tradesColumn(t, handle, "Ticker")
	price := tradesColumn(t, handle, "Price")
	quantity := tradesColumn(t, handle, "Quantity")
	tradeDate := tradesColumn(t, handle, "TradeDate")
	stranger := NewColumn("Volume", "UInt64", "")

	tests := []struct {
		name        string
		stmt        *Statement
		wantErr     error
		wantMessage string
	}{
		{
			name:        "unknown column in select list",
			stmt:        newStatement("equity.TradeOnly", handle, []Expr{stranger}),
			wantErr:     ErrUnknownColumn,
			wantMessage: "Volume",
		},
		{
			name: "unknown column in predicate",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Where(stranger.Gt(0)),
			wantErr:     ErrUnknownColumn,
			wantMessage: "Volume",
		},
		{
			name: "unknown column in exclude",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Exclude(stranger),
			wantErr:     ErrUnknownColumn,
			wantMessage: "Volume",
		},
		{
			name: "excluding every column leaves nothing to select",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Exclude(ticker, price, quantity, tradeDate),
			wantErr: ErrUsage,
		},
		{
			name: "negative limit",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Limit(-1),
			wantErr:     ErrUsage,
			wantMessage: "limit",
		},
		{
			name: "negative offset",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Offset(-3),
			wantErr:     ErrUsage,
			wantMessage: "offset",
		},
		{
			name: "exclude after explicit select",
			stmt: newStatement("equity.TradeOnly", handle, []Expr{ticker}).
				Exclude(price),
			wantErr: ErrUsage,
		},
		{
			name: "and without predicates",
			stmt: newStatement("equity.TradeOnly", handle, nil).
				Where(And()),
			wantErr: ErrUsage,
		},
		{
			name: "function name is not a valid identifier",
			stmt: newStatement("equity.TradeOnly", handle,
				[]Expr{Fn("sum(Price)); DROP TABLE trades; --", ticker)}),
			wantErr:     ErrUsage,
			wantMessage: "function name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := compileStatement(tt.stmt)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMessage != "" {
				assert.Contains(t, err.Error(), tt.wantMessage)
			}
		})
	}
}

// Compiling the same statement twice must yield byte-identical SQL and the
// same parameter order.
func TestCompileStatement_Idempotent(t *testing.T) {
	t.Parallel()

	handle := tradesHandle(t)
	ticker := tradesColumn(t, handle, "Ticker")
	price := tradesColumn(t, handle, "Price")

	stmt := newStatement("equity.TradeOnly", handle, nil).
		Where(ticker.In("ABC", "DEF")).
		Where(price.Gt(10.0)).
		OrderBy(ticker.Asc()).
		Limit(50)

	first, err := compileStatement(stmt)
	require.NoError(t, err)
	second, err := compileStatement(stmt)
	require.NoError(t, err)

	assert.Equal(t, first.SQL(), second.SQL())
	assert.Equal(t, first.Parameters(), second.Parameters())
}

// The first recorded usage error wins, even when later calls fail too.
func TestCompileStatement_StickyErrorReportsFirstFailure(t *testing.T) {
	t.Parallel()

	handle := tradesHandle(t)
	stmt := newStatement("equity.TradeOnly", handle, nil).
		Limit(-1).
		Offset(-2)

	_, err := compileStatement(stmt)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "limit")
	assert.NotContains(t, err.Error(), "offset")
}

func TestCompileStatement_Golden(t *testing.T) {
	t.Parallel()

	handle := tradesHandle(t)
	ticker := tradesColumn(t, handle, "Ticker")
	price := tradesColumn(t, handle, "Price")
	quantity := tradesColumn(t, handle, "Quantity")

	stmt := newStatement("equity.TradeOnly", handle, []Expr{
		ticker,
		As(Fn("sum", price.Mul(quantity)), "notional"),
	}).
		Where(ticker.In("ABC", "DEF")).
		Where(price.Gt(10.0)).
		GroupBy(ticker).
		Having(Gt(Fn("sum", quantity), 1000)).
		OrderBy(Desc(Fn("sum", quantity)), ticker.Asc()).
		Limit(100).
		Offset(10)

	query, err := compileStatement(stmt)
	require.NoError(t, err)
	assert.Equal(t, []any{"ABC", "DEF", 10.0, 1000}, query.Parameters())

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "aggregate_query", []byte(query.SQL()))
}

func TestCompiledQuery_ParametersAreCopied(t *testing.T) {
	t.Parallel()

	query := NewCompiledQuery("SELECT 1", []any{"a", "b"})
	params := query.Parameters()
	params[0] = "mutated"
	assert.Equal(t, []any{"a", "b"}, query.Parameters(), "mutating the returned slice must not affect the query")
}
