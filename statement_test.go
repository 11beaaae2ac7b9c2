package algoseek

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Builder calls must never mutate the receiver: a shared base statement
// stays usable after derived statements diverge from it.
func TestStatement_FunctionalUpdate(t *testing.T) {
	t.Parallel()

	handle := tradesHandle(t)
	ticker := tradesColumn(t, handle, "Ticker")
	price := tradesColumn(t, handle, "Price")

	base := newStatement("equity.TradeOnly", handle, nil)
	withFilter := base.Where(ticker.Eq("ABC"))
	withLimit := base.Limit(5)

	baseQuery, err := compileStatement(base)
	require.NoError(t, err)
	assert.Equal(t, "SELECT Ticker, Price, Quantity, TradeDate FROM equity.TradeOnly", baseQuery.SQL(),
		"deriving statements must leave the base untouched")

	filterQuery, err := compileStatement(withFilter)
	require.NoError(t, err)
	assert.Contains(t, filterQuery.SQL(), "WHERE Ticker = ?")
	assert.NotContains(t, filterQuery.SQL(), "LIMIT")

	limitQuery, err := compileStatement(withLimit)
	require.NoError(t, err)
	assert.NotContains(t, limitQuery.SQL(), "WHERE")
	assert.Contains(t, limitQuery.SQL(), "LIMIT 5")

	// Extending one branch must not leak into a sibling branch.
	_ = withFilter.Where(price.Gt(10.0)).OrderBy(ticker.Asc())
	again, err := compileStatement(withFilter)
	require.NoError(t, err)
	assert.Equal(t, filterQuery.SQL(), again.SQL())
}

func TestStatement_UsageErrors(t *testing.T) {
	t.Parallel()

	handle := tradesHandle(t)
	ticker := tradesColumn(t, handle, "Ticker")

	t.Run("nil where predicate", func(t *testing.T) {
		t.Parallel()
		stmt := newStatement("equity.TradeOnly", handle, nil).Where(nil)
		assert.ErrorIs(t, stmt.Err(), ErrUsage)
	})

	t.Run("nil having predicate", func(t *testing.T) {
		t.Parallel()
		stmt := newStatement("equity.TradeOnly", handle, nil).Having(nil)
		assert.ErrorIs(t, stmt.Err(), ErrUsage)
	})

	t.Run("error is recorded at the offending call", func(t *testing.T) {
		t.Parallel()
		stmt := newStatement("equity.TradeOnly", handle, nil).Limit(-1)
		require.Error(t, stmt.Err(), "the error must exist before any terminal call")

		// Later valid calls carry the error along unchanged.
		stmt = stmt.Where(ticker.Eq("ABC")).Limit(3)
		assert.ErrorIs(t, stmt.Err(), ErrUsage)
		_, err := compileStatement(stmt)
		assert.ErrorIs(t, err, ErrUsage)
	})
}

func TestColumnHandle(t *testing.T) {
	t.Parallel()

	t.Run("preserves declared order", func(t *testing.T) {
		t.Parallel()
		handle := tradesHandle(t)
		assert.Equal(t, []string{"Ticker", "Price", "Quantity", "TradeDate"}, handle.Names())
		assert.Equal(t, 4, handle.Len())
	})

	t.Run("unknown name", func(t *testing.T) {
		t.Parallel()
		handle := tradesHandle(t)
		_, err := handle.Get("Volume")
		assert.ErrorIs(t, err, ErrUnknownColumn)
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := newColumnHandle([]*Column{
			NewColumn("Ticker", "String", ""),
			NewColumn("Ticker", "String", ""),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Ticker")
	})
}

func TestKindFromTypeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typeName string
		want     TypeKind
	}{
		{"Bool", TypeBoolean},
		{"UInt32", TypeInteger},
		{"Int64", TypeInteger},
		{"Float64", TypeFloat},
		{"Decimal(18, 4)", TypeDecimal},
		{"String", TypeString},
		{"FixedString(8)", TypeString},
		{"Enum8('buy' = 1, 'sell' = 2)", TypeString},
		{"Date", TypeDate},
		{"DateTime64(9)", TypeDateTime},
		{"Nullable(Float64)", TypeFloat},
		{"LowCardinality(String)", TypeString},
		{"LowCardinality(Nullable(String))", TypeString},
		{"AggregateFunction(sum, UInt64)", TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, kindFromTypeName(tt.typeName))
		})
	}
}
