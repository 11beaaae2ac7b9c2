package algoseek

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library. Backend driver errors (failed
// authentication, rejected queries, nonexistent buckets) are propagated
// unmodified and are not part of this set.
var (
	// ErrUsage indicates an invalid or ambiguous builder call, such as a
	// negative limit or selecting and excluding columns at the same time.
	ErrUsage = errors.New("algoseek: invalid query construction")

	// ErrUnknownColumn indicates a statement referenced a column that is not
	// part of the dataset schema. Detected at compile time, never at
	// execution time.
	ErrUnknownColumn = errors.New("algoseek: no such column")

	// ErrInvalidDataGroup indicates an unknown data group name.
	ErrInvalidDataGroup = errors.New("algoseek: unknown data group")

	// ErrInvalidDataset indicates an unknown dataset name.
	ErrInvalidDataset = errors.New("algoseek: unknown dataset")

	// ErrNotSupported indicates an operation the backend cannot perform,
	// such as SQL queries against an object-storage data source.
	ErrNotSupported = errors.New("algoseek: operation not supported by this data source")

	// ErrDescriptionUnavailable indicates the metadata service could not
	// provide a description for a catalog entity.
	ErrDescriptionUnavailable = errors.New("algoseek: description unavailable")

	// ErrQuotaExceeded indicates a download would exceed the configured
	// quota. Raised before any transfer is issued. Use errors.As with
	// *QuotaError to read the byte counts.
	ErrQuotaExceeded = errors.New("algoseek: download quota exceeded")

	// ErrClosed indicates an advance on an iterator that was closed
	// before exhaustion.
	ErrClosed = errors.New("algoseek: already closed")
)

// QuotaError reports a rejected download together with the requested and
// permitted byte counts. It unwraps to ErrQuotaExceeded.
type QuotaError struct {
	RequestedBytes int64
	LimitBytes     int64
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("%s: requested %d bytes, limit %d bytes",
		ErrQuotaExceeded.Error(), e.RequestedBytes, e.LimitBytes)
}

func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// usageErrorf wraps ErrUsage with the offending call and value so the
// failure can be diagnosed without re-running.
func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// schemaErrorf wraps ErrUnknownColumn naming the offending column.
func schemaErrorf(column, table string) error {
	return fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, column, table)
}
