package algoseek

import (
	"fmt"
	"io"
)

// Row is a single result row in column order.
type Row []any

// Chunk is a bounded, ordered slice of a result set produced during
// streaming retrieval. Each chunk is independent and finite.
type Chunk struct {
	columns []string
	rows    []Row
}

// Columns returns the column names in select-list order.
func (c *Chunk) Columns() []string {
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out
}

// Len returns the number of rows in the chunk.
func (c *Chunk) Len() int { return len(c.rows) }

// Rows returns the chunk rows in result order.
func (c *Chunk) Rows() []Row { return c.rows }

// Column returns the values of a single column across the chunk.
func (c *Chunk) Column(name string) ([]any, bool) {
	idx := -1
	for i, n := range c.columns {
		if n == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, false
	}
	out := make([]any, len(c.rows))
	for i, row := range c.rows {
		out[i] = row[idx]
	}
	return out, true
}

// Result is a fully materialized, columnar result set: a mapping from
// column name to the ordered values of that column, plus the select-list
// column order.
type Result struct {
	columns []string
	data    map[string][]any
	length  int
}

// Columns returns the column names in select-list order.
func (r *Result) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of rows.
func (r *Result) Len() int { return r.length }

// Column returns the ordered values of the named column.
func (r *Result) Column(name string) ([]any, bool) {
	values, ok := r.data[name]
	return values, ok
}

// Row returns the i-th row in column order.
func (r *Result) Row(i int) Row {
	row := make(Row, len(r.columns))
	for j, name := range r.columns {
		row[j] = r.data[name][i]
	}
	return row
}

// rowSource is the pull interface between backend drivers and the
// chunking layer. Next returns io.EOF after the last row. Sources are
// finite and not restartable.
type rowSource interface {
	Columns() []string
	Next() (Row, error)
	Close() error
}

// newResult drains a row source into a columnar result. The source is
// always closed, even on error.
func newResult(src rowSource) (*Result, error) {
	defer src.Close()
	columns := src.Columns()
	data := make(map[string][]any, len(columns))
	for _, name := range columns {
		data[name] = []any{}
	}
	length := 0
	for {
		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) != len(columns) {
			return nil, fmt.Errorf("algoseek: row has %d values, expected %d", len(row), len(columns))
		}
		for i, name := range columns {
			data[name] = append(data[name], row[i])
		}
		length++
	}
	return &Result{columns: columns, data: data, length: length}, nil
}

// Chunks is a lazy, finite, non-restartable sequence of row batches. It
// follows the sql.Rows iteration idiom:
//
//	for it.Next() {
//	    chunk := it.Chunk()
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
//
// Every chunk holds at most the requested size; all chunks except the last
// hold exactly that many rows, regardless of the block sizes the backend
// driver produces. Once exhausted or partially consumed, the sequence
// cannot be replayed; a fresh execution is required.
type Chunks struct {
	src     rowSource
	size    int
	columns []string
	cur     *Chunk
	err     error
	done    bool
	closed  bool
}

// newChunks wraps a row source in a re-chunking iterator. The chunk size
// must be at least one row.
func newChunks(src rowSource, size int) (*Chunks, error) {
	if size < 1 {
		src.Close()
		return nil, usageErrorf("chunk size must be at least 1, got %d", size)
	}
	return &Chunks{src: src, size: size, columns: src.Columns()}, nil
}

// Columns returns the column names in select-list order.
func (it *Chunks) Columns() []string {
	out := make([]string, len(it.columns))
	copy(out, it.columns)
	return out
}

// Next advances to the next chunk. It returns false when the sequence is
// exhausted or an error occurred; check Err afterwards.
func (it *Chunks) Next() bool {
	if it.err != nil {
		return false
	}
	if it.closed {
		// Advancing a closed, unexhausted sequence is a caller bug.
		if !it.done {
			it.err = ErrClosed
		}
		return false
	}
	if it.done {
		return false
	}
	rows := make([]Row, 0, it.size)
	for len(rows) < it.size {
		row, err := it.src.Next()
		if err == io.EOF {
			it.done = true
			break
		}
		if err != nil {
			it.err = err
			it.done = true
			it.src.Close()
			return false
		}
		rows = append(rows, row)
	}
	if it.done {
		it.src.Close()
	}
	if len(rows) == 0 {
		it.cur = nil
		return false
	}
	it.cur = &Chunk{columns: it.columns, rows: rows}
	return true
}

// Chunk returns the current chunk. Valid only after a true Next.
func (it *Chunks) Chunk() *Chunk { return it.cur }

// Err returns the first error encountered while iterating.
func (it *Chunks) Err() error { return it.err }

// Close releases the underlying backend cursor. It is safe to call more
// than once and after exhaustion. A Next call after an early Close
// records ErrClosed.
func (it *Chunks) Close() error {
	it.closed = true
	return it.src.Close()
}

// sliceRows is an in-memory rowSource, used by drivers that materialize
// before chunking and by tests.
type sliceRows struct {
	columns []string
	rows    []Row
	pos     int
}

func newSliceRows(columns []string, rows []Row) *sliceRows {
	return &sliceRows{columns: columns, rows: rows}
}

func (s *sliceRows) Columns() []string { return s.columns }

func (s *sliceRows) Next() (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

func (s *sliceRows) Close() error { return nil }
