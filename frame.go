package algoseek

import (
	"fmt"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// Frame is a tabular, columnar view of a result set backed by Arrow.
// Frames returned by the fetch entry points must be released by the caller
// unless they were obtained from a FrameIter, which manages releases
// itself.
type Frame = arrow.Record

// chunkFrame converts a chunk into an Arrow record. Field types are
// inferred from the first non-nil value of each column; columns with no
// values fall back to strings.
func chunkFrame(chunk *Chunk) (Frame, error) {
	schema, err := frameSchema(chunk)
	if err != nil {
		return nil, err
	}
	builder := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer builder.Release()

	for i := range schema.Fields() {
		values, _ := chunk.Column(chunk.columns[i])
		if err := appendColumn(builder.Field(i), values); err != nil {
			return nil, fmt.Errorf("column %q: %w", chunk.columns[i], err)
		}
	}
	return builder.NewRecord(), nil
}

// resultFrame converts a materialized result into a single Arrow record.
func resultFrame(result *Result) (Frame, error) {
	rows := make([]Row, result.Len())
	for i := range rows {
		rows[i] = result.Row(i)
	}
	return chunkFrame(&Chunk{columns: result.columns, rows: rows})
}

func frameSchema(chunk *Chunk) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(chunk.columns))
	for _, name := range chunk.columns {
		values, _ := chunk.Column(name)
		dt, err := inferArrowType(values)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		fields = append(fields, arrow.Field{Name: name, Type: dt, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}

// inferArrowType picks an Arrow type from the first non-nil value.
func inferArrowType(values []any) (arrow.DataType, error) {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case bool:
			return arrow.FixedWidthTypes.Boolean, nil
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return arrow.PrimitiveTypes.Int64, nil
		case float32, float64:
			return arrow.PrimitiveTypes.Float64, nil
		case string, []byte:
			return arrow.BinaryTypes.String, nil
		case time.Time:
			return arrow.FixedWidthTypes.Timestamp_us, nil
		default:
			return nil, fmt.Errorf("algoseek: unsupported value type %T", v)
		}
	}
	return arrow.BinaryTypes.String, nil
}

func appendColumn(b array.Builder, values []any) error {
	for _, v := range values {
		if v == nil {
			b.AppendNull()
			continue
		}
		switch builder := b.(type) {
		case *array.BooleanBuilder:
			bv, ok := v.(bool)
			if !ok {
				return fmt.Errorf("expected bool, got %T", v)
			}
			builder.Append(bv)
		case *array.Int64Builder:
			iv, err := toInt64(v)
			if err != nil {
				return err
			}
			builder.Append(iv)
		case *array.Float64Builder:
			fv, err := toFloat64(v)
			if err != nil {
				return err
			}
			builder.Append(fv)
		case *array.StringBuilder:
			switch sv := v.(type) {
			case string:
				builder.Append(sv)
			case []byte:
				builder.Append(string(sv))
			default:
				return fmt.Errorf("expected string, got %T", v)
			}
		case *array.TimestampBuilder:
			tv, ok := v.(time.Time)
			if !ok {
				return fmt.Errorf("expected time.Time, got %T", v)
			}
			builder.Append(arrow.Timestamp(tv.UnixMicro()))
		default:
			return fmt.Errorf("unsupported builder type %T", b)
		}
	}
	return nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expected float, got %T", v)
	}
}

// FrameIter streams a result as a sequence of Arrow records, one per
// chunk. The iterator releases each record when Next or Close is called
// again, so callers must not retain records across iterations.
type FrameIter struct {
	chunks *Chunks
	cur    Frame
	err    error
}

func newFrameIter(chunks *Chunks) *FrameIter {
	return &FrameIter{chunks: chunks}
}

// Next advances to the next record. It returns false when the sequence is
// exhausted or an error occurred; check Err afterwards.
func (it *FrameIter) Next() bool {
	if it.cur != nil {
		it.cur.Release()
		it.cur = nil
	}
	if it.err != nil {
		return false
	}
	if !it.chunks.Next() {
		it.err = it.chunks.Err()
		return false
	}
	frame, err := chunkFrame(it.chunks.Chunk())
	if err != nil {
		it.err = err
		return false
	}
	it.cur = frame
	return true
}

// Record returns the current Arrow record. Valid only after a true Next.
func (it *FrameIter) Record() Frame { return it.cur }

// Err returns the first error encountered while iterating.
func (it *FrameIter) Err() error { return it.err }

// Close releases the current record and the underlying cursor.
func (it *FrameIter) Close() error {
	if it.cur != nil {
		it.cur.Release()
		it.cur = nil
	}
	return it.chunks.Close()
}
