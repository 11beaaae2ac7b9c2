package ardadb

import (
	"context"
	"strings"
)

// ColumnMeta is one row of a DESCRIBE TABLE listing: the column name, its
// declared type string and the comment attached to the column.
type ColumnMeta struct {
	Name    string
	Type    string
	Comment string
}

// TypeName returns the type without its arguments:
// "Decimal(18, 4)" yields "Decimal".
func (m ColumnMeta) TypeName() string {
	if i := strings.IndexByte(m.Type, '('); i != -1 {
		return m.Type[:i]
	}
	return m.Type
}

// TypeArgs returns the comma-separated type arguments, trimmed.
func (m ColumnMeta) TypeArgs() []string {
	open := strings.IndexByte(m.Type, '(')
	if open == -1 {
		return nil
	}
	inner := strings.TrimSuffix(m.Type[open+1:], ")")
	parts := strings.Split(inner, ",")
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, strings.TrimSpace(p))
	}
	return args
}

// DescribeTable returns the column metadata of a table in declared order.
func (e *Engine) DescribeTable(ctx context.Context, database, table string) ([]ColumnMeta, error) {
	if err := checkIdentifier(database); err != nil {
		return nil, err
	}
	if err := checkIdentifier(table); err != nil {
		return nil, err
	}
	rows, err := e.db.QueryContext(ctx, "DESCRIBE TABLE "+database+"."+table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columnCount := 0
	if names, err := rows.Columns(); err == nil {
		columnCount = len(names)
	}

	var out []ColumnMeta
	for rows.Next() {
		meta, err := scanDescribeRow(rows, columnCount)
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// scanDescribeRow reads one DESCRIBE TABLE row. The listing carries name,
// type and comment in the first, second and fifth columns; trailing
// columns (codec, TTL) vary between server versions and are ignored.
func scanDescribeRow(rows interface{ Scan(...any) error }, columnCount int) (ColumnMeta, error) {
	dest := make([]any, columnCount)
	var name, typeName string
	var defaultType, defaultExpr, comment sql3NullString
	for i := range dest {
		switch i {
		case 0:
			dest[i] = &name
		case 1:
			dest[i] = &typeName
		case 2:
			dest[i] = &defaultType
		case 3:
			dest[i] = &defaultExpr
		case 4:
			dest[i] = &comment
		default:
			dest[i] = new(sql3NullString)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return ColumnMeta{}, err
	}
	return ColumnMeta{Name: name, Type: typeName, Comment: comment.value}, nil
}

// sql3NullString scans both strings and NULLs without importing
// database/sql's NullString into every signature.
type sql3NullString struct {
	value string
}

func (s *sql3NullString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		s.value = ""
	case string:
		s.value = v
	case []byte:
		s.value = string(v)
	default:
		s.value = ""
	}
	return nil
}
