package algoseek

import (
	"fmt"
	"strings"
)

// TypeKind is the coarse value category of a column, derived from the
// backend's declared type string. It lets callers reason about columns
// without parsing backend type names; frame construction types columns
// from the fetched values instead, since drivers already deliver
// decoded Go values.
type TypeKind int

const (
	// TypeUnknown is used for declared types the library does not recognize.
	TypeUnknown TypeKind = iota
	// TypeBoolean represents boolean columns.
	TypeBoolean
	// TypeInteger represents signed and unsigned integer columns.
	TypeInteger
	// TypeFloat represents floating point columns.
	TypeFloat
	// TypeDecimal represents fixed precision decimal columns.
	TypeDecimal
	// TypeString represents string and fixed string columns.
	TypeString
	// TypeDate represents date columns without a time component.
	TypeDate
	// TypeDateTime represents timestamp columns.
	TypeDateTime
)

// String returns the lowercase name of the type kind.
func (k TypeKind) String() string {
	switch k {
	case TypeBoolean:
		return "boolean"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeDecimal:
		return "decimal"
	case TypeString:
		return "string"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Column identifies a single column of a dataset: its name, declared
// backend type and description. Columns are immutable once the owning
// dataset has been fetched and double as expression-tree leaves, so they
// can be combined with the comparison and arithmetic methods below.
type Column struct {
	name        string
	typeName    string
	description string
	kind        TypeKind
}

// NewColumn creates a column from its name, declared backend type string
// and description. The type kind is derived from the type name.
func NewColumn(name, typeName, description string) *Column {
	return &Column{
		name:        name,
		typeName:    typeName,
		description: description,
		kind:        kindFromTypeName(typeName),
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// TypeName returns the declared backend type, e.g. "Float64" or
// "LowCardinality(String)".
func (c *Column) TypeName() string { return c.typeName }

// Description returns the free-text column description.
func (c *Column) Description() string { return c.description }

// Kind returns the coarse value category derived from the declared type.
func (c *Column) Kind() TypeKind { return c.kind }

func (c *Column) exprNode() {}

// Eq builds the predicate "column = value".
func (c *Column) Eq(value any) Expr { return Eq(c, value) }

// Ne builds the predicate "column != value".
func (c *Column) Ne(value any) Expr { return Ne(c, value) }

// Gt builds the predicate "column > value".
func (c *Column) Gt(value any) Expr { return Gt(c, value) }

// Ge builds the predicate "column >= value".
func (c *Column) Ge(value any) Expr { return Ge(c, value) }

// Lt builds the predicate "column < value".
func (c *Column) Lt(value any) Expr { return Lt(c, value) }

// Le builds the predicate "column <= value".
func (c *Column) Le(value any) Expr { return Le(c, value) }

// Between builds the predicate "column BETWEEN lo AND hi".
func (c *Column) Between(lo, hi any) Expr { return Between(c, lo, hi) }

// In builds the predicate "column IN (values...)". An empty value list
// compiles to a predicate that matches no rows.
func (c *Column) In(values ...any) Expr { return In(c, values...) }

// Add builds the arithmetic expression "column + value".
func (c *Column) Add(value any) Expr { return Add(c, value) }

// Sub builds the arithmetic expression "column - value".
func (c *Column) Sub(value any) Expr { return Sub(c, value) }

// Mul builds the arithmetic expression "column * value".
func (c *Column) Mul(value any) Expr { return Mul(c, value) }

// Div builds the arithmetic expression "column / value".
func (c *Column) Div(value any) Expr { return Div(c, value) }

// As labels the column with an alias in the select list.
func (c *Column) As(alias string) Expr { return As(c, alias) }

// Asc marks the column for ascending ordering in OrderBy.
func (c *Column) Asc() Expr { return Asc(c) }

// Desc marks the column for descending ordering in OrderBy.
func (c *Column) Desc() Expr { return Desc(c) }

// ColumnHandle is an ordered, name-unique lookup table for the columns of a
// dataset. It preserves the declared schema order, which is also the order
// used when a statement selects all columns.
type ColumnHandle struct {
	names   []string
	columns map[string]*Column
}

// newColumnHandle builds a handle from columns in declared order. Duplicate
// column names violate the dataset invariant and are rejected.
func newColumnHandle(columns []*Column) (*ColumnHandle, error) {
	h := &ColumnHandle{
		names:   make([]string, 0, len(columns)),
		columns: make(map[string]*Column, len(columns)),
	}
	for _, col := range columns {
		if _, ok := h.columns[col.name]; ok {
			return nil, fmt.Errorf("algoseek: duplicate column name %q", col.name)
		}
		h.names = append(h.names, col.name)
		h.columns[col.name] = col
	}
	return h, nil
}

// Names returns the column names in declared schema order.
func (h *ColumnHandle) Names() []string {
	out := make([]string, len(h.names))
	copy(out, h.names)
	return out
}

// Get returns the column with the given name. It fails with
// ErrUnknownColumn for names outside the dataset schema.
func (h *ColumnHandle) Get(name string) (*Column, error) {
	col, ok := h.columns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return col, nil
}

// Columns returns all columns in declared schema order.
func (h *ColumnHandle) Columns() []*Column {
	out := make([]*Column, 0, len(h.names))
	for _, name := range h.names {
		out = append(out, h.columns[name])
	}
	return out
}

// Len returns the number of columns.
func (h *ColumnHandle) Len() int { return len(h.names) }

func (h *ColumnHandle) has(name string) bool {
	_, ok := h.columns[name]
	return ok
}

// kindFromTypeName maps a declared type string to a TypeKind. It
// understands the ArdaDB type names including Nullable and LowCardinality
// wrappers, plus the generic names used by the metadata service.
func kindFromTypeName(typeName string) TypeKind {
	base := baseTypeName(typeName)
	switch {
	case base == "Bool" || base == "Boolean":
		return TypeBoolean
	case strings.HasPrefix(base, "UInt") || strings.HasPrefix(base, "Int") || base == "Integer":
		return TypeInteger
	case strings.HasPrefix(base, "Float") || base == "Double":
		return TypeFloat
	case strings.HasPrefix(base, "Decimal"):
		return TypeDecimal
	case base == "String" || base == "FixedString" || strings.HasPrefix(base, "Enum"):
		return TypeString
	case base == "Date" || base == "Date32":
		return TypeDate
	case base == "DateTime" || base == "DateTime64" || base == "Timestamp":
		return TypeDateTime
	default:
		return TypeUnknown
	}
}

// baseTypeName strips type arguments and the Nullable/LowCardinality
// wrappers: "LowCardinality(Nullable(String))" yields "String".
func baseTypeName(typeName string) string {
	name := strings.TrimSpace(typeName)
	for {
		open := strings.IndexByte(name, '(')
		if open == -1 {
			return name
		}
		outer := name[:open]
		if outer != "Nullable" && outer != "LowCardinality" {
			return outer
		}
		name = strings.TrimSuffix(name[open+1:], ")")
	}
}
