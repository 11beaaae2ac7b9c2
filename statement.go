package algoseek

// Statement is an in-memory, backend-agnostic description of a single-table
// query. It is produced by Dataset.Select and grown by the chainable
// methods below. Every method returns a new Statement, leaving the receiver
// untouched, so partially built statements can be shared and extended
// independently.
//
// Statements are pure data: no builder call issues network traffic. Usage
// errors (negative limits, select/exclude conflicts) are recorded at the
// offending call and returned by the first terminal operation (Compile or
// any Fetch variant) before a query is sent.
type Statement struct {
	table  string
	handle *ColumnHandle

	selected []Expr
	exclude  []string
	where    Expr
	groupBy  []Expr
	having   Expr
	orderBy  []Expr
	limit    int
	offset   int

	// err is the first usage error recorded by a builder call.
	err error
}

// newStatement binds a statement to a table name and column set. Explicit
// select expressions are optional; without them the statement selects all
// columns in declared schema order.
func newStatement(table string, handle *ColumnHandle, exprs []Expr) *Statement {
	return &Statement{
		table:    table,
		handle:   handle,
		selected: exprs,
		limit:    -1,
		offset:   -1,
	}
}

// clone copies the statement, including its slices, so the original is
// never aliased by a derived statement.
func (s *Statement) clone() *Statement {
	out := *s
	out.selected = append([]Expr(nil), s.selected...)
	out.exclude = append([]string(nil), s.exclude...)
	out.groupBy = append([]Expr(nil), s.groupBy...)
	out.orderBy = append([]Expr(nil), s.orderBy...)
	return &out
}

// fail records the first usage error. Later errors are dropped; the first
// offending call is the one worth reporting.
func (s *Statement) fail(err error) *Statement {
	out := s.clone()
	if out.err == nil {
		out.err = err
	}
	return out
}

// Err returns the first usage error recorded by a builder call, if any.
func (s *Statement) Err() error { return s.err }

// Exclude removes columns from a select-all statement. Combining Exclude
// with explicit select expressions is ambiguous and is recorded as a usage
// error instead of silently ignoring one of the two.
func (s *Statement) Exclude(columns ...*Column) *Statement {
	if len(s.selected) > 0 {
		return s.fail(usageErrorf("cannot combine explicit select expressions with Exclude"))
	}
	out := s.clone()
	for _, col := range columns {
		out.exclude = append(out.exclude, col.Name())
	}
	return out
}

// Where adds a filter predicate. Repeated calls compose: the new predicate
// is ANDed onto any existing one, never replacing it.
func (s *Statement) Where(predicate Expr) *Statement {
	if predicate == nil {
		return s.fail(usageErrorf("Where requires a predicate"))
	}
	out := s.clone()
	if out.where == nil {
		out.where = predicate
	} else {
		out.where = And(out.where, predicate)
	}
	return out
}

// GroupBy appends grouping expressions.
func (s *Statement) GroupBy(exprs ...Expr) *Statement {
	out := s.clone()
	out.groupBy = append(out.groupBy, exprs...)
	return out
}

// Having sets the group filter predicate. Repeated calls compose with AND,
// mirroring Where.
func (s *Statement) Having(predicate Expr) *Statement {
	if predicate == nil {
		return s.fail(usageErrorf("Having requires a predicate"))
	}
	out := s.clone()
	if out.having == nil {
		out.having = predicate
	} else {
		out.having = And(out.having, predicate)
	}
	return out
}

// OrderBy appends ordering expressions. Wrap an expression with Desc (or
// the Column.Desc method) for descending order; the default is ascending.
func (s *Statement) OrderBy(exprs ...Expr) *Statement {
	out := s.clone()
	out.orderBy = append(out.orderBy, exprs...)
	return out
}

// Limit caps the number of returned rows. A zero limit is valid and
// returns no rows; a negative one is a usage error.
func (s *Statement) Limit(n int) *Statement {
	if n < 0 {
		return s.fail(usageErrorf("limit must be non-negative, got %d", n))
	}
	out := s.clone()
	out.limit = n
	return out
}

// Offset skips the first n rows. A negative offset is a usage error.
func (s *Statement) Offset(n int) *Statement {
	if n < 0 {
		return s.fail(usageErrorf("offset must be non-negative, got %d", n))
	}
	out := s.clone()
	out.offset = n
	return out
}
