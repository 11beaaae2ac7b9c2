package algoseek

import (
	"strconv"
	"strings"
)

// CompiledQuery is an immutable pair of parameterized SQL text and the
// ordered values bound to its placeholders. Literal values never appear in
// the SQL text, so a CompiledQuery is safe to log or display. Identifiers
// (table and column names) are validated against the dataset schema before
// being embedded.
type CompiledQuery struct {
	sql        string
	parameters []any
}

// SQL returns the parameterized SQL text.
func (q *CompiledQuery) SQL() string { return q.sql }

// Parameters returns a copy of the ordered bound parameter values.
func (q *CompiledQuery) Parameters() []any {
	out := make([]any, len(q.parameters))
	copy(out, q.parameters)
	return out
}

// String returns the SQL text.
func (q *CompiledQuery) String() string { return q.sql }

// NewCompiledQuery wraps raw SQL text and parameters, for callers that
// bypass the statement builder.
func NewCompiledQuery(sql string, parameters []any) *CompiledQuery {
	return &CompiledQuery{sql: sql, parameters: append([]any(nil), parameters...)}
}

// Operator precedence levels, used only to decide where parentheses are
// required in the rendered SQL.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCompare
	precAddSub
	precMulDiv
	precPrimary
)

func opPrecedence(op string) int {
	switch op {
	case "OR":
		return precOr
	case "AND":
		return precAnd
	case "+", "-":
		return precAddSub
	case "*", "/":
		return precMulDiv
	default:
		return precCompare
	}
}

// compiler renders a Statement into dialect SQL with "?" placeholders.
// Compilation is deterministic: the same statement always yields identical
// SQL text and parameter order.
type compiler struct {
	stmt   *Statement
	b      strings.Builder
	params []any
}

// compileStatement turns a finalized statement into a CompiledQuery. It
// returns any usage error recorded by the builder, and fails with a schema
// error when the statement references a column outside the dataset schema.
func compileStatement(stmt *Statement) (*CompiledQuery, error) {
	if stmt.err != nil {
		return nil, stmt.err
	}
	c := &compiler{stmt: stmt}
	if err := c.writeSelect(); err != nil {
		return nil, err
	}
	c.b.WriteString(" FROM ")
	c.b.WriteString(stmt.table)
	if stmt.where != nil {
		c.b.WriteString(" WHERE ")
		if err := c.writeExpr(stmt.where, precOr); err != nil {
			return nil, err
		}
	}
	if len(stmt.groupBy) > 0 {
		c.b.WriteString(" GROUP BY ")
		if err := c.writeExprList(stmt.groupBy); err != nil {
			return nil, err
		}
	}
	if stmt.having != nil {
		c.b.WriteString(" HAVING ")
		if err := c.writeExpr(stmt.having, precOr); err != nil {
			return nil, err
		}
	}
	if len(stmt.orderBy) > 0 {
		c.b.WriteString(" ORDER BY ")
		if err := c.writeExprList(stmt.orderBy); err != nil {
			return nil, err
		}
	}
	// Limit and offset are validated non-negative integers, safe to
	// render literally.
	if stmt.limit >= 0 {
		c.b.WriteString(" LIMIT ")
		c.b.WriteString(strconv.Itoa(stmt.limit))
	}
	if stmt.offset >= 0 {
		c.b.WriteString(" OFFSET ")
		c.b.WriteString(strconv.Itoa(stmt.offset))
	}
	return &CompiledQuery{sql: c.b.String(), parameters: c.params}, nil
}

// writeSelect renders the select list. Without explicit expressions, all
// dataset columns appear in declared schema order, minus exclusions.
func (c *compiler) writeSelect() error {
	c.b.WriteString("SELECT ")
	exprs := c.stmt.selected
	if len(exprs) == 0 {
		names, err := c.selectAllNames()
		if err != nil {
			return err
		}
		c.b.WriteString(strings.Join(names, ", "))
		return nil
	}
	return c.writeExprList(exprs)
}

// selectAllNames resolves the select-all column list: declared order minus
// the excluded names. Excluded names are checked against the schema, so a
// typo fails at compile time instead of silently excluding nothing.
func (c *compiler) selectAllNames() ([]string, error) {
	excluded := make(map[string]struct{}, len(c.stmt.exclude))
	for _, name := range c.stmt.exclude {
		if !c.stmt.handle.has(name) {
			return nil, schemaErrorf(name, c.stmt.table)
		}
		excluded[name] = struct{}{}
	}
	var names []string
	for _, name := range c.stmt.handle.Names() {
		if _, skip := excluded[name]; !skip {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, usageErrorf("at least one column must be selected")
	}
	return names, nil
}

func (c *compiler) writeExprList(exprs []Expr) error {
	for i, e := range exprs {
		if i > 0 {
			c.b.WriteString(", ")
		}
		if err := c.writeExpr(e, precOr); err != nil {
			return err
		}
	}
	return nil
}

// writeExpr renders a node, parenthesizing it when its precedence is lower
// than the surrounding context requires.
func (c *compiler) writeExpr(e Expr, parentPrec int) error {
	switch node := e.(type) {
	case *Column:
		if !c.stmt.handle.has(node.Name()) {
			return schemaErrorf(node.Name(), c.stmt.table)
		}
		c.b.WriteString(node.Name())
		return nil
	case literal:
		c.b.WriteByte('?')
		c.params = append(c.params, node.value)
		return nil
	case binaryExpr:
		if node.left == nil || node.right == nil {
			return usageErrorf("%s requires at least one operand", node.op)
		}
		prec := opPrecedence(node.op)
		if prec < parentPrec {
			c.b.WriteByte('(')
		}
		if err := c.writeExpr(node.left, prec); err != nil {
			return err
		}
		c.b.WriteByte(' ')
		c.b.WriteString(node.op)
		c.b.WriteByte(' ')
		// Right operand binds one level tighter so equal-precedence
		// operators nest left to right without extra parentheses churn.
		if err := c.writeExpr(node.right, prec+1); err != nil {
			return err
		}
		if prec < parentPrec {
			c.b.WriteByte(')')
		}
		return nil
	case unaryExpr:
		if node.operand == nil {
			return usageErrorf("%s requires an operand", node.op)
		}
		if precNot < parentPrec {
			c.b.WriteByte('(')
		}
		c.b.WriteString(node.op)
		c.b.WriteByte(' ')
		if err := c.writeExpr(node.operand, precNot+1); err != nil {
			return err
		}
		if precNot < parentPrec {
			c.b.WriteByte(')')
		}
		return nil
	case inExpr:
		// IN with no values matches no rows. Rendering a constant false
		// predicate keeps the SQL well formed.
		if len(node.values) == 0 {
			c.b.WriteString("1 = 0")
			return nil
		}
		if err := c.writeExpr(node.operand, precCompare); err != nil {
			return err
		}
		c.b.WriteString(" IN (")
		for i, v := range node.values {
			if i > 0 {
				c.b.WriteString(", ")
			}
			if err := c.writeExpr(v, precOr); err != nil {
				return err
			}
		}
		c.b.WriteByte(')')
		return nil
	case betweenExpr:
		if err := c.writeExpr(node.operand, precCompare); err != nil {
			return err
		}
		c.b.WriteString(" BETWEEN ")
		if err := c.writeExpr(node.lo, precCompare+1); err != nil {
			return err
		}
		c.b.WriteString(" AND ")
		if err := c.writeExpr(node.hi, precCompare+1); err != nil {
			return err
		}
		return nil
	case funcCall:
		if !isValidIdentifier(node.name) {
			return usageErrorf("invalid function name %q", node.name)
		}
		c.b.WriteString(node.name)
		c.b.WriteByte('(')
		for i, arg := range node.args {
			if i > 0 {
				c.b.WriteString(", ")
			}
			if err := c.writeExpr(arg, precOr); err != nil {
				return err
			}
		}
		c.b.WriteByte(')')
		return nil
	case aliasExpr:
		if !isValidIdentifier(node.alias) {
			return usageErrorf("invalid alias %q", node.alias)
		}
		if err := c.writeExpr(node.expr, precPrimary); err != nil {
			return err
		}
		c.b.WriteString(" AS ")
		c.b.WriteString(node.alias)
		return nil
	case sortExpr:
		if err := c.writeExpr(node.expr, precOr); err != nil {
			return err
		}
		if node.desc {
			c.b.WriteString(" DESC")
		}
		return nil
	default:
		return usageErrorf("unsupported expression type %T", e)
	}
}

// isValidIdentifier reports whether a name is safe to embed literally in
// SQL text: letters, digits and underscores, not starting with a digit.
func isValidIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !(isDigit && i > 0) {
			return false
		}
	}
	return true
}
