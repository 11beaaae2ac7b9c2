package algoseek

// Expr is a node of an immutable expression tree: a column reference, a
// literal, an operator application, a function call or an alias. Trees are
// built bottom-up by the constructors in this file and the Column methods,
// so they are acyclic by construction. No constructor ever mutates its
// operands; each call returns a new node.
type Expr interface {
	exprNode()
}

// literal wraps a Go value. Literals always compile to bound parameters,
// never to SQL text.
type literal struct {
	value any
}

// binaryExpr applies an infix operator to two operands.
type binaryExpr struct {
	op          string
	left, right Expr
}

// unaryExpr applies a prefix operator, currently only NOT.
type unaryExpr struct {
	op      string
	operand Expr
}

// inExpr is the "operand IN (values...)" membership test. An empty value
// list is valid and compiles to an always-false predicate.
type inExpr struct {
	operand Expr
	values  []Expr
}

// betweenExpr is the inclusive range test "operand BETWEEN lo AND hi".
type betweenExpr struct {
	operand, lo, hi Expr
}

// funcCall applies a named SQL function to its arguments.
type funcCall struct {
	name string
	args []Expr
}

// aliasExpr labels an expression with "AS alias" in the select list.
type aliasExpr struct {
	expr  Expr
	alias string
}

// sortExpr carries the ordering direction for OrderBy.
type sortExpr struct {
	expr Expr
	desc bool
}

func (literal) exprNode()     {}
func (binaryExpr) exprNode()  {}
func (unaryExpr) exprNode()   {}
func (inExpr) exprNode()      {}
func (betweenExpr) exprNode() {}
func (funcCall) exprNode()    {}
func (aliasExpr) exprNode()   {}
func (sortExpr) exprNode()    {}

// toExpr wraps plain Go values as literals. Values that already implement
// Expr pass through unchanged.
func toExpr(value any) Expr {
	if e, ok := value.(Expr); ok {
		return e
	}
	return literal{value: value}
}

// Lit wraps a Go value as a literal expression. Literals are always passed
// to the backend as bound parameters.
func Lit(value any) Expr { return literal{value: value} }

// Eq builds the predicate "left = right".
func Eq(left Expr, right any) Expr { return binaryExpr{op: "=", left: left, right: toExpr(right)} }

// Ne builds the predicate "left != right".
func Ne(left Expr, right any) Expr { return binaryExpr{op: "!=", left: left, right: toExpr(right)} }

// Gt builds the predicate "left > right".
func Gt(left Expr, right any) Expr { return binaryExpr{op: ">", left: left, right: toExpr(right)} }

// Ge builds the predicate "left >= right".
func Ge(left Expr, right any) Expr { return binaryExpr{op: ">=", left: left, right: toExpr(right)} }

// Lt builds the predicate "left < right".
func Lt(left Expr, right any) Expr { return binaryExpr{op: "<", left: left, right: toExpr(right)} }

// Le builds the predicate "left <= right".
func Le(left Expr, right any) Expr { return binaryExpr{op: "<=", left: left, right: toExpr(right)} }

// Add builds the arithmetic expression "left + right".
func Add(left Expr, right any) Expr { return binaryExpr{op: "+", left: left, right: toExpr(right)} }

// Sub builds the arithmetic expression "left - right".
func Sub(left Expr, right any) Expr { return binaryExpr{op: "-", left: left, right: toExpr(right)} }

// Mul builds the arithmetic expression "left * right".
func Mul(left Expr, right any) Expr { return binaryExpr{op: "*", left: left, right: toExpr(right)} }

// Div builds the arithmetic expression "left / right".
func Div(left Expr, right any) Expr { return binaryExpr{op: "/", left: left, right: toExpr(right)} }

// And combines predicates with AND. It requires at least one predicate and
// nests left to right.
func And(predicates ...Expr) Expr {
	return combine("AND", predicates)
}

// Or combines predicates with OR. It requires at least one predicate and
// nests left to right.
func Or(predicates ...Expr) Expr {
	return combine("OR", predicates)
}

func combine(op string, predicates []Expr) Expr {
	if len(predicates) == 0 {
		// Surfaces as a compile-time usage error.
		return binaryExpr{op: op}
	}
	node := predicates[0]
	for _, p := range predicates[1:] {
		node = binaryExpr{op: op, left: node, right: p}
	}
	return node
}

// Not negates a predicate.
func Not(predicate Expr) Expr { return unaryExpr{op: "NOT", operand: predicate} }

// Between builds the inclusive range predicate "operand BETWEEN lo AND hi".
func Between(operand Expr, lo, hi any) Expr {
	return betweenExpr{operand: operand, lo: toExpr(lo), hi: toExpr(hi)}
}

// In builds the membership predicate "operand IN (values...)". An empty
// value list compiles to a predicate matching no rows.
func In(operand Expr, values ...any) Expr {
	exprs := make([]Expr, 0, len(values))
	for _, v := range values {
		exprs = append(exprs, toExpr(v))
	}
	return inExpr{operand: operand, values: exprs}
}

// Fn applies a named SQL function, e.g. Fn("sum", priceColumn). Plain Go
// values among the arguments are wrapped as literals.
func Fn(name string, args ...any) Expr {
	exprs := make([]Expr, 0, len(args))
	for _, a := range args {
		exprs = append(exprs, toExpr(a))
	}
	return funcCall{name: name, args: exprs}
}

// As labels an expression with an alias in the select list.
func As(expr Expr, alias string) Expr { return aliasExpr{expr: expr, alias: alias} }

// Asc marks an expression for ascending ordering in OrderBy.
func Asc(expr Expr) Expr { return sortExpr{expr: expr} }

// Desc marks an expression for descending ordering in OrderBy.
func Desc(expr Expr) Expr { return sortExpr{expr: expr, desc: true} }
