// Package repository describes store lookups independently of the database
// that serves them.
package repository

import "fmt"

// Option refines a Query.
type Option func(Query) Query

// Query is the filter, ordering and limit of a store lookup.
type Query struct {
	conditions []Condition
	orders     []Order
	limit      int
}

// Build folds options into a Query.
func Build(options ...Option) Query {
	var q Query
	for _, opt := range options {
		q = opt(q)
	}
	return q
}

// Conditions returns a copy of the filter conditions.
func (q Query) Conditions() []Condition {
	return append([]Condition(nil), q.conditions...)
}

// Orders returns a copy of the sort keys, most significant first.
func (q Query) Orders() []Order {
	return append([]Order(nil), q.orders...)
}

// Limit returns the maximum row count, 0 for unlimited.
func (q Query) Limit() int { return q.limit }

// Operator compares a column with a condition value.
type Operator int

const (
	// Equal matches a single value.
	Equal Operator = iota
	// In matches any value of a slice.
	In
)

// Condition restricts one column.
type Condition struct {
	field string
	op    Operator
	value any
}

// Field returns the column name.
func (c Condition) Field() string { return c.field }

// Operator returns how the column is compared.
func (c Condition) Operator() Operator { return c.op }

// Value returns the compared value. For In it is a slice.
func (c Condition) Value() any { return c.value }

// Clause renders the condition as a WHERE fragment with one placeholder,
// qualifying the column with alias when it is set.
func (c Condition) Clause(alias string) string {
	column := c.field
	if alias != "" {
		column = alias + "." + column
	}
	if c.op == In {
		return column + " IN ?"
	}
	return column + " = ?"
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %v", c.Clause(""), c.value)
}

// Order is one sort key.
type Order struct {
	field string
	desc  bool
}

// Field returns the column name.
func (o Order) Field() string { return o.field }

// Clause renders the key for ORDER BY.
func (o Order) Clause() string {
	if o.desc {
		return o.field + " DESC"
	}
	return o.field + " ASC"
}

// WithCondition filters rows where field equals value.
func WithCondition(field string, value any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, op: Equal, value: value})
		return q
	}
}

// WithConditionIn filters rows where field is one of values.
func WithConditionIn(field string, values any) Option {
	return func(q Query) Query {
		q.conditions = append(q.conditions, Condition{field: field, op: In, value: values})
		return q
	}
}

// WithLimit caps the number of rows returned.
func WithLimit(n int) Option {
	return func(q Query) Query {
		q.limit = n
		return q
	}
}

// WithOrderAsc sorts by field, smallest first.
func WithOrderAsc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field})
		return q
	}
}

// WithOrderDesc sorts by field, largest first.
func WithOrderDesc(field string) Option {
	return func(q Query) Query {
		q.orders = append(q.orders, Order{field: field, desc: true})
		return q
	}
}
