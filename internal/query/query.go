// Package query builds immutable query values and compiles them to SQL text.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koba/litestore/internal/schema"
)

// Query is a compiled-on-demand statement. Compilation is pure; calling
// Statement twice yields the same text.
type Query interface {
	Statement() (string, error)
}

// Projection selects the columns a query returns
type Projection struct {
	all     bool
	columns []string
}

// All projects every column (*)
func All() Projection { return Projection{all: true} }

// Some projects the given columns in call order
func Some(columns ...string) Projection {
	return Projection{columns: append([]string(nil), columns...)}
}

func (p Projection) sql() (string, error) {
	if p.all {
		return "*", nil
	}
	if len(p.columns) == 0 {
		return "", ErrEmptyProjection
	}
	return strings.Join(p.columns, ", "), nil
}

// Order is one ORDER BY term
type Order struct {
	Column    string
	Ascending bool
}

func (o Order) sql() string {
	if o.Ascending {
		return o.Column + " ASC"
	}
	return o.Column + " DESC"
}

// tail holds the WHERE / ORDER BY / LIMIT clauses shared by Select and Join
type tail struct {
	where  Condition
	orders []Order
	limit  *int
	offset *int
}

func (t tail) withOrder(o Order) tail {
	orders := make([]Order, 0, len(t.orders)+1)
	orders = append(orders, t.orders...)
	t.orders = append(orders, o)
	return t
}

func (t tail) sql() (string, error) {
	var b strings.Builder

	if t.where != nil {
		cond, err := t.where.SQL()
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(cond)
	}

	if len(t.orders) > 0 {
		terms := make([]string, len(t.orders))
		for i, o := range t.orders {
			if o.Column == "" {
				return "", fmt.Errorf("%w: ORDER BY without a column", ErrInvalidCondition)
			}
			terms[i] = o.sql()
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if t.limit != nil || t.offset != nil {
		limit := -1
		if t.limit != nil {
			if *t.limit < 0 {
				return "", fmt.Errorf("%w: %d", ErrInvalidLimit, *t.limit)
			}
			limit = *t.limit
		}
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(limit))
		if t.offset != nil {
			if *t.offset < 0 {
				return "", fmt.Errorf("%w: offset %d", ErrInvalidLimit, *t.offset)
			}
			b.WriteString(" OFFSET ")
			b.WriteString(strconv.Itoa(*t.offset))
		}
	}

	return b.String(), nil
}

// SelectQuery is SELECT <cols> FROM <table> ...
type SelectQuery struct {
	table      string
	projection Projection
	tail
}

func (q SelectQuery) Table() string { return q.table }

// Where replaces the condition; without one every row matches
func (q SelectQuery) Where(cond Condition) SelectQuery {
	q.where = cond
	return q
}

// OrderBy appends an ordering term
func (q SelectQuery) OrderBy(column string, ascending bool) SelectQuery {
	q.tail = q.withOrder(Order{Column: column, Ascending: ascending})
	return q
}

func (q SelectQuery) Limit(n int) SelectQuery {
	q.limit = &n
	return q
}

func (q SelectQuery) Offset(n int) SelectQuery {
	q.offset = &n
	return q
}

func (q SelectQuery) Statement() (string, error) {
	if q.table == "" {
		return "", ErrMissingTable
	}
	cols, err := q.projection.sql()
	if err != nil {
		return "", err
	}
	rest, err := q.tail.sql()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT %s FROM %s%s;", cols, q.table, rest), nil
}

// JoinQuery is SELECT <cols> FROM <left> JOIN <right> ON <cond> ...
type JoinQuery struct {
	left       string
	right      string
	on         Condition
	projection Projection
	tail
}

// Select sets the projection. Columns may be qualified with Qualify.
func (q JoinQuery) Select(p Projection) JoinQuery {
	q.projection = p
	return q
}

func (q JoinQuery) Where(cond Condition) JoinQuery {
	q.where = cond
	return q
}

func (q JoinQuery) OrderBy(column string, ascending bool) JoinQuery {
	q.tail = q.withOrder(Order{Column: column, Ascending: ascending})
	return q
}

func (q JoinQuery) Limit(n int) JoinQuery {
	q.limit = &n
	return q
}

func (q JoinQuery) Offset(n int) JoinQuery {
	q.offset = &n
	return q
}

func (q JoinQuery) Statement() (string, error) {
	if q.left == "" || q.right == "" {
		return "", ErrMissingTable
	}
	if q.on == nil {
		return "", fmt.Errorf("%w: join without ON condition", ErrInvalidCondition)
	}
	cols, err := q.projection.sql()
	if err != nil {
		return "", err
	}
	on, err := q.on.SQL()
	if err != nil {
		return "", err
	}
	rest, err := q.tail.sql()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT %s FROM %s JOIN %s ON %s%s;", cols, q.left, q.right, on, rest), nil
}

// Assignment is one SET column = value pair
type Assignment struct {
	Column string
	Value  schema.Value
}

// UpdateQuery is UPDATE <table> SET ... [WHERE ...]. Assignments keep call
// order and repeated columns are not merged.
type UpdateQuery struct {
	table       string
	assignments []Assignment
	where       Condition

	// first value conversion failure among the assignments
	err error
}

func (q UpdateQuery) Table() string { return q.table }

func (q UpdateQuery) Where(cond Condition) UpdateQuery {
	q.where = cond
	return q
}

func (q UpdateQuery) Statement() (string, error) {
	if q.err != nil {
		return "", q.err
	}
	if q.table == "" {
		return "", ErrMissingTable
	}
	if len(q.assignments) == 0 {
		return "", ErrNoAssignments
	}

	sets := make([]string, len(q.assignments))
	for i, a := range q.assignments {
		sets[i] = a.Column + " = " + a.Value.Literal()
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s", q.table, strings.Join(sets, ", "))
	if q.where != nil {
		cond, err := q.where.SQL()
		if err != nil {
			return "", err
		}
		stmt += " WHERE " + cond
	}
	return stmt + ";", nil
}

// DeleteQuery is DELETE FROM <table> [WHERE ...]
type DeleteQuery struct {
	table string
	where Condition
}

func (q DeleteQuery) Table() string { return q.table }

func (q DeleteQuery) Where(cond Condition) DeleteQuery {
	q.where = cond
	return q
}

func (q DeleteQuery) Statement() (string, error) {
	if q.table == "" {
		return "", ErrMissingTable
	}
	stmt := "DELETE FROM " + q.table
	if q.where != nil {
		cond, err := q.where.SQL()
		if err != nil {
			return "", err
		}
		stmt += " WHERE " + cond
	}
	return stmt + ";", nil
}

// InsertQuery compiles to one INSERT statement per row, joined by newlines,
// meant to run inside a single transaction.
type InsertQuery struct {
	table   string
	columns []string
	rows    [][]schema.Value
	replace bool
}

func (q InsertQuery) Table() string { return q.table }

// Rows appends rows; each must align with the insert's columns
func (q InsertQuery) Rows(rows ...[]schema.Value) InsertQuery {
	merged := make([][]schema.Value, 0, len(q.rows)+len(rows))
	merged = append(merged, q.rows...)
	q.rows = append(merged, rows...)
	return q
}

// OrReplace selects INSERT OR REPLACE over a plain INSERT
func (q InsertQuery) OrReplace(replace bool) InsertQuery {
	q.replace = replace
	return q
}

func (q InsertQuery) Statement() (string, error) {
	if q.table == "" {
		return "", ErrMissingTable
	}
	if len(q.rows) == 0 {
		return "", ErrEmptyBatch
	}
	if len(q.columns) == 0 {
		return "", ErrEmptyProjection
	}

	verb := "INSERT"
	if q.replace {
		verb = "INSERT OR REPLACE"
	}
	cols := strings.Join(q.columns, ", ")

	stmts := make([]string, len(q.rows))
	for i, row := range q.rows {
		if len(row) != len(q.columns) {
			return "", fmt.Errorf("%w: row %d has %d values for %d columns", ErrColumnCount, i, len(row), len(q.columns))
		}
		literals := make([]string, len(row))
		for j, v := range row {
			literals[j] = v.Literal()
		}
		stmts[i] = fmt.Sprintf("%s INTO %s (%s) VALUES (%s);", verb, q.table, cols, strings.Join(literals, ", "))
	}

	return strings.Join(stmts, "\n"), nil
}
