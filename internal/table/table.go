// Package table defines the per-entity contract between a domain model and
// a row of storable values, and derives DDL from it.
package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/koba/litestore/internal/cursor"
	"github.com/koba/litestore/internal/query"
	"github.com/koba/litestore/internal/schema"
)

var (
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrColumnMismatch  = errors.New("serialized values do not match columns")
)

// Definition is the model-independent half of a table
type Definition interface {
	Name() string
	// Columns in declaration order. Serialize and Deserialize use this order.
	Columns() []schema.Column
	// MigrateStatement returns the script that brings this table to version,
	// or false when the table needs nothing at that version.
	MigrateStatement(version int32) (string, bool)
	// Versions lists, ascending, the versions MigrateStatement has a script for
	Versions() []int32
}

// Table maps a model to and from a row
type Table[M any] interface {
	Definition
	Serialize(model M) ([]schema.Value, error)
	Deserialize(c *cursor.Cursor) (M, error)
}

// Migrations is a sparse version to script mapping. Embed it to satisfy
// MigrateStatement.
type Migrations map[int32]string

func (m Migrations) MigrateStatement(version int32) (string, bool) {
	stmt, ok := m[version]
	return stmt, ok
}

func (m Migrations) Versions() []int32 {
	versions := make([]int32, 0, len(m))
	for version := range m {
		versions = append(versions, version)
	}
	slices.Sort(versions)
	return versions
}

// Validate checks the static schema of a definition
func Validate(def Definition) error {
	if def.Name() == "" {
		return query.ErrMissingTable
	}
	cols := def.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("table %s: no columns", def.Name())
	}
	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		if col.Name == "" {
			return fmt.Errorf("table %s: column without a name", def.Name())
		}
		key := strings.ToLower(col.Name)
		if seen[key] {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateColumn, def.Name(), col.Name)
		}
		seen[key] = true
	}
	return nil
}

// MustValidate panics on a malformed schema; call it during setup
func MustValidate(def Definition) {
	if err := Validate(def); err != nil {
		panic(err)
	}
}

// CreateStatement is CREATE TABLE IF NOT EXISTS for the definition
func CreateStatement(def Definition) string {
	cols := def.Columns()
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col.Definition()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", def.Name(), strings.Join(parts, ", "))
}

// DropStatement is DROP TABLE IF EXISTS for the definition
func DropStatement(def Definition) string {
	return "DROP TABLE IF EXISTS " + def.Name()
}

// ColumnNames returns the column names in declaration order
func ColumnNames(def Definition) []string {
	cols := def.Columns()
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}
	return names
}

// From returns a query builder for the table
func From(def Definition) query.Builder {
	return query.From(def.Name())
}

// InsertQuery serializes models into one insert query
func InsertQuery[M any](t Table[M], models []M, shouldReplace bool) (query.InsertQuery, error) {
	q := From(t).Insert(ColumnNames(t)...).OrReplace(shouldReplace)
	width := len(t.Columns())
	rows := make([][]schema.Value, 0, len(models))
	for i, model := range models {
		values, err := t.Serialize(model)
		if err != nil {
			return query.InsertQuery{}, fmt.Errorf("failed to serialize %s model %d: %w", t.Name(), i, err)
		}
		if len(values) != width {
			return query.InsertQuery{}, fmt.Errorf("%w: %s has %d columns, got %d values", ErrColumnMismatch, t.Name(), width, len(values))
		}
		rows = append(rows, values)
	}
	return q.Rows(rows...), nil
}

// InsertStatement renders the insert for exactly one model
func InsertStatement[M any](t Table[M], model M, shouldReplace bool) (string, error) {
	q, err := InsertQuery(t, []M{model}, shouldReplace)
	if err != nil {
		return "", err
	}
	return q.Statement()
}
