package database

import (
	"fmt"

	"github.com/koba/litestore/internal/cursor"
	"github.com/koba/litestore/internal/query"
	"github.com/koba/litestore/internal/table"
)

// RowDecoder turns one row into a value
type RowDecoder[R any] func(c *cursor.Cursor) (R, error)

// LoadRows runs q and decodes every row with decode. Rows that fail to
// decode are skipped, not fatal; callers needing strict reads must check
// the count themselves.
func LoadRows[R any](db Database, q query.Query, decode RowDecoder[R]) ([]R, error) {
	var values []R
	err := db.Iterate(q, func(c *cursor.Cursor) bool {
		value, err := decode(c)
		if err != nil {
			db.Logger().Debug("skipping row", "error", err)
			return true
		}
		values = append(values, value)
		return true
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// Load runs a select against t and deserializes each row into a model
func Load[M any](db Database, t table.Table[M], q query.SelectQuery) ([]M, error) {
	return LoadRows[M](db, q, t.Deserialize)
}

// LoadOne loads the first matching model, or nil when none matches
func LoadOne[M any](db Database, t table.Table[M], q query.SelectQuery) (*M, error) {
	models, err := Load(db, t, q.Limit(1))
	if err != nil || len(models) == 0 {
		return nil, err
	}
	return &models[0], nil
}

// LoadScalar returns the first column of the first row, or nil when there
// is no row or the cell is NULL.
func LoadScalar[S cursor.Scalar](db Database, q query.Query) (*S, error) {
	var (
		result *S
		err    error
	)
	iterErr := db.Iterate(q, func(c *cursor.Cursor) bool {
		result, err = cursor.Optional[S](c.Column(0))
		return false
	})
	if iterErr != nil {
		return nil, iterErr
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Insert serializes models and inserts them in one transaction. The table is
// created first if missing. No models is a no-op.
func Insert[M any](db Database, t table.Table[M], models []M, shouldReplace bool) error {
	if len(models) == 0 {
		return nil
	}

	q, err := table.InsertQuery(t, models, shouldReplace)
	if err != nil {
		return err
	}
	stmts, err := q.Statement()
	if err != nil {
		return fmt.Errorf("failed to compile insert into %s: %w", t.Name(), err)
	}

	if err := db.CreateTable(t); err != nil {
		return err
	}
	return db.ExecuteTransaction(stmts)
}

// InsertAll inserts models, replacing rows that conflict
func InsertAll[M any](db Database, t table.Table[M], models []M) error {
	return Insert(db, t, models, true)
}

// InsertOne inserts a single model
func InsertOne[M any](db Database, t table.Table[M], model M, shouldReplace bool) error {
	return Insert(db, t, []M{model}, shouldReplace)
}
