package database

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/koba/litestore/internal/cursor"
	"github.com/koba/litestore/internal/query"
	"github.com/koba/litestore/internal/table"
)

const (
	beginTransaction  = "BEGIN TRANSACTION;"
	commitTransaction = "COMMIT;"
	endTransaction    = "END TRANSACTION"
	rollback          = "ROLLBACK"
)

// SQLite implements Database on top of the modernc SQLite driver
type SQLite struct {
	db     *sqlx.DB
	path   string
	logger *slog.Logger
}

var _ Database = (*SQLite)(nil)

func (s *SQLite) Logger() *slog.Logger { return s.logger }

// Close closes the connection. Closing twice reports ErrClose.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return ErrClose
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("%w: %s", ErrClose, err)
	}
	s.logger.Debug("closed database", "path", s.path)
	return nil
}

func (s *SQLite) conn() (*sqlx.DB, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("%w: database is not open", ErrExec)
	}
	return s.db, nil
}

// UserVersion reads PRAGMA user_version
func (s *SQLite) UserVersion() (int32, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var version int32
	if err := db.Get(&version, "PRAGMA user_version;"); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrStep, err)
	}
	return version, nil
}

// SetUserVersion writes PRAGMA user_version
func (s *SQLite) SetUserVersion(version int32) error {
	if version < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}
	return s.execRaw("PRAGMA user_version = " + strconv.FormatInt(int64(version), 10) + ";")
}

// CreateTable runs the table's CREATE TABLE IF NOT EXISTS
func (s *SQLite) CreateTable(def table.Definition) error {
	if err := table.Validate(def); err != nil {
		return err
	}
	return s.step(table.CreateStatement(def))
}

// DropTable runs the table's DROP TABLE IF EXISTS
func (s *SQLite) DropTable(def table.Definition) error {
	if err := table.Validate(def); err != nil {
		return err
	}
	return s.step(table.DropStatement(def))
}

// Update creates the table if needed and runs q
func (s *SQLite) Update(def table.Definition, q query.UpdateQuery) error {
	stmt, err := q.Statement()
	if err != nil {
		return err
	}
	if err := s.CreateTable(def); err != nil {
		return err
	}
	return s.step(stmt)
}

// Delete creates the table if needed and runs q
func (s *SQLite) Delete(def table.Definition, q query.DeleteQuery) error {
	stmt, err := q.Statement()
	if err != nil {
		return err
	}
	if err := s.CreateTable(def); err != nil {
		return err
	}
	return s.step(stmt)
}

// ExecuteTransaction wraps statements in BEGIN / COMMIT. A failed batch is
// rolled back, and END TRANSACTION is always issued afterwards so no lock
// outlives a failed COMMIT.
func (s *SQLite) ExecuteTransaction(statements string) error {
	if statements == "" {
		return nil
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	text := beginTransaction + "\n" + statements + "\n" + commitTransaction
	s.logger.Debug("executing transaction", "sql", text)

	_, execErr := db.Exec(text)
	if execErr != nil {
		if _, err := db.Exec(rollback); err != nil {
			s.logger.Warn("rollback after failed transaction", "error", err)
		}
	}
	s.endTransaction()

	if execErr != nil {
		return fmt.Errorf("%w: %s", ErrTransaction, execErr)
	}
	return nil
}

// Iterate compiles q, steps every row and hands each one to visit on a
// fresh cursor. The statement is finalized on every path. visit runs while
// the only connection is busy and must not issue statements itself.
func (s *SQLite) Iterate(q query.Query, visit func(*cursor.Cursor) bool) error {
	text, err := q.Statement()
	if err != nil {
		return err
	}
	db, err := s.conn()
	if err != nil {
		return err
	}

	s.logger.Debug("querying", "sql", text)
	stmt, err := db.Preparex(text)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPrepare, err)
	}
	defer stmt.Close()

	// The driver compiles lazily, so a statement that fails to start did not
	// prepare.
	rows, err := stmt.Queryx()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPrepare, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrStep, err)
	}

	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			s.logger.Debug("skipping unreadable row", "error", err)
			continue
		}
		if !visit(cursor.New(cells, columns)) {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %s", ErrStep, err)
	}
	return nil
}

// step prepares and runs a statement that returns no rows
func (s *SQLite) step(text string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	s.logger.Debug("executing", "sql", text)
	stmt, err := db.Preparex(text)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPrepare, err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(); err != nil {
		return fmt.Errorf("%w: %s", ErrStep, err)
	}
	return nil
}

// execRaw runs DDL, pragma or wrapper text directly
func (s *SQLite) execRaw(text string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	s.logger.Debug("executing", "sql", text)
	if _, err := db.Exec(text); err != nil {
		return fmt.Errorf("%w: %s", ErrExec, err)
	}
	return nil
}

func (s *SQLite) endTransaction() {
	// Fails harmlessly when no transaction is open.
	if _, err := s.db.Exec(endTransaction); err != nil {
		s.logger.Debug("end transaction", "error", err)
	}
}
