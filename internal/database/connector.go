package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/koba/litestore/internal/cursor"
	"github.com/koba/litestore/internal/query"
	"github.com/koba/litestore/internal/table"
)

const driverName = "sqlite"

var (
	ErrOpen           = errors.New("open failed")
	ErrClose          = errors.New("no open connection to close")
	ErrPrepare        = errors.New("prepare failed")
	ErrStep           = errors.New("step failed")
	ErrExec           = errors.New("exec failed")
	ErrTransaction    = errors.New("transaction failed")
	ErrMigration      = errors.New("migration failed")
	ErrInvalidVersion = errors.New("invalid schema version")
)

// Config holds connection configuration
type Config struct {
	// Path is the database file, or ":memory:"
	Path string
	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Database is the set of operations the typed loaders build on
type Database interface {
	Close() error
	UserVersion() (int32, error)
	SetUserVersion(version int32) error
	CreateTable(def table.Definition) error
	DropTable(def table.Definition) error
	Migrate(def table.Definition, version int32) error
	Update(def table.Definition, q query.UpdateQuery) error
	Delete(def table.Definition, q query.DeleteQuery) error
	ExecuteTransaction(statements string) error
	// Iterate runs q and hands each row to visit until visit returns false
	Iterate(q query.Query, visit func(*cursor.Cursor) bool) error
	Logger() *slog.Logger
}

// Open opens the SQLite database at cfg.Path
func Open(cfg Config) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOpen)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sqlx.Open(driverName, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOpen, err)
	}

	// One connection: the transaction wrapper and its forced END TRANSACTION
	// must reach the same engine connection, and :memory: is per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s", ErrOpen, err)
	}

	logger.Debug("opened database", "path", cfg.Path)
	return &SQLite{db: db, path: cfg.Path, logger: logger}, nil
}
