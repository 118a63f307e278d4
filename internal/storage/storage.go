// Package storage provides the data persistence layer for shopkeep.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/Veraticus/shopkeep/internal/service"
	"github.com/jmoiron/sqlx"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Options configures the database connection.
type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLStorage implements service.Storage on top of sqlx for SQLite and PostgreSQL.
type SQLStorage struct {
	*queries
	db     *sqlx.DB
	logger *slog.Logger
}

// queries holds every data operation. It runs against either the pool or an
// open transaction, so SQLStorage and sqlTransaction share one code path.
type queries struct {
	ext     sqlx.ExtContext
	builder sq.StatementBuilderType
	driver  string
	now     func() time.Time
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*SQLStorage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn, err := prepareDSN(opts)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// SQLite doesn't benefit from multiple connections, and an in-memory
		// database only lives as long as its single connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxIdleConns)
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingErr := common.WithRetry(ctx, func() error {
		return db.PingContext(ctx)
	}, common.RetryOptions{
		Logger:       logger,
		Operation:    "database ping",
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	})
	if pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	logger.Debug("database connected", "driver", opts.Driver)

	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an existing connection. The driver name of db selects the
// SQL dialect.
func NewWithDB(db *sqlx.DB, logger *slog.Logger) *SQLStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStorage{
		queries: newQueries(db, db.DriverName()),
		db:      db,
		logger:  logger,
	}
}

func newQueries(ext sqlx.ExtContext, driver string) *queries {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &queries{
		ext:     ext,
		builder: builder,
		driver:  driver,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func prepareDSN(opts Options) (string, error) {
	switch opts.Driver {
	case DriverSQLite:
		if err := validateString(opts.DSN, "dsn"); err != nil {
			return "", err
		}
		path := opts.DSN
		if !strings.HasPrefix(path, ":memory:") && !strings.HasPrefix(path, "file:") {
			if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
				return "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + "_foreign_keys=on&_busy_timeout=5000", nil
	case DriverPostgres:
		if err := validateString(opts.DSN, "dsn"); err != nil {
			return "", err
		}
		return opts.DSN, nil
	default:
		return "", fmt.Errorf("%w: unsupported driver %q", common.ErrInvalidConfig, opts.Driver)
	}
}

// DB exposes the underlying connection pool.
func (s *SQLStorage) DB() *sqlx.DB {
	return s.db
}

// Ping verifies the database is reachable.
func (s *SQLStorage) Ping(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	q := newQueries(tx, s.queries.driver)
	q.now = s.queries.now

	return &sqlTransaction{queries: q, tx: tx}, nil
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func WithTx(ctx context.Context, store service.Storage, fn func(service.Transaction) error) (err error) {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sqlTransaction wraps sqlx.Tx to implement service.Transaction.
type sqlTransaction struct {
	*queries
	tx *sqlx.Tx
}

func (t *sqlTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqlTransaction) Ping(_ context.Context) error {
	return nil
}

func (t *sqlTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqlTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqlTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}

// dateOnly normalizes t to midnight UTC so DATE columns compare consistently
// across drivers.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var (
	_ service.Storage     = (*SQLStorage)(nil)
	_ service.Transaction = (*sqlTransaction)(nil)
)
