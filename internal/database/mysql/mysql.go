// Package mysql implements database.DB for MySQL on top of database/sql
// and go-sql-driver.
package mysql

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver

	"github.com/kdutta/mysqlmeta/internal/database"
	"github.com/kdutta/mysqlmeta/internal/errs"
)

// DB implements database.DB for MySQL using database/sql.
// It is safe for concurrent use by multiple goroutines.
type DB struct {
	sqlDB *sql.DB
	cfg   *database.Config
}

// New creates a new MySQL DB instance (does not connect yet).
func New(cfg *database.Config) *DB {
	return &DB{cfg: cfg}
}

// Connect opens and verifies the MySQL connection pool.
func (db *DB) Connect(ctx context.Context) error {
	sqlDB, err := buildPool(db.cfg)
	if err != nil {
		return err
	}

	pingCtx := ctx
	if db.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, db.cfg.ConnectTimeout)
		defer cancel()
	}
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return mapError(err, "ping failed")
	}

	db.sqlDB = sqlDB
	return nil
}

// Close shuts down the connection pool.
func (db *DB) Close(_ context.Context) error {
	if db.sqlDB != nil {
		return db.sqlDB.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.sqlDB.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Query executes a query returning multiple rows.
func (db *DB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := db.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &mysqlRows{rows: rows}, nil
}

// QueryRow executes a query returning a single row.
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return &mysqlRow{row: db.sqlDB.QueryRowContext(ctx, query, args...)}
}

// Exec executes a statement returning rows affected.
func (db *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := db.sqlDB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "exec failed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err, "rows affected unavailable")
	}
	return n, nil
}

// --- sql.DB type wrappers ---

type mysqlRows struct{ rows *sql.Rows }

func (r *mysqlRows) Next() bool                 { return r.rows.Next() }
func (r *mysqlRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *mysqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *mysqlRows) Close()                     { _ = r.rows.Close() }
func (r *mysqlRows) Err() error                 { return r.rows.Err() }

type mysqlRow struct{ row *sql.Row }

func (r *mysqlRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, "record not found", err)
	}
	if err != nil {
		return mapError(err, "scan failed")
	}
	return nil
}
