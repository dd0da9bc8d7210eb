// Package repository persists receipts, source files and extract jobs.
// It speaks plain database/sql so the same queries run on SQLite for
// single-binary setups and on PostgreSQL for shared ones.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type Config struct {
	Driver          string // DriverSQLite | DriverPostgres
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
}

// DB wraps the sql handle with the dialect knowledge the repositories need.
type DB struct {
	sql    *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects, pings and migrates the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Driver != DriverSQLite && cfg.Driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
	logger.Info("connecting to database", "driver", cfg.Driver)

	handle, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		handle.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		handle.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		handle.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := handle.PingContext(pingCtx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		_ = handle.Close()
		return nil, err
	}

	db := &DB{sql: handle, driver: cfg.Driver, logger: logger}
	if err := db.migrate(ctx); err != nil {
		_ = handle.Close()
		return nil, err
	}
	logger.Info("successfully connected to database")
	return db, nil
}

// Close closes the database connection gracefully.
func (d *DB) Close() {
	d.logger.Info("closing database connection")
	if err := d.sql.Close(); err != nil {
		d.logger.Error("failed to close database", "error", err)
	}
}

// HealthCheck pings the database to catch dropped connections early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.sql.PingContext(ctx)
}

// rebind rewrites ? placeholders to the $N form PostgreSQL expects.
// Queries are written with ? throughout; SQLite takes them as-is.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sql.ExecContext(ctx, d.rebind(query), args...)
}

func (d *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.sql.QueryContext(ctx, d.rebind(query), args...)
}

func (d *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.sql.QueryRowContext(ctx, d.rebind(query), args...)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS receipt_files (
		id           TEXT PRIMARY KEY,
		source_path  TEXT NOT NULL,
		content_hash TEXT NOT NULL UNIQUE,
		filename     TEXT NOT NULL,
		file_ext     TEXT NOT NULL,
		file_size    INTEGER NOT NULL,
		uploaded_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS receipts (
		id          TEXT PRIMARY KEY,
		file_id     TEXT,
		vendor      TEXT,
		amount      TEXT,
		tx_date     TEXT,
		category    TEXT NOT NULL,
		raw_text    TEXT NOT NULL,
		success     INTEGER NOT NULL,
		error       TEXT,
		source_file TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS line_items (
		id          TEXT PRIMARY KEY,
		receipt_id  TEXT NOT NULL,
		name        TEXT NOT NULL,
		quantity    INTEGER NOT NULL,
		unit_price  TEXT NOT NULL,
		total_price TEXT NOT NULL,
		position    INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extract_jobs (
		id             TEXT PRIMARY KEY,
		file_id        TEXT NOT NULL,
		receipt_id     TEXT,
		format         TEXT NOT NULL,
		status         TEXT NOT NULL,
		started_at     TEXT NOT NULL,
		finished_at    TEXT,
		error_message  TEXT,
		confidence     REAL,
		ocr_text       TEXT,
		extracted_json TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_line_items_receipt ON line_items (receipt_id)`,
	`CREATE INDEX IF NOT EXISTS idx_extract_jobs_file ON extract_jobs (file_id)`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_category ON receipts (category)`,
}

func (d *DB) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			d.logger.Error("migration failed", "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// timestamps are stored as RFC 3339 text so both dialects round-trip them.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
