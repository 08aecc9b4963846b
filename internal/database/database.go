package database

import (
	"context"
	"fmt"
	"os"
	"net/url"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/saltyorg/userstore/internal/users"
)

// DefaultPath is where the store lives when no path is configured.
const DefaultPath = "./db/development.sqlite"

const instrumentationName = "github.com/saltyorg/userstore/internal/database"

// DB is the SQLite-backed users.Store. It holds a single connection for its
// whole lifetime; Close releases it.
type DB struct {
	conn    *sqlx.DB
	path    string
	timeout time.Duration
	tracer  trace.Tracer
	metrics *metrics
}

var _ users.Store = (*DB)(nil)

// Option configures a DB.
type Option func(*DB)

// WithQueryTimeout bounds every statement. Zero means no deadline beyond the caller's context.
func WithQueryTimeout(d time.Duration) Option {
	return func(db *DB) {
		db.timeout = d
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(db *DB) {
		db.tracer = tracer
	}
}

// WithMeter overrides the global OpenTelemetry meter.
func WithMeter(meter metric.Meter) Option {
	return func(db *DB) {
		db.metrics = newMetrics(meter)
	}
}

// New opens the database file at path, creating it and its directory if needed.
// Failures are returned as a StoreError matching users.ErrStoreUnavailable.
func New(ctx context.Context, path string, opts ...Option) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, users.NewStoreError("open", users.ErrStoreUnavailable, fmt.Errorf("failed to create database directory: %w", err))
		}
	}

	conn, err := sqlx.Open("sqlite", dsnForPath(path))
	if err != nil {
		return nil, users.NewStoreError("open", users.ErrStoreUnavailable, fmt.Errorf("failed to open database: %w", err))
	}

	// One connection for the process; SQLite serializes writes anyway.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, users.NewStoreError("open", users.ErrStoreUnavailable, fmt.Errorf("failed to ping database: %w", err))
	}

	db := &DB{
		conn:   conn,
		path:   path,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.metrics == nil {
		db.metrics = newMetrics(otel.Meter(instrumentationName))
	}

	log.Debug().Str("path", path).Msg("Database connection established")

	return db, nil
}

// dsnForPath builds a file: URI so characters such as '?' and '#' stay part
// of the file name instead of starting the query or fragment.
func dsnForPath(path string) string {
	const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if path == ":memory:" {
		return path + "?" + pragmas
	}
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?" + pragmas
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close releases the connection.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}
