// Package database provides database connection and initialization functionality.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// Dialect identifies the SQL flavour spoken by the underlying driver
type Dialect string

const (
	// DialectSQLite - embedded single-file database (default)
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres - external PostgreSQL server
	DialectPostgres Dialect = "postgres"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DB wraps the database connection with production-grade configuration
type DB struct {
	conn    *sql.DB
	dialect Dialect
	path    string
	name    string // Database name for logging
}

// Config holds database configuration
type Config struct {
	Dialect Dialect
	Path    string // SQLite file path or file: URI
	DSN     string // Postgres connection string
	Name    string // Friendly name for logging
}

// New creates a new database connection
func New(cfg Config) (*DB, error) {
	if cfg.Dialect == "" {
		cfg.Dialect = DialectSQLite
	}

	var (
		conn *sql.DB
		err  error
	)

	switch cfg.Dialect {
	case DialectSQLite:
		if !strings.HasPrefix(cfg.Path, "file:") {
			absPath, err := filepath.Abs(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
			cfg.Path = absPath
		}
		conn, err = sql.Open("sqlite", buildConnectionString(cfg.Path))
	case DialectPostgres:
		conn, err = sql.Open("postgres", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn, cfg.Dialect)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{
		conn:    conn,
		dialect: cfg.Dialect,
		path:    cfg.Path,
		name:    cfg.Name,
	}, nil
}

// Wrap adopts an already opened connection, e.g. one created by a test with another driver.
func Wrap(conn *sql.DB, dialect Dialect, name string) *DB {
	return &DB{conn: conn, dialect: dialect, name: name}
}

// buildConnectionString creates the SQLite connection string with PRAGMAs
func buildConnectionString(path string) string {
	connStr := path + "?_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(NORMAL)"
	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=busy_timeout(5000)"
	return connStr
}

// configureConnectionPool sets up the connection pool for a long-running server
func configureConnectionPool(conn *sql.DB, dialect Dialect) {
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	if dialect == DialectSQLite {
		// single writer; callers inside a transaction must only use the *sql.Tx
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		return
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the database name for logging
func (db *DB) Name() string {
	return db.name
}

// Dialect returns the SQL dialect of the connection
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Path returns the database file path (empty for postgres)
func (db *DB) Path() string {
	return db.path
}

// Rebind rewrites `?` placeholders into the positional form the dialect expects.
// Queries are always written with `?`; postgres receives `$1, $2, ...`.
func (db *DB) Rebind(query string) string {
	return Rebind(db.dialect, query)
}

// Rebind is the dialect-level implementation of DB.Rebind
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inString := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inString = !inString
			b.WriteByte(c)
		case c == '?' && !inString:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Migrate applies the embedded schema for the connection's dialect.
// Every statement is idempotent (CREATE ... IF NOT EXISTS).
func (db *DB) Migrate() error {
	content, err := schemaFS.ReadFile("schemas/" + string(db.dialect) + "_schema.sql")
	if err != nil {
		return fmt.Errorf("no schema for dialect %s: %w", db.dialect, err)
	}

	return WithTransaction(context.Background(), db.conn, func(tx *sql.Tx) error {
		for _, stmt := range splitStatements(string(content)) {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to execute schema statement for %s: %w", db.name, err)
			}
		}
		return nil
	})
}

// splitStatements breaks a schema file into individual statements
func splitStatements(schema string) []string {
	var stmts []string
	for _, part := range strings.Split(schema, ";") {
		lines := make([]string, 0)
		for _, line := range strings.Split(part, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if len(lines) > 0 {
			stmts = append(stmts, strings.Join(lines, "\n"))
		}
	}
	return stmts
}

// WithTransaction executes a function within a database transaction.
// It handles begin, commit, rollback, panic recovery, and error wrapping automatically.
// If the function returns an error or panics, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func WithTransaction(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			err = fmt.Errorf("panic in transaction: %v", p)
		} else if err != nil {
			rollbackErr := tx.Rollback()
			if rollbackErr != nil {
				err = fmt.Errorf("transaction failed: %w (rollback also failed: %v)", err, rollbackErr)
			} else {
				err = fmt.Errorf("transaction failed: %w", err)
			}
		} else {
			if commitErr := tx.Commit(); commitErr != nil {
				err = fmt.Errorf("failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck pings the database
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed for %s: %w", db.name, err)
	}
	return nil
}

// Now returns the timestamp format stored in created_at/updated_at columns
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
