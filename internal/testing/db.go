// Package testing provides testing utilities and helpers for the dashboard.
package testing

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vmi/dashboard/internal/database"
)

// NewTestDB creates a file-backed SQLite database for testing with the schema applied.
// Returns the database instance and a cleanup function that closes the connection.
// The cleanup function is idempotent and can be called multiple times safely.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Temporary files keep every test isolated
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Dialect: database.DialectSQLite,
		Path:    tmpPath,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			t.Logf("Warning: Failed to remove temporary database file %s: %v", tmpPath, err)
		}
	}
}

// NewMemoryDB opens an in-memory database on the cgo sqlite3 driver with the schema applied.
// The pool is pinned to one connection since every :memory: connection is a separate database.
func NewMemoryDB(t *testing.T) *database.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	conn.SetMaxOpenConns(1)

	db := database.Wrap(conn, database.DialectSQLite, "memory")
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		t.Fatalf("Failed to migrate in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return db
}

// SeedAccount inserts an account row and returns its id
func SeedAccount(t *testing.T, db *database.DB, userID int64, accountType string) int64 {
	t.Helper()

	var id int64
	err := db.Conn().QueryRow(db.Rebind(`
		INSERT INTO accounts (user_id, account_type, nickname, currency, created_at)
		VALUES (?, ?, ?, 'USD', ?) RETURNING id
	`), userID, accountType, accountType, database.Now()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed account %s: %v", accountType, err)
	}
	return id
}

// CountRows returns the number of rows in a table
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return n
}
