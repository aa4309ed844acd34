package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Dialect: DialectSQLite,
		Path:    filepath.Join(t.TempDir(), "test.db"),
		Name:    "test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate())
	return db
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM holdings WHERE user_id = ? AND symbol = ? AND notes <> '?'"

	assert.Equal(t, q, Rebind(DialectSQLite, q))
	assert.Equal(t,
		"SELECT * FROM holdings WHERE user_id = $1 AND symbol = $2 AND notes <> '?'",
		Rebind(DialectPostgres, q))
}

func TestSplitStatements(t *testing.T) {
	schema := `
-- comment only
CREATE TABLE a (id INTEGER);

-- another
CREATE INDEX idx_a ON a(id);
`
	stmts := splitStatements(schema)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id INTEGER)", stmts[0])
	assert.Equal(t, "CREATE INDEX idx_a ON a(id)", stmts[1])
}

func TestMigrate_CreatesTablesAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"accounts", "holdings", "transactions", "contribution_schedules", "settings"} {
		var name string
		err := db.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	assert.NoError(t, db.Migrate())
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(context.Background(), db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)", "k", "v", Now())
		return err
	})
	require.NoError(t, err)

	var value string
	require.NoError(t, db.Conn().QueryRow("SELECT value FROM settings WHERE key = 'k'").Scan(&value))
	assert.Equal(t, "v", value)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), db.Conn(), func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)", "k", "v", Now()); err != nil {
			return err
		}
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM settings").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_RecoversPanic(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(context.Background(), db.Conn(), func(tx *sql.Tx) error {
		panic("unexpected")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in transaction")
}

func TestWithTransaction_NilConnection(t *testing.T) {
	err := WithTransaction(context.Background(), nil, func(tx *sql.Tx) error { return nil })
	assert.Error(t, err)
}

func TestNew_UnsupportedDialect(t *testing.T) {
	_, err := New(Config{Dialect: "oracle"})
	assert.ErrorContains(t, err, "unsupported dialect")
}
