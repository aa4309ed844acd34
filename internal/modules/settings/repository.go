// Package settings provides the key-value store for user-editable values.
// Settings are stored as strings and converted to the caller's type on read.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/database"
)

// Repository handles settings database operations.
//
// Values that fail to parse fall back to the caller's default and are logged,
// so a hand-edited row never takes the dashboard down.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new settings repository.
//
// Parameters:
//   - db: Database holding the settings table
//   - log: Structured logger
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves a setting value by key.
// Returns nil if the setting doesn't exist (not an error).
//
// Parameters:
//   - ctx: Request context
//   - key: Setting key (e.g., "shiller_cape")
//
// Returns:
//   - *string: Setting value if found, nil if not found
//   - error: Error if query fails
func (r *Repository) Get(ctx context.Context, key string) (*string, error) {
	var value string
	err := r.db.Conn().QueryRowContext(ctx, r.db.Rebind("SELECT value FROM settings WHERE key = ?"), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// Set inserts or replaces a setting value.
//
// Parameters:
//   - ctx: Request context
//   - key: Setting key
//   - value: Setting value (stored as string)
//
// Returns:
//   - error: Error if database operation fails
func (r *Repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Conn().ExecContext(ctx, r.db.Rebind(`
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`), key, value, database.Now())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetAll retrieves all settings as a map.
func (r *Repository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Conn().QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get all settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan setting row")
			continue
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return result, nil
}

// GetFloat retrieves a setting value as float64.
// Returns defaultValue if the setting doesn't exist or parsing fails.
//
// Parameters:
//   - ctx: Request context
//   - key: Setting key
//   - defaultValue: Default value to return if setting not found or invalid
//
// Returns:
//   - float64: Setting value as float, or defaultValue
//   - bool: Whether a stored value was used
//   - error: Error if query fails (parsing errors are logged but not returned)
func (r *Repository) GetFloat(ctx context.Context, key string, defaultValue float64) (float64, bool, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return defaultValue, false, err
	}
	if value == nil {
		return defaultValue, false, nil
	}

	floatVal, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		r.log.Warn().
			Err(err).
			Str("key", key).
			Str("value", *value).
			Msg("Failed to parse float setting")
		return defaultValue, false, nil
	}

	return floatVal, true, nil
}

// SetFloat stores a float64 setting.
func (r *Repository) SetFloat(ctx context.Context, key string, value float64) error {
	return r.Set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64))
}

// Delete deletes a setting. Deleting a missing key is not an error.
func (r *Repository) Delete(ctx context.Context, key string) error {
	_, err := r.db.Conn().ExecContext(ctx, r.db.Rebind("DELETE FROM settings WHERE key = ?"), key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
