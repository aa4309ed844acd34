package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/config"
	"github.com/vmi/dashboard/internal/database"
)

// InitializeDatabase opens the configured database and applies the schema
func InitializeDatabase(cfg *config.Config, log zerolog.Logger) (*database.DB, error) {
	dbCfg := database.Config{Name: "primary"}
	switch cfg.DBDriver {
	case config.DriverPostgres:
		dbCfg.Dialect = database.DialectPostgres
		dbCfg.DSN = cfg.DatabaseURL
	default:
		dbCfg.Dialect = database.DialectSQLite
		dbCfg.Path = cfg.DatabasePath()
	}

	db, err := database.New(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().
		Str("dialect", string(db.Dialect())).
		Str("path", db.Path()).
		Msg("Database ready")
	return db, nil
}
