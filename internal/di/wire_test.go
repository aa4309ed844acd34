package di

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmi/dashboard/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataDir:       dir,
		DBDriver:      config.DriverSQLite,
		EODHDBaseURL:  "http://127.0.0.1:1",
		QuoteTimeout:  time.Second,
		LogLevel:      "error",
		Port:          3000,
		DefaultUserID: 1,
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.DB)
	assert.NotNil(t, container.Catalog)
	assert.NotNil(t, container.HoldingService)
	assert.NotNil(t, container.TransactionService)
	assert.NotNil(t, container.BaselineService)
	assert.NotNil(t, container.MetricsService)
	assert.NotNil(t, container.Scheduler)
	assert.Nil(t, container.BackupService)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "vmi_primary.db"))
}

func TestWire_BadMetricsConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsConfig = filepath.Join(cfg.DataDir, "metrics.yaml")
	require.NoError(t, os.WriteFile(cfg.MetricsConfig, []byte("metrics: [{key: x, format: weird}]"), 0o644))

	_, err := Wire(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics config")
}

func TestWire_BackupEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackupBucket = "vmi-backups"
	cfg.BackupEndpoint = "http://127.0.0.1:1"
	cfg.BackupRegion = "auto"
	cfg.BackupAccessKeyID = "key"
	cfg.BackupSecretAccessKey = "secret"
	cfg.BackupSchedule = "0 3 * * *"

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.BackupService)
}

func TestWire_BadBackupSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackupBucket = "vmi-backups"
	cfg.BackupAccessKeyID = "key"
	cfg.BackupSecretAccessKey = "secret"
	cfg.BackupSchedule = "whenever"

	_, err := Wire(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register jobs")
}
