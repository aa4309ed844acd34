package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/backup"
	"github.com/vmi/dashboard/internal/clients/eodhd"
	"github.com/vmi/dashboard/internal/config"
	"github.com/vmi/dashboard/internal/modules/baseline"
	"github.com/vmi/dashboard/internal/modules/gauge"
	"github.com/vmi/dashboard/internal/modules/holdings"
	"github.com/vmi/dashboard/internal/modules/metrics"
	"github.com/vmi/dashboard/internal/modules/prices"
	"github.com/vmi/dashboard/internal/modules/transactions"
)

// InitializeServices loads the gauge catalog, builds the quote client and
// creates every service
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	catalog, err := loadCatalog(cfg.MetricsConfig)
	if err != nil {
		return err
	}
	container.Catalog = catalog

	if cfg.EODHDToken == "" {
		log.Warn().Msg("EODHD_API_TOKEN not set, live quotes will fail")
	}
	container.QuoteClient = eodhd.NewClient(cfg.EODHDBaseURL, cfg.EODHDToken, cfg.QuoteTimeout, log)

	container.PriceService = prices.NewService(container.QuoteClient, log)
	container.HoldingService = holdings.NewService(
		container.DB,
		container.HoldingRepo,
		container.AccountRepo,
		container.PriceService,
		log,
	)
	container.TransactionService = transactions.NewService(
		container.DB,
		container.TransactionRepo,
		container.AccountRepo,
		container.HoldingRepo,
		log,
	)
	container.BaselineService = baseline.NewService(
		container.DB,
		container.QuoteClient,
		container.AccountRepo,
		container.HoldingRepo,
		container.TransactionRepo,
		container.ContributionRepo,
		log,
	)
	container.MetricsService = metrics.NewService(container.PriceService, container.SettingsRepo, catalog, log)

	if cfg.BackupEnabled() {
		svc, err := newBackupService(container, cfg, log)
		if err != nil {
			return err
		}
		container.BackupService = svc
	} else {
		log.Info().Msg("BACKUP_S3_BUCKET not set, database backups disabled")
	}

	return nil
}

// NewBackupStore builds the object store for the configured backup bucket
func NewBackupStore(cfg *config.Config, log zerolog.Logger) (*backup.S3Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := backup.NewS3Store(ctx, backup.S3Config{
		Endpoint:        cfg.BackupEndpoint,
		Region:          cfg.BackupRegion,
		Bucket:          cfg.BackupBucket,
		AccessKeyID:     cfg.BackupAccessKeyID,
		SecretAccessKey: cfg.BackupSecretAccessKey,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup store: %w", err)
	}
	return store, nil
}

func newBackupService(container *Container, cfg *config.Config, log zerolog.Logger) (*backup.Service, error) {
	store, err := NewBackupStore(cfg, log)
	if err != nil {
		return nil, err
	}
	return backup.NewService(container.DB, store, filepath.Join(cfg.DataDir, "backups"), log), nil
}

func loadCatalog(path string) (*gauge.Catalog, error) {
	catalog, err := gauge.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics config %s: %w", path, err)
	}
	return catalog, nil
}
