package di

import (
	"github.com/vmi/dashboard/internal/backup"
	"github.com/vmi/dashboard/internal/clients/eodhd"
	"github.com/vmi/dashboard/internal/database"
	"github.com/vmi/dashboard/internal/modules/accounts"
	"github.com/vmi/dashboard/internal/modules/baseline"
	"github.com/vmi/dashboard/internal/modules/contributions"
	"github.com/vmi/dashboard/internal/modules/gauge"
	"github.com/vmi/dashboard/internal/modules/holdings"
	"github.com/vmi/dashboard/internal/modules/metrics"
	"github.com/vmi/dashboard/internal/modules/prices"
	"github.com/vmi/dashboard/internal/modules/settings"
	"github.com/vmi/dashboard/internal/modules/transactions"
	"github.com/vmi/dashboard/internal/scheduler"
)

// Container holds every wired dependency
type Container struct {
	// Database
	DB *database.DB

	// Configuration loaded at startup
	Catalog *gauge.Catalog

	// Clients
	QuoteClient *eodhd.Client

	// Repositories
	AccountRepo      *accounts.Repository
	HoldingRepo      *holdings.Repository
	TransactionRepo  *transactions.Repository
	ContributionRepo *contributions.Repository
	SettingsRepo     *settings.Repository

	// Services
	PriceService       *prices.Service
	HoldingService     *holdings.Service
	TransactionService *transactions.Service
	BaselineService    *baseline.Service
	MetricsService     *metrics.Service
	BackupService      *backup.Service // nil when no bucket is configured

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// Close releases the database connection
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
