package di

import (
	"github.com/rs/zerolog"

	"github.com/vmi/dashboard/internal/modules/accounts"
	"github.com/vmi/dashboard/internal/modules/contributions"
	"github.com/vmi/dashboard/internal/modules/holdings"
	"github.com/vmi/dashboard/internal/modules/settings"
	"github.com/vmi/dashboard/internal/modules/transactions"
)

// InitializeRepositories creates all repositories on container.DB
func InitializeRepositories(container *Container, log zerolog.Logger) {
	container.AccountRepo = accounts.NewRepository(container.DB, log)
	container.HoldingRepo = holdings.NewRepository(container.DB, log)
	container.TransactionRepo = transactions.NewRepository(container.DB, log)
	container.ContributionRepo = contributions.NewRepository(container.DB, log)
	container.SettingsRepo = settings.NewRepository(container.DB, log)
}
