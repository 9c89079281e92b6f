package unitofwork

import (
	"context"

	"retention-flow-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SubscriptionRepository() contract.SubscriptionRepository
	CancellationRepository() contract.CancellationRepository
	AnalyticsRepository() contract.AnalyticsRepository
	MetricsRepository() contract.MetricsRepository
}
