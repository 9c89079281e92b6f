package contract

import (
	"context"
	"time"

	"retention-flow-be/internal/entity"
)

// MetricsRepository defines operations on ETL output tables.
type MetricsRepository interface {
	// UpsertDaily writes the rollup keyed by date, replacing all counters
	// on conflict so re-running a day is idempotent.
	UpsertDaily(ctx context.Context, metric *entity.DailyMetric) error
	FindDailyRange(ctx context.Context, from, to time.Time) ([]*entity.DailyMetric, error)

	// UpsertCohort writes the cohort keyed by (cohort_month, variant).
	UpsertCohort(ctx context.Context, cohort *entity.UserCohort) error
	FindAllCohorts(ctx context.Context) ([]*entity.UserCohort, error)
}
