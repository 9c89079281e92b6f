package implementation

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/mapper"
	"retention-flow-be/internal/model"
	"retention-flow-be/internal/repository/contract"
	"retention-flow-be/internal/repository/repoerr"
)

type metricsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MetricsMapper
}

func NewMetricsRepository(db *gorm.DB) contract.MetricsRepository {
	return &metricsRepositoryImpl{db: db, mapper: mapper.NewMetricsMapper()}
}

var dailyMetricColumns = []string{
	"total_visitors", "total_users", "total_completions", "cancellation_attempts",
	"conversion_rate",
	"funnel_step1", "funnel_step2", "funnel_step3", "funnel_step4", "funnel_step5",
	"variant_a_users", "variant_b_users", "variant_a_conversions", "variant_b_conversions",
	"downsell_offers_shown", "downsell_accepted", "cancellations",
	"revenue_at_risk_cents", "revenue_saved_cents", "updated_at",
}

func (r *metricsRepositoryImpl) UpsertDaily(ctx context.Context, metric *entity.DailyMetric) error {
	m := r.mapper.DailyToModel(metric)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.AssignmentColumns(dailyMetricColumns),
		}).
		Create(m).Error
	if err != nil {
		return repoerr.Classify(err)
	}
	return nil
}

func (r *metricsRepositoryImpl) FindDailyRange(ctx context.Context, from, to time.Time) ([]*entity.DailyMetric, error) {
	var models []*model.DailyMetric
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Order("date ASC").
		Find(&models).Error
	if err != nil {
		return nil, repoerr.Classify(err)
	}
	metrics := make([]*entity.DailyMetric, 0, len(models))
	for _, m := range models {
		metrics = append(metrics, r.mapper.DailyToEntity(m))
	}
	return metrics, nil
}

func (r *metricsRepositoryImpl) UpsertCohort(ctx context.Context, cohort *entity.UserCohort) error {
	m := r.mapper.CohortToModel(cohort)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cohort_month"}, {Name: "variant"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_users",
				"retained_month1", "retained_month2", "retained_month3",
				"retention_month1", "retention_month2", "retention_month3",
				"updated_at",
			}),
		}).
		Create(m).Error
	if err != nil {
		return repoerr.Classify(err)
	}
	return nil
}

func (r *metricsRepositoryImpl) FindAllCohorts(ctx context.Context) ([]*entity.UserCohort, error) {
	var models []*model.UserCohort
	err := r.db.WithContext(ctx).
		Order("cohort_month DESC, variant ASC").
		Find(&models).Error
	if err != nil {
		return nil, repoerr.Classify(err)
	}
	cohorts := make([]*entity.UserCohort, 0, len(models))
	for _, m := range models {
		cohorts = append(cohorts, r.mapper.CohortToEntity(m))
	}
	return cohorts, nil
}
