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
	"retention-flow-be/internal/repository/scope"
	"retention-flow-be/internal/repository/specification"
)

type analyticsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalyticsMapper
}

func NewAnalyticsRepository(db *gorm.DB) contract.AnalyticsRepository {
	return &analyticsRepositoryImpl{db: db, mapper: mapper.NewAnalyticsMapper()}
}

func (r *analyticsRepositoryImpl) CreateEvent(ctx context.Context, event *entity.AnalyticsEvent) error {
	m, err := r.mapper.EventToModel(event)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return repoerr.Classify(err)
	}
	return nil
}

func (r *analyticsRepositoryImpl) CreateEvents(ctx context.Context, events []*entity.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}
	models := make([]*model.AnalyticsEvent, 0, len(events))
	for _, e := range events {
		m, err := r.mapper.EventToModel(e)
		if err != nil {
			return err
		}
		models = append(models, m)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return repoerr.Classify(err)
	}
	return nil
}

func (r *analyticsRepositoryImpl) FindEvents(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsEvent, error) {
	var models []*model.AnalyticsEvent
	query := r.db.WithContext(ctx).Scopes(scope.OrderByCreatedAsc)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, repoerr.Classify(err)
	}
	events := make([]*entity.AnalyticsEvent, 0, len(models))
	for _, m := range models {
		events = append(events, r.mapper.EventToEntity(m))
	}
	return events, nil
}

func (r *analyticsRepositoryImpl) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.AnalyticsEvent{})
	if result.Error != nil {
		return 0, repoerr.Classify(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *analyticsRepositoryImpl) UpsertJourney(ctx context.Context, journey *entity.UserJourney) error {
	m, err := r.mapper.JourneyToModel(journey)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"steps", "outcome", "completed_at", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return repoerr.Classify(err)
	}
	return nil
}

func (r *analyticsRepositoryImpl) FindJourneys(ctx context.Context, specs ...specification.Specification) ([]*entity.UserJourney, error) {
	var models []*model.UserJourney
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, repoerr.Classify(err)
	}
	journeys := make([]*entity.UserJourney, 0, len(models))
	for _, m := range models {
		journeys = append(journeys, r.mapper.JourneyToEntity(m))
	}
	return journeys, nil
}
