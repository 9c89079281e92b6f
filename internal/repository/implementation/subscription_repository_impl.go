package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/mapper"
	"retention-flow-be/internal/model"
	"retention-flow-be/internal/repository/contract"
	"retention-flow-be/internal/repository/repoerr"
	"retention-flow-be/internal/repository/scope"
	"retention-flow-be/internal/repository/specification"
)

type subscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &subscriptionRepositoryImpl{db: db, mapper: mapper.NewSubscriptionMapper()}
}

func (r *subscriptionRepositoryImpl) Create(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return repoerr.Classify(err)
	}
	subscription.Id = m.Id
	return nil
}

func (r *subscriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, repoerr.Classify(err)
	}
	subscriptions := make([]*entity.Subscription, 0, len(models))
	for _, m := range models {
		subscriptions = append(subscriptions, r.mapper.ToEntity(m))
	}
	return subscriptions, nil
}

func (r *subscriptionRepositoryImpl) FindActiveByUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	var m model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status <> ?", userId, string(entity.SubscriptionStatusCancelled)).
		Scopes(scope.OrderByCreatedDesc).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repoerr.ErrNotFound
		}
		return nil, repoerr.Classify(err)
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *subscriptionRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SubscriptionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return repoerr.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return repoerr.ErrNotFound
	}
	return nil
}
