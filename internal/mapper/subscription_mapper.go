package mapper

import (
	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                s.Id,
		UserId:            s.UserId,
		MonthlyPriceCents: s.MonthlyPriceCents,
		Status:            entity.SubscriptionStatus(s.Status),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                s.Id,
		UserId:            s.UserId,
		MonthlyPriceCents: s.MonthlyPriceCents,
		Status:            string(s.Status),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
