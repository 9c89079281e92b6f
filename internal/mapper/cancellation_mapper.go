package mapper

import (
	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/model"
	"retention-flow-be/pkg/abtest"
)

type CancellationMapper struct{}

func NewCancellationMapper() *CancellationMapper {
	return &CancellationMapper{}
}

func (m *CancellationMapper) ToEntity(c *model.Cancellation) *entity.Cancellation {
	if c == nil {
		return nil
	}
	return &entity.Cancellation{
		Id:               c.Id,
		UserId:           c.UserId,
		SubscriptionId:   c.SubscriptionId,
		DownsellVariant:  abtest.Variant(c.DownsellVariant),
		Reason:           c.Reason,
		Amount:           c.Amount,
		Feedback:         c.Feedback,
		AcceptedDownsell: c.AcceptedDownsell,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func (m *CancellationMapper) ToModel(c *entity.Cancellation) *model.Cancellation {
	if c == nil {
		return nil
	}
	return &model.Cancellation{
		Id:               c.Id,
		UserId:           c.UserId,
		SubscriptionId:   c.SubscriptionId,
		DownsellVariant:  string(c.DownsellVariant),
		Reason:           c.Reason,
		Amount:           c.Amount,
		Feedback:         c.Feedback,
		AcceptedDownsell: c.AcceptedDownsell,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
