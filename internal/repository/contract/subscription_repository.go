package contract

import (
	"context"

	"github.com/google/uuid"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/repository/specification"
)

// SubscriptionRepository defines operations on subscriptions.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error)
	// FindActiveByUser returns the user's newest non-cancelled subscription,
	// or repoerr.ErrNotFound.
	FindActiveByUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SubscriptionStatus) error
}
