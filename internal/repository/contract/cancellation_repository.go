package contract

import (
	"context"

	"github.com/google/uuid"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/repository/specification"
)

// CancellationRepository defines operations on cancellation rows. One row
// per user, keyed by the unique index on user_id.
type CancellationRepository interface {
	// InsertIfAbsent writes the row unless the user already has one. It
	// returns the row now on record and whether this call created it, so
	// a concurrent first visit resolves to a single variant.
	InsertIfAbsent(ctx context.Context, cancellation *entity.Cancellation) (*entity.Cancellation, bool, error)

	// FindByUser returns the user's row or repoerr.ErrNotFound.
	FindByUser(ctx context.Context, userId uuid.UUID) (*entity.Cancellation, error)

	// UpdateOutcome persists the flow result fields on the user's existing
	// row. The assigned variant is never overwritten.
	UpdateOutcome(ctx context.Context, cancellation *entity.Cancellation) error

	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Cancellation, error)
}
