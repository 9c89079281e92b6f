package entity

import (
	"time"

	"github.com/google/uuid"

	"retention-flow-be/pkg/abtest"
)

// Cancellation represents one user's pass through the cancellation flow.
// A user owns at most one row; the variant assigned on the first pass is
// reused on every later pass.
type Cancellation struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	SubscriptionId   uuid.UUID
	DownsellVariant  abtest.Variant
	Reason           *string
	Amount           *string
	Feedback         *string
	AcceptedDownsell bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
