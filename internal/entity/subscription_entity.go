package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive              SubscriptionStatus = "active"
	SubscriptionStatusPendingCancellation SubscriptionStatus = "pending_cancellation"
	SubscriptionStatusCancelled           SubscriptionStatus = "cancelled"
)

type Subscription struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	MonthlyPriceCents int
	Status            SubscriptionStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
