package model

import (
	"time"

	"github.com/google/uuid"
)

// Cancellation holds one user's pass through the cancellation flow. The
// unique index on UserId makes the A/B variant sticky: the first insert
// wins and later writes update the same row.
type Cancellation struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	SubscriptionId   uuid.UUID `gorm:"type:uuid;not null;index"`
	DownsellVariant  string    `gorm:"type:varchar(1);not null"`
	Reason           *string   `gorm:"type:text"`
	Amount           *string   `gorm:"type:varchar(50)"`
	Feedback         *string   `gorm:"type:text"`
	AcceptedDownsell bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Cancellation) TableName() string {
	return "cancellations"
}
