package model

import (
	"time"

	"github.com/google/uuid"
)

type Subscription struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID `gorm:"type:uuid;not null;index"`
	MonthlyPriceCents int       `gorm:"not null"`
	Status            string    `gorm:"type:varchar(50);not null;default:'active';index"` // active, pending_cancellation, cancelled
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
