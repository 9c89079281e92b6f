package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnalyticsEvent struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     *uuid.UUID     `gorm:"type:uuid;index"`
	SessionId  string         `gorm:"type:varchar(255);not null;index"`
	EventName  string         `gorm:"type:varchar(100);not null;index"`
	Properties datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

type UserJourney struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      *uuid.UUID     `gorm:"type:uuid;index"`
	SessionId   string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Steps       datatypes.JSON `gorm:"type:jsonb"`
	Outcome     string         `gorm:"type:varchar(50);not null;default:'in_progress';index"` // in_progress, completed, abandoned, saved
	CompletedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (UserJourney) TableName() string {
	return "user_journeys"
}
