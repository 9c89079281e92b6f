package model

import (
	"time"

	"github.com/google/uuid"
)

// DailyMetric is one day's rollup of the cancellation funnel. Date is
// unique so repeated ETL runs upsert instead of duplicating rows.
type DailyMetric struct {
	Id                   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Date                 time.Time `gorm:"type:date;not null;uniqueIndex"`
	TotalVisitors        int       `gorm:"not null;default:0"`
	TotalUsers           int       `gorm:"not null;default:0"`
	TotalCompletions     int       `gorm:"not null;default:0"`
	CancellationAttempts int       `gorm:"not null;default:0"`
	ConversionRate       float64   `gorm:"type:decimal(6,4);not null;default:0"`
	FunnelStep1          int       `gorm:"not null;default:0"`
	FunnelStep2          int       `gorm:"not null;default:0"`
	FunnelStep3          int       `gorm:"not null;default:0"`
	FunnelStep4          int       `gorm:"not null;default:0"`
	FunnelStep5          int       `gorm:"not null;default:0"`
	VariantAUsers        int       `gorm:"not null;default:0"`
	VariantBUsers        int       `gorm:"not null;default:0"`
	VariantAConversions  int       `gorm:"not null;default:0"`
	VariantBConversions  int       `gorm:"not null;default:0"`
	DownsellOffersShown  int       `gorm:"not null;default:0"`
	DownsellAccepted     int       `gorm:"not null;default:0"`
	Cancellations        int       `gorm:"not null;default:0"`
	RevenueAtRiskCents   int64     `gorm:"not null;default:0"`
	RevenueSavedCents    int64     `gorm:"not null;default:0"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime"`
}

func (DailyMetric) TableName() string {
	return "daily_metrics"
}

type UserCohort struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CohortMonth     string    `gorm:"type:varchar(7);not null;uniqueIndex:idx_cohort_variant"` // YYYY-MM
	Variant         string    `gorm:"type:varchar(1);not null;uniqueIndex:idx_cohort_variant"`
	TotalUsers      int       `gorm:"not null;default:0"`
	RetainedMonth1  int       `gorm:"not null;default:0"`
	RetainedMonth2  int       `gorm:"not null;default:0"`
	RetainedMonth3  int       `gorm:"not null;default:0"`
	RetentionMonth1 float64   `gorm:"type:decimal(6,4);not null;default:0"`
	RetentionMonth2 float64   `gorm:"type:decimal(6,4);not null;default:0"`
	RetentionMonth3 float64   `gorm:"type:decimal(6,4);not null;default:0"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (UserCohort) TableName() string {
	return "user_cohorts"
}
