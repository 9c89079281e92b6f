package entity

import (
	"time"

	"github.com/google/uuid"

	"retention-flow-be/pkg/abtest"
)

type DailyMetric struct {
	Id                   uuid.UUID
	Date                 time.Time
	TotalVisitors        int
	TotalUsers           int
	TotalCompletions     int
	CancellationAttempts int
	ConversionRate       float64
	FunnelStep1          int
	FunnelStep2          int
	FunnelStep3          int
	FunnelStep4          int
	FunnelStep5          int
	VariantAUsers        int
	VariantBUsers        int
	VariantAConversions  int
	VariantBConversions  int
	DownsellOffersShown  int
	DownsellAccepted     int
	Cancellations        int
	RevenueAtRiskCents   int64
	RevenueSavedCents    int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type UserCohort struct {
	Id              uuid.UUID
	CohortMonth     string
	Variant         abtest.Variant
	TotalUsers      int
	RetainedMonth1  int
	RetainedMonth2  int
	RetainedMonth3  int
	RetentionMonth1 float64
	RetentionMonth2 float64
	RetentionMonth3 float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Insight is a notable condition the ETL surfaces after a run.
type Insight struct {
	Kind       string
	Message    string
	DetectedAt time.Time
}

const (
	InsightConversionSpike = "conversion_spike"
	InsightRevenueSaved    = "revenue_saved"
	InsightVariantLeader   = "variant_leader"
)
