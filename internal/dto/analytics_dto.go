package dto

import (
	"time"

	"github.com/google/uuid"
)

type TrackEventRequest struct {
	SessionId  string         `json:"sessionId" validate:"required"`
	UserId     *uuid.UUID     `json:"userId,omitempty"`
	EventName  string         `json:"eventName" validate:"required,max=100"`
	Properties map[string]any `json:"properties,omitempty"`
}

type DailyMetricResponse struct {
	Date                 string  `json:"date"`
	TotalVisitors        int     `json:"totalVisitors"`
	TotalUsers           int     `json:"totalUsers"`
	TotalCompletions     int     `json:"totalCompletions"`
	CancellationAttempts int     `json:"cancellationAttempts"`
	ConversionRate       float64 `json:"conversionRate"`
	FunnelSteps          [5]int  `json:"funnelSteps"`
	VariantAUsers        int     `json:"variantAUsers"`
	VariantBUsers        int     `json:"variantBUsers"`
	VariantAConversions  int     `json:"variantAConversions"`
	VariantBConversions  int     `json:"variantBConversions"`
	DownsellOffersShown  int     `json:"downsellOffersShown"`
	DownsellAccepted     int     `json:"downsellAccepted"`
	Cancellations        int     `json:"cancellations"`
	RevenueAtRiskCents   int64   `json:"revenueAtRiskCents"`
	RevenueSavedCents    int64   `json:"revenueSavedCents"`
}

type RealtimeMetricsResponse struct {
	WindowStart      time.Time `json:"windowStart"`
	ActiveSessions   int       `json:"activeSessions"`
	PopupOpens       int       `json:"popupOpens"`
	Completions      int       `json:"completions"`
	DownsellAccepted int       `json:"downsellAccepted"`
}

type CohortResponse struct {
	CohortMonth     string  `json:"cohortMonth"`
	Variant         string  `json:"variant"`
	TotalUsers      int     `json:"totalUsers"`
	RetentionMonth1 float64 `json:"retentionMonth1"`
	RetentionMonth2 float64 `json:"retentionMonth2"`
	RetentionMonth3 float64 `json:"retentionMonth3"`
}

type RunETLRequest struct {
	Days int `json:"days" validate:"omitempty,min=1,max=365"`
}

type RunETLResponse struct {
	DaysProcessed int              `json:"daysProcessed"`
	EventsPurged  int64            `json:"eventsPurged"`
	Insights      []InsightPayload `json:"insights"`
	Duration      string           `json:"duration"`
}

type InsightPayload struct {
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	DetectedAt time.Time `json:"detectedAt"`
}
