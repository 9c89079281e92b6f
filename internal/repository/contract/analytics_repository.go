package contract

import (
	"context"
	"time"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/repository/specification"
)

// AnalyticsRepository defines operations on raw analytics events and
// per-session journeys.
type AnalyticsRepository interface {
	CreateEvent(ctx context.Context, event *entity.AnalyticsEvent) error
	CreateEvents(ctx context.Context, events []*entity.AnalyticsEvent) error
	FindEvents(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsEvent, error)

	// DeleteEventsBefore purges events older than cutoff and returns the
	// number of rows removed.
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// UpsertJourney writes the journey keyed by session_id, replacing the
	// step list and outcome on conflict.
	UpsertJourney(ctx context.Context, journey *entity.UserJourney) error
	FindJourneys(ctx context.Context, specs ...specification.Specification) ([]*entity.UserJourney, error)
}
