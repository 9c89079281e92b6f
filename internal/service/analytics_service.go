package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"retention-flow-be/internal/dto"
	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/pkg/logger"
	"retention-flow-be/internal/repository/unitofwork"
)

// AnalyticsTracker is the event ingestion client. It is injected into
// everything that emits events so tests can substitute a recorder.
type AnalyticsTracker interface {
	// Track buffers the event and hands it to the pipeline. It never
	// fails: analytics must not break the flow it observes.
	Track(ctx context.Context, event *entity.AnalyticsEvent)

	// Buffered returns a snapshot of recent events, oldest first.
	Buffered() []*entity.AnalyticsEvent
}

// trackerService buffers the most recent events in memory and publishes
// each one to the pipeline topic. When the buffer is full the oldest
// event is evicted.
type trackerService struct {
	enabled   bool
	capacity  int
	publisher IPublisherService
	log       logger.ILogger

	mu     sync.Mutex
	buffer []*entity.AnalyticsEvent
}

func NewTrackerService(enabled bool, capacity int, publisher IPublisherService, log logger.ILogger) AnalyticsTracker {
	return &trackerService{
		enabled:   enabled,
		capacity:  capacity,
		publisher: publisher,
		log:       log,
	}
}

func (t *trackerService) Track(ctx context.Context, event *entity.AnalyticsEvent) {
	if !t.enabled {
		return
	}
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	t.mu.Lock()
	t.buffer = append(t.buffer, event)
	if len(t.buffer) > t.capacity {
		t.buffer = t.buffer[len(t.buffer)-t.capacity:]
	}
	t.mu.Unlock()

	payload, err := json.Marshal(trackedEventMessage{
		Id:         event.Id,
		UserId:     event.UserId,
		SessionId:  event.SessionId,
		EventName:  event.EventName,
		Properties: event.Properties,
		CreatedAt:  event.CreatedAt,
	})
	if err != nil {
		t.log.Error("analytics_tracker", "failed to marshal event", map[string]interface{}{
			"event_name": event.EventName,
			"error":      err.Error(),
		})
		return
	}
	if err := t.publisher.Publish(ctx, payload); err != nil {
		t.log.Warn("analytics_tracker", "failed to publish event", map[string]interface{}{
			"event_name": event.EventName,
			"error":      err.Error(),
		})
	}
}

func (t *trackerService) Buffered() []*entity.AnalyticsEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	snapshot := make([]*entity.AnalyticsEvent, len(t.buffer))
	copy(snapshot, t.buffer)
	return snapshot
}

// trackedEventMessage is the wire form the tracker puts on the pipeline
// topic; the consumer unmarshals the same shape.
type trackedEventMessage struct {
	Id         uuid.UUID      `json:"id"`
	UserId     *uuid.UUID     `json:"userId,omitempty"`
	SessionId  string         `json:"sessionId"`
	EventName  string         `json:"eventName"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// AnalyticsService serves the dashboard read endpoints.
type AnalyticsService interface {
	TrackEvent(ctx context.Context, req *dto.TrackEventRequest) error
	GetDailyMetrics(ctx context.Context, days int) ([]*dto.DailyMetricResponse, error)
	GetRealtimeMetrics(ctx context.Context) (*dto.RealtimeMetricsResponse, error)
	GetCohorts(ctx context.Context) ([]*dto.CohortResponse, error)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
	tracker    AnalyticsTracker
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory, tracker AnalyticsTracker) AnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
		tracker:    tracker,
	}
}

func (s *analyticsService) TrackEvent(ctx context.Context, req *dto.TrackEventRequest) error {
	s.tracker.Track(ctx, &entity.AnalyticsEvent{
		UserId:     req.UserId,
		SessionId:  req.SessionId,
		EventName:  req.EventName,
		Properties: req.Properties,
	})
	return nil
}

func (s *analyticsService) GetDailyMetrics(ctx context.Context, days int) ([]*dto.DailyMetricResponse, error) {
	if days <= 0 {
		days = 30
	}
	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	from := to.AddDate(0, 0, -days)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.MetricsRepository().FindDailyRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.DailyMetricResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, &dto.DailyMetricResponse{
			Date:                 m.Date.Format("2006-01-02"),
			TotalVisitors:        m.TotalVisitors,
			TotalUsers:           m.TotalUsers,
			TotalCompletions:     m.TotalCompletions,
			CancellationAttempts: m.CancellationAttempts,
			ConversionRate:       m.ConversionRate,
			FunnelSteps:          [5]int{m.FunnelStep1, m.FunnelStep2, m.FunnelStep3, m.FunnelStep4, m.FunnelStep5},
			VariantAUsers:        m.VariantAUsers,
			VariantBUsers:        m.VariantBUsers,
			VariantAConversions:  m.VariantAConversions,
			VariantBConversions:  m.VariantBConversions,
			DownsellOffersShown:  m.DownsellOffersShown,
			DownsellAccepted:     m.DownsellAccepted,
			Cancellations:        m.Cancellations,
			RevenueAtRiskCents:   m.RevenueAtRiskCents,
			RevenueSavedCents:    m.RevenueSavedCents,
		})
	}
	return out, nil
}

// GetRealtimeMetrics reads the tracker buffer instead of the store, so it
// reflects events that have not been rolled up yet.
func (s *analyticsService) GetRealtimeMetrics(ctx context.Context) (*dto.RealtimeMetricsResponse, error) {
	buffered := s.tracker.Buffered()

	resp := &dto.RealtimeMetricsResponse{WindowStart: time.Now().UTC()}
	sessions := map[string]struct{}{}
	for _, ev := range buffered {
		sessions[ev.SessionId] = struct{}{}
		if ev.CreatedAt.Before(resp.WindowStart) {
			resp.WindowStart = ev.CreatedAt
		}
		switch ev.EventName {
		case entity.EventPopupOpened:
			resp.PopupOpens++
		case entity.EventCancelCompleted:
			resp.Completions++
		case entity.EventDownsellAccepted:
			resp.DownsellAccepted++
		}
	}
	resp.ActiveSessions = len(sessions)
	return resp, nil
}

func (s *analyticsService) GetCohorts(ctx context.Context) ([]*dto.CohortResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cohorts, err := uow.MetricsRepository().FindAllCohorts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CohortResponse, 0, len(cohorts))
	for _, c := range cohorts {
		out = append(out, &dto.CohortResponse{
			CohortMonth:     c.CohortMonth,
			Variant:         string(c.Variant),
			TotalUsers:      c.TotalUsers,
			RetentionMonth1: c.RetentionMonth1,
			RetentionMonth2: c.RetentionMonth2,
			RetentionMonth3: c.RetentionMonth3,
		})
	}
	return out, nil
}
