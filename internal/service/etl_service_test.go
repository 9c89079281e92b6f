package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/repository/specification"
	"retention-flow-be/pkg/abtest"
	"retention-flow-be/pkg/metrics"
)

type fakeAnalyticsRepo struct {
	events   []*entity.AnalyticsEvent
	journeys map[string]*entity.UserJourney
	purged   int64
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{journeys: map[string]*entity.UserJourney{}}
}

func (r *fakeAnalyticsRepo) CreateEvent(ctx context.Context, event *entity.AnalyticsEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAnalyticsRepo) CreateEvents(ctx context.Context, events []*entity.AnalyticsEvent) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *fakeAnalyticsRepo) FindEvents(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalyticsEvent, error) {
	return r.events, nil
}

func (r *fakeAnalyticsRepo) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	kept := r.events[:0]
	var removed int64
	for _, e := range r.events {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	r.purged = removed
	return removed, nil
}

func (r *fakeAnalyticsRepo) UpsertJourney(ctx context.Context, journey *entity.UserJourney) error {
	r.journeys[journey.SessionId] = journey
	return nil
}

func (r *fakeAnalyticsRepo) FindJourneys(ctx context.Context, specs ...specification.Specification) ([]*entity.UserJourney, error) {
	out := make([]*entity.UserJourney, 0, len(r.journeys))
	for _, j := range r.journeys {
		out = append(out, j)
	}
	return out, nil
}

type fakeMetricsRepo struct {
	daily   map[string]*entity.DailyMetric
	cohorts map[string]*entity.UserCohort
}

func newFakeMetricsRepo() *fakeMetricsRepo {
	return &fakeMetricsRepo{
		daily:   map[string]*entity.DailyMetric{},
		cohorts: map[string]*entity.UserCohort{},
	}
}

func (r *fakeMetricsRepo) UpsertDaily(ctx context.Context, metric *entity.DailyMetric) error {
	r.daily[metric.Date.Format("2006-01-02")] = metric
	return nil
}

func (r *fakeMetricsRepo) FindDailyRange(ctx context.Context, from, to time.Time) ([]*entity.DailyMetric, error) {
	out := make([]*entity.DailyMetric, 0, len(r.daily))
	for _, m := range r.daily {
		if !m.Date.Before(from) && m.Date.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMetricsRepo) UpsertCohort(ctx context.Context, cohort *entity.UserCohort) error {
	r.cohorts[cohort.CohortMonth+string(cohort.Variant)] = cohort
	return nil
}

func (r *fakeMetricsRepo) FindAllCohorts(ctx context.Context) ([]*entity.UserCohort, error) {
	out := make([]*entity.UserCohort, 0, len(r.cohorts))
	for _, c := range r.cohorts {
		out = append(out, c)
	}
	return out, nil
}

func TestETLRunRollsUpCohortsAndPurges(t *testing.T) {
	analytics := newFakeAnalyticsRepo()
	metricsRepo := newFakeMetricsRepo()
	cancellations := newFakeCancellationRepo()
	uow := &fakeUow{
		cancellations: cancellations,
		subscriptions: &fakeSubscriptionRepo{},
		analytics:     analytics,
		metrics:       metricsRepo,
	}

	now := time.Now().UTC()
	userId := uuid.New()
	analytics.events = []*entity.AnalyticsEvent{
		{SessionId: "s1", EventName: entity.EventPopupOpened, CreatedAt: now},
		{SessionId: "s1", EventName: entity.EventCancelCompleted, CreatedAt: now},
		// Older than the retention window; must be purged.
		{SessionId: "old", EventName: entity.EventPopupOpened, CreatedAt: now.AddDate(0, 0, -120)},
	}
	cancellations.rows[userId] = &entity.Cancellation{
		Id:              uuid.New(),
		UserId:          userId,
		DownsellVariant: abtest.VariantB,
		CreatedAt:       now,
	}

	publisher := &recordingPublisher{}
	svc := NewETLService(testConfig(), &fakeUowFactory{uow: uow}, nil, publisher, noopLogger{})

	resp, err := svc.Run(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.DaysProcessed)
	assert.Equal(t, int64(1), resp.EventsPurged)

	// Both days were rolled up, today carrying the funnel counts.
	require.Len(t, metricsRepo.daily, 2)
	today := metricsRepo.daily[now.Format("2006-01-02")]
	require.NotNil(t, today)
	assert.Equal(t, 1, today.TotalCompletions)

	// One cohort row for this month's variant B arm.
	cohort := metricsRepo.cohorts[now.Format("2006-01")+"B"]
	require.NotNil(t, cohort)
	assert.Equal(t, 1, cohort.TotalUsers)
}

func TestETLRunSingleDayComparesAgainstStoredYesterday(t *testing.T) {
	analytics := newFakeAnalyticsRepo()
	metricsRepo := newFakeMetricsRepo()
	uow := &fakeUow{
		cancellations: newFakeCancellationRepo(),
		subscriptions: &fakeSubscriptionRepo{},
		analytics:     analytics,
		metrics:       metricsRepo,
	}

	now := time.Now().UTC()
	yesterdayStart, _ := metrics.DayWindow(now.AddDate(0, 0, -1))
	metricsRepo.daily[yesterdayStart.Format("2006-01-02")] = &entity.DailyMetric{
		Date:           yesterdayStart,
		TotalVisitors:  4,
		ConversionRate: 0,
	}

	// Today converts every visitor, a 100 point move against the stored
	// yesterday row.
	analytics.events = []*entity.AnalyticsEvent{
		{SessionId: "s1", EventName: entity.EventPopupOpened, CreatedAt: now},
		{SessionId: "s1", EventName: entity.EventCancelCompleted, CreatedAt: now},
	}

	svc := NewETLService(testConfig(), &fakeUowFactory{uow: uow}, nil, nil, noopLogger{})

	resp, err := svc.Run(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, resp.Insights, 1)
	assert.Equal(t, entity.InsightConversionSpike, resp.Insights[0].Kind)
}

func TestETLRunZeroDaysDefaultsToOne(t *testing.T) {
	uow := &fakeUow{
		cancellations: newFakeCancellationRepo(),
		subscriptions: &fakeSubscriptionRepo{},
		analytics:     newFakeAnalyticsRepo(),
		metrics:       newFakeMetricsRepo(),
	}
	svc := NewETLService(testConfig(), &fakeUowFactory{uow: uow}, nil, nil, noopLogger{})

	resp, err := svc.Run(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.DaysProcessed)
}
