package metrics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"retention-flow-be/internal/entity"
	"retention-flow-be/pkg/abtest"
)

var testParams = RollupParams{AtRiskUnitCents: 2500, SavedUnitCents: 1500}

func ev(session, name string, props map[string]any) *entity.AnalyticsEvent {
	return &entity.AnalyticsEvent{SessionId: session, EventName: name, Properties: props}
}

func TestBuildDailyRollupFunnel(t *testing.T) {
	day := time.Date(2026, 8, 30, 15, 30, 0, 0, time.UTC)
	events := []*entity.AnalyticsEvent{
		ev("s1", entity.EventPopupOpened, nil),
		ev("s2", entity.EventPopupOpened, nil),
		ev("s3", entity.EventPopupOpened, nil),
		// s1 reopens; must not double count.
		ev("s1", entity.EventPopupOpened, nil),

		ev("s1", entity.EventStepCompleted, map[string]any{"stepNumber": float64(1)}),
		ev("s2", entity.EventStepCompleted, map[string]any{"stepNumber": float64(1)}),
		ev("s1", entity.EventStepCompleted, map[string]any{"stepNumber": float64(2)}),
		ev("s1", entity.EventStepCompleted, map[string]any{"stepNumber": float64(3)}),

		ev("s1", entity.EventCancelCompleted, nil),
		ev("s2", entity.EventDownsellAccepted, nil),
	}

	m := BuildDailyRollup(day, events, nil, nil, testParams)

	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), m.Date)
	assert.Equal(t, 3, m.TotalVisitors)
	assert.Equal(t, 1, m.TotalCompletions)
	assert.Equal(t, 3, m.FunnelStep1)
	assert.Equal(t, 2, m.FunnelStep2)
	assert.Equal(t, 1, m.FunnelStep3)
	assert.Equal(t, 1, m.FunnelStep4)
	assert.Equal(t, 1, m.FunnelStep5)
	assert.Equal(t, 1, m.DownsellAccepted)
	assert.InDelta(t, 1.0/3.0, m.ConversionRate, 1e-9)
}

func TestBuildDailyRollupVariantsAndRevenue(t *testing.T) {
	day := time.Now().UTC()
	events := []*entity.AnalyticsEvent{
		ev("s1", entity.EventPopupOpened, nil),
		ev("s1", entity.EventCancelCompleted, nil),
		ev("s2", entity.EventPopupOpened, nil),
		ev("s2", entity.EventCancelCompleted, nil),
		ev("s3", entity.EventPopupOpened, nil),
		ev("s3", entity.EventDownsellAccepted, nil),
	}
	cancellations := []*entity.Cancellation{
		{DownsellVariant: abtest.VariantA},
		{DownsellVariant: abtest.VariantB, AcceptedDownsell: true},
		{DownsellVariant: abtest.VariantB},
	}

	m := BuildDailyRollup(day, events, nil, cancellations, testParams)

	assert.Equal(t, 1, m.VariantAUsers)
	assert.Equal(t, 2, m.VariantBUsers)
	assert.Equal(t, 0, m.VariantAConversions)
	assert.Equal(t, 1, m.VariantBConversions)

	// Two completed sessions at $25 each, one acceptance at $15.
	assert.Equal(t, int64(5000), m.RevenueAtRiskCents)
	assert.Equal(t, int64(1500), m.RevenueSavedCents)
}

func TestBuildDailyRollupUsersAttemptsAndOffers(t *testing.T) {
	day := time.Now().UTC()
	alice := uuid.New()
	bob := uuid.New()
	events := []*entity.AnalyticsEvent{
		// Alice opens from two devices: two visitors, one user.
		{UserId: &alice, SessionId: "s1", EventName: entity.EventPopupOpened},
		{UserId: &alice, SessionId: "s2", EventName: entity.EventPopupOpened},
		{UserId: &bob, SessionId: "s3", EventName: entity.EventPopupOpened},

		{UserId: &alice, SessionId: "s1", EventName: entity.EventDownsellShown},
		{UserId: &alice, SessionId: "s1", EventName: entity.EventDownsellShown},
		{UserId: &bob, SessionId: "s3", EventName: entity.EventDownsellShown},
	}
	journeys := []*entity.UserJourney{
		{SessionId: "s1", Outcome: entity.JourneyOutcomeSaved},
		{SessionId: "s3", Outcome: entity.JourneyOutcomeInProgress},
	}

	m := BuildDailyRollup(day, events, journeys, nil, testParams)

	assert.Equal(t, 3, m.TotalVisitors)
	assert.Equal(t, 2, m.TotalUsers)
	assert.Equal(t, 2, m.CancellationAttempts)
	assert.Equal(t, 2, m.DownsellOffersShown)
}

func TestBuildDailyRollupEmptyDay(t *testing.T) {
	m := BuildDailyRollup(time.Now(), nil, nil, nil, testParams)
	assert.Equal(t, 0, m.TotalVisitors)
	assert.Equal(t, float64(0), m.ConversionRate)
	assert.Equal(t, int64(0), m.RevenueAtRiskCents)
}

func TestDayWindow(t *testing.T) {
	from, to := DayWindow(time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), to)
}

func TestBuildCohorts(t *testing.T) {
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	rates := CohortRates{Month1: 0.85, Month2: 0.75, Month3: 0.70}

	cancellations := []*entity.Cancellation{
		{DownsellVariant: abtest.VariantA, CreatedAt: jan},
		{DownsellVariant: abtest.VariantA, CreatedAt: jan},
		{DownsellVariant: abtest.VariantB, CreatedAt: jan},
		{DownsellVariant: abtest.VariantB, CreatedAt: feb},
		// Rows without a valid variant are skipped.
		{DownsellVariant: "", CreatedAt: feb},
	}

	cohorts := BuildCohorts(cancellations, rates)
	assert.Len(t, cohorts, 3)

	assert.Equal(t, "2026-01", cohorts[0].CohortMonth)
	assert.Equal(t, abtest.VariantA, cohorts[0].Variant)
	assert.Equal(t, 2, cohorts[0].TotalUsers)
	assert.Equal(t, 2, cohorts[0].RetainedMonth1) // round(2*0.85)
	assert.Equal(t, 0.85, cohorts[0].RetentionMonth1)

	assert.Equal(t, "2026-01", cohorts[1].CohortMonth)
	assert.Equal(t, abtest.VariantB, cohorts[1].Variant)

	assert.Equal(t, "2026-02", cohorts[2].CohortMonth)
	assert.Equal(t, 1, cohorts[2].TotalUsers)
	assert.Equal(t, 1, cohorts[2].RetainedMonth3) // round(1*0.70)
}
