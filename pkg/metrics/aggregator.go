// Package metrics turns raw analytics rows into the rollups the dashboard
// reads. Everything here is pure computation; fetching and persisting rows
// belongs to the ETL service driving it.
package metrics

import (
	"time"

	"github.com/google/uuid"

	"retention-flow-be/internal/entity"
	"retention-flow-be/pkg/abtest"
)

// RollupParams carries the per-unit revenue figures for a rollup.
type RollupParams struct {
	// AtRiskUnitCents is the monthly revenue attributed to each user who
	// entered the flow and may leave.
	AtRiskUnitCents int64
	// SavedUnitCents is the discounted monthly revenue attributed to each
	// user who accepted the downsell.
	SavedUnitCents int64
}

// BuildDailyRollup computes one day's funnel and revenue rollup from the
// day's events, journeys, and the cancellation rows created that day.
// Sessions are deduplicated: a user reopening the modal counts once per
// funnel step. Users are counted separately from sessions, so one user on
// two devices is one user but two visitors.
func BuildDailyRollup(date time.Time, events []*entity.AnalyticsEvent, journeys []*entity.UserJourney, cancellations []*entity.Cancellation, p RollupParams) *entity.DailyMetric {
	opened := map[string]struct{}{}
	step2 := map[string]struct{}{}
	step3 := map[string]struct{}{}
	step4 := map[string]struct{}{}
	completed := map[string]struct{}{}
	offered := map[string]struct{}{}
	accepted := map[string]struct{}{}
	users := map[uuid.UUID]struct{}{}

	for _, ev := range events {
		if ev.UserId != nil {
			users[*ev.UserId] = struct{}{}
		}
		switch ev.EventName {
		case entity.EventPopupOpened:
			opened[ev.SessionId] = struct{}{}
		case entity.EventStepCompleted:
			switch stepNumber(ev.Properties) {
			case 1:
				step2[ev.SessionId] = struct{}{}
			case 2:
				step3[ev.SessionId] = struct{}{}
			case 3:
				step4[ev.SessionId] = struct{}{}
			}
		case entity.EventCancelCompleted:
			completed[ev.SessionId] = struct{}{}
		case entity.EventDownsellShown:
			offered[ev.SessionId] = struct{}{}
		case entity.EventDownsellAccepted:
			accepted[ev.SessionId] = struct{}{}
		}
	}

	m := &entity.DailyMetric{
		Date:                 startOfDayUTC(date),
		TotalVisitors:        len(opened),
		TotalUsers:           len(users),
		TotalCompletions:     len(completed),
		CancellationAttempts: len(journeys),
		FunnelStep1:          len(opened),
		FunnelStep2:          len(step2),
		FunnelStep3:          len(step3),
		FunnelStep4:          len(step4),
		FunnelStep5:          len(completed),
		DownsellOffersShown:  len(offered),
		DownsellAccepted:     len(accepted),
		Cancellations:        len(completed),
	}
	if m.TotalVisitors > 0 {
		m.ConversionRate = float64(m.TotalCompletions) / float64(m.TotalVisitors)
	}

	for _, c := range cancellations {
		switch c.DownsellVariant {
		case abtest.VariantA:
			m.VariantAUsers++
			if c.AcceptedDownsell {
				m.VariantAConversions++
			}
		case abtest.VariantB:
			m.VariantBUsers++
			if c.AcceptedDownsell {
				m.VariantBConversions++
			}
		}
	}

	atRiskUsers := m.TotalCompletions
	if m.Cancellations > atRiskUsers {
		atRiskUsers = m.Cancellations
	}
	m.RevenueAtRiskCents = int64(atRiskUsers) * p.AtRiskUnitCents
	m.RevenueSavedCents = int64(m.DownsellAccepted) * p.SavedUnitCents

	return m
}

// stepNumber pulls the funnel step out of event properties. JSON numbers
// come back as float64.
func stepNumber(props map[string]any) int {
	v, ok := props["stepNumber"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindow returns the UTC [start, end) window containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := startOfDayUTC(t)
	return start, start.Add(24 * time.Hour)
}
