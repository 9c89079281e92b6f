package metrics

import (
	"fmt"
	"time"

	"retention-flow-be/internal/entity"
)

// InsightParams are the alert thresholds a run compares against.
type InsightParams struct {
	// ConversionDeltaPts flags a day-over-day conversion rate move of at
	// least this many percentage points.
	ConversionDeltaPts float64
	// RevenueSavedFactor flags today's saved revenue exceeding yesterday's
	// by at least this multiple.
	RevenueSavedFactor float64
	// VariantDeltaPts flags a conversion gap between the A and B arms of
	// at least this many percentage points.
	VariantDeltaPts float64
	// MinUsersPerArm gates the variant comparison; small arms are noise.
	MinUsersPerArm int
}

// DetectInsights compares today's rollup with yesterday's and returns any
// notable conditions. Yesterday may be nil on the first ever run; only the
// variant comparison applies then.
func DetectInsights(today, yesterday *entity.DailyMetric, p InsightParams) []entity.Insight {
	if today == nil {
		return nil
	}
	now := time.Now().UTC()
	var insights []entity.Insight

	if yesterday != nil {
		deltaPts := (today.ConversionRate - yesterday.ConversionRate) * 100
		if deltaPts >= p.ConversionDeltaPts || deltaPts <= -p.ConversionDeltaPts {
			direction := "up"
			if deltaPts < 0 {
				direction = "down"
			}
			insights = append(insights, entity.Insight{
				Kind:       entity.InsightConversionSpike,
				Message:    fmt.Sprintf("conversion rate moved %s %.1f points day over day (%.1f%% -> %.1f%%)", direction, abs(deltaPts), yesterday.ConversionRate*100, today.ConversionRate*100),
				DetectedAt: now,
			})
		}

		if yesterday.RevenueSavedCents > 0 &&
			float64(today.RevenueSavedCents) >= float64(yesterday.RevenueSavedCents)*p.RevenueSavedFactor {
			insights = append(insights, entity.Insight{
				Kind:       entity.InsightRevenueSaved,
				Message:    fmt.Sprintf("revenue saved jumped to $%.2f from $%.2f", float64(today.RevenueSavedCents)/100, float64(yesterday.RevenueSavedCents)/100),
				DetectedAt: now,
			})
		}
	}

	if today.VariantAUsers > p.MinUsersPerArm && today.VariantBUsers > p.MinUsersPerArm {
		rateA := float64(today.VariantAConversions) / float64(today.VariantAUsers)
		rateB := float64(today.VariantBConversions) / float64(today.VariantBUsers)
		gapPts := (rateB - rateA) * 100
		if gapPts >= p.VariantDeltaPts || gapPts <= -p.VariantDeltaPts {
			leader := "B"
			if gapPts < 0 {
				leader = "A"
			}
			insights = append(insights, entity.Insight{
				Kind:       entity.InsightVariantLeader,
				Message:    fmt.Sprintf("variant %s leads by %.1f points (A %.1f%%, B %.1f%%)", leader, abs(gapPts), rateA*100, rateB*100),
				DetectedAt: now,
			})
		}
	}

	return insights
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
