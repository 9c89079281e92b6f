package metrics

import (
	"math"
	"sort"

	"retention-flow-be/internal/entity"
	"retention-flow-be/pkg/abtest"
)

// CohortRates are the modelled retention factors applied per cohort month.
type CohortRates struct {
	Month1 float64
	Month2 float64
	Month3 float64
}

// BuildCohorts groups cancellation rows into (month, variant) cohorts and
// applies the modelled retention curve. Cohort month comes from the row's
// creation time in UTC, formatted YYYY-MM. Output is ordered by month then
// variant so runs are comparable.
func BuildCohorts(cancellations []*entity.Cancellation, rates CohortRates) []*entity.UserCohort {
	type key struct {
		month   string
		variant abtest.Variant
	}
	counts := map[key]int{}
	for _, c := range cancellations {
		if !c.DownsellVariant.Valid() {
			continue
		}
		k := key{month: c.CreatedAt.UTC().Format("2006-01"), variant: c.DownsellVariant}
		counts[k]++
	}

	cohorts := make([]*entity.UserCohort, 0, len(counts))
	for k, total := range counts {
		cohorts = append(cohorts, &entity.UserCohort{
			CohortMonth:     k.month,
			Variant:         k.variant,
			TotalUsers:      total,
			RetainedMonth1:  retained(total, rates.Month1),
			RetainedMonth2:  retained(total, rates.Month2),
			RetainedMonth3:  retained(total, rates.Month3),
			RetentionMonth1: rates.Month1,
			RetentionMonth2: rates.Month2,
			RetentionMonth3: rates.Month3,
		})
	}

	sort.Slice(cohorts, func(i, j int) bool {
		if cohorts[i].CohortMonth != cohorts[j].CohortMonth {
			return cohorts[i].CohortMonth < cohorts[j].CohortMonth
		}
		return cohorts[i].Variant < cohorts[j].Variant
	})
	return cohorts
}

func retained(total int, rate float64) int {
	return int(math.Round(float64(total) * rate))
}
