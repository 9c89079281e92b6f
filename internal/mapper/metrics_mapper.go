package mapper

import (
	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/model"
	"retention-flow-be/pkg/abtest"
)

type MetricsMapper struct{}

func NewMetricsMapper() *MetricsMapper {
	return &MetricsMapper{}
}

func (m *MetricsMapper) DailyToEntity(d *model.DailyMetric) *entity.DailyMetric {
	if d == nil {
		return nil
	}
	return &entity.DailyMetric{
		Id:                   d.Id,
		Date:                 d.Date,
		TotalVisitors:        d.TotalVisitors,
		TotalUsers:           d.TotalUsers,
		TotalCompletions:     d.TotalCompletions,
		CancellationAttempts: d.CancellationAttempts,
		ConversionRate:       d.ConversionRate,
		FunnelStep1:          d.FunnelStep1,
		FunnelStep2:          d.FunnelStep2,
		FunnelStep3:          d.FunnelStep3,
		FunnelStep4:          d.FunnelStep4,
		FunnelStep5:          d.FunnelStep5,
		VariantAUsers:        d.VariantAUsers,
		VariantBUsers:        d.VariantBUsers,
		VariantAConversions:  d.VariantAConversions,
		VariantBConversions:  d.VariantBConversions,
		DownsellOffersShown:  d.DownsellOffersShown,
		DownsellAccepted:     d.DownsellAccepted,
		Cancellations:        d.Cancellations,
		RevenueAtRiskCents:   d.RevenueAtRiskCents,
		RevenueSavedCents:    d.RevenueSavedCents,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func (m *MetricsMapper) DailyToModel(d *entity.DailyMetric) *model.DailyMetric {
	if d == nil {
		return nil
	}
	return &model.DailyMetric{
		Id:                   d.Id,
		Date:                 d.Date,
		TotalVisitors:        d.TotalVisitors,
		TotalUsers:           d.TotalUsers,
		TotalCompletions:     d.TotalCompletions,
		CancellationAttempts: d.CancellationAttempts,
		ConversionRate:       d.ConversionRate,
		FunnelStep1:          d.FunnelStep1,
		FunnelStep2:          d.FunnelStep2,
		FunnelStep3:          d.FunnelStep3,
		FunnelStep4:          d.FunnelStep4,
		FunnelStep5:          d.FunnelStep5,
		VariantAUsers:        d.VariantAUsers,
		VariantBUsers:        d.VariantBUsers,
		VariantAConversions:  d.VariantAConversions,
		VariantBConversions:  d.VariantBConversions,
		DownsellOffersShown:  d.DownsellOffersShown,
		DownsellAccepted:     d.DownsellAccepted,
		Cancellations:        d.Cancellations,
		RevenueAtRiskCents:   d.RevenueAtRiskCents,
		RevenueSavedCents:    d.RevenueSavedCents,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

func (m *MetricsMapper) CohortToEntity(c *model.UserCohort) *entity.UserCohort {
	if c == nil {
		return nil
	}
	return &entity.UserCohort{
		Id:              c.Id,
		CohortMonth:     c.CohortMonth,
		Variant:         abtest.Variant(c.Variant),
		TotalUsers:      c.TotalUsers,
		RetainedMonth1:  c.RetainedMonth1,
		RetainedMonth2:  c.RetainedMonth2,
		RetainedMonth3:  c.RetainedMonth3,
		RetentionMonth1: c.RetentionMonth1,
		RetentionMonth2: c.RetentionMonth2,
		RetentionMonth3: c.RetentionMonth3,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (m *MetricsMapper) CohortToModel(c *entity.UserCohort) *model.UserCohort {
	if c == nil {
		return nil
	}
	return &model.UserCohort{
		Id:              c.Id,
		CohortMonth:     c.CohortMonth,
		Variant:         string(c.Variant),
		TotalUsers:      c.TotalUsers,
		RetainedMonth1:  c.RetainedMonth1,
		RetainedMonth2:  c.RetainedMonth2,
		RetainedMonth3:  c.RetainedMonth3,
		RetentionMonth1: c.RetentionMonth1,
		RetentionMonth2: c.RetentionMonth2,
		RetentionMonth3: c.RetentionMonth3,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
