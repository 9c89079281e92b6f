package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"retention-flow-be/internal/config"
	"retention-flow-be/internal/dto"
	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/pkg/logger"
	"retention-flow-be/internal/pkg/mailer"
	"retention-flow-be/internal/repository/specification"
	"retention-flow-be/internal/repository/unitofwork"
	"retention-flow-be/pkg/events"
	"retention-flow-be/pkg/metrics"
)

// etlConcurrency bounds the per-day fan-out.
const etlConcurrency = 4

type ETLService interface {
	// Run rebuilds daily rollups for the last `days` UTC days, refreshes
	// cohorts, detects insights and purges expired raw events. Re-running
	// the same window is idempotent.
	Run(ctx context.Context, days int) (*dto.RunETLResponse, error)
}

type etlService struct {
	cfg            *config.Config
	uowFactory     unitofwork.RepositoryFactory
	email          mailer.IEmailService
	eventPublisher EventPublisher
	log            logger.ILogger
}

func NewETLService(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	email mailer.IEmailService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) ETLService {
	return &etlService{
		cfg:            cfg,
		uowFactory:     uowFactory,
		email:          email,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *etlService) Run(ctx context.Context, days int) (*dto.RunETLResponse, error) {
	if days <= 0 {
		days = 1
	}
	started := time.Now()

	rollups, err := s.rebuildDays(ctx, days)
	if err != nil {
		return nil, err
	}

	if err := s.rebuildCohorts(ctx); err != nil {
		return nil, err
	}

	insights := s.detectInsights(ctx, rollups)
	s.reportInsights(ctx, insights)

	purged, err := s.purgeExpiredEvents(ctx)
	if err != nil {
		s.log.Warn("etl_service", "event cleanup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	resp := &dto.RunETLResponse{
		DaysProcessed: days,
		EventsPurged:  purged,
		Duration:      time.Since(started).String(),
	}
	for _, ins := range insights {
		resp.Insights = append(resp.Insights, dto.InsightPayload{
			Kind:       ins.Kind,
			Message:    ins.Message,
			DetectedAt: ins.DetectedAt,
		})
	}

	s.log.Info("etl_service", "run finished", map[string]interface{}{
		"days":          days,
		"events_purged": purged,
		"insights":      len(insights),
		"duration":      resp.Duration,
	})
	return resp, nil
}

// rebuildDays fans the per-day rollup out across a bounded worker group.
// Each day reads its own UTC window, so days can run in parallel without
// sharing state. Results come back keyed by offset for insight detection.
func (s *etlService) rebuildDays(ctx context.Context, days int) (map[int]*entity.DailyMetric, error) {
	rollups := make(map[int]*entity.DailyMetric, days)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(etlConcurrency)

	now := time.Now().UTC()
	for offset := 0; offset < days; offset++ {
		offset := offset
		g.Go(func() error {
			day := now.AddDate(0, 0, -offset)
			rollup, err := s.rebuildDay(gctx, day)
			if err != nil {
				return fmt.Errorf("rollup for %s: %w", day.Format("2006-01-02"), err)
			}
			mu.Lock()
			rollups[offset] = rollup
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rollups, nil
}

func (s *etlService) rebuildDay(ctx context.Context, day time.Time) (*entity.DailyMetric, error) {
	from, to := metrics.DayWindow(day)

	uow := s.uowFactory.NewUnitOfWork(ctx)

	dayEvents, err := uow.AnalyticsRepository().FindEvents(ctx, specification.CreatedBetween{From: from, To: to})
	if err != nil {
		return nil, err
	}
	journeys, err := uow.AnalyticsRepository().FindJourneys(ctx, specification.CreatedBetween{From: from, To: to})
	if err != nil {
		return nil, err
	}
	cancellations, err := uow.CancellationRepository().FindAll(ctx, specification.CreatedBetween{From: from, To: to})
	if err != nil {
		return nil, err
	}

	rollup := metrics.BuildDailyRollup(day, dayEvents, journeys, cancellations, metrics.RollupParams{
		AtRiskUnitCents: int64(s.cfg.Pricing.DefaultMonthlyPrice),
		SavedUnitCents:  int64(s.cfg.Pricing.DefaultMonthlyPrice - s.cfg.Pricing.DownsellDiscount),
	})
	if err := uow.MetricsRepository().UpsertDaily(ctx, rollup); err != nil {
		return nil, err
	}
	return rollup, nil
}

func (s *etlService) rebuildCohorts(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cancellations, err := uow.CancellationRepository().FindAll(ctx)
	if err != nil {
		return err
	}

	cohorts := metrics.BuildCohorts(cancellations, metrics.CohortRates{
		Month1: s.cfg.ETL.RetentionMonth1,
		Month2: s.cfg.ETL.RetentionMonth2,
		Month3: s.cfg.ETL.RetentionMonth3,
	})
	for _, cohort := range cohorts {
		if err := uow.MetricsRepository().UpsertCohort(ctx, cohort); err != nil {
			return err
		}
	}
	return nil
}

func (s *etlService) detectInsights(ctx context.Context, rollups map[int]*entity.DailyMetric) []entity.Insight {
	today := rollups[0]
	yesterday := rollups[1]
	if yesterday == nil && today != nil {
		// A one-day run rebuilds today only. Day-over-day comparison still
		// wants yesterday, so read the stored rollup from the last run.
		yesterday = s.findStoredRollup(ctx, today.Date.AddDate(0, 0, -1))
	}
	return metrics.DetectInsights(today, yesterday, metrics.InsightParams{
		ConversionDeltaPts: s.cfg.ETL.ConversionDeltaAlertPts,
		RevenueSavedFactor: s.cfg.ETL.RevenueSavedAlertFactor,
		VariantDeltaPts:    s.cfg.ETL.VariantDeltaAlertPts,
		MinUsersPerArm:     s.cfg.ETL.VariantMinUsersPerArm,
	})
}

func (s *etlService) findStoredRollup(ctx context.Context, day time.Time) *entity.DailyMetric {
	from, to := metrics.DayWindow(day)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.MetricsRepository().FindDailyRange(ctx, from, to)
	if err != nil {
		s.log.Warn("etl_service", "failed to read stored rollup", map[string]interface{}{
			"date":  from.Format("2006-01-02"),
			"error": err.Error(),
		})
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}

func (s *etlService) reportInsights(ctx context.Context, insights []entity.Insight) {
	if len(insights) == 0 {
		return
	}
	for _, ins := range insights {
		s.log.Info("etl_service", "insight detected", map[string]interface{}{
			"kind":    ins.Kind,
			"message": ins.Message,
		})
		if s.eventPublisher != nil {
			if err := s.eventPublisher.Publish(ctx, events.NewInsightDetected(ins.Kind, ins.Message)); err != nil {
				s.log.Warn("etl_service", "failed to publish insight", map[string]interface{}{
					"kind":  ins.Kind,
					"error": err.Error(),
				})
			}
		}
	}
	if s.email != nil && s.cfg.SMTP.DigestRecipient != "" {
		if err := s.email.SendInsightDigest(s.cfg.SMTP.DigestRecipient, insights); err != nil {
			s.log.Warn("etl_service", "failed to send insight digest", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

func (s *etlService) purgeExpiredEvents(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.cfg.ETL.EventRetentionDays)
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AnalyticsRepository().DeleteEventsBefore(ctx, cutoff)
}
