package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"retention-flow-be/internal/config"
	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/pkg/logger"
	"retention-flow-be/internal/repository/contract"
	"retention-flow-be/internal/repository/repoerr"
	"retention-flow-be/internal/repository/specification"
	"retention-flow-be/internal/repository/unitofwork"
	"retention-flow-be/pkg/events"
	"retention-flow-be/pkg/payment"
)

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

func (noopLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) { return nil, nil }
func (noopLogger) GetLogById(string) (*logger.LogEntry, error)         { return nil, nil }

type fakeCancellationRepo struct {
	rows map[uuid.UUID]*entity.Cancellation

	findErr   error
	insertErr error
	updateErr error

	insertCalls int
	updateCalls int
	lastUpdate  *entity.Cancellation
}

func newFakeCancellationRepo() *fakeCancellationRepo {
	return &fakeCancellationRepo{rows: map[uuid.UUID]*entity.Cancellation{}}
}

func (r *fakeCancellationRepo) InsertIfAbsent(ctx context.Context, c *entity.Cancellation) (*entity.Cancellation, bool, error) {
	r.insertCalls++
	if r.insertErr != nil {
		return nil, false, r.insertErr
	}
	if existing, ok := r.rows[c.UserId]; ok {
		return existing, false, nil
	}
	stored := *c
	stored.Id = uuid.New()
	stored.CreatedAt = time.Now()
	r.rows[c.UserId] = &stored
	return &stored, true, nil
}

func (r *fakeCancellationRepo) FindByUser(ctx context.Context, userId uuid.UUID) (*entity.Cancellation, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if row, ok := r.rows[userId]; ok {
		return row, nil
	}
	return nil, repoerr.ErrNotFound
}

func (r *fakeCancellationRepo) UpdateOutcome(ctx context.Context, c *entity.Cancellation) error {
	r.updateCalls++
	r.lastUpdate = c
	if r.updateErr != nil {
		return r.updateErr
	}
	if row, ok := r.rows[c.UserId]; ok {
		row.Reason = c.Reason
		row.Amount = c.Amount
		row.Feedback = c.Feedback
		row.AcceptedDownsell = c.AcceptedDownsell
	}
	return nil
}

func (r *fakeCancellationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Cancellation, error) {
	out := make([]*entity.Cancellation, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out, nil
}

type fakeSubscriptionRepo struct {
	subscription *entity.Subscription
	findErr      error

	statusCalls int
	lastStatus  entity.SubscriptionStatus
	statusErr   error
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, s *entity.Subscription) error { return nil }

func (r *fakeSubscriptionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	if r.subscription == nil {
		return nil, nil
	}
	return []*entity.Subscription{r.subscription}, nil
}

func (r *fakeSubscriptionRepo) FindActiveByUser(ctx context.Context, userId uuid.UUID) (*entity.Subscription, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.subscription == nil {
		return nil, repoerr.ErrNotFound
	}
	return r.subscription, nil
}

func (r *fakeSubscriptionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.SubscriptionStatus) error {
	r.statusCalls++
	r.lastStatus = status
	return r.statusErr
}

type fakeUow struct {
	cancellations *fakeCancellationRepo
	subscriptions *fakeSubscriptionRepo
	analytics     contract.AnalyticsRepository
	metrics       contract.MetricsRepository
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) SubscriptionRepository() contract.SubscriptionRepository { return u.subscriptions }
func (u *fakeUow) CancellationRepository() contract.CancellationRepository { return u.cancellations }
func (u *fakeUow) AnalyticsRepository() contract.AnalyticsRepository       { return u.analytics }
func (u *fakeUow) MetricsRepository() contract.MetricsRepository           { return u.metrics }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type recordingTracker struct {
	events []*entity.AnalyticsEvent
}

func (t *recordingTracker) Track(ctx context.Context, event *entity.AnalyticsEvent) {
	t.events = append(t.events, event)
}

func (t *recordingTracker) Buffered() []*entity.AnalyticsEvent { return t.events }

func (t *recordingTracker) names() []string {
	out := make([]string, 0, len(t.events))
	for _, e := range t.events {
		out = append(out, e.EventName)
	}
	return out
}

type recordingPublisher struct {
	published []events.Event
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return p.err
}

type fakeGateway struct {
	err    error
	calls  int
	charge *payment.Charge
}

func (g *fakeGateway) ChargeDownsell(ctx context.Context, userID uuid.UUID, amountCents int) (*payment.Charge, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	g.charge = &payment.Charge{
		TransactionID: "txn_test",
		AmountCents:   amountCents,
		ChargedAt:     time.Now(),
	}
	return g.charge, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{
			DefaultMonthlyPrice: 2500,
			DownsellDiscount:    1000,
		},
		Flow: config.FlowConfig{SessionTTLMinutes: 60},
		Analytics: config.AnalyticsConfig{
			Enabled:    true,
			BufferSize: 100,
			EventTopic: "ANALYTICS_EVENTS",
		},
		ETL: config.ETLConfig{
			RetentionMonth1:         0.85,
			RetentionMonth2:         0.75,
			RetentionMonth3:         0.70,
			ConversionDeltaAlertPts: 10,
			RevenueSavedAlertFactor: 1.5,
			VariantDeltaAlertPts:    5,
			VariantMinUsersPerArm:   30,
			EventRetentionDays:      90,
		},
	}
}
