package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention-flow-be/internal/dto"
	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/repository/memory"
	"retention-flow-be/internal/repository/repoerr"
	"retention-flow-be/pkg/abtest"
	"retention-flow-be/pkg/events"
	"retention-flow-be/pkg/wizard"
)

type fixedVariantService struct {
	variant abtest.Variant
	isNew   bool
	err     error
}

func (s *fixedVariantService) Assign(ctx context.Context, userId uuid.UUID, subscriptionId uuid.UUID) (abtest.Variant, bool, error) {
	return s.variant, s.isNew, s.err
}

type flowFixture struct {
	svc           FlowService
	cancellations *fakeCancellationRepo
	subscriptions *fakeSubscriptionRepo
	gateway       *fakeGateway
	tracker       *recordingTracker
	publisher     *recordingPublisher
	sessions      *memory.SessionRepository
}

func newFlowFixture(variant abtest.Variant) *flowFixture {
	cancellations := newFakeCancellationRepo()
	subscriptions := &fakeSubscriptionRepo{}
	gateway := &fakeGateway{}
	tracker := &recordingTracker{}
	publisher := &recordingPublisher{}
	sessions := memory.NewSessionRepository(time.Hour)

	svc := NewFlowService(
		testConfig(),
		&fakeUowFactory{uow: &fakeUow{cancellations: cancellations, subscriptions: subscriptions}},
		&fixedVariantService{variant: variant},
		sessions,
		gateway,
		tracker,
		publisher,
		noopLogger{},
	)

	return &flowFixture{
		svc:           svc,
		cancellations: cancellations,
		subscriptions: subscriptions,
		gateway:       gateway,
		tracker:       tracker,
		publisher:     publisher,
		sessions:      sessions,
	}
}

func activeSubscription(userId uuid.UUID, priceCents int) *entity.Subscription {
	return &entity.Subscription{
		Id:                uuid.New(),
		UserId:            userId,
		MonthlyPriceCents: priceCents,
		Status:            entity.SubscriptionStatusActive,
	}
}

func TestGetFlowContextVariantBOfferPrice(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)

	resp, err := f.svc.GetFlowContext(context.Background(), userId)

	require.NoError(t, err)
	assert.Equal(t, "B", resp.Variant)
	assert.Equal(t, 1500, resp.DownsellPriceCents)
	assert.Equal(t, "$25.00", resp.DisplayPrice)
	assert.Equal(t, "$15.00", resp.DisplayOfferPrice)
}

func TestGetFlowContextVariantAGetsFullPrice(t *testing.T) {
	f := newFlowFixture(abtest.VariantA)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2900)

	resp, err := f.svc.GetFlowContext(context.Background(), userId)

	require.NoError(t, err)
	assert.Equal(t, 2900, resp.DownsellPriceCents)
	assert.Equal(t, "$29.00", resp.DisplayOfferPrice)
}

func TestGetFlowContextFallsBackToDefaultPrice(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	f.subscriptions.findErr = repoerr.ErrUnavailable

	resp, err := f.svc.GetFlowContext(context.Background(), uuid.New())

	require.NoError(t, err, "the modal must open even when the store is down")
	assert.Equal(t, 2500, resp.Subscription.MonthlyPriceCents)
	assert.Equal(t, 1500, resp.DownsellPriceCents)
	assert.Equal(t, uuid.Nil, resp.Subscription.Id)
}

func TestGetFlowContextIncludesOpenSession(t *testing.T) {
	f := newFlowFixture(abtest.VariantA)
	userId := uuid.New()

	started, err := f.svc.StartSession(context.Background(), userId)
	require.NoError(t, err)

	resp, err := f.svc.GetFlowContext(context.Background(), userId)
	require.NoError(t, err)
	require.NotNil(t, resp.Progress)
	assert.Equal(t, started.SessionId, resp.Progress.SessionId)
}

func TestStartSessionTracksPopupOpened(t *testing.T) {
	f := newFlowFixture(abtest.VariantA)

	resp, err := f.svc.StartSession(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, string(wizard.ScreenMainEntry), resp.Screen)
	assert.Contains(t, f.tracker.names(), entity.EventPopupOpened)
}

func TestAdvanceSessionUnknownId(t *testing.T) {
	f := newFlowFixture(abtest.VariantA)

	_, err := f.svc.AdvanceSession(context.Background(), "missing", &dto.AdvanceSessionRequest{Event: "close"})

	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAdvanceSessionWalksDeclinePath(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)

	started, err := f.svc.StartSession(context.Background(), userId)
	require.NoError(t, err)

	resp, err := f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "choose_still_looking"})
	require.NoError(t, err)
	assert.Equal(t, string(wizard.ScreenOffer), resp.Screen)

	resp, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "decline_downsell"})
	require.NoError(t, err)
	assert.Equal(t, string(wizard.ScreenFeedbackStep2), resp.Screen)

	names := f.tracker.names()
	assert.Contains(t, names, entity.EventDownsellShown)
	assert.Contains(t, names, entity.EventDownsellDeclined)
}

func TestAdvanceSessionAcceptDownsellBlocksOnChargeFailure(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)
	f.gateway.err = errors.New("card declined")

	started, err := f.svc.StartSession(context.Background(), userId)
	require.NoError(t, err)
	_, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "choose_still_looking"})
	require.NoError(t, err)

	_, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "accept_downsell"})

	require.Error(t, err)
	assert.Zero(t, f.cancellations.updateCalls, "a failed charge must not be recorded as accepted")

	// The screen did not move; the user can retry or decline.
	current, err := f.svc.GetSession(context.Background(), started.SessionId)
	require.NoError(t, err)
	assert.Equal(t, string(wizard.ScreenOffer), current.Screen)
}

func TestAdvanceSessionAcceptDownsellChargesThenCloses(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)

	started, err := f.svc.StartSession(context.Background(), userId)
	require.NoError(t, err)
	_, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "choose_still_looking"})
	require.NoError(t, err)

	resp, err := f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "accept_downsell"})

	require.NoError(t, err)
	assert.Equal(t, string(wizard.ScreenClosed), resp.Screen)
	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, 1500, f.gateway.charge.AmountCents)
	require.NotNil(t, f.cancellations.lastUpdate)
	assert.True(t, f.cancellations.lastUpdate.AcceptedDownsell)

	// Accepting keeps the subscription alive.
	assert.Equal(t, 1, f.subscriptions.statusCalls)
	assert.Equal(t, entity.SubscriptionStatusActive, f.subscriptions.lastStatus)
}

func TestAcceptDownsellChargesControlArmToo(t *testing.T) {
	// Variant A sees the offer without the discounted framing, but whoever
	// accepts still pays the reduced price.
	f := newFlowFixture(abtest.VariantA)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)

	resp, err := f.svc.AcceptDownsell(context.Background(), &dto.AcceptDownsellRequest{UserId: userId})

	require.NoError(t, err)
	assert.Equal(t, 1, f.gateway.calls)
	assert.Equal(t, 1500, resp.ChargedCents)
	assert.Equal(t, "$15.00", resp.DisplayPrice)
}

func TestAdvanceSessionPromoPopupAcceptIsNoCharge(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)

	started, err := f.svc.StartSession(context.Background(), userId)
	require.NoError(t, err)
	for _, ev := range []string{"choose_still_looking", "decline_downsell", "accept_promo"} {
		_, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: ev})
		require.NoError(t, err)
	}

	resp, err := f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "accept_downsell"})

	require.NoError(t, err)
	assert.Equal(t, string(wizard.ScreenClosed), resp.Screen)
	assert.Zero(t, f.gateway.calls, "confirming the promo popup must not charge again")
}

func TestAcceptDownsellSurvivesRecordingFailure(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)
	f.cancellations.updateErr = repoerr.ErrUnavailable

	resp, err := f.svc.AcceptDownsell(context.Background(), &dto.AcceptDownsellRequest{UserId: userId})

	require.NoError(t, err, "the user was charged; the request must not fail")
	assert.Equal(t, 1500, resp.ChargedCents)
	assert.Equal(t, "$15.00", resp.DisplayPrice)
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.TypeDownsellAccepted, f.publisher.published[0].EventType())
}

func TestCompleteCancellationSurvivesStoreFailures(t *testing.T) {
	f := newFlowFixture(abtest.VariantA)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)
	f.cancellations.updateErr = repoerr.ErrUnavailable
	f.subscriptions.statusErr = repoerr.ErrUnavailable

	resp, err := f.svc.CompleteCancellation(context.Background(), &dto.CompleteCancellationRequest{
		UserId: userId,
		Reason: "too-expensive",
		Amount: "15",
	})

	require.NoError(t, err, "cancellation proceeds even when persistence fails")
	assert.Equal(t, string(entity.SubscriptionStatusPendingCancellation), resp.Status)
	assert.Contains(t, f.tracker.names(), entity.EventCancelCompleted)
	require.Len(t, f.publisher.published, 1)
	assert.Equal(t, events.TypeCancellationCompleted, f.publisher.published[0].EventType())
}

func TestCompleteCancellationMarksSubscription(t *testing.T) {
	f := newFlowFixture(abtest.VariantA)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)

	_, err := f.svc.CompleteCancellation(context.Background(), &dto.CompleteCancellationRequest{
		UserId: userId,
		Reason: "other",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, f.subscriptions.statusCalls)
	assert.Equal(t, entity.SubscriptionStatusPendingCancellation, f.subscriptions.lastStatus)
	require.NotNil(t, f.cancellations.lastUpdate)
	assert.False(t, f.cancellations.lastUpdate.AcceptedDownsell)
	require.NotNil(t, f.cancellations.lastUpdate.Reason)
	assert.Equal(t, "other", *f.cancellations.lastUpdate.Reason)
}

func TestAdvanceSessionSubmitReasonRecordsOutcome(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)

	started, err := f.svc.StartSession(context.Background(), userId)
	require.NoError(t, err)
	for _, ev := range []string{"choose_still_looking", "decline_downsell"} {
		_, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: ev})
		require.NoError(t, err)
	}
	_, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{
		Event:    "submit_feedback",
		Feedback: "The roles on offer were outside my field and far below my level.",
	})
	require.NoError(t, err)

	resp, err := f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{
		Event:  "submit_reason",
		Reason: "too-expensive",
		Amount: "15",
	})

	require.NoError(t, err)
	assert.Equal(t, string(wizard.ScreenCancelled), resp.Screen)
	require.NotNil(t, f.cancellations.lastUpdate)
	require.NotNil(t, f.cancellations.lastUpdate.Reason)
	assert.Equal(t, "too-expensive", *f.cancellations.lastUpdate.Reason)
	assert.Equal(t, 1, f.subscriptions.statusCalls)
}

func TestCloseSessionTracksAbandon(t *testing.T) {
	f := newFlowFixture(abtest.VariantA)
	started, err := f.svc.StartSession(context.Background(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, f.svc.CloseSession(context.Background(), started.SessionId))

	assert.Contains(t, f.tracker.names(), entity.EventPopupClosed)
	_, err = f.svc.GetSession(context.Background(), started.SessionId)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCloseSessionAfterTerminalScreenIsQuiet(t *testing.T) {
	f := newFlowFixture(abtest.VariantB)
	userId := uuid.New()
	f.subscriptions.subscription = activeSubscription(userId, 2500)

	started, err := f.svc.StartSession(context.Background(), userId)
	require.NoError(t, err)
	_, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "choose_still_looking"})
	require.NoError(t, err)
	_, err = f.svc.AdvanceSession(context.Background(), started.SessionId, &dto.AdvanceSessionRequest{Event: "accept_downsell"})
	require.NoError(t, err)

	require.NoError(t, f.svc.CloseSession(context.Background(), started.SessionId))

	assert.NotContains(t, f.tracker.names(), entity.EventPopupClosed)
}
