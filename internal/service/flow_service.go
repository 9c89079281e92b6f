package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"retention-flow-be/internal/config"
	"retention-flow-be/internal/dto"
	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/pkg/logger"
	"retention-flow-be/internal/repository/memory"
	"retention-flow-be/internal/repository/repoerr"
	"retention-flow-be/internal/repository/unitofwork"
	"retention-flow-be/pkg/abtest"
	"retention-flow-be/pkg/events"
	"retention-flow-be/pkg/payment"
	"retention-flow-be/pkg/pricing"
	"retention-flow-be/pkg/wizard"
)

// EventPublisher puts domain events on the bus. Implemented by the NATS
// publisher; nil-safe wiring is the container's job.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

var (
	ErrSessionNotFound = errors.New("flow: session not found")
	ErrUnknownEvent    = errors.New("flow: unknown event")
)

type FlowService interface {
	// GetFlowContext returns what the modal needs before it opens. It
	// degrades instead of failing: a missing or unreachable subscription
	// falls back to the default plan price.
	GetFlowContext(ctx context.Context, userId uuid.UUID) (*dto.FlowContextResponse, error)

	StartSession(ctx context.Context, userId uuid.UUID) (*dto.FlowSessionResponse, error)
	GetSession(ctx context.Context, sessionId string) (*dto.FlowSessionResponse, error)
	AdvanceSession(ctx context.Context, sessionId string, req *dto.AdvanceSessionRequest) (*dto.FlowSessionResponse, error)
	CloseSession(ctx context.Context, sessionId string) error

	// AcceptDownsell charges the discounted price and records acceptance.
	// It fails hard: no charge, no acceptance.
	AcceptDownsell(ctx context.Context, req *dto.AcceptDownsellRequest) (*dto.AcceptDownsellResponse, error)

	// CompleteCancellation records the outcome. Persistence problems are
	// logged, not returned: the user's cancellation always goes through.
	CompleteCancellation(ctx context.Context, req *dto.CompleteCancellationRequest) (*dto.CompleteCancellationResponse, error)
}

type flowService struct {
	cfg            *config.Config
	uowFactory     unitofwork.RepositoryFactory
	variants       VariantService
	sessions       *memory.SessionRepository
	gateway        payment.Gateway
	tracker        AnalyticsTracker
	eventPublisher EventPublisher
	log            logger.ILogger
}

func NewFlowService(
	cfg *config.Config,
	uowFactory unitofwork.RepositoryFactory,
	variants VariantService,
	sessions *memory.SessionRepository,
	gateway payment.Gateway,
	tracker AnalyticsTracker,
	eventPublisher EventPublisher,
	log logger.ILogger,
) FlowService {
	return &flowService{
		cfg:            cfg,
		uowFactory:     uowFactory,
		variants:       variants,
		sessions:       sessions,
		gateway:        gateway,
		tracker:        tracker,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *flowService) GetFlowContext(ctx context.Context, userId uuid.UUID) (*dto.FlowContextResponse, error) {
	subscription := s.resolveSubscription(ctx, userId)

	variant, isNew, err := s.variants.Assign(ctx, userId, subscription.Id)
	if err != nil {
		return nil, err
	}

	offerCents := pricing.DownsellPriceWithDiscount(subscription.MonthlyPriceCents, variant, s.cfg.Pricing.DownsellDiscount)

	resp := &dto.FlowContextResponse{
		UserId: userId,
		Subscription: dto.FlowSubscription{
			Id:                subscription.Id,
			MonthlyPriceCents: subscription.MonthlyPriceCents,
			Status:            string(subscription.Status),
		},
		Variant:            string(variant),
		IsNewAssignment:    isNew,
		DownsellPriceCents: offerCents,
		DisplayPrice:       pricing.FormatPrice(subscription.MonthlyPriceCents),
		DisplayOfferPrice:  pricing.FormatPrice(offerCents),
	}

	if session, ok := s.sessions.FindByUser(userId); ok {
		resp.Progress = sessionResponse(session)
	}

	return resp, nil
}

// resolveSubscription finds the user's active subscription, falling back
// to an in-memory stand-in at the default price when the row is missing
// or the store is unreachable. The modal must always be able to open.
func (s *flowService) resolveSubscription(ctx context.Context, userId uuid.UUID) *entity.Subscription {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	subscription, err := uow.SubscriptionRepository().FindActiveByUser(ctx, userId)
	if err == nil {
		return subscription
	}

	if !errors.Is(err, repoerr.ErrNotFound) {
		s.log.Warn("flow_service", "subscription lookup degraded", map[string]interface{}{
			"user_id": userId.String(),
			"error":   err.Error(),
		})
	}
	return &entity.Subscription{
		Id:                uuid.Nil,
		UserId:            userId,
		MonthlyPriceCents: s.cfg.Pricing.DefaultMonthlyPrice,
		Status:            entity.SubscriptionStatusActive,
	}
}

func (s *flowService) StartSession(ctx context.Context, userId uuid.UUID) (*dto.FlowSessionResponse, error) {
	session := &memory.FlowSession{
		ID:        uuid.NewString(),
		UserID:    userId,
		State:     wizard.NewState(),
		StartedAt: time.Now(),
	}
	s.sessions.Save(session)

	s.track(ctx, session, entity.EventPopupOpened, nil)

	return sessionResponse(session), nil
}

func (s *flowService) GetSession(ctx context.Context, sessionId string) (*dto.FlowSessionResponse, error) {
	session, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sessionResponse(session), nil
}

func (s *flowService) AdvanceSession(ctx context.Context, sessionId string, req *dto.AdvanceSessionRequest) (*dto.FlowSessionResponse, error) {
	session, ok := s.sessions.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	event, err := toWizardEvent(req)
	if err != nil {
		return nil, err
	}

	// Accepting the offer moves money; the screen only advances once the
	// charge succeeds. The promo popup is a confirmation of the escape
	// hatch, not a second charge.
	if _, ok := event.(wizard.AcceptDownsell); ok && session.State.Screen == wizard.ScreenOffer {
		if _, err := s.AcceptDownsell(ctx, &dto.AcceptDownsellRequest{UserId: session.UserID, SessionId: session.ID}); err != nil {
			return nil, err
		}
	}

	prev := session.State.Screen
	next, err := wizard.Reduce(session.State, event)
	if err != nil {
		return nil, err
	}
	session.State = next
	s.sessions.Save(session)

	s.trackTransition(ctx, session, prev, event)

	// Cancellation is final from the user's point of view the moment the
	// reasons screen validates; recording failures must not undo it.
	if submit, ok := event.(wizard.SubmitReason); ok && next.Screen == wizard.ScreenCancelled {
		if _, err := s.CompleteCancellation(ctx, &dto.CompleteCancellationRequest{
			UserId:    session.UserID,
			SessionId: session.ID,
			Reason:    string(submit.Reason),
			Amount:    submit.Amount,
			Feedback:  submit.Feedback,
		}); err != nil {
			s.log.Error("flow_service", "cancellation recording failed", map[string]interface{}{
				"user_id": session.UserID.String(),
				"error":   err.Error(),
			})
		}
	}

	return sessionResponse(session), nil
}

func (s *flowService) CloseSession(ctx context.Context, sessionId string) error {
	session, ok := s.sessions.Get(sessionId)
	if !ok {
		return ErrSessionNotFound
	}
	if !session.State.Screen.Terminal() {
		s.track(ctx, session, entity.EventPopupClosed, nil)
	}
	s.sessions.Delete(sessionId)
	return nil
}

func (s *flowService) AcceptDownsell(ctx context.Context, req *dto.AcceptDownsellRequest) (*dto.AcceptDownsellResponse, error) {
	subscription := s.resolveSubscription(ctx, req.UserId)

	variant, _, err := s.variants.Assign(ctx, req.UserId, subscription.Id)
	if err != nil {
		return nil, err
	}

	// The discount applies to whoever accepts, control arm included.
	amount := pricing.DiscountedPrice(subscription.MonthlyPriceCents, s.cfg.Pricing.DownsellDiscount)
	charge, err := s.gateway.ChargeDownsell(ctx, req.UserId, amount)
	if err != nil {
		return nil, fmt.Errorf("flow: downsell charge failed: %w", err)
	}

	// The user has been charged; everything past here is recorded best
	// effort and retried by support tooling, not by failing the request.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.CancellationRepository().UpdateOutcome(ctx, &entity.Cancellation{
		UserId:           req.UserId,
		AcceptedDownsell: true,
	}); err != nil {
		s.log.Error("flow_service", "failed to record downsell acceptance", map[string]interface{}{
			"user_id":        req.UserId.String(),
			"transaction_id": charge.TransactionID,
			"error":          err.Error(),
		})
	}

	if subscription.Id != uuid.Nil {
		if err := uow.SubscriptionRepository().UpdateStatus(ctx, subscription.Id, entity.SubscriptionStatusActive); err != nil {
			s.log.Error("flow_service", "failed to keep subscription active after downsell", map[string]interface{}{
				"subscription_id": subscription.Id.String(),
				"error":           err.Error(),
			})
		}
	}

	s.trackFor(ctx, req.UserId, req.SessionId, entity.EventDownsellAccepted, map[string]any{
		"charged_cents": charge.AmountCents,
	})
	s.publish(ctx, events.NewDownsellAccepted(req.UserId, subscription.Id, string(variant), charge.AmountCents, charge.TransactionID))

	return &dto.AcceptDownsellResponse{
		TransactionId:  charge.TransactionID,
		ChargedCents:   charge.AmountCents,
		DisplayPrice:   pricing.FormatPrice(charge.AmountCents),
		SubscriptionId: subscription.Id,
	}, nil
}

func (s *flowService) CompleteCancellation(ctx context.Context, req *dto.CompleteCancellationRequest) (*dto.CompleteCancellationResponse, error) {
	subscription := s.resolveSubscription(ctx, req.UserId)

	variant, _, err := s.variants.Assign(ctx, req.UserId, subscription.Id)
	if err != nil {
		variant = abtest.VariantA
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	outcome := &entity.Cancellation{
		UserId:           req.UserId,
		AcceptedDownsell: false,
	}
	if req.Reason != "" {
		outcome.Reason = &req.Reason
	}
	if req.Amount != "" {
		outcome.Amount = &req.Amount
	}
	if req.Feedback != "" {
		outcome.Feedback = &req.Feedback
	}
	if err := uow.CancellationRepository().UpdateOutcome(ctx, outcome); err != nil {
		s.log.Error("flow_service", "failed to record cancellation outcome", map[string]interface{}{
			"user_id": req.UserId.String(),
			"error":   err.Error(),
		})
	}

	if subscription.Id != uuid.Nil {
		if err := uow.SubscriptionRepository().UpdateStatus(ctx, subscription.Id, entity.SubscriptionStatusPendingCancellation); err != nil {
			s.log.Error("flow_service", "failed to mark subscription pending cancellation", map[string]interface{}{
				"subscription_id": subscription.Id.String(),
				"error":           err.Error(),
			})
		}
	}

	s.trackFor(ctx, req.UserId, req.SessionId, entity.EventCancelCompleted, map[string]any{
		"reason": req.Reason,
	})
	s.publish(ctx, events.NewCancellationCompleted(req.UserId, subscription.Id, string(variant), req.Reason))

	return &dto.CompleteCancellationResponse{
		SubscriptionId: subscription.Id,
		Status:         string(entity.SubscriptionStatusPendingCancellation),
	}, nil
}

func (s *flowService) publish(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.log.Warn("flow_service", "failed to publish domain event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}

func (s *flowService) track(ctx context.Context, session *memory.FlowSession, name string, props map[string]any) {
	s.trackFor(ctx, session.UserID, session.ID, name, props)
}

func (s *flowService) trackFor(ctx context.Context, userId uuid.UUID, sessionId string, name string, props map[string]any) {
	uid := userId
	s.tracker.Track(ctx, &entity.AnalyticsEvent{
		UserId:     &uid,
		SessionId:  sessionId,
		EventName:  name,
		Properties: props,
	})
}

// trackTransition emits the funnel step events the rollup counts, plus
// the offer impression and decline markers.
func (s *flowService) trackTransition(ctx context.Context, session *memory.FlowSession, prev wizard.Screen, event wizard.Event) {
	if _, ok := event.(wizard.Back); ok {
		return
	}

	if session.State.Screen == wizard.ScreenOffer && prev != wizard.ScreenOffer {
		s.track(ctx, session, entity.EventDownsellShown, nil)
	}
	if _, ok := event.(wizard.DeclineDownsell); ok {
		s.track(ctx, session, entity.EventDownsellDeclined, nil)
	}

	step := 0
	switch prev {
	case wizard.ScreenMainEntry:
		step = 1
	case wizard.ScreenOffer, wizard.ScreenJobFoundForm:
		step = 2
	case wizard.ScreenFeedbackStep2, wizard.ScreenFeedbackForm:
		step = 3
	default:
		return
	}
	s.track(ctx, session, entity.EventStepCompleted, map[string]any{
		"stepNumber": step,
		"screen":     string(prev),
	})
}

func sessionResponse(session *memory.FlowSession) *dto.FlowSessionResponse {
	state := session.State
	return &dto.FlowSessionResponse{
		SessionId:   session.ID,
		UserId:      session.UserID,
		Screen:      string(state.Screen),
		Terminal:    state.Screen.Terminal(),
		FoundWithMM: state.FoundWithMM,
		HasLawyer:   state.HasLawyer,
		VisaType:    state.VisaType,
		Reason:      string(state.Reason),
		Amount:      state.Amount,
		Feedback:    state.Feedback,
	}
}

func toWizardEvent(req *dto.AdvanceSessionRequest) (wizard.Event, error) {
	switch req.Event {
	case "choose_job_found":
		return wizard.ChooseJobFound{}, nil
	case "choose_still_looking":
		return wizard.ChooseStillLooking{}, nil
	case "submit_job_form":
		ev := wizard.SubmitJobForm{
			RolesApplied:         req.RolesApplied,
			CompaniesEmailed:     req.CompaniesEmailed,
			CompaniesInterviewed: req.CompaniesInterviewed,
		}
		if req.FoundWithMM != nil {
			ev.FoundWithMM = *req.FoundWithMM
			ev.FoundWithMMAnswered = true
		}
		return ev, nil
	case "submit_job_feedback":
		return wizard.SubmitJobFeedback{Feedback: req.Feedback}, nil
	case "answer_lawyer":
		if req.HasLawyer == nil {
			return nil, &wizard.ValidationError{Field: "hasLawyer", Reason: "answer required"}
		}
		return wizard.AnswerLawyer{HasLawyer: *req.HasLawyer}, nil
	case "submit_visa_type":
		return wizard.SubmitVisaType{VisaType: req.VisaType}, nil
	case "accept_downsell":
		return wizard.AcceptDownsell{}, nil
	case "decline_downsell":
		return wizard.DeclineDownsell{}, nil
	case "submit_feedback":
		return wizard.SubmitFeedback{Feedback: req.Feedback}, nil
	case "accept_promo":
		return wizard.AcceptPromo{}, nil
	case "submit_reason":
		return wizard.SubmitReason{
			Reason:   wizard.CancellationReason(req.Reason),
			Amount:   req.Amount,
			Feedback: req.Feedback,
		}, nil
	case "back":
		return wizard.Back{}, nil
	case "close":
		return wizard.Close{}, nil
	}
	return nil, ErrUnknownEvent
}
