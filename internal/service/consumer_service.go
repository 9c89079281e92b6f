package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/pkg/logger"
	"retention-flow-be/internal/repository/repoerr"
	"retention-flow-be/internal/repository/specification"
	"retention-flow-be/internal/repository/unitofwork"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the analytics topic: each message becomes a row
// in analytics_events and an update to the session's journey.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload trackedEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("analytics_consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed messages would retry forever
		return
	}

	event := &entity.AnalyticsEvent{
		Id:         payload.Id,
		UserId:     payload.UserId,
		SessionId:  payload.SessionId,
		EventName:  payload.EventName,
		Properties: payload.Properties,
		CreatedAt:  payload.CreatedAt,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	repo := uow.AnalyticsRepository()

	if err := repo.CreateEvent(ctx, event); err != nil {
		cs.log.Error("analytics_consumer", "failed to persist event", map[string]interface{}{
			"event_name": event.EventName,
			"error":      err.Error(),
		})
		if errors.Is(err, repoerr.ErrUnavailable) {
			msg.Nack() // retriable
			return
		}
		msg.Ack()
		return
	}

	if err := cs.applyToJourney(ctx, uow, event); err != nil {
		cs.log.Warn("analytics_consumer", "failed to update journey", map[string]interface{}{
			"session_id": event.SessionId,
			"error":      err.Error(),
		})
	}

	msg.Ack()
}

// applyToJourney folds the event into the per-session journey record.
func (cs *consumerService) applyToJourney(ctx context.Context, uow unitofwork.UnitOfWork, event *entity.AnalyticsEvent) error {
	repo := uow.AnalyticsRepository()

	journeys, err := repo.FindJourneys(ctx, specification.Filter("session_id", event.SessionId))
	if err != nil {
		return err
	}

	var journey *entity.UserJourney
	if len(journeys) > 0 {
		journey = journeys[0]
	} else {
		journey = &entity.UserJourney{
			UserId:    event.UserId,
			SessionId: event.SessionId,
			Outcome:   entity.JourneyOutcomeInProgress,
			CreatedAt: event.CreatedAt,
		}
	}

	switch event.EventName {
	case entity.EventPopupOpened:
		journey.Steps = append(journey.Steps, entity.JourneyStep{
			StepNumber: 1, Screen: "main_entry", EnteredAt: event.CreatedAt,
		})
	case entity.EventStepCompleted:
		step := 0
		if v, ok := event.Properties["stepNumber"].(float64); ok {
			step = int(v)
		}
		screen, _ := event.Properties["screen"].(string)
		journey.Steps = append(journey.Steps, entity.JourneyStep{
			StepNumber: step + 1, Screen: screen, EnteredAt: event.CreatedAt,
		})
	case entity.EventCancelCompleted:
		journey.Outcome = entity.JourneyOutcomeCompleted
		journey.CompletedAt = completedAt(event.CreatedAt)
	case entity.EventDownsellAccepted:
		journey.Outcome = entity.JourneyOutcomeSaved
		journey.CompletedAt = completedAt(event.CreatedAt)
	case entity.EventPopupClosed:
		if journey.Outcome == entity.JourneyOutcomeInProgress {
			journey.Outcome = entity.JourneyOutcomeAbandoned
		}
	}

	return repo.UpsertJourney(ctx, journey)
}

func completedAt(t time.Time) *time.Time {
	return &t
}
