package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention-flow-be/internal/entity"
)

func newConsumerFixture() (*consumerService, *fakeAnalyticsRepo) {
	analytics := newFakeAnalyticsRepo()
	uow := &fakeUow{
		cancellations: newFakeCancellationRepo(),
		subscriptions: &fakeSubscriptionRepo{},
		analytics:     analytics,
	}
	cs := &consumerService{
		topicName:  "ANALYTICS_EVENTS",
		uowFactory: &fakeUowFactory{uow: uow},
		log:        noopLogger{},
	}
	return cs, analytics
}

func trackedMessage(t *testing.T, sessionId, name string, props map[string]any) *message.Message {
	t.Helper()
	payload, err := json.Marshal(trackedEventMessage{
		SessionId:  sessionId,
		EventName:  name,
		Properties: props,
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func TestConsumerPersistsEventAndStartsJourney(t *testing.T) {
	cs, analytics := newConsumerFixture()

	cs.processMessage(context.Background(), trackedMessage(t, "s1", entity.EventPopupOpened, nil))

	require.Len(t, analytics.events, 1)
	journey := analytics.journeys["s1"]
	require.NotNil(t, journey)
	assert.Equal(t, entity.JourneyOutcomeInProgress, journey.Outcome)
	require.Len(t, journey.Steps, 1)
	assert.Equal(t, 1, journey.Steps[0].StepNumber)
}

func TestConsumerFoldsStepsIntoJourney(t *testing.T) {
	cs, analytics := newConsumerFixture()
	ctx := context.Background()

	cs.processMessage(ctx, trackedMessage(t, "s1", entity.EventPopupOpened, nil))
	cs.processMessage(ctx, trackedMessage(t, "s1", entity.EventStepCompleted, map[string]any{
		"stepNumber": float64(1), "screen": "offer",
	}))
	cs.processMessage(ctx, trackedMessage(t, "s1", entity.EventCancelCompleted, nil))

	journey := analytics.journeys["s1"]
	require.NotNil(t, journey)
	require.Len(t, journey.Steps, 2)
	assert.Equal(t, 2, journey.Steps[1].StepNumber)
	assert.Equal(t, "offer", journey.Steps[1].Screen)
	assert.Equal(t, entity.JourneyOutcomeCompleted, journey.Outcome)
	assert.NotNil(t, journey.CompletedAt)
}

func TestConsumerDownsellAcceptanceSavesJourney(t *testing.T) {
	cs, analytics := newConsumerFixture()
	ctx := context.Background()

	cs.processMessage(ctx, trackedMessage(t, "s1", entity.EventPopupOpened, nil))
	cs.processMessage(ctx, trackedMessage(t, "s1", entity.EventDownsellAccepted, nil))

	assert.Equal(t, entity.JourneyOutcomeSaved, analytics.journeys["s1"].Outcome)
}

func TestConsumerCloseMarksAbandonedOnlyInProgress(t *testing.T) {
	cs, analytics := newConsumerFixture()
	ctx := context.Background()

	cs.processMessage(ctx, trackedMessage(t, "s1", entity.EventPopupOpened, nil))
	cs.processMessage(ctx, trackedMessage(t, "s1", entity.EventCancelCompleted, nil))
	cs.processMessage(ctx, trackedMessage(t, "s1", entity.EventPopupClosed, nil))

	// Closing after completion must not downgrade the outcome.
	assert.Equal(t, entity.JourneyOutcomeCompleted, analytics.journeys["s1"].Outcome)
}

func TestConsumerAcksMalformedPayload(t *testing.T) {
	cs, analytics := newConsumerFixture()

	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	cs.processMessage(context.Background(), msg)

	assert.Empty(t, analytics.events)
	// Acked, not nacked: a malformed message would otherwise retry forever.
	select {
	case <-msg.Acked():
	default:
		t.Fatal("expected malformed message to be acked")
	}
}
