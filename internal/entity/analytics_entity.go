package entity

import (
	"time"

	"github.com/google/uuid"
)

// Event names the tracker emits. The ETL funnel is keyed on these.
const (
	EventPopupOpened      = "cancel_popup_opened"
	EventStepCompleted    = "journey_step_completed"
	EventDownsellShown    = "downsell_offer_shown"
	EventDownsellAccepted = "downsell_accepted"
	EventDownsellDeclined = "downsell_declined"
	EventCancelCompleted  = "cancellation_completed"
	EventPopupClosed      = "cancel_popup_closed"
)

type JourneyOutcome string

const (
	JourneyOutcomeInProgress JourneyOutcome = "in_progress"
	JourneyOutcomeCompleted  JourneyOutcome = "completed"
	JourneyOutcomeAbandoned  JourneyOutcome = "abandoned"
	JourneyOutcomeSaved      JourneyOutcome = "saved"
)

type AnalyticsEvent struct {
	Id         uuid.UUID
	UserId     *uuid.UUID
	SessionId  string
	EventName  string
	Properties map[string]any
	CreatedAt  time.Time
}

type JourneyStep struct {
	StepNumber int       `json:"stepNumber"`
	Screen     string    `json:"screen"`
	EnteredAt  time.Time `json:"enteredAt"`
}

type UserJourney struct {
	Id          uuid.UUID
	UserId      *uuid.UUID
	SessionId   string
	Steps       []JourneyStep
	Outcome     JourneyOutcome
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
