package dto

import "github.com/google/uuid"

// FlowContextResponse is everything the modal needs before it opens:
// the subscription being cancelled, the sticky A/B variant and the
// price the offer screen should show.
type FlowContextResponse struct {
	UserId             uuid.UUID                `json:"userId"`
	Subscription       FlowSubscription         `json:"subscription"`
	Variant            string                   `json:"variant"`
	IsNewAssignment    bool                     `json:"isNewAssignment"`
	DownsellPriceCents int                      `json:"downsellPriceCents"`
	DisplayPrice       string                   `json:"displayPrice"`
	DisplayOfferPrice  string                   `json:"displayOfferPrice"`
	Progress           *FlowSessionResponse     `json:"progress,omitempty"`
}

type FlowSubscription struct {
	Id                uuid.UUID `json:"id"`
	MonthlyPriceCents int       `json:"monthlyPriceCents"`
	Status            string    `json:"status"`
}

type CreateSessionRequest struct {
	UserId uuid.UUID `json:"userId" validate:"required"`
}

// AdvanceSessionRequest carries one wizard event. Event selects the
// transition; the remaining fields are read only by the events that
// need them.
type AdvanceSessionRequest struct {
	Event string `json:"event" validate:"required,oneof=choose_job_found choose_still_looking submit_job_form submit_job_feedback answer_lawyer submit_visa_type accept_downsell decline_downsell submit_feedback accept_promo submit_reason back close"`

	FoundWithMM          *bool  `json:"foundWithMM,omitempty"`
	RolesApplied         string `json:"rolesApplied,omitempty"`
	CompaniesEmailed     string `json:"companiesEmailed,omitempty"`
	CompaniesInterviewed string `json:"companiesInterviewed,omitempty"`
	HasLawyer            *bool  `json:"hasLawyer,omitempty"`
	VisaType             string `json:"visaType,omitempty"`
	Reason               string `json:"reason,omitempty"`
	Amount               string `json:"amount,omitempty"`
	Feedback             string `json:"feedback,omitempty"`
}

type FlowSessionResponse struct {
	SessionId string    `json:"sessionId"`
	UserId    uuid.UUID `json:"userId"`
	Screen    string    `json:"screen"`
	Terminal  bool      `json:"terminal"`

	FoundWithMM bool   `json:"foundWithMM"`
	HasLawyer   bool   `json:"hasLawyer"`
	VisaType    string `json:"visaType,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Feedback    string `json:"feedback,omitempty"`
}

type AcceptDownsellRequest struct {
	UserId    uuid.UUID `json:"userId" validate:"required"`
	SessionId string    `json:"sessionId,omitempty"`
}

type AcceptDownsellResponse struct {
	TransactionId  string    `json:"transactionId"`
	ChargedCents   int       `json:"chargedCents"`
	DisplayPrice   string    `json:"displayPrice"`
	SubscriptionId uuid.UUID `json:"subscriptionId"`
}

type CompleteCancellationRequest struct {
	UserId    uuid.UUID `json:"userId" validate:"required"`
	SessionId string    `json:"sessionId,omitempty"`
	Reason    string    `json:"reason" validate:"required"`
	Amount    string    `json:"amount,omitempty"`
	Feedback  string    `json:"feedback,omitempty"`
}

type CompleteCancellationResponse struct {
	SubscriptionId uuid.UUID `json:"subscriptionId"`
	Status         string    `json:"status"`
}
