package wizard

// Event drives a single reducer transition.
type Event interface {
	event()
}

// ChooseJobFound enters the "found a job" branch from the entry screen.
type ChooseJobFound struct{}

// ChooseStillLooking enters the downsell branch from the entry screen.
type ChooseStillLooking struct{}

// SubmitJobForm submits the four usage questions. All four must be answered.
type SubmitJobForm struct {
	FoundWithMM          bool
	FoundWithMMAnswered  bool
	RolesApplied         string
	CompaniesEmailed     string
	CompaniesInterviewed string
}

// SubmitJobFeedback submits the free-text feedback on the job-found branch.
type SubmitJobFeedback struct {
	Feedback string
}

// AnswerLawyer answers the immigration-lawyer question.
type AnswerLawyer struct {
	HasLawyer bool
}

// SubmitVisaType submits the visa type and completes the job-found branch.
type SubmitVisaType struct {
	VisaType string
}

// AcceptDownsell accepts the discounted offer. The caller is expected to
// run the payment side effect first and only dispatch this on success.
type AcceptDownsell struct{}

// DeclineDownsell declines the offer and continues toward cancellation.
type DeclineDownsell struct{}

// SubmitFeedback submits the mid-flow feedback on the still-looking branch.
type SubmitFeedback struct {
	Feedback string
}

// AcceptPromo takes the 50%-off escape hatch shown alongside the feedback
// and reasons screens.
type AcceptPromo struct{}

// SubmitReason submits the cancellation reason with its follow-up field and
// completes the cancellation.
type SubmitReason struct {
	Reason   CancellationReason
	Amount   string
	Feedback string
}

// Back returns to the previous screen where the flow allows it.
type Back struct{}

// Close dismisses the modal from any screen and discards collected input.
type Close struct{}

func (ChooseJobFound) event()     {}
func (ChooseStillLooking) event() {}
func (SubmitJobForm) event()      {}
func (SubmitJobFeedback) event()  {}
func (AnswerLawyer) event()       {}
func (SubmitVisaType) event()     {}
func (AcceptDownsell) event()     {}
func (DeclineDownsell) event()    {}
func (SubmitFeedback) event()     {}
func (AcceptPromo) event()        {}
func (SubmitReason) event()       {}
func (Back) event()               {}
func (Close) event()              {}
