// Package wizard models the cancellation modal as an explicit state machine:
// an enumerated screen, a tagged set of events, and a pure reducer. Rendering
// and persistence live elsewhere; this package only decides which screen
// comes next and whether the input driving the transition is valid.
package wizard

// Screen identifies one modal step.
type Screen string

const (
	ScreenMainEntry         Screen = "main_entry"
	ScreenJobFoundForm      Screen = "job_found_form"
	ScreenFeedbackForm      Screen = "feedback_form"
	ScreenLawyerQuestion    Screen = "lawyer_question"
	ScreenVisaType          Screen = "visa_type"
	ScreenSuccessWithMM     Screen = "success_with_mm"
	ScreenSuccessWithoutMM  Screen = "success_without_mm"
	ScreenOffer             Screen = "offer"
	ScreenFeedbackStep2     Screen = "feedback_step2"
	ScreenReasons           Screen = "reasons"
	ScreenSubscriptionPopup Screen = "subscription_popup"
	ScreenCancelled         Screen = "cancelled"
	ScreenClosed            Screen = "closed"
)

// Terminal reports whether the screen ends the flow. A closed modal resets
// to MainEntry the next time it opens.
func (s Screen) Terminal() bool {
	switch s {
	case ScreenSuccessWithMM, ScreenSuccessWithoutMM, ScreenCancelled, ScreenClosed:
		return true
	}
	return false
}

// CancellationReason is the enumerated reason captured on the reasons screen.
type CancellationReason string

const (
	ReasonTooExpensive       CancellationReason = "too-expensive"
	ReasonPlatformNotHelpful CancellationReason = "platform-not-helpful"
	ReasonNotEnoughJobs      CancellationReason = "not-enough-jobs"
	ReasonDecidedNotToMove   CancellationReason = "decided-not-to-move"
	ReasonOther              CancellationReason = "other"
)

// Known reports whether r is one of the selectable reasons.
func (r CancellationReason) Known() bool {
	switch r {
	case ReasonTooExpensive, ReasonPlatformNotHelpful, ReasonNotEnoughJobs,
		ReasonDecidedNotToMove, ReasonOther:
		return true
	}
	return false
}

// RequiresAmount reports whether the reason needs the "maximum acceptable
// price" field instead of free-text feedback.
func (r CancellationReason) RequiresAmount() bool {
	return r == ReasonTooExpensive
}

// State is everything the reducer carries between screens. It is a value
// type: Reduce returns a new State and never mutates its input.
type State struct {
	Screen Screen

	// Job-found branch.
	FoundWithMM          bool
	RolesApplied         string
	CompaniesEmailed     string
	CompaniesInterviewed string
	JobFeedback          string
	HasLawyer            bool
	VisaType             string

	// Still-looking branch.
	Reason   CancellationReason
	Amount   string
	Feedback string

	// Where the 50%-off popup should return to on Back.
	popupReturn Screen
}

// NewState returns the state of a freshly opened modal.
func NewState() State {
	return State{Screen: ScreenMainEntry}
}
