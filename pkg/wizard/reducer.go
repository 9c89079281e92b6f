package wizard

import "fmt"

// TransitionError reports an event that has no transition from the current
// screen. State is unchanged when it is returned.
type TransitionError struct {
	Screen Screen
	Event  Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("wizard: no transition for %T from screen %q", e.Event, e.Screen)
}

// Reduce applies one event to the state and returns the next state. On a
// validation or transition error the input state is returned unchanged so
// callers can keep rendering the current screen with an inline error.
//
// Close is global: it works from every screen and resets collected input,
// so a reopened modal starts from the entry screen again.
func Reduce(s State, ev Event) (State, error) {
	if _, ok := ev.(Close); ok {
		return State{Screen: ScreenClosed}, nil
	}

	switch s.Screen {
	case ScreenMainEntry:
		switch ev.(type) {
		case ChooseJobFound:
			s.Screen = ScreenJobFoundForm
			return s, nil
		case ChooseStillLooking:
			s.Screen = ScreenOffer
			return s, nil
		}

	case ScreenJobFoundForm:
		switch e := ev.(type) {
		case SubmitJobForm:
			if err := validateJobForm(e); err != nil {
				return s, err
			}
			s.FoundWithMM = e.FoundWithMM
			s.RolesApplied = e.RolesApplied
			s.CompaniesEmailed = e.CompaniesEmailed
			s.CompaniesInterviewed = e.CompaniesInterviewed
			s.Screen = ScreenFeedbackForm
			return s, nil
		case Back:
			s.Screen = ScreenMainEntry
			return s, nil
		}

	case ScreenFeedbackForm:
		switch e := ev.(type) {
		case SubmitJobFeedback:
			if err := validateFeedback("feedback", e.Feedback); err != nil {
				return s, err
			}
			s.JobFeedback = e.Feedback
			s.Screen = ScreenLawyerQuestion
			return s, nil
		case Back:
			s.Screen = ScreenJobFoundForm
			return s, nil
		}

	case ScreenLawyerQuestion:
		switch e := ev.(type) {
		case AnswerLawyer:
			s.HasLawyer = e.HasLawyer
			s.Screen = ScreenVisaType
			return s, nil
		case Back:
			s.Screen = ScreenFeedbackForm
			return s, nil
		}

	case ScreenVisaType:
		switch e := ev.(type) {
		case SubmitVisaType:
			if e.VisaType == "" {
				return s, &ValidationError{Field: "visaType", Reason: "selection required"}
			}
			s.VisaType = e.VisaType
			if s.FoundWithMM {
				s.Screen = ScreenSuccessWithMM
			} else {
				s.Screen = ScreenSuccessWithoutMM
			}
			return s, nil
		case Back:
			s.Screen = ScreenLawyerQuestion
			return s, nil
		}

	case ScreenOffer:
		switch ev.(type) {
		case AcceptDownsell:
			// The offer closes the modal on acceptance; the payment side
			// effect is the caller's gate for dispatching this event.
			return State{Screen: ScreenClosed}, nil
		case DeclineDownsell:
			s.Screen = ScreenFeedbackStep2
			return s, nil
		case Back:
			s.Screen = ScreenMainEntry
			return s, nil
		}

	case ScreenFeedbackStep2:
		switch e := ev.(type) {
		case SubmitFeedback:
			if err := validateFeedback("feedback", e.Feedback); err != nil {
				return s, err
			}
			s.Feedback = e.Feedback
			s.Screen = ScreenReasons
			return s, nil
		case AcceptPromo:
			s.popupReturn = ScreenFeedbackStep2
			s.Screen = ScreenSubscriptionPopup
			return s, nil
		case Back:
			s.Screen = ScreenOffer
			return s, nil
		}

	case ScreenReasons:
		switch e := ev.(type) {
		case SubmitReason:
			if err := validateReason(e); err != nil {
				return s, err
			}
			s.Reason = e.Reason
			s.Amount = e.Amount
			s.Feedback = e.Feedback
			s.Screen = ScreenCancelled
			return s, nil
		case AcceptPromo:
			s.popupReturn = ScreenReasons
			s.Screen = ScreenSubscriptionPopup
			return s, nil
		case Back:
			s.Screen = ScreenFeedbackStep2
			return s, nil
		}

	case ScreenSubscriptionPopup:
		switch ev.(type) {
		case AcceptDownsell:
			return State{Screen: ScreenClosed}, nil
		case Back:
			s.Screen = s.popupReturn
			s.popupReturn = ""
			return s, nil
		}

	case ScreenSuccessWithMM, ScreenSuccessWithoutMM, ScreenCancelled, ScreenClosed:
		// Terminal screens accept only Close, handled above.
	}

	return s, &TransitionError{Screen: s.Screen, Event: ev}
}
