package wizard

import (
	"fmt"
	"regexp"
	"strings"
)

// MinFeedbackChars is the minimum length for free-text feedback fields.
// A feedback of exactly this length is valid.
const MinFeedbackChars = 25

// amountPattern accepts an empty string or digits with at most one decimal
// point. Partial input like "25." is accepted so the field validates while
// the user is still typing; emptiness is checked separately on submit.
var amountPattern = regexp.MustCompile(`^$|^\d*\.?\d*$`)

// ValidationError reports why an event was rejected without changing state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wizard: invalid %s: %s", e.Field, e.Reason)
}

// validateFeedback counts raw characters; whitespace counts toward the
// minimum, matching the live character counter under the text box.
func validateFeedback(field, text string) error {
	if len(text) < MinFeedbackChars {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("needs at least %d characters", MinFeedbackChars)}
	}
	return nil
}

// ValidAmount reports whether s is a well-formed price fragment.
func ValidAmount(s string) bool {
	return amountPattern.MatchString(s)
}

func validateJobForm(ev SubmitJobForm) error {
	if !ev.FoundWithMMAnswered {
		return &ValidationError{Field: "foundWithMM", Reason: "answer required"}
	}
	for _, q := range []struct{ field, value string }{
		{"rolesApplied", ev.RolesApplied},
		{"companiesEmailed", ev.CompaniesEmailed},
		{"companiesInterviewed", ev.CompaniesInterviewed},
	} {
		if strings.TrimSpace(q.value) == "" {
			return &ValidationError{Field: q.field, Reason: "answer required"}
		}
	}
	return nil
}

func validateReason(ev SubmitReason) error {
	if !ev.Reason.Known() {
		return &ValidationError{Field: "reason", Reason: "selection required"}
	}
	if ev.Reason.RequiresAmount() {
		trimmed := strings.TrimSpace(ev.Amount)
		if trimmed == "" {
			return &ValidationError{Field: "amount", Reason: "value required"}
		}
		if !ValidAmount(trimmed) {
			return &ValidationError{Field: "amount", Reason: "digits with at most one decimal point"}
		}
		return nil
	}
	return validateFeedback("feedback", ev.Feedback)
}
