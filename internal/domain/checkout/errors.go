// internal/domain/checkout/errors.go
package checkout

import "fmt"

// Validation error codes, one per precondition in the submission gate
const (
	CodeCartEmpty       = "cart_empty"
	CodeMissingAddress  = "missing_address"
	CodeMissingBorough  = "missing_borough"
	CodeMissingName     = "missing_guest_name"
	CodeMissingPhone    = "missing_guest_phone"
	CodeInvalidEmail    = "invalid_guest_email"
	CodeMissingSchedule = "missing_schedule"
	CodeInvalidSchedule = "invalid_schedule"
	CodeAgeNotConfirmed = "age_not_confirmed"
	CodeLegalNotAgreed  = "legal_not_agreed"
	CodeTermsNotAgreed  = "terms_not_agreed"
)

// ValidationError is a failed submission precondition: always
// recoverable locally, surfaced as a single targeted message, never a
// system fault.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// SubmissionError means the order-creation call failed. Recoverable by
// retry; the service's message is surfaced verbatim.
type SubmissionError struct {
	Cause error
}

// Error implements the error interface
func (e *SubmissionError) Error() string {
	return e.Cause.Error()
}

// Unwrap exposes the underlying cause
func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// ErrSubmissionInFlight rejects a re-entrant submission while an
// attempt for the same subject is still running.
var ErrSubmissionInFlight = fmt.Errorf("an order submission is already in progress")
