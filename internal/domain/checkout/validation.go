// internal/domain/checkout/validation.go
package checkout

import (
	"strings"
	"time"

	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/delivery"
)

// Gate runs the ordered submission preconditions. Checks short-circuit:
// the first failure is reported alone and nothing after it runs, so the
// customer always sees the most blocking omission first.
type Gate struct {
	scheduler *delivery.Scheduler
}

// NewGate creates a validation gate
func NewGate(scheduler *delivery.Scheduler) *Gate {
	return &Gate{scheduler: scheduler}
}

// Check validates a submission attempt. It returns nil when every
// precondition passes, otherwise exactly one ValidationError.
func (g *Gate) Check(sub Subject, req *SubmitRequest, items []cart.LineItem, now time.Time) *ValidationError {
	// 1. Cart must not be empty
	if len(items) == 0 {
		return &ValidationError{
			Code:    CodeCartEmpty,
			Message: "your cart is empty",
		}
	}

	// 2. Address and borough
	if strings.TrimSpace(req.Address.Text) == "" {
		return &ValidationError{
			Code:    CodeMissingAddress,
			Field:   "address",
			Message: "a delivery address is required",
		}
	}
	if !req.Address.Borough.Valid() {
		return &ValidationError{
			Code:    CodeMissingBorough,
			Field:   "borough",
			Message: "please select a delivery borough",
		}
	}

	// 3. Guest contact fields, in fixed order
	if !sub.IsMember() {
		guest := req.Guest
		if guest == nil || strings.TrimSpace(guest.Name) == "" {
			return &ValidationError{
				Code:    CodeMissingName,
				Field:   "name",
				Message: "your name is required",
			}
		}
		if strings.TrimSpace(guest.Phone) == "" {
			return &ValidationError{
				Code:    CodeMissingPhone,
				Field:   "phone",
				Message: "a phone number is required",
			}
		}
		if strings.TrimSpace(guest.Email) == "" || !strings.Contains(guest.Email, "@") {
			return &ValidationError{
				Code:    CodeInvalidEmail,
				Field:   "email",
				Message: "a valid email address is required",
			}
		}
	}

	// 4. Economy tier needs a complete, in-horizon schedule
	if req.Tier.RequiresSchedule() {
		if _, err := g.scheduler.ResolveWindow(req.ScheduledDate, req.TimeSlot, now); err != nil {
			if err == delivery.ErrScheduleIncomplete {
				return &ValidationError{
					Code:    CodeMissingSchedule,
					Field:   "schedule",
					Message: "please pick a delivery date and time window",
				}
			}
			return &ValidationError{
				Code:    CodeInvalidSchedule,
				Field:   "schedule",
				Message: err.Error(),
			}
		}
	}

	// 5. Legal confirmations, in fixed order: age, legal, terms
	if !req.Confirmations.AgeConfirmed {
		return &ValidationError{
			Code:    CodeAgeNotConfirmed,
			Field:   "age_confirmed",
			Message: "please confirm you are of legal age",
		}
	}
	if !req.Confirmations.LegalConfirmed {
		return &ValidationError{
			Code:    CodeLegalNotAgreed,
			Field:   "legal_confirmed",
			Message: "please confirm the legal requirements",
		}
	}
	if !req.Confirmations.TermsConfirmed {
		return &ValidationError{
			Code:    CodeTermsNotAgreed,
			Field:   "terms_confirmed",
			Message: "please accept the terms and conditions",
		}
	}

	return nil
}
