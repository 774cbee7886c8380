// internal/domain/checkout/entity.go
package checkout

import (
	"fmt"
	"time"

	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/delivery"
	"github.com/your-org/sameday-checkout/internal/domain/pricing"
)

// Subject identifies who is checking out: an authenticated user or a
// guest session. Exactly one of the two is meaningful.
type Subject struct {
	UserID    *uint
	Email     string
	SessionID string
}

// IsMember reports whether the subject has an authenticated session
func (s Subject) IsMember() bool {
	return s.UserID != nil
}

// Key is the stable cache/lock key for this subject
func (s Subject) Key() string {
	if s.UserID != nil {
		return fmt.Sprintf("user:%d", *s.UserID)
	}
	return fmt.Sprintf("session:%s", s.SessionID)
}

// GuestIdentity holds the contact fields a guest fills in instead of
// account data.
type GuestIdentity struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// IsEmpty reports whether no field has been filled in yet
func (g GuestIdentity) IsEmpty() bool {
	return g.Name == "" && g.Phone == "" && g.Email == ""
}

// LegalConfirmations are the three independent checkboxes gating
// submission. All three must be true.
type LegalConfirmations struct {
	AgeConfirmed   bool `json:"age_confirmed"`
	LegalConfirmed bool `json:"legal_confirmed"`
	TermsConfirmed bool `json:"terms_confirmed"`
}

// SubmitRequest is everything the customer provides at submission time
type SubmitRequest struct {
	Address       delivery.Address   `json:"address"`
	Tier          delivery.Tier      `json:"tier"`
	ScheduledDate string             `json:"scheduled_date,omitempty"` // "2006-01-02", economy only
	TimeSlot      string             `json:"time_slot,omitempty"`      // "HH:MM-HH:MM", economy only
	PaymentMethod string             `json:"payment_method"`
	Notes         string             `json:"notes,omitempty"`
	Guest         *GuestIdentity     `json:"guest,omitempty"` // Required when unauthenticated
	Confirmations LegalConfirmations `json:"confirmations"`
}

// SubmissionStatus is the phase of one submission attempt
type SubmissionStatus string

const (
	StatusIdle       SubmissionStatus = "idle"
	StatusValidating SubmissionStatus = "validating"
	StatusSubmitting SubmissionStatus = "submitting"
	StatusSucceeded  SubmissionStatus = "succeeded"
	StatusFailed     SubmissionStatus = "failed"
)

// EffectResult records the outcome of one post-commit effect. The order
// is authoritative once created, so effects are best-effort: failures
// are recorded and logged, never rolled back and never blocking.
type EffectResult struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// SubmitResult is the outcome of a successful submission
type SubmitResult struct {
	Status      SubmissionStatus `json:"status"`
	OrderID     uint             `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	Quote       pricing.Quote    `json:"quote"`
	ScheduledAt *time.Time       `json:"scheduled_at,omitempty"`
	PostCommit  []EffectResult   `json:"post_commit"`
}

// QuoteResponse is the priced cart plus the inputs echoed back
type QuoteResponse struct {
	Items []cart.LineItem `json:"items"`
	Quote pricing.Quote   `json:"quote"`
}
