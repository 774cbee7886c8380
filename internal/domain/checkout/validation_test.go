// internal/domain/checkout/validation_test.go
package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/delivery"
)

var gateNow = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func newTestGate() *Gate {
	return NewGate(delivery.NewScheduler(7, time.UTC))
}

func memberSubject() Subject {
	userID := uint(7)
	return Subject{UserID: &userID, Email: "member@example.com"}
}

func guestSubject() Subject {
	return Subject{SessionID: "sess-1"}
}

func filledItems() []cart.LineItem {
	return []cart.LineItem{
		{ProductID: 1, Name: "Coffee Beans", Quantity: 1, UnitPrice: 4000, TotalPrice: 4000},
	}
}

func validGuestRequest() *SubmitRequest {
	return &SubmitRequest{
		Address: delivery.Address{
			Text:    "123 Bedford Ave",
			Borough: delivery.BoroughBrooklyn,
		},
		Tier: delivery.TierStandard,
		Guest: &GuestIdentity{
			Name:  "Pat Doe",
			Phone: "555-0100",
			Email: "pat@example.com",
		},
		Confirmations: LegalConfirmations{
			AgeConfirmed:   true,
			LegalConfirmed: true,
			TermsConfirmed: true,
		},
	}
}

func TestGate_ValidGuestRequestPasses(t *testing.T) {
	g := newTestGate()
	assert.Nil(t, g.Check(guestSubject(), validGuestRequest(), filledItems(), gateNow))
}

func TestGate_ValidMemberRequestPasses(t *testing.T) {
	g := newTestGate()
	req := validGuestRequest()
	req.Guest = nil // Members use account data
	assert.Nil(t, g.Check(memberSubject(), req, filledItems(), gateNow))
}

func TestGate_EmptyCartBeatsEverythingElse(t *testing.T) {
	g := newTestGate()

	// Everything is missing; the empty cart must be reported first.
	verr := g.Check(guestSubject(), &SubmitRequest{}, nil, gateNow)
	require.NotNil(t, verr)
	assert.Equal(t, CodeCartEmpty, verr.Code)
}

func TestGate_Ordering(t *testing.T) {
	tests := []struct {
		name     string
		sub      Subject
		mutate   func(*SubmitRequest)
		expected string
	}{
		{
			"address before borough",
			guestSubject(),
			func(r *SubmitRequest) { r.Address = delivery.Address{} },
			CodeMissingAddress,
		},
		{
			"borough after address",
			guestSubject(),
			func(r *SubmitRequest) { r.Address.Borough = "" },
			CodeMissingBorough,
		},
		{
			"unknown borough rejected",
			guestSubject(),
			func(r *SubmitRequest) { r.Address.Borough = "bronx" },
			CodeMissingBorough,
		},
		{
			"guest name before phone",
			guestSubject(),
			func(r *SubmitRequest) { r.Guest = &GuestIdentity{} },
			CodeMissingName,
		},
		{
			"nil guest block treated as missing name",
			guestSubject(),
			func(r *SubmitRequest) { r.Guest = nil },
			CodeMissingName,
		},
		{
			"guest phone before email",
			guestSubject(),
			func(r *SubmitRequest) { r.Guest.Phone = "" },
			CodeMissingPhone,
		},
		{
			"guest email must contain @",
			guestSubject(),
			func(r *SubmitRequest) { r.Guest.Email = "pat.example.com" },
			CodeInvalidEmail,
		},
		{
			"age before legal",
			guestSubject(),
			func(r *SubmitRequest) { r.Confirmations = LegalConfirmations{} },
			CodeAgeNotConfirmed,
		},
		{
			"legal before terms",
			guestSubject(),
			func(r *SubmitRequest) {
				r.Confirmations = LegalConfirmations{AgeConfirmed: true}
			},
			CodeLegalNotAgreed,
		},
		{
			"terms last",
			guestSubject(),
			func(r *SubmitRequest) {
				r.Confirmations = LegalConfirmations{AgeConfirmed: true, LegalConfirmed: true}
			},
			CodeTermsNotAgreed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGate()
			req := validGuestRequest()
			tt.mutate(req)

			verr := g.Check(tt.sub, req, filledItems(), gateNow)
			require.NotNil(t, verr)
			assert.Equal(t, tt.expected, verr.Code)
		})
	}
}

func TestGate_MemberSkipsGuestFields(t *testing.T) {
	g := newTestGate()
	req := validGuestRequest()
	req.Guest = nil
	req.Confirmations.AgeConfirmed = false

	verr := g.Check(memberSubject(), req, filledItems(), gateNow)
	require.NotNil(t, verr)
	assert.Equal(t, CodeAgeNotConfirmed, verr.Code)
}

func TestGate_EconomyRequiresSchedule(t *testing.T) {
	g := newTestGate()
	req := validGuestRequest()
	req.Tier = delivery.TierEconomy

	verr := g.Check(guestSubject(), req, filledItems(), gateNow)
	require.NotNil(t, verr)
	assert.Equal(t, CodeMissingSchedule, verr.Code)
}

func TestGate_EconomyScheduleOutOfHorizon(t *testing.T) {
	g := newTestGate()
	req := validGuestRequest()
	req.Tier = delivery.TierEconomy
	req.ScheduledDate = "2025-03-20" // 10 days out, horizon is 7
	req.TimeSlot = "09:00-12:00"

	verr := g.Check(guestSubject(), req, filledItems(), gateNow)
	require.NotNil(t, verr)
	assert.Equal(t, CodeInvalidSchedule, verr.Code)
}

func TestGate_EconomyValidSchedulePasses(t *testing.T) {
	g := newTestGate()
	req := validGuestRequest()
	req.Tier = delivery.TierEconomy
	req.ScheduledDate = "2025-03-12"
	req.TimeSlot = "15:00-18:00"

	assert.Nil(t, g.Check(guestSubject(), req, filledItems(), gateNow))
}

func TestGate_ScheduleBeforeConfirmations(t *testing.T) {
	g := newTestGate()
	req := validGuestRequest()
	req.Tier = delivery.TierEconomy
	req.Confirmations = LegalConfirmations{}

	verr := g.Check(guestSubject(), req, filledItems(), gateNow)
	require.NotNil(t, verr)
	assert.Equal(t, CodeMissingSchedule, verr.Code)
}

func TestGate_NonEconomyTiersIgnoreSchedule(t *testing.T) {
	g := newTestGate()
	for _, tier := range []delivery.Tier{delivery.TierExpress, delivery.TierStandard} {
		req := validGuestRequest()
		req.Tier = tier
		assert.Nil(t, g.Check(guestSubject(), req, filledItems(), gateNow), "tier %s", tier)
	}
}
