// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/sameday-checkout/internal/config"
	"github.com/your-org/sameday-checkout/internal/domain/cart"
	"github.com/your-org/sameday-checkout/internal/domain/delivery"
	"github.com/your-org/sameday-checkout/internal/domain/discount"
	"github.com/your-org/sameday-checkout/internal/domain/order"
	"github.com/your-org/sameday-checkout/internal/domain/pricing"
	"github.com/your-org/sameday-checkout/internal/domain/user"
)

// Collaborator stubs

type stubCarts struct {
	items    []cart.LineItem
	aggErr   error
	clearErr error
	cleared  bool
}

func (s *stubCarts) Aggregate(ctx context.Context, userID *uint, sessionID string) ([]cart.LineItem, error) {
	return s.items, s.aggErr
}

func (s *stubCarts) ClearCart(ctx context.Context, userID *uint, sessionID string) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = true
	return nil
}

type stubDiscounts struct {
	welcome    *discount.WelcomeDiscount
	welcomeErr error
	coupon     *discount.CouponApplication

	marked        bool
	markErr       error
	markedOrderID uint
	redeemed      bool
	redeemErr     error
	removed       bool
}

func (s *stubDiscounts) ActiveWelcomeDiscount(userID uint) (*discount.WelcomeDiscount, error) {
	return s.welcome, s.welcomeErr
}

func (s *stubDiscounts) MarkWelcomeUsed(discountID, orderID uint) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marked = true
	s.markedOrderID = orderID
	return nil
}

func (s *stubDiscounts) StoredCoupon(ctx context.Context, subject string) *discount.CouponApplication {
	return s.coupon
}

func (s *stubDiscounts) RemoveCoupon(ctx context.Context, subject string) error {
	s.removed = true
	return nil
}

func (s *stubDiscounts) RecordRedemption(couponID, userID, orderID uint, amount int64) error {
	if s.redeemErr != nil {
		return s.redeemErr
	}
	s.redeemed = true
	return nil
}

type stubOrders struct {
	count int64
	err   error
}

func (s *stubOrders) CountUserOrders(userID uint) (int64, error) {
	return s.count, s.err
}

type stubUsers struct {
	user *user.User
	err  error
}

func (s *stubUsers) GetUserByID(userID uint) (*user.User, error) {
	return s.user, s.err
}

type stubCreator struct {
	err     error
	created *order.Order
	calls   int
}

func (s *stubCreator) Create(ctx context.Context, o *order.Order) (uint, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	o.ID = 42
	o.OrderNumber = "ORD-20250310-00042"
	s.created = o
	return o.ID, nil
}

type stubIdentities struct {
	saved map[string]GuestIdentity
}

func (s *stubIdentities) Save(ctx context.Context, sessionID string, identity GuestIdentity) error {
	if s.saved == nil {
		s.saved = map[string]GuestIdentity{}
	}
	s.saved[sessionID] = identity
	return nil
}

func (s *stubIdentities) Load(ctx context.Context, sessionID string) (*GuestIdentity, error) {
	identity, ok := s.saved[sessionID]
	if !ok {
		return nil, nil
	}
	return &identity, nil
}

type stubLocker struct {
	busy     bool
	acquired bool
	released bool
}

func (s *stubLocker) Acquire(ctx context.Context, key string) (bool, error) {
	if s.busy {
		return false, nil
	}
	s.acquired = true
	return true, nil
}

func (s *stubLocker) Release(ctx context.Context, key string) error {
	s.released = true
	return nil
}

type fixture struct {
	carts      *stubCarts
	discounts  *stubDiscounts
	orders     *stubOrders
	users      *stubUsers
	creator    *stubCreator
	identities *stubIdentities
	locker     *stubLocker
	service    *Service
}

func newFixture() *fixture {
	f := &fixture{
		carts:      &stubCarts{items: filledItems()},
		discounts:  &stubDiscounts{},
		orders:     &stubOrders{count: 3},
		users:      &stubUsers{user: &user.User{ID: 7, Email: "member@example.com", FirstName: "Ada", LastName: "Lee", Phone: "555-0199"}},
		creator:    &stubCreator{},
		identities: &stubIdentities{},
		locker:     &stubLocker{},
	}

	cfg := &config.Config{
		Checkout: config.CheckoutConfig{
			FreeDeliveryThreshold: 10000,
			ScheduleHorizonDays:   7,
		},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f.service = NewService(
		f.carts,
		f.discounts,
		f.orders,
		f.users,
		f.creator,
		f.identities,
		f.locker,
		delivery.NewScheduler(7, time.UTC),
		cfg,
		logger,
	)
	f.service.now = func() time.Time { return gateNow }

	return f
}

func TestSubmit_GuestSuccess(t *testing.T) {
	f := newFixture()

	result, err := f.service.Submit(context.Background(), guestSubject(), validGuestRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, uint(42), result.OrderID)
	assert.Equal(t, "ORD-20250310-00042", result.OrderNumber)
	assert.Equal(t, int64(4000), result.Quote.Subtotal)
	assert.Equal(t, int64(550), result.Quote.DeliveryFee)
	assert.Equal(t, int64(4550), result.Quote.Total)
	assert.Nil(t, result.ScheduledAt)

	// Only the cart-clearing effect applies to a plain guest order
	require.Len(t, result.PostCommit, 1)
	assert.Equal(t, "clear_cart", result.PostCommit[0].Name)
	assert.True(t, result.PostCommit[0].OK)
	assert.True(t, f.carts.cleared)

	// Guest contact fields land on the order
	require.NotNil(t, f.creator.created)
	assert.Equal(t, "Pat Doe", f.creator.created.CustomerName)
	assert.Equal(t, "pat@example.com", f.creator.created.CustomerEmail)
	assert.Nil(t, f.creator.created.UserID)
	assert.Len(t, f.creator.created.Items, 1)

	assert.True(t, f.locker.released)
}

func TestSubmit_MemberWithWelcomeAndCoupon(t *testing.T) {
	f := newFixture()
	f.discounts.welcome = &discount.WelcomeDiscount{ID: 3, UserID: 7, Percentage: 10}
	f.discounts.coupon = &discount.CouponApplication{
		CouponID:       5,
		CouponCode:     "SAVE10",
		Applied:        true,
		DiscountAmount: 300,
	}

	sub := memberSubject()
	req := validGuestRequest()
	req.Guest = nil

	result, err := f.service.Submit(context.Background(), sub, req)
	require.NoError(t, err)

	// 4000 + 500 (brooklyn member) - 400 welcome - 300 coupon
	assert.Equal(t, pricing.DiscountWelcome, result.Quote.Discount.Kind)
	assert.Equal(t, int64(400), result.Quote.Discount.Amount)
	assert.Equal(t, int64(3800), result.Quote.Total)

	o := f.creator.created
	require.NotNil(t, o)
	assert.Equal(t, "Ada Lee", o.CustomerName)
	assert.Equal(t, "member@example.com", o.CustomerEmail)
	assert.Equal(t, "welcome", o.DiscountKind)
	assert.Equal(t, "SAVE10", o.CouponCode)
	assert.Equal(t, int64(300), o.CouponDiscountAmount)

	// All three effects ran
	require.Len(t, result.PostCommit, 3)
	for _, effect := range result.PostCommit {
		assert.True(t, effect.OK, effect.Name)
	}
	assert.True(t, f.discounts.marked)
	assert.Equal(t, uint(42), f.discounts.markedOrderID)
	assert.True(t, f.discounts.redeemed)
	assert.True(t, f.discounts.removed)
	assert.True(t, f.carts.cleared)
}

func TestSubmit_FirstOrderDiscountWithoutWelcome(t *testing.T) {
	f := newFixture()
	f.orders.count = 0

	sub := memberSubject()
	req := validGuestRequest()
	req.Guest = nil

	result, err := f.service.Submit(context.Background(), sub, req)
	require.NoError(t, err)

	assert.Equal(t, pricing.DiscountFirstOrder, result.Quote.Discount.Kind)
	// No welcome discount to consume, so only clear_cart runs
	require.Len(t, result.PostCommit, 1)
	assert.Equal(t, "clear_cart", result.PostCommit[0].Name)
	assert.False(t, f.discounts.marked)
}

func TestSubmit_CreationFailureLeavesEverythingUntouched(t *testing.T) {
	f := newFixture()
	f.discounts.welcome = &discount.WelcomeDiscount{ID: 3, UserID: 7, Percentage: 10}
	f.creator.err = errors.New("order service unavailable")

	sub := memberSubject()
	req := validGuestRequest()
	req.Guest = nil

	result, err := f.service.Submit(context.Background(), sub, req)
	assert.Nil(t, result)

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "order service unavailable", serr.Error())

	// The failure consumed nothing: everything can be retried as-is.
	assert.False(t, f.discounts.marked)
	assert.False(t, f.discounts.redeemed)
	assert.False(t, f.carts.cleared)
	assert.True(t, f.locker.released)
}

func TestSubmit_RejectsReentrantAttempt(t *testing.T) {
	f := newFixture()
	f.locker.busy = true

	_, err := f.service.Submit(context.Background(), guestSubject(), validGuestRequest())
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, 0, f.creator.calls)
}

func TestSubmit_ValidationFailureReturnsSingleError(t *testing.T) {
	f := newFixture()
	f.carts.items = nil

	_, err := f.service.Submit(context.Background(), guestSubject(), validGuestRequest())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeCartEmpty, verr.Code)
	assert.Equal(t, 0, f.creator.calls)
	assert.True(t, f.locker.released)
}

func TestSubmit_PostCommitFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture()
	f.carts.clearErr = errors.New("redis down")

	result, err := f.service.Submit(context.Background(), guestSubject(), validGuestRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusSucceeded, result.Status)
	assert.Equal(t, uint(42), result.OrderID)

	require.Len(t, result.PostCommit, 1)
	assert.Equal(t, "clear_cart", result.PostCommit[0].Name)
	assert.False(t, result.PostCommit[0].OK)
	assert.Equal(t, "redis down", result.PostCommit[0].Error)
}

func TestSubmit_EconomyScheduleLandsOnOrder(t *testing.T) {
	f := newFixture()

	req := validGuestRequest()
	req.Tier = delivery.TierEconomy
	req.ScheduledDate = "2025-03-12"
	req.TimeSlot = "15:00-18:00"

	result, err := f.service.Submit(context.Background(), guestSubject(), req)
	require.NoError(t, err)

	expected := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	require.NotNil(t, result.ScheduledAt)
	assert.Equal(t, expected, *result.ScheduledAt)
	require.NotNil(t, f.creator.created.ScheduledAt)
	assert.Equal(t, expected, *f.creator.created.ScheduledAt)
	assert.Equal(t, "economy", f.creator.created.DeliveryTier)
}

func TestSubmit_IgnoresUnappliedCoupon(t *testing.T) {
	f := newFixture()
	f.discounts.coupon = &discount.CouponApplication{CouponCode: "NOPE", Applied: false}

	result, err := f.service.Submit(context.Background(), guestSubject(), validGuestRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(0), result.Quote.CouponDiscount)
	assert.Empty(t, f.creator.created.CouponCode)
	assert.False(t, f.discounts.redeemed)
}

func TestSubmit_GuestCouponClearedButNotRecorded(t *testing.T) {
	f := newFixture()
	f.discounts.coupon = &discount.CouponApplication{
		CouponID:       5,
		CouponCode:     "FLAT5",
		Applied:        true,
		DiscountAmount: 300,
	}

	result, err := f.service.Submit(context.Background(), guestSubject(), validGuestRequest())
	require.NoError(t, err)

	// 4000 + 550 - 300
	assert.Equal(t, int64(300), result.Quote.CouponDiscount)
	assert.Equal(t, int64(4250), result.Quote.Total)
	assert.Equal(t, "FLAT5", f.creator.created.CouponCode)

	// No account to tie a redemption row to; the cached coupon is
	// still dropped so the session cannot spend it twice.
	require.Len(t, result.PostCommit, 2)
	assert.Equal(t, "clear_applied_coupon", result.PostCommit[0].Name)
	assert.True(t, result.PostCommit[0].OK)
	assert.Equal(t, "clear_cart", result.PostCommit[1].Name)
	assert.False(t, f.discounts.redeemed)
	assert.True(t, f.discounts.removed)
	assert.True(t, f.carts.cleared)
}

func TestQuote_GuestDoesNotMutateAnything(t *testing.T) {
	f := newFixture()

	quote, err := f.service.Quote(context.Background(), guestSubject(), delivery.BoroughBrooklyn, delivery.TierStandard)
	require.NoError(t, err)

	assert.Equal(t, int64(4550), quote.Quote.Total)
	assert.False(t, f.carts.cleared)
	assert.Equal(t, 0, f.creator.calls)
}

func TestQuote_MemberSeesSavings(t *testing.T) {
	f := newFixture()

	quote, err := f.service.Quote(context.Background(), memberSubject(), delivery.BoroughBrooklyn, delivery.TierStandard)
	require.NoError(t, err)

	assert.Equal(t, int64(4500), quote.Quote.Total)
	assert.Equal(t, int64(4550), quote.Quote.GuestTotal)
	assert.Equal(t, int64(50), quote.Quote.Savings())
}

func TestGuestIdentity_RoundTrip(t *testing.T) {
	f := newFixture()
	sub := guestSubject()

	identity := GuestIdentity{Name: "Pat Doe", Phone: "555-0100", Email: "pat@example.com"}
	require.NoError(t, f.service.SaveGuestIdentity(context.Background(), sub, identity))

	loaded, err := f.service.LoadGuestIdentity(context.Background(), sub)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, identity, *loaded)
}

func TestGetDeliveryOptions(t *testing.T) {
	f := newFixture()

	opts := f.service.GetDeliveryOptions()

	require.Len(t, opts.Boroughs, 3)
	assert.Equal(t, delivery.BoroughBrooklyn, opts.Boroughs[0].ID)
	assert.Equal(t, int64(500), opts.Boroughs[0].MemberFee)
	assert.Equal(t, int64(550), opts.Boroughs[0].GuestFee)
	assert.Equal(t, int64(1000), opts.Boroughs[2].MemberFee)
	assert.Equal(t, int64(1100), opts.Boroughs[2].GuestFee)

	assert.Len(t, opts.Tiers, 3)
	assert.Len(t, opts.TimeSlots, 4)
	require.Len(t, opts.AvailableDates, 8)
	assert.Equal(t, "2025-03-10", opts.AvailableDates[0])
}

func TestGuestIdentity_RejectedForMembers(t *testing.T) {
	f := newFixture()

	err := f.service.SaveGuestIdentity(context.Background(), memberSubject(), GuestIdentity{Name: "x"})
	assert.Error(t, err)
}
