package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "hotelops/internal/app/handlers/booking"
	paymentapp "hotelops/internal/app/handlers/payment"
	domainbooking "hotelops/internal/domain/booking"
	domainpayment "hotelops/internal/domain/payment"
	"hotelops/internal/domain/shared/daterange"
	"hotelops/internal/domain/shared/money"
	"hotelops/internal/infra/payments"
	"hotelops/internal/infra/storage/memory"
)

var card = &paymentapp.CardDetails{
	Number:      "4242424242424242",
	HolderName:  "Jane Doe",
	ExpiryMonth: 12,
	ExpiryYear:  2035,
	CVV:         "123",
}

// decliningGateway rejects every charge.
type decliningGateway struct{}

func (decliningGateway) Charge(ctx context.Context, amount money.Money, card domainpayment.CreditCard, description string) (domainpayment.TransactionRef, error) {
	return domainpayment.TransactionRef{}, errors.New("card declined")
}

func (decliningGateway) Refund(ctx context.Context, original domainpayment.TransactionRef, amount money.Money, reason string) (domainpayment.TransactionRef, error) {
	return domainpayment.TransactionRef{}, errors.New("refund declined")
}

type fixture struct {
	factory  *memory.Factory
	bookings *memory.BookingRepository
	payments *memory.PaymentRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bookings: memory.NewBookingRepository(),
		payments: memory.NewPaymentRepository(),
	}
	f.factory = &memory.Factory{
		RoomsRepo:        memory.NewRoomRepository(),
		BookingRepo:      f.bookings,
		PaymentRepo:      f.payments,
		HousekeepingRepo: memory.NewTaskRepository(),
		CustomerRepo:     memory.NewCustomerRepository(),
	}
	f.seedBooking(t)
	return f
}

// seedBooking stores a pending booking worth EUR 150 over 3 nights.
func (f *fixture) seedBooking(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()
	dr, err := daterange.New(now.AddDate(0, 0, 30), now.AddDate(0, 0, 33), now)
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         "bkg-1",
		CustomerID: "cust-1",
		Range:      dr,
		Currency:   money.EUR,
		CreatedAt:  now,
	})
	require.NoError(t, err)
	require.NoError(t, b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, now))
	require.NoError(t, f.bookings.Save(context.Background(), b))
}

func (f *fixture) createPayment(t *testing.T) *paymentapp.CreatePaymentResult {
	t.Helper()
	handler := &paymentapp.CreatePaymentHandler{UoWFactory: f.factory}
	result, err := handler.Handle(context.Background(), paymentapp.CreatePaymentCommand{
		CommandID: "pay-1",
		BookingID: "bkg-1",
		Method:    "CREDIT_CARD",
		Card:      card,
	})
	require.NoError(t, err)
	return result
}

func TestCreatePayment(t *testing.T) {
	f := newFixture(t)

	result := f.createPayment(t)
	assert.Equal(t, "pay-1", result.PaymentID)
	assert.Equal(t, "EUR 150.00", result.Amount)
	assert.Equal(t, "PENDING", result.Status)

	stored, err := f.payments.ByID(context.Background(), "pay-1")
	require.NoError(t, err)
	require.NotNil(t, stored.Card)
	assert.Equal(t, "4242", stored.Card.Last4)
}

func TestCreatePaymentValidation(t *testing.T) {
	f := newFixture(t)
	handler := &paymentapp.CreatePaymentHandler{UoWFactory: f.factory}

	_, err := handler.Handle(context.Background(), paymentapp.CreatePaymentCommand{
		CommandID: "pay-x", BookingID: "missing", Method: "CASH",
	})
	require.ErrorIs(t, err, domainbooking.ErrNotFound)

	_, err = handler.Handle(context.Background(), paymentapp.CreatePaymentCommand{
		CommandID: "pay-y", BookingID: "bkg-1", Method: "BARTER",
	})
	require.ErrorIs(t, err, domainpayment.ErrUnknownMethod)

	_, err = handler.Handle(context.Background(), paymentapp.CreatePaymentCommand{
		CommandID: "pay-z", BookingID: "bkg-1", Method: "CREDIT_CARD",
	})
	require.ErrorIs(t, err, domainpayment.ErrCardRequired)
}

func TestProcessPaymentConfirmsBooking(t *testing.T) {
	f := newFixture(t)
	f.createPayment(t)

	process := &paymentapp.ProcessPaymentHandler{UoWFactory: f.factory, Gateway: payments.FakeGateway{}}
	result, err := process.Handle(context.Background(), paymentapp.ProcessPaymentCommand{PaymentID: "pay-1"})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.NotEmpty(t, result.TransactionRef)
	assert.Equal(t, 1, result.Attempts)

	b, err := f.bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, b.Status)
	assert.Equal(t, "pay-1", b.PaymentID)
}

func TestProcessPaymentDeclineIsPersisted(t *testing.T) {
	f := newFixture(t)
	f.createPayment(t)

	process := &paymentapp.ProcessPaymentHandler{UoWFactory: f.factory, Gateway: decliningGateway{}}
	result, err := process.Handle(context.Background(), paymentapp.ProcessPaymentCommand{PaymentID: "pay-1"})
	require.NoError(t, err)
	assert.Equal(t, "FAILED", result.Status)
	assert.Equal(t, "card declined", result.FailureReason)
	assert.Equal(t, 1, result.Attempts)

	// The booking stays pending when the charge is declined.
	b, err := f.bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, b.Status)
}

func TestDuplicatePaymentForPendingBooking(t *testing.T) {
	f := newFixture(t)
	f.createPayment(t)

	// The booking is still pending, but its payment is live.
	create := &paymentapp.CreatePaymentHandler{UoWFactory: f.factory}
	_, err := create.Handle(context.Background(), paymentapp.CreatePaymentCommand{
		CommandID: "pay-dup", BookingID: "bkg-1", Method: "CASH",
	})
	require.ErrorIs(t, err, paymentapp.ErrAlreadyPaid)

	// A declined attempt frees the booking for a fresh payment.
	process := &paymentapp.ProcessPaymentHandler{UoWFactory: f.factory, Gateway: decliningGateway{}}
	result, err := process.Handle(context.Background(), paymentapp.ProcessPaymentCommand{PaymentID: "pay-1"})
	require.NoError(t, err)
	require.Equal(t, "FAILED", result.Status)

	retry, err := create.Handle(context.Background(), paymentapp.CreatePaymentCommand{
		CommandID: "pay-2", BookingID: "bkg-1", Method: "CASH",
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", retry.Status)

	_, err = create.Handle(context.Background(), paymentapp.CreatePaymentCommand{
		CommandID: "pay-3", BookingID: "bkg-1", Method: "CASH",
	})
	require.ErrorIs(t, err, paymentapp.ErrAlreadyPaid)
}

func TestSecondPaymentRejected(t *testing.T) {
	f := newFixture(t)
	f.createPayment(t)

	process := &paymentapp.ProcessPaymentHandler{UoWFactory: f.factory, Gateway: payments.FakeGateway{}}
	_, err := process.Handle(context.Background(), paymentapp.ProcessPaymentCommand{PaymentID: "pay-1"})
	require.NoError(t, err)

	create := &paymentapp.CreatePaymentHandler{UoWFactory: f.factory}
	_, err = create.Handle(context.Background(), paymentapp.CreatePaymentCommand{
		CommandID: "pay-2", BookingID: "bkg-1", Method: "CASH",
	})
	require.ErrorIs(t, err, paymentapp.ErrBookingNotPayable)
}

func TestCancellationStagesRefund(t *testing.T) {
	f := newFixture(t)
	f.createPayment(t)

	process := &paymentapp.ProcessPaymentHandler{UoWFactory: f.factory, Gateway: payments.FakeGateway{}}
	_, err := process.Handle(context.Background(), paymentapp.ProcessPaymentCommand{PaymentID: "pay-1"})
	require.NoError(t, err)

	cancel := &bookingapp.CancelBookingHandler{UoWFactory: f.factory}
	cancelled, err := cancel.Handle(context.Background(), bookingapp.CancelBookingCommand{
		BookingID: "bkg-1",
		Reason:    "overbooked",
		ByStaff:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, cancelled.RefundPercent)
	require.NotEmpty(t, cancelled.RefundID)
	assert.Equal(t, "EUR 150.00", cancelled.RefundAmount)

	refunds := &paymentapp.RefundHandler{UoWFactory: f.factory, Gateway: payments.FakeGateway{}}
	result, err := refunds.HandleProcess(context.Background(), paymentapp.ProcessRefundCommand{
		PaymentID: "pay-1",
		RefundID:  cancelled.RefundID,
	})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.RefundStatus)
	assert.Equal(t, "REFUNDED", result.PaymentStatus)
	assert.Equal(t, "EUR 150.00", result.TotalRefunded)
}

func TestRefundLifecycleViaHandlers(t *testing.T) {
	f := newFixture(t)
	f.createPayment(t)

	process := &paymentapp.ProcessPaymentHandler{UoWFactory: f.factory, Gateway: payments.FakeGateway{}}
	_, err := process.Handle(context.Background(), paymentapp.ProcessPaymentCommand{PaymentID: "pay-1"})
	require.NoError(t, err)

	refunds := &paymentapp.RefundHandler{UoWFactory: f.factory, Gateway: payments.FakeGateway{}}

	requested, err := refunds.HandleRequest(context.Background(), paymentapp.RequestRefundCommand{
		PaymentID: "pay-1",
		Amount:    50,
		Currency:  "EUR",
		Reason:    "late check-in",
	})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", requested.RefundStatus)
	assert.Equal(t, "COMPLETED", requested.PaymentStatus)

	// Withdraw it again before processing.
	cancelledRefund, err := refunds.HandleCancel(context.Background(), paymentapp.CancelRefundCommand{
		PaymentID: "pay-1",
		RefundID:  requested.RefundID,
	})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelledRefund.RefundStatus)
	assert.Equal(t, "COMPLETED", cancelledRefund.PaymentStatus)

	_, err = refunds.HandleRequest(context.Background(), paymentapp.RequestRefundCommand{
		PaymentID: "pay-1",
		Amount:    200,
		Currency:  "EUR",
		Reason:    "too much",
	})
	require.ErrorIs(t, err, domainpayment.ErrRefundExceedsBalance)
}

func TestRefundDeclinePersistsFailure(t *testing.T) {
	f := newFixture(t)
	f.createPayment(t)

	process := &paymentapp.ProcessPaymentHandler{UoWFactory: f.factory, Gateway: payments.FakeGateway{}}
	_, err := process.Handle(context.Background(), paymentapp.ProcessPaymentCommand{PaymentID: "pay-1"})
	require.NoError(t, err)

	refunds := &paymentapp.RefundHandler{UoWFactory: f.factory, Gateway: payments.FakeGateway{}}
	requested, err := refunds.HandleRequest(context.Background(), paymentapp.RequestRefundCommand{
		PaymentID: "pay-1", Amount: 50, Currency: "EUR", Reason: "goodwill",
	})
	require.NoError(t, err)

	declining := &paymentapp.RefundHandler{UoWFactory: f.factory, Gateway: decliningGateway{}}
	result, err := declining.HandleProcess(context.Background(), paymentapp.ProcessRefundCommand{
		PaymentID: "pay-1", RefundID: requested.RefundID,
	})
	require.NoError(t, err)
	assert.Equal(t, "FAILED", result.RefundStatus)
	assert.Equal(t, "COMPLETED", result.PaymentStatus)
	assert.Equal(t, "refund declined", result.FailureReason)
	assert.Equal(t, "EUR 0.00", result.TotalRefunded)
}
