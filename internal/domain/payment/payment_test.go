package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/domain/payment"
	"hotelops/internal/domain/shared/money"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

// stubGateway counts calls and fails on demand.
type stubGateway struct {
	chargeCalls int
	chargeErr   error
	refundCalls int
	refundErr   error
}

func (g *stubGateway) Charge(ctx context.Context, amount money.Money, card payment.CreditCard, description string) (payment.TransactionRef, error) {
	g.chargeCalls++
	if g.chargeErr != nil {
		return payment.TransactionRef{}, g.chargeErr
	}
	return payment.TransactionRef{Value: "tx-charge", Provider: "stub"}, nil
}

func (g *stubGateway) Refund(ctx context.Context, original payment.TransactionRef, amount money.Money, reason string) (payment.TransactionRef, error) {
	g.refundCalls++
	if g.refundErr != nil {
		return payment.TransactionRef{}, g.refundErr
	}
	return payment.TransactionRef{Value: "tx-refund", Provider: "stub"}, nil
}

func testCard(t *testing.T) *payment.CreditCard {
	t.Helper()
	card, err := payment.NewCreditCard("4242424242424242", "Jane Doe", 12, 2030, "123", now)
	require.NoError(t, err)
	return &card
}

func newCardPayment(t *testing.T) *payment.Payment {
	t.Helper()
	p, err := payment.New(payment.CreateParams{
		ID:         "pay-1",
		BookingID:  "bkg-1",
		CustomerID: "cust-1",
		Amount:     money.Must(270, money.EUR),
		Method:     payment.MethodCreditCard,
		Card:       testCard(t),
		CreatedAt:  now,
	})
	require.NoError(t, err)
	return p
}

func completedPayment(t *testing.T, gateway *stubGateway) *payment.Payment {
	t.Helper()
	p := newCardPayment(t)
	require.NoError(t, p.Process(context.Background(), gateway, now))
	return p
}

func TestNewValidation(t *testing.T) {
	_, err := payment.New(payment.CreateParams{
		Amount: money.Zero(money.EUR),
		Method: payment.MethodCash,
	})
	require.ErrorIs(t, err, payment.ErrNonPositiveAmount)

	_, err = payment.New(payment.CreateParams{
		Amount: money.Must(10, money.EUR),
		Method: payment.MethodCreditCard,
	})
	require.ErrorIs(t, err, payment.ErrCardRequired)

	p, err := payment.New(payment.CreateParams{
		Amount: money.Must(10, money.EUR),
		Method: payment.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
}

func TestProcessCardCharge(t *testing.T) {
	gateway := &stubGateway{}
	p := newCardPayment(t)

	require.NoError(t, p.Process(context.Background(), gateway, now))
	assert.Equal(t, payment.StatusCompleted, p.Status)
	assert.Equal(t, 1, gateway.chargeCalls)
	assert.Equal(t, 1, p.ProcessingAttempts)
	assert.Equal(t, "tx-charge", p.TransactionRef.Value)

	err := p.Process(context.Background(), gateway, now)
	require.ErrorIs(t, err, payment.ErrNotProcessable)
	assert.Equal(t, 1, gateway.chargeCalls)
}

func TestProcessManualMethodSkipsGateway(t *testing.T) {
	p, err := payment.New(payment.CreateParams{
		ID:        "pay-cash",
		Amount:    money.Must(100, money.EUR),
		Method:    payment.MethodCash,
		CreatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, p.Process(context.Background(), nil, now))
	assert.Equal(t, payment.StatusCompleted, p.Status)
	assert.Equal(t, "Manual", p.TransactionRef.Provider)
}

func TestProcessChargeFailure(t *testing.T) {
	gateway := &stubGateway{chargeErr: errors.New("card declined")}
	p := newCardPayment(t)

	err := p.Process(context.Background(), gateway, now)
	require.ErrorIs(t, err, payment.ErrChargeFailed)
	assert.Equal(t, payment.StatusFailed, p.Status)
	assert.Equal(t, "card declined", p.FailureReason)
	assert.Equal(t, 1, p.ProcessingAttempts)
}

func TestProcessAttemptCap(t *testing.T) {
	p := newCardPayment(t)
	p.ProcessingAttempts = 3

	err := p.Process(context.Background(), &stubGateway{}, now)
	require.ErrorIs(t, err, payment.ErrMaxAttempts)
}

func TestProcessCancelledContextLeavesStateUntouched(t *testing.T) {
	gateway := &stubGateway{}
	p := newCardPayment(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Process(ctx, gateway, now)
	require.ErrorIs(t, err, payment.ErrCancelled)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Equal(t, 0, p.ProcessingAttempts)
	assert.Equal(t, 0, gateway.chargeCalls)
}

func TestProcessGatewayCancellationRestoresState(t *testing.T) {
	gateway := &stubGateway{chargeErr: context.Canceled}
	p := newCardPayment(t)

	err := p.Process(context.Background(), gateway, now)
	require.ErrorIs(t, err, payment.ErrCancelled)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Equal(t, 0, p.ProcessingAttempts)
}

func TestRequestRefundValidation(t *testing.T) {
	p := newCardPayment(t)
	_, err := p.RequestRefund(money.Must(10, money.EUR), "too early", now)
	require.ErrorIs(t, err, payment.ErrNotRefundable)

	p = completedPayment(t, &stubGateway{})
	_, err = p.RequestRefund(money.Must(300, money.EUR), "too much", now)
	require.ErrorIs(t, err, payment.ErrRefundExceedsBalance)

	refund, err := p.RequestRefund(money.Must(100, money.EUR), "damaged room", now)
	require.NoError(t, err)
	assert.Equal(t, payment.RefundPending, refund.Status)
	// A pending refund does not change the payment status yet.
	assert.Equal(t, payment.StatusCompleted, p.Status)
	assert.True(t, p.HasPendingRefunds())
}

func TestProcessRefundPartialAndFull(t *testing.T) {
	gateway := &stubGateway{}
	p := completedPayment(t, gateway)

	first, err := p.RequestRefund(money.Must(100, money.EUR), "partial", now)
	require.NoError(t, err)
	require.NoError(t, p.ProcessRefund(context.Background(), first.ID, gateway, now))
	assert.Equal(t, payment.StatusPartiallyRefunded, p.Status)
	assert.Equal(t, payment.RefundCompleted, first.Status)

	remaining, err := p.RemainingAmount()
	require.NoError(t, err)
	assert.True(t, remaining.Equal(money.Must(170, money.EUR)))

	second, err := p.RequestRefund(remaining, "rest", now)
	require.NoError(t, err)
	require.NoError(t, p.ProcessRefund(context.Background(), second.ID, gateway, now))
	assert.Equal(t, payment.StatusRefunded, p.Status)
	assert.True(t, p.IsFullyRefunded())

	// Nothing left to refund.
	_, err = p.RequestRefund(money.Must(1, money.EUR), "extra", now)
	require.ErrorIs(t, err, payment.ErrNotRefundable)
}

func TestProcessRefundGatewayFailure(t *testing.T) {
	gateway := &stubGateway{}
	p := completedPayment(t, gateway)

	refund, err := p.RequestRefund(money.Must(50, money.EUR), "goodwill", now)
	require.NoError(t, err)

	gateway.refundErr = errors.New("gateway timeout")
	err = p.ProcessRefund(context.Background(), refund.ID, gateway, now)
	require.ErrorIs(t, err, payment.ErrRefundFailed)
	assert.Equal(t, payment.RefundFailed, refund.Status)
	assert.Equal(t, payment.StatusCompleted, p.Status)

	total, err := p.TotalRefunded()
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestProcessRefundUnknownID(t *testing.T) {
	p := completedPayment(t, &stubGateway{})
	err := p.ProcessRefund(context.Background(), "missing", &stubGateway{}, now)
	require.ErrorIs(t, err, payment.ErrRefundNotFound)
}

func TestCancelRefund(t *testing.T) {
	gateway := &stubGateway{}
	p := completedPayment(t, gateway)

	refund, err := p.RequestRefund(money.Must(50, money.EUR), "requested by guest", now)
	require.NoError(t, err)
	require.NoError(t, p.CancelRefund(refund.ID, now))
	assert.Equal(t, payment.RefundCancelled, refund.Status)
	assert.False(t, p.HasPendingRefunds())

	// Completed refunds can no longer be withdrawn.
	done, err := p.RequestRefund(money.Must(50, money.EUR), "second", now)
	require.NoError(t, err)
	require.NoError(t, p.ProcessRefund(context.Background(), done.ID, gateway, now))
	err = p.CancelRefund(done.ID, now)
	require.ErrorIs(t, err, payment.ErrRefundNotCancelable)
}

func TestCreditCardValidation(t *testing.T) {
	_, err := payment.NewCreditCard("1234", "Jane Doe", 12, 2030, "123", now)
	require.ErrorIs(t, err, payment.ErrInvalidCardNumber)

	_, err = payment.NewCreditCard("4242424242424242", "", 12, 2030, "123", now)
	require.ErrorIs(t, err, payment.ErrInvalidCardHolder)

	_, err = payment.NewCreditCard("4242424242424242", "Jane Doe", 13, 2030, "123", now)
	require.ErrorIs(t, err, payment.ErrInvalidExpiry)

	_, err = payment.NewCreditCard("4242424242424242", "Jane Doe", 1, 2025, "123", now)
	require.ErrorIs(t, err, payment.ErrCardExpired)

	_, err = payment.NewCreditCard("4242424242424242", "Jane Doe", 12, 2030, "12", now)
	require.ErrorIs(t, err, payment.ErrInvalidCVV)

	card, err := payment.NewCreditCard("4242-4242-4242-4242", "Jane Doe", 12, 2030, "123", now)
	require.NoError(t, err)
	assert.Equal(t, "4242", card.Last4)
	assert.Equal(t, "Visa", card.Brand)
	assert.Equal(t, "************4242", card.MaskedNumber)
}

func TestParseMethod(t *testing.T) {
	m, err := payment.ParseMethod("CASH")
	require.NoError(t, err)
	assert.False(t, m.RequiresOnlineProcessing())

	m, err = payment.ParseMethod("CREDIT_CARD")
	require.NoError(t, err)
	assert.True(t, m.RequiresOnlineProcessing())

	_, err = payment.ParseMethod("IOU")
	require.ErrorIs(t, err, payment.ErrUnknownMethod)
}
