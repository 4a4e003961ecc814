package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hotelops/internal/domain/booking"
	"hotelops/internal/domain/customer"
	"hotelops/internal/domain/shared/events"
	"hotelops/internal/domain/shared/money"
)

var (
	ErrNotFound             = errors.New("payment: not found")
	ErrNonPositiveAmount    = errors.New("payment: amount must be greater than zero")
	ErrCardRequired         = errors.New("payment: card details required for online processing")
	ErrNotProcessable       = errors.New("payment: payment cannot be processed in its current status")
	ErrMaxAttempts          = errors.New("payment: maximum processing attempts reached")
	ErrChargeFailed         = errors.New("payment: charge failed")
	ErrRefundFailed         = errors.New("payment: refund failed")
	ErrNotRefundable        = errors.New("payment: payment cannot be refunded in its current status")
	ErrRefundExceedsBalance = errors.New("payment: refund amount exceeds remaining balance")
	ErrNoTransactionRef     = errors.New("payment: original transaction reference is missing")
	ErrCancelled            = errors.New("payment: processing cancelled")
)

const maxProcessingAttempts = 3

type PaymentID string

// TransactionRef identifies a gateway-side (or manual) transaction.
type TransactionRef struct {
	Value    string
	Provider string
}

func (t TransactionRef) IsZero() bool {
	return t.Value == ""
}

func (t TransactionRef) String() string {
	return t.Provider + ":" + t.Value
}

// Gateway is the external payment-processing collaborator. Both calls may
// block on the network and honor ctx cancellation.
type Gateway interface {
	Charge(ctx context.Context, amount money.Money, card CreditCard, description string) (TransactionRef, error)
	Refund(ctx context.Context, original TransactionRef, amount money.Money, reason string) (TransactionRef, error)
}

type Repository interface {
	ByID(ctx context.Context, id PaymentID) (*Payment, error)
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Payment, error)
	Save(ctx context.Context, payment *Payment) error
}

// Payment charges a booking and owns its refunds. The invariant held after
// every operation: the sum of completed refund amounts never exceeds the
// charged amount.
type Payment struct {
	ID                 PaymentID
	BookingID          booking.BookingID
	CustomerID         customer.CustomerID
	Amount             money.Money
	Method             Method
	Status             Status
	TransactionRef     TransactionRef
	Card               *CreditCard
	ProcessedAt        time.Time
	FailureReason      string
	ProcessingAttempts int
	Refunds            []*Refund
	CreatedAt          time.Time
	ModifiedAt         time.Time
	Version            int64
	events.EventRecorder
}

type CreateParams struct {
	ID         PaymentID
	BookingID  booking.BookingID
	CustomerID customer.CustomerID
	Amount     money.Money
	Method     Method
	Card       *CreditCard
	CreatedAt  time.Time
}

func New(params CreateParams) (*Payment, error) {
	if !params.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if params.Method.RequiresOnlineProcessing() && params.Card == nil {
		return nil, fmt.Errorf("%w: %s", ErrCardRequired, params.Method)
	}
	return &Payment{
		ID:         params.ID,
		BookingID:  params.BookingID,
		CustomerID: params.CustomerID,
		Amount:     params.Amount,
		Method:     params.Method,
		Status:     StatusPending,
		Card:       params.Card,
		CreatedAt:  params.CreatedAt.UTC(),
	}, nil
}

// Process attempts the charge once. It never retries internally; retrying is
// the caller's decision, bounded by the attempt counter. A context cancelled
// before the gateway call resolves leaves the payment in its pre-call state.
func (p *Payment) Process(ctx context.Context, gateway Gateway, now time.Time) error {
	if !p.Status.CanBeProcessed() {
		return fmt.Errorf("%w: %s", ErrNotProcessable, p.Status)
	}
	if p.ProcessingAttempts >= maxProcessingAttempts {
		return ErrMaxAttempts
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}

	prevStatus := p.Status
	prevModified := p.ModifiedAt
	p.ProcessingAttempts++
	p.Status = StatusProcessing
	p.ModifiedAt = now.UTC()

	var ref TransactionRef
	if p.Method.RequiresOnlineProcessing() {
		if gateway == nil {
			panic("payment: nil gateway")
		}
		var err error
		ref, err = gateway.Charge(ctx, p.Amount, *p.Card, "Booking "+string(p.BookingID))
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				p.Status = prevStatus
				p.ProcessingAttempts--
				p.ModifiedAt = prevModified
				return fmt.Errorf("%w: %w", ErrCancelled, err)
			}
			return p.fail(err.Error(), now)
		}
	} else {
		// Manual settlement methods never touch the gateway.
		ref = TransactionRef{Value: "MANUAL-" + uuid.NewString(), Provider: "Manual"}
	}
	return p.complete(ref, now)
}

// RequestRefund creates a pending refund owned by this payment. A pending
// refund does not change the payment status; only completed refunds do.
func (p *Payment) RequestRefund(amount money.Money, reason string, now time.Time) (*Refund, error) {
	if !p.Status.CanBeRefunded() {
		return nil, fmt.Errorf("%w: %s", ErrNotRefundable, p.Status)
	}
	remaining, err := p.RemainingAmount()
	if err != nil {
		return nil, err
	}
	exceeds, err := amount.GreaterThan(remaining)
	if err != nil {
		return nil, err
	}
	if exceeds {
		return nil, fmt.Errorf("%w: requested %s, remaining %s", ErrRefundExceedsBalance, amount, remaining)
	}
	refund := newRefund(amount, reason, now)
	p.Refunds = append(p.Refunds, refund)
	if err := p.updateRefundStatus(); err != nil {
		p.Refunds = p.Refunds[:len(p.Refunds)-1]
		return nil, err
	}
	p.ModifiedAt = now.UTC()
	return refund, nil
}

// ProcessRefund pushes a pending refund through the gateway. Gateway failure
// marks the refund failed and leaves the payment status unchanged.
func (p *Payment) ProcessRefund(ctx context.Context, refundID string, gateway Gateway, now time.Time) error {
	refund := p.refund(refundID)
	if refund == nil {
		return ErrRefundNotFound
	}
	if p.TransactionRef.IsZero() {
		return ErrNoTransactionRef
	}
	if gateway == nil {
		panic("payment: nil gateway")
	}
	if err := refund.begin(); err != nil {
		return err
	}
	ref, err := gateway.Refund(ctx, p.TransactionRef, refund.Amount, refund.Reason)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			refund.Status = RefundPending
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		if failErr := refund.fail(err.Error(), now); failErr != nil {
			return failErr
		}
		return fmt.Errorf("%w: %s", ErrRefundFailed, err)
	}
	if err := refund.complete(ref, now); err != nil {
		return err
	}
	if err := p.updateRefundStatus(); err != nil {
		return err
	}
	p.ModifiedAt = now.UTC()
	p.Record(RefundProcessed{PaymentID: p.ID, RefundID: refund.ID, Amount: refund.Amount, TransactionRef: ref, At: p.ModifiedAt})
	return nil
}

// CancelRefund withdraws a refund that has not completed and recomputes the
// refund-derived payment status.
func (p *Payment) CancelRefund(refundID string, now time.Time) error {
	refund := p.refund(refundID)
	if refund == nil {
		return ErrRefundNotFound
	}
	if err := refund.cancel(); err != nil {
		return err
	}
	if err := p.updateRefundStatus(); err != nil {
		return err
	}
	p.ModifiedAt = now.UTC()
	return nil
}

// TotalRefunded sums completed refunds only.
func (p *Payment) TotalRefunded() (money.Money, error) {
	total := money.Zero(p.Amount.Currency)
	for _, refund := range p.Refunds {
		if !refund.Status.IsCompleted() {
			continue
		}
		var err error
		total, err = total.Add(refund.Amount)
		if err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

// RemainingAmount is the charged amount minus completed refunds.
func (p *Payment) RemainingAmount() (money.Money, error) {
	refunded, err := p.TotalRefunded()
	if err != nil {
		return money.Money{}, err
	}
	return p.Amount.Subtract(refunded)
}

func (p *Payment) IsFullyRefunded() bool {
	return p.Status == StatusRefunded
}

func (p *Payment) HasPendingRefunds() bool {
	for _, refund := range p.Refunds {
		if refund.Status == RefundPending || refund.Status == RefundProcessing {
			return true
		}
	}
	return false
}

func (p *Payment) complete(ref TransactionRef, now time.Time) error {
	p.Status = StatusCompleted
	p.TransactionRef = ref
	p.ProcessedAt = now.UTC()
	p.ModifiedAt = p.ProcessedAt
	p.Record(PaymentProcessed{PaymentID: p.ID, BookingID: p.BookingID, Amount: p.Amount, Method: p.Method, TransactionRef: ref, At: p.ProcessedAt})
	return nil
}

func (p *Payment) fail(reason string, now time.Time) error {
	p.Status = StatusFailed
	p.FailureReason = reason
	p.ProcessedAt = now.UTC()
	p.ModifiedAt = p.ProcessedAt
	p.Record(PaymentFailed{PaymentID: p.ID, BookingID: p.BookingID, Reason: reason, At: p.ProcessedAt})
	return fmt.Errorf("%w: %s", ErrChargeFailed, reason)
}

func (p *Payment) updateRefundStatus() error {
	refunded, err := p.TotalRefunded()
	if err != nil {
		return err
	}
	switch {
	case refunded.IsZero():
		if p.Status == StatusRefunded || p.Status == StatusPartiallyRefunded {
			p.Status = StatusCompleted
		}
	default:
		full, err := refunded.GreaterOrEqual(p.Amount)
		if err != nil {
			return err
		}
		if full {
			p.Status = StatusRefunded
		} else {
			p.Status = StatusPartiallyRefunded
		}
	}
	return nil
}

func (p *Payment) refund(refundID string) *Refund {
	for _, refund := range p.Refunds {
		if refund.ID == refundID {
			return refund
		}
	}
	return nil
}
