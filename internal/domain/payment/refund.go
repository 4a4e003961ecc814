package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"hotelops/internal/domain/shared/money"
)

var (
	ErrRefundNotFound      = errors.New("payment: refund not found")
	ErrRefundNotPending    = errors.New("payment: refund is not pending")
	ErrRefundNotProcessing = errors.New("payment: refund is not processing")
	ErrRefundNotCancelable = errors.New("payment: refund can no longer be cancelled")
)

// Refund is owned by its payment; it is created only through
// Payment.RequestRefund and mutated only through the payment's methods.
type Refund struct {
	ID             string
	Amount         money.Money
	Reason         string
	Status         RefundStatus
	TransactionRef TransactionRef
	CreatedAt      time.Time
	ProcessedAt    time.Time
	FailureReason  string
}

func newRefund(amount money.Money, reason string, now time.Time) *Refund {
	return &Refund{
		ID:        uuid.NewString(),
		Amount:    amount,
		Reason:    reason,
		Status:    RefundPending,
		CreatedAt: now.UTC(),
	}
}

func (r *Refund) begin() error {
	if !r.Status.CanBeProcessed() {
		return ErrRefundNotPending
	}
	r.Status = RefundProcessing
	return nil
}

func (r *Refund) complete(ref TransactionRef, now time.Time) error {
	if r.Status != RefundProcessing {
		return ErrRefundNotProcessing
	}
	r.Status = RefundCompleted
	r.TransactionRef = ref
	r.ProcessedAt = now.UTC()
	return nil
}

func (r *Refund) fail(reason string, now time.Time) error {
	if r.Status != RefundProcessing {
		return ErrRefundNotProcessing
	}
	r.Status = RefundFailed
	r.FailureReason = reason
	r.ProcessedAt = now.UTC()
	return nil
}

func (r *Refund) cancel() error {
	if !r.Status.CanBeCancelled() {
		return ErrRefundNotCancelable
	}
	r.Status = RefundCancelled
	return nil
}
