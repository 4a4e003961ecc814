package payment

import (
	"context"
	"errors"
	"time"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/middleware"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	domainpayment "hotelops/internal/domain/payment"
)

const processPaymentKey = "payment.process"

type ProcessPaymentCommand struct {
	PaymentID       string
	IdempotencyKeyV string
}

func (c ProcessPaymentCommand) Key() string { return processPaymentKey }

func (c ProcessPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ProcessPaymentCommand) ResultPrototype() any { return &ProcessPaymentResult{} }

type ProcessPaymentResult struct {
	PaymentID      string `json:"payment_id"`
	Status         string `json:"status"`
	TransactionRef string `json:"transaction_ref,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
	Attempts       int    `json:"attempts"`
}

// ProcessPaymentHandler drives the charge and, on success, confirms the
// booking in the same transaction. A gateway decline is persisted as a failed
// attempt and reported in the result rather than as an error, so the attempt
// counter survives the transaction.
type ProcessPaymentHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    domainpayment.Gateway
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *ProcessPaymentHandler) Handle(ctx context.Context, cmd ProcessPaymentCommand) (*ProcessPaymentResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	p, err := unit.Payments().ByID(ctx, domainpayment.PaymentID(cmd.PaymentID))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	processErr := p.Process(ctx, h.Gateway, now)
	if processErr != nil && !errors.Is(processErr, domainpayment.ErrChargeFailed) {
		// Cancellation and state errors leave nothing worth persisting.
		return nil, processErr
	}

	if processErr == nil {
		b, err := unit.Bookings().ByID(ctx, p.BookingID)
		if err != nil {
			return nil, err
		}
		if err := b.ConfirmPayment(string(p.ID), now); err != nil {
			return nil, err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return nil, err
		}
		if err := drainEvents(ctx, h.Outbox, h.Encoder, &b.EventRecorder); err != nil {
			return nil, err
		}
	}

	if err := unit.Payments().Save(ctx, p); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, &p.EventRecorder); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}

	return &ProcessPaymentResult{
		PaymentID:      string(p.ID),
		Status:         string(p.Status),
		TransactionRef: p.TransactionRef.Value,
		FailureReason:  p.FailureReason,
		Attempts:       p.ProcessingAttempts,
	}, nil
}

var _ commands.Handler[ProcessPaymentCommand, *ProcessPaymentResult] = (*ProcessPaymentHandler)(nil)
var _ middleware.IdempotentCommand = (*ProcessPaymentCommand)(nil)
