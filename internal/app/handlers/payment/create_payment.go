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
	domainbooking "hotelops/internal/domain/booking"
	domainpayment "hotelops/internal/domain/payment"
	"hotelops/internal/domain/shared/events"
)

const createPaymentKey = "payment.create"

var (
	ErrBookingNotPayable = errors.New("payment: booking is not awaiting payment")
	ErrAlreadyPaid       = errors.New("payment: booking already has a payment")
	ErrNothingToCharge   = errors.New("payment: booking total is zero")
)

// CardDetails carries raw card input across the boundary; only the masked
// summary survives into the aggregate.
type CardDetails struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

type CreatePaymentCommand struct {
	CommandID       string
	BookingID       string
	Method          string
	Card            *CardDetails
	IdempotencyKeyV string
}

func (c CreatePaymentCommand) Key() string { return createPaymentKey }

func (c CreatePaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreatePaymentCommand) ResultPrototype() any { return &CreatePaymentResult{} }

type CreatePaymentResult struct {
	PaymentID string `json:"payment_id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
}

type CreatePaymentHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreatePaymentHandler) Handle(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if b.Status != domainbooking.StatusPending {
		return nil, ErrBookingNotPayable
	}
	if b.PaymentID != "" {
		return nil, ErrAlreadyPaid
	}
	if !b.FinalAmount.IsPositive() {
		return nil, ErrNothingToCharge
	}
	// Only a failed payment may be superseded by a new one.
	if existing, err := unit.Payments().ByBooking(ctx, b.ID); err == nil {
		if existing.Status != domainpayment.StatusFailed {
			return nil, ErrAlreadyPaid
		}
	} else if !errors.Is(err, domainpayment.ErrNotFound) {
		return nil, err
	}

	method, err := domainpayment.ParseMethod(cmd.Method)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	var card *domainpayment.CreditCard
	if cmd.Card != nil {
		parsed, err := domainpayment.NewCreditCard(
			cmd.Card.Number,
			cmd.Card.HolderName,
			cmd.Card.ExpiryMonth,
			cmd.Card.ExpiryYear,
			cmd.Card.CVV,
			now,
		)
		if err != nil {
			return nil, err
		}
		card = &parsed
	}

	p, err := domainpayment.New(domainpayment.CreateParams{
		ID:         domainpayment.PaymentID(cmd.CommandID),
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		Amount:     b.FinalAmount,
		Method:     method,
		Card:       card,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Payments().Save(ctx, p); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return &CreatePaymentResult{
		PaymentID: string(p.ID),
		Amount:    p.Amount.String(),
		Status:    string(p.Status),
	}, nil
}

// drainEvents stages an aggregate's pending events on the outbox and clears
// the recorder.
func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, recorder *events.EventRecorder) error {
	pending := recorder.PendingEvents()
	recorder.ClearEvents()
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var _ commands.Handler[CreatePaymentCommand, *CreatePaymentResult] = (*CreatePaymentHandler)(nil)
var _ middleware.IdempotentCommand = (*CreatePaymentCommand)(nil)
