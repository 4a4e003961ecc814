package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/middleware"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	domainbooking "hotelops/internal/domain/booking"
	domainpayment "hotelops/internal/domain/payment"
)

const cancelBookingKey = "booking.cancel"

type CancelBookingCommand struct {
	BookingID       string
	Reason          string
	ByStaff         bool
	IdempotencyKeyV string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

func (c CancelBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CancelBookingCommand) ResultPrototype() any { return &CancelBookingResult{} }

type CancelBookingResult struct {
	BookingID     string `json:"booking_id"`
	RefundPercent int    `json:"refund_percent"`
	RefundID      string `json:"refund_id,omitempty"`
	RefundAmount  string `json:"refund_amount,omitempty"`
}

// CancelBookingHandler cancels the booking and, when the policy yields a
// refund and a charged payment exists, stages the refund request on the
// payment aggregate in the same transaction. Processing the refund against
// the gateway stays a separate command.
type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	percent, err := b.Cancel(cmd.ByStaff, cmd.Reason, now)
	if err != nil {
		return nil, err
	}
	result := &CancelBookingResult{BookingID: string(b.ID), RefundPercent: percent}

	if percent > 0 && b.PaymentID != "" {
		p, err := unit.Payments().ByID(ctx, domainpayment.PaymentID(b.PaymentID))
		if err != nil {
			return nil, err
		}
		if p.Status.CanBeRefunded() {
			amount, err := p.Amount.Percentage(decimal.NewFromInt(int64(percent)))
			if err != nil {
				return nil, err
			}
			refund, err := p.RequestRefund(amount, "Booking cancelled: "+cmd.Reason, now)
			if err != nil {
				return nil, err
			}
			if err := unit.Payments().Save(ctx, p); err != nil {
				return nil, err
			}
			result.RefundID = refund.ID
			result.RefundAmount = refund.Amount.String()
		}
	}

	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, &b.EventRecorder); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CancelBookingCommand)(nil)
