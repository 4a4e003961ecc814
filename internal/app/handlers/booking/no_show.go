package booking

import (
	"context"
	"time"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	domainbooking "hotelops/internal/domain/booking"
)

const markNoShowKey = "booking.mark_no_show"

type MarkNoShowCommand struct {
	BookingID string
}

func (c MarkNoShowCommand) Key() string { return markNoShowKey }

type MarkNoShowResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

type MarkNoShowHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *MarkNoShowHandler) Handle(ctx context.Context, cmd MarkNoShowCommand) (*MarkNoShowResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if err := b.MarkNoShow(time.Now().UTC()); err != nil {
		return nil, err
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
	return &MarkNoShowResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

var _ commands.Handler[MarkNoShowCommand, *MarkNoShowResult] = (*MarkNoShowHandler)(nil)
