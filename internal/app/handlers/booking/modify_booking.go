package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/uow"
	domainbooking "hotelops/internal/domain/booking"
	domainroom "hotelops/internal/domain/room"
)

const (
	addRoomKey       = "booking.add_room"
	removeRoomKey    = "booking.remove_room"
	applyDiscountKey = "booking.apply_discount"
)

type AddRoomCommand struct {
	BookingID string
	Room      RoomSelection
}

func (c AddRoomCommand) Key() string { return addRoomKey }

type RemoveRoomCommand struct {
	BookingID string
	RoomID    string
}

func (c RemoveRoomCommand) Key() string { return removeRoomKey }

type ApplyDiscountCommand struct {
	BookingID string
	Percent   float64
}

func (c ApplyDiscountCommand) Key() string { return applyDiscountKey }

// ModifyBookingResult reports the recomputed amounts after any pending-state
// mutation.
type ModifyBookingResult struct {
	BookingID      string `json:"booking_id"`
	TotalAmount    string `json:"total_amount"`
	DiscountAmount string `json:"discount_amount"`
	FinalAmount    string `json:"final_amount"`
}

type ModifyBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ModifyBookingHandler) HandleAddRoom(ctx context.Context, cmd AddRoomCommand) (*ModifyBookingResult, error) {
	return h.mutate(ctx, domainbooking.BookingID(cmd.BookingID), func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) error {
		rm, err := unit.Rooms().ByID(ctx, domainroom.RoomID(cmd.Room.RoomID))
		if err != nil {
			return err
		}
		if rm.Type.Capacity > 0 && cmd.Room.Adults+cmd.Room.Children > rm.Type.Capacity {
			return fmt.Errorf("%w: room %s holds %d", ErrOverCapacity, rm.Number, rm.Type.Capacity)
		}
		free, err := unit.Bookings().IsRoomAvailable(ctx, rm.ID, b.Range, b.ID)
		if err != nil {
			return err
		}
		if !free {
			return ErrRoomUnavailable
		}
		return b.AddRoom(rm.ID, rm.Type.NightlyRate, cmd.Room.Adults, cmd.Room.Children, now)
	})
}

func (h *ModifyBookingHandler) HandleRemoveRoom(ctx context.Context, cmd RemoveRoomCommand) (*ModifyBookingResult, error) {
	return h.mutate(ctx, domainbooking.BookingID(cmd.BookingID), func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) error {
		return b.RemoveRoom(domainroom.RoomID(cmd.RoomID), now)
	})
}

func (h *ModifyBookingHandler) HandleApplyDiscount(ctx context.Context, cmd ApplyDiscountCommand) (*ModifyBookingResult, error) {
	return h.mutate(ctx, domainbooking.BookingID(cmd.BookingID), func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) error {
		return b.ApplyDiscount(decimal.NewFromFloat(cmd.Percent), now)
	})
}

func (h *ModifyBookingHandler) mutate(
	ctx context.Context,
	id domainbooking.BookingID,
	apply func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) error,
) (*ModifyBookingResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := apply(ctx, unit, b, now); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return &ModifyBookingResult{
		BookingID:      string(b.ID),
		TotalAmount:    b.TotalAmount.String(),
		DiscountAmount: b.DiscountAmount.String(),
		FinalAmount:    b.FinalAmount.String(),
	}, nil
}
