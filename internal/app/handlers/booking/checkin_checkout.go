package booking

import (
	"context"
	"time"

	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	domainbooking "hotelops/internal/domain/booking"
	domainroom "hotelops/internal/domain/room"
)

const (
	checkInRoomKey   = "booking.check_in_room"
	checkOutRoomKey  = "booking.check_out_room"
	checkInGuestKey  = "booking.check_in"
	checkOutGuestKey = "booking.check_out"
)

type CheckInRoomCommand struct {
	BookingID string
	RoomID    string
}

func (c CheckInRoomCommand) Key() string { return checkInRoomKey }

type CheckOutRoomCommand struct {
	BookingID string
	RoomID    string
}

func (c CheckOutRoomCommand) Key() string { return checkOutRoomKey }

type CheckInBookingCommand struct {
	BookingID string
}

func (c CheckInBookingCommand) Key() string { return checkInGuestKey }

type CheckOutBookingCommand struct {
	BookingID string
}

func (c CheckOutBookingCommand) Key() string { return checkOutGuestKey }

type OccupancyResult struct {
	BookingID string   `json:"booking_id"`
	Status    string   `json:"status"`
	RoomIDs   []string `json:"room_ids"`
}

// OccupancyHandler drives check-in and check-out. Booking state and physical
// room state move together in one transaction: checking in occupies the
// rooms, checking out sends them to cleaning.
type OccupancyHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *OccupancyHandler) HandleCheckInRoom(ctx context.Context, cmd CheckInRoomCommand) (*OccupancyResult, error) {
	roomID := domainroom.RoomID(cmd.RoomID)
	return h.mutate(ctx, domainbooking.BookingID(cmd.BookingID), func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) ([]domainroom.RoomID, error) {
		if err := b.CheckInRoom(roomID, now); err != nil {
			return nil, err
		}
		return []domainroom.RoomID{roomID}, h.occupyRooms(ctx, unit, []domainroom.RoomID{roomID}, now)
	})
}

func (h *OccupancyHandler) HandleCheckOutRoom(ctx context.Context, cmd CheckOutRoomCommand) (*OccupancyResult, error) {
	roomID := domainroom.RoomID(cmd.RoomID)
	return h.mutate(ctx, domainbooking.BookingID(cmd.BookingID), func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) ([]domainroom.RoomID, error) {
		if err := b.CheckOutRoom(roomID, now); err != nil {
			return nil, err
		}
		return []domainroom.RoomID{roomID}, h.vacateRooms(ctx, unit, []domainroom.RoomID{roomID}, now)
	})
}

func (h *OccupancyHandler) HandleCheckIn(ctx context.Context, cmd CheckInBookingCommand) (*OccupancyResult, error) {
	return h.mutate(ctx, domainbooking.BookingID(cmd.BookingID), func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) ([]domainroom.RoomID, error) {
		remaining := remainingRooms(b, true)
		if err := b.CheckIn(now); err != nil {
			return nil, err
		}
		return remaining, h.occupyRooms(ctx, unit, remaining, now)
	})
}

func (h *OccupancyHandler) HandleCheckOut(ctx context.Context, cmd CheckOutBookingCommand) (*OccupancyResult, error) {
	return h.mutate(ctx, domainbooking.BookingID(cmd.BookingID), func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) ([]domainroom.RoomID, error) {
		remaining := remainingRooms(b, false)
		if err := b.CheckOut(now); err != nil {
			return nil, err
		}
		return remaining, h.vacateRooms(ctx, unit, remaining, now)
	})
}

func (h *OccupancyHandler) mutate(
	ctx context.Context,
	id domainbooking.BookingID,
	apply func(ctx context.Context, unit *support.Unit, b *domainbooking.Booking, now time.Time) ([]domainroom.RoomID, error),
) (*OccupancyResult, error) {
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
	roomIDs, err := apply(ctx, unit, b, now)
	if err != nil {
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
	out := &OccupancyResult{BookingID: string(b.ID), Status: string(b.Status)}
	for _, id := range roomIDs {
		out.RoomIDs = append(out.RoomIDs, string(id))
	}
	return out, nil
}

func (h *OccupancyHandler) occupyRooms(ctx context.Context, unit *support.Unit, ids []domainroom.RoomID, now time.Time) error {
	for _, id := range ids {
		rm, err := unit.Rooms().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := rm.Occupy(now); err != nil {
			return err
		}
		if err := unit.Rooms().Save(ctx, rm); err != nil {
			return err
		}
		if err := drainEvents(ctx, h.Outbox, h.Encoder, &rm.EventRecorder); err != nil {
			return err
		}
	}
	return nil
}

func (h *OccupancyHandler) vacateRooms(ctx context.Context, unit *support.Unit, ids []domainroom.RoomID, now time.Time) error {
	for _, id := range ids {
		rm, err := unit.Rooms().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := rm.Vacate(now); err != nil {
			return err
		}
		if err := unit.Rooms().Save(ctx, rm); err != nil {
			return err
		}
		if err := drainEvents(ctx, h.Outbox, h.Encoder, &rm.EventRecorder); err != nil {
			return err
		}
	}
	return nil
}

// remainingRooms lists the rooms a whole-booking check-in (or check-out)
// will transition, captured before the aggregate mutates.
func remainingRooms(b *domainbooking.Booking, checkIn bool) []domainroom.RoomID {
	var ids []domainroom.RoomID
	for _, item := range b.Items {
		if checkIn && item.Status.CanCheckIn() {
			ids = append(ids, item.RoomID)
		}
		if !checkIn && item.Status.CanCheckOut() {
			ids = append(ids, item.RoomID)
		}
	}
	return ids
}
