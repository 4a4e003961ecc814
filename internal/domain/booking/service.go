package booking

import (
	"context"
	"errors"
)

var (
	ErrNoGuests = errors.New("booking: booking must have at least one guest")
)

// Service holds aggregate-level rules the creation workflow validates before
// persisting a booking.
type Service struct {
	Bookings Repository
}

// Validate checks the cross-item rules that single mutations cannot see.
func (s Service) Validate(booking *Booking) error {
	if len(booking.Items) == 0 {
		return ErrNoRooms
	}
	if booking.TotalGuests() == 0 {
		return ErrNoGuests
	}
	return nil
}

// RoomAvailable answers the availability contract for the creation workflow.
// The read and the later save are two separate calls; see Repository docs for
// the serialization requirement.
func (s Service) RoomAvailable(ctx context.Context, booking *Booking) (bool, error) {
	for _, item := range booking.Items {
		free, err := s.Bookings.IsRoomAvailable(ctx, item.RoomID, booking.Range, booking.ID)
		if err != nil {
			return false, err
		}
		if !free {
			return false, nil
		}
	}
	return true, nil
}
