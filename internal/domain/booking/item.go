package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/money"
)

var (
	ErrNoAdults      = errors.New("booking: at least one adult is required")
	ErrTooManyAdults = errors.New("booking: adults cannot exceed 10")
	ErrNegativeKids  = errors.New("booking: children cannot be negative")
	ErrTooManyKids   = errors.New("booking: children cannot exceed 10")
	ErrTooManyGuests = errors.New("booking: total guests cannot exceed 20")
	ErrInvalidPrice  = errors.New("booking: price per night must be positive")
	ErrItemCheckIn   = errors.New("booking: room is not ready for check-in")
	ErrItemCheckOut  = errors.New("booking: room is not checked in")
)

// GuestCount holds the occupancy of a single room line.
type GuestCount struct {
	Adults   int
	Children int
}

func NewGuestCount(adults, children int) (GuestCount, error) {
	switch {
	case adults < 1:
		return GuestCount{}, ErrNoAdults
	case adults > 10:
		return GuestCount{}, ErrTooManyAdults
	case children < 0:
		return GuestCount{}, ErrNegativeKids
	case children > 10:
		return GuestCount{}, ErrTooManyKids
	case adults+children > 20:
		return GuestCount{}, ErrTooManyGuests
	}
	return GuestCount{Adults: adults, Children: children}, nil
}

func (g GuestCount) Total() int {
	return g.Adults + g.Children
}

// Item is one room line inside a booking. Items are created only through
// Booking.AddRoom and cannot outlive their booking.
type Item struct {
	ID            string
	RoomID        room.RoomID
	PricePerNight money.Money
	Guests        GuestCount
	Status        ItemStatus
	CheckInTime   time.Time
	CheckOutTime  time.Time
	CreatedAt     time.Time
}

func newItem(roomID room.RoomID, pricePerNight money.Money, adults, children int, now time.Time) (*Item, error) {
	guests, err := NewGuestCount(adults, children)
	if err != nil {
		return nil, err
	}
	if !pricePerNight.IsPositive() {
		return nil, ErrInvalidPrice
	}
	return &Item{
		ID:            uuid.NewString(),
		RoomID:        roomID,
		PricePerNight: pricePerNight,
		Guests:        guests,
		Status:        ItemConfirmed,
		CreatedAt:     now.UTC(),
	}, nil
}

func (i *Item) checkIn(now time.Time) error {
	if !i.Status.CanCheckIn() {
		return ErrItemCheckIn
	}
	i.Status = ItemCheckedIn
	i.CheckInTime = now.UTC()
	return nil
}

func (i *Item) checkOut(now time.Time) error {
	if !i.Status.CanCheckOut() {
		return ErrItemCheckOut
	}
	i.Status = ItemCheckedOut
	i.CheckOutTime = now.UTC()
	return nil
}
