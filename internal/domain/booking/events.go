package booking

import (
	"time"

	"hotelops/internal/domain/customer"
	"hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/daterange"
)

type BookingCreated struct {
	BookingID  BookingID
	CustomerID customer.CustomerID
	Range      daterange.DateRange
	At         time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID BookingID
	PaymentID string
	At        time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

// BookingCancelled carries the refund percentage the policy yielded; the
// refund itself is issued through the payment aggregate by a separate step.
type BookingCancelled struct {
	BookingID     BookingID
	PaymentID     string
	Reason        string
	Refundable    bool
	RefundPercent int
	At            time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type RoomCheckedIn struct {
	BookingID BookingID
	RoomID    room.RoomID
	At        time.Time
}

func (e RoomCheckedIn) EventName() string     { return "booking.room_checked_in" }
func (e RoomCheckedIn) AggregateID() string   { return string(e.BookingID) }
func (e RoomCheckedIn) OccurredAt() time.Time { return e.At }

type RoomCheckedOut struct {
	BookingID BookingID
	RoomID    room.RoomID
	At        time.Time
}

func (e RoomCheckedOut) EventName() string     { return "booking.room_checked_out" }
func (e RoomCheckedOut) AggregateID() string   { return string(e.BookingID) }
func (e RoomCheckedOut) OccurredAt() time.Time { return e.At }

type GuestCheckedIn struct {
	BookingID BookingID
	RoomIDs   []room.RoomID
	At        time.Time
}

func (e GuestCheckedIn) EventName() string     { return "booking.checked_in" }
func (e GuestCheckedIn) AggregateID() string   { return string(e.BookingID) }
func (e GuestCheckedIn) OccurredAt() time.Time { return e.At }

type GuestCheckedOut struct {
	BookingID BookingID
	RoomIDs   []room.RoomID
	At        time.Time
}

func (e GuestCheckedOut) EventName() string     { return "booking.checked_out" }
func (e GuestCheckedOut) AggregateID() string   { return string(e.BookingID) }
func (e GuestCheckedOut) OccurredAt() time.Time { return e.At }

type BookingNoShow struct {
	BookingID BookingID
	At        time.Time
}

func (e BookingNoShow) EventName() string     { return "booking.no_show" }
func (e BookingNoShow) AggregateID() string   { return string(e.BookingID) }
func (e BookingNoShow) OccurredAt() time.Time { return e.At }
