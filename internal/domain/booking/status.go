package booking

// Status is the booking lifecycle state. Cancelled and NoShow are terminal;
// bookings are never deleted.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusConfirmed          Status = "CONFIRMED"
	StatusPartiallyCheckedIn Status = "PARTIALLY_CHECKED_IN"
	StatusCheckedIn          Status = "CHECKED_IN"
	StatusCheckedOut         Status = "CHECKED_OUT"
	StatusCancelled          Status = "CANCELLED"
	StatusNoShow             Status = "NO_SHOW"
)

func (s Status) CanBeCancelled() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) CanCheckIn() bool {
	return s == StatusConfirmed || s == StatusPartiallyCheckedIn
}

func (s Status) CanCheckOut() bool {
	return s == StatusCheckedIn || s == StatusPartiallyCheckedIn
}

// Blocking reports whether the booking still holds its rooms for availability
// purposes. Cancelled and no-show bookings free the dates.
func (s Status) Blocking() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// ItemStatus is the per-room sub-state, a strict sub-sequence of the booking
// lifecycle.
type ItemStatus string

const (
	ItemConfirmed  ItemStatus = "CONFIRMED"
	ItemCheckedIn  ItemStatus = "CHECKED_IN"
	ItemCheckedOut ItemStatus = "CHECKED_OUT"
)

func (s ItemStatus) CanCheckIn() bool {
	return s == ItemConfirmed
}

func (s ItemStatus) CanCheckOut() bool {
	return s == ItemCheckedIn
}
