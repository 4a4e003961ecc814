package booking

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"hotelops/internal/domain/customer"
	"hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/daterange"
	"hotelops/internal/domain/shared/events"
	"hotelops/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrNotPending        = errors.New("booking: only pending bookings can be modified")
	ErrRoomAlreadyAdded  = errors.New("booking: room is already in the booking")
	ErrRoomNotInBooking  = errors.New("booking: room not found in booking")
	ErrNoRooms           = errors.New("booking: booking has no rooms")
	ErrInvalidDiscount   = errors.New("booking: discount percent must be between 0 and 100")
	ErrInvalidState      = errors.New("booking: invalid state transition")
	ErrBeforeStartDate   = errors.New("booking: cannot check in before the booking start date")
	ErrNoShowTooEarly    = errors.New("booking: no-show can only be marked after the start date")
	ErrCustomerRequired  = errors.New("booking: customer id required")
	ErrPaymentIDRequired = errors.New("booking: payment id required")
)

type BookingID string

// Booking is the aggregate root for a stay: it owns its room items, the
// lifecycle state machine and the total/discount/final amounts. Items are
// mutated only through the booking's own methods.
type Booking struct {
	ID                 BookingID
	CustomerID         customer.CustomerID
	Range              daterange.DateRange
	Status             Status
	Items              []*Item
	Currency           money.Currency
	TotalAmount        money.Money
	DiscountPercent    decimal.Decimal
	DiscountAmount     money.Money
	FinalAmount        money.Money
	PaymentID          string
	Policy             CancellationPolicy
	ConfirmedAt        time.Time
	CancelledAt        time.Time
	CancellationReason string
	CheckInTime        time.Time
	CheckOutTime       time.Time
	CreatedAt          time.Time
	ModifiedAt         time.Time
	Version            int64
	events.EventRecorder
}

// Repository persists bookings and answers the availability query the
// booking-creation workflow consults. A room is unavailable iff some other
// blocking (non-cancelled, non-no-show) booking containing it overlaps the
// requested range. The availability read and the subsequent save are not one
// atomic step; serialization is the caller's concern.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByCustomer(ctx context.Context, customerID customer.CustomerID) ([]*Booking, error)
	IsRoomAvailable(ctx context.Context, roomID room.RoomID, r daterange.DateRange, exclude BookingID) (bool, error)
}

type CreateParams struct {
	ID         BookingID
	CustomerID customer.CustomerID
	Range      daterange.DateRange
	Currency   money.Currency
	Policy     CancellationPolicy
	CreatedAt  time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.CustomerID == "" {
		return nil, ErrCustomerRequired
	}
	currency := params.Currency
	if currency == "" {
		currency = money.EUR
	}
	policy := params.Policy
	if policy == (CancellationPolicy{}) {
		policy = StandardPolicy()
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:             params.ID,
		CustomerID:     params.CustomerID,
		Range:          params.Range,
		Status:         StatusPending,
		Currency:       currency,
		TotalAmount:    money.Zero(currency),
		DiscountAmount: money.Zero(currency),
		FinalAmount:    money.Zero(currency),
		Policy:         policy,
		CreatedAt:      now,
	}
	b.Record(BookingCreated{BookingID: b.ID, CustomerID: b.CustomerID, Range: b.Range, At: now})
	return b, nil
}

// AddRoom appends a room line and recomputes totals. Allowed only while pending.
func (b *Booking) AddRoom(roomID room.RoomID, pricePerNight money.Money, adults, children int, now time.Time) error {
	if b.Status != StatusPending {
		return ErrNotPending
	}
	if b.hasRoom(roomID) {
		return ErrRoomAlreadyAdded
	}
	if pricePerNight.Currency != b.Currency {
		return money.ErrCurrencyMismatch
	}
	item, err := newItem(roomID, pricePerNight, adults, children, now)
	if err != nil {
		return err
	}
	b.Items = append(b.Items, item)
	if err := b.recalculateTotals(); err != nil {
		b.Items = b.Items[:len(b.Items)-1]
		return err
	}
	b.ModifiedAt = now.UTC()
	return nil
}

// RemoveRoom drops a room line and recomputes totals. Allowed only while pending.
func (b *Booking) RemoveRoom(roomID room.RoomID, now time.Time) error {
	if b.Status != StatusPending {
		return ErrNotPending
	}
	idx := -1
	for i, item := range b.Items {
		if item.RoomID == roomID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrRoomNotInBooking
	}
	b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
	if err := b.recalculateTotals(); err != nil {
		return err
	}
	b.ModifiedAt = now.UTC()
	return nil
}

// ApplyDiscount sets the discount percentage and recomputes the final amount.
func (b *Booking) ApplyDiscount(percent decimal.Decimal, now time.Time) error {
	if b.Status != StatusPending {
		return ErrNotPending
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidDiscount
	}
	b.DiscountPercent = percent
	if err := b.recalculateTotals(); err != nil {
		return err
	}
	b.ModifiedAt = now.UTC()
	return nil
}

// ConfirmPayment transitions Pending -> Confirmed once a payment exists for
// the booking. The payment id is an identifier link, never an object reference.
func (b *Booking) ConfirmPayment(paymentID string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	if len(b.Items) == 0 {
		return ErrNoRooms
	}
	if paymentID == "" {
		return ErrPaymentIDRequired
	}
	b.PaymentID = paymentID
	b.Status = StatusConfirmed
	b.ConfirmedAt = now.UTC()
	b.ModifiedAt = b.ConfirmedAt
	b.Record(BookingConfirmed{BookingID: b.ID, PaymentID: paymentID, At: b.ConfirmedAt})
	return nil
}

// Cancel transitions to the terminal Cancelled state and returns the refund
// percentage the cancellation policy yields. Issuing the refund against the
// payment aggregate is a separate workflow step, not automatic.
func (b *Booking) Cancel(byStaff bool, reason string, now time.Time) (int, error) {
	if !b.Status.CanBeCancelled() {
		return 0, ErrInvalidState
	}
	percent := b.refundPercent(byStaff, now)
	b.Status = StatusCancelled
	b.CancelledAt = now.UTC()
	b.CancellationReason = reason
	b.ModifiedAt = b.CancelledAt
	b.Record(BookingCancelled{
		BookingID:     b.ID,
		PaymentID:     b.PaymentID,
		Reason:        reason,
		Refundable:    percent > 0,
		RefundPercent: percent,
		At:            b.CancelledAt,
	})
	return percent, nil
}

// CheckInRoom checks in a single room line; the aggregate status becomes
// PartiallyCheckedIn or CheckedIn depending on the resulting mix.
func (b *Booking) CheckInRoom(roomID room.RoomID, now time.Time) error {
	if !b.Status.CanCheckIn() {
		return ErrInvalidState
	}
	item := b.item(roomID)
	if item == nil {
		return ErrRoomNotInBooking
	}
	if err := item.checkIn(now); err != nil {
		return err
	}
	if b.CheckInTime.IsZero() {
		b.CheckInTime = now.UTC()
	}
	b.refreshOccupancy(now)
	b.ModifiedAt = now.UTC()
	b.Record(RoomCheckedIn{BookingID: b.ID, RoomID: roomID, At: b.ModifiedAt})
	return nil
}

// CheckOutRoom checks out a single room line.
func (b *Booking) CheckOutRoom(roomID room.RoomID, now time.Time) error {
	if !b.Status.CanCheckOut() {
		return ErrInvalidState
	}
	item := b.item(roomID)
	if item == nil {
		return ErrRoomNotInBooking
	}
	if err := item.checkOut(now); err != nil {
		return err
	}
	b.refreshOccupancy(now)
	b.ModifiedAt = now.UTC()
	b.Record(RoomCheckedOut{BookingID: b.ID, RoomID: roomID, At: b.ModifiedAt})
	return nil
}

// CheckIn checks in every remaining room. Rejected before the start date.
func (b *Booking) CheckIn(now time.Time) error {
	if !b.Status.CanCheckIn() {
		return ErrInvalidState
	}
	if daterange.Date(now).Before(b.Range.Start) {
		return ErrBeforeStartDate
	}
	var roomIDs []room.RoomID
	for _, item := range b.Items {
		if item.Status.CanCheckIn() {
			if err := item.checkIn(now); err != nil {
				return err
			}
			roomIDs = append(roomIDs, item.RoomID)
		}
	}
	if len(roomIDs) == 0 {
		return ErrItemCheckIn
	}
	if b.CheckInTime.IsZero() {
		b.CheckInTime = now.UTC()
	}
	b.refreshOccupancy(now)
	b.ModifiedAt = now.UTC()
	b.Record(GuestCheckedIn{BookingID: b.ID, RoomIDs: roomIDs, At: b.ModifiedAt})
	return nil
}

// CheckOut checks out every checked-in room.
func (b *Booking) CheckOut(now time.Time) error {
	if !b.Status.CanCheckOut() {
		return ErrInvalidState
	}
	var roomIDs []room.RoomID
	for _, item := range b.Items {
		if item.Status.CanCheckOut() {
			if err := item.checkOut(now); err != nil {
				return err
			}
			roomIDs = append(roomIDs, item.RoomID)
		}
	}
	if len(roomIDs) == 0 {
		return ErrItemCheckOut
	}
	b.refreshOccupancy(now)
	b.ModifiedAt = now.UTC()
	b.Record(GuestCheckedOut{BookingID: b.ID, RoomIDs: roomIDs, At: b.ModifiedAt})
	return nil
}

// MarkNoShow records a confirmed guest who never arrived, strictly after the
// start date.
func (b *Booking) MarkNoShow(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidState
	}
	if !daterange.Date(now).After(b.Range.Start) {
		return ErrNoShowTooEarly
	}
	b.Status = StatusNoShow
	b.ModifiedAt = now.UTC()
	b.Record(BookingNoShow{BookingID: b.ID, At: b.ModifiedAt})
	return nil
}

func (b *Booking) RoomIDs() []room.RoomID {
	ids := make([]room.RoomID, 0, len(b.Items))
	for _, item := range b.Items {
		ids = append(ids, item.RoomID)
	}
	return ids
}

func (b *Booking) TotalGuests() int {
	total := 0
	for _, item := range b.Items {
		total += item.Guests.Total()
	}
	return total
}

func (b *Booking) refundPercent(byStaff bool, now time.Time) int {
	if b.Status == StatusPending {
		return 100
	}
	if byStaff {
		// Staff override: full refund regardless of policy.
		return 100
	}
	return b.Policy.RefundPercentFor(b.Range.Start, now)
}

func (b *Booking) recalculateTotals() error {
	nights := int64(b.Range.Nights())
	subtotal := money.Zero(b.Currency)
	for _, item := range b.Items {
		line, err := item.PricePerNight.Multiply(nights)
		if err != nil {
			return err
		}
		subtotal, err = subtotal.Add(line)
		if err != nil {
			return err
		}
	}
	discount, err := subtotal.Percentage(b.DiscountPercent)
	if err != nil {
		return err
	}
	final, err := subtotal.Subtract(discount)
	if err != nil {
		// Discount exceeding the subtotal clamps the final amount at zero.
		final = money.Zero(b.Currency)
	}
	b.TotalAmount = subtotal
	b.DiscountAmount = discount
	b.FinalAmount = final
	return nil
}

func (b *Booking) refreshOccupancy(now time.Time) {
	allOut := len(b.Items) > 0
	allIn := len(b.Items) > 0
	anyStarted := false
	for _, item := range b.Items {
		switch item.Status {
		case ItemCheckedOut:
			allIn = false
			anyStarted = true
		case ItemCheckedIn:
			allOut = false
			anyStarted = true
		default:
			allOut = false
			allIn = false
		}
	}
	switch {
	case allOut:
		b.Status = StatusCheckedOut
		if b.CheckOutTime.IsZero() {
			b.CheckOutTime = now.UTC()
		}
	case allIn:
		b.Status = StatusCheckedIn
	case anyStarted:
		b.Status = StatusPartiallyCheckedIn
	}
}

func (b *Booking) hasRoom(roomID room.RoomID) bool {
	return b.item(roomID) != nil
}

func (b *Booking) item(roomID room.RoomID) *Item {
	for _, item := range b.Items {
		if item.RoomID == roomID {
			return item
		}
	}
	return nil
}
