package booking_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/domain/booking"
	"hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/daterange"
	"hotelops/internal/domain/shared/money"
)

var (
	createdAt = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	checkIn   = time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	checkOut  = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
)

func newBooking(t *testing.T) *booking.Booking {
	t.Helper()
	dr, err := daterange.New(checkIn, checkOut, createdAt)
	require.NoError(t, err)
	b, err := booking.New(booking.CreateParams{
		ID:         "bkg-1",
		CustomerID: "cust-1",
		Range:      dr,
		Currency:   money.EUR,
		CreatedAt:  createdAt,
	})
	require.NoError(t, err)
	return b
}

func confirmedBooking(t *testing.T) *booking.Booking {
	t.Helper()
	b := newBooking(t)
	require.NoError(t, b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, createdAt))
	require.NoError(t, b.AddRoom("room-2", money.Must(50, money.EUR), 2, 1, createdAt))
	require.NoError(t, b.ConfirmPayment("pay-1", createdAt))
	return b
}

func TestNewDefaults(t *testing.T) {
	dr, err := daterange.New(checkIn, checkOut, createdAt)
	require.NoError(t, err)

	b, err := booking.New(booking.CreateParams{ID: "bkg-1", CustomerID: "cust-1", Range: dr, CreatedAt: createdAt})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, money.EUR, b.Currency)
	assert.Equal(t, booking.StandardPolicy(), b.Policy)
	assert.True(t, b.TotalAmount.IsZero())

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.created", events[0].EventName())

	_, err = booking.New(booking.CreateParams{ID: "bkg-2", Range: dr, CreatedAt: createdAt})
	require.ErrorIs(t, err, booking.ErrCustomerRequired)
}

func TestAddRoomRecalculatesTotals(t *testing.T) {
	b := newBooking(t)

	require.NoError(t, b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, createdAt))
	// 3 nights at 50.
	assert.True(t, b.TotalAmount.Equal(money.Must(150, money.EUR)))

	require.NoError(t, b.AddRoom("room-2", money.Must(50, money.EUR), 1, 1, createdAt))
	assert.True(t, b.TotalAmount.Equal(money.Must(300, money.EUR)))
	assert.True(t, b.FinalAmount.Equal(money.Must(300, money.EUR)))
	assert.Equal(t, 4, b.TotalGuests())
}

func TestAddRoomValidation(t *testing.T) {
	b := newBooking(t)
	require.NoError(t, b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, createdAt))

	err := b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, createdAt)
	require.ErrorIs(t, err, booking.ErrRoomAlreadyAdded)

	err = b.AddRoom("room-2", money.Must(50, money.USD), 2, 0, createdAt)
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)

	err = b.AddRoom("room-2", money.Zero(money.EUR), 2, 0, createdAt)
	require.ErrorIs(t, err, booking.ErrInvalidPrice)

	err = b.AddRoom("room-2", money.Must(50, money.EUR), 0, 0, createdAt)
	require.ErrorIs(t, err, booking.ErrNoAdults)
}

func TestRemoveRoom(t *testing.T) {
	b := newBooking(t)
	require.NoError(t, b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, createdAt))
	require.NoError(t, b.AddRoom("room-2", money.Must(70, money.EUR), 2, 0, createdAt))

	require.NoError(t, b.RemoveRoom("room-1", createdAt))
	assert.True(t, b.TotalAmount.Equal(money.Must(210, money.EUR)))
	assert.Equal(t, []room.RoomID{"room-2"}, b.RoomIDs())

	err := b.RemoveRoom("room-1", createdAt)
	require.ErrorIs(t, err, booking.ErrRoomNotInBooking)
}

func TestApplyDiscount(t *testing.T) {
	b := newBooking(t)
	require.NoError(t, b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, createdAt))
	require.NoError(t, b.AddRoom("room-2", money.Must(50, money.EUR), 2, 0, createdAt))

	require.NoError(t, b.ApplyDiscount(decimal.NewFromInt(10), createdAt))
	assert.True(t, b.DiscountAmount.Equal(money.Must(30, money.EUR)))
	assert.True(t, b.FinalAmount.Equal(money.Must(270, money.EUR)))

	err := b.ApplyDiscount(decimal.NewFromInt(101), createdAt)
	require.ErrorIs(t, err, booking.ErrInvalidDiscount)
}

func TestModificationsRequirePending(t *testing.T) {
	b := confirmedBooking(t)

	require.ErrorIs(t, b.AddRoom("room-3", money.Must(50, money.EUR), 1, 0, createdAt), booking.ErrNotPending)
	require.ErrorIs(t, b.RemoveRoom("room-1", createdAt), booking.ErrNotPending)
	require.ErrorIs(t, b.ApplyDiscount(decimal.NewFromInt(5), createdAt), booking.ErrNotPending)
}

func TestConfirmPayment(t *testing.T) {
	b := newBooking(t)

	err := b.ConfirmPayment("pay-1", createdAt)
	require.ErrorIs(t, err, booking.ErrNoRooms)

	require.NoError(t, b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, createdAt))
	err = b.ConfirmPayment("", createdAt)
	require.ErrorIs(t, err, booking.ErrPaymentIDRequired)

	require.NoError(t, b.ConfirmPayment("pay-1", createdAt))
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, "pay-1", b.PaymentID)

	err = b.ConfirmPayment("pay-2", createdAt)
	require.ErrorIs(t, err, booking.ErrInvalidState)
}

func TestCancelPendingRefundsInFull(t *testing.T) {
	b := newBooking(t)
	require.NoError(t, b.AddRoom("room-1", money.Must(50, money.EUR), 2, 0, createdAt))

	percent, err := b.Cancel(false, "changed plans", createdAt)
	require.NoError(t, err)
	assert.Equal(t, 100, percent)
	assert.Equal(t, booking.StatusCancelled, b.Status)
	assert.Equal(t, "changed plans", b.CancellationReason)
}

func TestCancelHonorsPolicyWindow(t *testing.T) {
	// Standard policy: full refund 48h or more before check-in, nothing inside.
	early := checkIn.Add(-72 * time.Hour)
	late := checkIn.Add(-12 * time.Hour)

	b := confirmedBooking(t)
	percent, err := b.Cancel(false, "", early)
	require.NoError(t, err)
	assert.Equal(t, 100, percent)

	b = confirmedBooking(t)
	percent, err = b.Cancel(false, "", late)
	require.NoError(t, err)
	assert.Equal(t, 0, percent)
}

func TestStaffCancelOverridesPolicy(t *testing.T) {
	b := confirmedBooking(t)
	percent, err := b.Cancel(true, "overbooked", checkIn.Add(-1*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 100, percent)
}

func TestCancelIsTerminal(t *testing.T) {
	b := confirmedBooking(t)
	_, err := b.Cancel(false, "", createdAt)
	require.NoError(t, err)

	_, err = b.Cancel(false, "", createdAt)
	require.ErrorIs(t, err, booking.ErrInvalidState)
	require.ErrorIs(t, b.CheckIn(checkIn), booking.ErrInvalidState)
}

func TestCheckInBeforeStartDateRejected(t *testing.T) {
	b := confirmedBooking(t)
	err := b.CheckIn(checkIn.Add(-24 * time.Hour))
	require.ErrorIs(t, err, booking.ErrBeforeStartDate)
}

func TestFullStayLifecycle(t *testing.T) {
	b := confirmedBooking(t)

	require.NoError(t, b.CheckIn(checkIn))
	assert.Equal(t, booking.StatusCheckedIn, b.Status)
	assert.False(t, b.CheckInTime.IsZero())

	require.NoError(t, b.CheckOut(checkOut))
	assert.Equal(t, booking.StatusCheckedOut, b.Status)
	assert.False(t, b.CheckOutTime.IsZero())

	require.ErrorIs(t, b.CheckOut(checkOut), booking.ErrInvalidState)
}

func TestPartialCheckIn(t *testing.T) {
	b := confirmedBooking(t)

	require.NoError(t, b.CheckInRoom("room-1", checkIn))
	assert.Equal(t, booking.StatusPartiallyCheckedIn, b.Status)

	require.NoError(t, b.CheckInRoom("room-2", checkIn))
	assert.Equal(t, booking.StatusCheckedIn, b.Status)

	require.NoError(t, b.CheckOutRoom("room-1", checkOut))
	assert.Equal(t, booking.StatusPartiallyCheckedIn, b.Status)

	require.NoError(t, b.CheckOutRoom("room-2", checkOut))
	assert.Equal(t, booking.StatusCheckedOut, b.Status)
}

func TestCheckInRoomUnknownRoom(t *testing.T) {
	b := confirmedBooking(t)
	require.ErrorIs(t, b.CheckInRoom("room-9", checkIn), booking.ErrRoomNotInBooking)
}

func TestMarkNoShow(t *testing.T) {
	b := confirmedBooking(t)

	// The start date itself is not late enough.
	require.ErrorIs(t, b.MarkNoShow(checkIn), booking.ErrNoShowTooEarly)

	require.NoError(t, b.MarkNoShow(checkIn.AddDate(0, 0, 1)))
	assert.Equal(t, booking.StatusNoShow, b.Status)

	require.ErrorIs(t, b.MarkNoShow(checkIn.AddDate(0, 0, 2)), booking.ErrInvalidState)
}

func TestMarkNoShowRequiresConfirmed(t *testing.T) {
	b := newBooking(t)
	require.ErrorIs(t, b.MarkNoShow(checkIn.AddDate(0, 0, 1)), booking.ErrInvalidState)
}

func TestBlockingStatuses(t *testing.T) {
	blocking := []booking.Status{
		booking.StatusPending,
		booking.StatusConfirmed,
		booking.StatusPartiallyCheckedIn,
		booking.StatusCheckedIn,
		booking.StatusCheckedOut,
	}
	for _, s := range blocking {
		assert.True(t, s.Blocking(), string(s))
	}
	assert.False(t, booking.StatusCancelled.Blocking())
	assert.False(t, booking.StatusNoShow.Blocking())
}

func TestCancellationPolicies(t *testing.T) {
	_, err := booking.NewCancellationPolicy(-1, 0, "")
	require.ErrorIs(t, err, booking.ErrInvalidPolicy)
	_, err = booking.NewCancellationPolicy(24, 101, "")
	require.ErrorIs(t, err, booking.ErrInvalidPolicy)

	flexible := booking.FlexiblePolicy()
	assert.Equal(t, 100, flexible.RefundPercentFor(checkIn, checkIn.Add(-25*time.Hour)))
	assert.Equal(t, 50, flexible.RefundPercentFor(checkIn, checkIn.Add(-23*time.Hour)))

	strict := booking.StrictPolicy()
	assert.Equal(t, 0, strict.RefundPercentFor(checkIn, checkIn.Add(-71*time.Hour)))
	assert.Equal(t, 100, strict.RefundPercentFor(checkIn, checkIn.Add(-72*time.Hour)))
}
