package booking_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingapp "hotelops/internal/app/handlers/booking"
	domainbooking "hotelops/internal/domain/booking"
	domainroom "hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/money"
	"hotelops/internal/infra/storage/memory"
)

type fixture struct {
	factory  *memory.Factory
	rooms    *memory.RoomRepository
	bookings *memory.BookingRepository
	payments *memory.PaymentRepository
	box      *memory.Outbox
	checkIn  time.Time
	checkOut time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rooms:    memory.NewRoomRepository(),
		bookings: memory.NewBookingRepository(),
		payments: memory.NewPaymentRepository(),
		box:      memory.NewOutbox(),
		checkIn:  time.Now().UTC().AddDate(0, 0, 30),
	}
	f.checkOut = f.checkIn.AddDate(0, 0, 3)
	f.factory = &memory.Factory{
		RoomsRepo:        f.rooms,
		BookingRepo:      f.bookings,
		PaymentRepo:      f.payments,
		HousekeepingRepo: memory.NewTaskRepository(),
		CustomerRepo:     memory.NewCustomerRepository(),
	}
	f.addRoom(t, "room-1", "101", 2)
	f.addRoom(t, "room-2", "102", 3)
	return f
}

func (f *fixture) addRoom(t *testing.T, id, number string, capacity int) {
	t.Helper()
	rm, err := domainroom.New(domainroom.RoomID(id), number, domainroom.RoomType{
		Name:        "Standard Double",
		NightlyRate: money.Must(50, money.EUR),
		Capacity:    capacity,
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.rooms.Save(context.Background(), rm))
}

func (f *fixture) createHandler() *bookingapp.CreateBookingHandler {
	return &bookingapp.CreateBookingHandler{UoWFactory: f.factory, Outbox: f.box}
}

func (f *fixture) createCommand(id string, rooms ...bookingapp.RoomSelection) bookingapp.CreateBookingCommand {
	return bookingapp.CreateBookingCommand{
		CommandID:  id,
		CustomerID: "cust-1",
		CheckIn:    f.checkIn,
		CheckOut:   f.checkOut,
		Rooms:      rooms,
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	result, err := handler.Handle(context.Background(), f.createCommand("bkg-1",
		bookingapp.RoomSelection{RoomID: "room-1", Adults: 2},
		bookingapp.RoomSelection{RoomID: "room-2", Adults: 2, Children: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, "bkg-1", result.BookingID)
	// Two rooms at 50/night over 3 nights.
	assert.Equal(t, "EUR 300.00", result.TotalAmount)
	assert.Equal(t, "EUR 300.00", result.FinalAmount)

	saved, err := f.bookings.ByID(context.Background(), "bkg-1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusPending, saved.Status)
	assert.Len(t, saved.Items, 2)

	require.NoError(t, f.box.Flush(context.Background()))
	records, err := f.box.Drain(context.Background(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "booking.created", records[0].Name)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	_, err := handler.Handle(context.Background(), f.createCommand("bkg-1",
		bookingapp.RoomSelection{RoomID: "room-1", Adults: 2}))
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), f.createCommand("bkg-2",
		bookingapp.RoomSelection{RoomID: "room-1", Adults: 1}))
	require.ErrorIs(t, err, bookingapp.ErrRoomUnavailable)

	// The other room is still free for the same dates.
	_, err = handler.Handle(context.Background(), f.createCommand("bkg-3",
		bookingapp.RoomSelection{RoomID: "room-2", Adults: 1}))
	require.NoError(t, err)
}

func TestCreateBookingAllowsBackToBackStays(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	_, err := handler.Handle(context.Background(), f.createCommand("bkg-1",
		bookingapp.RoomSelection{RoomID: "room-1", Adults: 2}))
	require.NoError(t, err)

	// Check-in on the previous stay's check-out day.
	next := f.createCommand("bkg-2", bookingapp.RoomSelection{RoomID: "room-1", Adults: 2})
	next.CheckIn = f.checkOut
	next.CheckOut = f.checkOut.AddDate(0, 0, 2)
	_, err = handler.Handle(context.Background(), next)
	require.NoError(t, err)
}

func TestCreateBookingCancelledStayFreesRoom(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	_, err := handler.Handle(context.Background(), f.createCommand("bkg-1",
		bookingapp.RoomSelection{RoomID: "room-1", Adults: 2}))
	require.NoError(t, err)

	cancel := &bookingapp.CancelBookingHandler{UoWFactory: f.factory, Outbox: f.box}
	cancelled, err := cancel.Handle(context.Background(), bookingapp.CancelBookingCommand{BookingID: "bkg-1"})
	require.NoError(t, err)
	assert.Equal(t, 100, cancelled.RefundPercent)

	_, err = handler.Handle(context.Background(), f.createCommand("bkg-2",
		bookingapp.RoomSelection{RoomID: "room-1", Adults: 2}))
	require.NoError(t, err)
}

func TestConcurrentCreateBookingSerialized(t *testing.T) {
	f := newFixture(t)
	f.factory.Serialize = true
	handler := f.createHandler()

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd := f.createCommand(fmt.Sprintf("bkg-%d", i),
				bookingapp.RoomSelection{RoomID: "room-1", Adults: 2})
			_, errs[i] = handler.Handle(context.Background(), cmd)
		}()
	}
	wg.Wait()

	// Serialized units make the availability check-then-save atomic: exactly
	// one attempt wins the room, the rest see it taken.
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, bookingapp.ErrRoomUnavailable)
	}
	assert.Equal(t, 1, succeeded)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	handler := f.createHandler()

	_, err := handler.Handle(context.Background(), f.createCommand("bkg-1",
		bookingapp.RoomSelection{RoomID: "room-1", Adults: 2, Children: 1}))
	require.ErrorIs(t, err, bookingapp.ErrOverCapacity)

	_, err = handler.Handle(context.Background(), f.createCommand("bkg-2",
		bookingapp.RoomSelection{RoomID: "room-9", Adults: 1}))
	require.ErrorIs(t, err, domainroom.ErrNotFound)

	_, err = handler.Handle(context.Background(), f.createCommand("bkg-3"))
	require.ErrorIs(t, err, domainbooking.ErrNoRooms)

	bad := f.createCommand("bkg-4", bookingapp.RoomSelection{RoomID: "room-1", Adults: 1})
	bad.Policy = "GENEROUS"
	_, err = handler.Handle(context.Background(), bad)
	require.ErrorIs(t, err, bookingapp.ErrUnknownPolicy)

	past := f.createCommand("bkg-5", bookingapp.RoomSelection{RoomID: "room-1", Adults: 1})
	past.CheckIn = time.Now().UTC().AddDate(0, 0, -2)
	past.CheckOut = time.Now().UTC().AddDate(0, 0, 1)
	_, err = handler.Handle(context.Background(), past)
	require.Error(t, err)
}
