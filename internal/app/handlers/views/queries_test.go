package views_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/app/handlers/views"
	domainbooking "hotelops/internal/domain/booking"
	domaincustomer "hotelops/internal/domain/customer"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainroom "hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/daterange"
	"hotelops/internal/domain/shared/money"
	"hotelops/internal/infra/storage/memory"
)

type fixture struct {
	handler  *views.QueryHandler
	rooms    *memory.RoomRepository
	bookings *memory.BookingRepository
	tasks    *memory.TaskRepository
	checkIn  time.Time
	checkOut time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rooms:    memory.NewRoomRepository(),
		bookings: memory.NewBookingRepository(),
		tasks:    memory.NewTaskRepository(),
		checkIn:  time.Now().UTC().AddDate(0, 0, 30),
	}
	f.checkOut = f.checkIn.AddDate(0, 0, 3)
	factory := &memory.Factory{
		RoomsRepo:        f.rooms,
		BookingRepo:      f.bookings,
		PaymentRepo:      memory.NewPaymentRepository(),
		HousekeepingRepo: f.tasks,
		CustomerRepo:     memory.NewCustomerRepository(),
	}
	f.handler = &views.QueryHandler{UoWFactory: factory}

	f.addRoom(t, "room-1", "101")
	f.addRoom(t, "room-2", "102")
	return f
}

func (f *fixture) addRoom(t *testing.T, id, number string) {
	t.Helper()
	rm, err := domainroom.New(domainroom.RoomID(id), number, domainroom.RoomType{
		Name:        "Standard Double",
		NightlyRate: money.Must(50, money.EUR),
		Capacity:    2,
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.rooms.Save(context.Background(), rm))
}

func (f *fixture) addBooking(t *testing.T, id, customerID, roomID string) *domainbooking.Booking {
	t.Helper()
	now := time.Now().UTC()
	dr, err := daterange.New(f.checkIn, f.checkOut, now)
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		CustomerID: domaincustomer.CustomerID(customerID),
		Range:      dr,
		Currency:   money.EUR,
		CreatedAt:  now,
	})
	require.NoError(t, err)
	require.NoError(t, b.AddRoom(domainroom.RoomID(roomID), money.Must(50, money.EUR), 2, 0, now))
	require.NoError(t, f.bookings.Save(context.Background(), b))
	return b
}

func TestGetBooking(t *testing.T) {
	f := newFixture(t)
	f.addBooking(t, "bkg-1", "cust-1", "room-1")

	summary, err := f.handler.HandleGetBooking(context.Background(), views.GetBookingQuery{BookingID: "bkg-1"})
	require.NoError(t, err)
	assert.Equal(t, "bkg-1", summary.ID)
	assert.Equal(t, "PENDING", summary.Status)
	assert.Equal(t, 3, summary.Nights)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, "150.00", summary.FinalAmount.Amount)
	assert.Equal(t, "EUR", summary.FinalAmount.Currency)

	_, err = f.handler.HandleGetBooking(context.Background(), views.GetBookingQuery{BookingID: "missing"})
	require.ErrorIs(t, err, domainbooking.ErrNotFound)
}

func TestListCustomerBookings(t *testing.T) {
	f := newFixture(t)
	f.addBooking(t, "bkg-1", "cust-1", "room-1")
	f.addBooking(t, "bkg-2", "cust-1", "room-2")
	f.addBooking(t, "bkg-3", "cust-2", "room-1")

	out, err := f.handler.HandleListCustomerBookings(context.Background(), views.ListCustomerBookingsQuery{CustomerID: "cust-1"})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	for _, item := range out.Items {
		assert.Equal(t, "cust-1", item.CustomerID)
	}

	empty, err := f.handler.HandleListCustomerBookings(context.Background(), views.ListCustomerBookingsQuery{CustomerID: "cust-9"})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestListAvailableRooms(t *testing.T) {
	f := newFixture(t)
	f.addBooking(t, "bkg-1", "cust-1", "room-1")

	out, err := f.handler.HandleListAvailableRooms(context.Background(), views.ListAvailableRoomsQuery{
		CheckIn:  f.checkIn,
		CheckOut: f.checkOut,
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "room-2", out.Items[0].ID)

	// Both rooms are free outside the booked dates.
	later, err := f.handler.HandleListAvailableRooms(context.Background(), views.ListAvailableRoomsQuery{
		CheckIn:  f.checkOut,
		CheckOut: f.checkOut.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	assert.Len(t, later.Items, 2)
}

func TestListAvailableRoomsExcludesMaintenance(t *testing.T) {
	f := newFixture(t)

	rm, err := f.rooms.ByID(context.Background(), "room-2")
	require.NoError(t, err)
	rm.StartMaintenance(time.Now().UTC())
	require.NoError(t, f.rooms.Save(context.Background(), rm))

	out, err := f.handler.HandleListAvailableRooms(context.Background(), views.ListAvailableRoomsQuery{
		CheckIn:  f.checkIn,
		CheckOut: f.checkOut,
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "room-1", out.Items[0].ID)
}

func TestListCleaningTasksOrdering(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	addTask := func(id string, priority domainhousekeeping.Priority, createdAt time.Time) {
		task, err := domainhousekeeping.New(domainhousekeeping.CreateParams{
			ID:        domainhousekeeping.TaskID(id),
			RoomID:    "room-1",
			Kind:      domainhousekeeping.KindCheckout,
			Priority:  priority,
			CreatedAt: createdAt,
		})
		require.NoError(t, err)
		require.NoError(t, f.tasks.Save(context.Background(), task))
	}
	addTask("task-1", domainhousekeeping.PriorityNormal, now.Add(-2*time.Hour))
	addTask("task-2", domainhousekeeping.PriorityUrgent, now.Add(-time.Hour))
	addTask("task-3", domainhousekeeping.PriorityNormal, now.Add(-3*time.Hour))

	out, err := f.handler.HandleListCleaningTasks(context.Background(), views.ListCleaningTasksQuery{RoomID: "room-1"})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	// Urgent first, then oldest first.
	assert.Equal(t, "task-2", out.Items[0].ID)
	assert.Equal(t, "task-3", out.Items[1].ID)
	assert.Equal(t, "task-1", out.Items[2].ID)
}

func TestListCleaningTasksOpenOnly(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	task, err := domainhousekeeping.New(domainhousekeeping.CreateParams{
		ID:        "task-1",
		RoomID:    "room-1",
		Kind:      domainhousekeeping.KindCheckout,
		CreatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, task.Cancel("duplicate", now))
	require.NoError(t, f.tasks.Save(context.Background(), task))

	out, err := f.handler.HandleListCleaningTasks(context.Background(), views.ListCleaningTasksQuery{RoomID: "room-1", OpenOnly: true})
	require.NoError(t, err)
	assert.Empty(t, out.Items)

	all, err := f.handler.HandleListCleaningTasks(context.Background(), views.ListCleaningTasksQuery{RoomID: "room-1"})
	require.NoError(t, err)
	assert.Len(t, all.Items, 1)
}
