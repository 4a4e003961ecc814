package views

import (
	"context"
	"sort"
	"time"

	"hotelops/internal/app/dto"
	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/uow"
	domainbooking "hotelops/internal/domain/booking"
	domaincustomer "hotelops/internal/domain/customer"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainroom "hotelops/internal/domain/room"
	domainrange "hotelops/internal/domain/shared/daterange"
)

const (
	getBookingKey           = "views.get_booking"
	listCustomerBookingsKey = "views.list_customer_bookings"
	listAvailableRoomsKey   = "views.list_available_rooms"
	getPaymentByBookingKey  = "views.get_payment_by_booking"
	listCleaningTasksKey    = "views.list_cleaning_tasks"
)

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type ListCustomerBookingsQuery struct {
	CustomerID string
}

func (q ListCustomerBookingsQuery) Key() string { return listCustomerBookingsKey }

type ListAvailableRoomsQuery struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func (q ListAvailableRoomsQuery) Key() string { return listAvailableRoomsKey }

type GetPaymentByBookingQuery struct {
	BookingID string
}

func (q GetPaymentByBookingQuery) Key() string { return getPaymentByBookingKey }

type ListCleaningTasksQuery struct {
	RoomID   string
	OpenOnly bool
}

func (q ListCleaningTasksQuery) Key() string { return listCleaningTasksKey }

// QueryHandler answers the read side from the repositories, inside a
// read-only unit of work.
type QueryHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *QueryHandler) HandleGetBooking(ctx context.Context, q GetBookingQuery) (*dto.BookingSummary, error) {
	unit, ctx, err := support.BeginReadOnly(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	summary := dto.MapBookingSummary(b)
	return &summary, nil
}

func (h *QueryHandler) HandleListCustomerBookings(ctx context.Context, q ListCustomerBookingsQuery) (*dto.BookingCollection, error) {
	unit, ctx, err := support.BeginReadOnly(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	bookings, err := unit.Bookings().ListByCustomer(ctx, domaincustomer.CustomerID(q.CustomerID))
	if err != nil {
		return nil, err
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	out := &dto.BookingCollection{Items: make([]dto.BookingSummary, 0, len(bookings))}
	for _, b := range bookings {
		out.Items = append(out.Items, dto.MapBookingSummary(b))
	}
	return out, nil
}

// HandleListAvailableRooms lists rooms with no overlapping blocking booking
// for the requested dates. Rooms under maintenance are excluded.
func (h *QueryHandler) HandleListAvailableRooms(ctx context.Context, q ListAvailableRoomsQuery) (*dto.RoomCollection, error) {
	unit, ctx, err := support.BeginReadOnly(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	dr, err := domainrange.New(q.CheckIn, q.CheckOut, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	rooms, err := unit.Rooms().List(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.RoomCollection{Items: make([]dto.RoomSummary, 0, len(rooms))}
	for _, rm := range rooms {
		if rm.Status == domainroom.StatusMaintenance {
			continue
		}
		free, err := unit.Bookings().IsRoomAvailable(ctx, rm.ID, dr, "")
		if err != nil {
			return nil, err
		}
		if free {
			out.Items = append(out.Items, dto.MapRoomSummary(rm))
		}
	}
	return out, nil
}

func (h *QueryHandler) HandleGetPaymentByBooking(ctx context.Context, q GetPaymentByBookingQuery) (*dto.PaymentSummary, error) {
	unit, ctx, err := support.BeginReadOnly(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	p, err := unit.Payments().ByBooking(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	summary, err := dto.MapPaymentSummary(p)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// HandleListCleaningTasks returns cleaning tasks ordered by priority, most
// urgent first, then oldest first.
func (h *QueryHandler) HandleListCleaningTasks(ctx context.Context, q ListCleaningTasksQuery) (*dto.CleaningTaskCollection, error) {
	unit, ctx, err := support.BeginReadOnly(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	var tasks []*domainhousekeeping.Task
	if q.RoomID != "" {
		tasks, err = unit.Housekeeping().ListByRoom(ctx, domainroom.RoomID(q.RoomID))
	} else {
		tasks, err = unit.Housekeeping().ListOpen(ctx)
	}
	if err != nil {
		return nil, err
	}
	filtered := tasks[:0:0]
	for _, task := range tasks {
		if q.OpenOnly && task.Status.IsTerminal() {
			continue
		}
		filtered = append(filtered, task)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Priority.Rank() != filtered[j].Priority.Rank() {
			return filtered[i].Priority.Rank() > filtered[j].Priority.Rank()
		}
		return filtered[i].CreatedAt.Before(filtered[j].CreatedAt)
	})
	out := &dto.CleaningTaskCollection{Items: make([]dto.CleaningTaskSummary, 0, len(filtered))}
	for _, task := range filtered {
		out.Items = append(out.Items, dto.MapCleaningTaskSummary(task))
	}
	return out, nil
}
