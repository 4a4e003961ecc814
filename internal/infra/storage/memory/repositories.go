package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainbooking "hotelops/internal/domain/booking"
	domaincustomer "hotelops/internal/domain/customer"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainpayment "hotelops/internal/domain/payment"
	domainroom "hotelops/internal/domain/room"
	domainrange "hotelops/internal/domain/shared/daterange"
)

// RoomRepository is an in-memory implementation for dev and tests.
type RoomRepository struct {
	mu    sync.RWMutex
	items map[domainroom.RoomID]*domainroom.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{items: make(map[domainroom.RoomID]*domainroom.Room)}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainroom.RoomID) (*domainroom.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.items[id]
	if !ok {
		return nil, domainroom.ErrNotFound
	}
	return room, nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainroom.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room.Version++
	r.items[room.ID] = room
	return nil
}

func (r *RoomRepository) List(ctx context.Context) ([]*domainroom.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainroom.Room, 0, len(r.items))
	for _, room := range r.items {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// BookingRepository stores bookings in memory and answers the overlap query
// against the full set of blocking bookings.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return booking, nil
}

func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.Version++
	r.items[booking.ID] = booking
	return nil
}

func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID domaincustomer.CustomerID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.CustomerID == customerID {
			matches = append(matches, booking)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *BookingRepository) IsRoomAvailable(ctx context.Context, roomID domainroom.RoomID, dr domainrange.DateRange, exclude domainbooking.BookingID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, booking := range r.items {
		if booking.ID == exclude {
			continue
		}
		if !booking.Status.Blocking() {
			continue
		}
		if !booking.Range.Overlaps(dr) {
			continue
		}
		for _, item := range booking.Items {
			if item.RoomID == roomID {
				return false, nil
			}
		}
	}
	return true, nil
}

// PaymentRepository stores payments in memory.
type PaymentRepository struct {
	mu    sync.RWMutex
	items map[domainpayment.PaymentID]*domainpayment.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{items: make(map[domainpayment.PaymentID]*domainpayment.Payment)}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.PaymentID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.items[id]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return payment, nil
}

// ByBooking returns the live payment for a booking; a failed payment is only
// returned when no later attempt replaced it.
func (r *PaymentRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainpayment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var failed *domainpayment.Payment
	for _, payment := range r.items {
		if payment.BookingID != bookingID {
			continue
		}
		if payment.Status != domainpayment.StatusFailed {
			return payment, nil
		}
		failed = payment
	}
	if failed != nil {
		return failed, nil
	}
	return nil, domainpayment.ErrNotFound
}

func (r *PaymentRepository) Save(ctx context.Context, payment *domainpayment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.Version++
	r.items[payment.ID] = payment
	return nil
}

// TaskRepository stores cleaning tasks in memory.
type TaskRepository struct {
	mu    sync.RWMutex
	items map[domainhousekeeping.TaskID]*domainhousekeeping.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{items: make(map[domainhousekeeping.TaskID]*domainhousekeeping.Task)}
}

func (r *TaskRepository) ByID(ctx context.Context, id domainhousekeeping.TaskID) (*domainhousekeeping.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.items[id]
	if !ok {
		return nil, domainhousekeeping.ErrNotFound
	}
	return task, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *domainhousekeeping.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.Version++
	r.items[task.ID] = task
	return nil
}

func (r *TaskRepository) ListByRoom(ctx context.Context, roomID domainroom.RoomID) ([]*domainhousekeeping.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainhousekeeping.Task, 0)
	for _, task := range r.items {
		if task.RoomID == roomID {
			matches = append(matches, task)
		}
	}
	sortTasks(matches)
	return matches, nil
}

func (r *TaskRepository) ListOpen(ctx context.Context) ([]*domainhousekeeping.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainhousekeeping.Task, 0)
	for _, task := range r.items {
		if !task.Status.IsTerminal() {
			matches = append(matches, task)
		}
	}
	sortTasks(matches)
	return matches, nil
}

func sortTasks(tasks []*domainhousekeeping.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Priority.Rank() != tasks[j].Priority.Rank() {
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

// CustomerRepository stores customers in memory, indexed by id and email.
type CustomerRepository struct {
	mu      sync.RWMutex
	items   map[domaincustomer.CustomerID]*domaincustomer.Customer
	byEmail map[string]domaincustomer.CustomerID
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{
		items:   make(map[domaincustomer.CustomerID]*domaincustomer.Customer),
		byEmail: make(map[string]domaincustomer.CustomerID),
	}
}

func (r *CustomerRepository) ByID(ctx context.Context, id domaincustomer.CustomerID) (*domaincustomer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cust, ok := r.items[id]
	if !ok {
		return nil, domaincustomer.ErrNotFound
	}
	return cust, nil
}

func (r *CustomerRepository) ByEmail(ctx context.Context, email string) (*domaincustomer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domaincustomer.ErrNotFound
	}
	return r.items[id], nil
}

func (r *CustomerRepository) Save(ctx context.Context, cust *domaincustomer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byEmail[cust.Email]; ok && existing != cust.ID {
		return domaincustomer.ErrEmailTaken
	}
	cust.Version++
	r.items[cust.ID] = cust
	r.byEmail[cust.Email] = cust.ID
	return nil
}
