package memory

import (
	"context"
	"errors"
	"sync"

	"hotelops/internal/app/uow"
	domainbooking "hotelops/internal/domain/booking"
	domaincustomer "hotelops/internal/domain/customer"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainpayment "hotelops/internal/domain/payment"
	domainroom "hotelops/internal/domain/room"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
//
// With Serialize set, Begin blocks until the previous unit finishes, making
// each transaction exclusive. This is what turns the availability
// check-then-save into an atomic step; without it two concurrent creations
// can both pass the check and double-book a room.
type Factory struct {
	RoomsRepo        domainroom.Repository
	BookingRepo      domainbooking.Repository
	PaymentRepo      domainpayment.Repository
	HousekeepingRepo domainhousekeeping.Repository
	CustomerRepo     domaincustomer.Repository
	Serialize        bool

	mu sync.Mutex
}

// Begin starts a lightweight transaction boundary. No isolation beyond the
// optional serialization is provided but the abstraction matches the
// application ports.
func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.RoomsRepo == nil || f.BookingRepo == nil || f.PaymentRepo == nil || f.HousekeepingRepo == nil || f.CustomerRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	unit := &Unit{
		rooms:        f.RoomsRepo,
		bookings:     f.BookingRepo,
		payments:     f.PaymentRepo,
		housekeeping: f.HousekeepingRepo,
		customers:    f.CustomerRepo,
	}
	if f.Serialize && !opts.ReadOnly {
		f.mu.Lock()
		unit.release = f.mu.Unlock
	}
	return unit, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	rooms        domainroom.Repository
	bookings     domainbooking.Repository
	payments     domainpayment.Repository
	housekeeping domainhousekeeping.Repository
	customers    domaincustomer.Repository

	releaseOnce sync.Once
	release     func()
}

func (u *Unit) Rooms() domainroom.Repository                { return u.rooms }
func (u *Unit) Bookings() domainbooking.Repository          { return u.bookings }
func (u *Unit) Payments() domainpayment.Repository          { return u.payments }
func (u *Unit) Housekeeping() domainhousekeeping.Repository { return u.housekeeping }
func (u *Unit) Customers() domaincustomer.Repository        { return u.customers }

func (u *Unit) Commit(ctx context.Context) error {
	u.unlock()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.unlock()
	return nil
}

func (u *Unit) unlock() {
	if u.release != nil {
		u.releaseOnce.Do(u.release)
	}
}
