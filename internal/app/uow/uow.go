package uow

import (
	"context"

	domainbooking "hotelops/internal/domain/booking"
	domaincustomer "hotelops/internal/domain/customer"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainpayment "hotelops/internal/domain/payment"
	domainroom "hotelops/internal/domain/room"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Rooms() domainroom.Repository
	Bookings() domainbooking.Repository
	Payments() domainpayment.Repository
	Housekeeping() domainhousekeeping.Repository
	Customers() domaincustomer.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
