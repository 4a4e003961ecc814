package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelops/internal/app/uow"
	domainbooking "hotelops/internal/domain/booking"
	domaincustomer "hotelops/internal/domain/customer"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainpayment "hotelops/internal/domain/payment"
	domainroom "hotelops/internal/domain/room"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	RoomsRepo        domainroom.Repository
	BookingRepo      domainbooking.Repository
	PaymentRepo      domainpayment.Repository
	HousekeepingRepo domainhousekeeping.Repository
	CustomerRepo     domaincustomer.Repository
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:           f.DB,
		session:      session,
		rooms:        f.RoomsRepo,
		bookings:     f.BookingRepo,
		payments:     f.PaymentRepo,
		housekeeping: f.HousekeepingRepo,
		customers:    f.CustomerRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	rooms        domainroom.Repository
	bookings     domainbooking.Repository
	payments     domainpayment.Repository
	housekeeping domainhousekeeping.Repository
	customers    domaincustomer.Repository
}

func (u *Unit) Rooms() domainroom.Repository {
	return u.rooms
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Payments() domainpayment.Repository {
	return u.payments
}

func (u *Unit) Housekeeping() domainhousekeeping.Repository {
	return u.housekeeping
}

func (u *Unit) Customers() domaincustomer.Repository {
	return u.customers
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for
// downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.UoWFactory = Factory{}
