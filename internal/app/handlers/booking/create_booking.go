package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/middleware"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	domainbooking "hotelops/internal/domain/booking"
	domaincustomer "hotelops/internal/domain/customer"
	domainroom "hotelops/internal/domain/room"
	domainrange "hotelops/internal/domain/shared/daterange"
	"hotelops/internal/domain/shared/money"
)

const createBookingKey = "booking.create"

var (
	ErrRoomUnavailable = errors.New("booking: room is not available for the requested dates")
	ErrOverCapacity    = errors.New("booking: guest count exceeds room capacity")
	ErrUnknownPolicy   = errors.New("booking: unknown cancellation policy")
)

// RoomSelection is one requested room line with its guest split.
type RoomSelection struct {
	RoomID   string
	Adults   int
	Children int
}

type CreateBookingCommand struct {
	CommandID       string
	CustomerID      string
	CheckIn         time.Time
	CheckOut        time.Time
	Rooms           []RoomSelection
	Currency        string
	Policy          string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID   string `json:"booking_id"`
	TotalAmount string `json:"total_amount"`
	FinalAmount string `json:"final_amount"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	now := time.Now().UTC()
	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut, now)
	if err != nil {
		return nil, err
	}

	currency := money.EUR
	if cmd.Currency != "" {
		currency, err = money.ParseCurrency(cmd.Currency)
		if err != nil {
			return nil, err
		}
	}
	policy, err := resolvePolicy(cmd.Policy)
	if err != nil {
		return nil, err
	}

	booking, err := domainbooking.New(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(cmd.CommandID),
		CustomerID: domaincustomer.CustomerID(cmd.CustomerID),
		Range:      dr,
		Currency:   currency,
		Policy:     policy,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	for _, sel := range cmd.Rooms {
		rm, err := unit.Rooms().ByID(ctx, domainroom.RoomID(sel.RoomID))
		if err != nil {
			return nil, err
		}
		if rm.Type.Capacity > 0 && sel.Adults+sel.Children > rm.Type.Capacity {
			return nil, fmt.Errorf("%w: room %s holds %d", ErrOverCapacity, rm.Number, rm.Type.Capacity)
		}
		if err := booking.AddRoom(rm.ID, rm.Type.NightlyRate, sel.Adults, sel.Children, now); err != nil {
			return nil, err
		}
	}

	service := domainbooking.Service{Bookings: unit.Bookings()}
	if err := service.Validate(booking); err != nil {
		return nil, err
	}
	available, err := service.RoomAvailable(ctx, booking)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrRoomUnavailable
	}

	if err := unit.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, &booking.EventRecorder); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}

	return &CreateBookingResult{
		BookingID:   string(booking.ID),
		TotalAmount: booking.TotalAmount.String(),
		FinalAmount: booking.FinalAmount.String(),
	}, nil
}

func resolvePolicy(code string) (domainbooking.CancellationPolicy, error) {
	switch code {
	case "", "STANDARD":
		return domainbooking.StandardPolicy(), nil
	case "FLEXIBLE":
		return domainbooking.FlexiblePolicy(), nil
	case "STRICT":
		return domainbooking.StrictPolicy(), nil
	default:
		return domainbooking.CancellationPolicy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, code)
	}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
