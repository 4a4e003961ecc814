package room

import (
	"context"
	"errors"
	"time"

	"hotelops/internal/domain/shared/events"
	"hotelops/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("room: not found")
	ErrNotAvailable  = errors.New("room: not available for occupancy")
	ErrNotOccupied   = errors.New("room: not occupied")
	ErrInvalidNumber = errors.New("room: number required")
	ErrInvalidRate   = errors.New("room: nightly rate must be positive")
	ErrInvalidType   = errors.New("room: type name required")
)

type RoomID string

// Status tracks physical occupancy, which trails the booking lifecycle: a
// checked-out room goes through Cleaning before becoming Available again.
type Status string

const (
	StatusAvailable   Status = "AVAILABLE"
	StatusOccupied    Status = "OCCUPIED"
	StatusCleaning    Status = "CLEANING"
	StatusMaintenance Status = "MAINTENANCE"
)

type Condition string

const (
	ConditionExcellent    Condition = "EXCELLENT"
	ConditionGood         Condition = "GOOD"
	ConditionNeedsRepair  Condition = "NEEDS_REPAIR"
	ConditionOutOfService Condition = "OUT_OF_SERVICE"
)

// RoomType carries the rate card used when a room is added to a booking.
type RoomType struct {
	Name        string
	NightlyRate money.Money
	Capacity    int
}

type Room struct {
	ID         RoomID
	Number     string
	Type       RoomType
	Status     Status
	Condition  Condition
	PhotoKeys  []string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	Save(ctx context.Context, room *Room) error
	List(ctx context.Context) ([]*Room, error)
}

func New(id RoomID, number string, roomType RoomType, now time.Time) (*Room, error) {
	if number == "" {
		return nil, ErrInvalidNumber
	}
	if roomType.Name == "" {
		return nil, ErrInvalidType
	}
	if !roomType.NightlyRate.IsPositive() {
		return nil, ErrInvalidRate
	}
	r := &Room{
		ID:        id,
		Number:    number,
		Type:      roomType,
		Status:    StatusAvailable,
		Condition: ConditionGood,
		CreatedAt: now.UTC(),
	}
	r.Record(RoomCreated{RoomID: r.ID, Number: r.Number, At: r.CreatedAt})
	return r, nil
}

// Occupy marks the room occupied when a guest checks in.
func (r *Room) Occupy(now time.Time) error {
	if r.Status != StatusAvailable {
		return ErrNotAvailable
	}
	r.Status = StatusOccupied
	r.ModifiedAt = now.UTC()
	r.Record(RoomOccupied{RoomID: r.ID, At: r.ModifiedAt})
	return nil
}

// Vacate moves an occupied room to Cleaning on guest check-out.
func (r *Room) Vacate(now time.Time) error {
	if r.Status != StatusOccupied {
		return ErrNotOccupied
	}
	r.Status = StatusCleaning
	r.ModifiedAt = now.UTC()
	r.Record(RoomVacated{RoomID: r.ID, At: r.ModifiedAt})
	return nil
}

// MarkCleaned returns a cleaned room to service. A no-op in any other status.
func (r *Room) MarkCleaned(now time.Time) {
	if r.Status == StatusCleaning {
		r.Status = StatusAvailable
		r.ModifiedAt = now.UTC()
	}
}

func (r *Room) StartMaintenance(now time.Time) {
	r.Status = StatusMaintenance
	r.ModifiedAt = now.UTC()
}

func (r *Room) EndMaintenance(now time.Time) {
	if r.Status == StatusMaintenance {
		r.Status = StatusAvailable
		r.ModifiedAt = now.UTC()
	}
}

func (r *Room) UpdateCondition(condition Condition, now time.Time) {
	if r.Condition != condition {
		r.Condition = condition
		r.ModifiedAt = now.UTC()
	}
}

// AttachPhoto records the storage key of an uploaded room photo.
func (r *Room) AttachPhoto(key string, now time.Time) {
	r.PhotoKeys = append(r.PhotoKeys, key)
	r.ModifiedAt = now.UTC()
}
