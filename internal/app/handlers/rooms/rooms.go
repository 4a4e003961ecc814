package rooms

import (
	"context"
	"time"

	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	domainroom "hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/events"
	"hotelops/internal/domain/shared/money"
)

const (
	createRoomKey       = "room.create"
	startMaintenanceKey = "room.start_maintenance"
	endMaintenanceKey   = "room.end_maintenance"
	attachPhotoKey      = "room.attach_photo"
)

type CreateRoomCommand struct {
	CommandID   string
	Number      string
	TypeName    string
	NightlyRate float64
	Currency    string
	Capacity    int
}

func (c CreateRoomCommand) Key() string { return createRoomKey }

type StartMaintenanceCommand struct {
	RoomID string
}

func (c StartMaintenanceCommand) Key() string { return startMaintenanceKey }

type EndMaintenanceCommand struct {
	RoomID string
}

func (c EndMaintenanceCommand) Key() string { return endMaintenanceKey }

type AttachPhotoCommand struct {
	RoomID   string
	PhotoKey string
}

func (c AttachPhotoCommand) Key() string { return attachPhotoKey }

type RoomResult struct {
	RoomID string `json:"room_id"`
	Number string `json:"number"`
	Status string `json:"status"`
}

type RoomHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *RoomHandler) HandleCreate(ctx context.Context, cmd CreateRoomCommand) (*RoomResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	currency, err := money.ParseCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}
	rate, err := money.NewFromFloat(cmd.NightlyRate, currency)
	if err != nil {
		return nil, err
	}
	rm, err := domainroom.New(domainroom.RoomID(cmd.CommandID), cmd.Number, domainroom.RoomType{
		Name:        cmd.TypeName,
		NightlyRate: rate,
		Capacity:    cmd.Capacity,
	}, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		return nil, err
	}
	if err := h.drain(ctx, &rm.EventRecorder); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return roomResult(rm), nil
}

func (h *RoomHandler) HandleStartMaintenance(ctx context.Context, cmd StartMaintenanceCommand) (*RoomResult, error) {
	return h.mutate(ctx, domainroom.RoomID(cmd.RoomID), func(rm *domainroom.Room, now time.Time) error {
		rm.StartMaintenance(now)
		return nil
	})
}

func (h *RoomHandler) HandleEndMaintenance(ctx context.Context, cmd EndMaintenanceCommand) (*RoomResult, error) {
	return h.mutate(ctx, domainroom.RoomID(cmd.RoomID), func(rm *domainroom.Room, now time.Time) error {
		rm.EndMaintenance(now)
		return nil
	})
}

func (h *RoomHandler) HandleAttachPhoto(ctx context.Context, cmd AttachPhotoCommand) (*RoomResult, error) {
	return h.mutate(ctx, domainroom.RoomID(cmd.RoomID), func(rm *domainroom.Room, now time.Time) error {
		rm.AttachPhoto(cmd.PhotoKey, now)
		return nil
	})
}

func (h *RoomHandler) mutate(ctx context.Context, id domainroom.RoomID, apply func(rm *domainroom.Room, now time.Time) error) (*RoomResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	rm, err := unit.Rooms().ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(rm, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		return nil, err
	}
	if err := h.drain(ctx, &rm.EventRecorder); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return roomResult(rm), nil
}

func (h *RoomHandler) drain(ctx context.Context, recorder *events.EventRecorder) error {
	pending := recorder.PendingEvents()
	recorder.ClearEvents()
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, h.Outbox, encoder, pending)
}

func roomResult(rm *domainroom.Room) *RoomResult {
	return &RoomResult{RoomID: string(rm.ID), Number: rm.Number, Status: string(rm.Status)}
}
