package housekeeping_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	housekeepingapp "hotelops/internal/app/handlers/housekeeping"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainroom "hotelops/internal/domain/room"
	"hotelops/internal/domain/shared/money"
	"hotelops/internal/infra/storage/memory"
)

type fixture struct {
	handler *housekeepingapp.TaskHandler
	rooms   *memory.RoomRepository
	tasks   *memory.TaskRepository
	box     *memory.Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rooms: memory.NewRoomRepository(),
		tasks: memory.NewTaskRepository(),
		box:   memory.NewOutbox(),
	}
	factory := &memory.Factory{
		RoomsRepo:        f.rooms,
		BookingRepo:      memory.NewBookingRepository(),
		PaymentRepo:      memory.NewPaymentRepository(),
		HousekeepingRepo: f.tasks,
		CustomerRepo:     memory.NewCustomerRepository(),
	}
	f.handler = &housekeepingapp.TaskHandler{UoWFactory: factory, Outbox: f.box}

	rm, err := domainroom.New("room-1", "101", domainroom.RoomType{
		Name:        "Standard Double",
		NightlyRate: money.Must(50, money.EUR),
		Capacity:    2,
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, rm.Occupy(time.Now().UTC()))
	require.NoError(t, rm.Vacate(time.Now().UTC()))
	require.NoError(t, f.rooms.Save(context.Background(), rm))
	return f
}

func (f *fixture) createTask(t *testing.T) *housekeepingapp.TaskResult {
	t.Helper()
	result, err := f.handler.HandleCreate(context.Background(), housekeepingapp.CreateTaskCommand{
		CommandID: "task-1",
		RoomID:    "room-1",
		Kind:      "CHECKOUT",
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) room(t *testing.T) *domainroom.Room {
	t.Helper()
	rm, err := f.rooms.ByID(context.Background(), "room-1")
	require.NoError(t, err)
	return rm
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t)

	result := f.createTask(t)
	assert.Equal(t, "task-1", result.TaskID)
	assert.Equal(t, "room-1", result.RoomID)
	assert.Equal(t, "PENDING", result.Status)
	assert.Equal(t, "NORMAL", result.Priority)

	require.NoError(t, f.box.Flush(context.Background()))
	records, err := f.box.Drain(context.Background(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, "housekeeping.task_created", records[0].Name)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.HandleCreate(context.Background(), housekeepingapp.CreateTaskCommand{
		CommandID: "task-x", RoomID: "room-9",
	})
	require.ErrorIs(t, err, domainroom.ErrNotFound)

	_, err = f.handler.HandleCreate(context.Background(), housekeepingapp.CreateTaskCommand{
		CommandID: "task-y", RoomID: "room-1", Kind: "SHALLOW",
	})
	require.ErrorIs(t, err, domainhousekeeping.ErrUnknownKind)

	_, err = f.handler.HandleCreate(context.Background(), housekeepingapp.CreateTaskCommand{
		CommandID: "task-z", RoomID: "room-1", Priority: "WHENEVER",
	})
	require.ErrorIs(t, err, domainhousekeeping.ErrUnknownPriority)
}

func TestCompleteTaskReturnsRoomToService(t *testing.T) {
	f := newFixture(t)
	f.createTask(t)

	_, err := f.handler.HandleStart(context.Background(), housekeepingapp.StartTaskCommand{
		TaskID: "task-1", AssignedTo: "maria",
	})
	require.NoError(t, err)

	result, err := f.handler.HandleComplete(context.Background(), housekeepingapp.CompleteTaskCommand{
		TaskID: "task-1", Notes: "all clean",
	})
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)

	rm := f.room(t)
	assert.Equal(t, domainroom.StatusAvailable, rm.Status)
	assert.Equal(t, domainroom.ConditionGood, rm.Condition)
}

func TestReportDamageFlagsRoom(t *testing.T) {
	f := newFixture(t)
	f.createTask(t)

	cost := 80.0
	result, err := f.handler.HandleReportDamage(context.Background(), housekeepingapp.ReportDamageCommand{
		TaskID:        "task-1",
		Description:   "broken lamp",
		ReportedBy:    "maria",
		EstimatedCost: &cost,
		Currency:      "EUR",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.ReportID)
	assert.Equal(t, "URGENT", result.Priority)

	assert.Equal(t, domainroom.ConditionNeedsRepair, f.room(t).Condition)

	// The damaged room stays flagged even after the cleaning is done.
	_, err = f.handler.HandleStart(context.Background(), housekeepingapp.StartTaskCommand{TaskID: "task-1", AssignedTo: "maria"})
	require.NoError(t, err)
	_, err = f.handler.HandleComplete(context.Background(), housekeepingapp.CompleteTaskCommand{TaskID: "task-1"})
	require.NoError(t, err)

	rm := f.room(t)
	assert.Equal(t, domainroom.StatusAvailable, rm.Status)
	assert.Equal(t, domainroom.ConditionNeedsRepair, rm.Condition)
}

func TestCancelTask(t *testing.T) {
	f := newFixture(t)
	f.createTask(t)

	result, err := f.handler.HandleCancel(context.Background(), housekeepingapp.CancelTaskCommand{
		TaskID: "task-1", Reason: "room out of service",
	})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", result.Status)

	_, err = f.handler.HandleStart(context.Background(), housekeepingapp.StartTaskCommand{
		TaskID: "task-1", AssignedTo: "maria",
	})
	require.ErrorIs(t, err, domainhousekeeping.ErrNotStartable)

	_, err = f.handler.HandleCancel(context.Background(), housekeepingapp.CancelTaskCommand{
		TaskID: "task-9", Reason: "missing",
	})
	require.ErrorIs(t, err, domainhousekeeping.ErrNotFound)
}
