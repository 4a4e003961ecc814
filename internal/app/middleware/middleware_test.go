package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/middleware"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	"hotelops/internal/infra/storage/memory"
)

type echoCommand struct {
	ID   string
	Fail bool
}

func (echoCommand) Key() string { return "test.echo" }

func (c echoCommand) IdempotencyKey() string { return c.ID }

func (echoCommand) ResultPrototype() any { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
}

// countingHandler tracks how often the bus actually reached it.
type countingHandler struct {
	calls int
}

func (h *countingHandler) Handle(ctx context.Context, cmd echoCommand) (*echoResult, error) {
	h.calls++
	if cmd.Fail {
		return nil, errors.New("handler failed")
	}
	return &echoResult{Value: "echo:" + cmd.ID}, nil
}

func newMemoryFactory() *memory.Factory {
	return &memory.Factory{
		RoomsRepo:        memory.NewRoomRepository(),
		BookingRepo:      memory.NewBookingRepository(),
		PaymentRepo:      memory.NewPaymentRepository(),
		HousekeepingRepo: memory.NewTaskRepository(),
		CustomerRepo:     memory.NewCustomerRepository(),
	}
}

func newPipeline(handler *countingHandler, store middleware.IdempotencyStore, box outbox.Outbox) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler[echoCommand, *echoResult](base, echoCommand{}.Key(), handler)
	return middleware.ChainCommands(base,
		middleware.Idempotency(store, nil),
		middleware.Transaction(newMemoryFactory(), nil),
		middleware.OutboxFlush(box),
	)
}

func TestIdempotencyReplaysCachedResult(t *testing.T) {
	handler := &countingHandler{}
	bus := newPipeline(handler, memory.NewIdempotencyStore(), memory.NewOutbox())

	first, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{ID: "cmd-1"})
	require.NoError(t, err)
	assert.Equal(t, "echo:cmd-1", first.Value)
	assert.Equal(t, 1, handler.calls)

	// The replay is served from the store, not the handler.
	second, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{ID: "cmd-1"})
	require.NoError(t, err)
	assert.Equal(t, "echo:cmd-1", second.Value)
	assert.Equal(t, 1, handler.calls)

	third, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{ID: "cmd-2"})
	require.NoError(t, err)
	assert.Equal(t, "echo:cmd-2", third.Value)
	assert.Equal(t, 2, handler.calls)
}

func TestIdempotencyCachesFailures(t *testing.T) {
	handler := &countingHandler{}
	bus := newPipeline(handler, memory.NewIdempotencyStore(), memory.NewOutbox())

	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{ID: "cmd-1", Fail: true})
	require.EqualError(t, err, "handler failed")
	assert.Equal(t, 1, handler.calls)

	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{ID: "cmd-1", Fail: true})
	require.EqualError(t, err, "handler failed")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencySkipsBlankKeys(t *testing.T) {
	handler := &countingHandler{}
	bus := newPipeline(handler, memory.NewIdempotencyStore(), memory.NewOutbox())

	for range 2 {
		_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), bus, echoCommand{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, handler.calls)
}

func TestTransactionProvidesAmbientUnit(t *testing.T) {
	seen := false
	base := commands.NewInMemoryBus()
	base.RegisterRaw("test.echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		_, seen = uow.FromContext(ctx)
		return nil, nil
	})
	bus := middleware.ChainCommands(base, middleware.Transaction(newMemoryFactory(), nil))

	_, err := bus.Dispatch(context.Background(), echoCommand{})
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestOutboxFlushRunsAfterHandler(t *testing.T) {
	box := memory.NewOutbox()
	base := commands.NewInMemoryBus()
	base.RegisterRaw("test.echo", func(ctx context.Context, cmd commands.Command) (any, error) {
		return nil, box.Add(ctx, outbox.EventRecord{ID: "evt-1", Name: "test.happened"})
	})
	bus := middleware.ChainCommands(base, middleware.OutboxFlush(box))

	_, err := bus.Dispatch(context.Background(), echoCommand{})
	require.NoError(t, err)

	records, err := box.Drain(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "test.happened", records[0].Name)
}

func TestDispatchUnknownCommand(t *testing.T) {
	bus := commands.NewInMemoryBus()
	_, err := bus.Dispatch(context.Background(), echoCommand{})
	require.ErrorIs(t, err, commands.ErrHandlerNotFound)
}
