package booking

import (
	"context"

	"hotelops/internal/app/outbox"
	"hotelops/internal/domain/shared/events"
)

// drainEvents stages an aggregate's pending events on the outbox and clears
// the recorder.
func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, recorder *events.EventRecorder) error {
	pending := recorder.PendingEvents()
	recorder.ClearEvents()
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}
