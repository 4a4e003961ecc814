package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "hotelops/internal/app/outbox"
	infraoutbox "hotelops/internal/infra/outbox"
)

// Outbox keeps staged event records in memory until a sink drains them.
type Outbox struct {
	mu      sync.Mutex
	pending []appoutbox.EventRecord
	flushed []appoutbox.EventRecord
	claimed map[string]appoutbox.EventRecord
}

func NewOutbox() *Outbox {
	return &Outbox{claimed: make(map[string]appoutbox.EventRecord)}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = append(o.pending, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushed = append(o.flushed, o.pending...)
	o.pending = nil
	return nil
}

// Drain returns flushed records for a publisher worker and clears them.
func (o *Outbox) Drain(ctx context.Context, limit int) ([]appoutbox.EventRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if limit <= 0 || limit > len(o.flushed) {
		limit = len(o.flushed)
	}
	out := make([]appoutbox.EventRecord, limit)
	copy(out, o.flushed[:limit])
	o.flushed = o.flushed[limit:]
	return out, nil
}

// Claim hands one flushed record to a worker; MarkFailed requeues it.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.flushed) == 0 {
		return nil, nil
	}
	record := o.flushed[0]
	o.flushed = o.flushed[1:]
	o.claimed[record.ID] = record
	return &infraoutbox.EventDocument{
		ID:         record.ID,
		Name:       record.Name,
		Payload:    record.Payload,
		OccurredAt: record.OccurredAt,
		Aggregate:  record.Aggregate,
		Headers:    record.Headers,
		ClaimedBy:  workerID,
		ClaimedAt:  time.Now().UTC(),
	}, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.claimed, id)
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if record, ok := o.claimed[id]; ok {
		delete(o.claimed, id)
		o.flushed = append(o.flushed, record)
	}
	return nil
}

var (
	_ appoutbox.Outbox   = (*Outbox)(nil)
	_ infraoutbox.Source = (*Outbox)(nil)
)
