package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	queue  []*EventDocument
	sent   []string
	failed []string
	errs   []string
}

func (s *fakeSource) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(s.queue) == 0 {
		return nil, nil
	}
	doc := s.queue[0]
	s.queue = s.queue[1:]
	return doc, nil
}

func (s *fakeSource) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeSource) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	s.failed = append(s.failed, id)
	s.errs = append(s.errs, errMsg)
	return nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	err  error
	sent []published
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func checkoutDocument() *EventDocument {
	return &EventDocument{
		ID:         "evt-1",
		Name:       "booking.checked_out",
		Payload:    []byte(`{"booking_id":"bkg-1","room_ids":["room-1"]}`),
		OccurredAt: time.Date(2026, 9, 15, 11, 0, 0, 0, time.UTC),
		Aggregate:  "bkg-1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}
}

func TestProcessOncePublishesCloudEvent(t *testing.T) {
	source := &fakeSource{queue: []*EventDocument{checkoutDocument()}}
	producer := &fakeProducer{}
	w := &Worker{Store: source, Producer: producer, ID: "worker-1"}

	require.NoError(t, w.processOnce(context.Background()))
	require.Len(t, producer.sent, 1)
	assert.Equal(t, []string{"evt-1"}, source.sent)
	assert.Empty(t, source.failed)

	msg := producer.sent[0]
	assert.Equal(t, "booking.events.v1", msg.topic)
	assert.Equal(t, "bkg-1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])
	assert.Equal(t, "00-abc-def-01", msg.headers["traceparent"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	assert.Equal(t, "1.0", envelope["specversion"])
	assert.Equal(t, "booking.checked_out.v1", envelope["type"])
	assert.Equal(t, "app://hotelops", envelope["source"])
	assert.Equal(t, "00-abc-def-01", envelope["traceparent"])
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "bkg-1", data["booking_id"])
}

func TestProcessOnceEmptyQueue(t *testing.T) {
	source := &fakeSource{}
	producer := &fakeProducer{}
	w := &Worker{Store: source, Producer: producer}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Empty(t, producer.sent)
	assert.Empty(t, source.sent)
}

func TestProcessOncePublishFailureSchedulesRetry(t *testing.T) {
	source := &fakeSource{queue: []*EventDocument{checkoutDocument()}}
	producer := &fakeProducer{err: errors.New("broker unreachable")}
	w := &Worker{Store: source, Producer: producer}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Empty(t, source.sent)
	require.Equal(t, []string{"evt-1"}, source.failed)
	assert.Equal(t, []string{"broker unreachable"}, source.errs)
}

func TestProcessOnceMalformedPayload(t *testing.T) {
	doc := checkoutDocument()
	doc.Payload = []byte("not json")
	source := &fakeSource{queue: []*EventDocument{doc}}
	producer := &fakeProducer{}
	w := &Worker{Store: source, Producer: producer}

	require.NoError(t, w.processOnce(context.Background()))
	assert.Empty(t, producer.sent)
	assert.Equal(t, []string{"evt-1"}, source.failed)
}

func TestTopicFor(t *testing.T) {
	w := &Worker{}
	assert.Equal(t, "booking.events.v1", w.topicFor("booking.checked_out"))
	assert.Equal(t, "payment.events.v1", w.topicFor("payment.refund_completed"))
	assert.Equal(t, "housekeeping.events.v1", w.topicFor("housekeeping.task_created"))

	prefixed := &Worker{TopicPrefix: "staging."}
	assert.Equal(t, "staging.booking.events.v1", prefixed.topicFor("booking.created"))
}

func TestRunRequiresDependencies(t *testing.T) {
	w := &Worker{}
	require.ErrorIs(t, w.Run(context.Background()), ErrWorkerNotConfigured)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	w := &Worker{Store: &fakeSource{}, Producer: &fakeProducer{}, Interval: time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, w.Run(ctx), context.DeadlineExceeded)
}

func TestNextRetryBackoff(t *testing.T) {
	w := &Worker{Backoff: []time.Duration{time.Second, time.Minute}}
	before := time.Now()

	first := w.nextRetry(0)
	assert.WithinDuration(t, before.Add(time.Second), first, 100*time.Millisecond)

	second := w.nextRetry(1)
	assert.WithinDuration(t, before.Add(time.Minute), second, 100*time.Millisecond)

	// Attempts past the table reuse the last step.
	capped := w.nextRetry(9)
	assert.WithinDuration(t, before.Add(time.Minute), capped, 100*time.Millisecond)
}
