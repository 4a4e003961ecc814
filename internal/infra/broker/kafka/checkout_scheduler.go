package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"hotelops/internal/app/commands"
	apphousekeeping "hotelops/internal/app/handlers/housekeeping"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
)

// CheckoutTaskScheduler reacts to checkout events by creating checkout
// cleaning tasks, one per vacated room.
type CheckoutTaskScheduler struct {
	Bus    commands.Bus
	Logger *slog.Logger
}

type checkoutEnvelope struct {
	Type string          `json:"type"`
	Data checkoutPayload `json:"data"`
}

type checkoutPayload struct {
	BookingID string   `json:"BookingID"`
	RoomID    string   `json:"RoomID"`
	RoomIDs   []string `json:"RoomIDs"`
}

func (s *CheckoutTaskScheduler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var envelope checkoutEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		s.log().Warn("checkout scheduler: skipping malformed event", "error", err)
		return nil
	}
	if !s.isCheckout(envelope.Type) {
		return nil
	}
	roomIDs := envelope.Data.RoomIDs
	if len(roomIDs) == 0 && envelope.Data.RoomID != "" {
		roomIDs = []string{envelope.Data.RoomID}
	}
	for _, roomID := range roomIDs {
		cmd := apphousekeeping.CreateTaskCommand{
			CommandID: uuid.NewString(),
			RoomID:    roomID,
			Kind:      string(domainhousekeeping.KindCheckout),
			Priority:  string(domainhousekeeping.PriorityHigh),
			Notes:     "Checkout cleaning for booking " + envelope.Data.BookingID,
		}
		if _, err := s.Bus.Dispatch(ctx, cmd); err != nil {
			s.log().Error("checkout scheduler: create task failed",
				"room_id", roomID, "booking_id", envelope.Data.BookingID, "error", err)
			return err
		}
	}
	return nil
}

func (s *CheckoutTaskScheduler) isCheckout(eventType string) bool {
	eventType = strings.TrimSuffix(eventType, ".v1")
	return eventType == "booking.checked_out" || eventType == "booking.room_checked_out"
}

func (s *CheckoutTaskScheduler) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

var _ MessageHandler = (*CheckoutTaskScheduler)(nil)
