package payment

import (
	"time"

	"hotelops/internal/domain/booking"
	"hotelops/internal/domain/shared/money"
)

type PaymentProcessed struct {
	PaymentID      PaymentID
	BookingID      booking.BookingID
	Amount         money.Money
	Method         Method
	TransactionRef TransactionRef
	At             time.Time
}

func (e PaymentProcessed) EventName() string     { return "payment.processed" }
func (e PaymentProcessed) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentProcessed) OccurredAt() time.Time { return e.At }

type PaymentFailed struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Reason    string
	At        time.Time
}

func (e PaymentFailed) EventName() string     { return "payment.failed" }
func (e PaymentFailed) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentFailed) OccurredAt() time.Time { return e.At }

type RefundProcessed struct {
	PaymentID      PaymentID
	RefundID       string
	Amount         money.Money
	TransactionRef TransactionRef
	At             time.Time
}

func (e RefundProcessed) EventName() string     { return "payment.refund_processed" }
func (e RefundProcessed) AggregateID() string   { return string(e.PaymentID) }
func (e RefundProcessed) OccurredAt() time.Time { return e.At }
