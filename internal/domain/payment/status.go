package payment

import (
	"errors"
	"fmt"
)

var ErrUnknownMethod = errors.New("payment: unknown payment method")

// Status is the payment lifecycle state. PartiallyRefunded and Refunded are
// derived from the completed-refund total and can move back to Completed when
// refunds are cancelled before completion.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusProcessing        Status = "PROCESSING"
	StatusCompleted         Status = "COMPLETED"
	StatusFailed            Status = "FAILED"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
	StatusRefunded          Status = "REFUNDED"
)

func (s Status) CanBeProcessed() bool {
	return s == StatusPending
}

func (s Status) CanBeRefunded() bool {
	return s == StatusCompleted || s == StatusPartiallyRefunded
}

func (s Status) IsSuccessful() bool {
	return s == StatusCompleted || s == StatusPartiallyRefunded || s == StatusRefunded
}

// RefundStatus is the per-refund sub-state machine.
type RefundStatus string

const (
	RefundPending    RefundStatus = "PENDING"
	RefundProcessing RefundStatus = "PROCESSING"
	RefundCompleted  RefundStatus = "COMPLETED"
	RefundFailed     RefundStatus = "FAILED"
	RefundCancelled  RefundStatus = "CANCELLED"
)

func (s RefundStatus) CanBeProcessed() bool {
	return s == RefundPending
}

func (s RefundStatus) CanBeCancelled() bool {
	return s == RefundPending || s == RefundProcessing
}

func (s RefundStatus) IsCompleted() bool {
	return s == RefundCompleted
}

// Method identifies how a payment is settled. Card and PayPal payments go
// through the gateway; cash and bank transfers are recorded manually.
type Method string

const (
	MethodCreditCard   Method = "CREDIT_CARD"
	MethodDebitCard    Method = "DEBIT_CARD"
	MethodCash         Method = "CASH"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodPayPal       Method = "PAYPAL"
)

func ParseMethod(code string) (Method, error) {
	switch Method(code) {
	case MethodCreditCard, MethodDebitCard, MethodCash, MethodBankTransfer, MethodPayPal:
		return Method(code), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, code)
	}
}

func (m Method) RequiresOnlineProcessing() bool {
	return m == MethodCreditCard || m == MethodDebitCard || m == MethodPayPal
}
