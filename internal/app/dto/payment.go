package dto

import (
	"time"

	domainpayment "hotelops/internal/domain/payment"
)

type RefundSummary struct {
	ID             string     `json:"id"`
	Amount         MoneyDTO   `json:"amount"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	TransactionRef string     `json:"transaction_ref,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	FailureReason  string     `json:"failure_reason,omitempty"`
}

type PaymentSummary struct {
	ID             string          `json:"id"`
	BookingID      string          `json:"booking_id"`
	Amount         MoneyDTO        `json:"amount"`
	Method         string          `json:"method"`
	Status         string          `json:"status"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	Card           string          `json:"card,omitempty"`
	Attempts       int             `json:"attempts"`
	TotalRefunded  MoneyDTO        `json:"total_refunded"`
	Refunds        []RefundSummary `json:"refunds"`
	CreatedAt      time.Time       `json:"created_at"`
}

func MapPaymentSummary(p *domainpayment.Payment) (PaymentSummary, error) {
	refunded, err := p.TotalRefunded()
	if err != nil {
		return PaymentSummary{}, err
	}
	refunds := make([]RefundSummary, 0, len(p.Refunds))
	for _, refund := range p.Refunds {
		summary := RefundSummary{
			ID:             refund.ID,
			Amount:         MapMoney(refund.Amount),
			Reason:         refund.Reason,
			Status:         string(refund.Status),
			TransactionRef: refund.TransactionRef.Value,
			FailureReason:  refund.FailureReason,
		}
		if !refund.ProcessedAt.IsZero() {
			t := refund.ProcessedAt
			summary.ProcessedAt = &t
		}
		refunds = append(refunds, summary)
	}
	summary := PaymentSummary{
		ID:             string(p.ID),
		BookingID:      string(p.BookingID),
		Amount:         MapMoney(p.Amount),
		Method:         string(p.Method),
		Status:         string(p.Status),
		TransactionRef: p.TransactionRef.Value,
		Attempts:       p.ProcessingAttempts,
		TotalRefunded:  MapMoney(refunded),
		Refunds:        refunds,
		CreatedAt:      p.CreatedAt,
	}
	if p.Card != nil {
		summary.Card = p.Card.String()
	}
	return summary, nil
}
