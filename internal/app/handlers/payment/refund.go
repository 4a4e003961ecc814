package payment

import (
	"context"
	"errors"
	"time"

	"hotelops/internal/app/handlers/support"
	"hotelops/internal/app/outbox"
	"hotelops/internal/app/uow"
	domainpayment "hotelops/internal/domain/payment"
	"hotelops/internal/domain/shared/money"
)

const (
	requestRefundKey = "payment.request_refund"
	processRefundKey = "payment.process_refund"
	cancelRefundKey  = "payment.cancel_refund"
)

type RequestRefundCommand struct {
	PaymentID string
	Amount    float64
	Currency  string
	Reason    string
}

func (c RequestRefundCommand) Key() string { return requestRefundKey }

type ProcessRefundCommand struct {
	PaymentID string
	RefundID  string
}

func (c ProcessRefundCommand) Key() string { return processRefundKey }

type CancelRefundCommand struct {
	PaymentID string
	RefundID  string
}

func (c CancelRefundCommand) Key() string { return cancelRefundKey }

type RefundResult struct {
	PaymentID      string `json:"payment_id"`
	RefundID       string `json:"refund_id"`
	RefundStatus   string `json:"refund_status"`
	PaymentStatus  string `json:"payment_status"`
	TotalRefunded  string `json:"total_refunded"`
	FailureReason  string `json:"failure_reason,omitempty"`
	TransactionRef string `json:"transaction_ref,omitempty"`
}

type RefundHandler struct {
	UoWFactory uow.UoWFactory
	Gateway    domainpayment.Gateway
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *RefundHandler) HandleRequest(ctx context.Context, cmd RequestRefundCommand) (*RefundResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	p, err := unit.Payments().ByID(ctx, domainpayment.PaymentID(cmd.PaymentID))
	if err != nil {
		return nil, err
	}
	currency, err := money.ParseCurrency(cmd.Currency)
	if err != nil {
		return nil, err
	}
	amount, err := money.NewFromFloat(cmd.Amount, currency)
	if err != nil {
		return nil, err
	}
	refund, err := p.RequestRefund(amount, cmd.Reason, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := unit.Payments().Save(ctx, p); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return h.result(p, refund)
}

// HandleProcess runs a staged refund through the gateway. A declined refund
// is persisted as failed and reported in the result, mirroring payment
// processing.
func (h *RefundHandler) HandleProcess(ctx context.Context, cmd ProcessRefundCommand) (*RefundResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	p, err := unit.Payments().ByID(ctx, domainpayment.PaymentID(cmd.PaymentID))
	if err != nil {
		return nil, err
	}
	processErr := p.ProcessRefund(ctx, cmd.RefundID, h.Gateway, time.Now().UTC())
	if processErr != nil && !errors.Is(processErr, domainpayment.ErrRefundFailed) {
		return nil, processErr
	}
	if err := unit.Payments().Save(ctx, p); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, &p.EventRecorder); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return h.result(p, findRefund(p, cmd.RefundID))
}

func (h *RefundHandler) HandleCancel(ctx context.Context, cmd CancelRefundCommand) (*RefundResult, error) {
	unit, ctx, err := support.Begin(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	p, err := unit.Payments().ByID(ctx, domainpayment.PaymentID(cmd.PaymentID))
	if err != nil {
		return nil, err
	}
	if err := p.CancelRefund(cmd.RefundID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Payments().Save(ctx, p); err != nil {
		return nil, err
	}
	if err := unit.Finish(ctx); err != nil {
		return nil, err
	}
	return h.result(p, findRefund(p, cmd.RefundID))
}

func (h *RefundHandler) result(p *domainpayment.Payment, refund *domainpayment.Refund) (*RefundResult, error) {
	refunded, err := p.TotalRefunded()
	if err != nil {
		return nil, err
	}
	out := &RefundResult{
		PaymentID:     string(p.ID),
		PaymentStatus: string(p.Status),
		TotalRefunded: refunded.String(),
	}
	if refund != nil {
		out.RefundID = refund.ID
		out.RefundStatus = string(refund.Status)
		out.FailureReason = refund.FailureReason
		out.TransactionRef = refund.TransactionRef.Value
	}
	return out, nil
}

func findRefund(p *domainpayment.Payment, refundID string) *domainpayment.Refund {
	for _, refund := range p.Refunds {
		if refund.ID == refundID {
			return refund
		}
	}
	return nil
}
