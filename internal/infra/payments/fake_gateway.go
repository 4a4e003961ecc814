package payments

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domainpayment "hotelops/internal/domain/payment"
	"hotelops/internal/domain/shared/money"
)

// FakeGateway approves every charge and refund. It stands in for a real
// provider in dev and test environments.
type FakeGateway struct {
	Provider string
}

func (g FakeGateway) Charge(ctx context.Context, amount money.Money, card domainpayment.CreditCard, description string) (domainpayment.TransactionRef, error) {
	if err := ctx.Err(); err != nil {
		return domainpayment.TransactionRef{}, err
	}
	return domainpayment.TransactionRef{
		Value:    "TXN-" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Provider: g.provider(),
	}, nil
}

func (g FakeGateway) Refund(ctx context.Context, original domainpayment.TransactionRef, amount money.Money, reason string) (domainpayment.TransactionRef, error) {
	if err := ctx.Err(); err != nil {
		return domainpayment.TransactionRef{}, err
	}
	return domainpayment.TransactionRef{
		Value:    "REF-" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Provider: g.provider(),
	}, nil
}

func (g FakeGateway) provider() string {
	if g.Provider != "" {
		return g.Provider
	}
	return "FakeGateway"
}

var _ domainpayment.Gateway = FakeGateway{}
