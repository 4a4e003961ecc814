package mongo

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"hotelops/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

// moneyDocument stores amounts as decimal strings to keep them exact.
type moneyDocument struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"currency"`
}

func newMoneyDocument(value money.Money) moneyDocument {
	return moneyDocument{Amount: value.Amount.String(), Currency: string(value.Currency)}
}

func (d moneyDocument) toMoney() (money.Money, error) {
	if d.Amount == "" {
		return money.Zero(money.Currency(d.Currency)), nil
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return money.Money{}, err
	}
	return money.Money{Amount: amount, Currency: money.Currency(d.Currency)}, nil
}

func timestampToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func timeToTimestamp(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
