package booking

import (
	"errors"
	"time"
)

var ErrInvalidPolicy = errors.New("booking: invalid cancellation policy")

// CancellationPolicy maps time-to-check-in to a refund percentage. Cancelling
// at least ThresholdHours before check-in refunds in full; later cancellations
// refund PartialRefundPercent.
type CancellationPolicy struct {
	ThresholdHours       int
	PartialRefundPercent int
	Description          string
}

func NewCancellationPolicy(thresholdHours, partialRefundPercent int, description string) (CancellationPolicy, error) {
	if thresholdHours < 0 {
		return CancellationPolicy{}, ErrInvalidPolicy
	}
	if partialRefundPercent < 0 || partialRefundPercent > 100 {
		return CancellationPolicy{}, ErrInvalidPolicy
	}
	return CancellationPolicy{
		ThresholdHours:       thresholdHours,
		PartialRefundPercent: partialRefundPercent,
		Description:          description,
	}, nil
}

func StandardPolicy() CancellationPolicy {
	return CancellationPolicy{48, 0, "Standard: no refund within 48 hours of check-in"}
}

func FlexiblePolicy() CancellationPolicy {
	return CancellationPolicy{24, 50, "Flexible: 50% refund within 24 hours of check-in"}
}

func StrictPolicy() CancellationPolicy {
	return CancellationPolicy{72, 0, "Strict: no refund within 72 hours of check-in"}
}

// Refundable reports whether a cancellation at now is still outside the
// threshold window.
func (p CancellationPolicy) Refundable(checkIn, now time.Time) bool {
	return checkIn.Sub(now).Hours() >= float64(p.ThresholdHours)
}

// RefundPercentFor returns 100 outside the threshold window, the partial
// percentage inside it.
func (p CancellationPolicy) RefundPercentFor(checkIn, now time.Time) int {
	if p.Refundable(checkIn, now) {
		return 100
	}
	return p.PartialRefundPercent
}
