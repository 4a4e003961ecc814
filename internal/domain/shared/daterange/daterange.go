package daterange

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end must be after start")
	ErrStartInPast  = errors.New("daterange: start cannot be in the past")
	ErrTooLong      = errors.New("daterange: span cannot exceed 365 nights")
)

const maxNights = 365

// DateRange is a half-open interval [Start, End) of calendar dates.
// Time-of-day is discarded on construction.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// New builds a range from two instants, normalized to UTC midnight. The start
// must not be before today relative to now.
func New(start, end, now time.Time) (DateRange, error) {
	dr := DateRange{Start: truncate(start), End: truncate(end)}
	if !dr.End.After(dr.Start) {
		return DateRange{}, ErrInvalidRange
	}
	if dr.Start.Before(truncate(now)) {
		return DateRange{}, ErrStartInPast
	}
	if dr.Nights() > maxNights {
		return DateRange{}, ErrTooLong
	}
	return dr, nil
}

// Nights returns the number of nights spanned, End - Start in whole days.
func (dr DateRange) Nights() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

// Overlaps reports whether two ranges share at least one night. Half-open
// semantics: a checkout and a check-in on the same day do not conflict.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.Start.Before(other.End) && other.Start.Before(dr.End)
}

// ContainsDate reports whether the date falls on one of the range's nights.
func (dr DateRange) ContainsDate(t time.Time) bool {
	t = truncate(t)
	return !t.Before(dr.Start) && t.Before(dr.End)
}

func (dr DateRange) String() string {
	return fmt.Sprintf("%s - %s", dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"))
}

// Date normalizes an instant to its UTC calendar date.
func Date(t time.Time) time.Time {
	return truncate(t)
}

func truncate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
