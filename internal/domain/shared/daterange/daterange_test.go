package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/domain/shared/daterange"
)

var now = time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, 9, d, 0, 0, 0, 0, time.UTC)
}

func TestNewNormalizesToMidnight(t *testing.T) {
	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 12, 11, 0, 0, 0, time.UTC)

	dr, err := daterange.New(start, end, now)
	require.NoError(t, err)
	assert.Equal(t, day(10), dr.Start)
	assert.Equal(t, day(12), dr.End)
	assert.Equal(t, 2, dr.Nights())
}

func TestNewValidation(t *testing.T) {
	_, err := daterange.New(day(10), day(10), now)
	require.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = daterange.New(day(12), day(10), now)
	require.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = daterange.New(day(10), day(12), day(11))
	require.ErrorIs(t, err, daterange.ErrStartInPast)

	_, err = daterange.New(day(1), day(1).AddDate(0, 0, 366), day(1))
	require.ErrorIs(t, err, daterange.ErrTooLong)
}

func TestSameDayArrivalIsAllowed(t *testing.T) {
	// Booking starting today is valid; only strictly-past starts are rejected.
	dr, err := daterange.New(now, day(3), now)
	require.NoError(t, err)
	assert.Equal(t, day(1), dr.Start)
}

func TestOverlapsHalfOpen(t *testing.T) {
	mustRange := func(start, end time.Time) daterange.DateRange {
		dr, err := daterange.New(start, end, now)
		require.NoError(t, err)
		return dr
	}

	a := mustRange(day(10), day(13))

	// Back-to-back stays share a calendar day but not a night.
	assert.False(t, a.Overlaps(mustRange(day(13), day(15))))
	assert.False(t, a.Overlaps(mustRange(day(8), day(10))))

	assert.True(t, a.Overlaps(mustRange(day(12), day(14))))
	assert.True(t, a.Overlaps(mustRange(day(9), day(11))))
	assert.True(t, a.Overlaps(mustRange(day(11), day(12))))
	assert.True(t, a.Overlaps(mustRange(day(8), day(15))))
}

func TestContainsDate(t *testing.T) {
	dr, err := daterange.New(day(10), day(12), now)
	require.NoError(t, err)

	assert.True(t, dr.ContainsDate(day(10)))
	assert.True(t, dr.ContainsDate(time.Date(2026, 9, 11, 23, 0, 0, 0, time.UTC)))
	assert.False(t, dr.ContainsDate(day(12)))
	assert.False(t, dr.ContainsDate(day(9)))
}
