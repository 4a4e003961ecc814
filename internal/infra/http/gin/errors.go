package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "hotelops/internal/app/handlers/booking"
	paymentapp "hotelops/internal/app/handlers/payment"
	domainbooking "hotelops/internal/domain/booking"
	domaincustomer "hotelops/internal/domain/customer"
	domainhousekeeping "hotelops/internal/domain/housekeeping"
	domainpayment "hotelops/internal/domain/payment"
	domainroom "hotelops/internal/domain/room"
)

// respondError maps domain errors onto HTTP statuses: missing aggregates are
// 404, rejected state transitions and conflicts are 409, everything else is
// treated as a bad request.
func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"error": err.Error()})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainroom.ErrNotFound),
		errors.Is(err, domainpayment.ErrNotFound),
		errors.Is(err, domaincustomer.ErrNotFound),
		errors.Is(err, domainhousekeeping.ErrNotFound),
		errors.Is(err, domainpayment.ErrRefundNotFound),
		errors.Is(err, domainhousekeeping.ErrDamageNotFound):
		return http.StatusNotFound
	case errors.Is(err, bookingapp.ErrRoomUnavailable),
		errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainbooking.ErrNotPending),
		errors.Is(err, domainbooking.ErrBeforeStartDate),
		errors.Is(err, domainbooking.ErrNoShowTooEarly),
		errors.Is(err, domainpayment.ErrNotProcessable),
		errors.Is(err, domainpayment.ErrMaxAttempts),
		errors.Is(err, domainpayment.ErrNotRefundable),
		errors.Is(err, domainpayment.ErrRefundExceedsBalance),
		errors.Is(err, domaincustomer.ErrEmailTaken),
		errors.Is(err, paymentapp.ErrAlreadyPaid),
		errors.Is(err, paymentapp.ErrBookingNotPayable):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
