package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/dto"
	paymentapp "hotelops/internal/app/handlers/payment"
	viewsapp "hotelops/internal/app/handlers/views"
	"hotelops/internal/app/queries"
)

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type cardDetailsRequest struct {
	Number      string `json:"number"`
	HolderName  string `json:"holder_name"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

type createPaymentRequest struct {
	BookingID string              `json:"booking_id"`
	Method    string              `json:"method"`
	Card      *cardDetailsRequest `json:"card,omitempty"`
}

func (h PaymentHandler) Create(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := paymentapp.CreatePaymentCommand{
		CommandID:       generateCommandID(),
		BookingID:       req.BookingID,
		Method:          req.Method,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	if req.Card != nil {
		cmd.Card = &paymentapp.CardDetails{
			Number:      req.Card.Number,
			HolderName:  req.Card.HolderName,
			ExpiryMonth: req.Card.ExpiryMonth,
			ExpiryYear:  req.Card.ExpiryYear,
			CVV:         req.Card.CVV,
		}
	}
	result, err := commands.Dispatch[paymentapp.CreatePaymentCommand, *paymentapp.CreatePaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PaymentHandler) Process(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	cmd := paymentapp.ProcessPaymentCommand{
		PaymentID:       c.Param("id"),
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[paymentapp.ProcessPaymentCommand, *paymentapp.ProcessPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type requestRefundRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Reason   string  `json:"reason"`
}

func (h PaymentHandler) RequestRefund(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req requestRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := paymentapp.RequestRefundCommand{
		PaymentID: c.Param("id"),
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[paymentapp.RequestRefundCommand, *paymentapp.RefundResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h PaymentHandler) ProcessRefund(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := paymentapp.ProcessRefundCommand{PaymentID: c.Param("id"), RefundID: c.Param("refundId")}
	result, err := commands.Dispatch[paymentapp.ProcessRefundCommand, *paymentapp.RefundResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) CancelRefund(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := paymentapp.CancelRefundCommand{PaymentID: c.Param("id"), RefundID: c.Param("refundId")}
	result, err := commands.Dispatch[paymentapp.CancelRefundCommand, *paymentapp.RefundResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) GetByBooking(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	query := viewsapp.GetPaymentByBookingQuery{BookingID: c.Param("id")}
	result, err := queries.Ask[viewsapp.GetPaymentByBookingQuery, *dto.PaymentSummary](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PaymentHTTP = PaymentHandler{}
