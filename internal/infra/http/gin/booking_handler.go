package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/dto"
	bookingapp "hotelops/internal/app/handlers/booking"
	viewsapp "hotelops/internal/app/handlers/views"
	"hotelops/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type roomSelectionRequest struct {
	RoomID   string `json:"room_id"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
}

type createBookingRequest struct {
	CheckIn  time.Time              `json:"check_in"`
	CheckOut time.Time              `json:"check_out"`
	Rooms    []roomSelectionRequest `json:"rooms"`
	Currency string                 `json:"currency"`
	Policy   string                 `json:"policy"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:       generateCommandID(),
		CustomerID:      user.ID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Currency:        req.Currency,
		Policy:          req.Policy,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	for _, sel := range req.Rooms {
		cmd.Rooms = append(cmd.Rooms, bookingapp.RoomSelection{
			RoomID:   sel.RoomID,
			Adults:   sel.Adults,
			Children: sel.Children,
		})
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) AddRoom(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	var req roomSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.AddRoomCommand{
		BookingID: c.Param("id"),
		Room:      bookingapp.RoomSelection{RoomID: req.RoomID, Adults: req.Adults, Children: req.Children},
	}
	result, err := commands.Dispatch[bookingapp.AddRoomCommand, *bookingapp.ModifyBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) RemoveRoom(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	cmd := bookingapp.RemoveRoomCommand{BookingID: c.Param("id"), RoomID: c.Param("roomId")}
	result, err := commands.Dispatch[bookingapp.RemoveRoomCommand, *bookingapp.ModifyBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type applyDiscountRequest struct {
	Percent float64 `json:"percent"`
}

func (h BookingHandler) ApplyDiscount(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req applyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.ApplyDiscountCommand{BookingID: c.Param("id"), Percent: req.Percent}
	result, err := commands.Dispatch[bookingapp.ApplyDiscountCommand, *bookingapp.ModifyBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.CancelBookingCommand{
		BookingID:       c.Param("id"),
		Reason:          req.Reason,
		ByStaff:         user.Staff,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckIn(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := bookingapp.CheckInBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.CheckInBookingCommand, *bookingapp.OccupancyResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckOut(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := bookingapp.CheckOutBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.CheckOutBookingCommand, *bookingapp.OccupancyResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckInRoom(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := bookingapp.CheckInRoomCommand{BookingID: c.Param("id"), RoomID: c.Param("roomId")}
	result, err := commands.Dispatch[bookingapp.CheckInRoomCommand, *bookingapp.OccupancyResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) CheckOutRoom(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := bookingapp.CheckOutRoomCommand{BookingID: c.Param("id"), RoomID: c.Param("roomId")}
	result, err := commands.Dispatch[bookingapp.CheckOutRoomCommand, *bookingapp.OccupancyResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) MarkNoShow(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := bookingapp.MarkNoShowCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.MarkNoShowCommand, *bookingapp.MarkNoShowResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	result, err := queries.Ask[viewsapp.GetBookingQuery, *dto.BookingSummary](c.Request.Context(), h.Queries, viewsapp.GetBookingQuery{BookingID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) ListMine(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	result, err := queries.Ask[viewsapp.ListCustomerBookingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, viewsapp.ListCustomerBookingsQuery{CustomerID: user.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
