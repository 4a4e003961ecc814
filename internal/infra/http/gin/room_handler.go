package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/dto"
	roomsapp "hotelops/internal/app/handlers/rooms"
	viewsapp "hotelops/internal/app/handlers/views"
	"hotelops/internal/app/queries"
	"hotelops/internal/infra/storage/s3"
)

type RoomHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Uploader s3.Uploader
}

type createRoomRequest struct {
	Number      string  `json:"number"`
	TypeName    string  `json:"type_name"`
	NightlyRate float64 `json:"nightly_rate"`
	Currency    string  `json:"currency"`
	Capacity    int     `json:"capacity"`
}

func (h RoomHandler) Create(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := roomsapp.CreateRoomCommand{
		CommandID:   generateCommandID(),
		Number:      req.Number,
		TypeName:    req.TypeName,
		NightlyRate: req.NightlyRate,
		Currency:    req.Currency,
		Capacity:    req.Capacity,
	}
	result, err := commands.Dispatch[roomsapp.CreateRoomCommand, *roomsapp.RoomResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListAvailable answers GET /rooms/available?check_in=...&check_out=... with
// RFC 3339 or plain dates.
func (h RoomHandler) ListAvailable(c *gin.Context) {
	checkIn, err := parseDateParam(c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in"})
		return
	}
	checkOut, err := parseDateParam(c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out"})
		return
	}
	query := viewsapp.ListAvailableRoomsQuery{CheckIn: checkIn, CheckOut: checkOut}
	result, err := queries.Ask[viewsapp.ListAvailableRoomsQuery, *dto.RoomCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) StartMaintenance(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := roomsapp.StartMaintenanceCommand{RoomID: c.Param("id")}
	result, err := commands.Dispatch[roomsapp.StartMaintenanceCommand, *roomsapp.RoomResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) EndMaintenance(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	cmd := roomsapp.EndMaintenanceCommand{RoomID: c.Param("id")}
	result, err := commands.Dispatch[roomsapp.EndMaintenanceCommand, *roomsapp.RoomResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadPhoto accepts a multipart "photo" file, stores it and attaches the
// object key to the room.
func (h RoomHandler) UploadPhoto(c *gin.Context) {
	if _, ok := requireStaff(c); !ok {
		return
	}
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage unavailable"})
		return
	}
	roomID := c.Param("id")
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file required"})
		return
	}
	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read photo"})
		return
	}
	defer reader.Close()

	key := s3.PhotoKey(roomID, file.Filename)
	url, err := h.Uploader.Upload(c.Request.Context(), key, reader, file.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "photo upload failed"})
		return
	}
	cmd := roomsapp.AttachPhotoCommand{RoomID: roomID, PhotoKey: key}
	result, err := commands.Dispatch[roomsapp.AttachPhotoCommand, *roomsapp.RoomResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"room": result, "key": key, "url": url})
}

func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

var _ RoomHTTP = RoomHandler{}
