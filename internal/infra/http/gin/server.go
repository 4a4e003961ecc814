package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"hotelops/internal/infra/config"
	"hotelops/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	AddRoom(c *gin.Context)
	RemoveRoom(c *gin.Context)
	ApplyDiscount(c *gin.Context)
	Cancel(c *gin.Context)
	CheckIn(c *gin.Context)
	CheckOut(c *gin.Context)
	CheckInRoom(c *gin.Context)
	CheckOutRoom(c *gin.Context)
	MarkNoShow(c *gin.Context)
	Get(c *gin.Context)
	ListMine(c *gin.Context)
}

type PaymentHTTP interface {
	Create(c *gin.Context)
	Process(c *gin.Context)
	RequestRefund(c *gin.Context)
	ProcessRefund(c *gin.Context)
	CancelRefund(c *gin.Context)
	GetByBooking(c *gin.Context)
}

type RoomHTTP interface {
	Create(c *gin.Context)
	ListAvailable(c *gin.Context)
	StartMaintenance(c *gin.Context)
	EndMaintenance(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type HousekeepingHTTP interface {
	CreateTask(c *gin.Context)
	StartTask(c *gin.Context)
	CompleteTask(c *gin.Context)
	CancelTask(c *gin.Context)
	ReportDamage(c *gin.Context)
	ListTasks(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Booking        BookingHTTP
	Payment        PaymentHTTP
	Room           RoomHTTP
	Housekeeping   HousekeepingHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/rooms", h.Booking.AddRoom)
		api.DELETE("/bookings/:id/rooms/:roomId", h.Booking.RemoveRoom)
		api.POST("/bookings/:id/discount", h.Booking.ApplyDiscount)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
		api.POST("/bookings/:id/check-in", h.Booking.CheckIn)
		api.POST("/bookings/:id/check-out", h.Booking.CheckOut)
		api.POST("/bookings/:id/rooms/:roomId/check-in", h.Booking.CheckInRoom)
		api.POST("/bookings/:id/rooms/:roomId/check-out", h.Booking.CheckOutRoom)
		api.POST("/bookings/:id/no-show", h.Booking.MarkNoShow)
		api.GET("/me/bookings", h.Booking.ListMine)
	}
	if h.Payment != nil {
		api.POST("/payments", h.Payment.Create)
		api.POST("/payments/:id/process", h.Payment.Process)
		api.POST("/payments/:id/refunds", h.Payment.RequestRefund)
		api.POST("/payments/:id/refunds/:refundId/process", h.Payment.ProcessRefund)
		api.POST("/payments/:id/refunds/:refundId/cancel", h.Payment.CancelRefund)
		api.GET("/bookings/:id/payment", h.Payment.GetByBooking)
	}
	if h.Room != nil {
		api.POST("/rooms", h.Room.Create)
		api.GET("/rooms/available", h.Room.ListAvailable)
		api.POST("/rooms/:id/maintenance/start", h.Room.StartMaintenance)
		api.POST("/rooms/:id/maintenance/end", h.Room.EndMaintenance)
		api.POST("/rooms/:id/photos", h.Room.UploadPhoto)
	}
	if h.Housekeeping != nil {
		tasks := api.Group("/housekeeping/tasks")
		tasks.GET("", h.Housekeeping.ListTasks)
		tasks.POST("", h.Housekeeping.CreateTask)
		tasks.POST("/:id/start", h.Housekeeping.StartTask)
		tasks.POST("/:id/complete", h.Housekeeping.CompleteTask)
		tasks.POST("/:id/cancel", h.Housekeeping.CancelTask)
		tasks.POST("/:id/damage", h.Housekeeping.ReportDamage)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
