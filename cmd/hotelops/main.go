package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hotelops/internal/app/commands"
	"hotelops/internal/app/dto"
	bookingapp "hotelops/internal/app/handlers/booking"
	housekeepingapp "hotelops/internal/app/handlers/housekeeping"
	paymentapp "hotelops/internal/app/handlers/payment"
	roomsapp "hotelops/internal/app/handlers/rooms"
	viewsapp "hotelops/internal/app/handlers/views"
	"hotelops/internal/app/middleware"
	appoutbox "hotelops/internal/app/outbox"
	"hotelops/internal/app/queries"
	authsvc "hotelops/internal/app/services/auth"
	"hotelops/internal/app/uow"
	domaincustomer "hotelops/internal/domain/customer"
	domainpayment "hotelops/internal/domain/payment"
	"hotelops/internal/infra/broker/kafka"
	"hotelops/internal/infra/config"
	mongodb "hotelops/internal/infra/db/mongo"
	ginserver "hotelops/internal/infra/http/gin"
	"hotelops/internal/infra/obs"
	infraoutbox "hotelops/internal/infra/outbox"
	"hotelops/internal/infra/payments"
	"hotelops/internal/infra/security"
	"hotelops/internal/infra/storage/memory"
	"hotelops/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Config{Env: "dev", HTTPAddr: ":8080", StorageMode: "memory"}
	}
	logger := obs.NewLogger(cfg.Env)
	if cfgErr != nil {
		logger.Warn("configuration incomplete, falling back to in-memory defaults", "error", cfgErr)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	app.startWorkers(ctx, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: app.ready}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("http server listening", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// application bundles the wired HTTP handlers together with the background
// workers and resources that must be shut down with the process.
type application struct {
	handlers ginserver.Handlers
	ready    func() error
	workers  []func(ctx context.Context, logger *slog.Logger)
	closers  []func() error
}

func (a *application) startWorkers(ctx context.Context, logger *slog.Logger) {
	for _, worker := range a.workers {
		run := worker
		go run(ctx, logger)
	}
}

func (a *application) close(logger *slog.Logger) {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			logger.Warn("resource close failed", "error", err)
		}
	}
}

// storage groups the persistence ports selected by STORAGE_MODE.
type storage struct {
	factory     uow.UoWFactory
	box         appoutbox.Outbox
	source      infraoutbox.Source
	idempotency middleware.IdempotencyStore
	customers   domaincustomer.Repository
	ready       func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	st, err := buildStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var gateway domainpayment.Gateway = payments.FakeGateway{}

	commandBus := commands.NewInMemoryBus()
	registerCommandHandlers(commandBus, st.factory, st.box, gateway)
	queryBus := queries.NewInMemoryBus()
	registerQueryHandlers(queryBus, st.factory)

	dispatcher := middleware.ChainCommands(commandBus,
		middleware.Idempotency(st.idempotency, nil),
		middleware.Transaction(st.factory, nil),
		middleware.OutboxFlush(st.box),
	)
	asker := middleware.ChainQueries(queryBus)

	authService := &authsvc.Service{
		Customers:  st.customers,
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	uploader := buildUploader(cfg, logger)

	app := &application{
		handlers: ginserver.Handlers{
			Auth:           ginserver.AuthHandler{Service: authService, Logger: logger},
			Booking:        ginserver.BookingHandler{Commands: dispatcher, Queries: asker},
			Payment:        ginserver.PaymentHandler{Commands: dispatcher, Queries: asker},
			Room:           ginserver.RoomHandler{Commands: dispatcher, Queries: asker, Uploader: uploader},
			Housekeeping:   ginserver.HousekeepingHandler{Commands: dispatcher, Queries: asker},
			AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		},
		ready: st.ready,
	}

	if len(cfg.KafkaBrokers) > 0 {
		if err := wireKafka(app, cfg, dispatcher, st.source, logger); err != nil {
			app.close(logger)
			return nil, err
		}
	}
	return app, nil
}

func buildStorage(ctx context.Context, cfg config.Config) (storage, error) {
	switch cfg.StorageMode {
	case "memory":
		customerRepo := memory.NewCustomerRepository()
		box := memory.NewOutbox()
		return storage{
			factory: &memory.Factory{
				RoomsRepo:        memory.NewRoomRepository(),
				BookingRepo:      memory.NewBookingRepository(),
				PaymentRepo:      memory.NewPaymentRepository(),
				HousekeepingRepo: memory.NewTaskRepository(),
				CustomerRepo:     customerRepo,
				Serialize:        true,
			},
			box:         box,
			source:      box,
			idempotency: memory.NewIdempotencyStore(),
			customers:   customerRepo,
		}, nil
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storage{}, fmt.Errorf("mongo connect: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			return storage{}, fmt.Errorf("mongo ping: %w", err)
		}
		customerRepo, err := mongodb.NewCustomerRepository(ctx, client.DB)
		if err != nil {
			return storage{}, fmt.Errorf("customer repository: %w", err)
		}
		box := infraoutbox.NewStore(client.DB)
		return storage{
			factory: mongodb.Factory{
				DB:               client.DB,
				RoomsRepo:        mongodb.NewRoomRepository(client.DB),
				BookingRepo:      mongodb.NewBookingRepository(client.DB),
				PaymentRepo:      mongodb.NewPaymentRepository(client.DB),
				HousekeepingRepo: mongodb.NewTaskRepository(client.DB),
				CustomerRepo:     customerRepo,
			},
			box:         box,
			source:      box,
			idempotency: mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL),
			customers:   customerRepo,
			ready: func() error {
				readyCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(readyCtx)
			},
		}, nil
	default:
		return storage{}, fmt.Errorf("unknown STORAGE_MODE %q", cfg.StorageMode)
	}
}

func buildUploader(cfg config.Config, logger *slog.Logger) s3.Uploader {
	client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("object storage unavailable, photo uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

func wireKafka(app *application, cfg config.Config, bus commands.Bus, source infraoutbox.Source, logger *slog.Logger) error {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	app.closers = append(app.closers, producer.Close)

	worker := &infraoutbox.Worker{
		Store:       source,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
	}
	app.workers = append(app.workers, func(ctx context.Context, logger *slog.Logger) {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	})

	scheduler := &kafka.CheckoutTaskScheduler{Bus: bus, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "hotelops-housekeeping", nil, scheduler)
	if err != nil {
		return fmt.Errorf("kafka consumer: %w", err)
	}
	app.closers = append(app.closers, consumer.Close)

	topic := cfg.KafkaTopicPrefix + "booking.events.v1"
	app.workers = append(app.workers, func(ctx context.Context, logger *slog.Logger) {
		if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("checkout consumer stopped", "error", err)
		}
	})
	return nil
}

func registerCommandHandlers(bus *commands.InMemoryBus, factory uow.UoWFactory, box appoutbox.Outbox, gateway domainpayment.Gateway) {
	encoder := appoutbox.JSONEventEncoder{}

	createBooking := &bookingapp.CreateBookingHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](bus, bookingapp.CreateBookingCommand{}.Key(), createBooking)

	modify := &bookingapp.ModifyBookingHandler{UoWFactory: factory}
	commands.RegisterHandler[bookingapp.AddRoomCommand, *bookingapp.ModifyBookingResult](bus, bookingapp.AddRoomCommand{}.Key(),
		commands.HandlerFunc[bookingapp.AddRoomCommand, *bookingapp.ModifyBookingResult](modify.HandleAddRoom))
	commands.RegisterHandler[bookingapp.RemoveRoomCommand, *bookingapp.ModifyBookingResult](bus, bookingapp.RemoveRoomCommand{}.Key(),
		commands.HandlerFunc[bookingapp.RemoveRoomCommand, *bookingapp.ModifyBookingResult](modify.HandleRemoveRoom))
	commands.RegisterHandler[bookingapp.ApplyDiscountCommand, *bookingapp.ModifyBookingResult](bus, bookingapp.ApplyDiscountCommand{}.Key(),
		commands.HandlerFunc[bookingapp.ApplyDiscountCommand, *bookingapp.ModifyBookingResult](modify.HandleApplyDiscount))

	cancelBooking := &bookingapp.CancelBookingHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](bus, bookingapp.CancelBookingCommand{}.Key(), cancelBooking)

	occupancy := &bookingapp.OccupancyHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[bookingapp.CheckInBookingCommand, *bookingapp.OccupancyResult](bus, bookingapp.CheckInBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CheckInBookingCommand, *bookingapp.OccupancyResult](occupancy.HandleCheckIn))
	commands.RegisterHandler[bookingapp.CheckOutBookingCommand, *bookingapp.OccupancyResult](bus, bookingapp.CheckOutBookingCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CheckOutBookingCommand, *bookingapp.OccupancyResult](occupancy.HandleCheckOut))
	commands.RegisterHandler[bookingapp.CheckInRoomCommand, *bookingapp.OccupancyResult](bus, bookingapp.CheckInRoomCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CheckInRoomCommand, *bookingapp.OccupancyResult](occupancy.HandleCheckInRoom))
	commands.RegisterHandler[bookingapp.CheckOutRoomCommand, *bookingapp.OccupancyResult](bus, bookingapp.CheckOutRoomCommand{}.Key(),
		commands.HandlerFunc[bookingapp.CheckOutRoomCommand, *bookingapp.OccupancyResult](occupancy.HandleCheckOutRoom))

	noShow := &bookingapp.MarkNoShowHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[bookingapp.MarkNoShowCommand, *bookingapp.MarkNoShowResult](bus, bookingapp.MarkNoShowCommand{}.Key(), noShow)

	createPayment := &paymentapp.CreatePaymentHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[paymentapp.CreatePaymentCommand, *paymentapp.CreatePaymentResult](bus, paymentapp.CreatePaymentCommand{}.Key(), createPayment)

	processPayment := &paymentapp.ProcessPaymentHandler{UoWFactory: factory, Gateway: gateway, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[paymentapp.ProcessPaymentCommand, *paymentapp.ProcessPaymentResult](bus, paymentapp.ProcessPaymentCommand{}.Key(), processPayment)

	refunds := &paymentapp.RefundHandler{UoWFactory: factory, Gateway: gateway, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[paymentapp.RequestRefundCommand, *paymentapp.RefundResult](bus, paymentapp.RequestRefundCommand{}.Key(),
		commands.HandlerFunc[paymentapp.RequestRefundCommand, *paymentapp.RefundResult](refunds.HandleRequest))
	commands.RegisterHandler[paymentapp.ProcessRefundCommand, *paymentapp.RefundResult](bus, paymentapp.ProcessRefundCommand{}.Key(),
		commands.HandlerFunc[paymentapp.ProcessRefundCommand, *paymentapp.RefundResult](refunds.HandleProcess))
	commands.RegisterHandler[paymentapp.CancelRefundCommand, *paymentapp.RefundResult](bus, paymentapp.CancelRefundCommand{}.Key(),
		commands.HandlerFunc[paymentapp.CancelRefundCommand, *paymentapp.RefundResult](refunds.HandleCancel))

	tasks := &housekeepingapp.TaskHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[housekeepingapp.CreateTaskCommand, *housekeepingapp.TaskResult](bus, housekeepingapp.CreateTaskCommand{}.Key(),
		commands.HandlerFunc[housekeepingapp.CreateTaskCommand, *housekeepingapp.TaskResult](tasks.HandleCreate))
	commands.RegisterHandler[housekeepingapp.StartTaskCommand, *housekeepingapp.TaskResult](bus, housekeepingapp.StartTaskCommand{}.Key(),
		commands.HandlerFunc[housekeepingapp.StartTaskCommand, *housekeepingapp.TaskResult](tasks.HandleStart))
	commands.RegisterHandler[housekeepingapp.CompleteTaskCommand, *housekeepingapp.TaskResult](bus, housekeepingapp.CompleteTaskCommand{}.Key(),
		commands.HandlerFunc[housekeepingapp.CompleteTaskCommand, *housekeepingapp.TaskResult](tasks.HandleComplete))
	commands.RegisterHandler[housekeepingapp.CancelTaskCommand, *housekeepingapp.TaskResult](bus, housekeepingapp.CancelTaskCommand{}.Key(),
		commands.HandlerFunc[housekeepingapp.CancelTaskCommand, *housekeepingapp.TaskResult](tasks.HandleCancel))
	commands.RegisterHandler[housekeepingapp.ReportDamageCommand, *housekeepingapp.TaskResult](bus, housekeepingapp.ReportDamageCommand{}.Key(),
		commands.HandlerFunc[housekeepingapp.ReportDamageCommand, *housekeepingapp.TaskResult](tasks.HandleReportDamage))

	rooms := &roomsapp.RoomHandler{UoWFactory: factory, Outbox: box, Encoder: encoder}
	commands.RegisterHandler[roomsapp.CreateRoomCommand, *roomsapp.RoomResult](bus, roomsapp.CreateRoomCommand{}.Key(),
		commands.HandlerFunc[roomsapp.CreateRoomCommand, *roomsapp.RoomResult](rooms.HandleCreate))
	commands.RegisterHandler[roomsapp.StartMaintenanceCommand, *roomsapp.RoomResult](bus, roomsapp.StartMaintenanceCommand{}.Key(),
		commands.HandlerFunc[roomsapp.StartMaintenanceCommand, *roomsapp.RoomResult](rooms.HandleStartMaintenance))
	commands.RegisterHandler[roomsapp.EndMaintenanceCommand, *roomsapp.RoomResult](bus, roomsapp.EndMaintenanceCommand{}.Key(),
		commands.HandlerFunc[roomsapp.EndMaintenanceCommand, *roomsapp.RoomResult](rooms.HandleEndMaintenance))
	commands.RegisterHandler[roomsapp.AttachPhotoCommand, *roomsapp.RoomResult](bus, roomsapp.AttachPhotoCommand{}.Key(),
		commands.HandlerFunc[roomsapp.AttachPhotoCommand, *roomsapp.RoomResult](rooms.HandleAttachPhoto))
}

func registerQueryHandlers(bus *queries.InMemoryBus, factory uow.UoWFactory) {
	views := &viewsapp.QueryHandler{UoWFactory: factory}
	queries.RegisterHandler[viewsapp.GetBookingQuery, *dto.BookingSummary](bus, viewsapp.GetBookingQuery{}.Key(),
		queries.HandlerFunc[viewsapp.GetBookingQuery, *dto.BookingSummary](views.HandleGetBooking))
	queries.RegisterHandler[viewsapp.ListCustomerBookingsQuery, *dto.BookingCollection](bus, viewsapp.ListCustomerBookingsQuery{}.Key(),
		queries.HandlerFunc[viewsapp.ListCustomerBookingsQuery, *dto.BookingCollection](views.HandleListCustomerBookings))
	queries.RegisterHandler[viewsapp.ListAvailableRoomsQuery, *dto.RoomCollection](bus, viewsapp.ListAvailableRoomsQuery{}.Key(),
		queries.HandlerFunc[viewsapp.ListAvailableRoomsQuery, *dto.RoomCollection](views.HandleListAvailableRooms))
	queries.RegisterHandler[viewsapp.GetPaymentByBookingQuery, *dto.PaymentSummary](bus, viewsapp.GetPaymentByBookingQuery{}.Key(),
		queries.HandlerFunc[viewsapp.GetPaymentByBookingQuery, *dto.PaymentSummary](views.HandleGetPaymentByBooking))
	queries.RegisterHandler[viewsapp.ListCleaningTasksQuery, *dto.CleaningTaskCollection](bus, viewsapp.ListCleaningTasksQuery{}.Key(),
		queries.HandlerFunc[viewsapp.ListCleaningTasksQuery, *dto.CleaningTaskCollection](views.HandleListCleaningTasks))
}
