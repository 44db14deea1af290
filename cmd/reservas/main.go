package main

import (
	"reservas/internal/auth"
	"reservas/internal/bookings/handler"
	"reservas/internal/bookings/parser"
	"reservas/internal/bookings/repository"
	"reservas/internal/bookings/service"
	"reservas/internal/bookings/validator"
	"reservas/pkg/app"
	"reservas/pkg/client"
	"reservas/pkg/config"
	"reservas/pkg/kafka"
)

const ServiceName = "reservas"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Reservas service")

	serverApp := app.NewApplication(cfg)

	shopify := client.NewShopify(client.ShopifyOptions{
		Domain:     cfg.ShopDomain,
		Token:      cfg.AdminToken,
		APIVersion: cfg.APIVersion,
		PageSize:   cfg.PageSize,
		Backoff:    cfg.UpstreamBackoff,
		RPS:        cfg.UpstreamRPS,
		Timeout:    cfg.UpstreamTimeout,
	}, cfg.Log)

	bookingService := initServices(cfg, shopify, serverApp)

	guard := auth.SessionGuard(cfg.JWTSecret, cfg.Log)
	serverApp.SetApp(
		handler.NewHealthHandler(shopify, cfg.Log),
		auth.NewHandler(cfg.AuthUsers, cfg.JWTSecret, cfg.SessionTTL, cfg.Log),
		handler.NewBookingHandler(bookingService, guard, cfg.SlotCapacity, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, shopify *client.Shopify, serverApp *app.Application) service.BookingService {
	attendanceRepo := repository.NewAttendanceRepository(shopify, cfg.Log)
	lineParser := parser.New(cfg.WorkshopSKU, cfg.Log)
	attendanceValidator := validator.NewAttendanceValidator(cfg.Log)

	bookingService := service.NewBookingService(
		shopify,
		attendanceRepo,
		lineParser,
		attendanceValidator,
		initPublisher(cfg, serverApp),
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "workshop_sku", cfg.WorkshopSKU)
	return bookingService
}

func initPublisher(cfg *config.Config, serverApp *app.Application) service.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("No Kafka brokers configured, attendance events disabled")
		return service.NoopPublisher{}
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaAttendanceTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	serverApp.OnShutdown(producer.Close)

	cfg.Log.Info("Attendance event producer initialized", "topic", cfg.KafkaAttendanceTopic)
	return service.NewKafkaPublisher(producer)
}
