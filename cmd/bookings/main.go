package main

import (
	"facilio/internal/bookings/handler"
	"facilio/internal/bookings/publisher"
	"facilio/internal/bookings/realtime"
	"facilio/internal/bookings/repository"
	"facilio/internal/bookings/service"
	"facilio/internal/bookings/validator"
	"facilio/pkg/app"
	"facilio/pkg/availability"
	"facilio/pkg/config"
	"facilio/pkg/kafka"
	kafka_config "facilio/pkg/kafka/config"
	kafkamiddleware "facilio/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	hub := realtime.NewHub(cfg.CORSAllowedOrigins, cfg.Log.Component("realtime"))
	serverApp.OnShutdown(hub.Close)

	events := initPublisher(cfg, serverApp)
	bookingService := initServices(cfg, events, hub)

	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		handler.NewStreamHandler(hub),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, serverApp *app.Application) service.EventPublisher {
	if !cfg.PublishBookingEvents {
		cfg.Log.Info("Booking event publishing disabled")
		return publisher.NewNoopPublisher(cfg.Log)
	}

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.BookingEventsTopic, kafkaCfg.BookingEventsDLQTopic, cfg.Log.Component("kafka"))
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafkamiddleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.ProducerMiddleware())
	}

	serverApp.OnShutdown(func() {
		metrics.Log(cfg.Log)
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Booking events publisher initialized", "topic", kafkaCfg.BookingEventsTopic)
	return publisher.NewKafkaPublisher(producer, cfg.Log)
}

func initServices(cfg *config.Config, events service.EventPublisher, hub *realtime.Hub) service.BookingService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	resolver := availability.NewResolver(cfg.Log.Component("availability"), cfg.Location)
	bookingService := service.NewBookingService(
		bookingRepo,
		bookingValidator,
		resolver,
		events,
		hub,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName, "time_zone", cfg.Location.String())
	return bookingService
}
