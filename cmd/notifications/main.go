package main

import (
	"facilio/internal/notifications/consumer"
	"facilio/internal/notifications/handler"
	"facilio/internal/notifications/repository"
	"facilio/internal/notifications/service"
	"facilio/pkg/app"
	"facilio/pkg/config"
	"facilio/pkg/kafka"
	kafka_config "facilio/pkg/kafka/config"
	kafkamiddleware "facilio/pkg/kafka/middleware"
)

const ServiceName = "notifications"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Notifications service")
	serverApp := app.NewApplication(cfg)

	notificationService := initServices(cfg)
	initConsumer(cfg, serverApp, notificationService)

	serverApp.SetApp(handler.NewNotificationHandler(notificationService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.NotificationService {
	notificationRepo := repository.NewMongoNotificationRepository(cfg)
	notificationService := service.NewNotificationService(notificationRepo, cfg)

	cfg.Log.Info("Notification service initialized", "database", cfg.MongoDatabaseName)
	return notificationService
}

func initConsumer(cfg *config.Config, serverApp *app.Application, svc service.NotificationService) {
	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	bookingEvents, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.BookingEventsTopic,
		kafkaCfg.NotificationsGroupID,
		kafkaCfg.BookingEventsDLQTopic,
		consumer.NewBookingEventHandler(svc, cfg.Log.Component("consumer")),
		cfg.Log.Component("kafka"),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}

	metrics := kafkamiddleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		bookingEvents.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
		bookingEvents.Use(metrics.ConsumerMiddleware())
	}

	serverApp.AddWorker(bookingEvents)
	serverApp.OnShutdown(func() {
		metrics.Log(cfg.Log)
		if err := bookingEvents.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	})

	cfg.Log.Info("Booking events consumer initialized",
		"topic", kafkaCfg.BookingEventsTopic,
		"group_id", kafkaCfg.NotificationsGroupID,
	)
}
