package main

import (
	"facilio/internal/events/handler"
	"facilio/internal/events/repository"
	"facilio/internal/events/service"
	"facilio/internal/events/validator"
	"facilio/pkg/app"
	"facilio/pkg/config"
)

const ServiceName = "events"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Events service")
	eventService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewEventHandler(eventService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.EventService {
	eventValidator := validator.NewEventValidator(cfg.Log)
	eventRepo := repository.NewMongoEventRepository(cfg)
	eventService := service.NewEventService(eventRepo, eventValidator, cfg)

	cfg.Log.Info("Event service initialized", "database", cfg.MongoDatabaseName, "time_zone", cfg.Location.String())
	return eventService
}
