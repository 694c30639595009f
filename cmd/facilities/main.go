package main

import (
	"facilio/internal/facilities/handler"
	"facilio/internal/facilities/repository"
	"facilio/internal/facilities/service"
	"facilio/internal/facilities/validator"
	"facilio/pkg/app"
	"facilio/pkg/config"
)

const ServiceName = "facilities"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Facilities service")
	facilityService, subfacilityService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewFacilityHandler(facilityService, subfacilityService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.FacilityService, service.SubfacilityService) {
	facilityValidator := validator.NewFacilityValidator(cfg.Log)
	facilityRepo := repository.NewMongoFacilityRepository(cfg)
	subfacilityRepo := repository.NewMongoSubfacilityRepository(cfg)

	facilityService := service.NewFacilityService(facilityRepo, subfacilityRepo, facilityValidator, cfg)
	subfacilityService := service.NewSubfacilityService(subfacilityRepo, facilityRepo, facilityValidator, cfg)

	cfg.Log.Info("Facility services initialized", "database", cfg.MongoDatabaseName)
	return facilityService, subfacilityService
}
