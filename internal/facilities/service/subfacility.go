package service

import (
	"context"
	"errors"

	facilitieserrors "facilio/internal/facilities/errors"
	"facilio/internal/facilities/repository"
	"facilio/internal/facilities/validator"
	"facilio/pkg/config"
	apperrors "facilio/pkg/errors"
	"facilio/pkg/model"
	"facilio/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type SubfacilityService interface {
	Create(ctx context.Context, facilityID string, sub *model.Subfacility) error
	GetByID(ctx context.Context, id string) (*model.Subfacility, error)
	ListByFacility(ctx context.Context, facilityID string) ([]*model.Subfacility, error)
	Update(ctx context.Context, id string, updates *model.SubfacilityUpdate) (*model.Subfacility, error)
	Delete(ctx context.Context, id string) error
}

type subfacilityService struct {
	repo       repository.SubfacilityRepository
	facilities repository.FacilityRepository
	validator  *validator.FacilityValidator
	cfg        *config.Config
}

func NewSubfacilityService(
	repo repository.SubfacilityRepository,
	facilities repository.FacilityRepository,
	validator *validator.FacilityValidator,
	cfg *config.Config,
) SubfacilityService {
	return &subfacilityService{
		repo:       repo,
		facilities: facilities,
		validator:  validator,
		cfg:        cfg,
	}
}

func (s *subfacilityService) Create(ctx context.Context, facilityID string, sub *model.Subfacility) error {
	sub.ID = ""
	sub.FacilityID = facilityID
	sub.Bookings = []model.Booking{}
	sub.Name = sanitizer.NormalizeText(sub.Name)
	sub.Description = sanitizer.NormalizeDescription(sub.Description)

	if err := s.validator.ValidateSubfacility(sub); err != nil {
		s.cfg.Log.Warn("Subfacility validation failed", "facility_id", facilityID, "name", sub.Name, "error", err)
		return validationError("Subfacility validation failed", err)
	}

	parent, err := s.facilities.FindByID(ctx, facilityID)
	if err != nil {
		return s.mapParentError(err, facilityID)
	}
	if sub.Capacity > parent.Capacity {
		return apperrors.Validation("Subfacility validation failed", map[string]any{
			"fields": map[string]any{"capacity": "capacity cannot exceed the capacity of the facility"},
		})
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		s.cfg.Log.Error("Failed to create subfacility", "facility_id", facilityID, "error", err)
		return apperrors.Internal("Failed to create subfacility", err)
	}

	s.cfg.Log.Info("Subfacility created successfully",
		"id", sub.ID,
		"facility_id", facilityID,
		"name", sub.Name,
	)
	return nil
}

func (s *subfacilityService) GetByID(ctx context.Context, id string) (*model.Subfacility, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Subfacility ID cannot be empty")
	}

	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve subfacility")
	}
	return sub, nil
}

func (s *subfacilityService) ListByFacility(ctx context.Context, facilityID string) ([]*model.Subfacility, error) {
	if facilityID == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}

	if _, err := s.facilities.FindByID(ctx, facilityID); err != nil {
		return nil, s.mapParentError(err, facilityID)
	}

	subs, err := s.repo.FindByFacility(ctx, facilityID)
	if err != nil {
		s.cfg.Log.Error("Failed to list subfacilities", "facility_id", facilityID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve subfacilities", err)
	}
	return subs, nil
}

func (s *subfacilityService) Update(ctx context.Context, id string, updates *model.SubfacilityUpdate) (*model.Subfacility, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Subfacility ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to check subfacility existence")
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeText(updates.Name)
	}
	if updates.Description != nil {
		merged.Description = sanitizer.NormalizeDescription(*updates.Description)
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}

	if err := s.validator.ValidateSubfacility(&merged); err != nil {
		s.cfg.Log.Warn("Subfacility validation failed", "id", id, "error", err)
		return nil, validationError("Subfacility validation failed", err)
	}

	if err := s.repo.Update(ctx, id, &merged); err != nil {
		return nil, s.mapError(err, id, "Failed to update subfacility")
	}

	s.cfg.Log.Info("Subfacility updated successfully", "id", id, "name", merged.Name)
	return &merged, nil
}

// Delete removes the subfacility and the events scheduled on it.
func (s *subfacilityService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Subfacility ID cannot be empty")
	}

	var eventsDeleted int64
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return err
		}
		var err error
		eventsDeleted, err = s.repo.DeleteEvents(sessCtx, id)
		return err
	})
	if err != nil {
		return s.mapError(err, id, "Failed to delete subfacility")
	}

	s.cfg.Log.Info("Subfacility deleted successfully", "id", id, "events_deleted", eventsDeleted)
	return nil
}

func (s *subfacilityService) mapError(err error, id, message string) error {
	switch {
	case errors.Is(err, facilitieserrors.ErrSubfacilityNotFound):
		return apperrors.NotFoundWithID("Subfacility", id)
	case errors.Is(err, facilitieserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid subfacility ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *subfacilityService) mapParentError(err error, facilityID string) error {
	switch {
	case errors.Is(err, facilitieserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Facility", facilityID)
	case errors.Is(err, facilitieserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid facility ID format")
	default:
		s.cfg.Log.Error("Failed to load parent facility", "facility_id", facilityID, "error", err)
		return apperrors.Internal("Failed to retrieve facility", err)
	}
}
