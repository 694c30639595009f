package service

import (
	"context"
	"errors"
	"sync"

	facilitieserrors "facilio/internal/facilities/errors"
	"facilio/internal/facilities/repository"
	"facilio/internal/facilities/validator"
	"facilio/pkg/config"
	apperrors "facilio/pkg/errors"
	"facilio/pkg/model"
	"facilio/pkg/sanitizer"
	"facilio/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

type FacilityService interface {
	Create(ctx context.Context, f *model.Facility) error
	GetByID(ctx context.Context, id string) (*model.Facility, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, int64, error)
	Update(ctx context.Context, id string, updates *model.FacilityUpdate) (*model.Facility, error)
	Delete(ctx context.Context, id string) error
}

type facilityService struct {
	repo      repository.FacilityRepository
	subs      repository.SubfacilityRepository
	validator *validator.FacilityValidator
	cfg       *config.Config
}

func NewFacilityService(
	repo repository.FacilityRepository,
	subs repository.SubfacilityRepository,
	validator *validator.FacilityValidator,
	cfg *config.Config,
) FacilityService {
	return &facilityService{
		repo:      repo,
		subs:      subs,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *facilityService) Create(ctx context.Context, f *model.Facility) error {
	s.sanitize(f)
	// Bookings are only ever appended by the bookings service.
	f.ID = ""
	f.Bookings = []model.Booking{}

	if err := s.validator.Validate(f); err != nil {
		s.cfg.Log.Warn("Facility validation failed", "name", f.Name, "error", err)
		return validationError("Facility validation failed", err)
	}

	if err := s.repo.Create(ctx, f); err != nil {
		s.cfg.Log.Error("Failed to create facility", "name", f.Name, "error", err)
		return apperrors.Internal("Failed to create facility", err)
	}

	s.cfg.Log.Info("Facility created successfully",
		"id", f.ID,
		"name", f.Name,
		"capacity", f.Capacity,
	)
	return nil
}

func (s *facilityService) GetByID(ctx context.Context, id string) (*model.Facility, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}

	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve facility")
	}
	return f, nil
}

func (s *facilityService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var facilities []*model.Facility
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count facilities", "error", err)
			errCount = apperrors.Internal("Failed to count facilities", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		facilities, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all facilities",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve facilities", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return facilities, count, nil
}

func (s *facilityService) Update(ctx context.Context, id string, updates *model.FacilityUpdate) (*model.Facility, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Facility ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to check facility existence")
	}

	s.sanitizeUpdate(updates)
	merged := mergeFacilityUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Facility validation failed", "id", id, "name", merged.Name, "error", err)
		return nil, validationError("Facility validation failed", err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update facility", "id", id, "error", err)
		return nil, s.mapError(err, id, "Failed to update facility")
	}

	s.cfg.Log.Info("Facility updated successfully", "id", id, "name", merged.Name)
	return merged, nil
}

// Delete removes the facility together with its subfacilities and events in
// one transaction.
func (s *facilityService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Facility ID cannot be empty")
	}

	var subsDeleted, eventsDeleted int64
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return err
		}

		var err error
		if subsDeleted, err = s.subs.DeleteByFacility(sessCtx, id); err != nil {
			return err
		}
		eventsDeleted, err = s.repo.DeleteEvents(sessCtx, id)
		return err
	})
	if err != nil {
		s.cfg.Log.Error("Failed to delete facility", "id", id, "error", err)
		return s.mapError(err, id, "Failed to delete facility")
	}

	s.cfg.Log.Info("Facility deleted successfully",
		"id", id,
		"subfacilities_deleted", subsDeleted,
		"events_deleted", eventsDeleted,
	)
	return nil
}

func (s *facilityService) mapError(err error, id, message string) error {
	switch {
	case errors.Is(err, facilitieserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Facility", id)
	case errors.Is(err, facilitieserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid facility ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

func (s *facilityService) sanitize(f *model.Facility) {
	f.Name = sanitizer.NormalizeText(f.Name)
	f.Description = sanitizer.NormalizeDescription(f.Description)
	f.ContactPhone = normalizePhone(f.ContactPhone)
	f.WebsiteURL = normalizeURL(f.WebsiteURL)
}

func (s *facilityService) sanitizeUpdate(updates *model.FacilityUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeText(updates.Name)
	}
	if updates.Description != nil {
		normalized := sanitizer.NormalizeDescription(*updates.Description)
		updates.Description = &normalized
	}
	if updates.ContactPhone != nil {
		normalized := normalizePhone(*updates.ContactPhone)
		updates.ContactPhone = &normalized
	}
	if updates.WebsiteURL != nil {
		normalized := normalizeURL(*updates.WebsiteURL)
		updates.WebsiteURL = &normalized
	}
}

func mergeFacilityUpdates(existing *model.Facility, updates *model.FacilityUpdate) *model.Facility {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Coordinates != nil {
		merged.Coordinates = updates.Coordinates
	}
	if updates.ContactPhone != nil {
		merged.ContactPhone = *updates.ContactPhone
	}
	if updates.WebsiteURL != nil {
		merged.WebsiteURL = *updates.WebsiteURL
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}

// normalizePhone keeps unparseable input as typed so validation reports it
// instead of silently dropping it.
func normalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	if normalized := sanitizer.NormalizePhone(phone); normalized != "" {
		return normalized
	}
	return phone
}

func normalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	if normalized := sanitizer.NormalizeURL(raw); normalized != "" {
		return normalized
	}
	return raw
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
