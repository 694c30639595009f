package service

import (
	"context"
	"errors"
	"time"

	eventserrors "facilio/internal/events/errors"
	"facilio/internal/events/repository"
	"facilio/internal/events/validator"
	"facilio/pkg/availability"
	"facilio/pkg/config"
	apperrors "facilio/pkg/errors"
	"facilio/pkg/model"
	"facilio/pkg/sanitizer"
	"facilio/pkg/validation"
)

type ListFilter struct {
	FacilityID    string
	SubfacilityID string
	Date          string
}

type EventService interface {
	Create(ctx context.Context, req *model.EventRequest) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context, filter ListFilter) ([]model.Event, error)
	Delete(ctx context.Context, id string) error
}

type eventService struct {
	repo      repository.EventRepository
	validator *validator.EventValidator
	cfg       *config.Config
}

func NewEventService(repo repository.EventRepository, validator *validator.EventValidator, cfg *config.Config) EventService {
	return &eventService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *eventService) location() *time.Location {
	if s.cfg.Location != nil {
		return s.cfg.Location
	}
	return time.UTC
}

func (s *eventService) Create(ctx context.Context, req *model.EventRequest) (*model.Event, error) {
	req.Title = sanitizer.NormalizeText(req.Title)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Event validation failed", "facility_id", req.FacilityID, "error", err)
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Event validation failed", verrs.Details())
		}
		return nil, apperrors.Validation("Event validation failed", map[string]any{"error": err.Error()})
	}

	start, _ := time.Parse(time.RFC3339, req.Start)
	end, _ := time.Parse(time.RFC3339, req.End)
	if !end.After(start) {
		return nil, apperrors.Validation("Event validation failed", map[string]any{
			"fields": map[string]any{"end": "end must be after start"},
		})
	}

	loc := s.location()
	if start.In(loc).Format(model.DateFormat) != end.In(loc).Format(model.DateFormat) {
		s.cfg.Log.Warn("Event spans midnight, only the hour range on its start day blocks slots",
			"facility_id", req.FacilityID,
			"start", req.Start,
			"end", req.End,
		)
	}

	if err := s.repo.EnsureTarget(ctx, req.FacilityID, req.SubfacilityID); err != nil {
		return nil, s.mapError(err, req.FacilityID, "Failed to verify facility")
	}

	ev := &model.Event{
		FacilityID:    req.FacilityID,
		SubfacilityID: req.SubfacilityID,
		Title:         req.Title,
		Start:         start.UTC(),
		End:           end.UTC(),
	}
	if err := s.repo.Create(ctx, ev); err != nil {
		s.cfg.Log.Error("Failed to create event", "facility_id", req.FacilityID, "error", err)
		return nil, apperrors.Internal("Failed to create event", err)
	}

	s.cfg.Log.Info("Event created successfully",
		"id", ev.ID,
		"facility_id", ev.FacilityID,
		"subfacility_id", ev.SubfacilityID,
		"start", req.Start,
		"end", req.End,
	)
	return s.present(*ev), nil
}

func (s *eventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}

	ev, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id, "Failed to retrieve event")
	}
	return s.present(*ev), nil
}

// List returns the events of a facility. With a date, only events starting on
// that calendar day in the facility time zone are kept; events whose start
// cannot be read are skipped.
func (s *eventService) List(ctx context.Context, filter ListFilter) ([]model.Event, error) {
	if filter.FacilityID == "" {
		return nil, apperrors.MissingParameters("facility_id")
	}
	if filter.Date != "" {
		if _, err := time.Parse(model.DateFormat, filter.Date); err != nil {
			return nil, apperrors.InvalidInput("date must use the YYYY-MM-DD format")
		}
	}

	events, err := s.repo.FindByFacility(ctx, filter.FacilityID, filter.SubfacilityID)
	if err != nil {
		s.cfg.Log.Error("Failed to list events", "facility_id", filter.FacilityID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve events", err)
	}

	loc := s.location()
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if filter.Date != "" {
			start, ok := availability.NormalizeTimestamp(ev.Start, loc)
			if !ok {
				s.cfg.Log.Warn("Skipping event with unreadable start", "id", ev.ID, "facility_id", ev.FacilityID)
				continue
			}
			if start.In(loc).Format(model.DateFormat) != filter.Date {
				continue
			}
		}
		out = append(out, *s.present(ev))
	}
	return out, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Event ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapError(err, id, "Failed to delete event")
	}

	s.cfg.Log.Info("Event deleted successfully", "id", id)
	return nil
}

// present rewrites readable start and end values as times in the facility
// zone, so legacy representations serialize like new ones.
func (s *eventService) present(ev model.Event) *model.Event {
	loc := s.location()
	if t, ok := availability.NormalizeTimestamp(ev.Start, loc); ok {
		ev.Start = t.In(loc)
	}
	if t, ok := availability.NormalizeTimestamp(ev.End, loc); ok {
		ev.End = t.In(loc)
	}
	return &ev
}

func (s *eventService) mapError(err error, id, message string) error {
	switch {
	case errors.Is(err, eventserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Event", id)
	case errors.Is(err, eventserrors.ErrFacilityNotFound):
		return apperrors.NotFoundWithID("Facility", id)
	case errors.Is(err, eventserrors.ErrSubfacilityNotFound):
		return apperrors.NotFound("Subfacility")
	case errors.Is(err, eventserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid ID format")
	default:
		s.cfg.Log.Error(message, "id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}

