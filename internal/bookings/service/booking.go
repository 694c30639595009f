package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	bookingserrors "facilio/internal/bookings/errors"
	"facilio/internal/bookings/repository"
	"facilio/internal/bookings/validator"
	"facilio/pkg/availability"
	"facilio/pkg/config"
	apperrors "facilio/pkg/errors"
	"facilio/pkg/model"
	"facilio/pkg/validation"

	"github.com/google/uuid"
)

// EventPublisher announces booking lifecycle changes to other services.
type EventPublisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
}

// AvailabilityNotifier is told whenever the free slots of a unit may have
// changed, so connected clients can refresh.
type AvailabilityNotifier interface {
	AvailabilityChanged(facilityID, subfacilityID, date string)
}

type ListFilter struct {
	FacilityID    string
	SubfacilityID string
	Date          string
	Status        model.BookingStatus
}

type BookingService interface {
	Availability(ctx context.Context, q availability.Query) ([]model.TimeSlot, error)
	Check(ctx context.Context, req *model.AvailabilityCheck) (*model.AvailabilityCheckResponse, error)
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	List(ctx context.Context, filter ListFilter) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, bookingID string, update *model.BookingStatusUpdate) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	resolver  *availability.Resolver
	publisher EventPublisher
	notifier  AvailabilityNotifier
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	resolver *availability.Resolver,
	publisher EventPublisher,
	notifier AvailabilityNotifier,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: validator,
		resolver:  resolver,
		publisher: publisher,
		notifier:  notifier,
		cfg:       cfg,
	}
}

func (s *bookingService) Availability(ctx context.Context, q availability.Query) ([]model.TimeSlot, error) {
	if q.FacilityID == "" || q.Date == "" {
		return nil, apperrors.MissingParameters(missing(
			param{"facility_id", q.FacilityID},
			param{"date", q.Date},
		)...)
	}
	if err := validateDate(q.Date); err != nil {
		return nil, err
	}

	target := repository.Target{FacilityID: q.FacilityID, SubfacilityID: q.SubfacilityID}
	unit, events, err := s.loadSnapshot(ctx, target)
	if err != nil {
		return nil, err
	}

	slots, err := s.resolver.Resolve(q, unit.Bookings, events)
	if err != nil {
		if errors.Is(err, availability.ErrMissingParameters) {
			return nil, apperrors.MissingParameters()
		}
		return nil, apperrors.Internal("Failed to resolve availability", err)
	}
	return slots, nil
}

func (s *bookingService) Check(ctx context.Context, req *model.AvailabilityCheck) (*model.AvailabilityCheckResponse, error) {
	if req.FacilityID == "" || req.Date == "" || req.Time == "" {
		return nil, apperrors.MissingParameters(missing(
			param{"facility_id", req.FacilityID},
			param{"date", req.Date},
			param{"time", req.Time},
		)...)
	}
	if !model.IsTimeSlot(req.Time) {
		return nil, apperrors.InvalidInput("time must be one of the bookable slots")
	}

	slots, err := s.Availability(ctx, availability.Query{
		FacilityID:    req.FacilityID,
		SubfacilityID: req.SubfacilityID,
		Date:          req.Date,
	})
	if err != nil {
		return nil, err
	}

	return &model.AvailabilityCheckResponse{
		Available: slices.Contains(slots, model.TimeSlot(req.Time)),
		Slots:     slots,
	}, nil
}

// Create re-derives availability and appends a pending booking. The check and
// the write are separate operations without a lock, so two concurrent
// requests for the same slot can both succeed.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "facility_id", req.FacilityID, "error", err)
		return nil, validationError("Invalid booking input", err)
	}

	target := repository.Target{FacilityID: req.FacilityID, SubfacilityID: req.SubfacilityID}
	unit, events, err := s.loadSnapshot(ctx, target)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateCapacity(req.Attendees, unit.Capacity); err != nil {
		return nil, validationError("Invalid booking input", err)
	}

	slots, err := s.resolver.Resolve(availability.Query{
		FacilityID:    req.FacilityID,
		SubfacilityID: req.SubfacilityID,
		Date:          req.Date,
	}, unit.Bookings, events)
	if err != nil {
		return nil, apperrors.Internal("Failed to resolve availability", err)
	}
	if !slices.Contains(slots, model.TimeSlot(req.Time)) {
		s.cfg.Log.Info("Booking rejected, slot unavailable",
			"facility_id", req.FacilityID,
			"subfacility_id", req.SubfacilityID,
			"date", req.Date,
			"time", req.Time,
		)
		return nil, apperrors.Conflict("Time slot is not available").WithDetails(map[string]any{
			"date":  req.Date,
			"time":  req.Time,
			"slots": slots,
		})
	}

	booking := &model.Booking{
		ID:        uuid.NewString(),
		Date:      req.Date,
		Time:      model.TimeSlot(req.Time),
		Status:    model.StatusPending,
		Attendees: req.Attendees,
		UserID:    req.UserID,
		BookedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.AddBooking(ctx, target, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "facility_id", req.FacilityID, "error", err)
		return nil, mapRepositoryError(err, target, "Failed to create booking")
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"facility_id", req.FacilityID,
		"subfacility_id", req.SubfacilityID,
		"date", booking.Date,
		"time", booking.Time,
	)

	s.announce(ctx, target, booking, model.BookingEventCreated, "")
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, filter ListFilter) ([]model.Booking, error) {
	if filter.FacilityID == "" {
		return nil, apperrors.MissingParameters("facility_id")
	}
	if filter.Date != "" {
		if err := validateDate(filter.Date); err != nil {
			return nil, err
		}
	}
	switch filter.Status {
	case "", model.StatusPending, model.StatusApproved, model.StatusRejected:
	default:
		return nil, apperrors.InvalidInput("status must be one of: pending, approved, rejected")
	}

	target := repository.Target{FacilityID: filter.FacilityID, SubfacilityID: filter.SubfacilityID}
	unit, err := s.repo.FindUnit(ctx, target)
	if err != nil {
		return nil, mapRepositoryError(err, target, "Failed to retrieve bookings")
	}

	bookings := make([]model.Booking, 0, len(unit.Bookings))
	for _, b := range unit.Bookings {
		if filter.Date != "" && b.Date != filter.Date {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		bookings = append(bookings, b)
	}
	slices.SortStableFunc(bookings, func(a, b model.Booking) int {
		if a.Date != b.Date {
			return cmp.Compare(a.Date, b.Date)
		}
		return cmp.Compare(a.Time, b.Time)
	})
	return bookings, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, bookingID string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		s.cfg.Log.Warn("Booking status update validation failed", "id", bookingID, "error", err)
		return nil, validationError("Invalid status update", err)
	}

	target := repository.Target{FacilityID: update.FacilityID, SubfacilityID: update.SubfacilityID}
	unit, err := s.repo.FindUnit(ctx, target)
	if err != nil {
		return nil, mapRepositoryError(err, target, "Failed to retrieve booking")
	}

	idx := slices.IndexFunc(unit.Bookings, func(b model.Booking) bool { return b.ID == bookingID })
	if idx < 0 {
		return nil, apperrors.NotFoundWithID("Booking", bookingID)
	}
	booking := unit.Bookings[idx]
	previous := booking.Status

	if !previous.CanTransitionTo(update.Status) {
		return nil, apperrors.Conflict("Booking status has already been decided").WithDetails(map[string]any{
			"id":     bookingID,
			"status": previous,
		})
	}

	if err := s.repo.UpdateStatus(ctx, target, bookingID, previous, update.Status); err != nil {
		return nil, mapRepositoryError(err, target, "Failed to update booking status")
	}

	booking.Status = update.Status
	s.cfg.Log.Info("Booking status updated",
		"id", bookingID,
		"facility_id", update.FacilityID,
		"subfacility_id", update.SubfacilityID,
		"from", previous,
		"to", update.Status,
	)

	s.announce(ctx, target, &booking, model.BookingEventStatusChanged, previous)
	return &booking, nil
}

// loadSnapshot reads the unit and the candidate events concurrently. Either
// failure fails the whole call.
func (s *bookingService) loadSnapshot(ctx context.Context, target repository.Target) (*repository.BookableUnit, []model.Event, error) {
	var unit *repository.BookableUnit
	var events []model.Event
	var errUnit, errEvents error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		unit, errUnit = s.repo.FindUnit(ctx, target)
		if errUnit != nil {
			s.cfg.Log.Error("Failed to load bookable unit",
				"facility_id", target.FacilityID,
				"subfacility_id", target.SubfacilityID,
				"error", errUnit,
			)
		}
	}()

	go func() {
		defer wg.Done()
		events, errEvents = s.repo.FindEvents(ctx, target)
		if errEvents != nil {
			s.cfg.Log.Error("Failed to load events", "facility_id", target.FacilityID, "error", errEvents)
		}
	}()

	wg.Wait()
	if errUnit != nil {
		return nil, nil, mapRepositoryError(errUnit, target, "Failed to retrieve bookings")
	}
	if errEvents != nil {
		return nil, nil, apperrors.Internal("Failed to retrieve events", errEvents)
	}
	return unit, events, nil
}

// announce publishes the lifecycle event and pings websocket subscribers.
// Failures are logged; the booking write has already succeeded.
func (s *bookingService) announce(ctx context.Context, target repository.Target, booking *model.Booking, eventType string, previous model.BookingStatus) {
	if s.publisher != nil {
		event := model.BookingEvent{
			Type:           eventType,
			BookingID:      booking.ID,
			FacilityID:     target.FacilityID,
			SubfacilityID:  target.SubfacilityID,
			UserID:         booking.UserID,
			Date:           booking.Date,
			Time:           booking.Time,
			Status:         booking.Status,
			PreviousStatus: previous,
			OccurredAt:     time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.cfg.Log.Error("Failed to publish booking event", "type", eventType, "id", booking.ID, "error", err)
		}
	}
	if s.notifier != nil {
		s.notifier.AvailabilityChanged(target.FacilityID, target.SubfacilityID, booking.Date)
	}
}

func mapRepositoryError(err error, target repository.Target, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid facility or subfacility ID format")
	case errors.Is(err, bookingserrors.ErrFacilityNotFound):
		return apperrors.NotFoundWithID("Facility", target.FacilityID)
	case errors.Is(err, bookingserrors.ErrSubfacilityNotFound):
		return apperrors.NotFoundWithID("Subfacility", target.SubfacilityID)
	case errors.Is(err, bookingserrors.ErrStatusConflict):
		return apperrors.Conflict("Booking status has already been decided")
	default:
		return apperrors.Internal(message, err)
	}
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func validateDate(date string) error {
	if _, err := time.Parse(model.DateFormat, date); err != nil {
		return apperrors.InvalidInput("date must use the YYYY-MM-DD format")
	}
	return nil
}

type param struct {
	name  string
	value string
}

func missing(params ...param) []string {
	var names []string
	for _, p := range params {
		if p.value == "" {
			names = append(names, p.name)
		}
	}
	return names
}
