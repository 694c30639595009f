package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	bookingserrors "facilio/internal/bookings/errors"
	"facilio/internal/bookings/repository"
	"facilio/internal/bookings/validator"
	"facilio/pkg/availability"
	"facilio/pkg/config"
	apperrors "facilio/pkg/errors"
	"facilio/pkg/logger"
	"facilio/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	facilityID    = "65a1f0c2e4b0a1b2c3d4e5f6"
	subfacilityID = "65a1f0c2e4b0a1b2c3d4e5f7"
	testDate      = "2024-05-10"
)

type mockRepository struct {
	findUnitFunc     func(ctx context.Context, target repository.Target) (*repository.BookableUnit, error)
	findEventsFunc   func(ctx context.Context, target repository.Target) ([]model.Event, error)
	addBookingFunc   func(ctx context.Context, target repository.Target, booking *model.Booking) error
	updateStatusFunc func(ctx context.Context, target repository.Target, bookingID string, from, to model.BookingStatus) error
}

func (m *mockRepository) FindUnit(ctx context.Context, target repository.Target) (*repository.BookableUnit, error) {
	if m.findUnitFunc != nil {
		return m.findUnitFunc(ctx, target)
	}
	return &repository.BookableUnit{ID: target.FacilityID, Capacity: 10}, nil
}

func (m *mockRepository) FindEvents(ctx context.Context, target repository.Target) ([]model.Event, error) {
	if m.findEventsFunc != nil {
		return m.findEventsFunc(ctx, target)
	}
	return nil, nil
}

func (m *mockRepository) AddBooking(ctx context.Context, target repository.Target, booking *model.Booking) error {
	if m.addBookingFunc != nil {
		return m.addBookingFunc(ctx, target, booking)
	}
	return nil
}

func (m *mockRepository) UpdateStatus(ctx context.Context, target repository.Target, bookingID string, from, to model.BookingStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, target, bookingID, from, to)
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type recordingNotifier struct {
	calls []string
}

func (n *recordingNotifier) AvailabilityChanged(facilityID, subfacilityID, date string) {
	n.calls = append(n.calls, facilityID+"|"+subfacilityID+"|"+date)
}

type fixture struct {
	svc       BookingService
	repo      *mockRepository
	publisher *recordingPublisher
	notifier  *recordingNotifier
}

func newFixture() *fixture {
	log := logger.New(logger.Config{Output: io.Discard})
	cfg := &config.Config{Log: log, Location: time.UTC}
	f := &fixture{
		repo:      &mockRepository{},
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
	}
	f.svc = NewBookingService(
		f.repo,
		validator.NewBookingValidator(log),
		availability.NewResolver(log, time.UTC),
		f.publisher,
		f.notifier,
		cfg,
	)
	return f
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	return appErr.StatusCode()
}

func TestAvailability_MissingParameters(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		q    availability.Query
	}{
		{"no facility", availability.Query{Date: testDate}},
		{"no date", availability.Query{FacilityID: facilityID}},
		{"nothing", availability.Query{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := f.svc.Availability(context.Background(), tt.q)
			require.Error(t, err)
			assert.Nil(t, slots)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
			assert.Equal(t, apperrors.MissingParametersMessage, apperrors.AsAppError(err).Message)
		})
	}
}

func TestAvailability_InvalidDate(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Availability(context.Background(), availability.Query{FacilityID: facilityID, Date: "10/05/2024"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestAvailability_CombinesBookingsAndEvents(t *testing.T) {
	f := newFixture()
	f.repo.findUnitFunc = func(_ context.Context, target repository.Target) (*repository.BookableUnit, error) {
		assert.Equal(t, facilityID, target.FacilityID)
		return &repository.BookableUnit{
			ID: facilityID,
			Bookings: []model.Booking{
				{ID: "a", Date: testDate, Time: "13:00", Status: model.StatusApproved},
				{ID: "b", Date: testDate, Time: "14:00", Status: model.StatusRejected},
				{ID: "c", Date: "2024-05-11", Time: "15:00", Status: model.StatusPending},
			},
		}, nil
	}
	f.repo.findEventsFunc = func(_ context.Context, _ repository.Target) ([]model.Event, error) {
		return []model.Event{{
			FacilityID: facilityID,
			Start:      "2024-05-10T16:00:00Z",
			End:        "2024-05-10T18:00:00Z",
		}}, nil
	}

	slots, err := f.svc.Availability(context.Background(), availability.Query{FacilityID: facilityID, Date: testDate})
	require.NoError(t, err)
	assert.Equal(t, []model.TimeSlot{"14:00", "15:00"}, slots)
}

func TestAvailability_ReadFailures(t *testing.T) {
	tests := []struct {
		name       string
		unitErr    error
		eventsErr  error
		wantStatus int
	}{
		{"facility not found", bookingserrors.ErrFacilityNotFound, nil, http.StatusNotFound},
		{"subfacility not found", bookingserrors.ErrSubfacilityNotFound, nil, http.StatusNotFound},
		{"invalid id", bookingserrors.ErrInvalidID, nil, http.StatusBadRequest},
		{"unit read failure", errors.New("connection reset"), nil, http.StatusInternalServerError},
		{"events read failure", nil, errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.findUnitFunc = func(_ context.Context, target repository.Target) (*repository.BookableUnit, error) {
				if tt.unitErr != nil {
					return nil, tt.unitErr
				}
				return &repository.BookableUnit{ID: target.FacilityID}, nil
			}
			f.repo.findEventsFunc = func(_ context.Context, _ repository.Target) ([]model.Event, error) {
				return nil, tt.eventsErr
			}

			slots, err := f.svc.Availability(context.Background(), availability.Query{
				FacilityID:    facilityID,
				SubfacilityID: subfacilityID,
				Date:          testDate,
			})
			require.Error(t, err)
			assert.Nil(t, slots)
			assert.Equal(t, tt.wantStatus, statusOf(t, err))
		})
	}
}

func TestCheck(t *testing.T) {
	f := newFixture()
	f.repo.findUnitFunc = func(_ context.Context, _ repository.Target) (*repository.BookableUnit, error) {
		return &repository.BookableUnit{Bookings: []model.Booking{
			{Date: testDate, Time: "15:00", Status: model.StatusPending},
		}}, nil
	}

	resp, err := f.svc.Check(context.Background(), &model.AvailabilityCheck{FacilityID: facilityID, Date: testDate, Time: "15:00"})
	require.NoError(t, err)
	assert.False(t, resp.Available)
	assert.Len(t, resp.Slots, 4)

	resp, err = f.svc.Check(context.Background(), &model.AvailabilityCheck{FacilityID: facilityID, Date: testDate, Time: "16:00"})
	require.NoError(t, err)
	assert.True(t, resp.Available)

	_, err = f.svc.Check(context.Background(), &model.AvailabilityCheck{FacilityID: facilityID, Date: testDate, Time: "12:00"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = f.svc.Check(context.Background(), &model.AvailabilityCheck{FacilityID: facilityID, Date: testDate})
	require.Error(t, err)
	assert.Equal(t, []string{"time"}, apperrors.AsAppError(err).Details["missing"])
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		FacilityID: facilityID,
		Date:       testDate,
		Time:       "14:00",
		Attendees:  4,
		UserID:     "user-1",
	}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()
	var stored *model.Booking
	f.repo.addBookingFunc = func(_ context.Context, target repository.Target, booking *model.Booking) error {
		assert.Equal(t, facilityID, target.FacilityID)
		stored = booking
		return nil
	}

	booking, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, model.StatusPending, booking.Status)
	assert.Equal(t, model.TimeSlot("14:00"), booking.Time)
	assert.False(t, booking.BookedAt.IsZero())
	assert.Equal(t, booking.ID, stored.ID)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, model.BookingEventCreated, f.publisher.events[0].Type)
	assert.Equal(t, "user-1", f.publisher.events[0].UserID)
	assert.Equal(t, []string{facilityID + "||" + testDate}, f.notifier.calls)
}

func TestCreate_SlotUnavailable(t *testing.T) {
	f := newFixture()
	f.repo.findEventsFunc = func(_ context.Context, _ repository.Target) ([]model.Event, error) {
		return []model.Event{{FacilityID: facilityID, Start: "2024-05-10T14:00:00Z", End: "2024-05-10T15:00:00Z"}}, nil
	}
	f.repo.addBookingFunc = func(context.Context, repository.Target, *model.Booking) error {
		t.Fatal("booking must not be written")
		return nil
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.Empty(t, f.publisher.events)
}

func TestCreate_RejectedBookingFreesSlot(t *testing.T) {
	f := newFixture()
	f.repo.findUnitFunc = func(_ context.Context, _ repository.Target) (*repository.BookableUnit, error) {
		return &repository.BookableUnit{Capacity: 10, Bookings: []model.Booking{
			{ID: "old", Date: testDate, Time: "14:00", Status: model.StatusRejected},
		}}, nil
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.BookingRequest)
	}{
		{"bad date", func(r *model.BookingRequest) { r.Date = "2024-13-40" }},
		{"slot outside window", func(r *model.BookingRequest) { r.Time = "18:00" }},
		{"no attendees", func(r *model.BookingRequest) { r.Attendees = 0 }},
		{"missing user", func(r *model.BookingRequest) { r.UserID = "" }},
		{"bad facility id", func(r *model.BookingRequest) { r.FacilityID = "not-an-id" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			tt.mutate(req)

			_, err := f.svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
		})
	}
}

func TestCreate_CapacityExceeded(t *testing.T) {
	f := newFixture()
	f.repo.findUnitFunc = func(_ context.Context, _ repository.Target) (*repository.BookableUnit, error) {
		return &repository.BookableUnit{Capacity: 2}, nil
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	booking, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotNil(t, booking)
	assert.Len(t, f.notifier.calls, 1)
}

func TestCreate_WriteFailure(t *testing.T) {
	f := newFixture()
	f.repo.addBookingFunc = func(context.Context, repository.Target, *model.Booking) error {
		return errors.New("write concern error")
	}

	_, err := f.svc.Create(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}

func TestList_FiltersAndSorts(t *testing.T) {
	f := newFixture()
	f.repo.findUnitFunc = func(_ context.Context, _ repository.Target) (*repository.BookableUnit, error) {
		return &repository.BookableUnit{Bookings: []model.Booking{
			{ID: "3", Date: testDate, Time: "16:00", Status: model.StatusPending},
			{ID: "1", Date: testDate, Time: "13:00", Status: model.StatusPending},
			{ID: "2", Date: testDate, Time: "14:00", Status: model.StatusApproved},
			{ID: "4", Date: "2024-05-11", Time: "13:00", Status: model.StatusPending},
		}}, nil
	}

	all, err := f.svc.List(context.Background(), ListFilter{FacilityID: facilityID})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"1", "2", "3", "4"}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	pending, err := f.svc.List(context.Background(), ListFilter{FacilityID: facilityID, Date: testDate, Status: model.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "1", pending[0].ID)
	assert.Equal(t, "3", pending[1].ID)

	_, err = f.svc.List(context.Background(), ListFilter{FacilityID: facilityID, Status: "cancelled"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestUpdateStatus(t *testing.T) {
	unit := func() *repository.BookableUnit {
		return &repository.BookableUnit{Bookings: []model.Booking{
			{ID: "p", Date: testDate, Time: "13:00", Status: model.StatusPending, UserID: "user-1"},
			{ID: "a", Date: testDate, Time: "14:00", Status: model.StatusApproved},
		}}
	}

	t.Run("approves pending booking", func(t *testing.T) {
		f := newFixture()
		f.repo.findUnitFunc = func(context.Context, repository.Target) (*repository.BookableUnit, error) { return unit(), nil }
		f.repo.updateStatusFunc = func(_ context.Context, _ repository.Target, id string, from, to model.BookingStatus) error {
			assert.Equal(t, "p", id)
			assert.Equal(t, model.StatusPending, from)
			assert.Equal(t, model.StatusApproved, to)
			return nil
		}

		booking, err := f.svc.UpdateStatus(context.Background(), "p", &model.BookingStatusUpdate{FacilityID: facilityID, Status: model.StatusApproved})
		require.NoError(t, err)
		assert.Equal(t, model.StatusApproved, booking.Status)
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, model.BookingEventStatusChanged, f.publisher.events[0].Type)
		assert.Equal(t, model.StatusPending, f.publisher.events[0].PreviousStatus)
	})

	t.Run("decided booking conflicts", func(t *testing.T) {
		f := newFixture()
		f.repo.findUnitFunc = func(context.Context, repository.Target) (*repository.BookableUnit, error) { return unit(), nil }

		_, err := f.svc.UpdateStatus(context.Background(), "a", &model.BookingStatusUpdate{FacilityID: facilityID, Status: model.StatusRejected})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, statusOf(t, err))
	})

	t.Run("concurrent decision conflicts", func(t *testing.T) {
		f := newFixture()
		f.repo.findUnitFunc = func(context.Context, repository.Target) (*repository.BookableUnit, error) { return unit(), nil }
		f.repo.updateStatusFunc = func(context.Context, repository.Target, string, model.BookingStatus, model.BookingStatus) error {
			return bookingserrors.ErrStatusConflict
		}

		_, err := f.svc.UpdateStatus(context.Background(), "p", &model.BookingStatusUpdate{FacilityID: facilityID, Status: model.StatusRejected})
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, statusOf(t, err))
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture()
		f.repo.findUnitFunc = func(context.Context, repository.Target) (*repository.BookableUnit, error) { return unit(), nil }

		_, err := f.svc.UpdateStatus(context.Background(), "missing", &model.BookingStatusUpdate{FacilityID: facilityID, Status: model.StatusApproved})
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.UpdateStatus(context.Background(), "p", &model.BookingStatusUpdate{FacilityID: facilityID, Status: model.StatusPending})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))
	})
}
