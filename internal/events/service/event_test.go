package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	eventserrors "facilio/internal/events/errors"
	"facilio/internal/events/validator"
	"facilio/pkg/config"
	apperrors "facilio/pkg/errors"
	"facilio/pkg/logger"
	"facilio/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const facilityID = "65a1f0c2e4b0a1b2c3d4e5f6"

type mockEventRepository struct {
	createFunc         func(ctx context.Context, ev *model.Event) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Event, error)
	findByFacilityFunc func(ctx context.Context, facilityID, subfacilityID string) ([]model.Event, error)
	deleteFunc         func(ctx context.Context, id string) error
	ensureTargetFunc   func(ctx context.Context, facilityID, subfacilityID string) error
}

func (m *mockEventRepository) Create(ctx context.Context, ev *model.Event) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, ev)
	}
	ev.ID = "ev-1"
	return nil
}

func (m *mockEventRepository) FindByID(ctx context.Context, id string) (*model.Event, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockEventRepository) FindByFacility(ctx context.Context, facilityID, subfacilityID string) ([]model.Event, error) {
	return m.findByFacilityFunc(ctx, facilityID, subfacilityID)
}

func (m *mockEventRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockEventRepository) EnsureTarget(ctx context.Context, facilityID, subfacilityID string) error {
	if m.ensureTargetFunc != nil {
		return m.ensureTargetFunc(ctx, facilityID, subfacilityID)
	}
	return nil
}

func newService(repo *mockEventRepository, loc *time.Location) EventService {
	log := logger.New(logger.Config{Output: io.Discard})
	return NewEventService(repo, validator.NewEventValidator(log), &config.Config{Log: log, Location: loc})
}

func statusOf(err error) int {
	return apperrors.AsAppError(err).StatusCode()
}

func validRequest() *model.EventRequest {
	return &model.EventRequest{
		FacilityID: facilityID,
		Title:      "  Regional   Finals ",
		Start:      "2024-05-10T14:00:00Z",
		End:        "2024-05-10T16:00:00Z",
	}
}

func TestCreate(t *testing.T) {
	var stored *model.Event
	repo := &mockEventRepository{createFunc: func(_ context.Context, ev *model.Event) error {
		stored = ev
		ev.ID = "ev-1"
		return nil
	}}

	ev, err := newService(repo, time.UTC).Create(context.Background(), validRequest())
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC), stored.Start)
	assert.Equal(t, "Regional Finals", stored.Title)
	assert.Equal(t, "ev-1", ev.ID)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*model.EventRequest)
		targetErr  error
		wantStatus int
	}{
		{"end before start", func(r *model.EventRequest) { r.End = "2024-05-10T13:00:00Z" }, nil, http.StatusUnprocessableEntity},
		{"end equals start", func(r *model.EventRequest) { r.End = r.Start }, nil, http.StatusUnprocessableEntity},
		{"not rfc3339", func(r *model.EventRequest) { r.Start = "2024-05-10 14:00" }, nil, http.StatusUnprocessableEntity},
		{"missing facility", func(r *model.EventRequest) { r.FacilityID = "" }, nil, http.StatusUnprocessableEntity},
		{"unknown facility", func(*model.EventRequest) {}, eventserrors.ErrFacilityNotFound, http.StatusNotFound},
		{"foreign subfacility", func(r *model.EventRequest) { r.SubfacilityID = "65a1f0c2e4b0a1b2c3d4e5f7" }, eventserrors.ErrSubfacilityNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockEventRepository{
				ensureTargetFunc: func(context.Context, string, string) error { return tt.targetErr },
				createFunc: func(context.Context, *model.Event) error {
					t.Fatal("event must not be stored")
					return nil
				},
			}
			req := validRequest()
			tt.mutate(req)

			_, err := newService(repo, time.UTC).Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, statusOf(err))
		})
	}
}

func TestList_FiltersByDateAcrossRepresentations(t *testing.T) {
	repo := &mockEventRepository{findByFacilityFunc: func(_ context.Context, id, sub string) ([]model.Event, error) {
		assert.Equal(t, facilityID, id)
		assert.Empty(t, sub)
		return []model.Event{
			{ID: "date", Start: primitive.NewDateTimeFromTime(time.Date(2024, 5, 10, 13, 0, 0, 0, time.UTC)), End: "2024-05-10T14:00:00Z"},
			{ID: "string", Start: "2024-05-10T15:00:00Z", End: "2024-05-10T16:00:00Z"},
			{ID: "pair", Start: bson.D{{Key: "seconds", Value: int64(1715353200)}, {Key: "nanoseconds", Value: int64(0)}}, End: "2024-05-10T16:00:00Z"},
			{ID: "other-day", Start: "2024-05-11T15:00:00Z", End: "2024-05-11T16:00:00Z"},
			{ID: "broken", Start: "soon", End: "later"},
		}, nil
	}}

	events, err := newService(repo, time.UTC).List(context.Background(), ListFilter{FacilityID: facilityID, Date: "2024-05-10"})
	require.NoError(t, err)

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
		assert.IsType(t, time.Time{}, ev.Start)
	}
	assert.Equal(t, []string{"date", "string", "pair"}, ids)
}

func TestList_UsesFacilityTimeZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	repo := &mockEventRepository{findByFacilityFunc: func(context.Context, string, string) ([]model.Event, error) {
		return []model.Event{{ID: "late-utc", Start: "2024-05-09T20:00:00Z", End: "2024-05-09T21:00:00Z"}}, nil
	}}

	events, err := newService(repo, tokyo).List(context.Background(), ListFilter{FacilityID: facilityID, Date: "2024-05-10"})
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestList_Errors(t *testing.T) {
	repo := &mockEventRepository{findByFacilityFunc: func(context.Context, string, string) ([]model.Event, error) {
		return nil, errors.New("cursor died")
	}}
	svc := newService(repo, time.UTC)

	_, err := svc.List(context.Background(), ListFilter{})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = svc.List(context.Background(), ListFilter{FacilityID: facilityID, Date: "May 10"})
	assert.Equal(t, http.StatusBadRequest, statusOf(err))

	_, err = svc.List(context.Background(), ListFilter{FacilityID: facilityID})
	assert.Equal(t, http.StatusInternalServerError, statusOf(err))
}

func TestGetAndDelete_ErrorMapping(t *testing.T) {
	repo := &mockEventRepository{
		findByIDFunc: func(context.Context, string) (*model.Event, error) { return nil, eventserrors.ErrNotFound },
		deleteFunc:   func(context.Context, string) error { return eventserrors.ErrInvalidID },
	}
	svc := newService(repo, time.UTC)

	_, err := svc.GetByID(context.Background(), "65a1f0c2e4b0a1b2c3d4e5f9")
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	err = svc.Delete(context.Background(), "nope")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}
