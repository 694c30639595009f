package validator

import (
	"errors"
	"io"
	"testing"

	"facilio/pkg/logger"
	"facilio/pkg/model"
	"facilio/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{Output: io.Discard}))
}

func fieldsOf(t *testing.T, err error) map[string]any {
	t.Helper()
	var verrs validation.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	return verrs.Details()["fields"].(map[string]any)
}

func TestValidate(t *testing.T) {
	valid := func() *model.BookingRequest {
		return &model.BookingRequest{
			FacilityID: "65a1f0c2e4b0a1b2c3d4e5f6",
			Date:       "2024-05-10",
			Time:       "15:00",
			Attendees:  4,
			UserID:     "user-1",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*model.BookingRequest)
		wantField string
	}{
		{"valid", func(*model.BookingRequest) {}, ""},
		{"valid subfacility", func(r *model.BookingRequest) { r.SubfacilityID = "65a1f0c2e4b0a1b2c3d4e5f7" }, ""},
		{"facility not an object id", func(r *model.BookingRequest) { r.FacilityID = "court-1" }, "facility_id"},
		{"date wrong format", func(r *model.BookingRequest) { r.Date = "10/05/2024" }, "date"},
		{"impossible date", func(r *model.BookingRequest) { r.Date = "2024-02-30" }, "date"},
		{"time outside slots", func(r *model.BookingRequest) { r.Time = "12:00" }, "time"},
		{"half hour", func(r *model.BookingRequest) { r.Time = "13:30" }, "time"},
		{"no attendees", func(r *model.BookingRequest) { r.Attendees = 0 }, "attendees"},
		{"missing user", func(r *model.BookingRequest) { r.UserID = "" }, "user_id"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)

			err := v.Validate(req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, fieldsOf(t, err), tt.wantField)
		})
	}
}

func TestValidateStatusUpdate(t *testing.T) {
	v := newValidator()

	update := &model.BookingStatusUpdate{FacilityID: "65a1f0c2e4b0a1b2c3d4e5f6", Status: model.StatusApproved}
	assert.NoError(t, v.ValidateStatusUpdate(update))

	update.Status = model.StatusPending
	assert.Contains(t, fieldsOf(t, v.ValidateStatusUpdate(update)), "status")
}

func TestValidateCapacity(t *testing.T) {
	v := newValidator()

	assert.NoError(t, v.ValidateCapacity(10, 10))
	assert.NoError(t, v.ValidateCapacity(3, 0))
	assert.Contains(t, fieldsOf(t, v.ValidateCapacity(11, 10)), "attendees")
}
