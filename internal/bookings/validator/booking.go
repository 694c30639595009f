package validator

import (
	"facilio/pkg/logger"
	"facilio/pkg/model"
	"facilio/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validation.New(log)
	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	return validation.Struct(v.validate, req)
}

func (v *BookingValidator) ValidateStatusUpdate(update *model.BookingStatusUpdate) error {
	return validation.Struct(v.validate, update)
}

// ValidateCapacity checks the attendees against the capacity of the booked unit.
func (v *BookingValidator) ValidateCapacity(attendees, capacity int) error {
	if capacity > 0 && attendees > capacity {
		return validation.ValidationErrors{{
			Field:   "attendees",
			Message: "attendees exceed the capacity of the selected facility",
		}}
	}
	return nil
}
