package validator

import (
	"facilio/pkg/logger"
	"facilio/pkg/model"
	"facilio/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type EventValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEventValidator(log *logger.Logger) *EventValidator {
	v := validation.New(log)
	log.Info("Event validator initialized successfully")

	return &EventValidator{
		validate: v,
		logger:   log,
	}
}

func (v *EventValidator) Validate(req *model.EventRequest) error {
	return validation.Struct(v.validate, req)
}
