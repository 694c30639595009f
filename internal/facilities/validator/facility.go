package validator

import (
	"facilio/pkg/logger"
	"facilio/pkg/model"
	"facilio/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type FacilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewFacilityValidator(log *logger.Logger) *FacilityValidator {
	v := validation.New(log)
	log.Info("Facility validator initialized successfully")

	return &FacilityValidator{
		validate: v,
		logger:   log,
	}
}

func (v *FacilityValidator) Validate(f *model.Facility) error {
	return validation.Struct(v.validate, f)
}

func (v *FacilityValidator) ValidateSubfacility(sub *model.Subfacility) error {
	return validation.Struct(v.validate, sub)
}
