package validator

import (
	"errors"
	"fmt"
	"parkgate/pkg/logger"
	"parkgate/pkg/model"
	"parkgate/pkg/plate"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type GateValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewGateValidator(log *logger.Logger) *GateValidator {
	v := validator.New()

	if err := v.RegisterValidation("plate", validatePlate); err != nil {
		log.Fatal("Failed to register 'plate' validator",
			"error", err,
		)
	}

	return &GateValidator{
		validate: v,
		logger:   log,
	}
}

// validatePlate accepts the raw plate as typed at the gate; normalization
// happens before validation, so only the canonical form is checked here.
func validatePlate(fl validator.FieldLevel) bool {
	return plate.Valid(fl.Field().String())
}

func (v *GateValidator) ValidateEntry(req *model.EntryRequest) error {
	req.Plate = plate.Normalize(req.Plate)

	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *GateValidator) ValidateExit(req *model.ExitRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

func (v *GateValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "plate":
			message = fmt.Sprintf("%s must be 2-12 letters and digits", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
