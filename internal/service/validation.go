package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/staffplan-api/internal/allocation"
	"github.com/noah-isme/staffplan-api/internal/timeline"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
	appErrors "github.com/noah-isme/staffplan-api/pkg/errors"
)

// NewValidator returns a validator with the planning tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	registerPlanningValidations(v)
	return v
}

func registerPlanningValidations(v *validator.Validate) {
	_ = v.RegisterValidation("calendarday", func(fl validator.FieldLevel) bool {
		_, err := calendarday.Parse(fl.Field().String())
		return err == nil
	})
}

func ensureValidator(v *validator.Validate) *validator.Validate {
	if v == nil {
		return NewValidator()
	}
	registerPlanningValidations(v)
	return v
}

// FieldError is one failed rule in a request payload.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	details := make([]FieldError, 0, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag()})
		names = append(names, fe.Field())
	}
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
		fmt.Sprintf("invalid payload: %s", strings.Join(names, ", ")))
	appErr.Details = details
	return appErr
}

// mapEngineError translates sentinel errors from the engine packages into API
// errors. Anything unrecognised is an internal failure.
func mapEngineError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, allocation.ErrInvalidAllocation):
		return appErrors.Wrap(err, appErrors.ErrInvalidAllocation.Code, appErrors.ErrInvalidAllocation.Status, err.Error())
	case errors.Is(err, calendarday.ErrInvalidRange), errors.Is(err, timeline.ErrInvalidRange):
		return appErrors.Wrap(err, appErrors.ErrInvalidRange.Code, appErrors.ErrInvalidRange.Status, err.Error())
	case errors.Is(err, timeline.ErrMissingReference):
		return appErrors.Wrap(err, appErrors.ErrMissingReference.Code, appErrors.ErrMissingReference.Status, err.Error())
	case errors.Is(err, timeline.ErrDragInProgress):
		return appErrors.Wrap(err, appErrors.ErrDragInProgress.Code, appErrors.ErrDragInProgress.Status, err.Error())
	case errors.Is(err, calendarday.ErrInvalidDay),
		errors.Is(err, timeline.ErrInvalidViewport),
		errors.Is(err, timeline.ErrOutsideWindow),
		errors.Is(err, timeline.ErrNoDragSession):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
}
