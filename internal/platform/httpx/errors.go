package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for the domain layer. Modules wrap these so handlers
// can map any failure onto an HTTP status without knowing its origin.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// FieldErrors carries field-level validation messages alongside ErrValidation.
type FieldErrors struct {
	Fields map[string]string
}

func (e *FieldErrors) Error() string { return "validation failed" }

func (e *FieldErrors) Unwrap() error { return ErrValidation }

// NewFieldErrors builds a FieldErrors from a validator result.
func NewFieldErrors(err error) *FieldErrors {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = "failed on rule: " + fe.Tag()
		}
	}
	return &FieldErrors{Fields: fields}
}

// RespondError maps a domain error onto the response envelope.
func RespondError(w http.ResponseWriter, err error) {
	var fieldErrs *FieldErrors
	if errors.As(err, &fieldErrs) {
		Fail(w, http.StatusUnprocessableEntity, "validation failed", fieldErrs.Fields)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrConflict):
		Fail(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, err.Error(), nil)
	default:
		Fail(w, http.StatusInternalServerError, "internal error", nil)
	}
}
