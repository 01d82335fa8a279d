// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)

// coded is implemented by domain reasons that carry a stable reason code.
type coded interface {
	ReasonCode() string
}

// ReasonCode extracts the first reason code found in the error chain.
func ReasonCode(err error) string {
	var c coded
	if errors.As(err, &c) {
		return c.ReasonCode()
	}
	return ""
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	code := ReasonCode(err)
	switch {
	case errors.Is(err, ErrNotFound):
		ProblemWithCode(w, http.StatusNotFound, "Not Found", err.Error(), code)
	case errors.Is(err, ErrDuplicate):
		ProblemWithCode(w, http.StatusConflict, "Duplicate", err.Error(), code)
	case errors.Is(err, ErrConflict):
		ProblemWithCode(w, http.StatusConflict, "Conflict", err.Error(), code)
	case errors.Is(err, ErrValidation):
		ProblemWithCode(w, http.StatusBadRequest, "Validation Failed", err.Error(), code)
	case errors.Is(err, ErrForbidden):
		ProblemWithCode(w, http.StatusForbidden, "Forbidden", err.Error(), code)
	case errors.Is(err, ErrUnauthorized):
		ProblemWithCode(w, http.StatusUnauthorized, "Unauthorized", err.Error(), code)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
