package types

import (
	"errors"
	"net/http"

	appErr "github.com/govichain/engine/pkg/errors"
)

// FromAppError converts an error into the wire error shape.
func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var ae *appErr.AppError
	if errors.As(err, &ae) {
		return &APIError{Code: string(ae.Code), Message: ae.Message}
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: err.Error()}
}

// StatusForError maps the error taxonomy onto HTTP statuses.
func StatusForError(err error) int {
	var ae *appErr.AppError
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Code {
	case appErr.CodeInvalid:
		return http.StatusBadRequest
	case appErr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case appErr.CodeForbidden:
		return http.StatusForbidden
	case appErr.CodeNotFound:
		return http.StatusNotFound
	case appErr.CodeConflict, appErr.CodeInvalidTransition:
		return http.StatusConflict
	case appErr.CodeBudgetExceeded:
		return http.StatusUnprocessableEntity
	case appErr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
