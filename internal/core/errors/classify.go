package errors

import (
	"errors"
	"net/http"
)

// Classify maps any error to the AppError the transports report. AppErrors
// pass through; ValidationErrors become a 422 carrying the field messages;
// known sentinels get their status and code; anything else is internal.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]interface{}, len(validationErrs.Errors))
		for field, msgs := range validationErrs.Errors {
			details[field] = msgs
		}
		return NewValidationError(err, "Validation failed", details)
	}

	switch {
	// Authentication
	case errors.Is(err, ErrInvalidCredentials):
		return &AppError{Err: err, Message: "Invalid credentials", Code: "INVALID_CREDENTIALS", StatusCode: http.StatusUnauthorized}
	case errors.Is(err, ErrUnauthorized):
		return &AppError{Err: err, Message: "Authentication required", Code: "UNAUTHORIZED", StatusCode: http.StatusUnauthorized}

	// Dashboard lifecycle
	case errors.Is(err, ErrSourceUnavailable):
		return NewSourceUnavailableError(err)
	case errors.Is(err, ErrNotLoaded):
		return &AppError{Err: err, Message: "The dashboard is still loading", Code: "DASHBOARD_LOADING", StatusCode: http.StatusServiceUnavailable}
	case errors.Is(err, ErrConfiguration):
		return &AppError{Err: err, Message: "The dashboard field roles are not configured", Code: "CONFIGURATION_ERROR", StatusCode: http.StatusInternalServerError}

	// Interaction validation
	case errors.Is(err, ErrInvalidPeriod):
		return &AppError{Err: err, Message: err.Error(), Code: "INVALID_PERIOD", StatusCode: http.StatusBadRequest}
	case errors.Is(err, ErrFieldRequired),
		errors.Is(err, ErrValueRequired),
		errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrPasswordTooWeak):
		return &AppError{Err: err, Message: err.Error(), Code: "VALIDATION_ERROR", StatusCode: http.StatusBadRequest}
	case errors.Is(err, ErrNotFound):
		return NewNotFoundError(err, "Resource not found")
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err, "Bad request")

	case errors.Is(err, ErrRateLimited):
		return NewRateLimitError()

	default:
		return NewInternalError(err)
	}
}
