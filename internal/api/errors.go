package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// MapErrorToStatusCode maps an internal error to the HTTP status returned to the
// client.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs),
		domain.IsValidationError(err),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Tasks owned by someone else are reported as missing.
	case store.IsNotFoundError(err),
		errors.Is(err, service.ErrInvalidPage):
		return http.StatusNotFound

	case store.IsDuplicateError(err):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that reveals no
// internal detail.
func GetSafeErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	var verr *domain.ValidationError
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.As(err, &verrs):
		return "Validation failed"
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Authentication credentials were not provided or are invalid"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrVerificationTokenNotFound):
		return "Invalid or expired verification link"
	case errors.Is(err, service.ErrInvalidPage):
		return "Invalid page."
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "A user with that email already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	default:
		return "An unexpected error occurred"
	}
}

// ValidationFields returns per-field messages for a validation failure, keyed by
// the JSON field name. It returns nil for any other error.
func ValidationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationTagMessage(fe.Tag())
		}
		return fields
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		return map[string]string{verr.Field: verr.Message}
	}
	return nil
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this field is long enough."
	case "max":
		return "Ensure this field is not too long."
	case "gte":
		return "Ensure this value is greater than or equal to 0."
	case "lte":
		return "Ensure this value is less than or equal to 2147483647."
	case "oneof":
		return "Select a valid choice."
	default:
		return "Invalid value."
	}
}

// HandleAPIError writes the error response for err. A non-empty message overrides
// the default safe message. Validation failures carry per-field details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	if fields := ValidationFields(err); fields != nil {
		opts = append(opts, shared.WithFields(fields))
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
