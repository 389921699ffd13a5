package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/matching-guru/internal/api"
	"github.com/jonathan/matching-guru/internal/schemas"
	"github.com/jonathan/matching-guru/internal/validation"
	"github.com/jonathan/matching-guru/internal/wizard"
	"go.uber.org/zap"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *validation.Error
		schemaErr     *schemas.ValidationError
		requestErr    *ErrValidation
		fieldErrs     validator.ValidationErrors
		transitionErr *wizard.TransitionError
		apiErr        *api.Error
		submitErr     *wizard.SubmitError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, wizard.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr), errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &requestErr), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.As(err, &transitionErr):
		return http.StatusConflict
	case errors.As(err, &apiErr), errors.As(err, &submitErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response body for err. Upstream failures carry the
// server's own text; validation failures carry the full result.
func errorBody(err error) ErrorBody {
	var (
		validationErr *validation.Error
		schemaErr     *schemas.ValidationError
		fieldErrs     validator.ValidationErrors
		apiErr        *api.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return ErrorBody{Error: "validation failed", Details: validationErr.Result}
	case errors.As(err, &schemaErr):
		return ErrorBody{Error: "participant request does not match schema", Details: schemaErr.Errors}
	case errors.As(err, &fieldErrs):
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
		}
		return ErrorBody{Error: "invalid request body", Details: details}
	case errors.As(err, &apiErr):
		return ErrorBody{Error: apiErr.Message}
	case HTTPStatus(err) == http.StatusInternalServerError:
		return ErrorBody{Error: "internal server error"}
	default:
		return ErrorBody{Error: err.Error()}
	}
}

// writeError maps err to a status and body and logs server-side failures
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	s.jsonResponse(w, status, errorBody(err))
}
