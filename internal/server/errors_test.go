package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/matching-guru/internal/api"
	"github.com/jonathan/matching-guru/internal/schemas"
	"github.com/jonathan/matching-guru/internal/validation"
	"github.com/jonathan/matching-guru/internal/wizard"
	"github.com/jonathan/matching-guru/internal/wizard/steps"
	"github.com/stretchr/testify/assert"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "body", Message: "request body is required"}
	assert.Equal(t, "validation error: body - request body is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	upstream := &api.Error{Method: "POST", Path: "/participants", StatusCode: 409, Message: "already registered"}
	failed := validation.Result{Errors: []string{"Please select your course"}, Issues: []validation.Issue{{Step: steps.Criteria, Message: "Please select your course"}}}

	type request struct {
		ID int `validate:"required"`
	}
	fieldErr := validator.New().Struct(request{})

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"session not found", wizard.ErrSessionNotFound, http.StatusNotFound},
		{"wrapped session not found", fmt.Errorf("lookup: %w", wizard.ErrSessionNotFound), http.StatusNotFound},
		{"validation result", failed.AsError(), http.StatusUnprocessableEntity},
		{"schema mismatch", &schemas.ValidationError{Schema: "participant_create.schema.json"}, http.StatusUnprocessableEntity},
		{"request body", &ErrValidation{Field: "body"}, http.StatusBadRequest},
		{"validator tags", fieldErr, http.StatusBadRequest},
		{"transition", &wizard.TransitionError{Step: steps.Review, Action: "advance"}, http.StatusConflict},
		{"upstream", upstream, http.StatusBadGateway},
		{"upstream 404 is still a gateway failure", &api.Error{StatusCode: 404, Message: "gone"}, http.StatusBadGateway},
		{"submit wrapping upstream", &wizard.SubmitError{Cause: upstream}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	upstream := &api.Error{StatusCode: 409, Message: "already registered"}
	assert.Equal(t, "already registered", errorBody(&wizard.SubmitError{Cause: upstream}).Error)

	failed := validation.Result{Errors: []string{"x"}, Issues: []validation.Issue{{Step: steps.Criteria, Message: "x"}}}
	body := errorBody(failed.AsError())
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, failed, body.Details)

	assert.Equal(t, "internal server error", errorBody(errors.New("db password leaked")).Error)
}
