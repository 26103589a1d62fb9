package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"missing token", fmt.Errorf("load board: %w", ErrMissingToken), http.StatusUnauthorized},
		{"missing actor", ErrMissingActor, http.StatusUnauthorized},
		{"upstream 500", &UpstreamError{Method: "GET", Path: "/api/task", Status: 500}, http.StatusBadGateway},
		{"upstream 404", &UpstreamError{Method: "GET", Path: "/api/task/1", Status: 404}, http.StatusNotFound},
		{"network", fmt.Errorf("%w: dial tcp: refused", ErrUpstream), http.StatusBadGateway},
		{"decode", fmt.Errorf("%w: invalid character", ErrDecode), http.StatusBadGateway},
		{"validation", fmt.Errorf("title is required: %w", ErrValidation), http.StatusBadRequest},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"pg unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromError(tt.err))
		})
	}
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("apply: %w", &UpstreamError{Method: "POST", Path: "/api/task/1/applying/2", Status: 409})
	assert.ErrorIs(t, err, ErrUpstream)

	var upErr *UpstreamError
	assert.ErrorAs(t, err, &upErr)
	assert.Equal(t, 409, upErr.Status)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Contains(t, Message(ErrMissingToken), "Access token not found")
	assert.Contains(t, Message(&UpstreamError{Status: 500}), "marketplace")
	assert.Contains(t, Message(fmt.Errorf("%w: x", ErrDecode)), "Unexpected response")
	assert.Equal(t, "Something went wrong. Please try again later.", Message(errors.New("secret detail")))
}

func TestValidationError(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.OrNil())

	v.Add("title", "Title is required")
	v.Add("reward", "Reward must be greater than 0")
	v.Add("title", "ignored second message")

	err := v.OrNil()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: Reward must be greater than 0; Title is required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatusFromError(err))
	assert.Equal(t, err.Error(), Message(err))
}
