package stapi

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationError(t *testing.T) {
	err := newRegistrationError("UserController", ErrInvalidSchema, "params binding at slot %d", 0).
		WithContext("kind", "params").
		WithCause(io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, ErrInvalidSchema)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.NotErrorIs(t, err, ErrMissingRoute)
	assert.Equal(t,
		"failed to register UserController: invalid schema binding: params binding at slot 0 (kind=params): unexpected EOF",
		err.Error())
	assert.Equal(t, map[string]any{"kind": "params"}, err.Context())

	var regErr *RegistrationError
	require.True(t, errors.As(error(err), &regErr))
	assert.Equal(t, "UserController", regErr.Handler)
}

func TestException_Factories(t *testing.T) {
	tests := []struct {
		name    string
		factory ExceptionFactory
		code    string
		status  int
	}{
		{"unknown internal", UnknownInternalServerError, "CORE-0001", http.StatusInternalServerError},
		{"params", BadRequestParams, "CORE-0002", http.StatusBadRequest},
		{"query", BadRequestQuery, "CORE-0003", http.StatusBadRequest},
		{"body", BadRequestBody, "CORE-0004", http.StatusBadRequest},
		{"invalid response", InvalidResponse, "CORE-0005", http.StatusInternalServerError},
		{"not found", RouteNotFound, "CORE-0006", http.StatusNotFound},
		{"too many requests", TooManyRequests, "CORE-0007", http.StatusTooManyRequests},
		{"headers", BadRequestHeaders, "CORE-0008", http.StatusBadRequest},
		{"forbidden", Forbidden, "CORE-0009", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exc := tt.factory("")
			assert.Equal(t, tt.code, exc.ErrorCode())
			assert.Equal(t, tt.status, exc.Status())
			assert.Equal(t, http.StatusText(tt.status), exc.ErrorText())
			assert.NotEmpty(t, exc.Message())
		})
	}
}

func TestException_MessageOverride(t *testing.T) {
	assert.Equal(t, "Invalid body", BadRequestBody("").Message())
	assert.Equal(t, "name: Required", BadRequestBody("name: Required").Message())
}

func TestException_Immutable(t *testing.T) {
	base := Forbidden("")
	withCause := base.WithCause(io.EOF)
	withDesc := base.WithDescription("nope")

	assert.Nil(t, base.Cause())
	assert.Empty(t, base.Description())
	assert.Equal(t, io.EOF, withCause.Cause())
	assert.Equal(t, "nope", withDesc.Description())
}

func TestException_Is(t *testing.T) {
	var err error = Forbidden("custom message")

	assert.ErrorIs(t, err, Forbidden(""))
	assert.NotErrorIs(t, err, RouteNotFound(""))
}

func TestException_Body(t *testing.T) {
	body := RouteNotFound("").Body(CorrelationIDs{CorrelationID: "c-1", TraceID: "t-1", ExecutionID: "e-1"})

	assert.Equal(t, ExceptionBody{
		ErrorCode:     "CORE-0006",
		Error:         "Not Found",
		Message:       "Route not found",
		Status:        404,
		CorrelationID: "c-1",
		TraceID:       "t-1",
		Description:   "No route matches the requested method and path",
	}, body)
}

func TestAsException(t *testing.T) {
	forbidden := Forbidden("")
	assert.Same(t, forbidden, asException(forbidden))

	wrapped := asException(errors.New("database down"))
	assert.Equal(t, "CORE-0001", wrapped.ErrorCode())
	assert.EqualError(t, wrapped.Cause(), "database down")
}
