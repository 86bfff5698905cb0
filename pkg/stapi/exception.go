package stapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Exception is a structured, client-facing error outcome. Exceptions are
// immutable: every With* method returns a copy.
type Exception struct {
	errorCode   string
	errorText   string
	message     string
	status      int
	description string
	cause       error
}

// ExceptionFactory builds an Exception. An empty message keeps the default
// message of the exception kind.
type ExceptionFactory func(message string) *Exception

// ExceptionDefinition describes a kind of exception
type ExceptionDefinition struct {
	ErrorCode string
	// Error is the short error name, defaults to the status reason phrase
	Error       string
	Message     string
	Status      int
	Description string
}

// NewExceptionFactory returns the factory for def
func NewExceptionFactory(def ExceptionDefinition) ExceptionFactory {
	if def.Error == "" {
		def.Error = http.StatusText(def.Status)
	}
	return func(message string) *Exception {
		if message == "" {
			message = def.Message
		}
		return &Exception{
			errorCode:   def.ErrorCode,
			errorText:   def.Error,
			message:     message,
			status:      def.Status,
			description: def.Description,
		}
	}
}

func (e *Exception) ErrorCode() string   { return e.errorCode }
func (e *Exception) ErrorText() string   { return e.errorText }
func (e *Exception) Message() string     { return e.message }
func (e *Exception) Status() int         { return e.status }
func (e *Exception) Description() string { return e.description }
func (e *Exception) Cause() error        { return e.cause }

// Error implements the error interface
func (e *Exception) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.errorCode, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.errorCode, e.message)
}

func (e *Exception) Unwrap() error {
	return e.cause
}

// Is matches exceptions by error code, so errors.Is(err, Forbidden(""))
// holds for any forbidden exception.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	return ok && t.errorCode == e.errorCode
}

// WithCause returns a copy carrying the underlying error. The cause is
// logged, never sent to the client.
func (e *Exception) WithCause(cause error) *Exception {
	clone := *e
	clone.cause = cause
	return &clone
}

// WithDescription returns a copy with a different description
func (e *Exception) WithDescription(description string) *Exception {
	clone := *e
	clone.description = description
	return &clone
}

// ExceptionBody is the JSON error body sent to clients
type ExceptionBody struct {
	ErrorCode     string `json:"errorCode"`
	Error         string `json:"error"`
	Message       string `json:"message"`
	Status        int    `json:"status"`
	CorrelationID string `json:"correlationId"`
	TraceID       string `json:"traceId"`
	Description   string `json:"description,omitempty"`
}

// Body renders the exception for the request identified by ids
func (e *Exception) Body(ids CorrelationIDs) ExceptionBody {
	return ExceptionBody{
		ErrorCode:     e.errorCode,
		Error:         e.errorText,
		Message:       e.message,
		Status:        e.status,
		CorrelationID: ids.CorrelationID,
		TraceID:       ids.TraceID,
		Description:   e.description,
	}
}

// Built-in exception kinds
var (
	UnknownInternalServerError = NewExceptionFactory(ExceptionDefinition{
		ErrorCode:   "CORE-0001",
		Message:     "Unknown internal server error",
		Status:      http.StatusInternalServerError,
		Description: "An unexpected error happened while handling the request",
	})
	BadRequestParams = NewExceptionFactory(ExceptionDefinition{
		ErrorCode:   "CORE-0002",
		Message:     "Invalid parameters",
		Status:      http.StatusBadRequest,
		Description: "The path parameters did not match the route schema",
	})
	BadRequestQuery = NewExceptionFactory(ExceptionDefinition{
		ErrorCode:   "CORE-0003",
		Message:     "Invalid query",
		Status:      http.StatusBadRequest,
		Description: "The query string did not match the route schema",
	})
	BadRequestBody = NewExceptionFactory(ExceptionDefinition{
		ErrorCode:   "CORE-0004",
		Message:     "Invalid body",
		Status:      http.StatusBadRequest,
		Description: "The request body did not match the route schema",
	})
	InvalidResponse = NewExceptionFactory(ExceptionDefinition{
		ErrorCode:   "CORE-0005",
		Message:     "Invalid response",
		Status:      http.StatusInternalServerError,
		Description: "The handler returned a value that did not match its response schema",
	})
	RouteNotFound = NewExceptionFactory(ExceptionDefinition{
		ErrorCode:   "CORE-0006",
		Message:     "Route not found",
		Status:      http.StatusNotFound,
		Description: "No route matches the requested method and path",
	})
	TooManyRequests = NewExceptionFactory(ExceptionDefinition{
		ErrorCode:   "CORE-0007",
		Message:     "Too many requests",
		Status:      http.StatusTooManyRequests,
		Description: "The client sent too many requests",
	})
	BadRequestHeaders = NewExceptionFactory(ExceptionDefinition{
		ErrorCode:   "CORE-0008",
		Message:     "Invalid headers",
		Status:      http.StatusBadRequest,
		Description: "The request headers did not match the route schema",
	})
	Forbidden = NewExceptionFactory(ExceptionDefinition{
		ErrorCode: "CORE-0009",
		Message:   http.StatusText(http.StatusForbidden),
		Status:    http.StatusForbidden,
	})
)

// builtinExceptions are documented on every operation
var builtinExceptions = []ExceptionFactory{
	UnknownInternalServerError,
	BadRequestParams,
	BadRequestQuery,
	BadRequestBody,
	BadRequestHeaders,
	InvalidResponse,
	RouteNotFound,
	TooManyRequests,
}

// asException returns err as an Exception, or an unknown internal server
// error carrying err as its cause.
func asException(err error) *Exception {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc
	}
	return UnknownInternalServerError("").WithCause(err)
}
