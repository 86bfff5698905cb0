package stapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel reasons for registration failures, matched with errors.Is
var (
	ErrMissingRoute   = errors.New("handler has no route descriptor")
	ErrInvalidSchema  = errors.New("invalid schema binding")
	ErrInvalidHandler = errors.New("invalid handler")
	ErrInvalidPath    = errors.New("invalid route path")
)

// RegistrationError is raised at startup when a handler cannot be compiled
// into a route.
type RegistrationError struct {
	Handler     string         // handler type name
	Reason      error          // one of the Err* sentinels
	Message     string         // detail message
	Cause       error          // underlying error cause
	ContextData map[string]any // additional context information
}

// Error implements the error interface
func (e *RegistrationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to register %s: %v", e.Handler, e.Reason)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.ContextData) > 0 {
		keys := make([]string, 0, len(e.ContextData))
		for k := range e.ContextData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = fmt.Sprintf("%s=%v", k, e.ContextData[k])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(pairs, ", "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap exposes both the reason and the cause for error chain inspection
func (e *RegistrationError) Unwrap() []error {
	errs := []error{e.Reason}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Context returns the error context data
func (e *RegistrationError) Context() map[string]any {
	if e.ContextData == nil {
		return make(map[string]any)
	}
	return e.ContextData
}

// WithCause adds an underlying error cause
func (e *RegistrationError) WithCause(cause error) *RegistrationError {
	e.Cause = cause
	return e
}

// WithContext adds context data to the error
func (e *RegistrationError) WithContext(key string, value any) *RegistrationError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]any)
	}
	e.ContextData[key] = value
	return e
}

func newRegistrationError(handler string, reason error, format string, args ...any) *RegistrationError {
	return &RegistrationError{
		Handler: handler,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
	}
}
