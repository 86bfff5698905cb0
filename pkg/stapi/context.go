package stapi

import (
	"context"
)

// CorrelationIDs identify a request across services
type CorrelationIDs struct {
	CorrelationID string
	TraceID       string
	ExecutionID   string
}

type correlationKey struct{}

// WithCorrelation returns a copy of ctx carrying ids
func WithCorrelation(ctx context.Context, ids CorrelationIDs) context.Context {
	return context.WithValue(ctx, correlationKey{}, ids)
}

// CorrelationFromContext returns the ids of the request ctx belongs to
func CorrelationFromContext(ctx context.Context) (CorrelationIDs, bool) {
	ids, ok := ctx.Value(correlationKey{}).(CorrelationIDs)
	return ids, ok
}

// ExecutionContext is the per-request state shared by the pipeline stages,
// guards and the handler. It is created once per request and never shared
// between requests.
type ExecutionContext struct {
	ctx     context.Context
	ids     CorrelationIDs
	request RequestContext

	// Parsed inputs, filled in by the validation stages. Each holds the raw
	// bag when its binding has no schema and nil when nothing is bound.
	Params  any
	Query   any
	Headers any
	Body    any

	// Pipeline state after the handler ran
	result    any
	status    int
	reply     Reply
	exception *Exception
}

// NewExecutionContext creates the context of a request. ctx is extended
// with ids so code holding only a context.Context can find them.
func NewExecutionContext(ctx context.Context, ids CorrelationIDs, request RequestContext) *ExecutionContext {
	return &ExecutionContext{
		ctx:     WithCorrelation(ctx, ids),
		ids:     ids,
		request: request,
	}
}

func (ec *ExecutionContext) Context() context.Context { return ec.ctx }
func (ec *ExecutionContext) IDs() CorrelationIDs      { return ec.ids }
func (ec *ExecutionContext) CorrelationID() string    { return ec.ids.CorrelationID }
func (ec *ExecutionContext) TraceID() string          { return ec.ids.TraceID }
func (ec *ExecutionContext) ExecutionID() string      { return ec.ids.ExecutionID }

// Request returns the transport request. It is nil for contexts built
// outside of an HTTP exchange.
func (ec *ExecutionContext) Request() RequestContext { return ec.request }

// Exception returns the exception the request ended with, if any
func (ec *ExecutionContext) Exception() *Exception { return ec.exception }
