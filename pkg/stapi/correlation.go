package stapi

import (
	"github.com/stlmpp/stapi/internal/ids"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderTraceID       = "x-trace-id"
	HeaderExecutionID   = "x-execution-id"
	HeaderAPI           = "x-st-api"
)

// Correlator derives the correlation ids of incoming requests and stamps
// them on responses.
type Correlator struct {
	generate ids.Generator
}

// NewCorrelator returns a Correlator generating missing ids with generate,
// UUIDs when nil.
func NewCorrelator(generate ids.Generator) *Correlator {
	if generate == nil {
		generate = ids.UUID
	}
	return &Correlator{generate: generate}
}

// Derive reads the ids from the request headers, generating each one that
// is absent or empty.
func (c *Correlator) Derive(req RequestInterface) CorrelationIDs {
	return CorrelationIDs{
		CorrelationID: c.headerOrNew(req, HeaderCorrelationID),
		TraceID:       c.headerOrNew(req, HeaderTraceID),
		// TODO: confirm with upstream clients whether the execution id should
		// come from x-execution-id; it has always been read from x-trace-id.
		ExecutionID: c.headerOrNew(req, HeaderTraceID),
	}
}

// WriteHeaders sets the correlation headers on res. It must run before the
// body is written.
func (c *Correlator) WriteHeaders(res ResponseInterface, ids CorrelationIDs) {
	res.SetHeader(HeaderCorrelationID, ids.CorrelationID)
	res.SetHeader(HeaderTraceID, ids.TraceID)
	res.SetHeader(HeaderExecutionID, ids.ExecutionID)
	res.SetHeader(HeaderAPI, "true")
}

func (c *Correlator) headerOrNew(req RequestInterface, name string) string {
	if req != nil {
		if value := req.Header(name); value != "" {
			return value
		}
	}
	return c.generate()
}
