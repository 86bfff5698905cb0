package stapi

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/stlmpp/stapi/internal/jsoncodec"
	"github.com/stlmpp/stapi/pkg/schema"
)

const (
	openapiVersion = "3.0.0"

	// correlationIDExample is the id used in documented error examples
	correlationIDExample = "66811850-87e9-493b-b956-0b563e69297d"
)

// exceptionSchema is the JSON schema of ExceptionBody
var exceptionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"errorCode":     map[string]any{"type": "string"},
		"error":         map[string]any{"type": "string"},
		"message":       map[string]any{"type": "string"},
		"status":        map[string]any{"type": "integer"},
		"correlationId": map[string]any{"type": "string"},
		"traceId":       map[string]any{"type": "string"},
		"description":   map[string]any{"type": "string"},
	},
	"required": []string{"errorCode", "error", "message", "status", "correlationId", "traceId"},
}

// correlationHeaders are documented on every error response
func correlationHeaders() map[string]Header {
	headers := make(map[string]Header, 3)
	for _, name := range []string{HeaderCorrelationID, HeaderTraceID, HeaderExecutionID} {
		headers[name] = Header{Schema: map[string]any{"type": "string", "example": correlationIDExample}}
	}
	return headers
}

// Openapi accumulates operations into an OpenAPI document
type Openapi struct {
	document *Document
}

// NewOpenapi starts an empty document
func NewOpenapi(info Info) *Openapi {
	return &Openapi{
		document: &Document{
			OpenAPI: openapiVersion,
			Info:    info,
			Paths:   make(map[string]PathItem),
		},
	}
}

// AddOperation documents the route described by meta. Adding the same path
// and method again replaces the previous operation.
func (o *Openapi) AddOperation(meta RouteMetadata) *Openapi {
	path := NewPath(meta.Route.Path.Raw())
	method := normalizeMethod(meta.Route.Method)

	op := &Operation{
		OperationID: path.OperationID(method),
		Parameters:  []Parameter{},
		Responses:   make(map[string]*Response),
	}

	if meta.Body != nil && meta.Body.Schema != nil {
		op.RequestBody = &RequestBody{
			Required: !meta.Body.Schema.Optional(),
			Content: map[string]MediaType{
				contentTypeJSON: {Schema: meta.Body.Schema.JSONSchema()},
			},
		}
	}

	if meta.Params != nil && meta.Params.Schema != nil {
		op.Parameters = append(op.Parameters, parameters(meta.Params.Schema, "path")...)
	} else {
		for _, name := range path.ParamNames() {
			op.Parameters = append(op.Parameters, Parameter{
				Name:     name,
				In:       "path",
				Required: true,
				Schema:   map[string]any{"type": "string"},
			})
		}
	}
	if meta.Query != nil && meta.Query.Schema != nil {
		op.Parameters = append(op.Parameters, parameters(meta.Query.Schema, "query")...)
	}
	if meta.Headers != nil && meta.Headers.Schema != nil {
		op.Parameters = append(op.Parameters, parameters(meta.Headers.Schema, "header")...)
	}

	if contract := meta.Response; contract != nil {
		response := &Response{Description: http.StatusText(contract.StatusCode)}
		if contract.Schema != nil {
			response.Content = map[string]MediaType{
				contentTypeJSON: {Schema: contract.Schema.JSONSchema()},
			}
		}
		op.Responses[strconv.Itoa(contract.StatusCode)] = response
	}

	factories := slices.Clone(meta.Exceptions)
	if len(meta.Guards) > 0 {
		factories = append(factories, Forbidden)
	}
	for _, r := range exceptionResponses(factories) {
		op.Responses[r.status] = r.response
	}

	item, ok := o.document.Paths[path.OpenAPI()]
	if !ok {
		item = make(PathItem)
		o.document.Paths[path.OpenAPI()] = item
	}
	item[strings.ToLower(method)] = op
	return o
}

// AddMissingExceptions adds the built-in error responses to every
// operation that does not document their status yet.
func (o *Openapi) AddMissingExceptions() *Openapi {
	builtins := exceptionResponses(nil)
	for _, item := range o.document.Paths {
		for _, op := range item {
			if op.Responses == nil {
				op.Responses = make(map[string]*Response)
			}
			for _, r := range builtins {
				if _, ok := op.Responses[r.status]; !ok {
					op.Responses[r.status] = r.response
				}
			}
		}
	}
	return o
}

// Document returns the document built so far
func (o *Openapi) Document() *Document {
	return o.document
}

func parameters(s schema.Schema, in string) []Parameter {
	obj, ok := s.(schema.ObjectSchema)
	if !ok {
		return nil
	}
	fields := obj.Fields()
	params := make([]Parameter, 0, len(fields))
	for _, f := range fields {
		params = append(params, Parameter{
			Name:     f.Name,
			In:       in,
			Required: f.Required,
			Schema:   f.JSONSchema,
		})
	}
	return params
}

type exceptionResponse struct {
	status   string
	response *Response
}

// exceptionResponses groups the declared exceptions and the built-in ones
// by status, in order of first appearance. Each group lists one example per
// error code.
func exceptionResponses(declared []ExceptionFactory) []exceptionResponse {
	factories := append(slices.Clone(declared), builtinExceptions...)
	ids := CorrelationIDs{CorrelationID: correlationIDExample, TraceID: correlationIDExample}

	var order []int
	byStatus := make(map[int]map[string]Example)
	for _, factory := range factories {
		exc := factory("")
		examples, ok := byStatus[exc.Status()]
		if !ok {
			examples = make(map[string]Example)
			byStatus[exc.Status()] = examples
			order = append(order, exc.Status())
		}
		value, err := jsoncodec.Normalize(exc.Body(ids))
		if err != nil {
			value = exc.Body(ids)
		}
		examples[exc.ErrorCode()] = Example{Value: value, Description: exc.Description()}
	}

	out := make([]exceptionResponse, 0, len(order))
	for _, status := range order {
		out = append(out, exceptionResponse{
			status: strconv.Itoa(status),
			response: &Response{
				Description: http.StatusText(status),
				Headers:     correlationHeaders(),
				Content: map[string]MediaType{
					contentTypeJSON: {Schema: exceptionSchema, Examples: byStatus[status]},
				},
			},
		})
	}
	return out
}
