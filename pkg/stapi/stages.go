package stapi

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/stlmpp/stapi/internal/jsoncodec"
	"github.com/stlmpp/stapi/pkg/schema"
)

// Stage is one step of a compiled pipeline. A non-nil exception ends the
// request with that exception.
type Stage func(ec *ExecutionContext) *Exception

// Reply is the outcome of a pipeline run, ready to be written
type Reply struct {
	Status      int
	ContentType string
	Body        []byte
}

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

// paramsBag maps each path parameter name to its value
func paramsBag(rc RequestContext) map[string]string {
	bag := make(map[string]string)
	for _, name := range rc.ParamNames() {
		bag[name] = rc.Param(name)
	}
	return bag
}

// queryBag maps each query key to its value, or to all of its values when
// the key is repeated.
func queryBag(rc RequestContext) map[string]any {
	bag := make(map[string]any)
	for key, values := range rc.QueryParams() {
		switch len(values) {
		case 0:
			bag[key] = ""
		case 1:
			bag[key] = values[0]
		default:
			bag[key] = append([]string(nil), values...)
		}
	}
	return bag
}

// headersBag maps each lower-cased header name to its values joined by ", "
func headersBag(rc RequestContext) map[string]string {
	bag := make(map[string]string)
	for name, values := range rc.Request().Headers() {
		bag[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return bag
}

// readBody decodes the JSON request body. An empty body is nil.
func readBody(rc RequestContext) (any, *Exception) {
	raw, err := rc.Request().Body()
	if err != nil {
		return nil, BadRequestBody("failed to read body: " + err.Error())
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var body any
	if err := jsoncodec.Unmarshal(raw, &body); err != nil {
		return nil, BadRequestBody("malformed JSON body").WithCause(err)
	}
	return body, nil
}

func parse(ec *ExecutionContext, s schema.Schema, value any, factory ExceptionFactory) (any, *Exception) {
	if s == nil {
		return value, nil
	}
	result := s.SafeParse(ec.Context(), value)
	if !result.Success {
		return nil, factory(result.Issues.Format())
	}
	return result.Data, nil
}

// parseBag is parse for the string bags. Only these are coerced by the
// schema engines.
func parseBag[V any](ec *ExecutionContext, s schema.Schema, bag map[string]V, factory ExceptionFactory) (any, *Exception) {
	if s == nil {
		return bag, nil
	}
	return parse(ec, s, schema.BagOf(bag), factory)
}

func paramsStage(binding *ParameterBinding) Stage {
	return func(ec *ExecutionContext) *Exception {
		value, exc := parseBag(ec, binding.Schema, paramsBag(ec.Request()), BadRequestParams)
		ec.Params = value
		return exc
	}
}

func queryStage(binding *ParameterBinding) Stage {
	return func(ec *ExecutionContext) *Exception {
		value, exc := parseBag(ec, binding.Schema, queryBag(ec.Request()), BadRequestQuery)
		ec.Query = value
		return exc
	}
}

func bodyStage(binding *ParameterBinding) Stage {
	return func(ec *ExecutionContext) *Exception {
		raw, exc := readBody(ec.Request())
		if exc != nil {
			return exc
		}
		value, exc := parse(ec, binding.Schema, raw, BadRequestBody)
		ec.Body = value
		return exc
	}
}

func headersStage(binding *ParameterBinding) Stage {
	return func(ec *ExecutionContext) *Exception {
		value, exc := parseBag(ec, binding.Schema, headersBag(ec.Request()), BadRequestHeaders)
		ec.Headers = value
		return exc
	}
}

func guardsStage(chain GuardChain) Stage {
	return chain.Evaluate
}

// responseStage applies the response contract to the handler result.
// Without a contract the raw result is sent with status 200.
func responseStage(contract *ResponseContract) Stage {
	return func(ec *ExecutionContext) *Exception {
		if contract == nil {
			ec.status = http.StatusOK
			return nil
		}
		ec.status = contract.StatusCode
		if contract.Schema == nil {
			return nil
		}
		result := contract.Schema.SafeParse(ec.Context(), ec.result)
		if !result.Success {
			return InvalidResponse(result.Issues.Format())
		}
		ec.result = result.Data
		return nil
	}
}

// serializeStage renders strings as plain text and everything else as JSON
func serializeStage(ec *ExecutionContext) *Exception {
	if s, ok := ec.result.(string); ok {
		ec.reply = Reply{Status: ec.status, ContentType: contentTypeText, Body: []byte(s)}
		return nil
	}
	body, err := jsoncodec.Marshal(ec.result)
	if err != nil {
		return UnknownInternalServerError("").WithCause(err)
	}
	ec.reply = Reply{Status: ec.status, ContentType: contentTypeJSON, Body: body}
	return nil
}

// exceptionReply renders exc as the JSON error body
func exceptionReply(exc *Exception, ids CorrelationIDs) Reply {
	body, err := jsoncodec.Marshal(exc.Body(ids))
	if err != nil {
		body = []byte(`{"errorCode":"` + exc.ErrorCode() + `"}`)
	}
	return Reply{Status: exc.Status(), ContentType: contentTypeJSON, Body: body}
}

// runStages runs stages in order and returns the reply. It never panics:
// stage panics become unknown internal server errors.
func runStages(ec *ExecutionContext, stages []Stage) Reply {
	for _, stage := range stages {
		if exc := runStage(stage, ec); exc != nil {
			ec.exception = exc
			return exceptionReply(exc, ec.IDs())
		}
	}
	return ec.reply
}

func runStage(stage Stage, ec *ExecutionContext) (exc *Exception) {
	defer func() {
		if r := recover(); r != nil {
			exc = UnknownInternalServerError("").WithCause(panicError(r))
		}
	}()
	return stage(ec)
}
