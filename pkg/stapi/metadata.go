package stapi

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/stlmpp/stapi/pkg/schema"
)

// EntryMethod is the method the pipeline invokes on a handler
const EntryMethod = "Handle"

// ClassMember is the member name of class-level metadata
const ClassMember = ""

// MetadataKind identifies what a registry entry describes
type MetadataKind int

const (
	RouteKind MetadataKind = iota
	ParamsKind
	QueryKind
	HeadersKind
	BodyKind
	ContextKind
	ResponseKind
	GuardsKind
	ExceptionsKind
)

// String returns the string representation of the kind
func (k MetadataKind) String() string {
	switch k {
	case RouteKind:
		return "route"
	case ParamsKind:
		return "params"
	case QueryKind:
		return "query"
	case HeadersKind:
		return "headers"
	case BodyKind:
		return "body"
	case ContextKind:
		return "context"
	case ResponseKind:
		return "response"
	case GuardsKind:
		return "guards"
	case ExceptionsKind:
		return "exceptions"
	default:
		return "unknown"
	}
}

// fallsBackToClass reports whether member-level lookups of the kind fall
// back to the class-level entry.
func (k MetadataKind) fallsBackToClass() bool {
	return k == GuardsKind || k == ExceptionsKind || k == ResponseKind
}

// RouteDescriptor is the path and method a handler serves
type RouteDescriptor struct {
	Method string
	Path   Path
}

// ParameterBinding maps one source of request data to a positional
// argument of the entry method.
type ParameterBinding struct {
	Kind MetadataKind
	Slot int
	// Schema is nil when the raw value is passed through
	Schema schema.Schema
}

// ResponseContract is the declared shape and status of a successful reply
type ResponseContract struct {
	Schema     schema.Schema
	StatusCode int
}

// RouteMetadata is everything registered for one handler
type RouteMetadata struct {
	Handler reflect.Type
	Route   RouteDescriptor

	Params  *ParameterBinding
	Query   *ParameterBinding
	Headers *ParameterBinding
	Body    *ParameterBinding
	Context *ParameterBinding

	Response *ResponseContract
	// Guards holds Guard values and reflect.Types resolved at compile time
	Guards     []any
	Exceptions []ExceptionFactory
}

// Bindings returns the bound parameters ordered by kind
func (m RouteMetadata) Bindings() []ParameterBinding {
	var out []ParameterBinding
	for _, b := range []*ParameterBinding{m.Params, m.Query, m.Headers, m.Body, m.Context} {
		if b != nil {
			out = append(out, *b)
		}
	}
	return out
}

// HandlerName returns the handler type name
func (m RouteMetadata) HandlerName() string {
	return typeName(m.Handler)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}
