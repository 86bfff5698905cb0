package stapi

import (
	"context"
)

// WebServer is the contract transport adapters implement
type WebServer interface {
	// RegisterRoute binds handler to method and path
	RegisterRoute(method string, path Path, handler HandlerFunc)

	// SetNotFoundHandler sets the handler for requests no route matches
	SetNotFoundHandler(handler HandlerFunc)

	// Server lifecycle
	Start(addr string) error
	Stop(ctx context.Context) error

	// Name identifies the adapter, e.g. "echo"
	Name() string
}

// RequestContext provides a framework-agnostic view of one HTTP exchange
type RequestContext interface {
	// Context is the request's context, cancelled when the client goes away
	Context() context.Context

	Method() string
	Path() string

	// Param returns a path parameter; wildcards are named "*"
	Param(key string) string
	ParamNames() []string

	QueryParams() map[string][]string

	Request() RequestInterface
	Response() ResponseInterface
}

// RequestInterface provides access to the underlying request
type RequestInterface interface {
	Header(key string) string
	Headers() map[string][]string
	// Body reads the full request body
	Body() ([]byte, error)
	ContentType() string
}

// ResponseInterface provides response writing capabilities. Headers must be
// set before the body is written.
type ResponseInterface interface {
	Header(key string) string
	SetHeader(key, value string)

	Blob(code int, contentType string, b []byte) error
	String(code int, s string) error
	Redirect(code int, url string) error
}

// HandlerFunc defines the signature for HTTP handlers
type HandlerFunc func(RequestContext) error
