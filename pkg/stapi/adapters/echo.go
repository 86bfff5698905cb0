package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stlmpp/stapi/pkg/stapi"
)

// EchoAdapter implements stapi.WebServer for Echo v4
type EchoAdapter struct {
	engine   *echo.Echo
	notFound stapi.HandlerFunc
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	ea := &EchoAdapter{engine: e}
	e.HTTPErrorHandler = ea.handleError
	return ea
}

// NewDefaultEchoAdapter creates a new Echo adapter with a default Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return NewEchoAdapter(e)
}

// convertPath converts a route path to Echo path format
func (ea *EchoAdapter) convertPath(path stapi.Path) string {
	parts, err := path.Parts()
	if err != nil {
		return path.Raw()
	}
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case stapi.ParameterPart:
			segments = append(segments, ":"+part.Value)
		case stapi.WildcardPart:
			segments = append(segments, "*")
		default:
			segments = append(segments, part.Value)
		}
	}
	return "/" + strings.Join(segments, "/")
}

// RegisterRoute registers a route with the Echo server
func (ea *EchoAdapter) RegisterRoute(method string, path stapi.Path, handler stapi.HandlerFunc) {
	ea.engine.Add(method, ea.convertPath(path), ea.convertHandler(handler))
}

// SetNotFoundHandler answers unmatched paths and methods with handler
func (ea *EchoAdapter) SetNotFoundHandler(handler stapi.HandlerFunc) {
	ea.notFound = handler
}

// handleError routes Echo's not found and method not allowed errors to
// the not found handler.
func (ea *EchoAdapter) handleError(err error, c echo.Context) {
	var he *echo.HTTPError
	if ea.notFound != nil && errors.As(err, &he) &&
		(he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed) {
		if herr := ea.notFound(&EchoRequestContext{context: c}); herr == nil {
			return
		}
	}
	ea.engine.DefaultHTTPErrorHandler(err, c)
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	return ea.engine.Start(addr)
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

// convertHandler converts stapi.HandlerFunc to echo.HandlerFunc
func (ea *EchoAdapter) convertHandler(handler stapi.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handler(&EchoRequestContext{context: c})
	}
}

// EchoRequestContext implements stapi.RequestContext for Echo
type EchoRequestContext struct {
	context echo.Context
}

func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// Param returns path parameter by name
func (erc *EchoRequestContext) Param(key string) string {
	return erc.context.Param(key)
}

// ParamNames returns path parameter names
func (erc *EchoRequestContext) ParamNames() []string {
	return erc.context.ParamNames()
}

// QueryParams returns all query parameters
func (erc *EchoRequestContext) QueryParams() map[string][]string {
	return erc.context.QueryParams()
}

// Request returns the request interface
func (erc *EchoRequestContext) Request() stapi.RequestInterface {
	return &EchoRequestInterface{request: erc.context.Request()}
}

// Response returns the response interface
func (erc *EchoRequestContext) Response() stapi.ResponseInterface {
	return &EchoResponseInterface{context: erc.context}
}

// EchoRequestInterface implements stapi.RequestInterface for Echo
type EchoRequestInterface struct {
	request *http.Request
}

func (eri *EchoRequestInterface) Header(key string) string {
	return eri.request.Header.Get(key)
}

func (eri *EchoRequestInterface) Headers() map[string][]string {
	return eri.request.Header
}

func (eri *EchoRequestInterface) Body() ([]byte, error) {
	if eri.request.Body == nil {
		return nil, nil
	}
	return io.ReadAll(eri.request.Body)
}

func (eri *EchoRequestInterface) ContentType() string {
	return eri.request.Header.Get(echo.HeaderContentType)
}

// EchoResponseInterface implements stapi.ResponseInterface for Echo
type EchoResponseInterface struct {
	context echo.Context
}

func (eri *EchoResponseInterface) Header(key string) string {
	return eri.context.Response().Header().Get(key)
}

func (eri *EchoResponseInterface) SetHeader(key, value string) {
	eri.context.Response().Header().Set(key, value)
}

func (eri *EchoResponseInterface) Blob(code int, contentType string, b []byte) error {
	return eri.context.Blob(code, contentType, b)
}

func (eri *EchoResponseInterface) String(code int, s string) error {
	return eri.context.String(code, s)
}

func (eri *EchoResponseInterface) Redirect(code int, url string) error {
	return eri.context.Redirect(code, url)
}
