package adapters

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stlmpp/stapi/pkg/stapi"
)

// FiberAdapter implements stapi.WebServer for Fiber v2
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a new Fiber adapter
func NewFiberAdapter(app *fiber.App) *FiberAdapter {
	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with a default Fiber app
func NewDefaultFiberAdapter() *FiberAdapter {
	return &FiberAdapter{app: fiber.New(fiber.Config{DisableStartupMessage: true})}
}

// convertPath converts a route path to Fiber path format
func (fa *FiberAdapter) convertPath(path stapi.Path) string {
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

// RegisterRoute registers a route with the Fiber server
func (fa *FiberAdapter) RegisterRoute(method string, path stapi.Path, handler stapi.HandlerFunc) {
	fa.app.Add(method, fa.convertPath(path), fa.convertHandler(handler))
}

// SetNotFoundHandler answers every request no earlier route handled. It
// must be called after all routes are registered.
func (fa *FiberAdapter) SetNotFoundHandler(handler stapi.HandlerFunc) {
	fa.app.Use(fa.convertHandler(handler))
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "fiber"
}

// GetApp returns the underlying Fiber app
func (fa *FiberAdapter) GetApp() *fiber.App {
	return fa.app
}

// convertHandler converts stapi.HandlerFunc to fiber.Handler
func (fa *FiberAdapter) convertHandler(handler stapi.HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handler(&FiberRequestContext{ctx: c})
	}
}

// FiberRequestContext implements stapi.RequestContext for Fiber
type FiberRequestContext struct {
	ctx *fiber.Ctx
}

func (frc *FiberRequestContext) Context() context.Context {
	return frc.ctx.UserContext()
}

func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

func (frc *FiberRequestContext) Param(key string) string {
	return frc.ctx.Params(key)
}

// ParamNames returns path parameter names. Fiber numbers wildcards ("*1");
// they are reported as "*".
func (frc *FiberRequestContext) ParamNames() []string {
	params := frc.ctx.Route().Params
	names := make([]string, 0, len(params))
	for _, name := range params {
		if strings.HasPrefix(name, "*") {
			name = "*"
		}
		names = append(names, name)
	}
	return names
}

func (frc *FiberRequestContext) QueryParams() map[string][]string {
	params := make(map[string][]string)
	frc.ctx.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		params[k] = append(params[k], string(value))
	})
	return params
}

func (frc *FiberRequestContext) Request() stapi.RequestInterface {
	return &FiberRequestInterface{ctx: frc.ctx}
}

func (frc *FiberRequestContext) Response() stapi.ResponseInterface {
	return &FiberResponseInterface{ctx: frc.ctx}
}

// FiberRequestInterface implements stapi.RequestInterface for Fiber
type FiberRequestInterface struct {
	ctx *fiber.Ctx
}

func (fri *FiberRequestInterface) Header(key string) string {
	return fri.ctx.Get(key)
}

func (fri *FiberRequestInterface) Headers() map[string][]string {
	return fri.ctx.GetReqHeaders()
}

// Body returns a copy of the body; Fiber reuses its buffers between requests
func (fri *FiberRequestInterface) Body() ([]byte, error) {
	return append([]byte(nil), fri.ctx.Body()...), nil
}

func (fri *FiberRequestInterface) ContentType() string {
	return fri.ctx.Get(fiber.HeaderContentType)
}

// FiberResponseInterface implements stapi.ResponseInterface for Fiber
type FiberResponseInterface struct {
	ctx *fiber.Ctx
}

func (fri *FiberResponseInterface) Header(key string) string {
	return fri.ctx.GetRespHeader(key)
}

func (fri *FiberResponseInterface) SetHeader(key, value string) {
	fri.ctx.Set(key, value)
}

func (fri *FiberResponseInterface) Blob(code int, contentType string, b []byte) error {
	fri.ctx.Status(code)
	fri.ctx.Set(fiber.HeaderContentType, contentType)
	return fri.ctx.Send(b)
}

func (fri *FiberResponseInterface) String(code int, s string) error {
	return fri.ctx.Status(code).SendString(s)
}

func (fri *FiberResponseInterface) Redirect(code int, url string) error {
	return fri.ctx.Redirect(url, code)
}
