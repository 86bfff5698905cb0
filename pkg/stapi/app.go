package stapi

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/stlmpp/stapi/internal/ids"
	"github.com/stlmpp/stapi/internal/jsoncodec"
	"github.com/stlmpp/stapi/internal/logging"
)

// Documentation endpoints
const (
	OpenapiJSONPath = "/openapi.json"
	OpenapiYAMLPath = "/openapi.yaml"
	OpenapiUIPath   = "/openapi"
	HelpPath        = "/help"
)

// Options configures an App
type Options struct {
	// Server is the transport the routes are registered on
	Server WebServer

	// Controllers are handler values or reflect.Types of handlers
	Controllers []any

	// GlobalGuards run on every route after its own guards. Guards given as
	// reflect.Type are skipped when the resolver does not provide them.
	GlobalGuards []any

	Resolver Resolver
	Registry *Registry
	Logger   *zap.Logger
	Metrics  *Metrics
	Tracer   trace.Tracer

	// IDs generates missing correlation ids, UUIDs by default
	IDs ids.Generator

	// Info describes the API in the generated document
	Info Info
}

// App is a set of compiled routes served by a WebServer, together with
// their OpenAPI document.
type App struct {
	server     WebServer
	routes     *RouteRegistry
	openapi    *Openapi
	correlator *Correlator
	logger     *zap.Logger
}

// New compiles every controller, registers the routes and the documentation
// endpoints on the server and builds the OpenAPI document. Any registration
// error aborts startup.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Server == nil {
		return nil, fmt.Errorf("stapi: Options.Server is required")
	}
	if opts.Resolver == nil {
		opts.Resolver = ConstructResolver{}
	}
	if opts.Info.Title == "" {
		opts.Info.Title = "App"
	}
	if opts.Info.Version == "" {
		opts.Info.Version = "1.0.0"
	}

	app := &App{
		server:     opts.Server,
		routes:     NewRouteRegistry(),
		openapi:    NewOpenapi(opts.Info),
		correlator: NewCorrelator(opts.IDs),
		logger:     logging.OrNop(opts.Logger),
	}

	globalGuards, err := resolveGuards(ctx, opts.Resolver, opts.GlobalGuards, true)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve global guards: %w", err)
	}

	compiler := NewCompiler(CompilerOptions{
		Registry:     opts.Registry,
		Resolver:     opts.Resolver,
		GlobalGuards: globalGuards,
		Correlator:   app.correlator,
		Logger:       app.logger,
		Metrics:      opts.Metrics,
		Tracer:       opts.Tracer,
	})

	app.registerDocs()

	for _, controller := range opts.Controllers {
		route, err := compiler.Compile(ctx, controller)
		if err != nil {
			return nil, err
		}
		meta := route.Metadata
		handler := route.Handler()
		app.server.RegisterRoute(meta.Route.Method, meta.Route.Path, handler)

		documented := meta
		if len(globalGuards) > 0 {
			documented.Exceptions = append(slices.Clone(meta.Exceptions), Forbidden)
		}
		app.openapi.AddOperation(documented)

		app.routes.RegisterRoute(RouteInfo{
			Method:      meta.Route.Method,
			Path:        meta.Route.Path,
			HandlerName: meta.HandlerName(),
			Guards:      len(meta.Guards),
			Handler:     handler,
			Route:       route,
		})
		app.logger.Info("route registered",
			zap.String("method", meta.Route.Method),
			zap.String("path", meta.Route.Path.Raw()),
			zap.String("handler", meta.HandlerName()),
		)
	}
	app.openapi.AddMissingExceptions()

	app.server.SetNotFoundHandler(app.notFound)
	return app, nil
}

// Server returns the transport the app is registered on
func (a *App) Server() WebServer { return a.server }

// Routes returns the compiled routes
func (a *App) Routes() *RouteRegistry { return a.routes }

// Document returns the generated OpenAPI document
func (a *App) Document() *Document { return a.openapi.Document() }

func (a *App) registerDocs() {
	a.server.RegisterRoute(http.MethodGet, OpenapiJSONPath, a.correlated(a.serveJSON))
	a.server.RegisterRoute(http.MethodGet, OpenapiYAMLPath, a.correlated(a.serveYAML))
	a.server.RegisterRoute(http.MethodGet, OpenapiUIPath, a.correlated(a.serveUI))
	a.server.RegisterRoute(http.MethodGet, HelpPath, a.correlated(func(rc RequestContext) error {
		return rc.Response().Redirect(http.StatusMovedPermanently, OpenapiUIPath)
	}))
}

// correlated stamps the correlation headers before next writes the reply
func (a *App) correlated(next HandlerFunc) HandlerFunc {
	return func(rc RequestContext) error {
		a.correlator.WriteHeaders(rc.Response(), a.correlator.Derive(rc.Request()))
		return next(rc)
	}
}

func (a *App) serveJSON(rc RequestContext) error {
	body, err := jsoncodec.Marshal(a.Document())
	if err != nil {
		return err
	}
	return rc.Response().Blob(http.StatusOK, contentTypeJSON, body)
}

func (a *App) serveYAML(rc RequestContext) error {
	body, err := MarshalDocumentYAML(a.Document())
	if err != nil {
		return err
	}
	return rc.Response().Blob(http.StatusOK, "application/yaml", body)
}

func (a *App) serveUI(rc RequestContext) error {
	return rc.Response().Blob(http.StatusOK, "text/html; charset=utf-8", []byte(viewerHTML))
}

// notFound answers unmatched requests with a route not found exception
func (a *App) notFound(rc RequestContext) error {
	correlation := a.correlator.Derive(rc.Request())
	exc := RouteNotFound("")
	a.logger.Debug("route not found",
		append(correlationFields(correlation),
			zap.String("method", rc.Method()),
			zap.String("path", rc.Path()),
		)...,
	)
	reply := exceptionReply(exc, correlation)
	a.correlator.WriteHeaders(rc.Response(), correlation)
	return rc.Response().Blob(reply.Status, reply.ContentType, reply.Body)
}

// MarshalDocumentYAML renders doc as YAML
func MarshalDocumentYAML(doc *Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

const viewerHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API documentation</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({
        url: '` + OpenapiJSONPath + `',
        dom_id: '#swagger-ui',
        persistAuthorization: true,
        displayRequestDuration: true,
        deepLinking: true,
      });
    };
  </script>
</body>
</html>
`
