package adapters

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stlmpp/stapi/pkg/stapi"
)

// ginWildcard is the name Gin gives to the catch-all segment
const ginWildcard = "wildcard"

// GinAdapter implements stapi.WebServer for the Gin framework
type GinAdapter struct {
	engine *gin.Engine

	mu     sync.Mutex
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a new Gin adapter with a bare Gin engine
func NewDefaultGinAdapter() *GinAdapter {
	return &GinAdapter{engine: gin.New()}
}

// convertPath converts a route path to Gin path format
func (ga *GinAdapter) convertPath(path stapi.Path) string {
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
			segments = append(segments, "*"+ginWildcard)
		default:
			segments = append(segments, part.Value)
		}
	}
	return "/" + strings.Join(segments, "/")
}

// RegisterRoute registers a route with the Gin server
func (ga *GinAdapter) RegisterRoute(method string, path stapi.Path, handler stapi.HandlerFunc) {
	ga.engine.Handle(method, ga.convertPath(path), ga.convertHandler(handler))
}

// SetNotFoundHandler answers unmatched routes with handler
func (ga *GinAdapter) SetNotFoundHandler(handler stapi.HandlerFunc) {
	ga.engine.NoRoute(ga.convertHandler(handler))
}

// Start starts the Gin server behind an http.Server so it can be stopped
func (ga *GinAdapter) Start(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           ga.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ga.mu.Lock()
	ga.server = server
	ga.mu.Unlock()
	return server.ListenAndServe()
}

// Stop gracefully shuts the server down
func (ga *GinAdapter) Stop(ctx context.Context) error {
	ga.mu.Lock()
	server := ga.server
	ga.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// convertHandler converts stapi.HandlerFunc to gin.HandlerFunc
func (ga *GinAdapter) convertHandler(handler stapi.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := handler(&GinRequestContext{context: c}); err != nil {
			_ = c.Error(err)
			if !c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}
	}
}

// GinRequestContext implements stapi.RequestContext for Gin
type GinRequestContext struct {
	context *gin.Context
}

func (grc *GinRequestContext) Context() context.Context {
	return grc.context.Request.Context()
}

func (grc *GinRequestContext) Method() string {
	return grc.context.Request.Method
}

func (grc *GinRequestContext) Path() string {
	return grc.context.Request.URL.Path
}

// Param returns path parameter by name; "*" reads the catch-all segment
// without its leading slash.
func (grc *GinRequestContext) Param(key string) string {
	if key == "*" {
		return strings.TrimPrefix(grc.context.Param(ginWildcard), "/")
	}
	return grc.context.Param(key)
}

func (grc *GinRequestContext) ParamNames() []string {
	names := make([]string, 0, len(grc.context.Params))
	for _, param := range grc.context.Params {
		if param.Key == ginWildcard {
			names = append(names, "*")
			continue
		}
		names = append(names, param.Key)
	}
	return names
}

func (grc *GinRequestContext) QueryParams() map[string][]string {
	return grc.context.Request.URL.Query()
}

func (grc *GinRequestContext) Request() stapi.RequestInterface {
	return &GinRequestInterface{request: grc.context.Request}
}

func (grc *GinRequestContext) Response() stapi.ResponseInterface {
	return &GinResponseInterface{context: grc.context}
}

// GinRequestInterface implements stapi.RequestInterface for Gin
type GinRequestInterface struct {
	request *http.Request
}

func (gri *GinRequestInterface) Header(key string) string {
	return gri.request.Header.Get(key)
}

func (gri *GinRequestInterface) Headers() map[string][]string {
	return gri.request.Header
}

func (gri *GinRequestInterface) Body() ([]byte, error) {
	if gri.request.Body == nil {
		return nil, nil
	}
	return io.ReadAll(gri.request.Body)
}

func (gri *GinRequestInterface) ContentType() string {
	return gri.request.Header.Get("Content-Type")
}

// GinResponseInterface implements stapi.ResponseInterface for Gin
type GinResponseInterface struct {
	context *gin.Context
}

func (gri *GinResponseInterface) Header(key string) string {
	return gri.context.Writer.Header().Get(key)
}

func (gri *GinResponseInterface) SetHeader(key, value string) {
	gri.context.Header(key, value)
}

func (gri *GinResponseInterface) Blob(code int, contentType string, b []byte) error {
	gri.context.Data(code, contentType, b)
	return nil
}

func (gri *GinResponseInterface) String(code int, s string) error {
	gri.context.String(code, "%s", s)
	return nil
}

func (gri *GinResponseInterface) Redirect(code int, url string) error {
	gri.context.Redirect(code, url)
	return nil
}
