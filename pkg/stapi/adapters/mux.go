package adapters

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/stlmpp/stapi/pkg/stapi"
)

// muxWildcard is the variable name of the catch-all segment
const muxWildcard = "wildcard"

// MuxAdapter implements stapi.WebServer for gorilla/mux
type MuxAdapter struct {
	router *mux.Router

	mu     sync.Mutex
	server *http.Server
}

// NewMuxAdapter creates a new gorilla/mux adapter
func NewMuxAdapter(router *mux.Router) *MuxAdapter {
	return &MuxAdapter{router: router}
}

// NewDefaultMuxAdapter creates a new gorilla/mux adapter with a new router
func NewDefaultMuxAdapter() *MuxAdapter {
	return NewMuxAdapter(mux.NewRouter())
}

// convertPath converts a route path to gorilla/mux path format
func (ma *MuxAdapter) convertPath(path stapi.Path) string {
	parts, err := path.Parts()
	if err != nil {
		return path.Raw()
	}
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case stapi.ParameterPart:
			segments = append(segments, "{"+part.Value+"}")
		case stapi.WildcardPart:
			segments = append(segments, "{"+muxWildcard+":.*}")
		default:
			segments = append(segments, part.Value)
		}
	}
	return "/" + strings.Join(segments, "/")
}

// RegisterRoute registers a route with the router
func (ma *MuxAdapter) RegisterRoute(method string, path stapi.Path, handler stapi.HandlerFunc) {
	ma.router.HandleFunc(ma.convertPath(path), ma.convertHandler(handler)).Methods(method)
}

// SetNotFoundHandler answers unmatched paths and methods with handler
func (ma *MuxAdapter) SetNotFoundHandler(handler stapi.HandlerFunc) {
	h := ma.convertHandler(handler)
	ma.router.NotFoundHandler = h
	ma.router.MethodNotAllowedHandler = h
}

// Start serves the router until Stop is called
func (ma *MuxAdapter) Start(addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           ma.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ma.mu.Lock()
	ma.server = server
	ma.mu.Unlock()
	return server.ListenAndServe()
}

// Stop gracefully shuts the server down
func (ma *MuxAdapter) Stop(ctx context.Context) error {
	ma.mu.Lock()
	server := ma.server
	ma.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Name returns the adapter name
func (ma *MuxAdapter) Name() string {
	return "mux"
}

// GetRouter returns the underlying router
func (ma *MuxAdapter) GetRouter() *mux.Router {
	return ma.router
}

func (ma *MuxAdapter) convertHandler(handler stapi.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := handler(&MuxRequestContext{writer: w, request: r}); err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// MuxRequestContext implements stapi.RequestContext for net/http handlers
// routed by gorilla/mux
type MuxRequestContext struct {
	writer  http.ResponseWriter
	request *http.Request
}

func (mrc *MuxRequestContext) Context() context.Context {
	return mrc.request.Context()
}

func (mrc *MuxRequestContext) Method() string {
	return mrc.request.Method
}

func (mrc *MuxRequestContext) Path() string {
	return mrc.request.URL.Path
}

func (mrc *MuxRequestContext) Param(key string) string {
	if key == "*" {
		key = muxWildcard
	}
	return mux.Vars(mrc.request)[key]
}

func (mrc *MuxRequestContext) ParamNames() []string {
	vars := mux.Vars(mrc.request)
	names := make([]string, 0, len(vars))
	for name := range vars {
		if name == muxWildcard {
			name = "*"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (mrc *MuxRequestContext) QueryParams() map[string][]string {
	return mrc.request.URL.Query()
}

func (mrc *MuxRequestContext) Request() stapi.RequestInterface {
	return &MuxRequestInterface{request: mrc.request}
}

func (mrc *MuxRequestContext) Response() stapi.ResponseInterface {
	return &MuxResponseInterface{writer: mrc.writer, request: mrc.request}
}

// MuxRequestInterface implements stapi.RequestInterface for net/http
type MuxRequestInterface struct {
	request *http.Request
}

func (mri *MuxRequestInterface) Header(key string) string {
	return mri.request.Header.Get(key)
}

func (mri *MuxRequestInterface) Headers() map[string][]string {
	return mri.request.Header
}

func (mri *MuxRequestInterface) Body() ([]byte, error) {
	if mri.request.Body == nil {
		return nil, nil
	}
	return io.ReadAll(mri.request.Body)
}

func (mri *MuxRequestInterface) ContentType() string {
	return mri.request.Header.Get("Content-Type")
}

// MuxResponseInterface implements stapi.ResponseInterface for net/http
type MuxResponseInterface struct {
	writer  http.ResponseWriter
	request *http.Request
}

func (mri *MuxResponseInterface) Header(key string) string {
	return mri.writer.Header().Get(key)
}

func (mri *MuxResponseInterface) SetHeader(key, value string) {
	mri.writer.Header().Set(key, value)
}

func (mri *MuxResponseInterface) Blob(code int, contentType string, b []byte) error {
	mri.writer.Header().Set("Content-Type", contentType)
	mri.writer.WriteHeader(code)
	_, err := mri.writer.Write(b)
	return err
}

func (mri *MuxResponseInterface) String(code int, s string) error {
	return mri.Blob(code, "text/plain; charset=utf-8", []byte(s))
}

func (mri *MuxResponseInterface) Redirect(code int, url string) error {
	http.Redirect(mri.writer, mri.request, url, code)
	return nil
}
