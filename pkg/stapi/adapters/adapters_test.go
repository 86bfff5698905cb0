package adapters

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stlmpp/stapi/internal/jsoncodec"
	"github.com/stlmpp/stapi/pkg/schema/jsonschema"
	"github.com/stlmpp/stapi/pkg/stapi"
)

type idParams struct {
	ID int `json:"id"`
}

type createHandler struct{}

func (createHandler) Handle(params idParams) map[string]any {
	return map[string]any{"id": params.ID}
}

type filesHandler struct{}

func (filesHandler) Handle(ec *stapi.ExecutionContext) string {
	return ec.Request().Param("*")
}

type searchHandler struct{}

func (searchHandler) Handle(query map[string]any, headers map[string]string) map[string]any {
	return map[string]any{"query": query, "agent": headers["x-agent"]}
}

func newTestRegistry() *stapi.Registry {
	registry := stapi.NewRegistry()
	registry.Annotate(createHandler{}).
		Route(http.MethodPost, "/:id").
		Params(0, jsonschema.Properties(map[string]jsonschema.Definition{"id": {"type": "integer"}}, "id")).
		Response(jsonschema.Properties(map[string]jsonschema.Definition{"id": {"type": "number"}}, "id"), http.StatusCreated)
	registry.Annotate(filesHandler{}).
		Route(http.MethodGet, "/files/*").
		Ctx(0)
	registry.Annotate(searchHandler{}).
		Route(http.MethodGet, "/search").
		Query(0, nil).
		Headers(1, nil)
	return registry
}

type response struct {
	status int
	header http.Header
	body   string
}

// serveFunc sends req through the adapter's framework without listening
type serveFunc func(t *testing.T, req *http.Request) response

func recorderServe(h http.Handler) serveFunc {
	return func(t *testing.T, req *http.Request) response {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return response{status: rec.Code, header: rec.Header(), body: rec.Body.String()}
	}
}

func testAdapters() map[string]func() (stapi.WebServer, serveFunc) {
	return map[string]func() (stapi.WebServer, serveFunc){
		"echo": func() (stapi.WebServer, serveFunc) {
			adapter := NewDefaultEchoAdapter()
			return adapter, recorderServe(adapter.GetEngine())
		},
		"gin": func() (stapi.WebServer, serveFunc) {
			adapter := NewDefaultGinAdapter()
			return adapter, recorderServe(adapter.GetEngine())
		},
		"mux": func() (stapi.WebServer, serveFunc) {
			adapter := NewDefaultMuxAdapter()
			return adapter, recorderServe(adapter.GetRouter())
		},
		"fiber": func() (stapi.WebServer, serveFunc) {
			adapter := NewDefaultFiberAdapter()
			return adapter, func(t *testing.T, req *http.Request) response {
				resp, err := adapter.GetApp().Test(req, -1)
				require.NoError(t, err)
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				return response{status: resp.StatusCode, header: resp.Header, body: string(body)}
			}
		},
	}
}

func newApp(t *testing.T, server stapi.WebServer) {
	t.Helper()
	_, err := stapi.New(context.Background(), stapi.Options{
		Server:      server,
		Registry:    newTestRegistry(),
		Controllers: []any{createHandler{}, filesHandler{}, searchHandler{}},
	})
	require.NoError(t, err)
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, jsoncodec.Unmarshal([]byte(body), &out))
	return out
}

func assertCorrelated(t *testing.T, header http.Header) {
	t.Helper()
	assert.NotEmpty(t, header.Get(stapi.HeaderCorrelationID))
	assert.NotEmpty(t, header.Get(stapi.HeaderTraceID))
	assert.NotEmpty(t, header.Get(stapi.HeaderExecutionID))
	assert.Equal(t, "true", header.Get(stapi.HeaderAPI))
}

func TestAdapters_Pipeline(t *testing.T) {
	for name, build := range testAdapters() {
		t.Run(name, func(t *testing.T) {
			server, serve := build()
			newApp(t, server)

			t.Run("created", func(t *testing.T) {
				res := serve(t, httptest.NewRequest(http.MethodPost, "/42", nil))
				assert.Equal(t, http.StatusCreated, res.status)
				assert.JSONEq(t, `{"id":42}`, res.body)
				assertCorrelated(t, res.header)
			})

			t.Run("invalid params", func(t *testing.T) {
				res := serve(t, httptest.NewRequest(http.MethodPost, "/abc", nil))
				assert.Equal(t, http.StatusBadRequest, res.status)
				body := decode(t, res.body)
				assert.Equal(t, "CORE-0002", body["errorCode"])
				assert.Contains(t, body["message"], "id")
				assertCorrelated(t, res.header)
			})

			t.Run("correlation id is echoed", func(t *testing.T) {
				req := httptest.NewRequest(http.MethodPost, "/1", nil)
				req.Header.Set(stapi.HeaderCorrelationID, "client-id")
				res := serve(t, req)
				assert.Equal(t, "client-id", res.header.Get(stapi.HeaderCorrelationID))
			})

			t.Run("wildcard", func(t *testing.T) {
				res := serve(t, httptest.NewRequest(http.MethodGet, "/files/docs/readme.md", nil))
				assert.Equal(t, http.StatusOK, res.status)
				assert.Equal(t, "docs/readme.md", res.body)
				assert.True(t, strings.HasPrefix(res.header.Get("Content-Type"), "text/plain"))
			})

			t.Run("raw query and headers", func(t *testing.T) {
				req := httptest.NewRequest(http.MethodGet, "/search?q=go&tag=a&tag=b", nil)
				req.Header.Set("X-Agent", "tests")
				res := serve(t, req)
				assert.Equal(t, http.StatusOK, res.status)
				assert.JSONEq(t, `{"query":{"q":"go","tag":["a","b"]},"agent":"tests"}`, res.body)
			})

			t.Run("route not found", func(t *testing.T) {
				res := serve(t, httptest.NewRequest(http.MethodGet, "/does/not/exist", nil))
				assert.Equal(t, http.StatusNotFound, res.status)
				assert.Equal(t, "CORE-0006", decode(t, res.body)["errorCode"])
				assertCorrelated(t, res.header)
			})

			t.Run("openapi json", func(t *testing.T) {
				res := serve(t, httptest.NewRequest(http.MethodGet, stapi.OpenapiJSONPath, nil))
				assert.Equal(t, http.StatusOK, res.status)
				doc := decode(t, res.body)
				paths := doc["paths"].(map[string]any)
				assert.Contains(t, paths, "/{id}")
				assert.Contains(t, paths, "/files/*")
			})

			t.Run("help redirects", func(t *testing.T) {
				res := serve(t, httptest.NewRequest(http.MethodGet, stapi.HelpPath, nil))
				assert.Equal(t, http.StatusMovedPermanently, res.status)
				assert.Equal(t, stapi.OpenapiUIPath, res.header.Get("Location"))
				assertCorrelated(t, res.header)
			})

			t.Run("viewer page", func(t *testing.T) {
				res := serve(t, httptest.NewRequest(http.MethodGet, stapi.OpenapiUIPath, nil))
				assert.Equal(t, http.StatusOK, res.status)
				assert.Contains(t, res.body, "swagger-ui")
			})
		})
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"echo", "gin", "fiber", "mux"} {
		server, err := New(name)
		require.NoError(t, err)
		assert.Equal(t, name, server.Name())
	}

	_, err := New("nginx")
	assert.Error(t, err)
}

func TestAdapters_ConvertPath(t *testing.T) {
	path := stapi.Path("/users/:id/files/*")

	assert.Equal(t, "/users/:id/files/*", NewDefaultEchoAdapter().convertPath(path))
	assert.Equal(t, "/users/:id/files/*wildcard", NewDefaultGinAdapter().convertPath(path))
	assert.Equal(t, "/users/:id/files/*", NewDefaultFiberAdapter().convertPath(path))
	assert.Equal(t, "/users/{id}/files/{wildcard:.*}", NewDefaultMuxAdapter().convertPath(path))
	assert.Equal(t, "/", NewDefaultMuxAdapter().convertPath("/"))
}
