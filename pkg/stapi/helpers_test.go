package stapi

import (
	"context"
	"net/http"
	"strings"
)

// fakeRequest is an in-memory RequestContext
type fakeRequest struct {
	ctx     context.Context
	method  string
	path    string
	params  map[string]string
	query   map[string][]string
	headers http.Header
	body    []byte
	bodyErr error

	response *fakeResponse
}

func newFakeRequest(method, path string) *fakeRequest {
	return &fakeRequest{
		ctx:      context.Background(),
		method:   method,
		path:     path,
		params:   map[string]string{},
		query:    map[string][]string{},
		headers:  http.Header{},
		response: &fakeResponse{headers: http.Header{}},
	}
}

func (r *fakeRequest) withParam(name, value string) *fakeRequest {
	r.params[name] = value
	return r
}

func (r *fakeRequest) withQuery(name string, values ...string) *fakeRequest {
	r.query[name] = values
	return r
}

func (r *fakeRequest) withHeader(name, value string) *fakeRequest {
	r.headers.Add(name, value)
	return r
}

func (r *fakeRequest) withJSON(body string) *fakeRequest {
	r.body = []byte(body)
	r.headers.Set("Content-Type", "application/json")
	return r
}

func (r *fakeRequest) Context() context.Context         { return r.ctx }
func (r *fakeRequest) Method() string                   { return r.method }
func (r *fakeRequest) Path() string                     { return r.path }
func (r *fakeRequest) Param(key string) string          { return r.params[key] }
func (r *fakeRequest) QueryParams() map[string][]string { return r.query }
func (r *fakeRequest) Request() RequestInterface        { return r }
func (r *fakeRequest) Response() ResponseInterface      { return r.response }

func (r *fakeRequest) ParamNames() []string {
	names := make([]string, 0, len(r.params))
	for name := range r.params {
		names = append(names, name)
	}
	return names
}

func (r *fakeRequest) Header(key string) string     { return r.headers.Get(key) }
func (r *fakeRequest) Headers() map[string][]string { return r.headers }
func (r *fakeRequest) Body() ([]byte, error)        { return r.body, r.bodyErr }
func (r *fakeRequest) ContentType() string          { return r.headers.Get("Content-Type") }

// fakeResponse records what a handler wrote
type fakeResponse struct {
	headers     http.Header
	status      int
	contentType string
	body        []byte
	// headersAtWrite is a snapshot of the headers when the body was written
	headersAtWrite http.Header
	location       string
}

func (w *fakeResponse) Header(key string) string    { return w.headers.Get(key) }
func (w *fakeResponse) SetHeader(key, value string) { w.headers.Set(key, value) }

func (w *fakeResponse) Blob(code int, contentType string, b []byte) error {
	w.status = code
	w.contentType = contentType
	w.body = b
	w.headersAtWrite = w.headers.Clone()
	return nil
}

func (w *fakeResponse) String(code int, s string) error {
	return w.Blob(code, "text/plain; charset=utf-8", []byte(s))
}

func (w *fakeResponse) Redirect(code int, url string) error {
	w.status = code
	w.location = url
	w.headersAtWrite = w.headers.Clone()
	return nil
}

func (w *fakeResponse) bodyString() string {
	return strings.TrimSpace(string(w.body))
}

// sequence returns a generator yielding the given ids in order
func sequence(values ...string) func() string {
	i := 0
	return func() string {
		v := values[i%len(values)]
		i++
		return v
	}
}
