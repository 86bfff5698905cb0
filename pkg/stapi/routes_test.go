package stapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteRegistry(t *testing.T) {
	r := NewRouteRegistry()
	r.RegisterRoute(RouteInfo{Method: http.MethodGet, Path: "/users", HandlerName: "ListUsers"})
	r.RegisterRoute(RouteInfo{Method: http.MethodPost, Path: "/users", HandlerName: "CreateUser"})
	r.RegisterRoute(RouteInfo{Method: http.MethodGet, Path: "/users/:id", HandlerName: "GetUser"})

	assert.Len(t, r.GetAllRoutes(), 3)
	assert.Len(t, r.GetRoutesByMethod(http.MethodGet), 2)
	assert.Len(t, r.GetRoutesByHandler("CreateUser"), 1)
	assert.Empty(t, r.GetRoutesByMethod(http.MethodDelete))

	route, ok := r.Lookup(http.MethodGet, "/users/:id")
	assert.True(t, ok)
	assert.Equal(t, "GetUser", route.HandlerName)

	_, ok = r.Lookup(http.MethodPut, "/users/:id")
	assert.False(t, ok)
}

func TestRouteRegistry_GetAllRoutesIsACopy(t *testing.T) {
	r := NewRouteRegistry()
	r.RegisterRoute(RouteInfo{Method: http.MethodGet, Path: "/"})

	routes := r.GetAllRoutes()
	routes[0].Method = http.MethodPost

	assert.Equal(t, http.MethodGet, r.GetAllRoutes()[0].Method)
}
