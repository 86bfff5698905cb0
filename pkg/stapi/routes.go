package stapi

import (
	"sync"
)

// RouteInfo contains metadata about a registered route
type RouteInfo struct {
	// Method is the HTTP method (GET, POST, PUT, DELETE, etc.)
	Method string

	// Path is the route path with parameter placeholders (e.g., "/users/:id")
	Path Path

	// HandlerName is the fully qualified handler type name
	HandlerName string

	// Guards is the number of route guards, global guards excluded
	Guards int

	// Handler is the transport-agnostic handler
	Handler HandlerFunc

	// Route is the compiled pipeline
	Route *CompiledRoute
}

// RouteRegistry lists the routes an App serves
type RouteRegistry struct {
	mu     sync.RWMutex
	routes []RouteInfo
}

// NewRouteRegistry creates an empty route registry
func NewRouteRegistry() *RouteRegistry {
	return &RouteRegistry{
		routes: make([]RouteInfo, 0),
	}
}

// RegisterRoute adds a route to the registry
func (r *RouteRegistry) RegisterRoute(route RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// GetAllRoutes returns all registered routes in registration order
func (r *RouteRegistry) GetAllRoutes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]RouteInfo(nil), r.routes...)
}

// GetRoutesByMethod returns routes filtered by HTTP method
func (r *RouteRegistry) GetRoutesByMethod(method string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool { return route.Method == method })
}

// GetRoutesByHandler returns routes filtered by handler type name
func (r *RouteRegistry) GetRoutesByHandler(handlerName string) []RouteInfo {
	return r.filter(func(route RouteInfo) bool { return route.HandlerName == handlerName })
}

// Lookup returns the route registered for method and path
func (r *RouteRegistry) Lookup(method string, path Path) (RouteInfo, bool) {
	routes := r.filter(func(route RouteInfo) bool { return route.Method == method && route.Path == path })
	if len(routes) == 0 {
		return RouteInfo{}, false
	}
	return routes[len(routes)-1], true
}

func (r *RouteRegistry) filter(keep func(RouteInfo) bool) []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []RouteInfo
	for _, route := range r.routes {
		if keep(route) {
			filtered = append(filtered, route)
		}
	}
	return filtered
}
