package stapi

import (
	"errors"
	"reflect"
	"sync"
)

type metadataKey struct {
	target reflect.Type
	member string
	kind   MetadataKind
}

// Registry stores handler metadata keyed by (handler type, member, kind).
// It is written during startup and read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[metadataKey]any
	errs    map[reflect.Type][]error
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[metadataKey]any),
		errs:    make(map[reflect.Type][]error),
	}
}

// DefaultRegistry is the global metadata registry
var DefaultRegistry = NewRegistry()

// Annotate starts declaring metadata for target in the global registry
func Annotate(target any) *Annotations {
	return DefaultRegistry.Annotate(target)
}

// targetType accepts a value, a pointer or a reflect.Type and returns the
// underlying non-pointer type.
func targetType(target any) reflect.Type {
	t, ok := target.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(target)
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// SetMetadata stores value for (target, member, kind), replacing any
// previous entry.
func (r *Registry) SetMetadata(target any, member string, kind MetadataKind, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[metadataKey{targetType(target), member, kind}] = value
}

// GetMetadata returns the entry for (target, member, kind). Guards,
// exceptions and response contracts fall back to the class-level entry.
func (r *Registry) GetMetadata(target any, member string, kind MetadataKind) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := targetType(target)
	if value, ok := r.entries[metadataKey{t, member, kind}]; ok {
		return value, true
	}
	if member != ClassMember && kind.fallsBackToClass() {
		value, ok := r.entries[metadataKey{t, ClassMember, kind}]
		return value, ok
	}
	return nil, false
}

func (r *Registry) recordError(t reflect.Type, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[t] = append(r.errs[t], err)
}

// Err returns the errors recorded while annotating target, joined
func (r *Registry) Err(target any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return errors.Join(r.errs[targetType(target)]...)
}

// FullMetadata gathers the metadata of target's entry method. It reports
// false when target has no route descriptor.
func (r *Registry) FullMetadata(target any) (RouteMetadata, bool) {
	route, ok := r.GetMetadata(target, ClassMember, RouteKind)
	if !ok {
		return RouteMetadata{}, false
	}

	meta := RouteMetadata{
		Handler: targetType(target),
		Route:   route.(RouteDescriptor),
	}
	for kind, dst := range map[MetadataKind]**ParameterBinding{
		ParamsKind:  &meta.Params,
		QueryKind:   &meta.Query,
		HeadersKind: &meta.Headers,
		BodyKind:    &meta.Body,
		ContextKind: &meta.Context,
	} {
		if value, ok := r.GetMetadata(target, EntryMethod, kind); ok {
			binding := value.(ParameterBinding)
			*dst = &binding
		}
	}
	if value, ok := r.GetMetadata(target, EntryMethod, ResponseKind); ok {
		contract := value.(ResponseContract)
		meta.Response = &contract
	}
	if value, ok := r.GetMetadata(target, EntryMethod, GuardsKind); ok {
		meta.Guards = value.([]any)
	}
	if value, ok := r.GetMetadata(target, EntryMethod, ExceptionsKind); ok {
		meta.Exceptions = value.([]ExceptionFactory)
	}
	return meta, true
}
