package stapi

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotProvided is returned by a Resolver that has no instance for a type.
// Optional dependencies such as global guards are skipped on it.
var ErrNotProvided = errors.New("not provided")

// Resolver supplies instances of handler and guard types
type Resolver interface {
	Resolve(ctx context.Context, t reflect.Type) (any, error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(ctx context.Context, t reflect.Type) (any, error)

func (f ResolverFunc) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	return f(ctx, t)
}

// Initializer is implemented by types needing setup after construction
type Initializer interface {
	Init(ctx context.Context) error
}

// ConstructResolver builds a new zero value of the requested type and
// calls its Init method when it has one. Instances are pointers.
type ConstructResolver struct{}

func (ConstructResolver) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface {
		return nil, fmt.Errorf("cannot construct interface %s: %w", t, ErrNotProvided)
	}

	instance := reflect.New(t).Interface()
	if init, ok := instance.(Initializer); ok {
		if err := init.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize %s: %w", t, err)
		}
	}
	return instance, nil
}

// InstanceResolver returns pre-built instances by type and defers to a
// fallback for everything else.
type InstanceResolver struct {
	mu        sync.RWMutex
	instances map[reflect.Type]any
	fallback  Resolver
}

// NewInstanceResolver creates a resolver falling back to fallback; a nil
// fallback reports ErrNotProvided for unknown types.
func NewInstanceResolver(fallback Resolver) *InstanceResolver {
	return &InstanceResolver{
		instances: make(map[reflect.Type]any),
		fallback:  fallback,
	}
}

// Provide registers instances under their own types, pointers stripped
func (r *InstanceResolver) Provide(instances ...any) *InstanceResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, instance := range instances {
		r.instances[targetType(instance)] = instance
	}
	return r
}

func (r *InstanceResolver) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	r.mu.RLock()
	instance, ok := r.instances[targetType(t)]
	r.mu.RUnlock()
	if ok {
		return instance, nil
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("%s: %w", t, ErrNotProvided)
	}
	return r.fallback.Resolve(ctx, t)
}
