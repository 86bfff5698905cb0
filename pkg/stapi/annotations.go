package stapi

import (
	"reflect"

	"github.com/stlmpp/stapi/pkg/schema"
)

// Annotate returns a builder declaring class-level metadata for target
func (r *Registry) Annotate(target any) *Annotations {
	return &Annotations{registry: r, target: targetType(target), member: ClassMember}
}

// Annotations declares metadata for a handler type. Class-level builders
// come from Registry.Annotate, member-level ones from Method.
type Annotations struct {
	registry *Registry
	target   reflect.Type
	member   string
}

// Method returns a builder for member-level metadata of name
func (a *Annotations) Method(name string) *Annotations {
	return &Annotations{registry: a.registry, target: a.target, member: name}
}

// Route declares the path and method the handler serves. The method
// defaults to GET and the path to "/".
func (a *Annotations) Route(method, path string) *Annotations {
	p := NewPath(path)
	if err := p.Validate(); err != nil {
		a.fail(ErrInvalidPath, err, "route %q", path)
	}
	a.registry.SetMetadata(a.target, ClassMember, RouteKind, RouteDescriptor{
		Method: normalizeMethod(method),
		Path:   p,
	})
	return a
}

// Params binds the path parameters to argument slot. The schema, when not
// nil, must describe an object.
func (a *Annotations) Params(slot int, s schema.Schema) *Annotations {
	return a.bindObject(ParamsKind, slot, s)
}

// Query binds the query string to argument slot
func (a *Annotations) Query(slot int, s schema.Schema) *Annotations {
	return a.bindObject(QueryKind, slot, s)
}

// Headers binds the request headers to argument slot
func (a *Annotations) Headers(slot int, s schema.Schema) *Annotations {
	return a.bindObject(HeadersKind, slot, s)
}

// Body binds the decoded JSON body to argument slot
func (a *Annotations) Body(slot int, s schema.Schema) *Annotations {
	return a.bind(ParameterBinding{Kind: BodyKind, Slot: slot, Schema: s})
}

// Ctx binds the *ExecutionContext (or its context.Context) to slot
func (a *Annotations) Ctx(slot int) *Annotations {
	return a.bind(ParameterBinding{Kind: ContextKind, Slot: slot})
}

// Response declares the response schema and status; 0 means 200
func (a *Annotations) Response(s schema.Schema, status int) *Annotations {
	if status == 0 {
		status = 200
	}
	a.registry.SetMetadata(a.target, a.member, ResponseKind, ResponseContract{Schema: s, StatusCode: status})
	return a
}

// UseGuards declares the guards protecting the handler. Each guard is a
// Guard value or the reflect.Type of one, resolved when compiling.
func (a *Annotations) UseGuards(guards ...any) *Annotations {
	for _, g := range guards {
		if !isGuardReference(g) {
			a.fail(ErrInvalidHandler, nil, "guard %T is neither a Guard nor a reflect.Type", g)
			return a
		}
	}
	a.registry.SetMetadata(a.target, a.member, GuardsKind, append([]any(nil), guards...))
	return a
}

// Exceptions declares the error outcomes of the handler for documentation
func (a *Annotations) Exceptions(factories ...ExceptionFactory) *Annotations {
	a.registry.SetMetadata(a.target, a.member, ExceptionsKind, append([]ExceptionFactory(nil), factories...))
	return a
}

// bindingMember is the member parameter bindings are stored under. They
// always describe arguments of a method, the entry method by default.
func (a *Annotations) bindingMember() string {
	if a.member == ClassMember {
		return EntryMethod
	}
	return a.member
}

func (a *Annotations) bindObject(kind MetadataKind, slot int, s schema.Schema) *Annotations {
	if s != nil && !isObjectSchema(s) {
		a.fail(ErrInvalidSchema, nil, "%s binding at slot %d requires an object schema, got %T", kind, slot, s)
		return a
	}
	return a.bind(ParameterBinding{Kind: kind, Slot: slot, Schema: s})
}

func (a *Annotations) bind(binding ParameterBinding) *Annotations {
	member := a.bindingMember()
	if binding.Slot < 0 {
		a.fail(ErrInvalidSchema, nil, "%s binding has negative slot %d", binding.Kind, binding.Slot)
		return a
	}
	for _, kind := range []MetadataKind{ParamsKind, QueryKind, HeadersKind, BodyKind, ContextKind} {
		if kind == binding.Kind {
			continue
		}
		if value, ok := a.registry.GetMetadata(a.target, member, kind); ok && value.(ParameterBinding).Slot == binding.Slot {
			a.fail(ErrInvalidSchema, nil, "slot %d is bound to both %s and %s", binding.Slot, kind, binding.Kind)
			return a
		}
	}
	a.registry.SetMetadata(a.target, member, binding.Kind, binding)
	return a
}

func (a *Annotations) fail(reason, cause error, format string, args ...any) {
	err := newRegistrationError(typeName(a.target), reason, format, args...)
	if a.member != ClassMember {
		err.WithContext("member", a.member)
	}
	if cause != nil {
		err.WithCause(cause)
	}
	a.registry.recordError(a.target, err)
}

func isObjectSchema(s schema.Schema) bool {
	if _, ok := s.(schema.ObjectSchema); !ok {
		return false
	}
	return s.JSONSchema()["type"] == "object"
}

func isGuardReference(g any) bool {
	switch g.(type) {
	case Guard, reflect.Type:
		return true
	}
	return false
}
