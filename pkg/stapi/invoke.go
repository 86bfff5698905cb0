package stapi

import (
	"context"
	"fmt"
	"reflect"

	"github.com/stlmpp/stapi/internal/jsoncodec"
)

var (
	errorType            = reflect.TypeFor[error]()
	contextType          = reflect.TypeFor[context.Context]()
	executionContextType = reflect.TypeFor[*ExecutionContext]()
)

// invoker calls the entry method of a handler instance
type invoker struct {
	method    reflect.Value
	in        []reflect.Type
	bindings  []ParameterBinding
	hasResult bool
	hasError  bool
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

// newInvoker checks the entry method of instance against the bindings
func newInvoker(instance any, meta RouteMetadata) (*invoker, error) {
	name := meta.HandlerName()

	v := reflect.ValueOf(instance)
	if !v.IsValid() {
		return nil, newRegistrationError(name, ErrInvalidHandler, "handler instance is nil")
	}
	if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		v = ptr
	}

	method := v.MethodByName(EntryMethod)
	if !method.IsValid() {
		return nil, newRegistrationError(name, ErrInvalidHandler, "missing %s method", EntryMethod)
	}
	mt := method.Type()
	if mt.IsVariadic() {
		return nil, newRegistrationError(name, ErrInvalidHandler, "%s must not be variadic", EntryMethod)
	}

	inv := &invoker{method: method, bindings: meta.Bindings()}
	for i := 0; i < mt.NumIn(); i++ {
		inv.in = append(inv.in, mt.In(i))
	}

	maxSlot := -1
	for _, b := range inv.bindings {
		maxSlot = max(maxSlot, b.Slot)
	}
	if mt.NumIn() < maxSlot+1 {
		return nil, newRegistrationError(name, ErrInvalidHandler,
			"%s accepts %d arguments but slot %d is bound", EntryMethod, mt.NumIn(), maxSlot)
	}

	if b := meta.Context; b != nil {
		t := mt.In(b.Slot)
		if t != executionContextType && t != contextType {
			return nil, newRegistrationError(name, ErrInvalidHandler,
				"context slot %d must be *stapi.ExecutionContext or context.Context, got %s", b.Slot, t)
		}
	}

	switch mt.NumOut() {
	case 0:
	case 1:
		if mt.Out(0) == errorType {
			inv.hasError = true
		} else {
			inv.hasResult = true
		}
	case 2:
		if mt.Out(1) != errorType {
			return nil, newRegistrationError(name, ErrInvalidHandler,
				"second result of %s must be error, got %s", EntryMethod, mt.Out(1))
		}
		inv.hasResult = true
		inv.hasError = true
	default:
		return nil, newRegistrationError(name, ErrInvalidHandler,
			"%s returns %d values, expected at most 2", EntryMethod, mt.NumOut())
	}
	return inv, nil
}

// stage returns the invocation stage: it builds the argument list, calls
// the entry method and stores the result in the execution context.
func (inv *invoker) stage(ec *ExecutionContext) *Exception {
	args := make([]reflect.Value, len(inv.in))
	for i, t := range inv.in {
		args[i] = reflect.Zero(t)
	}

	for _, b := range inv.bindings {
		arg, err := inv.argument(ec, b)
		if err != nil {
			return UnknownInternalServerError("").WithCause(
				fmt.Errorf("cannot pass %s to argument %d: %w", b.Kind, b.Slot, err))
		}
		args[b.Slot] = arg
	}

	out, err := inv.call(args)
	if err != nil {
		return asException(err)
	}
	if inv.hasResult {
		ec.result = out[0].Interface()
	}
	if inv.hasError {
		if errValue := out[len(out)-1]; !errValue.IsNil() {
			return asException(errValue.Interface().(error))
		}
	}
	return nil
}

func (inv *invoker) call(args []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return inv.method.Call(args), nil
}

func (inv *invoker) argument(ec *ExecutionContext, b ParameterBinding) (reflect.Value, error) {
	t := inv.in[b.Slot]
	switch b.Kind {
	case ContextKind:
		if t == contextType {
			return reflect.ValueOf(ec.Context()), nil
		}
		return reflect.ValueOf(ec), nil
	case ParamsKind:
		return convertArgument(ec.Params, t)
	case QueryKind:
		return convertArgument(ec.Query, t)
	case HeadersKind:
		return convertArgument(ec.Headers, t)
	case BodyKind:
		return convertArgument(ec.Body, t)
	}
	return reflect.Zero(t), nil
}

// convertArgument assigns value to type t directly when possible and
// through its JSON form otherwise.
func convertArgument(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	ptr := reflect.New(t)
	if err := jsoncodec.Convert(value, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}
